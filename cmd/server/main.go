// Command server runs the matching engine as a long-running TCP daemon,
// serving the binary protocol in internal/transport.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"matchbook/internal/common"
	"matchbook/internal/config"
	"matchbook/internal/market"
	"matchbook/internal/transport"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:   "server",
		Short: "run the matching engine TCP daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}
	root.Flags().StringVar(&configPath, "config", "", "path to a YAML config file (optional)")

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if lvl, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	m := market.New(nil)
	for _, symbol := range cfg.Symbols {
		m.AddBook(common.Symbol(symbol))
	}

	srv := transport.New(cfg.Server.Address, cfg.Server.Workers, m)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return srv.Run(ctx)
}
