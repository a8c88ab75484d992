package main

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/reelforge/reelforge/internal/config"
	"github.com/reelforge/reelforge/internal/logging"
	"github.com/reelforge/reelforge/internal/server"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pipeline over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.FromContext(cmd.Context())
			orch, err := buildOrchestrator(cfg)
			if err != nil {
				return err
			}

			if addr == "" {
				addr = cfg.Server.Addr
			}

			logger := logging.NewLogger()
			srv := server.New(orch, logger)
			logger.Info().Str("addr", addr).Msg("listening")
			return http.ListenAndServe(addr, srv.Router())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to config)")
	return cmd
}
