package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/reelforge/reelforge/internal/config"
	"github.com/reelforge/reelforge/internal/logging"
)

var (
	cfgFile string
	verbose bool
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "reelforge",
		Short: "Compose short videos from raw footage",
		Long: `reelforge analyzes source videos, plans an editing script,
synthesizes background music, and renders the result with ffmpeg.`,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Missing .env is fine, credentials can come from the shell.
			_ = godotenv.Load()
			logging.Init(verbose)

			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cmd.SetContext(config.WithConfig(cmd.Context(), cfg))
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newComposeCmd(),
		newProbeCmd(),
		newClipCmd(),
		newFrameCmd(),
		newSpeakCmd(),
		newServeCmd(),
	)
	return root
}
