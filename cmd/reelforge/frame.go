package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reelforge/reelforge/internal/config"
	"github.com/reelforge/reelforge/internal/frame"
	"github.com/reelforge/reelforge/internal/logging"
	"github.com/reelforge/reelforge/pkg/util"
)

func newFrameCmd() *cobra.Command {
	var (
		at     string
		best   bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "frame <video>",
		Short: "Extract a still frame from a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			exec, err := buildExecutor(cfg)
			if err != nil {
				return err
			}
			selector := frame.NewSelector(exec, nil, logging.NewLogger())

			if best {
				ts, err := selector.SelectBest(cmd.Context(), args[0], cfg.TempDir, output)
				if err != nil {
					return err
				}
				fmt.Printf("wrote %s (frame at %s)\n", output, util.FormatDuration(ts))
				return nil
			}

			offset, err := util.ParseTimestamp(at)
			if err != nil {
				return err
			}
			if err := selector.SelectAt(cmd.Context(), args[0], offset, output); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "0", "timestamp to extract (HH:MM:SS.mmm, MM:SS or seconds)")
	cmd.Flags().BoolVar(&best, "best", false, "sample the video and pick the highest quality frame")
	cmd.Flags().StringVarP(&output, "output", "o", "frame.png", "output path")
	return cmd
}
