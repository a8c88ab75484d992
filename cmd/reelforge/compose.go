package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/reelforge/reelforge/internal/config"
	"github.com/reelforge/reelforge/internal/pipeline"
)

func newComposeCmd() *cobra.Command {
	var (
		intent      string
		duration    float64
		music       bool
		noThumbnail bool
		output      string
	)

	cmd := &cobra.Command{
		Use:   "compose <video> [video...]",
		Short: "Run the full pipeline over one or more source videos",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			orch, err := buildOrchestrator(cfg)
			if err != nil {
				return err
			}

			res, err := orch.Run(cmd.Context(), pipeline.Request{
				Videos:         args,
				Intent:         intent,
				TargetDuration: time.Duration(duration * float64(time.Second)),
				GenerateMusic:  music,
				SkipThumbnail:  noThumbnail,
				Output:         output,
			})
			if err != nil {
				return err
			}

			fmt.Printf("output:    %s\n", res.OutputPath)
			fmt.Printf("script:    %s\n", res.ScriptPath)
			fmt.Printf("summaries: %s\n", res.SummariesPath)
			if res.MusicPath != "" {
				fmt.Printf("music:     %s\n", res.MusicPath)
			}
			if res.ThumbnailPath != "" {
				fmt.Printf("thumbnail: %s\n", res.ThumbnailPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&intent, "intent", "i", "an engaging short video", "creative intent for the script planner")
	cmd.Flags().Float64VarP(&duration, "duration", "d", 30, "target duration in seconds")
	cmd.Flags().BoolVarP(&music, "music", "m", false, "synthesize a background music track")
	cmd.Flags().BoolVar(&noThumbnail, "no-thumbnail", false, "skip thumbnail generation")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output video path")
	return cmd
}
