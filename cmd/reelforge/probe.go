package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reelforge/reelforge/internal/config"
	"github.com/reelforge/reelforge/pkg/util"
)

func newProbeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe <video>",
		Short: "Inspect a video's metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			exec, err := buildExecutor(cfg)
			if err != nil {
				return err
			}

			info, err := exec.ProbeVideo(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("file:        %s\n", info.FilePath)
			fmt.Printf("duration:    %s\n", util.FormatDuration(info.Duration))
			fmt.Printf("resolution:  %dx%d\n", info.Width, info.Height)
			fmt.Printf("fps:         %.3f\n", info.FPS)
			fmt.Printf("frames:      %d\n", info.FrameCount)
			fmt.Printf("video codec: %s\n", info.VideoCodec)
			if info.HasAudio {
				fmt.Printf("audio codec: %s\n", info.AudioCodec)
			} else {
				fmt.Println("audio:       none")
			}
			return nil
		},
	}
}
