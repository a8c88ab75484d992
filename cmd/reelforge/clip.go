package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reelforge/reelforge/internal/config"
	"github.com/reelforge/reelforge/internal/media"
	"github.com/reelforge/reelforge/pkg/util"
)

func newClipCmd() *cobra.Command {
	var (
		start  string
		end    string
		output string
	)

	cmd := &cobra.Command{
		Use:   "clip <video>",
		Short: "Extract a segment from a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			exec, err := buildExecutor(cfg)
			if err != nil {
				return err
			}

			startTS, err := util.ParseTimestamp(start)
			if err != nil {
				return err
			}
			endTS, err := util.ParseTimestamp(end)
			if err != nil {
				return err
			}

			src, err := exec.OpenClip(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer src.Close()

			s, e, degraded := media.ClampSegment(startTS, endTS, src.Info.Duration)
			if degraded {
				fmt.Println("requested window is past the end of the video, using tail window")
			}

			seg, err := exec.ExtractSegment(cmd.Context(), src, s, e, output, nil)
			if err != nil {
				return err
			}
			defer seg.Close()

			fmt.Printf("wrote %s (%s)\n", output, util.FormatDuration(seg.Duration()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&start, "start", "s", "0", "segment start (HH:MM:SS.mmm, MM:SS or seconds)")
	cmd.Flags().StringVarP(&end, "end", "e", "", "segment end")
	cmd.Flags().StringVarP(&output, "output", "o", "clip.mp4", "output path")
	cmd.MarkFlagRequired("end")
	return cmd
}
