package media

import (
	"context"
	"fmt"
	"time"
)

// OverlayImage composites a still image over the video for the given
// window starting at t=0. The compositor uses a one-frame window
// (1/fps) to insert a title frame rather than a persistent watermark.
func (e *Executor) OverlayImage(ctx context.Context, video, image, output string, window time.Duration, hasAudio bool) error {
	if video == "" || image == "" || output == "" {
		return fmt.Errorf("video, image and output paths are required")
	}

	e.logger.Info().
		Str("video", video).
		Str("image", image).
		Dur("window", window).
		Msg("overlaying image")

	filter := fmt.Sprintf(
		"[1:v]format=rgba[thumb];[0:v][thumb]overlay=0:0:enable='lt(t,%.4f)'",
		window.Seconds(),
	)

	args := []string{
		"-i", video,
		"-i", image,
		"-filter_complex", filter,
		"-c:v", DefaultVideoCodec,
		"-crf", fmt.Sprintf("%d", e.crf),
		"-preset", e.preset,
	}
	if hasAudio {
		args = append(args, "-c:a", "copy")
	}
	args = append(args, output)

	opts := RunOptions{
		Args: args,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("image overlay")
		},
	}

	if err := e.Run(ctx, opts); err != nil {
		return fmt.Errorf("image overlay failed: %w", err)
	}
	return nil
}
