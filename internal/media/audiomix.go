package media

import (
	"context"
	"fmt"
)

// MixAudio replaces the video's audio with the given track, scaled by
// volume. When loop is set the track repeats back-to-back until the
// video ends; either way -shortest trims the result to video length.
func (e *Executor) MixAudio(ctx context.Context, video, audio string, volume float64, loop bool, output string) error {
	if video == "" || audio == "" || output == "" {
		return fmt.Errorf("video, audio and output paths are required")
	}
	if volume < 0 {
		volume = 0
	}

	e.logger.Info().
		Str("video", video).
		Str("audio", audio).
		Float64("volume", volume).
		Bool("loop", loop).
		Msg("mixing audio track")

	args := []string{"-i", video}
	if loop {
		args = append(args, "-stream_loop", "-1")
	}
	args = append(args,
		"-i", audio,
		"-filter_complex", fmt.Sprintf("[1:a]volume=%.3f[bgm]", volume),
		"-map", "0:v",
		"-map", "[bgm]",
		"-c:v", "copy",
		"-c:a", DefaultAudioCodec,
		"-shortest",
		output,
	)

	opts := RunOptions{
		Args: args,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("audio mix")
		},
	}

	if err := e.Run(ctx, opts); err != nil {
		return fmt.Errorf("audio mix failed: %w", err)
	}
	return nil
}
