package media

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/reelforge/reelforge/pkg/util"
)

// ExtractFrame decodes a single still frame at the given timestamp and
// writes it as PNG. ffmpeg exits zero even when a seek lands past the
// last frame, so the output is stat-checked afterwards.
func (e *Executor) ExtractFrame(ctx context.Context, input string, timestamp time.Duration, output string) error {
	if input == "" {
		return fmt.Errorf("%w: empty input path", ErrFrameRead)
	}
	if output == "" {
		return fmt.Errorf("%w: empty output path", ErrFrameRead)
	}

	e.logger.Debug().
		Str("input", input).
		Str("output", output).
		Dur("timestamp", timestamp).
		Msg("extracting frame")

	args := []string{
		"-ss", util.FormatDuration(timestamp),
		"-i", input,
		"-frames:v", "1",
		output,
	}

	opts := RunOptions{
		Args: args,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("frame extraction")
		},
	}

	if err := e.Run(ctx, opts); err != nil {
		return fmt.Errorf("%w: %s at %s: %v", ErrFrameRead, input, util.FormatDuration(timestamp), err)
	}

	if stat, err := os.Stat(output); err != nil || stat.Size() == 0 {
		return fmt.Errorf("%w: %s at %s: decoder produced no frame", ErrFrameRead, input, util.FormatDuration(timestamp))
	}

	return nil
}
