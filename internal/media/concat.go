package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ApplyFades re-encodes a clip with fade-in and/or fade-out filters.
// Fades are applied per clip, independently, so end-to-end layout never
// changes total duration.
func (e *Executor) ApplyFades(ctx context.Context, input, output string, fadeIn, fadeOut bool, fade, clipDur time.Duration, hasAudio bool) error {
	if !fadeIn && !fadeOut {
		return fmt.Errorf("no fades requested for %s", input)
	}

	var vf []string
	var af []string
	fs := fade.Seconds()
	if fadeIn {
		vf = append(vf, fmt.Sprintf("fade=t=in:st=0:d=%.3f", fs))
		af = append(af, fmt.Sprintf("afade=t=in:st=0:d=%.3f", fs))
	}
	if fadeOut {
		st := clipDur.Seconds() - fs
		if st < 0 {
			st = 0
		}
		vf = append(vf, fmt.Sprintf("fade=t=out:st=%.3f:d=%.3f", st, fs))
		af = append(af, fmt.Sprintf("afade=t=out:st=%.3f:d=%.3f", st, fs))
	}

	args := []string{
		"-i", input,
		"-vf", strings.Join(vf, ","),
	}
	if hasAudio {
		args = append(args, "-af", strings.Join(af, ","))
	}
	args = append(args,
		"-c:v", DefaultVideoCodec,
		"-c:a", DefaultAudioCodec,
		"-crf", fmt.Sprintf("%d", e.crf),
		"-preset", e.preset,
		output,
	)

	opts := RunOptions{
		Args: args,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("fade")
		},
	}
	return e.Run(ctx, opts)
}

// Concat merges multiple video files into one using the concat demuxer.
// Inputs are expected to share codec parameters (all segments are
// re-encoded with the same settings and normalized to one canvas), so
// stream copy is safe. progress may be nil.
func (e *Executor) Concat(ctx context.Context, inputs []string, output string, progress ProgressFunc) error {
	if len(inputs) == 0 {
		return fmt.Errorf("no input files provided")
	}
	if output == "" {
		return fmt.Errorf("output path is required")
	}

	e.logger.Info().
		Int("inputs", len(inputs)).
		Str("output", output).
		Msg("concatenating clips")

	concatFile, err := e.createConcatFile(inputs)
	if err != nil {
		return fmt.Errorf("failed to create concat file: %w", err)
	}
	defer os.Remove(concatFile)

	args := []string{
		"-f", "concat",
		"-safe", "0",
		"-i", concatFile,
		"-c", "copy",
		output,
	}

	opts := RunOptions{
		Args:            args,
		ProgressHandler: progress,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("concatenating")
		},
	}

	return e.Run(ctx, opts)
}

// createConcatFile generates a temporary file list for ffmpeg concat
func (e *Executor) createConcatFile(inputs []string) (string, error) {
	tmpFile, err := os.CreateTemp("", "reelforge-concat-*.txt")
	if err != nil {
		return "", err
	}
	defer tmpFile.Close()

	for _, input := range inputs {
		absPath, err := filepath.Abs(input)
		if err != nil {
			return "", err
		}
		if _, err := fmt.Fprintf(tmpFile, "file '%s'\n", absPath); err != nil {
			return "", err
		}
	}

	return tmpFile.Name(), nil
}
