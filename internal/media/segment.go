package media

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/reelforge/reelforge/pkg/util"
)

const segmentPrefix = "segment_"

// minSegment is the smallest span a clamped segment may collapse to.
const minSegment = 100 * time.Millisecond

// degradedWindow is how much of the tail of a clip is used when a
// requested start lies past the end of the source.
const degradedWindow = 2 * time.Second

// SegmentArtifactName builds the canonical name for an intermediate
// segment artifact. The run ID keeps concurrent runs from colliding,
// and the prefix lets the compositor recognize its own intermediates
// during cleanup without ever touching caller-supplied inputs.
func SegmentArtifactName(dir, runID string, index int, srcPath string) string {
	base := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))
	return filepath.Join(dir, fmt.Sprintf("%s%s_%03d_%s.mp4", segmentPrefix, runID, index, base))
}

// IsSegmentArtifact reports whether path names an intermediate segment
// produced by this run.
func IsSegmentArtifact(path, runID string) bool {
	return strings.HasPrefix(filepath.Base(path), segmentPrefix+runID+"_")
}

// ClampSegment resolves a requested [start,end) range against the real
// source duration. A start past the end of the clip is relocated to the
// last two seconds as a degraded-but-non-fatal recovery; otherwise both
// bounds are clamped into [0, duration].
func ClampSegment(start, end, duration time.Duration) (time.Duration, time.Duration, bool) {
	if start >= duration {
		window := degradedWindow
		if window > duration {
			window = duration
		}
		return duration - window, duration, true
	}

	if start < 0 {
		start = 0
	}
	if start > duration-minSegment {
		start = duration - minSegment
	}
	if end > duration {
		end = duration
	}
	if end < start+minSegment {
		end = start + minSegment
		if end > duration {
			end = duration
		}
	}
	return start, end, false
}

// ExtractSegment cuts [start,end) out of the source clip into a new,
// independently playable artifact, re-encoding through libx264/aac.
// The caller guarantees end > start; out-of-range values are clamped
// per ClampSegment. A non-nil norm scales, pads and resamples the
// segment onto that canvas so segments cut from mixed sources share
// stream parameters. After writing, the artifact is reloaded to measure
// actual duration; seek drift beyond 0.5s is logged, not raised.
func (e *Executor) ExtractSegment(ctx context.Context, src *Clip, start, end time.Duration, output string, norm *Geometry) (*Clip, error) {
	if src == nil || src.Info == nil {
		return nil, fmt.Errorf("%w: nil source clip", ErrExtraction)
	}

	start, end, degraded := ClampSegment(start, end, src.Duration())
	if degraded {
		e.logger.Warn().
			Str("input", src.Path).
			Dur("source_duration", src.Duration()).
			Msg("segment start past end of source, relocated to final seconds")
	}
	want := end - start

	e.logger.Info().
		Str("input", src.Path).
		Str("output", output).
		Dur("start", start).
		Dur("duration", want).
		Msg("extracting segment")

	args := []string{
		"-i", src.Path,
		"-ss", util.FormatDuration(start),
		"-t", util.FormatDuration(want),
	}
	if norm != nil && norm.Width > 0 && norm.Height > 0 && norm.FPS > 0 {
		args = append(args,
			"-vf", fmt.Sprintf(
				"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,fps=%.3f",
				norm.Width, norm.Height, norm.Width, norm.Height, norm.FPS),
			"-ar", "44100",
		)
	}
	args = append(args,
		"-c:v", DefaultVideoCodec,
		"-c:a", DefaultAudioCodec,
		"-crf", fmt.Sprintf("%d", e.crf),
		"-preset", e.preset,
		output,
	)

	runOpts := RunOptions{
		Args: args,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("segment extraction")
		},
	}

	if err := e.Run(ctx, runOpts); err != nil {
		return nil, fmt.Errorf("%w: %s [%s,%s): %v", ErrExtraction, src.Path,
			util.FormatDuration(start), util.FormatDuration(end), err)
	}

	// Reload to measure what the encoder actually produced. Variable
	// frame rate sources drift on seek; that is a warning, not an error.
	seg, err := e.OpenClip(ctx, output)
	if err != nil {
		return nil, fmt.Errorf("%w: verify %s: %v", ErrExtraction, output, err)
	}

	drift := seg.Duration() - want
	if drift < 0 {
		drift = -drift
	}
	if drift > 500*time.Millisecond {
		e.logger.Warn().
			Str("output", output).
			Dur("requested", want).
			Dur("actual", seg.Duration()).
			Msg("segment duration drifted from requested range")
	}

	return seg, nil
}
