// Package compose renders a Script into a finished video: segment
// extraction, timeline assembly with transitions, thumbnail title
// insertion and background music mixing.
package compose

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/reelforge/reelforge/internal/config"
	"github.com/reelforge/reelforge/internal/logging"
	"github.com/reelforge/reelforge/internal/media"
	"github.com/reelforge/reelforge/internal/script"
	"github.com/reelforge/reelforge/pkg/util"
)

// Options control one composition run.
type Options struct {
	// Output is the final video path.
	Output string
	// WorkDir holds segment artifacts and intermediates.
	WorkDir string
	// RunID namespaces this run's artifacts inside WorkDir.
	RunID string
	// ThumbnailPath, when set, is inserted as a one-frame title image.
	ThumbnailPath string
	// MusicPath, when set, is mixed in as background audio.
	MusicPath string
	// Progress, when set, receives ffmpeg progress updates during the
	// timeline render.
	Progress media.ProgressFunc
}

// Compositor renders scripts.
type Compositor struct {
	exec   *media.Executor
	cfg    config.ComposeConfig
	logger zerolog.Logger
}

// NewCompositor builds a Compositor.
func NewCompositor(exec *media.Executor, cfg config.ComposeConfig, logger zerolog.Logger) *Compositor {
	if cfg.TransitionDuration <= 0 {
		cfg.TransitionDuration = 500 * time.Millisecond
	}
	if cfg.DefaultMusicVolume <= 0 {
		cfg.DefaultMusicVolume = 0.5
	}
	return &Compositor{
		exec:   exec,
		cfg:    cfg,
		logger: logging.Component(logger, "compose"),
	}
}

// segment pairs an extracted clip with the scene that produced it.
type segment struct {
	clip     *media.Clip
	path     string
	scene    script.Scene
	declared time.Duration
}

// Compose renders the script over the given source videos. Every
// failure is returned as a *CompositionError after intermediate
// artifacts have been cleaned up; source videos are never touched.
func (c *Compositor) Compose(ctx context.Context, s *script.Script, sources []string, opts Options) error {
	if len(s.Scenes) == 0 {
		return &CompositionError{Cause: fmt.Errorf("script has no scenes")}
	}
	if err := util.EnsureDir(opts.WorkDir); err != nil {
		return &CompositionError{Cause: err}
	}

	t := newTracker(opts.RunID, c.logger)
	defer t.cleanup()

	segments, declared, err := c.extractSegments(ctx, s, sources, opts, t)
	if err != nil {
		return &CompositionError{Cause: err}
	}

	assembled, err := c.assemble(ctx, segments, opts, t)
	if err != nil {
		return &CompositionError{Cause: err}
	}
	current := assembled

	c.checkDrift(ctx, current, declared, segments)

	if opts.ThumbnailPath != "" && util.FileExists(opts.ThumbnailPath) {
		titled, err := c.insertTitleFrame(ctx, current, segments[0].clip.Info, opts, t)
		if err != nil {
			return &CompositionError{Cause: err}
		}
		current = titled
	}

	if opts.MusicPath != "" && util.FileExists(opts.MusicPath) {
		mixed, err := c.mixMusic(ctx, current, s.Music, opts, t)
		if err != nil {
			return &CompositionError{Cause: err}
		}
		current = mixed
	}

	if err := moveFile(current, opts.Output); err != nil {
		return &CompositionError{Cause: fmt.Errorf("finalize output: %w", err)}
	}

	c.logger.Info().
		Str("output", opts.Output).
		Int("scenes", len(segments)).
		Msg("composition complete")
	return nil
}

// extractSegments cuts every scene out of its resolved source video.
// Source clips are opened once per path and closed by the tracker.
func (c *Compositor) extractSegments(ctx context.Context, s *script.Script, sources []string, opts Options, t *tracker) ([]segment, time.Duration, error) {
	open := make(map[string]*media.Clip)
	var declared time.Duration
	var norm *media.Geometry
	segments := make([]segment, 0, len(s.Scenes))

	for i, sc := range s.Scenes {
		srcPath, err := c.resolveSource(sc.SourceVideo, sources)
		if err != nil {
			return nil, 0, fmt.Errorf("scene %d: %w", sc.SceneID, err)
		}

		src, ok := open[srcPath]
		if !ok {
			src, err = c.exec.OpenClip(ctx, srcPath)
			if err != nil {
				return nil, 0, fmt.Errorf("scene %d: %w", sc.SceneID, err)
			}
			open[srcPath] = src
			t.addClip(src)
		}

		// The first scene's source defines the output canvas; every
		// segment is normalized onto it so mixed-geometry sources can
		// still be joined with stream copy.
		if norm == nil {
			norm = &media.Geometry{Width: src.Info.Width, Height: src.Info.Height, FPS: src.Info.FPS}
		}

		start, end, degraded := media.ClampSegment(
			util.FromSeconds(sc.StartTime),
			util.FromSeconds(sc.EndTime),
			src.Info.Duration,
		)
		if degraded {
			c.logger.Warn().
				Int("scene", sc.SceneID).
				Float64("requested_start", sc.StartTime).
				Dur("source_duration", src.Info.Duration).
				Msg("scene window past end of source, using tail window")
		}

		segPath := media.SegmentArtifactName(opts.WorkDir, opts.RunID, i, srcPath)
		seg, err := c.exec.ExtractSegment(ctx, src, start, end, segPath, norm)
		if err != nil {
			return nil, 0, fmt.Errorf("scene %d: %w", sc.SceneID, err)
		}
		t.addClip(seg)
		t.addSegmentFile(segPath)

		declared += end - start
		segments = append(segments, segment{clip: seg, path: segPath, scene: sc, declared: end - start})
	}
	return segments, declared, nil
}

// checkDrift compares the declared timeline length against the rendered
// one and logs a diagnosis when they disagree by more than a second.
// The sum of actually-extracted segment durations separates extraction
// truncation from crossfade overlap.
func (c *Compositor) checkDrift(ctx context.Context, rendered string, declared time.Duration, segments []segment) {
	info, err := c.exec.ProbeVideo(ctx, rendered)
	if err != nil {
		c.logger.Debug().Err(err).Msg("drift probe failed")
		return
	}

	diff := math.Abs(util.Seconds(declared) - util.Seconds(info.Duration))
	if diff <= 1.0 {
		return
	}

	var extracted time.Duration
	for _, seg := range segments {
		extracted += seg.clip.Duration()
	}
	crossfades := 0
	for i, seg := range segments {
		if i > 0 && seg.scene.TransitionIn == "crossfade" {
			crossfades++
		}
	}
	overlap := c.cfg.TransitionDuration * time.Duration(crossfades)

	c.logger.Warn().
		Dur("declared", declared).
		Dur("extracted", extracted).
		Dur("rendered", info.Duration).
		Int("crossfades", crossfades).
		Float64("drift_seconds", diff).
		Msg(diagnoseDrift(declared, extracted, info.Duration, crossfades, overlap))
}

// diagnoseDrift explains a timeline that came out shorter or longer
// than the script declared.
func diagnoseDrift(declared, extracted, rendered time.Duration, crossfades int, overlap time.Duration) string {
	if d := extracted - declared; d < -time.Second || d > time.Second {
		return "extracted segments fall short of declared ranges, sources likely truncated near their ends"
	}
	if crossfades > 0 {
		if d := rendered - (extracted - overlap); d >= -time.Second && d <= time.Second {
			return "timeline shorter than declared, crossfade overlap accounts for the shortfall"
		}
	}
	return "rendered timeline diverges from extracted segments"
}

// insertTitleFrame resizes the thumbnail to the output geometry and
// overlays it for exactly one frame at t=0.
func (c *Compositor) insertTitleFrame(ctx context.Context, video string, geometry *media.VideoInfo, opts Options, t *tracker) (string, error) {
	resized := fmt.Sprintf("%s/thumb_%s.png", opts.WorkDir, opts.RunID)
	if err := prepareThumbnail(opts.ThumbnailPath, geometry.Width, geometry.Height, resized); err != nil {
		return "", fmt.Errorf("prepare thumbnail: %w", err)
	}
	t.addFile(resized)

	info, err := c.exec.ProbeVideo(ctx, video)
	if err != nil {
		return "", err
	}

	fps := geometry.FPS
	if fps <= 0 {
		fps = 30
	}
	window := time.Duration(float64(time.Second) / fps)

	titled := fmt.Sprintf("%s/titled_%s.mp4", opts.WorkDir, opts.RunID)
	if err := c.exec.OverlayImage(ctx, video, resized, titled, window, info.HasAudio); err != nil {
		return "", err
	}
	t.addFile(titled)
	return titled, nil
}

// mixMusic lays the synthesized track under the video at the script's
// volume. The track loops until the video ends.
func (c *Compositor) mixMusic(ctx context.Context, video string, music script.Music, opts Options, t *tracker) (string, error) {
	volume := music.Volume
	if volume <= 0 {
		volume = c.cfg.DefaultMusicVolume
	}

	mixed := fmt.Sprintf("%s/mixed_%s.mp4", opts.WorkDir, opts.RunID)
	if err := c.exec.MixAudio(ctx, video, opts.MusicPath, volume, true, mixed); err != nil {
		return "", err
	}
	t.addFile(mixed)
	return mixed, nil
}

// moveFile renames, falling back to copy across filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
