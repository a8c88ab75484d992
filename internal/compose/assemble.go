package compose

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"time"

	"github.com/nfnt/resize"

	"github.com/reelforge/reelforge/internal/media"
)

// assemble joins the extracted segments into one timeline. When any
// scene asks for a crossfade the whole timeline is rendered as a
// layered composite so overlapping scenes can blend; otherwise the
// segments get their fades applied individually and are concatenated
// without re-encoding.
func (c *Compositor) assemble(ctx context.Context, segments []segment, opts Options, t *tracker) (string, error) {
	assembled := fmt.Sprintf("%s/assembled_%s.mp4", opts.WorkDir, opts.RunID)

	if hasCrossfade(segments) {
		if err := c.assembleLayered(ctx, segments, assembled, opts.Progress); err != nil {
			return "", err
		}
	} else {
		if err := c.assembleConcat(ctx, segments, opts, t, assembled); err != nil {
			return "", err
		}
	}
	t.addFile(assembled)
	return assembled, nil
}

func hasCrossfade(segments []segment) bool {
	for _, seg := range segments {
		if seg.scene.TransitionIn == "crossfade" || seg.scene.TransitionOut == "crossfade" {
			return true
		}
	}
	return false
}

// assembleLayered places each segment at an absolute start time on a
// shared canvas. A crossfading scene starts one transition-width before
// its predecessor ends and fades in over the overlap.
func (c *Compositor) assembleLayered(ctx context.Context, segments []segment, output string, progress media.ProgressFunc) error {
	geometry := segments[0].clip.Info
	fade := c.cfg.TransitionDuration
	layers, total := buildLayers(segments, fade)
	return c.exec.LayerComposite(ctx, layers, geometry.Width, geometry.Height, geometry.FPS, total, fade, output, progress)
}

// buildLayers computes the absolute placement of each segment on the
// output timeline and its total length.
func buildLayers(segments []segment, fade time.Duration) ([]media.Layer, time.Duration) {
	layers := make([]media.Layer, 0, len(segments))
	var cursor time.Duration
	for i, seg := range segments {
		start := cursor
		alphaFade := false
		if i > 0 && seg.scene.TransitionIn == "crossfade" {
			start -= fade
			if start < 0 {
				start = 0
			}
			alphaFade = true
		}
		layers = append(layers, media.Layer{
			Path:        seg.path,
			Start:       start,
			Duration:    seg.clip.Duration(),
			AlphaFadeIn: alphaFade,
			HasAudio:    seg.clip.Info.HasAudio,
		})
		cursor = start + seg.clip.Duration()
	}
	return layers, cursor
}

// assembleConcat applies each segment's fade transitions in place and
// joins the results with the concat demuxer. Segments with no fades
// pass through untouched.
func (c *Compositor) assembleConcat(ctx context.Context, segments []segment, opts Options, t *tracker, output string) error {
	fade := c.cfg.TransitionDuration
	paths := make([]string, 0, len(segments))

	for i, seg := range segments {
		fadeIn := seg.scene.TransitionIn == "fade"
		fadeOut := seg.scene.TransitionOut == "fade"
		if !fadeIn && !fadeOut {
			paths = append(paths, seg.path)
			continue
		}

		faded := fmt.Sprintf("%s/faded_%s_%03d.mp4", opts.WorkDir, opts.RunID, i)
		err := c.exec.ApplyFades(ctx, seg.path, faded, fadeIn, fadeOut, fade, seg.clip.Duration(), seg.clip.Info.HasAudio)
		if err != nil {
			return fmt.Errorf("scene %d fades: %w", seg.scene.SceneID, err)
		}
		t.addFile(faded)
		paths = append(paths, faded)
	}

	if len(paths) == 1 {
		return copyFile(paths[0], output)
	}
	return c.exec.Concat(ctx, paths, output, opts.Progress)
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}

// prepareThumbnail decodes the thumbnail, scales it to the exact output
// geometry and writes it as PNG for the overlay filter.
func prepareThumbnail(path string, width, height int, output string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("decode thumbnail: %w", err)
	}

	scaled := resize.Resize(uint(width), uint(height), img, resize.Lanczos3)

	out, err := os.Create(output)
	if err != nil {
		return err
	}
	defer out.Close()
	return png.Encode(out, scaled)
}
