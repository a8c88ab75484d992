package media

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Layer is one clip placed on the absolute output timeline. Layers are
// composited in order; later layers sit on top during overlap windows.
type Layer struct {
	Path     string
	Start    time.Duration
	Duration time.Duration
	// AlphaFadeIn ramps the layer's opacity over the crossfade window so
	// the predecessor shows through during the overlap.
	AlphaFadeIn bool
	HasAudio    bool
}

// LayerComposite renders layers onto a black canvas at absolute start
// times. This is the overlap mode of timeline composition: a layer whose
// start precedes its predecessor's end blends over it for the overlap
// window. Audio tracks are delayed to their layer start and mixed.
// progress may be nil.
func (e *Executor) LayerComposite(ctx context.Context, layers []Layer, width, height int, fps float64, total, fade time.Duration, output string, progress ProgressFunc) error {
	if len(layers) == 0 {
		return fmt.Errorf("no layers provided")
	}
	if width <= 0 || height <= 0 || fps <= 0 {
		return fmt.Errorf("invalid canvas geometry %dx%d@%.2f", width, height, fps)
	}

	e.logger.Info().
		Int("layers", len(layers)).
		Dur("total", total).
		Str("output", output).
		Msg("compositing layered timeline")

	args := []string{
		"-f", "lavfi",
		"-i", fmt.Sprintf("color=c=black:s=%dx%d:r=%.3f:d=%.3f", width, height, fps, total.Seconds()),
	}
	for _, l := range layers {
		args = append(args, "-i", l.Path)
	}

	var fc []string
	prev := "[0:v]"
	audioInputs := make([]string, 0, len(layers))

	for i, l := range layers {
		in := fmt.Sprintf("[%d:v]", i+1)
		chain := []string{fmt.Sprintf("scale=%d:%d", width, height)}
		if l.AlphaFadeIn {
			chain = append(chain,
				"format=yuva420p",
				fmt.Sprintf("fade=t=in:st=0:d=%.3f:alpha=1", fade.Seconds()),
			)
		}
		chain = append(chain, fmt.Sprintf("setpts=PTS-STARTPTS+%.3f/TB", l.Start.Seconds()))
		lbl := fmt.Sprintf("[l%d]", i)
		fc = append(fc, fmt.Sprintf("%s%s%s", in, strings.Join(chain, ","), lbl))

		out := fmt.Sprintf("[b%d]", i)
		fc = append(fc, fmt.Sprintf("%s%soverlay=eof_action=pass%s", prev, lbl, out))
		prev = out

		if l.HasAudio {
			ms := l.Start.Milliseconds()
			albl := fmt.Sprintf("[a%d]", i)
			fc = append(fc, fmt.Sprintf("[%d:a]adelay=%d:all=1%s", i+1, ms, albl))
			audioInputs = append(audioInputs, albl)
		}
	}

	mapArgs := []string{"-map", prev}
	if len(audioInputs) > 0 {
		fc = append(fc, fmt.Sprintf("%samix=inputs=%d:normalize=0[aout]",
			strings.Join(audioInputs, ""), len(audioInputs)))
		mapArgs = append(mapArgs, "-map", "[aout]")
	}

	args = append(args, "-filter_complex", strings.Join(fc, ";"))
	args = append(args, mapArgs...)
	args = append(args,
		"-c:v", DefaultVideoCodec,
		"-crf", fmt.Sprintf("%d", e.crf),
		"-preset", e.preset,
	)
	if len(audioInputs) > 0 {
		args = append(args, "-c:a", DefaultAudioCodec)
	}
	args = append(args, "-t", fmt.Sprintf("%.3f", total.Seconds()), output)

	opts := RunOptions{
		Args:            args,
		ProgressHandler: progress,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("layer composite")
		},
	}
	return e.Run(ctx, opts)
}
