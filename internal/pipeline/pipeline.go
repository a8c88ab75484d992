// Package pipeline orchestrates a full video creation run: analyze the
// source videos, plan an editing script, synthesize music and compose a
// thumbnail in parallel, then render the timeline.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bpradana/weave"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/reelforge/reelforge/internal/compose"
	"github.com/reelforge/reelforge/internal/config"
	"github.com/reelforge/reelforge/internal/logging"
	"github.com/reelforge/reelforge/internal/media"
	"github.com/reelforge/reelforge/internal/script"
	"github.com/reelforge/reelforge/internal/summarize"
	"github.com/reelforge/reelforge/pkg/util"
)

// Summarizer analyzes one source video.
type Summarizer interface {
	Summarize(ctx context.Context, filePath string) (*summarize.VideoSummary, error)
}

// Planner turns summaries into an editing script. It never fails.
type Planner interface {
	Plan(ctx context.Context, summaries []*summarize.VideoSummary, intent string, target time.Duration) *script.Script
}

// AudioSynthesizer writes a background track to output.
type AudioSynthesizer interface {
	Synthesize(ctx context.Context, music script.Music, moods []string, duration time.Duration, output string) error
}

// FrameSelector extracts a thumbnail base frame.
type FrameSelector interface {
	SelectRecommended(ctx context.Context, video string, timestamp time.Duration, output string) error
}

// ThumbnailComposer styles a base frame into a thumbnail.
type ThumbnailComposer interface {
	Compose(ctx context.Context, framePath, summary, output string) error
}

// Compositor renders the script into the final video.
type Compositor interface {
	Compose(ctx context.Context, s *script.Script, sources []string, opts compose.Options) error
}

// Request describes one video creation run.
type Request struct {
	Videos         []string
	Intent         string
	TargetDuration time.Duration
	GenerateMusic  bool
	// SkipThumbnail disables frame selection and thumbnail composition.
	SkipThumbnail bool
	// Output is the final video path. Empty means <run dir>/final.mp4.
	Output string
	// OnProgress, when set, receives each progress message as it is
	// recorded. Calls are sequential, never concurrent.
	OnProgress func(string)
}

// Result collects the artifacts of a run. Partial results are returned
// alongside errors so callers can inspect what was produced.
type Result struct {
	RunID         string
	RunDir        string
	OutputPath    string
	SummariesPath string
	ScriptPath    string
	MusicPath     string
	ThumbnailPath string
	Summaries     []*summarize.VideoSummary
	Script        *script.Script
	Progress      []string
}

const defaultTargetDuration = 30 * time.Second

// Orchestrator wires the pipeline stages together.
type Orchestrator struct {
	cfg         *config.Config
	summarizer  Summarizer
	planner     Planner
	synthesizer AudioSynthesizer
	frames      FrameSelector
	thumbnails  ThumbnailComposer
	compositor  Compositor
	logger      zerolog.Logger
}

// New builds an Orchestrator. synthesizer and thumbnails may be nil
// when their collaborators are unavailable; those stages degrade.
func New(cfg *config.Config, summarizer Summarizer, planner Planner, synthesizer AudioSynthesizer, frames FrameSelector, thumbnails ThumbnailComposer, compositor Compositor, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:         cfg,
		summarizer:  summarizer,
		planner:     planner,
		synthesizer: synthesizer,
		frames:      frames,
		thumbnails:  thumbnails,
		compositor:  compositor,
		logger:      logging.Component(logger, "pipeline"),
	}
}

// Run executes the full pipeline. The returned Result carries whatever
// artifacts were produced, even when err is non-nil.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	res := &Result{}
	if err := validate(req); err != nil {
		return res, err
	}
	if req.TargetDuration <= 0 {
		req.TargetDuration = defaultTargetDuration
	}

	res.RunID = util.ShortID()
	res.RunDir = filepath.Join(o.cfg.WorkDir, "runs", res.RunID)
	if err := util.EnsureDir(res.RunDir); err != nil {
		return res, fmt.Errorf("create run directory: %w", err)
	}

	report := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		res.Progress = append(res.Progress, msg)
		o.logger.Info().Str("run_id", res.RunID).Msg(msg)
		if req.OnProgress != nil {
			req.OnProgress(msg)
		}
	}

	report("run %s: analyzing %d video(s)", res.RunID, len(req.Videos))
	summaries, err := o.analyze(ctx, req.Videos)
	if err != nil {
		return res, fmt.Errorf("analysis: %w", err)
	}
	res.Summaries = summaries
	res.SummariesPath = filepath.Join(res.RunDir, "summary.json")
	if err := saveJSON(res.SummariesPath, summaries); err != nil {
		return res, err
	}

	report("planning script for %.0fs target", req.TargetDuration.Seconds())
	res.Script = o.planner.Plan(ctx, summaries, req.Intent, req.TargetDuration)
	res.ScriptPath = filepath.Join(res.RunDir, "script.json")
	if err := saveJSON(res.ScriptPath, res.Script); err != nil {
		return res, err
	}
	report("script ready: %d scene(s), %.1fs total", len(res.Script.Scenes), res.Script.TotalDuration)

	o.runSideStages(ctx, req, res, report)

	res.OutputPath = req.Output
	if res.OutputPath == "" {
		res.OutputPath = filepath.Join(res.RunDir, "final.mp4")
	}

	report("composing timeline")
	err = o.compositor.Compose(ctx, res.Script, req.Videos, compose.Options{
		Output:        res.OutputPath,
		WorkDir:       res.RunDir,
		RunID:         res.RunID,
		ThumbnailPath: res.ThumbnailPath,
		MusicPath:     res.MusicPath,
		Progress:      renderReporter(report),
	})
	if err != nil {
		return res, err
	}

	report("run %s complete: %s", res.RunID, res.OutputPath)
	return res, nil
}

// renderReporter converts ffmpeg progress blocks into progress log
// entries, throttled so a long render does not flood the stream.
func renderReporter(report func(string, ...any)) media.ProgressFunc {
	var last time.Time
	return func(p *media.Progress) {
		if time.Since(last) < 5*time.Second {
			return
		}
		last = time.Now()
		report("rendering: frame %d at %s (%s)", p.Frame, p.Time, p.Speed)
	}
}

func validate(req Request) error {
	if len(req.Videos) == 0 {
		return fmt.Errorf("no input videos")
	}
	for _, v := range req.Videos {
		if !util.FileExists(v) {
			return fmt.Errorf("input video not found: %s", v)
		}
	}
	return nil
}

// analyze summarizes all inputs concurrently, preserving input order.
func (o *Orchestrator) analyze(ctx context.Context, videos []string) ([]*summarize.VideoSummary, error) {
	summaries := make([]*summarize.VideoSummary, len(videos))
	g, gctx := errgroup.WithContext(ctx)
	limit := o.cfg.Concurrency
	if limit <= 0 {
		limit = 5
	}
	g.SetLimit(limit)

	for i, video := range videos {
		g.Go(func() error {
			s, err := o.summarizer.Summarize(gctx, video)
			if err != nil {
				return fmt.Errorf("%s: %w", video, err)
			}
			summaries[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

// runSideStages runs music synthesis and thumbnail production as a
// small dependency graph. Both stages are best-effort: failures are
// reported and the run continues without the artifact.
func (o *Orchestrator) runSideStages(ctx context.Context, req Request, res *Result, report func(string, ...any)) {
	wantMusic := req.GenerateMusic && o.synthesizer != nil
	wantThumb := !req.SkipThumbnail && o.frames != nil
	if !wantMusic && !wantThumb {
		return
	}

	g := weave.NewGraph()
	var musicTask, thumbTask *weave.Handle[string]

	if wantMusic {
		musicTask, _ = weave.AddTask(g, "music", func(tctx context.Context, _ weave.DependencyResolver) (string, error) {
			path := filepath.Join(res.RunDir, "music.mp3")
			target := util.FromSeconds(res.Script.TotalDuration)
			if err := o.synthesizer.Synthesize(tctx, res.Script.Music, collectMoods(res.Summaries), target, path); err != nil {
				return "", err
			}
			return path, nil
		})
	}

	if wantThumb {
		thumbTask, _ = weave.AddTask(g, "thumbnail", func(tctx context.Context, _ weave.DependencyResolver) (string, error) {
			return o.produceThumbnail(tctx, res)
		})
	}

	results, _, _ := g.Run(ctx, weave.WithErrorStrategy(weave.ContinueOnError))

	if musicTask != nil {
		if err := results.Error(musicTask); err != nil {
			report("music synthesis unavailable, continuing without: %v", err)
		} else if v, err := results.Value(musicTask); err == nil {
			res.MusicPath = v.(string)
			report("music track ready")
		}
	}
	if thumbTask != nil {
		if err := results.Error(thumbTask); err != nil {
			report("thumbnail unavailable, continuing without: %v", err)
		} else if v, err := results.Value(thumbTask); err == nil {
			res.ThumbnailPath = v.(string)
			report("thumbnail ready")
		}
	}
}

// produceThumbnail extracts the recommended frame and, when an image
// collaborator is available, styles it. A failed styling pass degrades
// to the raw frame.
func (o *Orchestrator) produceThumbnail(ctx context.Context, res *Result) (string, error) {
	first := res.Summaries[0]
	framePath := filepath.Join(res.RunDir, "frame.png")
	ts := util.FromSeconds(first.ThumbnailTimeframe)
	if err := o.frames.SelectRecommended(ctx, first.FilePath, ts, framePath); err != nil {
		return "", err
	}

	if o.thumbnails == nil {
		return framePath, nil
	}

	thumbPath := filepath.Join(res.RunDir, "thumbnail.png")
	if err := o.thumbnails.Compose(ctx, framePath, first.Summary, thumbPath); err != nil {
		o.logger.Warn().Err(err).Msg("thumbnail composition failed, using raw frame")
		return framePath, nil
	}
	return thumbPath, nil
}

func collectMoods(summaries []*summarize.VideoSummary) []string {
	seen := make(map[string]bool)
	var moods []string
	for _, s := range summaries {
		for _, m := range s.MoodTags {
			if !seen[m] {
				seen[m] = true
				moods = append(moods, m)
			}
		}
	}
	return moods
}

func saveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
