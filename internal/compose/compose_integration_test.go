package compose_test

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/reelforge/reelforge/internal/compose"
	"github.com/reelforge/reelforge/internal/config"
	"github.com/reelforge/reelforge/internal/media"
	"github.com/reelforge/reelforge/internal/script"
)

func skipIfNoFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not found in PATH")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not found in PATH")
	}
}

func makeTestVideo(t *testing.T, dir, name, size string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	cmd := exec.Command("ffmpeg", "-y",
		"-f", "lavfi", "-i", "testsrc=duration=4:size="+size+":rate=30",
		"-f", "lavfi", "-i", "sine=frequency=440:duration=4",
		"-c:v", "libx264", "-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-shortest",
		path,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("fixture render failed: %v\n%s", err, out)
	}
	return path
}

func twoSceneScript(in2, out1 string) *script.Script {
	return &script.Script{
		TotalDuration: 4,
		Scenes: []script.Scene{
			{
				SceneID:       1,
				SourceVideo:   script.SourceRef{Index: 0, ByIndex: true},
				StartTime:     0,
				EndTime:       2,
				Duration:      2,
				TransitionIn:  "fade",
				TransitionOut: out1,
			},
			{
				SceneID:       2,
				SourceVideo:   script.SourceRef{Index: 1, ByIndex: true},
				StartTime:     1,
				EndTime:       3,
				Duration:      2,
				TransitionIn:  in2,
				TransitionOut: "fade",
			},
		},
		Music: script.Music{Volume: 0.5},
	}
}

func newCompositor(t *testing.T) (*compose.Compositor, *media.Executor) {
	t.Helper()
	logger := zerolog.New(os.Stderr)
	exec, err := media.New(logger, 2, "ultrafast", 30)
	if err != nil {
		t.Fatalf("executor: %v", err)
	}
	c := compose.NewCompositor(exec, config.ComposeConfig{
		TransitionDuration: 500 * time.Millisecond,
		DefaultMusicVolume: 0.5,
	}, logger)
	return c, exec
}

func TestComposeTwoScenes(t *testing.T) {
	skipIfNoFFmpeg(t)

	dir := t.TempDir()
	// Mixed source geometry; segments are normalized onto the first
	// source's canvas before the concat demuxer joins them.
	sources := []string{
		makeTestVideo(t, dir, "a.mp4", "320x240"),
		makeTestVideo(t, dir, "b.mp4", "480x360"),
	}
	c, e := newCompositor(t)

	output := filepath.Join(dir, "final.mp4")
	err := c.Compose(context.Background(), twoSceneScript("cut", "cut"), sources, compose.Options{
		Output:  output,
		WorkDir: dir,
		RunID:   "itest001",
	})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}

	info, err := e.ProbeVideo(context.Background(), output)
	if err != nil {
		t.Fatalf("probe output: %v", err)
	}
	if info.Duration < 3500*time.Millisecond || info.Duration > 4500*time.Millisecond {
		t.Errorf("output duration %v, want ~4s", info.Duration)
	}
	if info.Width != 320 || info.Height != 240 {
		t.Errorf("output geometry %dx%d, want the first source's 320x240", info.Width, info.Height)
	}

	// Segment artifacts are cleaned up, sources are not.
	entries, err := filepath.Glob(filepath.Join(dir, "segment_itest001_*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("segment artifacts left behind: %v", entries)
	}
	for _, src := range sources {
		if _, err := os.Stat(src); err != nil {
			t.Errorf("source video missing after compose: %s", src)
		}
	}
}

func TestComposeCrossfadeShortensTimeline(t *testing.T) {
	skipIfNoFFmpeg(t)

	dir := t.TempDir()
	sources := []string{
		makeTestVideo(t, dir, "a.mp4", "320x240"),
		makeTestVideo(t, dir, "b.mp4", "320x240"),
	}
	c, e := newCompositor(t)

	var renderUpdates int
	output := filepath.Join(dir, "final.mp4")
	err := c.Compose(context.Background(), twoSceneScript("crossfade", "crossfade"), sources, compose.Options{
		Output:  output,
		WorkDir: dir,
		RunID:   "itest002",
		Progress: func(p *media.Progress) {
			if p.Frame > 0 {
				renderUpdates++
			}
		},
	})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}

	info, err := e.ProbeVideo(context.Background(), output)
	if err != nil {
		t.Fatalf("probe output: %v", err)
	}

	// Two 2s scenes overlapping by 0.5s come out near 3.5s.
	if info.Duration < 3*time.Second || info.Duration > 4*time.Second {
		t.Errorf("output duration %v, want ~3.5s", info.Duration)
	}

	// The timeline render reports progress through the callback.
	if renderUpdates == 0 {
		t.Error("expected at least one render progress update")
	}
}

func TestComposeUnknownSource(t *testing.T) {
	skipIfNoFFmpeg(t)

	dir := t.TempDir()
	sources := []string{makeTestVideo(t, dir, "a.mp4", "320x240")}
	c, _ := newCompositor(t)

	s := twoSceneScript("cut", "cut")
	s.Scenes[1].SourceVideo = script.SourceRef{Path: "/videos/missing.mp4"}

	err := c.Compose(context.Background(), s, sources, compose.Options{
		Output:  filepath.Join(dir, "final.mp4"),
		WorkDir: dir,
		RunID:   "itest003",
	})
	if err == nil {
		t.Fatal("expected error for unknown source")
	}

	var cerr *compose.CompositionError
	if !errors.As(err, &cerr) {
		t.Fatalf("error type = %T, want *CompositionError", err)
	}
	if !errors.Is(err, compose.ErrSourceVideoNotFound) {
		t.Errorf("error = %v, want ErrSourceVideoNotFound in chain", err)
	}
}
