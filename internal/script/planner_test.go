package script

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelforge/reelforge/internal/summarize"
)

type stubTextClient struct {
	response string
	err      error
}

func (s *stubTextClient) GenerateText(context.Context, string) (string, error) {
	return s.response, s.err
}

func testSummaries() []*summarize.VideoSummary {
	return []*summarize.VideoSummary{
		{FilePath: "/videos/a.mp4", Duration: 45, MoodTags: []string{"energetic", "bright"}},
		{FilePath: "/videos/b.mp4", Duration: 20, MoodTags: []string{"calm"}},
	}
}

func TestPlanWithoutClientFallsBack(t *testing.T) {
	p := NewPlanner(nil, 5.0, zerolog.Nop())
	s := p.Plan(context.Background(), testSummaries(), "test", 30*time.Second)

	require.Len(t, s.Scenes, 1)
	assert.True(t, s.Scenes[0].SourceVideo.ByIndex)
	assert.Equal(t, 0, s.Scenes[0].SourceVideo.Index)
	assert.InDelta(t, 30.0, s.TotalDuration, 0.01)
	assert.Equal(t, "energetic", s.Music.Mood)
	assert.Equal(t, 0.5, s.Music.Volume)
	assert.Equal(t, "moderate", s.Pacing)
}

func TestPlanFallbackShorterSource(t *testing.T) {
	p := NewPlanner(nil, 5.0, zerolog.Nop())
	summaries := []*summarize.VideoSummary{{FilePath: "/videos/short.mp4", Duration: 8}}
	s := p.Plan(context.Background(), summaries, "test", 30*time.Second)

	require.Len(t, s.Scenes, 1)
	assert.InDelta(t, 8.0, s.Scenes[0].Duration, 0.01)
}

func TestPlanClientErrorFallsBack(t *testing.T) {
	p := NewPlanner(&stubTextClient{err: errors.New("boom")}, 5.0, zerolog.Nop())
	s := p.Plan(context.Background(), testSummaries(), "test", 30*time.Second)
	require.Len(t, s.Scenes, 1)
}

func TestPlanUnparseableFallsBack(t *testing.T) {
	p := NewPlanner(&stubTextClient{response: "sorry, no plan today"}, 5.0, zerolog.Nop())
	s := p.Plan(context.Background(), testSummaries(), "test", 30*time.Second)
	require.Len(t, s.Scenes, 1)
}

func TestPlanRescalesDrift(t *testing.T) {
	// The plan sums to 60s against a 30s target, beyond the 5s tolerance.
	response := `{
		"total_duration": 60,
		"scenes": [
			{"scene_id": 1, "source_video": 0, "start_time": 0, "end_time": 40, "duration": 40,
			 "transition_in": "fade", "transition_out": "crossfade"},
			{"scene_id": 2, "source_video": 1, "start_time": 5, "end_time": 25, "duration": 20,
			 "transition_in": "crossfade", "transition_out": "fade"}
		],
		"music": {"mood": "dramatic", "bpm": 120, "volume": 0.6}
	}`
	p := NewPlanner(&stubTextClient{response: response}, 5.0, zerolog.Nop())
	s := p.Plan(context.Background(), testSummaries(), "test", 30*time.Second)

	require.Len(t, s.Scenes, 2)

	var total float64
	for _, sc := range s.Scenes {
		total += sc.Duration
		assert.InDelta(t, sc.StartTime+sc.Duration, sc.EndTime, 0.001, "end must equal start plus duration")
	}
	assert.InDelta(t, 30.0, total, 0.01)
	assert.InDelta(t, 30.0, s.TotalDuration, 0.01)

	// Proportions survive rescaling.
	assert.InDelta(t, 2.0, s.Scenes[0].Duration/s.Scenes[1].Duration, 0.01)
	assert.Equal(t, "dramatic", s.Music.Mood)
}

func TestPlanWithinToleranceUntouched(t *testing.T) {
	response := `{
		"total_duration": 32,
		"scenes": [
			{"scene_id": 1, "source_video": 0, "start_time": 0, "end_time": 32, "duration": 32,
			 "transition_in": "fade", "transition_out": "fade"}
		],
		"music": {"mood": "fun", "volume": 0.5}
	}`
	p := NewPlanner(&stubTextClient{response: response}, 5.0, zerolog.Nop())
	s := p.Plan(context.Background(), testSummaries(), "test", 30*time.Second)

	require.Len(t, s.Scenes, 1)
	assert.True(t, math.Abs(s.Scenes[0].Duration-32.0) < 0.001, "within tolerance, no rescale")
}

func TestPlanDerivesMissingDuration(t *testing.T) {
	response := `{
		"scenes": [
			{"scene_id": 1, "source_video": 0, "start_time": 2, "end_time": 30,
			 "transition_in": "cut", "transition_out": "cut"}
		]
	}`
	p := NewPlanner(&stubTextClient{response: response}, 5.0, zerolog.Nop())
	s := p.Plan(context.Background(), testSummaries(), "test", 30*time.Second)

	require.Len(t, s.Scenes, 1)
	assert.InDelta(t, 28.0, s.Scenes[0].Duration, 0.01)
	assert.Equal(t, "energetic", s.Music.Mood)
	assert.Equal(t, 0.5, s.Music.Volume)
	assert.Equal(t, "linear", s.NarrativeStructure)
	assert.Equal(t, "standard", s.VisualStyle)
}
