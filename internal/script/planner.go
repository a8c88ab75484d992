package script

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/reelforge/reelforge/internal/logging"
	"github.com/reelforge/reelforge/internal/summarize"
)

// TextClient is the slice of the collaborator API the planner needs.
type TextClient interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Planner turns video summaries and a creative intent into a Script.
// Plan always returns a usable script: collaborator failures fall back
// to a deterministic single-scene plan.
type Planner struct {
	client TextClient
	// durationTolerance is the allowed drift, in seconds, between the
	// planned scene durations and the target before rescaling kicks in.
	durationTolerance float64
	logger            zerolog.Logger
}

// NewPlanner builds a Planner. client may be nil.
func NewPlanner(client TextClient, durationTolerance float64, logger zerolog.Logger) *Planner {
	if durationTolerance <= 0 {
		durationTolerance = 5.0
	}
	return &Planner{
		client:            client,
		durationTolerance: durationTolerance,
		logger:            logging.Component(logger, "planner"),
	}
}

const planPromptTemplate = `You are a video editor planning a short-form video.

Creative intent: %s
Target duration: %.1f seconds

Source videos (JSON array of summaries, index order matters):
%s

Produce an editing plan as a single JSON object with this exact shape:
{
  "total_duration": <seconds>,
  "scenes": [
    {
      "scene_id": <int starting at 1>,
      "source_video": <zero-based index into the source list>,
      "start_time": <seconds into the source>,
      "end_time": <seconds into the source>,
      "duration": <seconds>,
      "description": "<what this scene shows>",
      "transition_in": "<cut|fade|crossfade>",
      "transition_out": "<cut|fade|crossfade>"
    }
  ],
  "music": {"mood": "<mood>", "bpm": <int>, "volume": <0.0-1.0>, "sync_points": [<seconds>]},
  "pacing": "<slow|moderate|fast>",
  "narrative_structure": "<description>",
  "visual_style": "<description>"
}

Scene durations must sum to approximately the target duration.
Respond with JSON only, no commentary.`

// Plan produces an editing plan for the given summaries. It never
// returns an error; degraded paths are logged and the fallback plan is
// used instead.
func (p *Planner) Plan(ctx context.Context, summaries []*summarize.VideoSummary, intent string, target time.Duration) *Script {
	s := p.generate(ctx, summaries, intent, target)
	if s == nil {
		// The fallback is already consistent and may legitimately be
		// shorter than the target, so it skips normalization.
		s = p.fallback(summaries, target)
	} else {
		p.normalize(s, target)
	}
	p.applyDefaults(s, summaries)
	return s
}

func (p *Planner) generate(ctx context.Context, summaries []*summarize.VideoSummary, intent string, target time.Duration) *Script {
	if p.client == nil {
		p.logger.Debug().Msg("no text client, using fallback plan")
		return nil
	}

	summaryJSON, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		p.logger.Warn().Err(err).Msg("marshal summaries failed, using fallback plan")
		return nil
	}

	prompt := fmt.Sprintf(planPromptTemplate, intent, target.Seconds(), summaryJSON)
	text, err := p.client.GenerateText(ctx, prompt)
	if err != nil {
		p.logger.Warn().Err(err).Msg("plan generation failed, using fallback plan")
		return nil
	}

	s, err := Parse(text)
	if err != nil {
		p.logger.Warn().Err(err).Msg("plan response unparseable, using fallback plan")
		return nil
	}
	return s
}

// fallback builds a deterministic single-scene plan from the first
// source video.
func (p *Planner) fallback(summaries []*summarize.VideoSummary, target time.Duration) *Script {
	duration := target.Seconds()
	var source string
	if len(summaries) > 0 {
		source = summaries[0].FilePath
		if summaries[0].Duration < duration {
			duration = summaries[0].Duration
		}
	}
	return &Script{
		TotalDuration: duration,
		Scenes: []Scene{{
			SceneID:       1,
			SourceVideo:   SourceRef{Index: 0, ByIndex: true},
			StartTime:     0,
			EndTime:       duration,
			Duration:      duration,
			Description:   fmt.Sprintf("single scene from %s", source),
			TransitionIn:  "fade",
			TransitionOut: "fade",
		}},
	}
}

// normalize repairs scene timing: missing durations are derived from
// the time range, and when the planned total drifts past the tolerance
// every scene is rescaled proportionally toward the target.
func (p *Planner) normalize(s *Script, target time.Duration) {
	var total float64
	for i := range s.Scenes {
		sc := &s.Scenes[i]
		if sc.Duration <= 0 {
			sc.Duration = sc.EndTime - sc.StartTime
		}
		if sc.Duration < 0 {
			sc.Duration = 0
		}
		sc.EndTime = sc.StartTime + sc.Duration
		total += sc.Duration
	}

	want := target.Seconds()
	if total > 0 && math.Abs(total-want) > p.durationTolerance {
		factor := want / total
		p.logger.Info().
			Float64("planned", total).
			Float64("target", want).
			Float64("factor", factor).
			Msg("rescaling scene durations")
		total = 0
		for i := range s.Scenes {
			sc := &s.Scenes[i]
			sc.Duration *= factor
			sc.EndTime = sc.StartTime + sc.Duration
			total += sc.Duration
		}
	}
	s.TotalDuration = total
}

func (p *Planner) applyDefaults(s *Script, summaries []*summarize.VideoSummary) {
	if s.Music.Mood == "" {
		s.Music.Mood = "upbeat"
		if len(summaries) > 0 && len(summaries[0].MoodTags) > 0 {
			s.Music.Mood = summaries[0].MoodTags[0]
		}
	}
	if s.Music.Volume <= 0 {
		s.Music.Volume = 0.5
	}
	if s.Pacing == "" {
		s.Pacing = "moderate"
	}
	if s.NarrativeStructure == "" {
		s.NarrativeStructure = "linear"
	}
	if s.VisualStyle == "" {
		s.VisualStyle = "standard"
	}
}
