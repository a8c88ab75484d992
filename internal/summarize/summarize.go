// Package summarize produces per-video content summaries that feed the
// script planner: technical metadata from a probe, plus mood tags, a
// prose summary and a recommended thumbnail timestamp from vision
// analysis. Vision analysis is best-effort; probe failures are fatal.
package summarize

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/reelforge/reelforge/internal/logging"
	"github.com/reelforge/reelforge/internal/media"
	"github.com/reelforge/reelforge/pkg/util"
)

// VideoSummary captures what the planner needs to know about one source
// video. Durations are in float seconds so the JSON round-trips into
// collaborator prompts without unit conversion.
type VideoSummary struct {
	FilePath           string   `json:"file_path"`
	Duration           float64  `json:"duration"`
	Resolution         string   `json:"resolution"`
	FPS                float64  `json:"fps"`
	FrameCount         int64    `json:"frame_count"`
	Summary            string   `json:"summary"`
	MoodTags           []string `json:"mood_tags"`
	ThumbnailTimeframe float64  `json:"thumbnail_timeframe"`
}

// VisionClient is the slice of the collaborator API the summarizer
// needs. A nil client disables analysis and yields metadata-only
// summaries.
type VisionClient interface {
	GenerateVideoContent(ctx context.Context, prompt string, video []byte, mimeType string, fps float64) (string, error)
}

// moodVocabulary is the closed set of tags the planner understands.
// Analysis responses are filtered against it.
var moodVocabulary = []string{
	"energetic", "calm", "dramatic", "fun", "professional", "casual",
	"bright", "dark", "colorful", "minimalist", "fast-paced", "slow-paced",
}

var thumbnailTimestampRe = regexp.MustCompile(`(?i)THUMBNAIL_TIMESTAMP:\s*([\d.]+)\s*seconds?`)

// Summarizer analyzes source videos.
type Summarizer struct {
	exec        *media.Executor
	client      VisionClient
	analysisFPS float64
	logger      zerolog.Logger
}

// New builds a Summarizer. client may be nil.
func New(exec *media.Executor, client VisionClient, analysisFPS float64, logger zerolog.Logger) *Summarizer {
	if analysisFPS <= 0 {
		analysisFPS = 2.0
	}
	return &Summarizer{
		exec:        exec,
		client:      client,
		analysisFPS: analysisFPS,
		logger:      logging.Component(logger, "summarize"),
	}
}

const analysisPrompt = `Analyze this video and respond with:
1. A concise summary of the visual content, subjects and activity (2-4 sentences).
2. Mood tags drawn only from this list: energetic, calm, dramatic, fun, professional, casual, bright, dark, colorful, minimalist, fast-paced, slow-paced.
3. The single best timestamp for a thumbnail frame, on its own line in the exact format:
THUMBNAIL_TIMESTAMP: <seconds> seconds`

// Summarize probes the video and, when a vision client is available,
// enriches the summary with content analysis. Probe errors are fatal;
// analysis errors degrade to a metadata-only summary.
func (s *Summarizer) Summarize(ctx context.Context, filePath string) (*VideoSummary, error) {
	info, err := s.exec.ProbeVideo(ctx, filePath)
	if err != nil {
		return nil, err
	}

	summary := &VideoSummary{
		FilePath:           filePath,
		Duration:           util.Seconds(info.Duration),
		Resolution:         fmt.Sprintf("%dx%d", info.Width, info.Height),
		FPS:                info.FPS,
		FrameCount:         info.FrameCount,
		MoodTags:           []string{},
		ThumbnailTimeframe: util.Seconds(info.Duration) / 2,
	}

	if s.client == nil {
		s.logger.Debug().Str("video", filePath).Msg("no vision client, metadata-only summary")
		summary.Summary = "content analysis skipped: no vision collaborator available"
		return summary, nil
	}

	videoBytes, err := os.ReadFile(filePath)
	if err != nil {
		s.logger.Warn().Err(err).Str("video", filePath).Msg("read for analysis failed, continuing without")
		return summary, nil
	}

	text, err := s.client.GenerateVideoContent(ctx, analysisPrompt, videoBytes, "video/mp4", s.analysisFPS)
	if err != nil {
		s.logger.Warn().Err(err).Str("video", filePath).Msg("vision analysis failed, continuing without")
		return summary, nil
	}

	s.applyAnalysis(summary, text, info.Duration)
	return summary, nil
}

// applyAnalysis folds the raw analysis text into the summary.
func (s *Summarizer) applyAnalysis(summary *VideoSummary, text string, duration time.Duration) {
	summary.MoodTags = extractMoodTags(text)
	if len(summary.MoodTags) == 0 {
		// Analysis ran but surfaced nothing usable from the vocabulary.
		summary.MoodTags = []string{"general"}
	}

	if ts, ok := extractThumbnailTimestamp(text); ok {
		summary.ThumbnailTimeframe = clampTimestamp(ts, util.Seconds(duration))
	}

	summary.Summary = stripTimestampLine(text)
}

func extractMoodTags(text string) []string {
	lower := strings.ToLower(text)
	var tags []string
	for _, mood := range moodVocabulary {
		if strings.Contains(lower, mood) {
			tags = append(tags, mood)
		}
	}
	return tags
}

func extractThumbnailTimestamp(text string) (float64, bool) {
	m := thumbnailTimestampRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	ts, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return ts, true
}

// clampTimestamp keeps the recommendation inside [0, duration); an
// out-of-range value falls back to the midpoint.
func clampTimestamp(ts, duration float64) float64 {
	if ts < 0 || ts >= duration {
		return duration / 2
	}
	return ts
}

func stripTimestampLine(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if thumbnailTimestampRe.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
