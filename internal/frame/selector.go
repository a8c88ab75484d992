package frame

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/reelforge/reelforge/internal/logging"
	"github.com/reelforge/reelforge/internal/media"
	"github.com/reelforge/reelforge/pkg/util"
)

// ErrNoCandidates indicates no frame could be extracted from the video.
var ErrNoCandidates = errors.New("frame: no candidate frames could be extracted")

// VisionClient is the slice of the collaborator API used for ranked
// selection. A nil client falls back to quality scoring.
type VisionClient interface {
	GenerateImageContent(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}

// rankKeywords are scored against the vision model's assessment of a
// candidate frame.
var rankKeywords = []string{"engaging", "clear", "good", "best", "representative", "appealing"}

const (
	sampleInterval = time.Second
	maxCandidates  = 30
	rankCandidates = 5
	endMargin      = 100 * time.Millisecond
)

// Selector picks thumbnail frames from videos.
type Selector struct {
	exec   *media.Executor
	vision VisionClient
	logger zerolog.Logger
}

// NewSelector builds a Selector. vision may be nil.
func NewSelector(exec *media.Executor, vision VisionClient, logger zerolog.Logger) *Selector {
	return &Selector{
		exec:   exec,
		vision: vision,
		logger: logging.Component(logger, "frame"),
	}
}

// SelectAt extracts the frame at a fixed offset.
func (s *Selector) SelectAt(ctx context.Context, video string, offset time.Duration, output string) error {
	return s.exec.ExtractFrame(ctx, video, offset, output)
}

// SelectRecommended extracts the frame at a recommended timestamp,
// clamped into the video's valid range.
func (s *Selector) SelectRecommended(ctx context.Context, video string, timestamp time.Duration, output string) error {
	info, err := s.exec.ProbeVideo(ctx, video)
	if err != nil {
		return err
	}
	max := info.Duration - endMargin
	if max < 0 {
		max = 0
	}
	if timestamp < 0 {
		timestamp = 0
	}
	if timestamp > max {
		s.logger.Debug().
			Dur("requested", timestamp).
			Dur("clamped", max).
			Msg("recommended timestamp past end, clamping")
		timestamp = max
	}
	return s.exec.ExtractFrame(ctx, video, timestamp, output)
}

// SelectBest samples the video at a fixed interval, scores each frame
// by image quality, and writes the winner to output. Returns the
// winning timestamp.
func (s *Selector) SelectBest(ctx context.Context, video, workDir, output string) (time.Duration, error) {
	info, err := s.exec.ProbeVideo(ctx, video)
	if err != nil {
		return 0, err
	}

	timestamps := sampleTimestamps(info.Duration)
	var (
		bestScore float64 = -1
		bestTS    time.Duration
		bestPath  string
	)
	candidates := make([]string, 0, len(timestamps))
	defer func() {
		util.CleanupFiles(losers(candidates, bestPath)...)
	}()

	for i, ts := range timestamps {
		path := filepath.Join(workDir, fmt.Sprintf("candidate_%03d.png", i))
		if err := s.exec.ExtractFrame(ctx, video, ts, path); err != nil {
			s.logger.Debug().Err(err).Dur("timestamp", ts).Msg("candidate extraction failed, skipping")
			continue
		}
		candidates = append(candidates, path)

		q, err := ScoreFile(path)
		if err != nil {
			s.logger.Debug().Err(err).Str("path", path).Msg("candidate scoring failed, skipping")
			continue
		}
		if q.Score > bestScore {
			bestScore = q.Score
			bestTS = ts
			bestPath = path
		}
	}

	if bestPath == "" {
		return 0, ErrNoCandidates
	}

	s.logger.Info().
		Dur("timestamp", bestTS).
		Float64("score", bestScore).
		Msg("selected best frame")

	if err := os.Rename(bestPath, output); err != nil {
		return 0, fmt.Errorf("move selected frame: %w", err)
	}
	bestPath = output
	return bestTS, nil
}

// SelectRanked extracts evenly spaced candidates and asks the vision
// model to assess each, scoring the assessments by keyword. Without a
// vision client it degrades to quality scoring.
func (s *Selector) SelectRanked(ctx context.Context, video, workDir, output string) (time.Duration, error) {
	info, err := s.exec.ProbeVideo(ctx, video)
	if err != nil {
		return 0, err
	}

	n := rankCandidates
	step := info.Duration / time.Duration(n+1)
	var (
		bestScore float64 = -1
		bestTS    time.Duration
		bestPath  string
	)
	candidates := make([]string, 0, n)
	defer func() {
		util.CleanupFiles(losers(candidates, bestPath)...)
	}()

	for i := 1; i <= n; i++ {
		ts := step * time.Duration(i)
		path := filepath.Join(workDir, fmt.Sprintf("ranked_%03d.png", i))
		if err := s.exec.ExtractFrame(ctx, video, ts, path); err != nil {
			s.logger.Debug().Err(err).Dur("timestamp", ts).Msg("candidate extraction failed, skipping")
			continue
		}
		candidates = append(candidates, path)

		score, err := s.rankCandidate(ctx, path)
		if err != nil {
			s.logger.Debug().Err(err).Str("path", path).Msg("candidate ranking failed, skipping")
			continue
		}
		if score > bestScore {
			bestScore = score
			bestTS = ts
			bestPath = path
		}
	}

	if bestPath == "" {
		return 0, ErrNoCandidates
	}

	s.logger.Info().
		Dur("timestamp", bestTS).
		Float64("score", bestScore).
		Msg("selected ranked frame")

	if err := os.Rename(bestPath, output); err != nil {
		return 0, fmt.Errorf("move selected frame: %w", err)
	}
	bestPath = output
	return bestTS, nil
}

const rankPrompt = `Assess this video frame as a potential thumbnail.
Consider composition, clarity and how engaging it looks.
Respond with a short assessment.`

func (s *Selector) rankCandidate(ctx context.Context, path string) (float64, error) {
	if s.vision == nil {
		q, err := ScoreFile(path)
		if err != nil {
			return 0, err
		}
		return q.Score, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	assessment, err := s.vision.GenerateImageContent(ctx, rankPrompt, data, "image/png")
	if err != nil {
		return 0, err
	}
	return keywordScore(assessment), nil
}

// losers lists the candidate files that did not win selection.
func losers(candidates []string, winner string) []string {
	out := make([]string, 0, len(candidates))
	for _, p := range candidates {
		if p != winner {
			out = append(out, p)
		}
	}
	return out
}

// keywordScore counts positive assessment keywords.
func keywordScore(assessment string) float64 {
	lower := strings.ToLower(assessment)
	var score float64
	for _, kw := range rankKeywords {
		if strings.Contains(lower, kw) {
			score++
		}
	}
	return score
}

// sampleTimestamps returns candidate timestamps at a fixed interval,
// widening the interval for long videos to bound the candidate count.
func sampleTimestamps(duration time.Duration) []time.Duration {
	interval := sampleInterval
	if count := int(duration / interval); count > maxCandidates {
		interval = duration / time.Duration(maxCandidates)
	}

	var out []time.Duration
	for ts := time.Duration(0); ts < duration; ts += interval {
		out = append(out, ts)
	}
	if len(out) == 0 {
		out = append(out, 0)
	}
	return out
}
