// Package audio synthesizes background music from a script's music
// description and narration from text or subtitle input, via
// generative-audio collaborators.
package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/reelforge/reelforge/internal/logging"
	"github.com/reelforge/reelforge/internal/script"
)

// ErrSynthesis wraps failures from the sound-generation collaborator.
var ErrSynthesis = errors.New("audio: sound synthesis failed")

// SoundClient is the slice of the collaborator API the synthesizer
// needs.
type SoundClient interface {
	GenerateSound(ctx context.Context, prompt string, duration time.Duration, loop bool, influence float64) ([]byte, error)
}

const (
	// The sound-generation API accepts requests between 0.5 and 30
	// seconds; longer tracks are looped at mix time.
	minTrackDuration = 500 * time.Millisecond
	maxTrackDuration = 30 * time.Second

	defaultDuration  = 5 * time.Second
	defaultInfluence = 0.7
)

// Synthesizer produces background music files.
type Synthesizer struct {
	client    SoundClient
	influence float64
	logger    zerolog.Logger
}

// NewSynthesizer builds a Synthesizer. client may be nil, in which case
// Synthesize reports the collaborator as unavailable.
func NewSynthesizer(client SoundClient, influence float64, logger zerolog.Logger) *Synthesizer {
	if influence <= 0 || influence > 1 {
		influence = defaultInfluence
	}
	return &Synthesizer{
		client:    client,
		influence: influence,
		logger:    logging.Component(logger, "audio"),
	}
}

// Synthesize generates a music track matching the script's music
// description and writes it to output.
func (s *Synthesizer) Synthesize(ctx context.Context, music script.Music, moods []string, duration time.Duration, output string) error {
	if s.client == nil {
		return fmt.Errorf("%w: no sound client configured", ErrSynthesis)
	}

	prompt := BuildPrompt(music, moods)
	duration = clampDuration(duration)

	s.logger.Info().
		Str("prompt", prompt).
		Dur("duration", duration).
		Msg("synthesizing music track")

	data, err := s.client.GenerateSound(ctx, prompt, duration, true, s.influence)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSynthesis, err)
	}

	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("%w: write track: %v", ErrSynthesis, err)
	}
	return nil
}

// BuildPrompt composes the sound-generation prompt from the script's
// music description and the source videos' mood tags.
func BuildPrompt(music script.Music, moods []string) string {
	var parts []string
	if len(moods) > 0 {
		parts = append(parts, strings.Join(moods, ", ")+" background sound")
	} else {
		parts = append(parts, "background sound")
	}
	if music.Mood != "" {
		parts = append(parts, music.Mood+" style")
	}
	if music.BPM > 0 {
		parts = append(parts, fmt.Sprintf("%d BPM rhythm", music.BPM))
	}
	return strings.Join(parts, ", ")
}

func clampDuration(d time.Duration) time.Duration {
	switch {
	case d <= 0:
		return defaultDuration
	case d < minTrackDuration:
		return minTrackDuration
	case d > maxTrackDuration:
		return maxTrackDuration
	}
	return d
}
