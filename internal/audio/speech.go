package audio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/reelforge/reelforge/internal/logging"
)

// ErrNoDialogue indicates the narration input contained no speakable
// text after parsing.
var ErrNoDialogue = errors.New("audio: no dialogue found in input")

// SpeechClient is the slice of the collaborator API the narrator needs.
type SpeechClient interface {
	GenerateSpeech(ctx context.Context, text string) ([]byte, error)
}

// stageDirectionRe and speakerLabelRe strip bracketed stage directions
// and leading speaker names from a dialogue line.
var (
	stageDirectionRe = regexp.MustCompile(`\[.*?\]|\(.*?\)`)
	speakerLabelRe   = regexp.MustCompile(`^[^:\n]{0,40}:`)
)

var srtBlockRe = regexp.MustCompile(`(?m)^\d+\s*\n\d{2}:\d{2}:\d{2},\d{3}\s*-->`)

// Narrator converts narration text or subtitle files into speech
// tracks.
type Narrator struct {
	client SpeechClient
	logger zerolog.Logger
}

// NewNarrator builds a Narrator. client may be nil, in which case
// Narrate reports the collaborator as unavailable.
func NewNarrator(client SpeechClient, logger zerolog.Logger) *Narrator {
	return &Narrator{
		client: client,
		logger: logging.Component(logger, "audio"),
	}
}

// Narrate extracts dialogue from content per format ("text", "srt",
// "vtt", "json" or "auto"), synthesizes it and writes the track to
// output.
func (n *Narrator) Narrate(ctx context.Context, content, format, output string) error {
	if n.client == nil {
		return fmt.Errorf("%w: no speech client configured", ErrSynthesis)
	}

	text, err := DialogueText(content, format)
	if err != nil {
		return err
	}

	n.logger.Info().
		Int("text_len", len(text)).
		Msg("synthesizing narration")

	data, err := n.client.GenerateSpeech(ctx, text)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSynthesis, err)
	}

	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("%w: write track: %v", ErrSynthesis, err)
	}
	return nil
}

// DialogueText extracts the speakable text from narration input.
// "auto" detects the format from the content itself.
func DialogueText(content, format string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", ErrNoDialogue
	}
	if format == "" || format == "auto" {
		format = DetectFormat(content)
	}

	var lines []string
	switch format {
	case "srt":
		lines = parseSRT(content)
	case "vtt":
		lines = parseVTT(content)
	case "json":
		lines = parseJSONScenes(content)
	default:
		return strings.TrimSpace(content), nil
	}

	if len(lines) == 0 {
		return "", fmt.Errorf("%w: format %s", ErrNoDialogue, format)
	}
	return strings.Join(lines, " "), nil
}

// DetectFormat guesses the narration input format from its content.
func DetectFormat(content string) string {
	trimmed := strings.TrimSpace(content)
	switch {
	case strings.HasPrefix(trimmed, "WEBVTT"):
		return "vtt"
	case strings.HasPrefix(trimmed, "{"):
		return "json"
	case srtBlockRe.MatchString(content):
		return "srt"
	}
	return "text"
}

// parseSRT pulls the dialogue lines out of SRT cue blocks, dropping
// indexes, timestamps and speaker labels.
func parseSRT(content string) []string {
	var out []string
	for _, block := range strings.Split(strings.TrimSpace(content), "\n\n") {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) < 3 {
			continue
		}
		dialogue := cleanDialogue(strings.Join(lines[2:], " "))
		if dialogue != "" {
			out = append(out, dialogue)
		}
	}
	return out
}

// parseVTT pulls the dialogue lines out of WebVTT cue blocks. Cues may
// carry an identifier line before the timing line.
func parseVTT(content string) []string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "WEBVTT")

	var out []string
	for _, block := range strings.Split(strings.TrimSpace(content), "\n\n") {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		timing := -1
		for i, line := range lines {
			if strings.Contains(line, "-->") {
				timing = i
				break
			}
		}
		if timing == -1 || timing+1 >= len(lines) {
			continue
		}
		dialogue := cleanDialogue(strings.Join(lines[timing+1:], " "))
		if dialogue != "" {
			out = append(out, dialogue)
		}
	}
	return out
}

// parseJSONScenes reads scene dialogue from a script-shaped JSON
// payload.
func parseJSONScenes(content string) []string {
	var doc struct {
		Scenes []struct {
			Dialogue string `json:"dialogue"`
		} `json:"scenes"`
	}
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil
	}

	var out []string
	for _, sc := range doc.Scenes {
		if d := strings.TrimSpace(sc.Dialogue); d != "" {
			out = append(out, d)
		}
	}
	return out
}

func cleanDialogue(line string) string {
	line = strings.TrimSpace(stageDirectionRe.ReplaceAllString(line, ""))
	return strings.TrimSpace(speakerLabelRe.ReplaceAllString(line, ""))
}
