// Package elevenlabs is a minimal HTTP client for the ElevenLabs
// sound-generation and text-to-speech endpoints used to synthesize
// background music and narration.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/reelforge/reelforge/internal/config"
	"github.com/reelforge/reelforge/internal/logging"
)

// ErrCredentialMissing indicates no API key is configured.
var ErrCredentialMissing = errors.New("elevenlabs: ELEVENLABS_API_KEY is not set")

// Client calls the ElevenLabs REST API.
type Client struct {
	cfg    config.ElevenLabsConfig
	apiKey string
	client *http.Client
	logger zerolog.Logger
}

// NewClient builds an ElevenLabs client, failing fast when the
// credential is absent.
func NewClient(cfg config.ElevenLabsConfig, logger zerolog.Logger) (*Client, error) {
	apiKey := cfg.APIKey()
	if apiKey == "" {
		return nil, ErrCredentialMissing
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.elevenlabs.io"
	}
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = "mp3_44100_128"
	}
	if cfg.VoiceID == "" {
		cfg.VoiceID = "21m00Tcm4TlvDq8ikWAM"
	}
	if cfg.SpeechModel == "" {
		cfg.SpeechModel = "eleven_multilingual_v2"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}

	return &Client{
		cfg:    cfg,
		apiKey: apiKey,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logging.Component(logger, "elevenlabs"),
	}, nil
}

type soundRequest struct {
	Text            string  `json:"text"`
	DurationSeconds float64 `json:"duration_seconds"`
	Loop            bool    `json:"loop"`
	PromptInfluence float64 `json:"prompt_influence"`
	OutputFormat    string  `json:"output_format"`
}

// GenerateSound synthesizes an audio track from a text prompt and
// returns the raw encoded bytes.
func (c *Client) GenerateSound(ctx context.Context, prompt string, duration time.Duration, loop bool, influence float64) ([]byte, error) {
	body, err := json.Marshal(soundRequest{
		Text:            prompt,
		DurationSeconds: duration.Seconds(),
		Loop:            loop,
		PromptInfluence: influence,
		OutputFormat:    c.cfg.OutputFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: marshal request: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/v1/sound-generation"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.apiKey)

	c.logger.Debug().
		Float64("duration_seconds", duration.Seconds()).
		Bool("loop", loop).
		Msg("requesting sound generation")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("elevenlabs: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: read audio stream: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("elevenlabs: empty audio response")
	}
	return audio, nil
}

type speechRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

// GenerateSpeech synthesizes narration for the given text using the
// configured voice and returns the raw encoded bytes.
func (c *Client) GenerateSpeech(ctx context.Context, text string) ([]byte, error) {
	body, err := json.Marshal(speechRequest{
		Text:    text,
		ModelID: c.cfg.SpeechModel,
	})
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s?output_format=%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.VoiceID, c.cfg.OutputFormat)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.apiKey)

	c.logger.Debug().
		Str("voice", c.cfg.VoiceID).
		Int("text_len", len(text)).
		Msg("requesting speech synthesis")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("elevenlabs: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: read audio stream: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("elevenlabs: empty audio response")
	}
	return audio, nil
}
