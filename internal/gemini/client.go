// Package gemini is a typed HTTP client for the Gemini generateContent
// API, covering the three collaborator capabilities the pipeline
// consumes: text planning, vision analysis and image generation.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
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

var (
	// ErrCredentialMissing indicates no API key is configured.
	ErrCredentialMissing = errors.New("gemini: GOOGLE_API_KEY is not set")

	// ErrNoImageData indicates a generate-image response carried no
	// inline image payload in any recognized shape.
	ErrNoImageData = errors.New("gemini: response contained no image data")
)

// Client calls the Gemini REST API.
type Client struct {
	cfg    config.GeminiConfig
	apiKey string
	client *http.Client
	logger zerolog.Logger
}

// NewClient builds a Gemini client. It fails fast when the credential
// is absent; callers that prefer degrade-not-fail pass a nil client to
// their consumers instead.
func NewClient(cfg config.GeminiConfig, logger zerolog.Logger) (*Client, error) {
	apiKey := cfg.APIKey()
	if apiKey == "" {
		return nil, ErrCredentialMissing
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com"
	}

	return &Client{
		cfg:    cfg,
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
		logger: logging.Component(logger, "gemini"),
	}, nil
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text          string         `json:"text,omitempty"`
	InlineData    *inlineData    `json:"inlineData,omitempty"`
	VideoMetadata *videoMetadata `json:"videoMetadata,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"` // base64 encoded
}

type videoMetadata struct {
	FPS float64 `json:"fps,omitempty"`
}

type generationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type candidate struct {
	Content content `json:"content"`
}

type generateResponse struct {
	Candidates []candidate `json:"candidates"`
	// Some proxy deployments flatten the first candidate's parts to the
	// top level; the extractors below probe both shapes.
	Parts []part `json:"parts"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (c *Client) generate(ctx context.Context, model string, req generateRequest) (*generateResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("gemini: marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent",
		strings.TrimRight(c.cfg.BaseURL, "/"), model)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gemini: request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gemini: read response: %w", err)
	}

	var out generateResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("gemini: parse response (status %d): %w", resp.StatusCode, err)
	}
	if out.Error != nil {
		return nil, fmt.Errorf("gemini: api error %d (%s): %s", out.Error.Code, out.Error.Status, out.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini: unexpected status %d", resp.StatusCode)
	}

	return &out, nil
}

// GenerateText sends a text-only prompt to the planning model.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := c.generate(ctx, c.cfg.TextModel, generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}
	return extractText(resp), nil
}

// GenerateVideoContent sends a prompt plus inline video bytes to the
// vision model, sampled at the given fps.
func (c *Client) GenerateVideoContent(ctx context.Context, prompt string, video []byte, mimeType string, fps float64) (string, error) {
	if mimeType == "" {
		mimeType = "video/mp4"
	}
	resp, err := c.generate(ctx, c.cfg.VisionModel, generateRequest{
		Contents: []content{{
			Role: "user",
			Parts: []part{
				{Text: prompt},
				{
					InlineData:    &inlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(video)},
					VideoMetadata: &videoMetadata{FPS: fps},
				},
			},
		}},
	})
	if err != nil {
		return "", err
	}
	return extractText(resp), nil
}

// GenerateImageContent sends a prompt plus one still image to the
// vision model and returns its text response. Used for frame ranking.
func (c *Client) GenerateImageContent(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	if mimeType == "" {
		mimeType = "image/png"
	}
	resp, err := c.generate(ctx, c.cfg.VisionModel, generateRequest{
		Contents: []content{{
			Role: "user",
			Parts: []part{
				{Text: prompt},
				{InlineData: &inlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(image)}},
			},
		}},
	})
	if err != nil {
		return "", err
	}
	return extractText(resp), nil
}

// GenerateImage asks the image model to produce a new image from a
// prompt and a base image. Some deployments reject the image response
// modality hint; callers control it and may retry without.
func (c *Client) GenerateImage(ctx context.Context, prompt string, image []byte, mimeType string, modalityHint bool) ([]byte, error) {
	if mimeType == "" {
		mimeType = "image/png"
	}
	req := generateRequest{
		Contents: []content{{
			Role: "user",
			Parts: []part{
				{Text: prompt},
				{InlineData: &inlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(image)}},
			},
		}},
	}
	if modalityHint {
		req.GenerationConfig = &generationConfig{ResponseModalities: []string{"IMAGE"}}
	}

	resp, err := c.generate(ctx, c.cfg.ImageModel, req)
	if err != nil {
		return nil, err
	}
	return extractImage(resp)
}
