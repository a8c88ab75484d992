// Package thumbnail turns a selected video frame into a styled
// thumbnail image via the image-generation collaborator.
package thumbnail

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/reelforge/reelforge/internal/gemini"
	"github.com/reelforge/reelforge/internal/logging"
)

// ErrNoImageInResponse indicates the collaborator answered with text
// instead of an image on both attempts.
var ErrNoImageInResponse = errors.New("thumbnail: collaborator returned no image")

// ImageClient is the slice of the collaborator API the composer needs.
type ImageClient interface {
	GenerateImage(ctx context.Context, prompt string, image []byte, mimeType string, modalityHint bool) ([]byte, error)
}

// Composer produces thumbnail images from base frames.
type Composer struct {
	client ImageClient
	logger zerolog.Logger
}

// NewComposer builds a Composer.
func NewComposer(client ImageClient, logger zerolog.Logger) *Composer {
	return &Composer{
		client: client,
		logger: logging.Component(logger, "thumbnail"),
	}
}

const promptTemplate = `Transform this video frame into an eye-catching thumbnail.
Enhance the colors and contrast, sharpen the subject, and give it a
polished, professional look while keeping the original composition.
Video context: %s
Return only the edited image.`

// Compose sends the base frame to the image model and writes the
// generated thumbnail to output. The first attempt requests an image
// response modality; deployments that reject the hint get a second
// attempt without it.
func (c *Composer) Compose(ctx context.Context, framePath, summary, output string) error {
	frame, err := os.ReadFile(framePath)
	if err != nil {
		return fmt.Errorf("thumbnail: read base frame: %w", err)
	}

	prompt := fmt.Sprintf(promptTemplate, summary)

	img, err := c.client.GenerateImage(ctx, prompt, frame, "image/png", true)
	if err != nil {
		c.logger.Warn().Err(err).Msg("image generation with modality hint failed, retrying without")
		img, err = c.client.GenerateImage(ctx, prompt, frame, "image/png", false)
	}
	if err != nil {
		if errors.Is(err, gemini.ErrNoImageData) {
			return fmt.Errorf("%w: %v", ErrNoImageInResponse, err)
		}
		return fmt.Errorf("thumbnail: image generation: %w", err)
	}

	if err := os.WriteFile(output, img, 0o644); err != nil {
		return fmt.Errorf("thumbnail: write image: %w", err)
	}
	c.logger.Info().Str("output", output).Msg("thumbnail composed")
	return nil
}
