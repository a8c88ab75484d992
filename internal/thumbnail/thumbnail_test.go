package thumbnail

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelforge/reelforge/internal/gemini"
)

type stubImageClient struct {
	calls []bool
	reply func(modalityHint bool) ([]byte, error)
}

func (s *stubImageClient) GenerateImage(_ context.Context, _ string, _ []byte, _ string, modalityHint bool) ([]byte, error) {
	s.calls = append(s.calls, modalityHint)
	return s.reply(modalityHint)
}

func writeFrame(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "frame.png")
	require.NoError(t, os.WriteFile(path, []byte("frame-bytes"), 0o644))
	return path
}

func TestComposeFirstAttempt(t *testing.T) {
	stub := &stubImageClient{reply: func(bool) ([]byte, error) { return []byte("thumb"), nil }}
	c := NewComposer(stub, zerolog.Nop())

	out := filepath.Join(t.TempDir(), "thumb.png")
	require.NoError(t, c.Compose(context.Background(), writeFrame(t), "a beach video", out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "thumb", string(data))
	assert.Equal(t, []bool{true}, stub.calls, "first attempt carries the modality hint")
}

func TestComposeRetriesWithoutHint(t *testing.T) {
	stub := &stubImageClient{reply: func(hint bool) ([]byte, error) {
		if hint {
			return nil, fmt.Errorf("modality rejected")
		}
		return []byte("thumb"), nil
	}}
	c := NewComposer(stub, zerolog.Nop())

	out := filepath.Join(t.TempDir(), "thumb.png")
	require.NoError(t, c.Compose(context.Background(), writeFrame(t), "summary", out))
	assert.Equal(t, []bool{true, false}, stub.calls)
}

func TestComposeNoImageBothAttempts(t *testing.T) {
	stub := &stubImageClient{reply: func(bool) ([]byte, error) {
		return nil, fmt.Errorf("wrapped: %w", gemini.ErrNoImageData)
	}}
	c := NewComposer(stub, zerolog.Nop())

	err := c.Compose(context.Background(), writeFrame(t), "summary", filepath.Join(t.TempDir(), "thumb.png"))
	assert.ErrorIs(t, err, ErrNoImageInResponse)
	assert.Len(t, stub.calls, 2)
}

func TestComposeOtherError(t *testing.T) {
	netErr := errors.New("connection refused")
	stub := &stubImageClient{reply: func(bool) ([]byte, error) { return nil, netErr }}
	c := NewComposer(stub, zerolog.Nop())

	err := c.Compose(context.Background(), writeFrame(t), "summary", filepath.Join(t.TempDir(), "thumb.png"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoImageInResponse)
	assert.ErrorIs(t, err, netErr)
}

func TestComposeMissingFrame(t *testing.T) {
	c := NewComposer(&stubImageClient{reply: func(bool) ([]byte, error) { return nil, nil }}, zerolog.Nop())
	err := c.Compose(context.Background(), filepath.Join(t.TempDir(), "missing.png"), "summary", "out.png")
	assert.Error(t, err)
}
