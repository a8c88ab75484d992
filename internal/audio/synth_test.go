package audio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelforge/reelforge/internal/script"
)

type stubSoundClient struct {
	gotPrompt   string
	gotDuration time.Duration
	gotLoop     bool
	data        []byte
	err         error
}

func (s *stubSoundClient) GenerateSound(_ context.Context, prompt string, duration time.Duration, loop bool, _ float64) ([]byte, error) {
	s.gotPrompt = prompt
	s.gotDuration = duration
	s.gotLoop = loop
	return s.data, s.err
}

func TestBuildPrompt(t *testing.T) {
	music := script.Music{Mood: "dramatic", BPM: 120}
	got := BuildPrompt(music, []string{"energetic", "bright"})
	assert.Equal(t, "energetic, bright background sound, dramatic style, 120 BPM rhythm", got)
}

func TestBuildPromptSparse(t *testing.T) {
	assert.Equal(t, "background sound", BuildPrompt(script.Music{}, nil))
	assert.Equal(t, "calm background sound, calm style", BuildPrompt(script.Music{Mood: "calm"}, []string{"calm"}))
}

func TestClampDuration(t *testing.T) {
	assert.Equal(t, 5*time.Second, clampDuration(0))
	assert.Equal(t, 5*time.Second, clampDuration(-time.Second))
	assert.Equal(t, 500*time.Millisecond, clampDuration(100*time.Millisecond))
	assert.Equal(t, 30*time.Second, clampDuration(45*time.Second))
	assert.Equal(t, 12*time.Second, clampDuration(12*time.Second))
}

func TestSynthesizeWritesTrack(t *testing.T) {
	stub := &stubSoundClient{data: []byte("mp3-bytes")}
	s := NewSynthesizer(stub, 0.7, zerolog.Nop())

	out := filepath.Join(t.TempDir(), "music.mp3")
	err := s.Synthesize(context.Background(), script.Music{Mood: "fun", BPM: 100}, []string{"fun"}, 45*time.Second, out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "mp3-bytes", string(data))
	assert.Equal(t, 30*time.Second, stub.gotDuration, "duration clamped to API maximum")
	assert.True(t, stub.gotLoop)
	assert.Contains(t, stub.gotPrompt, "fun background sound")
}

func TestSynthesizeClientError(t *testing.T) {
	stub := &stubSoundClient{err: errors.New("quota exceeded")}
	s := NewSynthesizer(stub, 0.7, zerolog.Nop())

	err := s.Synthesize(context.Background(), script.Music{}, nil, 10*time.Second, filepath.Join(t.TempDir(), "m.mp3"))
	assert.ErrorIs(t, err, ErrSynthesis)
}

func TestSynthesizeNilClient(t *testing.T) {
	s := NewSynthesizer(nil, 0, zerolog.Nop())
	err := s.Synthesize(context.Background(), script.Music{}, nil, 10*time.Second, "unused")
	assert.ErrorIs(t, err, ErrSynthesis)
}
