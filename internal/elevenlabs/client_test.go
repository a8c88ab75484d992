package elevenlabs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelforge/reelforge/internal/config"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	t.Setenv("ELEVENLABS_API_KEY", "el-key")
	c, err := NewClient(config.ElevenLabsConfig{
		BaseURL:      srv.URL,
		OutputFormat: "mp3_44100_128",
	}, zerolog.Nop())
	require.NoError(t, err)
	return c
}

func TestNewClientMissingCredential(t *testing.T) {
	t.Setenv("ELEVENLABS_API_KEY", "")
	_, err := NewClient(config.ElevenLabsConfig{}, zerolog.Nop())
	assert.ErrorIs(t, err, ErrCredentialMissing)
}

func TestGenerateSound(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/sound-generation", r.URL.Path)
		assert.Equal(t, "el-key", r.Header.Get("xi-api-key"))

		var req soundRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "calm background sound", req.Text)
		assert.Equal(t, 12.0, req.DurationSeconds)
		assert.True(t, req.Loop)
		assert.Equal(t, 0.7, req.PromptInfluence)
		assert.Equal(t, "mp3_44100_128", req.OutputFormat)

		w.Write([]byte("audio-bytes"))
	})

	audio, err := c.GenerateSound(context.Background(), "calm background sound", 12*time.Second, true, 0.7)
	require.NoError(t, err)
	assert.Equal(t, []byte("audio-bytes"), audio)
}

func TestGenerateSoundAPIError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "invalid api key"}`))
	})

	_, err := c.GenerateSound(context.Background(), "prompt", 5*time.Second, false, 0.5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestGenerateSoundEmptyBody(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	_, err := c.GenerateSound(context.Background(), "prompt", 5*time.Second, false, 0.5)
	assert.Error(t, err)
}

func TestNewClientHonorsConfiguredTimeout(t *testing.T) {
	t.Setenv("ELEVENLABS_API_KEY", "el-key")

	c, err := NewClient(config.ElevenLabsConfig{Timeout: 7 * time.Second}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 7*time.Second, c.client.Timeout)

	// Zero falls back to the default.
	c, err = NewClient(config.ElevenLabsConfig{}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 120*time.Second, c.client.Timeout)
}

func TestGenerateSpeech(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/text-to-speech/voice123", r.URL.Path)
		assert.Equal(t, "mp3_44100_128", r.URL.Query().Get("output_format"))
		assert.Equal(t, "el-key", r.Header.Get("xi-api-key"))

		var req speechRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Welcome to the show.", req.Text)
		assert.Equal(t, "eleven_multilingual_v2", req.ModelID)

		w.Write([]byte("speech-bytes"))
	}))
	t.Cleanup(srv.Close)

	t.Setenv("ELEVENLABS_API_KEY", "el-key")
	c, err := NewClient(config.ElevenLabsConfig{
		BaseURL: srv.URL,
		VoiceID: "voice123",
	}, zerolog.Nop())
	require.NoError(t, err)

	audio, err := c.GenerateSpeech(context.Background(), "Welcome to the show.")
	require.NoError(t, err)
	assert.Equal(t, []byte("speech-bytes"), audio)
}

func TestGenerateSpeechEmptyBody(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	_, err := c.GenerateSpeech(context.Background(), "text")
	assert.Error(t, err)
}
