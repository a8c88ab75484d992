package gemini

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func TestExtractImageFromCandidates(t *testing.T) {
	resp := &generateResponse{
		Candidates: []candidate{{Content: content{Parts: []part{
			{Text: "here is your image"},
			{InlineData: &inlineData{MimeType: "image/png", Data: b64("img")}},
		}}}},
	}
	img, err := extractImage(resp)
	require.NoError(t, err)
	assert.Equal(t, []byte("img"), img)
}

func TestExtractImageFromTopLevelParts(t *testing.T) {
	resp := &generateResponse{
		Parts: []part{{InlineData: &inlineData{MimeType: "image/png", Data: b64("flat")}}},
	}
	img, err := extractImage(resp)
	require.NoError(t, err)
	assert.Equal(t, []byte("flat"), img)
}

func TestExtractImageTextOnly(t *testing.T) {
	resp := &generateResponse{
		Candidates: []candidate{{Content: content{Parts: []part{
			{Text: "I cannot generate images in this mode."},
		}}}},
	}
	_, err := extractImage(resp)
	assert.ErrorIs(t, err, ErrNoImageData)
	assert.Contains(t, err.Error(), "cannot generate")
}

func TestExtractImageEmptyResponse(t *testing.T) {
	_, err := extractImage(&generateResponse{})
	assert.ErrorIs(t, err, ErrNoImageData)
}

func TestExtractTextJoinsFirstCandidate(t *testing.T) {
	resp := &generateResponse{
		Candidates: []candidate{
			{Content: content{Parts: []part{{Text: "part one "}, {Text: "part two"}}}},
			{Content: content{Parts: []part{{Text: "ignored"}}}},
		},
	}
	assert.Equal(t, "part one part two", extractText(resp))
}

func TestExtractTextTopLevelFallback(t *testing.T) {
	resp := &generateResponse{Parts: []part{{Text: "flat text"}}}
	assert.Equal(t, "flat text", extractText(resp))
}
