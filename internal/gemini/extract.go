package gemini

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// extractText joins the text parts of the first candidate. Responses
// with no recognizable text yield an empty string rather than an error;
// consumers all have explicit fallbacks for empty collaborator output.
func extractText(resp *generateResponse) string {
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			sb.WriteString(p.Text)
		}
		if sb.Len() > 0 {
			break
		}
	}
	if sb.Len() == 0 {
		for _, p := range resp.Parts {
			sb.WriteString(p.Text)
		}
	}
	return strings.TrimSpace(sb.String())
}

// imageExtractor probes one known response shape for inline image data.
type imageExtractor func(*generateResponse) (string, bool)

// The shapes are tried in order; the chain stays explicit so each arm
// is independently testable.
var imageExtractors = []imageExtractor{
	imageFromCandidates,
	imageFromTopLevelParts,
}

func imageFromCandidates(resp *generateResponse) (string, bool) {
	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			if p.InlineData != nil && p.InlineData.Data != "" {
				return p.InlineData.Data, true
			}
		}
	}
	return "", false
}

func imageFromTopLevelParts(resp *generateResponse) (string, bool) {
	for _, p := range resp.Parts {
		if p.InlineData != nil && p.InlineData.Data != "" {
			return p.InlineData.Data, true
		}
	}
	return "", false
}

func extractImage(resp *generateResponse) ([]byte, error) {
	for _, extract := range imageExtractors {
		if data, ok := extract(resp); ok {
			raw, err := base64.StdEncoding.DecodeString(data)
			if err != nil {
				return nil, fmt.Errorf("gemini: decode image payload: %w", err)
			}
			return raw, nil
		}
	}
	if text := extractText(resp); text != "" {
		const limit = 200
		if len(text) > limit {
			text = text[:limit]
		}
		return nil, fmt.Errorf("%w: model returned text: %s", ErrNoImageData, text)
	}
	return nil, ErrNoImageData
}
