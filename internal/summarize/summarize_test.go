package summarize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rs/zerolog"
)

func TestExtractMoodTags(t *testing.T) {
	text := "The clip feels Energetic and bright, with fast-paced cuts throughout."
	tags := extractMoodTags(text)
	assert.Equal(t, []string{"energetic", "bright", "fast-paced"}, tags)

	assert.Empty(t, extractMoodTags("A video about cooking."))
}

func TestExtractThumbnailTimestamp(t *testing.T) {
	tests := []struct {
		text string
		want float64
		ok   bool
	}{
		{"THUMBNAIL_TIMESTAMP: 12.5 seconds", 12.5, true},
		{"thumbnail_timestamp: 3 second", 3, true},
		{"Thumbnail_Timestamp:7.25 seconds", 7.25, true},
		{"the best moment is around 12 seconds", 0, false},
	}
	for _, tt := range tests {
		ts, ok := extractThumbnailTimestamp(tt.text)
		assert.Equal(t, tt.ok, ok, tt.text)
		if ok {
			assert.Equal(t, tt.want, ts, tt.text)
		}
	}
}

func TestClampTimestamp(t *testing.T) {
	assert.Equal(t, 5.0, clampTimestamp(5, 20))
	assert.Equal(t, 10.0, clampTimestamp(25, 20), "past end falls back to midpoint")
	assert.Equal(t, 10.0, clampTimestamp(-1, 20), "negative falls back to midpoint")
	assert.Equal(t, 10.0, clampTimestamp(20, 20), "exactly at end falls back to midpoint")
}

func TestStripTimestampLine(t *testing.T) {
	text := "A lively beach scene.\nTHUMBNAIL_TIMESTAMP: 4.0 seconds\nMostly bright colors."
	assert.Equal(t, "A lively beach scene.\nMostly bright colors.", stripTimestampLine(text))
}

func TestApplyAnalysis(t *testing.T) {
	s := New(nil, nil, 2.0, zerolog.Nop())

	summary := &VideoSummary{Duration: 20, ThumbnailTimeframe: 10}
	s.applyAnalysis(summary, "A calm and minimalist study scene.\nTHUMBNAIL_TIMESTAMP: 4.5 seconds", 20*time.Second)

	assert.Equal(t, []string{"calm", "minimalist"}, summary.MoodTags)
	assert.Equal(t, 4.5, summary.ThumbnailTimeframe)
	assert.Equal(t, "A calm and minimalist study scene.", summary.Summary)
}

func TestApplyAnalysisNoKeywords(t *testing.T) {
	s := New(nil, nil, 2.0, zerolog.Nop())

	summary := &VideoSummary{Duration: 20, ThumbnailTimeframe: 10}
	s.applyAnalysis(summary, "A video about woodworking.", 20*time.Second)

	assert.Equal(t, []string{"general"}, summary.MoodTags, "analysis ran but matched nothing")
	assert.Equal(t, 10.0, summary.ThumbnailTimeframe, "no timestamp keeps the midpoint default")
}
