package media

import (
	"path/filepath"
	"testing"
	"time"
)

func TestClampSegment(t *testing.T) {
	duration := 10 * time.Second

	tests := []struct {
		name     string
		start    time.Duration
		end      time.Duration
		want     [2]time.Duration
		degraded bool
	}{
		{
			name:  "valid window untouched",
			start: 2 * time.Second,
			end:   5 * time.Second,
			want:  [2]time.Duration{2 * time.Second, 5 * time.Second},
		},
		{
			name:  "end past duration clamps",
			start: 8 * time.Second,
			end:   15 * time.Second,
			want:  [2]time.Duration{8 * time.Second, 10 * time.Second},
		},
		{
			name:     "start past duration uses tail window",
			start:    12 * time.Second,
			end:      14 * time.Second,
			want:     [2]time.Duration{8 * time.Second, 10 * time.Second},
			degraded: true,
		},
		{
			name:  "negative start clamps to zero",
			start: -1 * time.Second,
			end:   3 * time.Second,
			want:  [2]time.Duration{0, 3 * time.Second},
		},
		{
			name:  "inverted window forced to minimum length",
			start: 5 * time.Second,
			end:   4 * time.Second,
			want:  [2]time.Duration{5 * time.Second, 5*time.Second + 100*time.Millisecond},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, degraded := ClampSegment(tt.start, tt.end, duration)
			if start != tt.want[0] || end != tt.want[1] {
				t.Errorf("got [%v, %v], want [%v, %v]", start, end, tt.want[0], tt.want[1])
			}
			if degraded != tt.degraded {
				t.Errorf("degraded = %v, want %v", degraded, tt.degraded)
			}
			if end <= start {
				t.Errorf("clamped window is empty: [%v, %v]", start, end)
			}
		})
	}
}

func TestSegmentArtifactNaming(t *testing.T) {
	dir := t.TempDir()
	name := SegmentArtifactName(dir, "ab12cd34", 3, "/videos/beach trip.mov")

	if filepath.Dir(name) != dir {
		t.Errorf("artifact not placed in dir: %s", name)
	}
	if !IsSegmentArtifact(name, "ab12cd34") {
		t.Errorf("generated name not recognized as artifact: %s", name)
	}
	if IsSegmentArtifact(name, "ffffffff") {
		t.Error("artifact matched against a different run id")
	}
	if IsSegmentArtifact(filepath.Join(dir, "beach trip.mov"), "ab12cd34") {
		t.Error("source video path recognized as artifact")
	}
}
