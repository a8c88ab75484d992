package compose

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/reelforge/reelforge/internal/media"
)

// tracker records the clips and intermediate files a composition run
// creates so cleanup runs exactly once, on success or failure. Segment
// artifacts are double-checked against the run's naming scheme before
// removal so a stray path can never delete a source video.
type tracker struct {
	runID    string
	clips    []*media.Clip
	segments []string
	files    []string
	logger   zerolog.Logger
}

func newTracker(runID string, logger zerolog.Logger) *tracker {
	return &tracker{runID: runID, logger: logger}
}

func (t *tracker) addClip(c *media.Clip) {
	t.clips = append(t.clips, c)
}

func (t *tracker) addSegmentFile(path string) {
	t.segments = append(t.segments, path)
}

func (t *tracker) addFile(path string) {
	t.files = append(t.files, path)
}

func (t *tracker) cleanup() {
	for _, c := range t.clips {
		if c.Closed() {
			continue
		}
		if err := c.Close(); err != nil {
			t.logger.Debug().Err(err).Str("clip", c.Path).Msg("clip close during cleanup")
		}
	}

	for _, path := range t.segments {
		if !media.IsSegmentArtifact(path, t.runID) {
			t.logger.Warn().Str("path", path).Msg("refusing to delete non-artifact path")
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			t.logger.Debug().Err(err).Str("path", path).Msg("segment cleanup")
		}
	}

	for _, path := range t.files {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			t.logger.Debug().Err(err).Str("path", path).Msg("intermediate cleanup")
		}
	}
}
