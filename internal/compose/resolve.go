package compose

import (
	"fmt"
	"path/filepath"

	"github.com/reelforge/reelforge/internal/script"
)

// resolveSource maps a scene's source reference to a concrete path from
// the input list. Index references outside the list are clamped to the
// nearest valid index; path references must match exactly or by
// basename.
func (c *Compositor) resolveSource(ref script.SourceRef, sources []string) (string, error) {
	if len(sources) == 0 {
		return "", fmt.Errorf("%w: no source videos provided", ErrSourceVideoNotFound)
	}

	if ref.ByIndex {
		idx := ref.Index
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sources) {
			idx = len(sources) - 1
		}
		if idx != ref.Index {
			c.logger.Warn().
				Int("requested", ref.Index).
				Int("clamped", idx).
				Msg("source index out of range, clamping")
		}
		return sources[idx], nil
	}

	for _, src := range sources {
		if src == ref.Path {
			return src, nil
		}
	}
	base := filepath.Base(ref.Path)
	for _, src := range sources {
		if filepath.Base(src) == base {
			return src, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrSourceVideoNotFound, ref.Path)
}
