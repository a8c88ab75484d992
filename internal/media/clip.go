package media

import (
	"context"
	"fmt"
	"time"
)

// Clip is a handle to an opened media resource. A clip is exclusively
// owned by the component that opened it for the duration of one
// operation and must be closed exactly once on every exit path. Clips
// are never shared across concurrent operations.
type Clip struct {
	Path   string
	Info   *VideoInfo
	closed bool
}

// OpenClip probes a video file and returns an open handle to it.
func (e *Executor) OpenClip(ctx context.Context, path string) (*Clip, error) {
	info, err := e.ProbeVideo(ctx, path)
	if err != nil {
		return nil, err
	}
	return &Clip{Path: path, Info: info}, nil
}

// Duration returns the probed duration of the clip.
func (c *Clip) Duration() time.Duration {
	if c.Info == nil {
		return 0
	}
	return c.Info.Duration
}

// Close releases the clip handle. Closing twice is an error so leaks
// and double-releases both surface in tests.
func (c *Clip) Close() error {
	if c.closed {
		return fmt.Errorf("%w: %s", ErrClipClosed, c.Path)
	}
	c.closed = true
	return nil
}

// Closed reports whether the handle has been released.
func (c *Clip) Closed() bool {
	return c.closed
}
