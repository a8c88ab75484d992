package media

import "errors"

var (
	// ErrOpen indicates a file could not be opened as video.
	ErrOpen = errors.New("media: cannot open file as video")

	// ErrZeroDuration indicates a degenerate video (zero frame rate or
	// zero frame count) whose duration would be undefined.
	ErrZeroDuration = errors.New("media: video has zero duration")

	// ErrExtraction indicates an encode or seek failure while cutting a
	// segment out of a source video.
	ErrExtraction = errors.New("media: segment extraction failed")

	// ErrFrameRead indicates the decoder produced no frame at the
	// requested offset. Distinct from ErrOpen: the file opened fine.
	ErrFrameRead = errors.New("media: cannot read frame")

	// ErrClipClosed indicates a Close on an already-released clip handle.
	ErrClipClosed = errors.New("media: clip already closed")
)
