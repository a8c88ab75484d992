package media

import "time"

// VideoInfo contains metadata about a video file
type VideoInfo struct {
	FilePath   string
	Duration   time.Duration
	Width      int
	Height     int
	FPS        float64
	FrameCount int64
	Bitrate    int64
	VideoCodec string
	HasAudio   bool
	AudioCodec string
}

// Geometry pins extracted segments to one canvas. Segments cut from
// sources with differing resolution or frame rate must be normalized
// before the concat demuxer can join them with stream copy.
type Geometry struct {
	Width  int
	Height int
	FPS    float64
}

// Progress represents ffmpeg progress data
type Progress struct {
	Frame int
	FPS   float64
	Time  string
	Speed string
}

// ProgressFunc is a callback for progress updates during ffmpeg operations.
type ProgressFunc func(*Progress)

// RunOptions configures ffmpeg execution
type RunOptions struct {
	Args            []string
	ProgressHandler ProgressFunc
	LogHandler      func(line string)
}

// Default encoding settings
const (
	DefaultCRF        = 23
	DefaultPreset     = "medium"
	DefaultVideoCodec = "libx264"
	DefaultAudioCodec = "aac"
)
