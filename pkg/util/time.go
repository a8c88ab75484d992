package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatDuration converts time.Duration to ffmpeg timestamp format (HH:MM:SS.mmm)
func FormatDuration(d time.Duration) string {
	seconds := d.Seconds()
	hours := int(seconds / 3600)
	minutes := int((seconds - float64(hours*3600)) / 60)
	secs := seconds - float64(hours*3600) - float64(minutes*60)
	return fmt.Sprintf("%02d:%02d:%06.3f", hours, minutes, secs)
}

// Seconds converts a time.Duration to float seconds, the unit used in
// script and summary JSON payloads.
func Seconds(d time.Duration) float64 {
	return d.Seconds()
}

// FromSeconds converts float seconds from a JSON payload to a time.Duration.
func FromSeconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// ParseFrameRate parses frame rate from ffprobe rational format (e.g., "30/1")
func ParseFrameRate(s string) float64 {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return 0
	}
	num, err1 := strconv.ParseFloat(parts[0], 64)
	den, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil || den == 0 {
		return 0
	}
	return num / den
}

// ParseTimestamp parses a timestamp string (HH:MM:SS.mmm, MM:SS or SS.mmm)
func ParseTimestamp(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")

	var hours, minutes, seconds float64
	var err error

	switch len(parts) {
	case 1:
		seconds, err = strconv.ParseFloat(parts[0], 64)
	case 2:
		minutes, err = strconv.ParseFloat(parts[0], 64)
		if err == nil {
			seconds, err = strconv.ParseFloat(parts[1], 64)
		}
	case 3:
		hours, err = strconv.ParseFloat(parts[0], 64)
		if err == nil {
			minutes, err = strconv.ParseFloat(parts[1], 64)
		}
		if err == nil {
			seconds, err = strconv.ParseFloat(parts[2], 64)
		}
	default:
		return 0, fmt.Errorf("invalid timestamp format: %s", s)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp format: %s", s)
	}

	total := hours*3600 + minutes*60 + seconds
	return time.Duration(total * float64(time.Second)), nil
}
