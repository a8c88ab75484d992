package util

import (
	"os"

	"github.com/google/uuid"
)

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ShortID returns an 8-character run identifier. Artifact names embed it
// so concurrent runs sharing a temp directory never collide.
func ShortID() string {
	return uuid.NewString()[:8]
}

// CleanupFiles removes multiple files, ignoring errors
func CleanupFiles(paths ...string) {
	for _, path := range paths {
		_ = os.Remove(path)
	}
}
