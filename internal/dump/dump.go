// ABOUTME: Debug artifact holding the last raw allocation response
// ABOUTME: Overwrites a single file per call; callers treat failures as non-fatal

package dump

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DefaultPath is where the last allocation response lands unless configured
const DefaultPath = "data.json"

// File overwrites one path with every payload it receives
type File struct {
	path string
	mu   sync.Mutex
}

// New creates a dump file writer. An empty path disables dumping (returns nil).
func New(path string) *File {
	if path == "" {
		return nil
	}
	return &File{path: path}
}

// Path returns the dump location
func (f *File) Path() string {
	return f.path
}

// Write replaces the file contents with data
func (f *File) Write(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create dump directory: %w", err)
		}
	}
	return os.WriteFile(f.path, data, 0600)
}
