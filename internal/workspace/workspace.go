// Package workspace owns the process-private directory that holds one
// attempt's downloaded segments, from creation through guaranteed removal.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"hlsget/internal/models"
)

// dirPrefix makes leaked directories recognizable under the temp root.
const dirPrefix = "video_segments_"

// concatListName is the ffmpeg concat demuxer input written next to the slots.
const concatListName = "file_list.txt"

// Area is an exclusively-owned temporary directory holding numbered segment
// slot files for a single download attempt.
type Area struct {
	path string
}

// Create allocates a fresh, uniquely-named working area under the system
// temp root.
func Create() (*Area, error) {
	dir, err := os.MkdirTemp("", dirPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to create working area: %w", err)
	}
	return &Area{path: dir}, nil
}

// Open wraps an existing directory as an Area. Intended for tests.
func Open(path string) *Area {
	return &Area{path: path}
}

// Path returns the area's directory.
func (a *Area) Path() string {
	return a.path
}

// SlotPath returns the absolute path of the numbered slot for a segment index.
func (a *Area) SlotPath(index int) string {
	return filepath.Join(a.path, models.SlotName(index))
}

// SegmentFiles returns the absolute paths of the slot files that exist, in
// ascending index order. Indices whose segments were skipped are absent, so
// the result is already gap-free.
func (a *Area) SegmentFiles() ([]string, error) {
	entries, err := os.ReadDir(a.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read working area: %w", err)
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "segment_") {
			continue
		}
		files = append(files, filepath.Join(a.path, name))
	}

	// Zero-padded names make lexical order the index order.
	sort.Strings(files)
	return files, nil
}

// WriteConcatList writes the ffmpeg concat input file listing every existing
// slot file in ascending index order, one quoted absolute path per line, and
// returns its path.
func (a *Area) WriteConcatList() (string, error) {
	files, err := a.SegmentFiles()
	if err != nil {
		return "", err
	}

	listPath := filepath.Join(a.path, concatListName)
	f, err := os.Create(listPath)
	if err != nil {
		return "", fmt.Errorf("failed to create concat list: %w", err)
	}

	for _, file := range files {
		if _, err := fmt.Fprintf(f, "file '%s'\n", file); err != nil {
			f.Close()
			return "", fmt.Errorf("failed to write concat list: %w", err)
		}
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close concat list: %w", err)
	}
	return listPath, nil
}

// Destroy recursively removes the working area. Removing an area that is
// already gone is a success, so Destroy may run on every exit path.
func (a *Area) Destroy() error {
	if a == nil || a.path == "" {
		return nil
	}
	return os.RemoveAll(a.path)
}
