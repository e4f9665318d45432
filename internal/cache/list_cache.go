// Package cache persists a resolved segment list to disk so repeated runs
// against the same playlist skip the network round trips.
package cache

import (
	"encoding/json"
	"fmt"
	"os"

	"hlsget/internal/logger"
	"hlsget/internal/models"
)

// ListCache reads and writes a resolved segment list as JSON at a fixed path.
type ListCache struct {
	path   string
	logger logger.Logger
}

// New creates a cache backed by the file at path. An empty path disables the
// cache: Load always misses and Store is a no-op.
func New(path string, log logger.Logger) *ListCache {
	return &ListCache{path: path, logger: log}
}

// Load returns the cached segment list, or ok=false when the cache is
// disabled, missing, or unreadable.
func (c *ListCache) Load() ([]models.Segment, bool) {
	if c.path == "" {
		return nil, false
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, false
	}

	var segments []models.Segment
	if err := json.Unmarshal(data, &segments); err != nil {
		c.logger.Warnf("Ignoring unreadable segment cache %s: %v", c.path, err)
		return nil, false
	}
	if len(segments) == 0 {
		return nil, false
	}

	c.logger.Infof("Using cached segment list from %s (%d segments)", c.path, len(segments))
	return segments, true
}

// Store writes the segment list to the cache file.
func (c *ListCache) Store(segments []models.Segment) error {
	if c.path == "" {
		return nil
	}

	data, err := json.Marshal(segments)
	if err != nil {
		return fmt.Errorf("failed to marshal segment list: %w", err)
	}

	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write segment cache: %w", err)
	}

	c.logger.Debugf("Cached %d segments to %s", len(segments), c.path)
	return nil
}
