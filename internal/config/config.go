package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Defaults mirrors the original tool's built-in limits.
const (
	DefaultMaxSegments     = 1000
	DefaultMaxSegmentSize  = 10 * 1024 * 1024
	DefaultRequestTimeout  = 30 * time.Second
	DefaultAssemblyTimeout = 300 * time.Second
)

// Settings holds the fully processed application configuration.
type Settings struct {
	// MaxSegments caps the resolved segment list; excess entries are dropped.
	MaxSegments int
	// MaxSegmentSize is the per-segment byte ceiling; larger segments are skipped.
	MaxSegmentSize int64
	// RequestTimeout bounds every playlist and segment HTTP call.
	RequestTimeout time.Duration
	// AssemblyTimeout bounds the external ffmpeg invocation.
	AssemblyTimeout time.Duration
	// FFmpegPath and WhisperPath locate the external tools; empty means
	// resolve from PATH.
	FFmpegPath  string
	WhisperPath string
	// Origin overrides the host used for server-rooted segment paths.
	// Empty means derive it from the playlist URL.
	Origin string
	// Headers is the default request header set, replaced wholesale by
	// headers parsed from a captured request.
	Headers map[string]string
}

// rawSettings is the intermediate structure that maps directly to the JSON
// file; durations are given in seconds there.
type rawSettings struct {
	MaxSegments     int               `json:"MaxSegments"`
	MaxSegmentSize  int64             `json:"MaxSegmentSize"`
	RequestTimeout  int               `json:"RequestTimeoutSeconds"`
	AssemblyTimeout int               `json:"AssemblyTimeoutSeconds"`
	FFmpegPath      string            `json:"FFmpegPath"`
	WhisperPath     string            `json:"WhisperPath"`
	Origin          string            `json:"Origin"`
	Headers         map[string]string `json:"Headers"`
}

// Default returns the settings the tool runs with when no config file is given.
func Default() *Settings {
	return &Settings{
		MaxSegments:     DefaultMaxSegments,
		MaxSegmentSize:  DefaultMaxSegmentSize,
		RequestTimeout:  DefaultRequestTimeout,
		AssemblyTimeout: DefaultAssemblyTimeout,
		Headers: map[string]string{
			"User-Agent":      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:137.0) Gecko/20100101 Firefox/137.0",
			"Accept":          "*/*",
			"Accept-Language": "en-US,en;q=0.5",
		},
	}
}

// Load reads and parses the settings file from the given path, filling any
// field the file leaves unset from the defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file at %s: %w", path, err)
	}

	var raw rawSettings
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config JSON: %w", err)
	}

	s := Default()
	if raw.MaxSegments > 0 {
		s.MaxSegments = raw.MaxSegments
	}
	if raw.MaxSegmentSize > 0 {
		s.MaxSegmentSize = raw.MaxSegmentSize
	}
	if raw.RequestTimeout > 0 {
		s.RequestTimeout = time.Duration(raw.RequestTimeout) * time.Second
	}
	if raw.AssemblyTimeout > 0 {
		s.AssemblyTimeout = time.Duration(raw.AssemblyTimeout) * time.Second
	}
	if raw.FFmpegPath != "" {
		s.FFmpegPath = raw.FFmpegPath
	}
	if raw.WhisperPath != "" {
		s.WhisperPath = raw.WhisperPath
	}
	if raw.Origin != "" {
		s.Origin = raw.Origin
	}
	if len(raw.Headers) > 0 {
		s.Headers = raw.Headers
	}

	return s, nil
}
