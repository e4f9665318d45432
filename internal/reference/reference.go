// Package reference turns raw user input — a playlist URL or a captured
// curl command — into a validated PlaylistReference.
package reference

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/shlex"

	"hlsget/internal/models"
)

// ErrInvalidReference reports a malformed URL or a disallowed scheme.
var ErrInvalidReference = errors.New("invalid playlist reference")

// ValidateURL checks that raw is an absolute http or https URL with a
// non-empty host. Anything else is rejected outright.
func ValidateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q not allowed", ErrInvalidReference, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidReference)
	}
	return nil
}

// New validates rawURL and pairs it with the header set to use for all
// requests against the playlist and its segments.
func New(rawURL string, headers map[string]string) (models.PlaylistReference, error) {
	if err := ValidateURL(rawURL); err != nil {
		return models.PlaylistReference{}, err
	}
	return models.PlaylistReference{URL: rawURL, Headers: headers}, nil
}

// ParseCapture extracts the URL and headers from a captured curl command.
// The URL is the first token not beginning with a dash; headers come from
// repeated `-H "Name: Value"` pairs. Malformed header tokens (no colon) are
// skipped. A tokenization failure yields an empty URL and an empty header
// set rather than an error; callers must check for a present URL.
func ParseCapture(capture string) (string, map[string]string) {
	capture = strings.TrimSpace(capture)
	capture = strings.TrimPrefix(capture, "curl ")

	headers := make(map[string]string)

	tokens, err := shlex.Split(capture)
	if err != nil {
		return "", headers
	}

	var rawURL string
	for i, tok := range tokens {
		if rawURL == "" && !strings.HasPrefix(tok, "-") {
			rawURL = tok
		}
		if tok == "-H" && i+1 < len(tokens) {
			header := strings.Trim(tokens[i+1], "'")
			name, value, ok := strings.Cut(header, ":")
			if !ok {
				continue
			}
			headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
		}
	}

	return rawURL, headers
}

// PlaylistURLFromSegment derives the playlist URL from a captured segment
// URL by stripping the segment-identifying suffix. Convenience for the
// common case of copying a single in-flight `.../seg-N.ts` request.
func PlaylistURLFromSegment(segmentURL string) string {
	if idx := strings.LastIndex(segmentURL, "/seg-"); idx >= 0 {
		return segmentURL[:idx]
	}
	return segmentURL
}
