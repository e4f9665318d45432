package pipeline

import (
	"path/filepath"
	"regexp"
	"strings"

	"hlsget/internal/models"
)

// outputExt is forced onto every output filename.
const outputExt = ".mp4"

var unsafeChars = regexp.MustCompile(`[^\w\-.]`)

// SanitizeFilename strips path components and replaces unsafe characters
// with underscores so user input can never escape the output directory.
// An empty result falls back to "video".
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = filepath.Base(name)
	name = unsafeChars.ReplaceAllString(name, "_")
	if name == "" || name == "." {
		return "video"
	}
	return name
}

// NewOutput computes the immutable output descriptor for a run: sanitized
// filename with the media extension forced, paired with the destination
// directory.
func NewOutput(name, dir string) models.OutputDescriptor {
	name = SanitizeFilename(name)
	if !strings.HasSuffix(strings.ToLower(name), outputExt) {
		name += outputExt
	}
	if dir == "" {
		dir = "downloads"
	}
	return models.OutputDescriptor{Filename: name, Dir: dir}
}
