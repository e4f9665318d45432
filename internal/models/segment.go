package models

import "fmt"

// SlotName returns the numbered working-area filename for a segment index,
// zero-padded so lexical order matches playback order.
func SlotName(index int) string {
	return fmt.Sprintf("segment_%03d.ts", index)
}

// Segment represents one media segment extracted from a playlist.
// This struct is used across packages to represent a downloadable chunk of media.
type Segment struct {
	// Reference is the entry as it appeared in the playlist: an absolute URL,
	// a server-rooted path beginning with '/', or a path relative to the
	// playlist's directory.
	Reference string
	// Index is the zero-based position of the segment in the playlist.
	// Playback order equals index order; the slot filename is derived from it.
	Index int
}

// SlotName returns the working-area filename for the segment.
func (s Segment) SlotName() string {
	return SlotName(s.Index)
}

// PlaylistReference is a validated playlist URL together with the header set
// to attach to every request made against the playlist and its segments.
// Constructed once per run and treated as immutable afterwards.
type PlaylistReference struct {
	URL     string
	Headers map[string]string
}

// OutputDescriptor names the final combined file: a sanitized filename and
// the directory it is written to. Immutable once computed for a run.
type OutputDescriptor struct {
	Filename string
	Dir      string
}
