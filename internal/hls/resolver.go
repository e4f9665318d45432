package hls

import (
	"context"
	"strings"

	"hlsget/internal/logger"
	"hlsget/internal/models"
	"hlsget/internal/reference"
)

const (
	segmentSuffix  = ".ts"
	playlistSuffix = ".m3u8"

	// maxPlaylistHops bounds nested master-playlist resolution so a cyclic
	// or adversarial manifest cannot recurse forever.
	maxPlaylistHops = 5
)

// Resolver turns a playlist URL into an ordered segment list. It fails
// closed: any network, status, or parse problem yields an empty list and a
// logged diagnostic, never an error surfaced to the caller.
type Resolver struct {
	client      *Client
	logger      logger.Logger
	maxSegments int
}

// NewResolver creates a resolver that truncates results to maxSegments.
func NewResolver(client *Client, log logger.Logger, maxSegments int) *Resolver {
	return &Resolver{
		client:      client,
		logger:      log,
		maxSegments: maxSegments,
	}
}

// Resolve fetches playlistURL and returns its segment references in playlist
// order. If the document is a master playlist, the first nested playlist is
// followed, up to a fixed hop limit.
func (r *Resolver) Resolve(ctx context.Context, playlistURL string) []models.Segment {
	return r.resolve(ctx, playlistURL, maxPlaylistHops)
}

func (r *Resolver) resolve(ctx context.Context, playlistURL string, hopsLeft int) []models.Segment {
	if err := reference.ValidateURL(playlistURL); err != nil {
		r.logger.Errorf("Invalid playlist URL %q: %v", playlistURL, err)
		return nil
	}

	r.logger.Debugf("Fetching playlist from %s", playlistURL)
	body, err := r.client.GetText(ctx, playlistURL)
	if err != nil {
		r.logger.Errorf("Failed to download playlist: %v", err)
		return nil
	}

	var refs []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasSuffix(line, segmentSuffix) {
			refs = append(refs, line)
		}
	}

	if len(refs) == 0 {
		r.logger.Warnf("No %s segments found in playlist %s", segmentSuffix, playlistURL)
		for _, line := range strings.Split(body, "\n") {
			line = strings.TrimSpace(line)
			if !strings.HasSuffix(line, playlistSuffix) {
				continue
			}
			nested := line
			if !strings.HasPrefix(nested, "http") {
				nested = BaseURL(playlistURL) + "/" + nested
			}
			if hopsLeft == 0 {
				r.logger.Errorf("Nested playlist limit reached at %s", nested)
				return nil
			}
			r.logger.Infof("Found nested playlist URL: %s", nested)
			return r.resolve(ctx, nested, hopsLeft-1)
		}
		return nil
	}

	if len(refs) > r.maxSegments {
		r.logger.Warnf("Playlist has %d segments, truncating to %d", len(refs), r.maxSegments)
		refs = refs[:r.maxSegments]
	}

	segments := make([]models.Segment, len(refs))
	for i, ref := range refs {
		segments[i] = models.Segment{Reference: ref, Index: i}
	}

	r.logger.Infof("Resolved %d segments from %s", len(segments), playlistURL)
	return segments
}
