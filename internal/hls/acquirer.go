package hls

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"hlsget/internal/logger"
	"hlsget/internal/models"
	"hlsget/internal/workspace"
)

const (
	// copyChunkSize is the read granularity while streaming a segment body,
	// so the size ceiling is enforced without buffering whole segments.
	copyChunkSize = 8 * 1024

	maxSegmentRetries = 3
	segmentRetryDelay = 100 * time.Millisecond
)

var (
	// ErrNoSegments reports an empty segment list; nothing was fetched.
	ErrNoSegments = errors.New("no segments to download")
	// ErrAcquisitionSetup reports that the working area could not be created.
	ErrAcquisitionSetup = errors.New("failed to create working area")
	// errSegmentTooLarge marks a segment skipped for exceeding the size
	// ceiling; it is permanent and never retried.
	errSegmentTooLarge = errors.New("segment exceeds size limit")
)

// Acquirer downloads the resolved segments one at a time into a fresh
// working area. Individual segment failures are logged and skipped; the
// batch itself only fails when there is nothing to do or no place to put it.
type Acquirer struct {
	client         *Client
	logger         logger.Logger
	maxSegmentSize int64
	origin         string
}

// NewAcquirer creates an acquirer enforcing maxSegmentSize per segment.
// Server-rooted segment paths (starting with '/') resolve against origin,
// typically the playlist URL's scheme and host.
func NewAcquirer(client *Client, log logger.Logger, maxSegmentSize int64, origin string) *Acquirer {
	return &Acquirer{
		client:         client,
		logger:         log,
		maxSegmentSize: maxSegmentSize,
		origin:         origin,
	}
}

// Acquire fetches every segment into numbered slots of a new working area,
// in playlist order. The area is returned even when segments failed; the
// caller discovers gaps from the slot files that exist.
func (a *Acquirer) Acquire(ctx context.Context, segments []models.Segment, baseURL string) (*workspace.Area, error) {
	if len(segments) == 0 {
		return nil, ErrNoSegments
	}

	area, err := workspace.Create()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAcquisitionSetup, err)
	}

	for _, seg := range segments {
		segURL := a.segmentURL(seg.Reference, baseURL)
		a.logger.Infof("Downloading segment %d/%d", seg.Index+1, len(segments))

		if err := a.fetchSegment(ctx, segURL, area.SlotPath(seg.Index)); err != nil {
			a.logger.Warnf("Skipping segment %d: %v", seg.Index, err)
		}
	}

	return area, nil
}

// segmentURL resolves a playlist entry to an absolute URL. Absolute entries
// pass through; '/'-rooted paths attach to the configured origin; everything
// else joins the playlist's directory.
func (a *Acquirer) segmentURL(ref, baseURL string) string {
	switch {
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return ref
	case strings.HasPrefix(ref, "/"):
		return a.origin + ref
	default:
		return baseURL + "/" + ref
	}
}

// fetchSegment downloads one segment to path, retrying transient failures.
// A segment over the size ceiling is abandoned immediately.
func (a *Acquirer) fetchSegment(ctx context.Context, url, path string) error {
	var lastErr error
	for attempt := 1; attempt <= maxSegmentRetries; attempt++ {
		err := a.fetchOnce(ctx, url, path)
		if err == nil || errors.Is(err, errSegmentTooLarge) {
			return err
		}
		lastErr = err
		a.logger.Warnf("Attempt %d/%d for %s failed: %v", attempt, maxSegmentRetries, url, err)
		time.Sleep(segmentRetryDelay)
	}
	return fmt.Errorf("all %d attempts failed: %w", maxSegmentRetries, lastErr)
}

func (a *Acquirer) fetchOnce(ctx context.Context, url, path string) error {
	resp, err := a.client.Get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.ContentLength > a.maxSegmentSize {
		return fmt.Errorf("%w: declared %s > %s", errSegmentTooLarge,
			humanize.Bytes(uint64(resp.ContentLength)), humanize.Bytes(uint64(a.maxSegmentSize)))
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create slot file: %w", err)
	}

	var written int64
	buf := make([]byte, copyChunkSize)
	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			written += int64(n)
			if written > a.maxSegmentSize {
				out.Close()
				os.Remove(path)
				return fmt.Errorf("%w: stream passed %s", errSegmentTooLarge,
					humanize.Bytes(uint64(a.maxSegmentSize)))
			}
			if _, werr := out.Write(buf[:n]); werr != nil {
				out.Close()
				os.Remove(path)
				return fmt.Errorf("failed to write slot file: %w", werr)
			}
		}
		if rerr != nil {
			if rerr == io.EOF {
				break
			}
			out.Close()
			os.Remove(path)
			return fmt.Errorf("failed to read segment body: %w", rerr)
		}
	}

	if err := out.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to close slot file: %w", err)
	}

	a.logger.Debugf("Segment saved to %s (%s)", path, humanize.Bytes(uint64(written)))
	return nil
}
