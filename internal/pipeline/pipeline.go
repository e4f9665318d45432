// Package pipeline ties reference parsing, playlist resolution, segment
// acquisition, assembly, and transcription into one download attempt.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"hlsget/internal/cache"
	"hlsget/internal/config"
	"hlsget/internal/hls"
	"hlsget/internal/logger"
	"hlsget/internal/media"
	"hlsget/internal/models"
	"hlsget/internal/reference"
)

// ErrNoSegmentsFound reports a playlist that resolved to zero segments.
var ErrNoSegmentsFound = errors.New("no segments found in the playlist")

// Request describes one download attempt.
type Request struct {
	// PlaylistURL is the validated-on-entry playlist location.
	PlaylistURL string
	// Headers replaces the default header set wholesale when non-empty.
	Headers map[string]string
	// OutputName is the user-supplied name; it is sanitized and forced to
	// the output extension before use.
	OutputName string
	// OutputDir is where the combined file lands; created if absent.
	OutputDir string
	// CachePath, when set, persists the resolved segment list.
	CachePath string
	// Transcript requests transcription of the combined file with Model.
	Transcript bool
	Model      string
}

// Pipeline orchestrates a download attempt against injected collaborators.
type Pipeline struct {
	cfg         *config.Settings
	logger      logger.Logger
	assembler   media.Assembler
	transcriber media.Transcriber
}

// New creates a pipeline with explicit collaborators so tests can pass fakes.
func New(cfg *config.Settings, log logger.Logger, asm media.Assembler, tr media.Transcriber) *Pipeline {
	return &Pipeline{
		cfg:         cfg,
		logger:      log,
		assembler:   asm,
		transcriber: tr,
	}
}

// DownloadVideo runs the full attempt: resolve the playlist, acquire the
// segments, assemble the output, optionally transcribe it. The working area
// is destroyed on every exit path past its creation.
func (p *Pipeline) DownloadVideo(ctx context.Context, req Request) (models.OutputDescriptor, error) {
	attemptID := uuid.NewString()

	headers := req.Headers
	if len(headers) == 0 {
		headers = p.cfg.Headers
	}

	ref, err := reference.New(req.PlaylistURL, headers)
	if err != nil {
		return models.OutputDescriptor{}, err
	}

	out := NewOutput(req.OutputName, req.OutputDir)
	if err := os.MkdirAll(out.Dir, 0755); err != nil {
		return models.OutputDescriptor{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	p.logger.Infof("Attempt %s: downloading %s to %s", attemptID, ref.URL, filepath.Join(out.Dir, out.Filename))

	client := hls.NewClient(p.logger, ref.Headers, p.cfg.RequestTimeout)

	listCache := cache.New(req.CachePath, p.logger)
	segments, ok := listCache.Load()
	if !ok {
		segments = hls.NewResolver(client, p.logger, p.cfg.MaxSegments).Resolve(ctx, ref.URL)
		if len(segments) > 0 {
			if err := listCache.Store(segments); err != nil {
				p.logger.Warnf("Attempt %s: %v", attemptID, err)
			}
		}
	}
	if len(segments) == 0 {
		return models.OutputDescriptor{}, ErrNoSegmentsFound
	}

	baseURL := hls.BaseURL(ref.URL)
	p.logger.Infof("Attempt %s: base URL for segments: %s", attemptID, baseURL)

	acquirer := hls.NewAcquirer(client, p.logger, p.cfg.MaxSegmentSize, p.segmentOrigin(ref.URL))
	area, err := acquirer.Acquire(ctx, segments, baseURL)
	if err != nil {
		return models.OutputDescriptor{}, err
	}
	defer func() {
		if derr := area.Destroy(); derr != nil {
			p.logger.Errorf("Attempt %s: failed to remove working area: %v", attemptID, derr)
		}
	}()

	concatList, err := area.WriteConcatList()
	if err != nil {
		return models.OutputDescriptor{}, err
	}

	outputPath := filepath.Join(out.Dir, out.Filename)
	p.logger.Infof("Attempt %s: combining segments into %s", attemptID, outputPath)
	if err := p.assembler.Assemble(ctx, concatList, outputPath); err != nil {
		return models.OutputDescriptor{}, err
	}

	if req.Transcript {
		transcript, terr := p.transcriber.Transcribe(ctx, outputPath, req.Model)
		if terr != nil {
			p.logger.Errorf("Attempt %s: %v", attemptID, terr)
		} else {
			p.logger.Infof("Attempt %s: transcript saved as %s", attemptID, transcript)
		}
	}

	p.logger.Infof("Attempt %s: video saved as %s", attemptID, outputPath)
	return out, nil
}

// segmentOrigin is the scheme+host used for server-rooted segment paths,
// derived from the playlist URL unless the settings override it.
func (p *Pipeline) segmentOrigin(playlistURL string) string {
	if p.cfg.Origin != "" {
		return p.cfg.Origin
	}
	u, err := url.Parse(playlistURL)
	if err != nil {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
