// Package media wraps the external tools the pipeline delegates to: ffmpeg
// for segment assembly and whisper for transcription. Both are modeled as
// single-method interfaces so tests can substitute fakes.
package media

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"hlsget/internal/logger"
)

// ErrAssemblyFailed reports a missing, failed, or timed-out ffmpeg run.
var ErrAssemblyFailed = errors.New("segment assembly failed")

// Assembler combines ordered segment files into a single media file.
// concatList is a file whose lines each name one segment path, in playback
// order; outputPath is where the combined file must appear.
type Assembler interface {
	Assemble(ctx context.Context, concatList, outputPath string) error
}

// FFmpegAssembler runs ffmpeg's concat demuxer with stream copy.
type FFmpegAssembler struct {
	// Path locates the ffmpeg binary; empty resolves "ffmpeg" from PATH.
	Path    string
	Timeout time.Duration
	Logger  logger.Logger
}

// Assemble invokes ffmpeg on the concat list. A non-zero exit or a timeout
// is a hard failure; no partial output is reported as success.
func (a *FFmpegAssembler) Assemble(ctx context.Context, concatList, outputPath string) error {
	bin := a.Path
	if bin == "" {
		bin = "ffmpeg"
	}

	if a.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Timeout)
		defer cancel()
	}

	args := []string{
		"-f", "concat",
		"-safe", "0",
		"-i", concatList,
		"-c", "copy",
		outputPath,
	}

	a.Logger.Debugf("Running %s %v", bin, args)
	cmd := exec.CommandContext(ctx, bin, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("%w: ffmpeg timed out after %s", ErrAssemblyFailed, a.Timeout)
		}
		a.Logger.Errorf("ffmpeg error: %v, output: %s", err, string(out))
		return fmt.Errorf("%w: %v", ErrAssemblyFailed, err)
	}

	return nil
}
