package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"hlsget/internal/logger"
)

var (
	// ErrTranscriptionFailed reports a missing input file or a failed
	// whisper run.
	ErrTranscriptionFailed = errors.New("transcription failed")
	// ErrInvalidModel reports an unrecognized model-size selector; it is
	// raised before any external invocation.
	ErrInvalidModel = errors.New("invalid transcription model")
)

// validModels are the accepted whisper model-size selectors.
var validModels = []string{"tiny", "base", "small", "medium", "large"}

// ValidateModel rejects unknown model-size selectors.
func ValidateModel(model string) error {
	for _, m := range validModels {
		if model == m {
			return nil
		}
	}
	return fmt.Errorf("%w: %q must be one of %s", ErrInvalidModel, model, strings.Join(validModels, ", "))
}

// Transcriber produces a plain-text transcript for a media file and returns
// the transcript's path.
type Transcriber interface {
	Transcribe(ctx context.Context, mediaPath, model string) (string, error)
}

// WhisperTranscriber shells out to the whisper CLI.
type WhisperTranscriber struct {
	// Path locates the whisper binary; empty resolves "whisper" from PATH.
	Path   string
	Logger logger.Logger
}

// Transcribe runs whisper on mediaPath with the given model size and moves
// the resulting text to `<stem>_transcript.txt` beside the source file.
func (t *WhisperTranscriber) Transcribe(ctx context.Context, mediaPath, model string) (string, error) {
	if _, err := os.Stat(mediaPath); err != nil {
		return "", fmt.Errorf("%w: media file not found: %v", ErrTranscriptionFailed, err)
	}
	if err := ValidateModel(model); err != nil {
		return "", err
	}

	bin := t.Path
	if bin == "" {
		bin = "whisper"
	}

	dir := filepath.Dir(mediaPath)
	stem := strings.TrimSuffix(filepath.Base(mediaPath), filepath.Ext(mediaPath))

	args := []string{
		mediaPath,
		"--model", model,
		"--output_format", "txt",
		"--output_dir", dir,
	}

	t.Logger.Infof("Transcribing %s with model %q", mediaPath, model)
	cmd := exec.CommandContext(ctx, bin, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Logger.Errorf("whisper error: %v, output: %s", err, string(out))
		return "", fmt.Errorf("%w: %v", ErrTranscriptionFailed, err)
	}

	// whisper writes <stem>.txt; rename to the transcript naming scheme.
	produced := filepath.Join(dir, stem+".txt")
	transcript := filepath.Join(dir, stem+"_transcript.txt")
	if err := os.Rename(produced, transcript); err != nil {
		return "", fmt.Errorf("%w: transcript output missing: %v", ErrTranscriptionFailed, err)
	}

	return transcript, nil
}
