package process

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"petreel/internal/services"
)

// Transcriber produces a subtitle file for a video. Transcription is
// best-effort: the processing stage continues without captions when it fails.
type Transcriber interface {
	// Transcribe writes an SRT file for mediaPath into outDir and returns
	// its path.
	Transcribe(ctx context.Context, mediaPath, outDir string) (string, error)
}

// WhisperTranscriber shells out to the whisper CLI.
type WhisperTranscriber struct {
	binary string
}

// NewWhisperTranscriber wraps the given whisper binary name.
func NewWhisperTranscriber(binary string) *WhisperTranscriber {
	if strings.TrimSpace(binary) == "" {
		binary = "whisper"
	}
	return &WhisperTranscriber{binary: binary}
}

// Transcribe runs whisper and returns the path of the generated SRT file.
func (t *WhisperTranscriber) Transcribe(ctx context.Context, mediaPath, outDir string) (string, error) {
	cmd := commandContext(ctx, t.binary,
		mediaPath,
		"--model", "base",
		"--output_format", "srt",
		"--output_dir", outDir,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		detail := lastLine(string(output))
		if detail == "" {
			detail = "whisper failed"
		}
		return "", services.Wrap(services.ErrExternalTool, "process", "whisper", detail, err)
	}

	base := strings.TrimSuffix(filepath.Base(mediaPath), filepath.Ext(mediaPath))
	srtPath := filepath.Join(outDir, base+".srt")
	if _, err := os.Stat(srtPath); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "process", "whisper", "expected subtitle file missing", err)
	}
	return srtPath, nil
}
