package process

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"petreel/internal/services"
)

// commandContext is stubbed in tests to avoid invoking real tools.
var commandContext = exec.CommandContext

// TranscodeRequest describes one conversion from a raw source video to a
// publish-ready vertical clip.
type TranscodeRequest struct {
	InputPath  string
	OutputPath string

	// Target frame geometry. Sources with a different aspect ratio are
	// scaled to fit and padded with black bars.
	TargetWidth  int
	TargetHeight int

	// MaxDurationSeconds trims longer sources. Zero disables trimming.
	MaxDurationSeconds int

	// SubtitlePath burns the given subtitle file into the frame when set.
	SubtitlePath string

	// OverlayText draws a call-to-action banner near the bottom of the
	// frame when set.
	OverlayText string

	// WatermarkPath overlays the given image in the top-right corner
	// when set.
	WatermarkPath string
}

// Transcoder converts raw videos into publish-ready clips.
type Transcoder interface {
	Transcode(ctx context.Context, req TranscodeRequest) error
}

// FFmpegTranscoder shells out to ffmpeg.
type FFmpegTranscoder struct {
	binary string
}

// NewFFmpegTranscoder wraps the given ffmpeg binary name.
func NewFFmpegTranscoder(binary string) *FFmpegTranscoder {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	return &FFmpegTranscoder{binary: binary}
}

// Transcode runs a single ffmpeg invocation built from the request.
func (t *FFmpegTranscoder) Transcode(ctx context.Context, req TranscodeRequest) error {
	if req.InputPath == "" || req.OutputPath == "" {
		return services.Wrap(services.ErrValidation, "process", "transcode", "input and output paths are required", nil)
	}

	args := buildFFmpegArgs(req)
	cmd := commandContext(ctx, t.binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		detail := lastLine(string(output))
		if detail == "" {
			detail = "ffmpeg failed"
		}
		return services.Wrap(services.ErrExternalTool, "process", "ffmpeg", detail, err)
	}
	return nil
}

func buildFFmpegArgs(req TranscodeRequest) []string {
	args := []string{"-y", "-i", req.InputPath}
	if req.WatermarkPath != "" {
		args = append(args, "-i", req.WatermarkPath)
	}
	if req.MaxDurationSeconds > 0 {
		args = append(args, "-t", fmt.Sprintf("%d", req.MaxDurationSeconds))
	}
	if filter := buildFilterGraph(req); filter != "" {
		args = append(args, "-filter_complex", filter)
	}
	args = append(args,
		"-c:v", "libx264",
		"-preset", "fast",
		"-c:a", "aac",
		"-movflags", "+faststart",
		req.OutputPath,
	)
	return args
}

// buildFilterGraph assembles the scale/pad chain plus optional subtitle,
// watermark, and CTA overlays.
func buildFilterGraph(req TranscodeRequest) string {
	width, height := req.TargetWidth, req.TargetHeight
	if width <= 0 || height <= 0 {
		width, height = 1080, 1920
	}

	var chain []string
	chain = append(chain, fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2",
		width, height, width, height))
	if req.SubtitlePath != "" {
		chain = append(chain, fmt.Sprintf("subtitles=%s", escapeFilterPath(req.SubtitlePath)))
	}
	if req.OverlayText != "" {
		chain = append(chain, fmt.Sprintf(
			"drawtext=text='%s':fontcolor=white:fontsize=48:box=1:boxcolor=black@0.5:boxborderw=12:x=(w-text_w)/2:y=h-text_h-120",
			escapeDrawText(req.OverlayText)))
	}

	graph := "[0:v]" + strings.Join(chain, ",")
	if req.WatermarkPath != "" {
		graph += "[base];[base][1:v]overlay=W-w-40:40"
	}
	return graph
}

func escapeFilterPath(path string) string {
	replacer := strings.NewReplacer(`\`, `\\`, ":", `\:`, "'", `\'`)
	return replacer.Replace(path)
}

func escapeDrawText(text string) string {
	replacer := strings.NewReplacer(`\`, `\\`, "'", `\'`, ":", `\:`, "%", `\%`)
	return replacer.Replace(text)
}

func lastLine(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
