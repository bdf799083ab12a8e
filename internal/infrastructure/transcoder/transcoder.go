package transcoder

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/xfrr/goffmpeg/media"
	goffmpeg "github.com/xfrr/goffmpeg/transcoder"
	"go.uber.org/zap"
)

const maxStderrBytes = 8 << 10

// Transcoder runs the codec tool
type Transcoder interface {
	// ConcatLosslessly joins the files listed in a concat manifest without re-encoding
	ConcatLosslessly(ctx context.Context, manifestPath, outputPath string) error
	// Transcode re-encodes inputPath to mp3 at outputPath
	Transcode(ctx context.Context, inputPath, outputPath string) error
}

// ProcessError is a non-zero exit of the codec tool
type ProcessError struct {
	Op     string
	Err    error
	Stderr string
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("ffmpeg %s failed: %v", e.Op, e.Err)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// FFmpeg drives the ffmpeg binary
type FFmpeg struct {
	bin     string
	logger  *zap.Logger
	bitrate string
}

// NewFFmpeg creates a transcoder. A bare "ffmpeg" is resolved from PATH.
func NewFFmpeg(bin string, logger *zap.Logger) *FFmpeg {
	if bin == "" {
		bin = "ffmpeg"
	}
	return &FFmpeg{bin: bin, logger: logger, bitrate: "128k"}
}

// ConcatLosslessly runs the concat demuxer with stream copy
func (f *FFmpeg) ConcatLosslessly(ctx context.Context, manifestPath, outputPath string) error {
	cmd := exec.CommandContext(ctx, f.bin,
		"-hide_banner", "-y",
		"-f", "concat",
		"-safe", "0",
		"-i", manifestPath,
		"-c", "copy",
		outputPath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if f.logger != nil {
		f.logger.Debug("🎬 Running ffmpeg concat", zap.Strings("args", cmd.Args))
	}

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("ffmpeg concat interrupted: %w", ctx.Err())
		}
		return &ProcessError{Op: "concat", Err: err, Stderr: tail(stderr.String())}
	}
	return nil
}

// Transcode re-encodes to mp3 with libmp3lame, dropping any video stream
func (f *FFmpeg) Transcode(ctx context.Context, inputPath, outputPath string) error {
	cmd := exec.CommandContext(ctx, f.bin, f.transcodeArgs(inputPath, outputPath)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if f.logger != nil {
		f.logger.Debug("🎬 Running ffmpeg transcode", zap.Strings("args", cmd.Args))
	}

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("ffmpeg transcode interrupted: %w", ctx.Err())
		}
		return &ProcessError{Op: "transcode", Err: err, Stderr: tail(stderr.String())}
	}
	return nil
}

// transcodeArgs builds the mp3 command line without probing the input
func (f *FFmpeg) transcodeArgs(inputPath, outputPath string) []string {
	file := new(media.File)
	file.SetInputPath(inputPath)
	file.SetOutputPath(outputPath)
	file.SetHideBanner(true)
	file.SetSkipVideo(true)
	file.SetAudioCodec("libmp3lame")
	file.SetAudioBitRate(f.bitrate)

	trans := new(goffmpeg.Transcoder)
	trans.SetMediaFile(file)
	return dropHLSListSize(trans.GetCommand())
}

// dropHLSListSize removes the -hls_list_size pair the builder always emits;
// the mp3 muxer has no such option.
func dropHLSListSize(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		if args[i] == "-hls_list_size" {
			i++
			continue
		}
		out = append(out, args[i])
	}
	return out
}

// tail keeps the end of stderr, where ffmpeg prints the actual failure
func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxStderrBytes {
		return s
	}
	return s[len(s)-maxStderrBytes:]
}
