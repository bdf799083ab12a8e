package transcoder

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func fakeFFmpeg(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in needs a POSIX shell")
	}
	bin := filepath.Join(t.TempDir(), "ffmpeg")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil {
		t.Fatalf("write fake ffmpeg: %v", err)
	}
	return bin
}

func TestConcatLosslessly_PassesConcatFlags(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "args")
	bin := fakeFFmpeg(t, `echo "$@" > `+argsFile)

	err := NewFFmpeg(bin, nil).ConcatLosslessly(context.Background(), "/tmp/list.txt", "/tmp/out.webm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw, _ := os.ReadFile(argsFile)
	args := string(raw)
	for _, want := range []string{"-f concat", "-safe 0", "-i /tmp/list.txt", "-c copy", "/tmp/out.webm"} {
		if !strings.Contains(args, want) {
			t.Fatalf("args %q missing %q", args, want)
		}
	}
}

func TestConcatLosslessly_CapturesStderr(t *testing.T) {
	bin := fakeFFmpeg(t, `echo "Invalid data found when processing input" >&2; exit 1`)

	err := NewFFmpeg(bin, nil).ConcatLosslessly(context.Background(), "/tmp/list.txt", "/tmp/out.webm")
	var pe *ProcessError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProcessError, got %v", err)
	}
	if pe.Op != "concat" || !strings.Contains(pe.Stderr, "Invalid data found") {
		t.Fatalf("unexpected process error %+v", pe)
	}
}

func TestConcatLosslessly_ContextCancelled(t *testing.T) {
	bin := fakeFFmpeg(t, `sleep 5`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewFFmpeg(bin, nil).ConcatLosslessly(ctx, "/tmp/list.txt", "/tmp/out.webm")
	if err == nil {
		t.Fatalf("expected error")
	}
	var pe *ProcessError
	if errors.As(err, &pe) {
		t.Fatalf("cancellation must not be reported as a codec failure: %v", err)
	}
}

func TestTail(t *testing.T) {
	long := strings.Repeat("a", maxStderrBytes) + "END"
	got := tail(long)
	if len(got) != maxStderrBytes || !strings.HasSuffix(got, "END") {
		t.Fatalf("tail kept the wrong end")
	}
	if tail("  short \n") != "short" {
		t.Fatalf("expected trimmed output")
	}
}

func TestTranscode_BuildsMP3CommandLine(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "args")
	bin := fakeFFmpeg(t, `echo "$@" > `+argsFile)

	err := NewFFmpeg(bin, nil).Transcode(context.Background(), "/tmp/in.webm", "/tmp/out.mp3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw, _ := os.ReadFile(argsFile)
	args := strings.TrimSpace(string(raw))
	for _, want := range []string{"-y", "-i /tmp/in.webm", "-vn", "-c:a libmp3lame", "-b:a 128k"} {
		if !strings.Contains(args, want) {
			t.Fatalf("args %q missing %q", args, want)
		}
	}
	if strings.Contains(args, "-hls_list_size") {
		t.Fatalf("args %q carry an hls option", args)
	}
	if !strings.HasSuffix(args, "/tmp/out.mp3") {
		t.Fatalf("output path must be last: %q", args)
	}
}

func TestTranscode_CapturesStderr(t *testing.T) {
	bin := fakeFFmpeg(t, `echo "Unknown encoder 'libmp3lame'" >&2; exit 1`)

	err := NewFFmpeg(bin, nil).Transcode(context.Background(), "/tmp/in.webm", "/tmp/out.mp3")
	var pe *ProcessError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProcessError, got %v", err)
	}
	if pe.Op != "transcode" || !strings.Contains(pe.Stderr, "Unknown encoder 'libmp3lame'") {
		t.Fatalf("unexpected process error %+v", pe)
	}
}

func TestTranscode_ContextCancelled(t *testing.T) {
	bin := fakeFFmpeg(t, `sleep 5`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewFFmpeg(bin, nil).Transcode(ctx, "/tmp/in.webm", "/tmp/out.mp3")
	if err == nil {
		t.Fatalf("expected error")
	}
	var pe *ProcessError
	if errors.As(err, &pe) {
		t.Fatalf("cancellation must not be reported as a codec failure: %v", err)
	}
}

func TestDropHLSListSize(t *testing.T) {
	got := dropHLSListSize([]string{"-y", "-hls_list_size", "0", "out.mp3"})
	if strings.Join(got, " ") != "-y out.mp3" {
		t.Fatalf("unexpected args %v", got)
	}
}

func TestNewFFmpeg_DefaultsBinary(t *testing.T) {
	f := NewFFmpeg("", nil)
	if f.bin != "ffmpeg" || f.bitrate != "128k" {
		t.Fatalf("unexpected defaults %+v", f)
	}
}
