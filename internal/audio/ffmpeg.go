package audio

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// FFmpeg runs built command specs as ffmpeg subprocesses, one at a time.
type FFmpeg struct {
	// Log receives ffmpeg's diagnostic output. When nil, diagnostics are
	// only kept for error reporting.
	Log io.Writer
}

// NewFFmpeg returns an FFmpeg runner appending diagnostics to log, which
// may be nil.
func NewFFmpeg(log io.Writer) *FFmpeg {
	return &FFmpeg{Log: log}
}

// ValidateSource checks that a source audio file exists and is non-empty
// before any subprocess is spawned for it.
func ValidateSource(path string) error {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("unable to access file: %s: %w", path, err)
	}

	if fileInfo.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrInvalidPath, path)
	}

	if fileInfo.Size() == 0 {
		return fmt.Errorf("%w: %s", ErrFileEmpty, path)
	}

	return nil
}

// Run executes the spec and blocks until the subprocess exits. When
// onProgress is non-nil the spec must have been built with
// ReportProgress; ffmpeg's out_time_ms lines are parsed from stdout and
// forwarded as seconds of produced output.
func (f *FFmpeg) Run(ctx context.Context, spec CommandSpec, onProgress func(seconds float64)) error {
	slog.Debug("Extracting audio track",
		"track", spec.TrackNumber,
		"output", spec.OutputName,
		"duration", fmt.Sprintf("%.3f", spec.DurationSec),
	)

	cmd := exec.CommandContext(ctx, spec.Program, spec.Args...)

	var errBuf bytes.Buffer
	if f.Log != nil {
		fmt.Fprintf(f.Log, "\ncuesplit command: %s\n"+
			"=======================================================\n\n", spec.String())
		cmd.Stderr = io.MultiWriter(f.Log, &errBuf)
	} else {
		cmd.Stderr = &errBuf
	}

	if onProgress == nil {
		if err := cmd.Run(); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return newFFmpegError(spec.String(), errBuf.Bytes(), err)
		}
		return nil
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProcessing, err)
	}

	if err := cmd.Start(); err != nil {
		return newFFmpegError(spec.String(), nil, err)
	}

	if err := forwardProgress(stdout, onProgress); err != nil {
		slog.Debug("Progress stream read failed", "error", err)
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return newFFmpegError(spec.String(), errBuf.Bytes(), err)
	}

	return nil
}

// forwardProgress reads ffmpeg's -progress stream and forwards progress
// values until it ends. The returned error is the stream's read error,
// if any; the subprocess outcome is reported by Wait, not here.
func forwardProgress(r io.Reader, onProgress func(seconds float64)) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if secs, ok := parseProgressLine(scanner.Text()); ok {
			onProgress(secs)
		}
	}
	return scanner.Err()
}

// parseProgressLine extracts the seconds of output produced from one line
// of ffmpeg's -progress stream ("out_time_ms=12340000", microseconds
// despite the name).
func parseProgressLine(line string) (float64, bool) {
	value, ok := strings.CutPrefix(strings.TrimSpace(line), "out_time_ms=")
	if !ok {
		return 0, false
	}
	us, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, false
	}
	return float64(us) / 1e6, true
}
