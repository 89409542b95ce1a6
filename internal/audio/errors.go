package audio

import (
	"fmt"
)

var (
	ErrFileNotFound = fmt.Errorf("file not found")
	ErrFileEmpty    = fmt.Errorf("file is empty")
	ErrInvalidPath  = fmt.Errorf("invalid path")

	// ErrProbe is returned when ffprobe is unavailable or reports no
	// usable duration for the source file.
	ErrProbe = fmt.Errorf("probe error")

	// ErrProcessing is returned when an ffmpeg invocation exits non-zero
	// or cannot be started.
	ErrProcessing = fmt.Errorf("processing error")

	// ErrUnsupportedFormat is returned for output formats the command
	// builder cannot produce.
	ErrUnsupportedFormat = fmt.Errorf("unsupported format")
)

// ffmpegError wraps ffmpeg command failures with additional context.
type ffmpegError struct {
	cmd     string
	output  string
	wrapped error
}

func (e *ffmpegError) Error() string {
	return fmt.Sprintf("ffmpeg error: %s\nCommand: %s\nOutput: %s", e.wrapped, e.cmd, e.output)
}

func (e *ffmpegError) Unwrap() error {
	return e.wrapped
}

// newFFmpegError creates a new ffmpegError with a truncated command string.
func newFFmpegError(cmdStr string, output []byte, err error) error {
	if len(cmdStr) > 200 {
		cmdStr = cmdStr[:200] + "..."
	}
	return &ffmpegError{
		cmd:     cmdStr,
		output:  string(output),
		wrapped: fmt.Errorf("%w: %v", ErrProcessing, err),
	}
}
