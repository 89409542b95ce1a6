package audio

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ProbeResult is the decoded output of an ffprobe inspection.
type ProbeResult struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

type Stream struct {
	Index      int    `json:"index"`
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`
}

type Format struct {
	Filename   string `json:"filename"`
	Duration   string `json:"duration"`
	FormatName string `json:"format_name"`
	Size       string `json:"size"`
	BitRate    string `json:"bit_rate"`
}

// DurationSeconds returns the container duration in seconds, or 0 when
// unavailable.
func (r ProbeResult) DurationSeconds() float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(r.Format.Duration), 64)
	if err != nil {
		return 0
	}
	return v
}

// FormatName returns the container format reported by ffprobe.
func (r ProbeResult) FormatName() string {
	return r.Format.FormatName
}

// AudioCodec returns the codec name of the first audio stream.
func (r ProbeResult) AudioCodec() string {
	for _, s := range r.Streams {
		if strings.EqualFold(s.CodecType, "audio") {
			return s.CodecName
		}
	}
	return ""
}

// FFprobe invokes the ffprobe binary to inspect source audio files.
type FFprobe struct {
	Command string
}

// NewFFprobe returns an FFprobe using the given command, defaulting to
// "ffprobe" when empty.
func NewFFprobe(command string) *FFprobe {
	if strings.TrimSpace(command) == "" {
		command = "ffprobe"
	}
	return &FFprobe{Command: command}
}

// Probe runs ffprobe against path and decodes its JSON output. It returns
// ErrProbe when the tool is unavailable, fails, or reports no duration.
func (f *FFprobe) Probe(ctx context.Context, path string) (ProbeResult, error) {
	cmd := exec.CommandContext(ctx, f.Command,
		"-hide_banner",
		"-loglevel", "error",
		"-show_format",
		"-show_streams",
		"-of", "json",
		path,
	)

	output, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return ProbeResult{}, ctx.Err()
		}
		detail := ""
		if exitErr, ok := err.(*exec.ExitError); ok {
			detail = ": " + strings.TrimSpace(string(exitErr.Stderr))
		}
		return ProbeResult{}, fmt.Errorf("%w: %s: %v%s", ErrProbe, path, err, detail)
	}

	var result ProbeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return ProbeResult{}, fmt.Errorf("%w: decoding ffprobe output: %v", ErrProbe, err)
	}

	if result.DurationSeconds() <= 0 {
		return ProbeResult{}, fmt.Errorf("%w: %s: invalid or non-splittable source file", ErrProbe, path)
	}

	return result, nil
}
