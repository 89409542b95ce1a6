// Package audio builds and runs the external FFmpeg/ffprobe invocations
// that do the actual splitting work. Command construction is pure; the
// Runner owns the subprocess.
package audio

import (
	"fmt"
	"path/filepath"
	"strings"

	"cuesplit/internal/domain"
	"cuesplit/internal/names"
)

// FormatCopy selects stream copy instead of re-encoding. The output file
// keeps the source extension.
const FormatCopy = "copy"

// codecArgs maps output formats to their ffmpeg encoder arguments.
// Opus is always 48kHz for fullband audio, so no sample rate is forced.
var codecArgs = map[string][]string{
	"wav":  {"-c:a", "pcm_s16le", "-ar", "44100"},
	"flac": {"-c:a", "flac", "-ar", "44100"},
	"ogg":  {"-c:a", "libvorbis", "-ar", "44100"},
	"opus": {"-c:a", "libopus"},
	"mp3":  {"-c:a", "libmp3lame", "-ar", "44100"},
}

// Formats lists the supported output formats, FormatCopy excluded.
func Formats() []string {
	return []string{"wav", "flac", "mp3", "ogg", "opus"}
}

// CommandSpec is one ffmpeg invocation, fully assembled. One spec is
// built per track of a sheet.
type CommandSpec struct {
	Program string
	Args    []string

	// OutputName is the final filename ("NN - Title.ext"); TempPath is
	// where ffmpeg writes before finalization.
	OutputName string
	TempPath   string

	TrackNumber int
	TrackTitle  string
	DurationSec float64
}

// String renders the invocation for dry runs and logs.
func (s CommandSpec) String() string {
	parts := make([]string, 0, len(s.Args)+1)
	parts = append(parts, s.Program)
	for _, a := range s.Args {
		if strings.ContainsAny(a, " \"") {
			a = fmt.Sprintf("%q", a)
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

// Builder constructs ffmpeg argument lists from a resolved CUE sheet.
type Builder struct {
	// FFmpegCmd is the ffmpeg executable, defaulting to "ffmpeg".
	FFmpegCmd string
	// LogLevel is passed to ffmpeg's -loglevel.
	LogLevel string
	// Format is one of Formats() or FormatCopy.
	Format string
	// ExtraParams are additional user-supplied ffmpeg arguments, appended
	// after the codec selection.
	ExtraParams string
	// ReportProgress adds the machine-readable progress output used by
	// the runner's progress parsing.
	ReportProgress bool
}

// Build returns one CommandSpec per track of the sheet, writing outputs
// into tempDir. The sheet must already have been resolved so durations
// are known.
func (b *Builder) Build(sheet *domain.CueSheet, tempDir string) ([]CommandSpec, error) {
	ext, codec, err := b.codecSetup(sheet.SourceFile)
	if err != nil {
		return nil, err
	}

	program := b.FFmpegCmd
	if program == "" {
		program = "ffmpeg"
	}
	logLevel := b.LogLevel
	if logLevel == "" {
		logLevel = "info"
	}

	specs := make([]CommandSpec, 0, len(sheet.Tracks))
	for _, track := range sheet.Tracks {
		name := fmt.Sprintf("%02d - %s.%s", track.Number, names.TitleOrFallback(track.Title), ext)

		args := []string{"-hide_banner", "-loglevel", logLevel}
		if b.ReportProgress {
			args = append(args, "-progress", "pipe:1", "-nostats", "-nostdin")
		}
		args = append(args,
			"-i", sheet.SourceFile,
			"-ss", formatSeconds(track.StartSec),
			"-t", formatSeconds(track.DurationSec),
			"-map", "0:a",
		)
		args = append(args, trackMetadata(sheet, track, len(sheet.Tracks))...)
		args = append(args, codec...)
		if b.ExtraParams != "" {
			args = append(args, strings.Fields(b.ExtraParams)...)
		}
		args = append(args, "-y", filepath.Join(tempDir, name))

		specs = append(specs, CommandSpec{
			Program:     program,
			Args:        args,
			OutputName:  name,
			TempPath:    filepath.Join(tempDir, name),
			TrackNumber: track.Number,
			TrackTitle:  track.Title,
			DurationSec: track.DurationSec,
		})
	}

	return specs, nil
}

// codecSetup picks the output extension and encoder arguments for the
// configured format. Stream copy keeps the source extension, but is
// refused for APE containers, which ffmpeg cannot split without
// re-encoding; supplying extra params overrides the refusal.
func (b *Builder) codecSetup(sourceFile string) (string, []string, error) {
	if b.Format == FormatCopy {
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(sourceFile)), ".")
		if ext == "ape" && b.ExtraParams == "" {
			return "", nil, fmt.Errorf("%w: cannot stream-copy split an APE container, "+
				"choose an output format or supply explicit encoder parameters", ErrUnsupportedFormat)
		}
		return ext, []string{"-c", "copy"}, nil
	}

	codec, ok := codecArgs[b.Format]
	if !ok {
		return "", nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, b.Format)
	}
	return b.Format, codec, nil
}

// trackMetadata assembles the -metadata tag arguments for a track. Tags
// come from the CUE sheet only, never from the source audio file. Empty
// values are omitted.
func trackMetadata(sheet *domain.CueSheet, track *domain.Track, total int) []string {
	artist := track.Performer
	if artist == "" {
		artist = sheet.Performer
	}

	pairs := []struct{ key, val string }{
		{"ARTIST", artist},
		{"ALBUM", sheet.Album},
		{"TITLE", track.Title},
		{"TRACK", fmt.Sprintf("%d/%d", track.Number, total)},
		{"GENRE", sheet.Genre},
		{"DATE", sheet.Date},
		{"COMMENT", sheet.Comment},
		{"DISCID", sheet.DiscID},
		{"DISCNUMBER", sheet.DiscNumber},
	}

	args := make([]string, 0, len(pairs)*2+2)
	args = append(args, "-map_metadata", "-1")
	for _, p := range pairs {
		if p.val == "" {
			continue
		}
		args = append(args, "-metadata", fmt.Sprintf("%s=%s", p.key, p.val))
	}
	return args
}

func formatSeconds(v float64) string {
	return fmt.Sprintf("%.6f", v)
}
