// Package cue parses CUE sheet files into the domain model. The parser
// auto-detects the sheet's character encoding and tolerates unknown or
// malformed directives, which are logged and skipped rather than failing
// the whole file.
package cue

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"cuesplit/internal/domain"
)

// ErrParse is returned when a CUE sheet is unreadable, describes no
// tracks, or references a source audio file that cannot be found.
var ErrParse = fmt.Errorf("cue parse error")

// alternativeExtensions are tried when the FILE directive names an audio
// file that does not exist, keeping the basename. Rips are often
// transcoded after the CUE sheet was written.
var alternativeExtensions = []string{".flac", ".ape", ".wv", ".wav", ".m4a"}

// Open reads, decodes and parses the CUE sheet at path. charset may be an
// IANA encoding name, or "auto" (or empty) for detection.
func Open(path, charset string) (*domain.CueSheet, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrParse, abs, err)
	}

	text, err := decodeText(data, charset)
	if err != nil {
		return nil, err
	}

	sheet, err := Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", abs, err)
	}
	sheet.CuePath = abs

	source, err := resolveSource(filepath.Dir(abs), sheet.SourceFile)
	if err != nil {
		return nil, err
	}
	sheet.SourceFile = source

	return sheet, nil
}

// Parse parses decoded CUE sheet text. The returned sheet's SourceFile is
// the raw FILE directive value; Open resolves it against the sheet's
// directory.
func Parse(text string) (*domain.CueSheet, error) {
	sheet := &domain.CueSheet{
		Album:     "Unknown",
		Performer: "Unknown",
	}

	var current *domain.Track

	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		cmd, rest := splitDirective(line)
		switch cmd {
		case "REM":
			key, val := splitDirective(rest)
			sheet.SetRemark(key, unquote(val))

		case "TITLE":
			if current != nil {
				current.Title = unquote(rest)
			} else {
				sheet.Album = unquote(rest)
			}

		case "PERFORMER":
			if current != nil {
				current.Performer = unquote(rest)
			} else {
				sheet.Performer = unquote(rest)
			}

		case "FILE":
			name, ftype := splitFileDirective(rest)
			if sheet.SourceFile != "" {
				slog.Warn("Multiple FILE directives, only the first is used", "ignored", name)
				continue
			}
			sheet.SourceFile = name
			sheet.FileType = ftype

		case "TRACK":
			numStr, dtype := splitDirective(rest)
			if !strings.EqualFold(dtype, "AUDIO") {
				slog.Debug("Skipping non-audio track", "line", line)
				current = nil
				continue
			}
			num, err := strconv.Atoi(numStr)
			if err != nil {
				slog.Warn("Malformed TRACK directive", "line", line)
				continue
			}
			current = &domain.Track{Number: num, Title: "Unknown", Performer: sheet.Performer}
			sheet.Tracks = append(sheet.Tracks, current)

		case "INDEX":
			numStr, pos := splitDirective(rest)
			if numStr != "01" || current == nil {
				continue
			}
			idx, err := parseIndexTime(pos)
			if err != nil {
				slog.Warn("Malformed INDEX directive", "line", line, "error", err)
				continue
			}
			current.Index = idx
			current.StartSec = idx.ToSeconds()

		default:
			slog.Debug("Ignoring unknown directive", "line", line)
		}
	}

	if len(sheet.Tracks) == 0 {
		return nil, fmt.Errorf("%w: no audio tracks found", ErrParse)
	}

	for i := 1; i < len(sheet.Tracks); i++ {
		if sheet.Tracks[i].StartSec < sheet.Tracks[i-1].StartSec {
			return nil, fmt.Errorf("%w: track %d starts before track %d",
				ErrParse, sheet.Tracks[i].Number, sheet.Tracks[i-1].Number)
		}
	}

	return sheet, nil
}

// resolveSource resolves the FILE directive value against the CUE sheet's
// directory, trying common lossless extensions when the literal name is
// missing.
func resolveSource(dir, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: no FILE directive", ErrParse)
	}

	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	base := strings.TrimSuffix(name, filepath.Ext(name))
	for _, ext := range alternativeExtensions {
		alt := filepath.Join(dir, base+ext)
		if _, err := os.Stat(alt); err == nil {
			slog.Info("Audio file not found, using sibling", "missing", name, "using", base+ext)
			return alt, nil
		}
	}

	return "", fmt.Errorf("%w: source audio file not found: %s", ErrParse, path)
}

// splitDirective splits a line into its leading keyword and the remainder.
func splitDirective(line string) (string, string) {
	cmd, rest, _ := strings.Cut(line, " ")
	return cmd, strings.TrimSpace(rest)
}

// splitFileDirective splits a FILE directive's arguments into filename and
// type. The filename may contain spaces, so the type is the final
// space-separated token.
func splitFileDirective(rest string) (string, string) {
	i := strings.LastIndex(rest, " ")
	if i < 0 {
		return unquote(rest), ""
	}
	return unquote(rest[:i]), strings.TrimSpace(rest[i+1:])
}

func unquote(s string) string {
	return strings.Trim(s, ` "`)
}

func parseIndexTime(pos string) (domain.IndexTime, error) {
	parts := strings.Split(pos, ":")
	if len(parts) != 3 {
		return domain.IndexTime{}, fmt.Errorf("expected mm:ss:ff, got %q", pos)
	}

	var vals [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return domain.IndexTime{}, fmt.Errorf("invalid timestamp %q: %w", pos, err)
		}
		vals[i] = v
	}

	if vals[1] > 59 || vals[2] >= domain.FramesPerSecond {
		return domain.IndexTime{}, fmt.Errorf("timestamp out of range: %q", pos)
	}

	return domain.IndexTime{Minutes: vals[0], Seconds: vals[1], Frames: vals[2]}, nil
}
