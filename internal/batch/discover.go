// Package batch drives a whole run: it discovers CUE files, then takes
// each file through parse, command building, execution and finalization.
// Files are processed strictly one after another; a failing file is
// logged and skipped, it never aborts the batch.
package batch

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoInput is returned when discovery finds no CUE files at all. It is
// the only error that is fatal to a whole run.
var ErrNoInput = fmt.Errorf("no input files found")

// Discover expands the given paths into a de-duplicated, ordered list of
// CUE files. Directories are searched for .cue files, descending into
// subdirectories only when recursive is set. Non-CUE files and missing
// paths are logged and discarded.
func Discover(targets []string, recursive bool) ([]string, error) {
	var found []string
	seen := make(map[string]bool)

	add := func(path string) {
		abs, err := filepath.Abs(path)
		if err != nil {
			slog.Warn("Skipping path", "path", path, "error", err)
			return
		}
		if !seen[abs] {
			seen[abs] = true
			found = append(found, abs)
		}
	}

	for _, target := range targets {
		info, err := os.Stat(target)
		if err != nil {
			slog.Warn("Input path does not exist", "path", target)
			continue
		}

		if !info.IsDir() {
			if !isCueFile(target) {
				slog.Warn("Discarding non-CUE input file", "path", target)
				continue
			}
			add(target)
			continue
		}

		if recursive {
			err = filepath.WalkDir(target, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !d.IsDir() && isCueFile(path) {
					add(path)
				}
				return nil
			})
			if err != nil {
				slog.Warn("Error walking directory", "path", target, "error", err)
			}
			continue
		}

		entries, err := os.ReadDir(target)
		if err != nil {
			slog.Warn("Error reading directory", "path", target, "error", err)
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() && isCueFile(entry.Name()) {
				add(filepath.Join(target, entry.Name()))
			}
		}
	}

	if len(found) == 0 {
		return nil, ErrNoInput
	}

	return found, nil
}

func isCueFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".cue")
}
