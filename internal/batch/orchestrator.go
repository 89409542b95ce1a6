package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"cuesplit/config"
	"cuesplit/internal/audio"
	"cuesplit/internal/cue"
	"cuesplit/internal/domain"
	"cuesplit/internal/progress"
	"cuesplit/internal/storage"
	"cuesplit/internal/timeline"
)

// BackendFactory builds the storage backend for a file's output
// directory. Local runs get a backend rooted at dir; remote backends may
// ignore it.
type BackendFactory func(ctx context.Context, dir string) (storage.Backend, error)

// Orchestrator runs the full pipeline for each discovered CUE file.
type Orchestrator struct {
	Options  *config.Options
	Config   *config.Config
	Prober   audio.Prober
	Reporter progress.Reporter
	Prompter storage.Prompter
	Backend  BackendFactory

	// NewRunner builds the ffmpeg runner for a file, given its run log
	// writer. Overridable for tests.
	NewRunner func(log io.Writer) audio.Runner
}

// New returns an Orchestrator with local-filesystem finalization and the
// real ffmpeg/ffprobe tools.
func New(opts *config.Options, cfg *config.Config) *Orchestrator {
	return &Orchestrator{
		Options:  opts,
		Config:   cfg,
		Prober:   audio.NewFFprobe(cfg.FFprobeCmd),
		Reporter: progress.Noop{},
		Backend: func(_ context.Context, dir string) (storage.Backend, error) {
			return storage.NewLocal(dir), nil
		},
		NewRunner: func(log io.Writer) audio.Runner {
			return audio.NewFFmpeg(log)
		},
	}
}

// FileResult records the outcome for one CUE file.
type FileResult struct {
	Path   string
	Tracks int
	Placed int
	Err    error
}

// Summary aggregates a whole run.
type Summary struct {
	Results []FileResult
}

// Failed returns the number of files that ended in error.
func (s *Summary) Failed() int {
	n := 0
	for _, r := range s.Results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// Run discovers CUE files from targets and processes them sequentially.
// Per-file failures are recorded in the summary and do not stop the
// batch; only discovery failure (ErrNoInput) or context cancellation is
// returned as an error.
func (o *Orchestrator) Run(ctx context.Context, targets []string) (*Summary, error) {
	files, err := Discover(targets, o.Options.Recursive)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		result := o.processFile(ctx, file)
		if result.Err != nil {
			slog.Error("File failed", "file", file, "error", result.Err)
		}
		summary.Results = append(summary.Results, result)
	}

	return summary, nil
}

func (o *Orchestrator) processFile(ctx context.Context, path string) FileResult {
	result := FileResult{Path: path}

	sheet, err := cue.Open(path, o.Options.Encoding)
	if err != nil {
		result.Err = err
		return result
	}
	result.Tracks = len(sheet.Tracks)

	o.Reporter.StartFile(path, len(sheet.Tracks))
	result.Err = o.split(ctx, sheet, &result)
	o.Reporter.EndFile(result.Err)
	return result
}

func (o *Orchestrator) split(ctx context.Context, sheet *domain.CueSheet, result *FileResult) error {
	if err := audio.ValidateSource(sheet.SourceFile); err != nil {
		return err
	}

	probe, err := o.Prober.Probe(ctx, sheet.SourceFile)
	if err != nil {
		return err
	}
	slog.Debug("Probed source",
		"file", sheet.SourceFile,
		"duration", probe.DurationSeconds(),
		"format", probe.FormatName())

	if err := timeline.Resolve(sheet, probe.DurationSeconds()); err != nil {
		return fmt.Errorf("%w: %v", audio.ErrProbe, err)
	}

	builder := &audio.Builder{
		FFmpegCmd:      o.Config.FFmpegCmd,
		LogLevel:       o.Config.FFmpegLogLevel,
		Format:         o.Options.Format,
		ExtraParams:    o.Options.ExtraParams,
		ReportProgress: !o.Options.DryRun,
	}

	outDir := o.Options.OutputDir
	if outDir == "" {
		outDir = filepath.Dir(sheet.CuePath)
	}

	if o.Options.DryRun {
		specs, err := builder.Build(sheet, outDir)
		if err != nil {
			return err
		}
		for _, spec := range specs {
			slog.Info(spec.String())
		}
		return nil
	}

	tempDir, err := os.MkdirTemp("", "cuesplit_")
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrFilesystem, err)
	}
	// Extracted tracks that could not be finalized are left in the temp
	// dir for inspection; every other outcome cleans it up.
	keepTemp := false
	defer func() {
		if keepTemp {
			slog.Warn("Keeping extracted tracks for inspection", "dir", tempDir)
			return
		}
		os.RemoveAll(tempDir)
	}()

	specs, err := builder.Build(sheet, tempDir)
	if err != nil {
		return err
	}

	logFile, err := o.openRunLog(outDir, sheet.CuePath)
	if err != nil {
		return err
	}
	defer logFile.Close()

	runner := o.NewRunner(logFile)
	files := make([]storage.TrackFile, 0, len(specs))
	for _, spec := range specs {
		o.Reporter.StartTrack(spec.TrackNumber, spec.TrackTitle, spec.DurationSec)
		err := runner.Run(ctx, spec, o.Reporter.TrackProgress)
		o.Reporter.EndTrack(err)
		if err != nil {
			// Remaining tracks of this file are abandoned; the temp dir
			// and any partial output vanish with the deferred cleanup.
			return fmt.Errorf("track %d (%s): %w", spec.TrackNumber, spec.TrackTitle, err)
		}
		files = append(files, storage.TrackFile{TempPath: spec.TempPath, Name: spec.OutputName})
	}

	backend, err := o.Backend(ctx, outDir)
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrFilesystem, err)
	}

	finalizer := storage.NewFinalizer(backend, o.Prompter, o.Options.Overwrite, o.Options.Collection)
	placed, err := finalizer.Finalize(ctx, sheet, files)
	result.Placed = placed
	if err != nil {
		if errors.Is(err, storage.ErrFilesystem) && ctx.Err() == nil {
			keepTemp = true
		}
		return err
	}

	if o.Options.DeleteSource && placed == len(files) {
		if err := removeSources(sheet); err != nil {
			return err
		}
	}

	return nil
}

// openRunLog opens the per-file ffmpeg log in append mode, so sheets
// sharing a basename and an output directory keep each other's output.
func (o *Orchestrator) openRunLog(outDir, cuePath string) (*os.File, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrFilesystem, err)
	}

	base := strings.TrimSuffix(filepath.Base(cuePath), filepath.Ext(cuePath))
	logPath := filepath.Join(outDir, base+".cuesplit.log")
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrFilesystem, err)
	}
	return f, nil
}

// removeSources deletes the original audio file and the CUE sheet, done
// only after every track of the file was finalized.
func removeSources(sheet *domain.CueSheet) error {
	slog.Info("Removing original files", "audio", sheet.SourceFile, "cue", sheet.CuePath)
	for _, path := range []string{sheet.SourceFile, sheet.CuePath} {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("%w: %v", storage.ErrFilesystem, err)
		}
	}
	return nil
}
