package batch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cuesplit/config"
	"cuesplit/internal/audio"
	"cuesplit/internal/storage"
)

type fakeProber struct {
	duration string
	err      error
}

func (p *fakeProber) Probe(_ context.Context, _ string) (audio.ProbeResult, error) {
	if p.err != nil {
		return audio.ProbeResult{}, p.err
	}
	return audio.ProbeResult{Format: audio.Format{Duration: p.duration, FormatName: "flac"}}, nil
}

type fakeRunner struct {
	failOnTrack int
	runs        []audio.CommandSpec
}

func (r *fakeRunner) Run(_ context.Context, spec audio.CommandSpec, onProgress func(float64)) error {
	r.runs = append(r.runs, spec)
	if r.failOnTrack == spec.TrackNumber {
		return fmt.Errorf("track %d: %w", spec.TrackNumber, audio.ErrProcessing)
	}
	if onProgress != nil {
		onProgress(spec.DurationSec)
	}
	return os.WriteFile(spec.TempPath, []byte("audio"), 0644)
}

func writeAlbum(t *testing.T, dir, name string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".flac"), []byte("flac"), 0644))

	cuePath := filepath.Join(dir, name+".cue")
	content := fmt.Sprintf(`PERFORMER "Artist"
TITLE "%s"
FILE "%s.flac" WAVE
TRACK 01 AUDIO
TITLE "One"
INDEX 01 00:00:00
TRACK 02 AUDIO
TITLE "Two"
INDEX 01 03:30:00
`, name, name)
	require.NoError(t, os.WriteFile(cuePath, []byte(content), 0644))
	return cuePath
}

func newTestOrchestrator(outDir string, runner *fakeRunner) *Orchestrator {
	opts := &config.Options{OutputDir: outDir, Overwrite: config.OverwriteAlways}
	if err := opts.Validate(); err != nil {
		panic(err)
	}

	o := New(opts, config.Default())
	o.Prober = &fakeProber{duration: "600.0"}
	o.NewRunner = func(_ io.Writer) audio.Runner { return runner }
	return o
}

func TestRunSplitsAndFinalizes(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	cuePath := writeAlbum(t, srcDir, "album")

	runner := &fakeRunner{}
	o := newTestOrchestrator(outDir, runner)

	summary, err := o.Run(context.Background(), []string{cuePath})
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)

	result := summary.Results[0]
	require.NoError(t, result.Err)
	assert.Equal(t, 2, result.Tracks)
	assert.Equal(t, 2, result.Placed)
	assert.Len(t, runner.runs, 2)

	for _, name := range []string{"01 - One.flac", "02 - Two.flac"} {
		_, err := os.Stat(filepath.Join(outDir, name))
		assert.NoError(t, err, name)
	}

	// Run log lands next to the outputs.
	_, err = os.Stat(filepath.Join(outDir, "album.cuesplit.log"))
	assert.NoError(t, err)
}

func TestRunTrackFailureAbortsFileNotBatch(t *testing.T) {
	srcDir := t.TempDir()
	otherDir := t.TempDir()
	outDir := t.TempDir()
	first := writeAlbum(t, srcDir, "first")
	second := writeAlbum(t, otherDir, "second")

	runner := &fakeRunner{failOnTrack: 1}
	o := newTestOrchestrator(outDir, runner)

	summary, err := o.Run(context.Background(), []string{first, second})
	require.NoError(t, err)
	require.Len(t, summary.Results, 2)

	// Both files failed on their first track, second file still ran.
	assert.Equal(t, 2, summary.Failed())
	assert.ErrorIs(t, summary.Results[0].Err, audio.ErrProcessing)
	assert.ErrorIs(t, summary.Results[1].Err, audio.ErrProcessing)

	// Track 2 of the first file was never attempted.
	for _, spec := range runner.runs {
		assert.Equal(t, 1, spec.TrackNumber)
	}

	// Nothing was finalized.
	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.Contains(t, e.Name(), ".cuesplit.log")
	}
}

func TestRunParseFailureSkipsFile(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()

	bad := filepath.Join(srcDir, "bad.cue")
	require.NoError(t, os.WriteFile(bad, []byte("REM nothing here\n"), 0644))
	good := writeAlbum(t, srcDir, "good")

	runner := &fakeRunner{}
	o := newTestOrchestrator(outDir, runner)

	summary, err := o.Run(context.Background(), []string{bad, good})
	require.NoError(t, err)
	require.Len(t, summary.Results, 2)
	assert.Equal(t, 1, summary.Failed())
	assert.Error(t, summary.Results[0].Err)
	assert.NoError(t, summary.Results[1].Err)
}

func TestRunProbeFailureSkipsFile(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	cuePath := writeAlbum(t, srcDir, "album")

	runner := &fakeRunner{}
	o := newTestOrchestrator(outDir, runner)
	o.Prober = &fakeProber{err: fmt.Errorf("%w: no duration", audio.ErrProbe)}

	summary, err := o.Run(context.Background(), []string{cuePath})
	require.NoError(t, err)
	assert.ErrorIs(t, summary.Results[0].Err, audio.ErrProbe)
	assert.Empty(t, runner.runs)
}

func TestRunDryRunTouchesNothing(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	cuePath := writeAlbum(t, srcDir, "album")

	runner := &fakeRunner{}
	o := newTestOrchestrator(outDir, runner)
	o.Options.DryRun = true

	summary, err := o.Run(context.Background(), []string{cuePath})
	require.NoError(t, err)
	require.NoError(t, summary.Results[0].Err)

	assert.Empty(t, runner.runs)
	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunDeleteSource(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	cuePath := writeAlbum(t, srcDir, "album")
	audioPath := filepath.Join(srcDir, "album.flac")

	runner := &fakeRunner{}
	o := newTestOrchestrator(outDir, runner)
	o.Options.DeleteSource = true

	summary, err := o.Run(context.Background(), []string{cuePath})
	require.NoError(t, err)
	require.NoError(t, summary.Results[0].Err)

	_, err = os.Stat(audioPath)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(cuePath)
	assert.True(t, os.IsNotExist(err))
}

func TestRunDeleteSourceSkippedWhenNotAllPlaced(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	cuePath := writeAlbum(t, srcDir, "album")

	// Pre-existing conflicting output with policy never: one track skipped.
	require.NoError(t, os.WriteFile(filepath.Join(outDir, "01 - One.flac"), []byte("old"), 0644))

	runner := &fakeRunner{}
	o := newTestOrchestrator(outDir, runner)
	o.Options.DeleteSource = true
	o.Options.Overwrite = config.OverwriteNever

	summary, err := o.Run(context.Background(), []string{cuePath})
	require.NoError(t, err)
	require.NoError(t, summary.Results[0].Err)
	assert.Equal(t, 1, summary.Results[0].Placed)

	// Sources must survive.
	_, err = os.Stat(cuePath)
	assert.NoError(t, err)
}

func TestRunCancelledContext(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	cuePath := writeAlbum(t, srcDir, "album")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := &fakeRunner{}
	o := newTestOrchestrator(outDir, runner)

	_, err := o.Run(ctx, []string{cuePath})
	assert.ErrorIs(t, err, context.Canceled)

	// No outputs were finalized for the interrupted run.
	entries, readErr := os.ReadDir(outDir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestRunNoInput(t *testing.T) {
	o := newTestOrchestrator(t.TempDir(), &fakeRunner{})
	_, err := o.Run(context.Background(), []string{t.TempDir()})
	assert.ErrorIs(t, err, ErrNoInput)
}


func TestRunFinalizeFailurePreservesTempFiles(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	cuePath := writeAlbum(t, srcDir, "album")

	// Conflicting destination with policy ask and no prompter wired:
	// finalization fails with a filesystem error.
	require.NoError(t, os.WriteFile(filepath.Join(outDir, "01 - One.flac"), []byte("old"), 0644))

	runner := &fakeRunner{}
	o := newTestOrchestrator(outDir, runner)
	o.Options.Overwrite = config.OverwriteAsk
	o.Prompter = nil

	summary, err := o.Run(context.Background(), []string{cuePath})
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)
	assert.ErrorIs(t, summary.Results[0].Err, storage.ErrFilesystem)

	// The extracted tracks survive in the temp dir for inspection.
	require.Len(t, runner.runs, 2)
	for _, spec := range runner.runs {
		_, err := os.Stat(spec.TempPath)
		assert.NoError(t, err, spec.OutputName)
	}
	tempDir := filepath.Dir(runner.runs[0].TempPath)
	t.Cleanup(func() { os.RemoveAll(tempDir) })
}

func TestOpenRunLogAppendsAcrossSheets(t *testing.T) {
	outDir := t.TempDir()
	o := newTestOrchestrator(outDir, &fakeRunner{})

	// Two sheets with the same basename from different directories share
	// one log file; neither wipes the other's output.
	first, err := o.openRunLog(outDir, "/a/album.cue")
	require.NoError(t, err)
	_, err = first.WriteString("first sheet\n")
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := o.openRunLog(outDir, "/b/album.cue")
	require.NoError(t, err)
	_, err = second.WriteString("second sheet\n")
	require.NoError(t, err)
	require.NoError(t, second.Close())

	data, err := os.ReadFile(filepath.Join(outDir, "album.cuesplit.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "first sheet")
	assert.Contains(t, string(data), "second sheet")
}
