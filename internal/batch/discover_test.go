package batch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("FILE"), 0644))
}

func TestDiscoverExplicitFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.cue")
	b := filepath.Join(dir, "b.CUE")
	touch(t, a)
	touch(t, b)

	files, err := Discover([]string{a, b}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, files)
}

func TestDiscoverShallowDirectory(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "album.cue"))
	touch(t, filepath.Join(dir, "album.flac"))
	touch(t, filepath.Join(dir, "nested", "deep.cue"))

	files, err := Discover([]string{dir}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "album.cue")}, files)
}

func TestDiscoverRecursive(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "album.cue"))
	touch(t, filepath.Join(dir, "nested", "deep.cue"))
	touch(t, filepath.Join(dir, "nested", "readme.txt"))

	files, err := Discover([]string{dir}, true)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "album.cue"),
		filepath.Join(dir, "nested", "deep.cue"),
	}, files)
}

func TestDiscoverDeduplicates(t *testing.T) {
	dir := t.TempDir()
	cuePath := filepath.Join(dir, "album.cue")
	touch(t, cuePath)

	// Same file given explicitly and via its directory.
	files, err := Discover([]string{cuePath, dir}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{cuePath}, files)
}

func TestDiscoverIgnoresNonCueAndMissing(t *testing.T) {
	dir := t.TempDir()
	cuePath := filepath.Join(dir, "album.cue")
	flacPath := filepath.Join(dir, "album.flac")
	touch(t, cuePath)
	touch(t, flacPath)

	files, err := Discover([]string{cuePath, flacPath, filepath.Join(dir, "missing.cue")}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{cuePath}, files)
}

func TestDiscoverNothingFound(t *testing.T) {
	dir := t.TempDir()

	_, err := Discover([]string{dir}, true)
	assert.ErrorIs(t, err, ErrNoInput)

	_, err = Discover(nil, false)
	assert.ErrorIs(t, err, ErrNoInput)
}
