package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tempDir := t.TempDir()

	configPath := filepath.Join(tempDir, "test_config.yaml")
	configContent := `
log_level: debug
ffmpeg_cmd: /opt/ffmpeg/bin/ffmpeg
ffprobe_cmd: /opt/ffmpeg/bin/ffprobe
storage:
  type: local
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)

	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/opt/ffmpeg/bin/ffmpeg", cfg.FFmpegCmd)
	assert.Equal(t, "/opt/ffmpeg/bin/ffprobe", cfg.FFprobeCmd)
	assert.Equal(t, "local", cfg.Storage.Type)
	// Defaults for absent fields.
	assert.Equal(t, "info", cfg.FFmpegLogLevel)
}

func TestLoadNonExistentFile(t *testing.T) {
	cfg, err := Load("non_existent_file.yaml")

	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadInvalidYAML(t *testing.T) {
	tempDir := t.TempDir()

	configPath := filepath.Join(tempDir, "invalid_config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("log_level: [unclosed"), 0644))

	cfg, err := Load(configPath)
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadGCSRequiresBucket(t *testing.T) {
	tempDir := t.TempDir()

	configPath := filepath.Join(tempDir, "gcs_config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("storage:\n  type: gcs\n"), 0644))

	_, err := Load(configPath)
	assert.Error(t, err)
}

func TestOptionsValidateDefaults(t *testing.T) {
	opts := &Options{}
	require.NoError(t, opts.Validate())

	assert.Equal(t, "flac", opts.Format)
	assert.Equal(t, OverwriteAsk, opts.Overwrite)
	assert.Equal(t, "auto", opts.Encoding)
	assert.Equal(t, CollectionNone, opts.Collection)
}

func TestOptionsValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"bad format", Options{Format: "aiff"}},
		{"bad collection", Options{Collection: "genre"}},
		{"bad overwrite", Options{Overwrite: "maybe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.opts.Validate())
		})
	}
}
