// Package config holds the tool configuration and the validated per-run
// options. Both are immutable once constructed; every component receives
// them explicitly.
package config

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Config is the YAML-file configuration: external tool locations, logging
// and the storage backend for finalized tracks.
type Config struct {
	LogLevel string `yaml:"log_level"`

	FFmpegCmd      string `yaml:"ffmpeg_cmd"`
	FFmpegLogLevel string `yaml:"ffmpeg_loglevel"`
	FFprobeCmd     string `yaml:"ffprobe_cmd"`

	Storage StorageConfig `yaml:"storage"`
}

// StorageConfig selects where finalized tracks are placed.
type StorageConfig struct {
	// Type of storage: "local" or "gcs".
	Type string `yaml:"type"`

	// GCS options.
	Bucket          string `yaml:"bucket"`
	ObjectPrefix    string `yaml:"object_prefix"`
	CredentialsFile string `yaml:"credentials_file"`
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	return &Config{
		LogLevel:       "info",
		FFmpegCmd:      "ffmpeg",
		FFmpegLogLevel: "info",
		FFprobeCmd:     "ffprobe",
		Storage:        StorageConfig{Type: "local"},
	}
}

// Load reads a YAML config file and fills in defaults for absent fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}

	if config.Storage.Type == "" {
		config.Storage.Type = "local"
	}
	if config.Storage.Type == "gcs" && config.Storage.Bucket == "" {
		return nil, fmt.Errorf("storage type gcs requires a bucket")
	}

	return config, nil
}

// Collection folder modes.
const (
	CollectionNone        = ""
	CollectionAuthor      = "author"
	CollectionAlbum       = "album"
	CollectionAuthorAlbum = "author+album"
)

// Overwrite policies for conflicting destination files.
const (
	OverwriteAsk    = "ask"
	OverwriteNever  = "never"
	OverwriteAlways = "always"
)

// Options are the user-specified per-run options, validated once at
// construction and read-only afterwards.
type Options struct {
	// Format is the output format ("wav", "flac", "mp3", "ogg", "opus")
	// or "copy" for stream copy.
	Format string

	// OutputDir is the destination directory; empty means alongside each
	// CUE file.
	OutputDir string

	// Collection selects the Author/Album folder layout.
	Collection string

	// Overwrite is the conflicting-file policy.
	Overwrite string

	// Encoding is the CUE sheet character encoding, "auto" to detect.
	Encoding string

	// ExtraParams are additional ffmpeg arguments appended verbatim.
	ExtraParams string

	// Recursive extends directory discovery to subdirectories.
	Recursive bool

	// DeleteSource removes the original audio and CUE files after all
	// tracks of a file finalize successfully.
	DeleteSource bool

	// DryRun logs the commands that would run without touching anything.
	DryRun bool
}

var (
	validFormats     = []string{"wav", "flac", "mp3", "ogg", "opus", "copy"}
	validCollections = []string{CollectionNone, CollectionAuthor, CollectionAlbum, CollectionAuthorAlbum}
	validOverwrites  = []string{OverwriteAsk, OverwriteNever, OverwriteAlways}
)

// Validate checks enum fields and fills defaults for absent ones.
func (o *Options) Validate() error {
	if o.Format == "" {
		o.Format = "flac"
	}
	if o.Overwrite == "" {
		o.Overwrite = OverwriteAsk
	}
	if o.Encoding == "" {
		o.Encoding = "auto"
	}

	if !slices.Contains(validFormats, o.Format) {
		return fmt.Errorf("invalid output format %q", o.Format)
	}
	if !slices.Contains(validCollections, o.Collection) {
		return fmt.Errorf("invalid collection mode %q", o.Collection)
	}
	if !slices.Contains(validOverwrites, o.Overwrite) {
		return fmt.Errorf("invalid overwrite policy %q", o.Overwrite)
	}

	return nil
}
