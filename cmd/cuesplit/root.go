package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"cuesplit/config"
	"cuesplit/internal/batch"
	"cuesplit/internal/progress"
	"cuesplit/internal/storage"
)

func newRootCommand() *cobra.Command {
	var (
		configFlag     string
		logLevelFlag   string
		inputs         []string
		ffmpegCmd      string
		ffprobeCmd     string
		ffmpegLogLevel string
	)
	opts := &config.Options{}

	rootCmd := &cobra.Command{
		Use:   "cuesplit",
		Short: "Split audio files according to their CUE sheets",
		Long: `cuesplit reads CUE sheets, resolves the track timeline against the
source audio file and extracts each track with ffmpeg, tagged from the
sheet metadata.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFlag)
			if err != nil {
				return err
			}
			if ffmpegCmd != "" {
				cfg.FFmpegCmd = ffmpegCmd
			}
			if ffprobeCmd != "" {
				cfg.FFprobeCmd = ffprobeCmd
			}
			if ffmpegLogLevel != "" {
				cfg.FFmpegLogLevel = ffmpegLogLevel
			}
			if logLevelFlag != "" {
				cfg.LogLevel = logLevelFlag
			}
			setupLogging(cfg.LogLevel)

			if err := opts.Validate(); err != nil {
				return err
			}

			targets := append(inputs, args...)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, opts, cfg, targets)
		},
	}

	rootCmd.Flags().StringArrayVarP(&inputs, "input", "i", nil, "CUE file or directory to process (repeatable)")
	rootCmd.Flags().BoolVarP(&opts.Recursive, "recursive", "r", false, "Search directories recursively for CUE files")
	rootCmd.Flags().StringVarP(&opts.Format, "format", "f", "flac", "Output format (wav, flac, mp3, ogg, opus, copy)")
	rootCmd.Flags().StringVarP(&opts.OutputDir, "output-dir", "o", "", "Destination directory (default: alongside each CUE file)")
	rootCmd.Flags().StringVarP(&opts.Collection, "collection", "c", "", "Folder layout: author, album or author+album")
	rootCmd.Flags().StringVar(&opts.Overwrite, "overwrite", "ask", "Conflicting file policy: ask, never or always")
	rootCmd.Flags().StringVar(&opts.Encoding, "characters-encoding", "auto", "CUE sheet character encoding")
	rootCmd.Flags().StringVar(&opts.ExtraParams, "ffmpeg-add-params", "", "Extra ffmpeg arguments appended to each command")
	rootCmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Log the ffmpeg commands without running them")
	rootCmd.Flags().BoolVar(&opts.DeleteSource, "del-orig-files", false, "Delete source audio and CUE files after a fully successful split")
	rootCmd.Flags().StringVar(&ffmpegCmd, "ffmpeg-cmd", "", "Path to the ffmpeg executable")
	rootCmd.Flags().StringVar(&ffprobeCmd, "ffprobe-cmd", "", "Path to the ffprobe executable")
	rootCmd.Flags().StringVar(&ffmpegLogLevel, "ffmpeg-loglevel", "", "ffmpeg log level")
	rootCmd.Flags().StringVar(&configFlag, "config", "", "Configuration file path")
	rootCmd.Flags().StringVar(&logLevelFlag, "log-level", "", "Log level (debug, info, warn, error)")

	return rootCmd
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func setupLogging(level string) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
}

func run(ctx context.Context, opts *config.Options, cfg *config.Config, targets []string) error {
	orch := batch.New(opts, cfg)

	if !opts.DryRun {
		orch.Reporter = progress.NewBar()
	}
	if opts.Overwrite == config.OverwriteAsk {
		orch.Prompter = storage.NewTerminalPrompter()
	}

	if cfg.Storage.Type == "gcs" {
		var gcsBackend *storage.GCS
		orch.Backend = func(ctx context.Context, _ string) (storage.Backend, error) {
			if gcsBackend == nil {
				backend, err := storage.NewGCS(ctx, cfg.Storage.Bucket, cfg.Storage.ObjectPrefix, cfg.Storage.CredentialsFile)
				if err != nil {
					return nil, err
				}
				gcsBackend = backend
			}
			return gcsBackend, nil
		}
		defer func() {
			if gcsBackend != nil {
				gcsBackend.Close()
			}
		}()
	}

	summary, err := orch.Run(ctx, targets)
	if err != nil {
		return err
	}

	processed := len(summary.Results)
	failed := summary.Failed()
	slog.Info("Batch complete", "files", processed, "failed", failed)

	if failed == processed && processed > 0 {
		return fmt.Errorf("all %d file(s) failed", processed)
	}
	return nil
}
