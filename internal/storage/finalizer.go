package storage

import (
	"context"
	"fmt"
	"log/slog"

	"cuesplit/config"
	"cuesplit/internal/domain"
	"cuesplit/internal/names"
)

// TrackFile is a finished temporary output awaiting finalization.
type TrackFile struct {
	TempPath string
	Name     string
}

// Finalizer moves finished temporary outputs into their destination
// layout through a Backend.
type Finalizer struct {
	backend    Backend
	prompter   Prompter
	overwrite  string
	collection string
}

// NewFinalizer builds a Finalizer. prompter may be nil unless the
// overwrite policy is "ask".
func NewFinalizer(backend Backend, prompter Prompter, overwrite, collection string) *Finalizer {
	return &Finalizer{
		backend:    backend,
		prompter:   prompter,
		overwrite:  overwrite,
		collection: collection,
	}
}

// CollectionPath computes the relative destination directory for a sheet
// according to the collection mode. Empty metadata falls back to
// placeholder names so no path segment is ever empty.
func (f *Finalizer) CollectionPath(sheet *domain.CueSheet) string {
	author := names.PathSegment(sheet.Performer, names.FallbackAuthor)
	album := names.PathSegment(sheet.Album, names.FallbackAlbum)

	switch f.collection {
	case config.CollectionAuthor:
		return author
	case config.CollectionAlbum:
		return album
	case config.CollectionAuthorAlbum:
		return author + "/" + album
	default:
		return ""
	}
}

// Finalize places each track file, honoring the overwrite policy. It
// returns the number of files placed. Placement errors stop finalization
// and leave remaining temp files untouched.
func (f *Finalizer) Finalize(ctx context.Context, sheet *domain.CueSheet, files []TrackFile) (int, error) {
	dir := f.CollectionPath(sheet)
	policy := f.overwrite

	placed := 0
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return placed, err
		}

		exists, err := f.backend.Exists(ctx, dir, file.Name)
		if err != nil {
			return placed, err
		}

		if exists {
			switch policy {
			case config.OverwriteNever:
				slog.Info("Not overwriting existing file", "name", file.Name)
				continue
			case config.OverwriteAsk:
				answer, err := f.ask(dir, file.Name)
				if err != nil {
					return placed, err
				}
				switch answer {
				case AnswerNo:
					continue
				case AnswerNever:
					policy = config.OverwriteNever
					continue
				case AnswerAlways:
					policy = config.OverwriteAlways
				}
			}
		}

		if err := f.backend.Place(ctx, file.TempPath, dir, file.Name); err != nil {
			return placed, err
		}
		placed++
	}

	return placed, nil
}

func (f *Finalizer) ask(dir, name string) (Answer, error) {
	if f.prompter == nil {
		return AnswerNo, fmt.Errorf("%w: overwrite conflict for %s and no prompter configured", ErrFilesystem, name)
	}
	path := name
	if dir != "" {
		path = dir + "/" + name
	}
	return f.prompter.ConfirmOverwrite(path)
}
