// Package storage finalizes extracted tracks: it moves them from the
// per-file temporary directory into their destination layout, honoring
// the overwrite policy and the collection folder mode.
package storage

import (
	"context"
	"fmt"
)

// ErrFilesystem is returned when placing a finalized track fails. The
// temporary files are left in place for inspection.
var ErrFilesystem = fmt.Errorf("filesystem error")

// Backend places finalized track files at a destination. dir is a
// relative collection path ("" or e.g. "Artist/Album"); name the final
// filename.
type Backend interface {
	// Exists reports whether name already exists under dir.
	Exists(ctx context.Context, dir, name string) (bool, error)

	// Place moves the temporary file to dir/name, replacing any existing
	// destination.
	Place(ctx context.Context, tempPath, dir, name string) error
}

// Answer is a Prompter's reply to an overwrite conflict.
type Answer int

const (
	AnswerYes Answer = iota
	AnswerNo
	// AnswerAlways and AnswerNever apply to the rest of the run.
	AnswerAlways
	AnswerNever
)

// Prompter resolves overwrite conflicts when the policy is "ask".
type Prompter interface {
	ConfirmOverwrite(path string) (Answer, error)
}
