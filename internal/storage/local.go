package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Local places finalized tracks on the local filesystem under a root
// output directory.
type Local struct {
	root string
}

// NewLocal returns a Local backend rooted at dir.
func NewLocal(dir string) *Local {
	return &Local{root: dir}
}

func (l *Local) path(dir, name string) string {
	return filepath.Join(l.root, dir, name)
}

func (l *Local) Exists(_ context.Context, dir, name string) (bool, error) {
	_, err := os.Stat(l.path(dir, name))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %v", ErrFilesystem, err)
}

func (l *Local) Place(_ context.Context, tempPath, dir, name string) error {
	dest := l.path(dir, name)
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrFilesystem, filepath.Dir(dest), err)
	}

	if err := os.Rename(tempPath, dest); err != nil {
		// Rename fails across filesystems; fall back to copy+remove.
		if err := copyFile(tempPath, dest); err != nil {
			return fmt.Errorf("%w: moving %s to %s: %v", ErrFilesystem, tempPath, dest, err)
		}
		if err := os.Remove(tempPath); err != nil {
			return fmt.Errorf("%w: removing %s: %v", ErrFilesystem, tempPath, err)
		}
	}

	return nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
