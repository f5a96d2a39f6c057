package fsutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultFileMode is used for files that did not exist before.
const DefaultFileMode os.FileMode = 0o644

// BackupSuffix is appended to the path of a sidecar backup.
const BackupSuffix = ".xmlsyntax.bak"

// WriteAtomic replaces the file at path with content through a temporary
// file in the same directory and a rename. On failure the original file is
// left untouched. A zero mode means DefaultFileMode.
func WriteAtomic(ctx context.Context, path string, content []byte, mode os.FileMode) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if mode == 0 {
		mode = DefaultFileMode
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	success = true
	return nil
}

// SaveOptions controls Source.Save.
type SaveOptions struct {
	// Backup keeps the text that was read next to the file, unless a
	// backup already exists there.
	Backup bool

	// Force writes even when the file changed on disk since it was read.
	Force bool
}

// Save writes newText over the source file, keeping its mode. It returns
// false without writing when newText equals the text that was read.
func (s *Source) Save(ctx context.Context, newText string, opts SaveOptions) (bool, error) {
	if newText == s.Text {
		return false, nil
	}

	if !opts.Force {
		changed, err := s.Changed(ctx)
		if err != nil {
			return false, err
		}
		if changed {
			return false, fmt.Errorf("%w: %s", ErrModified, s.Path)
		}
	}

	if opts.Backup {
		backup := s.Path + BackupSuffix
		if _, err := os.Stat(backup); os.IsNotExist(err) {
			if err := WriteAtomic(ctx, backup, []byte(s.Text), s.Mode); err != nil {
				return false, fmt.Errorf("write backup: %w", err)
			}
		}
	}

	if err := WriteAtomic(ctx, s.Path, []byte(newText), s.Mode); err != nil {
		return false, err
	}
	return true, nil
}
