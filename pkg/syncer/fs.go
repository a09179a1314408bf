package syncer

import (
	"fmt"
	"os"
	"path/filepath"
)

// FS is where descriptors are read and generated files written. Names are
// slash-separated and relative to the output directory.
type FS interface {
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte) error
}

// OSFS is an FS on the local disk rooted at Root.
type OSFS struct {
	Root string
}

func (f OSFS) path(name string) string {
	return filepath.Join(f.Root, filepath.FromSlash(name))
}

// ReadFile reads name under Root.
func (f OSFS) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(f.path(name))
}

// WriteFile replaces name atomically: the data goes to a temp file in the
// same directory which is then renamed over the target.
func (f OSFS) WriteFile(name string, data []byte) error {
	target := f.path(name)
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to set file mode: %w", err)
	}

	// Rename is atomic on POSIX.
	if err := os.Rename(tmpPath, target); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename %s: %w", filepath.Base(target), err)
	}
	return nil
}
