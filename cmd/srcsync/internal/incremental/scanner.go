package incremental

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/albertocavalcante/srcsync/cmd/srcsync/internal/scope"
)

// ScanConfig configures the scanner.
type ScanConfig struct {
	// Root is the project base.
	Root string
	// Dirs are the group roots to scan, relative to Root. Empty scans Root.
	Dirs []string
	// IgnoreDirs are extra directory names to skip.
	IgnoreDirs []string
}

// Scanner builds an Index by walking the group roots.
type Scanner struct {
	root       string
	dirs       []string
	ignoreDirs map[string]bool
	extensions map[string]bool
}

// NewScanner creates a scanner with the given config.
func NewScanner(cfg ScanConfig) *Scanner {
	dirs := cfg.Dirs
	if len(dirs) == 0 {
		dirs = []string{"."}
	}
	return &Scanner{
		root:       cfg.Root,
		dirs:       dirs,
		ignoreDirs: scope.IgnoreDirSet(cfg.IgnoreDirs),
		extensions: scope.ExtensionSet(),
	}
}

// Scan walks the group roots and hashes every tracked file.
func (s *Scanner) Scan(ctx context.Context) (*Index, error) {
	return s.walk(ctx, true)
}

// ScanFast records mtime and size only, leaving hashes empty.
func (s *Scanner) ScanFast(ctx context.Context) (*Index, error) {
	return s.walk(ctx, false)
}

func (s *Scanner) walk(ctx context.Context, hash bool) (*Index, error) {
	idx := NewIndex()

	for _, dir := range s.dirs {
		start := filepath.Join(s.root, filepath.FromSlash(dir))
		if _, err := os.Stat(start); errors.Is(err, fs.ErrNotExist) {
			// A missing root fails its group at sync time; nothing to track.
			continue
		}

		err := filepath.WalkDir(start, func(p string, d fs.DirEntry, err error) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if err != nil {
				return err
			}

			if d.IsDir() {
				if p != start && s.ignoreDirs[d.Name()] {
					return filepath.SkipDir
				}
				return nil
			}

			if !s.extensions[path.Ext(d.Name())] {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				return err
			}

			rel, err := filepath.Rel(s.root, p)
			if err != nil {
				return err
			}

			e := &Entry{
				Path:    filepath.ToSlash(rel),
				ModTime: info.ModTime().UnixNano(),
				Size:    info.Size(),
			}
			if hash {
				if e.Hash, err = HashFile(p); err != nil {
					return err
				}
			}

			idx.Add(e)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return idx, nil
}
