package incremental

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/albertocavalcante/srcsync/pkg/syncer"
)

const (
	// StateDir is the directory holding srcsync state, under the project base.
	StateDir = ".srcsync"

	// stateFile is the name of the state file.
	stateFile = "state.json"
)

// Store persists the index between runs.
type Store interface {
	Load() (*Index, error)
	Save(idx *Index) error
	Exists() bool
	Clear() error
}

// JSONStore keeps the index as indented JSON in .srcsync/state.json.
type JSONStore struct {
	dir string
	out syncer.OSFS
}

// NewJSONStore returns a store under root/.srcsync.
func NewJSONStore(root string) *JSONStore {
	dir := filepath.Join(root, StateDir)
	return &JSONStore{
		dir: dir,
		out: syncer.OSFS{Root: dir},
	}
}

// Path returns the state file location.
func (s *JSONStore) Path() string {
	return filepath.Join(s.dir, stateFile)
}

// Load reads the index. A missing state file yields an empty index.
func (s *JSONStore) Load() (*Index, error) {
	data, err := s.out.ReadFile(stateFile)
	if errors.Is(err, fs.ErrNotExist) {
		return NewIndex(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}

	if idx.Version > IndexVersion {
		return nil, fmt.Errorf("state file version %d is newer than supported version %d", idx.Version, IndexVersion)
	}
	if idx.Entries == nil {
		idx.Entries = make(map[string]*Entry)
	}

	return &idx, nil
}

// Save stamps and writes the index atomically.
func (s *JSONStore) Save(idx *Index) error {
	if idx == nil {
		return errors.New("cannot save nil index")
	}

	idx.UpdatedAt = time.Now()
	idx.Version = IndexVersion

	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}

	if err := s.out.WriteFile(stateFile, data); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return nil
}

// Exists returns true if the state file exists.
func (s *JSONStore) Exists() bool {
	_, err := os.Stat(s.Path())
	return err == nil
}

// Clear removes the state directory.
func (s *JSONStore) Clear() error {
	return os.RemoveAll(s.dir)
}
