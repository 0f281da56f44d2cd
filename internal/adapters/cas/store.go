// Package cas implements the package record store.
package cas

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.trai.ch/crate/internal/core/domain"
	"go.trai.ch/crate/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.RecordStore = (*Store)(nil)

// Store implements ports.RecordStore using a flat JSON file keyed by package ID.
// The file is read on first use, so commands that never consult records never touch it.
type Store struct {
	path    string
	mu      sync.RWMutex
	once    sync.Once
	loadErr error
	cache   map[string]domain.PackageRecord
}

// NewStore creates a new RecordStore backed by the file at the given path.
func NewStore(path string) *Store {
	return &Store{
		path:  filepath.Clean(path),
		cache: make(map[string]domain.PackageRecord),
	}
}

func (s *Store) ensureLoaded() {
	s.once.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.loadErr = s.load()
	})
}

// load reads the backing file into the cache. The caller must hold s.mu.
func (s *Store) load() error {
	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.With(errors.Join(domain.ErrRecordStoreRead, err), "path", s.path)
	}

	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, &s.cache); err != nil {
		return zerr.With(errors.Join(domain.ErrRecordStoreRead, err), "path", s.path)
	}
	return nil
}

// save writes the cache to disk. The caller must hold s.mu.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.cache, "", "  ")
	if err != nil {
		return errors.Join(domain.ErrRecordStoreWrite, err)
	}

	if err := atomicWriteFile(s.path, data); err != nil {
		return zerr.With(errors.Join(domain.ErrRecordStoreWrite, err), "path", s.path)
	}
	return nil
}

// Get retrieves the record for a package ID.
func (s *Store) Get(id string) (*domain.PackageRecord, error) {
	s.ensureLoaded()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.loadErr != nil {
		return nil, s.loadErr
	}

	record, ok := s.cache[id]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

// Put stores the record. An unreadable backing file is replaced.
func (s *Store) Put(record domain.PackageRecord) error {
	s.ensureLoaded()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loadErr != nil {
		s.cache = make(map[string]domain.PackageRecord)
	}
	s.cache[record.ID] = record
	if err := s.save(); err != nil {
		return err
	}
	s.loadErr = nil
	return nil
}

// atomicWriteFile writes data to a file atomically by writing to a temp file and renaming it.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(dir, "records-*.json")
	if err != nil {
		return err
	}
	tmpName := tmpFile.Name()

	// Clean up temp file on error
	defer func() {
		if _, statErr := os.Stat(tmpName); statErr == nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Chmod(domain.FilePerm); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
