// Package fs provides file system adapters for matching, copying and hashing package files.
package fs

import (
	"errors"
	"io/fs"
	"iter"
	"path/filepath"

	"go.trai.ch/crate/internal/core/domain"
	"go.trai.ch/zerr"
)

// Walker provides file walking functionality.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkFiles yields all files below root, skipping VCS metadata, crate's state directory and
// entries whose base name matches one of ignores. Yielded paths include root.
//
// A missing root yields nothing. Any other directory that cannot be read ends the walk
// with a single non-nil error wrapping domain.ErrIO.
func (w *Walker) WalkFiles(root string, ignores []string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		stopped := false
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == root && errors.Is(err, fs.ErrNotExist) {
					// A missing tree holds no files.
					return nil
				}
				return err
			}

			if path != root {
				if skip, action := w.shouldSkip(d, ignores); skip {
					return action
				}
			}

			if d.IsDir() {
				return nil
			}

			if !yield(path, nil) {
				stopped = true
				return filepath.SkipAll
			}

			return nil
		})
		if err != nil && !stopped {
			yield("", zerr.With(errors.Join(domain.ErrIO, err), "path", root))
		}
	}
}

// shouldSkip reports whether d is excluded. For directories the returned action is
// filepath.SkipDir so the walk does not descend; for files it is nil.
func (w *Walker) shouldSkip(d fs.DirEntry, ignores []string) (bool, error) {
	name := d.Name()

	if d.IsDir() {
		switch name {
		case ".git", ".jj", domain.DefaultStateDir:
			return true, filepath.SkipDir
		}
	}

	for _, ignore := range ignores {
		if matched, _ := filepath.Match(ignore, name); matched {
			if d.IsDir() {
				return true, filepath.SkipDir
			}
			return true, nil
		}
	}

	return false, nil
}
