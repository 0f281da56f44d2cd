package fs

import (
	"os"
	"path/filepath"

	"go.trai.ch/crate/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Verifier = (*Verifier)(nil)

// Verifier checks the state of a package destination.
type Verifier struct{}

// NewVerifier creates a new Verifier.
func NewVerifier() *Verifier {
	return &Verifier{}
}

// VerifyFiles reports whether every file listed in files exists below root.
func (v *Verifier) VerifyFiles(root string, files []string) (bool, error) {
	for _, file := range files {
		path := filepath.Join(root, filepath.FromSlash(file))
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return false, nil
			}
			return false, zerr.With(zerr.Wrap(err, "failed to stat packaged file"), "path", path)
		}
	}
	return true, nil
}
