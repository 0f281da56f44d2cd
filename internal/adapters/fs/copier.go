package fs

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/crate/internal/core/domain"
	"go.trai.ch/crate/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Copier = (*Copier)(nil)

// Copier writes files into a package destination. Writes go through a temporary file in the
// target directory followed by a rename, so readers never observe a partial file.
type Copier struct {
	hasher *Hasher
}

// NewCopier creates a new Copier.
func NewCopier(hasher *Hasher) *Copier {
	return &Copier{hasher: hasher}
}

// EnsureWritable creates dir and checks that a file can be created inside it.
func (c *Copier) EnsureWritable(dir string) error {
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.With(errors.Join(domain.ErrIO, err), "path", dir)
	}

	probe, err := os.CreateTemp(dir, ".crate-probe-*")
	if err != nil {
		return zerr.With(errors.Join(domain.ErrIO, err), "path", dir)
	}
	name := probe.Name()
	_ = probe.Close()
	if err := os.Remove(name); err != nil {
		return zerr.With(errors.Join(domain.ErrIO, err), "path", name)
	}
	return nil
}

// CopyFile copies src to dst. It returns false without writing when dst already has the
// same content and mode as src.
func (c *Copier) CopyFile(src, dst string) (bool, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return false, zerr.With(zerr.Wrap(err, "failed to stat source file"), "path", src)
	}

	same, err := c.sameContent(src, dst, srcInfo)
	if err != nil {
		return false, err
	}
	if same {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(dst), domain.DirPerm); err != nil {
		return false, zerr.With(errors.Join(domain.ErrIO, err), "path", filepath.Dir(dst))
	}

	if err := c.atomicCopy(src, dst, srcInfo.Mode().Perm()); err != nil {
		return false, zerr.With(errors.Join(domain.ErrIO, err), "path", dst)
	}
	return true, nil
}

func (c *Copier) sameContent(src, dst string, srcInfo fs.FileInfo) (bool, error) {
	dstInfo, err := os.Stat(dst)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, zerr.With(errors.Join(domain.ErrIO, err), "path", dst)
	}
	if dstInfo.IsDir() {
		return false, zerr.With(zerr.Wrap(domain.ErrIO, "destination is a directory"), "path", dst)
	}
	if dstInfo.Size() != srcInfo.Size() || dstInfo.Mode().Perm() != srcInfo.Mode().Perm() {
		return false, nil
	}

	srcHash, err := c.hasher.HashFile(src)
	if err != nil {
		return false, err
	}
	dstHash, err := c.hasher.HashFile(dst)
	if err != nil {
		return false, err
	}
	return srcHash == dstHash, nil
}

func (c *Copier) atomicCopy(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src) //nolint:gosec // Path comes from the resolved source tree
	if err != nil {
		return err
	}
	defer in.Close() //nolint:errcheck // Read-only handle

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".crate-copy-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Clean up temp file on error
	defer func() {
		if _, statErr := os.Stat(tmpName); statErr == nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, in); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, dst)
}
