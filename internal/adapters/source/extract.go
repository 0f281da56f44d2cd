package source

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.trai.ch/crate/internal/core/domain"
	"go.trai.ch/zerr"
)

// defaultMaxEntrySize caps a single extracted file to guard against decompression bombs.
const defaultMaxEntrySize = 1 << 30

var (
	zipMagic  = []byte("PK\x03\x04")
	gzipMagic = []byte{0x1f, 0x8b}
)

// entry is a single archive member, independent of the archive format.
type entry struct {
	name string
	dir  bool
	mode os.FileMode
	open func() (io.ReadCloser, error)
}

// extract detects the archive format of f and unpacks it into dst. A single
// top-level directory shared by every entry is stripped. Entries larger than limit
// bytes are rejected.
func extract(f *os.File, size int64, dst string, limit int64) error {
	head := make([]byte, 4)
	if _, err := f.ReadAt(head, 0); err != nil && !errors.Is(err, io.EOF) {
		return zerr.Wrap(domain.ErrUnsupportedArchive, err.Error())
	}

	switch {
	case bytes.HasPrefix(head, zipMagic):
		return extractZip(f, size, dst, limit)
	case bytes.HasPrefix(head, gzipMagic):
		return extractTarGz(f, dst, limit)
	default:
		return zerr.Wrap(domain.ErrUnsupportedArchive, "expected a zip or tar.gz archive")
	}
}

func extractZip(r io.ReaderAt, size int64, dst string, limit int64) error {
	zr, err := zip.NewReader(r, size)
	if errors.Is(err, zip.ErrInsecurePath) {
		return zerr.Wrap(domain.ErrUnsafeArchivePath, "refusing to extract")
	}
	if err != nil {
		return errors.Join(domain.ErrUnsupportedArchive, err)
	}

	entries := make([]entry, 0, len(zr.File))
	for _, f := range zr.File {
		mode := f.Mode()
		if mode&os.ModeSymlink != 0 {
			continue
		}
		entries = append(entries, entry{
			name: f.Name,
			dir:  f.FileInfo().IsDir(),
			mode: mode.Perm(),
			open: f.Open,
		})
	}
	return writeEntries(entries, dst, limit)
}

// extractTarGz reads the archive twice: once to find the common prefix and once to write.
func extractTarGz(f *os.File, dst string, limit int64) error {
	var names []string
	if err := walkTarGz(f, func(h *tar.Header, _ io.Reader) error {
		if h.Typeflag == tar.TypeDir || h.Typeflag == tar.TypeReg {
			names = append(names, h.Name)
		}
		return nil
	}); err != nil {
		return err
	}
	prefix := commonRoot(names)

	return walkTarGz(f, func(h *tar.Header, r io.Reader) error {
		var e entry
		switch h.Typeflag {
		case tar.TypeDir:
			e = entry{name: h.Name, dir: true}
		case tar.TypeReg:
			e = entry{
				name: h.Name,
				mode: os.FileMode(h.Mode).Perm(), //nolint:gosec // Mode bits are masked to permissions
				open: func() (io.ReadCloser, error) { return io.NopCloser(r), nil },
			}
		default:
			return nil
		}
		return writeEntry(e, prefix, dst, limit)
	})
}

func walkTarGz(f *os.File, fn func(*tar.Header, io.Reader) error) error {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		return errors.Join(domain.ErrUnsupportedArchive, err)
	}
	defer func() { _ = zr.Close() }()

	tr := tar.NewReader(zr)
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if errors.Is(err, tar.ErrInsecurePath) {
			return zerr.Wrap(domain.ErrUnsafeArchivePath, "refusing to extract")
		}
		if err != nil {
			return errors.Join(domain.ErrUnsupportedArchive, err)
		}
		if err := fn(header, tr); err != nil {
			return err
		}
	}
}

func writeEntries(entries []entry, dst string, limit int64) error {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.name)
	}
	prefix := commonRoot(names)

	for _, e := range entries {
		if err := writeEntry(e, prefix, dst, limit); err != nil {
			return err
		}
	}
	return nil
}

func writeEntry(e entry, prefix, dst string, limit int64) error {
	name := strings.TrimPrefix(path.Clean("/"+e.name), "/")
	if raw := strings.TrimSuffix(e.name, "/"); raw != name {
		// Clean changed the name, so it held "..", "." or a leading slash.
		if !filepath.IsLocal(filepath.FromSlash(raw)) {
			return zerr.With(zerr.Wrap(domain.ErrUnsafeArchivePath, "refusing to extract"), "entry", e.name)
		}
	}
	if prefix != "" {
		name = strings.TrimPrefix(strings.TrimPrefix(name, prefix), "/")
	}
	if name == "" {
		return nil
	}

	target, err := sanitizeArchivePath(dst, name)
	if err != nil {
		return zerr.With(err, "entry", e.name)
	}

	if e.dir {
		if err := os.MkdirAll(target, domain.DirPerm); err != nil {
			return zerr.With(errors.Join(domain.ErrIO, err), "path", target)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(target), domain.DirPerm); err != nil {
		return zerr.With(errors.Join(domain.ErrIO, err), "path", target)
	}

	mode := e.mode
	if mode == 0 {
		mode = domain.FilePerm
	}

	rc, err := e.open()
	if err != nil {
		return errors.Join(domain.ErrUnsupportedArchive, err)
	}
	defer func() { _ = rc.Close() }()

	//nolint:gosec // target is sanitized against dst
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return zerr.With(errors.Join(domain.ErrIO, err), "path", target)
	}

	n, err := io.Copy(out, io.LimitReader(rc, limit+1))
	if err != nil {
		_ = out.Close()
		return zerr.With(errors.Join(domain.ErrIO, err), "path", target)
	}
	if n > limit {
		_ = out.Close()
		return zerr.With(zerr.Wrap(domain.ErrUnsupportedArchive, "archive entry exceeds size limit"), "entry", e.name)
	}
	if err := out.Close(); err != nil {
		return zerr.With(errors.Join(domain.ErrIO, err), "path", target)
	}
	return nil
}

// sanitizeArchivePath joins name onto dst and rejects results outside dst.
func sanitizeArchivePath(dst, name string) (string, error) {
	rel := filepath.FromSlash(name)
	if !filepath.IsLocal(rel) {
		return "", zerr.Wrap(domain.ErrUnsafeArchivePath, "refusing to extract")
	}

	target := filepath.Join(dst, rel)
	base := filepath.Clean(dst) + string(os.PathSeparator)
	if !strings.HasPrefix(target, base) {
		return "", zerr.Wrap(domain.ErrUnsafeArchivePath, "refusing to extract")
	}
	return target, nil
}

// commonRoot returns the single top-level directory shared by all names, or "" if
// there is none or if it is the only entry.
func commonRoot(names []string) string {
	root := ""
	nested := false
	for _, n := range names {
		n = strings.TrimPrefix(n, "./")
		first, rest, found := strings.Cut(n, "/")
		if first == "" {
			return ""
		}
		if !found {
			// A top-level file means there is nothing to strip.
			return ""
		}
		if root == "" {
			root = first
		} else if root != first {
			return ""
		}
		if rest != "" {
			nested = true
		}
	}
	if !nested {
		return ""
	}
	return root
}
