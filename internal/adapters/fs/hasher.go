package fs

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/crate/internal/core/domain"
	"go.trai.ch/crate/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher provides hashing functionality for package files.
type Hasher struct {
	limit int
}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{limit: runtime.NumCPU()}
}

// HashFile computes the XXHash of a file's content.
func (h *Hasher) HashFile(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}

	return hasher.Sum64(), nil
}

// HashTree hashes files (slash-separated, relative to root) and combines them into a single
// hash. The result only depends on the paths and their content, not on the input order.
func (h *Hasher) HashTree(ctx context.Context, root string, files []string) (string, []domain.PackagedFile, error) {
	sorted := make([]string, len(files))
	copy(sorted, files)
	sort.Strings(sorted)

	sums := make([]uint64, len(sorted))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(h.limit)
	for i, rel := range sorted {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sum, err := h.HashFile(filepath.Join(root, filepath.FromSlash(rel)))
			if err != nil {
				return err
			}
			sums[i] = sum
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", nil, err
	}

	tree := xxhash.New()
	packaged := make([]domain.PackagedFile, len(sorted))
	for i, rel := range sorted {
		_, _ = tree.WriteString(rel)
		_, _ = tree.Write([]byte{0}) // Separator
		if err := binary.Write(tree, binary.LittleEndian, sums[i]); err != nil {
			return "", nil, zerr.Wrap(err, "failed to write hash to digest")
		}
		packaged[i] = domain.PackagedFile{Path: rel, Hash: fmt.Sprintf("%016x", sums[i])}
	}

	return fmt.Sprintf("%016x", tree.Sum64()), packaged, nil
}
