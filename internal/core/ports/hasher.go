package ports

import (
	"context"

	"go.trai.ch/crate/internal/core/domain"
)

// Hasher defines the interface for computing content hashes.
//
//go:generate go run go.uber.org/mock/mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Hasher interface {
	// HashFile computes the hash of a single file.
	HashFile(path string) (uint64, error)

	// HashTree hashes the given files, relative to root, and returns a hash over the whole set
	// together with the per-file hashes sorted by path.
	HashTree(ctx context.Context, root string, files []string) (string, []domain.PackagedFile, error)
}
