// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/crate/internal/core/domain"
)

// Source obtains the sources of a package.
//
//go:generate go run go.uber.org/mock/mockgen -source=source.go -destination=mocks/mock_source.go -package=mocks
type Source interface {
	// Kind reports which variant this is.
	Kind() domain.SourceKind

	// Fetch populates dst with the sources of the package described by meta.
	// Implementations wrap failures in domain.ErrFetch.
	Fetch(ctx context.Context, meta *domain.PackageMetadata, dst string) error
}

// SourceSelector picks the Source variant for a descriptor.
type SourceSelector interface {
	// For returns the Source implementing kind.
	For(kind domain.SourceKind) (Source, error)
}
