// Package source implements the variants of the descriptor's source step.
package source

import (
	"context"

	"go.trai.ch/crate/internal/core/domain"
	"go.trai.ch/crate/internal/core/ports"
)

var _ ports.Source = (*NoOp)(nil)

// NoOp is the default source variant. It touches neither the filesystem nor the network.
type NoOp struct{}

// NewNoOp creates a new NoOp source.
func NewNoOp() *NoOp {
	return &NoOp{}
}

// Kind returns domain.SourceKindNone.
func (s *NoOp) Kind() domain.SourceKind {
	return domain.SourceKindNone
}

// Fetch returns nil.
func (s *NoOp) Fetch(_ context.Context, _ *domain.PackageMetadata, _ string) error {
	return nil
}

func logf(ctx context.Context, msg string) {
	if v, ok := ports.VertexFromContext(ctx); ok {
		v.Log(domain.LogLevelInfo, msg)
	}
}
