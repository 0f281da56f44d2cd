package source

import (
	"go.trai.ch/crate/internal/core/domain"
	"go.trai.ch/crate/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.SourceSelector = (*Selector)(nil)

// Selector picks a source variant by kind.
type Selector struct {
	sources map[domain.SourceKind]ports.Source
}

// NewSelector creates a Selector over the given variants. Later variants replace
// earlier ones of the same kind.
func NewSelector(sources ...ports.Source) *Selector {
	s := &Selector{sources: make(map[domain.SourceKind]ports.Source, len(sources))}
	for _, src := range sources {
		s.sources[src.Kind()] = src
	}
	return s
}

// For returns the variant registered for kind.
func (s *Selector) For(kind domain.SourceKind) (ports.Source, error) {
	if kind == "" {
		kind = domain.SourceKindNone
	}
	src, ok := s.sources[kind]
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrUnknownSourceKind, "no source registered"), "kind", string(kind))
	}
	return src, nil
}
