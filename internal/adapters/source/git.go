package source

import (
	"context"
	"errors"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"go.trai.ch/crate/internal/core/domain"
	"go.trai.ch/crate/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Source = (*Git)(nil)

// Git clones the package repository at its version tag.
type Git struct {
	// Depth limits the clone history. Zero fetches the full history.
	Depth int
}

// NewGit creates a Git source that performs shallow clones.
func NewGit() *Git {
	return &Git{Depth: 1}
}

// Kind returns domain.SourceKindGit.
func (s *Git) Kind() domain.SourceKind {
	return domain.SourceKindGit
}

// Fetch clones meta.RepoURL at meta.GitRef() into dst.
func (s *Git) Fetch(ctx context.Context, meta *domain.PackageMetadata, dst string) error {
	if meta.RepoURL == "" {
		return zerr.With(zerr.Wrap(domain.ErrFetch, "descriptor has no repo_url"), "name", meta.Name)
	}

	tag := meta.GitRef()
	logf(ctx, "cloning "+meta.RepoURL+" at "+tag)

	_, err := git.PlainCloneContext(ctx, dst, false, &git.CloneOptions{
		URL:           meta.RepoURL,
		ReferenceName: plumbing.NewTagReferenceName(tag),
		SingleBranch:  true,
		Depth:         s.Depth,
		Tags:          git.NoTags,
	})
	if err != nil {
		err = zerr.With(errors.Join(domain.ErrFetch, err), "url", meta.RepoURL)
		return zerr.With(err, "ref", tag)
	}
	return nil
}
