package fs

import (
	"path"
	"path/filepath"
	"sort"
	"strings"

	"go.trai.ch/crate/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.PatternResolver = (*Resolver)(nil)

// Resolver implements the PatternResolver interface on top of Walker.
type Resolver struct {
	walker *Walker
}

// NewResolver creates a new Resolver.
func NewResolver(walker *Walker) *Resolver {
	return &Resolver{walker: walker}
}

// Match returns the files below root matching pattern.
//
// A pattern without a slash is matched against the base name of every file at any depth,
// so "*.hpp" selects headers in sub-directories too. A pattern with a slash is matched
// against the whole slash-separated relative path.
func (r *Resolver) Match(root, pattern string, ignores []string) ([]string, error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to match pattern"), "pattern", pattern)
	}

	byBase := !strings.Contains(pattern, "/")
	unique := make(map[string]bool)

	for file, err := range r.walker.WalkFiles(root, ignores) {
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to walk source tree"), "pattern", pattern)
		}

		rel, err := filepath.Rel(root, file)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to relativize path"), "path", file)
		}
		rel = filepath.ToSlash(rel)

		subject := rel
		if byBase {
			subject = path.Base(rel)
		}

		// The pattern was validated above, so Match cannot fail here.
		if ok, _ := path.Match(pattern, subject); ok {
			unique[rel] = true
		}
	}

	result := make([]string, 0, len(unique))
	for rel := range unique {
		result = append(result, rel)
	}
	sort.Strings(result)

	return result, nil
}
