// Package config provides the descriptor loader for crate.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"go.trai.ch/crate/internal/core/domain"
	"go.trai.ch/crate/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.DescriptorLoader = (*Loader)(nil)

// Loader implements ports.DescriptorLoader using a YAML file.
type Loader struct {
	logger ports.Logger
}

// NewLoader creates a new descriptor loader.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load reads the descriptor at path and returns the validated metadata.
func (l *Loader) Load(path string) (*domain.PackageMetadata, error) {
	meta, err := Load(path)
	if err != nil {
		return nil, err
	}

	if meta.Source.Kind != domain.SourceKindNone && l.logger != nil {
		l.logger.Warn(fmt.Sprintf("descriptor enables the %s source step", meta.Source.Kind))
	}
	return meta, nil
}

// Load reads a descriptor file from the given path.
func Load(path string) (*domain.PackageMetadata, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.With(errors.Join(domain.ErrDescriptorRead, err), "path", path)
	}

	meta, err := Parse(data)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return meta, nil
}

// Parse decodes descriptor content and builds the package metadata.
func Parse(data []byte) (*domain.PackageMetadata, error) {
	var d Descriptor
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Join(domain.ErrDescriptorParse, err)
	}

	opts := []domain.MetadataOption{
		domain.WithDescription(d.Description),
		domain.WithLicense(d.License),
		domain.WithURL(d.URL),
		domain.WithRepoURL(d.RepoURL),
		domain.WithAuthor(d.Author),
		domain.WithExportPatterns(d.ExportsSources...),
		domain.WithIgnore(d.Ignore...),
	}

	if len(d.Package) > 0 {
		rules := make([]domain.CopyRule, len(d.Package))
		for i, r := range d.Package {
			rules[i] = domain.CopyRule{
				Pattern:  strings.TrimSpace(r.Pattern),
				Dst:      cleanDst(r.Dst),
				Flatten:  r.Flatten,
				Optional: r.Optional,
			}
		}
		opts = append(opts, domain.WithRules(rules...))
	}

	if d.Source != nil {
		kind, err := domain.ParseSourceKind(d.Source.Kind)
		if err != nil {
			return nil, err
		}
		opts = append(opts, domain.WithSource(domain.SourceSpec{
			Kind:    kind,
			URL:     d.Source.URL,
			Ref:     d.Source.Ref,
			Retries: d.Source.Retries,
		}))
	}

	return domain.NewPackageMetadata(d.Name, d.Version, opts...)
}

// cleanDst normalizes a rule destination. "." and "" both mean the package root.
func cleanDst(dst string) string {
	dst = strings.TrimSpace(dst)
	if dst == "" {
		return ""
	}
	cleaned := path.Clean(strings.ReplaceAll(dst, "\\", "/"))
	if cleaned == "." {
		return ""
	}
	return cleaned
}
