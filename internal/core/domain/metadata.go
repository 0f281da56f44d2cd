package domain

import (
	"errors"
	"path"
	"slices"
	"strings"

	"github.com/github/go-spdx/v2/spdxexp"
	"github.com/hashicorp/go-version"
	"github.com/package-url/packageurl-go"
	"go.trai.ch/zerr"
)

// SourceKind selects how the sources of a package are obtained.
type SourceKind string

const (
	// SourceKindNone leaves the working tree untouched. This is the default.
	SourceKindNone SourceKind = "none"
	// SourceKindArchive downloads and extracts a versioned archive.
	SourceKindArchive SourceKind = "archive"
	// SourceKindGit clones the repository at the version tag.
	SourceKindGit SourceKind = "git"
)

// ParseSourceKind converts a string to a SourceKind. The empty string maps to SourceKindNone.
func ParseSourceKind(s string) (SourceKind, error) {
	switch SourceKind(strings.ToLower(strings.TrimSpace(s))) {
	case "", SourceKindNone:
		return SourceKindNone, nil
	case SourceKindArchive:
		return SourceKindArchive, nil
	case SourceKindGit:
		return SourceKindGit, nil
	default:
		return "", zerr.With(zerr.Wrap(ErrUnknownSourceKind, "invalid source"), "kind", s)
	}
}

// SourceSpec describes the source step of a descriptor.
type SourceSpec struct {
	// Kind selects the source variant.
	Kind SourceKind
	// URL is an archive URL template. {name} and {version} are substituted.
	// When empty it is derived from the package homepage.
	URL string
	// Ref is the git tag template used by the git variant. Defaults to "v{version}".
	Ref string
	// Retries is the number of download retries. Zero disables retrying.
	Retries int
}

// CopyRule selects files for the package step and places them below Dst.
type CopyRule struct {
	Pattern  string
	Dst      string
	Flatten  bool
	Optional bool
}

// PackageMetadata is the static description of a package. It is built once when the
// descriptor is loaded and must not be mutated afterwards.
type PackageMetadata struct {
	Name        string
	Version     string
	Description string
	License     string
	URL         string
	RepoURL     string
	Author      string

	// ExportPatterns selects the files that make up the exported source snapshot.
	ExportPatterns []string

	// Rules drive the package step.
	Rules []CopyRule

	// Ignore lists base-name patterns skipped while walking the source tree.
	Ignore []string

	Source SourceSpec
}

// MetadataOption configures optional PackageMetadata fields.
type MetadataOption func(*PackageMetadata)

// WithDescription sets the package description.
func WithDescription(d string) MetadataOption {
	return func(m *PackageMetadata) { m.Description = d }
}

// WithLicense sets the SPDX license expression.
func WithLicense(l string) MetadataOption {
	return func(m *PackageMetadata) { m.License = l }
}

// WithURL sets the package homepage.
func WithURL(u string) MetadataOption {
	return func(m *PackageMetadata) { m.URL = u }
}

// WithRepoURL sets the VCS location.
func WithRepoURL(u string) MetadataOption {
	return func(m *PackageMetadata) { m.RepoURL = u }
}

// WithAuthor sets the package author.
func WithAuthor(a string) MetadataOption {
	return func(m *PackageMetadata) { m.Author = a }
}

// WithExportPatterns sets the export patterns.
func WithExportPatterns(patterns ...string) MetadataOption {
	return func(m *PackageMetadata) { m.ExportPatterns = append([]string(nil), patterns...) }
}

// WithRules sets the package copy rules.
func WithRules(rules ...CopyRule) MetadataOption {
	return func(m *PackageMetadata) { m.Rules = append([]CopyRule(nil), rules...) }
}

// WithIgnore sets the walk ignore patterns.
func WithIgnore(patterns ...string) MetadataOption {
	return func(m *PackageMetadata) { m.Ignore = append([]string(nil), patterns...) }
}

// WithSource sets the source step specification.
func WithSource(s SourceSpec) MetadataOption {
	return func(m *PackageMetadata) { m.Source = s }
}

// DefaultExportPatterns returns the export patterns used when a descriptor declares none.
func DefaultExportPatterns() []string {
	return []string{"*.hpp", "LICENSE", "README.md"}
}

// DefaultRules returns the copy rules used when a descriptor declares none.
func DefaultRules() []CopyRule {
	return []CopyRule{
		{Pattern: "*.hpp", Dst: DefaultIncludeDir},
		{Pattern: "LICENSE"},
		{Pattern: "README.md"},
	}
}

// NewPackageMetadata builds and validates a PackageMetadata.
func NewPackageMetadata(name, ver string, opts ...MetadataOption) (*PackageMetadata, error) {
	m := &PackageMetadata{
		Name:    strings.TrimSpace(name),
		Version: strings.TrimSpace(ver),
	}
	for _, opt := range opts {
		opt(m)
	}

	if len(m.ExportPatterns) == 0 {
		m.ExportPatterns = DefaultExportPatterns()
	}
	m.ExportPatterns = canonicalizePatterns(m.ExportPatterns)

	if len(m.Rules) == 0 {
		m.Rules = DefaultRules()
	}
	if m.Source.Kind == "" {
		m.Source.Kind = SourceKindNone
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks the metadata invariants.
func (m *PackageMetadata) Validate() error {
	if m.Name == "" {
		return zerr.Wrap(ErrMissingName, "invalid descriptor")
	}
	if m.Version == "" {
		return zerr.With(zerr.Wrap(ErrMissingVersion, "invalid descriptor"), "name", m.Name)
	}
	if _, err := version.NewVersion(m.Version); err != nil {
		return zerr.With(errors.Join(ErrInvalidVersion, err), "version", m.Version)
	}

	if m.License != "" {
		if ok, invalid := spdxexp.ValidateLicenses([]string{m.License}); !ok {
			return zerr.With(zerr.Wrap(ErrInvalidLicense, "invalid descriptor"), "license", strings.Join(invalid, ","))
		}
	}

	if len(m.ExportPatterns) == 0 {
		return zerr.With(zerr.Wrap(ErrInvalidPattern, "no export patterns"), "name", m.Name)
	}
	for _, p := range m.ExportPatterns {
		if err := ValidatePattern(p); err != nil {
			return err
		}
	}
	for _, r := range m.Rules {
		if err := ValidatePattern(r.Pattern); err != nil {
			return err
		}
		if r.Dst != "" && !isLocalPath(r.Dst) {
			return zerr.With(zerr.Wrap(ErrInvalidPattern, "rule destination escapes package root"), "dst", r.Dst)
		}
	}
	for _, p := range m.Ignore {
		if _, err := path.Match(p, ""); err != nil {
			return zerr.With(zerr.Wrap(ErrInvalidPattern, "invalid ignore pattern"), "pattern", p)
		}
	}

	if _, err := ParseSourceKind(string(m.Source.Kind)); err != nil {
		return err
	}
	if m.Source.Retries < 0 {
		return zerr.With(zerr.New("source retries must not be negative"), "retries", m.Source.Retries)
	}
	return nil
}

// ID returns the identity of the produced artifact.
func (m *PackageMetadata) ID() string {
	return m.Name + "/" + m.Version
}

// PURL returns the package-url of the produced artifact.
func (m *PackageMetadata) PURL() string {
	return packageurl.NewPackageURL(packageurl.TypeConan, "", m.Name, m.Version, nil, "").ToString()
}

// ArchiveURL returns the URL of the versioned source archive.
func (m *PackageMetadata) ArchiveURL() string {
	tmpl := m.Source.URL
	if tmpl == "" {
		tmpl = strings.TrimSuffix(m.URL, "/") + "/archive/v{version}.zip"
	}
	return m.expand(tmpl)
}

// GitRef returns the tag cloned by the git source variant.
func (m *PackageMetadata) GitRef() string {
	tmpl := m.Source.Ref
	if tmpl == "" {
		tmpl = "v{version}"
	}
	return m.expand(tmpl)
}

func (m *PackageMetadata) expand(tmpl string) string {
	r := strings.NewReplacer("{name}", m.Name, "{version}", m.Version)
	return r.Replace(tmpl)
}

// ValidatePattern checks that p is a well-formed glob relative to the source root.
func ValidatePattern(p string) error {
	if strings.TrimSpace(p) == "" {
		return zerr.Wrap(ErrInvalidPattern, "empty pattern")
	}
	if _, err := path.Match(p, ""); err != nil {
		return zerr.With(zerr.Wrap(ErrInvalidPattern, err.Error()), "pattern", p)
	}
	if !isLocalPath(p) {
		return zerr.With(zerr.Wrap(ErrInvalidPattern, "pattern escapes source root"), "pattern", p)
	}
	return nil
}

func isLocalPath(p string) bool {
	if strings.HasPrefix(p, "/") {
		return false
	}
	for _, part := range strings.Split(p, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}

func canonicalizePatterns(patterns []string) []string {
	sorted := make([]string, 0, len(patterns))
	for _, p := range patterns {
		sorted = append(sorted, strings.TrimSpace(p))
	}
	slices.Sort(sorted)
	return slices.Compact(sorted)
}
