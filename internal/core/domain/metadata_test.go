package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/crate/internal/core/domain"
)

func TestNewPackageMetadata_Defaults(t *testing.T) {
	m, err := domain.NewPackageMetadata("NamedType", "1.0.0",
		domain.WithDescription("Strong typing for C++"),
		domain.WithLicense("MIT"),
		domain.WithURL("https://github.com/joboccara/NamedType"),
		domain.WithRepoURL("https://github.com/joboccara/NamedType.git"),
		domain.WithAuthor("Jonathan Boccara (jonathan@fluentcpp.com)"),
	)
	require.NoError(t, err)

	assert.Equal(t, "NamedType", m.Name)
	assert.Equal(t, "1.0.0", m.Version)
	assert.Equal(t, []string{"*.hpp", "LICENSE", "README.md"}, m.ExportPatterns)
	assert.Equal(t, domain.DefaultRules(), m.Rules)
	assert.Equal(t, domain.SourceKindNone, m.Source.Kind)
	assert.Equal(t, "NamedType/1.0.0", m.ID())
	assert.Equal(t, "pkg:conan/NamedType@1.0.0", m.PURL())
}

func TestNewPackageMetadata_ValidPairs(t *testing.T) {
	pairs := []struct{ name, version string }{
		{"NamedType", "1.0.0"},
		{"fmt", "10.2.1"},
		{"x", "0.1"},
		{"lib-with-dash", "2.0.0-rc.1"},
	}

	for _, p := range pairs {
		t.Run(p.name+"@"+p.version, func(t *testing.T) {
			m, err := domain.NewPackageMetadata(p.name, p.version)
			require.NoError(t, err)
			assert.NotEmpty(t, m.Name)
			assert.NotEmpty(t, m.Version)
		})
	}
}

func TestNewPackageMetadata_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		pkgName  string
		version  string
		opts     []domain.MetadataOption
		expected error
	}{
		{"missing name", "", "1.0.0", nil, domain.ErrMissingName},
		{"blank name", "   ", "1.0.0", nil, domain.ErrMissingName},
		{"missing version", "NamedType", "", nil, domain.ErrMissingVersion},
		{"bad version", "NamedType", "not-a-version", nil, domain.ErrInvalidVersion},
		{"bad license", "NamedType", "1.0.0", []domain.MetadataOption{domain.WithLicense("NOT-A-LICENSE")}, domain.ErrInvalidLicense},
		{"bad pattern", "NamedType", "1.0.0", []domain.MetadataOption{domain.WithExportPatterns("[")}, domain.ErrInvalidPattern},
		{"escaping pattern", "NamedType", "1.0.0", []domain.MetadataOption{domain.WithExportPatterns("../*.hpp")}, domain.ErrInvalidPattern},
		{"escaping rule dst", "NamedType", "1.0.0", []domain.MetadataOption{
			domain.WithRules(domain.CopyRule{Pattern: "*.hpp", Dst: "../include"}),
		}, domain.ErrInvalidPattern},
		{"unknown source", "NamedType", "1.0.0", []domain.MetadataOption{
			domain.WithSource(domain.SourceSpec{Kind: "svn"}),
		}, domain.ErrUnknownSourceKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.NewPackageMetadata(tt.pkgName, tt.version, tt.opts...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.expected), "expected %v, got %v", tt.expected, err)
		})
	}
}

func TestNewPackageMetadata_CanonicalizesExportPatterns(t *testing.T) {
	m, err := domain.NewPackageMetadata("NamedType", "1.0.0",
		domain.WithExportPatterns("README.md", "*.hpp", "LICENSE", "*.hpp"),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"*.hpp", "LICENSE", "README.md"}, m.ExportPatterns)
}

func TestPackageMetadata_ArchiveURL(t *testing.T) {
	m, err := domain.NewPackageMetadata("NamedType", "1.0.0",
		domain.WithURL("https://github.com/joboccara/NamedType/"),
	)
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/joboccara/NamedType/archive/v1.0.0.zip", m.ArchiveURL())
	assert.Equal(t, "v1.0.0", m.GitRef())

	custom, err := domain.NewPackageMetadata("NamedType", "1.0.0",
		domain.WithSource(domain.SourceSpec{
			Kind: domain.SourceKindArchive,
			URL:  "https://mirror.example/{name}-{version}.tar.gz",
			Ref:  "release-{version}",
		}),
	)
	require.NoError(t, err)
	assert.Equal(t, "https://mirror.example/NamedType-1.0.0.tar.gz", custom.ArchiveURL())
	assert.Equal(t, "release-1.0.0", custom.GitRef())
}

func TestParseSourceKind(t *testing.T) {
	for in, want := range map[string]domain.SourceKind{
		"":        domain.SourceKindNone,
		"none":    domain.SourceKindNone,
		"Archive": domain.SourceKindArchive,
		" git ":   domain.SourceKindGit,
	} {
		got, err := domain.ParseSourceKind(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := domain.ParseSourceKind("ftp")
	assert.ErrorIs(t, err, domain.ErrUnknownSourceKind)
}

func TestPackageRecord_SameContent(t *testing.T) {
	a := &domain.PackageRecord{TreeHash: "abc"}
	b := &domain.PackageRecord{TreeHash: "abc"}
	c := &domain.PackageRecord{TreeHash: "def"}

	assert.True(t, a.SameContent(b))
	assert.False(t, a.SameContent(c))
	assert.False(t, a.SameContent(nil))
	assert.False(t, (&domain.PackageRecord{}).SameContent(&domain.PackageRecord{}))
}
