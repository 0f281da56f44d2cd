package commands_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/crate/cmd/crate/commands"
	"go.trai.ch/crate/internal/adapters/cas"
	"go.trai.ch/crate/internal/adapters/fs"
	"go.trai.ch/crate/internal/adapters/telemetry"
	"go.trai.ch/crate/internal/app"
	"go.trai.ch/crate/internal/build"
	"go.trai.ch/crate/internal/core/domain"
	"go.trai.ch/crate/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	cli      *commands.CLI
	out      *bytes.Buffer
	loader   *mocks.MockDescriptorLoader
	selector *mocks.MockSourceSelector
	meta     *domain.PackageMetadata
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	meta, err := domain.NewPackageMetadata("NamedType", "1.0.0",
		domain.WithDescription("Strong typing for C++"),
		domain.WithLicense("MIT"),
	)
	require.NoError(t, err)

	loader := mocks.NewMockDescriptorLoader(ctrl)
	selector := mocks.NewMockSourceSelector(ctrl)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any()).AnyTimes()

	store := cas.NewStore(filepath.Join(t.TempDir(), "records.json"))

	hasher := fs.NewHasher()
	a := app.New(
		loader,
		selector,
		fs.NewResolver(fs.NewWalker()),
		fs.NewCopier(hasher),
		hasher,
		fs.NewVerifier(),
		store,
		telemetry.NewNoOp(),
		log,
	)

	out := &bytes.Buffer{}
	cli := commands.New(a)
	cli.SetOutput(out)

	return &fixture{cli: cli, out: out, loader: loader, selector: selector, meta: meta}
}

func TestInfo(t *testing.T) {
	f := newFixture(t)
	f.loader.EXPECT().Load("crate.yaml").Return(f.meta, nil)

	f.cli.SetArgs([]string{"info"})
	require.NoError(t, f.cli.Execute(context.Background()))

	assert.Contains(t, f.out.String(), "NamedType/1.0.0")
	assert.Contains(t, f.out.String(), "pkg:conan/NamedType@1.0.0")
	assert.Contains(t, f.out.String(), "Strong typing for C++")
	assert.Contains(t, f.out.String(), "*.hpp, LICENSE, README.md")
}

func TestInfo_DescriptorFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"dir", []string{"info", "-C", "pkg"}, filepath.Join("pkg", "crate.yaml")},
		{"file", []string{"info", "--file", "other.yaml"}, "other.yaml"},
		{"both", []string{"info", "-C", "pkg", "-f", "other.yaml"}, "other.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.loader.EXPECT().Load(tt.want).Return(f.meta, nil)

			f.cli.SetArgs(tt.args)
			require.NoError(t, f.cli.Execute(context.Background()))
		})
	}
}

func TestSource_Override(t *testing.T) {
	f := newFixture(t)
	ctrl := gomock.NewController(t)

	src := mocks.NewMockSource(ctrl)
	src.EXPECT().Fetch(gomock.Any(), f.meta, "dst").Return(nil)
	f.loader.EXPECT().Load(gomock.Any()).Return(f.meta, nil)
	f.selector.EXPECT().For(domain.SourceKindGit).Return(src, nil)

	f.cli.SetArgs([]string{"source", "dst", "--source", "git"})
	require.NoError(t, f.cli.Execute(context.Background()))
}

func TestPackage(t *testing.T) {
	f := newFixture(t)

	root := t.TempDir()
	for name, content := range map[string]string{
		"named_type.hpp": "#pragma once",
		"LICENSE":        "MIT License",
		"README.md":      "# NamedType",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0o600))
	}
	dst := filepath.Join(t.TempDir(), "pkg")

	f.loader.EXPECT().Load(filepath.Join(root, "crate.yaml")).Return(f.meta, nil)

	f.cli.SetArgs([]string{"package", dst, "-C", root})
	require.NoError(t, f.cli.Execute(context.Background()))

	assert.Contains(t, f.out.String(), "include/named_type.hpp")
	assert.Contains(t, f.out.String(), "NamedType/1.0.0 completed")
	assert.FileExists(t, filepath.Join(dst, "include", "named_type.hpp"))
}

func TestPackage_RequiresDestination(t *testing.T) {
	f := newFixture(t)

	f.cli.SetArgs([]string{"package"})
	assert.Error(t, f.cli.Execute(context.Background()))
}

func TestVersion(t *testing.T) {
	f := newFixture(t)

	f.cli.SetArgs([]string{"version"})
	require.NoError(t, f.cli.Execute(context.Background()))
	assert.Equal(t, "crate version "+build.Version+"\n", f.out.String())
}
