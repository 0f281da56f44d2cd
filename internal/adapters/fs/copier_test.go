package fs_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/crate/internal/adapters/fs"
	"go.trai.ch/crate/internal/core/domain"
)

func TestCopier_CopyFile(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()

	src := filepath.Join(srcDir, "named_type.hpp")
	require.NoError(t, os.WriteFile(src, []byte("#pragma once\n"), 0o644))

	copier := fs.NewCopier(fs.NewHasher())
	dst := filepath.Join(dstDir, "include", "named_type.hpp")

	// First copy creates parents and writes the file
	written, err := copier.CopyFile(src, dst)
	require.NoError(t, err)
	assert.True(t, written)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "#pragma once\n", string(got))

	// Second copy of identical content is a no-op
	written, err = copier.CopyFile(src, dst)
	require.NoError(t, err)
	assert.False(t, written)

	// Changed content overwrites
	require.NoError(t, os.WriteFile(src, []byte("#pragma once\n// v2\n"), 0o644))
	written, err = copier.CopyFile(src, dst)
	require.NoError(t, err)
	assert.True(t, written)

	got, err = os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "#pragma once\n// v2\n", string(got))

	// No temp files are left behind
	entries, err := os.ReadDir(filepath.Join(dstDir, "include"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCopier_CopyFile_MissingSource(t *testing.T) {
	copier := fs.NewCopier(fs.NewHasher())
	_, err := copier.CopyFile(filepath.Join(t.TempDir(), "missing.hpp"), filepath.Join(t.TempDir(), "out.hpp"))
	require.Error(t, err)
}

func TestCopier_CopyFile_DestinationIsDirectory(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()

	src := filepath.Join(srcDir, "a.hpp")
	require.NoError(t, os.WriteFile(src, []byte("a"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dstDir, "a.hpp"), 0o750))

	copier := fs.NewCopier(fs.NewHasher())
	_, err := copier.CopyFile(src, filepath.Join(dstDir, "a.hpp"))
	require.ErrorIs(t, err, domain.ErrIO)
}

func TestCopier_EnsureWritable(t *testing.T) {
	copier := fs.NewCopier(fs.NewHasher())

	dir := filepath.Join(t.TempDir(), "nested", "pkg")
	require.NoError(t, copier.EnsureWritable(dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "probe file must be removed")
}

func TestCopier_EnsureWritable_ReadOnly(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for this user")
	}

	parent := t.TempDir()
	require.NoError(t, os.Chmod(parent, 0o500)) //nolint:gosec // Read-only on purpose
	t.Cleanup(func() { _ = os.Chmod(parent, 0o750) })

	copier := fs.NewCopier(fs.NewHasher())
	err := copier.EnsureWritable(filepath.Join(parent, "pkg"))
	require.ErrorIs(t, err, domain.ErrIO)
}
