package source_test

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/crate/internal/adapters/source"
	"go.trai.ch/crate/internal/core/domain"
)

type archiveFile struct {
	name string
	body string
}

var githubStyle = []archiveFile{
	{"NamedType-1.0.0/", ""},
	{"NamedType-1.0.0/LICENSE", "MIT License"},
	{"NamedType-1.0.0/README.md", "# NamedType"},
	{"NamedType-1.0.0/include/NamedType/named_type.hpp", "#pragma once"},
}

func makeZip(t *testing.T, files []archiveFile) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		w, err := zw.Create(f.name)
		require.NoError(t, err)
		_, err = w.Write([]byte(f.body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func makeTarGz(t *testing.T, files []archiveFile) []byte {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)
	for _, f := range files {
		hdr := &tar.Header{Name: f.name, Mode: 0o644, Size: int64(len(f.body)), Typeflag: tar.TypeReg}
		if f.name[len(f.name)-1] == '/' {
			hdr.Typeflag = tar.TypeDir
			hdr.Mode = 0o755
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if hdr.Typeflag == tar.TypeReg {
			_, err := tw.Write([]byte(f.body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gw.Close())
	return buf.Bytes()
}

func serve(t *testing.T, body []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func fastArchive() *source.Archive {
	return &source.Archive{RetryWaitMin: time.Millisecond, RetryWaitMax: 5 * time.Millisecond}
}

func archiveMeta(t *testing.T, url string, retries int) *domain.PackageMetadata {
	t.Helper()
	return namedType(t, domain.WithSource(domain.SourceSpec{
		Kind:    domain.SourceKindArchive,
		URL:     url,
		Retries: retries,
	}))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	//nolint:gosec // Test file with controlled path
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestArchive_FetchZipStripsTopLevelDir(t *testing.T) {
	srv := serve(t, makeZip(t, githubStyle))
	dst := t.TempDir()

	err := fastArchive().Fetch(context.Background(), archiveMeta(t, srv.URL+"/archive/v{version}.zip", 0), dst)
	require.NoError(t, err)

	assert.Equal(t, "MIT License", readFile(t, filepath.Join(dst, "LICENSE")))
	assert.Equal(t, "# NamedType", readFile(t, filepath.Join(dst, "README.md")))
	assert.Equal(t, "#pragma once", readFile(t, filepath.Join(dst, "include", "NamedType", "named_type.hpp")))
	assert.NoDirExists(t, filepath.Join(dst, "NamedType-1.0.0"))
}

func TestArchive_FetchTarGz(t *testing.T) {
	srv := serve(t, makeTarGz(t, githubStyle))
	dst := t.TempDir()

	err := fastArchive().Fetch(context.Background(), archiveMeta(t, srv.URL+"/{name}-{version}.tar.gz", 0), dst)
	require.NoError(t, err)

	assert.Equal(t, "#pragma once", readFile(t, filepath.Join(dst, "include", "NamedType", "named_type.hpp")))
	assert.FileExists(t, filepath.Join(dst, "LICENSE"))
}

func TestArchive_FetchKeepsFlatLayout(t *testing.T) {
	srv := serve(t, makeZip(t, []archiveFile{
		{"LICENSE", "MIT License"},
		{"include/named_type.hpp", "#pragma once"},
	}))
	dst := t.TempDir()

	require.NoError(t, fastArchive().Fetch(context.Background(), archiveMeta(t, srv.URL+"/a.zip", 0), dst))

	assert.FileExists(t, filepath.Join(dst, "LICENSE"))
	assert.FileExists(t, filepath.Join(dst, "include", "named_type.hpp"))
}

func TestArchive_RejectsOversizedEntry(t *testing.T) {
	for name, body := range map[string][]byte{
		"zip":    makeZip(t, githubStyle),
		"tar.gz": makeTarGz(t, githubStyle),
	} {
		t.Run(name, func(t *testing.T) {
			srv := serve(t, body)
			archive := fastArchive()
			archive.MaxEntrySize = 4

			err := archive.Fetch(context.Background(), archiveMeta(t, srv.URL+"/a", 0), t.TempDir())
			require.ErrorIs(t, err, domain.ErrUnsupportedArchive)
		})
	}
}

func TestArchive_RejectsTraversal(t *testing.T) {
	tests := []struct {
		name string
		body []byte
	}{
		{"zip", makeZip(t, []archiveFile{{"../evil.hpp", "x"}})},
		{"targz", makeTarGz(t, []archiveFile{{"../evil.hpp", "x"}})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, tt.body)
			root := t.TempDir()
			dst := filepath.Join(root, "dst")

			err := fastArchive().Fetch(context.Background(), archiveMeta(t, srv.URL+"/a", 0), dst)
			require.ErrorIs(t, err, domain.ErrUnsafeArchivePath)
			assert.NoFileExists(t, filepath.Join(root, "evil.hpp"))
		})
	}
}

func TestArchive_UnsupportedFormat(t *testing.T) {
	srv := serve(t, []byte("definitely not an archive"))

	err := fastArchive().Fetch(context.Background(), archiveMeta(t, srv.URL+"/a", 0), t.TempDir())
	assert.ErrorIs(t, err, domain.ErrUnsupportedArchive)
}

func TestArchive_HTTPErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"not found", http.StatusNotFound},
		{"server error", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			dst := filepath.Join(t.TempDir(), "dst")
			err := fastArchive().Fetch(context.Background(), archiveMeta(t, srv.URL+"/a.zip", 0), dst)
			require.ErrorIs(t, err, domain.ErrFetch)
			assert.NoDirExists(t, dst)
		})
	}
}

func TestArchive_Retries(t *testing.T) {
	body := makeZip(t, githubStyle)
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	dst := t.TempDir()
	require.NoError(t, fastArchive().Fetch(context.Background(), archiveMeta(t, srv.URL+"/a.zip", 2), dst))
	assert.Equal(t, int32(3), calls.Load())
	assert.FileExists(t, filepath.Join(dst, "LICENSE"))
}

func TestArchive_NoRetryByDefault(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := fastArchive().Fetch(context.Background(), archiveMeta(t, srv.URL+"/a.zip", 0), t.TempDir())
	require.ErrorIs(t, err, domain.ErrFetch)
	assert.Equal(t, int32(1), calls.Load())
}
