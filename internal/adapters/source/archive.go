package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.trai.ch/crate/internal/core/domain"
	"go.trai.ch/crate/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Source = (*Archive)(nil)

const (
	defaultRetryWaitMin = 1 * time.Second
	defaultRetryWaitMax = 30 * time.Second
)

// Archive downloads the versioned source archive and extracts it into the destination.
type Archive struct {
	// RetryWaitMin and RetryWaitMax bound the backoff between download attempts.
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	// MaxEntrySize caps a single extracted file in bytes. Zero means 1 GiB.
	MaxEntrySize int64
}

// NewArchive creates a new Archive source with the default backoff.
func NewArchive() *Archive {
	return &Archive{
		RetryWaitMin: defaultRetryWaitMin,
		RetryWaitMax: defaultRetryWaitMax,
	}
}

// Kind returns domain.SourceKindArchive.
func (s *Archive) Kind() domain.SourceKind {
	return domain.SourceKindArchive
}

// Fetch downloads meta.ArchiveURL() and extracts it into dst.
func (s *Archive) Fetch(ctx context.Context, meta *domain.PackageMetadata, dst string) error {
	url := meta.ArchiveURL()
	logf(ctx, "downloading "+url)

	tmp, err := os.CreateTemp("", "crate-archive-*")
	if err != nil {
		return zerr.Wrap(err, "failed to create download buffer")
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	size, err := s.download(ctx, meta.Source.Retries, url, tmp)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dst, domain.DirPerm); err != nil {
		return zerr.With(errors.Join(domain.ErrIO, err), "path", dst)
	}

	limit := s.MaxEntrySize
	if limit <= 0 {
		limit = defaultMaxEntrySize
	}
	if err := extract(tmp, size, dst, limit); err != nil {
		return zerr.With(err, "url", url)
	}
	logf(ctx, fmt.Sprintf("extracted %s into %s", url, dst))
	return nil
}

func (s *Archive) download(ctx context.Context, retries int, url string, w io.Writer) (int64, error) {
	client := retryablehttp.NewClient()
	client.RetryMax = retries
	client.RetryWaitMin = s.RetryWaitMin
	client.RetryWaitMax = s.RetryWaitMax
	client.Logger = nil

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, zerr.With(errors.Join(domain.ErrFetch, err), "url", url)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, zerr.With(errors.Join(domain.ErrFetch, err), "url", url)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := zerr.Wrap(domain.ErrFetch, "unexpected response status")
		err = zerr.With(err, "url", url)
		return 0, zerr.With(err, "status", resp.Status)
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return 0, zerr.With(errors.Join(domain.ErrFetch, err), "url", url)
	}
	return n, nil
}
