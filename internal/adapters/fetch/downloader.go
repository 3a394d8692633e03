// Package fetch implements the Downloader port: HTTP retrieval of
// gzipped tarballs and extraction into a target directory.
package fetch

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.trai.ch/zerr"

	"github.com/cordata/heroku-buildpack-ember-cli/internal/core/domain"
	"github.com/cordata/heroku-buildpack-ember-cli/internal/core/ports"
)

var _ ports.Downloader = (*Downloader)(nil)

const httpClientTimeout = 10 * time.Minute

// Downloader fetches and unpacks archives.
type Downloader struct {
	httpClient *http.Client
}

// NewDownloader creates a Downloader with a default client sized for
// large tarball transfers.
func NewDownloader() *Downloader {
	return &Downloader{
		httpClient: &http.Client{
			Timeout: httpClientTimeout,
		},
	}
}

// NewDownloaderWithClient creates a Downloader with a custom http
// client (used for testing).
func NewDownloaderWithClient(client *http.Client) *Downloader {
	return &Downloader{httpClient: client}
}

// FetchArchive downloads a gzipped tarball from url and extracts it
// into dest. With stripTopDir the single leading path component of
// every entry is removed, so "node-v0.10.33-linux-x64/bin/node"
// lands at "dest/bin/node".
func (d *Downloader) FetchArchive(ctx context.Context, url, dest string, stripTopDir bool) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return zerr.With(fmt.Errorf("%w: %w", domain.ErrDownloadFailed, err), "url", url)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return zerr.With(fmt.Errorf("%w: %w", domain.ErrDownloadFailed, err), "url", url)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		dlErr := zerr.With(domain.ErrDownloadFailed, "url", url)
		return zerr.With(dlErr, "status_code", resp.StatusCode)
	}

	if err := extract(resp.Body, dest, stripTopDir); err != nil {
		return zerr.With(err, "url", url)
	}

	return nil
}

// extract unpacks a gzipped tar stream into dest.
func extract(r io.Reader, dest string, stripTopDir bool) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrExtractFailed, err)
	}
	defer func() {
		_ = gz.Close()
	}()

	if err := os.MkdirAll(dest, domain.DirPerm); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrExtractFailed, err)
	}

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrExtractFailed, err)
		}

		name := header.Name
		if stripTopDir {
			name = stripLeadingComponent(name)
			if name == "" {
				continue
			}
		}

		target, err := securePath(dest, name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.FileMode(header.Mode)|0o100); err != nil {
				return fmt.Errorf("%w: %w", domain.ErrExtractFailed, err)
			}
		case tar.TypeReg:
			if err := writeEntry(target, tr, os.FileMode(header.Mode)); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := writeSymlink(dest, target, header.Linkname); err != nil {
				return err
			}
		default:
			// Character devices, fifos and the like have no place in a
			// runtime tarball.
			continue
		}
	}
}

// stripLeadingComponent drops the first path component of an archive
// entry name.
func stripLeadingComponent(name string) string {
	name = strings.TrimPrefix(name, "./")
	idx := strings.IndexByte(name, '/')
	if idx < 0 {
		return ""
	}
	return name[idx+1:]
}

// securePath joins name under dest and rejects entries escaping it.
func securePath(dest, name string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(name))
	if !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
		return "", zerr.With(domain.ErrUnsafeArchivePath, "entry", name)
	}
	return target, nil
}

func writeEntry(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), domain.DirPerm); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrExtractFailed, err)
	}

	//nolint:gosec // Target is validated against traversal in securePath
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrExtractFailed, err)
	}

	//nolint:gosec // Tarball contents are size-bounded runtime archives
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: %w", domain.ErrExtractFailed, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrExtractFailed, err)
	}

	return nil
}

// writeSymlink creates a symlink, rejecting absolute link targets and
// targets resolving outside dest.
func writeSymlink(dest, target, linkname string) error {
	if filepath.IsAbs(linkname) {
		return zerr.With(domain.ErrUnsafeArchivePath, "link", linkname)
	}

	resolved := filepath.Join(filepath.Dir(target), linkname)
	if !strings.HasPrefix(resolved, filepath.Clean(dest)+string(os.PathSeparator)) {
		return zerr.With(domain.ErrUnsafeArchivePath, "link", linkname)
	}

	if err := os.MkdirAll(filepath.Dir(target), domain.DirPerm); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrExtractFailed, err)
	}

	if err := os.Symlink(linkname, target); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrExtractFailed, err)
	}

	return nil
}
