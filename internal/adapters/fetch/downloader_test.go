//nolint:testpackage // Testing internal extraction helpers
package fetch

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/cordata/heroku-buildpack-ember-cli/internal/core/domain"
)

type tarEntry struct {
	name     string
	body     string
	mode     int64
	typeflag byte
	linkname string
}

func buildTarball(t *testing.T, entries []tarEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	for _, e := range entries {
		typeflag := e.typeflag
		if typeflag == 0 {
			typeflag = tar.TypeReg
		}
		mode := e.mode
		if mode == 0 {
			mode = 0o644
		}
		hdr := &tar.Header{
			Name:     e.name,
			Mode:     mode,
			Size:     int64(len(e.body)),
			Typeflag: typeflag,
			Linkname: e.linkname,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("failed to write tar header: %v", err)
		}
		if typeflag == tar.TypeReg {
			if _, err := tw.Write([]byte(e.body)); err != nil {
				t.Fatalf("failed to write tar body: %v", err)
			}
		}
	}

	if err := tw.Close(); err != nil {
		t.Fatalf("failed to close tar writer: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("failed to close gzip writer: %v", err)
	}

	return buf.Bytes()
}

func serveTarball(t *testing.T, payload []byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(payload)
	}))
}

func TestFetchArchive_Extracts(t *testing.T) {
	payload := buildTarball(t, []tarEntry{
		{name: "dir/", typeflag: tar.TypeDir, mode: 0o755},
		{name: "dir/file.txt", body: "hello"},
		{name: "top.txt", body: "world"},
	})
	server := serveTarball(t, payload)
	defer server.Close()

	dest := t.TempDir()
	d := NewDownloader()

	if err := d.FetchArchive(context.Background(), server.URL, dest, false); err != nil {
		t.Fatalf("FetchArchive() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dest, "dir", "file.txt"))
	if err != nil {
		t.Fatalf("extracted file missing: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("extracted content = %q, want %q", data, "hello")
	}
}

func TestFetchArchive_StripTopDir(t *testing.T) {
	payload := buildTarball(t, []tarEntry{
		{name: "node-v0.10.33-linux-x64/", typeflag: tar.TypeDir, mode: 0o755},
		{name: "node-v0.10.33-linux-x64/bin/", typeflag: tar.TypeDir, mode: 0o755},
		{name: "node-v0.10.33-linux-x64/bin/node", body: "#!node", mode: 0o755},
	})
	server := serveTarball(t, payload)
	defer server.Close()

	dest := t.TempDir()
	d := NewDownloader()

	if err := d.FetchArchive(context.Background(), server.URL, dest, true); err != nil {
		t.Fatalf("FetchArchive() error = %v", err)
	}

	info, err := os.Stat(filepath.Join(dest, "bin", "node"))
	if err != nil {
		t.Fatalf("stripped entry missing: %v", err)
	}
	if info.Mode().Perm()&0o100 == 0 {
		t.Errorf("binary is not executable: %v", info.Mode())
	}

	if _, err := os.Stat(filepath.Join(dest, "node-v0.10.33-linux-x64")); !os.IsNotExist(err) {
		t.Errorf("top dir was not stripped")
	}
}

func TestFetchArchive_PrefixlessTarballKeepsLayout(t *testing.T) {
	// nginx tarballs place sbin/, conf/ and html/ directly at the top
	// level. Without a wrapping version directory, stripping would
	// dissolve that layout.
	payload := buildTarball(t, []tarEntry{
		{name: "sbin/", typeflag: tar.TypeDir, mode: 0o755},
		{name: "sbin/nginx", body: "#!nginx", mode: 0o755},
		{name: "conf/", typeflag: tar.TypeDir, mode: 0o755},
		{name: "conf/mime.types", body: "types"},
	})
	server := serveTarball(t, payload)
	defer server.Close()

	d := NewDownloader()

	dest := t.TempDir()
	if err := d.FetchArchive(context.Background(), server.URL, dest, false); err != nil {
		t.Fatalf("FetchArchive() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, "sbin", "nginx")); err != nil {
		t.Errorf("sbin/nginx missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, "conf", "mime.types")); err != nil {
		t.Errorf("conf/mime.types missing: %v", err)
	}

	// Stripping the first path component relocates the binary to the
	// destination root.
	stripped := t.TempDir()
	if err := d.FetchArchive(context.Background(), server.URL, stripped, true); err != nil {
		t.Fatalf("FetchArchive() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(stripped, "sbin", "nginx")); !os.IsNotExist(err) {
		t.Errorf("sbin/nginx should not survive stripping, stat err = %v", err)
	}
	if _, err := os.Stat(filepath.Join(stripped, "nginx")); err != nil {
		t.Errorf("stripped binary missing at root: %v", err)
	}
}

func TestFetchArchive_Symlinks(t *testing.T) {
	payload := buildTarball(t, []tarEntry{
		{name: "bin/", typeflag: tar.TypeDir, mode: 0o755},
		{name: "bin/npm-cli.js", body: "cli"},
		{name: "bin/npm", typeflag: tar.TypeSymlink, linkname: "npm-cli.js"},
	})
	server := serveTarball(t, payload)
	defer server.Close()

	dest := t.TempDir()
	d := NewDownloader()

	if err := d.FetchArchive(context.Background(), server.URL, dest, false); err != nil {
		t.Fatalf("FetchArchive() error = %v", err)
	}

	link, err := os.Readlink(filepath.Join(dest, "bin", "npm"))
	if err != nil {
		t.Fatalf("symlink missing: %v", err)
	}
	if link != "npm-cli.js" {
		t.Errorf("symlink target = %q, want %q", link, "npm-cli.js")
	}
}

func TestFetchArchive_RejectsTraversal(t *testing.T) {
	payload := buildTarball(t, []tarEntry{
		{name: "../escape.txt", body: "nope"},
	})
	server := serveTarball(t, payload)
	defer server.Close()

	dest := t.TempDir()
	d := NewDownloader()

	err := d.FetchArchive(context.Background(), server.URL, dest, false)
	if !errors.Is(err, domain.ErrUnsafeArchivePath) {
		t.Errorf("FetchArchive() error = %v, want ErrUnsafeArchivePath", err)
	}
}

func TestFetchArchive_RejectsAbsoluteSymlink(t *testing.T) {
	payload := buildTarball(t, []tarEntry{
		{name: "evil", typeflag: tar.TypeSymlink, linkname: "/etc/passwd"},
	})
	server := serveTarball(t, payload)
	defer server.Close()

	dest := t.TempDir()
	d := NewDownloader()

	err := d.FetchArchive(context.Background(), server.URL, dest, false)
	if !errors.Is(err, domain.ErrUnsafeArchivePath) {
		t.Errorf("FetchArchive() error = %v, want ErrUnsafeArchivePath", err)
	}
}

func TestFetchArchive_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	dest := t.TempDir()
	d := NewDownloader()

	err := d.FetchArchive(context.Background(), server.URL, dest, false)
	if !errors.Is(err, domain.ErrDownloadFailed) {
		t.Errorf("FetchArchive() error = %v, want ErrDownloadFailed", err)
	}
}

func TestFetchArchive_NotGzip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("this is not a tarball"))
	}))
	defer server.Close()

	dest := t.TempDir()
	d := NewDownloader()

	err := d.FetchArchive(context.Background(), server.URL, dest, false)
	if !errors.Is(err, domain.ErrExtractFailed) {
		t.Errorf("FetchArchive() error = %v, want ErrExtractFailed", err)
	}
}

func TestStripLeadingComponent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"node-v0.10.33-linux-x64/bin/node", "bin/node"},
		{"./pkg/README.md", "README.md"},
		{"toplevel", ""},
		{"dir/", ""},
	}

	for _, tt := range tests {
		if got := stripLeadingComponent(tt.in); got != tt.want {
			t.Errorf("stripLeadingComponent(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
