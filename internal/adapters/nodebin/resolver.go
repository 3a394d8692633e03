// Package nodebin implements the RuntimeResolver port against the semver
// resolution API backing the Node buildpacks.
package nodebin

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"

	"github.com/cordata/heroku-buildpack-ember-cli/internal/core/domain"
	"github.com/cordata/heroku-buildpack-ember-cli/internal/core/ports"
)

var _ ports.RuntimeResolver = (*Resolver)(nil)

const httpClientTimeout = 30 * time.Second

// cacheTTL bounds how long a resolution is reused. Unlike an immutable
// artifact reference, "latest version satisfying a range" moves as new
// releases are published, so entries expire.
const cacheTTL = 24 * time.Hour

// Resolver implements ports.RuntimeResolver with local caching and
// request deduplication.
type Resolver struct {
	baseURL      string
	httpClient   *http.Client
	requestGroup singleflight.Group
}

// NewResolver creates a RuntimeResolver against the given API base URL.
func NewResolver(baseURL string) *Resolver {
	return &Resolver{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: httpClientTimeout,
		},
	}
}

// NewResolverWithClient creates a Resolver with a custom http client
// (used for testing).
func NewResolverWithClient(baseURL string, client *http.Client) *Resolver {
	return &Resolver{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: client,
	}
}

// cacheEntry is the persisted form of one resolution.
type cacheEntry struct {
	Engine    string    `json:"engine"`
	Range     string    `json:"range"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// Resolve resolves a semver range to a concrete version. The cache under
// cacheRoot is consulted first; concurrent resolves for the same
// engine/range collapse into a single API request.
func (r *Resolver) Resolve(ctx context.Context, cacheRoot, engine, rng string) (string, error) {
	if err := validateRange(rng); err != nil {
		return "", err
	}

	key := engine + "@" + rng
	version, err, _ := r.requestGroup.Do(key, func() (any, error) {
		cachePath := r.cachePath(cacheRoot, engine, rng)
		if v, cacheErr := loadFromCache(cachePath); cacheErr == nil {
			return v, nil
		}

		v, queryErr := r.query(ctx, engine, rng)
		if queryErr != nil {
			return "", queryErr
		}

		if saveErr := saveToCache(cachePath, engine, rng, v); saveErr != nil {
			// A cache write failure does not fail the resolution.
			_ = saveErr
		}

		return v, nil
	})
	if err != nil {
		return "", err
	}

	return version.(string), nil
}

// validateRange rejects malformed ranges before any network round trip.
// An empty range is valid and resolves to the API's stable channel.
func validateRange(rng string) error {
	if rng == "" {
		return nil
	}
	if _, err := semver.NewConstraint(rng); err != nil {
		return zerr.With(fmt.Errorf("%w: %w", domain.ErrInvalidSemverRange, err), "range", rng)
	}
	return nil
}

func (r *Resolver) cachePath(cacheRoot, engine, rng string) string {
	hash := sha256.Sum256([]byte(engine + "@" + rng))
	name := hex.EncodeToString(hash[:]) + ".json"
	return filepath.Join(cacheRoot, domain.ResolveCacheDir, name)
}

// loadFromCache returns the cached version when present and fresh.
func loadFromCache(path string) (string, error) {
	//nolint:gosec // Path is constructed from trusted directory and hashed filename
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", domain.ErrResolveCacheReadFailed
		}
		return "", fmt.Errorf("%w: %w", domain.ErrResolveCacheReadFailed, err)
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrResolveCacheReadFailed, err)
	}

	if time.Since(entry.Timestamp) > cacheTTL {
		return "", domain.ErrResolveCacheReadFailed
	}

	return entry.Version, nil
}

// saveToCache persists a resolution atomically (tmp file + rename).
func saveToCache(path, engine, rng, version string) error {
	entry := cacheEntry{
		Engine:    engine,
		Range:     rng,
		Version:   version,
		Timestamp: time.Now(),
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrResolveCacheWriteFailed, err)
	}

	if err := atomicWriteFile(path, data); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrResolveCacheWriteFailed, err)
	}

	return nil
}

// atomicWriteFile writes data to a file atomically by writing to a temp
// file and renaming it.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(dir, "resolve-cache-*.json")
	if err != nil {
		return err
	}
	tmpName := tmpFile.Name()

	defer func() {
		if _, statErr := os.Stat(tmpName); statErr == nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return err
	}

	if err := tmpFile.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// query asks the resolution API for the version satisfying the range.
// The response body is the bare version string.
func (r *Resolver) query(ctx context.Context, engine, rng string) (string, error) {
	u := r.baseURL + "/" + engine + "/resolve"
	if rng != "" {
		u += "?range=" + url.QueryEscape(rng)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrResolveRequestFailed, err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrResolveRequestFailed, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		notFoundErr := zerr.With(domain.ErrVersionNotFound, "engine", engine)
		return "", zerr.With(notFoundErr, "range", rng)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := zerr.With(domain.ErrResolveRequestFailed, "status_code", resp.StatusCode)
		apiErr = zerr.With(apiErr, "engine", engine)
		return "", zerr.With(apiErr, "range", rng)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrResolveRequestFailed, err)
	}

	version := strings.TrimSpace(string(body))
	if _, err := semver.NewVersion(version); err != nil {
		apiErr := fmt.Errorf("%w: %w", domain.ErrResolveRequestFailed, err)
		return "", zerr.With(apiErr, "response", version)
	}

	return version, nil
}

// NodeTarballURL builds the mirror URL for a resolved Node version.
func NodeTarballURL(mirror, version string) string {
	return strings.TrimSuffix(mirror, "/") + "/node-v" + version + "-linux-x64.tar.gz"
}
