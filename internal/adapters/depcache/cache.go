// Package depcache persists installed dependency trees between builds
// and tracks the state needed to decide when they are stale.
package depcache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/zerr"

	"github.com/cordata/heroku-buildpack-ember-cli/internal/core/domain"
	"github.com/cordata/heroku-buildpack-ember-cli/internal/core/ports"
)

var _ ports.DepCache = (*Cache)(nil)

// Cache stores dependency trees under the platform cache directory and
// links them into the build directory. The link is cheap to set up and
// the trees never ship in the slug, so nothing dangles at runtime.
type Cache struct {
	dirs   domain.Dirs
	logger ports.Logger
}

// NewCache creates a Cache over the given build and cache directories.
func NewCache(dirs domain.Dirs, logger ports.Logger) *Cache {
	return &Cache{
		dirs:   dirs,
		logger: logger,
	}
}

func (c *Cache) cachePath(name string) string {
	return filepath.Join(c.dirs.Cache, name)
}

func (c *Cache) buildPath(name string) string {
	return filepath.Join(c.dirs.Build, name)
}

// State reads the persisted cache state. A missing state file is not
// an error; it reads as nil, meaning a cold cache.
func (c *Cache) State() (*domain.CacheState, error) {
	data, err := os.ReadFile(domain.CacheStatePath(c.dirs.Cache))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil //nolint:nilnil // cold cache has no state
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrCacheStateReadFailed, err)
	}

	var state domain.CacheState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCacheStateReadFailed, err)
	}

	return &state, nil
}

// WriteState persists the cache state and mirrors the Node version
// marker into both trees. The build dir copy ships in the slug so the
// next build can compare even after a cache clear.
func (c *Cache) WriteState(state domain.CacheState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrCacheStateWriteFailed, err)
	}

	statePath := domain.CacheStatePath(c.dirs.Cache)
	if err := os.MkdirAll(filepath.Dir(statePath), domain.DirPerm); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrCacheStateWriteFailed, err)
	}
	if err := os.WriteFile(statePath, data, domain.FilePerm); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrCacheStateWriteFailed, err)
	}

	for _, dir := range []string{c.dirs.Build, c.dirs.Cache} {
		marker := domain.MarkerPath(dir)
		if err := os.MkdirAll(filepath.Dir(marker), domain.DirPerm); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrMarkerWriteFailed, err)
		}
		if err := os.WriteFile(marker, []byte(state.NodeVersion+"\n"), domain.FilePerm); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrMarkerWriteFailed, err)
		}
	}

	return nil
}

// Has reports whether a cached tree exists for name.
func (c *Cache) Has(name string) bool {
	info, err := os.Stat(c.cachePath(name))
	return err == nil && info.IsDir()
}

// Restore links the cached tree for name into the build directory.
func (c *Cache) Restore(name string) error {
	target := c.buildPath(name)
	if err := os.RemoveAll(target); err != nil {
		return zerr.With(fmt.Errorf("%w: %w", domain.ErrCacheRestoreFailed, err), "name", name)
	}
	if err := os.Symlink(c.cachePath(name), target); err != nil {
		return zerr.With(fmt.Errorf("%w: %w", domain.ErrCacheRestoreFailed, err), "name", name)
	}
	return nil
}

// Save moves the freshly installed tree into the cache and links it
// back, so later steps keep seeing it at its build dir path.
func (c *Cache) Save(name string) error {
	src := c.buildPath(name)

	info, err := os.Lstat(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.With(fmt.Errorf("%w: %w", domain.ErrCacheSaveFailed, err), "name", name)
	}

	// Already a link into the cache from a previous Restore.
	if info.Mode()&os.ModeSymlink != 0 {
		return nil
	}

	dest := c.cachePath(name)
	if err := os.RemoveAll(dest); err != nil {
		return zerr.With(fmt.Errorf("%w: %w", domain.ErrCacheSaveFailed, err), "name", name)
	}
	if err := os.MkdirAll(filepath.Dir(dest), domain.DirPerm); err != nil {
		return zerr.With(fmt.Errorf("%w: %w", domain.ErrCacheSaveFailed, err), "name", name)
	}
	if err := os.Rename(src, dest); err != nil {
		return zerr.With(fmt.Errorf("%w: %w", domain.ErrCacheSaveFailed, err), "name", name)
	}
	if err := os.Symlink(dest, src); err != nil {
		return zerr.With(fmt.Errorf("%w: %w", domain.ErrCacheSaveFailed, err), "name", name)
	}

	return nil
}

// Drop discards the cached tree for name along with any link to it in
// the build directory.
func (c *Cache) Drop(name string) error {
	if err := os.RemoveAll(c.buildPath(name)); err != nil {
		return zerr.With(fmt.Errorf("%w: %w", domain.ErrCacheSaveFailed, err), "name", name)
	}
	if err := os.RemoveAll(c.cachePath(name)); err != nil {
		return zerr.With(fmt.Errorf("%w: %w", domain.ErrCacheSaveFailed, err), "name", name)
	}
	return nil
}
