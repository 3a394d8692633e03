package depcache

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/zerr"

	"github.com/cordata/heroku-buildpack-ember-cli/internal/core/domain"
)

// Signature hashes a manifest file (package.json, bower.json) so two
// builds can tell whether declared dependencies changed. A missing
// file signs as the empty string.
func (c *Cache) Signature(path string) (string, error) {
	f, err := os.Open(path) //nolint:gosec // manifest paths come from the build directory
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", zerr.With(fmt.Errorf("%w: %w", domain.ErrCacheStateReadFailed, err), "path", path)
	}
	defer func() {
		_ = f.Close()
	}()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", zerr.With(fmt.Errorf("%w: %w", domain.ErrCacheStateReadFailed, err), "path", path)
	}

	return strconv.FormatUint(h.Sum64(), 16), nil
}
