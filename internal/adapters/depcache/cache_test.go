//nolint:testpackage // Testing path helpers directly
package depcache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/cordata/heroku-buildpack-ember-cli/internal/core/domain"
	"github.com/cordata/heroku-buildpack-ember-cli/internal/core/ports/mocks"
)

func newTestCache(t *testing.T) (*Cache, domain.Dirs) {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	log.EXPECT().Info(gomock.Any()).AnyTimes()

	dirs := domain.Dirs{
		Build: t.TempDir(),
		Cache: t.TempDir(),
	}
	return NewCache(dirs, log), dirs
}

func TestState_ColdCache(t *testing.T) {
	c, _ := newTestCache(t)

	state, err := c.State()
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestWriteState_RoundTrip(t *testing.T) {
	c, dirs := newTestCache(t)

	in := domain.CacheState{
		NodeVersion:     "0.10.33",
		PackageJSONHash: "abc123",
		BowerJSONHash:   "def456",
		Timestamp:       time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, c.WriteState(in))

	state, err := c.State()
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, in.NodeVersion, state.NodeVersion)
	assert.Equal(t, in.PackageJSONHash, state.PackageJSONHash)
	assert.Equal(t, in.BowerJSONHash, state.BowerJSONHash)

	for _, dir := range []string{dirs.Build, dirs.Cache} {
		data, readErr := os.ReadFile(domain.MarkerPath(dir))
		require.NoError(t, readErr, "marker missing in %s", dir)
		assert.Equal(t, "0.10.33\n", string(data))
	}
}

func TestState_CorruptFile(t *testing.T) {
	c, dirs := newTestCache(t)

	statePath := domain.CacheStatePath(dirs.Cache)
	require.NoError(t, os.MkdirAll(filepath.Dir(statePath), 0o750))
	require.NoError(t, os.WriteFile(statePath, []byte("{not json"), 0o644))

	_, err := c.State()
	require.ErrorIs(t, err, domain.ErrCacheStateReadFailed)
}

func TestSaveRestoreDrop(t *testing.T) {
	c, dirs := newTestCache(t)

	// Simulate a fresh npm install in the build dir.
	modDir := filepath.Join(dirs.Build, domain.NodeModulesDir)
	require.NoError(t, os.MkdirAll(filepath.Join(modDir, "left-pad"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(modDir, "left-pad", "index.js"), []byte("pad"), 0o644))

	assert.False(t, c.Has(domain.NodeModulesDir))
	require.NoError(t, c.Save(domain.NodeModulesDir))
	assert.True(t, c.Has(domain.NodeModulesDir))

	// The build dir path still resolves after the move.
	data, err := os.ReadFile(filepath.Join(modDir, "left-pad", "index.js"))
	require.NoError(t, err)
	assert.Equal(t, "pad", string(data))

	info, err := os.Lstat(modDir)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink, "build dir entry should be a link into the cache")

	// A second Save on the linked tree is a no-op.
	require.NoError(t, c.Save(domain.NodeModulesDir))

	// A new build restores from cache.
	require.NoError(t, os.Remove(modDir))
	require.NoError(t, c.Restore(domain.NodeModulesDir))
	data, err = os.ReadFile(filepath.Join(modDir, "left-pad", "index.js"))
	require.NoError(t, err)
	assert.Equal(t, "pad", string(data))

	require.NoError(t, c.Drop(domain.NodeModulesDir))
	assert.False(t, c.Has(domain.NodeModulesDir))
	_, err = os.Lstat(modDir)
	assert.True(t, os.IsNotExist(err))
}

func TestSave_MissingTreeIsNoop(t *testing.T) {
	c, _ := newTestCache(t)
	require.NoError(t, c.Save(domain.BowerComponentsDir))
	assert.False(t, c.Has(domain.BowerComponentsDir))
}

func TestSignature(t *testing.T) {
	c, dirs := newTestCache(t)

	pkg := filepath.Join(dirs.Build, "package.json")
	require.NoError(t, os.WriteFile(pkg, []byte(`{"name":"app"}`), 0o644))

	sig1, err := c.Signature(pkg)
	require.NoError(t, err)
	assert.NotEmpty(t, sig1)

	sig2, err := c.Signature(pkg)
	require.NoError(t, err)
	assert.Equal(t, sig1, sig2, "signature should be deterministic")

	require.NoError(t, os.WriteFile(pkg, []byte(`{"name":"app","version":"1.0.0"}`), 0o644))
	sig3, err := c.Signature(pkg)
	require.NoError(t, err)
	assert.NotEqual(t, sig1, sig3, "changed content should change the signature")

	sigMissing, err := c.Signature(filepath.Join(dirs.Build, "bower.json"))
	require.NoError(t, err)
	assert.Empty(t, sigMissing, "missing manifest signs as empty")
}
