package app

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/cordata/heroku-buildpack-ember-cli/internal/core/domain"
	"github.com/cordata/heroku-buildpack-ember-cli/internal/core/ports/mocks"
)

func TestDetect(t *testing.T) {
	t.Run("claims an ember-cli app", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		loader := mocks.NewMockConfigLoader(ctrl)
		loader.EXPECT().LoadApp(domain.Dirs{Build: "/tmp/build"}).Return(&domain.App{EmberCLI: true}, nil)

		a := &App{configLoader: loader}

		name, err := a.Detect(context.Background(), "/tmp/build")
		require.NoError(t, err)
		assert.Equal(t, "Ember CLI", name)
	})

	t.Run("declines an app without ember-cli", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		loader := mocks.NewMockConfigLoader(ctrl)
		loader.EXPECT().LoadApp(gomock.Any()).Return(&domain.App{EmberCLI: false}, nil)

		a := &App{configLoader: loader}

		_, err := a.Detect(context.Background(), "/tmp/build")
		require.ErrorIs(t, err, domain.ErrNotEmberApp)
	})

	t.Run("propagates loader errors", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		loader := mocks.NewMockConfigLoader(ctrl)
		loader.EXPECT().LoadApp(gomock.Any()).Return(nil, domain.ErrNoPackageJSON)

		a := &App{configLoader: loader}

		_, err := a.Detect(context.Background(), "/tmp/build")
		require.ErrorIs(t, err, domain.ErrNoPackageJSON)
	})
}

func TestRelease(t *testing.T) {
	a := &App{}

	out, err := a.Release(context.Background(), "/tmp/build")
	require.NoError(t, err)

	assert.True(t, len(out) > 4 && out[:4] == "---\n")
	assert.Contains(t, out, "default_process_types:")
	assert.Contains(t, out, "web: bin/buildpack boot")
}

func TestClean(t *testing.T) {
	newApp := func(ctrl *gomock.Controller) *App {
		logger := mocks.NewMockLogger(ctrl)
		logger.EXPECT().Info(gomock.Any()).AnyTimes()
		return &App{logger: logger}
	}

	seed := func(t *testing.T) string {
		t.Helper()
		cacheDir := t.TempDir()
		for _, dir := range []string{
			filepath.Join(cacheDir, domain.NodeCacheDir, "0.12.7"),
			filepath.Join(cacheDir, domain.NginxCacheDir, "1.6.2"),
			filepath.Join(cacheDir, domain.ResolveCacheDir),
			filepath.Join(cacheDir, domain.NodeModulesDir),
			filepath.Join(cacheDir, domain.BowerComponentsDir),
			filepath.Join(cacheDir, domain.HerokuDirName),
		} {
			require.NoError(t, os.MkdirAll(dir, 0o750))
		}
		require.NoError(t, os.WriteFile(domain.CacheStatePath(cacheDir), []byte("{}"), 0o644))
		return cacheDir
	}

	t.Run("removes runtimes only", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		cacheDir := seed(t)
		a := newApp(ctrl)

		require.NoError(t, a.Clean(context.Background(), cacheDir, CleanOptions{Runtimes: true}))

		assert.NoDirExists(t, filepath.Join(cacheDir, domain.NodeCacheDir))
		assert.NoDirExists(t, filepath.Join(cacheDir, domain.NginxCacheDir))
		assert.NoDirExists(t, filepath.Join(cacheDir, domain.ResolveCacheDir))
		assert.DirExists(t, filepath.Join(cacheDir, domain.NodeModulesDir))
		assert.FileExists(t, domain.CacheStatePath(cacheDir))
	})

	t.Run("removes packages only", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		cacheDir := seed(t)
		a := newApp(ctrl)

		require.NoError(t, a.Clean(context.Background(), cacheDir, CleanOptions{Packages: true}))

		assert.DirExists(t, filepath.Join(cacheDir, domain.NodeCacheDir))
		assert.NoDirExists(t, filepath.Join(cacheDir, domain.NodeModulesDir))
		assert.NoDirExists(t, filepath.Join(cacheDir, domain.BowerComponentsDir))
		assert.NoFileExists(t, domain.CacheStatePath(cacheDir))
	})

	t.Run("missing cache is not an error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		a := newApp(ctrl)
		err := a.Clean(context.Background(), filepath.Join(t.TempDir(), "nope"), CleanOptions{Runtimes: true, Packages: true})
		require.NoError(t, err)
	})
}

func TestBuildSteps_Graph(t *testing.T) {
	a := &App{}
	steps := a.buildSteps(&compileState{})

	needs := make(map[string][]string, len(steps))
	for _, step := range steps {
		needs[step.Name] = step.Needs
	}

	assert.Len(t, steps, 8)
	assert.Empty(t, needs[StepResolveRuntime])
	assert.Equal(t, []string{StepResolveRuntime}, needs[StepInstallNode])
	assert.Equal(t, []string{StepInstallNode}, needs[StepUpgradeNPM])
	assert.Empty(t, needs[StepDownloadNginx])
	assert.Equal(t, []string{StepUpgradeNPM}, needs[StepNodeModules])
	assert.Equal(t, []string{StepNodeModules}, needs[StepBowerComponents])
	assert.ElementsMatch(t, []string{StepNodeModules, StepBowerComponents}, needs[StepEmberBuild])
	assert.ElementsMatch(t, []string{StepEmberBuild, StepDownloadNginx}, needs[StepFinalize])
}

func TestCompileState_BuildEnv(t *testing.T) {
	state := &compileState{
		app: &domain.App{
			Env: map[string]string{
				"EMBER_ENV":   "staging",
				"PATH":        "/should/be/dropped",
				"GIT_SSH_KEY": "secret material",
			},
		},
		dirs: domain.Dirs{Build: "/tmp/build"},
	}

	env := state.buildEnv()

	assert.Contains(t, env, "EMBER_ENV=staging")
	for _, entry := range env {
		assert.NotEqual(t, "PATH=/should/be/dropped", entry)
		assert.NotContains(t, entry, "secret material")
	}

	nodeBin := filepath.Join("/tmp/build", domain.VendorDirName, domain.NodeCacheDir, "bin")
	localBin := filepath.Join("/tmp/build", domain.NodeModulesDir, ".bin")
	assert.Contains(t, env, "PATH="+nodeBin+string(os.PathListSeparator)+localBin)
}

// nopSpan satisfies ports.Span for steps that only narrate progress.
type nopSpan struct{}

func (nopSpan) Write(p []byte) (int, error) { return len(p), nil }
func (nopSpan) End()                        {}
func (nopSpan) RecordError(error)           {}
func (nopSpan) SetAttribute(string, any)    {}

func TestDownloadNginxStep(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dirs := domain.Dirs{Build: t.TempDir(), Cache: t.TempDir()}
	sources := &domain.Sources{
		NginxVersion: "1.6.2",
		NginxURL:     "https://example.com/nginx-1.6.2.tgz",
	}

	// The nginx tarball is flat, so the step must not ask for the
	// leading path component to be stripped.
	downloader := mocks.NewMockDownloader(ctrl)
	downloader.EXPECT().
		FetchArchive(gomock.Any(), sources.NginxURL, gomock.Any(), false).
		DoAndReturn(func(_ context.Context, _ string, dest string, _ bool) error {
			if err := os.MkdirAll(filepath.Join(dest, "sbin"), 0o755); err != nil {
				return err
			}
			return os.WriteFile(filepath.Join(dest, "sbin", "nginx"), []byte("#!nginx"), 0o755)
		})

	a := &App{downloader: downloader}
	state := &compileState{sources: sources, dirs: dirs}

	require.NoError(t, a.downloadNginxStep(state)(context.Background(), nopSpan{}))

	vendor := domain.VendorPath(dirs.Build, domain.NginxCacheDir)
	assert.FileExists(t, filepath.Join(vendor, "sbin", "nginx"))
}

func TestUpgradeNPMStep(t *testing.T) {
	newState := func(npmVersion string) *compileState {
		state := &compileState{
			app:  &domain.App{Env: map[string]string{}},
			dirs: domain.Dirs{Build: "/tmp/build"},
		}
		state.setRuntime("0.12.7", npmVersion, false)
		return state
	}

	t.Run("no pin keeps the bundled npm", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		a := &App{executor: mocks.NewMockExecutor(ctrl)}

		err := a.upgradeNPMStep(newState(""))(context.Background(), nopSpan{})
		require.NoError(t, err)
	})

	t.Run("matching bundled version skips the install", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		executor := mocks.NewMockExecutor(ctrl)
		executor.EXPECT().
			Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, cmd *domain.Command, _ []string, stdout, _ io.Writer) error {
				require.Equal(t, []string{"npm", "--version"}, cmd.Argv)
				_, _ = io.WriteString(stdout, "2.1.5\n")
				return nil
			})

		a := &App{executor: executor}

		err := a.upgradeNPMStep(newState("2.1.5"))(context.Background(), nopSpan{})
		require.NoError(t, err)
	})

	t.Run("differing bundled version installs the pin", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		executor := mocks.NewMockExecutor(ctrl)
		query := executor.EXPECT().
			Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, cmd *domain.Command, _ []string, stdout, _ io.Writer) error {
				require.Equal(t, []string{"npm", "--version"}, cmd.Argv)
				_, _ = io.WriteString(stdout, "1.4.28\n")
				return nil
			})
		executor.EXPECT().
			Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			After(query).
			DoAndReturn(func(_ context.Context, cmd *domain.Command, _ []string, _, _ io.Writer) error {
				require.Equal(t, []string{"npm", "install", "--quiet", "-g", "npm@2.1.5"}, cmd.Argv)
				return nil
			})

		a := &App{executor: executor}

		err := a.upgradeNPMStep(newState("2.1.5"))(context.Background(), nopSpan{})
		require.NoError(t, err)
	})

	t.Run("unreadable bundled version falls through to the install", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		executor := mocks.NewMockExecutor(ctrl)
		query := executor.EXPECT().
			Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("npm not on PATH"))
		executor.EXPECT().
			Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			After(query).
			DoAndReturn(func(_ context.Context, cmd *domain.Command, _ []string, _, _ io.Writer) error {
				require.Equal(t, []string{"npm", "install", "--quiet", "-g", "npm@2.1.5"}, cmd.Argv)
				return nil
			})

		a := &App{executor: executor}

		err := a.upgradeNPMStep(newState("2.1.5"))(context.Background(), nopSpan{})
		require.NoError(t, err)
	})
}

func TestPrepareTree(t *testing.T) {
	spec := func(prior string) treeSpec {
		return treeSpec{
			name:        domain.NodeModulesDir,
			rebuildFlag: "REBUILD_NODE_PACKAGES",
			priorSig:    prior,
			currentSig:  "abc123",
		}
	}

	t.Run("restores a warm matching cache", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		cache := mocks.NewMockDepCache(ctrl)
		cache.EXPECT().Has(domain.NodeModulesDir).Return(true)
		cache.EXPECT().Restore(domain.NodeModulesDir).Return(nil)

		a := &App{}
		state := &compileState{
			app:   &domain.App{Env: map[string]string{}},
			cache: cache,
			prior: &domain.CacheState{},
		}

		restored, err := a.prepareTree(nopSpan{}, state, spec("abc123"))
		require.NoError(t, err)
		assert.True(t, restored)
	})

	t.Run("drops the cache when the manifest changed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		cache := mocks.NewMockDepCache(ctrl)
		cache.EXPECT().Drop(domain.NodeModulesDir).Return(nil)

		a := &App{}
		state := &compileState{
			app:   &domain.App{Env: map[string]string{}},
			cache: cache,
			prior: &domain.CacheState{},
		}

		restored, err := a.prepareTree(nopSpan{}, state, spec("different"))
		require.NoError(t, err)
		assert.False(t, restored)
	})

	t.Run("cold cache installs from scratch", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		cache := mocks.NewMockDepCache(ctrl)
		cache.EXPECT().Drop(domain.NodeModulesDir).Return(nil)

		a := &App{}
		state := &compileState{
			app:   &domain.App{Env: map[string]string{}},
			cache: cache,
		}

		restored, err := a.prepareTree(nopSpan{}, state, spec(""))
		require.NoError(t, err)
		assert.False(t, restored)
	})

	t.Run("rebuild flag forces a discard", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		cache := mocks.NewMockDepCache(ctrl)
		cache.EXPECT().Drop(domain.NodeModulesDir).Return(nil)

		a := &App{}
		state := &compileState{
			app:   &domain.App{Env: map[string]string{"REBUILD_NODE_PACKAGES": "1"}},
			cache: cache,
			prior: &domain.CacheState{},
		}

		restored, err := a.prepareTree(nopSpan{}, state, spec("abc123"))
		require.NoError(t, err)
		assert.False(t, restored)
	})

	t.Run("restore errors propagate", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		restoreErr := errors.New("symlink failed")
		cache := mocks.NewMockDepCache(ctrl)
		cache.EXPECT().Has(domain.NodeModulesDir).Return(true)
		cache.EXPECT().Restore(domain.NodeModulesDir).Return(restoreErr)

		a := &App{}
		state := &compileState{
			app:   &domain.App{Env: map[string]string{}},
			cache: cache,
			prior: &domain.CacheState{},
		}

		_, err := a.prepareTree(nopSpan{}, state, spec("abc123"))
		require.ErrorIs(t, err, restoreErr)
	})
}

func TestRangeOrStable(t *testing.T) {
	assert.Equal(t, "stable", rangeOrStable(""))
	assert.Equal(t, "^0.12.0", rangeOrStable("^0.12.0"))
}
