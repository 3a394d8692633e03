// Package app implements the buildpack phases: detect, compile,
// release and boot.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/cordata/heroku-buildpack-ember-cli/internal/adapters/nginx"
	"github.com/cordata/heroku-buildpack-ember-cli/internal/adapters/shell"
	"github.com/cordata/heroku-buildpack-ember-cli/internal/adapters/telemetry"
	"github.com/cordata/heroku-buildpack-ember-cli/internal/core/domain"
	"github.com/cordata/heroku-buildpack-ember-cli/internal/core/ports"
	"github.com/cordata/heroku-buildpack-ember-cli/internal/engine/pipeline"
)

// DepCacheFactory builds a dependency cache bound to one build's
// directories.
type DepCacheFactory func(dirs domain.Dirs) ports.DepCache

// App implements the buildpack phases over the adapter ports.
type App struct {
	configLoader ports.ConfigLoader
	executor     ports.Executor
	logger       ports.Logger
	resolver     ports.RuntimeResolver
	downloader   ports.Downloader
	renderer     ports.Renderer
	newDepCache  DepCacheFactory
	supervisor   *nginx.Supervisor
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	executor ports.Executor,
	log ports.Logger,
	resolver ports.RuntimeResolver,
	downloader ports.Downloader,
	renderer ports.Renderer,
	newDepCache DepCacheFactory,
	supervisor *nginx.Supervisor,
) *App {
	return &App{
		configLoader: loader,
		executor:     executor,
		logger:       log,
		resolver:     resolver,
		downloader:   downloader,
		renderer:     renderer,
		newDepCache:  newDepCache,
		supervisor:   supervisor,
	}
}

// Detect reports whether the build directory holds an ember-cli app.
// It returns the framework name the platform prints when the buildpack
// claims the app.
func (a *App) Detect(_ context.Context, buildDir string) (string, error) {
	app, err := a.configLoader.LoadApp(domain.Dirs{Build: buildDir})
	if err != nil {
		return "", err
	}

	if !app.EmberCLI {
		return "", zerr.With(domain.ErrNotEmberApp, "build_dir", buildDir)
	}

	return "Ember CLI", nil
}

// releaseInfo is the YAML document the release phase prints.
type releaseInfo struct {
	DefaultProcessTypes map[string]string `yaml:"default_process_types"`
}

// Release returns the release metadata: the web process boots nginx
// through the buildpack binary installed into the slug at compile time.
func (a *App) Release(_ context.Context, _ string) (string, error) {
	info := releaseInfo{
		DefaultProcessTypes: map[string]string{
			"web": "bin/buildpack boot",
		},
	}

	data, err := yaml.Marshal(info)
	if err != nil {
		return "", zerr.Wrap(err, "failed to render release metadata")
	}

	return "---\n" + string(data), nil
}

// CompileOptions configures the compile phase.
type CompileOptions struct {
	// Parallelism bounds concurrently running steps; zero means one
	// per CPU.
	Parallelism int
	// Rebuild discards all caches before building, like REBUILD_ALL=1.
	Rebuild bool
}

// Compile runs the build pipeline: resolve and vendor the Node
// runtime, install dependencies with cache reuse, run the ember build
// and vendor nginx for boot.
func (a *App) Compile(ctx context.Context, dirs domain.Dirs, opts CompileOptions) error {
	app, err := a.configLoader.LoadApp(dirs)
	if err != nil {
		return err
	}
	if !app.EmberCLI {
		return zerr.With(domain.ErrNotEmberApp, "build_dir", dirs.Build)
	}

	if opts.Rebuild {
		if app.Env == nil {
			app.Env = make(map[string]string)
		}
		app.Env["REBUILD_ALL"] = "1"
	}

	sources, err := a.configLoader.LoadSources()
	if err != nil {
		return err
	}

	cache := a.newDepCache(dirs)
	prior, err := cache.State()
	if err != nil {
		// A corrupt state file reads as a cold cache.
		a.logger.Warn("cache state unreadable, rebuilding from scratch")
		prior = nil
	}

	gitSSH, err := shell.SetupGitSSH(app.Env["GIT_SSH_KEY"])
	if err != nil {
		return err
	}
	defer gitSSH.Cleanup()

	state := &compileState{
		app:     app,
		sources: sources,
		dirs:    dirs,
		cache:   cache,
		prior:   prior,
		gitSSH:  gitSSH,
	}

	tracer := telemetry.NewOTelTracer(a.renderer)
	defer func() {
		_ = tracer.Shutdown(ctx)
	}()

	pipe := pipeline.New(tracer)
	for _, step := range a.buildSteps(state) {
		pipe.Add(step)
	}

	parallelism := opts.Parallelism
	if parallelism < 1 {
		parallelism = runtime.NumCPU()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if startErr := a.renderer.Start(gctx); startErr != nil {
			return startErr
		}
		return a.renderer.Wait()
	})

	g.Go(func() error {
		defer func() {
			_ = a.renderer.Stop()
		}()

		if runErr := pipe.Run(gctx, parallelism); runErr != nil {
			return errors.Join(domain.ErrBuildFailed, runErr)
		}
		return nil
	})

	return g.Wait()
}

// Boot starts nginx serving the built app. Config vars arrive through
// the process environment at runtime, so no env dir is read.
func (a *App) Boot(ctx context.Context, buildDir string) error {
	return a.supervisor.Run(ctx, &domain.App{}, buildDir)
}

// CleanOptions configures the Clean method.
type CleanOptions struct {
	// Runtimes removes cached Node and nginx installs.
	Runtimes bool
	// Packages removes cached dependency trees and the cache state.
	Packages bool
}

// Clean removes cached artifacts from the cache directory.
func (a *App) Clean(_ context.Context, cacheDir string, options CleanOptions) error {
	var errs error

	remove := func(path, name string) {
		a.logger.Info(fmt.Sprintf("removing %s...", name))
		if err := os.RemoveAll(path); err != nil {
			errs = errors.Join(errs, zerr.Wrap(err, fmt.Sprintf("failed to remove %s", name)))
			return
		}
		a.logger.Info(fmt.Sprintf("removed %s", name))
	}

	if options.Runtimes {
		remove(domain.CachePathFor(cacheDir, domain.NodeCacheDir), "node runtimes")
		remove(domain.CachePathFor(cacheDir, domain.NginxCacheDir), "nginx runtimes")
		remove(domain.CachePathFor(cacheDir, domain.ResolveCacheDir), "version resolutions")
	}

	if options.Packages {
		remove(domain.CachePathFor(cacheDir, domain.NodeModulesDir), "node packages")
		remove(domain.CachePathFor(cacheDir, domain.BowerComponentsDir), "bower packages")
		remove(domain.CacheStatePath(cacheDir), "cache state")
	}

	return errs
}
