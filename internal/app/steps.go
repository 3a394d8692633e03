package app

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cordata/heroku-buildpack-ember-cli/internal/adapters/nodebin"
	"github.com/cordata/heroku-buildpack-ember-cli/internal/adapters/shell"
	"github.com/cordata/heroku-buildpack-ember-cli/internal/core/domain"
	"github.com/cordata/heroku-buildpack-ember-cli/internal/core/ports"
	"github.com/cordata/heroku-buildpack-ember-cli/internal/engine/pipeline"
)

// Step names of the compile pipeline.
const (
	StepResolveRuntime  = "resolve runtime"
	StepInstallNode     = "install node"
	StepUpgradeNPM      = "upgrade npm"
	StepDownloadNginx   = "download nginx"
	StepNodeModules     = "node packages"
	StepBowerComponents = "bower packages"
	StepEmberBuild      = "ember build"
	StepFinalize        = "finalize slug"
)

// compileState carries data between pipeline steps. Fields written by
// one step are only read by steps ordered after it, but the mutex keeps
// the race detector satisfied for the renderer-facing reads.
type compileState struct {
	app     *domain.App
	sources *domain.Sources
	dirs    domain.Dirs
	cache   ports.DepCache
	prior   *domain.CacheState
	gitSSH  *shell.GitSSHSetup

	mu          sync.Mutex
	nodeVersion string
	npmVersion  string
	nodeChanged bool
	pkgSig      string
	bowerSig    string
}

func (s *compileState) setRuntime(nodeVersion, npmVersion string, changed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodeVersion = nodeVersion
	s.npmVersion = npmVersion
	s.nodeChanged = changed
}

func (s *compileState) runtime() (nodeVersion, npmVersion string, changed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nodeVersion, s.npmVersion, s.nodeChanged
}

func (s *compileState) setSignature(name, sig string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch name {
	case domain.NodeModulesDir:
		s.pkgSig = sig
	case domain.BowerComponentsDir:
		s.bowerSig = sig
	}
}

func (s *compileState) signatures() (pkgSig, bowerSig string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pkgSig, s.bowerSig
}

// buildEnv is the environment build commands run with: everything from
// the env dir, the vendored runtime on PATH, and the git ssh wrapper
// when a deploy key is configured.
func (s *compileState) buildEnv() []string {
	env := make([]string, 0, len(s.app.Env)+4)
	for k, v := range s.app.Env {
		if k == "PATH" || k == "GIT_SSH_KEY" {
			continue
		}
		env = append(env, k+"="+v)
	}

	nodeBin := filepath.Join(domain.VendorPath(s.dirs.Build, domain.NodeCacheDir), "bin")
	localBin := filepath.Join(s.dirs.Build, domain.NodeModulesDir, ".bin")
	env = append(env, "PATH="+nodeBin+string(os.PathListSeparator)+localBin)

	env = append(env, s.gitSSH.Env()...)
	return env
}

// buildSteps assembles the compile pipeline. Runtime installation and
// the nginx download run concurrently; everything else is ordered by
// its data needs.
func (a *App) buildSteps(state *compileState) []pipeline.Step {
	return []pipeline.Step{
		{Name: StepResolveRuntime, Run: a.resolveRuntimeStep(state)},
		{Name: StepInstallNode, Needs: []string{StepResolveRuntime}, Run: a.installNodeStep(state)},
		{Name: StepUpgradeNPM, Needs: []string{StepInstallNode}, Run: a.upgradeNPMStep(state)},
		{Name: StepDownloadNginx, Run: a.downloadNginxStep(state)},
		{Name: StepNodeModules, Needs: []string{StepUpgradeNPM}, Run: a.nodeModulesStep(state)},
		{Name: StepBowerComponents, Needs: []string{StepNodeModules}, Run: a.bowerComponentsStep(state)},
		{Name: StepEmberBuild, Needs: []string{StepNodeModules, StepBowerComponents}, Run: a.emberBuildStep(state)},
		{Name: StepFinalize, Needs: []string{StepEmberBuild, StepDownloadNginx}, Run: a.finalizeStep(state)},
	}
}

func (a *App) resolveRuntimeStep(state *compileState) pipeline.StepFunc {
	return func(ctx context.Context, span ports.Span) error {
		nodeVersion, err := a.resolver.Resolve(ctx, state.dirs.Cache, ports.EngineNode, state.app.NodeRange)
		if err != nil {
			return err
		}
		span.SetAttribute("node_version", nodeVersion)
		_, _ = fmt.Fprintf(span, "requested node %s, resolved %s\n", rangeOrStable(state.app.NodeRange), nodeVersion)

		var npmVersion string
		if state.app.NPMRange != "" {
			npmVersion, err = a.resolver.Resolve(ctx, state.dirs.Cache, ports.EngineNPM, state.app.NPMRange)
			if err != nil {
				return err
			}
			span.SetAttribute("npm_version", npmVersion)
			_, _ = fmt.Fprintf(span, "requested npm %s, resolved %s\n", state.app.NPMRange, npmVersion)
		}

		changed := state.prior == nil || state.prior.NodeVersion != nodeVersion
		if changed && state.prior != nil {
			_, _ = fmt.Fprintf(span, "node version changed from %s, native modules will be rebuilt\n", state.prior.NodeVersion)
		}

		state.setRuntime(nodeVersion, npmVersion, changed)
		return nil
	}
}

func (a *App) installNodeStep(state *compileState) pipeline.StepFunc {
	return func(ctx context.Context, span ports.Span) error {
		nodeVersion, _, _ := state.runtime()

		cached := filepath.Join(state.dirs.Cache, domain.NodeCacheDir, nodeVersion)
		if _, err := os.Stat(cached); err != nil || state.app.Flag("REBUILD_ALL") {
			url := nodebin.NodeTarballURL(state.sources.NodeMirror, nodeVersion)
			_, _ = fmt.Fprintf(span, "downloading %s\n", url)
			if err := os.RemoveAll(cached); err != nil {
				return fmt.Errorf("%w: %w", domain.ErrInstallFailed, err)
			}
			if err := a.downloader.FetchArchive(ctx, url, cached, true); err != nil {
				return err
			}
		} else {
			_, _ = fmt.Fprintf(span, "using cached node %s\n", nodeVersion)
		}

		vendor := domain.VendorPath(state.dirs.Build, domain.NodeCacheDir)
		if err := os.RemoveAll(vendor); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrInstallFailed, err)
		}
		if err := os.MkdirAll(filepath.Dir(vendor), domain.DirPerm); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrInstallFailed, err)
		}
		if err := os.CopyFS(vendor, os.DirFS(cached)); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrInstallFailed, err)
		}

		_, _ = fmt.Fprintf(span, "node %s vendored\n", nodeVersion)
		return nil
	}
}

func (a *App) upgradeNPMStep(state *compileState) pipeline.StepFunc {
	return func(ctx context.Context, span ports.Span) error {
		_, npmVersion, _ := state.runtime()
		if npmVersion == "" {
			_, _ = fmt.Fprintln(span, "keeping npm bundled with node")
			return nil
		}

		if bundled := a.bundledNPMVersion(ctx, state); bundled == npmVersion {
			_, _ = fmt.Fprintf(span, "npm %s already bundled with node\n", npmVersion)
			return nil
		}

		_, _ = fmt.Fprintf(span, "upgrading npm to %s\n", npmVersion)
		cmd := &domain.Command{
			Argv: []string{"npm", "install", "--quiet", "-g", "npm@" + npmVersion},
			Dir:  state.dirs.Build,
		}
		if err := a.executor.Execute(ctx, cmd, state.buildEnv(), span, span); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrInstallFailed, err)
		}
		return nil
	}
}

// bundledNPMVersion reports the npm version shipped with the vendored
// node, or "" when it cannot be determined.
func (a *App) bundledNPMVersion(ctx context.Context, state *compileState) string {
	var out bytes.Buffer
	cmd := &domain.Command{
		Argv: []string{"npm", "--version"},
		Dir:  state.dirs.Build,
	}
	if err := a.executor.Execute(ctx, cmd, state.buildEnv(), &out, &out); err != nil {
		return ""
	}
	return strings.TrimSpace(out.String())
}

func (a *App) downloadNginxStep(state *compileState) pipeline.StepFunc {
	return func(ctx context.Context, span ports.Span) error {
		version := state.sources.NginxVersion
		cached := filepath.Join(state.dirs.Cache, domain.NginxCacheDir, version)
		if _, err := os.Stat(cached); err != nil {
			_, _ = fmt.Fprintf(span, "downloading nginx %s\n", version)
			// The nginx tarball has sbin/, conf/ and html/ at the top
			// level, unlike the node one which nests under a version dir.
			if err := a.downloader.FetchArchive(ctx, state.sources.NginxURL, cached, false); err != nil {
				return err
			}
		} else {
			_, _ = fmt.Fprintf(span, "using cached nginx %s\n", version)
		}

		vendor := domain.VendorPath(state.dirs.Build, domain.NginxCacheDir)
		if err := os.RemoveAll(vendor); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrInstallFailed, err)
		}
		if err := os.MkdirAll(filepath.Dir(vendor), domain.DirPerm); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrInstallFailed, err)
		}
		if err := os.CopyFS(vendor, os.DirFS(cached)); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrInstallFailed, err)
		}
		return nil
	}
}

func (a *App) nodeModulesStep(state *compileState) pipeline.StepFunc {
	return func(ctx context.Context, span ports.Span) error {
		_, _, nodeChanged := state.runtime()

		sig, err := state.cache.Signature(filepath.Join(state.dirs.Build, "package.json"))
		if err != nil {
			return err
		}
		state.setSignature(domain.NodeModulesDir, sig)

		restored, err := a.prepareTree(span, state, treeSpec{
			name:        domain.NodeModulesDir,
			rebuildFlag: "REBUILD_NODE_PACKAGES",
			priorSig:    priorPackageSig(state.prior),
			currentSig:  sig,
		})
		if err != nil {
			return err
		}

		if restored {
			if pruneErr := a.executor.Execute(ctx, &domain.Command{
				Argv: []string{"npm", "prune", "--quiet"},
				Dir:  state.dirs.Build,
			}, state.buildEnv(), span, span); pruneErr != nil {
				return fmt.Errorf("%w: %w", domain.ErrInstallFailed, pruneErr)
			}
			if nodeChanged {
				_, _ = fmt.Fprintln(span, "rebuilding native modules for the new node version")
				if rebuildErr := a.executor.Execute(ctx, &domain.Command{
					Argv: []string{"npm", "rebuild", "--quiet"},
					Dir:  state.dirs.Build,
				}, state.buildEnv(), span, span); rebuildErr != nil {
					return fmt.Errorf("%w: %w", domain.ErrInstallFailed, rebuildErr)
				}
			}
		}

		if err := a.executor.Execute(ctx, &domain.Command{
			Argv: []string{"npm", "install", "--quiet"},
			Dir:  state.dirs.Build,
		}, state.buildEnv(), span, span); err != nil {
			shell.DumpNPMDebugLog(state.dirs.Build, a.logger)
			return fmt.Errorf("%w: %w", domain.ErrInstallFailed, err)
		}

		return state.cache.Save(domain.NodeModulesDir)
	}
}

func (a *App) bowerComponentsStep(state *compileState) pipeline.StepFunc {
	return func(ctx context.Context, span ports.Span) error {
		if !state.app.HasBower {
			_, _ = fmt.Fprintln(span, "no bower.json, skipping")
			return nil
		}

		sig, err := state.cache.Signature(filepath.Join(state.dirs.Build, "bower.json"))
		if err != nil {
			return err
		}
		state.setSignature(domain.BowerComponentsDir, sig)

		if _, err := a.prepareTree(span, state, treeSpec{
			name:        domain.BowerComponentsDir,
			rebuildFlag: "REBUILD_BOWER_PACKAGES",
			priorSig:    priorBowerSig(state.prior),
			currentSig:  sig,
		}); err != nil {
			return err
		}

		if err := a.executor.Execute(ctx, &domain.Command{
			Argv: []string{"bower", "install", "--allow-root"},
			Dir:  state.dirs.Build,
		}, state.buildEnv(), span, span); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrInstallFailed, err)
		}

		return state.cache.Save(domain.BowerComponentsDir)
	}
}

func (a *App) emberBuildStep(state *compileState) pipeline.StepFunc {
	return func(ctx context.Context, span ports.Span) error {
		emberEnv := state.app.EnvOrOS("EMBER_ENV", domain.DefaultEmberEnv)
		span.SetAttribute("ember_env", emberEnv)
		_, _ = fmt.Fprintf(span, "building for environment %s\n", emberEnv)

		if err := a.executor.Execute(ctx, &domain.Command{
			Argv: []string{"ember", "build", "--environment", emberEnv},
			Dir:  state.dirs.Build,
		}, state.buildEnv(), span, span); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrEmberBuildFailed, err)
		}
		return nil
	}
}

func (a *App) finalizeStep(state *compileState) pipeline.StepFunc {
	return func(_ context.Context, span ports.Span) error {
		nodeVersion, _, _ := state.runtime()
		pkgSig, bowerSig := state.signatures()

		if err := state.cache.WriteState(domain.CacheState{
			NodeVersion:     nodeVersion,
			PackageJSONHash: pkgSig,
			BowerJSONHash:   bowerSig,
			Timestamp:       time.Now().UTC(),
		}); err != nil {
			return err
		}

		if err := installBootBinary(state.dirs.Build); err != nil {
			return err
		}

		_, _ = fmt.Fprintln(span, "slug ready")
		return nil
	}
}

// treeSpec describes one cached dependency tree.
type treeSpec struct {
	name        string
	rebuildFlag string
	priorSig    string
	currentSig  string
}

// prepareTree restores or discards a cached tree ahead of an install.
// It reports whether a cached tree was restored.
func (a *App) prepareTree(span ports.Span, state *compileState, spec treeSpec) (bool, error) {
	rebuild := state.app.Flag("REBUILD_ALL") || state.app.Flag(spec.rebuildFlag)
	stale := state.prior == nil || spec.priorSig != spec.currentSig

	if !rebuild && !stale && state.cache.Has(spec.name) {
		_, _ = fmt.Fprintf(span, "restoring cached %s\n", spec.name)
		if err := state.cache.Restore(spec.name); err != nil {
			return false, err
		}
		return true, nil
	}

	switch {
	case rebuild:
		_, _ = fmt.Fprintf(span, "rebuild requested, discarding cached %s\n", spec.name)
	case stale && state.prior != nil:
		_, _ = fmt.Fprintf(span, "manifest changed, discarding cached %s\n", spec.name)
	}
	if err := state.cache.Drop(spec.name); err != nil {
		return false, err
	}
	return false, nil
}

// installBootBinary copies the running buildpack executable into the
// slug so the web process can run "bin/buildpack boot".
func installBootBinary(buildDir string) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrBuildFailed, err)
	}

	binDir := filepath.Join(buildDir, "bin")
	if err := os.MkdirAll(binDir, domain.DirPerm); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrBuildFailed, err)
	}

	data, err := os.ReadFile(exe) //nolint:gosec // copying our own binary
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrBuildFailed, err)
	}

	target := filepath.Join(binDir, "buildpack")
	if err := os.WriteFile(target, data, 0o755); err != nil { //nolint:gosec // must be executable in the slug
		return fmt.Errorf("%w: %w", domain.ErrBuildFailed, err)
	}

	return nil
}

func rangeOrStable(rng string) string {
	if rng == "" {
		return "stable"
	}
	return rng
}

func priorPackageSig(prior *domain.CacheState) string {
	if prior == nil {
		return ""
	}
	return prior.PackageJSONHash
}

func priorBowerSig(prior *domain.CacheState) string {
	if prior == nil {
		return ""
	}
	return prior.BowerJSONHash
}
