package shell

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/zerr"

	"github.com/cordata/heroku-buildpack-ember-cli/internal/core/domain"
)

// sshWrapperScript disables host key prompting so installs of private
// git dependencies do not hang on first contact.
const sshWrapperScript = `#!/bin/sh
exec ssh -o StrictHostKeyChecking=no -o UserKnownHostsFile=/dev/null -i "%KEY%" "$@"
`

// GitSSHSetup materializes a private key from the GIT_SSH_KEY config
// var and points GIT_SSH at a wrapper script using it. Cleanup removes
// both files.
type GitSSHSetup struct {
	dir     string
	KeyPath string
	Wrapper string
}

// SetupGitSSH writes the key and wrapper under a private temp dir.
// The config var carries the key base64-encoded; it is decoded before
// being written. A nil setup with nil error means no key was
// configured.
func SetupGitSSH(key string) (*GitSSHSetup, error) {
	if key == "" {
		return nil, nil //nolint:nilnil // absent key means nothing to set up
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(key))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSSHKeySetupFailed, err)
	}
	if len(decoded) == 0 {
		return nil, zerr.With(domain.ErrSSHKeySetupFailed, "reason", "key decodes to nothing")
	}
	// ssh wants the key file newline-terminated.
	if decoded[len(decoded)-1] != '\n' {
		decoded = append(decoded, '\n')
	}

	dir, err := os.MkdirTemp("", "git-ssh-")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSSHKeySetupFailed, err)
	}

	keyPath := filepath.Join(dir, "id_key")
	if err := os.WriteFile(keyPath, decoded, domain.PrivateFilePerm); err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("%w: %w", domain.ErrSSHKeySetupFailed, err)
	}

	wrapper := filepath.Join(dir, "git-ssh")
	script := []byte(strings.ReplaceAll(sshWrapperScript, "%KEY%", keyPath))
	if err := os.WriteFile(wrapper, script, 0o700); err != nil { //nolint:gosec // wrapper must be executable by the build user
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("%w: %w", domain.ErrSSHKeySetupFailed, err)
	}

	return &GitSSHSetup{
		dir:     dir,
		KeyPath: keyPath,
		Wrapper: wrapper,
	}, nil
}

// Env returns the environment entries activating the wrapper.
func (g *GitSSHSetup) Env() []string {
	if g == nil {
		return nil
	}
	return []string{"GIT_SSH=" + g.Wrapper, "GIT_SSH_COMMAND=" + g.Wrapper}
}

// Cleanup deletes the key material.
func (g *GitSSHSetup) Cleanup() {
	if g == nil {
		return
	}
	_ = os.RemoveAll(g.dir)
}
