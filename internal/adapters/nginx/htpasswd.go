package nginx

import (
	"crypto/sha1" //nolint:gosec // nginx auth_basic understands the {SHA} scheme, not modern hashes
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cordata/heroku-buildpack-ember-cli/internal/core/domain"
)

// WriteHtpasswd writes a single-user htpasswd file using the {SHA}
// scheme and returns its path.
func WriteHtpasswd(buildDir, user, password string) (string, error) {
	sum := sha1.Sum([]byte(password)) //nolint:gosec // see import note
	encoded := base64.StdEncoding.EncodeToString(sum[:])
	line := user + ":{SHA}" + encoded + "\n"

	path := filepath.Join(buildDir, domain.HtpasswdName)
	if err := os.WriteFile(path, []byte(line), domain.PrivateFilePerm); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrHtpasswdWriteFailed, err)
	}

	return path, nil
}
