// Package nginx renders the web server configuration and supervises
// the server process at dyno boot.
package nginx

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/cordata/heroku-buildpack-ember-cli/internal/core/domain"
)

//go:embed nginx.conf.tmpl
var defaultTemplate string

// ConfigData feeds the nginx.conf template.
type ConfigData struct {
	Port      int
	Workers   int
	Root      string
	LogDir    string
	BasicAuth bool
	AuthFile  string
}

// RenderConfig renders nginx.conf into the build directory. An app may
// ship its own template at config/nginx.conf.tmpl; otherwise the
// embedded default is used.
func RenderConfig(buildDir string, data ConfigData) (string, error) {
	text := defaultTemplate
	custom := filepath.Join(buildDir, filepath.FromSlash(domain.NginxTemplateName))
	if raw, err := os.ReadFile(custom); err == nil { //nolint:gosec // app-provided template inside the build dir
		text = string(raw)
	}

	tmpl, err := template.New(domain.NginxConfName).Parse(text)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrTemplateRenderFailed, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrTemplateRenderFailed, err)
	}

	confPath := filepath.Join(buildDir, domain.NginxConfName)
	if err := os.WriteFile(confPath, buf.Bytes(), domain.FilePerm); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrTemplateRenderFailed, err)
	}

	return confPath, nil
}
