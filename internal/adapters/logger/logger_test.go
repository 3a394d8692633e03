package logger_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/zerr"

	"github.com/cordata/heroku-buildpack-ember-cli/internal/adapters/logger"
)

// newTestLogger creates a logger with an injected bytes.Buffer for isolated
// testing. NO_COLOR keeps the output free of ANSI escape codes.
func newTestLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg, ok := logger.New().(*logger.Logger)
	require.True(t, ok)
	lg.SetOutput(buf)
	return lg, buf
}

func TestLogger_Info(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Info("installing node 0.12.7")

	assert.Equal(t, "installing node 0.12.7\n", buf.String())
}

func TestLogger_Warn(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Warn("cache state unreadable")

	assert.Equal(t, "! cache state unreadable\n", buf.String())
}

func TestLogger_Debug(t *testing.T) {
	t.Run("silent by default", func(t *testing.T) {
		lg, buf := newTestLogger(t)
		lg.Debug("npm output line")

		assert.Empty(t, buf.String())
	})

	t.Run("enabled by BUILD_DEBUG", func(t *testing.T) {
		t.Setenv("BUILD_DEBUG", "1")

		lg, buf := newTestLogger(t)
		lg.Debug("npm output line")

		assert.Equal(t, "npm output line\n", buf.String())
	})
}

func TestLogger_Error(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		goldenName string
	}{
		{
			name:       "standard error",
			err:        errors.New("something broke"),
			goldenName: "error_standard",
		},
		{
			name: "wrapped chain",
			err: zerr.Wrap(
				zerr.Wrap(
					errors.New("connection refused"),
					"failed to query semver resolution API",
				),
				"build failed",
			),
			goldenName: "error_chain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lg, buf := newTestLogger(t)
			lg.Error(tt.err)

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestLogger_ErrorNil(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Error(nil)

	assert.Empty(t, buf.String())
}

func TestLogger_JSONMode(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetJSON(true)

	lg.Info("hello")
	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.Contains(t, buf.String(), `"level":"INFO"`)
}
