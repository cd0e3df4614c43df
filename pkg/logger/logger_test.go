package logx

import (
	"bytes"
	"testing"

	"github.com/Market-intel-core-v1/server/internal/core"
	"github.com/stretchr/testify/assert"
)

func TestInitProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	Init(LoggerOpts{Environment: core.Production, Output: &buf})
	defer Init(LoggerOpts{Environment: core.Testing, Output: &bytes.Buffer{}})

	Debug().Msg("hidden")
	Info().Str("service", "search").Msg("fallback used")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"service":"search"`)
	assert.Contains(t, out, `"env":"production"`)
}

func TestInitDevelopmentLogsDebug(t *testing.T) {
	var buf bytes.Buffer
	Init(LoggerOpts{Environment: core.Development, Output: &buf})
	defer Init(LoggerOpts{Environment: core.Testing, Output: &bytes.Buffer{}})

	Debug().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}
