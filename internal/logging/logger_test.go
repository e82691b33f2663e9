package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn")

	log.Info().Msg("hidden")
	log.Warn().Msg("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
}

func TestSubLoggerTagsSubsystem(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info").Sub("graph")

	log.Info().Msg("hello")
	assert.Contains(t, buf.String(), `"subsystem":"graph"`)
}

func TestSilent(t *testing.T) {
	// Must not panic and must not write anywhere.
	Silent().Error().Msg("dropped")
}
