package logger

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupRejectsUnknownLevel(t *testing.T) {
	err := Setup(LogConfig{Level: "loud", Format: "json", Output: "stdout"})
	assert.Error(t, err)
}

func TestSetupWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, Setup(LogConfig{Level: "debug", Format: "json", Output: path}))
	t.Cleanup(func() { _ = Setup(DefaultConfig()) })

	l := WithComponent("test")
	l.Info().Msg("hello")
}

func TestWithComponentAddsField(t *testing.T) {
	var buf bytes.Buffer
	orig := log.Logger
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = orig })

	l := WithComponent("billing")
	l.Info().Msg("computed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "billing", entry["component"])
	assert.Equal(t, "computed", entry["message"])
}
