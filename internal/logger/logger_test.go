package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "billing.log")

	closer, err := Setup(LogConfig{Level: "debug", Format: "json", Output: path})
	require.NoError(t, err)
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	AttachRunID("run-42")
	log := WithComponent("test")
	log.Info().Str("invoice", "INV-1").Msg("Invoice created")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"test"`)
	assert.Contains(t, string(data), `"run_id":"run-42"`)
	assert.Contains(t, string(data), `"invoice":"INV-1"`)
}

func TestSetupRejectsUnknownLevel(t *testing.T) {
	_, err := Setup(LogConfig{Level: "loud", Output: "stderr"})
	assert.Error(t, err)
}
