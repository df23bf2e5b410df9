package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("settlement-test", &buf, LevelInfo)

	log.Info("Settlement computed", map[string]interface{}{"transfers": 4})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "settlement-test", entry["service"])
	assert.Equal(t, "Settlement computed", entry["message"])
	assert.Equal(t, float64(4), entry["transfers"])
}

func TestJSONLoggerDropsBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("settlement-test", &buf, LevelWarn)

	log.Debug("noise", nil)
	log.Info("noise", nil)
	log.Warn("kept", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"message":"kept"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel(" error "))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
}
