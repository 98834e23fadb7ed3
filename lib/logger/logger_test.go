package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSetsLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, New("debug").GetLevel())
	assert.Equal(t, logrus.WarnLevel, New("warn").GetLevel())
	assert.Equal(t, logrus.InfoLevel, New("nonsense").GetLevel(), "unknown levels fall back to info")
}

func TestJSONFieldNames(t *testing.T) {
	log := New("info")
	var buf bytes.Buffer
	log.SetOutput(&buf)

	WithComponent(log, "registry").Info("field mounted")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "field mounted", entry["message"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "registry", entry["component"])
	assert.Contains(t, entry, "timestamp")
}
