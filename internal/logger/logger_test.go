package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decode parses the single JSON entry in buf.
func decode(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "Expected valid JSON output")
	return entry
}

func TestNewWithWriter_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("production", &buf)

	log.Info("area analysed", map[string]interface{}{
		"area_code":  "AR-4",
		"sale_count": 7,
	})

	entry := decode(t, &buf)
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "area analysed", entry["message"])
	assert.Equal(t, "AR-4", entry["area_code"])
	assert.Equal(t, float64(7), entry["sale_count"])
	assert.Contains(t, entry, "time")
}

func TestNewWithWriter_DevelopmentIsConsole(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("development", &buf)

	log.Debug("page recognized", map[string]interface{}{"page": 1})

	output := buf.String()
	assert.Contains(t, output, "page recognized")
	assert.Contains(t, output, "page=")
	assert.False(t, json.Valid(buf.Bytes()), "Development output should not be JSON")
}

func TestLogLevels_Production(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("production", &buf)

	log.Debug("debug message", nil)
	assert.Empty(t, buf.String(), "Debug message should not appear in production logging")

	log.Warn("area dropped from study", map[string]interface{}{"year": 2026})
	assert.Contains(t, buf.String(), "area dropped from study")
}

func TestError_IncludesCause(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("production", &buf)

	log.Error("extraction failed", errors.New("tesseract: no text"), map[string]interface{}{
		"filename": "card.pdf",
	})

	entry := decode(t, &buf)
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "tesseract: no text", entry["error"])
	assert.Equal(t, "card.pdf", entry["filename"])
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("production", &buf)

	child := log.With(map[string]interface{}{"area_code": "PR-2"})
	child.Info("test message", nil)

	entry := decode(t, &buf)
	assert.Equal(t, "PR-2", entry["area_code"])
}

func TestWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("production", &buf)

	log.WithRequestID("req-12345").Info("request received", nil)

	entry := decode(t, &buf)
	assert.Equal(t, "req-12345", entry["request_id"])
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("production", &buf)

	log.WithComponent("extractor").Info("record extracted", nil)

	entry := decode(t, &buf)
	assert.Equal(t, "extractor", entry["component"])
}

func TestNop(t *testing.T) {
	log := Nop()

	// Must not panic and has nowhere to write.
	log.Info("ignored", map[string]interface{}{"k": "v"})
	log.Error("ignored", errors.New("boom"), nil)
	assert.NotNil(t, log.GetZerolog())
}

func TestNilFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("production", &buf)

	log.Info("message with nil fields", nil)

	assert.True(t, strings.Contains(buf.String(), "message with nil fields"))
}
