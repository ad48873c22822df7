package logger

import (
	"bytes"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type bufferSink struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *bufferSink) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *bufferSink) Sync() error { return nil }

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel(""))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestNewLogger_ExtraSinkGetsJSON(t *testing.T) {
	sink := &bufferSink{}
	log, err := NewLogger("warn", "json", "dms-api", sink)
	require.NoError(t, err)

	log.Info("dropped below level")
	log.Warn("autosave failed", zap.String("template_id", "tpl-1"))
	_ = log.Sync()

	lines := bytes.Split(bytes.TrimSpace(sink.buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "autosave failed", entry["msg"])
	assert.Equal(t, "dms-api", entry["service_name"])
	assert.Equal(t, "tpl-1", entry["template_id"])
	assert.Contains(t, entry, "timestamp")
}

func TestNewLogger_Console(t *testing.T) {
	log, err := NewLogger("debug", "console", "")
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
}
