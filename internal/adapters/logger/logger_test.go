package logger_adapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"real-estate-marketplace/internal/core/port"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePoster struct {
	mu     sync.Mutex
	tags   []string
	posted []map[string]interface{}
	closed bool
}

func (f *fakePoster) Post(tag string, message interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tags = append(f.tags, tag)
	f.posted = append(f.posted, message.(map[string]interface{}))
	return nil
}

func (f *fakePoster) Close() error {
	f.closed = true
	return nil
}

func TestSlogAdapter_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(SlogConfig{Writer: &buf, Level: slog.LevelDebug, IsJSON: true})

	logger.WithFields(port.Fields{"use_case": "FindListings"}).Error("boom", errors.New("db down"), port.Fields{"page": 2})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "boom", entry["msg"])
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "FindListings", entry["use_case"])
	assert.Equal(t, "db down", entry["error"])
	assert.EqualValues(t, 2, entry["page"])
}

func TestSlogAdapter_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(SlogConfig{Writer: &buf, Level: slog.LevelWarn})

	logger.Info("hidden", nil)
	logger.Debug("hidden", nil)
	assert.Zero(t, buf.Len())

	logger.Warn("shown", nil)
	assert.Contains(t, buf.String(), "shown")
}

func TestSlogAdapter_ColorOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(SlogConfig{Writer: &buf, UseColor: true})

	logger.Info("colored", port.Fields{"key": "value"})
	assert.Contains(t, buf.String(), "colored")
	assert.Contains(t, buf.String(), "value")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestFluentLoggerAdapter(t *testing.T) {
	poster := &fakePoster{}
	adapter, err := NewFluentLoggerAdapter(poster, slog.LevelInfo)
	require.NoError(t, err)

	scoped := adapter.WithFields(port.Fields{"trace_id": "abc"})
	scoped.Debug("skipped", nil)
	scoped.Info("request completed", port.Fields{"status": 200})
	scoped.Error("request failed", errors.New("timeout"), nil)

	require.Len(t, poster.posted, 2)
	assert.Equal(t, []string{"info", "error"}, poster.tags)
	assert.Equal(t, "abc", poster.posted[0]["trace_id"])
	assert.Equal(t, 200, poster.posted[0]["status"])
	assert.Equal(t, "timeout", poster.posted[1]["error"])

	// исходный логгер не получил полей из WithFields
	adapter.Warn("plain", nil)
	_, hasTrace := poster.posted[2]["trace_id"]
	assert.False(t, hasTrace)

	require.NoError(t, adapter.Close())
	assert.True(t, poster.closed)

	_, err = NewFluentLoggerAdapter(nil, nil)
	assert.Error(t, err)
}

func TestMultiLoggerAdapter(t *testing.T) {
	first, second := &fakePoster{}, &fakePoster{}
	a, _ := NewFluentLoggerAdapter(first, slog.LevelDebug)
	b, _ := NewFluentLoggerAdapter(second, slog.LevelDebug)

	multi, err := NewMultiloggerAdapter(a, nil, b)
	require.NoError(t, err)

	multi.WithFields(port.Fields{"component": "test"}).Debug("hello", nil)
	require.Len(t, first.posted, 1)
	require.Len(t, second.posted, 1)
	assert.Equal(t, "test", second.posted[0]["component"])

	_, err = NewMultiloggerAdapter()
	assert.Error(t, err)
}
