package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	level, ok := ParseLevel(" DEBUG ")
	assert.True(t, ok)
	assert.Equal(t, slog.LevelDebug, level)

	level, ok = ParseLevel("verbose")
	assert.False(t, ok)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestInitLoggerWithWriterWritesJSON(t *testing.T) {
	prev, prevDefault := L, slog.Default()
	t.Cleanup(func() {
		L = prev
		slog.SetDefault(prevDefault)
	})

	var buf bytes.Buffer
	InitLoggerWithWriter(&buf, "warn")
	buf.Reset()

	L.Info("dropped")
	L.Warn("kept", "key", "value")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "value", entry["key"])
}

func TestContextLogger(t *testing.T) {
	assert.Same(t, L, FromContext(context.Background()))

	custom := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := ToContext(context.Background(), custom)
	assert.Same(t, custom, FromContext(ctx))
}
