package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{"nonsense", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNewWriterLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := ComponentLogger(NewWriterLogger(&buf, Config{Level: "info", Format: FormatJSON}), "loader")

	logger.Debug().Msg("hidden")
	logger.Info().Str("path", "a.csv").Msg("loaded")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "loader", entry["component"])
	assert.Equal(t, "a.csv", entry["path"])
	assert.Equal(t, "loaded", entry["message"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNewWriterLogger_Caller(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, Config{Format: FormatJSON, Caller: true})
	logger.Info().Msg("here")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Contains(t, entry[zerolog.CallerFieldName], "logging_test.go")
}

func TestTraceHook(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, Config{Level: "debug", Format: FormatJSON})

	ctx := ContextWithTraceID(context.Background(), "01TESTTRACE")
	logger.Info().Ctx(ctx).Msg("with trace")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "01TESTTRACE", entry[TraceIDField])

	buf.Reset()
	logger.Info().Msg("no trace")
	assert.NotContains(t, buf.String(), TraceIDField)
}

func TestTraceIDs(t *testing.T) {
	a, b := NewTraceID(), NewTraceID()
	assert.Len(t, a, 26)
	assert.NotEqual(t, a, b)

	ctx := context.Background()
	assert.Empty(t, TraceIDFromContext(ctx))
	assert.Len(t, GetOrGenerateTraceID(ctx), 26)

	ctx = ContextWithTraceID(ctx, a)
	assert.Equal(t, a, GetOrGenerateTraceID(ctx))
}

func TestNewLoggerWithPath_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "scrollviz.log")

	result := NewLoggerWithPath(Config{Level: "info", Output: OutputFile, File: path})
	require.True(t, result.UsingFile)
	assert.False(t, result.FallbackUsed)
	assert.Equal(t, path, result.FilePath)

	result.Logger.Info().Msg("to file")
	require.NoError(t, result.Close())
	require.NoError(t, result.Close(), "second close is a no-op")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}

func TestNewLoggerWithPath_Fallback(t *testing.T) {
	result := NewLoggerWithPath(Config{Output: OutputFile})
	assert.False(t, result.UsingFile)
	assert.True(t, result.FallbackUsed)
	assert.NotEmpty(t, result.FallbackReason)
	assert.NoError(t, result.Close())
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, Config{Format: FormatJSON})
	ctx := logger.WithContext(context.Background())

	FromContext(ctx).Info().Msg("via context")
	assert.Contains(t, buf.String(), "via context")
}

func TestPrintMessages(t *testing.T) {
	var buf bytes.Buffer
	PrintLogPathMessage(&buf, "/tmp/x.log")
	PrintFallbackWarning(&buf, "permission denied")

	assert.Contains(t, buf.String(), "Logging to /tmp/x.log")
	assert.Contains(t, buf.String(), "permission denied")
}
