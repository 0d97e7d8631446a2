package logger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"panic": zapcore.PanicLevel,
		"fatal": zapcore.FatalLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok)
		require.Equal(t, lvl, got)
	}

	_, ok := ParseLogLevel("unknown")
	require.False(t, ok)
}

// TestFromContext_Fallback ensures the global logger is returned for a bare context.
func TestFromContext_Fallback(t *testing.T) {
	t.Parallel()

	require.NotNil(t, FromContext(context.Background()))
	require.Equal(t, Logger(), FromContext(context.Background()))
}

// TestWithName_Scoped ensures a named logger travels through the context.
func TestWithName_Scoped(t *testing.T) {
	t.Parallel()

	ctx := WithName(context.Background(), "rbxmanager")
	require.NotEqual(t, Logger(), FromContext(ctx))
}

// TestNewWithFile creates a logger with a file sink in a temporary directory.
func TestNewWithFile(t *testing.T) {
	t.Parallel()

	l, err := NewWithFile(nil, filepath.Join(t.TempDir(), "logs", "rbxmanager.log"))
	require.NoError(t, err)
	require.NotNil(t, l)
}
