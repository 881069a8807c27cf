package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestGetLogLevelFromString(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, GetLogLevelFromString("DEBUG"))
	assert.Equal(t, zapcore.InfoLevel, GetLogLevelFromString("info"))
	assert.Equal(t, zapcore.ErrorLevel, GetLogLevelFromString("error"))
	assert.Equal(t, zapcore.WarnLevel, GetLogLevelFromString("bogus"))
}

func TestInitLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "mcsmp.log")
	require.NoError(t, InitLogger(Options{Level: "info", Path: path, Format: "json"}))
	defer SetLogger(nil)

	Debugf("hidden %d", 1)
	Infof("server %s started", "alpha")
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "server alpha started")
	assert.NotContains(t, string(data), "hidden")
}

func TestDefaultLoggerIsNoop(t *testing.T) {
	SetLogger(nil)
	assert.NotPanics(t, func() {
		Info("nothing")
		Errorf("nothing %s", "either")
	})
}
