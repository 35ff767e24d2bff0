package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestInitLogger(t *testing.T) {
	assert.NoError(t, InitLogger(LogLevelNormal, ""))
	assert.NotNil(t, Log)
	assert.Equal(t, logrus.InfoLevel, Log.GetLevel())

	assert.NoError(t, InitLogger(LogLevelVerbose, ""))
	assert.Equal(t, logrus.DebugLevel, Log.GetLevel())

	assert.NoError(t, InitLogger(LogLevelQuiet, ""))
	assert.Equal(t, logrus.WarnLevel, Log.GetLevel())

	// unknown levels fall back to info
	assert.NoError(t, InitLogger("NOISE", ""))
	assert.Equal(t, logrus.InfoLevel, Log.GetLevel())
}

func TestInitLoggerWithFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "submaker.log")

	assert.NoError(t, InitLogger(LogLevelNormal, logPath))

	Info("hello from the test")

	data, err := os.ReadFile(logPath)
	assert.NoError(t, err)
	assert.Contains(t, string(data), "hello from the test")
}

func TestLogHelpers(t *testing.T) {
	assert.NoError(t, InitLogger(LogLevelVerbose, ""))

	// helpers must not panic regardless of argument shape
	Debug("plain")
	Debug("with %d arg", 1)
	Info("plain")
	Warn("with %s", "arg")
	Error("plain")

	entry := WithField("key", "value")
	assert.NotNil(t, entry)

	entry = WithFields(logrus.Fields{"a": 1, "b": 2})
	assert.NotNil(t, entry)
}
