package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestInitWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "opsboard.log")
	require.NoError(t, Init(Config{Level: "debug", OutputFile: path, Quiet: true}))
	t.Cleanup(func() { logrus.SetOutput(os.Stderr) })

	WithField("module", "logger_test").Info("hello file")
	logrus.WithField("module", "global").Warn("from global")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(data), "hello file"))
	require.True(t, strings.Contains(string(data), "from global"))
	require.Equal(t, path, GetCurrentLogFile())
	require.Equal(t, logrus.DebugLevel, Logger.GetLevel())
}

func TestInitBadLevelFallsBackToInfo(t *testing.T) {
	require.NoError(t, Init(Config{Level: "loud", Quiet: true}))
	t.Cleanup(func() { logrus.SetOutput(os.Stderr) })
	require.Equal(t, logrus.InfoLevel, Logger.GetLevel())
	require.Equal(t, "", GetCurrentLogFile())
}
