package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnihive/backend/internal/domain/ports"
)

func TestNew_ConsoleOnly(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "warn"}, &buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("⚠️ shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_WritesFiles(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	logger, err := New(Config{Level: "info", LogDir: dir}, &buf)
	require.NoError(t, err)

	logger.Info("all only")
	logger.Error("both files")

	all, err := os.ReadFile(filepath.Join(dir, "hive.log"))
	require.NoError(t, err)
	assert.Contains(t, string(all), "all only")
	assert.Contains(t, string(all), "both files")

	errs, err := os.ReadFile(filepath.Join(dir, "error.log"))
	require.NoError(t, err)
	assert.NotContains(t, string(errs), "all only")
	assert.Contains(t, string(errs), "both files")
}

func TestConsoleWorker_Levels(t *testing.T) {
	logger, hook := test.NewNullLogger()
	w := NewConsoleWorker(logger)

	w.Write(ports.LogLevelInfo, "a")
	w.Write(ports.LogLevelWarn, "b")
	w.Write(ports.LogLevelError, "c")

	require.Len(t, hook.Entries, 3)
	assert.Equal(t, logrus.InfoLevel, hook.Entries[0].Level)
	assert.Equal(t, logrus.WarnLevel, hook.Entries[1].Level)
	assert.Equal(t, logrus.ErrorLevel, hook.Entries[2].Level)
	assert.Equal(t, "console", hook.LastEntry().Data["worker"])
}

func TestFileWorker_Write(t *testing.T) {
	dir := t.TempDir()
	w := NewFileWorker(Config{LogDir: dir}, "custom.log")
	w.Write(ports.LogLevelError, "❌ boom")
	require.NoError(t, w.Close())

	data, err := os.ReadFile(filepath.Join(dir, "custom.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "boom")
	assert.Contains(t, string(data), `"level":"error"`)
}
