package logging

import (
	"io"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/omnihive/backend/internal/domain/ports"
)

func write(logger logrus.FieldLogger, level ports.LogLevel, message string) {
	switch level {
	case ports.LogLevelError:
		logger.Error(message)
	case ports.LogLevelWarn:
		logger.Warn(message)
	default:
		logger.Info(message)
	}
}

// ConsoleWorker writes log worker entries through the host logger
type ConsoleWorker struct {
	logger logrus.FieldLogger
}

// NewConsoleWorker creates a console log worker
func NewConsoleWorker(logger logrus.FieldLogger) *ConsoleWorker {
	return &ConsoleWorker{logger: logger.WithField("worker", "console")}
}

func (w *ConsoleWorker) Write(level ports.LogLevel, message string) {
	write(w.logger, level, message)
}

// FileWorker writes JSON entries to its own rotated file
type FileWorker struct {
	logger *logrus.Logger
	closer io.Closer
}

// NewFileWorker creates a file log worker writing to dir/fileName
func NewFileWorker(config Config, fileName string) *FileWorker {
	config = config.withDefaults()
	if fileName == "" {
		fileName = "worker.log"
	}
	out := config.rotating(filepath.Base(fileName))

	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05"})
	return &FileWorker{logger: logger, closer: out}
}

func (w *FileWorker) Write(level ports.LogLevel, message string) {
	write(w.logger, level, message)
}

func (w *FileWorker) Close() error {
	return w.closer.Close()
}

// NullWorker discards everything
type NullWorker struct{}

func (NullWorker) Write(ports.LogLevel, string) {}

var (
	_ ports.LogWorker = (*ConsoleWorker)(nil)
	_ ports.LogWorker = (*FileWorker)(nil)
	_ ports.LogWorker = NullWorker{}
)
