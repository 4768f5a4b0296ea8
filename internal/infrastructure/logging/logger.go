// Package logging builds the host logger and the log workers.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds logging configuration
type Config struct {
	Level      string `json:"level" yaml:"level"`
	LogDir     string `json:"logDir" yaml:"logDir"`
	MaxSize    int    `json:"maxSize" yaml:"maxSize"`       // megabytes
	MaxBackups int    `json:"maxBackups" yaml:"maxBackups"` // number of files
	MaxAge     int    `json:"maxAge" yaml:"maxAge"`         // days
	Compress   bool   `json:"compress" yaml:"compress"`
}

func (c Config) withDefaults() Config {
	if c.MaxSize == 0 {
		c.MaxSize = 50
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = 5
	}
	if c.MaxAge == 0 {
		c.MaxAge = 30
	}
	return c
}

func (c Config) rotating(name string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filepath.Join(c.LogDir, name),
		MaxSize:    c.MaxSize,
		MaxBackups: c.MaxBackups,
		MaxAge:     c.MaxAge,
		Compress:   c.Compress,
	}
}

// New creates the host logger. Console output uses the text formatter;
// when LogDir is set everything is also written as JSON to hive.log and
// errors additionally to error.log.
func New(config Config, console io.Writer) (*logrus.Logger, error) {
	config = config.withDefaults()
	logger := logrus.New()

	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if console == nil {
		console = os.Stdout
	}
	logger.SetOutput(console)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if config.LogDir == "" {
		return logger, nil
	}

	if err := os.MkdirAll(config.LogDir, 0755); err != nil {
		return nil, err
	}

	logger.AddHook(&FileHook{
		writer:    config.rotating("hive.log"),
		formatter: &logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05"},
		levels:    logrus.AllLevels,
	})
	logger.AddHook(&FileHook{
		writer:    config.rotating("error.log"),
		formatter: &logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05"},
		levels:    []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel},
	})

	return logger, nil
}

// FileHook writes entries of the given levels to a separate writer
type FileHook struct {
	writer    io.Writer
	formatter logrus.Formatter
	levels    []logrus.Level
}

func (hook *FileHook) Fire(entry *logrus.Entry) error {
	line, err := hook.formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = hook.writer.Write(line)
	return err
}

func (hook *FileHook) Levels() []logrus.Level {
	return hook.levels
}
