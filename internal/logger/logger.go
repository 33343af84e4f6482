package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	logFile *os.File
	mu      sync.Mutex
	enabled = true
	base    = newBase(io.Discard)
)

const (
	maxLogSize = 5 * 1024 * 1024 // 5MB
)

func newBase(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return l
}

// Dir returns the directory holding the log file and the config.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "fcmd"), nil
}

// Init opens ~/.config/fcmd/fcmd.log, rotating it first when it is too large.
func Init(debug bool) error {
	logDir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("cannot create log directory: %w", err)
	}

	logPath := filepath.Join(logDir, "fcmd.log")

	if info, err := os.Stat(logPath); err == nil && info.Size() > maxLogSize {
		oldPath := logPath + ".old"
		os.Remove(oldPath)
		os.Rename(logPath, oldPath)
	}

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("cannot open log file: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	logFile = file
	base.SetOutput(file)
	if debug {
		base.SetLevel(logrus.DebugLevel)
	}
	return nil
}

// Close closes the log file
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	base.SetOutput(io.Discard)
}

// Disable disables logging (useful for tests)
func Disable() {
	mu.Lock()
	defer mu.Unlock()
	enabled = false
}

// Enable enables logging
func Enable() {
	mu.Lock()
	defer mu.Unlock()
	enabled = true
}

// SetOutput redirects log output; tests use it to capture lines.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	base.SetOutput(w)
}

func Error(format string, args ...any) {
	log(logrus.ErrorLevel, format, args...)
}

func Warn(format string, args ...any) {
	log(logrus.WarnLevel, format, args...)
}

func Info(format string, args ...any) {
	log(logrus.InfoLevel, format, args...)
}

func Debug(format string, args ...any) {
	log(logrus.DebugLevel, format, args...)
}

// WithField returns an entry carrying one structured field, honouring Disable.
func WithField(key string, value any) *logrus.Entry {
	mu.Lock()
	defer mu.Unlock()
	if !enabled {
		return logrus.NewEntry(newBase(io.Discard))
	}
	return base.WithField(key, value)
}

func log(level logrus.Level, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if !enabled {
		return
	}
	base.Logf(level, format, args...)
}
