// Package logger is the process-wide debug log. The TUI owns stdout, so
// everything goes to a file (DefaultLogPath unless Init says otherwise).
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l LogLevel) zerologLevel() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

var (
	base     zerolog.Logger
	logFile  *os.File
	mu       sync.Mutex
	logPath  string
	initDone bool
)

// DefaultLogPath is the default log file for the client process
const DefaultLogPath = "/tmp/parley-debug.log"

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	base = zerolog.Nop()
}

// SetLevel sets the minimum log level to output
func SetLevel(level LogLevel) {
	zerolog.SetGlobalLevel(level.zerologLevel())
}

// SetDebug enables debug level logging
func SetDebug(enabled bool) {
	if enabled {
		SetLevel(LevelDebug)
	} else {
		SetLevel(LevelInfo)
	}
}

func newLogger(w io.Writer) zerolog.Logger {
	out := zerolog.ConsoleWriter{
		Out:        zerolog.SyncWriter(w),
		NoColor:    true,
		PartsOrder: []string{zerolog.TimestampFieldName, zerolog.LevelFieldName, zerolog.MessageFieldName},
		FormatTimestamp: func(i interface{}) string {
			return fmt.Sprintf("[%v]", i)
		},
	}
	return zerolog.New(out).With().Timestamp().Logger()
}

// Init points the logger at path. Later calls are no-ops until Reset.
func Init(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if initDone {
		return nil
	}
	return openLocked(path)
}

func openLocked(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	logFile = f
	logPath = path
	base = newLogger(f)
	initDone = true

	base.Info().Str("path", path).Msg("Logger initialized")
	return nil
}

func ensureInit() {
	if initDone {
		return
	}
	if err := openLocked(DefaultLogPath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		// Don't retry on every call.
		initDone = true
	}
}

func logWithLevel(level zerolog.Level, format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	ensureInit()
	base.WithLevel(level).Msgf(format, args...)
}

// Debug writes a debug message to the log file (only if level is LevelDebug)
func Debug(format string, args ...interface{}) {
	if zerolog.GlobalLevel() > zerolog.DebugLevel {
		return
	}
	logWithLevel(zerolog.DebugLevel, format, args...)
}

// Info writes an info message to the log file
func Info(format string, args ...interface{}) {
	logWithLevel(zerolog.InfoLevel, format, args...)
}

// Warn writes a warning message to the log file
func Warn(format string, args ...interface{}) {
	logWithLevel(zerolog.WarnLevel, format, args...)
}

// Error writes an error message to the log file
func Error(format string, args ...interface{}) {
	logWithLevel(zerolog.ErrorLevel, format, args...)
}

// Close closes the log file
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	base = zerolog.Nop()
}

// Reset resets the logger state, allowing reinitialization.
// This is primarily for testing purposes.
func Reset() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	initDone = false
	logPath = ""
	base = zerolog.Nop()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// Path returns the file currently receiving log output, or "" before Init.
func Path() string {
	mu.Lock()
	defer mu.Unlock()
	return logPath
}

// ClearLogs removes parley log files from /tmp
func ClearLogs() (int, error) {
	count := 0

	paths, err := filepath.Glob("/tmp/parley-*.log")
	if err != nil {
		return count, err
	}
	for _, p := range paths {
		if err := os.Remove(p); err == nil {
			count++
		} else if !os.IsNotExist(err) {
			return count, err
		}
	}
	return count, nil
}

// ComponentLogger returns a logger with the component field pre-attached.
//
// Example:
//
//	log := logger.ComponentLogger("chat")
//	log.Debug().Str("key", key).Msg("record added")
func ComponentLogger(component string) *zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()

	ensureInit()
	l := base.With().Str("component", component).Logger()
	return &l
}

// WithRoom returns a logger scoped to one chat room.
func WithRoom(roomID string) *zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()

	ensureInit()
	l := base.With().Str("room", roomID).Logger()
	return &l
}
