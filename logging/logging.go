// Provide application-wide logging with pre-defined log levels.
// Key generation reports rejected candidates at debug level and
// the selected key material at info level.
//
// By default logs of level WARNING and ERROR are printed to stderr.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

func init() {
	Initialize(LevelWarning, nil, nil)
}

type LogLevel int

const (
	LevelNone LogLevel = iota
	LevelError
	LevelWarning
	LevelInfo
	LevelDebug
)

var levelNames = map[LogLevel]string{
	LevelNone:    "none",
	LevelError:   "error",
	LevelWarning: "warning",
	LevelInfo:    "info",
	LevelDebug:   "debug",
}

func (l LogLevel) String() string {
	name, ok := levelNames[l]
	if !ok {
		return fmt.Sprintf("LogLevel(%d)", int(l))
	}
	return name
}

// ParseLevel returns the level with the given (case insensitive) name.
func ParseLevel(s string) (LogLevel, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for l, name := range levelNames {
		if name == s {
			return l, nil
		}
	}
	return LevelNone, fmt.Errorf("logging: unknown log level '%s'", s)
}

type logger struct {
	level         LogLevel
	ErrorLogger   *log.Logger
	WarningLogger *log.Logger
	InfoLogger    *log.Logger
	DebugLogger   *log.Logger
}

var currentLogger logger

var nilLogger = log.New(io.Discard, "", 0)

// Initialize the application wide logger to a specific log level.
// This should ideally be called once at the beginning of the application.
// Custom writers can be specified as well: errWriter will be used for
// log levels ERROR and WARNING, logWriter for everything else.
// These may be set to nil, in which case they default to stdout and stderr.
func Initialize(l LogLevel, logWriter io.Writer, errWriter io.Writer) {
	if logWriter == nil {
		logWriter = os.Stdout
	}

	if errWriter == nil {
		errWriter = os.Stderr
	}

	out := logger{
		level:         l,
		ErrorLogger:   nilLogger,
		WarningLogger: nilLogger,
		InfoLogger:    nilLogger,
		DebugLogger:   nilLogger,
	}

	if l >= LevelError {
		out.ErrorLogger = log.New(errWriter, "ERROR: ", log.LstdFlags)
	}

	if l >= LevelWarning {
		out.WarningLogger = log.New(errWriter, "WARNING: ", log.LstdFlags)
	}

	if l >= LevelInfo {
		out.InfoLogger = log.New(logWriter, "INFO: ", log.LstdFlags)
	}

	if l >= LevelDebug {
		out.DebugLogger = log.New(logWriter, "DEBUG: ", log.LstdFlags)
	}

	currentLogger = out
}

// Level returns the level the logger was last initialized with.
func Level() LogLevel {
	return currentLogger.level
}

func Error(s string) {
	currentLogger.ErrorLogger.Print(s)
}

func Errorf(format string, v ...any) {
	currentLogger.ErrorLogger.Printf(format, v...)
}

func Warning(s string) {
	currentLogger.WarningLogger.Print(s)
}

func Warningf(format string, v ...any) {
	currentLogger.WarningLogger.Printf(format, v...)
}

func Info(s string) {
	currentLogger.InfoLogger.Print(s)
}

func Infof(format string, v ...any) {
	currentLogger.InfoLogger.Printf(format, v...)
}

// Debug output is produced for every rejected prime candidate, so
// callers in hot loops should not build expensive arguments.
func Debug(s string) {
	currentLogger.DebugLogger.Print(s)
}

func Debugf(format string, v ...any) {
	currentLogger.DebugLogger.Printf(format, v...)
}
