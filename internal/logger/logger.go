package logger

import (
	"encoding/json"
	"io"
	"log"
	"os"
	"sync/atomic"
	"time"
)

type Level string

const (
	INFO  Level = "INFO"
	WARN  Level = "WARN"
	ERROR Level = "ERROR"
	DEBUG Level = "DEBUG"
)

// Fields is the usual shape of the data attached to an entry.
type Fields map[string]interface{}

type Logger struct {
	*log.Logger
	debug atomic.Bool
}

type LogEntry struct {
	Timestamp string      `json:"timestamp"`
	Level     Level       `json:"level"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
}

var defaultLogger *Logger

func init() {
	defaultLogger = NewLogger(os.Stdout)
	defaultLogger.SetDebug(os.Getenv("DEBUG") == "true")
}

func NewLogger(w io.Writer) *Logger {
	return &Logger{
		Logger: log.New(w, "", 0),
	}
}

// SetDebug turns DEBUG entries on or off.
func (l *Logger) SetDebug(on bool) {
	l.debug.Store(on)
}

func (l *Logger) log(level Level, msg string, data interface{}) {
	entry := LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     level,
		Message:   msg,
		Data:      data,
	}

	if err, ok := data.(error); ok {
		entry.Data = Fields{"error": err.Error()}
	}

	if jsonBytes, err := json.Marshal(entry); err == nil {
		l.Println(string(jsonBytes))
	}
}

func first(data []interface{}) interface{} {
	if len(data) > 0 {
		return data[0]
	}
	return nil
}

func (l *Logger) Info(msg string, data ...interface{}) {
	l.log(INFO, msg, first(data))
}

func (l *Logger) Warn(msg string, data ...interface{}) {
	l.log(WARN, msg, first(data))
}

func (l *Logger) Error(msg string, data ...interface{}) {
	l.log(ERROR, msg, first(data))
}

func (l *Logger) Debug(msg string, data ...interface{}) {
	if l.debug.Load() {
		l.log(DEBUG, msg, first(data))
	}
}

// Global logger functions
func SetDebug(on bool) {
	defaultLogger.SetDebug(on)
}

func SetOutput(w io.Writer) {
	defaultLogger.SetOutput(w)
}

func Info(msg string, data ...interface{}) {
	defaultLogger.Info(msg, data...)
}

func Warn(msg string, data ...interface{}) {
	defaultLogger.Warn(msg, data...)
}

func Error(msg string, data ...interface{}) {
	defaultLogger.Error(msg, data...)
}

func Debug(msg string, data ...interface{}) {
	defaultLogger.Debug(msg, data...)
}
