// ============================================================================
// meinSPRECHWERK (mSW) - Lokaler Sprachassistent
// ============================================================================
//
// Package:     logging
// Description: Structured leveled logging with text and JSON output
// Author:      Mike Stoffels with Claude
// Created:     2026-01-03
// License:     MIT
// ============================================================================

package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level represents log severity
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the level
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// ShortString returns the three-letter form used by the text format
func (l Level) ShortString() string {
	switch l {
	case LevelDebug:
		return "DBG"
	case LevelInfo:
		return "INF"
	case LevelWarn:
		return "WRN"
	case LevelError:
		return "ERR"
	default:
		return "???"
	}
}

// ParseLevel parses a level name, defaulting to info for unknown input
func ParseLevel(level string) Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "dbg":
		return LevelDebug
	case "info", "inf":
		return LevelInfo
	case "warn", "wrn", "warning":
		return LevelWarn
	case "error", "err":
		return LevelError
	default:
		return LevelInfo
	}
}

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Fields holds structured context attached to log entries
type Fields map[string]interface{}

// Config holds logger configuration
type Config struct {
	Name   string
	Level  string
	Format string // "text" or "json" (default: text)
	Output io.Writer
}

// Logger is a structured leveled logger. With* methods return clones,
// so derived loggers never mutate their parent.
type Logger struct {
	mu     sync.Mutex
	level  Level
	format string
	output io.Writer
	name   string
	fields Fields
}

var (
	minLevel   = LevelInfo
	minLevelMu sync.RWMutex
)

// SetMinLevel sets the level that New applies to loggers created
// afterwards. Call it before constructing components.
func SetMinLevel(level Level) {
	minLevelMu.Lock()
	minLevel = level
	minLevelMu.Unlock()
}

// MinLevel returns the level New currently applies.
func MinLevel() Level {
	minLevelMu.RLock()
	defer minLevelMu.RUnlock()
	return minLevel
}

// New creates a text logger at the package minimum level writing to
// stderr
func New(name string) *Logger {
	return &Logger{
		level:  MinLevel(),
		format: FormatText,
		output: os.Stderr,
		name:   name,
		fields: make(Fields),
	}
}

// NewWithConfig creates a logger from the given configuration
func NewWithConfig(cfg Config) *Logger {
	l := &Logger{
		level:  ParseLevel(cfg.Level),
		format: cfg.Format,
		output: cfg.Output,
		name:   cfg.Name,
		fields: make(Fields),
	}
	if l.format != FormatJSON {
		l.format = FormatText
	}
	if l.output == nil {
		l.output = os.Stderr
	}
	return l
}

func (l *Logger) clone() *Logger {
	fields := make(Fields, len(l.fields))
	for k, v := range l.fields {
		fields[k] = v
	}
	return &Logger{
		level:  l.level,
		format: l.format,
		output: l.output,
		name:   l.name,
		fields: fields,
	}
}

// WithLevel returns a clone with the given minimum level
func (l *Logger) WithLevel(level Level) *Logger {
	c := l.clone()
	c.level = level
	return c
}

// WithName returns a clone with the given logger name
func (l *Logger) WithName(name string) *Logger {
	c := l.clone()
	c.name = name
	return c
}

// WithFields returns a clone with the given fields merged in
func (l *Logger) WithFields(fields Fields) *Logger {
	c := l.clone()
	for k, v := range fields {
		c.fields[k] = v
	}
	return c
}

// With returns a clone with alternating key/value pairs merged in
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return l.WithFields(toFields(keysAndValues))
}

// Debug logs a message at debug level
func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.log(LevelDebug, msg, keysAndValues)
}

// Info logs a message at info level
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.log(LevelInfo, msg, keysAndValues)
}

// Warn logs a message at warn level
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.log(LevelWarn, msg, keysAndValues)
}

// Error logs a message at error level
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.log(LevelError, msg, keysAndValues)
}

func (l *Logger) log(level Level, msg string, keysAndValues []interface{}) {
	if level < l.level {
		return
	}

	fields := make(Fields, len(l.fields))
	for k, v := range l.fields {
		fields[k] = v
	}
	for k, v := range toFields(keysAndValues) {
		fields[k] = v
	}

	var line []byte
	if l.format == FormatJSON {
		line = l.formatJSON(level, msg, fields)
	} else {
		line = l.formatText(level, msg, fields)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.output.Write(line)
}

func (l *Logger) formatText(level Level, msg string, fields Fields) []byte {
	var b strings.Builder

	b.WriteString(time.Now().Format("15:04:05.000"))
	b.WriteString(" [")
	b.WriteString(level.ShortString())
	b.WriteString("]")
	if l.name != "" {
		b.WriteString(" {")
		b.WriteString(l.name)
		b.WriteString("}")
	}
	b.WriteString(" ")
	b.WriteString(msg)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(fmt.Sprintf(" %s=%v", k, fields[k]))
	}
	b.WriteString("\n")

	return []byte(b.String())
}

func (l *Logger) formatJSON(level Level, msg string, fields Fields) []byte {
	entry := make(map[string]interface{}, len(fields)+4)
	for k, v := range fields {
		entry[k] = v
	}
	entry["timestamp"] = time.Now().Format(time.RFC3339Nano)
	entry["level"] = level.String()
	entry["message"] = msg
	if l.name != "" {
		entry["logger"] = l.name
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return l.formatText(level, msg, fields)
	}
	return append(data, '\n')
}

// toFields converts alternating key/value pairs into Fields. A
// trailing key without value is recorded with a marker value.
func toFields(keysAndValues []interface{}) Fields {
	fields := make(Fields, len(keysAndValues)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", keysAndValues[i])
		}
		if i+1 < len(keysAndValues) {
			fields[key] = keysAndValues[i+1]
		} else {
			fields[key] = "(MISSING)"
		}
	}
	return fields
}

var (
	defaultLogger   = New("msw")
	defaultLoggerMu sync.RWMutex
)

// Default returns the package-level logger
func Default() *Logger {
	defaultLoggerMu.RLock()
	defer defaultLoggerMu.RUnlock()
	return defaultLogger
}

// SetDefault replaces the package-level logger
func SetDefault(l *Logger) {
	if l == nil {
		return
	}
	defaultLoggerMu.Lock()
	defer defaultLoggerMu.Unlock()
	defaultLogger = l
}

// Debug logs to the package-level logger
func Debug(msg string, keysAndValues ...interface{}) {
	Default().Debug(msg, keysAndValues...)
}

// Info logs to the package-level logger
func Info(msg string, keysAndValues ...interface{}) {
	Default().Info(msg, keysAndValues...)
}

// Warn logs to the package-level logger
func Warn(msg string, keysAndValues ...interface{}) {
	Default().Warn(msg, keysAndValues...)
}

// Error logs to the package-level logger
func Error(msg string, keysAndValues ...interface{}) {
	Default().Error(msg, keysAndValues...)
}
