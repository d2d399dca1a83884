// Package logging provides the leveled structured logger shared by the
// ranging pipeline and its command line front end.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/fatih/color"
)

// Level represents a logging severity.
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a string to a Level. An empty string means Info.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return Debug, nil
	case "info", "":
		return Info, nil
	case "warn", "warning":
		return Warn, nil
	case "error":
		return Error, nil
	default:
		return Level(0), fmt.Errorf("unsupported log level %q", s)
	}
}

// Format controls how log entries are rendered.
type Format int

const (
	Text Format = iota
	JSON
)

func (f Format) String() string {
	switch f {
	case Text:
		return "text"
	case JSON:
		return "json"
	default:
		return "unknown"
	}
}

// ParseFormat converts a string to a Format. An empty string means Text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return JSON, nil
	case "text", "":
		return Text, nil
	default:
		return Format(0), fmt.Errorf("unsupported log format %q", s)
	}
}

// Field represents a structured log field.
type Field struct {
	Key   string
	Value any
}

// F is shorthand for building a Field inline.
func F(key string, value any) Field { return Field{Key: key, Value: value} }

// Logger defines leveled structured logging operations.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
}

var defaultLogger Logger

// Default returns the process-wide logger.
func Default() Logger {
	if defaultLogger == nil {
		defaultLogger = New(Info, Text, io.Discard)
	}
	return defaultLogger
}

// SetDefault replaces the process-wide logger.
func SetDefault(l Logger) {
	if l != nil {
		defaultLogger = l
	}
}

// levelTags colors the text-format level markers. The color package disables
// itself when the writer is not a terminal.
var levelTags = map[Level]*color.Color{
	Debug: color.New(color.FgHiBlack),
	Info:  color.New(color.FgGreen),
	Warn:  color.New(color.FgYellow),
	Error: color.New(color.FgRed, color.Bold),
}

type baseLogger struct {
	level  Level
	format Format
	bound  []Field
	out    *log.Logger
}

// New constructs a Logger with the given level, format, and output writer.
func New(level Level, format Format, w io.Writer) Logger {
	return &baseLogger{
		level:  level,
		format: format,
		out:    log.New(w, "", log.LstdFlags),
	}
}

func (l *baseLogger) With(fields ...Field) Logger {
	bound := make([]Field, 0, len(l.bound)+len(fields))
	bound = append(bound, l.bound...)
	bound = append(bound, fields...)
	return &baseLogger{level: l.level, format: l.format, bound: bound, out: l.out}
}

func (l *baseLogger) Debug(msg string, fields ...Field) { l.emit(Debug, msg, fields) }
func (l *baseLogger) Info(msg string, fields ...Field)  { l.emit(Info, msg, fields) }
func (l *baseLogger) Warn(msg string, fields ...Field)  { l.emit(Warn, msg, fields) }
func (l *baseLogger) Error(msg string, fields ...Field) { l.emit(Error, msg, fields) }

func (l *baseLogger) emit(level Level, msg string, fields []Field) {
	if level < l.level {
		return
	}
	all := make([]Field, 0, len(l.bound)+len(fields))
	all = append(all, l.bound...)
	all = append(all, fields...)
	if l.format == JSON {
		l.out.Print(renderJSON(level, msg, all))
		return
	}
	l.out.Print(renderText(level, msg, all))
}

func renderText(level Level, msg string, fields []Field) string {
	var b strings.Builder
	tag := level.String()
	if c, ok := levelTags[level]; ok {
		tag = c.Sprint(tag)
	}
	fmt.Fprintf(&b, "[%s] %s", tag, msg)
	for _, f := range fields {
		if f.Key == "" {
			continue
		}
		fmt.Fprintf(&b, " %s=%v", f.Key, f.Value)
	}
	return b.String()
}

func renderJSON(level Level, msg string, fields []Field) string {
	payload := map[string]any{
		"time":  time.Now().Format(time.RFC3339Nano),
		"level": level.String(),
		"msg":   msg,
	}
	for _, f := range fields {
		if f.Key == "" {
			continue
		}
		payload[f.Key] = f.Value
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("[ERROR] marshal log payload failed: %v", err)
	}
	return string(data)
}
