package logging

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

func init() {
	// Disable coloring unless standard error is attached to a terminal, so
	// that redirected or piped log output doesn't carry escape sequences.
	if !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		color.NoColor = true
	}
}

// Logger is the main logger type. It has the novel property that it still
// functions if nil, but it doesn't log anything. It wraps a standard library
// logger and adds level filtering and hierarchical prefixes, so it respects
// any flags set for the underlying log.Logger. It is safe for concurrent
// usage.
type Logger struct {
	// prefix is any prefix specified for the logger.
	prefix string
	// level is the minimum level at which this logger (and its subloggers)
	// will emit output.
	level Level
	// output is the underlying standard library logger.
	output *log.Logger
}

// RootLogger is the root logger from which all other loggers derive. By
// default it logs at LevelInfo to standard error.
var RootLogger = NewLogger(LevelInfo, os.Stderr)

// NewLogger creates a new logger that writes to the specified writer,
// emitting only messages at or below the specified level.
func NewLogger(level Level, writer io.Writer) *Logger {
	return &Logger{
		level:  level,
		output: log.New(writer, "", log.LstdFlags),
	}
}

// Sublogger creates a new sublogger with the specified name, inheriting the
// parent's level and output destination.
func (l *Logger) Sublogger(name string) *Logger {
	if l == nil {
		return nil
	}

	prefix := name
	if l.prefix != "" {
		prefix = l.prefix + "." + name
	}

	return &Logger{
		prefix: prefix,
		level:  l.level,
		output: l.output,
	}
}

// line formats a log line, adding the logger's prefix if set.
func (l *Logger) line(message string) string {
	if l.prefix != "" {
		return fmt.Sprintf("[%s] %s", l.prefix, message)
	}
	return message
}

// Print logs information at LevelInfo with semantics equivalent to fmt.Print.
func (l *Logger) Print(v ...interface{}) {
	if l != nil && l.level >= LevelInfo {
		l.output.Output(3, l.line(fmt.Sprint(v...)))
	}
}

// Printf logs information at LevelInfo with semantics equivalent to
// fmt.Printf.
func (l *Logger) Printf(format string, v ...interface{}) {
	if l != nil && l.level >= LevelInfo {
		l.output.Output(3, l.line(fmt.Sprintf(format, v...)))
	}
}

// Println logs information at LevelInfo with semantics equivalent to
// fmt.Println.
func (l *Logger) Println(v ...interface{}) {
	if l != nil && l.level >= LevelInfo {
		l.output.Output(3, l.line(fmt.Sprintln(v...)))
	}
}

// Debug logs information at LevelDebug.
func (l *Logger) Debug(v ...interface{}) {
	if l != nil && l.level >= LevelDebug {
		l.output.Output(3, l.line(fmt.Sprint(v...)))
	}
}

// Debugf logs information at LevelDebug with fmt.Printf semantics.
func (l *Logger) Debugf(format string, v ...interface{}) {
	if l != nil && l.level >= LevelDebug {
		l.output.Output(3, l.line(fmt.Sprintf(format, v...)))
	}
}

// Warn logs a warning derived from an error at LevelWarn.
func (l *Logger) Warn(err error) {
	if l != nil && l.level >= LevelWarn {
		l.output.Output(3, l.line(color.YellowString("warning: %v", err)))
	}
}

// Warnf logs a formatted warning at LevelWarn.
func (l *Logger) Warnf(format string, v ...interface{}) {
	if l != nil && l.level >= LevelWarn {
		l.output.Output(3, l.line(color.YellowString("warning: "+format, v...)))
	}
}

// Error logs error information at LevelError.
func (l *Logger) Error(err error) {
	if l != nil && l.level >= LevelError {
		l.output.Output(3, l.line(color.RedString("error: %v", err)))
	}
}
