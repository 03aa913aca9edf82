// Package diag provides the run's diagnostics: a leveled logger in the
// teacher's gated-fmt.Printf idiom, colorized for terminal output, plus
// a SARIF report writer for MalformedTerminator failures.
package diag

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/fatih/color"
)

// Level is a verbosity tier, mirroring the teacher's pass.debug/pass.stats
// integer gate (f.pass.debug > N guards in dom.go/likelyadjust.go).
type Level int

const (
	LevelSilent Level = iota
	LevelInfo
	LevelDebug
	LevelTrace
)

// Logger gates diagnostic output behind a verbosity Level, colorizing
// warnings and errors for terminal output.
type Logger struct {
	level  Level
	out    *log.Logger
	warn   *color.Color
	fatal  *color.Color
	accent *color.Color
}

// NewLogger builds a Logger writing to w at the given verbosity.
func NewLogger(w io.Writer, level Level) *Logger {
	return &Logger{
		level:  level,
		out:    log.New(w, "", 0),
		warn:   color.New(color.FgYellow),
		fatal:  color.New(color.FgRed, color.Bold),
		accent: color.New(color.FgCyan),
	}
}

// NewStderrLogger builds a Logger at level writing to os.Stderr, the
// CLI's default.
func NewStderrLogger(level Level) *Logger {
	return NewLogger(os.Stderr, level)
}

// Infof logs at LevelInfo and above.
func (l *Logger) Infof(format string, args ...any) {
	if l.level < LevelInfo {
		return
	}
	l.out.Println(l.accent.Sprintf(format, args...))
}

// Debugf logs at LevelDebug and above.
func (l *Logger) Debugf(format string, args ...any) {
	if l.level < LevelDebug {
		return
	}
	l.out.Println(fmt.Sprintf(format, args...))
}

// Tracef logs at LevelTrace, the most verbose tier — used for the
// debug trace dump (the rewrite's equivalent of SB_PASS.cpp's
// printTraces, gated instead of always-on).
func (l *Logger) Tracef(format string, args ...any) {
	if l.level < LevelTrace {
		return
	}
	l.out.Println(fmt.Sprintf(format, args...))
}

// Warnf always prints, colorized yellow.
func (l *Logger) Warnf(format string, args ...any) {
	l.out.Println(l.warn.Sprintf(format, args...))
}

// Fatalf always prints, colorized red+bold, mirroring the teacher's
// f.Fatalf invariant-violation idiom (computeLoopDepths). It does not
// exit the process: callers decide whether a per-function error is
// fatal to the run.
func (l *Logger) Fatalf(format string, args ...any) {
	l.out.Println(l.fatal.Sprintf(format, args...))
}
