// SPDX-License-Identifier: MIT

// Package log is a small levelled logger shared by every mixref package. It
// writes to stderr so that report output on stdout stays machine readable.
package log

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"
	"sync/atomic"
)

// Level is the severity of a message.
type Level uint32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "UNKNOWN"
}

// ParseLevel converts a case-insensitive name to a Level. It returns
// LevelInfo and false for unknown names.
func ParseLevel(name string) (Level, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "WARNING" {
		name = "WARN"
	}
	for i, n := range levelNames {
		if n == name {
			return Level(i), true
		}
	}
	return LevelInfo, false
}

var (
	current atomic.Uint32
	logger  = stdlog.New(os.Stderr, "", stdlog.Ldate|stdlog.Ltime|stdlog.Lmicroseconds)
	exit    = osExit
)

var osExit = os.Exit

func init() {
	SetLevel(LevelInfo)
}

// SetLevel sets the global level.
func SetLevel(level Level) { current.Store(uint32(level)) }

// GetLevel returns the global level.
func GetLevel() Level { return Level(current.Load()) }

// SetOutput redirects log output, mostly for tests.
func SetOutput(w io.Writer) { logger.SetOutput(w) }

// Enabled reports whether messages at level are written.
func Enabled(level Level) bool { return level >= GetLevel() }

func output(level Level, msg string) {
	if !Enabled(level) && level != LevelFatal {
		return
	}
	// Pad so messages line up after the five-letter levels.
	logger.Printf("[%s]%s %s", level, strings.Repeat(" ", 5-len(level.String())), msg)
	if level == LevelFatal {
		exit(1)
	}
}

func Debugf(format string, v ...any) {
	if Enabled(LevelDebug) {
		output(LevelDebug, fmt.Sprintf(format, v...))
	}
}

func Infof(format string, v ...any) {
	if Enabled(LevelInfo) {
		output(LevelInfo, fmt.Sprintf(format, v...))
	}
}

func Warnf(format string, v ...any) {
	if Enabled(LevelWarn) {
		output(LevelWarn, fmt.Sprintf(format, v...))
	}
}

func Errorf(format string, v ...any) {
	if Enabled(LevelError) {
		output(LevelError, fmt.Sprintf(format, v...))
	}
}

// Fatalf always logs, then exits with status 1.
func Fatalf(format string, v ...any) { output(LevelFatal, fmt.Sprintf(format, v...)) }

func Debug(v ...any) { Debugf("%s", fmt.Sprint(v...)) }
func Info(v ...any)  { Infof("%s", fmt.Sprint(v...)) }
func Warn(v ...any)  { Warnf("%s", fmt.Sprint(v...)) }
func Error(v ...any) { Errorf("%s", fmt.Sprint(v...)) }
func Fatal(v ...any) { Fatalf("%s", fmt.Sprint(v...)) }
