// Package logging carries the info and error streams of the renderer.
//
// The renderer reports through two streams: progress (debug, info) goes to
// the info stream, problems (warnings, errors) to the error stream. Each
// line is tagged with the component that wrote it, for example
// "[drift/headless] WARN: ...".
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Level orders messages by severity.
type Level uint8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return "LEVEL(" + fmt.Sprint(uint8(l)) + ")"
}

// Streams are the renderer's output destinations.
type Streams struct {
	Info  io.Writer
	Error io.Writer
}

// StdStreams writes info to stdout and errors to stderr.
func StdStreams() Streams {
	return Streams{Info: os.Stdout, Error: os.Stderr}
}

// streamState is shared by a logger and every logger named from it, so
// SetDebug on any of them applies to all.
type streamState struct {
	mu    sync.Mutex
	debug bool
	info  *log.Logger
	err   *log.Logger
}

// DefaultLogger writes DEBUG/INFO to the info stream and WARN/ERROR to the
// error stream.
type DefaultLogger struct {
	state  *streamState
	prefix string
}

func NewDefaultLogger(prefix string, debug bool) *DefaultLogger {
	return NewStreamLogger(StdStreams(), prefix, debug)
}

// NewDefaultLoggerTo is NewDefaultLogger with explicit info and error streams.
func NewDefaultLoggerTo(info, errs io.Writer, prefix string, debug bool) *DefaultLogger {
	return NewStreamLogger(Streams{Info: info, Error: errs}, prefix, debug)
}

func NewStreamLogger(s Streams, prefix string, debug bool) *DefaultLogger {
	if s.Info == nil {
		s.Info = io.Discard
	}
	if s.Error == nil {
		s.Error = s.Info
	}
	flags := log.LstdFlags | log.Lmicroseconds
	return &DefaultLogger{
		state: &streamState{
			debug: debug,
			info:  log.New(s.Info, "", flags),
			err:   log.New(s.Error, "", flags),
		},
		prefix: prefix,
	}
}

// Named returns a logger for a component below l. It shares l's streams
// and debug switch; its lines are tagged "prefix/name".
func (l *DefaultLogger) Named(name string) *DefaultLogger {
	prefix := name
	if l.prefix != "" {
		prefix = l.prefix + "/" + name
	}
	return &DefaultLogger{state: l.state, prefix: prefix}
}

// Prefix is the component tag written on each line.
func (l *DefaultLogger) Prefix() string {
	return l.prefix
}

func (l *DefaultLogger) DebugEnabled() bool {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	return l.state.debug
}

func (l *DefaultLogger) SetDebug(enabled bool) {
	l.state.mu.Lock()
	l.state.debug = enabled
	l.state.mu.Unlock()
}

func (l *DefaultLogger) logf(level Level, format string, args ...any) {
	if level == LevelDebug && !l.DebugEnabled() {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if l.prefix != "" {
		msg = fmt.Sprintf("[%s] %s: %s", l.prefix, level, msg)
	} else {
		msg = fmt.Sprintf("%s: %s", level, msg)
	}
	if level >= LevelWarn {
		l.state.err.Print(msg)
		return
	}
	l.state.info.Print(msg)
}

func (l *DefaultLogger) Debugf(format string, args ...any) { l.logf(LevelDebug, format, args...) }
func (l *DefaultLogger) Infof(format string, args ...any)  { l.logf(LevelInfo, format, args...) }
func (l *DefaultLogger) Warnf(format string, args ...any)  { l.logf(LevelWarn, format, args...) }
func (l *DefaultLogger) Errorf(format string, args ...any) { l.logf(LevelError, format, args...) }

type nopLogger struct{}

func NewNopLogger() Logger { return nopLogger{} }

func (nopLogger) DebugEnabled() bool    { return false }
func (nopLogger) SetDebug(bool)         {}
func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

// OrNop returns l, or a no-op logger when l is nil. Never returns nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return NewNopLogger()
	}
	return l
}

// Component tags l's lines with name when l is a DefaultLogger; other
// loggers are returned as they are. A nil l yields a no-op logger.
func Component(l Logger, name string) Logger {
	if d, ok := l.(*DefaultLogger); ok && d != nil {
		return d.Named(name)
	}
	return OrNop(l)
}
