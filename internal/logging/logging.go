/*
NAME
  logging.go

DESCRIPTION
  logging backs the pipeline's Logger interface with zerolog, so the
  rest of the codebase logs through the same small call-site shape
  regardless of the concrete sink.

LICENSE
  See LICENSE file in the root of this repository.
*/

// Package logging provides a small structured Logger backed by zerolog.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Log levels, matching the int8 levels a Logger call site passes.
const (
	Debug int8 = iota
	Info
	Warning
	Error
	Fatal
)

// Logger is the logging contract used throughout the decoder: a single
// level-tagged Log call, plus per-level convenience wrappers.
type Logger interface {
	SetLevel(int8)
	Log(level int8, message string, params ...interface{})
	Debug(message string, params ...interface{})
	Info(message string, params ...interface{})
	Warning(message string, params ...interface{})
	Error(message string, params ...interface{})
	Fatal(message string, params ...interface{})
}

// zlog adapts a zerolog.Logger to the Logger interface.
type zlog struct {
	l     zerolog.Logger
	level int8
}

// New returns a Logger writing human-readable console output to w.
func New(w io.Writer) Logger {
	if w == nil {
		w = os.Stderr
	}
	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	return &zlog{l: zerolog.New(cw).With().Timestamp().Logger()}
}

// SetLevel sets the minimum level that will actually be emitted.
func (z *zlog) SetLevel(level int8) { z.level = level }

// Log emits message at level, with params taken as alternating key/value
// pairs the way revid's Logger callers already use it.
func (z *zlog) Log(level int8, message string, params ...interface{}) {
	if level < z.level {
		return
	}
	var ev *zerolog.Event
	switch level {
	case Debug:
		ev = z.l.Debug()
	case Info:
		ev = z.l.Info()
	case Warning:
		ev = z.l.Warn()
	case Error:
		ev = z.l.Error()
	case Fatal:
		ev = z.l.Fatal()
	default:
		ev = z.l.Info()
	}
	for i := 0; i+1 < len(params); i += 2 {
		key, ok := params[i].(string)
		if !ok {
			continue
		}
		ev = ev.Interface(key, params[i+1])
	}
	ev.Msg(message)
}

func (z *zlog) Debug(message string, params ...interface{})   { z.Log(Debug, message, params...) }
func (z *zlog) Info(message string, params ...interface{})    { z.Log(Info, message, params...) }
func (z *zlog) Warning(message string, params ...interface{}) { z.Log(Warning, message, params...) }
func (z *zlog) Error(message string, params ...interface{})   { z.Log(Error, message, params...) }
func (z *zlog) Fatal(message string, params ...interface{})   { z.Log(Fatal, message, params...) }
