// Package stdlogger adapts the global zerolog logger to printf style logger interfaces such as gorm's logger.Writer.
package stdlogger

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger forwards printf style calls to zerolog.
type Logger struct {
	component string
	level     zerolog.Level // used by Printf
}

// Option configures a Logger.
type Option func(*Logger)

// WithComponent tags every message with component=name.
func WithComponent(name string) Option {
	return func(l *Logger) { l.component = name }
}

// WithPrintLevel sets the level Printf logs at. Default: info.
func WithPrintLevel(level zerolog.Level) Option {
	return func(l *Logger) { l.level = level }
}

// New returns a Logger writing to the global zerolog logger.
func New(opts ...Option) *Logger {
	l := &Logger{level: zerolog.InfoLevel}

	for _, o := range opts {
		o(l)
	}

	return l
}

// Printf implements gorm's logger.Writer.
func (l *Logger) Printf(format string, v ...any) {
	l.send(log.WithLevel(l.level), format, v...)
}

// Debugf logs at debug level.
func (l *Logger) Debugf(format string, v ...any) {
	l.send(log.Debug(), format, v...)
}

// Infof logs at info level.
func (l *Logger) Infof(format string, v ...any) {
	l.send(log.Info(), format, v...)
}

// Warningf logs at warn level.
func (l *Logger) Warningf(format string, v ...any) {
	l.send(log.Warn(), format, v...)
}

// Errorf logs at error level.
func (l *Logger) Errorf(format string, v ...any) {
	l.send(log.Error(), format, v...)
}

func (l *Logger) send(e *zerolog.Event, format string, v ...any) {
	if e == nil {
		return
	}

	if l.component != "" {
		e = e.Str("component", l.component)
	}

	// gorm terminates its templates with newlines
	e.Msgf(strings.TrimRight(format, "\n"), v...)
}
