// Package logging wraps logrus with bastion's component and context conventions.
package logging

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// LogLevel is a textual log level accepted on the command line.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat selects the logrus formatter.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// Config configures a Logger.
type Config struct {
	Level  LogLevel
	Format LogFormat
	Output io.Writer // defaults to os.Stderr
}

// Logger is a logrus logger with bastion helpers.
type Logger struct {
	*logrus.Logger
}

// New builds a Logger from cfg. Unknown levels fall back to info.
func New(cfg Config) *Logger {
	l := logrus.New()

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	l.SetOutput(out)

	level, err := logrus.ParseLevel(strings.ToLower(string(cfg.Level)))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	switch cfg.Format {
	case LogFormatJSON:
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return &Logger{Logger: l}
}

// NewDefault returns an info-level text logger on stderr.
func NewDefault() *Logger {
	return New(Config{Level: LogLevelInfo, Format: LogFormatText})
}

// Discard returns a logger that drops everything. Used by tests and by
// library callers that did not configure logging.
func Discard() *Logger {
	return New(Config{Level: LogLevelError, Output: io.Discard})
}

// WithComponent returns an entry tagged with the component name.
func (l *Logger) WithComponent(name string) *logrus.Entry {
	return l.WithField("component", name)
}

type ctxKey struct{}

// WithLogger stores the logger in ctx.
func WithLogger(ctx context.Context, l *Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored in ctx, or nil.
func FromContext(ctx context.Context) *Logger {
	if ctx == nil {
		return nil
	}
	l, _ := ctx.Value(ctxKey{}).(*Logger)
	return l
}
