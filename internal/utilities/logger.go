package utilities

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/antonio-alexander/go-blog-crud/internal"

	"github.com/sirupsen/logrus"
)

const fieldCorrelationId string = "correlation_id"

type logger struct {
	*logrus.Logger
}

type Level int

const (
	Error Level = 1
	Info  Level = 2
	Debug Level = 3
	Trace Level = 4
)

func (l Level) String() string {
	switch l {
	default:
		return ""
	case Error:
		return "error"
	case Info:
		return "info"
	case Debug:
		return "debug"
	case Trace:
		return "trace"
	}
}

func (l Level) logrusLevel() logrus.Level {
	switch l {
	default:
		return logrus.ErrorLevel
	case Info:
		return logrus.InfoLevel
	case Debug:
		return logrus.DebugLevel
	case Trace:
		return logrus.TraceLevel
	}
}

type Logger interface {
	Error(ctx context.Context, format string, v ...any)
	Info(ctx context.Context, format string, v ...any)
	Debug(ctx context.Context, format string, v ...any)
	Trace(ctx context.Context, format string, v ...any)
}

func atoLogLevel(a string) Level {
	switch strings.ToLower(a) {
	default:
		return Error
	case "info":
		return Info
	case "debug":
		return Debug
	case "trace":
		return Trace
	}
}

// NewLogger writes to stdout unless an io.Writer is provided
func NewLogger(parameters ...any) interface {
	internal.Configurer
	Logger
} {
	l := &logger{Logger: logrus.New()}
	l.SetOutput(os.Stdout)
	l.SetLevel(logrus.ErrorLevel)
	for _, parameter := range parameters {
		switch p := parameter.(type) {
		case io.Writer:
			l.SetOutput(p)
		}
	}
	return l
}

func (l *logger) Configure(envs map[string]string) error {
	level := Error
	if logLevel, ok := envs["LOG_LEVEL"]; ok {
		level = atoLogLevel(logLevel)
	}
	l.SetLevel(level.logrusLevel())
	switch strings.ToLower(envs["LOG_FORMAT"]) {
	default:
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	}
	return nil
}

func (l *logger) entry(ctx context.Context) *logrus.Entry {
	entry := logrus.NewEntry(l.Logger)
	if correlationId := internal.CorrelationIdFromCtx(ctx); correlationId != "" {
		entry = entry.WithField(fieldCorrelationId, correlationId)
	}
	return entry
}

func (l *logger) Error(ctx context.Context, format string, v ...any) {
	l.entry(ctx).Errorf(format, v...)
}

func (l *logger) Info(ctx context.Context, format string, v ...any) {
	l.entry(ctx).Infof(format, v...)
}

func (l *logger) Debug(ctx context.Context, format string, v ...any) {
	l.entry(ctx).Debugf(format, v...)
}

func (l *logger) Trace(ctx context.Context, format string, v ...any) {
	l.entry(ctx).Tracef(format, v...)
}

type nopLogger struct{}

// NewNopLogger discards everything, components fall back to it when no
// logger is provided
func NewNopLogger() Logger {
	return nopLogger{}
}

func (nopLogger) Error(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Trace(context.Context, string, ...any) {}
