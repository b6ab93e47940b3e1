package logging

import (
	"context"
	"io"
	"maps"
	"os"

	"github.com/sirupsen/logrus"
)

// DefaultLogger is a Logger backed by logrus.
// Debug/Info -> stdout
// Warn/Error/Fatal -> stderr
//
// Fatal logs and exits the process with status 1.
type DefaultLogger struct {
	out    *logrus.Logger
	errOut *logrus.Logger
	fields Fields
}

// NewDefaultLogger creates a logger that writes text lines to stdout and
// stderr. Colors are enabled only when stdout is a terminal.
func NewDefaultLogger() *DefaultLogger {
	return NewDefaultLoggerTo(os.Stdout, os.Stderr, isTerminal())
}

// NewDefaultLoggerTo creates a logger writing Debug/Info to stdout and
// Warn/Error/Fatal to stderr.
func NewDefaultLoggerTo(stdout, stderr io.Writer, colors bool) *DefaultLogger {
	return &DefaultLogger{
		out:    newLogrus(stdout, colors),
		errOut: newLogrus(stderr, colors),
		fields: make(Fields),
	}
}

func newLogrus(w io.Writer, colors bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:    true,
		DisableColors:    !colors,
		ForceColors:      colors,
		QuoteEmptyFields: true,
	})
	return l
}

// isTerminal reports whether stdout is a character device
func isTerminal() bool {
	if fileInfo, _ := os.Stdout.Stat(); fileInfo != nil {
		return (fileInfo.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

func toLogrusLevel(level Level) logrus.Level {
	switch level {
	case DebugLevel:
		return logrus.DebugLevel
	case InfoLevel:
		return logrus.InfoLevel
	case WarnLevel:
		return logrus.WarnLevel
	case ErrorLevel:
		return logrus.ErrorLevel
	default:
		return logrus.FatalLevel
	}
}

func (d *DefaultLogger) entry(target *logrus.Logger, err error, fields []Fields) *logrus.Entry {
	all := make(logrus.Fields, len(d.fields))
	maps.Copy(all, d.fields)
	for _, f := range fields {
		maps.Copy(all, f)
	}
	e := target.WithFields(all)
	if err != nil {
		e = e.WithError(err)
	}
	return e
}

func (d *DefaultLogger) Debug(msg string, fields ...Fields) {
	d.entry(d.out, nil, fields).Debug(msg)
}

func (d *DefaultLogger) Info(msg string, fields ...Fields) {
	d.entry(d.out, nil, fields).Info(msg)
}

func (d *DefaultLogger) Warn(msg string, fields ...Fields) {
	d.entry(d.errOut, nil, fields).Warn(msg)
}

func (d *DefaultLogger) Error(err error, msg string, fields ...Fields) {
	d.entry(d.errOut, err, fields).Error(msg)
}

func (d *DefaultLogger) Fatal(err error, msg string, fields ...Fields) {
	d.entry(d.errOut, err, fields).Fatal(msg)
}

func (d *DefaultLogger) WithFields(fields Fields) Logger {
	newFields := make(Fields, len(d.fields)+len(fields))
	maps.Copy(newFields, d.fields)
	maps.Copy(newFields, fields)

	return &DefaultLogger{
		out:    d.out,
		errOut: d.errOut,
		fields: newFields,
	}
}

func (d *DefaultLogger) WithContext(ctx context.Context) Logger {
	if fields, ok := FieldsFromContext(ctx); ok {
		return d.WithFields(fields)
	}
	return d
}

// SetLevel changes the level of the underlying logrus loggers, which are
// shared with every logger derived through WithFields.
func (d *DefaultLogger) SetLevel(level Level) {
	d.out.SetLevel(toLogrusLevel(level))
	d.errOut.SetLevel(toLogrusLevel(level))
}
