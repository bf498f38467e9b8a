// logger.go - Structured logging for the transfer-with-fee operator tool
package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/consensys/gnark/logger"
	"github.com/rs/zerolog"
)

// Logger bundles the process logger with the optional audit sink.
type Logger struct {
	zerolog.Logger
	audit   *zerolog.Logger
	closers []io.Closer
}

// auditWriter forwards only warn-and-above events to the audit log.
type auditWriter struct {
	w io.Writer
}

func (a auditWriter) Write(p []byte) (int, error) {
	return a.w.Write(p)
}

func (a auditWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < zerolog.WarnLevel {
		return len(p), nil
	}
	return a.w.Write(p)
}

func parseLevel(level string) zerolog.Level {
	l, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}

// NewLogger creates a new logger instance writing to the console, to logFile if
// set and to auditFile if set. It is installed as gnark's process logger so
// library packages share its sinks and level.
func NewLogger(level, logFile, auditFile string) (*Logger, error) {
	l := &Logger{}
	writers := []io.Writer{zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.DateTime}}

	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		l.closers = append(l.closers, file)
		writers = append(writers, file)
	}

	if auditFile != "" {
		file, err := os.OpenFile(auditFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			l.Close()
			return nil, fmt.Errorf("failed to open audit file: %w", err)
		}
		l.closers = append(l.closers, file)
		writers = append(writers, auditWriter{w: file})
		audit := zerolog.New(file).With().Timestamp().Str("stream", "audit").Logger()
		l.audit = &audit
	}

	l.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(parseLevel(level)).
		With().Timestamp().Logger()
	logger.Set(l.Logger)
	return l, nil
}

// Close closes the logger and its files
func (l *Logger) Close() error {
	var first error
	for _, c := range l.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	l.closers = nil
	return first
}

// Audit logs an audit event
func (l *Logger) Audit(event string, fields map[string]any) {
	if l.audit == nil {
		return
	}
	l.audit.Log().Str("event", event).Fields(fields).Msg("audit")
}
