package kafka

import (
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
)

// SlogLoggerAdapter routes watermill's internal logging through a
// slog.Logger so binaries keep a single structured log stream.
type SlogLoggerAdapter struct {
	logger *slog.Logger
}

// NewSlogLogger wraps the given logger; nil falls back to slog.Default.
func NewSlogLogger(logger *slog.Logger) *SlogLoggerAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogLoggerAdapter{logger: logger}
}

func (a *SlogLoggerAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.logger.Error(msg, append(logArgs(fields), slog.Any("error", err))...)
}

func (a *SlogLoggerAdapter) Info(msg string, fields watermill.LogFields) {
	a.logger.Info(msg, logArgs(fields)...)
}

func (a *SlogLoggerAdapter) Debug(msg string, fields watermill.LogFields) {
	a.logger.Debug(msg, logArgs(fields)...)
}

// Trace maps to debug; slog has no lower level and the trace stream is only
// useful when debugging the transport anyway.
func (a *SlogLoggerAdapter) Trace(msg string, fields watermill.LogFields) {
	a.logger.Debug(msg, logArgs(fields)...)
}

func (a *SlogLoggerAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &SlogLoggerAdapter{logger: a.logger.With(logArgs(fields)...)}
}

func logArgs(fields watermill.LogFields) []any {
	args := make([]any, 0, len(fields)*2+2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	return args
}
