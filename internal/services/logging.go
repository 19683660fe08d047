package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ServiceLogger provides structured logging for service layer operations
type ServiceLogger struct {
	logger *slog.Logger
}

func NewServiceLogger(logger *slog.Logger, service string) *ServiceLogger {
	return &ServiceLogger{logger: logger.With("service", service)}
}

// LogOperation logs the outcome of one service call. Client-side failures
// are logged at warn, missing resources at info and everything else at error.
func (l *ServiceLogger) LogOperation(ctx context.Context, operation, activity string, duration time.Duration, err error, args ...any) {
	level := slog.LevelInfo
	status := "success"

	if err != nil {
		level = slog.LevelError
		status = "error"

		switch {
		case IsValidation(err) || IsParseError(err) || IsBusinessRule(err):
			level = slog.LevelWarn
			status = "validation_error"
		case IsUnauthorized(err):
			level = slog.LevelWarn
			status = "unauthorized"
		case IsNotFound(err):
			status = "not_found"
		case IsWriteFailed(err):
			status = "write_failed"
		}
	}

	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("activity", activity),
		slog.String("status", status),
		slog.Duration("duration", duration),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		if ve, ok := err.(ValidationErrors); ok {
			attrs = append(attrs, slog.Int("validation_errors_count", len(ve)))
		}
	}
	if len(args) > 0 {
		attrs = append(attrs, slog.Group("details", args...))
	}

	l.logger.LogAttrs(ctx, level, fmt.Sprintf("%s operation %s", operation, status), attrs...)
}

// track returns a func that logs operation with the time elapsed since track
// was called. Use with defer and a named error result.
func (l *ServiceLogger) track(ctx context.Context, operation, activity string, errp *error, args ...any) func() {
	start := time.Now()
	return func() {
		l.LogOperation(ctx, operation, activity, time.Since(start), *errp, args...)
	}
}
