// Package logging provides structured logging for swarmgate.
package logging

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const traceIDHeader = "X-Trace-ID"

// ctxKey is the type for context keys owned by this package.
type ctxKey string

const traceIDKey ctxKey = "trace_id"

// Logger wraps logrus.Logger with swarmgate-specific helpers.
type Logger struct {
	*logrus.Logger
}

// New creates a Logger with the given level and format ("json" or "text").
func New(level, format string) *Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: time.RFC3339,
			FullTimestamp:   true,
		})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	}

	logger.SetOutput(os.Stdout)

	return &Logger{Logger: logger}
}

// NewFromEnv builds a Logger from LOG_LEVEL/LOG_FORMAT (default info/json).
func NewFromEnv() *Logger {
	level := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if level == "" {
		level = "info"
	}
	format := strings.TrimSpace(os.Getenv("LOG_FORMAT"))
	if format == "" {
		format = "json"
	}
	return New(level, format)
}

// WithContext returns an entry carrying the request's trace ID, if any.
func (l *Logger) WithContext(ctx context.Context) *logrus.Entry {
	entry := l.Logger.WithFields(logrus.Fields{})
	if traceID, ok := ctx.Value(traceIDKey).(string); ok && traceID != "" {
		entry = entry.WithField("trace_id", traceID)
	}
	return entry
}

// WithTraceID attaches a trace ID to a new logger entry.
func (l *Logger) WithTraceID(traceID string) *logrus.Entry {
	return l.Logger.WithField("trace_id", traceID)
}

// WithError attaches an error to a new logger entry.
func (l *Logger) WithError(err error) *logrus.Entry {
	return l.Logger.WithField("error", err.Error())
}

// NewTraceID mints a fresh trace ID.
func NewTraceID() string {
	return uuid.New().String()
}

// WithTraceID stores a trace ID on the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// TraceIDFrom extracts the trace ID stored on the context, if any.
func TraceIDFrom(ctx context.Context) string {
	traceID, _ := ctx.Value(traceIDKey).(string)
	return traceID
}

// TraceMiddleware extracts the inbound X-Trace-ID header or mints a fresh
// one, attaches it to the request context so every rt.log.WithContext call
// downstream finds it, forwards it to the engine, and echoes it back on the
// response.
func TraceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(traceIDHeader)
		if traceID == "" {
			traceID = NewTraceID()
		}

		r = r.WithContext(WithTraceID(r.Context(), traceID))
		r.Header.Set(traceIDHeader, traceID)
		w.Header().Set(traceIDHeader, traceID)

		next.ServeHTTP(w, r)
	})
}
