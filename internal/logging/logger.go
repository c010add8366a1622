package logging

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/austindbirch/qstash-go/internal/tracing"
)

// Logger provides structured logging with trace correlation. Entries are
// emitted as JSON lines on stdout through a zap core.
type Logger struct {
	service string
	zl      *zap.Logger
}

// New creates a new structured logger for the given service
func New(service string) *Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.MessageKey = "msg"
	encCfg.EncodeTime = zapcore.RFC3339TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.Lock(os.Stdout),
		zap.NewAtomicLevelAt(zapcore.DebugLevel),
	)
	return &Logger{
		service: service,
		zl:      zap.New(core),
	}
}

// Entry is a log entry under construction
type Entry struct {
	logger *Logger
	fields []zap.Field
}

// WithContext creates a log entry with trace correlation from context
func (l *Logger) WithContext(ctx context.Context) *Entry {
	entry := l.Plain()
	if traceID := tracing.GetTraceID(ctx); traceID != "" {
		entry.fields = append(entry.fields, zap.String("trace_id", traceID))
	}
	return entry
}

// WithFields creates a log entry with arbitrary key-value pairs
func (l *Logger) WithFields(fields map[string]any) *Entry {
	return l.Plain().WithFields(fields)
}

// Plain creates a basic log entry without context
func (l *Logger) Plain() *Entry {
	return &Entry{
		logger: l,
		fields: []zap.Field{zap.String("service", l.service)},
	}
}

// Fluent interface methods for Entry

// WithTraceID sets the trace ID for the log entry
func (e *Entry) WithTraceID(traceID string) *Entry {
	e.fields = append(e.fields, zap.String("trace_id", traceID))
	return e
}

// WithMessageID tags the entry with a QStash message ID
func (e *Entry) WithMessageID(messageID string) *Entry {
	e.fields = append(e.fields, zap.String("message_id", messageID))
	return e
}

// WithReceipt tags the entry with a relay receipt ID
func (e *Entry) WithReceipt(receiptID string) *Entry {
	e.fields = append(e.fields, zap.String("receipt_id", receiptID))
	return e
}

// WithQueue tags the entry with a queue name
func (e *Entry) WithQueue(queue string) *Entry {
	e.fields = append(e.fields, zap.String("queue", queue))
	return e
}

// WithTopic tags the entry with an NSQ topic
func (e *Entry) WithTopic(topic string) *Entry {
	e.fields = append(e.fields, zap.String("topic", topic))
	return e
}

// WithField adds a single field to the log entry
func (e *Entry) WithField(key string, value any) *Entry {
	e.fields = append(e.fields, zap.Any(key, value))
	return e
}

// WithFields adds multiple fields to the log entry
func (e *Entry) WithFields(fields map[string]any) *Entry {
	for k, v := range fields {
		e.fields = append(e.fields, zap.Any(k, v))
	}
	return e
}

// WithError adds an error field to the log entry
func (e *Entry) WithError(err error) *Entry {
	if err != nil {
		e.fields = append(e.fields, zap.Error(err))
	}
	return e
}

// Log methods

// Debug logs at debug level
func (e *Entry) Debug(message string) {
	e.logger.zl.Debug(message, e.fields...)
}

// Debugf logs at debug level with formatting
func (e *Entry) Debugf(format string, args ...any) {
	e.logger.zl.Debug(fmt.Sprintf(format, args...), e.fields...)
}

// Info logs at info level
func (e *Entry) Info(message string) {
	e.logger.zl.Info(message, e.fields...)
}

// Infof logs at info level with formatting
func (e *Entry) Infof(format string, args ...any) {
	e.logger.zl.Info(fmt.Sprintf(format, args...), e.fields...)
}

// Warn logs at warn level
func (e *Entry) Warn(message string) {
	e.logger.zl.Warn(message, e.fields...)
}

// Warnf logs at warn level with formatting
func (e *Entry) Warnf(format string, args ...any) {
	e.logger.zl.Warn(fmt.Sprintf(format, args...), e.fields...)
}

// Error logs at error level
func (e *Entry) Error(message string) {
	e.logger.zl.Error(message, e.fields...)
}

// Errorf logs at error level with formatting
func (e *Entry) Errorf(format string, args ...any) {
	e.logger.zl.Error(fmt.Sprintf(format, args...), e.fields...)
}

// Fatal logs at fatal level and exits
func (e *Entry) Fatal(message string) {
	e.logger.zl.Fatal(message, e.fields...)
}

// Fatalf logs at fatal level with formatting and exits
func (e *Entry) Fatalf(format string, args ...any) {
	e.logger.zl.Fatal(fmt.Sprintf(format, args...), e.fields...)
}

// Global convenience functions

var defaultLogger = New("qstash")

// WithContext creates a log entry with trace correlation using the default logger
func WithContext(ctx context.Context) *Entry {
	return defaultLogger.WithContext(ctx)
}

// WithFields creates a log entry with fields using the default logger
func WithFields(fields map[string]any) *Entry {
	return defaultLogger.WithFields(fields)
}

// Plain creates a basic log entry using the default logger
func Plain() *Entry {
	return defaultLogger.Plain()
}

// SetDefaultService sets the service name for the default logger
func SetDefaultService(service string) {
	defaultLogger.service = service
}
