package logging

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger(service string) (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &Logger{service: service, zl: zap.New(core)}, logs
}

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		serviceName string
	}{
		{
			name:        "create logger with service name",
			serviceName: "test-service",
		},
		{
			name:        "create logger with empty service name",
			serviceName: "",
		},
		{
			name:        "create logger with complex service name",
			serviceName: "qstash-relay-v2.1.3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.serviceName)

			if logger == nil {
				t.Fatal("New() returned nil logger")
			}
			if logger.service != tt.serviceName {
				t.Errorf("New() service = %q, want %q", logger.service, tt.serviceName)
			}
			if logger.zl == nil {
				t.Error("New() should initialize the underlying zap logger")
			}
		})
	}
}

func TestLogger_WithContext(t *testing.T) {
	// Set up test tracer for trace ID extraction
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)

	tests := []struct {
		name     string
		hasTrace bool
	}{
		{
			name:     "with trace context",
			hasTrace: true,
		},
		{
			name:     "without trace context",
			hasTrace: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := newObservedLogger("test-service")
			ctx := context.Background()

			if tt.hasTrace {
				tracer := otel.Tracer("test-tracer")
				newCtx, span := tracer.Start(ctx, "test-span")
				ctx = newCtx
				defer span.End()
			}

			logger.WithContext(ctx).Info("hello")

			entries := logs.All()
			if len(entries) != 1 {
				t.Fatalf("expected 1 log entry, got %d", len(entries))
			}
			fields := entries[0].ContextMap()

			if fields["service"] != "test-service" {
				t.Errorf("service field = %v, want %q", fields["service"], "test-service")
			}
			traceID, hasTraceID := fields["trace_id"]
			if tt.hasTrace {
				if !hasTraceID || traceID == "" {
					t.Error("trace_id field should be set with trace context")
				}
			} else {
				if hasTraceID {
					t.Errorf("trace_id field = %v, want absent without trace", traceID)
				}
			}
		})
	}
}

func TestLogger_WithFields(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]any
	}{
		{
			name:   "with string fields",
			fields: map[string]any{"key1": "value1", "key2": "value2"},
		},
		{
			name:   "with mixed type fields",
			fields: map[string]any{"count": int64(42), "active": true, "name": "test"},
		},
		{
			name:   "with empty fields",
			fields: map[string]any{},
		},
		{
			name:   "with nil fields",
			fields: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := newObservedLogger("test-service")

			logger.WithFields(tt.fields).Info("hello")

			entries := logs.All()
			if len(entries) != 1 {
				t.Fatalf("expected 1 log entry, got %d", len(entries))
			}
			got := entries[0].ContextMap()

			// service field plus the supplied fields
			if len(got) != len(tt.fields)+1 {
				t.Errorf("field count = %d, want %d", len(got), len(tt.fields)+1)
			}
			for k, v := range tt.fields {
				if got[k] != v {
					t.Errorf("field[%q] = %v, want %v", k, got[k], v)
				}
			}
		})
	}
}

func TestLogger_Plain(t *testing.T) {
	logger, logs := newObservedLogger("test-service")

	logger.Plain().Info("hello")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if len(fields) != 1 {
		t.Errorf("plain entry should carry only the service field, got %v", fields)
	}
	if fields["service"] != "test-service" {
		t.Errorf("service field = %v, want %q", fields["service"], "test-service")
	}
}

func TestEntry_FluentMethods(t *testing.T) {
	tests := []struct {
		name    string
		setupFn func(*Entry) *Entry
		wantKey string
		wantVal string
	}{
		{
			name: "WithTraceID",
			setupFn: func(e *Entry) *Entry {
				return e.WithTraceID("trace-123")
			},
			wantKey: "trace_id",
			wantVal: "trace-123",
		},
		{
			name: "WithMessageID",
			setupFn: func(e *Entry) *Entry {
				return e.WithMessageID("msg_456")
			},
			wantKey: "message_id",
			wantVal: "msg_456",
		},
		{
			name: "WithReceipt",
			setupFn: func(e *Entry) *Entry {
				return e.WithReceipt("rcpt-789")
			},
			wantKey: "receipt_id",
			wantVal: "rcpt-789",
		},
		{
			name: "WithQueue",
			setupFn: func(e *Entry) *Entry {
				return e.WithQueue("orders")
			},
			wantKey: "queue",
			wantVal: "orders",
		},
		{
			name: "WithTopic",
			setupFn: func(e *Entry) *Entry {
				return e.WithTopic("relay-inbound")
			},
			wantKey: "topic",
			wantVal: "relay-inbound",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := newObservedLogger("test-service")
			entry := logger.Plain()

			result := tt.setupFn(entry)

			// Verify fluent interface returns same entry
			if result != entry {
				t.Error("fluent method should return same Entry instance")
			}

			entry.Info("hello")
			fields := logs.All()[0].ContextMap()
			if fields[tt.wantKey] != tt.wantVal {
				t.Errorf("field[%q] = %v, want %q", tt.wantKey, fields[tt.wantKey], tt.wantVal)
			}
		})
	}
}

func TestEntry_Chaining(t *testing.T) {
	logger, logs := newObservedLogger("test-service")

	logger.Plain().
		WithTraceID("trace-123").
		WithMessageID("msg_456").
		WithQueue("orders").
		Info("delivered")

	fields := logs.All()[0].ContextMap()
	if fields["trace_id"] != "trace-123" {
		t.Errorf("trace_id = %v, want %q", fields["trace_id"], "trace-123")
	}
	if fields["message_id"] != "msg_456" {
		t.Errorf("message_id = %v, want %q", fields["message_id"], "msg_456")
	}
	if fields["queue"] != "orders" {
		t.Errorf("queue = %v, want %q", fields["queue"], "orders")
	}
}

func TestEntry_WithField(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
		want  any
	}{
		{
			name:  "string value",
			key:   "operation",
			value: "publish",
			want:  "publish",
		},
		{
			name:  "integer value",
			key:   "attempt",
			value: 3,
			want:  int64(3),
		},
		{
			name:  "boolean value",
			key:   "success",
			value: true,
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := newObservedLogger("test-service")
			entry := logger.Plain()

			result := entry.WithField(tt.key, tt.value)

			if result != entry {
				t.Error("WithField() should return same Entry instance")
			}

			entry.Info("hello")
			fields := logs.All()[0].ContextMap()
			if fields[tt.key] != tt.want {
				t.Errorf("field[%q] = %v, want %v", tt.key, fields[tt.key], tt.want)
			}
		})
	}
}

func TestEntry_WithError(t *testing.T) {
	t.Run("non-nil error", func(t *testing.T) {
		logger, logs := newObservedLogger("test-service")

		logger.Plain().WithError(errors.New("boom")).Error("publish failed")

		fields := logs.All()[0].ContextMap()
		if fields["error"] != "boom" {
			t.Errorf("error field = %v, want %q", fields["error"], "boom")
		}
	})

	t.Run("nil error adds nothing", func(t *testing.T) {
		logger, logs := newObservedLogger("test-service")

		logger.Plain().WithError(nil).Info("fine")

		fields := logs.All()[0].ContextMap()
		if _, ok := fields["error"]; ok {
			t.Error("nil error should not add an error field")
		}
	})
}

func TestEntry_Levels(t *testing.T) {
	tests := []struct {
		name  string
		logFn func(*Entry)
		want  zapcore.Level
		msg   string
	}{
		{
			name:  "debug",
			logFn: func(e *Entry) { e.Debug("debug msg") },
			want:  zapcore.DebugLevel,
			msg:   "debug msg",
		},
		{
			name:  "info",
			logFn: func(e *Entry) { e.Info("info msg") },
			want:  zapcore.InfoLevel,
			msg:   "info msg",
		},
		{
			name:  "warn",
			logFn: func(e *Entry) { e.Warn("warn msg") },
			want:  zapcore.WarnLevel,
			msg:   "warn msg",
		},
		{
			name:  "error",
			logFn: func(e *Entry) { e.Error("error msg") },
			want:  zapcore.ErrorLevel,
			msg:   "error msg",
		},
		{
			name:  "infof formats",
			logFn: func(e *Entry) { e.Infof("attempt %d of %d", 2, 5) },
			want:  zapcore.InfoLevel,
			msg:   "attempt 2 of 5",
		},
		{
			name:  "errorf formats",
			logFn: func(e *Entry) { e.Errorf("status %d", 500) },
			want:  zapcore.ErrorLevel,
			msg:   "status 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := newObservedLogger("test-service")

			tt.logFn(logger.Plain())

			entries := logs.All()
			if len(entries) != 1 {
				t.Fatalf("expected 1 log entry, got %d", len(entries))
			}
			if entries[0].Level != tt.want {
				t.Errorf("level = %v, want %v", entries[0].Level, tt.want)
			}
			if entries[0].Message != tt.msg {
				t.Errorf("message = %q, want %q", entries[0].Message, tt.msg)
			}
		})
	}
}

func TestGlobalFunctions(t *testing.T) {
	original := defaultLogger
	defer func() { defaultLogger = original }()

	logger, logs := newObservedLogger("qstash")
	defaultLogger = logger

	t.Run("Plain", func(t *testing.T) {
		Plain().Info("hello")
		if got := logs.TakeAll(); len(got) != 1 || got[0].ContextMap()["service"] != "qstash" {
			t.Errorf("Plain() should log through the default logger, got %v", got)
		}
	})

	t.Run("WithFields", func(t *testing.T) {
		WithFields(map[string]any{"k": "v"}).Info("hello")
		got := logs.TakeAll()
		if len(got) != 1 || got[0].ContextMap()["k"] != "v" {
			t.Errorf("WithFields() should log through the default logger, got %v", got)
		}
	})

	t.Run("WithContext", func(t *testing.T) {
		WithContext(context.Background()).Info("hello")
		if got := logs.TakeAll(); len(got) != 1 {
			t.Errorf("WithContext() should log through the default logger, got %v", got)
		}
	})

	t.Run("SetDefaultService", func(t *testing.T) {
		SetDefaultService("custom")
		Plain().Info("hello")
		got := logs.TakeAll()
		if len(got) != 1 || got[0].ContextMap()["service"] != "custom" {
			t.Errorf("SetDefaultService() should change the service field, got %v", got)
		}
	})
}
