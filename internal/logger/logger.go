package logger

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the global logger instance. It defaults to a no-op logger so
// packages can log before Initialize runs (and tests need no setup).
var Log = zap.NewNop()

type contextKey string

// RequestIDKey is the key used to store the request ID in context
const RequestIDKey contextKey = "request_id"

// Initialize sets up the logger for the given environment
func Initialize(env string) {
	var config zap.Config

	if env == "production" {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	var err error
	Log, err = config.Build()
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
}

// WithRequestID returns a context carrying the request ID for log correlation
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// Info logs an info message with request ID and additional context
func Info(ctx context.Context, msg string, fields ...zap.Field) {
	Log.Info(msg, withRequestID(ctx, fields)...)
}

// Warn logs a warning message with request ID and additional context
func Warn(ctx context.Context, msg string, fields ...zap.Field) {
	Log.Warn(msg, withRequestID(ctx, fields)...)
}

// Error logs an error with request ID and additional context
func Error(ctx context.Context, msg string, err error, fields ...zap.Field) {
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	Log.Error(msg, withRequestID(ctx, fields)...)
}

func withRequestID(ctx context.Context, fields []zap.Field) []zap.Field {
	if id, ok := ctx.Value(RequestIDKey).(string); ok && id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	return fields
}
