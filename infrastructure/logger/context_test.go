package logger_test

import (
	"context"
	"testing"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"

	"github.com/jonesrussell/north-cloud/place-schema/infrastructure/logger"
)

func TestWithContext_FromContext_RoundTrip(t *testing.T) {
	t.Parallel()

	l := logger.NewFromZap(zaptest.NewLogger(t))
	ctx := logger.WithContext(context.Background(), l)

	if got := logger.FromContext(ctx); got != l {
		t.Errorf("FromContext returned %v, want the stored logger", got)
	}
}

func TestFromContext_FallbackIsSingleton(t *testing.T) {
	t.Parallel()

	a := logger.FromContext(context.Background())
	b := logger.FromContext(context.Background())

	if a == nil {
		t.Fatal("FromContext on empty context returned nil")
	}
	if a != b {
		t.Error("FromContext returned different fallback instances")
	}

	a.Warn("fallback usable", logger.String("key", "value"))
}

func TestNew_FormatsAndLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  logger.Config
	}{
		{"defaults", logger.Config{OutputPaths: []string{"stderr"}}},
		{"console", logger.Config{Format: "console", OutputPaths: []string{"stderr"}}},
		{"development", logger.Config{Level: "debug", Development: true, OutputPaths: []string{"stderr"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := logger.New(tt.cfg)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			child := l.With(logger.String("component", "test"))
			child.Debug("debug entry", logger.Int("n", 1))
		})
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
	}

	for in, want := range tests {
		if got := logger.ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNoOpLogger(t *testing.T) {
	t.Parallel()

	l := logger.NewNop()
	if l.With(logger.Bool("x", true)) != l {
		t.Error("NoOp With() should return the same logger")
	}
	if err := l.Sync(); err != nil {
		t.Errorf("Sync() error = %v", err)
	}
}

func TestFromContextOr(t *testing.T) {
	t.Parallel()

	def := logger.NewNop()
	if got := logger.FromContextOr(context.Background(), def); got != def {
		t.Error("FromContextOr() on an empty context should return the default")
	}

	stored := logger.NewFromZap(zaptest.NewLogger(t)).With(logger.String("request_id", "abc"))
	ctx := logger.WithContext(context.Background(), stored)
	if got := logger.FromContextOr(ctx, def); got != stored {
		t.Error("FromContextOr() should prefer the stored logger")
	}
}
