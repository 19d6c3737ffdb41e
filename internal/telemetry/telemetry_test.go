// ABOUTME: Tests for telemetry setup and the slog-to-OTel log bridge.
// ABOUTME: Uses an in-memory SDK log exporter to inspect emitted records.
package telemetry

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

type captured struct {
	Body     string
	Severity otellog.Severity
	Attrs    map[string]string
}

type memExporter struct {
	mu      sync.Mutex
	records []captured
}

func (e *memExporter) Export(_ context.Context, recs []sdklog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range recs {
		c := captured{Body: r.Body().AsString(), Severity: r.Severity(), Attrs: map[string]string{}}
		r.WalkAttributes(func(kv otellog.KeyValue) bool {
			c.Attrs[kv.Key] = kv.Value.String()
			return true
		})
		e.records = append(e.records, c)
	}
	return nil
}

func (e *memExporter) Shutdown(context.Context) error   { return nil }
func (e *memExporter) ForceFlush(context.Context) error { return nil }

func (e *memExporter) snapshot() []captured {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]captured(nil), e.records...)
}

func newBridge(t *testing.T, level slog.Level) (*slog.Logger, *memExporter, *bytes.Buffer) {
	t.Helper()
	exp := &memExporter{}
	lp := sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewSimpleProcessor(exp)))
	t.Cleanup(func() { _ = lp.Shutdown(context.Background()) })

	var buf bytes.Buffer
	text := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level})
	return slog.New(NewHandlerWithLogger(text, lp.Logger("test"))), exp, &buf
}

func TestSetupWithoutEndpointIsNoop(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{})
	if err != nil {
		t.Fatalf("Setup() error: %v", err)
	}
	if shutdown == nil {
		t.Fatal("Setup() returned nil shutdown")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown() error: %v", err)
	}
}

func TestHandlerForwardsToBoth(t *testing.T) {
	logger, exp, buf := newBridge(t, slog.LevelDebug)

	logger.With("component", "sync").WithGroup("page").Warn("fetch failed", "number", 3, "cursor", "c1")

	if !strings.Contains(buf.String(), "fetch failed") {
		t.Errorf("text handler missed record: %q", buf.String())
	}

	want := []captured{{
		Body:     "fetch failed",
		Severity: otellog.SeverityWarn,
		Attrs: map[string]string{
			"component":   "sync",
			"page.number": "3",
			"page.cursor": "c1",
		},
	}}
	if diff := cmp.Diff(want, exp.snapshot()); diff != "" {
		t.Errorf("exported records mismatch (-want +got):\n%s", diff)
	}
}

func TestHandlerRespectsLevel(t *testing.T) {
	logger, exp, buf := newBridge(t, slog.LevelWarn)

	logger.Debug("noise")
	logger.Info("more noise")

	if buf.Len() != 0 {
		t.Errorf("text handler wrote below-level records: %q", buf.String())
	}
	if got := exp.snapshot(); len(got) != 0 {
		t.Errorf("exported %d below-level records", len(got))
	}
}

func TestSeverity(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  otellog.Severity
	}{
		{slog.LevelDebug, otellog.SeverityDebug},
		{slog.LevelInfo, otellog.SeverityInfo},
		{slog.LevelWarn, otellog.SeverityWarn},
		{slog.LevelError, otellog.SeverityError},
		{slog.LevelError + 4, otellog.SeverityError},
	}
	for _, tt := range tests {
		if got := severity(tt.level); got != tt.want {
			t.Errorf("severity(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}
}
