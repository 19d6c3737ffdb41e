// ABOUTME: slog handler that tees records to a local handler and an OTel logger.
// ABOUTME: Lets debug and warning output reach the collector without a second logging API.
package telemetry

import (
	"context"
	"log/slog"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
)

// Handler forwards every record to next and, when enabled at the record's
// level, to an OpenTelemetry logger.
type Handler struct {
	next   slog.Handler
	logger otellog.Logger
	attrs  []otellog.KeyValue
	prefix string
}

// NewHandler wraps next. The OTel logger is taken from the global provider,
// so call it after [Setup].
func NewHandler(next slog.Handler, scope string) *Handler {
	return NewHandlerWithLogger(next, global.GetLoggerProvider().Logger(scope))
}

// NewHandlerWithLogger wraps next and emits to logger.
func NewHandlerWithLogger(next slog.Handler, logger otellog.Logger) *Handler {
	return &Handler{next: next, logger: logger}
}

// Enabled defers to the wrapped handler's level.
func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle writes r to the wrapped handler and emits it to the OTel logger.
func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	var rec otellog.Record
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	rec.SetTimestamp(ts)
	rec.SetSeverity(severity(r.Level))
	rec.SetSeverityText(r.Level.String())
	rec.SetBody(otellog.StringValue(r.Message))
	rec.AddAttributes(h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		rec.AddAttributes(convertAttr(h.prefix, a))
		return true
	})
	h.logger.Emit(ctx, rec)

	return h.next.Handle(ctx, r)
}

// WithAttrs returns a handler that adds attrs to every record.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.next = h.next.WithAttrs(attrs)
	clone.attrs = make([]otellog.KeyValue, len(h.attrs), len(h.attrs)+len(attrs))
	copy(clone.attrs, h.attrs)
	for _, a := range attrs {
		clone.attrs = append(clone.attrs, convertAttr(h.prefix, a))
	}
	return &clone
}

// WithGroup returns a handler that qualifies later attribute keys with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.next = h.next.WithGroup(name)
	clone.prefix = h.prefix + name + "."
	return &clone
}

func severity(level slog.Level) otellog.Severity {
	switch {
	case level >= slog.LevelError:
		return otellog.SeverityError
	case level >= slog.LevelWarn:
		return otellog.SeverityWarn
	case level >= slog.LevelInfo:
		return otellog.SeverityInfo
	default:
		return otellog.SeverityDebug
	}
}

func convertAttr(prefix string, a slog.Attr) otellog.KeyValue {
	return otellog.KeyValue{Key: prefix + a.Key, Value: convertValue(a.Value)}
}

func convertValue(v slog.Value) otellog.Value {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return otellog.StringValue(v.String())
	case slog.KindInt64:
		return otellog.Int64Value(v.Int64())
	case slog.KindUint64:
		return otellog.Int64Value(int64(v.Uint64()))
	case slog.KindFloat64:
		return otellog.Float64Value(v.Float64())
	case slog.KindBool:
		return otellog.BoolValue(v.Bool())
	case slog.KindDuration:
		return otellog.Int64Value(v.Duration().Nanoseconds())
	case slog.KindTime:
		return otellog.StringValue(v.Time().Format(time.RFC3339Nano))
	case slog.KindGroup:
		group := v.Group()
		kvs := make([]otellog.KeyValue, 0, len(group))
		for _, a := range group {
			kvs = append(kvs, convertAttr("", a))
		}
		return otellog.MapValue(kvs...)
	default:
		return otellog.StringValue(v.String())
	}
}
