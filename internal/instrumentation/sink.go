// Пакет instrumentation - сквозная инструментация событий слушателя:
// спан OpenTelemetry, debug-лог старта/финиша и метрики Prometheus на каждое событие.
package instrumentation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Gunvolt24/listener/internal/domain"
	"github.com/Gunvolt24/listener/internal/ports"
	"github.com/Gunvolt24/listener/pkg/metrics"
	"github.com/Gunvolt24/listener/pkg/telemetry"
)

// errPanicked - итог события, если fn завершилась паникой (паника пробрасывается дальше).
var errPanicked = errors.New("instrumented operation panicked")

// Проверка, что Sink удовлетворяет порту инструментации.
var _ ports.Instrumenter = (*Sink)(nil)

// Sink - реализация ports.Instrumenter.
type Sink struct {
	log    ports.Logger
	tracer trace.Tracer
}

// NewSink - если tracer == nil, берётся трейсер из глобального провайдера.
func NewSink(log ports.Logger, tracer trace.Tracer) *Sink {
	if tracer == nil {
		tracer = telemetry.Tracer()
	}
	return &Sink{log: log, tracer: tracer}
}

// Instrument оборачивает fn событием name. Итог фиксируется на любом пути выхода,
// включая панику внутри fn.
func (s *Sink) Instrument(
	ctx context.Context,
	name string,
	fields domain.Fields,
	fn func(ctx context.Context) error,
) error {
	ctx, span := s.tracer.Start(ctx, name, trace.WithAttributes(attributes(fields)...))
	start := time.Now()
	s.log.Debugw(ctx, name+" started", fields.KeysAndValues()...)

	finished := false
	defer func() {
		if !finished {
			s.finish(ctx, span, name, fields, start, errPanicked)
		}
	}()

	err := fn(ctx)
	finished = true
	s.finish(ctx, span, name, fields, start, err)
	return err
}

func (s *Sink) finish(
	ctx context.Context,
	span trace.Span,
	name string,
	fields domain.Fields,
	start time.Time,
	err error,
) {
	defer span.End()

	took := time.Since(start)
	metrics.ListenerEventDuration.WithLabelValues(name).Observe(took.Seconds())

	kv := append(fields.KeysAndValues(), "duration", took)
	if err != nil {
		metrics.ListenerEvents.WithLabelValues(name, "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.log.Debugw(ctx, name+" failed", append(kv, "error", err)...)
		return
	}

	metrics.ListenerEvents.WithLabelValues(name, "ok").Inc()
	span.SetStatus(codes.Ok, "")
	s.log.Debugw(ctx, name+" finished", kv...)
}

// attributes переводит поля события в атрибуты спана.
func attributes(fields domain.Fields) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(fields))
	for k, v := range fields {
		switch val := v.(type) {
		case string:
			attrs = append(attrs, attribute.String(k, val))
		case int:
			attrs = append(attrs, attribute.Int(k, val))
		case int64:
			attrs = append(attrs, attribute.Int64(k, val))
		case bool:
			attrs = append(attrs, attribute.Bool(k, val))
		case float64:
			attrs = append(attrs, attribute.Float64(k, val))
		case time.Duration:
			attrs = append(attrs, attribute.String(k, val.String()))
		case []string:
			attrs = append(attrs, attribute.StringSlice(k, val))
		case nil:
			// пропускаем
		default:
			attrs = append(attrs, attribute.String(k, fmt.Sprint(val)))
		}
	}
	return attrs
}
