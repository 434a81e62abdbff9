// Пакет ctxmeta - нейтральный слой для метаданных, которые прокидываются через context.Context
// (listener_id, request_id, trace_id/span_id).
// Логгер, HTTP-слой и слушатель зависят от этого пакета, но не друг от друга.
package ctxmeta

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

type ctxKey string

const (
	// Ключи контекста (неэкспортируемый тип - чтобы избежать коллизий).
	KeyRequestID  ctxKey = "request_id"
	KeyListenerID ctxKey = "listener_id"
)

// WithRequestID кладёт request_id в контекст (если пусто - ничего не делает).
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return withValue(ctx, KeyRequestID, requestID)
}

// RequestIDFromContext достаёт request_id из контекста.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, KeyRequestID)
}

// WithListenerID кладёт идентификатор слушателя в контекст обработки.
func WithListenerID(ctx context.Context, listenerID string) context.Context {
	return withValue(ctx, KeyListenerID, listenerID)
}

// ListenerIDFromContext достаёт listener_id из контекста.
func ListenerIDFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, KeyListenerID)
}

// TraceIDFromContext - trace_id активного спана.
func TraceIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return "", false
	}
	return sc.TraceID().String(), true
}

// SpanIDFromContext - span_id активного спана.
func SpanIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return "", false
	}
	return sc.SpanID().String(), true
}

// Fields - все известные метаданные контекста парами ключ/значение (для логгера).
func Fields(ctx context.Context) []any {
	var kv []any
	if v, ok := ListenerIDFromContext(ctx); ok {
		kv = append(kv, string(KeyListenerID), v)
	}
	if v, ok := RequestIDFromContext(ctx); ok {
		kv = append(kv, string(KeyRequestID), v)
	}
	if v, ok := TraceIDFromContext(ctx); ok {
		kv = append(kv, "trace_id", v)
	}
	if v, ok := SpanIDFromContext(ctx); ok {
		kv = append(kv, "span_id", v)
	}
	return kv
}

func withValue(ctx context.Context, key ctxKey, value string) context.Context {
	if ctx == nil || value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func stringValue(ctx context.Context, key ctxKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	if v, ok := ctx.Value(key).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
