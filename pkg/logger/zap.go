package logger

import (
	"context"

	"go.uber.org/zap"

	"github.com/Gunvolt24/listener/internal/ports"
	"github.com/Gunvolt24/listener/pkg/ctxmeta"
)

// Проверка, что ZapLogger удовлетворяет порту логгера.
var _ ports.Logger = (*ZapLogger)(nil)

// ZapLogger - ports.Logger поверх zap; каждая запись обогащается метаданными из контекста.
type ZapLogger struct {
	base   *zap.Logger
	sugar  *zap.SugaredLogger
	isProd bool
}

// NewZapLogger - production или development пресет zap; возвращает также функцию Sync.
func NewZapLogger(isProd bool) (*ZapLogger, func() error, error) {
	var (
		logger *zap.Logger
		err    error
	)

	if isProd {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}

	if err != nil {
		return nil, nil, err
	}

	loggerWrap := Wrap(logger)
	loggerWrap.isProd = isProd

	cleanup := func() error { return loggerWrap.base.Sync() }
	return loggerWrap, cleanup, nil
}

// Wrap оборачивает готовый *zap.Logger (например, zap.NewNop() или zaptest в тестах).
func Wrap(base *zap.Logger) *ZapLogger {
	return &ZapLogger{base: base, sugar: base.Sugar()}
}

// with - sugared-логгер с полями контекста (listener_id, request_id, trace_id, span_id).
func (z *ZapLogger) with(ctx context.Context) *zap.SugaredLogger {
	if kv := ctxmeta.Fields(ctx); len(kv) > 0 {
		return z.sugar.With(kv...)
	}
	return z.sugar
}

func (z *ZapLogger) Infof(ctx context.Context, format string, args ...any) {
	z.with(ctx).Infof(format, args...)
}
func (z *ZapLogger) Warnf(ctx context.Context, format string, args ...any) {
	z.with(ctx).Warnf(format, args...)
}
func (z *ZapLogger) Errorf(ctx context.Context, format string, args ...any) {
	z.with(ctx).Errorf(format, args...)
}

func (z *ZapLogger) Debugw(ctx context.Context, msg string, keysAndValues ...any) {
	z.with(ctx).Debugw(msg, keysAndValues...)
}
func (z *ZapLogger) Infow(ctx context.Context, msg string, keysAndValues ...any) {
	z.with(ctx).Infow(msg, keysAndValues...)
}
func (z *ZapLogger) Errorw(ctx context.Context, msg string, keysAndValues ...any) {
	z.with(ctx).Errorw(msg, keysAndValues...)
}

func (z *ZapLogger) Base() *zap.Logger           { return z.base }
func (z *ZapLogger) Sugared() *zap.SugaredLogger { return z.sugar }
func (z *ZapLogger) IsProd() bool                { return z.isProd }
