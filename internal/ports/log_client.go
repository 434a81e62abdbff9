package ports

import (
	"context"

	"github.com/Gunvolt24/listener/internal/domain"
)

// BatchFunc вызывается один раз на каждый батч. Ошибка прерывает итерацию и возвращается из EachBatch.
type BatchFunc func(ctx context.Context, batch *domain.Batch) error

// LogClient - подключение к кластеру лога.
type LogClient interface {
	Consumer(groupID string) (LogConsumer, error)
	Close() error
}

// LogConsumer - участник consumer group.
type LogConsumer interface {
	Subscribe(ctx context.Context, topic string) error
	// EachBatch крутится до Stop (nil), отмены ctx (ctx.Err()) или ошибки fn.
	EachBatch(ctx context.Context, fn BatchFunc) error
	// Stop просит прекратить опрос после текущего батча.
	Stop()
}

// ClientFactory отдаёт подключённый клиент.
type ClientFactory func(ctx context.Context) (LogClient, error)
