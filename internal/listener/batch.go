package listener

import (
	"context"

	"github.com/Gunvolt24/listener/internal/domain"
)

// handleBatch - событие listener.process_batch вокруг обработки батча.
func (l *Listener) handleBatch(ctx context.Context, batch *domain.Batch) error {
	fields := batch.Fields().Merge(l.identity.Fields())
	return l.instr.Instrument(ctx, domain.EventProcessBatch, fields, func(ctx context.Context) error {
		return l.processBatch(ctx, batch)
	})
}

// processBatch вызывает обработчик строго по порядку батча и синхронно.
// Вернуть ошибку может только прерванный цикл повторов (ErrRetryAborted).
func (l *Listener) processBatch(ctx context.Context, batch *domain.Batch) error {
	for i := range batch.Messages {
		msg := &batch.Messages[i]

		meta := domain.NewProcessingMetadata(msg, l.identity)
		meta.Partition = batch.Partition

		if err := l.processMessage(ctx, msg, meta); err != nil {
			return err
		}
	}
	return nil
}
