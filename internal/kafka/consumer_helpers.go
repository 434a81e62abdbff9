package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Gunvolt24/listener/internal/domain"
	"github.com/Gunvolt24/listener/pkg/metrics"
)

// fetchBatch блокируется до первого сообщения, затем добирает батч
// до MaxBatchSize или до истечения BatchWait. Ошибка - только если не получено ни одного сообщения.
func (c *Consumer) fetchBatch(ctx context.Context, r reader) ([]kafka.Message, error) {
	first, err := r.FetchMessage(ctx)
	if err != nil {
		return nil, err
	}

	msgs := []kafka.Message{first}
	if c.cfg.MaxBatchSize <= 1 {
		return msgs, nil
	}

	fillCtx, cancel := context.WithTimeout(ctx, c.cfg.BatchWait)
	defer cancel()

	for len(msgs) < c.cfg.MaxBatchSize {
		msg, err := r.FetchMessage(fillCtx)
		if err != nil {
			// таймаут добора или отмена - отдаём то, что есть
			break
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// partitionBatch - батч одной партиции и последнее сообщение для коммита.
type partitionBatch struct {
	batch *domain.Batch
	last  kafka.Message
}

// splitByPartition делит выборку по партициям; порядок внутри партиции сохраняется,
// партиции идут в порядке первого появления.
func splitByPartition(msgs []kafka.Message) []partitionBatch {
	index := make(map[int]int)
	var out []partitionBatch

	for i := range msgs {
		m := &msgs[i]
		pos, ok := index[m.Partition]
		if !ok {
			out = append(out, partitionBatch{batch: &domain.Batch{Topic: m.Topic, Partition: m.Partition}})
			pos = len(out) - 1
			index[m.Partition] = pos
		}
		pb := &out[pos]
		pb.batch.Messages = append(pb.batch.Messages, toDomain(m))
		pb.last = *m
	}

	for i := range out {
		last := out[i].last
		out[i].batch.HighwaterMarkOffset = last.HighWaterMark
		if lag := last.HighWaterMark - (last.Offset + 1); lag > 0 {
			out[i].batch.OffsetLag = lag
		}
	}
	return out
}

func toDomain(m *kafka.Message) domain.Message {
	return domain.Message{
		Topic:     m.Topic,
		Partition: m.Partition,
		Offset:    m.Offset,
		Key:       m.Key,
		Value:     m.Value,
		Time:      m.Time,
	}
}

// commitSafely пытается закоммитить оффсет и залогировать ошибку.
func (c *Consumer) commitSafely(ctx context.Context, r reader, msg *kafka.Message) {
	if commitErr := r.CommitMessages(ctx, *msg); commitErr != nil {
		metrics.KafkaCommitFailures.WithLabelValues(msg.Topic).Inc()
		c.log.Warnf(ctx, "commit failed partition=%d offset=%d: %v", msg.Partition, msg.Offset, commitErr)
	}
}

// sleepWithBackoff ждет backoff или останавливается по контексту.
func (c *Consumer) sleepWithBackoff(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

// nextBackoff возвращает следующее время ожидания повтора с учетом RetryMax.
func (c *Consumer) nextBackoff(current time.Duration) time.Duration {
	current *= 2
	if current > c.cfg.RetryMax {
		return c.cfg.RetryMax
	}
	return current
}

// withJitterEqual - умеренная случайность: половина задержки фиксирована,
// вторая половина - случайная.
func (c *Consumer) withJitterEqual(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	half := d / 2
	jitter := time.Duration(c.jitterRand.Int63n(int64(d-half) + 1))
	return half + jitter
}
