package kafka

//go:generate mockgen -source=consumer.go -destination=./mocks/mock_reader.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"sync"

	"github.com/segmentio/kafka-go"

	"github.com/Gunvolt24/listener/internal/ports"
	"github.com/Gunvolt24/listener/pkg/metrics"
)

// Проверка, что Consumer удовлетворяет порту консьюмера лога.
var _ ports.LogConsumer = (*Consumer)(nil)

// reader - минимальный контракт над источником (kafka.Reader),
// чтобы легко подменять его моками в тестах.
type reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Config() kafka.ReaderConfig
	Close() error
}

// Consumer - участник consumer group поверх kafka.Reader: батчи по партициям + ручной коммит.
type Consumer struct {
	cfg        ConsumerConfig
	groupID    string
	log        ports.Logger
	newReader  func(kafka.ReaderConfig) reader
	jitterRand *rand.Rand

	mu      sync.Mutex
	reader  reader
	topic   string
	stopped bool
	running bool // внутри EachBatch
	closing bool // Close пришёл во время EachBatch: reader закроется на выходе
	cancel  context.CancelFunc

	closeOnce sync.Once
}

// Subscribe создаёт reader для топика. Один консьюмер - один топик.
func (c *Consumer) Subscribe(_ context.Context, topic string) error {
	if topic == "" {
		return errors.New("kafka: empty topic")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.reader != nil {
		return fmt.Errorf("kafka: already subscribed to %q", c.topic)
	}
	c.reader = c.newReader(c.cfg.ReaderConfig(c.groupID, topic))
	c.topic = topic
	return nil
}

// EachBatch - основной цикл:
// 1) ждём первое сообщение и добираем батч (без авто-коммита);
// 2) делим по партициям с сохранением порядка и отдаём в fn;
// 3) fn вернул nil → коммитим последний оффсет батча;
// 4) fn вернул ошибку → выходим с ней без коммита (повторная доставка, at-least-once);
// 5) ошибки FetchMessage - ожидание с backoff и повтор.
// Возвращает nil после Stop и ctx.Err() после отмены контекста.
func (c *Consumer) EachBatch(ctx context.Context, fn ports.BatchFunc) error {
	c.mu.Lock()
	r := c.reader
	if r == nil {
		c.mu.Unlock()
		return ErrNotSubscribed
	}
	if c.stopped {
		c.mu.Unlock()
		return nil
	}
	// Stop отменяет только опрос; обработка и коммит идут на ctx вызывающего.
	fetchCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.running = true
	c.mu.Unlock()
	defer cancel()
	defer c.finishRun()

	rc := r.Config()
	c.log.Infof(ctx, "kafka consumer started topic=%s group_id=%s brokers=%v", rc.Topic, rc.GroupID, rc.Brokers)

	// Экспоненциальный backoff на ошибках FetchMessage с equal-jitter
	retry := c.cfg.RetryInitial

	for {
		if c.isStopped() {
			return nil
		}

		msgs, fetchErr := c.fetchBatch(fetchCtx, r)
		if fetchErr != nil {
			switch {
			case c.isStopped():
				return nil
			case ctx.Err() != nil:
				return ctx.Err()
			}
			// Временная ошибка брокера/сети. Ожидаем и повторяем
			metrics.KafkaFetchErrors.WithLabelValues(rc.Topic).Inc()
			sleep := c.withJitterEqual(retry)
			c.log.Warnf(ctx, "fetch failed: %v (will retry in %s)", fetchErr, sleep)
			if !c.sleepWithBackoff(fetchCtx, sleep) {
				if c.isStopped() {
					return nil
				}
				return ctx.Err()
			}
			retry = c.nextBackoff(retry)
			continue
		}

		// Успешный fetch -> сбрасываем интервал ожидания
		retry = c.cfg.RetryInitial
		metrics.KafkaMessagesFetched.WithLabelValues(rc.Topic).Add(float64(len(msgs)))

		for _, pb := range splitByPartition(msgs) {
			metrics.KafkaOffsetLag.WithLabelValues(pb.batch.Topic, strconv.Itoa(pb.batch.Partition)).
				Set(float64(pb.batch.OffsetLag))

			if err := fn(ctx, pb.batch); err != nil {
				return err
			}
			c.commitSafely(ctx, r, &pb.last)

			// Stop пришёл во время обработки: остаток выборки не коммитим, его доставят повторно.
			if c.isStopped() {
				return nil
			}
		}
	}
}

// Stop прекращает опрос после текущего батча. Можно звать из любой горутины.
func (c *Consumer) Stop() {
	c.mu.Lock()
	c.stopped = true
	cancel := c.cancel
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Close закрывает reader. Вызывается клиентом при закрытии подключения.
// Если идёт EachBatch, закрытие откладывается до его выхода, чтобы текущий батч успел закоммититься.
func (c *Consumer) Close() error {
	c.mu.Lock()
	if c.running {
		c.closing = true
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	return c.closeReader()
}

func (c *Consumer) finishRun() {
	c.mu.Lock()
	c.running = false
	closing := c.closing
	c.mu.Unlock()

	if closing {
		if err := c.closeReader(); err != nil {
			c.log.Warnf(context.Background(), "%v", err)
		}
	}
}

func (c *Consumer) closeReader() (retErr error) {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		r := c.reader
		c.mu.Unlock()

		if r == nil {
			return
		}
		if err := r.Close(); err != nil {
			retErr = fmt.Errorf("close kafka reader: %w", err)
		}
	})
	return retErr
}

func (c *Consumer) isStopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopped
}
