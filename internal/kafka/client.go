package kafka

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Gunvolt24/listener/internal/ports"
)

var (
	ErrClientClosed  = errors.New("kafka client closed")
	ErrNoBrokers     = errors.New("kafka: no brokers configured")
	ErrEmptyGroupID  = errors.New("kafka: empty group id")
	ErrNotSubscribed = errors.New("kafka: consumer is not subscribed")
)

// Проверка, что Client удовлетворяет порту клиента лога.
var _ ports.LogClient = (*Client)(nil)

// Client - подключение к кластеру: раздаёт консьюмеров групп и закрывает их readers.
type Client struct {
	cfg       ConsumerConfig
	log       ports.Logger
	newReader func(kafka.ReaderConfig) reader

	mu        sync.Mutex
	consumers []*Consumer
	closed    bool
}

// NewClient - конструктор без сетевых вызовов; проверка связи - Ping.
func NewClient(cfg *ConsumerConfig, log ports.Logger) *Client {
	return &Client{
		cfg:       cfg.withDefaults(),
		log:       log,
		newReader: func(rc kafka.ReaderConfig) reader { return kafka.NewReader(rc) },
	}
}

// Connect - фабрика для слушателя: клиент + проверка, что хотя бы один брокер доступен.
func Connect(cfg *ConsumerConfig, log ports.Logger) ports.ClientFactory {
	return func(ctx context.Context) (ports.LogClient, error) {
		c := NewClient(cfg, log)
		if err := c.Ping(ctx); err != nil {
			return nil, err
		}
		return c, nil
	}
}

// Ping открывает и закрывает TCP-соединение с первым доступным брокером.
func (c *Client) Ping(ctx context.Context) error {
	if len(c.cfg.Brokers) == 0 {
		return ErrNoBrokers
	}

	dialer := c.cfg.dialer()
	var lastErr error
	for _, broker := range c.cfg.Brokers {
		conn, err := dialer.DialContext(ctx, "tcp", broker)
		if err != nil {
			lastErr = err
			c.log.Warnf(ctx, "kafka broker unreachable addr=%s: %v", broker, err)
			continue
		}
		_ = conn.Close()
		return nil
	}
	return fmt.Errorf("no reachable kafka brokers %v: %w", c.cfg.Brokers, lastErr)
}

// Consumer - новый участник группы groupID (подписка - Subscribe).
func (c *Client) Consumer(groupID string) (ports.LogConsumer, error) {
	if groupID == "" {
		return nil, ErrEmptyGroupID
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClientClosed
	}

	consumer := &Consumer{
		cfg:        c.cfg,
		groupID:    groupID,
		log:        c.log,
		newReader:  c.newReader,
		jitterRand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	c.consumers = append(c.consumers, consumer)
	return consumer, nil
}

// Close останавливает и закрывает всех консьюмеров. Повторный вызов - no-op.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	consumers := c.consumers
	c.consumers = nil
	c.mu.Unlock()

	var errs []error
	for _, consumer := range consumers {
		consumer.Stop()
		if err := consumer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
