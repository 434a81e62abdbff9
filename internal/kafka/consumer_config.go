package kafka

import (
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// ConsumerConfig - общие для клиента настройки чтения.
type ConsumerConfig struct {
	Brokers     []string
	ClientID    string
	StartOffset string // first|last (по умолчанию last)

	MinBytes int
	MaxBytes int
	MaxWait  time.Duration

	// Батч: ждём первое сообщение, затем добираем до MaxBatchSize или до истечения BatchWait.
	MaxBatchSize int
	BatchWait    time.Duration

	// Backoff на ошибках FetchMessage.
	RetryInitial time.Duration
	RetryMax     time.Duration

	DialTimeout time.Duration
}

// withDefaults - параметры по умолчанию (если не заданы в конфиге).
func (c ConsumerConfig) withDefaults() ConsumerConfig {
	if c.ClientID == "" {
		c.ClientID = "topic-listener"
	}
	if c.MinBytes <= 0 {
		c.MinBytes = 1
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = 10e6 // 10MB
	}
	if c.MaxWait <= 0 {
		c.MaxWait = 500 * time.Millisecond
	}
	if c.MaxBatchSize <= 0 {
		c.MaxBatchSize = 100
	}
	if c.BatchWait <= 0 {
		c.BatchWait = 250 * time.Millisecond
	}
	if c.RetryInitial <= 0 {
		c.RetryInitial = 1 * time.Second
	}
	if c.RetryMax <= 0 {
		c.RetryMax = 30 * time.Second
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = 10 * time.Second
	}
	return c
}

func (c ConsumerConfig) dialer() *kafka.Dialer {
	return &kafka.Dialer{
		ClientID:  c.ClientID,
		Timeout:   c.DialTimeout,
		DualStack: true,
	}
}

// ReaderConfig - конфигурация kafka.Reader для группы и топика; коммит оффсетов только ручной.
func (c ConsumerConfig) ReaderConfig(groupID, topic string) kafka.ReaderConfig {
	rc := kafka.ReaderConfig{
		Brokers:        c.Brokers,
		GroupID:        groupID,
		Topic:          topic,
		MinBytes:       c.MinBytes,
		MaxBytes:       c.MaxBytes,
		MaxWait:        c.MaxWait,
		CommitInterval: 0,
		Dialer:         c.dialer(),
	}

	switch strings.ToLower(strings.TrimSpace(c.StartOffset)) {
	case "first":
		rc.StartOffset = kafka.FirstOffset
	default:
		rc.StartOffset = kafka.LastOffset
	}

	return rc
}
