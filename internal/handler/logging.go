// Пакет handler - обработчики сообщений по умолчанию для бинарника.
package handler

import (
	"context"

	"github.com/bytedance/sonic"

	"github.com/Gunvolt24/listener/internal/domain"
	"github.com/Gunvolt24/listener/internal/ports"
)

// Проверка, что Logging удовлетворяет порту обработчика.
var _ ports.MessageHandler = (*Logging)(nil)

// Logging - пишет метаданные каждого сообщения в лог и подтверждает его.
type Logging struct {
	log ports.Logger
}

// NewLogging - DI-конструктор.
func NewLogging(log ports.Logger) *Logging {
	return &Logging{log: log}
}

// Factory - фабрика для слушателя: новый обработчик на каждый запуск.
func Factory(log ports.Logger) ports.HandlerFactory {
	return func() ports.MessageHandler { return NewLogging(log) }
}

func (h *Logging) Consume(ctx context.Context, payload []byte, meta domain.ProcessingMetadata) error {
	kv := meta.Fields().Merge(domain.Fields{
		"payload_size":   len(payload),
		"payload_format": payloadFormat(payload),
	}).KeysAndValues()
	h.log.Infow(ctx, "message consumed", kv...)
	return nil
}

// payloadFormat - json|text|empty.
func payloadFormat(payload []byte) string {
	switch {
	case len(payload) == 0:
		return "empty"
	case sonic.Valid(payload):
		return "json"
	default:
		return "text"
	}
}
