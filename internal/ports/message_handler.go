package ports

import (
	"context"

	"github.com/Gunvolt24/listener/internal/domain"
)

// MessageHandler - пользовательский обработчик одного сообщения.
// Любая возвращённая ошибка (как и panic) считается временной и ведёт к повтору.
type MessageHandler interface {
	Consume(ctx context.Context, payload []byte, meta domain.ProcessingMetadata) error
}

// HandlerFactory создаёт новый обработчик на каждый запуск слушателя.
type HandlerFactory func() MessageHandler
