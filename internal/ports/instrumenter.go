package ports

import (
	"context"

	"github.com/Gunvolt24/listener/internal/domain"
)

// Instrumenter оборачивает операцию fn событием name: старт/финиш/ошибка с метаданными.
// Ошибка fn возвращается без изменений.
type Instrumenter interface {
	Instrument(ctx context.Context, name string, fields domain.Fields, fn func(ctx context.Context) error) error
}
