package ports

import "context"

// Listener - управляемый жизненный цикл слушателя (для app и HTTP-статуса).
type Listener interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	ID() string
	GroupID() string
	Topic() string
	State() string
}
