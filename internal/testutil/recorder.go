package testutil

import (
	"context"
	"sync"

	"github.com/Gunvolt24/listener/internal/domain"
	"github.com/Gunvolt24/listener/internal/ports"
)

var _ ports.Instrumenter = (*Recorder)(nil)

// Event - зафиксированное событие инструментации.
type Event struct {
	Name   string
	Fields domain.Fields
	Err    error
}

// Recorder - ports.Instrumenter для тестов: выполняет fn и запоминает событие по его завершении.
// Поля копируются в момент вызова.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Instrument(
	ctx context.Context,
	name string,
	fields domain.Fields,
	fn func(ctx context.Context) error,
) error {
	snapshot := fields.Merge(nil)
	err := fn(ctx)

	r.mu.Lock()
	r.events = append(r.events, Event{Name: name, Fields: snapshot, Err: err})
	r.mu.Unlock()
	return err
}

// Events - копия всех событий в порядке завершения.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Named - события с заданным именем.
func (r *Recorder) Named(name string) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}
