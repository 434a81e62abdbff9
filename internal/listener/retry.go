package listener

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/Gunvolt24/listener/internal/domain"
	"github.com/Gunvolt24/listener/pkg/metrics"
)

// retryState - состояние машины повторов одного сообщения.
//
//	attempting → done
//	attempting → failed → backingOff → attempting
//	backingOff → aborted (флаг остановки после сна)
type retryState int

const (
	stateAttempting retryState = iota
	stateFailed
	stateBackingOff
	stateDone
	stateAborted
)

// messageRetry - попытки одного сообщения. meta меняется на месте и не копируется.
type messageRetry struct {
	l        *Listener
	msg      *domain.Message
	meta     *domain.ProcessingMetadata
	lastErr  error
	interval time.Duration
}

// processMessage крутит машину состояний до успеха или прерывания.
func (l *Listener) processMessage(ctx context.Context, msg *domain.Message, meta *domain.ProcessingMetadata) error {
	r := &messageRetry{l: l, msg: msg, meta: meta}

	state := stateAttempting
	for {
		switch state {
		case stateAttempting:
			state = r.attempt(ctx)
		case stateFailed:
			state = r.fail()
		case stateBackingOff:
			state = r.backOff(ctx)
		case stateDone:
			return nil
		case stateAborted:
			return fmt.Errorf("%w: partition=%d offset=%d retry_count=%d",
				ErrRetryAborted, r.meta.Partition, r.meta.Offset, r.meta.RetryCount)
		}
	}
}

func (r *messageRetry) attempt(ctx context.Context) retryState {
	id := r.l.identity
	err := r.l.instr.Instrument(ctx, domain.EventProcessMessage, r.meta.Fields(), func(ctx context.Context) error {
		return r.l.consume(ctx, r.msg, *r.meta)
	})
	if err == nil {
		metrics.MessagesProcessed.WithLabelValues(id.Topic, id.GroupID).Inc()
		return stateDone
	}

	metrics.HandlerErrors.WithLabelValues(id.Topic, id.GroupID).Inc()
	r.lastErr = err
	return stateFailed
}

func (r *messageRetry) fail() retryState {
	r.interval = r.l.backoff.IntervalAt(r.meta.RetryCount)
	return stateBackingOff
}

// backOff - событие listener.retry_handler_error: лог, сон, инкремент retry_count.
// Флаг остановки проверяется сразу после сна.
func (r *messageRetry) backOff(ctx context.Context) retryState {
	fields := errorFields(r.lastErr, r.interval).Merge(r.meta.Fields())

	_ = r.l.instr.Instrument(ctx, domain.EventRetryHandlerError, fields, func(ctx context.Context) error {
		r.l.log.Errorw(ctx, fmt.Sprintf("error processing message, waiting %s", r.interval), fields.KeysAndValues()...)
		r.l.sleep(ctx, r.interval)
		r.meta.RetryCount++
		return nil
	})

	if r.l.stopping(ctx) {
		return stateAborted
	}
	return stateAttempting
}

// consume вызывает обработчик; panic превращается в ошибку со стеком и тоже повторяется.
func (l *Listener) consume(ctx context.Context, msg *domain.Message, meta domain.ProcessingMetadata) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = pkgerrors.Errorf("handler panic: %v", rec)
		}
	}()
	return l.handler.Consume(ctx, msg.Value, meta)
}

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

func errorFields(err error, wait time.Duration) domain.Fields {
	return domain.Fields{
		"error_class":   fmt.Sprintf("%T", pkgerrors.Cause(err)),
		"error_message": err.Error(),
		"backtrace":     backtrace(err),
		"waiting_time":  wait,
	}
}

// backtrace - стек из ошибок github.com/pkg/errors; пусто, если его нет.
func backtrace(err error) string {
	var st stackTracer
	if errors.As(err, &st) {
		return strings.TrimSpace(fmt.Sprintf("%+v", st.StackTrace()))
	}
	return ""
}
