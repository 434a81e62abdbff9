// Пакет listener - слушатель топика в рамках consumer group: последовательная доставка
// сообщений обработчику (at-least-once), бесконечные повторы с экспоненциальной задержкой
// и кооперативная остановка.
package listener

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Gunvolt24/listener/internal/domain"
	"github.com/Gunvolt24/listener/internal/ports"
	"github.com/Gunvolt24/listener/pkg/backoff"
	"github.com/Gunvolt24/listener/pkg/ctxmeta"
	"github.com/Gunvolt24/listener/pkg/metrics"
)

var (
	// ErrRetryAborted - цикл повторов прерван остановкой слушателя.
	// Пересекает только границу обработчик батча → слушатель и там же поглощается.
	ErrRetryAborted = errors.New("retry loop aborted, listener is shutting down")
	// ErrAlreadyStarted - экземпляр одноразовый: один Start за жизнь.
	ErrAlreadyStarted = errors.New("listener can only be started once")
)

// Проверка, что Listener удовлетворяет порту приложения.
var _ ports.Listener = (*Listener)(nil)

// State - состояние жизненного цикла: created → running → stopped|aborted.
type State int32

const (
	StateCreated State = iota
	StateRunning
	StateStopped
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	case StateAborted:
		return "aborted"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Config - что и как слушать.
type Config struct {
	GroupID string
	Topic   string
	Backoff backoff.Policy // nil → экспоненциальная политика по умолчанию
}

// Listener - подписка на топик и цикл обработки батчей.
type Listener struct {
	identity   domain.ListenerIdentity
	newClient  ports.ClientFactory
	newHandler ports.HandlerFactory
	backoff    backoff.Policy
	instr      ports.Instrumenter
	log        ports.Logger
	sleep      func(ctx context.Context, d time.Duration)

	state    atomic.Int32
	shutdown atomic.Bool // выставляется только Stop и больше не сбрасывается

	mu       sync.Mutex
	client   ports.LogClient
	consumer ports.LogConsumer
	handler  ports.MessageHandler

	stopOnce sync.Once
}

// New - DI-конструктор. Подключение к кластеру происходит в Start.
func New(
	cfg Config,
	newClient ports.ClientFactory,
	newHandler ports.HandlerFactory,
	instr ports.Instrumenter,
	log ports.Logger,
) (*Listener, error) {
	switch {
	case cfg.GroupID == "":
		return nil, errors.New("listener: empty group id")
	case cfg.Topic == "":
		return nil, errors.New("listener: empty topic")
	case newClient == nil || newHandler == nil:
		return nil, errors.New("listener: client and handler factories are required")
	case instr == nil || log == nil:
		return nil, errors.New("listener: instrumenter and logger are required")
	}

	policy := cfg.Backoff
	if policy == nil {
		policy = backoff.NewExponential(0, 0, 0)
	}

	return &Listener{
		identity: domain.ListenerIdentity{
			ID:      newListenerID(),
			GroupID: cfg.GroupID,
			Topic:   cfg.Topic,
		},
		newClient:  newClient,
		newHandler: newHandler,
		backoff:    policy,
		instr:      instr,
		log:        log,
		sleep:      sleepContext,
	}, nil
}

func (l *Listener) ID() string                         { return l.identity.ID }
func (l *Listener) GroupID() string                    { return l.identity.GroupID }
func (l *Listener) Topic() string                      { return l.identity.Topic }
func (l *Listener) Identity() domain.ListenerIdentity { return l.identity }
func (l *Listener) State() string                      { return State(l.state.Load()).String() }

// Start подключается, подписывается и обрабатывает батчи, пока источник не закончится,
// не будет вызван Stop или цикл повторов не будет прерван. Блокирует вызывающего.
// Прерывание повторов - штатное завершение (nil); ошибки подключения/подписки возвращаются.
func (l *Listener) Start(ctx context.Context) error {
	if !l.state.CompareAndSwap(int32(StateCreated), int32(StateRunning)) {
		return fmt.Errorf("%w: state=%s", ErrAlreadyStarted, l.State())
	}
	ctx = ctxmeta.WithListenerID(ctx, l.identity.ID)

	if err := l.instr.Instrument(ctx, domain.EventListenerStart, l.identity.Fields(), l.subscribe); err != nil {
		l.finish(StateStopped)
		return fmt.Errorf("start listener %s: %w", l.identity.ID, err)
	}

	consumer := l.currentConsumer()
	if consumer == nil || l.shutdown.Load() {
		// Stop успел отработать во время подписки.
		l.finish(StateStopped)
		return nil
	}

	err := consumer.EachBatch(ctx, l.handleBatch)
	if errors.Is(err, ErrRetryAborted) {
		l.finish(StateAborted)
		metrics.RetryAborted.WithLabelValues(l.identity.Topic, l.identity.GroupID).Inc()
		return l.instr.Instrument(ctx, domain.EventRetryAborted, l.identity.Fields(), func(ctx context.Context) error {
			l.log.Infow(ctx, "retry loop aborted, listener is shutting down", l.identity.Fields().KeysAndValues()...)
			return nil
		})
	}

	l.finish(StateStopped)
	return err
}

// Stop выставляет флаг остановки, останавливает опрос и закрывает клиент.
// Безопасен для конкурентного вызова со Start; повторные вызовы - no-op.
func (l *Listener) Stop(ctx context.Context) error {
	var err error
	l.stopOnce.Do(func() {
		ctx = ctxmeta.WithListenerID(ctx, l.identity.ID)
		err = l.instr.Instrument(ctx, domain.EventListenerStop, l.identity.Fields(), func(ctx context.Context) error {
			l.log.Infow(ctx, "listener stopping", l.identity.Fields().KeysAndValues()...)
			l.shutdown.Store(true)

			l.mu.Lock()
			consumer, client := l.consumer, l.client
			l.mu.Unlock()

			if consumer != nil {
				consumer.Stop()
			}
			if client != nil {
				if cErr := client.Close(); cErr != nil {
					return fmt.Errorf("close log client: %w", cErr)
				}
			}
			return nil
		})
		// Остановка до Start: экземпляр больше не запустить.
		l.state.CompareAndSwap(int32(StateCreated), int32(StateStopped))
	})
	return err
}

// subscribe - подключение, создание обработчика и подписка (внутри события listener.start).
func (l *Listener) subscribe(ctx context.Context) error {
	client, err := l.newClient(ctx)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	handler := l.newHandler()
	if handler == nil {
		l.closeClient(ctx, client)
		return errors.New("handler factory returned nil")
	}

	consumer, err := client.Consumer(l.identity.GroupID)
	if err != nil {
		l.closeClient(ctx, client)
		return fmt.Errorf("create consumer group=%s: %w", l.identity.GroupID, err)
	}
	if err := consumer.Subscribe(ctx, l.identity.Topic); err != nil {
		l.closeClient(ctx, client)
		return fmt.Errorf("subscribe topic=%s: %w", l.identity.Topic, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.shutdown.Load() {
		// Stop уже прошёл и клиента не видел - освобождаем сами.
		l.closeClient(ctx, client)
		return nil
	}
	l.client, l.consumer, l.handler = client, consumer, handler
	return nil
}

func (l *Listener) closeClient(ctx context.Context, client ports.LogClient) {
	if err := client.Close(); err != nil {
		l.log.Warnf(ctx, "close log client: %v", err)
	}
}

func (l *Listener) currentConsumer() ports.LogConsumer {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.consumer
}

// finish переводит running в терминальное состояние (только один раз).
func (l *Listener) finish(s State) {
	l.state.CompareAndSwap(int32(StateRunning), int32(s))
}

// stopping - флаг остановки или отмена контекста Start.
func (l *Listener) stopping(ctx context.Context) bool {
	return l.shutdown.Load() || ctx.Err() != nil
}

// sleepContext ждёт d или отмены контекста.
func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
