package kafka

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/segmentio/kafka-go"

	"github.com/Gunvolt24/listener/internal/domain"
	"github.com/Gunvolt24/listener/internal/kafka/mocks"
)

type nopLogger struct{}

func (nopLogger) Infof(context.Context, string, ...any)  {}
func (nopLogger) Warnf(context.Context, string, ...any)  {}
func (nopLogger) Errorf(context.Context, string, ...any) {}
func (nopLogger) Debugw(context.Context, string, ...any) {}
func (nopLogger) Infow(context.Context, string, ...any)  {}
func (nopLogger) Errorw(context.Context, string, ...any) {}

var testReaderConfig = kafka.ReaderConfig{Topic: "orders", GroupID: "g1", Brokers: []string{"b:9092"}}

// runAsync запускает Consumer.EachBatch в отдельной горутине и возвращает канал с ошибкой.
func runAsync(ctx context.Context, c *Consumer, fn func(context.Context, *domain.Batch) error) <-chan error {
	errCh := make(chan error, 1)
	go func() { errCh <- c.EachBatch(ctx, fn) }()
	return errCh
}

func waitErr(t *testing.T, errCh <-chan error) error {
	t.Helper()
	select {
	case err := <-errCh:
		return err
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for EachBatch to return")
		return nil
	}
}

func newTestConsumer(r reader) *Consumer {
	return &Consumer{
		cfg: ConsumerConfig{
			MaxBatchSize: 10,
			BatchWait:    20 * time.Millisecond,
			RetryInitial: 5 * time.Millisecond,
			RetryMax:     10 * time.Millisecond,
		},
		groupID:    "g1",
		log:        nopLogger{},
		reader:     r,
		topic:      "orders",
		jitterRand: rand.New(rand.NewSource(1)),
	}
}

// queueFetch отдаёт сообщения по очереди, затем блокируется до отмены контекста.
func queueFetch(msgs ...kafka.Message) func(context.Context) (kafka.Message, error) {
	var mu sync.Mutex
	return func(ctx context.Context) (kafka.Message, error) {
		mu.Lock()
		if len(msgs) > 0 {
			m := msgs[0]
			msgs = msgs[1:]
			mu.Unlock()
			return m, nil
		}
		mu.Unlock()
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
}

func msg(partition int, offset, hwm int64, value string) kafka.Message {
	return kafka.Message{
		Topic:         "orders",
		Partition:     partition,
		Offset:        offset,
		HighWaterMark: hwm,
		Value:         []byte(value),
	}
}

// Выборка делится по партициям, после каждого батча коммитится его последнее сообщение
func TestEachBatch_SplitsByPartitionAndCommits(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := mocks.NewMockreader(ctrl)

	m1, m2, m3 := msg(0, 5, 10, "a"), msg(1, 3, 4, "b"), msg(0, 6, 10, "c")

	r.EXPECT().Config().Return(testReaderConfig).AnyTimes()
	r.EXPECT().FetchMessage(gomock.Any()).DoAndReturn(queueFetch(m1, m2, m3)).AnyTimes()
	gomock.InOrder(
		r.EXPECT().CommitMessages(gomock.Any(), m3).Return(nil),
		r.EXPECT().CommitMessages(gomock.Any(), m2).Return(nil),
	)

	c := newTestConsumer(r)
	var got []*domain.Batch
	err := waitErr(t, runAsync(context.Background(), c, func(_ context.Context, b *domain.Batch) error {
		got = append(got, b)
		if len(got) == 2 {
			c.Stop()
		}
		return nil
	}))
	if err != nil {
		t.Fatalf("want nil after Stop, got %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("want 2 batches, got %d", len(got))
	}
	p0, p1 := got[0], got[1]
	if p0.Partition != 0 || len(p0.Messages) != 2 || p0.Messages[0].Offset != 5 || p0.Messages[1].Offset != 6 {
		t.Fatalf("partition 0 batch: %+v", p0)
	}
	if p0.HighwaterMarkOffset != 10 || p0.OffsetLag != 3 {
		t.Fatalf("partition 0 lag: hwm=%d lag=%d", p0.HighwaterMarkOffset, p0.OffsetLag)
	}
	if p1.Partition != 1 || len(p1.Messages) != 1 || string(p1.Messages[0].Value) != "b" || p1.OffsetLag != 0 {
		t.Fatalf("partition 1 batch: %+v", p1)
	}
}

// Ошибка обработчика батча возвращается как есть, оффсет НЕ коммитится
func TestEachBatch_FnError_NoCommit(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := mocks.NewMockreader(ctrl)

	r.EXPECT().Config().Return(testReaderConfig).AnyTimes()
	r.EXPECT().FetchMessage(gomock.Any()).DoAndReturn(queueFetch(msg(0, 1, 2, "x"))).AnyTimes()
	// Никаких r.EXPECT().CommitMessages(...) специально НЕ ставим:
	// если Consumer по ошибке его вызовет - тест упадёт как "unexpected call".

	errBoom := errors.New("boom")
	c := newTestConsumer(r)
	err := waitErr(t, runAsync(context.Background(), c, func(context.Context, *domain.Batch) error {
		return errBoom
	}))
	if !errors.Is(err, errBoom) {
		t.Fatalf("want errBoom, got %v", err)
	}
}

// Stop во время ожидания сообщений - выход без ошибки
func TestEachBatch_StopWhileWaiting(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := mocks.NewMockreader(ctrl)

	r.EXPECT().Config().Return(testReaderConfig).AnyTimes()
	r.EXPECT().FetchMessage(gomock.Any()).DoAndReturn(queueFetch()).AnyTimes()

	c := newTestConsumer(r)
	errCh := runAsync(context.Background(), c, func(context.Context, *domain.Batch) error {
		t.Error("unexpected batch")
		return nil
	})

	time.Sleep(20 * time.Millisecond)
	c.Stop()

	if err := waitErr(t, errCh); err != nil {
		t.Fatalf("want nil, got %v", err)
	}
}

// Отмена контекста - выход с context.Canceled
func TestEachBatch_ContextCanceled(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := mocks.NewMockreader(ctrl)

	r.EXPECT().Config().Return(testReaderConfig).AnyTimes()
	r.EXPECT().FetchMessage(gomock.Any()).DoAndReturn(queueFetch()).AnyTimes()

	c := newTestConsumer(r)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := runAsync(ctx, c, func(context.Context, *domain.Batch) error { return nil })

	time.Sleep(20 * time.Millisecond)
	cancel()

	if err := waitErr(t, errCh); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

// Ошибки FetchMessage ретраятся, затем сообщение обрабатывается
func TestEachBatch_FetchErrorRetried(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := mocks.NewMockreader(ctrl)

	m := msg(2, 9, 10, "ok")
	next := queueFetch(m)
	var calls int

	r.EXPECT().Config().Return(testReaderConfig).AnyTimes()
	r.EXPECT().FetchMessage(gomock.Any()).
		DoAndReturn(func(ctx context.Context) (kafka.Message, error) {
			calls++
			if calls <= 2 {
				return kafka.Message{}, errors.New("broker error")
			}
			return next(ctx)
		}).AnyTimes()
	r.EXPECT().CommitMessages(gomock.Any(), m).Return(nil)

	c := newTestConsumer(r)
	var batches int
	err := waitErr(t, runAsync(context.Background(), c, func(context.Context, *domain.Batch) error {
		batches++
		c.Stop()
		return nil
	}))
	if err != nil {
		t.Fatalf("want nil, got %v", err)
	}
	if batches != 1 {
		t.Fatalf("want 1 batch, got %d", batches)
	}
}

// Постоянные ошибки брокера; по дедлайну контекста - корректный выход
func TestEachBatch_FetchError_StopOnDeadline(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := mocks.NewMockreader(ctrl)

	r.EXPECT().Config().Return(testReaderConfig).AnyTimes()
	r.EXPECT().FetchMessage(gomock.Any()).
		Return(kafka.Message{}, errors.New("broker error")).AnyTimes()

	c := newTestConsumer(r)

	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()

	if err := c.EachBatch(ctx, func(context.Context, *domain.Batch) error { return nil }); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("want DeadlineExceeded, got %v", err)
	}
}

// CommitMessages вернул ошибку - получаем предупреждение; цикл живёт дальше
func TestEachBatch_CommitWarnOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := mocks.NewMockreader(ctrl)

	m1, m2 := msg(0, 1, 3, "a"), msg(0, 2, 3, "b")

	r.EXPECT().Config().Return(testReaderConfig).AnyTimes()
	r.EXPECT().FetchMessage(gomock.Any()).DoAndReturn(queueFetch(m1, m2)).AnyTimes()
	r.EXPECT().CommitMessages(gomock.Any(), m1).Return(errors.New("temporary"))
	r.EXPECT().CommitMessages(gomock.Any(), m2).Return(nil)

	c := newTestConsumer(r)
	c.cfg.MaxBatchSize = 1

	var seen []int64
	err := waitErr(t, runAsync(context.Background(), c, func(_ context.Context, b *domain.Batch) error {
		seen = append(seen, b.Messages[0].Offset)
		if len(seen) == 2 {
			c.Stop()
		}
		return nil
	}))
	if err != nil {
		t.Fatalf("want nil, got %v", err)
	}
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Fatalf("want offsets [1 2], got %v", seen)
	}
}

func TestEachBatch_NotSubscribed(t *testing.T) {
	c := newTestConsumer(nil)
	c.reader = nil

	err := c.EachBatch(context.Background(), func(context.Context, *domain.Batch) error { return nil })
	if !errors.Is(err, ErrNotSubscribed) {
		t.Fatalf("want ErrNotSubscribed, got %v", err)
	}
}

func TestEachBatch_StoppedBeforeStart(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := mocks.NewMockreader(ctrl)

	c := newTestConsumer(r)
	c.Stop()

	if err := c.EachBatch(context.Background(), func(context.Context, *domain.Batch) error { return nil }); err != nil {
		t.Fatalf("want nil, got %v", err)
	}
}

func TestSubscribe(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := mocks.NewMockreader(ctrl)

	var gotCfg kafka.ReaderConfig
	c := newTestConsumer(nil)
	c.reader = nil
	c.topic = ""
	c.newReader = func(rc kafka.ReaderConfig) reader {
		gotCfg = rc
		return r
	}

	if err := c.Subscribe(context.Background(), ""); err == nil {
		t.Fatal("want error for empty topic")
	}
	if err := c.Subscribe(context.Background(), "orders"); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if gotCfg.Topic != "orders" || gotCfg.GroupID != "g1" {
		t.Fatalf("reader config: topic=%q group=%q", gotCfg.Topic, gotCfg.GroupID)
	}
	if err := c.Subscribe(context.Background(), "other"); err == nil {
		t.Fatal("want error on second Subscribe")
	}
}

// Close прокидывает вызов в reader.Close() ровно один раз
func TestClose_DelegatesToReaderOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := mocks.NewMockreader(ctrl)

	r.EXPECT().Close().Return(nil).Times(1)

	c := newTestConsumer(r)
	if err := c.Close(); err != nil {
		t.Fatalf("expected nil from Close, got %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("expected nil from second Close, got %v", err)
	}
}

// Close во время EachBatch: reader закрывается только после выхода из цикла, коммит батча проходит
func TestClose_DeferredWhileRunning(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := mocks.NewMockreader(ctrl)

	m := msg(0, 1, 2, "a")
	r.EXPECT().Config().Return(testReaderConfig).AnyTimes()
	r.EXPECT().FetchMessage(gomock.Any()).DoAndReturn(queueFetch(m)).AnyTimes()
	gomock.InOrder(
		r.EXPECT().CommitMessages(gomock.Any(), m).Return(nil),
		r.EXPECT().Close().Return(nil),
	)

	c := newTestConsumer(r)
	err := waitErr(t, runAsync(context.Background(), c, func(context.Context, *domain.Batch) error {
		c.Stop()
		if err := c.Close(); err != nil {
			t.Errorf("Close during EachBatch: %v", err)
		}
		return nil
	}))
	if err != nil {
		t.Fatalf("want nil, got %v", err)
	}
}

func TestClient_ConsumerAndClose(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := mocks.NewMockreader(ctrl)
	r.EXPECT().Close().Return(errors.New("close failed"))

	cl := NewClient(&ConsumerConfig{Brokers: []string{"b:9092"}}, nopLogger{})
	cl.newReader = func(kafka.ReaderConfig) reader { return r }

	if _, err := cl.Consumer(""); !errors.Is(err, ErrEmptyGroupID) {
		t.Fatalf("want ErrEmptyGroupID, got %v", err)
	}

	cons, err := cl.Consumer("g1")
	if err != nil {
		t.Fatalf("Consumer: %v", err)
	}
	if err := cons.Subscribe(context.Background(), "orders"); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	if err := cl.Close(); err == nil {
		t.Fatal("want reader close error from Client.Close")
	}
	// повторный Close - no-op
	if err := cl.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if _, err := cl.Consumer("g2"); !errors.Is(err, ErrClientClosed) {
		t.Fatalf("want ErrClientClosed, got %v", err)
	}
	// консьюмер остановлен клиентом
	if err := cons.EachBatch(context.Background(), func(context.Context, *domain.Batch) error { return nil }); err != nil {
		t.Fatalf("EachBatch after Close: %v", err)
	}
}

func TestClient_Ping(t *testing.T) {
	if err := NewClient(&ConsumerConfig{}, nopLogger{}).Ping(context.Background()); !errors.Is(err, ErrNoBrokers) {
		t.Fatalf("want ErrNoBrokers, got %v", err)
	}

	// занимаем порт и сразу освобождаем: подключение будет отклонено
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	cl := NewClient(&ConsumerConfig{Brokers: []string{addr}, DialTimeout: time.Second}, nopLogger{})
	if err := cl.Ping(ctx); err == nil {
		t.Fatal("want error for unreachable broker")
	}
	if _, err := Connect(&ConsumerConfig{Brokers: []string{addr}, DialTimeout: time.Second}, nopLogger{})(ctx); err == nil {
		t.Fatal("want error from Connect")
	}
}

func TestSplitByPartition_Empty(t *testing.T) {
	if got := splitByPartition(nil); len(got) != 0 {
		t.Fatalf("want no batches, got %d", len(got))
	}
}

func TestBackoffHelpers(t *testing.T) {
	c := newTestConsumer(nil)

	if got := c.nextBackoff(4 * time.Millisecond); got != 8*time.Millisecond {
		t.Fatalf("nextBackoff: want 8ms, got %s", got)
	}
	if got := c.nextBackoff(8 * time.Millisecond); got != c.cfg.RetryMax {
		t.Fatalf("nextBackoff: want cap %s, got %s", c.cfg.RetryMax, got)
	}
	if got := c.withJitterEqual(0); got != 0 {
		t.Fatalf("withJitterEqual(0): want 0, got %s", got)
	}
	for i := 0; i < 100; i++ {
		d := 10 * time.Millisecond
		got := c.withJitterEqual(d)
		if got < d/2 || got > d {
			t.Fatalf("withJitterEqual(%s) out of range: %s", d, got)
		}
	}
}

func TestConsumerConfig_WithDefaults(t *testing.T) {
	cfg := ConsumerConfig{}.withDefaults()
	if cfg.MaxBatchSize != 100 || cfg.BatchWait != 250*time.Millisecond {
		t.Fatalf("batch defaults: %+v", cfg)
	}
	if cfg.RetryInitial != time.Second || cfg.RetryMax != 30*time.Second {
		t.Fatalf("retry defaults: %+v", cfg)
	}
	if cfg.ClientID == "" || cfg.MinBytes != 1 || cfg.MaxBytes != 10e6 {
		t.Fatalf("fetch defaults: %+v", cfg)
	}
}
