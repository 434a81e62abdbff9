package app

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Gunvolt24/listener/config"
	"github.com/Gunvolt24/listener/internal/handler"
	"github.com/Gunvolt24/listener/internal/instrumentation"
	"github.com/Gunvolt24/listener/internal/kafka"
	"github.com/Gunvolt24/listener/internal/listener"
	"github.com/Gunvolt24/listener/internal/ports"
	rest "github.com/Gunvolt24/listener/internal/transport/http"
	"github.com/Gunvolt24/listener/pkg/backoff"
	"github.com/Gunvolt24/listener/pkg/logger"
	"github.com/Gunvolt24/listener/pkg/metrics"
	"github.com/Gunvolt24/listener/pkg/telemetry"
)

// App - собранное приложение и его внешние интерфейсы (HTTP, слушатель топика).
type App struct {
	Logger          ports.Logger   // логгер
	HTTPServer      *http.Server   // HTTP-сервер
	Listener        ports.Listener // слушатель топика
	GracefulTimeout time.Duration  // время на остановку слушателя и HTTP-сервера
}

// Cleanup - функция освобождения ресурсов.
type Cleanup func()

// applyGinMode - устанавливает режим Gin по строке;
// неизвестное значение → debug и предупреждение в лог.
func applyGinMode(ctx context.Context, mode string, log ports.Logger) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	case "", "debug":
		gin.SetMode(gin.DebugMode)
	default:
		gin.SetMode(gin.DebugMode)
		log.Warnf(ctx, "unknown GIN_MODE=%q, fallback to debug", mode)
	}
}

// kafkaConfig - перенос секции конфигурации в настройки клиента.
func kafkaConfig(cfg *config.Kafka) *kafka.ConsumerConfig {
	return &kafka.ConsumerConfig{
		Brokers:      cfg.Brokers,
		ClientID:     cfg.ClientID,
		StartOffset:  cfg.StartOffset,
		MinBytes:     cfg.MinBytes,
		MaxBytes:     cfg.MaxBytes,
		MaxWait:      cfg.MaxWait,
		MaxBatchSize: cfg.MaxBatchSize,
		BatchWait:    cfg.BatchWait,
		RetryInitial: cfg.RetryInitial,
		RetryMax:     cfg.RetryMax,
	}
}

// Bootstrap - собирает зависимости и возвращает приложение, функцию очистки и ошибку.
func Bootstrap(ctx context.Context, cfg *config.Config) (*App, Cleanup, error) {
	// Логгер (dev/prod режим задаётся конфигурацией).
	logg, cleanupLogger, err := logger.NewZapLogger(cfg.Logger.IsProd)
	if err != nil {
		return nil, func() {}, err
	}

	// Регистрация метрик (Prometheus).
	metrics.MustRegister()

	// Слушатель: подключение к Kafka откладывается до Start.
	l, err := listener.New(
		listener.Config{
			GroupID: cfg.Kafka.GroupID,
			Topic:   cfg.Kafka.Topic,
			Backoff: backoff.NewExponential(cfg.Backoff.Min, cfg.Backoff.Max, cfg.Backoff.Multiplier),
		},
		kafka.Connect(kafkaConfig(&cfg.Kafka), logg),
		handler.Factory(logg),
		instrumentation.NewSink(logg, nil),
		logg,
	)
	if err != nil {
		if cErr := cleanupLogger(); cErr != nil {
			logg.Warnf(ctx, "cleanup logger: %v", cErr)
		}
		return nil, func() {}, err
	}

	// Трейсинг OTEL (при включённой конфигурации); по умолчанию - no-op.
	shutdownTrace := func(context.Context) error { return nil }
	if cfg.Tracing.Enabled {
		setup, tErr := telemetry.SetupTracing(ctx, telemetry.Config{
			ServiceName: cfg.Tracing.ServiceName,
			Endpoint:    cfg.Tracing.Endpoint,
			SampleRatio: cfg.Tracing.SampleRatio,
			InstanceID:  l.ID(),
		})
		if tErr != nil {
			logg.Warnf(ctx, "failed to setup tracing: %v", tErr)
		} else {
			logg.Infof(ctx, "otel tracing enabled service=%s endpoint=%s sample=%.2f",
				cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
			shutdownTrace = setup
		}
	}

	// Режим Gin.
	applyGinMode(ctx, cfg.HTTP.GinMode, logg)

	// Имя сервиса для otelgin (только при включённом трейсинге).
	opts := rest.Options{Metrics: cfg.Metrics.Enabled}
	if cfg.Tracing.Enabled {
		opts.ServiceName = cfg.Tracing.ServiceName
	}

	router := rest.NewRouter(rest.NewHandler(l, logg), opts)
	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	app := &App{
		Logger:          logg,
		HTTPServer:      httpSrv,
		Listener:        l,
		GracefulTimeout: cfg.HTTP.GracefulTimeout,
	}

	// Очистка ресурсов (в обратном порядке).
	cleanup := func() {
		if terr := shutdownTrace(context.Background()); terr != nil {
			logg.Warnf(ctx, "shutdown tracing: %v", terr)
		}
		if cerr := cleanupLogger(); cerr != nil {
			logg.Warnf(ctx, "cleanup logger: %v", cerr)
		}
	}

	return app, cleanup, nil
}

// Run - запускает HTTP-сервер и слушателя; ждёт отмены контекста или завершения
// одного из них, затем останавливает слушателя (Stop) и HTTP-сервер.
// Возвращает ошибку слушателя, если тот упал сам.
func (a *App) Run(ctx context.Context) error {
	gt := a.GracefulTimeout
	if gt <= 0 {
		gt = 5 * time.Second
	}

	// Отмена ctx - сигнал к Stop, а не обрыв обработки: слушатель живёт на своём контексте.
	runCtx, cancelRun := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelRun()

	listenerDone := make(chan error, 1)
	httpErr := make(chan error, 1)

	// Запуск слушателя.
	go func() {
		a.Logger.Infof(ctx, "listener starting id=%s topic=%s group_id=%s",
			a.Listener.ID(), a.Listener.Topic(), a.Listener.GroupID())
		listenerDone <- a.Listener.Start(runCtx)
	}()

	// Запуск HTTP-сервера.
	go func() {
		a.Logger.Infof(ctx, "http server starting (addr=%s)", a.HTTPServer.Addr)
		if err := a.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpErr <- err
		}
	}()

	var (
		listenerErr      error
		listenerFinished bool
	)

	// Ожидание сигнала остановки или завершения компонента.
	select {
	case <-ctx.Done():
		a.Logger.Infof(ctx, "shutdown requested, starting graceful shutdown")
	case listenerErr = <-listenerDone:
		listenerFinished = true
		if listenerErr != nil {
			a.Logger.Errorf(ctx, "listener stopped with error: %v", listenerErr)
		} else {
			a.Logger.Infof(ctx, "listener finished state=%s", a.Listener.State())
		}
	case err := <-httpErr:
		a.Logger.Warnf(ctx, "http server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), gt)
	defer cancel()

	// Остановка слушателя: текущий батч дорабатывается, ожидание повтора прерывается после сна.
	if err := a.Listener.Stop(shutdownCtx); err != nil {
		a.Logger.Warnf(ctx, "listener stop error: %v", err)
	}
	if !listenerFinished {
		select {
		case listenerErr = <-listenerDone:
		case <-shutdownCtx.Done():
			a.Logger.Warnf(ctx, "listener did not stop within %s, cancelling", gt)
			cancelRun()
			listenerErr = <-listenerDone
		}
	}

	// Корректная остановка HTTP-сервера (свой бюджет времени).
	httpCtx, cancelHTTP := context.WithTimeout(context.Background(), gt)
	defer cancelHTTP()

	if err := a.HTTPServer.Shutdown(httpCtx); err != nil {
		a.Logger.Warnf(ctx, "http server shutdown failed: %v", err)
	} else {
		a.Logger.Infof(ctx, "http server stopped gracefully")
	}

	a.Logger.Infof(ctx, "service stopped state=%s", a.Listener.State())
	if errors.Is(listenerErr, context.Canceled) {
		return nil
	}
	return listenerErr
}
