package config_test

import (
	"slices"
	"testing"
	"time"

	cfg "github.com/Gunvolt24/listener/config"
)

// TestLoadWithPrefix_Defaults - проверка наличия значений по умолчанию.
func TestLoadWithPrefix_Defaults(t *testing.T) {
	t.Parallel()

	c, err := cfg.LoadWithPrefix("LISTENER_TEST_DEFAULTS")
	if err != nil {
		t.Fatalf("LoadWithPrefix error: %v", err)
	}

	// HTTP
	if c.HTTP.Addr != ":8080" || c.HTTP.GinMode != "debug" {
		t.Fatalf("HTTP defaults wrong: %+v", c.HTTP)
	}
	if c.HTTP.ReadTimeout != 10*time.Second || c.HTTP.WriteTimeout != 10*time.Second {
		t.Fatalf("HTTP timeouts wrong: %+v", c.HTTP)
	}
	if c.HTTP.ReadHeaderTimeout != 5*time.Second || c.HTTP.IdleTimeout != 60*time.Second {
		t.Fatalf("HTTP header/idle timeouts wrong: %+v", c.HTTP)
	}
	if c.HTTP.GracefulTimeout != 10*time.Second {
		t.Fatalf("HTTP.GracefulTimeout: want 10s, got %v", c.HTTP.GracefulTimeout)
	}

	// Metrics
	if !c.Metrics.Enabled {
		t.Fatalf("Metrics.Enabled: want true, got false")
	}

	// Tracing
	if c.Tracing.Enabled {
		t.Fatalf("Tracing.Enabled: want false, got true")
	}
	if c.Tracing.ServiceName != "topic-listener" || c.Tracing.Endpoint != "jaeger:4318" || c.Tracing.SampleRatio != 1 {
		t.Fatalf("Tracing defaults wrong: %+v", c.Tracing)
	}

	// Kafka
	if !slices.Equal(c.Kafka.Brokers, []string{"kafka:9092"}) {
		t.Fatalf("Kafka.Brokers: want [kafka:9092], got %v", c.Kafka.Brokers)
	}
	if c.Kafka.Topic != "events" || c.Kafka.GroupID != "listener" || c.Kafka.StartOffset != "last" {
		t.Fatalf("Kafka defaults wrong: %+v", c.Kafka)
	}
	if c.Kafka.MaxBatchSize != 100 || c.Kafka.BatchWait != 250*time.Millisecond {
		t.Fatalf("Kafka batch defaults wrong: %+v", c.Kafka)
	}
	if c.Kafka.RetryInitial != 1*time.Second || c.Kafka.RetryMax != 30*time.Second {
		t.Fatalf("Kafka retry defaults wrong: %+v", c.Kafka)
	}

	// Backoff
	if c.Backoff.Min != time.Second || c.Backoff.Max != 10*time.Second || c.Backoff.Multiplier != 2 {
		t.Fatalf("Backoff defaults wrong: %+v", c.Backoff)
	}

	// Logger
	if c.Logger.IsProd {
		t.Fatalf("Logger.IsProd: want false, got true")
	}
}

// Меняем окружение.
func TestLoadWithPrefix_Overrides(t *testing.T) {
	const p = "LISTENER_TEST_OVR"

	t.Setenv(p+"_HTTP_ADDR", ":9999")
	t.Setenv(p+"_HTTP_GIN_MODE", "release")
	t.Setenv(p+"_HTTP_GRACEFUL_TIMEOUT", "3s")

	t.Setenv(p+"_METRICS_ENABLED", "false")

	t.Setenv(p+"_TRACING_OTEL_ENABLED", "true")
	t.Setenv(p+"_TRACING_OTEL_SERVICE_NAME", "svc")
	t.Setenv(p+"_TRACING_OTEL_SAMPLE_RATIO", "0.25")

	t.Setenv(p+"_KAFKA_BROKERS", "k1:9092,k2:9093")
	t.Setenv(p+"_KAFKA_TOPIC", "payments")
	t.Setenv(p+"_KAFKA_GROUP_ID", "g-test")
	t.Setenv(p+"_KAFKA_START_OFFSET", "first")
	t.Setenv(p+"_KAFKA_MAX_BATCH_SIZE", "5")
	t.Setenv(p+"_KAFKA_BATCH_WAIT", "40ms")

	t.Setenv(p+"_BACKOFF_MIN", "250ms")
	t.Setenv(p+"_BACKOFF_MAX", "2m")
	t.Setenv(p+"_BACKOFF_MULTIPLIER", "1.5")

	t.Setenv(p+"_LOGGER_IS_PROD", "true")

	c, err := cfg.LoadWithPrefix(p)
	if err != nil {
		t.Fatalf("LoadWithPrefix error: %v", err)
	}

	if c.HTTP.Addr != ":9999" || c.HTTP.GinMode != "release" || c.HTTP.GracefulTimeout != 3*time.Second {
		t.Fatalf("HTTP overrides wrong: %+v", c.HTTP)
	}
	if c.Metrics.Enabled {
		t.Fatalf("Metrics.Enabled override wrong")
	}
	if !c.Tracing.Enabled || c.Tracing.ServiceName != "svc" || c.Tracing.SampleRatio != 0.25 {
		t.Fatalf("Tracing overrides wrong: %+v", c.Tracing)
	}
	if !slices.Equal(c.Kafka.Brokers, []string{"k1:9092", "k2:9093"}) ||
		c.Kafka.Topic != "payments" || c.Kafka.GroupID != "g-test" || c.Kafka.StartOffset != "first" {
		t.Fatalf("Kafka basic overrides wrong: %+v", c.Kafka)
	}
	if c.Kafka.MaxBatchSize != 5 || c.Kafka.BatchWait != 40*time.Millisecond {
		t.Fatalf("Kafka batch overrides wrong: %+v", c.Kafka)
	}
	if c.Backoff.Min != 250*time.Millisecond || c.Backoff.Max != 2*time.Minute || c.Backoff.Multiplier != 1.5 {
		t.Fatalf("Backoff overrides wrong: %+v", c.Backoff)
	}
	if !c.Logger.IsProd {
		t.Fatalf("Logger.IsProd override wrong: %+v", c.Logger)
	}
}

// Тоже меняем окружение - но с невалидным значением.
func TestLoadWithPrefix_InvalidValue_ReturnsError(t *testing.T) {
	const p = "LISTENER_TEST_BAD"
	t.Setenv(p+"_BACKOFF_MIN", "not-a-duration")

	if _, err := cfg.LoadWithPrefix(p); err == nil {
		t.Fatalf("expected error for invalid duration, got nil")
	}
}
