package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Prefix - префикс переменных окружения сервиса.
const Prefix = "LISTENER"

type HTTP struct {
	Addr              string        `default:":8080" envconfig:"ADDR"`
	GinMode           string        `default:"debug" envconfig:"GIN_MODE"`
	ReadTimeout       time.Duration `default:"10s" envconfig:"READ_TIMEOUT"`
	WriteTimeout      time.Duration `default:"10s" envconfig:"WRITE_TIMEOUT"`
	ReadHeaderTimeout time.Duration `default:"5s" envconfig:"READ_HEADER_TIMEOUT"`
	IdleTimeout       time.Duration `default:"60s" envconfig:"IDLE_TIMEOUT"`
	GracefulTimeout   time.Duration `default:"10s" envconfig:"GRACEFUL_TIMEOUT"`
}

type Metrics struct {
	Enabled bool `default:"true" envconfig:"ENABLED"`
}

type Tracing struct {
	Enabled     bool    `default:"false" envconfig:"OTEL_ENABLED"`
	ServiceName string  `default:"topic-listener" envconfig:"OTEL_SERVICE_NAME"`
	Endpoint    string  `default:"jaeger:4318" envconfig:"OTEL_ENDPOINT"`
	SampleRatio float64 `default:"1" envconfig:"OTEL_SAMPLE_RATIO"`
}

type Kafka struct {
	Brokers      []string      `default:"kafka:9092" envconfig:"BROKERS"`
	Topic        string        `default:"events" envconfig:"TOPIC"`
	GroupID      string        `default:"listener" envconfig:"GROUP_ID"`
	ClientID     string        `default:"topic-listener" envconfig:"CLIENT_ID"`
	StartOffset  string        `default:"last" envconfig:"START_OFFSET"`
	MinBytes     int           `default:"1" envconfig:"MIN_BYTES"`
	MaxBytes     int           `default:"10000000" envconfig:"MAX_BYTES"`
	MaxWait      time.Duration `default:"500ms" envconfig:"MAX_WAIT"`
	MaxBatchSize int           `default:"100" envconfig:"MAX_BATCH_SIZE"`
	BatchWait    time.Duration `default:"250ms" envconfig:"BATCH_WAIT"`
	RetryInitial time.Duration `default:"1s" envconfig:"RETRY_INITIAL"`
	RetryMax     time.Duration `default:"30s" envconfig:"RETRY_MAX"`
}

// Backoff - задержки между повторами обработки одного сообщения.
type Backoff struct {
	Min        time.Duration `default:"1s" envconfig:"MIN"`
	Max        time.Duration `default:"10s" envconfig:"MAX"`
	Multiplier float64       `default:"2" envconfig:"MULTIPLIER"`
}

type Logger struct {
	IsProd bool `default:"false" envconfig:"IS_PROD"`
}

type Config struct {
	HTTP    HTTP
	Metrics Metrics
	Tracing Tracing
	Kafka   Kafka
	Backoff Backoff
	Logger  Logger
}

// Load - конфигурация из окружения с префиксом LISTENER.
func Load() (Config, error) {
	return LoadWithPrefix(Prefix)
}

// LoadWithPrefix - то же с произвольным префиксом (удобно в тестах).
func LoadWithPrefix(prefix string) (Config, error) {
	var c Config

	if err := envconfig.Process(prefix, &c); err != nil {
		return Config{}, err
	}

	return c, nil
}
