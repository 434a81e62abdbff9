package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/segmentio/kafka-go"

	"github.com/Gunvolt24/listener/internal/producer"
)

// CLI-приложение для публикации сообщений в топик: одна строка - одно сообщение ("value" или "key<TAB>value").
func main() {
	_ = godotenv.Load(".env.local")

	brokers := flag.String("brokers", envOr("LISTENER_KAFKA_BROKERS", "localhost:9092"), "comma-separated broker list")
	topic := flag.String("topic", envOr("LISTENER_KAFKA_TOPIC", "events"), "target topic")
	inputPath := flag.String("in", "", "path to input file. If empty, reads from stdin.")
	batch := flag.Int("batch", 100, "messages per write")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var in io.Reader = os.Stdin
	if *inputPath != "" {
		f, err := os.Open(*inputPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open input: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(*brokers, ",")...),
		Topic:        *topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
	}

	res, err := producer.PublishLines(ctx, w, in, *batch)
	if cerr := w.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "produce: %v (%d published / %d skipped)\n", err, res.Published, res.Skipped)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "produce ok (%d published / %d skipped)\n", res.Published, res.Skipped)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
