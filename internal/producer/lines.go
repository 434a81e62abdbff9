// Пакет producer - публикация построчного ввода в топик (ручная проверка слушателя).
package producer

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/segmentio/kafka-go"
)

// writer - минимальный контракт над kafka.Writer.
type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Result - статистика публикации.
type Result struct {
	Published int
	Skipped   int
}

// ParseLine - одна строка ввода: "value" или "key<TAB>value".
// Пустые (после обрезки пробелов) строки дают ok=false.
func ParseLine(line []byte) (msg kafka.Message, ok bool) {
	line = bytes.TrimRight(line, "\r\n")
	if len(bytes.TrimSpace(line)) == 0 {
		return kafka.Message{}, false
	}
	if key, value, found := bytes.Cut(line, []byte{'\t'}); found {
		return kafka.Message{Key: bytes.Clone(key), Value: bytes.Clone(value)}, true
	}
	return kafka.Message{Value: bytes.Clone(line)}, true
}

// PublishLines - читает строки из r и пишет их в w пачками по batchSize.
func PublishLines(ctx context.Context, w writer, r io.Reader, batchSize int) (Result, error) {
	var res Result
	if batchSize <= 0 {
		batchSize = 100
	}

	scanner := bufio.NewScanner(r)
	// запас на большие строки
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	pending := make([]kafka.Message, 0, batchSize)
	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		if err := w.WriteMessages(ctx, pending...); err != nil {
			return fmt.Errorf("write messages: %w", err)
		}
		res.Published += len(pending)
		pending = pending[:0]
		return nil
	}

	for scanner.Scan() {
		msg, ok := ParseLine(scanner.Bytes())
		if !ok {
			res.Skipped++
			continue
		}
		pending = append(pending, msg)
		if len(pending) == batchSize {
			if err := flush(); err != nil {
				return res, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return res, fmt.Errorf("scan: %w", err)
	}
	if err := flush(); err != nil {
		return res, err
	}
	return res, nil
}
