package domain

import "time"

// Message - сообщение лога (только чтение; данными владеет клиент лога).
type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Key       []byte
	Value     []byte
	Time      time.Time
}

// Batch - упорядоченные сообщения одной партиции.
type Batch struct {
	Topic               string
	Partition           int
	OffsetLag           int64
	HighwaterMarkOffset int64
	Messages            []Message
}

// Fields - метаданные батча (без самих сообщений).
func (b *Batch) Fields() Fields {
	return Fields{
		"batch_size":            len(b.Messages),
		"partition":             b.Partition,
		"offset_lag":            b.OffsetLag,
		"highwater_mark_offset": b.HighwaterMarkOffset,
	}
}
