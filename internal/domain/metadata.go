package domain

// ProcessingMetadata - изменяемая запись на время обработки одного сообщения.
// Создаётся с RetryCount=0 перед первой попыткой и не переживает успех или abort.
type ProcessingMetadata struct {
	Key        string
	Partition  int
	Offset     int64
	RetryCount int
	Listener   ListenerIdentity
}

// NewProcessingMetadata - свежая запись для сообщения.
func NewProcessingMetadata(msg *Message, id ListenerIdentity) *ProcessingMetadata {
	return &ProcessingMetadata{
		Key:       string(msg.Key),
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Listener:  id,
	}
}

// Fields - снимок полей на текущий момент.
func (m *ProcessingMetadata) Fields() Fields {
	return Fields{
		"key":         m.Key,
		"partition":   m.Partition,
		"offset":      m.Offset,
		"retry_count": m.RetryCount,
	}.Merge(m.Listener.Fields())
}
