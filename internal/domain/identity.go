package domain

// ListenerIdentity - неизменяемая идентичность слушателя; прикладывается ко всем событиям.
type ListenerIdentity struct {
	ID      string // короткий случайный токен, уникальный в рамках процесса
	GroupID string
	Topic   string
}

// Fields - поля идентичности для логов и инструментации.
func (i ListenerIdentity) Fields() Fields {
	return Fields{
		"listener_id": i.ID,
		"group_id":    i.GroupID,
		"topic":       i.Topic,
	}
}
