package domain

// Имена событий инструментации слушателя.
const (
	EventListenerStart     = "listener.start"
	EventListenerStop      = "listener.stop"
	EventProcessBatch      = "listener.process_batch"
	EventProcessMessage    = "listener.process_message"
	EventRetryHandlerError = "listener.retry_handler_error"
	EventRetryAborted      = "listener.retry_aborted"
)
