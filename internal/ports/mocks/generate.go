//go:generate mockgen -source=../message_handler.go -destination=./mock_message_handler.go -package=mocks
//go:generate mockgen -source=../log_client.go      -destination=./mock_log_client.go      -package=mocks
//go:generate mockgen -source=../listener.go        -destination=./mock_listener.go        -package=mocks

package mocks
