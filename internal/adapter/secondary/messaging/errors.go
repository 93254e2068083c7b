package messaging

import "errors"

var (
	// ErrConsumerClosed is returned by Run after Close has been called.
	ErrConsumerClosed = errors.New("broker consumer is closed")
	// ErrConsumerRunning is returned when Run is called while another Run is active.
	ErrConsumerRunning = errors.New("broker consumer is already running")
	// ErrReconnectExhausted is returned when the configured reconnect cap is exceeded.
	ErrReconnectExhausted = errors.New("broker reconnect attempts exhausted")
	// ErrConnectionLost signals an unsolicited close of the connection, channel or delivery stream.
	ErrConnectionLost = errors.New("broker connection lost")
	// ErrPublisherClosed is returned when publishing after Close.
	ErrPublisherClosed = errors.New("notification publisher is closed")
)
