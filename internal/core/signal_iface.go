//go:generate mockgen -source=signal_iface.go -destination=mocks/signal_mock.go -package=mocks

package core

import "errors"

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

// Frame is a raw encoded message.
type Frame []byte

// SignalConnection abstracts the persistent messaging transport.
// Owned by the adapter; TrySend must never block.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// PublishResult reports delivery stats/backpressure to the orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []SignalConnection
}
