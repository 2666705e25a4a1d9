package transport

import (
	"errors"
	"fmt"
)

var (
	ErrTimeout             = errors.New("transport: timeout")
	ErrWorkerExited        = errors.New("transport: worker exited")
	ErrClosed              = errors.New("transport: closed")
	ErrUnsupportedPlatform = errors.New("transport: process pipes unsupported on this platform")
)

// ProtocolError carries text the worker wrote to its diagnostic stream. The
// worker does this when it cannot decode what it was sent, so the connection
// should be treated as compromised.
type ProtocolError struct {
	Stderr string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("transport: worker reported protocol error: %s", e.Stderr)
}
