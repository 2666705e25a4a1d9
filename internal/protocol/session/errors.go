package session

import (
	"errors"
	"fmt"

	"github.com/danmuck/coqctl/internal/protocol/response"
)

var (
	ErrNotReady         = errors.New("session: not ready")
	ErrFaulted          = errors.New("session: faulted")
	ErrStartupExhausted = errors.New("session: startup attempts exhausted")
	ErrCallFailed       = errors.New("session: call failed")
)

// CallFailure is a fail outcome. The session stays usable.
type CallFailure struct {
	Command string
	Info    response.ErrorInfo
}

func (e *CallFailure) Error() string {
	return fmt.Sprintf("session: %s failed: %s", e.Command, e.Info)
}

func (e *CallFailure) Is(target error) bool {
	return target == ErrCallFailed
}
