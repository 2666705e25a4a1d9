package response

import "errors"

var (
	// ErrNeedMoreData means the buffer ends inside a fragment. Callers read more bytes and retry.
	ErrNeedMoreData = errors.New("response: need more data")
	// ErrMalformed means no suffix can make the buffer well formed.
	ErrMalformed       = errors.New("response: malformed markup")
	ErrUnexpectedTag   = errors.New("response: unexpected top-level tag")
	ErrInvalidFeedback = errors.New("response: invalid feedback")
	ErrInvalidOutcome  = errors.New("response: invalid outcome")
)
