package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrUnhandledTag  = errors.New("protocol: unhandled value tag")
	ErrArity         = errors.New("protocol: invalid child count")
	ErrMissingAttr   = errors.New("protocol: missing attribute")
	ErrNilValue      = errors.New("protocol: nil value")
	ErrInvalidScalar = errors.New("protocol: invalid scalar")
	ErrEmptyDocument = errors.New("protocol: empty document")
)

// UnhandledTagError reports an element whose tag is not one of the value variants.
type UnhandledTagError struct {
	Tag string
}

func (e UnhandledTagError) Error() string {
	return fmt.Sprintf("protocol: unhandled value tag %q", e.Tag)
}

func (e UnhandledTagError) Is(target error) bool {
	return target == ErrUnhandledTag
}
