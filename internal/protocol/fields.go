package protocol

import (
	"fmt"
	"strconv"
)

// Union cases used by the worker for sum types.
const (
	CaseLeft  = "in_l"
	CaseRight = "in_r"
)

// NewBool creates a bool value from its Go form.
func NewBool(v bool) Bool {
	return Bool(strconv.FormatBool(v))
}

// NewInt creates an int value from its Go form.
func NewInt(v int) Int {
	return Int(strconv.Itoa(v))
}

// NewStateID creates a state id value from its Go form.
func NewStateID(v int) StateID {
	return StateID(strconv.Itoa(v))
}

// Parse returns the bool payload.
func (b Bool) Parse() (bool, error) {
	v, err := strconv.ParseBool(string(b))
	if err != nil {
		return false, fmt.Errorf("%w: bool %q", ErrInvalidScalar, string(b))
	}
	return v, nil
}

// Parse returns the int payload.
func (n Int) Parse() (int, error) {
	v, err := strconv.Atoi(string(n))
	if err != nil {
		return 0, fmt.Errorf("%w: int %q", ErrInvalidScalar, string(n))
	}
	return v, nil
}

// Parse returns the numeric state id.
func (s StateID) Parse() (int, error) {
	v, err := strconv.Atoi(string(s))
	if err != nil {
		return 0, fmt.Errorf("%w: state_id %q", ErrInvalidScalar, string(s))
	}
	return v, nil
}

// Left wraps v in the in_l case.
func Left(v Value) Union {
	return Union{Case: CaseLeft, Payload: v}
}

// Right wraps v in the in_r case.
func Right(v Value) Union {
	return Union{Case: CaseRight, Payload: v}
}
