// Package call encodes outbound commands into call elements.
//
// A call is always `call[val=<CommandName>]{payload}`; commands only describe
// their name and payload value.
package call

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/danmuck/coqctl/internal/protocol"
)

const TagCall = "call"

var (
	ErrInvalidCommand    = errors.New("call: invalid command")
	ErrUnexpectedOutcome = errors.New("call: unexpected outcome payload")
)

// Command is one operation the session can issue.
type Command interface {
	Name() string
	// Payload builds the command value against the current session state.
	Payload(state protocol.StateID) (protocol.Value, error)
}

// Add submits a source fragment at the current state.
type Add struct {
	Source string
}

func (Add) Name() string { return "Add" }

// Payload returns ((source, edit_id), (state_id, verbose)). The edit id tracks
// the state id one to one and verbose feedback is always requested.
func (a Add) Payload(state protocol.StateID) (protocol.Value, error) {
	return protocol.Pair{
		Fst: protocol.Pair{
			Fst: protocol.Text(a.Source),
			Snd: protocol.Int(state),
		},
		Snd: protocol.Pair{
			Fst: state,
			Snd: protocol.NewBool(true),
		},
	}, nil
}

// Encode wraps the command payload in its call element.
func Encode(cmd Command, state protocol.StateID) (*etree.Element, error) {
	if cmd == nil || strings.TrimSpace(cmd.Name()) == "" {
		return nil, ErrInvalidCommand
	}
	payload, err := cmd.Payload(state)
	if err != nil {
		return nil, err
	}
	body, err := protocol.Encode(payload)
	if err != nil {
		return nil, err
	}
	e := etree.NewElement(TagCall)
	e.CreateAttr(protocol.AttrVal, cmd.Name())
	e.AddChild(body)
	return e, nil
}

// Marshal encodes the command into its wire bytes.
func Marshal(cmd Command, state protocol.StateID) ([]byte, error) {
	e, err := Encode(cmd, state)
	if err != nil {
		return nil, err
	}
	return protocol.WriteElement(e)
}

// Advancer is implemented by commands whose good outcome moves the session
// to a new state.
type Advancer interface {
	NextState(data protocol.Value) (protocol.StateID, error)
}

// NextState reads the new state id from the first component of the outcome pair.
func (Add) NextState(data protocol.Value) (protocol.StateID, error) {
	pair, ok := data.(protocol.Pair)
	if !ok {
		return "", fmt.Errorf("%w: Add outcome is %s, want pair", ErrUnexpectedOutcome, describe(data))
	}
	id, ok := pair.Fst.(protocol.StateID)
	if !ok {
		return "", fmt.Errorf("%w: Add outcome starts with %s, want state_id", ErrUnexpectedOutcome, describe(pair.Fst))
	}
	if id == "" {
		return "", fmt.Errorf("%w: Add outcome has an empty state_id", ErrUnexpectedOutcome)
	}
	return id, nil
}

func describe(v protocol.Value) string {
	if v == nil {
		return "nothing"
	}
	return v.Tag()
}
