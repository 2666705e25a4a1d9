package protocol

import (
	"encoding/xml"
	"fmt"

	"github.com/beevik/etree"
)

// Decode converts an element back into a Value. Dispatch is a closed match on
// the tag; anything outside the variant set is an UnhandledTagError.
func Decode(e *etree.Element) (Value, error) {
	if e == nil {
		return nil, ErrNilValue
	}
	switch e.Tag {
	case TagUnit:
		return Unit{}, nil
	case TagBool:
		v, err := requireAttr(e, AttrVal)
		if err != nil {
			return nil, err
		}
		return Bool(v), nil
	case TagStateID:
		v, err := requireAttr(e, AttrVal)
		if err != nil {
			return nil, err
		}
		return StateID(v), nil
	case TagInt:
		return Int(e.Text()), nil
	case TagText:
		return Text(e.Text()), nil
	case TagPair:
		return decodePair(e)
	case TagUnion:
		return decodeUnion(e)
	default:
		return nil, UnhandledTagError{Tag: e.Tag}
	}
}

// Unmarshal parses one serialized element and decodes it.
func Unmarshal(data []byte) (Value, error) {
	doc := NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, err
	}
	root := doc.Root()
	if root == nil {
		return nil, ErrEmptyDocument
	}
	return Decode(root)
}

// NewDocument returns a document configured for worker output, which uses
// HTML named entities such as &nbsp; in pretty-printed text.
func NewDocument() *etree.Document {
	doc := etree.NewDocument()
	doc.ReadSettings.Entity = xml.HTMLEntity
	return doc
}

func decodePair(e *etree.Element) (Value, error) {
	children, err := requireChildren(e, 2)
	if err != nil {
		return nil, err
	}
	fst, err := Decode(children[0])
	if err != nil {
		return nil, fmt.Errorf("pair fst: %w", err)
	}
	snd, err := Decode(children[1])
	if err != nil {
		return nil, fmt.Errorf("pair snd: %w", err)
	}
	return Pair{Fst: fst, Snd: snd}, nil
}

func decodeUnion(e *etree.Element) (Value, error) {
	tag, err := requireAttr(e, AttrVal)
	if err != nil {
		return nil, err
	}
	children, err := requireChildren(e, 1)
	if err != nil {
		return nil, err
	}
	payload, err := Decode(children[0])
	if err != nil {
		return nil, fmt.Errorf("union payload: %w", err)
	}
	return Union{Case: tag, Payload: payload}, nil
}

func requireAttr(e *etree.Element, key string) (string, error) {
	attr := e.SelectAttr(key)
	if attr == nil {
		return "", fmt.Errorf("%w: <%s> has no %q", ErrMissingAttr, e.Tag, key)
	}
	return attr.Value, nil
}

func requireChildren(e *etree.Element, want int) ([]*etree.Element, error) {
	children := e.ChildElements()
	if len(children) != want {
		return nil, fmt.Errorf("%w: <%s> has %d children, want %d", ErrArity, e.Tag, len(children), want)
	}
	return children, nil
}
