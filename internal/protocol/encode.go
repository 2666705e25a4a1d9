package protocol

import (
	"fmt"
	"unicode/utf8"

	"github.com/beevik/etree"
)

// Encode converts v into its element form.
func Encode(v Value) (*etree.Element, error) {
	switch v := v.(type) {
	case nil:
		return nil, ErrNilValue
	case Unit:
		return etree.NewElement(TagUnit), nil
	case Bool:
		return attrScalar(TagBool, string(v))
	case StateID:
		return attrScalar(TagStateID, string(v))
	case Int:
		return textScalar(TagInt, string(v))
	case Text:
		return textScalar(TagText, string(v))
	case Pair:
		fst, err := Encode(v.Fst)
		if err != nil {
			return nil, fmt.Errorf("pair fst: %w", err)
		}
		snd, err := Encode(v.Snd)
		if err != nil {
			return nil, fmt.Errorf("pair snd: %w", err)
		}
		e := etree.NewElement(TagPair)
		e.AddChild(fst)
		e.AddChild(snd)
		return e, nil
	case Union:
		if err := checkChars(TagUnion, v.Case); err != nil {
			return nil, err
		}
		payload, err := Encode(v.Payload)
		if err != nil {
			return nil, fmt.Errorf("union payload: %w", err)
		}
		e := etree.NewElement(TagUnion)
		e.CreateAttr(AttrVal, v.Case)
		e.AddChild(payload)
		return e, nil
	default:
		return nil, UnhandledTagError{Tag: v.Tag()}
	}
}

// Marshal encodes v and serializes the element without a document prolog.
func Marshal(v Value) ([]byte, error) {
	e, err := Encode(v)
	if err != nil {
		return nil, err
	}
	return WriteElement(e)
}

// WriteElement serializes one element as a standalone fragment. Carriage
// returns are written as character references so readers do not fold them
// into newlines.
func WriteElement(e *etree.Element) ([]byte, error) {
	doc := etree.NewDocument()
	doc.WriteSettings.CanonicalText = true
	doc.WriteSettings.CanonicalAttrVal = true
	doc.SetRoot(e)
	return doc.WriteToBytes()
}

func attrScalar(tag, val string) (*etree.Element, error) {
	if err := checkChars(tag, val); err != nil {
		return nil, err
	}
	e := etree.NewElement(tag)
	e.CreateAttr(AttrVal, val)
	return e, nil
}

func textScalar(tag, text string) (*etree.Element, error) {
	if err := checkChars(tag, text); err != nil {
		return nil, err
	}
	e := etree.NewElement(tag)
	if text != "" {
		e.SetText(text)
	}
	return e, nil
}

// checkChars rejects text that XML 1.0 cannot carry, even escaped.
func checkChars(tag, s string) error {
	for i, r := range s {
		if r == utf8.RuneError {
			if _, size := utf8.DecodeRuneInString(s[i:]); size == 1 {
				return fmt.Errorf("%w: <%s> has invalid UTF-8 at byte %d", ErrInvalidScalar, tag, i)
			}
		}
		if !isXMLChar(r) {
			return fmt.Errorf("%w: <%s> has character %U at byte %d", ErrInvalidScalar, tag, r, i)
		}
	}
	return nil
}

func isXMLChar(r rune) bool {
	switch {
	case r == '\t', r == '\n', r == '\r':
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	}
	return false
}
