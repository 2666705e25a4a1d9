package response

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/danmuck/coqctl/internal/protocol"
)

// Parse decodes every message in the accumulated buffer.
func Parse(buf []byte) ([]Response, error) {
	if err := scan(buf); err != nil {
		return nil, err
	}
	doc := protocol.NewDocument()
	if err := doc.ReadFromBytes(wrap(buf)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("%w: no root", ErrMalformed)
	}
	children := root.ChildElements()
	out := make([]Response, 0, len(children))
	for _, e := range children {
		r, err := FromElement(e)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// FromElement classifies one top-level element.
func FromElement(e *etree.Element) (Response, error) {
	switch e.Tag {
	case TagFeedback:
		return parseFeedback(e)
	case TagValue:
		return parseOutcome(e)
	default:
		return nil, fmt.Errorf("%w: <%s>", ErrUnexpectedTag, e.Tag)
	}
}

func parseFeedback(e *etree.Element) (Response, error) {
	children := e.ChildElements()
	if len(children) == 0 || children[0].Tag != protocol.TagStateID {
		return nil, fmt.Errorf("%w: first child must be <%s>", ErrInvalidFeedback, protocol.TagStateID)
	}
	v, err := protocol.Decode(children[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFeedback, err)
	}
	fb := Feedback{
		StateID: v.(protocol.StateID),
		Object:  e.SelectAttrValue(AttrObject, ""),
		Route:   e.SelectAttrValue(AttrRoute, ""),
	}
	for _, c := range children[1:] {
		if c.Tag == TagFeedbackContent {
			fb.Content = c.SelectAttrValue(protocol.AttrVal, "")
			break
		}
	}
	return fb, nil
}

func parseOutcome(e *etree.Element) (Response, error) {
	status := Status(e.SelectAttrValue(protocol.AttrVal, ""))
	switch status {
	case StatusGood:
		children := e.ChildElements()
		if len(children) != 1 {
			return nil, fmt.Errorf("%w: good outcome has %d children: %w", ErrInvalidOutcome, len(children), protocol.ErrArity)
		}
		data, err := protocol.Decode(children[0])
		if err != nil {
			return nil, err
		}
		return Outcome{Status: StatusGood, Data: data}, nil
	case StatusFail:
		info, err := parseErrorInfo(e)
		if err != nil {
			return nil, err
		}
		return Outcome{Status: StatusFail, Error: &info}, nil
	default:
		return nil, fmt.Errorf("%w: status %q", ErrInvalidOutcome, status)
	}
}

// parseErrorInfo reads value[val=fail]: an optional leading state_id, then the
// pretty-printed message element, with the span in loc_s/loc_e.
func parseErrorInfo(e *etree.Element) (ErrorInfo, error) {
	var info ErrorInfo
	children := e.ChildElements()
	if len(children) > 0 && children[0].Tag == protocol.TagStateID {
		v, err := protocol.Decode(children[0])
		if err != nil {
			return ErrorInfo{}, fmt.Errorf("%w: %w", ErrInvalidOutcome, err)
		}
		info.SafeStateID = v.(protocol.StateID)
		children = children[1:]
	}
	if len(children) > 0 {
		info.Message = strings.TrimSpace(collectText(children[0]))
	}

	start := e.SelectAttr(AttrLocS)
	end := e.SelectAttr(AttrLocE)
	if start != nil && end != nil {
		s, err := strconv.Atoi(start.Value)
		if err != nil {
			return ErrorInfo{}, fmt.Errorf("%w: %s=%q", ErrInvalidOutcome, AttrLocS, start.Value)
		}
		n, err := strconv.Atoi(end.Value)
		if err != nil {
			return ErrorInfo{}, fmt.Errorf("%w: %s=%q", ErrInvalidOutcome, AttrLocE, end.Value)
		}
		info.Span = &Span{Start: s, End: n}
	}
	return info, nil
}

func collectText(e *etree.Element) string {
	var b strings.Builder
	var walk func(*etree.Element)
	walk = func(el *etree.Element) {
		for _, tok := range el.Child {
			switch t := tok.(type) {
			case *etree.CharData:
				b.WriteString(t.Data)
			case *etree.Element:
				walk(t)
			}
		}
	}
	walk(e)
	return b.String()
}
