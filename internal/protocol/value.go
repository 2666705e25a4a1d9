package protocol

import "fmt"

// Element tags of the value variants.
const (
	TagUnit    = "unit"
	TagBool    = "bool"
	TagStateID = "state_id"
	TagInt     = "int"
	TagText    = "string"
	TagPair    = "pair"
	TagUnion   = "union"
)

// AttrVal is the attribute carrying scalar payloads and union discriminants.
const AttrVal = "val"

// Value is one node of the wire value model. The implementations in this
// package are the complete set; values compare structurally with ==.
type Value interface {
	Tag() string
	String() string
	isValue()
}

// Unit carries no payload.
type Unit struct{}

// Bool is carried as text end to end ("true"/"false").
type Bool string

// StateID is the worker's document state handle.
type StateID string

// Int is carried as the element text.
type Int string

// Text is a string payload.
type Text string

// Pair holds two ordered values.
type Pair struct {
	Fst Value
	Snd Value
}

// Union holds one payload value selected by Case (in_l / in_r on the wire).
type Union struct {
	Case    string
	Payload Value
}

func (Unit) Tag() string    { return TagUnit }
func (Bool) Tag() string    { return TagBool }
func (StateID) Tag() string { return TagStateID }
func (Int) Tag() string     { return TagInt }
func (Text) Tag() string    { return TagText }
func (Pair) Tag() string    { return TagPair }
func (Union) Tag() string   { return TagUnion }

func (Unit) isValue()    {}
func (Bool) isValue()    {}
func (StateID) isValue() {}
func (Int) isValue()     {}
func (Text) isValue()    {}
func (Pair) isValue()    {}
func (Union) isValue()   {}

func (Unit) String() string      { return "unit" }
func (b Bool) String() string    { return fmt.Sprintf("bool(%s)", string(b)) }
func (s StateID) String() string { return fmt.Sprintf("state_id(%s)", string(s)) }
func (n Int) String() string     { return fmt.Sprintf("int(%s)", string(n)) }
func (t Text) String() string    { return fmt.Sprintf("string(%q)", string(t)) }

func (p Pair) String() string {
	return fmt.Sprintf("pair(%s, %s)", valueString(p.Fst), valueString(p.Snd))
}

func (u Union) String() string {
	return fmt.Sprintf("union[%s](%s)", u.Case, valueString(u.Payload))
}

func valueString(v Value) string {
	if v == nil {
		return "<nil>"
	}
	return v.String()
}
