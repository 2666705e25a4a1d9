package protocol

import (
	"errors"
	"strings"
	"testing"

	"github.com/beevik/etree"

	"github.com/danmuck/coqctl/internal/testutil/testlog"
)

func TestRoundTripEncodeDecode(t *testing.T) {
	testlog.Start(t)

	values := []Value{
		Unit{},
		NewBool(true),
		NewBool(false),
		NewStateID(7),
		NewInt(-3),
		Int(""),
		Text(""),
		Text("Definition a := 1."),
		Text(`x < y && "q" > 'z'`),
		Text("Lemma l :\r\n  True.\tx\ry"),
		Text("\u00a0\U0001F600"),
		Pair{Fst: NewInt(1), Snd: Text("one")},
		Left(Unit{}),
		Right(Pair{Fst: NewStateID(2), Snd: Pair{Fst: Left(Unit{}), Snd: Text("")}}),
		Pair{
			Fst: Pair{Fst: Text("Lemma l : True."), Snd: NewInt(1)},
			Snd: Pair{Fst: NewStateID(1), Snd: NewBool(true)},
		},
	}

	for _, in := range values {
		e, err := Encode(in)
		if err != nil {
			t.Fatalf("encode %s: %v", in, err)
		}
		out, err := Decode(e)
		if err != nil {
			t.Fatalf("decode %s: %v", in, err)
		}
		if out != in {
			t.Fatalf("round-trip mismatch: in=%s out=%s", in, out)
		}

		raw, err := Marshal(in)
		if err != nil {
			t.Fatalf("marshal %s: %v", in, err)
		}
		out, err = Unmarshal(raw)
		if err != nil {
			t.Fatalf("unmarshal %q: %v", raw, err)
		}
		if out != in {
			t.Fatalf("byte round-trip mismatch: in=%s out=%s raw=%q", in, out, raw)
		}
	}
}

func TestEncodeScalarShapes(t *testing.T) {
	testlog.Start(t)

	raw, err := Marshal(NewStateID(4))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `<state_id val="4"/>` {
		t.Fatalf("unexpected state_id encoding: %q", raw)
	}

	raw, err = Marshal(NewInt(12))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `<int>12</int>` {
		t.Fatalf("unexpected int encoding: %q", raw)
	}

	raw, err = Marshal(Left(Unit{}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `<union val="in_l"><unit/></union>` {
		t.Fatalf("unexpected union encoding: %q", raw)
	}
}

func TestDecodeScalarAttributeIsVerbatim(t *testing.T) {
	testlog.Start(t)

	v, err := Unmarshal([]byte(`<bool val="yes"/>`))
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v != Bool("yes") {
		t.Fatalf("expected verbatim bool payload, got %s", v)
	}
	if _, err := v.(Bool).Parse(); !errors.Is(err, ErrInvalidScalar) {
		t.Fatalf("expected ErrInvalidScalar, got %v", err)
	}
}

func TestDecodeMissingTextDefaultsEmpty(t *testing.T) {
	testlog.Start(t)

	v, err := Unmarshal([]byte(`<string/>`))
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v != Text("") {
		t.Fatalf("expected empty text, got %s", v)
	}
}

func TestDecodePairArity(t *testing.T) {
	testlog.Start(t)

	for _, raw := range []string{
		`<pair/>`,
		`<pair><unit/></pair>`,
		`<pair><unit/><unit/><unit/></pair>`,
	} {
		_, err := Unmarshal([]byte(raw))
		if !errors.Is(err, ErrArity) {
			t.Fatalf("%s: expected ErrArity, got %v", raw, err)
		}
	}
}

func TestDecodeUnionArityAndDiscriminant(t *testing.T) {
	testlog.Start(t)

	_, err := Unmarshal([]byte(`<union val="in_l"/>`))
	if !errors.Is(err, ErrArity) {
		t.Fatalf("expected ErrArity for empty union, got %v", err)
	}
	_, err = Unmarshal([]byte(`<union val="in_l"><unit/><unit/></union>`))
	if !errors.Is(err, ErrArity) {
		t.Fatalf("expected ErrArity for two-child union, got %v", err)
	}
	_, err = Unmarshal([]byte(`<union><unit/></union>`))
	if !errors.Is(err, ErrMissingAttr) {
		t.Fatalf("expected ErrMissingAttr, got %v", err)
	}
}

func TestDecodeUnhandledTag(t *testing.T) {
	testlog.Start(t)

	_, err := Unmarshal([]byte(`<pair><unit/><option val="none"/></pair>`))
	if !errors.Is(err, ErrUnhandledTag) {
		t.Fatalf("expected ErrUnhandledTag, got %v", err)
	}
	var unhandled UnhandledTagError
	if !errors.As(err, &unhandled) || unhandled.Tag != "option" {
		t.Fatalf("expected UnhandledTagError{option}, got %v", err)
	}
}

func TestDecodeStateIDRequiresVal(t *testing.T) {
	testlog.Start(t)

	_, err := Decode(etree.NewElement(TagStateID))
	if !errors.Is(err, ErrMissingAttr) {
		t.Fatalf("expected ErrMissingAttr, got %v", err)
	}
}

func TestEncodeCarriageReturnAsReference(t *testing.T) {
	testlog.Start(t)

	raw, err := Marshal(Text("a\rb"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `<string>a&#xD;b</string>` {
		t.Fatalf("unexpected encoding: %q", raw)
	}
	out, err := Unmarshal(raw)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out != Text("a\rb") {
		t.Fatalf("carriage return lost: %s", out)
	}
}

func TestEncodeRejectsCharactersXMLCannotCarry(t *testing.T) {
	testlog.Start(t)

	bad := []Value{
		Text("a\x01b"),
		Text("a\x00"),
		Text("bad \xff byte"),
		StateID("1\x1b"),
		Pair{Fst: Unit{}, Snd: Text("\uFFFE")},
	}
	for _, v := range bad {
		if _, err := Encode(v); !errors.Is(err, ErrInvalidScalar) {
			t.Fatalf("expected ErrInvalidScalar for %s, got %v", v, err)
		}
	}
}

func TestEncodeNilValue(t *testing.T) {
	testlog.Start(t)

	_, err := Encode(Pair{Fst: Unit{}})
	if !errors.Is(err, ErrNilValue) {
		t.Fatalf("expected ErrNilValue, got %v", err)
	}
	if !strings.Contains(err.Error(), "pair snd") {
		t.Fatalf("expected path in error, got %v", err)
	}
}

func TestScalarParse(t *testing.T) {
	testlog.Start(t)

	n, err := NewStateID(42).Parse()
	if err != nil || n != 42 {
		t.Fatalf("state id parse: n=%d err=%v", n, err)
	}
	b, err := NewBool(true).Parse()
	if err != nil || !b {
		t.Fatalf("bool parse: b=%v err=%v", b, err)
	}
	if _, err := Int("x").Parse(); !errors.Is(err, ErrInvalidScalar) {
		t.Fatalf("expected ErrInvalidScalar, got %v", err)
	}
}
