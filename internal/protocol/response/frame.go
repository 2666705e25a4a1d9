package response

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

const rootTag = "root"

var (
	rootOpen  = []byte("<" + rootTag + ">")
	rootClose = []byte("</" + rootTag + ">")
)

// wrap puts the synthetic root around the accumulated stream.
func wrap(buf []byte) []byte {
	out := make([]byte, 0, len(rootOpen)+len(buf)+len(rootClose))
	out = append(out, rootOpen...)
	out = append(out, buf...)
	return append(out, rootClose...)
}

// scan checks that buf is a sequence of complete fragments. A buffer cut
// anywhere inside a fragment is ErrNeedMoreData; markup that is already
// invalid is ErrMalformed.
func scan(buf []byte) error {
	if partialRune(buf) {
		return ErrNeedMoreData
	}
	input := make([]byte, 0, len(rootOpen)+len(buf))
	input = append(input, rootOpen...)
	input = append(input, buf...)

	dec := xml.NewDecoder(bytes.NewReader(input))
	dec.Strict = true
	dec.Entity = xml.HTMLEntity

	depth := 0
	var consumed int64
	for {
		tok, err := dec.Token()
		if err != nil {
			if !truncated(err) {
				return fmt.Errorf("%w: %v", ErrMalformed, err)
			}
			if depth == 1 && consumed == int64(len(input)) {
				return nil
			}
			return ErrNeedMoreData
		}
		consumed = dec.InputOffset()
		switch tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
			if depth == 0 {
				return fmt.Errorf("%w: stream closes the synthetic root", ErrMalformed)
			}
		}
	}
}

func truncated(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var syntax *xml.SyntaxError
	if errors.As(err, &syntax) {
		return strings.HasPrefix(syntax.Msg, "unexpected EOF")
	}
	return false
}

// partialRune reports whether buf ends in the middle of a UTF-8 sequence,
// which happens when a chunk boundary splits a multi-byte character.
func partialRune(buf []byte) bool {
	for i := len(buf) - 1; i >= 0 && i >= len(buf)-utf8.UTFMax; i-- {
		if utf8.RuneStart(buf[i]) {
			return !utf8.FullRune(buf[i:])
		}
	}
	return false
}
