// Package json tokenizes JSON with the standard library decoder. It backs
// polyjson.StdJSONDriver for callers that want encoding/json error messages.
package json

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	eng "github.com/reoring/polyjson/internal/engine"
)

type jsonSource struct {
	dec *json.Decoder
	fr  eng.Framer
	off int64
}

// NewReader wraps an io.Reader into an engine.TokenSource for JSON.
func NewReader(r io.Reader) eng.TokenSource {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &jsonSource{dec: dec, off: -1}
}

// NewBytes wraps a byte slice into an engine.TokenSource for JSON.
func NewBytes(b []byte) eng.TokenSource { return NewReader(bytes.NewReader(b)) }

func (s *jsonSource) NextToken() (eng.Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return eng.Token{}, io.EOF
		}
		off := s.off
		var se *json.SyntaxError
		if errors.As(err, &se) {
			off = se.Offset
		}
		return eng.Token{}, &eng.SyntaxError{Msg: err.Error(), Offset: off}
	}
	s.off = s.dec.InputOffset()

	t := eng.Token{Offset: s.off}
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			s.fr.Open(true)
			t.Kind = eng.KindBeginObject
		case '[':
			s.fr.Open(false)
			t.Kind = eng.KindBeginArray
		case '}':
			s.fr.Close()
			t.Kind = eng.KindEndObject
		default:
			s.fr.Close()
			t.Kind = eng.KindEndArray
		}
	case string:
		t.String = v
		if s.fr.Key() {
			t.Kind = eng.KindKey
		} else {
			s.fr.Value()
			t.Kind = eng.KindString
		}
	case json.Number:
		s.fr.Value()
		t.Kind, t.Number = eng.KindNumber, string(v)
	case bool:
		s.fr.Value()
		t.Kind, t.Bool = eng.KindBool, v
	default:
		s.fr.Value()
		t.Kind = eng.KindNull
	}
	return t, nil
}

func (s *jsonSource) Location() int64 { return s.off }
