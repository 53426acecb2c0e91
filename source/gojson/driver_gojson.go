// Package gojson tokenizes JSON with github.com/goccy/go-json. It is the
// default driver behind polyjson.JSONBytes and polyjson.JSONReader.
package gojson

import (
	"bytes"
	"errors"
	"io"
	"strconv"

	j "github.com/goccy/go-json"

	eng "github.com/reoring/polyjson/internal/engine"
)

type source struct {
	dec *j.Decoder
	fr  eng.Framer
	sep separators
	off int64
	err error
}

// NewReader wraps an io.Reader into an engine.TokenSource using go-json.
// Missing, misplaced and trailing separators are reported as syntax errors.
func NewReader(r io.Reader) eng.TokenSource {
	t := &tape{r: r}
	dec := j.NewDecoder(t)
	dec.UseNumber()
	return &source{dec: dec, sep: separators{t: t}, off: -1}
}

// NewBytes wraps a byte slice into an engine.TokenSource using go-json.
func NewBytes(b []byte) eng.TokenSource { return NewReader(bytes.NewReader(b)) }

func (s *source) NextToken() (eng.Token, error) {
	if s.err != nil {
		return eng.Token{}, s.err
	}
	tok, err := s.next()
	if err == nil {
		err = s.sep.check(tok)
	}
	if err != nil && !errors.Is(err, io.EOF) {
		s.err = err
	}
	return tok, err
}

func (s *source) next() (eng.Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return eng.Token{}, io.EOF
		}
		return eng.Token{}, &eng.SyntaxError{Msg: err.Error(), Offset: s.off}
	}
	s.off = s.dec.InputOffset()
	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			s.fr.Open(true)
			return s.token(eng.KindBeginObject), nil
		case '[':
			s.fr.Open(false)
			return s.token(eng.KindBeginArray), nil
		case '}':
			s.fr.Close()
			return s.token(eng.KindEndObject), nil
		default:
			s.fr.Close()
			return s.token(eng.KindEndArray), nil
		}
	case string:
		if s.fr.Key() {
			t := s.token(eng.KindKey)
			t.String = v
			return t, nil
		}
		s.fr.Value()
		t := s.token(eng.KindString)
		t.String = v
		return t, nil
	case j.Number:
		s.fr.Value()
		t := s.token(eng.KindNumber)
		t.Number = string(v)
		return t, nil
	case float64:
		s.fr.Value()
		t := s.token(eng.KindNumber)
		t.Number = strconv.FormatFloat(v, 'g', -1, 64)
		return t, nil
	case bool:
		s.fr.Value()
		t := s.token(eng.KindBool)
		t.Bool = v
		return t, nil
	default:
		s.fr.Value()
		return s.token(eng.KindNull), nil
	}
}

func (s *source) token(k eng.Kind) eng.Token { return eng.Token{Kind: k, Offset: s.off} }

func (s *source) Location() int64 { return s.off }
