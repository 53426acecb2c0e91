package gojson

import (
	"fmt"
	"io"

	eng "github.com/reoring/polyjson/internal/engine"
)

// tape records the bytes the go-json decoder reads so the separators it skips
// can be checked. Bytes before the last checked token are discarded.
type tape struct {
	r    io.Reader
	buf  []byte
	base int64
}

func (t *tape) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	t.buf = append(t.buf, p[:n]...)
	return n, err
}

func (t *tape) at(off int64) (byte, bool) {
	i := off - t.base
	if i < 0 || i >= int64(len(t.buf)) {
		return 0, false
	}
	return t.buf[i], true
}

func (t *tape) discard(off int64) {
	i := off - t.base
	if i <= 0 {
		return
	}
	if i > int64(len(t.buf)) {
		i = int64(len(t.buf))
	}
	t.buf = append(t.buf[:0], t.buf[i:]...)
	t.base += i
}

type position int

const (
	posStart position = iota
	posOpen
	posKey
	posValue
)

// separators re-lexes the recorded input in step with the decoder and
// verifies the ',' and ':' between tokens, which go-json's Token skips
// without checking.
type separators struct {
	t     *tape
	pos   int64
	prev  position
	depth int
}

func (s *separators) check(tok eng.Token) error {
	p := s.space(s.pos)
	var sep byte
	if b, ok := s.t.at(p); ok && (b == ',' || b == ':') {
		sep = b
		p = s.space(p + 1)
	}
	want := s.want(tok.Kind)
	if sep != want {
		if want == 0 {
			return &eng.SyntaxError{Msg: fmt.Sprintf("invalid character %q before %s", sep, tok.Kind), Offset: p}
		}
		return &eng.SyntaxError{Msg: fmt.Sprintf("expected %q before %s", want, tok.Kind), Offset: p}
	}
	if b, ok := s.t.at(p); ok && (b == ',' || b == ':') {
		return &eng.SyntaxError{Msg: fmt.Sprintf("invalid character %q before %s", b, tok.Kind), Offset: p}
	}
	s.pos = s.end(p, tok)
	s.t.discard(s.pos)

	switch tok.Kind {
	case eng.KindBeginObject, eng.KindBeginArray:
		s.depth++
		s.prev = posOpen
	case eng.KindEndObject, eng.KindEndArray:
		s.depth--
		s.prev = posValue
	case eng.KindKey:
		s.prev = posKey
	default:
		s.prev = posValue
	}
	return nil
}

func (s *separators) want(k eng.Kind) byte {
	switch {
	case s.prev == posKey:
		return ':'
	case s.prev == posValue && s.depth > 0 && k != eng.KindEndObject && k != eng.KindEndArray:
		return ','
	default:
		return 0
	}
}

func (s *separators) space(p int64) int64 {
	for {
		b, ok := s.t.at(p)
		if !ok || (b != ' ' && b != '\t' && b != '\n' && b != '\r') {
			return p
		}
		p++
	}
}

// end returns the offset just past the token starting at p.
func (s *separators) end(p int64, tok eng.Token) int64 {
	switch tok.Kind {
	case eng.KindString, eng.KindKey:
		p++
		for {
			b, ok := s.t.at(p)
			if !ok {
				return p
			}
			p++
			switch b {
			case '\\':
				p++
			case '"':
				return p
			}
		}
	case eng.KindNumber:
		for {
			b, ok := s.t.at(p)
			if !ok || !isNumberByte(b) {
				return p
			}
			p++
		}
	case eng.KindBool:
		if tok.Bool {
			return p + 4
		}
		return p + 5
	case eng.KindNull:
		return p + 4
	default:
		return p + 1
	}
}

func isNumberByte(b byte) bool {
	return (b >= '0' && b <= '9') || b == '-' || b == '+' || b == '.' || b == 'e' || b == 'E'
}
