package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

func (k Kind) String() string {
	switch k {
	case KindBeginObject:
		return "'{'"
	case KindEndObject:
		return "'}'"
	case KindBeginArray:
		return "'['"
	case KindEndArray:
		return "']'"
	case KindKey:
		return "key"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "null"
	}
}

// Token represents a streaming token with approximate input offset.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
	Offset int64
}

// TokenSource is a minimal interface required by the engine.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

// SyntaxError reports a token that cannot appear at its position.
type SyntaxError struct {
	Msg    string
	Offset int64
}

func (e *SyntaxError) Error() string { return e.Msg }

// ErrTrailingData is returned when input continues after the top-level value.
var ErrTrailingData = errors.New("unexpected data after top-level value")

// DecodeValue builds a tree of map[string]any, []any, string, json.Number,
// bool and nil starting at tok.
func DecodeValue(src TokenSource, tok Token) (any, error) {
	switch tok.Kind {
	case KindBeginObject:
		return decodeObject(src)
	case KindBeginArray:
		return decodeArray(src)
	case KindString:
		return tok.String, nil
	case KindNumber:
		return json.Number(tok.Number), nil
	case KindBool:
		return tok.Bool, nil
	case KindNull:
		return nil, nil
	default:
		return nil, unexpected(src, tok)
	}
}

func decodeObject(src TokenSource) (map[string]any, error) {
	m := make(map[string]any)
	for {
		tok, err := next(src)
		if err != nil {
			return nil, err
		}
		if tok.Kind == KindEndObject {
			return m, nil
		}
		if tok.Kind != KindKey {
			return nil, unexpected(src, tok)
		}
		vt, err := next(src)
		if err != nil {
			return nil, err
		}
		v, err := DecodeValue(src, vt)
		if err != nil {
			return nil, err
		}
		m[tok.String] = v
	}
}

func decodeArray(src TokenSource) ([]any, error) {
	arr := []any{}
	for {
		tok, err := next(src)
		if err != nil {
			return nil, err
		}
		if tok.Kind == KindEndArray {
			return arr, nil
		}
		v, err := DecodeValue(src, tok)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}

// next reads a token inside a container, where EOF is always premature.
func next(src TokenSource) (Token, error) {
	tok, err := src.NextToken()
	if errors.Is(err, io.EOF) {
		return Token{}, io.ErrUnexpectedEOF
	}
	return tok, err
}

func unexpected(src TokenSource, tok Token) error {
	return &SyntaxError{Msg: fmt.Sprintf("unexpected %s", tok.Kind), Offset: src.Location()}
}

// Stream walks a top-level JSON value element by element. A top-level array
// yields each element in order; any other value is yielded once.
type Stream struct {
	src     TokenSource
	started bool
	array   bool
	done    bool
	index   int
}

// NewStream returns a Stream reading from src.
func NewStream(src TokenSource) *Stream { return &Stream{src: src} }

// IsArray reports whether the top-level value is an array. It is only
// meaningful after the first call to Next.
func (s *Stream) IsArray() bool { return s.array }

// Next returns the next element and its index (-1 for a non-array top-level
// value). It returns io.EOF once the input is exhausted.
func (s *Stream) Next() (any, int, error) {
	if s.done {
		return nil, 0, io.EOF
	}
	if !s.started {
		s.started = true
		tok, err := s.src.NextToken()
		if err != nil {
			s.done = true
			if errors.Is(err, io.EOF) {
				return nil, -1, io.ErrUnexpectedEOF
			}
			return nil, -1, err
		}
		if tok.Kind != KindBeginArray {
			v, err := DecodeValue(s.src, tok)
			if err != nil {
				s.done = true
				return nil, -1, err
			}
			if err := s.finish(); err != nil {
				return nil, -1, err
			}
			return v, -1, nil
		}
		s.array = true
	}
	tok, err := next(s.src)
	if err != nil {
		s.done = true
		return nil, s.index, err
	}
	if tok.Kind == KindEndArray {
		if err := s.finish(); err != nil {
			return nil, -1, err
		}
		return nil, 0, io.EOF
	}
	v, err := DecodeValue(s.src, tok)
	idx := s.index
	s.index++
	if err != nil {
		s.done = true
		return nil, idx, err
	}
	return v, idx, nil
}

func (s *Stream) finish() error {
	s.done = true
	_, err := s.src.NextToken()
	switch {
	case errors.Is(err, io.EOF):
		return nil
	case err != nil:
		return err
	default:
		return &SyntaxError{Msg: ErrTrailingData.Error(), Offset: s.src.Location()}
	}
}
