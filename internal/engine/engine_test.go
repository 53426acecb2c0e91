package engine

import (
	"errors"
	"io"
	"testing"
)

// sliceSource replays a fixed token list.
type sliceSource struct {
	toks []Token
	pos  int
}

func (s *sliceSource) NextToken() (Token, error) {
	if s.pos >= len(s.toks) {
		return Token{}, io.EOF
	}
	t := s.toks[s.pos]
	s.pos++
	return t, nil
}

func (s *sliceSource) Location() int64 { return int64(s.pos) }

func obj(kv ...string) []Token {
	toks := []Token{{Kind: KindBeginObject}}
	for i := 0; i+1 < len(kv); i += 2 {
		toks = append(toks, Token{Kind: KindKey, String: kv[i]}, Token{Kind: KindString, String: kv[i+1]})
	}
	return append(toks, Token{Kind: KindEndObject})
}

func array(elems ...[]Token) []Token {
	toks := []Token{{Kind: KindBeginArray}}
	for _, e := range elems {
		toks = append(toks, e...)
	}
	return append(toks, Token{Kind: KindEndArray})
}

func TestStream_Array(t *testing.T) {
	st := NewStream(&sliceSource{toks: array(obj("a", "1"), obj("b", "2"))})
	for want := 0; want < 2; want++ {
		v, idx, err := st.Next()
		if err != nil {
			t.Fatalf("element %d: %v", want, err)
		}
		if idx != want {
			t.Fatalf("index = %d, want %d", idx, want)
		}
		if _, ok := v.(map[string]any); !ok {
			t.Fatalf("expected object, got %T", v)
		}
	}
	if !st.IsArray() {
		t.Fatalf("expected array")
	}
	if _, _, err := st.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
	if _, _, err := st.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF again, got %v", err)
	}
}

func TestStream_SingleValue(t *testing.T) {
	st := NewStream(&sliceSource{toks: obj("a", "1")})
	v, idx, err := st.Next()
	if err != nil || idx != -1 {
		t.Fatalf("idx=%d err=%v", idx, err)
	}
	if m := v.(map[string]any); m["a"] != "1" {
		t.Fatalf("unexpected value: %v", m)
	}
	if st.IsArray() {
		t.Fatalf("expected non-array")
	}
	if _, _, err := st.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestStream_Errors(t *testing.T) {
	tests := []struct {
		name    string
		toks    []Token
		wantIdx int
		wantErr error
	}{
		{name: "empty", toks: nil, wantIdx: -1, wantErr: io.ErrUnexpectedEOF},
		{name: "unterminated array", toks: []Token{{Kind: KindBeginArray}}, wantIdx: 0, wantErr: io.ErrUnexpectedEOF},
		{name: "unterminated element", toks: []Token{{Kind: KindBeginArray}, {Kind: KindBeginObject}, {Kind: KindKey, String: "a"}}, wantIdx: 0, wantErr: io.ErrUnexpectedEOF},
		{name: "trailing data", toks: append(obj(), Token{Kind: KindNull}), wantIdx: -1},
		{name: "value where key expected", toks: []Token{{Kind: KindBeginObject}, {Kind: KindString, String: "x"}}, wantIdx: -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := NewStream(&sliceSource{toks: tt.toks})
			var (
				idx int
				err error
			)
			for err == nil {
				_, idx, err = st.Next()
			}
			if errors.Is(err, io.EOF) {
				t.Fatalf("expected error, got EOF")
			}
			if idx != tt.wantIdx {
				t.Fatalf("idx = %d, want %d", idx, tt.wantIdx)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil {
				var se *SyntaxError
				if !errors.As(err, &se) {
					t.Fatalf("expected SyntaxError, got %T", err)
				}
			}
		})
	}
}

func TestDecodeValue_Scalars(t *testing.T) {
	src := &sliceSource{}
	for _, tc := range []struct {
		tok  Token
		want any
	}{
		{Token{Kind: KindString, String: "s"}, "s"},
		{Token{Kind: KindBool, Bool: true}, true},
		{Token{Kind: KindNull}, nil},
	} {
		got, err := DecodeValue(src, tc.tok)
		if err != nil || got != tc.want {
			t.Fatalf("%v: got %v, %v", tc.tok.Kind, got, err)
		}
	}
	n, err := DecodeValue(src, Token{Kind: KindNumber, Number: "1.5"})
	if err != nil || n.(interface{ String() string }).String() != "1.5" {
		t.Fatalf("number: %v, %v", n, err)
	}
	if _, err := DecodeValue(src, Token{Kind: KindEndArray}); err == nil {
		t.Fatalf("expected error for stray ']'")
	}
}

func TestEnforce_DuplicateKeyPaths(t *testing.T) {
	toks := array(obj("a", "1"), obj("b", "1", "b", "2"))
	var got []SimpleIssue
	src := WrapWithEnforcement(&sliceSource{toks: toks}, EnforceOptions{
		OnDuplicate: DupWarn,
		IssueSink:   func(si SimpleIssue) { got = append(got, si) },
	})
	if _, _, err := drain(src); err != nil {
		t.Fatalf("warn mode must not fail: %v", err)
	}
	if len(got) != 1 || got[0].Path != "/1/b" || got[0].Code != "duplicate_key" {
		t.Fatalf("unexpected issues: %+v", got)
	}

	src = WrapWithEnforcement(&sliceSource{toks: toks}, EnforceOptions{OnDuplicate: DupError})
	_, _, err := drain(src)
	var ie IssueError
	if !errors.As(err, &ie) || ie.Path != "/1/b" {
		t.Fatalf("expected duplicate_key error at /1/b, got %v", err)
	}
}

func TestEnforce_SiblingObjectsDoNotShareKeys(t *testing.T) {
	toks := array(obj("a", "1"), obj("a", "2"))
	src := WrapWithEnforcement(&sliceSource{toks: toks}, EnforceOptions{OnDuplicate: DupError})
	if _, _, err := drain(src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEnforce_Depth(t *testing.T) {
	toks := []Token{
		{Kind: KindBeginObject}, {Kind: KindKey, String: "a"},
		{Kind: KindBeginArray}, {Kind: KindString, String: "x"},
		{Kind: KindBeginObject}, {Kind: KindEndObject},
		{Kind: KindEndArray}, {Kind: KindEndObject},
	}
	src := WrapWithEnforcement(&sliceSource{toks: toks}, EnforceOptions{MaxDepth: 2})
	_, _, err := drain(src)
	var ie IssueError
	if !errors.As(err, &ie) || ie.Path != "/a/1" || ie.Code != "parse_error" {
		t.Fatalf("expected depth error at /a/1, got %v", err)
	}
}

func TestEnforce_MaxBytes(t *testing.T) {
	src := WrapWithEnforcement(&sliceSource{toks: array(obj("a", "1"), obj("b", "2"))}, EnforceOptions{MaxBytes: 3})
	_, _, err := drain(src)
	var ie IssueError
	if !errors.As(err, &ie) || ie.Code != "truncated" {
		t.Fatalf("expected truncated, got %v", err)
	}
}

func TestWrapWithEnforcement_DisabledIsPassthrough(t *testing.T) {
	inner := &sliceSource{}
	if WrapWithEnforcement(inner, EnforceOptions{}) != TokenSource(inner) {
		t.Fatalf("disabled options must return the inner source")
	}
}

func TestFramer(t *testing.T) {
	var f Framer
	if f.Key() {
		t.Fatalf("top-level string is not a key")
	}
	f.Open(true)
	if !f.Key() {
		t.Fatalf("first string in object is a key")
	}
	if f.Key() {
		t.Fatalf("string after key is a value")
	}
	f.Value()
	f.Open(false)
	if f.Key() {
		t.Fatalf("string in array is a value")
	}
	f.Close()
	if !f.Key() {
		t.Fatalf("after nested array closes, object expects a key")
	}
}

func drain(src TokenSource) (int, Token, error) {
	n := 0
	var last Token
	for {
		tok, err := src.NextToken()
		if errors.Is(err, io.EOF) {
			return n, last, nil
		}
		if err != nil {
			return n, last, err
		}
		n++
		last = tok
	}
}
