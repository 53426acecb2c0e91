package polyjson

import (
	"io"
	"sync"

	eng "github.com/reoring/polyjson/internal/engine"
	"github.com/reoring/polyjson/source/gojson"
	jsonsrc "github.com/reoring/polyjson/source/json"
)

// TokenKind enumerates JSON token kinds.
type TokenKind int

const (
	TokenBeginObject TokenKind = iota
	TokenEndObject
	TokenBeginArray
	TokenEndArray
	TokenKey
	TokenString
	TokenNumber
	TokenBool
	TokenNull
)

// Token describes a token in the input stream. Offset records the byte position
// when known (-1 otherwise).
type Token struct {
	Kind   TokenKind
	String string // Stored for key/string tokens.
	Number string // Literal text of number tokens.
	Bool   bool
	Offset int64
}

// Source is a pull-based JSON token stream. Implementations return io.EOF
// after the last token.
type Source interface {
	NextToken() (Token, error)
	Location() int64 // byte offset; -1 if unknown
}

// JSONDriver converts JSON input into a Source. The default implementation is
// backed by goccy/go-json and may be swapped with SetJSONDriver.
type JSONDriver interface {
	NewReader(r io.Reader) Source
	NewBytes(b []byte) Source
	Name() string
}

var (
	jsonDriverMu      sync.RWMutex
	currentJSONDriver JSONDriver = goJSONDriver{}
)

// SetJSONDriver replaces the global JSON driver; nil values are ignored.
func SetJSONDriver(d JSONDriver) {
	if d == nil {
		return
	}
	jsonDriverMu.Lock()
	currentJSONDriver = d
	jsonDriverMu.Unlock()
}

// UseDefaultJSONDriver restores the go-json backed driver.
func UseDefaultJSONDriver() { SetJSONDriver(goJSONDriver{}) }

// CurrentJSONDriver returns the driver used by JSONBytes and JSONReader.
func CurrentJSONDriver() JSONDriver {
	jsonDriverMu.RLock()
	defer jsonDriverMu.RUnlock()
	return currentJSONDriver
}

// GoJSONDriver returns the default driver, backed by goccy/go-json.
func GoJSONDriver() JSONDriver { return goJSONDriver{} }

// StdJSONDriver returns a driver backed by encoding/json.
func StdJSONDriver() JSONDriver { return stdJSONDriver{} }

type goJSONDriver struct{}

func (goJSONDriver) NewReader(r io.Reader) Source { return fromEngine(gojson.NewReader(r)) }
func (goJSONDriver) NewBytes(b []byte) Source     { return fromEngine(gojson.NewBytes(b)) }
func (goJSONDriver) Name() string                 { return "go-json" }

type stdJSONDriver struct{}

func (stdJSONDriver) NewReader(r io.Reader) Source { return fromEngine(jsonsrc.NewReader(r)) }
func (stdJSONDriver) NewBytes(b []byte) Source     { return fromEngine(jsonsrc.NewBytes(b)) }
func (stdJSONDriver) Name() string                 { return "encoding/json" }

// JSONReader wraps an io.Reader as a JSON Source.
func JSONReader(r io.Reader) Source { return CurrentJSONDriver().NewReader(r) }

// JSONBytes wraps a byte slice as a JSON Source.
func JSONBytes(b []byte) Source { return CurrentJSONDriver().NewBytes(b) }

// ---- Source <-> engine.TokenSource adapters ----
// TokenKind mirrors the order of engine.Kind, so kinds convert directly.

type engineSourceAdapter struct{ inner eng.TokenSource }

func fromEngine(inner eng.TokenSource) Source { return &engineSourceAdapter{inner: inner} }

func (s *engineSourceAdapter) NextToken() (Token, error) {
	t, err := s.inner.NextToken()
	if err != nil {
		return Token{}, err
	}
	return Token{Kind: TokenKind(t.Kind), String: t.String, Number: t.Number, Bool: t.Bool, Offset: t.Offset}, nil
}

func (s *engineSourceAdapter) Location() int64 { return s.inner.Location() }

type tokenSourceAdapter struct{ inner Source }

func (a *tokenSourceAdapter) NextToken() (eng.Token, error) {
	t, err := a.inner.NextToken()
	if err != nil {
		return eng.Token{}, err
	}
	return eng.Token{Kind: eng.Kind(t.Kind), String: t.String, Number: t.Number, Bool: t.Bool, Offset: t.Offset}, nil
}

func (a *tokenSourceAdapter) Location() int64 { return a.inner.Location() }

// engineTokenSource unwraps engine-backed sources to avoid an adapter round-trip.
func engineTokenSource(s Source) eng.TokenSource {
	if ea, ok := s.(*engineSourceAdapter); ok {
		return ea.inner
	}
	return &tokenSourceAdapter{inner: s}
}
