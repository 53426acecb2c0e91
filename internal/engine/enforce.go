package engine

import (
	"strconv"
	"strings"
)

// DuplicateStrictness controls duplicate key handling.
type DuplicateStrictness int

const (
	DupIgnore DuplicateStrictness = iota
	DupWarn
	DupError
)

// SimpleIssue is a minimal issue representation used by internal helpers.
type SimpleIssue struct {
	Code    string
	Path    string
	Message string
	Offset  int64
}

// IssueError is a lightweight error carrying a SimpleIssue.
type IssueError struct{ SimpleIssue }

func (e IssueError) Error() string { return e.SimpleIssue.Message }

// EnforceOptions controls runtime enforcement behavior.
type EnforceOptions struct {
	OnDuplicate DuplicateStrictness
	MaxDepth    int
	MaxBytes    int64
	// IssueSink receives non-fatal issues (duplicate keys in warn mode).
	IssueSink func(SimpleIssue)
}

// Disabled reports whether the options would not enforce anything.
func (o EnforceOptions) Disabled() bool {
	return o.OnDuplicate == DupIgnore && o.MaxDepth == 0 && o.MaxBytes == 0
}

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type frame struct {
	kind       containerKind
	keys       map[string]struct{}
	path       string
	nextIndex  int
	pendingKey string
}

// WrapWithEnforcement returns a TokenSource that enforces the duplicate key
// policy, the maximum nesting depth and the maximum consumed bytes. Issue paths
// are JSON Pointers relative to the top-level value.
func WrapWithEnforcement(inner TokenSource, opt EnforceOptions) TokenSource {
	if opt.Disabled() {
		return inner
	}
	return &enforcingTokenSource{inner: inner, opt: opt}
}

type enforcingTokenSource struct {
	inner TokenSource
	opt   EnforceOptions
	stack []frame
}

func (e *enforcingTokenSource) NextToken() (Token, error) {
	tok, err := e.inner.NextToken()
	if err != nil {
		return Token{}, err
	}

	switch tok.Kind {
	case KindBeginObject, KindBeginArray:
		f := frame{kind: kindArray, path: e.valuePath()}
		if tok.Kind == KindBeginObject {
			f.kind = kindObject
			f.keys = make(map[string]struct{})
		}
		e.stack = append(e.stack, f)
		if e.opt.MaxDepth > 0 && len(e.stack) > e.opt.MaxDepth {
			return Token{}, e.fail("parse_error", f.path, "max depth exceeded")
		}
	case KindEndObject, KindEndArray:
		if n := len(e.stack); n > 0 {
			e.stack = e.stack[:n-1]
		}
		e.valueDone()
	case KindKey:
		if n := len(e.stack); n > 0 {
			top := &e.stack[n-1]
			if _, dup := top.keys[tok.String]; dup && e.opt.OnDuplicate != DupIgnore {
				si := SimpleIssue{Code: "duplicate_key", Path: joinPointer(top.path, tok.String), Message: "key '" + tok.String + "' duplicated", Offset: e.Location()}
				if e.opt.OnDuplicate == DupError {
					return Token{}, IssueError{si}
				}
				if e.opt.IssueSink != nil {
					e.opt.IssueSink(si)
				}
			}
			top.keys[tok.String] = struct{}{}
			top.pendingKey = tok.String
		}
	default:
		e.valuePath()
		e.valueDone()
	}

	if e.opt.MaxBytes > 0 {
		if off := e.Location(); off > e.opt.MaxBytes {
			return Token{}, e.fail("truncated", e.currentPath(), "max bytes exceeded")
		}
	}
	return tok, nil
}

// valuePath returns the pointer of the value starting at the current token and
// advances array indices.
func (e *enforcingTokenSource) valuePath() string {
	n := len(e.stack)
	if n == 0 {
		return ""
	}
	top := &e.stack[n-1]
	if top.kind == kindArray {
		p := joinPointer(top.path, strconv.Itoa(top.nextIndex))
		top.nextIndex++
		return p
	}
	return joinPointer(top.path, top.pendingKey)
}

func (e *enforcingTokenSource) valueDone() {
	if n := len(e.stack); n > 0 && e.stack[n-1].kind == kindObject {
		e.stack[n-1].pendingKey = ""
	}
}

func (e *enforcingTokenSource) currentPath() string {
	if n := len(e.stack); n > 0 {
		return e.stack[n-1].path
	}
	return ""
}

func (e *enforcingTokenSource) fail(code, path, msg string) error {
	return IssueError{SimpleIssue{Code: code, Path: normalizeIssuePath(path), Message: msg, Offset: e.Location()}}
}

func (e *enforcingTokenSource) Location() int64 { return e.inner.Location() }

func normalizeIssuePath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

var jsonPointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// JoinPointer appends an escaped reference token to a JSON Pointer.
func JoinPointer(base, token string) string { return joinPointer(base, token) }

func joinPointer(base, token string) string {
	return base + "/" + jsonPointerEscaper.Replace(token)
}
