package polyjson

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/polyjson/i18n"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeConfiguration = "configuration_error"
	CodeNarrowing     = "narrowing_error"
	CodeParseError    = "parse_error"
	CodeInvalidType   = "invalid_type"
	CodeDuplicateKey  = "duplicate_key"
	CodeTruncated     = "truncated"
	CodeValidation    = "validation"
)

// ErrFrozen is returned by registry mutators once Freeze has been called.
var ErrFrozen = errors.New("polyjson: registry is frozen")

// Issue represents a single decode problem.
type Issue struct {
	Path    string // JSON Pointer (for example: /2/BaseProp1).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: expected type, offending shape, etc.
	Cause   error  // Optional: underlying error.
	Offset  int64  // Byte offset in the input source (-1 when unknown).
}

// Issues is a collection of decode problems that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at /0/BaseProp1
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	return append(dst, more...)
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Issues, true
	}
	return nil, false
}

// ConfigurationError reports a registry that cannot serve a decode: a base
// shape without fallback, or a rule pointing at an undefined shape.
type ConfigurationError struct {
	Base   string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("polyjson: %s: base %q: %s", i18n.T(CodeConfiguration, nil), e.Base, e.Reason)
}

// Code returns CodeConfiguration.
func (e *ConfigurationError) Code() string { return CodeConfiguration }

// NarrowingError is returned when a value is viewed as a shape it does not hold.
type NarrowingError struct {
	Have Tag
	Want string
}

func (e *NarrowingError) Error() string {
	return fmt.Sprintf("polyjson: %s: value is %q, not %q", i18n.T(CodeNarrowing, nil), e.Have, e.Want)
}

// Code returns CodeNarrowing.
func (e *NarrowingError) Code() string { return CodeNarrowing }

// DecodeError wraps the issues that aborted a decode call. Index is the array
// element being decoded, or -1 for a single object.
type DecodeError struct {
	Index  int
	Issues Issues
}

func (e *DecodeError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("polyjson: decode element %d: %s", e.Index, e.Issues.Error())
	}
	return "polyjson: decode: " + e.Issues.Error()
}

func (e *DecodeError) Unwrap() error { return e.Issues }

// Code returns the code of the first issue.
func (e *DecodeError) Code() string {
	if len(e.Issues) == 0 {
		return CodeParseError
	}
	return e.Issues[0].Code
}

func newIssue(code, path, hint string) Issue {
	if path == "" {
		path = "/"
	}
	return Issue{Path: path, Code: code, Message: i18n.T(code, nil), Hint: hint, Offset: -1}
}

func decodeErr(index int, iss ...Issue) *DecodeError {
	return &DecodeError{Index: index, Issues: AppendIssues(nil, iss...)}
}

// errorCode reports the code of a polyjson error, falling back to parse_error.
func errorCode(err error) string {
	var c interface{ Code() string }
	if errors.As(err, &c) {
		return c.Code()
	}
	if iss, ok := AsIssues(err); ok && len(iss) > 0 {
		return iss[0].Code
	}
	return CodeParseError
}
