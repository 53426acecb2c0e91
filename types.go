package polyjson

// Severity expresses the severity level for duplicate keys.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Error
)

// Strictness configures enforcement for duplicate keys.
type Strictness struct {
	OnDuplicateKey Severity // Warn or Error (duplicate JSON keys).
}

// DecodeOpt bundles decoding options. The zero value is the permissive
// default: duplicate keys ignored (last wins), no depth or size limit, no
// field validation.
type DecodeOpt struct {
	Strictness Strictness
	MaxDepth   int
	MaxBytes   int64
	// Strict runs the per-field validation tags of the resolved shape after
	// decoding. Off by default: a missing field decodes to "".
	Strict bool
	// EnvelopeKey names the payload member of envelope objects. Defaults to
	// DefaultEnvelopeKey.
	EnvelopeKey string
	// Observer receives resolution and failure events; nil disables it.
	Observer Observer
	// OnWarning receives non-fatal issues such as duplicate keys in Warn mode.
	OnWarning func(Issue)
}

// DefaultEnvelopeKey is the payload member read by DecodeEnvelopes.
const DefaultEnvelopeKey = "Properties"

// Observer is notified about decoder outcomes. Implementations must be safe
// for concurrent use.
type Observer interface {
	// Resolved is called once per object returned by a successful decode
	// call, in input order. rule is the index of the matching rule, or -1
	// when the fallback was used. Objects of an aborted call are not
	// reported.
	Resolved(base string, shape Tag, rule int)
	// Failed is called once when a decode call aborts.
	Failed(base string, code string)
}
