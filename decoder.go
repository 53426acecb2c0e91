package polyjson

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/reoring/polyjson/i18n"
	eng "github.com/reoring/polyjson/internal/engine"
)

// Decoder turns JSON objects declared as a base shape into Values of the shape
// the Registry resolves them to. A Decoder holds no per-call state and may be
// used from many goroutines.
type Decoder struct {
	reg *Registry
	opt DecodeOpt
}

// NewDecoder returns a Decoder over reg. When several options are passed the
// last one wins.
func NewDecoder(reg *Registry, opts ...DecodeOpt) *Decoder {
	d := &Decoder{reg: reg}
	if len(opts) > 0 {
		d.opt = opts[len(opts)-1]
	}
	if d.opt.EnvelopeKey == "" {
		d.opt.EnvelopeKey = DefaultEnvelopeKey
	}
	return d
}

// Registry returns the registry the decoder resolves against.
func (d *Decoder) Registry() *Registry { return d.reg }

// DecodeOne decodes a single object. Fields the resolved shape declares are
// read by name; absent or null fields are left empty and unknown members are
// ignored.
func (d *Decoder) DecodeOne(base string, obj map[string]any) (*Value, error) {
	var log resolutions
	v, err := d.decodeObject(base, obj, obj, -1, "", &log)
	if err != nil {
		d.failed(base, err)
		return nil, err
	}
	d.resolved(base, log)
	return v, nil
}

// DecodeMany decodes each element of arr in order. The result has the same
// length and index correspondence as arr. The first failing element aborts
// the call.
func (d *Decoder) DecodeMany(base string, arr []any) ([]*Value, error) {
	if err := d.reg.check(base); err != nil {
		d.failed(base, err)
		return nil, err
	}
	var log resolutions
	out := make([]*Value, 0, len(arr))
	for i, el := range arr {
		v, err := d.decodeElement(base, el, i, &log)
		if err != nil {
			d.failed(base, err)
			return nil, err
		}
		out = append(out, v)
	}
	d.resolved(base, log)
	return out, nil
}

// DecodeBytes decodes a JSON document holding one object or an array of
// objects.
func (d *Decoder) DecodeBytes(base string, data []byte) ([]*Value, error) {
	return d.DecodeFrom(base, JSONBytes(data))
}

// DecodeReader is DecodeBytes over an io.Reader.
func (d *Decoder) DecodeReader(base string, r io.Reader) ([]*Value, error) {
	return d.DecodeFrom(base, JSONReader(r))
}

// DecodeFrom decodes a Source holding one object or an array of objects.
// Array elements are decoded as they are read, so a malformed element stops
// the call before later input is consumed.
func (d *Decoder) DecodeFrom(base string, src Source) ([]*Value, error) {
	if err := d.reg.check(base); err != nil {
		d.failed(base, err)
		return nil, err
	}
	var (
		out []*Value
		log resolutions
	)
	err := d.stream(src, func(el any, idx int) error {
		v, err := d.decodeElement(base, el, idx, &log)
		if err != nil {
			return err
		}
		out = append(out, v)
		return nil
	})
	if err != nil {
		d.failed(base, err)
		return nil, err
	}
	d.resolved(base, log)
	if out == nil {
		out = []*Value{}
	}
	return out, nil
}

// Envelope pairs a decoded value with the discriminator tag it was selected
// by. Tag always equals Value.Tag().
type Envelope struct {
	Tag   Tag
	Value *Value
}

// DecodeEnvelope decodes an object whose rules are evaluated against the
// object itself while the fields are read from its payload member
// (DecodeOpt.EnvelopeKey). A missing or null payload decodes to empty fields.
func (d *Decoder) DecodeEnvelope(base string, obj map[string]any) (Envelope, error) {
	var log resolutions
	env, err := d.decodeEnvelope(base, obj, -1, &log)
	if err != nil {
		d.failed(base, err)
		return Envelope{}, err
	}
	d.resolved(base, log)
	return env, nil
}

// DecodeEnvelopes decodes a Source holding one envelope object or an array of
// them.
func (d *Decoder) DecodeEnvelopes(base string, src Source) ([]Envelope, error) {
	if err := d.reg.check(base); err != nil {
		d.failed(base, err)
		return nil, err
	}
	var log resolutions
	out := []Envelope{}
	err := d.stream(src, func(el any, idx int) error {
		obj, err := asObject(el, idx)
		if err != nil {
			return err
		}
		env, err := d.decodeEnvelope(base, obj, idx, &log)
		if err != nil {
			return err
		}
		out = append(out, env)
		return nil
	})
	if err != nil {
		d.failed(base, err)
		return nil, err
	}
	d.resolved(base, log)
	return out, nil
}

func (d *Decoder) decodeEnvelope(base string, obj map[string]any, idx int, log *resolutions) (Envelope, error) {
	key := d.opt.EnvelopeKey
	var payload map[string]any
	switch p := obj[key].(type) {
	case nil:
		payload = map[string]any{}
	case map[string]any:
		payload = p
	default:
		return Envelope{}, decodeErr(idx, typeIssue(pointer(idx, key), "expected object", p))
	}
	v, err := d.decodeObject(base, obj, payload, idx, pointer(idx, key), log)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Tag: v.Tag(), Value: v}, nil
}

func (d *Decoder) decodeElement(base string, el any, idx int, log *resolutions) (*Value, error) {
	obj, err := asObject(el, idx)
	if err != nil {
		return nil, err
	}
	return d.decodeObject(base, obj, obj, idx, pointer(idx, ""), log)
}

// resolutions buffers observer events until the call succeeds.
type resolutions []resolution

type resolution struct {
	shape Tag
	rule  int
}

// decodeObject resolves the shape from disc and reads its fields from fields.
func (d *Decoder) decodeObject(base string, disc, fields map[string]any, idx int, at string, log *resolutions) (*Value, error) {
	shape, rule, err := d.reg.resolve(base, disc)
	if err != nil {
		return nil, err
	}
	v := NewValue(shape)
	for i, name := range shape.all {
		switch fv := fields[name].(type) {
		case nil:
		case string:
			v.fields[i] = fv
		default:
			return nil, decodeErr(idx, typeIssue(joinAt(at, name), "expected string", fv))
		}
	}
	if d.opt.Strict {
		if iss := validateValue(v, idx, at); len(iss) > 0 {
			return nil, &DecodeError{Index: idx, Issues: iss}
		}
	}
	if d.opt.Observer != nil {
		*log = append(*log, resolution{shape: shape.Tag(), rule: rule})
	}
	return v, nil
}

// stream feeds each top-level element of src to fn, translating token and
// enforcement errors into DecodeErrors.
func (d *Decoder) stream(src Source, fn func(el any, idx int) error) error {
	ts := eng.WrapWithEnforcement(engineTokenSource(src), eng.EnforceOptions{
		OnDuplicate: toEngineDup(d.opt.Strictness.OnDuplicateKey),
		MaxDepth:    d.opt.MaxDepth,
		MaxBytes:    d.opt.MaxBytes,
		IssueSink:   d.warnSink(),
	})
	st := eng.NewStream(ts)
	for {
		el, idx, err := st.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return tokenError(idx, err)
		}
		if err := fn(el, idx); err != nil {
			return err
		}
	}
}

func (d *Decoder) warnSink() func(eng.SimpleIssue) {
	if d.opt.OnWarning == nil {
		return nil
	}
	return func(si eng.SimpleIssue) {
		d.opt.OnWarning(Issue{Path: si.Path, Code: si.Code, Message: i18n.T(si.Code, nil), Hint: si.Message, Offset: si.Offset})
	}
}

func (d *Decoder) resolved(base string, log resolutions) {
	if d.opt.Observer == nil {
		return
	}
	for _, r := range log {
		d.opt.Observer.Resolved(base, r.shape, r.rule)
	}
}

func (d *Decoder) failed(base string, err error) {
	if d.opt.Observer != nil {
		d.opt.Observer.Failed(base, errorCode(err))
	}
}

func toEngineDup(s Severity) eng.DuplicateStrictness {
	switch s {
	case Error:
		return eng.DupError
	case Warn:
		return eng.DupWarn
	default:
		return eng.DupIgnore
	}
}

func tokenError(idx int, err error) error {
	var ie eng.IssueError
	if errors.As(err, &ie) {
		is := newIssue(ie.Code, ie.Path, ie.Message)
		is.Offset = ie.Offset
		return decodeErr(idx, is)
	}
	is := newIssue(CodeParseError, pointer(idx, ""), err.Error())
	is.Cause = err
	var se *eng.SyntaxError
	if errors.As(err, &se) {
		is.Offset = se.Offset
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		is.Hint = "unexpected end of input"
	}
	return decodeErr(idx, is)
}

func asObject(el any, idx int) (map[string]any, error) {
	obj, ok := el.(map[string]any)
	if !ok {
		return nil, decodeErr(idx, typeIssue(pointer(idx, ""), "expected object", el))
	}
	return obj, nil
}

func typeIssue(at, hint string, got any) Issue {
	return newIssue(CodeInvalidType, at, fmt.Sprintf("%s, got %s", hint, jsonKind(got)))
}

// pointer renders the JSON Pointer of member key inside element idx.
func pointer(idx int, key string) string {
	p := ""
	if idx >= 0 {
		p = "/" + strconv.Itoa(idx)
	}
	if key != "" {
		p = eng.JoinPointer(p, key)
	}
	return p
}

func joinAt(at, key string) string { return eng.JoinPointer(at, key) }

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		return "number"
	}
}

var (
	validatorInstance *validator.Validate
	validatorOnce     sync.Once
)

func getValidator() *validator.Validate {
	validatorOnce.Do(func() {
		validatorInstance = validator.New()
	})
	return validatorInstance
}

// validateValue runs the shape's validation tags against each field.
func validateValue(v *Value, idx int, at string) Issues {
	var iss Issues
	validate := getValidator()
	for i, name := range v.shape.all {
		tag, ok := v.shape.checks[name]
		if !ok || tag == "" {
			continue
		}
		err := validate.Var(v.fields[i], tag)
		if err == nil {
			continue
		}
		is := newIssue(CodeValidation, joinAt(at, name), tag)
		is.Message = i18n.T(CodeValidation, map[string]string{"field": name})
		var ves validator.ValidationErrors
		if errors.As(err, &ves) && len(ves) > 0 {
			is.Hint = ves[0].Tag()
		} else {
			is.Cause = err
		}
		iss = AppendIssues(iss, is)
	}
	return iss
}

// ---- Default registry helpers ----

// DecodeOne decodes obj against the Default registry.
func DecodeOne(base string, obj map[string]any) (*Value, error) {
	return NewDecoder(Default).DecodeOne(base, obj)
}

// DecodeMany decodes arr against the Default registry.
func DecodeMany(base string, arr []any) ([]*Value, error) {
	return NewDecoder(Default).DecodeMany(base, arr)
}

// DecodeBytes decodes a JSON document against the Default registry.
func DecodeBytes(base string, data []byte, opts ...DecodeOpt) ([]*Value, error) {
	return NewDecoder(Default, opts...).DecodeBytes(base, data)
}
