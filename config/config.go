// Package config builds a polyjson registry from a declarative YAML (or JSON)
// table:
//
//	shapes:
//	  - name: Base
//	    fields: [BaseProp1, BaseProp2, BaseProp3]
//	  - name: Derived
//	    extends: Base
//	    fields: [DerivedPropA]
//	    validate: {DerivedPropA: required}
//	registry:
//	  - shape: Base
//	    rules:
//	      - {field: DerivedPropA, presence: true, target: Derived}
//	    fallback: Base
//
// A rule holds either presence: true or equals: <scalar>. Shapes are defined
// in document order, so a parent must be listed before its children.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	polyjson "github.com/reoring/polyjson"
)

// File is the document layout.
type File struct {
	Shapes   []ShapeSpec `yaml:"shapes" validate:"required,dive"`
	Registry []BaseSpec  `yaml:"registry" validate:"dive"`
}

// ShapeSpec declares one shape.
type ShapeSpec struct {
	Name     string            `yaml:"name" validate:"required"`
	Extends  string            `yaml:"extends"`
	Fields   []string          `yaml:"fields" validate:"dive,required"`
	Validate map[string]string `yaml:"validate"`
}

// BaseSpec declares the rules and fallback of one base shape.
type BaseSpec struct {
	Shape    string     `yaml:"shape" validate:"required"`
	Rules    []RuleSpec `yaml:"rules" validate:"dive"`
	Fallback string     `yaml:"fallback" validate:"required"`
}

// RuleSpec declares one discrimination rule.
type RuleSpec struct {
	Field    string     `yaml:"field" validate:"required"`
	Presence bool       `yaml:"presence"`
	Equals   *yaml.Node `yaml:"equals"`
	Target   string     `yaml:"target" validate:"required"`
}

// Rule converts r into a polyjson rule.
func (r RuleSpec) Rule() (polyjson.Rule, error) {
	switch {
	case r.Presence && r.Equals != nil:
		return nil, errors.New("presence and equals are mutually exclusive")
	case r.Presence:
		return polyjson.Present(r.Field, r.Target), nil
	case r.Equals != nil:
		if r.Equals.Kind != yaml.ScalarNode || r.Equals.Tag == "!!null" {
			return nil, fmt.Errorf("equals must be a string or number (line %d)", r.Equals.Line)
		}
		return polyjson.Equals(r.Field, r.Equals.Value, r.Target), nil
	default:
		return nil, errors.New("rule needs presence: true or equals: <value>")
	}
}

// Parse decodes a document without building anything. Unknown keys are
// rejected.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("config: empty document")
		}
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := getValidator().Struct(&f); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &f, nil
}

// Apply defines the shapes and rules of f on reg and validates the result.
// Every failure is reported as a *polyjson.ConfigurationError or
// polyjson.Issues.
func (f *File) Apply(reg *polyjson.Registry) error {
	for _, s := range f.Shapes {
		err := reg.DefineShape(polyjson.Shape{Name: s.Name, Extends: s.Extends, Fields: s.Fields, Validate: s.Validate})
		if err != nil {
			return err
		}
	}
	for _, b := range f.Registry {
		for i, rs := range b.Rules {
			rule, err := rs.Rule()
			if err != nil {
				return &polyjson.ConfigurationError{Base: b.Shape, Reason: fmt.Sprintf("rule %d: %v", i, err)}
			}
			if err := reg.Register(b.Shape, rule); err != nil {
				return err
			}
		}
		if err := reg.SetFallback(b.Shape, b.Fallback); err != nil {
			return err
		}
	}
	return reg.Validate()
}

// Load reads a document from r and returns a frozen registry.
func Load(r io.Reader) (*polyjson.Registry, error) {
	f, err := Parse(r)
	if err != nil {
		return nil, err
	}
	reg := polyjson.NewRegistry()
	if err := f.Apply(reg); err != nil {
		return nil, err
	}
	reg.Freeze()
	return reg, nil
}

// LoadBytes is Load over a byte slice.
func LoadBytes(b []byte) (*polyjson.Registry, error) { return Load(bytes.NewReader(b)) }

// LoadFile is Load over a file.
func LoadFile(path string) (*polyjson.Registry, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	reg, err := Load(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
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
