package config_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	polyjson "github.com/reoring/polyjson"
	"github.com/reoring/polyjson/config"
)

func TestLoadFile(t *testing.T) {
	reg, err := config.LoadFile("testdata/myapi.yaml")
	require.NoError(t, err)
	assert.True(t, reg.Frozen())
	assert.Equal(t, []string{"Base", "MyType"}, reg.Bases())

	rules := reg.Rules("MyType")
	require.Len(t, rules, 2)
	vr, ok := rules[1].(polyjson.ValueRule)
	require.True(t, ok)
	assert.Equal(t, "1", vr.Value)

	dec := polyjson.NewDecoder(reg)
	vals, err := dec.DecodeBytes("MyType", []byte(`[{"Type":1,"DerivedPropA":"x"},{"Type":"MyType"}]`))
	require.NoError(t, err)
	assert.Equal(t, polyjson.Tag("MyTypeVariant"), vals[0].Tag())
	assert.Equal(t, polyjson.Tag("MyType"), vals[1].Tag())

	fb, ok := reg.Fallback("Base")
	assert.True(t, ok)
	assert.Equal(t, "Base", fb)
}

func TestLoad_ValidateTagsReachStrictMode(t *testing.T) {
	reg, err := config.LoadFile("testdata/myapi.yaml")
	require.NoError(t, err)
	dec := polyjson.NewDecoder(reg, polyjson.DecodeOpt{Strict: true})
	_, err = dec.DecodeBytes("Base", []byte(`[{"DerivedPropA":null}]`))
	iss, ok := polyjson.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, polyjson.CodeValidation, iss[0].Code)
	assert.Equal(t, "/0/DerivedPropA", iss[0].Path)
}

func TestLoad_JSONDocument(t *testing.T) {
	doc := `{"shapes":[{"name":"A","fields":["x"]}],"registry":[{"shape":"A","fallback":"A"}]}`
	reg, err := config.LoadBytes([]byte(doc))
	require.NoError(t, err)
	s, ok := reg.Shape("A")
	require.True(t, ok)
	assert.Equal(t, []string{"x"}, s.AllFields())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		config bool // expect a ConfigurationError or Issues
		substr string
	}{
		{name: "empty", doc: "", substr: "empty document"},
		{name: "unknown key", doc: "shapes: [{name: A}]\nextra: 1\n", substr: "extra"},
		{name: "missing shapes", doc: "registry: []\n", substr: "Shapes"},
		{name: "missing fallback", doc: "shapes: [{name: A}]\nregistry: [{shape: A}]\n", substr: "Fallback"},
		{name: "rule without kind", doc: "shapes: [{name: A}]\nregistry: [{shape: A, fallback: A, rules: [{field: f, target: A}]}]\n", config: true},
		{name: "rule with both kinds", doc: "shapes: [{name: A}]\nregistry: [{shape: A, fallback: A, rules: [{field: f, presence: true, equals: x, target: A}]}]\n", config: true},
		{name: "non scalar equals", doc: "shapes: [{name: A}]\nregistry: [{shape: A, fallback: A, rules: [{field: f, equals: [1], target: A}]}]\n", config: true},
		{name: "undefined parent", doc: "shapes: [{name: B, extends: A}]\n", config: true},
		{name: "undefined target", doc: "shapes: [{name: A}]\nregistry: [{shape: A, fallback: A, rules: [{field: f, presence: true, target: Z}]}]\n", config: true},
		{name: "unrelated fallback", doc: "shapes: [{name: A}, {name: B}]\nregistry: [{shape: A, fallback: B}]\n", config: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(strings.NewReader(tt.doc))
			require.Error(t, err)
			if tt.config {
				var ce *polyjson.ConfigurationError
				_, isIssues := polyjson.AsIssues(err)
				assert.True(t, errors.As(err, &ce) || isIssues, "unexpected error type: %v", err)
			}
			if tt.substr != "" {
				assert.Contains(t, err.Error(), tt.substr)
			}
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := config.LoadFile("testdata/nope.yaml")
	assert.Error(t, err)
}
