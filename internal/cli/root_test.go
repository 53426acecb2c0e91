package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestDecode_File(t *testing.T) {
	out, _, err := run(t, "", "decode", "--config", "testdata/registry.yaml", "--base", "Base", "testdata/items.json")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"type":"Base","value":{"BaseProp1":"Alpha","BaseProp2":"Bravo","BaseProp3":"Charlie"}}`, lines[0])
	assert.JSONEq(t, `{"type":"Derived","value":{"BaseProp1":"Delta","BaseProp2":"Echo","BaseProp3":"Foxtrot","DerivedPropA":"Golf"}}`, lines[1])
}

func TestDecode_StdinWithStdDriver(t *testing.T) {
	out, _, err := run(t, `{"Type":1,"DerivedPropA":"x"}`, "decode", "--config", "testdata/registry.yaml", "--base", "MyType", "--driver", "std", "-")
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"MyTypeVariant","value":{"BaseProp1":"","BaseProp2":"","BaseProp3":"","DerivedPropA":"x"}}`, strings.TrimSpace(out))
}

func TestDecode_Envelope(t *testing.T) {
	in := `[{"Type":"MyTypeVariant","Body":{"DerivedPropA":"Golf"}}]`
	out, _, err := run(t, in, "decode", "--config", "testdata/registry.yaml", "--base", "MyType", "--envelope", "--envelope-key", "Body")
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"MyTypeVariant","value":{"BaseProp1":"","BaseProp2":"","BaseProp3":"","DerivedPropA":"Golf"}}`, strings.TrimSpace(out))
}

func TestDecode_StrictFailure(t *testing.T) {
	_, _, err := run(t, `[{"DerivedPropA":""}]`, "decode", "--config", "testdata/registry.yaml", "--base", "Base", "--strict")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation at /0/DerivedPropA")
}

func TestDecode_DuplicateWarningsAndVerbose(t *testing.T) {
	out, errOut, err := run(t, `{"BaseProp1":"a","BaseProp1":"b"}`, "-v", "decode", "--config", "testdata/registry.yaml", "--base", "Base", "--duplicates", "warn")
	require.NoError(t, err)
	assert.Contains(t, out, `"BaseProp1":"b"`)
	assert.Contains(t, errOut, "warning: duplicate_key at /BaseProp1")
	assert.Contains(t, errOut, "decode: 1 element(s)")
}

func TestDecode_FlagErrors(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		substr string
	}{
		{name: "missing config", args: []string{"decode", "--base", "Base"}, substr: "config"},
		{name: "bad driver", args: []string{"decode", "--config", "testdata/registry.yaml", "--base", "Base", "--driver", "x"}, substr: "--driver"},
		{name: "bad duplicates", args: []string{"decode", "--config", "testdata/registry.yaml", "--base", "Base", "--duplicates", "x"}, substr: "--duplicates"},
		{name: "unknown base", args: []string{"decode", "--config", "testdata/registry.yaml", "--base", "Nope"}, substr: `base "Nope"`},
		{name: "missing config file", args: []string{"decode", "--config", "testdata/none.yaml", "--base", "Base"}, substr: "load config"},
		{name: "bad lang", args: []string{"--lang", "fr", "rules", "--config", "testdata/registry.yaml"}, substr: "language"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, "[]", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.substr)
		})
	}
}

func TestRules(t *testing.T) {
	out, _, err := run(t, "", "rules", "--config", "testdata/registry.yaml")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.Contains(t, lines[0], "BASE")
	assert.Contains(t, lines[1], "has(DerivedPropA) -> Derived")
	assert.Contains(t, lines[2], "fallback -> Base")
	assert.Contains(t, lines[3], `Type == "MyTypeVariant" -> MyTypeVariant`)
	assert.Contains(t, lines[4], `Type == "1" -> MyTypeVariant`)
	assert.Contains(t, lines[5], "fallback -> MyType")
}
