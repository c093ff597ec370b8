// Package ztest runs formulaic end-to-end tests defined in YAML files.
// A ztest feeds a source text through the whole pipeline and checks
// either the values collected at the graph outputs or the diagnostic
// code of the expected failure:
//
//	- name: add
//	  source: |
//	    let x = 1 + 2
//	  outputs:
//	    - "3"
//
//	- name: use-after-move
//	  source: |
//	    let x = [1]
//	    let y = x
//	    let z = x
//	  error: UseAfterMove
//
// The kind field selects the file-kind grammar (main, definition, or
// fragment); fragment is the default.  The inputs map seeds external
// inputs by name.
package ztest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"testing"

	"github.com/gul-lang/gul/compiler"
	"github.com/gul-lang/gul/compiler/diag"
	"github.com/gul-lang/gul/compiler/parser"
	"github.com/gul-lang/gul/runtime/exec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type Test struct {
	Name    string            `yaml:"name"`
	Source  string            `yaml:"source"`
	Kind    string            `yaml:"kind,omitempty"`
	Inputs  map[string]string `yaml:"inputs,omitempty"`
	Outputs []string          `yaml:"outputs,omitempty"`
	Error   string            `yaml:"error,omitempty"`
}

// FromYAMLFile loads a YAML file holding a list of tests.
func FromYAMLFile(path string) ([]Test, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tests []Test
	if err := yaml.Unmarshal(b, &tests); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for i, t := range tests {
		if t.Name == "" {
			return nil, fmt.Errorf("%s: test %d has no name", path, i)
		}
	}
	return tests, nil
}

func (t *Test) Run(tt *testing.T) {
	kind := parser.Fragment
	switch t.Kind {
	case "", "fragment":
	case "main":
		kind = parser.Main
	case "definition":
		kind = parser.Definition
	default:
		tt.Fatalf("unknown file kind %q", t.Kind)
	}
	inputs := make(map[string]exec.Value, len(t.Inputs))
	for name, raw := range t.Inputs {
		inputs[name] = parseValue(raw)
	}
	values, err := compiler.Run(context.Background(), t.Name, t.Source, kind, inputs)
	if t.Error != "" {
		require.Error(tt, err)
		assert.Contains(tt, codesOf(tt, err), diag.Code(t.Error))
		return
	}
	require.NoError(tt, err)
	var got []string
	for _, v := range values {
		got = append(got, v.String())
	}
	assert.Equal(tt, t.Outputs, got)
}

func codesOf(tt *testing.T, err error) []diag.Code {
	var list diag.Errors
	if errors.As(err, &list) {
		codes := make([]diag.Code, len(list))
		for i, d := range list {
			codes[i] = d.Code
		}
		return codes
	}
	var d *diag.Diagnostic
	if errors.As(err, &d) {
		return []diag.Code{d.Code}
	}
	tt.Fatalf("error carries no diagnostic code: %v", err)
	return nil
}

func parseValue(raw string) exec.Value {
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return exec.Int(v)
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return exec.Float(v)
	}
	if v, err := strconv.ParseBool(raw); err == nil {
		return exec.Bool(v)
	}
	return exec.String(raw)
}
