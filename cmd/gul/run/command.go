package run

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gul-lang/gul/cmd/gul/root"
	"github.com/gul-lang/gul/compiler"
	"github.com/gul-lang/gul/compiler/parser"
	"github.com/gul-lang/gul/pkg/charm"
	"github.com/gul-lang/gul/runtime"
	"github.com/gul-lang/gul/runtime/exec"
)

var spec = &charm.Spec{
	Name:  "run",
	Usage: "run file [ name=value ... ]",
	Short: "run a program and print its outputs",
	Long: `
This command runs the full pipeline on a source file and prints the
value collected at each declared graph output.  External inputs are
bound from name=value arguments; values parse as integers, floats, or
booleans when they look like one and as strings otherwise.
`,
	New: New,
}

func init() {
	root.Gul.Add(spec)
}

type Command struct {
	*root.Command
}

func New(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	return &Command{Command: parent.(*root.Command)}, nil
}

func (c *Command) Run(args []string) error {
	if len(args) == 0 {
		return charm.NeedHelp
	}
	path := args[0]
	inputs, err := parseInputs(args[1:])
	if err != nil {
		return err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	kind, err := parser.KindFromPath(path)
	if err != nil {
		return err
	}
	a, err := compiler.Parse(path, string(src), kind)
	if err != nil {
		return err
	}
	if err := compiler.Check(a); err != nil {
		return err
	}
	g, err := compiler.Lower(a)
	if err != nil {
		return err
	}
	rctx := runtime.DefaultContext()
	defer rctx.Cancel()
	values, err := compiler.Execute(rctx, g, inputs)
	if err != nil {
		return err
	}
	for i, o := range g.Outputs {
		fmt.Printf("%s = %s\n", o.Name, values[i])
	}
	return nil
}

// parseInputs converts name=value arguments to runtime values.
func parseInputs(args []string) (map[string]exec.Value, error) {
	inputs := make(map[string]exec.Value, len(args))
	for _, arg := range args {
		name, raw, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("%s: input must have the form name=value", arg)
		}
		inputs[name] = parseValue(raw)
	}
	return inputs, nil
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
