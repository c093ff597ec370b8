package repl

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/gul-lang/gul/cmd/gul/root"
	"github.com/gul-lang/gul/compiler"
	"github.com/gul-lang/gul/compiler/parser"
	"github.com/gul-lang/gul/pkg/charm"
	"github.com/peterh/liner"
)

var spec = &charm.Spec{
	Name:  "repl",
	Usage: "repl",
	Short: "interactively evaluate GUL fragments",
	Long: `
This command reads fragment lines, runs them through the full pipeline,
and prints the resulting output values.  The session accumulates: each
accepted line is replayed with the lines before it, so let bindings
persist.  A line that fails is reported and dropped.
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
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	var session []string
	shown := 0
	for {
		input, err := line.Prompt("gul> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				return nil
			}
			return err
		}
		if strings.TrimSpace(input) == "" {
			continue
		}
		line.AppendHistory(input)
		trial := append(session[:len(session):len(session)], input)
		src := strings.Join(trial, "\n") + "\n"
		values, err := compiler.Run(context.Background(), "<repl>", src, parser.Fragment, nil)
		if err != nil {
			fmt.Println(err)
			continue
		}
		session = trial
		for _, v := range values[shown:] {
			fmt.Println(v)
		}
		shown = len(values)
	}
}
