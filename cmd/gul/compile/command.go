package compile

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/gul-lang/gul/cmd/gul/root"
	"github.com/gul-lang/gul/compiler"
	"github.com/gul-lang/gul/compiler/parser"
	"github.com/gul-lang/gul/pkg/charm"
	"go.uber.org/zap"
)

var spec = &charm.Spec{
	Name:  "compile",
	Usage: "compile [ options ] file",
	Short: "compile a file for inspection and debugging",
	Long: `
This command runs a source file through the front end and emits the
resulting abstract syntax tree (AST) or dataflow graph as JSON.  Use
"-dag" for the graph form; otherwise the AST form is emitted.  The
"-dag" form runs the ownership checker first, so a file that violates
the linear-use rules fails here the same way "run" would.
`,
	New: New,
}

func init() {
	root.Gul.Add(spec)
}

type Command struct {
	*root.Command
	dag bool
}

func New(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	c := &Command{Command: parent.(*root.Command)}
	f.BoolVar(&c.dag, "dag", false, "emit the dataflow graph instead of the AST")
	return c, nil
}

func (c *Command) Run(args []string) error {
	if len(args) != 1 {
		return charm.NeedHelp
	}
	logger := c.Logger()
	defer logger.Sync()
	path := args[0]
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	a, err := parser.ParseFile(path, string(src))
	if err != nil {
		return err
	}
	logger.Info("parsed", zap.String("path", path), zap.Int("statements", len(a.Body())))
	var out any = a.Body()
	if c.dag {
		if err := compiler.Check(a); err != nil {
			return err
		}
		g, err := compiler.Lower(a)
		if err != nil {
			return err
		}
		logger.Info("lowered", zap.Int("nodes", len(g.Nodes)), zap.Int("edges", len(g.Edges)))
		out = g
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
