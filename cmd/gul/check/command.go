package check

import (
	"context"
	"flag"
	"fmt"

	"github.com/gul-lang/gul/cmd/gul/root"
	"github.com/gul-lang/gul/compiler"
	"github.com/gul-lang/gul/pkg/charm"
	"go.uber.org/zap"
)

var spec = &charm.Spec{
	Name:  "check",
	Usage: "check file ...",
	Short: "run the front end over files and report diagnostics",
	Long: `
This command parses, ownership-checks, and lowers each file, printing
any diagnostics.  Files are processed concurrently; results are
reported in path order.
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
	logger := c.Logger()
	defer logger.Sync()
	results, err := compiler.CompileFiles(context.Background(), args...)
	if err != nil {
		return err
	}
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Printf("%s\n", r.Err)
			continue
		}
		logger.Info("ok", zap.String("path", r.Path), zap.Int("nodes", len(r.Graph.Nodes)))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(results))
	}
	return nil
}
