package root

import (
	"flag"

	"github.com/gul-lang/gul/pkg/charm"
	"go.uber.org/zap"
)

var Gul = &charm.Spec{
	Name:  "gul",
	Usage: "gul <command> [options]",
	Short: "compile and run GUL programs",
	Long: `
The "gul" command compiles GUL source files through the front-end
pipeline: tokenizing, parsing, ownership checking, and lowering into a
dataflow graph that the executor schedules in topological order.

File kinds are selected by extension: .mn for main files, .def for
definition files, and .frag for fragments.
`,
	New: New,
}

type Command struct {
	verbose bool
}

func New(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	c := &Command{}
	f.BoolVar(&c.verbose, "v", false, "enable verbose logging")
	return c, nil
}

func (c *Command) Run(args []string) error {
	return charm.NoRun(args)
}

// Logger builds the command logger: development output when verbose,
// otherwise silent.
func (c *Command) Logger() *zap.Logger {
	if c.verbose {
		return zap.Must(zap.NewDevelopment())
	}
	return zap.NewNop()
}
