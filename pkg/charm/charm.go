// Package charm is a minimalist CLI framework inspired by cobra and
// urfave/cli.  Commands form a tree of Specs; each Spec constructs a
// Command with its flags bound, and leaf commands run with the
// remaining arguments.
package charm

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
)

var (
	NeedHelp = errors.New("help")
	ErrNoRun = errors.New("no run method")
)

type Constructor func(Command, *flag.FlagSet) (Command, error)

type Command interface {
	Run([]string) error
}

type Spec struct {
	Name     string
	Usage    string
	Short    string
	Long     string
	New      Constructor
	children []*Spec
	parent   *Spec
}

func (s *Spec) Add(child *Spec) {
	s.children = append(s.children, child)
	child.parent = s
}

func (s *Spec) lookupSub(name string) *Spec {
	for _, child := range s.children {
		if name == child.Name {
			return child
		}
	}
	return nil
}

// Exec walks the command tree matching subcommand names, binding each
// level's flags, and runs the deepest command reached.
func (s *Spec) Exec(args []string) error {
	cmd, rest, err := s.bind(nil, args)
	if err == nil {
		err = cmd.Run(rest)
	}
	if err == NeedHelp {
		s.displayHelp()
		return nil
	}
	return err
}

func (s *Spec) bind(parent Command, args []string) (Command, []string, error) {
	f := flag.NewFlagSet(s.Name, flag.ContinueOnError)
	f.Usage = func() {}
	cmd, err := s.New(parent, f)
	if err != nil {
		return nil, nil, err
	}
	if err := f.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, nil, NeedHelp
		}
		return nil, nil, err
	}
	rest := f.Args()
	if len(rest) > 0 {
		if rest[0] == "help" {
			return nil, nil, NeedHelp
		}
		if child := s.lookupSub(rest[0]); child != nil {
			return child.bind(cmd, rest[1:])
		}
	}
	return cmd, rest, nil
}

func (s *Spec) displayHelp() {
	w := os.Stdout
	fmt.Fprintf(w, "usage: %s\n", s.Usage)
	if long := strings.TrimSpace(s.Long); long != "" {
		fmt.Fprintf(w, "\n%s\n", long)
	}
	if len(s.children) > 0 {
		fmt.Fprintf(w, "\ncommands:\n")
		for _, child := range s.children {
			fmt.Fprintf(w, "  %-10s %s\n", child.Name, child.Short)
		}
	}
}

// NoRun is the Run method of interior commands that only dispatch to
// children.
func NoRun(args []string) error {
	if len(args) == 0 {
		return NeedHelp
	}
	return ErrNoRun
}
