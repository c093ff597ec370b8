package main

import (
	"fmt"
	"os"

	_ "github.com/gul-lang/gul/cmd/gul/check"
	_ "github.com/gul-lang/gul/cmd/gul/compile"
	_ "github.com/gul-lang/gul/cmd/gul/repl"
	"github.com/gul-lang/gul/cmd/gul/root"
	_ "github.com/gul-lang/gul/cmd/gul/run"
)

func main() {
	if err := root.Gul.Exec(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
