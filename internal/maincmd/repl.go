package maincmd

import (
	"bufio"
	"context"
	"fmt"

	"github.com/mna/ember/lang/engine"
	"github.com/mna/ember/lang/vm"
	"github.com/mna/mainer"
)

// Repl starts a read-eval-print loop, compiling and interpreting one
// line at a time against a single persistent VM so that globals
// declared on one line stay visible on the next, until EOF on stdin.
func (c *Cmd) Repl(ctx context.Context, stdio mainer.Stdio, args []string) mainer.ExitCode {
	if len(args) > 0 {
		fmt.Fprintln(stdio.Stderr, "repl: unexpected arguments")
		return mainer.ExitCode(64)
	}

	eng := engine.New()
	machine := vm.New(eng, vm.Config{TraceExecution: c.Trace}, stdio.Stdout, stdio.Stderr)

	scan := bufio.NewScanner(stdio.Stdin)
	for {
		fmt.Fprint(stdio.Stdout, "> ")
		if !scan.Scan() {
			break
		}
		machine.Interpret(ctx, scan.Text())
	}
	return mainer.Success
}
