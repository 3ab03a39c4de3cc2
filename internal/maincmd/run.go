package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/ember/lang/engine"
	"github.com/mna/ember/lang/vm"
	"github.com/mna/mainer"
)

// Run compiles and interprets a single script file, or starts the REPL
// when no path is given.
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) mainer.ExitCode {
	if len(args) == 0 {
		return c.Repl(ctx, stdio, args)
	}
	if len(args) > 1 {
		fmt.Fprintln(stdio.Stderr, "run: expected at most one <path>")
		return mainer.ExitCode(64)
	}

	src, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return mainer.ExitCode(74)
	}

	eng := engine.New()
	machine := vm.New(eng, vm.Config{TraceExecution: c.Trace}, stdio.Stdout, stdio.Stderr)
	res, _ := machine.Interpret(ctx, string(src))
	return resultExitCode(res)
}

func resultExitCode(res vm.Result) mainer.ExitCode {
	switch res {
	case vm.ResultOK:
		return mainer.Success
	case vm.ResultCompileError:
		return mainer.ExitCode(65)
	case vm.ResultRuntimeError:
		return mainer.ExitCode(70)
	default:
		return mainer.Failure
	}
}
