package maincmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mna/ember/lang/chunk"
	"github.com/mna/ember/lang/compiler"
	"github.com/mna/ember/lang/engine"
	"github.com/mna/mainer"
)

// Disassemble compiles a single script file and prints its
// disassembled bytecode (and that of every nested function it
// defines), without running it.
func (c *Cmd) Disassemble(ctx context.Context, stdio mainer.Stdio, args []string) mainer.ExitCode {
	if len(args) != 1 {
		fmt.Fprintln(stdio.Stderr, "disassemble: expected exactly one <path>")
		return mainer.ExitCode(64)
	}

	src, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return mainer.ExitCode(74)
	}

	eng := engine.New()
	fn, err := compiler.Compile(string(src), eng)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return mainer.ExitCode(65)
	}

	printDisassembled(stdio.Stdout, fn)
	return mainer.Success
}

func printDisassembled(w io.Writer, fn *chunk.Function) {
	name := "<script>"
	if fn.Name != nil {
		name = fn.Name.Chars
	}
	fmt.Fprint(w, fn.Chunk.Disassemble(name))
	for _, c := range fn.Chunk.Constants {
		if nested, ok := c.(*chunk.Function); ok {
			printDisassembled(w, nested)
		}
	}
}
