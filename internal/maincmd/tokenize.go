package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/ember/lang/scanner"
	"github.com/mna/ember/lang/token"
	"github.com/mna/mainer"
)

// Tokenize prints the scanner's token stream for a single script file,
// one token per line, without compiling or running it.
func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) mainer.ExitCode {
	if len(args) != 1 {
		fmt.Fprintln(stdio.Stderr, "tokenize: expected exactly one <path>")
		return mainer.ExitCode(64)
	}

	src, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return mainer.ExitCode(74)
	}

	sc := scanner.New(string(src))
	for {
		tok := sc.Scan()
		fmt.Fprintf(stdio.Stdout, "%4d %-12s %q\n", tok.Line, tok.Kind, tok.Lexeme)
		if tok.Kind == token.EOF || tok.Kind == token.ERROR {
			break
		}
	}
	return mainer.Success
}
