// Package maincmd implements the ember command-line tool: argument
// parsing and dispatch via github.com/mna/mainer, mirroring the
// reference implementation's reflection-based buildCmds shape.
package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mna/mainer"
)

const binName = "ember"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <command> [<path>...]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <command> [<path>...]
       %[1]s -h|--help
       %[1]s -v|--version

Compiler and virtual machine for the %[1]s programming language.

The <command> can be one of:
       run [<path>]              Compile and run a script; with no path,
                                 starts the REPL.
       repl                      Start the read-eval-print loop.
       tokenize <path>           Print the token stream for a script.
       disassemble <path>        Compile a script and print its
                                 disassembled bytecode, without running it.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
       --trace                   Trace every instruction executed by the
                                 VM to stderr (also EMBER_TRACE=1).

Exit codes: 0 ok, 64 usage error, 65 compile error, 70 runtime error,
74 I/O error.
`, binName)
)

// Cmd is the ember command-line tool, bound to its flags by
// mainer.Parser and dispatched by command name via buildCmds.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`
	Trace   bool `flag:"trace"`

	args  []string
	flags map[string]bool
	cmdFn func(context.Context, mainer.Stdio, []string) mainer.ExitCode
}

func (c *Cmd) SetArgs(args []string) {
	c.args = args
}

func (c *Cmd) SetFlags(flags map[string]bool) {
	c.flags = flags
}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}

	if len(c.args) == 0 {
		return errors.New("no command specified")
	}

	cmdName := c.args[0]
	commands := buildCmds(c)
	c.cmdFn = commands[cmdName]
	if c.cmdFn == nil {
		return fmt.Errorf("unknown command: %s", cmdName)
	}
	return nil
}

// Main is the CLI entry point: parse flags, dispatch to the resolved
// command, translate the result into a process exit code.
func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   true,
		EnvPrefix: strings.ToUpper(binName) + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.ExitCode(64)
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success

	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	return c.cmdFn(ctx, stdio, c.args[1:])
}

// buildCmds collects every method on v with the signature
// func(context.Context, mainer.Stdio, []string) mainer.ExitCode, keyed
// by its lower-cased method name (so Cmd.Run becomes "run", etc.).
func buildCmds(v interface{}) map[string]func(context.Context, mainer.Stdio, []string) mainer.ExitCode {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) mainer.ExitCode)

	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		mt := m.Type

		if mt.NumIn() != 4 || mt.NumOut() != 1 {
			continue
		}
		if rt := mt.Out(0); rt.Name() != "ExitCode" {
			continue
		}
		if p0 := mt.In(0); p0.Kind() != reflect.Ptr || p0.Elem().Name() != "Cmd" {
			continue
		}
		if p1 := mt.In(1); p1.Kind() != reflect.Interface || p1.Name() != "Context" {
			continue
		}
		if p2 := mt.In(2); p2.Kind() != reflect.Struct || p2.Name() != "Stdio" {
			continue
		}
		if p3 := mt.In(3); p3.Kind() != reflect.Slice || p3.Elem().Name() != "string" {
			continue
		}
		cmds[strings.ToLower(m.Name)] = vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) mainer.ExitCode)
	}
	return cmds
}
