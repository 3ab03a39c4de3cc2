package maincmd_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/ember/internal/maincmd"
	"github.com/mna/mainer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stdio(stdin string) (mainer.Stdio, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return mainer.Stdio{
		Stdin:  bytes.NewBufferString(stdin),
		Stdout: &out,
		Stderr: &errOut,
	}, &out, &errOut
}

func writeScript(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.ember")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestRunSuccess(t *testing.T) {
	path := writeScript(t, "print 1 + 2;")
	io, out, _ := stdio("")
	c := maincmd.Cmd{}
	code := c.Main([]string{"ember", "run", path}, io)
	assert.Equal(t, mainer.Success, code)
	assert.Equal(t, "3\n", out.String())
}

func TestRunCompileError(t *testing.T) {
	path := writeScript(t, "print ;")
	io, _, _ := stdio("")
	c := maincmd.Cmd{}
	code := c.Main([]string{"ember", "run", path}, io)
	assert.EqualValues(t, 65, code)
}

func TestRunRuntimeError(t *testing.T) {
	path := writeScript(t, `"a" + 1;`)
	io, _, errOut := stdio("")
	c := maincmd.Cmd{}
	code := c.Main([]string{"ember", "run", path}, io)
	assert.EqualValues(t, 70, code)
	assert.Contains(t, errOut.String(), "Operands must be two numbers or two strings.")
}

func TestRunMissingFile(t *testing.T) {
	io, _, _ := stdio("")
	c := maincmd.Cmd{}
	code := c.Main([]string{"ember", "run", filepath.Join(t.TempDir(), "missing.ember")}, io)
	assert.EqualValues(t, 74, code)
}

func TestRunTooManyPaths(t *testing.T) {
	io, _, _ := stdio("")
	c := maincmd.Cmd{}
	code := c.Main([]string{"ember", "run", "a.ember", "b.ember"}, io)
	assert.EqualValues(t, 64, code)
}

func TestUnknownCommand(t *testing.T) {
	io, _, errOut := stdio("")
	c := maincmd.Cmd{}
	code := c.Main([]string{"ember", "bogus"}, io)
	assert.EqualValues(t, 64, code)
	assert.Contains(t, errOut.String(), "invalid arguments")
}

func TestReplEchoesPersistentGlobals(t *testing.T) {
	io, out, _ := stdio("var x = 1;\nprint x + 1;\n")
	c := maincmd.Cmd{}
	code := c.Main([]string{"ember", "repl"}, io)
	assert.Equal(t, mainer.Success, code)
	assert.Contains(t, out.String(), "2\n")
}

func TestTokenize(t *testing.T) {
	path := writeScript(t, "print 1;")
	io, out, _ := stdio("")
	c := maincmd.Cmd{}
	code := c.Main([]string{"ember", "tokenize", path}, io)
	assert.Equal(t, mainer.Success, code)
	assert.Contains(t, out.String(), "print")
	assert.Contains(t, out.String(), "number literal")
}

func TestDisassemble(t *testing.T) {
	path := writeScript(t, "print 1 + 2;")
	io, out, _ := stdio("")
	c := maincmd.Cmd{}
	code := c.Main([]string{"ember", "disassemble", path}, io)
	assert.Equal(t, mainer.Success, code)
	assert.Contains(t, out.String(), "OP_ADD")
}

func TestHelpAndVersion(t *testing.T) {
	io, out, _ := stdio("")
	c := maincmd.Cmd{BuildVersion: "0.1.0", BuildDate: "2026-07-31"}
	code := c.Main([]string{"ember", "--help"}, io)
	assert.Equal(t, mainer.Success, code)
	assert.Contains(t, out.String(), "usage:")

	io2, out2, _ := stdio("")
	code = c.Main([]string{"ember", "--version"}, io2)
	assert.Equal(t, mainer.Success, code)
	assert.Contains(t, out2.String(), "0.1.0")
}
