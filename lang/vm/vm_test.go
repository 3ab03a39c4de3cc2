package vm_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/mna/ember/lang/engine"
	"github.com/mna/ember/lang/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, src string) (stdout, stderr string, result vm.Result) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	eng := engine.New()
	machine := vm.New(eng, vm.Config{}, &outBuf, &errBuf)
	res, _ := machine.Interpret(context.Background(), src)
	return outBuf.String(), errBuf.String(), res
}

func TestScenarioArithmeticPrecedence(t *testing.T) {
	out, _, res := run(t, "print 1 + 2 * 3;")
	assert.Equal(t, vm.ResultOK, res)
	assert.Equal(t, "7\n", out)
}

func TestScenarioStringInterningEquality(t *testing.T) {
	out, _, res := run(t, `var a = "foo"; var b = "foo"; print a == b;`)
	assert.Equal(t, vm.ResultOK, res)
	assert.Equal(t, "true\n", out)
}

func TestScenarioRecursiveFibonacci(t *testing.T) {
	out, _, res := run(t, `
fun fib(n) { if (n < 2) return n; return fib(n-1) + fib(n-2); }
print fib(10);
`)
	assert.Equal(t, vm.ResultOK, res)
	assert.Equal(t, "55\n", out)
}

func TestScenarioForLoopPrinting(t *testing.T) {
	out, _, res := run(t, `for (var i = 0; i < 3; i = i + 1) print i;`)
	assert.Equal(t, vm.ResultOK, res)
	assert.Equal(t, "0\n1\n2\n", out)
}

func TestScenarioNilVariable(t *testing.T) {
	out, _, res := run(t, `var x; print x;`)
	assert.Equal(t, vm.ResultOK, res)
	assert.Equal(t, "nil\n", out)
}

func TestScenarioStringPlusNumberRuntimeError(t *testing.T) {
	_, errOut, res := run(t, `"a" + 1;`)
	assert.Equal(t, vm.ResultRuntimeError, res)
	assert.Contains(t, errOut, "Operands must be two numbers or two strings.")
}

func TestScopePrintsInnerThenOuter(t *testing.T) {
	out, _, res := run(t, `var x = 1; { var x = 2; print x; } print x;`)
	assert.Equal(t, vm.ResultOK, res)
	assert.Equal(t, "2\n1\n", out)
}

func TestUndefinedGlobalGet(t *testing.T) {
	_, errOut, res := run(t, `print missing;`)
	assert.Equal(t, vm.ResultRuntimeError, res)
	assert.Contains(t, errOut, "Undefined variable 'missing'.")
}

func TestUndefinedGlobalSetDoesNotImplicitlyDeclare(t *testing.T) {
	_, errOut, res := run(t, `missing = 1;`)
	assert.Equal(t, vm.ResultRuntimeError, res)
	assert.Contains(t, errOut, "Undefined variable 'missing'.")
}

func TestNegateRequiresNumber(t *testing.T) {
	_, errOut, res := run(t, `-"nope";`)
	assert.Equal(t, vm.ResultRuntimeError, res)
	assert.Contains(t, errOut, "Operand must be a number.")
}

func TestComparisonRequiresNumbers(t *testing.T) {
	_, errOut, res := run(t, `print "a" < 1;`)
	assert.Equal(t, vm.ResultRuntimeError, res)
	assert.Contains(t, errOut, "Operands must be numbers.")
}

func TestRuntimeErrorIncludesStackTrace(t *testing.T) {
	_, errOut, res := run(t, `
fun f() { return 1 + "x"; }
f();
`)
	assert.Equal(t, vm.ResultRuntimeError, res)
	assert.Contains(t, errOut, "[line")
	assert.Contains(t, errOut, "in f")
}

func TestStackOverflowOnDeepRecursion(t *testing.T) {
	_, errOut, res := run(t, `
fun recurse(n) { return recurse(n + 1); }
recurse(0);
`)
	assert.Equal(t, vm.ResultRuntimeError, res)
	assert.Contains(t, errOut, "Stack overflow.")
}

func TestCallArityMismatch(t *testing.T) {
	_, errOut, res := run(t, `
fun add(a, b) { return a + b; }
add(1);
`)
	assert.Equal(t, vm.ResultRuntimeError, res)
	assert.Contains(t, errOut, "Expected 2 arguments but got 1.")
}

func TestCallNonFunction(t *testing.T) {
	_, errOut, res := run(t, `
var notAFunction = 1;
notAFunction();
`)
	assert.Equal(t, vm.ResultRuntimeError, res)
	assert.Contains(t, errOut, "Can only call functions.")
}

func TestCompileErrorPropagates(t *testing.T) {
	_, _, res := run(t, `print ;`)
	assert.Equal(t, vm.ResultCompileError, res)
}

func TestMultipleStatementsPrintInOrder(t *testing.T) {
	eng := engine.New()
	var outBuf, errBuf bytes.Buffer
	machine := vm.New(eng, vm.Config{}, &outBuf, &errBuf)
	src := strings.Join([]string{
		`var a = 1;`,
		`var b = 2;`,
		`print a + b;`,
		`if (a < b) { print "lt"; } else { print "ge"; }`,
	}, "\n")
	res, err := machine.Interpret(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, vm.ResultOK, res)
	assert.Equal(t, "3\nlt\n", outBuf.String())
}

func TestCancellationSurfacesAsRuntimeError(t *testing.T) {
	eng := engine.New()
	var outBuf, errBuf bytes.Buffer
	machine := vm.New(eng, vm.Config{}, &outBuf, &errBuf)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := machine.Interpret(ctx, `print 1;`)
	assert.Equal(t, vm.ResultRuntimeError, res)
	require.Error(t, err)
}

func TestTraceExecutionWritesToStderr(t *testing.T) {
	eng := engine.New()
	var outBuf, errBuf bytes.Buffer
	machine := vm.New(eng, vm.Config{TraceExecution: true}, &outBuf, &errBuf)
	_, err := machine.Interpret(context.Background(), `print 1;`)
	require.NoError(t, err)
	assert.Contains(t, errBuf.String(), "OP_PRINT")
}
