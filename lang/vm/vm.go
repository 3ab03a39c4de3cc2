// Package vm implements Ember's stack-based bytecode interpreter: a
// single dispatch loop over call frames sharing one value stack, with
// a globals table and the compiler's shared Engine for string
// interning and function allocation.
package vm

import (
	"context"
	"fmt"
	"io"

	"github.com/mna/ember/lang/chunk"
	"github.com/mna/ember/lang/compiler"
	"github.com/mna/ember/lang/engine"
	"github.com/mna/ember/lang/table"
	"github.com/mna/ember/lang/value"
)

// maxFrames bounds call depth; the 65th nested call is a runtime error.
const maxFrames = 64

// Result is the outcome of an Interpret call, reported to the host.
type Result int

const (
	ResultOK Result = iota
	ResultCompileError
	ResultRuntimeError
)

func (r Result) String() string {
	switch r {
	case ResultOK:
		return "OK"
	case ResultCompileError:
		return "COMPILE_ERROR"
	case ResultRuntimeError:
		return "RUNTIME_ERROR"
	default:
		return "UNKNOWN"
	}
}

// Config toggles optional VM behavior.
type Config struct {
	// TraceExecution, when set, writes a disassembled line for every
	// instruction executed to Stderr before it runs (mirrors clox's
	// DEBUG_TRACE_EXECUTION, exposed here as a runtime toggle instead of
	// a compile-time flag).
	TraceExecution bool
}

// callFrame is a single active invocation: the Function being run, its
// instruction pointer (a byte offset into Function.Chunk.Code), and the
// base slot of its window into the shared value stack.
type callFrame struct {
	function *chunk.Function
	ip       int
	slotBase int
}

// VM holds all interpreter state: the shared Engine (string interning
// and object allocation), the globals table, the value stack, and the
// active call frames. One VM interprets one source at a time via
// Interpret; Stdout/Stderr route `print` output and diagnostics.
type VM struct {
	eng     *engine.Engine
	cfg     Config
	stdout  io.Writer
	stderr  io.Writer
	globals table.Table

	stack  []value.Value
	frames []callFrame
}

// New returns a VM sharing eng with whatever Compiler produced the
// source it will run, writing `print` output to stdout and diagnostics
// to stderr.
func New(eng *engine.Engine, cfg Config, stdout, stderr io.Writer) *VM {
	return &VM{eng: eng, cfg: cfg, stdout: stdout, stderr: stderr}
}

// Interpret compiles source and, on success, runs it to completion or
// to the first runtime error. ctx is checked between instructions so a
// host can cancel a runaway script; cancellation surfaces as a runtime
// error.
func (vm *VM) Interpret(ctx context.Context, source string) (Result, error) {
	fn, err := compiler.Compile(source, vm.eng)
	if err != nil {
		fmt.Fprintln(vm.stderr, err)
		return ResultCompileError, err
	}

	vm.stack = vm.stack[:0]
	vm.frames = vm.frames[:0]

	vm.push(fn)
	vm.frames = append(vm.frames, callFrame{function: fn, ip: 0, slotBase: 0})

	return vm.run(ctx)
}

func (vm *VM) push(v value.Value) { vm.stack = append(vm.stack, v) }

func (vm *VM) pop() value.Value {
	n := len(vm.stack) - 1
	v := vm.stack[n]
	vm.stack = vm.stack[:n]
	return v
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[len(vm.stack)-1-distance]
}

func (vm *VM) frame() *callFrame { return &vm.frames[len(vm.frames)-1] }

// run executes the dispatch loop for the current call-frame stack. A
// single runtimeErr variable carries a pending error out of the
// instruction switch, following the same "in-flight error breaks the
// loop" shape as the teacher's run() loop.
func (vm *VM) run(ctx context.Context) (Result, error) {
	var runtimeErr error

loop:
	for {
		select {
		case <-ctx.Done():
			runtimeErr = fmt.Errorf("interpreter cancelled: %w", ctx.Err())
			break loop
		default:
		}

		fr := vm.frame()
		code := fr.function.Chunk.Code

		if vm.cfg.TraceExecution {
			line, _ := fr.function.Chunk.DisassembleInstruction(fr.ip)
			fmt.Fprintln(vm.stderr, line)
		}

		op := chunk.OpCode(code[fr.ip])
		fr.ip++

		switch op {
		case chunk.OpConstant:
			idx := vm.readByte()
			vm.push(fr.function.Chunk.Constants[idx])

		case chunk.OpNil:
			vm.push(value.Nil)

		case chunk.OpTrue:
			vm.push(value.True)

		case chunk.OpFalse:
			vm.push(value.False)

		case chunk.OpPop:
			vm.pop()

		case chunk.OpGetLocal:
			slot := vm.readByte()
			vm.push(vm.stack[fr.slotBase+int(slot)])

		case chunk.OpSetLocal:
			slot := vm.readByte()
			vm.stack[fr.slotBase+int(slot)] = vm.peek(0)

		case chunk.OpGetGlobal:
			name := vm.readStringConstant()
			v, ok := vm.globals.Get(name)
			if !ok {
				runtimeErr = vm.runtimeError("Undefined variable '%s'.", name.Chars)
				break loop
			}
			vm.push(v)

		case chunk.OpDefineGlobal:
			name := vm.readStringConstant()
			vm.globals.Set(name, vm.peek(0))
			vm.pop()

		case chunk.OpSetGlobal:
			name := vm.readStringConstant()
			if vm.globals.Set(name, vm.peek(0)) {
				// Set reports whether name was previously absent: SET must
				// not implicitly declare, so undo the insert and error.
				vm.globals.Delete(name)
				runtimeErr = vm.runtimeError("Undefined variable '%s'.", name.Chars)
				break loop
			}

		case chunk.OpEqual:
			b := vm.pop()
			a := vm.pop()
			vm.push(value.Bool(value.Equal(a, b)))

		case chunk.OpGreater, chunk.OpLess:
			b, ok1 := vm.peek(0).(value.Number)
			a, ok2 := vm.peek(1).(value.Number)
			if !ok1 || !ok2 {
				runtimeErr = vm.runtimeError("Operands must be numbers.")
				break loop
			}
			vm.pop()
			vm.pop()
			if op == chunk.OpGreater {
				vm.push(value.Bool(a > b))
			} else {
				vm.push(value.Bool(a < b))
			}

		case chunk.OpAdd:
			bVal := vm.peek(0)
			aVal := vm.peek(1)
			switch bv := bVal.(type) {
			case value.Number:
				av, ok := aVal.(value.Number)
				if !ok {
					runtimeErr = vm.runtimeError("Operands must be two numbers or two strings.")
					break loop
				}
				vm.pop()
				vm.pop()
				vm.push(av + bv)
			case *value.String:
				av, ok := aVal.(*value.String)
				if !ok {
					runtimeErr = vm.runtimeError("Operands must be two numbers or two strings.")
					break loop
				}
				vm.pop()
				vm.pop()
				vm.push(vm.eng.Intern(av.Chars + bv.Chars))
			default:
				runtimeErr = vm.runtimeError("Operands must be two numbers or two strings.")
				break loop
			}

		case chunk.OpSubtract, chunk.OpMultiply, chunk.OpDivide:
			b, ok1 := vm.peek(0).(value.Number)
			a, ok2 := vm.peek(1).(value.Number)
			if !ok1 || !ok2 {
				runtimeErr = vm.runtimeError("Operands must be numbers.")
				break loop
			}
			vm.pop()
			vm.pop()
			switch op {
			case chunk.OpSubtract:
				vm.push(a - b)
			case chunk.OpMultiply:
				vm.push(a * b)
			case chunk.OpDivide:
				vm.push(a / b)
			}

		case chunk.OpNot:
			vm.push(value.Bool(value.Falsy(vm.pop())))

		case chunk.OpNegate:
			n, ok := vm.peek(0).(value.Number)
			if !ok {
				runtimeErr = vm.runtimeError("Operand must be a number.")
				break loop
			}
			vm.pop()
			vm.push(-n)

		case chunk.OpPrint:
			fmt.Fprintln(vm.stdout, vm.pop().String())

		case chunk.OpJump:
			offset := vm.readShort()
			fr.ip += int(offset)

		case chunk.OpJumpIfFalse:
			offset := vm.readShort()
			if value.Falsy(vm.peek(0)) {
				fr.ip += int(offset)
			}

		case chunk.OpLoop:
			offset := vm.readShort()
			fr.ip -= int(offset)

		case chunk.OpCall:
			argCount := int(vm.readByte())
			if err := vm.callValue(vm.peek(argCount), argCount); err != nil {
				runtimeErr = err
				break loop
			}

		case chunk.OpReturn:
			result := vm.pop()
			vm.frames = vm.frames[:len(vm.frames)-1]
			if len(vm.frames) == 0 {
				vm.pop() // the script Function pushed by Interpret
				return ResultOK, nil
			}
			vm.stack = vm.stack[:fr.slotBase]
			vm.push(result)

		default:
			runtimeErr = vm.runtimeError("unknown opcode %s", op)
			break loop
		}
	}

	vm.stack = vm.stack[:0]
	vm.frames = vm.frames[:0]
	return ResultRuntimeError, runtimeErr
}

func (vm *VM) readByte() byte {
	fr := vm.frame()
	b := fr.function.Chunk.Code[fr.ip]
	fr.ip++
	return b
}

func (vm *VM) readShort() uint16 {
	fr := vm.frame()
	hi := fr.function.Chunk.Code[fr.ip]
	lo := fr.function.Chunk.Code[fr.ip+1]
	fr.ip += 2
	return uint16(hi)<<8 | uint16(lo)
}

func (vm *VM) readStringConstant() *value.String {
	idx := vm.readByte()
	return vm.frame().function.Chunk.Constants[idx].(*value.String)
}

// callValue invokes callee with argCount arguments already sitting on
// top of the stack (with callee itself just beneath them), pushing a
// new call frame on success.
func (vm *VM) callValue(callee value.Value, argCount int) error {
	fn, ok := callee.(*chunk.Function)
	if !ok {
		return vm.runtimeError("Can only call functions.")
	}
	if argCount != fn.Arity {
		return vm.runtimeError("Expected %d arguments but got %d.", fn.Arity, argCount)
	}
	if len(vm.frames) == maxFrames {
		return vm.runtimeError("Stack overflow.")
	}
	vm.frames = append(vm.frames, callFrame{
		function: fn,
		ip:       0,
		slotBase: len(vm.stack) - argCount - 1,
	})
	return nil
}

// runtimeError formats msg, prints it followed by a frame-by-frame
// stack trace to stderr, and returns the error to propagate as
// ResultRuntimeError. The caller is responsible for breaking the
// dispatch loop; run resets the stack and frames once it observes the
// returned error.
func (vm *VM) runtimeError(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(vm.stderr, msg)

	for i := len(vm.frames) - 1; i >= 0; i-- {
		fr := &vm.frames[i]
		line := fr.function.Chunk.Lines[fr.ip-1]
		name := "script"
		if fr.function.Name != nil {
			name = fr.function.Name.Chars
		}
		fmt.Fprintf(vm.stderr, "[line %d] in %s\n", line, name)
	}

	return fmt.Errorf("%s", msg)
}
