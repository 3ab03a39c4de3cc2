// Package compiler implements Ember's single-pass compiler: a Pratt
// precedence parser wired directly to a bytecode emitter, with no
// intermediate syntax tree. It tracks lexical scope (distributing
// variables between a per-function locals array and the VM's globals
// table) and produces a top-level Function value ready for the VM.
package compiler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mna/ember/lang/chunk"
	"github.com/mna/ember/lang/engine"
	"github.com/mna/ember/lang/scanner"
	"github.com/mna/ember/lang/token"
	"github.com/mna/ember/lang/value"
)

// maxLocals is the size of the per-function locals array: locals are
// addressed by a single byte, so a function may declare at most this
// many (including its reserved slot 0).
const maxLocals = 256

// ErrorList collects every compile error reported while compiling a
// single source, in report order. It implements Unwrap() []error so
// callers can use errors.Is/As across the whole batch.
type ErrorList []error

func (el ErrorList) Error() string {
	if len(el) == 1 {
		return el[0].Error()
	}
	var sb strings.Builder
	for i, err := range el {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(err.Error())
	}
	return sb.String()
}

func (el ErrorList) Unwrap() []error { return el }

type funcType int

const (
	typeFunction funcType = iota
	typeScript
)

type localVar struct {
	name  string
	depth int // -1 means "declared, not yet initialized"
}

// funcState holds the compiler state for a single function body (the
// top-level script counts as one). funcStates form a stack via
// enclosing; the innermost is "current".
type funcState struct {
	enclosing *funcState
	function  *chunk.Function
	funcType  funcType

	locals     []localVar
	scopeDepth int
}

// Parser is the single-pass Pratt parser + emitter. It holds the
// scanning cursor (previous/current tokens), error/recovery state, and
// the stack of funcStates being compiled.
type Parser struct {
	eng     *engine.Engine
	scanner *scanner.Scanner

	previous token.Token
	current  token.Token

	errs      ErrorList
	panicMode bool

	cur *funcState
}

// Compile compiles source into a top-level script Function. It returns
// a non-nil error (an ErrorList) if any compile error was reported; in
// that case the returned Function is nil and must not be run.
func Compile(source string, eng *engine.Engine) (*chunk.Function, error) {
	p := &Parser{eng: eng, scanner: scanner.New(source)}
	p.pushFuncState(typeScript, token.Token{})

	p.advance()
	for !p.match(token.EOF) {
		p.declaration()
	}
	fn := p.endFuncState()

	if len(p.errs) > 0 {
		return nil, p.errs
	}
	return fn, nil
}

func (p *Parser) pushFuncState(ft funcType, nameTok token.Token) {
	fs := &funcState{enclosing: p.cur, function: p.eng.NewFunction(), funcType: ft}
	if ft != typeScript {
		fs.function.Name = p.eng.Intern(nameTok.Lexeme)
	}
	// Slot 0 of every function's locals window is reserved (empty name),
	// holding the callee's own stack slot.
	fs.locals = append(fs.locals, localVar{name: "", depth: 0})
	p.cur = fs
}

func (p *Parser) endFuncState() *chunk.Function {
	p.emitReturn()
	fn := p.cur.function
	p.cur = p.cur.enclosing
	return fn
}

func (p *Parser) currentChunk() *chunk.Chunk { return &p.cur.function.Chunk }

// --- token stream ---

func (p *Parser) advance() {
	p.previous = p.current
	for {
		p.current = p.scanner.Scan()
		if p.current.Kind != token.ERROR {
			break
		}
		p.errorAtCurrent(p.current.Lexeme)
	}
}

func (p *Parser) check(kind token.Kind) bool { return p.current.Kind == kind }

func (p *Parser) match(kind token.Kind) bool {
	if !p.check(kind) {
		return false
	}
	p.advance()
	return true
}

func (p *Parser) consume(kind token.Kind, msg string) {
	if p.current.Kind == kind {
		p.advance()
		return
	}
	p.errorAtCurrent(msg)
}

// --- error reporting & recovery ---

func (p *Parser) errorAtCurrent(msg string) { p.errorAt(p.current, msg) }
func (p *Parser) errorAtPrevious(msg string) { p.errorAt(p.previous, msg) }

func (p *Parser) errorAt(tok token.Token, msg string) {
	if p.panicMode {
		return
	}
	p.panicMode = true

	var sb strings.Builder
	fmt.Fprintf(&sb, "[line %d] Error", tok.Line)
	switch tok.Kind {
	case token.EOF:
		sb.WriteString(" at end")
	case token.ERROR:
		// no lexeme location to report
	default:
		fmt.Fprintf(&sb, " at '%s'", tok.Lexeme)
	}
	fmt.Fprintf(&sb, ": %s", msg)
	p.errs = append(p.errs, errors.New(sb.String()))
}

func (p *Parser) synchronize() {
	p.panicMode = false
	for p.current.Kind != token.EOF {
		if p.previous.Kind == token.SEMICOLON {
			return
		}
		switch p.current.Kind {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF, token.WHILE, token.PRINT, token.RETURN:
			return
		}
		p.advance()
	}
}

// --- emitting ---

func (p *Parser) emitByte(b byte)        { p.currentChunk().Write(b, p.previous.Line) }
func (p *Parser) emitOp(op chunk.OpCode) { p.emitByte(byte(op)) }
func (p *Parser) emitOpByte(op chunk.OpCode, b byte) {
	p.emitOp(op)
	p.emitByte(b)
}

func (p *Parser) emitConstant(v value.Value) {
	idx, err := p.currentChunk().AddConstant(v)
	if err != nil {
		p.errorAtPrevious(err.Error())
		return
	}
	p.emitOpByte(chunk.OpConstant, byte(idx))
}

func (p *Parser) emitReturn() {
	p.emitOp(chunk.OpNil)
	p.emitOp(chunk.OpReturn)
}

// emitJump writes op followed by a two-byte placeholder and returns the
// offset of the placeholder, to be patched later.
func (p *Parser) emitJump(op chunk.OpCode) int {
	p.emitOp(op)
	p.emitByte(0xff)
	p.emitByte(0xff)
	return len(p.currentChunk().Code) - 2
}

// patchJump backfills the placeholder at offset with the distance from
// just after it to the current end of the chunk.
func (p *Parser) patchJump(offset int) {
	jump := len(p.currentChunk().Code) - offset - 2
	if jump > 0xffff {
		p.errorAtPrevious("Too much code to jump over.")
		return
	}
	p.currentChunk().Code[offset] = byte((jump >> 8) & 0xff)
	p.currentChunk().Code[offset+1] = byte(jump & 0xff)
}

// emitLoop writes OP_LOOP plus the backward distance to loopStart.
func (p *Parser) emitLoop(loopStart int) {
	p.emitOp(chunk.OpLoop)
	offset := len(p.currentChunk().Code) - loopStart + 2
	if offset > 0xffff {
		p.errorAtPrevious("Loop body too large.")
		return
	}
	p.emitByte(byte((offset >> 8) & 0xff))
	p.emitByte(byte(offset & 0xff))
}

// --- scope & locals ---

func (p *Parser) beginScope() { p.cur.scopeDepth++ }

func (p *Parser) endScope() {
	p.cur.scopeDepth--
	locals := p.cur.locals
	for len(locals) > 0 && locals[len(locals)-1].depth > p.cur.scopeDepth {
		p.emitOp(chunk.OpPop)
		locals = locals[:len(locals)-1]
	}
	p.cur.locals = locals
}

func (p *Parser) identifierConstant(tok token.Token) byte {
	s := p.eng.Intern(tok.Lexeme)
	idx, err := p.currentChunk().AddConstant(s)
	if err != nil {
		p.errorAtPrevious(err.Error())
		return 0
	}
	return byte(idx)
}

// resolveLocal scans locals top-down for name, returning its slot or -1
// if not found among locals (meaning it must be a global).
func (p *Parser) resolveLocal(name string) int {
	locals := p.cur.locals
	for i := len(locals) - 1; i >= 0; i-- {
		if locals[i].name == name {
			if locals[i].depth == -1 {
				p.errorAtPrevious("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

func (p *Parser) declareVariable(name token.Token) {
	if p.cur.scopeDepth == 0 {
		return
	}
	for i := len(p.cur.locals) - 1; i >= 0; i-- {
		local := p.cur.locals[i]
		if local.depth != -1 && local.depth < p.cur.scopeDepth {
			break
		}
		if local.name == name.Lexeme {
			p.errorAtPrevious("Already a variable with this name in this scope.")
		}
	}
	p.addLocal(name.Lexeme)
}

func (p *Parser) addLocal(name string) {
	if len(p.cur.locals) >= maxLocals {
		p.errorAtPrevious("Too many local variables in function (max 256).")
		return
	}
	p.cur.locals = append(p.cur.locals, localVar{name: name, depth: -1})
}

func (p *Parser) markInitialized() {
	if p.cur.scopeDepth == 0 {
		return
	}
	p.cur.locals[len(p.cur.locals)-1].depth = p.cur.scopeDepth
}

// parseVariable consumes an identifier and declares it, returning the
// constant-pool index to use with OP_DEFINE_GLOBAL (0 and meaningless
// for locals) along with the consumed name token.
func (p *Parser) parseVariable(errMsg string) (byte, token.Token) {
	p.consume(token.IDENT, errMsg)
	name := p.previous
	p.declareVariable(name)
	if p.cur.scopeDepth > 0 {
		return 0, name
	}
	return p.identifierConstant(name), name
}

func (p *Parser) defineVariable(global byte) {
	if p.cur.scopeDepth > 0 {
		p.markInitialized()
		return
	}
	p.emitOpByte(chunk.OpDefineGlobal, global)
}

func parseNumber(lexeme string) value.Number {
	f, _ := strconv.ParseFloat(lexeme, 64)
	return value.Number(f)
}
