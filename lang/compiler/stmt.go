package compiler

import (
	"github.com/mna/ember/lang/chunk"
	"github.com/mna/ember/lang/token"
)

func (p *Parser) declaration() {
	switch {
	case p.match(token.FUN):
		p.funDeclaration()
	case p.match(token.VAR):
		p.varDeclaration()
	default:
		p.statement()
	}

	if p.panicMode {
		p.synchronize()
	}
}

func (p *Parser) funDeclaration() {
	global, nameTok := p.parseVariable("Expect function name.")
	p.markInitialized()
	p.function(typeFunction, nameTok)
	p.defineVariable(global)
}

// function compiles a nested function body into its own funcState, then
// emits the finished Function as a constant in the enclosing chunk.
func (p *Parser) function(ft funcType, nameTok token.Token) {
	p.pushFuncState(ft, nameTok)
	// Params must bind as locals (stack slots), not globals, so the
	// function body counts as a scope from its very first token.
	p.beginScope()

	p.consume(token.LPAREN, "Expect '(' after function name.")
	if !p.check(token.RPAREN) {
		for {
			p.cur.function.Arity++
			if p.cur.function.Arity > 255 {
				p.errorAtCurrent("Can't have more than 255 parameters.")
			}
			paramIdx, _ := p.parseVariable("Expect parameter name.")
			p.defineVariable(paramIdx)
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RPAREN, "Expect ')' after parameters.")
	p.consume(token.LBRACE, "Expect '{' before function body.")
	p.block()

	fn := p.endFuncState()
	p.emitConstant(fn)
}

func (p *Parser) varDeclaration() {
	global, _ := p.parseVariable("Expect variable name.")

	if p.match(token.EQ) {
		p.expression()
	} else {
		p.emitOp(chunk.OpNil)
	}
	p.consume(token.SEMICOLON, "Expect ';' after variable declaration.")

	p.defineVariable(global)
}

func (p *Parser) statement() {
	switch {
	case p.match(token.PRINT):
		p.printStatement()
	case p.match(token.IF):
		p.ifStatement()
	case p.match(token.WHILE):
		p.whileStatement()
	case p.match(token.FOR):
		p.forStatement()
	case p.match(token.RETURN):
		p.returnStatement()
	case p.match(token.LBRACE):
		p.beginScope()
		p.block()
		p.endScope()
	default:
		p.expressionStatement()
	}
}

func (p *Parser) block() {
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		p.declaration()
	}
	p.consume(token.RBRACE, "Expect '}' after block.")
}

func (p *Parser) printStatement() {
	p.expression()
	p.consume(token.SEMICOLON, "Expect ';' after value.")
	p.emitOp(chunk.OpPrint)
}

func (p *Parser) expressionStatement() {
	p.expression()
	p.consume(token.SEMICOLON, "Expect ';' after expression.")
	p.emitOp(chunk.OpPop)
}

func (p *Parser) ifStatement() {
	p.consume(token.LPAREN, "Expect '(' after 'if'.")
	p.expression()
	p.consume(token.RPAREN, "Expect ')' after condition.")

	thenJump := p.emitJump(chunk.OpJumpIfFalse)
	p.emitOp(chunk.OpPop)
	p.statement()

	elseJump := p.emitJump(chunk.OpJump)
	p.patchJump(thenJump)
	p.emitOp(chunk.OpPop)

	if p.match(token.ELSE) {
		p.statement()
	}
	p.patchJump(elseJump)
}

func (p *Parser) whileStatement() {
	loopStart := len(p.currentChunk().Code)
	p.consume(token.LPAREN, "Expect '(' after 'while'.")
	p.expression()
	p.consume(token.RPAREN, "Expect ')' after condition.")

	exitJump := p.emitJump(chunk.OpJumpIfFalse)
	p.emitOp(chunk.OpPop)
	p.statement()
	p.emitLoop(loopStart)

	p.patchJump(exitJump)
	p.emitOp(chunk.OpPop)
}

func (p *Parser) forStatement() {
	p.beginScope()
	p.consume(token.LPAREN, "Expect '(' after 'for'.")

	switch {
	case p.match(token.SEMICOLON):
		// no initializer
	case p.match(token.VAR):
		p.varDeclaration()
	default:
		p.expressionStatement()
	}

	loopStart := len(p.currentChunk().Code)
	exitJump := -1
	if !p.match(token.SEMICOLON) {
		p.expression()
		p.consume(token.SEMICOLON, "Expect ';' after loop condition.")

		exitJump = p.emitJump(chunk.OpJumpIfFalse)
		p.emitOp(chunk.OpPop)
	}

	if !p.match(token.RPAREN) {
		bodyJump := p.emitJump(chunk.OpJump)
		incrementStart := len(p.currentChunk().Code)
		p.expression()
		p.emitOp(chunk.OpPop)
		p.consume(token.RPAREN, "Expect ')' after for clauses.")

		p.emitLoop(loopStart)
		loopStart = incrementStart
		p.patchJump(bodyJump)
	}

	p.statement()
	p.emitLoop(loopStart)

	if exitJump != -1 {
		p.patchJump(exitJump)
		p.emitOp(chunk.OpPop)
	}

	p.endScope()
}

func (p *Parser) returnStatement() {
	if p.cur.funcType == typeScript {
		p.errorAtPrevious("Can't return from top-level code.")
	}

	if p.match(token.SEMICOLON) {
		p.emitReturn()
		return
	}
	p.expression()
	p.consume(token.SEMICOLON, "Expect ';' after return value.")
	p.emitOp(chunk.OpReturn)
}
