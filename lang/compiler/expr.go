package compiler

import (
	"github.com/mna/ember/lang/chunk"
	"github.com/mna/ember/lang/token"
)

// Precedence ascends from loosest to tightest binding.
type Precedence int

//nolint:revive
const (
	PrecNone       Precedence = iota
	PrecAssignment            // =
	PrecOr                    // or
	PrecAnd                   // and
	PrecEquality              // == !=
	PrecComparison            // < > <= >=
	PrecTerm                  // + -
	PrecFactor                // * /
	PrecUnary                 // ! -
	PrecCall                  // . ()
	PrecPrimary
)

type parseFn func(p *Parser, canAssign bool)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence Precedence
}

// rules is filled in init: the parse functions it holds refer back to
// it through getRule, so a package-level initializer would be a cycle.
var rules map[token.Kind]parseRule

func init() { rules = buildRules() }

func buildRules() map[token.Kind]parseRule {
	m := map[token.Kind]parseRule{
		token.LPAREN:    {prefix: grouping},
		token.MINUS:     {prefix: unary, infix: binary, precedence: PrecTerm},
		token.PLUS:      {infix: binary, precedence: PrecTerm},
		token.SLASH:     {infix: binary, precedence: PrecFactor},
		token.STAR:      {infix: binary, precedence: PrecFactor},
		token.BANG:      {prefix: unary},
		token.BANG_EQ:   {infix: binary, precedence: PrecEquality},
		token.EQ_EQ:     {infix: binary, precedence: PrecEquality},
		token.GT:        {infix: binary, precedence: PrecComparison},
		token.GT_EQ:     {infix: binary, precedence: PrecComparison},
		token.LT:        {infix: binary, precedence: PrecComparison},
		token.LT_EQ:     {infix: binary, precedence: PrecComparison},
		token.IDENT:     {prefix: variable},
		token.STRING:    {prefix: strLiteral},
		token.NUMBER:    {prefix: number},
		token.AND:       {infix: and_, precedence: PrecAnd},
		token.OR:        {infix: or_, precedence: PrecOr},
		token.FALSE:     {prefix: literal},
		token.TRUE:      {prefix: literal},
		token.NIL:       {prefix: literal},
	}
	// call is parsed as an infix rule on LPAREN at PrecCall.
	r := m[token.LPAREN]
	r.infix = call
	r.precedence = PrecCall
	m[token.LPAREN] = r
	return m
}

func (p *Parser) getRule(kind token.Kind) parseRule { return rules[kind] }

func (p *Parser) expression() { p.parsePrecedence(PrecAssignment) }

func (p *Parser) parsePrecedence(prec Precedence) {
	p.advance()
	prefixRule := p.getRule(p.previous.Kind).prefix
	if prefixRule == nil {
		p.errorAtPrevious("Expect expression.")
		return
	}

	canAssign := prec <= PrecAssignment
	prefixRule(p, canAssign)

	for prec <= p.getRule(p.current.Kind).precedence {
		p.advance()
		infixRule := p.getRule(p.previous.Kind).infix
		infixRule(p, canAssign)
	}

	if canAssign && p.match(token.EQ) {
		p.errorAtPrevious("Invalid assignment target.")
	}
}

func number(p *Parser, _ bool) {
	p.emitConstant(parseNumber(p.previous.Lexeme))
}

func strLiteral(p *Parser, _ bool) {
	lit := p.previous.Lexeme
	interior := lit[1 : len(lit)-1] // strip the surrounding quotes
	s := p.eng.Intern(interior)
	p.emitConstant(s)
}

func literal(p *Parser, _ bool) {
	switch p.previous.Kind {
	case token.FALSE:
		p.emitOp(chunk.OpFalse)
	case token.NIL:
		p.emitOp(chunk.OpNil)
	case token.TRUE:
		p.emitOp(chunk.OpTrue)
	}
}

func grouping(p *Parser, _ bool) {
	p.expression()
	p.consume(token.RPAREN, "Expect ')' after expression.")
}

func unary(p *Parser, _ bool) {
	opKind := p.previous.Kind
	p.parsePrecedence(PrecUnary)
	switch opKind {
	case token.MINUS:
		p.emitOp(chunk.OpNegate)
	case token.BANG:
		p.emitOp(chunk.OpNot)
	}
}

func binary(p *Parser, _ bool) {
	opKind := p.previous.Kind
	rule := p.getRule(opKind)
	p.parsePrecedence(rule.precedence + 1)

	switch opKind {
	case token.PLUS:
		p.emitOp(chunk.OpAdd)
	case token.MINUS:
		p.emitOp(chunk.OpSubtract)
	case token.STAR:
		p.emitOp(chunk.OpMultiply)
	case token.SLASH:
		p.emitOp(chunk.OpDivide)
	case token.BANG_EQ:
		p.emitOp(chunk.OpEqual)
		p.emitOp(chunk.OpNot)
	case token.EQ_EQ:
		p.emitOp(chunk.OpEqual)
	case token.GT:
		p.emitOp(chunk.OpGreater)
	case token.GT_EQ:
		p.emitOp(chunk.OpLess)
		p.emitOp(chunk.OpNot)
	case token.LT:
		p.emitOp(chunk.OpLess)
	case token.LT_EQ:
		p.emitOp(chunk.OpGreater)
		p.emitOp(chunk.OpNot)
	}
}

func and_(p *Parser, _ bool) {
	endJump := p.emitJump(chunk.OpJumpIfFalse)
	p.emitOp(chunk.OpPop)
	p.parsePrecedence(PrecAnd)
	p.patchJump(endJump)
}

func or_(p *Parser, _ bool) {
	elseJump := p.emitJump(chunk.OpJumpIfFalse)
	endJump := p.emitJump(chunk.OpJump)
	p.patchJump(elseJump)
	p.emitOp(chunk.OpPop)
	p.parsePrecedence(PrecOr)
	p.patchJump(endJump)
}

func variable(p *Parser, canAssign bool) {
	p.namedVariable(p.previous, canAssign)
}

func (p *Parser) namedVariable(name token.Token, canAssign bool) {
	var getOp, setOp chunk.OpCode
	arg := p.resolveLocal(name.Lexeme)
	if arg != -1 {
		getOp, setOp = chunk.OpGetLocal, chunk.OpSetLocal
	} else {
		arg = int(p.identifierConstant(name))
		getOp, setOp = chunk.OpGetGlobal, chunk.OpSetGlobal
	}

	if canAssign && p.match(token.EQ) {
		p.expression()
		p.emitOpByte(setOp, byte(arg))
	} else {
		p.emitOpByte(getOp, byte(arg))
	}
}

func call(p *Parser, _ bool) {
	argCount := p.argumentList()
	p.emitOpByte(chunk.OpCall, byte(argCount))
}

func (p *Parser) argumentList() int {
	count := 0
	if !p.check(token.RPAREN) {
		for {
			p.expression()
			if count == 255 {
				p.errorAtPrevious("Can't have more than 255 arguments.")
			}
			count++
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RPAREN, "Expect ')' after arguments.")
	return count
}
