// Package scanner implements Ember's hand-written lexer. It produces
// tokens lazily from a source buffer, reporting lexical errors as
// error-kind tokens so the parser can recover without a separate error
// channel, per the scanner's single-pass contract.
package scanner

import (
	"github.com/mna/ember/lang/token"
)

// Scanner tokenizes a source buffer on demand, one call to Scan per
// token. It is single-use: create a new Scanner for each source buffer.
type Scanner struct {
	src     string
	start   int // start of the token currently being scanned
	current int // next byte to read
	line    int
}

// New returns a Scanner ready to tokenize src.
func New(src string) *Scanner {
	return &Scanner{src: src, line: 1}
}

// Scan returns the next token in the source. Once EOF is returned,
// subsequent calls keep returning EOF.
func (s *Scanner) Scan() token.Token {
	s.skipWhitespaceAndComments()
	s.start = s.current

	if s.atEnd() {
		return s.make(token.EOF)
	}

	c := s.advance()
	switch {
	case isAlpha(c):
		return s.identifier()
	case isDigit(c):
		return s.number()
	}

	switch c {
	case '(':
		return s.make(token.LPAREN)
	case ')':
		return s.make(token.RPAREN)
	case '{':
		return s.make(token.LBRACE)
	case '}':
		return s.make(token.RBRACE)
	case ';':
		return s.make(token.SEMICOLON)
	case ',':
		return s.make(token.COMMA)
	case '.':
		return s.make(token.DOT)
	case '-':
		return s.make(token.MINUS)
	case '+':
		return s.make(token.PLUS)
	case '/':
		return s.make(token.SLASH)
	case '*':
		return s.make(token.STAR)
	case '!':
		return s.make(s.ifMatch('=', token.BANG_EQ, token.BANG))
	case '=':
		return s.make(s.ifMatch('=', token.EQ_EQ, token.EQ))
	case '<':
		return s.make(s.ifMatch('=', token.LT_EQ, token.LT))
	case '>':
		return s.make(s.ifMatch('=', token.GT_EQ, token.GT))
	case '"':
		return s.string()
	}

	return s.errorf("Unexpected character.")
}

func (s *Scanner) atEnd() bool { return s.current >= len(s.src) }

func (s *Scanner) advance() byte {
	c := s.src[s.current]
	s.current++
	return c
}

func (s *Scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.src[s.current]
}

func (s *Scanner) peekNext() byte {
	if s.current+1 >= len(s.src) {
		return 0
	}
	return s.src[s.current+1]
}

func (s *Scanner) match(want byte) bool {
	if s.atEnd() || s.src[s.current] != want {
		return false
	}
	s.current++
	return true
}

func (s *Scanner) ifMatch(want byte, yes, no token.Kind) token.Kind {
	if s.match(want) {
		return yes
	}
	return no
}

func (s *Scanner) skipWhitespaceAndComments() {
	for {
		if s.atEnd() {
			return
		}
		switch s.peek() {
		case ' ', '\r', '\t':
			s.advance()
		case '\n':
			s.line++
			s.advance()
		case '/':
			if s.peekNext() == '/' {
				for s.peek() != '\n' && !s.atEnd() {
					s.advance()
				}
			} else {
				return
			}
		default:
			return
		}
	}
}

func (s *Scanner) string() token.Token {
	for s.peek() != '"' && !s.atEnd() {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}
	if s.atEnd() {
		return s.errorf("Unterminated string.")
	}
	s.advance() // closing quote
	return s.make(token.STRING)
}

func (s *Scanner) number() token.Token {
	for isDigit(s.peek()) {
		s.advance()
	}
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance() // consume '.'
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	return s.make(token.NUMBER)
}

func (s *Scanner) identifier() token.Token {
	for isAlpha(s.peek()) || isDigit(s.peek()) {
		s.advance()
	}
	lit := s.src[s.start:s.current]
	return s.make(token.LookupIdent(lit))
}

func (s *Scanner) make(kind token.Kind) token.Token {
	return token.Token{Kind: kind, Lexeme: s.src[s.start:s.current], Line: s.line}
}

func (s *Scanner) errorf(msg string) token.Token {
	return token.Token{Kind: token.ERROR, Lexeme: msg, Line: s.line}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool {
	return c == '_' ||
		c >= 'a' && c <= 'z' ||
		c >= 'A' && c <= 'Z'
}
