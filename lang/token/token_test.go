package token_test

import (
	"testing"

	"github.com/mna/ember/lang/token"
	"github.com/stretchr/testify/assert"
)

func TestLookupIdent(t *testing.T) {
	cases := []struct {
		lit  string
		kind token.Kind
	}{
		{"and", token.AND},
		{"class", token.CLASS},
		{"for", token.FOR},
		{"fun", token.FUN},
		{"false", token.FALSE},
		{"this", token.THIS},
		{"true", token.TRUE},
		{"while", token.WHILE},
		{"x", token.IDENT},
		{"f", token.IDENT},
		{"forest", token.IDENT},
		{"", token.IDENT},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.kind, token.LookupIdent(tc.lit), "lit=%q", tc.lit)
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "+", token.PLUS.String())
	assert.Equal(t, "end of file", token.EOF.String())
}
