package token_test

import (
	"testing"
	"text/scanner"

	"github.com/brimlang/brim/token"
	"github.com/stretchr/testify/assert"
)

func TestListAtPastEnd(t *testing.T) {
	list := &token.List{Tokens: []token.Token{
		{Kind: token.Word, Str: "x", Pos: scanner.Position{Line: 1, Column: 1}},
		{Kind: token.Newline, Pos: scanner.Position{Line: 1, Column: 2}},
	}}

	assert.Equal(t, token.Word, list.KindAt(0))
	assert.Equal(t, token.Newline, list.KindAt(1))
	assert.Equal(t, token.None, list.KindAt(2))
	assert.Equal(t, token.None, list.At(100).Kind)

	// Past-the-end positions report the last token's position.
	assert.Equal(t, 2, list.PosAt(5).Column)
}

func TestLiteralKindPredicates(t *testing.T) {
	for _, kind := range []token.Kind{
		token.ByteLit, token.UbyteLit, token.ShortLit, token.UshortLit,
		token.IntLit, token.UintLit, token.LongLit, token.UlongLit,
		token.UsizeLit, token.GenericInt,
	} {
		assert.True(t, kind.IsIntLiteral(), kind.String())
		assert.False(t, kind.IsFloatLiteral(), kind.String())
	}
	for _, kind := range []token.Kind{
		token.FloatLit, token.DoubleLit, token.GenericFloat,
	} {
		assert.True(t, kind.IsFloatLiteral(), kind.String())
		assert.False(t, kind.IsIntLiteral(), kind.String())
	}
	assert.False(t, token.Word.IsIntLiteral())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "'('", token.Open.String())
	assert.Equal(t, "word", token.Word.String())
	assert.Equal(t, "'while'", token.While.String())
}
