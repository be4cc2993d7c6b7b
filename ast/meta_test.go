package ast_test

import (
	"testing"

	"github.com/brimlang/brim/ast"
	"github.com/brimlang/brim/symbol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func metaAdd(a, b ast.MetaExpr) ast.MetaExpr {
	return &ast.MetaBinary{Op: ast.MetaAdd, A: a, B: b}
}

func collapse(t *testing.T, defs []ast.MetaDefinition, e ast.MetaExpr) ast.MetaExpr {
	t.Helper()
	collapsed, err := ast.MetaCollapse(defs, e)
	require.NoError(t, err)
	return collapsed
}

func TestMetaAddIntegers(t *testing.T) {
	result := collapse(t, nil, metaAdd(&ast.MetaInt{Value: 1}, &ast.MetaInt{Value: 2}))
	assert.Equal(t, &ast.MetaInt{Value: 3}, result)
}

func TestMetaAddStringPromotion(t *testing.T) {
	result := collapse(t, nil, metaAdd(&ast.MetaStr{Value: "foo"}, &ast.MetaInt{Value: 42}))
	assert.Equal(t, &ast.MetaStr{Value: "foo42"}, result)
}

func TestMetaIntPlusStringUsesIntMode(t *testing.T) {
	// String promotion only applies when the left operand is a string.
	result := collapse(t, nil, metaAdd(&ast.MetaInt{Value: 42}, &ast.MetaStr{Value: "foo"}))
	assert.Equal(t, &ast.MetaInt{Value: 42}, result)
}

func TestMetaPowAlwaysFloat(t *testing.T) {
	result := collapse(t, nil, &ast.MetaBinary{
		Op: ast.MetaPow,
		A:  &ast.MetaInt{Value: 2},
		B:  &ast.MetaInt{Value: 10},
	})
	require.IsType(t, &ast.MetaFloat{}, result)
	assert.Equal(t, 1024.0, result.(*ast.MetaFloat).Value)

	rendered, err := ast.MetaString(result)
	require.NoError(t, err)
	assert.Equal(t, "1024.000000", rendered)
}

func TestMetaStringComparison(t *testing.T) {
	result := collapse(t, nil, &ast.MetaBinary{
		Op: ast.MetaEq,
		A:  &ast.MetaStr{Value: "a"},
		B:  &ast.MetaStr{Value: "a"},
	})
	assert.Equal(t, &ast.MetaBool{Value: true}, result)

	result = collapse(t, nil, &ast.MetaBinary{
		Op: ast.MetaLt,
		A:  &ast.MetaStr{Value: "abc"},
		B:  &ast.MetaStr{Value: "abd"},
	})
	assert.Equal(t, &ast.MetaBool{Value: true}, result)
}

func TestMetaNotUndef(t *testing.T) {
	result := collapse(t, nil, &ast.MetaNot{Value: &ast.MetaUndef{}})
	assert.Equal(t, &ast.MetaBool{Value: true}, result)
}

func TestMetaLogicalOps(t *testing.T) {
	and := &ast.MetaBinary{Op: ast.MetaAnd,
		A: &ast.MetaBool{Value: true}, B: &ast.MetaInt{Value: 1}}
	assert.Equal(t, &ast.MetaBool{Value: true}, collapse(t, nil, and))

	or := &ast.MetaBinary{Op: ast.MetaOr,
		A: &ast.MetaBool{Value: false}, B: &ast.MetaFloat{Value: 0}}
	assert.Equal(t, &ast.MetaBool{Value: false}, collapse(t, nil, or))

	xor := &ast.MetaBinary{Op: ast.MetaXor,
		A: &ast.MetaBool{Value: true}, B: &ast.MetaBool{Value: true}}
	assert.Equal(t, &ast.MetaBool{Value: false}, collapse(t, nil, xor))
}

func TestMetaVariableResolution(t *testing.T) {
	defs := []ast.MetaDefinition{
		{Name: symbol.Intern("version"), Value: &ast.MetaStr{Value: "2.8"}},
	}

	result := collapse(t, defs, &ast.MetaVar{Name: symbol.Intern("version")})
	assert.Equal(t, &ast.MetaStr{Value: "2.8"}, result)

	// Unknown variables collapse to undef.
	result = collapse(t, defs, &ast.MetaVar{Name: symbol.Intern("unknown")})
	assert.Equal(t, &ast.MetaUndef{}, result)
}

func TestMetaStringCoercions(t *testing.T) {
	n, err := ast.MetaIntoInt(nil, &ast.MetaStr{Value: "42abc"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	n, err = ast.MetaIntoInt(nil, &ast.MetaBool{Value: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	f, err := ast.MetaIntoFloat(nil, &ast.MetaStr{Value: "1.5x"})
	require.NoError(t, err)
	assert.Equal(t, 1.5, f)

	s, err := ast.MetaIntoString(nil, &ast.MetaUndef{})
	require.NoError(t, err)
	assert.Equal(t, "undef", s)

	s, err = ast.MetaIntoString(nil, &ast.MetaInt{Value: -7})
	require.NoError(t, err)
	assert.Equal(t, "-7", s)
}

func TestMetaDivisionByZero(t *testing.T) {
	_, err := ast.MetaCollapse(nil, &ast.MetaBinary{
		Op: ast.MetaDiv,
		A:  &ast.MetaInt{Value: 1},
		B:  &ast.MetaInt{Value: 0},
	})
	assert.Error(t, err)

	_, err = ast.MetaCollapse(nil, &ast.MetaBinary{
		Op: ast.MetaMod,
		A:  &ast.MetaInt{Value: 1},
		B:  &ast.MetaInt{Value: 0},
	})
	assert.Error(t, err)
}
