package ast_test

import (
	"testing"

	"github.com/brimlang/brim/ast"
	"github.com/brimlang/brim/symbol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intLit(v int64) ast.Expr {
	return &ast.IntLit{Kind: ast.IntGeneric, Value: v}
}

func variable(name string) ast.Expr {
	return &ast.Var{Name: symbol.Intern(name)}
}

func TestExprCloneIsDeep(t *testing.T) {
	call := &ast.Call{
		Name: symbol.Intern("f"),
		Args: ast.ExprList{
			intLit(1),
			&ast.Binary{Kind: ast.BinaryAdd, A: variable("a"), B: intLit(2)},
		},
	}
	clone := call.CloneExpr().(*ast.Call)

	require.Len(t, clone.Args, 2)
	assert.Equal(t, call.String(), clone.String())

	// Mutating the clone leaves the original untouched.
	clone.Args[0].(*ast.IntLit).Value = 99
	assert.Equal(t, int64(1), call.Args[0].(*ast.IntLit).Value)

	cloneBinary := clone.Args[1].(*ast.Binary)
	cloneBinary.A.(*ast.Var).Name = symbol.Intern("changed")
	assert.Equal(t, "a", call.Args[1].(*ast.Binary).A.(*ast.Var).Name.Str())
}

func TestStatementCloneIsDeep(t *testing.T) {
	stmt := &ast.Conditional{
		Kind: ast.CondWhile,
		Cond: &ast.BoolLit{Value: true},
		Stmts: ast.ExprList{
			&ast.Assign{Kind: ast.AssignAdd, Dest: variable("x"), Value: intLit(1)},
			&ast.Break{},
		},
	}
	clone := stmt.CloneExpr().(*ast.Conditional)
	require.Len(t, clone.Stmts, 2)
	clone.Stmts[0].(*ast.Assign).Value.(*ast.IntLit).Value = 7
	assert.Equal(t, int64(1), stmt.Stmts[0].(*ast.Assign).Value.(*ast.IntLit).Value)
}

func TestIsMutable(t *testing.T) {
	assert.True(t, ast.IsMutable(variable("x")))
	assert.True(t, ast.IsMutable(&ast.Member{Subject: variable("x"), Field: symbol.Intern("y")}))
	assert.True(t, ast.IsMutable(&ast.Dereference{Subject: variable("p")}))
	assert.True(t, ast.IsMutable(&ast.ArrayAccess{Subject: variable("a"), Index: intLit(0)}))
	assert.True(t, ast.IsMutable(&ast.Phantom{Mutable: true}))
	assert.False(t, ast.IsMutable(&ast.Phantom{}))
	assert.False(t, ast.IsMutable(intLit(3)))
	assert.False(t, ast.IsMutable(&ast.Call{Name: symbol.Intern("f")}))

	// A ternary is mutable iff both branches are.
	assert.True(t, ast.IsMutable(&ast.Ternary{
		Cond: variable("c"), A: variable("a"), B: variable("b")}))
	assert.False(t, ast.IsMutable(&ast.Ternary{
		Cond: variable("c"), A: variable("a"), B: intLit(0)}))

	// Post-increment of a mutable operand stays addressable.
	assert.True(t, ast.IsMutable(&ast.Update{Kind: ast.PostIncrement, Subject: variable("x")}))
	assert.False(t, ast.IsMutable(&ast.Update{Kind: ast.PreIncrement, Subject: variable("x")}))
}

func TestDeduceSize(t *testing.T) {
	size, ok := ast.DeduceSize(intLit(12))
	require.True(t, ok)
	assert.Equal(t, uint64(12), size)

	// Negative signed literals clamp to zero.
	size, ok = ast.DeduceSize(intLit(-5))
	require.True(t, ok)
	assert.Equal(t, uint64(0), size)

	sum := &ast.Binary{Kind: ast.BinaryAdd,
		A: intLit(4),
		B: &ast.Binary{Kind: ast.BinaryMultiply, A: intLit(2), B: intLit(3)}}
	size, ok = ast.DeduceSize(sum)
	require.True(t, ok)
	assert.Equal(t, uint64(10), size)

	mod := &ast.Binary{Kind: ast.BinaryModulus, A: intLit(10), B: intLit(3)}
	size, ok = ast.DeduceSize(mod)
	require.True(t, ok)
	assert.Equal(t, uint64(1), size)

	// Non-arithmetic operands fail.
	_, ok = ast.DeduceSize(variable("n"))
	assert.False(t, ok)
	_, ok = ast.DeduceSize(&ast.Binary{Kind: ast.BinaryAdd, A: intLit(1), B: variable("n")})
	assert.False(t, ok)

	// Division by zero fails.
	_, ok = ast.DeduceSize(&ast.Binary{Kind: ast.BinaryDivide, A: intLit(1), B: intLit(0)})
	assert.False(t, ok)
}

func TestAssignOperatorDecoding(t *testing.T) {
	cases := map[ast.AssignKind]ast.BinaryKind{
		ast.AssignAdd:          ast.BinaryAdd,
		ast.AssignSubtract:     ast.BinarySubtract,
		ast.AssignMultiply:     ast.BinaryMultiply,
		ast.AssignDivide:       ast.BinaryDivide,
		ast.AssignModulus:      ast.BinaryModulus,
		ast.AssignBitAnd:       ast.BinaryBitAnd,
		ast.AssignBitOr:        ast.BinaryBitOr,
		ast.AssignBitXor:       ast.BinaryBitXor,
		ast.AssignBitLshift:    ast.BinaryBitLshift,
		ast.AssignBitRshift:    ast.BinaryBitRshift,
		ast.AssignBitLgcLshift: ast.BinaryBitLgcLshift,
		ast.AssignBitLgcRshift: ast.BinaryBitLgcRshift,
	}
	for assign, binary := range cases {
		op, ok := ast.AssignOperator(assign)
		require.True(t, ok)
		assert.Equal(t, binary, op)
	}

	_, ok := ast.AssignOperator(ast.AssignPlain)
	assert.False(t, ok)
}

func TestCaseListPreservesOrder(t *testing.T) {
	var cases []ast.Case
	for i := int64(0); i < 4; i++ {
		cases = ast.AppendCase(cases, ast.Case{Value: intLit(i)})
	}
	clones := ast.CloneCases(cases)
	require.Len(t, clones, 4)
	for i := int64(0); i < 4; i++ {
		assert.Equal(t, i, clones[i].Value.(*ast.IntLit).Value)
	}
}
