package ast_test

import (
	"testing"

	"github.com/brimlang/brim/ast"
	"github.com/brimlang/brim/symbol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogTN() *ast.PolyCatalog {
	catalog := &ast.PolyCatalog{}
	catalog.AddType(symbol.Intern("T"), base("int"))
	catalog.AddCount(symbol.Intern("N"), 4)
	return catalog
}

func TestResolvePolymorphPointer(t *testing.T) {
	catalog := catalogTN()

	// *$T with {T -> int} yields *int.
	polyPtr := ast.MakePolymorphPtr(nowhere, symbol.Intern("T"), false)
	resolved, err := catalog.ResolveType(&polyPtr)
	require.NoError(t, err)

	expected := ptrTo(base("int"))
	assert.True(t, ast.TypesIdentical(&resolved, &expected))
	assert.Equal(t, "*int", resolved.String())
}

func TestResolvePolycount(t *testing.T) {
	catalog := catalogTN()

	// [$#N] $T with {N -> 4, T -> int} yields '4 int'.
	in := ast.Type{Elems: []ast.Elem{
		&ast.PolycountElem{Name: symbol.Intern("N")},
		&ast.PolymorphElem{Name: symbol.Intern("T")},
	}}
	resolved, err := catalog.ResolveType(&in)
	require.NoError(t, err)

	expected := ast.MakeFixedArray(nowhere, 4, base("int"))
	assert.True(t, ast.TypesIdentical(&resolved, &expected))
	assert.Equal(t, "4 int", resolved.String())
}

func TestResolveBindingMayExpand(t *testing.T) {
	catalog := &ast.PolyCatalog{}
	catalog.AddType(symbol.Intern("T"), ptrTo(ptrTo(base("ubyte"))))

	poly := ast.MakePolymorph(nowhere, symbol.Intern("T"), false)
	resolved, err := catalog.ResolveType(&poly)
	require.NoError(t, err)
	assert.Equal(t, "**ubyte", resolved.String())
	assert.Len(t, resolved.Elems, 3)
}

func TestResolveIdempotentWithoutPolymorphs(t *testing.T) {
	catalog := &ast.PolyCatalog{}
	in := ast.MakeFuncPtr(nowhere,
		[]ast.Type{base("int"), ptrTo(base("ubyte"))},
		base("void"), ast.TraitNone)

	resolved, err := catalog.ResolveType(&in)
	require.NoError(t, err)
	assert.True(t, ast.TypesIdentical(&in, &resolved))
}

func TestResolveUnboundFails(t *testing.T) {
	catalog := &ast.PolyCatalog{}

	poly := ast.MakePolymorph(nowhere, symbol.Intern("T"), false)
	_, err := catalog.ResolveType(&poly)
	assert.Error(t, err)

	count := ast.Type{Elems: []ast.Elem{
		&ast.PolycountElem{Name: symbol.Intern("N")},
		&ast.BaseElem{Name: symbol.Intern("int")},
	}}
	_, err = catalog.ResolveType(&count)
	assert.Error(t, err)
}

func TestResolveFuncElem(t *testing.T) {
	catalog := catalogTN()

	in := ast.MakeFuncPtr(nowhere,
		[]ast.Type{ast.MakePolymorph(nowhere, symbol.Intern("T"), false)},
		ast.MakePolymorphPtr(nowhere, symbol.Intern("T"), false),
		ast.TraitNone)
	resolved, err := catalog.ResolveType(&in)
	require.NoError(t, err)
	assert.Equal(t, "func(int) *int", resolved.String())
}

func TestResolveGenericBase(t *testing.T) {
	catalog := catalogTN()

	in := ast.MakeGenericBase(nowhere, symbol.Intern("List"), []ast.Type{
		ast.MakePolymorph(nowhere, symbol.Intern("T"), false),
	})
	resolved, err := catalog.ResolveType(&in)
	require.NoError(t, err)
	assert.Equal(t, "<int> List", resolved.String())
}

func TestResolveTypeInPlace(t *testing.T) {
	catalog := catalogTN()
	in := ast.MakePolymorphPtr(nowhere, symbol.Intern("T"), false)
	require.NoError(t, catalog.ResolveTypeInPlace(&in))
	assert.Equal(t, "*int", in.String())
}

func TestResolveExprPolycountBecomesUsize(t *testing.T) {
	catalog := catalogTN()

	var expr ast.Expr = &ast.PolycountRef{Name: symbol.Intern("N")}
	require.NoError(t, catalog.ResolveExpr(&expr))

	lit, ok := expr.(*ast.IntLit)
	require.True(t, ok)
	assert.Equal(t, ast.IntUsize, lit.Kind)
	assert.Equal(t, int64(4), lit.Value)
}

func TestResolveExprWalksTree(t *testing.T) {
	catalog := catalogTN()

	var expr ast.Expr = &ast.Conditional{
		Kind: ast.CondWhile,
		Cond: &ast.BoolLit{Value: true},
		Stmts: ast.ExprList{
			&ast.Declare{
				Name: symbol.Intern("x"),
				Type: ast.MakePolymorph(nowhere, symbol.Intern("T"), false),
			},
			&ast.Assign{
				Kind:  ast.AssignPlain,
				Dest:  variable("x"),
				Value: &ast.Cast{To: ast.MakePolymorph(nowhere, symbol.Intern("T"), false), From: intLit(0)},
			},
		},
	}
	require.NoError(t, catalog.ResolveExpr(&expr))

	loop := expr.(*ast.Conditional)
	decl := loop.Stmts[0].(*ast.Declare)
	assert.Equal(t, "int", decl.Type.String())
	cast := loop.Stmts[1].(*ast.Assign).Value.(*ast.Cast)
	assert.Equal(t, "int", cast.To.String())
}

func TestResolveExprUnboundFails(t *testing.T) {
	catalog := &ast.PolyCatalog{}
	var expr ast.Expr = &ast.Sizeof{Type: ast.MakePolymorph(nowhere, symbol.Intern("T"), false)}
	assert.Error(t, catalog.ResolveExpr(&expr))
}
