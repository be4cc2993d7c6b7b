package ast_test

import (
	"fmt"
	"testing"

	"github.com/brimlang/brim/ast"
	"github.com/brimlang/brim/symbol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortedContainerLookups(t *testing.T) {
	tree := ast.New()

	names := []string{"zeta", "alpha", "mu", "beta", "omega"}
	for i, name := range names {
		tree.AddGlobal(ast.Global{
			Name: symbol.Intern("g_" + name),
			Type: base("int"),
		})
		tree.AddAlias(ast.TypeAlias{
			Name: symbol.Intern("a_" + name),
			Type: base("int"),
		})
		tree.AddEnum(ast.Enum{Name: symbol.Intern("e_" + name)})
		tree.AddNamedExpression(ast.NamedExpression{
			Name:  symbol.Intern("n_" + name),
			Value: intLit(int64(i)),
		})
	}

	for _, name := range names {
		require.NotNil(t, tree.FindGlobal(symbol.Intern("g_"+name)), name)
		require.NotNil(t, tree.FindAlias(symbol.Intern("a_"+name)), name)
		require.NotNil(t, tree.FindEnum(symbol.Intern("e_"+name)), name)
		require.NotNil(t, tree.FindNamedExpression(symbol.Intern("n_"+name)), name)
	}
	assert.Nil(t, tree.FindGlobal(symbol.Intern("g_missing")))
	assert.Nil(t, tree.FindAlias(symbol.Intern("a_missing")))
}

func TestPolyFuncIndex(t *testing.T) {
	tree := ast.New()

	for i := 0; i < 3; i++ {
		id := tree.NewFunc()
		tree.Func(id).Name = symbol.Intern("generic")
		tree.AddPolyFunc(symbol.Intern("generic"), id)
	}
	id := tree.NewFunc()
	tree.Func(id).Name = symbol.Intern("other")
	tree.AddPolyFunc(symbol.Intern("other"), id)

	run := tree.FindPolyFuncs(symbol.Intern("generic"))
	assert.Len(t, run, 3)
	run = tree.FindPolyFuncs(symbol.Intern("other"))
	assert.Len(t, run, 1)
	run = tree.FindPolyFuncs(symbol.Intern("missing"))
	assert.Len(t, run, 0)
}

func TestEnumFindKind(t *testing.T) {
	e := ast.Enum{
		Name: symbol.Intern("Color"),
		Kinds: []symbol.ID{
			symbol.Intern("RED"), symbol.Intern("GREEN"), symbol.Intern("BLUE"),
		},
	}
	idx, ok := e.FindKind(symbol.Intern("GREEN"))
	require.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.True(t, e.Contains(symbol.Intern("BLUE")))
	assert.False(t, e.Contains(symbol.Intern("MAUVE")))
}

func TestRuntimeTypeInjection(t *testing.T) {
	tree := ast.New()

	for _, name := range []string{
		"Any", "AnyType", "AnyPtrType", "AnyCompositeType",
		"AnyFuncPtrType", "AnyFixedArrayType", "AnyEnumType",
	} {
		assert.NotNil(t, tree.FindCompositeExact(symbol.Intern(name)), name)
	}

	// AnyStructType and AnyUnionType are aliases of AnyCompositeType.
	for _, name := range []string{"AnyStructType", "AnyUnionType"} {
		alias := tree.FindAlias(symbol.Intern(name))
		require.NotNil(t, alias, name)
		assert.Equal(t, "AnyCompositeType", alias.Type.String())
	}

	kinds := tree.FindEnum(symbol.Intern("AnyTypeKind"))
	require.NotNil(t, kinds)
	assert.Len(t, kinds.Kinds, 17)
	assert.Equal(t, "VOID", kinds.Kinds[0].Str())
	assert.Equal(t, "FIXED_ARRAY", kinds.Kinds[16].Str())

	// The special globals carry the matching sub-trait bits.
	types := tree.FindGlobal(symbol.Intern("__types__"))
	require.NotNil(t, types)
	assert.True(t, types.Traits.Has(ast.GlobalSpecial|ast.GlobalTypes))
	assert.Equal(t, "**AnyType", types.Type.String())

	length := tree.FindGlobal(symbol.Intern("__types_length__"))
	require.NotNil(t, length)
	assert.True(t, length.Traits.Has(ast.GlobalSpecial|ast.GlobalTypesLength))

	kindsGlobal := tree.FindGlobal(symbol.Intern("__type_kinds__"))
	require.NotNil(t, kindsGlobal)
	assert.True(t, kindsGlobal.Traits.Has(ast.GlobalSpecial|ast.GlobalTypeKinds))
	assert.Equal(t, "**ubyte", kindsGlobal.Type.String())

	kindsLength := tree.FindGlobal(symbol.Intern("__type_kinds_length__"))
	require.NotNil(t, kindsLength)
	assert.True(t, kindsLength.Traits.Has(ast.GlobalSpecial|ast.GlobalTypeKindsLength))
}

func TestFuncIsMethod(t *testing.T) {
	fn := ast.Func{
		Name:     symbol.Intern("length"),
		Arity:    1,
		ArgNames: []symbol.ID{symbol.This},
		ArgTypes: []ast.Type{ptrTo(base("List"))},
	}
	assert.True(t, fn.IsMethod())

	name, ok := fn.SubjectTypename()
	require.True(t, ok)
	assert.Equal(t, "List", name.Str())

	free := ast.Func{
		Name:     symbol.Intern("free_func"),
		Arity:    1,
		ArgNames: []symbol.ID{symbol.Intern("value")},
		ArgTypes: []ast.Type{base("int")},
	}
	assert.False(t, free.IsMethod())
}

func TestFuncHeadString(t *testing.T) {
	fn := ast.Func{
		Name:          symbol.Intern("sum"),
		Arity:         2,
		ArgNames:      []symbol.ID{symbol.Intern("a"), symbol.Intern("b")},
		ArgTypes:      []ast.Type{base("int"), base("int")},
		ArgFlows:      []ast.Flow{ast.FlowIn, ast.FlowIn},
		ArgTypeTraits: []ast.Trait{ast.TraitNone, ast.TraitNone},
		ReturnType:    base("int"),
	}
	assert.Equal(t, "func sum(a int, b int) int", fn.HeadString())
}

func TestEndIsReachable(t *testing.T) {
	tree := ast.New()

	returning := tree.NewFunc()
	tree.Func(returning).Statements = ast.ExprList{
		&ast.Return{Value: intLit(0)},
	}
	assert.False(t, tree.EndIsReachable(returning))

	fallthroughs := tree.NewFunc()
	tree.Func(fallthroughs).Statements = ast.ExprList{
		&ast.Call{Name: symbol.Intern("noop")},
	}
	assert.True(t, tree.EndIsReachable(fallthroughs))
}

func TestManyFuncs(t *testing.T) {
	tree := ast.New()
	for i := 0; i < 100; i++ {
		id := tree.NewFunc()
		tree.Func(id).Name = symbol.Intern(fmt.Sprintf("f%d", i))
	}
	assert.Equal(t, "f42", tree.Func(ast.FuncID(42)).Name.Str())
}
