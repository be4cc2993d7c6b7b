package ast_test

import (
	"testing"
	"text/scanner"

	"github.com/brimlang/brim/ast"
	"github.com/brimlang/brim/symbol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var nowhere scanner.Position

func base(name string) ast.Type {
	return ast.MakeBase(nowhere, symbol.Intern(name))
}

func ptrTo(t ast.Type) ast.Type {
	t.PrependPointer()
	return t
}

func TestTypeIdentityIsEquivalence(t *testing.T) {
	types := []ast.Type{
		base("int"),
		base("usize"),
		base("ulong"),
		base("bool"),
		base("successful"),
		ptrTo(ptrTo(base("ubyte"))),
		ast.MakeFixedArray(nowhere, 10, base("int")),
		ast.MakePolymorph(nowhere, symbol.Intern("T"), false),
	}

	// Reflexive, and identical to clones.
	for i := range types {
		clone := types[i].Clone()
		assert.True(t, ast.TypesIdentical(&types[i], &types[i]), "%s", types[i].String())
		assert.True(t, ast.TypesIdentical(&types[i], &clone), "%s", types[i].String())
	}

	// Symmetric.
	for i := range types {
		for j := range types {
			assert.Equal(t,
				ast.TypesIdentical(&types[i], &types[j]),
				ast.TypesIdentical(&types[j], &types[i]))
		}
	}
}

func TestTypeCrossNameEquivalences(t *testing.T) {
	usize, ulong := base("usize"), base("ulong")
	boolean, successful := base("bool"), base("successful")
	long := base("long")

	assert.True(t, ast.TypesIdentical(&usize, &ulong))
	assert.True(t, ast.TypesIdentical(&boolean, &successful))
	assert.False(t, ast.TypesIdentical(&usize, &long))
	assert.False(t, ast.TypesIdentical(&usize, &boolean))
}

func TestVarFixedArrayNeverIdentical(t *testing.T) {
	a := ast.Type{Elems: []ast.Elem{
		&ast.VarFixedArrayElem{Length: &ast.IntLit{Kind: ast.IntGeneric, Value: 3}},
		&ast.BaseElem{Name: symbol.Intern("int")},
	}}
	b := a.Clone()
	assert.False(t, ast.TypesIdentical(&a, &b))
	assert.False(t, ast.TypesIdentical(&a, &a))
}

func TestTypeString(t *testing.T) {
	ubytePtrPtr := ptrTo(ptrTo(base("ubyte")))
	assert.Equal(t, "**ubyte", ubytePtrPtr.String())

	fixed := ast.MakeFixedArray(nowhere, 10, base("int"))
	assert.Equal(t, "10 int", fixed.String())

	fnPtr := ast.MakeFuncPtr(nowhere,
		[]ast.Type{base("int"), base("int")}, base("int"), ast.FuncStdcall)
	assert.Equal(t, "stdcall func(int, int) int", fnPtr.String())

	generic := ast.MakeGenericBase(nowhere, symbol.Intern("Map"), []ast.Type{
		ast.MakePolymorph(nowhere, symbol.Intern("K"), false),
		ast.MakePolymorph(nowhere, symbol.Intern("V"), false),
	})
	assert.Equal(t, "<$K, $V> Map", generic.String())

	auto := ast.MakePolymorph(nowhere, symbol.Intern("T"), true)
	assert.Equal(t, "$~T", auto.String())

	prereq := ast.Type{Elems: []ast.Elem{&ast.PolymorphPrereqElem{
		Name:       symbol.Intern("T"),
		Similarity: symbol.Intern("Similar"),
	}}}
	assert.Equal(t, "$T~Similar", prereq.String())
}

func TestTypeHashConsistency(t *testing.T) {
	usize, ulong := base("usize"), base("ulong")
	assert.Equal(t, usize.Hash(), ulong.Hash())

	boolean, successful := base("bool"), base("successful")
	assert.Equal(t, boolean.Hash(), successful.Hash())

	a := ptrTo(base("int"))
	b := a.Clone()
	assert.Equal(t, a.Hash(), b.Hash())

	c := ptrTo(base("long"))
	assert.NotEqual(t, a.Hash(), c.Hash())
}

func TestDereferencedView(t *testing.T) {
	ptr := ptrTo(base("int"))
	view := ptr.DereferencedView()
	intType := base("int")
	assert.True(t, ast.TypesIdentical(&view, &intType))
	// The original is untouched.
	assert.True(t, ptr.IsPointer())
}

func TestDereferenceInPlace(t *testing.T) {
	ptr := ptrTo(ptrTo(base("short")))
	ptr.Dereference()
	expected := ptrTo(base("short"))
	assert.True(t, ast.TypesIdentical(&ptr, &expected))
}

func TestUnwrapFixedArray(t *testing.T) {
	fixed := ast.MakeFixedArray(nowhere, 8, base("double"))
	fixed.UnwrapFixedArray()
	expected := base("double")
	assert.True(t, ast.TypesIdentical(&fixed, &expected))
}

func TestPrependPointer(t *testing.T) {
	intType := base("int")
	intType.PrependPointer()
	assert.Equal(t, "*int", intType.String())
	assert.True(t, intType.IsBasePtr())
}

func TestTypePredicates(t *testing.T) {
	voidType := base("void")
	assert.True(t, voidType.IsVoid())
	assert.True(t, voidType.IsBase())
	assert.True(t, voidType.IsBaseLike())

	ptr := ptrTo(base("Person"))
	assert.True(t, ptr.IsPointer())
	assert.True(t, ptr.IsBasePtr())
	assert.True(t, ptr.IsBasePtrOf(symbol.Intern("Person")))
	assert.False(t, ptr.IsBase())

	person := base("Person")
	assert.True(t, ptr.IsPointerTo(&person))

	poly := ast.MakePolymorph(nowhere, symbol.Intern("T"), false)
	assert.True(t, poly.IsPolymorph())
	assert.True(t, poly.HasPolymorph())

	polyPtr := ast.MakePolymorphPtr(nowhere, symbol.Intern("T"), false)
	assert.True(t, polyPtr.IsPolymorphPtr())
	assert.True(t, polyPtr.IsPolymorphLikePtr())

	fixed := ast.MakeFixedArray(nowhere, 4, base("int"))
	assert.True(t, fixed.IsFixedArray())
	assert.False(t, fixed.HasPolymorph())

	fnPtr := ast.MakeFuncPtr(nowhere, nil, base("void"), ast.TraitNone)
	assert.True(t, fnPtr.IsFunc())
}

func TestHasPolymorphDescends(t *testing.T) {
	// A function pointer with a polymorphic argument.
	fnPtr := ast.MakeFuncPtr(nowhere,
		[]ast.Type{ast.MakePolymorph(nowhere, symbol.Intern("T"), false)},
		base("void"), ast.TraitNone)
	assert.True(t, fnPtr.HasPolymorph())

	// A generic base with a polymorphic generic.
	generic := ast.MakeGenericBase(nowhere, symbol.Intern("List"), []ast.Type{
		ast.MakePolymorph(nowhere, symbol.Intern("E"), false),
	})
	assert.True(t, generic.HasPolymorph())

	// An embedded layout with a polymorphic field.
	layout := ast.NewStructLayout(
		[]symbol.ID{symbol.Intern("value")},
		[]ast.Type{ast.MakePolymorph(nowhere, symbol.Intern("T"), false)},
		ast.TraitNone)
	embedded := ast.Type{Elems: []ast.Elem{&ast.LayoutElem{Layout: layout}}}
	assert.True(t, embedded.HasPolymorph())
}

func TestStructName(t *testing.T) {
	person := base("Person")
	name, ok := person.StructName()
	require.True(t, ok)
	assert.Equal(t, "Person", name.Str())

	generic := ast.MakeGenericBase(nowhere, symbol.Intern("List"), []ast.Type{base("int")})
	name, ok = generic.StructName()
	require.True(t, ok)
	assert.Equal(t, "List", name.Str())

	ptr := ptrTo(base("Person"))
	_, ok = ptr.StructName()
	assert.False(t, ok)
}
