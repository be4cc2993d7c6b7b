package parse_test

import (
	"testing"

	"github.com/brimlang/brim/ast"
	"github.com/brimlang/brim/parse"
	"github.com/brimlang/brim/parse/parsetest"
	"github.com/brimlang/brim/symbol"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrecedenceClimbing(t *testing.T) {
	// 1 + 2 * 3 parses as Add(1, Multiply(2, 3)).
	expr := parsetest.ParseExpr(t, "1 + 2 * 3")
	add, ok := expr.(*ast.Binary)
	require.True(t, ok)
	expect.EQ(t, add.Kind, ast.BinaryAdd)
	expect.EQ(t, add.A.(*ast.IntLit).Value, int64(1))

	mul, ok := add.B.(*ast.Binary)
	require.True(t, ok)
	expect.EQ(t, mul.Kind, ast.BinaryMultiply)
	expect.EQ(t, mul.A.(*ast.IntLit).Value, int64(2))
	expect.EQ(t, mul.B.(*ast.IntLit).Value, int64(3))
}

func TestPrecedenceComparisonBindsTighterThanLogical(t *testing.T) {
	// a == b and c == d parses as And(Equals(a,b), Equals(c,d)).
	expr := parsetest.ParseExpr(t, "a == b and c == d")
	and, ok := expr.(*ast.Binary)
	require.True(t, ok)
	expect.EQ(t, and.Kind, ast.BinaryAnd)

	left, ok := and.A.(*ast.Binary)
	require.True(t, ok)
	expect.EQ(t, left.Kind, ast.BinaryEquals)
	expect.EQ(t, left.A.(*ast.Var).Name.Str(), "a")
	expect.EQ(t, left.B.(*ast.Var).Name.Str(), "b")

	right, ok := and.B.(*ast.Binary)
	require.True(t, ok)
	expect.EQ(t, right.Kind, ast.BinaryEquals)
	expect.EQ(t, right.A.(*ast.Var).Name.Str(), "c")
	expect.EQ(t, right.B.(*ast.Var).Name.Str(), "d")
}

func TestTernaryParsing(t *testing.T) {
	expr := parsetest.ParseExpr(t, "cond ? x : y")
	ternary, ok := expr.(*ast.Ternary)
	require.True(t, ok)
	expect.EQ(t, ternary.Cond.(*ast.Var).Name.Str(), "cond")
	expect.EQ(t, ternary.A.(*ast.Var).Name.Str(), "x")
	expect.EQ(t, ternary.B.(*ast.Var).Name.Str(), "y")
}

func TestLeftAssociativity(t *testing.T) {
	// 10 - 4 - 3 parses as Subtract(Subtract(10, 4), 3).
	expr := parsetest.ParseExpr(t, "10 - 4 - 3")
	outer, ok := expr.(*ast.Binary)
	require.True(t, ok)
	expect.EQ(t, outer.Kind, ast.BinarySubtract)
	expect.EQ(t, outer.B.(*ast.IntLit).Value, int64(3))

	inner, ok := outer.A.(*ast.Binary)
	require.True(t, ok)
	expect.EQ(t, inner.A.(*ast.IntLit).Value, int64(10))
	expect.EQ(t, inner.B.(*ast.IntLit).Value, int64(4))
}

func TestAsCast(t *testing.T) {
	expr := parsetest.ParseExpr(t, "x as float")
	cast, ok := expr.(*ast.Cast)
	require.True(t, ok)
	expect.EQ(t, cast.To.String(), "float")
	expect.EQ(t, cast.From.(*ast.Var).Name.Str(), "x")
}

func TestPostfixModifiers(t *testing.T) {
	expr := parsetest.ParseExpr(t, "items[3].weight")
	member, ok := expr.(*ast.Member)
	require.True(t, ok)
	expect.EQ(t, member.Field.Str(), "weight")

	access, ok := member.Subject.(*ast.ArrayAccess)
	require.True(t, ok)
	expect.EQ(t, access.Subject.(*ast.Var).Name.Str(), "items")
	expect.EQ(t, access.Index.(*ast.IntLit).Value, int64(3))
}

func TestMethodCallExpression(t *testing.T) {
	expr := parsetest.ParseExpr(t, "list.get(0)")
	call, ok := expr.(*ast.MethodCall)
	require.True(t, ok)
	expect.EQ(t, call.Name.Str(), "get")
	require.Len(t, call.Args, 1)
}

func TestNewExpression(t *testing.T) {
	expr := parsetest.ParseExpr(t, "new int * 8")
	alloc, ok := expr.(*ast.New)
	require.True(t, ok)
	expect.EQ(t, alloc.Type.String(), "int")
	require.NotNil(t, alloc.Count)
	expect.EQ(t, alloc.Count.(*ast.IntLit).Value, int64(8))

	expr = parsetest.ParseExpr(t, `new undef Person`)
	alloc = expr.(*ast.New)
	assert.True(t, alloc.IsUndef)

	expr = parsetest.ParseExpr(t, `new "hello"`)
	cstring, ok := expr.(*ast.NewCString)
	require.True(t, ok)
	expect.EQ(t, cstring.Value, "hello")
}

func TestCastAndSizeof(t *testing.T) {
	expr := parsetest.ParseExpr(t, "cast *ubyte (value)")
	cast, ok := expr.(*ast.Cast)
	require.True(t, ok)
	expect.EQ(t, cast.To.String(), "*ubyte")

	// The parenthesised form of sizeof prefers the value interpretation.
	expr = parsetest.ParseExpr(t, "sizeof (value)")
	_, ok = expr.(*ast.SizeofValue)
	assert.True(t, ok)

	expr = parsetest.ParseExpr(t, "sizeof int")
	sizeOf, ok := expr.(*ast.Sizeof)
	require.True(t, ok)
	expect.EQ(t, sizeOf.Type.String(), "int")
}

func TestDeferOrdering(t *testing.T) {
	stmts := parsetest.ParseStmts(t, `
defer print("A")
defer print("B")
return`)

	require.Len(t, stmts, 1)
	ret, ok := stmts[0].(*ast.Return)
	require.True(t, ok)

	// Deferred statements run in LIFO order before the return.
	require.Len(t, ret.LastMinute, 2)
	first := ret.LastMinute[0].(*ast.Call)
	second := ret.LastMinute[1].(*ast.Call)
	expect.EQ(t, first.Args[0].(*ast.StrLit).Value, "B")
	expect.EQ(t, second.Args[0].(*ast.StrLit).Value, "A")
}

func TestDeferFulfilledAtScopeExit(t *testing.T) {
	stmts := parsetest.ParseStmts(t, `
defer cleanup()
work()`)

	require.Len(t, stmts, 2)
	_, ok := stmts[0].(*ast.Call)
	require.True(t, ok)
	expect.EQ(t, stmts[0].(*ast.Call).Name.Str(), "work")
	expect.EQ(t, stmts[1].(*ast.Call).Name.Str(), "cleanup")
}

func TestBreakRewind(t *testing.T) {
	stmts := parsetest.ParseStmts(t, `
while true {
	defer cleanup()
	break
}`)

	require.Len(t, stmts, 1)
	loop, ok := stmts[0].(*ast.Conditional)
	require.True(t, ok)
	expect.EQ(t, loop.Kind, ast.CondWhile)

	// The break is preceded by the rewound cleanup() call.
	require.Len(t, loop.Stmts, 2)
	call, ok := loop.Stmts[0].(*ast.Call)
	require.True(t, ok)
	expect.EQ(t, call.Name.Str(), "cleanup")
	_, ok = loop.Stmts[1].(*ast.Break)
	assert.True(t, ok)
}

func TestBreakRewindClonesIntermediateScopes(t *testing.T) {
	stmts := parsetest.ParseStmts(t, `
while true {
	defer loop_cleanup()
	if failing {
		defer nested_cleanup()
		break
	}
}`)

	loop := stmts[0].(*ast.Conditional)
	cond := loop.Stmts[0].(*ast.Conditional)

	// The break runs the if-scope's defer (moved) and the loop scope's
	// defer (cloned), then breaks; the loop scope's copy still runs on
	// normal exit.
	require.Len(t, cond.Stmts, 3)
	expect.EQ(t, cond.Stmts[0].(*ast.Call).Name.Str(), "nested_cleanup")
	expect.EQ(t, cond.Stmts[1].(*ast.Call).Name.Str(), "loop_cleanup")
	_, isBreak := cond.Stmts[2].(*ast.Break)
	assert.True(t, isBreak)

	expect.EQ(t, loop.Stmts[1].(*ast.Call).Name.Str(), "loop_cleanup")
}

func TestReturnRunsAllScopes(t *testing.T) {
	stmts := parsetest.ParseStmts(t, `
defer outer()
while true {
	defer inner()
	return
}`)

	loop := stmts[0].(*ast.Conditional)
	ret := loop.Stmts[0].(*ast.Return)
	require.Len(t, ret.LastMinute, 2)
	expect.EQ(t, ret.LastMinute[0].(*ast.Call).Name.Str(), "inner")
	expect.EQ(t, ret.LastMinute[1].(*ast.Call).Name.Str(), "outer")
}

func TestLabeledBreak(t *testing.T) {
	stmts := parsetest.ParseStmts(t, `
while outer: true {
	while inner: true {
		break outer
	}
}`)

	outer := stmts[0].(*ast.Conditional)
	expect.EQ(t, outer.Label.Str(), "outer")
	inner := outer.Stmts[0].(*ast.Conditional)
	expect.EQ(t, inner.Label.Str(), "inner")

	breakTo := inner.Stmts[0].(*ast.BreakTo)
	expect.EQ(t, breakTo.Label.Str(), "outer")
}

func TestRecordConstructorSynthesis(t *testing.T) {
	tree := parsetest.MustParse(t, "record Pair (first, second int)\n")

	composite := tree.FindCompositeExact(symbol.Intern("Pair"))
	require.NotNil(t, composite)
	assert.True(t, composite.Layout.IsSimpleStruct())

	fn := parsetest.FindFunc(t, tree, "Pair")
	require.Equal(t, 2, fn.Arity)
	expect.EQ(t, fn.ArgNames[0].Str(), "first")
	expect.EQ(t, fn.ArgNames[1].Str(), "second")
	expect.EQ(t, fn.ArgTypes[0].String(), "int")
	expect.EQ(t, fn.ArgTypes[1].String(), "int")
	assert.True(t, fn.ArgTypeTraits[0].Has(ast.ArgTypePod))
	assert.True(t, fn.ArgTypeTraits[1].Has(ast.ArgTypePod))
	expect.EQ(t, fn.ReturnType.String(), "Pair")

	// Body: '$ Pair' declaration, one assignment per field, 'return $'.
	require.Len(t, fn.Statements, 4)
	decl := fn.Statements[0].(*ast.Declare)
	expect.EQ(t, decl.Name.Str(), "$")
	expect.EQ(t, decl.Type.String(), "Pair")
	assert.True(t, decl.IsUndef) // both fields are primitive

	assign := fn.Statements[1].(*ast.Assign)
	member := assign.Dest.(*ast.Member)
	expect.EQ(t, member.Subject.(*ast.Var).Name.Str(), "$")
	expect.EQ(t, member.Field.Str(), "first")
	expect.EQ(t, assign.Value.(*ast.Var).Name.Str(), "first")

	ret := fn.Statements[3].(*ast.Return)
	expect.EQ(t, ret.Value.(*ast.Var).Name.Str(), "$")
}

func TestPolymorphicRecordConstructorIndexed(t *testing.T) {
	tree := parsetest.MustParse(t, "record <$T> Box (value $T)\n")

	poly := tree.FindPolyCompositeExact(symbol.Intern("Box"))
	require.NotNil(t, poly)
	require.Len(t, poly.Generics, 1)
	expect.EQ(t, poly.Generics[0].Str(), "T")

	run := tree.FindPolyFuncs(symbol.Intern("Box"))
	require.Len(t, run, 1)
	fn := tree.Func(run[0].FuncID)
	assert.True(t, fn.Traits.Has(ast.FuncPolymorphic))
	expect.EQ(t, fn.ReturnType.String(), "<$T> Box")
}

func TestStructIntegration(t *testing.T) {
	tree := parsetest.MustParse(t, `
struct A (x int, y int)
struct B (struct A, z int)
`)

	b := tree.FindCompositeExact(symbol.Intern("B"))
	require.NotNil(t, b)
	require.True(t, b.Layout.IsSimpleStruct())

	fieldMap := &b.Layout.FieldMap
	require.Equal(t, 3, fieldMap.Count())
	for i, name := range []string{"x", "y", "z"} {
		expect.EQ(t, fieldMap.NameAt(i).Str(), name)
		endpoint, ok := fieldMap.Find(symbol.Intern(name))
		require.True(t, ok)
		want, _ := ast.NewEndpointWith(uint16(i))
		assert.True(t, endpoint.Equals(want))
	}
}

func TestIntegrationOfUndeclaredStructFails(t *testing.T) {
	parsetest.ParseErr(t, "struct B (struct Missing, z int)\n")
}

func TestCompositeHashesMatchForIdenticalSource(t *testing.T) {
	tree := parsetest.MustParse(t, `
struct First  (x int, y int, union (a float, b long))
struct Second (x int, y int, union (a float, b long))
struct Third  (x int, y long)
`)

	first := tree.FindCompositeExact(symbol.Intern("First"))
	second := tree.FindCompositeExact(symbol.Intern("Second"))
	third := tree.FindCompositeExact(symbol.Intern("Third"))
	require.NotNil(t, first)
	require.NotNil(t, second)
	require.NotNil(t, third)

	assert.Equal(t, first.Layout.Hash(), second.Layout.Hash())
	assert.NotEqual(t, first.Layout.Hash(), third.Layout.Hash())
}

func TestAnonymousCompositeEndpoints(t *testing.T) {
	tree := parsetest.MustParse(t, "struct Value (is_float bool, union (f float, s *ubyte))\n")

	value := tree.FindCompositeExact(symbol.Intern("Value"))
	require.NotNil(t, value)
	assert.False(t, value.Layout.IsSimpleStruct())

	f, ok := value.Layout.FieldMap.Find(symbol.Intern("f"))
	require.True(t, ok)
	want, _ := ast.NewEndpointWith(1, 0)
	assert.True(t, f.Equals(want))

	s, ok := value.Layout.FieldMap.Find(symbol.Intern("s"))
	require.True(t, ok)
	want, _ = ast.NewEndpointWith(1, 1)
	assert.True(t, s.Equals(want))

	path, err := value.Layout.GetPath(s)
	require.NoError(t, err)
	require.Len(t, path.Waypoints, 2)
	expect.EQ(t, path.Waypoints[0].Kind, ast.WaypointOffset)
	expect.EQ(t, path.Waypoints[1].Kind, ast.WaypointBitcast)
}

func TestFunctionParsing(t *testing.T) {
	tree := parsetest.MustParse(t, `
func sum(a, b int) int {
	return a + b
}
`)
	fn := parsetest.FindFunc(t, tree, "sum")
	require.Equal(t, 2, fn.Arity)
	expect.EQ(t, fn.ArgNames[0].Str(), "a")
	expect.EQ(t, fn.ArgNames[1].Str(), "b")
	expect.EQ(t, fn.ArgTypes[0].String(), "int")
	expect.EQ(t, fn.ArgTypes[1].String(), "int")
	expect.EQ(t, fn.ReturnType.String(), "int")
	require.Len(t, fn.Statements, 1)
}

func TestFunctionFlows(t *testing.T) {
	tree := parsetest.MustParse(t, `
func fill(out buffer *ubyte, inout count usize) void {
	return
}
`)
	fn := parsetest.FindFunc(t, tree, "fill")
	require.Equal(t, 2, fn.Arity)
	expect.EQ(t, fn.ArgFlows[0], ast.FlowOut)
	expect.EQ(t, fn.ArgFlows[1], ast.FlowInout)
}

func TestVariadicFunctions(t *testing.T) {
	tree := parsetest.MustParse(t, `
foreign printf(format *ubyte, ...) int
func log_all(args ..) void {
	return
}
`)
	printf := parsetest.FindFunc(t, tree, "printf")
	assert.True(t, printf.Traits.Has(ast.FuncForeign))
	assert.True(t, printf.Traits.Has(ast.FuncVararg))
	require.Equal(t, 1, printf.Arity)

	logAll := parsetest.FindFunc(t, tree, "log_all")
	assert.True(t, logAll.Traits.Has(ast.FuncVariadic))
	expect.EQ(t, logAll.VariadicArgName.Str(), "args")
}

func TestPolymorphicFuncIndexed(t *testing.T) {
	tree := parsetest.MustParse(t, `
func identity(value $T) $T {
	return value
}
`)
	fn := parsetest.FindFunc(t, tree, "identity")
	assert.True(t, fn.Traits.Has(ast.FuncPolymorphic))
	run := tree.FindPolyFuncs(symbol.Intern("identity"))
	require.Len(t, run, 1)
}

func TestMethodsInsideStructDomain(t *testing.T) {
	tree := parsetest.MustParse(t, `
struct Counter (count int) {
	func increment void {
		this.count += 1
	}
}
`)
	fn := parsetest.FindFunc(t, tree, "increment")
	require.True(t, fn.IsMethod())
	name, ok := fn.SubjectTypename()
	require.True(t, ok)
	expect.EQ(t, name.Str(), "Counter")
	expect.EQ(t, fn.ArgTypes[0].String(), "*Counter")
}

func TestClassGetsVtableSlot(t *testing.T) {
	tree := parsetest.MustParse(t, `
class Shape {
	area double
	constructor(area double) {
		this.area = area
	}
}
`)
	shape := tree.FindCompositeExact(symbol.Intern("Shape"))
	require.NotNil(t, shape)
	assert.True(t, shape.IsClass)
	assert.True(t, shape.HasConstructor)

	expect.EQ(t, shape.Layout.FieldMap.NameAt(0).Str(), "__vtable__")
	expect.EQ(t, shape.Layout.FieldMap.NameAt(1).Str(), "area")

	// The subject-less constructor is synthesized for value-position use.
	generated := parsetest.FindFunc(t, tree, "Shape")
	assert.True(t, generated.Traits.Has(ast.FuncGenerated))
	expect.EQ(t, generated.ReturnType.String(), "*Shape")
	require.Equal(t, 1, generated.Arity)
	expect.EQ(t, generated.ArgNames[0].Str(), "area")
}

func TestClassExtends(t *testing.T) {
	tree := parsetest.MustParse(t, `
class Base {
	id int
	constructor(id int) {
		this.id = id
	}
}
class Derived extends Base {
	extra int
	constructor(id int, extra int) {
		this.id = id
		this.extra = extra
	}
}
`)
	derived := tree.FindCompositeExact(symbol.Intern("Derived"))
	require.NotNil(t, derived)
	expect.EQ(t, derived.Parent.String(), "Base")

	// Parent fields are flattened in: __vtable__, id, extra.
	expect.EQ(t, derived.Layout.FieldMap.NameAt(0).Str(), "__vtable__")
	expect.EQ(t, derived.Layout.FieldMap.NameAt(1).Str(), "id")
	expect.EQ(t, derived.Layout.FieldMap.NameAt(2).Str(), "extra")
}

func TestExtendingUndefinedClassFails(t *testing.T) {
	parsetest.ParseErr(t, `
class Orphan extends Missing {
	x int
	constructor { return }
}
`)
}

func TestGlobalsAliasesEnums(t *testing.T) {
	tree := parsetest.MustParse(t, `
counter int = 0
external errno int
alias Str = *ubyte
enum Color (RED, GREEN, BLUE)
define MAX = 4096
`)

	counter := tree.FindGlobal(symbol.Intern("counter"))
	require.NotNil(t, counter)
	require.NotNil(t, counter.Initial)

	errno := tree.FindGlobal(symbol.Intern("errno"))
	require.NotNil(t, errno)
	assert.True(t, errno.Traits.Has(ast.GlobalExternal))

	alias := tree.FindAlias(symbol.Intern("Str"))
	require.NotNil(t, alias)
	expect.EQ(t, alias.Type.String(), "*ubyte")

	color := tree.FindEnum(symbol.Intern("Color"))
	require.NotNil(t, color)
	require.Len(t, color.Kinds, 3)
	expect.EQ(t, color.Kinds[0].Str(), "RED")

	max := tree.FindNamedExpression(symbol.Intern("MAX"))
	require.NotNil(t, max)
	expect.EQ(t, max.Value.(*ast.IntLit).Value, int64(4096))
}

func TestReservedAliasNameFails(t *testing.T) {
	parsetest.ParseErr(t, "alias int = long\n")
}

func TestForeignLibrary(t *testing.T) {
	tree := parsetest.MustParse(t, "foreign \"libcurl.a\"\nforeign \"CoreFoundation\" framework\n")
	require.Len(t, tree.Libraries, 2)
	expect.EQ(t, tree.Libraries[0].Kind, ast.Library)
	expect.EQ(t, tree.Libraries[0].Name, "libcurl.a")
	expect.EQ(t, tree.Libraries[1].Kind, ast.Framework)
}

func TestDeclarationForms(t *testing.T) {
	stmts := parsetest.ParseStmts(t, `
a, b, c int
x double = 3.5
y int = undef
name Str("bob")
`)

	require.Len(t, stmts, 6)
	for i, name := range []string{"a", "b", "c"} {
		decl := stmts[i].(*ast.Declare)
		expect.EQ(t, decl.Name.Str(), name)
		expect.EQ(t, decl.Type.String(), "int")
	}

	x := stmts[3].(*ast.Declare)
	require.NotNil(t, x.Value)

	y := stmts[4].(*ast.Declare)
	assert.True(t, y.IsUndef)

	ctor := stmts[5].(*ast.Declare)
	assert.True(t, ctor.HasInputs)
	require.Len(t, ctor.Inputs, 1)
}

func TestAssignmentVariants(t *testing.T) {
	stmts := parsetest.ParseStmts(t, `
x = 1
x += 2
x <<= 3
x[0] = 4
*p = 5
`)
	require.Len(t, stmts, 5)
	expect.EQ(t, stmts[0].(*ast.Assign).Kind, ast.AssignPlain)
	expect.EQ(t, stmts[1].(*ast.Assign).Kind, ast.AssignAdd)
	expect.EQ(t, stmts[2].(*ast.Assign).Kind, ast.AssignBitLshift)
	_, ok := stmts[3].(*ast.Assign).Dest.(*ast.ArrayAccess)
	assert.True(t, ok)
	_, ok = stmts[4].(*ast.Assign).Dest.(*ast.Dereference)
	assert.True(t, ok)
}

func TestEachInForms(t *testing.T) {
	stmts := parsetest.ParseStmts(t, `
each int in [array, length] {
	continue
}
each item Str in list {
	break
}
`)
	require.Len(t, stmts, 2)

	lowArray := stmts[0].(*ast.EachIn)
	require.NotNil(t, lowArray.LowArray)
	require.NotNil(t, lowArray.Length)
	assert.Nil(t, lowArray.List)
	expect.EQ(t, lowArray.ItType.String(), "int")

	list := stmts[1].(*ast.EachIn)
	require.NotNil(t, list.List)
	expect.EQ(t, list.ItName.Str(), "item")
	expect.EQ(t, list.ItType.String(), "Str")
}

func TestRepeatWithIndexName(t *testing.T) {
	stmts := parsetest.ParseStmts(t, `
repeat 10 using i {
	work(i)
}
`)
	loop := stmts[0].(*ast.Repeat)
	expect.EQ(t, loop.Limit.(*ast.IntLit).Value, int64(10))
	expect.EQ(t, loop.IdxName.Str(), "i")
}

func TestSwitchParsing(t *testing.T) {
	stmts := parsetest.ParseStmts(t, `
switch value {
case 1
	one()
	fallthrough
case 2
	two()
default
	other()
}
`)
	sw := stmts[0].(*ast.Switch)
	require.Len(t, sw.Cases, 2)
	assert.True(t, sw.HasDefault)
	assert.False(t, sw.IsExhaustive)

	require.Len(t, sw.Cases[0].Stmts, 2)
	_, ok := sw.Cases[0].Stmts[1].(*ast.Fallthrough)
	assert.True(t, ok)
}

func TestExhaustiveSwitch(t *testing.T) {
	stmts := parsetest.ParseStmts(t, `
exhaustive switch color {
case 1
	red()
}
`)
	sw := stmts[0].(*ast.Switch)
	assert.True(t, sw.IsExhaustive)
}

func TestForLoop(t *testing.T) {
	stmts := parsetest.ParseStmts(t, `
for i int = 0; i < 10; i += 1 {
	work(i)
}
`)
	loop := stmts[0].(*ast.For)
	require.Len(t, loop.Before, 1)
	require.NotNil(t, loop.Cond)
	require.Len(t, loop.After, 1)
	require.Len(t, loop.Stmts, 1)
}

func TestUnlessAndUntil(t *testing.T) {
	stmts := parsetest.ParseStmts(t, `
unless ready {
	wait()
}
until done {
	step()
}
until break {
	spin()
}
`)
	expect.EQ(t, stmts[0].(*ast.Conditional).Kind, ast.CondUnless)
	expect.EQ(t, stmts[1].(*ast.Conditional).Kind, ast.CondUntil)
	untilBreak := stmts[2].(*ast.WhileContinue)
	assert.True(t, untilBreak.IsUntil)
}

func TestIfElseChain(t *testing.T) {
	stmts := parsetest.ParseStmts(t, `
if a {
	one()
} else if b {
	two()
} else {
	three()
}
`)
	cond := stmts[0].(*ast.ConditionalElse)
	require.Len(t, cond.ElseStmts, 1)
	nested := cond.ElseStmts[0].(*ast.ConditionalElse)
	require.Len(t, nested.Stmts, 1)
	require.Len(t, nested.ElseStmts, 1)
}

func TestSingleStatementBlocks(t *testing.T) {
	stmts := parsetest.ParseStmts(t, "if failed, return\n")
	cond := stmts[0].(*ast.Conditional)
	require.Len(t, cond.Stmts, 1)
	_, ok := cond.Stmts[0].(*ast.Return)
	assert.True(t, ok)
}

func TestPostfixMutationStatements(t *testing.T) {
	stmts := parsetest.ParseStmts(t, "x++\ny--\nflag!!\n")
	require.Len(t, stmts, 3)
	expect.EQ(t, stmts[0].(*ast.Update).Kind, ast.PostIncrement)
	expect.EQ(t, stmts[1].(*ast.Update).Kind, ast.PostDecrement)
	expect.EQ(t, stmts[2].(*ast.Update).Kind, ast.ToggleUpdate)
}

func TestIncrementRequiresMutable(t *testing.T) {
	parsetest.ParseErr(t, "func main void {\n3++\n}\n")
}

func TestMetaConditionalCompilation(t *testing.T) {
	tree := parsetest.MustParse(t, `
#set ENABLED true
#if ENABLED
func enabled void { return }
#else
func disabled void { return }
#end
func always void { return }
`)
	parsetest.FindFunc(t, tree, "enabled")
	parsetest.FindFunc(t, tree, "always")
	for i := range tree.Funcs {
		assert.NotEqual(t, "disabled", tree.Funcs[i].Name.Str())
	}
}

func TestMetaGetInjectsLiteral(t *testing.T) {
	tree := parsetest.MustParse(t, `
#set VERSION 21
func version int {
	return #get VERSION
}
`)
	fn := parsetest.FindFunc(t, tree, "version")
	ret := fn.Statements[0].(*ast.Return)
	lit, ok := ret.Value.(*ast.IntLit)
	require.True(t, ok)
	expect.EQ(t, lit.Value, int64(21))
}

func TestVariadicArrayCaching(t *testing.T) {
	tree := parsetest.MustParse(t, `
struct VariadicArray (items ptr, bytes usize, length usize, types ptr)
func __variadic_array__(pointer ptr, bytes usize, length usize, maybe_types ptr) VariadicArray {
	return value
}
`)
	require.NotNil(t, tree.Common.VariadicArray)
	expect.EQ(t, tree.Common.VariadicArray.String(), "VariadicArray")

	// A duplicate definition is an error.
	parsetest.ParseErr(t, `
func __variadic_array__(pointer ptr, bytes usize, length usize, maybe_types ptr) A {
	return a
}
func __variadic_array__(pointer ptr, bytes usize, length usize, maybe_types ptr) B {
	return b
}
`)
}

func TestDeferSignatureValidation(t *testing.T) {
	// Valid management method.
	tree := parsetest.MustParse(t, `
struct List (items ptr, length usize) {
	func __defer__ void {
		return
	}
}
`)
	fn := parsetest.FindFunc(t, tree, "__defer__")
	assert.True(t, fn.Traits.Has(ast.FuncDefer))

	// Wrong return type.
	parsetest.ParseErr(t, "func __defer__(this *List) int {\nreturn 0\n}\n")

	// Not a method at all.
	parsetest.ParseErr(t, "func __defer__(value int) void {\nreturn\n}\n")
}

func TestMathOverloadValidation(t *testing.T) {
	parsetest.ParseErr(t, "func __add__(a *Vec) Vec {\nreturn v\n}\n")
	parsetest.ParseErr(t, "func __add__(a *Vec, b Vec) Vec {\nreturn v\n}\n")

	tree := parsetest.MustParse(t, "func __add__(a Vec, b Vec) Vec {\nreturn a\n}\n")
	parsetest.FindFunc(t, tree, "__add__")
}

func TestNamespaceScoping(t *testing.T) {
	tree := parsetest.MustParse(t, `
namespace math
func square(x int) int {
	return x * x
}
}
func plain void { return }
`)
	parsetest.FindFunc(t, tree, `math\square`)
	parsetest.FindFunc(t, tree, "plain")
}

func TestFuncAlias(t *testing.T) {
	tree := parsetest.MustParse(t, "alias sum(int, int) => add\nalias any_sum(...) => add\n")
	require.Len(t, tree.FuncAliases, 2)

	filtered := tree.FuncAliases[0]
	expect.EQ(t, filtered.From.Str(), "sum")
	expect.EQ(t, filtered.To.Str(), "add")
	require.Len(t, filtered.ArgTypes, 2)

	matchFirst := tree.FuncAliases[1]
	assert.True(t, matchFirst.MatchFirstOfName)
}

func TestPragmaAccepted(t *testing.T) {
	lexed := parsetest.Lex("test.br", "pragma optimization aggressive\n")
	_, err := parse.Parse(lexed, parse.Config{})
	require.NoError(t, err)
}

func TestRecoverTurnsPanicsIntoErrors(t *testing.T) {
	err := parse.Recover(func() error {
		panic("lexer handed us garbage")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lexer handed us garbage")
}

func TestUnexpectedTokenAtTopLevel(t *testing.T) {
	parsetest.ParseErr(t, "+ 1\n")
}
