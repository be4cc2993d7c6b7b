package parse

import (
	"sort"
	"text/scanner"

	"github.com/brimlang/brim/ast"
	"github.com/brimlang/brim/symbol"
)

// Special-name validation. Runs after a function head and signature are
// parsed, before the body.

func isValidMethod(fn *ast.Func) bool {
	return fn.Arity > 0 &&
		fn.ArgNames[0] == symbol.This &&
		(fn.ArgTypes[0].IsBasePtr() ||
			fn.ArgTypes[0].IsPolymorphPtr() ||
			fn.ArgTypes[0].IsGenericBasePtr()) &&
		fn.ArgTypeTraits[0] == ast.TraitNone
}

var mathFuncNames = []string{
	"__add__",
	"__divide__",
	"__equals__",
	"__greater_than__",
	"__greater_than_or_equal__",
	"__less_than__",
	"__less_than_or_equal__",
	"__modulus__",
	"__multiply__",
	"__not_equals__",
	"__subtract__",
}

func isMathFunc(name string) bool {
	i := sort.SearchStrings(mathFuncNames, name)
	return i < len(mathFuncNames) && mathFuncNames[i] == name
}

var (
	ptrSym = symbol.Intern("ptr")
)

// validateFuncRequirements enforces the contracts of the management
// methods, the math overloads, and the special cached-type functions.
func (p *Parser) validateFuncRequirements(fn *ast.Func, pos scanner.Position) error {
	switch fn.Name.Str() {
	case "__defer__":
		fn.Traits |= ast.FuncDefer
		if fn.Arity == 1 &&
			isValidMethod(fn) &&
			fn.ReturnType.IsVoid() &&
			!fn.Traits.Has(ast.FuncForeign) {
			return nil
		}
		return p.errorf(pos, "Management method __defer__ must be declared as 'func __defer__(this *T) void'")

	case "__pass__":
		fn.Traits |= ast.FuncPass
		if fn.Arity == 1 &&
			ast.TypesIdentical(&fn.ReturnType, &fn.ArgTypes[0]) &&
			fn.ArgTypeTraits[0] == ast.ArgTypePod &&
			(fn.ReturnType.IsBase() ||
				fn.ReturnType.IsPolymorph() ||
				fn.ReturnType.IsGenericBase() ||
				fn.ReturnType.IsFixedArray()) &&
			!fn.Traits.Has(ast.FuncForeign) {
			return nil
		}
		return p.errorf(pos, "Management function __pass__ must be declared as 'func __pass__(value POD T) T'")

	case "__assign__":
		if fn.Arity == 2 &&
			fn.ReturnType.IsVoid() &&
			isValidMethod(fn) &&
			fn.ArgTypes[0].IsPointerTo(&fn.ArgTypes[1]) &&
			!fn.Traits.Has(ast.FuncForeign) {
			return nil
		}
		return p.errorf(pos, "Management method __assign__ must be declared like 'func __assign__(this *T, other T) void'")

	case "__access__":
		if fn.Arity == 2 &&
			isValidMethod(fn) &&
			fn.ReturnType.IsPointer() &&
			!fn.Traits.Has(ast.FuncForeign) {
			return nil
		}
		return p.errorf(pos, "Management method __access__ must be declared like '__access__(this *T, index $Key) *$Value'")

	case "__array__":
		if fn.Arity == 1 &&
			isValidMethod(fn) &&
			fn.ReturnType.IsPointer() &&
			!fn.Traits.Has(ast.FuncForeign) {
			return nil
		}
		return p.errorf(pos, "Management method __array__ must be declared like '__array__(this *T) *$ArrayElementType'")

	case "__length__":
		if fn.Arity == 1 &&
			isValidMethod(fn) &&
			fn.ReturnType.IsBaseOf(symbol.Usize) &&
			!fn.Traits.Has(ast.FuncForeign) {
			return nil
		}
		return p.errorf(pos, "Management method __length__ must be declared like '__length__(this *T) usize'")

	case "__variadic_array__":
		if p.ast.Common.VariadicArray != nil {
			return p.errorf(pos, "Special function __variadic_array__ can only be defined once (previous definition at %s)",
				p.ast.Common.VariadicPos)
		}
		if fn.ReturnType.IsVoid() {
			return p.errorf(pos, "Special function __variadic_array__ must return a value")
		}
		if fn.Arity == 4 &&
			fn.ArgTypes[0].IsBaseOf(ptrSym) &&
			fn.ArgTypes[1].IsBaseOf(symbol.Usize) &&
			fn.ArgTypes[2].IsBaseOf(symbol.Usize) &&
			fn.ArgTypes[3].IsBaseOf(ptrSym) &&
			fn.ArgTypeTraits[0] == ast.TraitNone &&
			fn.ArgTypeTraits[1] == ast.TraitNone &&
			fn.ArgTypeTraits[2] == ast.TraitNone &&
			fn.ArgTypeTraits[3] == ast.TraitNone {
			cached := fn.ReturnType.Clone()
			p.ast.Common.VariadicArray = &cached
			p.ast.Common.VariadicPos = fn.Pos
			return nil
		}
		return p.errorf(pos, "Special function __variadic_array__ must be declared like:\n'__variadic_array__(pointer ptr, bytes usize, length usize, maybe_types ptr) ReturnType'")

	case "__initializer_list__":
		if fn.ReturnType.IsVoid() {
			return p.errorf(pos, "Special function __initializer_list__ must return a value")
		}
		if fn.Arity == 2 &&
			fn.ArgTypes[0].IsPolymorphPtr() &&
			fn.ArgTypes[1].IsBaseOf(symbol.Usize) &&
			fn.ArgTypeTraits[0] == ast.TraitNone &&
			fn.ArgTypeTraits[1] == ast.TraitNone {
			if p.ast.Common.InitializerList == nil {
				cached := fn.ReturnType.Clone()
				p.ast.Common.InitializerList = &cached
				p.ast.Common.InitializerPos = fn.Pos
			}
			return nil
		}
		return p.errorf(pos, "Special function __initializer_list__ must be declared like:\n'__initializer_list__(array *$T, length usize) <$T> ReturnType'")
	}

	if isMathFunc(fn.Name.Str()) {
		if fn.Arity != 2 {
			return p.errorf(pos, "Math function %s must take two arguments", fn.Name.Str())
		}
		if fn.ArgTypes[0].IsPointer() {
			return p.errorf(pos, "Math function %s cannot have a pointer as its first argument", fn.Name.Str())
		}
	}
	return nil
}
