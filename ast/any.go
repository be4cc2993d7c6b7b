package ast

import (
	"text/scanner"

	"github.com/brimlang/brim/symbol"
)

// Runtime type information. These declarations back the 'Any' reflection
// surface; the IR builder fills the special globals with real data.

// AnyTypeKindNames are the runtime names of each AnyTypeKind variant.
var AnyTypeKindNames = []string{
	"void", "bool", "byte", "ubyte", "short", "ushort", "int", "uint",
	"long", "ulong", "float", "double", "pointer", "struct", "union",
	"function-pointer", "fixed-array",
}

var noPos scanner.Position

// injectRuntimeTypes synthesizes the built-in declarations that user code
// can reference for reflection.
func injectRuntimeTypes(a *AST) {
	injectAny(a)
	injectAnyType(a)
	injectAnyTypeKind(a)

	injectAnyPtrType(a)
	injectAnyCompositeType(a)
	injectAnyStructType(a)
	injectAnyUnionType(a)
	injectAnyFuncPtrType(a)
	injectAnyFixedArrayType(a)
	injectAnyEnumType(a)

	injectRuntimeTypeGlobals(a)
}

func rttiStruct(a *AST, name string, fieldNames []string, fieldTypes []Type) {
	names := make([]symbol.ID, len(fieldNames))
	for i, field := range fieldNames {
		names[i] = symbol.Intern(field)
	}
	layout := NewStructLayout(names, fieldTypes, TraitNone)
	a.AddComposite(symbol.Intern(name), layout, noPos, Type{}, false)
}

func injectAny(a *AST) {
	/* struct Any (type *AnyType, placeholder ulong) */
	rttiStruct(a, "Any",
		[]string{"type", "placeholder"},
		[]Type{
			MakeBasePtr(noPos, symbol.Intern("AnyType")),
			MakeBase(noPos, symbol.Ulong),
		})
}

func injectAnyType(a *AST) {
	/* struct AnyType (kind AnyTypeKind, name *ubyte, is_alias bool, size usize) */
	rttiStruct(a, "AnyType",
		[]string{"kind", "name", "is_alias", "size"},
		[]Type{
			MakeBase(noPos, symbol.Intern("AnyTypeKind")),
			MakeBasePtr(noPos, symbol.Intern("ubyte")),
			MakeBase(noPos, symbol.Bool),
			MakeBase(noPos, symbol.Usize),
		})
}

func injectAnyTypeKind(a *AST) {
	/*
	   enum AnyTypeKind (
	       VOID, BOOL, BYTE, UBYTE, SHORT, USHORT, INT, UINT, LONG,
	       ULONG, FLOAT, DOUBLE, PTR, STRUCT, UNION, FUNC_PTR, FIXED_ARRAY
	   )
	*/
	kinds := []string{
		"VOID", "BOOL", "BYTE", "UBYTE", "SHORT", "USHORT", "INT", "UINT",
		"LONG", "ULONG", "FLOAT", "DOUBLE", "PTR", "STRUCT", "UNION",
		"FUNC_PTR", "FIXED_ARRAY",
	}
	ids := make([]symbol.ID, len(kinds))
	for i, kind := range kinds {
		ids[i] = symbol.Intern(kind)
	}
	a.AddEnum(Enum{Name: symbol.Intern("AnyTypeKind"), Kinds: ids, Pos: noPos})
}

func injectAnyPtrType(a *AST) {
	/* struct AnyPtrType (kind AnyTypeKind, name *ubyte, is_alias bool, size usize, subtype *AnyType) */
	rttiStruct(a, "AnyPtrType",
		[]string{"kind", "name", "is_alias", "size", "subtype"},
		[]Type{
			MakeBase(noPos, symbol.Intern("AnyTypeKind")),
			MakeBasePtr(noPos, symbol.Intern("ubyte")),
			MakeBase(noPos, symbol.Bool),
			MakeBase(noPos, symbol.Usize),
			MakeBasePtr(noPos, symbol.Intern("AnyType")),
		})
}

func injectAnyCompositeType(a *AST) {
	/* struct AnyCompositeType (kind AnyTypeKind, name *ubyte, is_alias bool, size usize,
	   members **AnyType, length usize, offsets *usize, member_names **ubyte, is_packed bool) */
	rttiStruct(a, "AnyCompositeType",
		[]string{"kind", "name", "is_alias", "size", "members", "length", "offsets", "member_names", "is_packed"},
		[]Type{
			MakeBase(noPos, symbol.Intern("AnyTypeKind")),
			MakeBasePtr(noPos, symbol.Intern("ubyte")),
			MakeBase(noPos, symbol.Bool),
			MakeBase(noPos, symbol.Usize),
			MakeBasePtrPtr(noPos, symbol.Intern("AnyType")),
			MakeBase(noPos, symbol.Usize),
			MakeBasePtr(noPos, symbol.Usize),
			MakeBasePtrPtr(noPos, symbol.Intern("ubyte")),
			MakeBase(noPos, symbol.Bool),
		})
}

func injectAnyStructType(a *AST) {
	// Structs with complicated layouts share AnyCompositeType; the alias is
	// kept so existing reflection code keeps working.

	/* alias AnyStructType = AnyCompositeType */
	a.AddAlias(TypeAlias{
		Name: symbol.Intern("AnyStructType"),
		Type: MakeBase(noPos, symbol.Intern("AnyCompositeType")),
		Pos:  noPos,
	})
}

func injectAnyUnionType(a *AST) {
	/* alias AnyUnionType = AnyCompositeType */
	a.AddAlias(TypeAlias{
		Name: symbol.Intern("AnyUnionType"),
		Type: MakeBase(noPos, symbol.Intern("AnyCompositeType")),
		Pos:  noPos,
	})
}

func injectAnyFuncPtrType(a *AST) {
	/* struct AnyFuncPtrType (kind AnyTypeKind, name *ubyte, is_alias bool, size usize,
	   args **AnyType, length usize, return_type *AnyType, is_vararg bool, is_stdcall bool) */
	rttiStruct(a, "AnyFuncPtrType",
		[]string{"kind", "name", "is_alias", "size", "args", "length", "return_type", "is_vararg", "is_stdcall"},
		[]Type{
			MakeBase(noPos, symbol.Intern("AnyTypeKind")),
			MakeBasePtr(noPos, symbol.Intern("ubyte")),
			MakeBase(noPos, symbol.Bool),
			MakeBase(noPos, symbol.Usize),
			MakeBasePtrPtr(noPos, symbol.Intern("AnyType")),
			MakeBase(noPos, symbol.Usize),
			MakeBasePtr(noPos, symbol.Intern("AnyType")),
			MakeBase(noPos, symbol.Bool),
			MakeBase(noPos, symbol.Bool),
		})
}

func injectAnyFixedArrayType(a *AST) {
	/* struct AnyFixedArrayType (kind AnyTypeKind, name *ubyte, is_alias bool, size usize, subtype *AnyType, length usize) */
	rttiStruct(a, "AnyFixedArrayType",
		[]string{"kind", "name", "is_alias", "size", "subtype", "length"},
		[]Type{
			MakeBase(noPos, symbol.Intern("AnyTypeKind")),
			MakeBasePtr(noPos, symbol.Intern("ubyte")),
			MakeBase(noPos, symbol.Bool),
			MakeBase(noPos, symbol.Usize),
			MakeBasePtr(noPos, symbol.Intern("AnyType")),
			MakeBase(noPos, symbol.Usize),
		})
}

func injectAnyEnumType(a *AST) {
	/* struct AnyEnumType (kind AnyTypeKind, name *ubyte, is_alias bool, size usize, members **ubyte, length usize) */
	rttiStruct(a, "AnyEnumType",
		[]string{"kind", "name", "is_alias", "size", "members", "length"},
		[]Type{
			MakeBase(noPos, symbol.Intern("AnyTypeKind")),
			MakeBasePtr(noPos, symbol.Intern("ubyte")),
			MakeBase(noPos, symbol.Bool),
			MakeBase(noPos, symbol.Usize),
			MakeBasePtrPtr(noPos, symbol.Intern("ubyte")),
			MakeBase(noPos, symbol.Usize),
		})
}

func injectRuntimeTypeGlobals(a *AST) {
	/* __types__ **AnyType */
	a.AddGlobal(Global{
		Name:   symbol.Intern("__types__"),
		Type:   MakeBasePtrPtr(noPos, symbol.Intern("AnyType")),
		Traits: GlobalSpecial | GlobalTypes,
		Pos:    noPos,
	})

	/* __types_length__ usize */
	a.AddGlobal(Global{
		Name:   symbol.Intern("__types_length__"),
		Type:   MakeBase(noPos, symbol.Usize),
		Traits: GlobalSpecial | GlobalTypesLength,
		Pos:    noPos,
	})

	/* __type_kinds__ **ubyte */
	a.AddGlobal(Global{
		Name:   symbol.Intern("__type_kinds__"),
		Type:   MakeBasePtrPtr(noPos, symbol.Intern("ubyte")),
		Traits: GlobalSpecial | GlobalTypeKinds,
		Pos:    noPos,
	})

	/* __type_kinds_length__ usize */
	a.AddGlobal(Global{
		Name:   symbol.Intern("__type_kinds_length__"),
		Type:   MakeBase(noPos, symbol.Usize),
		Traits: GlobalSpecial | GlobalTypeKindsLength,
		Pos:    noPos,
	})
}
