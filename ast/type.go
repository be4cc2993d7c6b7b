// Package ast defines the abstract syntax tree produced by the parser: the
// type model, the composite layout model, the expression/statement tree, the
// meta-expression evaluator, and the polymorph resolver.
//
// Types are ordered sequences of elements read left to right exactly as they
// appear in source. The type **ubyte is represented as the element sequence
// [pointer, pointer, base "ubyte"].
package ast

import (
	"strconv"
	"strings"
	"text/scanner"

	"github.com/brimlang/brim/hash"
	"github.com/brimlang/brim/symbol"
	"github.com/grailbio/base/log"
)

// Elem is a single element of a type's element sequence.
type Elem interface {
	// ElemPos reports the source location of the element.
	ElemPos() scanner.Position

	// CloneElem produces a deep copy of the element.
	CloneElem() Elem

	// Hash computes a hash of the element. Identical elements hash equal.
	Hash() hash.Hash

	// render appends the source form of the element.
	render(sb *strings.Builder)
}

// BaseElem names a primitive or user type.
type BaseElem struct {
	Pos  scanner.Position
	Name symbol.ID
}

// PointerElem is a single level of indirection.
type PointerElem struct {
	Pos scanner.Position
}

// ArrayElem is an unsized array prefix.
type ArrayElem struct {
	Pos scanner.Position
}

// FixedArrayElem is an array prefix with a known constant length.
type FixedArrayElem struct {
	Pos    scanner.Position
	Length uint64
}

// VarFixedArrayElem is an array prefix whose length is an expression. It is
// collapsed into a FixedArrayElem once the length is resolved; until then the
// element compares non-equal to everything, itself included.
type VarFixedArrayElem struct {
	Pos    scanner.Position
	Length Expr
}

// GenericIntElem is the type of an untyped integer literal.
type GenericIntElem struct {
	Pos scanner.Position
}

// GenericFloatElem is the type of an untyped float literal.
type GenericFloatElem struct {
	Pos scanner.Position
}

// FuncElem is a function pointer type.
type FuncElem struct {
	Pos        scanner.Position
	ArgTypes   []Type
	ReturnType Type
	Traits     Trait // FuncVararg, FuncVariadic, FuncStdcall
}

// PolymorphElem is a polymorphic type variable such as $T.
type PolymorphElem struct {
	Pos                 scanner.Position
	Name                symbol.ID
	AllowAutoConversion bool
}

// PolycountElem is a polymorphic count variable such as $#N. It stands where
// a fixed array length is expected.
type PolycountElem struct {
	Pos  scanner.Position
	Name symbol.ID
}

// PolymorphPrereqElem is a polymorphic type variable restricted to types
// structurally similar to a named composite, or extending a class.
type PolymorphPrereqElem struct {
	Pos                 scanner.Position
	Name                symbol.ID
	AllowAutoConversion bool
	Similarity          symbol.ID
	Extends             Type // empty when no extends-clause
}

// GenericBaseElem is a variant of a parameterised user type, e.g. <int> List.
type GenericBaseElem struct {
	Pos               scanner.Position
	Name              symbol.ID
	Generics          []Type
	NameIsPolymorphic bool
}

// LayoutElem is an anonymous composite embedded directly in a type.
type LayoutElem struct {
	Pos    scanner.Position
	Layout Layout
}

// Type is an ordered sequence of elements. A well-formed type has at least
// one element and only its final element is a terminal (base, layout,
// generic base, func, generic literal, or polymorph).
type Type struct {
	Elems []Elem
	Pos   scanner.Position
}

// IsEmpty reports whether the type carries no elements (the "no type"
// sentinel used for optional parent classes and optional gives-clauses).
func (t *Type) IsEmpty() bool { return len(t.Elems) == 0 }

// Clone produces a deep copy of the type.
func (t *Type) Clone() Type {
	if len(t.Elems) == 0 {
		return Type{Pos: t.Pos}
	}
	elems := make([]Elem, len(t.Elems))
	for i, e := range t.Elems {
		elems[i] = e.CloneElem()
	}
	return Type{Elems: elems, Pos: t.Pos}
}

// CloneTypes clones a list of types.
func CloneTypes(types []Type) []Type {
	if types == nil {
		return nil
	}
	out := make([]Type, len(types))
	for i := range types {
		out[i] = types[i].Clone()
	}
	return out
}

func (e *BaseElem) ElemPos() scanner.Position            { return e.Pos }
func (e *PointerElem) ElemPos() scanner.Position         { return e.Pos }
func (e *ArrayElem) ElemPos() scanner.Position           { return e.Pos }
func (e *FixedArrayElem) ElemPos() scanner.Position      { return e.Pos }
func (e *VarFixedArrayElem) ElemPos() scanner.Position   { return e.Pos }
func (e *GenericIntElem) ElemPos() scanner.Position      { return e.Pos }
func (e *GenericFloatElem) ElemPos() scanner.Position    { return e.Pos }
func (e *FuncElem) ElemPos() scanner.Position            { return e.Pos }
func (e *PolymorphElem) ElemPos() scanner.Position       { return e.Pos }
func (e *PolycountElem) ElemPos() scanner.Position       { return e.Pos }
func (e *PolymorphPrereqElem) ElemPos() scanner.Position { return e.Pos }
func (e *GenericBaseElem) ElemPos() scanner.Position     { return e.Pos }
func (e *LayoutElem) ElemPos() scanner.Position          { return e.Pos }

func (e *BaseElem) CloneElem() Elem    { c := *e; return &c }
func (e *PointerElem) CloneElem() Elem { c := *e; return &c }
func (e *ArrayElem) CloneElem() Elem   { c := *e; return &c }
func (e *FixedArrayElem) CloneElem() Elem {
	c := *e
	return &c
}

func (e *VarFixedArrayElem) CloneElem() Elem {
	c := *e
	if e.Length != nil {
		c.Length = e.Length.CloneExpr()
	}
	return &c
}

func (e *GenericIntElem) CloneElem() Elem   { c := *e; return &c }
func (e *GenericFloatElem) CloneElem() Elem { c := *e; return &c }

func (e *FuncElem) CloneElem() Elem {
	return &FuncElem{
		Pos:        e.Pos,
		ArgTypes:   CloneTypes(e.ArgTypes),
		ReturnType: e.ReturnType.Clone(),
		Traits:     e.Traits,
	}
}

func (e *PolymorphElem) CloneElem() Elem { c := *e; return &c }
func (e *PolycountElem) CloneElem() Elem { c := *e; return &c }

func (e *PolymorphPrereqElem) CloneElem() Elem {
	c := *e
	c.Extends = e.Extends.Clone()
	return &c
}

func (e *GenericBaseElem) CloneElem() Elem {
	c := *e
	c.Generics = CloneTypes(e.Generics)
	return &c
}

func (e *LayoutElem) CloneElem() Elem {
	c := *e
	c.Layout = e.Layout.Clone()
	return &c
}

// baseNamesEquivalent applies the two sanctioned cross-name equivalences:
// usize/ulong and bool/successful.
func baseNamesEquivalent(a, b symbol.ID) bool {
	if a == b {
		return true
	}
	if (a == symbol.Usize || a == symbol.Ulong) && (b == symbol.Usize || b == symbol.Ulong) {
		return true
	}
	if (a == symbol.Bool || a == symbol.Successful) && (b == symbol.Bool || b == symbol.Successful) {
		return true
	}
	return false
}

// TypesIdentical reports whether two types are identical. The two types must
// be exactly the same, element for element; type aliases are not collapsed.
// The only cross-name equivalences are usize/ulong and bool/successful.
// Uncollapsed var-fixed-array elements can never be proven equivalent.
func TypesIdentical(a, b *Type) bool {
	if len(a.Elems) != len(b.Elems) {
		return false
	}
	for i := range a.Elems {
		if !elemsIdentical(a.Elems[i], b.Elems[i]) {
			return false
		}
	}
	return true
}

// TypeListsIdentical compares two equal-length lists of types pairwise.
func TypeListsIdentical(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !TypesIdentical(&a[i], &b[i]) {
			return false
		}
	}
	return true
}

func elemsIdentical(rawA, rawB Elem) bool {
	switch a := rawA.(type) {
	case *BaseElem:
		b, ok := rawB.(*BaseElem)
		return ok && baseNamesEquivalent(a.Name, b.Name)
	case *PointerElem:
		_, ok := rawB.(*PointerElem)
		return ok
	case *ArrayElem:
		_, ok := rawB.(*ArrayElem)
		return ok
	case *FixedArrayElem:
		b, ok := rawB.(*FixedArrayElem)
		return ok && a.Length == b.Length
	case *VarFixedArrayElem:
		// We cannot know whether two unresolved lengths agree.
		return false
	case *GenericIntElem:
		_, ok := rawB.(*GenericIntElem)
		return ok
	case *GenericFloatElem:
		_, ok := rawB.(*GenericFloatElem)
		return ok
	case *FuncElem:
		b, ok := rawB.(*FuncElem)
		if !ok {
			return false
		}
		if a.Traits&FuncVararg != b.Traits&FuncVararg {
			return false
		}
		if a.Traits&FuncStdcall != b.Traits&FuncStdcall {
			return false
		}
		if !TypesIdentical(&a.ReturnType, &b.ReturnType) {
			return false
		}
		return TypeListsIdentical(a.ArgTypes, b.ArgTypes)
	case *PolymorphElem:
		b, ok := rawB.(*PolymorphElem)
		return ok && a.Name == b.Name && a.AllowAutoConversion == b.AllowAutoConversion
	case *PolycountElem:
		b, ok := rawB.(*PolycountElem)
		return ok && a.Name == b.Name
	case *PolymorphPrereqElem:
		b, ok := rawB.(*PolymorphPrereqElem)
		if !ok {
			return false
		}
		if a.AllowAutoConversion != b.AllowAutoConversion || a.Similarity != b.Similarity {
			return false
		}
		if !TypesIdentical(&a.Extends, &b.Extends) {
			return false
		}
		return a.Name == b.Name
	case *GenericBaseElem:
		b, ok := rawB.(*GenericBaseElem)
		if !ok {
			return false
		}
		if a.NameIsPolymorphic || b.NameIsPolymorphic {
			log.Panicf("TypesIdentical: polymorphic names for generic composites are unimplemented")
		}
		if a.Name != b.Name {
			return false
		}
		return TypeListsIdentical(a.Generics, b.Generics)
	case *LayoutElem:
		b, ok := rawB.(*LayoutElem)
		return ok && LayoutsIdentical(&a.Layout, &b.Layout)
	default:
		log.Panicf("TypesIdentical: unrecognized element %T", rawA)
		return false
	}
}

func (e *BaseElem) render(sb *strings.Builder)    { sb.WriteString(e.Name.Str()) }
func (e *PointerElem) render(sb *strings.Builder) { sb.WriteByte('*') }
func (e *ArrayElem) render(sb *strings.Builder)   { sb.WriteString("[] ") }

func (e *FixedArrayElem) render(sb *strings.Builder) {
	sb.WriteString(strconv.FormatUint(e.Length, 10))
	sb.WriteByte(' ')
}

func (e *VarFixedArrayElem) render(sb *strings.Builder) {
	sb.WriteByte('[')
	sb.WriteString(e.Length.String())
	sb.WriteString("] ")
}

func (e *GenericIntElem) render(sb *strings.Builder)   { sb.WriteString("long") }
func (e *GenericFloatElem) render(sb *strings.Builder) { sb.WriteString("double") }

func (e *FuncElem) render(sb *strings.Builder) {
	if e.Traits.Has(FuncStdcall) {
		sb.WriteString("stdcall ")
	}
	sb.WriteString("func(")
	for i := range e.ArgTypes {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.ArgTypes[i].String())
	}
	if e.Traits.Has(FuncVararg) {
		sb.WriteString(", ...")
	} else if e.Traits.Has(FuncVariadic) {
		sb.WriteString(", ..")
	}
	sb.WriteString(") ")
	sb.WriteString(e.ReturnType.String())
}

func (e *PolymorphElem) render(sb *strings.Builder) {
	sb.WriteByte('$')
	if e.AllowAutoConversion {
		sb.WriteByte('~')
	}
	sb.WriteString(e.Name.Str())
}

func (e *PolycountElem) render(sb *strings.Builder) {
	sb.WriteString("$#")
	sb.WriteString(e.Name.Str())
	sb.WriteByte(' ')
}

func (e *PolymorphPrereqElem) render(sb *strings.Builder) {
	sb.WriteByte('$')
	if e.AllowAutoConversion {
		sb.WriteByte('~')
	}
	sb.WriteString(e.Name.Str())
	sb.WriteByte('~')
	sb.WriteString(e.Similarity.Str())
}

func (e *GenericBaseElem) render(sb *strings.Builder) {
	sb.WriteByte('<')
	for i := range e.Generics {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.Generics[i].String())
	}
	sb.WriteString("> ")
	if e.NameIsPolymorphic {
		sb.WriteByte('$')
	}
	sb.WriteString(e.Name.Str())
}

func (e *LayoutElem) render(sb *strings.Builder) {
	sb.WriteString(e.Layout.String())
}

// String renders the type in its source form, e.g. "**ubyte", "10 int",
// "stdcall func(int, int) int", "<$K, $V> Map".
func (t *Type) String() string {
	sb := strings.Builder{}
	for _, e := range t.Elems {
		e.render(&sb)
	}
	return sb.String()
}

func (e *BaseElem) Hash() hash.Hash {
	return hash.Int(1).Merge(e.Name.Hash())
}

func (e *PointerElem) Hash() hash.Hash { return hash.Int(2) }
func (e *ArrayElem) Hash() hash.Hash   { return hash.Int(3) }

func (e *FixedArrayElem) Hash() hash.Hash {
	return hash.Int(4).Merge(hash.Uint(e.Length))
}

func (e *VarFixedArrayElem) Hash() hash.Hash { return hash.Int(5) }
func (e *GenericIntElem) Hash() hash.Hash    { return hash.Int(6) }
func (e *GenericFloatElem) Hash() hash.Hash  { return hash.Int(7) }

func (e *FuncElem) Hash() hash.Hash {
	h := hash.Int(8).Merge(hash.Uint(uint64(e.Traits & (FuncVararg | FuncVariadic | FuncStdcall))))
	for i := range e.ArgTypes {
		h = h.Merge(e.ArgTypes[i].Hash())
	}
	return h.Merge(e.ReturnType.Hash())
}

func (e *PolymorphElem) Hash() hash.Hash {
	return hash.Int(9).Merge(e.Name.Hash()).Merge(hash.Bool(e.AllowAutoConversion))
}

func (e *PolycountElem) Hash() hash.Hash {
	return hash.Int(10).Merge(e.Name.Hash())
}

func (e *PolymorphPrereqElem) Hash() hash.Hash {
	h := hash.Int(11).Merge(e.Name.Hash()).Merge(hash.Bool(e.AllowAutoConversion))
	h = h.Merge(e.Similarity.Hash())
	if !e.Extends.IsEmpty() {
		h = h.Merge(e.Extends.Hash())
	}
	return h
}

func (e *GenericBaseElem) Hash() hash.Hash {
	h := hash.Int(12).Merge(e.Name.Hash()).Merge(hash.Bool(e.NameIsPolymorphic))
	for i := range e.Generics {
		h = h.Merge(e.Generics[i].Hash())
	}
	return h
}

func (e *LayoutElem) Hash() hash.Hash {
	return hash.Int(13).Merge(e.Layout.Hash())
}

var typeHashSeed = hash.Hash{
	0x41, 0x9d, 0x2c, 0x5f, 0x88, 0x3a, 0xef, 0x01,
	0xb7, 0x64, 0x0e, 0xd2, 0x97, 0x55, 0xa3, 0x1c,
	0xf0, 0x28, 0x6b, 0xcd, 0x13, 0x84, 0x52, 0xe9,
	0x7a, 0x3f, 0xc6, 0x90, 0x0b, 0xd8, 0x25, 0x6e}

// Hash computes a hash of the type. The usize/ulong and bool/successful
// equivalences hash identically so that identical types hash equal.
func (t *Type) Hash() hash.Hash {
	h := typeHashSeed
	for _, e := range t.Elems {
		switch elem := e.(type) {
		case *BaseElem:
			name := elem.Name
			switch name {
			case symbol.Ulong:
				name = symbol.Usize
			case symbol.Successful:
				name = symbol.Bool
			}
			h = h.Merge(hash.Int(1).Merge(name.Hash()))
		default:
			h = h.Merge(e.Hash())
		}
	}
	return h
}
