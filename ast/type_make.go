package ast

import (
	"text/scanner"

	"github.com/brimlang/brim/symbol"
)

// Convenience constructors for commonly built types.

// MakeBase returns the type consisting of the single named base.
func MakeBase(pos scanner.Position, name symbol.ID) Type {
	return Type{Elems: []Elem{&BaseElem{Pos: pos, Name: name}}, Pos: pos}
}

// MakeBasePtr returns a pointer to the named base.
func MakeBasePtr(pos scanner.Position, name symbol.ID) Type {
	return Type{
		Elems: []Elem{&PointerElem{Pos: pos}, &BaseElem{Pos: pos, Name: name}},
		Pos:   pos,
	}
}

// MakeBasePtrPtr returns a pointer to a pointer to the named base.
func MakeBasePtrPtr(pos scanner.Position, name symbol.ID) Type {
	return Type{
		Elems: []Elem{&PointerElem{Pos: pos}, &PointerElem{Pos: pos}, &BaseElem{Pos: pos, Name: name}},
		Pos:   pos,
	}
}

// MakePolymorph returns the type consisting of the single polymorph $name.
func MakePolymorph(pos scanner.Position, name symbol.ID, allowAutoConversion bool) Type {
	return Type{
		Elems: []Elem{&PolymorphElem{Pos: pos, Name: name, AllowAutoConversion: allowAutoConversion}},
		Pos:   pos,
	}
}

// MakePolymorphPtr returns a pointer to the polymorph $name.
func MakePolymorphPtr(pos scanner.Position, name symbol.ID, allowAutoConversion bool) Type {
	return Type{
		Elems: []Elem{
			&PointerElem{Pos: pos},
			&PolymorphElem{Pos: pos, Name: name, AllowAutoConversion: allowAutoConversion},
		},
		Pos: pos,
	}
}

// MakeGenericBase returns a generic base variant, taking ownership of the
// generics list.
func MakeGenericBase(pos scanner.Position, name symbol.ID, generics []Type) Type {
	return Type{
		Elems: []Elem{&GenericBaseElem{Pos: pos, Name: name, Generics: generics}},
		Pos:   pos,
	}
}

// MakeBaseWithPolymorphs returns <$A, $B, ...> name for the given generic
// parameter names.
func MakeBaseWithPolymorphs(pos scanner.Position, name symbol.ID, generics []symbol.ID) Type {
	types := make([]Type, len(generics))
	for i, g := range generics {
		types[i] = MakePolymorph(pos, g, false)
	}
	return MakeGenericBase(pos, name, types)
}

// MakeFuncPtr returns a function pointer type, taking ownership of the
// argument and return types.
func MakeFuncPtr(pos scanner.Position, argTypes []Type, returnType Type, traits Trait) Type {
	return Type{
		Elems: []Elem{&FuncElem{
			Pos:        pos,
			ArgTypes:   argTypes,
			ReturnType: returnType,
			Traits:     traits,
		}},
		Pos: pos,
	}
}

// MakeFixedArray returns the type "length t", taking ownership of t.
func MakeFixedArray(pos scanner.Position, length uint64, t Type) Type {
	elems := make([]Elem, 0, len(t.Elems)+1)
	elems = append(elems, &FixedArrayElem{Pos: pos, Length: length})
	elems = append(elems, t.Elems...)
	return Type{Elems: elems, Pos: pos}
}
