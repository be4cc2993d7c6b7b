package ast

import (
	"github.com/brimlang/brim/symbol"
	"github.com/grailbio/base/log"
)

// PrependPointer prepends a pointer element to the type in place.
func (t *Type) PrependPointer() {
	elems := make([]Elem, len(t.Elems)+1)
	elems[0] = &PointerElem{Pos: t.Pos}
	copy(elems[1:], t.Elems)
	t.Elems = elems
}

// PointerTo returns a clone of the type with a pointer prepended.
func PointerTo(t *Type) Type {
	c := t.Clone()
	c.PrependPointer()
	return c
}

// DereferencedView returns a non-owning view of a pointer type with its head
// stripped. The view aliases the original's elements and is invalidated when
// the original is next modified.
func (t *Type) DereferencedView() Type {
	if len(t.Elems) < 2 {
		log.Panicf("DereferencedView: cannot dereference non-pointer type %s", t.String())
	}
	if _, ok := t.Elems[0].(*PointerElem); !ok {
		log.Panicf("DereferencedView: cannot dereference non-pointer type %s", t.String())
	}
	return Type{Elems: t.Elems[1:], Pos: t.Elems[1].ElemPos()}
}

// UnwrappedView returns a view of the type with its first element removed.
// The view is only valid until the supplied type is modified.
func (t *Type) UnwrappedView() Type {
	return Type{Elems: t.Elems[1:], Pos: t.Pos}
}

// Dereference removes the leading pointer element in place.
func (t *Type) Dereference() {
	if len(t.Elems) < 2 {
		log.Panicf("Dereference: cannot dereference non-pointer type %s", t.String())
	}
	if _, ok := t.Elems[0].(*PointerElem); !ok {
		log.Panicf("Dereference: cannot dereference non-pointer type %s", t.String())
	}
	t.Elems = append([]Elem(nil), t.Elems[1:]...)
	t.Pos = t.Elems[0].ElemPos()
}

// UnwrapFixedArray removes the leading fixed-array element in place.
func (t *Type) UnwrapFixedArray() {
	if len(t.Elems) < 2 {
		log.Panicf("UnwrapFixedArray: cannot unwrap non-fixed-array type %s", t.String())
	}
	if _, ok := t.Elems[0].(*FixedArrayElem); !ok {
		log.Panicf("UnwrapFixedArray: cannot unwrap non-fixed-array type %s", t.String())
	}
	t.Elems = append([]Elem(nil), t.Elems[1:]...)
}

// IsVoid reports whether the type is exactly "void".
func (t *Type) IsVoid() bool { return t.IsBaseOf(symbol.Void) }

// IsBase reports whether the type is a lone base element.
func (t *Type) IsBase() bool {
	if len(t.Elems) != 1 {
		return false
	}
	_, ok := t.Elems[0].(*BaseElem)
	return ok
}

// IsBaseOf reports whether the type is exactly the named base.
func (t *Type) IsBaseOf(name symbol.ID) bool {
	if len(t.Elems) != 1 {
		return false
	}
	base, ok := t.Elems[0].(*BaseElem)
	return ok && base.Name == name
}

// IsBasePtr reports whether the type is a pointer to a base.
func (t *Type) IsBasePtr() bool {
	if len(t.Elems) != 2 {
		return false
	}
	if _, ok := t.Elems[0].(*PointerElem); !ok {
		return false
	}
	_, ok := t.Elems[1].(*BaseElem)
	return ok
}

// IsBasePtrOf reports whether the type is a pointer to the named base.
func (t *Type) IsBasePtrOf(name symbol.ID) bool {
	if !t.IsBasePtr() {
		return false
	}
	return t.Elems[1].(*BaseElem).Name == name
}

// IsBaseLike reports whether the type is a lone base or generic base.
func (t *Type) IsBaseLike() bool {
	if len(t.Elems) != 1 {
		return false
	}
	switch t.Elems[0].(type) {
	case *BaseElem, *GenericBaseElem:
		return true
	}
	return false
}

// IsPointer reports whether the type begins with a pointer element.
func (t *Type) IsPointer() bool {
	if len(t.Elems) < 2 {
		return false
	}
	_, ok := t.Elems[0].(*PointerElem)
	return ok
}

// IsPointerTo reports whether the type is a pointer to the given type.
func (t *Type) IsPointerTo(to *Type) bool {
	if len(t.Elems) < 2 || len(t.Elems) != len(to.Elems)+1 {
		return false
	}
	if _, ok := t.Elems[0].(*PointerElem); !ok {
		return false
	}
	stripped := Type{Elems: t.Elems[1:], Pos: t.Pos}
	return TypesIdentical(&stripped, to)
}

// IsPointerToBaseLike reports whether the type is a pointer to a base or
// generic base.
func (t *Type) IsPointerToBaseLike() bool {
	if len(t.Elems) != 2 {
		return false
	}
	if _, ok := t.Elems[0].(*PointerElem); !ok {
		return false
	}
	switch t.Elems[1].(type) {
	case *BaseElem, *GenericBaseElem:
		return true
	}
	return false
}

// IsPolymorph reports whether the type is a lone plain polymorph.
func (t *Type) IsPolymorph() bool {
	if len(t.Elems) != 1 {
		return false
	}
	_, ok := t.Elems[0].(*PolymorphElem)
	return ok
}

// IsPolymorphPtr reports whether the type is a pointer to a plain polymorph.
func (t *Type) IsPolymorphPtr() bool {
	if len(t.Elems) != 2 {
		return false
	}
	if _, ok := t.Elems[0].(*PointerElem); !ok {
		return false
	}
	_, ok := t.Elems[1].(*PolymorphElem)
	return ok
}

// IsPolymorphLikePtr reports whether the type is a pointer to a plain
// polymorph or to a polymorph prerequisite.
func (t *Type) IsPolymorphLikePtr() bool {
	if len(t.Elems) != 2 {
		return false
	}
	if _, ok := t.Elems[0].(*PointerElem); !ok {
		return false
	}
	switch t.Elems[1].(type) {
	case *PolymorphElem, *PolymorphPrereqElem:
		return true
	}
	return false
}

// IsGenericBase reports whether the type is a lone generic base.
func (t *Type) IsGenericBase() bool {
	if len(t.Elems) != 1 {
		return false
	}
	_, ok := t.Elems[0].(*GenericBaseElem)
	return ok
}

// IsGenericBasePtr reports whether the type is a pointer to a generic base.
func (t *Type) IsGenericBasePtr() bool {
	if len(t.Elems) != 2 {
		return false
	}
	if _, ok := t.Elems[0].(*PointerElem); !ok {
		return false
	}
	_, ok := t.Elems[1].(*GenericBaseElem)
	return ok
}

// IsFixedArray reports whether the type begins with a fixed-array element.
func (t *Type) IsFixedArray() bool {
	if len(t.Elems) < 2 {
		return false
	}
	_, ok := t.Elems[0].(*FixedArrayElem)
	return ok
}

// IsFunc reports whether the type is a lone function pointer element.
func (t *Type) IsFunc() bool {
	if len(t.Elems) != 1 {
		return false
	}
	_, ok := t.Elems[0].(*FuncElem)
	return ok
}

// HasPolymorph reports whether the type contains a polymorphic element
// anywhere, descending into function signatures, generic arguments and
// embedded layout skeletons.
func (t *Type) HasPolymorph() bool {
	for _, raw := range t.Elems {
		switch e := raw.(type) {
		case *BaseElem, *PointerElem, *ArrayElem, *GenericIntElem,
			*GenericFloatElem, *FixedArrayElem, *VarFixedArrayElem:
		case *FuncElem:
			if TypeListHasPolymorph(e.ArgTypes) || e.ReturnType.HasPolymorph() {
				return true
			}
		case *PolymorphElem, *PolymorphPrereqElem, *PolycountElem:
			return true
		case *GenericBaseElem:
			if e.NameIsPolymorphic || TypeListHasPolymorph(e.Generics) {
				return true
			}
		case *LayoutElem:
			if e.Layout.Skeleton.HasPolymorph() {
				return true
			}
		default:
			log.Panicf("HasPolymorph: unrecognized element %T", raw)
		}
	}
	return false
}

// TypeListHasPolymorph reports whether any type in the list has a polymorph.
func TypeListHasPolymorph(types []Type) bool {
	for i := range types {
		if types[i].HasPolymorph() {
			return true
		}
	}
	return false
}

// StructName extracts the base name of a base or generic-base type.
func (t *Type) StructName() (symbol.ID, bool) {
	if len(t.Elems) == 0 {
		return symbol.Invalid, false
	}
	switch e := t.Elems[0].(type) {
	case *BaseElem:
		return e.Name, true
	case *GenericBaseElem:
		return e.Name, true
	}
	return symbol.Invalid, false
}
