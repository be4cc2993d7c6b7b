package ast

import (
	"text/scanner"

	"github.com/brimlang/brim/symbol"
)

// Composite is a struct, union, record, or class within the root AST.
type Composite struct {
	Name   symbol.ID
	Layout Layout
	Pos    scanner.Position

	// Parent is the parent class type; empty for non-classes and root
	// classes.
	Parent Type

	IsPolymorphic  bool
	IsClass        bool
	HasConstructor bool
}

// PolyComposite is a polymorphic composite; it additionally owns the list of
// generic parameter names.
type PolyComposite struct {
	Composite
	Generics []symbol.ID
}

// FindFieldExact finds a field by name within the composite, returning its
// endpoint and the derived path.
func (c *Composite) FindFieldExact(name symbol.ID) (Endpoint, Path, bool) {
	endpoint, ok := c.Layout.FieldMap.Find(name)
	if !ok {
		return Endpoint{}, Path{}, false
	}
	path, err := c.Layout.GetPath(endpoint)
	if err != nil {
		return Endpoint{}, Path{}, false
	}
	return endpoint, path, true
}

// TypeAlias pairs a name with a target type.
type TypeAlias struct {
	Name   symbol.ID
	Type   Type
	Traits Trait
	Pos    scanner.Position
}

// Global is a global variable within the root AST.
type Global struct {
	Name    symbol.ID
	Type    Type
	Initial Expr // optional
	Traits  Trait
	Pos     scanner.Position
}

// Enum is a named enumeration with ordered kind names.
type Enum struct {
	Name  symbol.ID
	Kinds []symbol.ID
	Pos   scanner.Position
}

// FindKind finds a kind by name within the enum.
func (e *Enum) FindKind(name symbol.ID) (int, bool) {
	for i, kind := range e.Kinds {
		if kind == name {
			return i, true
		}
	}
	return 0, false
}

// Contains reports whether the enum has a kind with the given name.
func (e *Enum) Contains(name symbol.ID) bool {
	_, ok := e.FindKind(name)
	return ok
}

// NamedExpression binds a name to an owned expression.
type NamedExpression struct {
	Name   symbol.ID
	Value  Expr
	Traits Trait
	Pos    scanner.Position
}

// Clone deep-copies the named expression.
func (n NamedExpression) Clone() NamedExpression {
	out := n
	if n.Value != nil {
		out.Value = n.Value.CloneExpr()
	}
	return out
}
