package ast

import (
	"github.com/brimlang/brim/symbol"
	"github.com/grailbio/base/errors"
)

// PolyCatalog holds the bindings used during polymorph resolution: type
// variables ($T) bound to types and count variables ($#N) bound to lengths.
type PolyCatalog struct {
	Types  []PolyCatalogType
	Counts []PolyCatalogCount
}

// PolyCatalogType binds one type variable.
type PolyCatalogType struct {
	Name    symbol.ID
	Binding Type
}

// PolyCatalogCount binds one count variable.
type PolyCatalogCount struct {
	Name    symbol.ID
	Binding uint64
}

// AddType records a type binding, taking ownership of the type.
func (c *PolyCatalog) AddType(name symbol.ID, binding Type) {
	c.Types = append(c.Types, PolyCatalogType{Name: name, Binding: binding})
}

// AddCount records a count binding.
func (c *PolyCatalog) AddCount(name symbol.ID, binding uint64) {
	c.Counts = append(c.Counts, PolyCatalogCount{Name: name, Binding: binding})
}

// FindType looks up a type binding.
func (c *PolyCatalog) FindType(name symbol.ID) *PolyCatalogType {
	for i := range c.Types {
		if c.Types[i].Name == name {
			return &c.Types[i]
		}
	}
	return nil
}

// FindCount looks up a count binding.
func (c *PolyCatalog) FindCount(name symbol.ID) *PolyCatalogCount {
	for i := range c.Counts {
		if c.Counts[i].Name == name {
			return &c.Counts[i]
		}
	}
	return nil
}

// ResolveType walks a type and substitutes every polymorphic element using
// the catalog, returning a freshly owned type. A bound $T may expand into
// multiple elements; $#N becomes a fixed-array element. Resolution of a type
// without polymorphs yields a plain deep clone.
func (c *PolyCatalog) ResolveType(in *Type) (Type, error) {
	elems := make([]Elem, 0, len(in.Elems))

	for _, raw := range in.Elems {
		switch e := raw.(type) {
		case *FuncElem:
			argTypes := make([]Type, len(e.ArgTypes))
			for i := range e.ArgTypes {
				resolved, err := c.ResolveType(&e.ArgTypes[i])
				if err != nil {
					return Type{}, err
				}
				argTypes[i] = resolved
			}
			returnType, err := c.ResolveType(&e.ReturnType)
			if err != nil {
				return Type{}, err
			}
			elems = append(elems, &FuncElem{
				Pos:        e.Pos,
				ArgTypes:   argTypes,
				ReturnType: returnType,
				Traits:     e.Traits,
			})
		case *GenericBaseElem:
			if e.NameIsPolymorphic {
				return Type{}, errors.E(e.Pos.String(),
					"polymorphic names for generic composites are unimplemented")
			}
			resolved := make([]Type, len(e.Generics))
			for i := range e.Generics {
				generic, err := c.ResolveType(&e.Generics[i])
				if err != nil {
					return Type{}, err
				}
				resolved[i] = generic
			}
			elems = append(elems, &GenericBaseElem{
				Pos:      e.Pos,
				Name:     e.Name,
				Generics: resolved,
			})
		case *PolymorphElem:
			typeVar := c.FindType(e.Name)
			if typeVar == nil {
				return Type{}, errors.E(in.Pos.String(),
					"undetermined polymorphic type variable '$"+e.Name.Str()+"'")
			}
			for _, bound := range typeVar.Binding.Elems {
				elems = append(elems, bound.CloneElem())
			}
		case *PolycountElem:
			countVar := c.FindCount(e.Name)
			if countVar == nil {
				return Type{}, errors.E(in.Pos.String(),
					"undetermined polymorphic count variable '$#"+e.Name.Str()+"'")
			}
			elems = append(elems, &FixedArrayElem{Pos: e.Pos, Length: countVar.Binding})
		default:
			elems = append(elems, raw.CloneElem())
		}
	}

	return Type{Elems: elems, Pos: in.Pos}, nil
}

// ResolveTypeInPlace resolves a type into its own storage.
func (c *PolyCatalog) ResolveTypeInPlace(t *Type) error {
	resolved, err := c.ResolveType(t)
	if err != nil {
		return err
	}
	*t = resolved
	return nil
}

// ResolveExpr rewrites an expression tree, substituting polymorphs inside
// every embedded type and rewriting polycount references to usize literals.
// The tree is modified in place; the root may be replaced via the pointer.
func (c *PolyCatalog) ResolveExpr(e *Expr) error {
	if *e == nil {
		return nil
	}
	switch v := (*e).(type) {
	case *PolycountRef:
		countVar := c.FindCount(v.Name)
		if countVar == nil {
			return errors.E(v.Pos.String(),
				"undetermined polymorphic count variable '$#"+v.Name.Str()+"'")
		}
		*e = &IntLit{Pos: v.Pos, Kind: IntUsize, Value: int64(countVar.Binding)}
		return nil
	case *Return:
		if err := c.ResolveExpr(&v.Value); err != nil {
			return err
		}
		return c.resolveExprList(v.LastMinute)
	case *Call:
		if err := c.resolveExprList(v.Args); err != nil {
			return err
		}
		if !v.Gives.IsEmpty() {
			return c.ResolveTypeInPlace(&v.Gives)
		}
		return nil
	case *SuperCall:
		return c.resolveExprList(v.Args)
	case *MethodCall:
		if err := c.ResolveExpr(&v.Subject); err != nil {
			return err
		}
		if err := c.resolveExprList(v.Args); err != nil {
			return err
		}
		if !v.Gives.IsEmpty() {
			return c.ResolveTypeInPlace(&v.Gives)
		}
		return nil
	case *Declare:
		if err := c.ResolveTypeInPlace(&v.Type); err != nil {
			return err
		}
		if err := c.ResolveExpr(&v.Value); err != nil {
			return err
		}
		return c.resolveExprList(v.Inputs)
	case *Assign:
		if err := c.ResolveExpr(&v.Dest); err != nil {
			return err
		}
		return c.ResolveExpr(&v.Value)
	case *Conditional:
		if err := c.ResolveExpr(&v.Cond); err != nil {
			return err
		}
		return c.resolveExprList(v.Stmts)
	case *ConditionalElse:
		if err := c.ResolveExpr(&v.Cond); err != nil {
			return err
		}
		if err := c.resolveExprList(v.Stmts); err != nil {
			return err
		}
		return c.resolveExprList(v.ElseStmts)
	case *WhileContinue:
		return c.resolveExprList(v.Stmts)
	case *EachIn:
		if v.ItType != nil {
			if err := c.ResolveTypeInPlace(v.ItType); err != nil {
				return err
			}
		}
		if err := c.ResolveExpr(&v.LowArray); err != nil {
			return err
		}
		if err := c.ResolveExpr(&v.Length); err != nil {
			return err
		}
		if err := c.ResolveExpr(&v.List); err != nil {
			return err
		}
		return c.resolveExprList(v.Stmts)
	case *Repeat:
		if err := c.ResolveExpr(&v.Limit); err != nil {
			return err
		}
		return c.resolveExprList(v.Stmts)
	case *Switch:
		if err := c.ResolveExpr(&v.Value); err != nil {
			return err
		}
		for i := range v.Cases {
			if err := c.ResolveExpr(&v.Cases[i].Value); err != nil {
				return err
			}
			if err := c.resolveExprList(v.Cases[i].Stmts); err != nil {
				return err
			}
		}
		return c.resolveExprList(v.DefaultStmts)
	case *For:
		if err := c.resolveExprList(v.Before); err != nil {
			return err
		}
		if err := c.ResolveExpr(&v.Cond); err != nil {
			return err
		}
		if err := c.resolveExprList(v.After); err != nil {
			return err
		}
		return c.resolveExprList(v.Stmts)
	case *Block:
		return c.resolveExprList(v.Stmts)
	case *Assert:
		if err := c.ResolveExpr(&v.Value); err != nil {
			return err
		}
		return c.ResolveExpr(&v.Message)
	case *Delete:
		return c.ResolveExpr(&v.Value)
	case *VaStart:
		return c.ResolveExpr(&v.Value)
	case *VaEnd:
		return c.ResolveExpr(&v.Value)
	case *VaCopy:
		if err := c.ResolveExpr(&v.Dest); err != nil {
			return err
		}
		return c.ResolveExpr(&v.Src)
	case *VaArg:
		if err := c.ResolveExpr(&v.List); err != nil {
			return err
		}
		return c.ResolveTypeInPlace(&v.Type)
	case *Cast:
		if err := c.ResolveTypeInPlace(&v.To); err != nil {
			return err
		}
		return c.ResolveExpr(&v.From)
	case *Sizeof:
		return c.ResolveTypeInPlace(&v.Type)
	case *SizeofValue:
		return c.ResolveExpr(&v.Value)
	case *Alignof:
		return c.ResolveTypeInPlace(&v.Type)
	case *Typeinfo:
		return c.ResolveTypeInPlace(&v.Type)
	case *Typenameof:
		return c.ResolveTypeInPlace(&v.Type)
	case *New:
		if err := c.ResolveTypeInPlace(&v.Type); err != nil {
			return err
		}
		if err := c.ResolveExpr(&v.Count); err != nil {
			return err
		}
		return c.resolveExprList(v.Inputs)
	case *StaticStruct:
		if err := c.ResolveTypeInPlace(&v.Type); err != nil {
			return err
		}
		return c.resolveExprList(v.Values)
	case *StaticArray:
		if err := c.ResolveTypeInPlace(&v.Type); err != nil {
			return err
		}
		return c.resolveExprList(v.Values)
	case *InitList:
		return c.resolveExprList(v.Values)
	case *UnaryMath:
		return c.ResolveExpr(&v.Subject)
	case *Update:
		return c.ResolveExpr(&v.Subject)
	case *Address:
		return c.ResolveExpr(&v.Subject)
	case *Dereference:
		return c.ResolveExpr(&v.Subject)
	case *Member:
		return c.ResolveExpr(&v.Subject)
	case *ArrayAccess:
		if err := c.ResolveExpr(&v.Subject); err != nil {
			return err
		}
		return c.ResolveExpr(&v.Index)
	case *Binary:
		if err := c.ResolveExpr(&v.A); err != nil {
			return err
		}
		return c.ResolveExpr(&v.B)
	case *Ternary:
		if err := c.ResolveExpr(&v.Cond); err != nil {
			return err
		}
		if err := c.ResolveExpr(&v.A); err != nil {
			return err
		}
		return c.ResolveExpr(&v.B)
	case *FuncAddr:
		for i := range v.MatchArgs {
			if err := c.ResolveTypeInPlace(&v.MatchArgs[i]); err != nil {
				return err
			}
		}
		return nil
	case *DeclareNamedExpression:
		return c.ResolveExpr(&v.Definition.Value)
	case *LlvmAsm:
		return c.resolveExprList(v.Args)
	case *Phantom:
		return c.ResolveTypeInPlace(&v.Type)
	default:
		// Leaf nodes carry no types.
		return nil
	}
}

func (c *PolyCatalog) resolveExprList(list ExprList) error {
	for i := range list {
		if err := c.ResolveExpr(&list[i]); err != nil {
			return err
		}
	}
	return nil
}
