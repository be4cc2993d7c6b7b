package ast

import (
	"strings"
	"text/scanner"

	"github.com/brimlang/brim/symbol"
)

// FuncID identifies a function within the AST container.
type FuncID int32

// InvalidFuncID is the sentinel for "no function".
const InvalidFuncID = FuncID(-1)

// Flow is a parameter's data-flow annotation. It affects semantic analysis
// only.
type Flow uint8

const (
	FlowNone Flow = iota
	FlowIn
	FlowOut
	FlowInout
)

// Name returns the source keyword of the flow.
func (f Flow) Name() string {
	switch f {
	case FlowIn:
		return "in"
	case FlowOut:
		return "out"
	case FlowInout:
		return "inout"
	}
	return ""
}

// Func is a function within the root AST.
type Func struct {
	Name          symbol.ID
	ArgNames      []symbol.ID
	ArgTypes      []Type
	ArgSources    []scanner.Position
	ArgFlows      []Flow
	ArgTypeTraits []Trait
	ArgDefaults   []Expr // nil, or per-arg maybe-nil defaults
	Arity         int

	ReturnType Type
	Traits     Trait
	Statements ExprList
	Pos        scanner.Position

	VariadicArgName symbol.ID // symbol.Invalid unless Traits has FuncVariadic
	VariadicPos     scanner.Position

	ExportAs           symbol.ID // symbol.Invalid when not exported
	InstantiationDepth int

	// VirtualOrigin is set only on functions carrying FuncVirtual or
	// FuncOverride; VirtualDispatcher only on FuncDispatcher functions. The
	// two are mutually exclusive.
	VirtualOrigin     FuncID
	VirtualDispatcher FuncID
}

// FuncHead is the information gathered from a function declaration's head
// before the body is parsed.
type FuncHead struct {
	Name       symbol.ID
	Pos        scanner.Position
	IsForeign  bool
	IsEntry    bool
	Prefixes   FuncPrefixes
	ExportName symbol.ID
}

// FuncPrefixes records the keywords that prefixed a function declaration.
type FuncPrefixes struct {
	IsStdcall  bool
	IsVerbatim bool
	IsImplicit bool
	IsExternal bool
	IsVirtual  bool
	IsOverride bool
}

// NewFuncTemplate fills out a blank function from a parsed head. The winmain
// trait is applied by the parser when configured for a windows entry point.
func NewFuncTemplate(head *FuncHead) Func {
	f := Func{
		Name:              head.Name,
		Pos:               head.Pos,
		ExportAs:          head.ExportName,
		VirtualOrigin:     InvalidFuncID,
		VirtualDispatcher: InvalidFuncID,
	}
	if head.IsForeign {
		f.Traits |= FuncForeign
	}
	if head.IsEntry {
		f.Traits |= FuncMain
	}
	if head.Prefixes.IsStdcall {
		f.Traits |= FuncStdcall
	}
	if head.Prefixes.IsImplicit {
		f.Traits |= FuncImplicit
	}
	if head.Prefixes.IsVirtual {
		f.Traits |= FuncVirtual
	}
	if head.Prefixes.IsOverride {
		f.Traits |= FuncOverride
	}
	return f
}

// IsMethod reports whether the function is method-like: its first parameter
// is named 'this'.
func (f *Func) IsMethod() bool {
	return f.Arity > 0 && len(f.ArgNames) > 0 && f.ArgNames[0] == symbol.This
}

// SubjectTypename returns the composite name a method belongs to.
//
// Requires f.IsMethod(). Returns false if the subject type is not a pointer
// to a base-like type.
func (f *Func) SubjectTypename() (symbol.ID, bool) {
	subject := &f.ArgTypes[0]
	if len(subject.Elems) != 2 {
		return symbol.Invalid, false
	}
	if _, ok := subject.Elems[0].(*PointerElem); !ok {
		return symbol.Invalid, false
	}
	switch e := subject.Elems[1].(type) {
	case *BaseElem:
		return e.Name, true
	case *GenericBaseElem:
		return e.Name, true
	}
	return symbol.Invalid, false
}

// HasPolymorphicSignature reports whether the function has polymorphic
// arguments or return type.
func (f *Func) HasPolymorphicSignature() bool {
	return TypeListHasPolymorph(f.ArgTypes) || f.ReturnType.HasPolymorph()
}

// ArgsString renders the inside of the parentheses of the function's
// declaration.
func (f *Func) ArgsString() string {
	sb := strings.Builder{}
	for i := 0; i < f.Arity; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		if f.ArgFlows[i] == FlowOut || f.ArgFlows[i] == FlowInout {
			sb.WriteString(f.ArgFlows[i].Name())
			sb.WriteByte(' ')
		}
		sb.WriteString(f.ArgNames[i].Str())
		sb.WriteByte(' ')
		if f.ArgTypeTraits[i].Has(ArgTypePod) {
			sb.WriteString("POD ")
		}
		sb.WriteString(f.ArgTypes[i].String())
	}
	if f.Traits.Has(FuncVararg) {
		if f.Arity > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("...")
	} else if f.Traits.Has(FuncVariadic) {
		if f.Arity > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(f.VariadicArgName.Str())
		sb.WriteString(" ..")
	}
	return sb.String()
}

// HeadString renders the signature of the function's head.
func (f *Func) HeadString() string {
	sb := strings.Builder{}
	if f.Traits.Has(FuncForeign) {
		sb.WriteString("foreign ")
	} else {
		sb.WriteString("func ")
	}
	if f.Traits.Has(FuncStdcall) {
		sb.WriteString("stdcall ")
	}
	sb.WriteString(f.Name.Str())
	sb.WriteByte('(')
	sb.WriteString(f.ArgsString())
	sb.WriteString(") ")
	sb.WriteString(f.ReturnType.String())
	return sb.String()
}

// FuncAlias redirects one function name to another, optionally filtered by
// argument types and required traits.
type FuncAlias struct {
	From           symbol.ID
	To             symbol.ID
	ArgTypes       []Type // nil matches any signature
	RequiredTraits Trait
	Pos            scanner.Position
	MatchFirstOfName bool
}
