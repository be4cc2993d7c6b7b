package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Human-readable renderings of expression nodes, for logging and
// diagnostics.

func (l ExprList) join(sep string) string {
	parts := make([]string, len(l))
	for i, e := range l {
		parts[i] = e.String()
	}
	return strings.Join(parts, sep)
}

func (e *IntLit) String() string {
	if e.Kind == IntGeneric {
		return strconv.FormatInt(e.Value, 10)
	}
	return fmt.Sprintf("%d%s", e.Value, e.Kind.Name())
}

func (e *FloatLit) String() string {
	s := strconv.FormatFloat(e.Value, 'g', -1, 64)
	if e.Kind == FloatFloat {
		return s + "f"
	}
	return s
}

func (e *BoolLit) String() string {
	if e.Value {
		return "true"
	}
	return "false"
}

func (e *StrLit) String() string  { return strconv.Quote(e.Value) }
func (e *CStrLit) String() string { return "'" + e.Value + "'" }
func (e *NullLit) String() string { return "null" }
func (e *Var) String() string     { return e.Name.Str() }

func (e *EnumValue) String() string {
	return e.Enum.Str() + "::" + e.Kind.Str()
}

func (e *Member) String() string {
	return e.Subject.String() + "." + e.Field.Str()
}

func (e *ArrayAccess) String() string {
	if e.At {
		return e.Subject.String() + " at " + e.Index.String()
	}
	return e.Subject.String() + "[" + e.Index.String() + "]"
}

func (e *Call) String() string {
	maybe := ""
	if e.IsTentative {
		maybe = "?"
	}
	return e.Name.Str() + maybe + "(" + e.Args.join(", ") + ")"
}

func (e *SuperCall) String() string {
	return "super(" + e.Args.join(", ") + ")"
}

func (e *MethodCall) String() string {
	maybe := ""
	if e.IsTentative {
		maybe = "?"
	}
	return e.Subject.String() + "." + e.Name.Str() + maybe + "(" + e.Args.join(", ") + ")"
}

func (e *Cast) String() string {
	return "cast " + e.To.String() + " (" + e.From.String() + ")"
}

func (e *Sizeof) String() string      { return "sizeof " + e.Type.String() }
func (e *SizeofValue) String() string { return "sizeof(" + e.Value.String() + ")" }
func (e *Alignof) String() string     { return "alignof " + e.Type.String() }
func (e *Typeinfo) String() string    { return "typeinfo " + e.Type.String() }
func (e *Typenameof) String() string  { return "typenameof " + e.Type.String() }
func (e *Address) String() string     { return "&" + e.Subject.String() }

func (e *FuncAddr) String() string {
	return "func &" + e.Name.Str()
}

func (e *Dereference) String() string { return "*" + e.Subject.String() }

func (e *UnaryMath) String() string {
	return unaryKindNames[e.Kind] + e.Subject.String()
}

func (e *Update) String() string {
	switch e.Kind {
	case PreIncrement:
		return "++" + e.Subject.String()
	case PreDecrement:
		return "--" + e.Subject.String()
	case PostIncrement:
		return e.Subject.String() + "++"
	case PostDecrement:
		return e.Subject.String() + "--"
	case ToggleUpdate:
		return e.Subject.String() + "!!"
	}
	return "(bad update)"
}

func (e *Binary) String() string {
	return "(" + e.A.String() + " " + e.Kind.Name() + " " + e.B.String() + ")"
}

func (e *Ternary) String() string {
	return "(" + e.Cond.String() + " ? " + e.A.String() + " : " + e.B.String() + ")"
}

func (e *New) String() string {
	sb := strings.Builder{}
	sb.WriteString("new ")
	if e.IsUndef {
		sb.WriteString("undef ")
	}
	sb.WriteString(e.Type.String())
	if e.Count != nil {
		sb.WriteString(" * ")
		sb.WriteString(e.Count.String())
	}
	if e.Inputs != nil {
		sb.WriteString("(" + e.Inputs.join(", ") + ")")
	}
	return sb.String()
}

func (e *NewCString) String() string {
	return "new " + strconv.Quote(e.Value)
}

func (e *StaticStruct) String() string {
	return "static " + e.Type.String() + " (" + e.Values.join(", ") + ")"
}

func (e *StaticArray) String() string {
	return "static " + e.Type.String() + " {" + e.Values.join(", ") + "}"
}

func (e *InitList) String() string {
	return "{" + e.Values.join(", ") + "}"
}

func (e *PolycountRef) String() string { return "$#" + e.Name.Str() }
func (e *Embed) String() string        { return "embed " + strconv.Quote(e.Path) }

func (e *VaArg) String() string {
	return "va_arg(" + e.List.String() + ", " + e.Type.String() + ")"
}

func (e *Phantom) String() string { return "(phantom)" }

func (e *LlvmAsm) String() string { return "llvm_asm { ... }" }

func (e *Declare) String() string {
	sb := strings.Builder{}
	if e.Inline {
		if e.IsUndef {
			sb.WriteString("undef ")
		} else {
			sb.WriteString("def ")
		}
	}
	if e.Traits.Has(DeclareConst) {
		sb.WriteString("const ")
	}
	if e.Traits.Has(DeclareStatic) {
		sb.WriteString("static ")
	}
	sb.WriteString(e.Name.Str())
	sb.WriteByte(' ')
	if e.Traits.Has(DeclarePod) {
		sb.WriteString("POD ")
	}
	sb.WriteString(e.Type.String())
	if e.HasInputs {
		sb.WriteString("(" + e.Inputs.join(", ") + ")")
	}
	if e.Value != nil {
		sb.WriteString(" = " + e.Value.String())
	} else if e.IsUndef && !e.Inline {
		sb.WriteString(" = undef")
	}
	return sb.String()
}

func (e *DeclareNamedExpression) String() string {
	return "define " + e.Definition.Name.Str() + " = " + e.Definition.Value.String()
}

func (e *Assign) String() string {
	return e.Dest.String() + " " + assignKindNames[e.Kind] + " " + e.Value.String()
}

func (e *Return) String() string {
	if e.Value == nil {
		return "return"
	}
	return "return " + e.Value.String()
}

func (e *Conditional) String() string {
	return condKindNames[e.Kind] + " " + e.Cond.String() + " { ... }"
}

func (e *ConditionalElse) String() string {
	return condKindNames[e.Kind] + " " + e.Cond.String() + " { ... } else { ... }"
}

func (e *WhileContinue) String() string {
	if e.IsUntil {
		return "until break { ... }"
	}
	return "while continue { ... }"
}

func (e *EachIn) String() string {
	sb := strings.Builder{}
	sb.WriteString("each ")
	if e.ItName != 0 {
		sb.WriteString(e.ItName.Str() + " ")
	}
	sb.WriteString("in ")
	if e.List != nil {
		sb.WriteString(e.List.String())
	} else {
		sb.WriteString("[" + e.LowArray.String() + ", " + e.Length.String() + "]")
	}
	sb.WriteString(" { ... }")
	return sb.String()
}

func (e *Repeat) String() string {
	return "repeat " + e.Limit.String() + " { ... }"
}

func (e *Switch) String() string {
	return "switch " + e.Value.String() + " { ... }"
}

func (e *For) String() string { return "for { ... }" }

func (e *Block) String() string { return "{ ... }" }

func (e *Assert) String() string {
	if e.Message != nil {
		return "assert " + e.Value.String() + ", " + e.Message.String()
	}
	return "assert " + e.Value.String()
}

func (e *Break) String() string      { return "break" }
func (e *BreakTo) String() string    { return "break " + e.Label.Str() }
func (e *Continue) String() string   { return "continue" }
func (e *ContinueTo) String() string { return "continue " + e.Label.Str() }

func (e *Fallthrough) String() string { return "fallthrough" }
func (e *Delete) String() string      { return "delete " + e.Value.String() }
func (e *VaStart) String() string     { return "va_start " + e.Value.String() }
func (e *VaEnd) String() string       { return "va_end " + e.Value.String() }

func (e *VaCopy) String() string {
	return "va_copy(" + e.Dest.String() + ", " + e.Src.String() + ")"
}
