package ast

// Deep copies of expression nodes. Every list-typed child is cloned with
// ExprList.Clone; nil children stay nil.

func cloneExprOrNil(e Expr) Expr {
	if e == nil {
		return nil
	}
	return e.CloneExpr()
}

func (e *IntLit) CloneExpr() Expr     { c := *e; return &c }
func (e *FloatLit) CloneExpr() Expr   { c := *e; return &c }
func (e *BoolLit) CloneExpr() Expr    { c := *e; return &c }
func (e *StrLit) CloneExpr() Expr     { c := *e; return &c }
func (e *CStrLit) CloneExpr() Expr    { c := *e; return &c }
func (e *NullLit) CloneExpr() Expr    { c := *e; return &c }
func (e *Var) CloneExpr() Expr        { c := *e; return &c }
func (e *EnumValue) CloneExpr() Expr  { c := *e; return &c }
func (e *NewCString) CloneExpr() Expr { c := *e; return &c }

func (e *Member) CloneExpr() Expr {
	c := *e
	c.Subject = e.Subject.CloneExpr()
	return &c
}

func (e *ArrayAccess) CloneExpr() Expr {
	c := *e
	c.Subject = e.Subject.CloneExpr()
	c.Index = e.Index.CloneExpr()
	return &c
}

func (e *Call) CloneExpr() Expr {
	c := *e
	c.Args = e.Args.Clone()
	c.Gives = e.Gives.Clone()
	return &c
}

func (e *SuperCall) CloneExpr() Expr {
	c := *e
	c.Args = e.Args.Clone()
	return &c
}

func (e *MethodCall) CloneExpr() Expr {
	c := *e
	c.Subject = e.Subject.CloneExpr()
	c.Args = e.Args.Clone()
	c.Gives = e.Gives.Clone()
	return &c
}

func (e *Cast) CloneExpr() Expr {
	c := *e
	c.To = e.To.Clone()
	c.From = e.From.CloneExpr()
	return &c
}

func (e *Sizeof) CloneExpr() Expr {
	c := *e
	c.Type = e.Type.Clone()
	return &c
}

func (e *SizeofValue) CloneExpr() Expr {
	c := *e
	c.Value = e.Value.CloneExpr()
	return &c
}

func (e *Alignof) CloneExpr() Expr {
	c := *e
	c.Type = e.Type.Clone()
	return &c
}

func (e *Typeinfo) CloneExpr() Expr {
	c := *e
	c.Type = e.Type.Clone()
	return &c
}

func (e *Typenameof) CloneExpr() Expr {
	c := *e
	c.Type = e.Type.Clone()
	return &c
}

func (e *Address) CloneExpr() Expr {
	c := *e
	c.Subject = e.Subject.CloneExpr()
	return &c
}

func (e *FuncAddr) CloneExpr() Expr {
	c := *e
	c.MatchArgs = CloneTypes(e.MatchArgs)
	return &c
}

func (e *Dereference) CloneExpr() Expr {
	c := *e
	c.Subject = e.Subject.CloneExpr()
	return &c
}

func (e *UnaryMath) CloneExpr() Expr {
	c := *e
	c.Subject = e.Subject.CloneExpr()
	return &c
}

func (e *Update) CloneExpr() Expr {
	c := *e
	c.Subject = e.Subject.CloneExpr()
	return &c
}

func (e *Binary) CloneExpr() Expr {
	c := *e
	c.A = e.A.CloneExpr()
	c.B = e.B.CloneExpr()
	return &c
}

func (e *Ternary) CloneExpr() Expr {
	c := *e
	c.Cond = e.Cond.CloneExpr()
	c.A = e.A.CloneExpr()
	c.B = e.B.CloneExpr()
	return &c
}

func (e *New) CloneExpr() Expr {
	c := *e
	c.Type = e.Type.Clone()
	c.Count = cloneExprOrNil(e.Count)
	c.Inputs = e.Inputs.Clone()
	return &c
}

func (e *StaticStruct) CloneExpr() Expr {
	c := *e
	c.Type = e.Type.Clone()
	c.Values = e.Values.Clone()
	return &c
}

func (e *StaticArray) CloneExpr() Expr {
	c := *e
	c.Type = e.Type.Clone()
	c.Values = e.Values.Clone()
	return &c
}

func (e *InitList) CloneExpr() Expr {
	c := *e
	c.Values = e.Values.Clone()
	return &c
}

func (e *PolycountRef) CloneExpr() Expr { c := *e; return &c }
func (e *Embed) CloneExpr() Expr        { c := *e; return &c }

func (e *VaArg) CloneExpr() Expr {
	c := *e
	c.List = e.List.CloneExpr()
	c.Type = e.Type.Clone()
	return &c
}

func (e *Phantom) CloneExpr() Expr {
	c := *e
	c.Type = e.Type.Clone()
	return &c
}

func (e *LlvmAsm) CloneExpr() Expr {
	c := *e
	c.Args = e.Args.Clone()
	return &c
}

func (e *Declare) CloneExpr() Expr {
	c := *e
	c.Type = e.Type.Clone()
	c.Value = cloneExprOrNil(e.Value)
	c.Inputs = e.Inputs.Clone()
	return &c
}

func (e *DeclareNamedExpression) CloneExpr() Expr {
	c := *e
	c.Definition = e.Definition.Clone()
	return &c
}

func (e *Assign) CloneExpr() Expr {
	c := *e
	c.Dest = e.Dest.CloneExpr()
	c.Value = e.Value.CloneExpr()
	return &c
}

func (e *Return) CloneExpr() Expr {
	c := *e
	c.Value = cloneExprOrNil(e.Value)
	c.LastMinute = e.LastMinute.Clone()
	return &c
}

func (e *Conditional) CloneExpr() Expr {
	c := *e
	c.Cond = e.Cond.CloneExpr()
	c.Stmts = e.Stmts.Clone()
	return &c
}

func (e *ConditionalElse) CloneExpr() Expr {
	c := *e
	c.Cond = e.Cond.CloneExpr()
	c.Stmts = e.Stmts.Clone()
	c.ElseStmts = e.ElseStmts.Clone()
	return &c
}

func (e *WhileContinue) CloneExpr() Expr {
	c := *e
	c.Stmts = e.Stmts.Clone()
	return &c
}

func (e *EachIn) CloneExpr() Expr {
	c := *e
	if e.ItType != nil {
		t := e.ItType.Clone()
		c.ItType = &t
	}
	c.LowArray = cloneExprOrNil(e.LowArray)
	c.Length = cloneExprOrNil(e.Length)
	c.List = cloneExprOrNil(e.List)
	c.Stmts = e.Stmts.Clone()
	return &c
}

func (e *Repeat) CloneExpr() Expr {
	c := *e
	c.Limit = e.Limit.CloneExpr()
	c.Stmts = e.Stmts.Clone()
	return &c
}

// Clone deep-copies a switch case.
func (c Case) Clone() Case {
	out := c
	out.Value = c.Value.CloneExpr()
	out.Stmts = c.Stmts.Clone()
	return out
}

// CloneCases deep-copies a case list, preserving insertion order.
func CloneCases(cases []Case) []Case {
	if cases == nil {
		return nil
	}
	out := make([]Case, len(cases))
	for i := range cases {
		out[i] = cases[i].Clone()
	}
	return out
}

func (e *Switch) CloneExpr() Expr {
	c := *e
	c.Value = e.Value.CloneExpr()
	c.Cases = CloneCases(e.Cases)
	c.DefaultStmts = e.DefaultStmts.Clone()
	return &c
}

func (e *For) CloneExpr() Expr {
	c := *e
	c.Before = e.Before.Clone()
	c.Cond = cloneExprOrNil(e.Cond)
	c.After = e.After.Clone()
	c.Stmts = e.Stmts.Clone()
	return &c
}

func (e *Block) CloneExpr() Expr {
	c := *e
	c.Stmts = e.Stmts.Clone()
	return &c
}

func (e *Assert) CloneExpr() Expr {
	c := *e
	c.Value = e.Value.CloneExpr()
	c.Message = cloneExprOrNil(e.Message)
	return &c
}

func (e *Break) CloneExpr() Expr       { c := *e; return &c }
func (e *BreakTo) CloneExpr() Expr     { c := *e; return &c }
func (e *Continue) CloneExpr() Expr    { c := *e; return &c }
func (e *ContinueTo) CloneExpr() Expr  { c := *e; return &c }
func (e *Fallthrough) CloneExpr() Expr { c := *e; return &c }

func (e *Delete) CloneExpr() Expr {
	c := *e
	c.Value = e.Value.CloneExpr()
	return &c
}

func (e *VaStart) CloneExpr() Expr {
	c := *e
	c.Value = e.Value.CloneExpr()
	return &c
}

func (e *VaEnd) CloneExpr() Expr {
	c := *e
	c.Value = e.Value.CloneExpr()
	return &c
}

func (e *VaCopy) CloneExpr() Expr {
	c := *e
	c.Dest = e.Dest.CloneExpr()
	c.Src = e.Src.CloneExpr()
	return &c
}
