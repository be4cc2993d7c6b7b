package parse

import (
	"text/scanner"

	"github.com/brimlang/brim/ast"
	"github.com/brimlang/brim/symbol"
	"github.com/brimlang/brim/token"
)

var noPosition scanner.Position

// parseFunc parses a function, foreign function, or constructor declaration
// beginning at the current token.
func (p *Parser) parseFunc() error {
	head, isConstructor, err := p.parseFuncHead()
	if err != nil {
		return err
	}

	id := p.ast.NewFunc()
	p.funcID = id
	defer func() { p.funcID = ast.InvalidFuncID }()

	fn := p.ast.Func(id)
	*fn = ast.NewFuncTemplate(&head)

	if head.IsEntry && p.cfg.WindowsEntry {
		fn.Traits |= ast.FuncWinmain
	}
	if isConstructor {
		fn.Traits |= ast.FuncClassConstructor
	}

	if err := p.parseFuncArguments(fn); err != nil {
		return err
	}

	// Return type: void unless a type follows the argument list.
	switch p.kind() {
	case token.Begin, token.Newline, token.None:
		fn.ReturnType = ast.MakeBase(fn.Pos, symbol.Void)
	default:
		returnType, err := p.parseType()
		if err != nil {
			return err
		}
		fn.ReturnType = returnType
	}

	if err := p.validateFuncRequirements(fn, fn.Pos); err != nil {
		return err
	}

	if !fn.Traits.Has(ast.FuncForeign) {
		if err := p.parseFuncBody(fn); err != nil {
			return err
		}
	}

	if fn.HasPolymorphicSignature() {
		fn.Traits |= ast.FuncPolymorphic
		p.ast.AddPolyFunc(fn.Name, id)
		if fn.IsMethod() {
			p.ast.AddPolyMethod(fn.Name, id)
		}
	}

	if isConstructor {
		p.solidifyConstructor(id)
	}
	return nil
}

// parseFuncHead parses the prefix keywords, declaration keyword, and name
// of a function.
func (p *Parser) parseFuncHead() (ast.FuncHead, bool, error) {
	head := ast.FuncHead{Pos: p.pos()}

	// Prefix keywords.
prefixes:
	for {
		switch p.kind() {
		case token.Stdcall:
			head.Prefixes.IsStdcall = true
			p.i++
		case token.Verbatim:
			head.Prefixes.IsVerbatim = true
			p.i++
		case token.Implicit:
			head.Prefixes.IsImplicit = true
			p.i++
		case token.External:
			head.Prefixes.IsExternal = true
			p.i++
		case token.Virtual:
			head.Prefixes.IsVirtual = true
			p.i++
		case token.Override:
			head.Prefixes.IsOverride = true
			p.i++
		default:
			break prefixes
		}
	}

	isConstructor := false
	switch p.kind() {
	case token.Func:
		p.i++
	case token.Foreign:
		head.IsForeign = true
		p.i++
	case token.Constructor:
		isConstructor = true
		p.i++
	default:
		return head, false, p.errorf(p.posAt(p.i-1), "Expected 'func' or 'foreign' or 'constructor' keyword")
	}

	if isConstructor {
		if p.compositeAssociation == nil {
			return head, false, p.errorf(head.Pos, "Constructors can only be defined inside composite domains")
		}
		head.Name = symbol.Intern("__constructor__")
		p.compositeAssociation.HasConstructor = true
		return head, true, nil
	}

	name, err := p.takeWord("Expected function name after 'func' keyword")
	if err != nil {
		return head, false, err
	}
	if p.compositeAssociation == nil {
		name = p.namespaced(name)
	}
	head.Name = name
	head.IsEntry = name.Str() == p.cfg.EntryPoint

	// Optional export name, 'func name export "symbol"'.
	if p.kind() == token.Word && p.cur().Str == "export" {
		p.i++
		tok := p.cur()
		if tok.Kind != token.String && tok.Kind != token.CString {
			return head, false, p.errorf(p.pos(), "Expected export symbol name after 'export' keyword")
		}
		p.i++
		head.ExportName = symbol.Intern(tok.Str)
	}

	return head, isConstructor, nil
}

// growFuncArgument appends one blank argument slot.
func growFuncArgument(fn *ast.Func) {
	fn.ArgNames = append(fn.ArgNames, symbol.Invalid)
	fn.ArgTypes = append(fn.ArgTypes, ast.Type{})
	fn.ArgSources = append(fn.ArgSources, noPosition)
	fn.ArgFlows = append(fn.ArgFlows, ast.FlowIn)
	fn.ArgTypeTraits = append(fn.ArgTypeTraits, ast.TraitNone)
}

// parseFuncArguments parses the parenthesised parameter list. Inside a
// composite domain, 'this' is injected as the first parameter.
func (p *Parser) parseFuncArguments(fn *ast.Func) error {
	if err := p.ignoreNewlines("Expected '(' after function name"); err != nil {
		return err
	}

	if p.compositeAssociation != nil {
		if fn.Traits.Has(ast.FuncForeign) {
			return p.errorf(fn.Pos, "Cannot declare foreign function inside of struct domain")
		}
		growFuncArgument(fn)
		assoc := p.compositeAssociation
		if assoc.IsPolymorphic && p.associationIsPoly {
			poly := p.ast.FindPolyCompositeExact(assoc.Name)
			fn.ArgTypes[0] = ast.MakeBaseWithPolymorphs(assoc.Pos, assoc.Name, poly.Generics)
			fn.ArgTypes[0].PrependPointer()
		} else {
			fn.ArgTypes[0] = ast.MakeBasePtr(assoc.Pos, assoc.Name)
		}
		fn.ArgNames[0] = symbol.This
		fn.ArgSources[0] = assoc.Pos
		fn.Arity++
	}

	// Allow for no argument list at all.
	if p.kind() != token.Open {
		return nil
	}
	p.i++ // eat '('

	p.allowPolymorphicPrereqs = true
	defer func() { p.allowPolymorphicPrereqs = false }()

	backfill := 0
	for p.kind() != token.Close {
		if err := p.ignoreNewlines("Expected function argument"); err != nil {
			return err
		}

		isSolid, err := p.parseFuncArgument(fn, &backfill)
		if err != nil {
			return err
		}
		if !isSolid {
			continue
		}

		takesVariableArity := fn.Traits.HasAny(ast.FuncVararg | ast.FuncVariadic)
		if err := p.ignoreNewlines("Expected type after ',' in argument list"); err != nil {
			return err
		}
		if p.kind() == token.Next && !takesVariableArity {
			p.i++
			if p.kind() == token.Close {
				return p.errorf(p.pos(), "Expected type after ',' in argument list")
			}
		} else if p.kind() != token.Close {
			if takesVariableArity {
				return p.errorf(p.pos(), "Expected ')' after variadic argument")
			}
			return p.errorf(p.pos(), "Expected ',' after argument type")
		}
	}

	if backfill != 0 {
		return p.errorf(p.pos(), "Expected argument type before end of argument list")
	}

	collapsePolycountVarFixedArrays(fn.ArgTypes)
	collapseTypePolycountVarFixedArrays(&fn.ReturnType)

	p.i++ // skip over ')'
	return nil
}

// parseFuncArgument parses one parameter. Multiple names may share one type
// ('a, b, c int'); names without a type yet are backfilled when the type
// arrives. isSolid is false when the argument ended at a ',' with its type
// still pending.
func (p *Parser) parseFuncArgument(fn *ast.Func, backfill *int) (bool, error) {
	growFuncArgument(fn)
	slot := fn.Arity + *backfill

	// Optional flow keyword.
	switch p.kind() {
	case token.In:
		fn.ArgFlows[slot] = ast.FlowIn
		p.i++
	case token.Out:
		fn.ArgFlows[slot] = ast.FlowOut
		p.i++
	case token.Inout:
		fn.ArgFlows[slot] = ast.FlowInout
		p.i++
	}

	if p.kind() == token.Ellipsis {
		// C-style variadic '...'.
		p.i++
		fn.Traits |= ast.FuncVararg
		p.truncateLastArgument(fn)
		return true, nil
	}

	pos := p.pos()
	name, err := p.takeWord("Expected name for argument in function argument list")
	if err != nil {
		return false, err
	}
	fn.ArgNames[slot] = name
	fn.ArgSources[slot] = pos

	switch p.kind() {
	case token.Next:
		// Type comes later; backfill.
		p.i++
		if p.kind() == token.Close {
			return false, p.errorf(p.pos(), "Expected type after ',' in argument list")
		}
		*backfill++
		return false, nil
	case token.Range:
		// Named variadic 'args ..'.
		p.i++
		if *backfill != 0 {
			return false, p.errorf(pos, "Expected type before variadic argument")
		}
		fn.Traits |= ast.FuncVariadic
		fn.VariadicArgName = name
		fn.VariadicPos = pos
		p.truncateLastArgument(fn)
		return true, nil
	}

	if p.eatOptional(token.Pod) {
		fn.ArgTypeTraits[slot] |= ast.ArgTypePod
	}

	argType, err := p.parseType()
	if err != nil {
		return false, err
	}
	fn.ArgTypes[slot] = argType

	// Optional default value.
	if p.eatOptional(token.Assign) {
		defaultValue, err := p.parseExpr()
		if err != nil {
			return false, err
		}
		if fn.ArgDefaults == nil {
			fn.ArgDefaults = make([]ast.Expr, len(fn.ArgTypes))
		}
		for len(fn.ArgDefaults) < len(fn.ArgTypes) {
			fn.ArgDefaults = append(fn.ArgDefaults, nil)
		}
		fn.ArgDefaults[slot] = defaultValue
	}

	// Backfill earlier untyped names with the same type and traits.
	for b := 0; b < *backfill; b++ {
		idx := fn.Arity + b
		fn.ArgTypes[idx] = argType.Clone()
		fn.ArgTypeTraits[idx] = fn.ArgTypeTraits[slot]
		fn.ArgFlows[idx] = fn.ArgFlows[slot]
	}
	fn.Arity += *backfill + 1
	*backfill = 0
	return true, nil
}

// truncateLastArgument drops the speculative argument slot grown for a
// variadic marker.
func (p *Parser) truncateLastArgument(fn *ast.Func) {
	n := len(fn.ArgNames) - 1
	fn.ArgNames = fn.ArgNames[:n]
	fn.ArgTypes = fn.ArgTypes[:n]
	fn.ArgSources = fn.ArgSources[:n]
	fn.ArgFlows = fn.ArgFlows[:n]
	fn.ArgTypeTraits = fn.ArgTypeTraits[:n]
}

// collapsePolycountVarFixedArrays rewrites '[$#N] T' prefixes parsed as
// var-fixed arrays into polycount elements.
func collapsePolycountVarFixedArrays(types []ast.Type) {
	for i := range types {
		collapseTypePolycountVarFixedArrays(&types[i])
	}
}

func collapseTypePolycountVarFixedArrays(t *ast.Type) {
	for i, raw := range t.Elems {
		varFixed, ok := raw.(*ast.VarFixedArrayElem)
		if !ok {
			continue
		}
		if ref, ok := varFixed.Length.(*ast.PolycountRef); ok {
			t.Elems[i] = &ast.PolycountElem{Pos: varFixed.Pos, Name: ref.Name}
		}
	}
}

// parseFuncBody parses the '{ ... }' body of a non-foreign function.
func (p *Parser) parseFuncBody(fn *ast.Func) error {
	if err := p.ignoreNewlines("Expected '{' to begin function body"); err != nil {
		return err
	}
	if err := p.eat(token.Begin, "Expected '{' to begin function body"); err != nil {
		return err
	}

	scope := newDeferScope(nil, symbol.Invalid, ast.TraitNone)
	var stmts ast.ExprList
	if err := p.parseStmts(&stmts, scope, stmtsStandard); err != nil {
		return err
	}
	if err := p.eat(token.End, "Expected '}' to close function body"); err != nil {
		return err
	}
	fn.Statements = stmts
	return nil
}

// solidifyConstructor creates the subject-less constructor for a
// subject-ful class constructor, so that 'Person(name, age)' works as a
// value expression. The generated function allocates 'this', invokes the
// real constructor as an initializer input, and returns it.
func (p *Parser) solidifyConstructor(constructorID ast.FuncID) {
	constructor := p.ast.Func(constructorID)
	thisPointee := constructor.ArgTypes[0].DereferencedView()

	name, ok := thisPointee.StructName()
	if !ok {
		return
	}

	id := p.ast.NewFunc()
	constructor = p.ast.Func(constructorID)
	fn := p.ast.Func(id)

	fn.Name = name
	fn.Pos = constructor.Pos
	fn.Traits = ast.FuncGenerated | ast.FuncAutogen
	fn.ReturnType = constructor.ArgTypes[0].Clone()

	arity := constructor.Arity - 1
	fn.Arity = arity
	fn.ArgNames = append([]symbol.ID(nil), constructor.ArgNames[1:]...)
	fn.ArgTypes = ast.CloneTypes(constructor.ArgTypes[1:])
	fn.ArgSources = append([]scanner.Position(nil), constructor.ArgSources[1:]...)
	fn.ArgFlows = append([]ast.Flow(nil), constructor.ArgFlows[1:]...)
	fn.ArgTypeTraits = append([]ast.Trait(nil), constructor.ArgTypeTraits[1:]...)
	if constructor.ArgDefaults != nil {
		fn.ArgDefaults = make([]ast.Expr, arity)
		for i := 0; i < arity; i++ {
			if constructor.ArgDefaults[i+1] != nil {
				fn.ArgDefaults[i] = constructor.ArgDefaults[i+1].CloneExpr()
			}
		}
	}

	// this *Class = new Class(args...)
	inputs := make(ast.ExprList, arity)
	for i := 0; i < arity; i++ {
		inputs[i] = &ast.Var{Pos: fn.Pos, Name: fn.ArgNames[i]}
	}
	pointee := thisPointee.Clone()
	fn.Statements = ast.ExprList{
		&ast.Declare{
			Pos:       fn.Pos,
			Name:      symbol.This,
			Type:      fn.ReturnType.Clone(),
			Value:     &ast.New{Pos: fn.Pos, Type: pointee, Inputs: inputs},
		},
		&ast.Return{
			Pos:   fn.Pos,
			Value: &ast.Var{Pos: fn.Pos, Name: symbol.This},
		},
	}

	if fn.HasPolymorphicSignature() {
		fn.Traits |= ast.FuncPolymorphic
		p.ast.AddPolyFunc(fn.Name, id)
	}
}
