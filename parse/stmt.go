package parse

import (
	"github.com/brimlang/brim/ast"
	"github.com/brimlang/brim/symbol"
	"github.com/brimlang/brim/token"
)

// Defer scope traits.
const (
	breakable ast.Trait = 1 << iota
	continuable
	fallthroughable
)

// deferScope collects the statements deferred within one lexical scope.
// On normal exit the statements are appended to the scope's output in LIFO
// order; 'break'/'continue'/'fallthrough' additionally replay the deferred
// statements of every scope they skip over, by cloning.
type deferScope struct {
	list   ast.ExprList
	parent *deferScope
	label  symbol.ID
	traits ast.Trait
}

func newDeferScope(parent *deferScope, label symbol.ID, traits ast.Trait) *deferScope {
	return &deferScope{parent: parent, label: label, traits: traits}
}

// total returns the number of deferred statements in this scope and all
// ancestor scopes.
func (d *deferScope) total() int {
	total := 0
	for scope := d; scope != nil; scope = scope.parent {
		total += len(scope.list)
	}
	return total
}

// fulfill moves this scope's deferred statements into the statement list in
// LIFO order, handing over ownership.
func (d *deferScope) fulfill(stmts *ast.ExprList) {
	for r := len(d.list); r != 0; r-- {
		*stmts = append(*stmts, d.list[r-1])
	}
	d.list = d.list[:0]
}

// fulfillByCloning appends clones of this scope's deferred statements in
// LIFO order, leaving the scope intact.
func (d *deferScope) fulfillByCloning(stmts *ast.ExprList) {
	for r := len(d.list); r != 0; r-- {
		*stmts = append(*stmts, d.list[r-1].CloneExpr())
	}
}

// rewind fulfills the current scope and replays ancestor scopes' deferred
// statements that a 'break'/'continue'/'fallthrough' would skip over,
// stopping at the first scope with the wanted trait (and label, if given).
func (d *deferScope) rewind(stmts *ast.ExprList, scopeTrait ast.Trait, label symbol.ID) {
	scope := d
	scope.fulfill(stmts)
	for (!scope.traits.Has(scopeTrait) || (label != symbol.Invalid && scope.label != label)) && scope.parent != nil {
		scope = scope.parent
		scope.fulfillByCloning(stmts)
	}
}

// unwindCompletely produces the list of deferred statements a 'return' must
// run: this scope's statements moved out, every ancestor's cloned.
func (d *deferScope) unwindCompletely() ast.ExprList {
	list := make(ast.ExprList, 0, d.total())
	d.fulfill(&list)
	for scope := d.parent; scope != nil; scope = scope.parent {
		scope.fulfillByCloning(&list)
	}
	return list
}

// Statement list parsing modes.
type stmtsMode uint8

const (
	stmtsStandard  stmtsMode = 0
	stmtsSingle    stmtsMode = 1 << iota // parse a single statement
	stmtsNoJoining                       // disable the ';' join operator
)

// parseBlockBeginning decides between a '{...}' block and the ', stmt'
// single-statement form.
func (p *Parser) parseBlockBeginning(construct string) (stmtsMode, error) {
	switch p.kind() {
	case token.Begin:
		p.i++
		return stmtsStandard, nil
	case token.Next:
		p.i++
		return stmtsSingle, nil
	}
	return 0, p.errorf(p.pos(), "Expected '{' or ',' after %s", construct)
}

// parseBlock parses a statement block for a construct, creating no scope of
// its own; the caller supplies the defer scope.
func (p *Parser) parseBlock(construct string, scope *deferScope) (ast.ExprList, error) {
	if err := p.ignoreNewlines("Expected '{' or ',' after " + construct); err != nil {
		return nil, err
	}
	mode, err := p.parseBlockBeginning(construct)
	if err != nil {
		return nil, err
	}
	var stmts ast.ExprList
	if err := p.parseStmts(&stmts, scope, mode); err != nil {
		return nil, err
	}
	if mode&stmtsSingle == 0 {
		if err := p.eat(token.End, "Expected '}' to close block"); err != nil {
			return nil, err
		}
	}
	return stmts, nil
}

// parseStmts parses statements into the list until the closing '}' (left
// unconsumed) or, in single mode, exactly one statement. The defer scope's
// statements are fulfilled into the list on scope exit.
func (p *Parser) parseStmts(stmts *ast.ExprList, scope *deferScope, mode stmtsMode) error {
	for {
		for p.kind() == token.Newline ||
			(mode&stmtsNoJoining == 0 && p.kind() == token.TerminateJoin) {
			p.i++
		}

		if p.kind() == token.End || p.kind() == token.None {
			scope.fulfill(stmts)
			return nil
		}

		if err := p.parseStmt(stmts, scope, mode); err != nil {
			return err
		}

		if mode&stmtsSingle != 0 {
			scope.fulfill(stmts)
			return nil
		}
	}
}

// parseStmt parses one statement and appends it (plus any rewound deferred
// statements) to the list.
func (p *Parser) parseStmt(stmts *ast.ExprList, scope *deferScope, mode stmtsMode) error {
	pos := p.pos()

	switch p.kind() {
	case token.Return:
		p.i++
		var value ast.Expr
		if p.kind() != token.Newline && p.kind() != token.End && p.kind() != token.None {
			parsed, err := p.parseExpr()
			if err != nil {
				return err
			}
			value = parsed
		}
		*stmts = append(*stmts, &ast.Return{Pos: pos, Value: value, LastMinute: scope.unwindCompletely()})
		return nil

	case token.Word:
		return p.parseStmtWord(stmts)

	case token.Const:
		return p.parseLocalConstantDeclaration(stmts)

	case token.Define:
		return p.parseLocalNamedExpression(stmts)

	case token.Static, token.Pod:
		return p.parseStmtDeclare(stmts)

	case token.If, token.Unless:
		return p.parseOnetimeConditional(stmts, scope)

	case token.While, token.Until:
		return p.parseLoopConditional(stmts, scope)

	case token.Each:
		return p.parseEachIn(stmts, scope)

	case token.Repeat:
		return p.parseRepeat(stmts, scope)

	case token.Defer:
		p.i++
		child := newDeferScope(scope, symbol.Invalid, ast.TraitNone)
		return p.parseStmts(&scope.list, child, stmtsSingle)

	case token.Delete:
		p.i++
		value, err := p.parseExpr()
		if err != nil {
			return err
		}
		*stmts = append(*stmts, &ast.Delete{Pos: pos, Value: value})
		return nil

	case token.Break:
		p.i++
		if p.kind() == token.Word {
			label := p.takeWordPayload()
			scope.rewind(stmts, breakable, label)
			*stmts = append(*stmts, &ast.BreakTo{Pos: pos, Label: label})
			return nil
		}
		scope.rewind(stmts, breakable, symbol.Invalid)
		*stmts = append(*stmts, &ast.Break{Pos: pos})
		return nil

	case token.Continue:
		p.i++
		if p.kind() == token.Word {
			label := p.takeWordPayload()
			scope.rewind(stmts, continuable, label)
			*stmts = append(*stmts, &ast.ContinueTo{Pos: pos, Label: label})
			return nil
		}
		scope.rewind(stmts, continuable, symbol.Invalid)
		*stmts = append(*stmts, &ast.Continue{Pos: pos})
		return nil

	case token.Fallthrough:
		p.i++
		scope.rewind(stmts, fallthroughable, symbol.Invalid)
		*stmts = append(*stmts, &ast.Fallthrough{Pos: pos})
		return nil

	case token.Exhaustive:
		p.i++
		if err := p.eat(token.Switch, "Expected 'switch' after 'exhaustive' keyword"); err != nil {
			return err
		}
		return p.parseSwitch(stmts, scope, true)

	case token.Switch:
		p.i++
		return p.parseSwitch(stmts, scope, false)

	case token.VaStart:
		p.i++
		value, err := p.parseExpr()
		if err != nil {
			return err
		}
		*stmts = append(*stmts, &ast.VaStart{Pos: pos, Value: value})
		return nil

	case token.VaEnd:
		p.i++
		value, err := p.parseExpr()
		if err != nil {
			return err
		}
		*stmts = append(*stmts, &ast.VaEnd{Pos: pos, Value: value})
		return nil

	case token.VaCopy:
		return p.parseVaCopy(stmts)

	case token.For:
		return p.parseFor(stmts, scope)

	case token.LlvmAsm:
		return p.parseLlvmAsm(stmts)

	case token.Begin:
		p.i++
		child := newDeferScope(scope, symbol.Invalid, ast.TraitNone)
		var inner ast.ExprList
		if err := p.parseStmts(&inner, child, stmtsStandard); err != nil {
			return err
		}
		if err := p.eat(token.End, "Expected '}' to close block"); err != nil {
			return err
		}
		*stmts = append(*stmts, &ast.Block{Pos: pos, Stmts: inner})
		return nil

	case token.Assert:
		p.i++
		value, err := p.parseExpr()
		if err != nil {
			return err
		}
		var message ast.Expr
		if p.eatOptional(token.Next) {
			message, err = p.parseExpr()
			if err != nil {
				return err
			}
		}
		*stmts = append(*stmts, &ast.Assert{Pos: pos, Value: value, Message: message})
		return nil

	case token.Meta:
		return p.parseMetaDirective()

	default:
		// Fall back to an assignment or a standalone mutable statement
		// (dereference store, method call, increment).
		return p.parseAssign(stmts)
	}
}

// parseStmtWord dispatches a statement that begins with a word: a call, a
// declaration, or an assignment.
func (p *Parser) parseStmtWord(stmts *ast.ExprList) error {
	next := p.kindAt(p.i + 1)

	switch next {
	case token.Open, token.Maybe:
		if p.cur().Str == "super" {
			return p.parseSuperStmt(stmts)
		}
		return p.parseStmtCall(stmts)
	case token.Word, token.Multiply, token.Polycount, token.GenericInt,
		token.Func, token.Stdcall, token.Struct, token.Packed, token.Union,
		token.Polymorph, token.LessThan, token.BitLshift, token.BitLgcLshift,
		token.Next, token.Pod:
		return p.parseStmtDeclare(stmts)
	case token.BracketOpen:
		// Ambiguous between a declaration ('arr [n] int') and an indexed
		// assignment ('arr[n] = ...'); try the declaration first.
		anchor := p.i
		var probe ast.ExprList
		if err := p.parseStmtDeclare(&probe); err == nil {
			*stmts = append(*stmts, probe...)
			return nil
		}
		p.i = anchor
		return p.parseAssign(stmts)
	default:
		return p.parseAssign(stmts)
	}
}

// parseStmtCall parses a call statement; tentative calls ('f?(...)') are
// allowed in statement position.
func (p *Parser) parseStmtCall(stmts *ast.ExprList) error {
	call, err := p.parseExprCall(true)
	if err != nil {
		return err
	}
	// Postfix modifiers make this a method-call chain statement.
	expr, err := p.parseExprPost(call)
	if err != nil {
		return err
	}
	*stmts = append(*stmts, expr)
	return nil
}

// parseSuperStmt parses 'super(args...)'.
func (p *Parser) parseSuperStmt(stmts *ast.ExprList) error {
	pos := p.pos()
	p.i++ // skip 'super'
	isTentative := p.eatOptional(token.Maybe)
	if err := p.eat(token.Open, "Expected '(' after 'super' keyword"); err != nil {
		return err
	}
	args, err := p.parseExprArguments()
	if err != nil {
		return err
	}
	*stmts = append(*stmts, &ast.SuperCall{Pos: pos, Args: args, IsTentative: isTentative})
	return nil
}

var assignTokens = map[token.Kind]ast.AssignKind{
	token.Assign:             ast.AssignPlain,
	token.AddAssign:          ast.AssignAdd,
	token.SubtractAssign:     ast.AssignSubtract,
	token.MultiplyAssign:     ast.AssignMultiply,
	token.DivideAssign:       ast.AssignDivide,
	token.ModulusAssign:      ast.AssignModulus,
	token.BitAndAssign:       ast.AssignBitAnd,
	token.BitOrAssign:        ast.AssignBitOr,
	token.BitXorAssign:       ast.AssignBitXor,
	token.BitLshiftAssign:    ast.AssignBitLshift,
	token.BitRshiftAssign:    ast.AssignBitRshift,
	token.BitLgcLshiftAssign: ast.AssignBitLgcLshift,
	token.BitLgcRshiftAssign: ast.AssignBitLgcRshift,
}

// parseAssign parses an assignment statement, or accepts a standalone
// mutable statement (method call, update, super call).
func (p *Parser) parseAssign(stmts *ast.ExprList) error {
	pos := p.pos()
	dest, err := p.parseMutableExpr()
	if err != nil {
		return err
	}

	kind, isAssign := assignTokens[p.kind()]
	if !isAssign {
		switch dest.(type) {
		case *ast.MethodCall, *ast.Update, *ast.Call, *ast.SuperCall:
			*stmts = append(*stmts, dest)
			return nil
		}
		return p.errorf(p.pos(), "Expected assignment operator after statement")
	}
	p.i++ // skip the assignment operator

	if !ast.IsMutable(dest) {
		return p.errorf(pos, "Cannot assign to immutable value")
	}

	isPod := false
	if kind == ast.AssignPlain {
		isPod = p.eatOptional(token.Pod)
	}

	if err := p.ignoreNewlines("Expected value after assignment operator"); err != nil {
		return err
	}
	value, err := p.parseExpr()
	if err != nil {
		return err
	}
	*stmts = append(*stmts, &ast.Assign{Pos: pos, Kind: kind, Dest: dest, Value: value, IsPod: isPod})
	return nil
}

// parseStmtDeclare parses variable declarations:
//
//	a, b, c Type
//	name POD Type = value
//	name Type = undef
//	name Type(constructor args)
//	static name Type
func (p *Parser) parseStmtDeclare(stmts *ast.ExprList) error {
	traits := ast.TraitNone

	for {
		if p.eatOptional(token.Static) {
			traits |= ast.DeclareStatic
			continue
		}
		if p.eatOptional(token.Const) {
			traits |= ast.DeclareConst
			continue
		}
		break
	}

	// Collect 'a, b, c' names.
	var names []symbol.ID
	var namePositions []int
	for {
		namePositions = append(namePositions, p.i)
		name, err := p.takeWord("Expected variable name in declaration")
		if err != nil {
			return err
		}
		names = append(names, name)
		if !p.eatOptional(token.Next) {
			break
		}
		if err := p.ignoreNewlines("Expected variable name after ',' in declaration"); err != nil {
			return err
		}
	}

	if p.eatOptional(token.Pod) {
		traits |= ast.DeclarePod
	}

	declType, err := p.parseType()
	if err != nil {
		return err
	}

	var value ast.Expr
	var inputs ast.ExprList
	hasInputs := false
	isUndef := false

	switch {
	case p.kind() == token.Open:
		// Constructor-call form 'Name Type(args...)'.
		p.i++
		inputs, err = p.parseExprArguments()
		if err != nil {
			return err
		}
		if inputs == nil {
			inputs = ast.ExprList{}
		}
		hasInputs = true
	case p.eatOptional(token.Assign):
		if p.eatOptional(token.Pod) {
			traits |= ast.DeclareAssignPod
		}
		if p.kind() == token.Undef {
			p.i++
			isUndef = true
			break
		}
		if err := p.ignoreNewlines("Expected value after '=' in declaration"); err != nil {
			return err
		}
		value, err = p.parseExpr()
		if err != nil {
			return err
		}
	}

	for idx, name := range names {
		decl := &ast.Declare{
			Pos:       p.posAt(namePositions[idx]),
			Name:      name,
			Type:      declType.Clone(),
			Traits:    traits,
			IsUndef:   isUndef,
			HasInputs: hasInputs,
		}
		if value != nil {
			if idx == len(names)-1 {
				decl.Value = value
			} else {
				decl.Value = value.CloneExpr()
			}
		}
		if hasInputs {
			if idx == len(names)-1 {
				decl.Inputs = inputs
			} else {
				decl.Inputs = inputs.Clone()
			}
		}
		*stmts = append(*stmts, decl)
	}
	return nil
}

// parseLocalConstantDeclaration parses 'const NAME = expr'.
func (p *Parser) parseLocalConstantDeclaration(stmts *ast.ExprList) error {
	// 'const' may also prefix a normal declaration; probe for '='.
	if p.kindAt(p.i+1) == token.Word && p.kindAt(p.i+2) != token.Assign {
		return p.parseStmtDeclare(stmts)
	}
	pos := p.pos()
	p.i++ // skip 'const'

	name, err := p.takeWord("Expected name for constant expression")
	if err != nil {
		return err
	}
	if err := p.eat(token.Assign, "Expected '=' after name of constant expression"); err != nil {
		return err
	}
	value, err := p.parseExpr()
	if err != nil {
		return err
	}
	*stmts = append(*stmts, &ast.DeclareNamedExpression{
		Pos: pos,
		Definition: ast.NamedExpression{
			Name:  name,
			Value: value,
			Pos:   pos,
		},
	})
	return nil
}

// parseLocalNamedExpression parses 'define NAME = expr' in statement
// position.
func (p *Parser) parseLocalNamedExpression(stmts *ast.ExprList) error {
	pos := p.pos()
	p.i++ // skip 'define'

	name, err := p.takeWord("Expected name after 'define' keyword")
	if err != nil {
		return err
	}
	if err := p.eat(token.Assign, "Expected '=' after name of named expression"); err != nil {
		return err
	}
	value, err := p.parseExpr()
	if err != nil {
		return err
	}
	*stmts = append(*stmts, &ast.DeclareNamedExpression{
		Pos: pos,
		Definition: ast.NamedExpression{
			Name:  name,
			Value: value,
			Pos:   pos,
		},
	})
	return nil
}

// parseOnetimeConditional parses if/unless statements with an optional else
// block (which may itself be another conditional).
func (p *Parser) parseOnetimeConditional(stmts *ast.ExprList, scope *deferScope) error {
	pos := p.pos()
	kind := ast.CondIf
	if p.kind() == token.Unless {
		kind = ast.CondUnless
	}
	p.i++

	cond, err := p.parseExpr()
	if err != nil {
		return err
	}

	child := newDeferScope(scope, symbol.Invalid, ast.TraitNone)
	body, err := p.parseBlock("conditional", child)
	if err != nil {
		return err
	}

	// Probe for an 'else' on this or the next line.
	anchor := p.i
	_ = p.ignoreNewlines("")
	if p.kind() != token.Else {
		p.i = anchor
		*stmts = append(*stmts, &ast.Conditional{Pos: pos, Kind: kind, Cond: cond, Stmts: body})
		return nil
	}
	p.i++ // skip 'else'

	elseScope := newDeferScope(scope, symbol.Invalid, ast.TraitNone)

	if err := p.ignoreNewlines("Expected '{' or statement after 'else'"); err != nil {
		return err
	}
	var elseStmts ast.ExprList
	if p.kind() == token.If || p.kind() == token.Unless {
		if err := p.parseOnetimeConditional(&elseStmts, elseScope); err != nil {
			return err
		}
	} else {
		elseStmts, err = p.parseBlock("'else'", elseScope)
		if err != nil {
			return err
		}
	}

	*stmts = append(*stmts, &ast.ConditionalElse{
		Pos:       pos,
		Kind:      kind,
		Cond:      cond,
		Stmts:     body,
		ElseStmts: elseStmts,
	})
	return nil
}

// parseLoopConditional parses while/until loops, their labeled forms, and
// the 'while continue' / 'until break' forms.
func (p *Parser) parseLoopConditional(stmts *ast.ExprList, scope *deferScope) error {
	pos := p.pos()
	isUntil := p.kind() == token.Until
	p.i++

	var cond ast.Expr
	label := symbol.Invalid

	if p.kind() == token.Break || p.kind() == token.Continue {
		// 'while continue' or 'until break' loop.
		if !isUntil && p.kind() != token.Continue {
			return p.errorf(p.posAt(p.i-1), "Did you mean to use 'while continue'? There is no such conditional as 'while break'")
		}
		if isUntil && p.kind() != token.Break {
			return p.errorf(p.posAt(p.i-1), "Did you mean to use 'until break'? There is no such conditional as 'until continue'")
		}
		p.i++
		if p.kind() == token.Word {
			label = p.takeWordPayload()
		}
	} else {
		if p.kind() == token.Word && p.kindAt(p.i+1) == token.Colon {
			label = p.takeWordPayload()
			p.i++ // skip ':'
		}
		parsed, err := p.parseExpr()
		if err != nil {
			return err
		}
		cond = parsed
	}

	child := newDeferScope(scope, label, breakable|continuable)
	body, err := p.parseBlock("conditional", child)
	if err != nil {
		return err
	}

	if cond == nil {
		*stmts = append(*stmts, &ast.WhileContinue{Pos: pos, IsUntil: isUntil, Label: label, Stmts: body})
		return nil
	}

	kind := ast.CondWhile
	if isUntil {
		kind = ast.CondUntil
	}
	*stmts = append(*stmts, &ast.Conditional{Pos: pos, Kind: kind, Label: label, Cond: cond, Stmts: body})
	return nil
}

// parseEachIn parses 'each [it Type] in [static] ([array, length] | list)'.
func (p *Parser) parseEachIn(stmts *ast.ExprList, scope *deferScope) error {
	pos := p.pos()
	p.i++ // skip 'each'

	label := symbol.Invalid
	if p.kind() == token.Word && p.kindAt(p.i+1) == token.Colon {
		label = p.takeWordPayload()
		p.i++ // skip ':'
	}

	itName := symbol.Invalid
	var itType *ast.Type

	if p.kind() != token.In {
		if p.kind() == token.Word && p.kindAt(p.i+1) != token.In {
			itName = p.takeWordPayload()
		}
		parsed, err := p.parseType()
		if err != nil {
			return err
		}
		itType = &parsed
	}

	if err := p.eat(token.In, "Expected 'in' keyword in 'each in' statement"); err != nil {
		return err
	}

	isStatic := p.eatOptional(token.Static)

	var lowArray, length, list ast.Expr
	if p.kind() == token.BracketOpen {
		p.i++
		p.ignoreNewlinesInExprDepth++
		var err error
		lowArray, err = p.parseExpr()
		if err != nil {
			p.ignoreNewlinesInExprDepth--
			return err
		}
		if err := p.eat(token.Next, "Expected ',' after array value in 'each in' statement"); err != nil {
			p.ignoreNewlinesInExprDepth--
			return err
		}
		length, err = p.parseExpr()
		if err != nil {
			p.ignoreNewlinesInExprDepth--
			return err
		}
		if err := p.eat(token.BracketClose, "Expected ']' after length in 'each in' statement"); err != nil {
			p.ignoreNewlinesInExprDepth--
			return err
		}
		p.ignoreNewlinesInExprDepth--
	} else {
		parsed, err := p.parseExpr()
		if err != nil {
			return err
		}
		list = parsed
	}

	child := newDeferScope(scope, label, breakable|continuable)
	body, err := p.parseBlock("'each in'", child)
	if err != nil {
		return err
	}

	*stmts = append(*stmts, &ast.EachIn{
		Pos:      pos,
		Label:    label,
		ItName:   itName,
		ItType:   itType,
		IsStatic: isStatic,
		LowArray: lowArray,
		Length:   length,
		List:     list,
		Stmts:    body,
	})
	return nil
}

// parseRepeat parses 'repeat [static] limit [using idx]'.
func (p *Parser) parseRepeat(stmts *ast.ExprList, scope *deferScope) error {
	pos := p.pos()
	p.i++ // skip 'repeat'

	label := symbol.Invalid
	if p.kind() == token.Word && p.kindAt(p.i+1) == token.Colon {
		label = p.takeWordPayload()
		p.i++ // skip ':'
	}

	isStatic := p.eatOptional(token.Static)

	limit, err := p.parseExpr()
	if err != nil {
		return err
	}
	if err := p.ignoreNewlines("Expected '{' or ',' after 'repeat' limit"); err != nil {
		return err
	}

	idxName := symbol.Invalid
	if p.eatOptional(token.Using) {
		idxName, err = p.takeWord("Expected name for 'idx' variable after 'using' keyword")
		if err != nil {
			return err
		}
		if err := p.ignoreNewlines("Expected '{' or ',' after 'repeat' limit"); err != nil {
			return err
		}
	}

	child := newDeferScope(scope, label, breakable|continuable)
	body, err := p.parseBlock("'repeat'", child)
	if err != nil {
		return err
	}

	*stmts = append(*stmts, &ast.Repeat{
		Pos:      pos,
		Label:    label,
		Limit:    limit,
		IdxName:  idxName,
		IsStatic: isStatic,
		Stmts:    body,
	})
	return nil
}

// parseSwitch parses a switch statement; the cursor points just after the
// 'switch' keyword.
func (p *Parser) parseSwitch(stmts *ast.ExprList, scope *deferScope, isExhaustive bool) error {
	pos := p.posAt(p.i - 1)

	value, err := p.parseExpr()
	if err != nil {
		return err
	}
	if err := p.ignoreNewlines("Expected '{' after switch value"); err != nil {
		return err
	}
	if err := p.eat(token.Begin, "Expected '{' after switch value"); err != nil {
		return err
	}

	out := &ast.Switch{Pos: pos, Value: value, IsExhaustive: isExhaustive}

	var currentStmts *ast.ExprList
	var currentScope *deferScope

	closeCurrent := func() {
		if currentScope != nil && currentStmts != nil {
			currentScope.fulfill(currentStmts)
		}
		currentScope = nil
		currentStmts = nil
	}

	for {
		for p.kind() == token.Newline || p.kind() == token.TerminateJoin {
			p.i++
		}

		switch p.kind() {
		case token.End:
			closeCurrent()
			p.i++
			*stmts = append(*stmts, out)
			return nil
		case token.None:
			return p.errorf(p.pos(), "Expected '}' to close switch statement")
		case token.Case:
			closeCurrent()
			casePos := p.pos()
			p.i++
			caseValue, err := p.parseExpr()
			if err != nil {
				return err
			}
			out.Cases = ast.AppendCase(out.Cases, ast.Case{Pos: casePos, Value: caseValue})
			currentStmts = &out.Cases[len(out.Cases)-1].Stmts
			currentScope = newDeferScope(scope, symbol.Invalid, breakable|fallthroughable)
		case token.Default:
			closeCurrent()
			p.i++
			if out.HasDefault {
				return p.errorf(p.pos(), "Switch statement already has a default case")
			}
			out.HasDefault = true
			out.DefaultStmts = ast.ExprList{}
			currentStmts = &out.DefaultStmts
			currentScope = newDeferScope(scope, symbol.Invalid, breakable|fallthroughable)
		default:
			if currentStmts == nil {
				return p.errorf(p.pos(), "Expected 'case' before statements in switch")
			}
			if err := p.parseStmt(currentStmts, currentScope, stmtsStandard); err != nil {
				return err
			}
		}
	}
}

// parseVaCopy parses 'va_copy(dest, src)'.
func (p *Parser) parseVaCopy(stmts *ast.ExprList) error {
	pos := p.pos()
	p.i++ // skip 'va_copy'
	if err := p.eat(token.Open, "Expected '(' after 'va_copy' keyword"); err != nil {
		return err
	}
	p.ignoreNewlinesInExprDepth++
	defer func() { p.ignoreNewlinesInExprDepth-- }()

	dest, err := p.parseExpr()
	if err != nil {
		return err
	}
	if err := p.eat(token.Next, "Expected ',' after first value given to 'va_copy'"); err != nil {
		return err
	}
	src, err := p.parseExpr()
	if err != nil {
		return err
	}
	if err := p.eat(token.Close, "Expected ')' after values given to 'va_copy'"); err != nil {
		return err
	}
	*stmts = append(*stmts, &ast.VaCopy{Pos: pos, Dest: dest, Src: src})
	return nil
}

// parseFor parses the C-style 'for before; cond; after { ... }' loop,
// accepting optional parentheses around the header.
func (p *Parser) parseFor(stmts *ast.ExprList, scope *deferScope) error {
	pos := p.pos()
	p.i++ // skip 'for'

	label := symbol.Invalid
	if p.kind() == token.Word && p.kindAt(p.i+1) == token.Colon {
		label = p.takeWordPayload()
		p.i++ // skip ':'
	}

	hasParens := p.eatOptional(token.Open)

	child := newDeferScope(scope, label, breakable|continuable)

	var before, after ast.ExprList
	var cond ast.Expr

	if p.kind() != token.TerminateJoin {
		if err := p.parseStmts(&before, child, stmtsSingle|stmtsNoJoining); err != nil {
			return err
		}
	}
	if err := p.eat(token.TerminateJoin, "Expected ';' after 'for' loop initialization"); err != nil {
		return err
	}

	if p.kind() != token.TerminateJoin {
		parsed, err := p.parseExpr()
		if err != nil {
			return err
		}
		cond = parsed
	}
	if err := p.eat(token.TerminateJoin, "Expected ';' after 'for' loop condition"); err != nil {
		return err
	}

	if p.kind() != token.Begin && p.kind() != token.Close && p.kind() != token.Next {
		if err := p.parseStmts(&after, child, stmtsSingle|stmtsNoJoining); err != nil {
			return err
		}
	}

	if hasParens {
		if err := p.eat(token.Close, "Expected ')' to close 'for' loop header"); err != nil {
			return err
		}
	}

	body, err := p.parseBlock("'for'", child)
	if err != nil {
		return err
	}

	*stmts = append(*stmts, &ast.For{
		Pos:    pos,
		Label:  label,
		Before: before,
		Cond:   cond,
		After:  after,
		Stmts:  body,
	})
	return nil
}

// parseLlvmAsm parses an inline assembly statement:
//
//	llvm_asm intel { "instructions..." }
func (p *Parser) parseLlvmAsm(stmts *ast.ExprList) error {
	pos := p.pos()
	p.i++ // skip 'llvm_asm'

	out := &ast.LlvmAsm{Pos: pos}

	if p.kind() == token.Word {
		switch p.cur().Str {
		case "intel":
			out.IsIntel = true
			p.i++
		case "att":
			p.i++
		default:
			return p.errorf(p.pos(), "Expected assembly dialect ('intel' or 'att')")
		}
	}

	for p.kind() == token.Word {
		switch p.cur().Str {
		case "side_effects":
			out.HasSideEffects = true
			p.i++
		case "stack_align":
			out.IsStackAlign = true
			p.i++
		default:
			return p.errorf(p.pos(), "Unrecognized inline assembly option '%s'", p.cur().Str)
		}
	}

	if err := p.ignoreNewlines("Expected '{' to begin inline assembly"); err != nil {
		return err
	}
	if err := p.eat(token.Begin, "Expected '{' to begin inline assembly"); err != nil {
		return err
	}

	assembly := ""
	for p.kind() != token.End {
		switch p.kind() {
		case token.Newline:
			p.i++
		case token.String, token.CString:
			assembly += p.cur().Str + "\n"
			p.i++
		case token.None:
			return p.errorf(p.pos(), "Expected '}' to close inline assembly")
		default:
			return p.errorf(p.pos(), "Expected string inside inline assembly block")
		}
	}
	p.i++ // eat '}'
	out.Assembly = assembly

	*stmts = append(*stmts, out)
	return nil
}
