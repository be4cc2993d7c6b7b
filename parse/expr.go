package parse

import (
	"text/scanner"

	"github.com/brimlang/brim/ast"
	"github.com/brimlang/brim/symbol"
	"github.com/brimlang/brim/token"
)

// parseExpr parses a full expression with precedence climbing.
func (p *Parser) parseExpr() (ast.Expr, error) {
	left, err := p.parsePrimaryExpr()
	if err != nil {
		return nil, err
	}
	return p.parseOpExpr(0, left, false)
}

// parseMutableExpr parses an expression that will be used as an assignment
// destination; binary operators are not consumed.
func (p *Parser) parseMutableExpr() (ast.Expr, error) {
	left, err := p.parsePrimaryExpr()
	if err != nil {
		return nil, err
	}
	return p.parseOpExpr(0, left, true)
}

// precedenceOf maps operator tokens to binding strength. Zero means the
// token is not an infix operator.
func precedenceOf(kind token.Kind) int {
	switch kind {
	case token.Maybe:
		return 1
	case token.UberAnd, token.UberOr:
		return 2
	case token.And, token.Or:
		return 3
	case token.Equals, token.NotEquals, token.LessThan, token.GreaterThan,
		token.LessThanEq, token.GreaterThanEq:
		return 4
	case token.Add, token.Subtract:
		return 5
	case token.Multiply, token.Divide, token.Modulus:
		return 6
	case token.As:
		return 7
	case token.BitAnd, token.BitOr, token.BitXor, token.BitLshift,
		token.BitRshift, token.BitLgcLshift, token.BitLgcRshift, token.At:
		return 5
	default:
		return 0
	}
}

var binaryOps = map[token.Kind]ast.BinaryKind{
	token.Add:           ast.BinaryAdd,
	token.Subtract:      ast.BinarySubtract,
	token.Multiply:      ast.BinaryMultiply,
	token.Divide:        ast.BinaryDivide,
	token.Modulus:       ast.BinaryModulus,
	token.Equals:        ast.BinaryEquals,
	token.NotEquals:     ast.BinaryNotEquals,
	token.GreaterThan:   ast.BinaryGreater,
	token.LessThan:      ast.BinaryLesser,
	token.GreaterThanEq: ast.BinaryGreaterEq,
	token.LessThanEq:    ast.BinaryLesserEq,
	token.And:           ast.BinaryAnd,
	token.UberAnd:       ast.BinaryAnd,
	token.Or:            ast.BinaryOr,
	token.UberOr:        ast.BinaryOr,
	token.BitAnd:        ast.BinaryBitAnd,
	token.BitOr:         ast.BinaryBitOr,
	token.BitXor:        ast.BinaryBitXor,
	token.BitLshift:     ast.BinaryBitLshift,
	token.BitRshift:     ast.BinaryBitRshift,
	token.BitLgcLshift:  ast.BinaryBitLgcLshift,
	token.BitLgcRshift:  ast.BinaryBitLgcRshift,
}

// hasTerminatingToken reports whether the token ends the expression rather
// than continuing it.
func hasTerminatingToken(kind token.Kind) bool {
	if _, ok := binaryOps[kind]; ok {
		return false
	}
	switch kind {
	case token.As, token.At, token.Maybe:
		return false
	}
	return true
}

// parseOpExpr climbs operator precedence starting from an already-parsed
// left operand. With keepMutable set, no operators are consumed at all.
func (p *Parser) parseOpExpr(precedence int, left ast.Expr, keepMutable bool) (ast.Expr, error) {
	for p.kind() != token.None {
		// Await possible termination tokens.
		for {
			if !hasTerminatingToken(p.kind()) {
				break
			}
			// Terminate unless the termination token is a newline and we
			// are allowing newlines within an existing expression.
			if p.kind() != token.Newline {
				return left, nil
			}
			if p.ignoreNewlinesInExprDepth == 0 {
				return left, nil
			}
			if err := p.ignoreNewlines("Unexpected statement termination"); err != nil {
				return nil, err
			}
		}

		operator := p.kind()
		pos := p.pos()
		opPrec := precedenceOf(operator)
		if opPrec < precedence || keepMutable {
			return left, nil
		}

		switch operator {
		case token.As:
			p.i++
			to, err := p.parseType()
			if err != nil {
				return nil, err
			}
			casted := ast.Expr(&ast.Cast{Pos: pos, To: to, From: left})
			casted, err = p.parseExprPost(casted)
			if err != nil {
				return nil, err
			}
			left = casted
		case token.At:
			p.i++
			if err := p.ignoreNewlines("Unexpected expression termination"); err != nil {
				return nil, err
			}
			index, err := p.parsePrimaryExpr()
			if err != nil {
				return nil, err
			}
			access := ast.Expr(&ast.ArrayAccess{Pos: pos, Subject: left, Index: index, At: true})
			access, err = p.parseExprPost(access)
			if err != nil {
				return nil, err
			}
			left = access
		case token.Maybe:
			ternary, err := p.parseExprTernary(left, pos)
			if err != nil {
				return nil, err
			}
			left = ternary
		default:
			kind, ok := binaryOps[operator]
			if !ok {
				return nil, p.errorf(pos, "Unrecognized operator %s in expression", operator.String())
			}
			right, err := p.parseRhsExpr(opPrec)
			if err != nil {
				return nil, err
			}
			left = &ast.Binary{Pos: pos, Kind: kind, A: left, B: right}
		}
	}
	return left, nil
}

// parseRhsExpr parses the right-hand side of a binary operator. The cursor
// points at the operator token.
func (p *Parser) parseRhsExpr(opPrec int) (ast.Expr, error) {
	p.i++ // skip over operator token

	if err := p.ignoreNewlines("Unexpected expression termination"); err != nil {
		return nil, err
	}

	right, err := p.parsePrimaryExpr()
	if err != nil {
		return nil, err
	}
	if opPrec < precedenceOf(p.kind()) {
		return p.parseOpExpr(opPrec+1, right, false)
	}
	return right, nil
}

// parseExprTernary parses 'cond ? a : b'; the cursor points at '?'.
func (p *Parser) parseExprTernary(cond ast.Expr, pos scanner.Position) (ast.Expr, error) {
	p.i++ // skip '?'
	p.ignoreNewlinesInExprDepth++
	defer func() { p.ignoreNewlinesInExprDepth-- }()

	if err := p.ignoreNewlines("Unexpected expression termination"); err != nil {
		return nil, err
	}
	a, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.ignoreNewlines("Unexpected expression termination"); err != nil {
		return nil, err
	}
	if err := p.eat(token.Colon, "Expected ':' after first branch of ternary expression"); err != nil {
		return nil, err
	}
	if err := p.ignoreNewlines("Unexpected expression termination"); err != nil {
		return nil, err
	}
	b, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.Ternary{Pos: pos, Cond: cond, A: a, B: b}, nil
}

var intLiteralKinds = map[token.Kind]ast.IntKind{
	token.ByteLit:    ast.IntByte,
	token.UbyteLit:   ast.IntUbyte,
	token.ShortLit:   ast.IntShort,
	token.UshortLit:  ast.IntUshort,
	token.IntLit:     ast.IntInt,
	token.UintLit:    ast.IntUint,
	token.LongLit:    ast.IntLong,
	token.UlongLit:   ast.IntUlong,
	token.UsizeLit:   ast.IntUsize,
	token.GenericInt: ast.IntGeneric,
}

var floatLiteralKinds = map[token.Kind]ast.FloatKind{
	token.FloatLit:     ast.FloatFloat,
	token.DoubleLit:    ast.FloatDouble,
	token.GenericFloat: ast.FloatGeneric,
}

// parsePrimaryExpr parses one primary expression plus its postfix
// modifiers.
func (p *Parser) parsePrimaryExpr() (ast.Expr, error) {
	pos := p.pos()
	var out ast.Expr

	if err := p.ignoreNewlinesIfInside(); err != nil {
		return nil, err
	}
	pos = p.pos()

	switch kind := p.kind(); {
	case kind.IsIntLiteral():
		out = &ast.IntLit{Pos: pos, Kind: intLiteralKinds[kind], Value: p.cur().Int}
		p.i++
	case kind.IsFloatLiteral():
		out = &ast.FloatLit{Pos: pos, Kind: floatLiteralKinds[kind], Value: p.cur().Float}
		p.i++
	default:
		switch kind {
		case token.String:
			out = &ast.StrLit{Pos: pos, Value: p.cur().Str}
			p.i++
		case token.CString:
			out = &ast.CStrLit{Pos: pos, Value: p.cur().Str}
			p.i++
		case token.True:
			out = &ast.BoolLit{Pos: pos, Value: true}
			p.i++
		case token.False:
			out = &ast.BoolLit{Pos: pos, Value: false}
			p.i++
		case token.Null:
			out = &ast.NullLit{Pos: pos}
			p.i++
		case token.Word:
			expr, err := p.parseExprWord()
			if err != nil {
				return nil, err
			}
			out = expr
		case token.Open:
			p.i++ // eat '('
			p.ignoreNewlinesInExprDepth++
			inner, err := p.parseExpr()
			if err != nil {
				p.ignoreNewlinesInExprDepth--
				return nil, err
			}
			if err := p.ignoreNewlines("Expected ')' after expression"); err != nil {
				p.ignoreNewlinesInExprDepth--
				return nil, err
			}
			if err := p.eat(token.Close, "Expected ')' after expression"); err != nil {
				p.ignoreNewlinesInExprDepth--
				return nil, err
			}
			p.ignoreNewlinesInExprDepth--
			out = inner
		case token.Address, token.BitAnd:
			p.i++
			subject, err := p.parsePrimaryExpr()
			if err != nil {
				return nil, err
			}
			out = &ast.Address{Pos: pos, Subject: subject}
		case token.Func:
			expr, err := p.parseExprFuncAddr()
			if err != nil {
				return nil, err
			}
			out = expr
		case token.Multiply:
			p.i++
			subject, err := p.parsePrimaryExpr()
			if err != nil {
				return nil, err
			}
			out = &ast.Dereference{Pos: pos, Subject: subject}
		case token.Cast:
			expr, err := p.parseExprCast()
			if err != nil {
				return nil, err
			}
			out = expr
		case token.Sizeof:
			expr, err := p.parseExprSizeof()
			if err != nil {
				return nil, err
			}
			out = expr
		case token.Alignof:
			p.i++
			ty, err := p.parseType()
			if err != nil {
				return nil, err
			}
			out = &ast.Alignof{Pos: pos, Type: ty}
		case token.Typeinfo:
			p.i++
			ty, err := p.parseType()
			if err != nil {
				return nil, err
			}
			out = &ast.Typeinfo{Pos: pos, Type: ty}
		case token.Typenameof:
			p.i++
			ty, err := p.parseType()
			if err != nil {
				return nil, err
			}
			out = &ast.Typenameof{Pos: pos, Type: ty}
		case token.New:
			expr, err := p.parseExprNew()
			if err != nil {
				return nil, err
			}
			out = expr
		case token.Static:
			expr, err := p.parseExprStatic()
			if err != nil {
				return nil, err
			}
			out = expr
		case token.Def, token.Undef:
			expr, err := p.parseExprInlineDeclare()
			if err != nil {
				return nil, err
			}
			out = expr
		case token.Increment, token.Decrement:
			isIncrement := kind == token.Increment
			p.i++
			subject, err := p.parsePrimaryExpr()
			if err != nil {
				return nil, err
			}
			if !ast.IsMutable(subject) {
				if isIncrement {
					return nil, p.errorf(pos, "Can only increment mutable values")
				}
				return nil, p.errorf(pos, "Can only decrement mutable values")
			}
			updateKind := ast.PreDecrement
			if isIncrement {
				updateKind = ast.PreIncrement
			}
			out = &ast.Update{Pos: pos, Kind: updateKind, Subject: subject}
		case token.Subtract:
			p.i++
			subject, err := p.parsePrimaryExpr()
			if err != nil {
				return nil, err
			}
			out = &ast.UnaryMath{Pos: pos, Kind: ast.UnaryNegate, Subject: subject}
		case token.Not:
			p.i++
			subject, err := p.parsePrimaryExpr()
			if err != nil {
				return nil, err
			}
			out = &ast.UnaryMath{Pos: pos, Kind: ast.UnaryNot, Subject: subject}
		case token.BitComplement:
			p.i++
			subject, err := p.parsePrimaryExpr()
			if err != nil {
				return nil, err
			}
			out = &ast.UnaryMath{Pos: pos, Kind: ast.UnaryBitComplement, Subject: subject}
		case token.VaArg:
			expr, err := p.parseExprVaArg()
			if err != nil {
				return nil, err
			}
			out = expr
		case token.Begin:
			expr, err := p.parseExprInitList()
			if err != nil {
				return nil, err
			}
			out = expr
		case token.Polycount:
			out = &ast.PolycountRef{Pos: pos, Name: symbol.Intern(p.cur().Str)}
			p.i++
		case token.Embed:
			p.i++
			tok := p.cur()
			if tok.Kind != token.String && tok.Kind != token.CString {
				return nil, p.errorf(p.pos(), "Expected file path after 'embed' keyword")
			}
			p.i++
			out = &ast.Embed{Pos: pos, Path: tok.Str}
		case token.Meta:
			expr, err := p.parseExprMetaGet()
			if err != nil {
				return nil, err
			}
			out = expr
		default:
			return nil, p.panicToken("Unexpected token %s in expression")
		}
	}

	return p.parseExprPost(out)
}

// ignoreNewlinesIfInside skips newlines only inside parenthesised regions.
func (p *Parser) ignoreNewlinesIfInside() error {
	if p.ignoreNewlinesInExprDepth > 0 {
		return p.ignoreNewlines("Unexpected statement termination")
	}
	return nil
}

// parseExprPost handles postfix modifiers: indexing, member access, method
// calls, postfix increment/decrement, and toggle.
func (p *Parser) parseExprPost(expr ast.Expr) (ast.Expr, error) {
	for {
		switch p.kind() {
		case token.BracketOpen:
			pos := p.pos()
			p.i++
			p.ignoreNewlinesInExprDepth++
			index, err := p.parseExpr()
			if err != nil {
				p.ignoreNewlinesInExprDepth--
				return nil, err
			}
			if err := p.eat(token.BracketClose, "Expected ']' after array index expression"); err != nil {
				p.ignoreNewlinesInExprDepth--
				return nil, err
			}
			p.ignoreNewlinesInExprDepth--
			expr = &ast.ArrayAccess{Pos: pos, Subject: expr, Index: index}
		case token.Member:
			p.i++
			isTentative := p.eatOptional(token.Maybe)
			if err := p.ignoreNewlines("Unexpected statement termination"); err != nil {
				return nil, err
			}
			pos := p.pos()
			name, err := p.takeWord("Expected identifier after '.' operator")
			if err != nil {
				return nil, err
			}
			if p.eatOptional(token.Open) {
				args, err := p.parseExprArguments()
				if err != nil {
					return nil, err
				}
				call := &ast.MethodCall{
					Pos:         pos,
					Subject:     expr,
					Name:        name,
					Args:        args,
					IsTentative: isTentative,
				}
				if p.eatOptional(token.Gives) {
					gives, err := p.parseType()
					if err != nil {
						return nil, err
					}
					call.Gives = gives
				}
				expr = call
			} else {
				if isTentative {
					return nil, p.errorf(pos, "Cannot have tentative field access")
				}
				expr = &ast.Member{Pos: pos, Subject: expr, Field: name}
			}
		case token.Increment, token.Decrement:
			pos := p.pos()
			isIncrement := p.kind() == token.Increment
			p.i++
			if !ast.IsMutable(expr) {
				if isIncrement {
					return nil, p.errorf(pos, "Can only increment mutable values")
				}
				return nil, p.errorf(pos, "Can only decrement mutable values")
			}
			kind := ast.PostDecrement
			if isIncrement {
				kind = ast.PostIncrement
			}
			expr = &ast.Update{Pos: pos, Kind: kind, Subject: expr}
		case token.Toggle:
			pos := p.pos()
			if !ast.IsMutable(expr) {
				return nil, p.errorf(pos, "Cannot perform '!!' operator on immutable values")
			}
			p.i++
			expr = &ast.Update{Pos: pos, Kind: ast.ToggleUpdate, Subject: expr}
		default:
			return expr, nil
		}
	}
}

// parseExprWord parses a word in expression position: a call, an enum
// value, or a variable reference.
func (p *Parser) parseExprWord() (ast.Expr, error) {
	switch p.kindAt(p.i + 1) {
	case token.Open:
		return p.parseExprCall(false)
	case token.Maybe:
		if p.kindAt(p.i+2) == token.Open {
			return p.parseExprCall(false)
		}
	case token.Associate:
		return p.parseExprEnumValue()
	}
	pos := p.pos()
	return &ast.Var{Pos: pos, Name: p.takeWordPayload()}, nil
}

// parseExprCall parses 'name(args...)' with an optional '?' tentative
// marker and an optional '~> Type' return hint.
func (p *Parser) parseExprCall(allowTentative bool) (ast.Expr, error) {
	pos := p.pos()
	name, err := p.takeWord("Expected function name")
	if err != nil {
		return nil, err
	}
	if err := p.ignoreNewlines("Unexpected statement termination"); err != nil {
		return nil, err
	}

	isTentative := p.eatOptional(token.Maybe)
	if err := p.eat(token.Open, "Expected '(' after function name for function call"); err != nil {
		return nil, err
	}

	args, err := p.parseExprArguments()
	if err != nil {
		return nil, err
	}

	if isTentative && !allowTentative {
		return nil, p.errorf(pos, "Tentative calls cannot be used in expressions")
	}

	call := &ast.Call{Pos: pos, Name: name, Args: args, IsTentative: isTentative}
	if p.eatOptional(token.Gives) {
		gives, err := p.parseType()
		if err != nil {
			return nil, err
		}
		call.Gives = gives
	}
	return call, nil
}

// parseExprArguments parses '(arg1, arg2, ...)' bodies; the cursor points
// just after the '('. Newlines are ignored throughout.
func (p *Parser) parseExprArguments() (ast.ExprList, error) {
	p.ignoreNewlinesInExprDepth++
	defer func() { p.ignoreNewlinesInExprDepth-- }()

	var args ast.ExprList
	for p.kind() != token.Close {
		if err := p.ignoreNewlines("Expected argument"); err != nil {
			return nil, err
		}
		if p.kind() == token.Close {
			break
		}
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		if err := p.ignoreNewlines("Expected ',' or ')' after expression"); err != nil {
			return nil, err
		}
		if p.kind() == token.Next {
			p.i++
		} else if p.kind() != token.Close {
			return nil, p.errorf(p.pos(), "Expected ',' or ')' after expression")
		}
	}
	p.i++ // eat ')'
	return args, nil
}

// parseExprEnumValue parses 'Enum::KIND'.
func (p *Parser) parseExprEnumValue() (ast.Expr, error) {
	pos := p.pos()
	enumName := p.takeWordPayload()
	if err := p.eat(token.Associate, "Expected '::' in enum value expression"); err != nil {
		return nil, err
	}
	kind, err := p.takeWord("Expected enum kind after '::'")
	if err != nil {
		return nil, err
	}
	return &ast.EnumValue{Pos: pos, Enum: enumName, Kind: kind}, nil
}

// parseExprFuncAddr parses 'func &name' and 'func &name(int, long)'.
func (p *Parser) parseExprFuncAddr() (ast.Expr, error) {
	pos := p.pos()
	p.i++ // skip 'func'
	if p.kind() != token.Address && p.kind() != token.BitAnd {
		return nil, p.errorf(p.pos(), "Expected '&' after 'func' keyword in expression")
	}
	p.i++
	isTentative := p.eatOptional(token.Maybe)
	name, err := p.takeWord("Expected function name after 'func &'")
	if err != nil {
		return nil, err
	}

	var matchArgs []ast.Type
	if p.eatOptional(token.Open) {
		p.ignoreNewlinesInExprDepth++
		for p.kind() != token.Close {
			if err := p.ignoreNewlines("Expected type in argument-type list"); err != nil {
				p.ignoreNewlinesInExprDepth--
				return nil, err
			}
			argType, err := p.parseType()
			if err != nil {
				p.ignoreNewlinesInExprDepth--
				return nil, err
			}
			matchArgs = append(matchArgs, argType)
			if p.kind() == token.Next {
				p.i++
			} else if p.kind() != token.Close {
				p.ignoreNewlinesInExprDepth--
				return nil, p.errorf(p.pos(), "Expected ',' or ')' after argument type")
			}
		}
		p.i++ // eat ')'
		p.ignoreNewlinesInExprDepth--
	}

	return &ast.FuncAddr{Pos: pos, Name: name, MatchArgs: matchArgs, IsTentative: isTentative}, nil
}

// parseExprCast parses 'cast Type (expr)' and 'cast Type expr'.
func (p *Parser) parseExprCast() (ast.Expr, error) {
	pos := p.pos()
	p.i++ // skip 'cast'

	to, err := p.parseType()
	if err != nil {
		return nil, err
	}

	if p.kind() == token.Open {
		p.i++
		p.ignoreNewlinesInExprDepth++
		from, err := p.parseExpr()
		if err != nil {
			p.ignoreNewlinesInExprDepth--
			return nil, err
		}
		if err := p.eat(token.Close, "Expected ')' after expression given to 'cast'"); err != nil {
			p.ignoreNewlinesInExprDepth--
			return nil, err
		}
		p.ignoreNewlinesInExprDepth--
		return &ast.Cast{Pos: pos, To: to, From: from}, nil
	}

	from, err := p.parsePrimaryExpr()
	if err != nil {
		return nil, err
	}
	return &ast.Cast{Pos: pos, To: to, From: from}, nil
}

// parseExprSizeof parses 'sizeof Type' and 'sizeof (value)'. The
// parenthesised form is always parsed as a value.
func (p *Parser) parseExprSizeof() (ast.Expr, error) {
	pos := p.pos()
	p.i++ // skip 'sizeof'

	if p.kind() == token.Open {
		p.i++
		p.ignoreNewlinesInExprDepth++
		value, err := p.parseExpr()
		if err != nil {
			p.ignoreNewlinesInExprDepth--
			return nil, err
		}
		if err := p.eat(token.Close, "Expected ')' after value given to 'sizeof'"); err != nil {
			p.ignoreNewlinesInExprDepth--
			return nil, err
		}
		p.ignoreNewlinesInExprDepth--
		return &ast.SizeofValue{Pos: pos, Value: value}, nil
	}

	ty, err := p.parseType()
	if err != nil {
		return nil, err
	}
	return &ast.Sizeof{Pos: pos, Type: ty}, nil
}

// parseExprNew parses 'new Type', 'new undef Type', 'new Type * count',
// 'new Type (args...)', and 'new "cstring"'.
func (p *Parser) parseExprNew() (ast.Expr, error) {
	pos := p.pos()
	p.i++ // skip 'new'

	if p.kind() == token.String || p.kind() == token.CString {
		value := p.cur().Str
		p.i++
		return &ast.NewCString{Pos: pos, Value: value}, nil
	}

	isUndef := p.eatOptional(token.Undef)

	ty, err := p.parseType()
	if err != nil {
		return nil, err
	}

	out := &ast.New{Pos: pos, Type: ty, IsUndef: isUndef}

	if p.eatOptional(token.Multiply) {
		count, err := p.parsePrimaryExpr()
		if err != nil {
			return nil, err
		}
		count, err = p.parseOpExpr(6, count, false)
		if err != nil {
			return nil, err
		}
		out.Count = count
	}

	if p.kind() == token.Open {
		p.i++
		inputs, err := p.parseExprArguments()
		if err != nil {
			return nil, err
		}
		if inputs == nil {
			inputs = ast.ExprList{}
		}
		out.Inputs = inputs
	}
	return out, nil
}

// parseExprStatic parses 'static Type (values...)' and
// 'static Type {values...}'.
func (p *Parser) parseExprStatic() (ast.Expr, error) {
	pos := p.pos()
	p.i++ // skip 'static'

	ty, err := p.parseType()
	if err != nil {
		return nil, err
	}

	switch p.kind() {
	case token.Open:
		p.i++
		values, err := p.parseExprArguments()
		if err != nil {
			return nil, err
		}
		return &ast.StaticStruct{Pos: pos, Type: ty, Values: values}, nil
	case token.Begin:
		p.i++
		values, err := p.parseStaticValues()
		if err != nil {
			return nil, err
		}
		return &ast.StaticArray{Pos: pos, Type: ty, Values: values}, nil
	default:
		return nil, p.errorf(p.pos(), "Expected '(' or '{' after type given to 'static'")
	}
}

// parseStaticValues parses '{ v1, v2, ... }' bodies; the cursor points just
// after the '{'.
func (p *Parser) parseStaticValues() (ast.ExprList, error) {
	p.ignoreNewlinesInExprDepth++
	defer func() { p.ignoreNewlinesInExprDepth-- }()

	var values ast.ExprList
	for p.kind() != token.End {
		if err := p.ignoreNewlines("Expected value"); err != nil {
			return nil, err
		}
		if p.kind() == token.End {
			break
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		values = append(values, value)

		if err := p.ignoreNewlines("Expected ',' or '}' after value"); err != nil {
			return nil, err
		}
		if p.kind() == token.Next {
			p.i++
		} else if p.kind() != token.End {
			return nil, p.errorf(p.pos(), "Expected ',' or '}' after value")
		}
	}
	p.i++ // eat '}'
	return values, nil
}

// parseExprInitList parses an initializer list literal '{ v1, v2, ... }'.
func (p *Parser) parseExprInitList() (ast.Expr, error) {
	pos := p.pos()
	p.i++ // eat '{'
	values, err := p.parseStaticValues()
	if err != nil {
		return nil, err
	}
	return &ast.InitList{Pos: pos, Values: values}, nil
}

// parseExprInlineDeclare parses 'def name Type' / 'undef name Type' in
// expression position.
func (p *Parser) parseExprInlineDeclare() (ast.Expr, error) {
	pos := p.pos()
	isUndef := p.kind() == token.Undef
	p.i++

	name, err := p.takeWord("Expected variable name in inline declaration")
	if err != nil {
		return nil, err
	}
	ty, err := p.parseType()
	if err != nil {
		return nil, err
	}

	out := &ast.Declare{Pos: pos, Name: name, Type: ty, IsUndef: isUndef, Inline: true}

	if !isUndef && p.kind() == token.Open {
		p.i++
		inputs, err := p.parseExprArguments()
		if err != nil {
			return nil, err
		}
		if inputs == nil {
			inputs = ast.ExprList{}
		}
		out.Inputs = inputs
		out.HasInputs = true
	} else if !isUndef && p.eatOptional(token.Assign) {
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		out.Value = value
	}
	return out, nil
}

// parseExprVaArg parses 'va_arg(list, Type)'.
func (p *Parser) parseExprVaArg() (ast.Expr, error) {
	pos := p.pos()
	p.i++ // skip 'va_arg'
	if err := p.eat(token.Open, "Expected '(' after 'va_arg' keyword"); err != nil {
		return nil, err
	}
	p.ignoreNewlinesInExprDepth++
	defer func() { p.ignoreNewlinesInExprDepth-- }()

	list, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.eat(token.Next, "Expected ',' after value given to 'va_arg'"); err != nil {
		return nil, err
	}
	ty, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.eat(token.Close, "Expected ')' after type given to 'va_arg'"); err != nil {
		return nil, err
	}
	return &ast.VaArg{Pos: pos, List: list, Type: ty}, nil
}

// parseExprMetaGet injects the collapsed value of '#get name' as a literal.
func (p *Parser) parseExprMetaGet() (ast.Expr, error) {
	pos := p.pos()
	directive := p.cur().Str
	if directive != "get" {
		return nil, p.errorf(pos, "Unexpected meta directive '#%s' in expression", directive)
	}
	p.i++
	name, err := p.takeWord("Expected variable name after '#get'")
	if err != nil {
		return nil, err
	}

	collapsed, err := p.collapseMetaVariable(name, pos)
	if err != nil {
		return nil, err
	}
	return p.metaLiteralExpr(collapsed, pos)
}
