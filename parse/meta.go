package parse

import (
	"text/scanner"

	"github.com/brimlang/brim/ast"
	"github.com/brimlang/brim/symbol"
	"github.com/brimlang/brim/token"
	"github.com/grailbio/base/log"
)

// Meta directives: compile-time definitions, conditional compilation, and
// diagnostics. A Meta token carries its directive name; '#get' in
// expression position is handled by the expression parser.

// metaBranch marks one open '#if'/'#unless' conditional whose taken branch
// is currently being parsed; its '#end' pops the entry.
type metaBranch struct {
	taken bool
}

func (p *Parser) parseMetaDirective() error {
	pos := p.pos()
	directive := p.cur().Str
	p.i++

	switch directive {
	case "set", "define":
		name, err := p.takeWord("Expected definition name after meta directive")
		if err != nil {
			return err
		}
		value, err := p.parseMetaExpr()
		if err != nil {
			return err
		}
		collapsed, err := ast.MetaCollapse(p.metaDefinitions(), value)
		if err != nil {
			return p.errorf(pos, "%v", err)
		}
		p.ast.AddMetaDefinition(name, collapsed)
		return nil

	case "if", "unless":
		cond, err := p.parseMetaExpr()
		if err != nil {
			return err
		}
		whether, err := ast.MetaIntoBool(p.metaDefinitions(), cond)
		if err != nil {
			return p.errorf(pos, "%v", err)
		}
		if directive == "unless" {
			whether = !whether
		}
		if whether {
			p.metaBranches = append(p.metaBranches, metaBranch{taken: true})
			return nil
		}
		return p.skipMetaBranch(true)

	case "elif", "else":
		// Reached only when a previous branch of this conditional was
		// taken; skip to the matching '#end'.
		if len(p.metaBranches) == 0 {
			return p.errorf(pos, "Unexpected '#%s' without '#if'", directive)
		}
		return p.skipMetaBranch(false)

	case "end":
		if len(p.metaBranches) == 0 {
			return p.errorf(pos, "Unexpected '#end' without '#if'")
		}
		p.metaBranches = p.metaBranches[:len(p.metaBranches)-1]
		return nil

	case "print", "print_warning", "print_error":
		value, err := p.parseMetaExpr()
		if err != nil {
			return err
		}
		rendered, err := ast.MetaIntoString(p.metaDefinitions(), value)
		if err != nil {
			return p.errorf(pos, "%v", err)
		}
		if directive == "print_error" {
			log.Error.Printf("%s: %s", pos, rendered)
		} else {
			log.Printf("%s: %s", pos, rendered)
		}
		return nil

	case "assert":
		cond, err := p.parseMetaExpr()
		if err != nil {
			return err
		}
		whether, err := ast.MetaIntoBool(p.metaDefinitions(), cond)
		if err != nil {
			return p.errorf(pos, "%v", err)
		}
		if !whether {
			return p.errorf(pos, "Meta assertion failed")
		}
		return nil

	case "done", "halt":
		p.done = true
		return nil

	default:
		return p.errorf(pos, "Unrecognized meta directive '#%s'", directive)
	}
}

// skipMetaBranch skips tokens until the next branch point of the current
// conditional. With openBranch set, stopping at '#elif'/'#else' re-enters
// directive handling; otherwise only the matching '#end' stops the skip.
func (p *Parser) skipMetaBranch(openBranch bool) error {
	depth := 0
	for {
		switch p.kind() {
		case token.None:
			return p.errorf(p.pos(), "Expected '#end' before end-of-file")
		case token.Meta:
			directive := p.cur().Str
			switch directive {
			case "if", "unless":
				depth++
			case "end":
				if depth == 0 {
					p.i++
					if !openBranch && len(p.metaBranches) > 0 {
						p.metaBranches = p.metaBranches[:len(p.metaBranches)-1]
					}
					return nil
				}
				depth--
			case "elif":
				if depth == 0 && openBranch {
					p.i++
					cond, err := p.parseMetaExpr()
					if err != nil {
						return err
					}
					whether, err := ast.MetaIntoBool(p.metaDefinitions(), cond)
					if err != nil {
						return p.errorf(p.pos(), "%v", err)
					}
					if whether {
						p.metaBranches = append(p.metaBranches, metaBranch{taken: true})
						return nil
					}
					continue
				}
			case "else":
				if depth == 0 && openBranch {
					p.i++
					p.metaBranches = append(p.metaBranches, metaBranch{taken: true})
					return nil
				}
			}
			p.i++
		default:
			p.i++
		}
	}
}

// metaDefinitions returns the definition list consulted during collapse:
// driver-supplied specials take precedence, then user definitions.
func (p *Parser) metaDefinitions() []ast.MetaDefinition {
	if len(p.cfg.Specials) == 0 {
		return p.ast.MetaDefinitions
	}
	defs := make([]ast.MetaDefinition, 0, len(p.cfg.Specials)+len(p.ast.MetaDefinitions))
	defs = append(defs, p.cfg.Specials...)
	defs = append(defs, p.ast.MetaDefinitions...)
	return defs
}

// collapseMetaVariable resolves '#get name', consulting the built-in
// positional specials before driver specials and user definitions.
func (p *Parser) collapseMetaVariable(name symbol.ID, pos scanner.Position) (ast.MetaExpr, error) {
	switch name.Str() {
	case "__file__":
		return &ast.MetaStr{Value: pos.Filename}, nil
	case "__line__":
		return &ast.MetaInt{Value: int64(pos.Line)}, nil
	case "__column__":
		return &ast.MetaInt{Value: int64(pos.Column)}, nil
	}
	return ast.MetaCollapse(p.metaDefinitions(), &ast.MetaVar{Name: name, Pos: pos})
}

// metaLiteralExpr converts a collapsed meta expression into an AST literal
// for injection into the surrounding expression.
func (p *Parser) metaLiteralExpr(collapsed ast.MetaExpr, pos scanner.Position) (ast.Expr, error) {
	switch v := collapsed.(type) {
	case *ast.MetaBool:
		return &ast.BoolLit{Pos: pos, Value: v.Value}, nil
	case *ast.MetaStr:
		return &ast.StrLit{Pos: pos, Value: v.Value}, nil
	case *ast.MetaInt:
		return &ast.IntLit{Pos: pos, Kind: ast.IntGeneric, Value: v.Value}, nil
	case *ast.MetaFloat:
		return &ast.FloatLit{Pos: pos, Kind: ast.FloatGeneric, Value: v.Value}, nil
	case *ast.MetaNull, *ast.MetaUndef:
		return &ast.NullLit{Pos: pos}, nil
	}
	return nil, p.errorf(pos, "Meta expression did not collapse to a literal")
}

var metaBinaryOps = map[string]ast.MetaOp{
	"and": ast.MetaAnd, "or": ast.MetaOr, "xor": ast.MetaXor,
	"add": ast.MetaAdd, "sub": ast.MetaSub, "mul": ast.MetaMul,
	"div": ast.MetaDiv, "mod": ast.MetaMod, "pow": ast.MetaPow,
	"eq": ast.MetaEq, "neq": ast.MetaNeq, "gt": ast.MetaGt,
	"gte": ast.MetaGte, "lt": ast.MetaLt, "lte": ast.MetaLte,
}

var metaInfixOps = map[token.Kind]ast.MetaOp{
	token.And:           ast.MetaAnd,
	token.UberAnd:       ast.MetaAnd,
	token.Or:            ast.MetaOr,
	token.UberOr:        ast.MetaOr,
	token.Add:           ast.MetaAdd,
	token.Subtract:      ast.MetaSub,
	token.Multiply:      ast.MetaMul,
	token.Divide:        ast.MetaDiv,
	token.Modulus:       ast.MetaMod,
	token.Equals:        ast.MetaEq,
	token.NotEquals:     ast.MetaNeq,
	token.GreaterThan:   ast.MetaGt,
	token.GreaterThanEq: ast.MetaGte,
	token.LessThan:      ast.MetaLt,
	token.LessThanEq:    ast.MetaLte,
}

// parseMetaExpr parses a meta expression: literals, variables, '#op(a, b)'
// call forms, and simple left-associative infix operators.
func (p *Parser) parseMetaExpr() (ast.MetaExpr, error) {
	left, err := p.parseMetaPrimary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := metaInfixOps[p.kind()]
		if !ok {
			return left, nil
		}
		p.i++
		right, err := p.parseMetaPrimary()
		if err != nil {
			return nil, err
		}
		left = &ast.MetaBinary{Op: op, A: left, B: right}
	}
}

func (p *Parser) parseMetaPrimary() (ast.MetaExpr, error) {
	pos := p.pos()
	tok := p.cur()

	switch kind := tok.Kind; {
	case kind.IsIntLiteral():
		p.i++
		return &ast.MetaInt{Value: tok.Int}, nil
	case kind.IsFloatLiteral():
		p.i++
		return &ast.MetaFloat{Value: tok.Float}, nil
	}

	switch tok.Kind {
	case token.True:
		p.i++
		return &ast.MetaBool{Value: true}, nil
	case token.False:
		p.i++
		return &ast.MetaBool{Value: false}, nil
	case token.Null:
		p.i++
		return &ast.MetaNull{}, nil
	case token.Undef:
		p.i++
		return &ast.MetaUndef{}, nil
	case token.String, token.CString:
		p.i++
		return &ast.MetaStr{Value: tok.Str}, nil
	case token.Word:
		return &ast.MetaVar{Name: p.takeWordPayload(), Pos: pos}, nil
	case token.Not:
		p.i++
		value, err := p.parseMetaPrimary()
		if err != nil {
			return nil, err
		}
		return &ast.MetaNot{Value: value}, nil
	case token.Open:
		p.i++
		inner, err := p.parseMetaExpr()
		if err != nil {
			return nil, err
		}
		if err := p.eat(token.Close, "Expected ')' after meta expression"); err != nil {
			return nil, err
		}
		return inner, nil
	case token.Meta:
		directive := tok.Str
		p.i++
		if directive == "get" {
			name, err := p.takeWord("Expected variable name after '#get'")
			if err != nil {
				return nil, err
			}
			return &ast.MetaVar{Name: name, Pos: pos}, nil
		}
		if directive == "not" {
			args, err := p.parseMetaCallArgs(1)
			if err != nil {
				return nil, err
			}
			return &ast.MetaNot{Value: args[0]}, nil
		}
		op, ok := metaBinaryOps[directive]
		if !ok {
			return nil, p.errorf(pos, "Unrecognized meta function '#%s'", directive)
		}
		args, err := p.parseMetaCallArgs(2)
		if err != nil {
			return nil, err
		}
		return &ast.MetaBinary{Op: op, A: args[0], B: args[1]}, nil
	}

	return nil, p.errorf(pos, "Expected meta expression")
}

// parseMetaCallArgs parses the parenthesised arguments of a '#op(...)'
// call form.
func (p *Parser) parseMetaCallArgs(count int) ([]ast.MetaExpr, error) {
	if err := p.eat(token.Open, "Expected '(' after meta function name"); err != nil {
		return nil, err
	}
	args := make([]ast.MetaExpr, 0, count)
	for i := 0; i < count; i++ {
		if i > 0 {
			if err := p.eat(token.Next, "Expected ',' between meta function arguments"); err != nil {
				return nil, err
			}
		}
		arg, err := p.parseMetaExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	if err := p.eat(token.Close, "Expected ')' after meta function arguments"); err != nil {
		return nil, err
	}
	return args, nil
}
