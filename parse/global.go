package parse

import (
	"github.com/brimlang/brim/ast"
	"github.com/brimlang/brim/token"
)

// parseGlobal parses a global variable declaration:
//
//	counter int = 0
//	external thread_local errno int
func (p *Parser) parseGlobal() error {
	pos := p.pos()
	traits := ast.TraitNone

	if p.compositeAssociation != nil {
		return p.errorf(pos, "Cannot declare global variable within struct domain")
	}

	for {
		if p.eatOptional(token.External) {
			traits |= ast.GlobalExternal
			continue
		}
		if p.eatOptional(token.ThreadLocal) {
			traits |= ast.GlobalThreadLocal
			continue
		}
		break
	}

	name, err := p.takeWord("Expected name of global variable")
	if err != nil {
		return err
	}
	name = p.namespaced(name)

	if p.kind() == token.Equals {
		// Old-style named expression '==' syntax.
		p.i++
		value, err := p.parseExpr()
		if err != nil {
			return err
		}
		p.ast.AddNamedExpression(ast.NamedExpression{Name: name, Value: value, Pos: pos})
		return nil
	}

	if p.eatOptional(token.Pod) {
		traits |= ast.GlobalPod
	}

	globalType, err := p.parseType()
	if err != nil {
		return err
	}

	var initial ast.Expr
	if p.eatOptional(token.Assign) {
		if p.eatOptional(token.Undef) {
			// 'undef' does nothing for globals; treat as a plain definition.
		} else {
			initial, err = p.parseExpr()
			if err != nil {
				return err
			}
		}
	}

	if p.kind() != token.Newline && p.kind() != token.None {
		return p.errorf(p.pos(), "Expected end-of-line after global variable definition")
	}

	p.ast.AddGlobal(ast.Global{
		Name:    name,
		Type:    globalType,
		Initial: initial,
		Traits:  traits,
		Pos:     pos,
	})
	return nil
}

// parseGlobalConstantDefinition parses 'define NAME = expr' at global
// scope.
func (p *Parser) parseGlobalConstantDefinition() error {
	pos := p.pos()
	p.i++ // skip 'define'

	var named ast.NamedExpression
	named.Pos = pos

	if p.prename != 0 {
		named.Name = p.takePrename()
	} else {
		parsed, err := p.takeWord("Expected name for named expression definition after 'define' keyword")
		if err != nil {
			return err
		}
		named.Name = parsed
	}
	named.Name = p.namespaced(named.Name)

	if err := p.eat(token.Assign, "Expected '=' after name of named expression"); err != nil {
		return err
	}
	value, err := p.parseExpr()
	if err != nil {
		return err
	}
	named.Value = value

	p.ast.AddNamedExpression(named)
	return nil
}
