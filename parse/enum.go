package parse

import (
	"github.com/brimlang/brim/ast"
	"github.com/brimlang/brim/symbol"
	"github.com/brimlang/brim/token"
)

// parseEnum parses 'enum Name (KIND_A, KIND_B, ...)'.
func (p *Parser) parseEnum() error {
	pos := p.pos()

	if p.compositeAssociation != nil {
		return p.errorf(pos, "Cannot declare enum within struct domain")
	}

	p.i++ // skip 'enum'

	var name symbol.ID
	if p.prename != symbol.Invalid {
		name = p.takePrename()
	} else {
		parsed, err := p.takeWord("Expected name of enum after 'enum' keyword")
		if err != nil {
			return err
		}
		name = parsed
	}
	name = p.namespaced(name)

	kinds, err := p.parseEnumBody()
	if err != nil {
		return err
	}

	p.ast.AddEnum(ast.Enum{Name: name, Kinds: kinds, Pos: pos})
	return nil
}

// parseEnumBody parses the parenthesised, ordered kind list.
func (p *Parser) parseEnumBody() ([]symbol.ID, error) {
	if err := p.ignoreNewlines("Expected '(' after enum name"); err != nil {
		return nil, err
	}
	if err := p.eat(token.Open, "Expected '(' after enum name"); err != nil {
		return nil, err
	}

	var kinds []symbol.ID
	for p.kind() != token.Close {
		if err := p.ignoreNewlines("Expected element"); err != nil {
			return nil, err
		}
		kind, err := p.takeWord("Expected element")
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)

		if err := p.ignoreNewlines("Expected ',' or ')'"); err != nil {
			return nil, err
		}
		if p.kind() == token.Next {
			p.i++
			if err := p.ignoreNewlines("Expected element after ',' in element list"); err != nil {
				return nil, err
			}
			if p.kind() == token.Close {
				return nil, p.errorf(p.pos(), "Expected element after ',' in element list")
			}
		} else if p.kind() != token.Close {
			return nil, p.errorf(p.pos(), "Expected ',' after element")
		}
	}
	p.i++ // eat ')'
	return kinds, nil
}
