package parse

import (
	"sort"
	"text/scanner"

	"github.com/brimlang/brim/ast"
	"github.com/brimlang/brim/symbol"
	"github.com/brimlang/brim/token"
)

// reservedTypeNames cannot be shadowed by an alias. Kept sorted for binary
// search.
var reservedTypeNames = []string{
	"Any", "AnyCompositeType", "AnyEnumType", "AnyFixedArrayType",
	"AnyFuncPtrType", "AnyPtrType", "AnyStructType", "AnyType",
	"AnyTypeKind", "String", "StringOwnership", "bool", "byte", "double",
	"float", "int", "long", "ptr", "short", "successful", "ubyte", "uint",
	"ulong", "ushort", "usize", "void",
}

func isReservedTypeName(name string) bool {
	i := sort.SearchStrings(reservedTypeNames, name)
	return i < len(reservedTypeNames) && reservedTypeNames[i] == name
}

// parseAlias parses 'alias Name = Type' and the function alias form
// 'alias name(arg types...) => destination'.
func (p *Parser) parseAlias() error {
	pos := p.pos()
	p.i++ // skip 'alias'

	if p.compositeAssociation != nil {
		return p.errorf(pos, "Cannot declare type alias within struct domain")
	}

	var name symbol.ID
	if p.prename != symbol.Invalid {
		name = p.takePrename()
	} else {
		parsed, err := p.takeWord("Expected alias name after 'alias' keyword")
		if err != nil {
			return err
		}
		name = parsed
	}
	name = p.namespaced(name)

	if p.kind() == token.Open {
		return p.parseFuncAlias(name, pos)
	}

	if isReservedTypeName(name.Str()) {
		return p.errorf(pos, "Reserved type name '%s' can't be used to create an alias", name.Str())
	}

	if err := p.eat(token.Assign, "Expected '=' after alias name"); err != nil {
		return err
	}
	if err := p.ignoreNewlines("Expected type after '=' in alias"); err != nil {
		return err
	}
	aliased, err := p.parseType()
	if err != nil {
		return err
	}

	p.ast.AddAlias(ast.TypeAlias{Name: name, Type: aliased, Pos: pos})
	return nil
}

// parseFuncAlias parses the remainder of
// 'alias from(int, long) => to'; an empty argument list written as '(...)'
// matches the first function of the destination name.
func (p *Parser) parseFuncAlias(from symbol.ID, pos scanner.Position) error {
	p.i++ // eat '('

	matchFirst := false
	var argTypes []ast.Type

	if p.kind() == token.Ellipsis {
		matchFirst = true
		p.i++
	} else {
		for p.kind() != token.Close {
			if err := p.ignoreNewlines("Expected type in function alias argument list"); err != nil {
				return err
			}
			argType, err := p.parseType()
			if err != nil {
				return err
			}
			argTypes = append(argTypes, argType)
			if p.kind() == token.Next {
				p.i++
			} else if p.kind() != token.Close {
				return p.errorf(p.pos(), "Expected ',' or ')' in function alias argument list")
			}
		}
	}
	if err := p.eat(token.Close, "Expected ')' to close function alias argument list"); err != nil {
		return err
	}

	if err := p.eat(token.StrongArrow, "Expected '=>' after function alias argument list"); err != nil {
		return err
	}
	to, err := p.takeWord("Expected destination function name after '=>'")
	if err != nil {
		return err
	}

	p.ast.AddFuncAlias(ast.FuncAlias{
		From:             from,
		To:               to,
		ArgTypes:         argTypes,
		Pos:              pos,
		MatchFirstOfName: matchFirst,
	})
	return nil
}
