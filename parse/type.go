package parse

import (
	"strings"

	"github.com/brimlang/brim/ast"
	"github.com/brimlang/brim/symbol"
	"github.com/brimlang/brim/token"
)

// parseType parses a type at the current token. On success the cursor
// points at the first token after the type.
func (p *Parser) parseType() (ast.Type, error) {
	out := ast.Type{Pos: p.pos()}

	// Prefix elements: pointers, fixed arrays, var-fixed arrays, polycounts.
prefixes:
	for {
		switch p.kind() {
		case token.Multiply:
			out.Elems = append(out.Elems, &ast.PointerElem{Pos: p.pos()})
			p.i++
		case token.GenericInt:
			out.Elems = append(out.Elems, &ast.FixedArrayElem{
				Pos:    p.pos(),
				Length: uint64(p.cur().Int),
			})
			p.i++
		case token.BracketOpen:
			p.i++ // eat '['
			length, err := p.parseExpr()
			if err != nil {
				return ast.Type{}, err
			}
			out.Elems = append(out.Elems, &ast.VarFixedArrayElem{Pos: p.pos(), Length: length})
			if err := p.eat(token.BracketClose, "Expected ']' after size of fixed array in type"); err != nil {
				return ast.Type{}, err
			}
		case token.Polycount:
			out.Elems = append(out.Elems, &ast.PolycountElem{
				Pos:  p.pos(),
				Name: symbol.Intern(p.cur().Str),
			})
			p.i++
		default:
			break prefixes
		}
	}

	// Terminal element.
	switch p.kind() {
	case token.Word:
		out.Elems = append(out.Elems, &ast.BaseElem{Pos: p.pos(), Name: p.takeWordPayload()})
	case token.Func, token.Stdcall:
		funcElem, err := p.parseTypeFunc()
		if err != nil {
			return ast.Type{}, err
		}
		out.Elems = append(out.Elems, funcElem)
	case token.Packed, token.Struct, token.Union:
		layoutElem, err := p.parseTypeLayout()
		if err != nil {
			return ast.Type{}, err
		}
		out.Elems = append(out.Elems, layoutElem)
	case token.Polymorph:
		elem, err := p.parseTypePolymorph()
		if err != nil {
			return ast.Type{}, err
		}
		out.Elems = append(out.Elems, elem)
	case token.LessThan, token.BitLshift, token.BitLgcLshift:
		elem, err := p.parseTypeGenericBase()
		if err != nil {
			return ast.Type{}, err
		}
		out.Elems = append(out.Elems, elem)
	default:
		return ast.Type{}, p.errorf(out.Pos, "Expected type")
	}

	return out, nil
}

// parseTypeFunc parses the function pointer element of a type:
// 'func (int, int) int'.
func (p *Parser) parseTypeFunc() (*ast.FuncElem, error) {
	elem := &ast.FuncElem{Pos: p.pos()}

	if p.eatOptional(token.Stdcall) {
		elem.Traits |= ast.FuncStdcall
	}
	if err := p.eat(token.Func, "Expected 'func' keyword in function type"); err != nil {
		return nil, err
	}
	if err := p.eat(token.Open, "Expected '(' after 'func' keyword in type"); err != nil {
		return nil, err
	}

	isVararg := false
	for p.kind() != token.Close {
		if isVararg {
			return nil, p.errorf(p.pos(), "Expected ')' after variadic argument")
		}

		// Ignore argument flow.
		switch p.kind() {
		case token.In, token.Out, token.Inout:
			p.i++
		}

		if p.eatOptional(token.Ellipsis) {
			isVararg = true
			elem.Traits |= ast.FuncVararg
		} else {
			argType, err := p.parseType()
			if err != nil {
				return nil, err
			}
			elem.ArgTypes = append(elem.ArgTypes, argType)
		}

		if p.eatOptional(token.Next) {
			if p.kind() == token.Close {
				return nil, p.errorf(p.pos(), "Expected type after ',' in argument list")
			}
		} else if p.kind() != token.Close {
			return nil, p.errorf(p.pos(), "Expected ',' or ')' after argument type")
		}
	}
	p.i++ // eat ')'

	returnType, err := p.parseType()
	if err != nil {
		return nil, err
	}
	elem.ReturnType = returnType
	return elem, nil
}

// parseTypeLayout parses an anonymous composite embedded in a type:
// 'struct (x int, union (a float, b long))'.
func (p *Parser) parseTypeLayout() (*ast.LayoutElem, error) {
	pos := p.pos()
	traits := ast.TraitNone

	if p.eatOptional(token.Packed) {
		traits |= ast.LayoutPacked
	}

	kind := ast.LayoutStruct
	if p.kind() == token.Union {
		kind = ast.LayoutUnion
	} else if p.kind() != token.Struct {
		return nil, p.errorf(p.pos(), "Expected 'struct' or 'union' keyword in anonymous composite type")
	}
	p.i++

	fieldMap := ast.NewFieldMap()
	skeleton := ast.Skeleton{}
	if err := p.parseCompositeBody(&fieldMap, &skeleton, false, nil); err != nil {
		return nil, err
	}
	p.i++ // pass over closing ')'

	return &ast.LayoutElem{
		Pos: pos,
		Layout: ast.Layout{
			Kind:     kind,
			FieldMap: fieldMap,
			Skeleton: skeleton,
			Traits:   traits,
		},
	}, nil
}

// parseTypePolymorph parses '$T', '$~T', and the prerequisite form
// '$T~Similar' or '$T extends Base'.
func (p *Parser) parseTypePolymorph() (ast.Elem, error) {
	pos := p.pos()
	name := p.cur().Str
	p.i++

	allowAutoConversion := false
	if strings.HasPrefix(name, "~") {
		allowAutoConversion = true
		name = name[1:]
	}

	if p.kind() == token.BitComplement || p.kind() == token.Extends {
		if !p.allowPolymorphicPrereqs {
			return nil, p.errorf(p.pos(), "Polymorphic prerequisites are not allowed here")
		}
		isExtends := p.kind() == token.Extends
		p.i++ // skip '~' or 'extends'

		if isExtends {
			extends, err := p.parseType()
			if err != nil {
				return nil, err
			}
			return &ast.PolymorphPrereqElem{
				Pos:                 pos,
				Name:                symbol.Intern(name),
				AllowAutoConversion: allowAutoConversion,
				Extends:             extends,
			}, nil
		}

		similar, err := p.takeWord("Expected struct name after '~' in polymorphic prerequisite")
		if err != nil {
			return nil, err
		}
		return &ast.PolymorphPrereqElem{
			Pos:                 pos,
			Name:                symbol.Intern(name),
			AllowAutoConversion: allowAutoConversion,
			Similarity:          similar,
		}, nil
	}

	return &ast.PolymorphElem{
		Pos:                 pos,
		Name:                symbol.Intern(name),
		AllowAutoConversion: allowAutoConversion,
	}, nil
}

// parseTypeGenericBase parses '<T, U> Name'. The lexer emits '<<' and '<<<'
// as single shift tokens; when nested generics reuse such a token, the
// remaining '<' count is tracked in angleBracketRepeat and the token is only
// passed over once the count drains.
func (p *Parser) parseTypeGenericBase() (ast.Elem, error) {
	if p.angleBracketRepeat == 0 {
		switch p.kind() {
		case token.LessThan:
			p.angleBracketRepeat = 1
		case token.BitLshift:
			p.angleBracketRepeat = 2
		case token.BitLgcLshift:
			p.angleBracketRepeat = 3
		}
	}
	p.angleBracketRepeat--
	if p.angleBracketRepeat == 0 {
		p.i++
	}

	var generics []ast.Type
	for p.kind() != token.GreaterThan {
		if err := p.ignoreNewlines("Expected type in polymorphic generics"); err != nil {
			return nil, err
		}
		generic, err := p.parseType()
		if err != nil {
			return nil, err
		}
		generics = append(generics, generic)

		if err := p.ignoreNewlines("Expected '>' or ',' after type in polymorphic generics"); err != nil {
			return nil, err
		}
		if p.eatOptional(token.Next) {
			if p.kind() == token.GreaterThan {
				return nil, p.errorf(p.pos(), "Expected type after ',' in polymorphic generics")
			}
		} else if p.kind() != token.GreaterThan {
			return nil, p.errorf(p.pos(), "Expected ',' after type in polymorphic generics")
		}
	}

	if err := p.eat(token.GreaterThan, "Expected '>' after polymorphic generics"); err != nil {
		return nil, err
	}
	pos := p.pos()
	baseName, err := p.takeWord("Expected type name")
	if err != nil {
		return nil, err
	}

	return &ast.GenericBaseElem{Pos: pos, Name: baseName, Generics: generics}, nil
}
