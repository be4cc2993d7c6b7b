// Package parse implements the recursive-descent parser that turns a lexed
// token stream into an AST. The parser is token driven and newline
// sensitive: a newline terminates most statements unless the parser is
// inside a parenthesised or bracketed region.
package parse

import (
	"fmt"
	"runtime/debug"
	"text/scanner"

	"github.com/brimlang/brim/ast"
	"github.com/brimlang/brim/symbol"
	"github.com/brimlang/brim/token"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
)

// Config carries the driver-supplied knobs for one translation unit.
type Config struct {
	// EntryPoint is the program entry function name; "main" when empty.
	EntryPoint string

	// WindowsEntry marks the entry point as a winmain entry.
	WindowsEntry bool

	// Specials are compile-time constants exposed by the driver to the meta
	// evaluator; they are looked up before user definitions.
	Specials []ast.MetaDefinition
}

// Pragma is one recorded 'pragma name payload' directive; interpretation is
// left to the driver.
type Pragma struct {
	Name    symbol.ID
	Payload string
	Pos     scanner.Position
}

// Parser is the mutable context threaded through every parsing routine.
// One Parser owns one token list and one AST; there is no shared state.
type Parser struct {
	cfg    Config
	ast    *ast.AST
	tokens *token.List
	i      int

	// Pragmas accumulates pragma directives for the driver.
	Pragmas []Pragma

	// prename holds a word taken ahead of a '::' association.
	prename symbol.ID

	// compositeAssociation is the composite whose domain is currently open;
	// functions parsed inside it become methods.
	compositeAssociation *ast.Composite
	associationIsPoly    bool

	hasNamespaceScope bool
	namespace         string

	allowPolymorphicPrereqs   bool
	angleBracketRepeat        int
	ignoreNewlinesInExprDepth int

	// funcID is the function currently under construction.
	funcID ast.FuncID

	// metaBranches tracks open '#if'/'#unless' conditionals.
	metaBranches []metaBranch

	// done is set by the '#done' meta directive to stop the toplevel loop.
	done bool
}

// Parse consumes a token list and produces a fully populated AST.
func Parse(tokens *token.List, cfg Config) (*ast.AST, error) {
	if cfg.EntryPoint == "" {
		cfg.EntryPoint = "main"
	}
	p := &Parser{
		cfg:    cfg,
		ast:    ast.New(),
		tokens: tokens,
		funcID: ast.InvalidFuncID,
	}
	if err := Recover(p.parseTokens); err != nil {
		return nil, err
	}
	return p.ast, nil
}

// Recover runs the given function, catching any panic thrown by the
// function and turning it into an error.
func Recover(cb func() error) (err error) {
	defer func() {
		if e := recover(); e != nil {
			err = errors.E(fmt.Sprintf("panic %v: %v", e, string(debug.Stack())))
		}
	}()
	return cb()
}

func (p *Parser) parseTokens() error {
	for !p.done && p.kind() != token.None {
		switch p.kind() {
		case token.Newline:
			p.i++
		case token.Func, token.Stdcall, token.Verbatim, token.Implicit,
			token.Constructor, token.Virtual, token.Override:
			if err := p.parseFunc(); err != nil {
				return err
			}
		case token.Foreign:
			next := p.kindAt(p.i + 1)
			if next == token.String || next == token.CString {
				if err := p.parseForeignLibrary(); err != nil {
					return err
				}
				break
			}
			if err := p.parseFunc(); err != nil {
				return err
			}
		case token.Struct, token.Packed, token.Record, token.Class:
			if err := p.parseComposite(false); err != nil {
				return err
			}
		case token.Union:
			if err := p.parseComposite(true); err != nil {
				return err
			}
		case token.Define:
			if err := p.parseGlobalConstantDefinition(); err != nil {
				return err
			}
		case token.Word:
			if p.kindAt(p.i+1) == token.Associate {
				p.prename = p.takeWordPayload()
				p.i++ // skip '::'
				break
			}
			if err := p.parseGlobal(); err != nil {
				return err
			}
		case token.External:
			switch p.kindAt(p.i + 1) {
			case token.Func, token.Stdcall, token.Verbatim, token.Implicit:
				if err := p.parseFunc(); err != nil {
					return err
				}
			default:
				if err := p.parseGlobal(); err != nil {
					return err
				}
			}
		case token.Alias:
			if err := p.parseAlias(); err != nil {
				return err
			}
		case token.Import:
			if err := p.parseImport(); err != nil {
				return err
			}
		case token.Pragma:
			if err := p.parsePragma(); err != nil {
				return err
			}
		case token.Enum:
			if err := p.parseEnum(); err != nil {
				return err
			}
		case token.Meta:
			if err := p.parseMetaDirective(); err != nil {
				return err
			}
		case token.End:
			switch {
			case p.hasNamespaceScope:
				p.hasNamespaceScope = false
				p.namespace = ""
			case p.compositeAssociation != nil:
				p.compositeAssociation = nil
			default:
				return p.errorf(p.pos(), "Unexpected trailing closing brace '}'")
			}
			p.i++
		case token.Namespace:
			if err := p.parseNamespace(); err != nil {
				return err
			}
		default:
			return p.panicToken("Encountered unexpected token %s in global scope")
		}
	}

	if p.compositeAssociation != nil {
		return p.errorf(p.pos(), "Expected closing brace '}' for struct domain")
	}
	return nil
}

// kind returns the kind of the current token.
func (p *Parser) kind() token.Kind { return p.tokens.KindAt(p.i) }

// kindAt returns the kind of the token at an absolute index.
func (p *Parser) kindAt(i int) token.Kind { return p.tokens.KindAt(i) }

// cur returns the current token.
func (p *Parser) cur() token.Token { return p.tokens.At(p.i) }

// pos returns the position of the current token.
func (p *Parser) pos() scanner.Position { return p.tokens.PosAt(p.i) }

// posAt returns the position of the token at an absolute index.
func (p *Parser) posAt(i int) scanner.Position { return p.tokens.PosAt(i) }

// errorf reports a framing or well-formedness error at a source position.
func (p *Parser) errorf(pos scanner.Position, format string, args ...interface{}) error {
	return errors.E(pos.String() + ": " + fmt.Sprintf(format, args...))
}

// panicToken reports an unexpected token; format must contain one %s for
// the token name.
func (p *Parser) panicToken(format string) error {
	return p.errorf(p.pos(), format, p.kind().String())
}

// eat consumes a token of the expected kind. With a message, a mismatch is
// an error; without, it returns errSilent so the caller can probe.
func (p *Parser) eat(kind token.Kind, message string) error {
	if p.kind() != kind {
		if message == "" {
			return errSilent
		}
		return p.errorf(p.pos(), "%s", message)
	}
	p.i++
	return nil
}

// errSilent marks an expected-token mismatch that the caller probes for.
var errSilent = errors.E("parse: probe mismatch")

// eatOptional consumes a token of the given kind if present.
func (p *Parser) eatOptional(kind token.Kind) bool {
	if p.kind() == kind {
		p.i++
		return true
	}
	return false
}

// takeWord consumes a word token and interns its payload.
func (p *Parser) takeWord(message string) (symbol.ID, error) {
	if p.kind() != token.Word {
		return symbol.Invalid, p.errorf(p.pos(), "%s", message)
	}
	return p.takeWordPayload(), nil
}

// takeWordPayload interns the current word token's payload and advances.
// The caller must know the current token is a word.
func (p *Parser) takeWordPayload() symbol.ID {
	tok := p.cur()
	if tok.Kind != token.Word {
		log.Panicf("parse: takeWordPayload on %s", tok.Kind)
	}
	p.i++
	return symbol.Intern(tok.Str)
}

// ignoreNewlines skips newline tokens. Reaching the end of the token stream
// is an error described by the message.
func (p *Parser) ignoreNewlines(message string) error {
	for p.kind() == token.Newline {
		p.i++
	}
	if p.kind() == token.None && message != "" {
		return p.errorf(p.pos(), "%s", message)
	}
	return nil
}

// namespaced applies the open namespace prefix to a top-level name.
func (p *Parser) namespaced(name symbol.ID) symbol.ID {
	if p.namespace == "" {
		return name
	}
	return symbol.Intern(p.namespace + `\` + name.Str())
}

// takePrename consumes and returns the pending '::' prename.
func (p *Parser) takePrename() symbol.ID {
	name := p.prename
	p.prename = symbol.Invalid
	return name
}

func (p *Parser) parseNamespace() error {
	p.i++ // skip 'namespace'
	name, err := p.takeWord("Expected namespace name after 'namespace' keyword")
	if err != nil {
		return err
	}
	if p.hasNamespaceScope {
		return p.errorf(p.pos(), "Cannot open a namespace inside another namespace")
	}
	p.hasNamespaceScope = true
	p.namespace = name.Str()
	return nil
}

func (p *Parser) parseImport() error {
	// Imports are resolved by the dependency layer; the parser only
	// validates the form.
	p.i++ // skip 'import'
	if p.kind() != token.String && p.kind() != token.CString && p.kind() != token.Word {
		return p.errorf(p.pos(), "Expected file after 'import' keyword")
	}
	p.i++
	return nil
}

func (p *Parser) parsePragma() error {
	pos := p.pos()
	p.i++ // skip 'pragma'
	name, err := p.takeWord("Expected pragma name after 'pragma' keyword")
	if err != nil {
		return err
	}
	payload := ""
	if p.kind() == token.String || p.kind() == token.CString || p.kind() == token.Word {
		payload = p.cur().Str
		p.i++
	}
	p.Pragmas = append(p.Pragmas, Pragma{Name: name, Payload: payload, Pos: pos})
	return nil
}

func (p *Parser) parseForeignLibrary() error {
	p.i++ // skip 'foreign'
	tok := p.cur()
	if tok.Kind != token.String && tok.Kind != token.CString {
		return p.errorf(p.pos(), "Expected library name after 'foreign' keyword")
	}
	p.i++

	kind := ast.Library
	if p.kind() == token.Word && p.cur().Str == "framework" {
		kind = ast.Framework
		p.i++
	}
	p.ast.AddForeignLibrary(tok.Str, kind)
	return nil
}
