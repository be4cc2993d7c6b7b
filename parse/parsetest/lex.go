// Package parsetest provides a minimal tokenizer and drive helpers for
// parser tests. The production lexer lives upstream; this one understands
// just enough of the surface syntax to write tests against real source
// snippets.
package parsetest

import (
	"strconv"
	"strings"
	"text/scanner"
	"unicode"

	"github.com/brimlang/brim/token"
	"github.com/grailbio/base/log"
)

var keywords = map[string]token.Kind{
	"and": token.And, "or": token.Or,
	"alias": token.Alias, "alignof": token.Alignof, "as": token.As,
	"assert": token.Assert, "at": token.At, "break": token.Break,
	"case": token.Case, "cast": token.Cast, "class": token.Class,
	"const": token.Const, "constructor": token.Constructor,
	"continue": token.Continue, "def": token.Def, "default": token.Default,
	"defer": token.Defer, "define": token.Define, "delete": token.Delete,
	"each": token.Each, "else": token.Else, "embed": token.Embed,
	"enum": token.Enum, "exhaustive": token.Exhaustive,
	"extends": token.Extends, "external": token.External,
	"fallthrough": token.Fallthrough, "false": token.False, "for": token.For,
	"foreign": token.Foreign, "func": token.Func, "if": token.If,
	"implicit": token.Implicit, "import": token.Import, "in": token.In,
	"inout": token.Inout, "llvm_asm": token.LlvmAsm,
	"namespace": token.Namespace, "new": token.New, "null": token.Null,
	"out": token.Out, "override": token.Override, "packed": token.Packed,
	"POD": token.Pod, "pragma": token.Pragma, "record": token.Record,
	"repeat": token.Repeat, "return": token.Return, "sizeof": token.Sizeof,
	"static": token.Static, "stdcall": token.Stdcall,
	"struct": token.Struct, "switch": token.Switch,
	"thread_local": token.ThreadLocal, "true": token.True,
	"typeinfo": token.Typeinfo, "typenameof": token.Typenameof,
	"undef": token.Undef, "union": token.Union, "unless": token.Unless,
	"until": token.Until, "using": token.Using, "va_arg": token.VaArg,
	"va_copy": token.VaCopy, "va_end": token.VaEnd,
	"va_start": token.VaStart, "verbatim": token.Verbatim,
	"virtual": token.Virtual, "while": token.While,
}

// Longest-match operator table; checked in declaration order per length.
var operators = []struct {
	str  string
	kind token.Kind
}{
	{"<<<=", token.BitLgcLshiftAssign},
	{">>>=", token.BitLgcRshiftAssign},
	{"<<<", token.BitLgcLshift},
	{">>>", token.BitLgcRshift},
	{"...", token.Ellipsis},
	{"<<=", token.BitLshiftAssign},
	{">>=", token.BitRshiftAssign},
	{"&&", token.UberAnd},
	{"||", token.UberOr},
	{"==", token.Equals},
	{"!=", token.NotEquals},
	{"<=", token.LessThanEq},
	{">=", token.GreaterThanEq},
	{"<<", token.BitLshift},
	{">>", token.BitRshift},
	{"+=", token.AddAssign},
	{"-=", token.SubtractAssign},
	{"*=", token.MultiplyAssign},
	{"/=", token.DivideAssign},
	{"%=", token.ModulusAssign},
	{"&=", token.BitAndAssign},
	{"|=", token.BitOrAssign},
	{"^=", token.BitXorAssign},
	{"++", token.Increment},
	{"--", token.Decrement},
	{"!!", token.Toggle},
	{"::", token.Associate},
	{"..", token.Range},
	{"=>", token.StrongArrow},
	{"~>", token.Gives},
	{"+", token.Add},
	{"-", token.Subtract},
	{"*", token.Multiply},
	{"/", token.Divide},
	{"%", token.Modulus},
	{"=", token.Assign},
	{"<", token.LessThan},
	{">", token.GreaterThan},
	{"&", token.Address},
	{"|", token.BitOr},
	{"^", token.BitXor},
	{"~", token.BitComplement},
	{"!", token.Not},
	{"?", token.Maybe},
	{"(", token.Open},
	{")", token.Close},
	{"{", token.Begin},
	{"}", token.End},
	{"[", token.BracketOpen},
	{"]", token.BracketClose},
	{",", token.Next},
	{".", token.Member},
	{":", token.Colon},
	{";", token.TerminateJoin},
}

var intSuffixes = map[string]token.Kind{
	"sb": token.ByteLit, "ub": token.UbyteLit,
	"ss": token.ShortLit, "us": token.UshortLit,
	"si": token.IntLit, "ui": token.UintLit,
	"sl": token.LongLit, "ul": token.UlongLit,
	"uz": token.UsizeLit,
}

// Lex tokenizes source text into the token list consumed by the parser.
// It dies on malformed input; tests feed it well-formed snippets.
func Lex(filename, src string) *token.List {
	lx := &lexer{src: src, pos: scanner.Position{Filename: filename, Line: 1, Column: 1}}
	list := &token.List{}
	for {
		tok, ok := lx.next()
		if !ok {
			break
		}
		list.Tokens = append(list.Tokens, tok)
	}
	return list
}

type lexer struct {
	src string
	i   int
	pos scanner.Position
}

func (lx *lexer) peekByte() byte {
	if lx.i >= len(lx.src) {
		return 0
	}
	return lx.src[lx.i]
}

func (lx *lexer) advance(n int) {
	for k := 0; k < n && lx.i < len(lx.src); k++ {
		if lx.src[lx.i] == '\n' {
			lx.pos.Line++
			lx.pos.Column = 1
		} else {
			lx.pos.Column++
		}
		lx.i++
	}
}

func isWordByte(c byte) bool {
	return c == '_' || unicode.IsLetter(rune(c)) || unicode.IsDigit(rune(c))
}

func (lx *lexer) next() (token.Token, bool) {
	// Skip horizontal whitespace and comments.
	for {
		c := lx.peekByte()
		if c == ' ' || c == '\t' || c == '\r' {
			lx.advance(1)
			continue
		}
		if c == '/' && lx.i+1 < len(lx.src) && lx.src[lx.i+1] == '/' {
			for lx.peekByte() != '\n' && lx.peekByte() != 0 {
				lx.advance(1)
			}
			continue
		}
		break
	}

	pos := lx.pos
	c := lx.peekByte()
	if c == 0 {
		return token.Token{}, false
	}

	if c == '\n' {
		lx.advance(1)
		return token.Token{Kind: token.Newline, Pos: pos}, true
	}

	// Words and keywords.
	if c == '_' || unicode.IsLetter(rune(c)) {
		start := lx.i
		for isWordByte(lx.peekByte()) {
			lx.advance(1)
		}
		word := lx.src[start:lx.i]
		if kind, ok := keywords[word]; ok {
			return token.Token{Kind: kind, Pos: pos}, true
		}
		return token.Token{Kind: token.Word, Str: word, Pos: pos}, true
	}

	// Numbers.
	if unicode.IsDigit(rune(c)) {
		return lx.lexNumber(pos), true
	}

	// Strings.
	if c == '"' || c == '\'' {
		return lx.lexString(pos, c), true
	}

	// Polymorphs, polycounts.
	if c == '$' {
		lx.advance(1)
		if lx.peekByte() == '#' {
			lx.advance(1)
			start := lx.i
			for isWordByte(lx.peekByte()) {
				lx.advance(1)
			}
			return token.Token{Kind: token.Polycount, Str: lx.src[start:lx.i], Pos: pos}, true
		}
		start := lx.i
		if lx.peekByte() == '~' {
			lx.advance(1)
		}
		for isWordByte(lx.peekByte()) {
			lx.advance(1)
		}
		name := lx.src[start:lx.i]
		if name == "" {
			// Bare '$' is a word (used for generated master variables).
			return token.Token{Kind: token.Word, Str: "$", Pos: pos}, true
		}
		return token.Token{Kind: token.Polymorph, Str: name, Pos: pos}, true
	}

	// Meta directives.
	if c == '#' {
		lx.advance(1)
		start := lx.i
		for isWordByte(lx.peekByte()) {
			lx.advance(1)
		}
		return token.Token{Kind: token.Meta, Str: lx.src[start:lx.i], Pos: pos}, true
	}

	// Operators, longest match first.
	rest := lx.src[lx.i:]
	for _, op := range operators {
		if strings.HasPrefix(rest, op.str) {
			lx.advance(len(op.str))
			return token.Token{Kind: op.kind, Pos: pos}, true
		}
	}

	log.Panicf("%s: parsetest: unknown character %q", pos, c)
	return token.Token{}, false
}

func (lx *lexer) lexNumber(pos scanner.Position) token.Token {
	start := lx.i
	isFloat := false
	for {
		c := lx.peekByte()
		if unicode.IsDigit(rune(c)) {
			lx.advance(1)
			continue
		}
		if c == '.' && lx.i+1 < len(lx.src) && unicode.IsDigit(rune(lx.src[lx.i+1])) && !isFloat {
			isFloat = true
			lx.advance(1)
			continue
		}
		break
	}
	text := lx.src[start:lx.i]

	if isFloat {
		value, err := strconv.ParseFloat(text, 64)
		if err != nil {
			log.Panicf("%s: parsetest: bad float %q: %v", pos, text, err)
		}
		kind := token.GenericFloat
		switch lx.peekByte() {
		case 'f':
			kind = token.FloatLit
			lx.advance(1)
		case 'd':
			kind = token.DoubleLit
			lx.advance(1)
		}
		return token.Token{Kind: kind, Float: value, Pos: pos}
	}

	value, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		log.Panicf("%s: parsetest: bad integer %q: %v", pos, text, err)
	}

	// Typed suffixes: 1sb, 2ub, 3si, 4ul, 5uz, ...
	if lx.i+1 < len(lx.src) {
		suffix := lx.src[lx.i:min(lx.i+2, len(lx.src))]
		if kind, ok := intSuffixes[suffix]; ok {
			lx.advance(2)
			return token.Token{Kind: kind, Int: value, Pos: pos}
		}
	}
	if lx.peekByte() == 'f' {
		lx.advance(1)
		return token.Token{Kind: token.FloatLit, Float: float64(value), Pos: pos}
	}

	return token.Token{Kind: token.GenericInt, Int: value, Pos: pos}
}

func (lx *lexer) lexString(pos scanner.Position, quote byte) token.Token {
	lx.advance(1) // opening quote
	sb := strings.Builder{}
	for {
		c := lx.peekByte()
		if c == 0 {
			log.Panicf("%s: parsetest: unterminated string", pos)
		}
		if c == quote {
			lx.advance(1)
			break
		}
		if c == '\\' && lx.i+1 < len(lx.src) {
			lx.advance(1)
			escaped := lx.peekByte()
			switch escaped {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '0':
				sb.WriteByte(0)
			default:
				sb.WriteByte(escaped)
			}
			lx.advance(1)
			continue
		}
		sb.WriteByte(c)
		lx.advance(1)
	}
	kind := token.String
	if quote == '\'' {
		kind = token.CString
	}
	return token.Token{Kind: kind, Str: sb.String(), Pos: pos}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
