// Package token defines the token stream interface between the lexer and the
// parser. The lexer itself lives upstream; the parser consumes a List and
// never reads source text.
package token

import (
	"fmt"
	"text/scanner"
)

// Kind identifies a token.
type Kind uint16

const (
	None Kind = iota

	// Payload-carrying tokens.
	Word         // identifier, payload in Str
	String       // string literal, payload in Str
	CString      // C-string literal, payload in Str
	Polymorph    // $T, payload name in Str
	Polycount    // $#N, payload name in Str
	Meta         // #directive, payload name in Str
	ByteLit      // typed integer literals carry Int
	UbyteLit     //
	ShortLit     //
	UshortLit    //
	IntLit       //
	UintLit      //
	LongLit      //
	UlongLit     //
	UsizeLit     //
	GenericInt   //
	FloatLit     // typed float literals carry Float
	DoubleLit    //
	GenericFloat //

	// Structure.
	Newline
	TerminateJoin // ';'
	Next          // ','
	Open          // '('
	Close         // ')'
	Begin         // '{'
	End           // '}'
	BracketOpen   // '['
	BracketClose  // ']'
	Member        // '.'
	Colon         // ':'
	Associate     // '::'
	Ellipsis      // '...'
	Range         // '..'
	StrongArrow   // '=>'
	Maybe         // '?'

	// Operators.
	Add
	Subtract
	Multiply
	Divide
	Modulus
	Assign
	AddAssign
	SubtractAssign
	MultiplyAssign
	DivideAssign
	ModulusAssign
	BitAndAssign
	BitOrAssign
	BitXorAssign
	BitLshiftAssign
	BitRshiftAssign
	BitLgcLshiftAssign
	BitLgcRshiftAssign
	Equals
	NotEquals
	LessThan
	GreaterThan
	LessThanEq
	GreaterThanEq
	BitAnd
	BitOr
	BitXor
	BitComplement
	BitLshift
	BitRshift
	BitLgcLshift
	BitLgcRshift
	Address   // '&'
	Increment // '++'
	Decrement // '--'
	Toggle    // '!!'
	Not       // '!'
	Gives     // '~>'

	// Word-like keywords.
	And
	Or
	UberAnd
	UberOr
	Alias
	Alignof
	As
	Assert
	At
	Break
	Case
	Cast
	Class
	Const
	Constructor
	Continue
	Def
	Default
	Defer
	Define
	Delete
	Each
	Else
	Embed
	Enum
	Exhaustive
	Extends
	External
	Fallthrough
	False
	For
	Foreign
	Func
	If
	Implicit
	Import
	In
	Inout
	LlvmAsm
	Namespace
	New
	Null
	Out
	Override
	Packed
	Pod
	Pragma
	Record
	Repeat
	Return
	Sizeof
	Static
	Stdcall
	Struct
	Switch
	ThreadLocal
	True
	Typeinfo
	Typenameof
	Undef
	Union
	Unless
	Until
	Using
	VaArg
	VaCopy
	VaEnd
	VaStart
	Verbatim
	Virtual
	While

	kindCount
)

// Token is one element of the lexer's output.
type Token struct {
	Kind  Kind
	Str   string  // Word, String, CString, Polymorph, Polycount, Meta
	Int   int64   // integer literal kinds
	Float float64 // float literal kinds
	Pos   scanner.Position
}

// List is an immutable token stream terminated by a None token. The parser
// indexes into it freely; positions parallel the tokens.
type List struct {
	Tokens []Token
}

// At returns the token at index i, or a None token past the end.
func (l *List) At(i int) Token {
	if i >= len(l.Tokens) {
		return Token{Kind: None}
	}
	return l.Tokens[i]
}

// KindAt returns the kind of the token at index i.
func (l *List) KindAt(i int) Kind {
	if i >= len(l.Tokens) {
		return None
	}
	return l.Tokens[i].Kind
}

// PosAt returns the position of the token at index i, or the position of the
// last token when i is past the end.
func (l *List) PosAt(i int) scanner.Position {
	if i >= len(l.Tokens) {
		if n := len(l.Tokens); n > 0 {
			return l.Tokens[n-1].Pos
		}
		return scanner.Position{}
	}
	return l.Tokens[i].Pos
}

// IsIntLiteral reports whether k is one of the typed integer literal kinds.
func (k Kind) IsIntLiteral() bool {
	return k >= ByteLit && k <= GenericInt
}

// IsFloatLiteral reports whether k is one of the float literal kinds.
func (k Kind) IsFloatLiteral() bool {
	return k >= FloatLit && k <= GenericFloat
}

var kindNames = map[Kind]string{
	None: "none", Word: "word", String: "string", CString: "cstring",
	Polymorph: "polymorph", Polycount: "polycount", Meta: "meta",
	ByteLit: "byte literal", UbyteLit: "ubyte literal", ShortLit: "short literal",
	UshortLit: "ushort literal", IntLit: "int literal", UintLit: "uint literal",
	LongLit: "long literal", UlongLit: "ulong literal", UsizeLit: "usize literal",
	GenericInt: "integer literal", FloatLit: "float literal",
	DoubleLit: "double literal", GenericFloat: "floating point literal",
	Newline: "newline", TerminateJoin: "';'", Next: "','", Open: "'('",
	Close: "')'", Begin: "'{'", End: "'}'", BracketOpen: "'['",
	BracketClose: "']'", Member: "'.'", Colon: "':'", Associate: "'::'",
	Ellipsis: "'...'", Range: "'..'", StrongArrow: "'=>'", Maybe: "'?'",
	Add: "'+'", Subtract: "'-'", Multiply: "'*'", Divide: "'/'",
	Modulus: "'%'", Assign: "'='", AddAssign: "'+='", SubtractAssign: "'-='",
	MultiplyAssign: "'*='", DivideAssign: "'/='", ModulusAssign: "'%='",
	BitAndAssign: "'&='", BitOrAssign: "'|='", BitXorAssign: "'^='",
	BitLshiftAssign: "'<<='", BitRshiftAssign: "'>>='",
	BitLgcLshiftAssign: "'<<<='", BitLgcRshiftAssign: "'>>>='",
	Equals: "'=='", NotEquals: "'!='", LessThan: "'<'", GreaterThan: "'>'",
	LessThanEq: "'<='", GreaterThanEq: "'>='", BitAnd: "'&' (bitwise)",
	BitOr: "'|'", BitXor: "'^'", BitComplement: "'~'", BitLshift: "'<<'",
	BitRshift: "'>>'", BitLgcLshift: "'<<<'", BitLgcRshift: "'>>>'",
	Address: "'&'", Increment: "'++'", Decrement: "'--'", Toggle: "'!!'",
	Not: "'!'", Gives: "'~>'",
	And: "'and'", Or: "'or'", UberAnd: "'&&'", UberOr: "'||'",
	Alias: "'alias'", Alignof: "'alignof'", As: "'as'", Assert: "'assert'",
	At: "'at'", Break: "'break'", Case: "'case'", Cast: "'cast'",
	Class: "'class'", Const: "'const'", Constructor: "'constructor'",
	Continue: "'continue'", Def: "'def'", Default: "'default'",
	Defer: "'defer'", Define: "'define'", Delete: "'delete'", Each: "'each'",
	Else: "'else'", Embed: "'embed'", Enum: "'enum'",
	Exhaustive: "'exhaustive'", Extends: "'extends'", External: "'external'",
	Fallthrough: "'fallthrough'", False: "'false'", For: "'for'",
	Foreign: "'foreign'", Func: "'func'", If: "'if'", Implicit: "'implicit'",
	Import: "'import'", In: "'in'", Inout: "'inout'", LlvmAsm: "'llvm_asm'",
	Namespace: "'namespace'", New: "'new'", Null: "'null'", Out: "'out'",
	Override: "'override'", Packed: "'packed'", Pod: "'POD'",
	Pragma: "'pragma'", Record: "'record'", Repeat: "'repeat'",
	Return: "'return'", Sizeof: "'sizeof'", Static: "'static'",
	Stdcall: "'stdcall'", Struct: "'struct'", Switch: "'switch'",
	ThreadLocal: "'thread_local'", True: "'true'", Typeinfo: "'typeinfo'",
	Typenameof: "'typenameof'", Undef: "'undef'", Union: "'union'",
	Unless: "'unless'", Until: "'until'", Using: "'using'", VaArg: "'va_arg'",
	VaCopy: "'va_copy'", VaEnd: "'va_end'", VaStart: "'va_start'",
	Verbatim: "'verbatim'", Virtual: "'virtual'", While: "'while'",
}

// String returns a human-readable name for the token kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("token(%d)", uint16(k))
}
