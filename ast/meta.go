package ast

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"text/scanner"

	"github.com/brimlang/brim/symbol"
	"github.com/grailbio/base/errors"
)

// Meta expressions are the compile-time expression language of the meta
// directives (#set, #if, #get, ...). Evaluation collapses a tree to one of
// the literal forms: undef, null, true, false, a string, an integer, or a
// float.

// MetaExpr is one node of a meta expression tree.
type MetaExpr interface {
	// IsCollapsed reports whether the node is already a literal form.
	IsCollapsed() bool

	// CloneMeta deep-copies the node. Only collapsed nodes are cloned in
	// practice.
	CloneMeta() MetaExpr

	metaNode()
}

// MetaUndef is the 'undef' literal.
type MetaUndef struct{}

// MetaNull is the 'null' literal.
type MetaNull struct{}

// MetaBool is 'true' or 'false'.
type MetaBool struct {
	Value bool
}

// MetaStr is a string literal.
type MetaStr struct {
	Value string
}

// MetaInt is an integer literal.
type MetaInt struct {
	Value int64
}

// MetaFloat is a float literal.
type MetaFloat struct {
	Value float64
}

// MetaVar is a named variable reference, resolved against the meta
// definitions at collapse time. Unknown names collapse to undef.
type MetaVar struct {
	Name symbol.ID
	Pos  scanner.Position
}

// MetaOp discriminates binary meta operators.
type MetaOp uint8

const (
	MetaAnd MetaOp = iota
	MetaOr
	MetaXor
	MetaAdd
	MetaSub
	MetaMul
	MetaDiv
	MetaMod
	MetaPow
	MetaEq
	MetaNeq
	MetaGt
	MetaGte
	MetaLt
	MetaLte
)

// MetaBinary applies a binary operator.
type MetaBinary struct {
	Op   MetaOp
	A, B MetaExpr
}

// MetaNot is boolean negation.
type MetaNot struct {
	Value MetaExpr
}

func (*MetaUndef) metaNode()  {}
func (*MetaNull) metaNode()   {}
func (*MetaBool) metaNode()   {}
func (*MetaStr) metaNode()    {}
func (*MetaInt) metaNode()    {}
func (*MetaFloat) metaNode()  {}
func (*MetaVar) metaNode()    {}
func (*MetaBinary) metaNode() {}
func (*MetaNot) metaNode()    {}

func (*MetaUndef) IsCollapsed() bool  { return true }
func (*MetaNull) IsCollapsed() bool   { return true }
func (*MetaBool) IsCollapsed() bool   { return true }
func (*MetaStr) IsCollapsed() bool    { return true }
func (*MetaInt) IsCollapsed() bool    { return true }
func (*MetaFloat) IsCollapsed() bool  { return true }
func (*MetaVar) IsCollapsed() bool    { return false }
func (*MetaBinary) IsCollapsed() bool { return false }
func (*MetaNot) IsCollapsed() bool    { return false }

func (e *MetaUndef) CloneMeta() MetaExpr { c := *e; return &c }
func (e *MetaNull) CloneMeta() MetaExpr  { c := *e; return &c }
func (e *MetaBool) CloneMeta() MetaExpr  { c := *e; return &c }
func (e *MetaStr) CloneMeta() MetaExpr   { c := *e; return &c }
func (e *MetaInt) CloneMeta() MetaExpr   { c := *e; return &c }
func (e *MetaFloat) CloneMeta() MetaExpr { c := *e; return &c }
func (e *MetaVar) CloneMeta() MetaExpr   { c := *e; return &c }

func (e *MetaBinary) CloneMeta() MetaExpr {
	return &MetaBinary{Op: e.Op, A: e.A.CloneMeta(), B: e.B.CloneMeta()}
}

func (e *MetaNot) CloneMeta() MetaExpr {
	return &MetaNot{Value: e.Value.CloneMeta()}
}

// MetaString renders a collapsed meta expression. Floats render with fixed
// "%06.6f" precision and ints as plain decimal, matching the formatting the
// driver embeds into generated code.
func MetaString(e MetaExpr) (string, error) {
	switch v := e.(type) {
	case *MetaUndef:
		return "undef", nil
	case *MetaNull:
		return "null", nil
	case *MetaBool:
		if v.Value {
			return "true", nil
		}
		return "false", nil
	case *MetaStr:
		return v.Value, nil
	case *MetaInt:
		return strconv.FormatInt(v.Value, 10), nil
	case *MetaFloat:
		return fmt.Sprintf("%06.6f", v.Value), nil
	}
	return "", errors.E("meta: cannot render a non-collapsed meta expression")
}

type metaMode uint8

const (
	metaModeInt metaMode = iota
	metaModeFloat
	metaModeStr
)

//                    B
//           i        d         s
//        -------------------------
//     i |   i        d         i
//       |
// A   d |   d        d         d
//       |
//     s |   s        s         s
var metaAdditionModes = [3][3]metaMode{
	{metaModeInt, metaModeFloat, metaModeInt},
	{metaModeFloat, metaModeFloat, metaModeFloat},
	{metaModeStr, metaModeStr, metaModeStr},
}

var metaTypicalModes = [3][3]metaMode{
	{metaModeInt, metaModeFloat, metaModeInt},
	{metaModeFloat, metaModeFloat, metaModeFloat},
	{metaModeInt, metaModeFloat, metaModeFloat},
}

// pow always promotes to float, even for integer inputs.
var metaPowerModes = [3][3]metaMode{
	{metaModeFloat, metaModeFloat, metaModeFloat},
	{metaModeFloat, metaModeFloat, metaModeFloat},
	{metaModeFloat, metaModeFloat, metaModeFloat},
}

var metaComparisonModes = [3][3]metaMode{
	{metaModeInt, metaModeFloat, metaModeInt},
	{metaModeFloat, metaModeFloat, metaModeFloat},
	{metaModeInt, metaModeFloat, metaModeStr},
}

func metaModeOf(e MetaExpr) metaMode {
	switch e.(type) {
	case *MetaFloat:
		return metaModeFloat
	case *MetaStr:
		return metaModeStr
	default:
		return metaModeInt
	}
}

// MetaCollapse folds a meta expression into its canonical literal form,
// resolving variables against the given definitions.
func MetaCollapse(defs []MetaDefinition, e MetaExpr) (MetaExpr, error) {
	for !e.IsCollapsed() {
		switch v := e.(type) {
		case *MetaVar:
			def := findMetaDefinition(defs, v.Name)
			if def == nil {
				e = &MetaUndef{}
				break
			}
			e = def.Value.CloneMeta()
		case *MetaNot:
			b, err := MetaIntoBool(defs, v.Value)
			if err != nil {
				return nil, err
			}
			e = &MetaBool{Value: !b}
		case *MetaBinary:
			collapsed, err := metaCollapseBinary(defs, v)
			if err != nil {
				return nil, err
			}
			e = collapsed
		default:
			return nil, errors.E("meta: unrecognized meta expression")
		}
	}
	return e, nil
}

func metaCollapseBinary(defs []MetaDefinition, v *MetaBinary) (MetaExpr, error) {
	switch v.Op {
	case MetaAnd, MetaOr, MetaXor:
		a, err := MetaIntoBool(defs, v.A)
		if err != nil {
			return nil, err
		}
		b, err := MetaIntoBool(defs, v.B)
		if err != nil {
			return nil, err
		}
		switch v.Op {
		case MetaAnd:
			return &MetaBool{Value: a && b}, nil
		case MetaOr:
			return &MetaBool{Value: a || b}, nil
		default:
			return &MetaBool{Value: a != b}, nil
		}
	case MetaAdd, MetaSub, MetaMul, MetaDiv, MetaMod, MetaPow:
		return metaCollapseMath(defs, v)
	case MetaEq, MetaNeq, MetaGt, MetaGte, MetaLt, MetaLte:
		return metaCollapseComparison(defs, v)
	}
	return nil, errors.E("meta: unrecognized binary meta operator")
}

func metaCollapseMath(defs []MetaDefinition, v *MetaBinary) (MetaExpr, error) {
	a, err := MetaCollapse(defs, v.A)
	if err != nil {
		return nil, err
	}
	b, err := MetaCollapse(defs, v.B)
	if err != nil {
		return nil, err
	}

	var modes *[3][3]metaMode
	switch v.Op {
	case MetaAdd:
		modes = &metaAdditionModes
	case MetaPow:
		modes = &metaPowerModes
	default:
		modes = &metaTypicalModes
	}

	switch modes[metaModeOf(a)][metaModeOf(b)] {
	case metaModeInt:
		aInt, err := MetaIntoInt(defs, a)
		if err != nil {
			return nil, err
		}
		bInt, err := MetaIntoInt(defs, b)
		if err != nil {
			return nil, err
		}
		switch v.Op {
		case MetaAdd:
			return &MetaInt{Value: aInt + bInt}, nil
		case MetaSub:
			return &MetaInt{Value: aInt - bInt}, nil
		case MetaMul:
			return &MetaInt{Value: aInt * bInt}, nil
		case MetaDiv:
			if bInt == 0 {
				return nil, errors.E("meta: integer division by zero")
			}
			return &MetaInt{Value: aInt / bInt}, nil
		case MetaMod:
			if bInt == 0 {
				return nil, errors.E("meta: integer modulus by zero")
			}
			return &MetaInt{Value: aInt % bInt}, nil
		}
		return &MetaInt{}, nil
	case metaModeFloat:
		aFloat, err := MetaIntoFloat(defs, a)
		if err != nil {
			return nil, err
		}
		bFloat, err := MetaIntoFloat(defs, b)
		if err != nil {
			return nil, err
		}
		switch v.Op {
		case MetaAdd:
			return &MetaFloat{Value: aFloat + bFloat}, nil
		case MetaSub:
			return &MetaFloat{Value: aFloat - bFloat}, nil
		case MetaMul:
			return &MetaFloat{Value: aFloat * bFloat}, nil
		case MetaDiv:
			if bFloat == 0 {
				return nil, errors.E("meta: float division by zero")
			}
			return &MetaFloat{Value: aFloat / bFloat}, nil
		case MetaMod:
			if bFloat == 0 {
				return nil, errors.E("meta: float modulus by zero")
			}
			return &MetaFloat{Value: math.Mod(aFloat, bFloat)}, nil
		case MetaPow:
			return &MetaFloat{Value: math.Pow(aFloat, bFloat)}, nil
		}
		return &MetaFloat{}, nil
	default:
		aStr, err := MetaIntoString(defs, a)
		if err != nil {
			return nil, err
		}
		bStr, err := MetaIntoString(defs, b)
		if err != nil {
			return nil, err
		}
		// Addition is the only operator with string promotion.
		return &MetaStr{Value: aStr + bStr}, nil
	}
}

func metaCollapseComparison(defs []MetaDefinition, v *MetaBinary) (MetaExpr, error) {
	a, err := MetaCollapse(defs, v.A)
	if err != nil {
		return nil, err
	}
	b, err := MetaCollapse(defs, v.B)
	if err != nil {
		return nil, err
	}

	var cmp int
	switch metaComparisonModes[metaModeOf(a)][metaModeOf(b)] {
	case metaModeInt:
		aInt, err := MetaIntoInt(defs, a)
		if err != nil {
			return nil, err
		}
		bInt, err := MetaIntoInt(defs, b)
		if err != nil {
			return nil, err
		}
		switch {
		case aInt < bInt:
			cmp = -1
		case aInt > bInt:
			cmp = 1
		}
	case metaModeFloat:
		aFloat, err := MetaIntoFloat(defs, a)
		if err != nil {
			return nil, err
		}
		bFloat, err := MetaIntoFloat(defs, b)
		if err != nil {
			return nil, err
		}
		switch {
		case aFloat < bFloat:
			cmp = -1
		case aFloat > bFloat:
			cmp = 1
		}
	default:
		aStr, err := MetaIntoString(defs, a)
		if err != nil {
			return nil, err
		}
		bStr, err := MetaIntoString(defs, b)
		if err != nil {
			return nil, err
		}
		cmp = strings.Compare(aStr, bStr)
	}

	var result bool
	switch v.Op {
	case MetaEq:
		result = cmp == 0
	case MetaNeq:
		result = cmp != 0
	case MetaGt:
		result = cmp > 0
	case MetaGte:
		result = cmp >= 0
	case MetaLt:
		result = cmp < 0
	case MetaLte:
		result = cmp <= 0
	}
	return &MetaBool{Value: result}, nil
}

// MetaIntoBool collapses and coerces to a boolean. undef, false, and zero
// numerics are false; everything else is true.
func MetaIntoBool(defs []MetaDefinition, e MetaExpr) (bool, error) {
	collapsed, err := MetaCollapse(defs, e)
	if err != nil {
		return false, err
	}
	switch v := collapsed.(type) {
	case *MetaUndef:
		return false, nil
	case *MetaBool:
		return v.Value, nil
	case *MetaInt:
		return v.Value != 0, nil
	case *MetaFloat:
		return v.Value != 0, nil
	default:
		return true, nil
	}
}

// MetaIntoInt collapses and coerces to an integer. Strings parse base-10;
// unparsable strings coerce to zero.
func MetaIntoInt(defs []MetaDefinition, e MetaExpr) (int64, error) {
	collapsed, err := MetaCollapse(defs, e)
	if err != nil {
		return 0, err
	}
	switch v := collapsed.(type) {
	case *MetaBool:
		if v.Value {
			return 1, nil
		}
		return 0, nil
	case *MetaInt:
		return v.Value, nil
	case *MetaFloat:
		return int64(v.Value), nil
	case *MetaStr:
		return leadingInt(v.Value), nil
	default:
		return 0, nil
	}
}

// leadingInt parses the leading base-10 integer of a string, ignoring any
// trailing garbage; "42abc" is 42 and "abc" is 0.
func leadingInt(s string) int64 {
	s = strings.TrimSpace(s)
	i := 0
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		i++
	}
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	parsed, _ := strconv.ParseInt(s[:i], 10, 64)
	return parsed
}

// leadingFloat parses the leading float of a string, ignoring trailing
// garbage.
func leadingFloat(s string) float64 {
	s = strings.TrimSpace(s)
	i := 0
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		i++
	}
	seenDot, seenExp := false, false
	for i < len(s) {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c == '.' && !seenDot && !seenExp:
			seenDot = true
		case (c == 'e' || c == 'E') && !seenExp && i > 0:
			seenExp = true
			if i+1 < len(s) && (s[i+1] == '-' || s[i+1] == '+') {
				i++
			}
		default:
			parsed, _ := strconv.ParseFloat(s[:i], 64)
			return parsed
		}
		i++
	}
	parsed, _ := strconv.ParseFloat(s, 64)
	return parsed
}

// MetaIntoFloat collapses and coerces to a float.
func MetaIntoFloat(defs []MetaDefinition, e MetaExpr) (float64, error) {
	collapsed, err := MetaCollapse(defs, e)
	if err != nil {
		return 0, err
	}
	switch v := collapsed.(type) {
	case *MetaBool:
		if v.Value {
			return 1, nil
		}
		return 0, nil
	case *MetaInt:
		return float64(v.Value), nil
	case *MetaFloat:
		return v.Value, nil
	case *MetaStr:
		return leadingFloat(v.Value), nil
	default:
		return 0, nil
	}
}

// MetaIntoString collapses and coerces to a string.
func MetaIntoString(defs []MetaDefinition, e MetaExpr) (string, error) {
	collapsed, err := MetaCollapse(defs, e)
	if err != nil {
		return "", err
	}
	return MetaString(collapsed)
}

func findMetaDefinition(defs []MetaDefinition, name symbol.ID) *MetaDefinition {
	for i := range defs {
		if defs[i].Name == name {
			return &defs[i]
		}
	}
	return nil
}
