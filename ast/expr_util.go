package ast

import (
	"github.com/grailbio/base/log"
)

// IsMutable reports whether a statement is mutable-addressable: a variable,
// member, dereference, array access, mutable phantom, a ternary whose both
// branches are mutable, or a post-increment/decrement of a mutable operand.
func IsMutable(e Expr) bool {
	switch v := e.(type) {
	case *Var:
		return true
	case *Member:
		return true
	case *Dereference:
		return true
	case *ArrayAccess:
		return true
	case *Phantom:
		return v.Mutable
	case *Ternary:
		return IsMutable(v.A) && IsMutable(v.B)
	case *Update:
		if v.Kind == PostIncrement || v.Kind == PostDecrement {
			return IsMutable(v.Subject)
		}
		return false
	}
	return false
}

// AssignOperator maps a compound-assignment kind to the binary operator it
// applies. AssignPlain has no operator.
var assignOperators = map[AssignKind]BinaryKind{
	AssignAdd:          BinaryAdd,
	AssignSubtract:     BinarySubtract,
	AssignMultiply:     BinaryMultiply,
	AssignDivide:       BinaryDivide,
	AssignModulus:      BinaryModulus,
	AssignBitAnd:       BinaryBitAnd,
	AssignBitOr:        BinaryBitOr,
	AssignBitXor:       BinaryBitXor,
	AssignBitLshift:    BinaryBitLshift,
	AssignBitRshift:    BinaryBitRshift,
	AssignBitLgcLshift: BinaryBitLgcLshift,
	AssignBitLgcRshift: BinaryBitLgcRshift,
}

// AssignOperator decodes the underlying binary operator of a compound
// assignment.
func AssignOperator(kind AssignKind) (BinaryKind, bool) {
	op, ok := assignOperators[kind]
	return op, ok
}

// DeduceSize evaluates an expression that must yield a compile-time
// non-negative length (array bounds, polycount inputs) by constant-folding
// literals and the add/sub/mul/div/mod operators. Negative signed literals
// clamp to zero. It fails for any non-arithmetic operand, for division or
// modulus by zero, and for overflow.
func DeduceSize(e Expr) (uint64, bool) {
	switch v := e.(type) {
	case *IntLit:
		if v.Value < 0 {
			return 0, true
		}
		return uint64(v.Value), true
	case *Binary:
		a, ok := DeduceSize(v.A)
		if !ok {
			return 0, false
		}
		b, ok := DeduceSize(v.B)
		if !ok {
			return 0, false
		}
		switch v.Kind {
		case BinaryAdd:
			sum := a + b
			if sum < a {
				return 0, false
			}
			return sum, true
		case BinarySubtract:
			if b > a {
				return 0, true
			}
			return a - b, true
		case BinaryMultiply:
			if a != 0 && b > ^uint64(0)/a {
				return 0, false
			}
			return a * b, true
		case BinaryDivide:
			if b == 0 {
				return 0, false
			}
			return a / b, true
		case BinaryModulus:
			if b == 0 {
				return 0, false
			}
			return a % b, true
		}
		return 0, false
	}
	return 0, false
}

// MustDeduceSize is DeduceSize for callers that have already validated the
// expression; it dies on failure.
func MustDeduceSize(e Expr) uint64 {
	size, ok := DeduceSize(e)
	if !ok {
		log.Panicf("MustDeduceSize: cannot deduce size of %s", e.String())
	}
	return size
}

// AppendCase appends a case to a case list, preserving insertion order.
func AppendCase(cases []Case, c Case) []Case {
	return append(cases, c)
}
