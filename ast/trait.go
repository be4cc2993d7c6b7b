package ast

// Trait is a bitmask of boolean attributes. Each entity interprets its own
// bit assignments; the zero value carries no traits.
type Trait uint32

// TraitNone is the empty trait set.
const TraitNone Trait = 0

// Has reports whether all bits of q are set.
func (t Trait) Has(q Trait) bool { return t&q == q }

// HasAny reports whether any bit of q is set.
func (t Trait) HasAny(q Trait) bool { return t&q != 0 }

// Function traits.
const (
	FuncForeign Trait = 1 << iota
	FuncVararg
	FuncMain
	FuncStdcall
	FuncPolymorphic
	FuncGenerated
	FuncDefer
	FuncPass
	FuncAutogen
	FuncVariadic
	FuncImplicit
	FuncWinmain
	FuncNoDiscard
	FuncDisallow
	FuncVirtual
	FuncOverride
	FuncUsedOverride
	FuncNoSuggest
	FuncDispatcher
	FuncClassConstructor
	FuncWarnBadPrintfFormat
	FuncInit
	FuncDeinit
)

// Argument type traits.
const (
	ArgTypePod Trait = 1 << iota
)

// Global variable traits. The special sub-traits identify which runtime type
// table a special global backs; they are only meaningful combined with
// GlobalSpecial.
const (
	GlobalPod Trait = 1 << iota
	GlobalExternal
	GlobalThreadLocal
	GlobalSpecial
	GlobalTypes
	GlobalTypesLength
	GlobalTypeKinds
	GlobalTypeKindsLength
)

// Layout and bone traits.
const (
	LayoutPacked Trait = 1 << iota
)
