package ast

import (
	"math"
	"sort"
	"text/scanner"

	"github.com/brimlang/brim/symbol"
	"github.com/grailbio/base/log"
)

// LibraryKind distinguishes foreign dependency flavors.
type LibraryKind uint8

const (
	LibraryNone LibraryKind = iota
	Library
	Framework
)

// ForeignLibrary is a dependency recorded by a 'foreign "name"' declaration.
type ForeignLibrary struct {
	Name string
	Kind LibraryKind
}

// Common caches singleton types shared across the compilation: 'int' and
// 'usize', plus the user-defined variadic-array and initializer-list types
// once their defining functions are seen.
type Common struct {
	IntType   Type
	UsizeType Type

	VariadicArray    *Type
	VariadicPos      scanner.Position
	InitializerList  *Type
	InitializerPos   scanner.Position
}

// PolyFunc is one entry in the polymorphic function index.
type PolyFunc struct {
	Name   symbol.ID
	FuncID FuncID
}

// MetaDefinition is one '(name, value)' pair of the meta definition list.
type MetaDefinition struct {
	Name  symbol.ID
	Value MetaExpr
}

// AST is the root container produced by the parser. It is created empty,
// mutated only by the parser and the runtime-type injection step, and
// discarded whole.
type AST struct {
	Funcs       []Func
	FuncAliases []FuncAlias

	Composites     []Composite
	PolyComposites []PolyComposite

	Aliases          []TypeAlias // sorted by name
	Globals          []Global    // sorted by name
	Enums            []Enum      // sorted by name
	NamedExpressions []NamedExpression

	MetaDefinitions []MetaDefinition

	// PolyFuncs indexes polymorphic functions; PolyMethods is the subset
	// that are methods. Both are kept sorted by name.
	PolyFuncs   []PolyFunc
	PolyMethods []PolyFunc

	Libraries []ForeignLibrary

	Common Common
}

// New returns an empty AST with the common singleton types populated.
func New() *AST {
	a := &AST{}
	a.Common.IntType = MakeBase(scanner.Position{}, symbol.Intern("int"))
	a.Common.UsizeType = MakeBase(scanner.Position{}, symbol.Usize)
	injectRuntimeTypes(a)
	return a
}

// NewFunc allocates a blank function and returns its id. The id space is
// bounded; exceeding it is a hard failure.
func (a *AST) NewFunc() FuncID {
	if len(a.Funcs) >= math.MaxInt32 {
		log.Panicf("AST.NewFunc: too many AST functions")
	}
	a.Funcs = append(a.Funcs, Func{
		VirtualOrigin:     InvalidFuncID,
		VirtualDispatcher: InvalidFuncID,
	})
	return FuncID(len(a.Funcs) - 1)
}

// Func returns the function with the given id.
func (a *AST) Func(id FuncID) *Func {
	return &a.Funcs[id]
}

// AddFuncAlias records a function redirection.
func (a *AST) AddFuncAlias(alias FuncAlias) {
	a.FuncAliases = append(a.FuncAliases, alias)
}

// AddComposite adds a composite to the global scope. maybeParent may be the
// empty type.
func (a *AST) AddComposite(name symbol.ID, layout Layout, pos scanner.Position, maybeParent Type, isClass bool) *Composite {
	a.Composites = append(a.Composites, Composite{
		Name:    name,
		Layout:  layout,
		Pos:     pos,
		Parent:  maybeParent,
		IsClass: isClass,
	})
	return &a.Composites[len(a.Composites)-1]
}

// AddPolyComposite adds a polymorphic composite to the global scope.
func (a *AST) AddPolyComposite(name symbol.ID, layout Layout, pos scanner.Position, maybeParent Type, isClass bool, generics []symbol.ID) *PolyComposite {
	a.PolyComposites = append(a.PolyComposites, PolyComposite{
		Composite: Composite{
			Name:          name,
			Layout:        layout,
			Pos:           pos,
			Parent:        maybeParent,
			IsClass:       isClass,
			IsPolymorphic: true,
		},
		Generics: generics,
	})
	return &a.PolyComposites[len(a.PolyComposites)-1]
}

// FindCompositeExact finds a composite by its exact name.
func (a *AST) FindCompositeExact(name symbol.ID) *Composite {
	for i := range a.Composites {
		if a.Composites[i].Name == name {
			return &a.Composites[i]
		}
	}
	return nil
}

// FindPolyCompositeExact finds a polymorphic composite by its exact name.
func (a *AST) FindPolyCompositeExact(name symbol.ID) *PolyComposite {
	for i := range a.PolyComposites {
		if a.PolyComposites[i].Name == name {
			return &a.PolyComposites[i]
		}
	}
	return nil
}

// FindComposite finds a composite (polymorphic or not) named by a base or
// generic-base type.
func (a *AST) FindComposite(t *Type) *Composite {
	name, ok := t.StructName()
	if !ok {
		return nil
	}
	if _, isGeneric := t.Elems[0].(*GenericBaseElem); isGeneric {
		if poly := a.FindPolyCompositeExact(name); poly != nil {
			return &poly.Composite
		}
		return nil
	}
	return a.FindCompositeExact(name)
}

// AddAlias inserts a type alias, keeping the alias list sorted by name.
func (a *AST) AddAlias(alias TypeAlias) {
	i := sort.Search(len(a.Aliases), func(i int) bool {
		return a.Aliases[i].Name.Str() >= alias.Name.Str()
	})
	a.Aliases = append(a.Aliases, TypeAlias{})
	copy(a.Aliases[i+1:], a.Aliases[i:])
	a.Aliases[i] = alias
}

// FindAlias finds a type alias by name using binary search.
func (a *AST) FindAlias(name symbol.ID) *TypeAlias {
	str := name.Str()
	i := sort.Search(len(a.Aliases), func(i int) bool {
		return a.Aliases[i].Name.Str() >= str
	})
	if i < len(a.Aliases) && a.Aliases[i].Name == name {
		return &a.Aliases[i]
	}
	return nil
}

// AddEnum inserts an enum, keeping the enum list sorted by name.
func (a *AST) AddEnum(e Enum) {
	i := sort.Search(len(a.Enums), func(i int) bool {
		return a.Enums[i].Name.Str() >= e.Name.Str()
	})
	a.Enums = append(a.Enums, Enum{})
	copy(a.Enums[i+1:], a.Enums[i:])
	a.Enums[i] = e
}

// FindEnum finds an enum by name using binary search.
func (a *AST) FindEnum(name symbol.ID) *Enum {
	str := name.Str()
	i := sort.Search(len(a.Enums), func(i int) bool {
		return a.Enums[i].Name.Str() >= str
	})
	if i < len(a.Enums) && a.Enums[i].Name == name {
		return &a.Enums[i]
	}
	return nil
}

// AddGlobal inserts a global variable, keeping the global list sorted by
// name.
func (a *AST) AddGlobal(g Global) {
	i := sort.Search(len(a.Globals), func(i int) bool {
		return a.Globals[i].Name.Str() >= g.Name.Str()
	})
	a.Globals = append(a.Globals, Global{})
	copy(a.Globals[i+1:], a.Globals[i:])
	a.Globals[i] = g
}

// FindGlobal finds a global variable by name using binary search.
func (a *AST) FindGlobal(name symbol.ID) *Global {
	str := name.Str()
	i := sort.Search(len(a.Globals), func(i int) bool {
		return a.Globals[i].Name.Str() >= str
	})
	if i < len(a.Globals) && a.Globals[i].Name == name {
		return &a.Globals[i]
	}
	return nil
}

// AddNamedExpression adds a named expression to the global scope, keeping
// the list sorted by name.
func (a *AST) AddNamedExpression(n NamedExpression) {
	i := sort.Search(len(a.NamedExpressions), func(i int) bool {
		return a.NamedExpressions[i].Name.Str() >= n.Name.Str()
	})
	a.NamedExpressions = append(a.NamedExpressions, NamedExpression{})
	copy(a.NamedExpressions[i+1:], a.NamedExpressions[i:])
	a.NamedExpressions[i] = n
}

// FindNamedExpression finds a named expression by name using binary search.
func (a *AST) FindNamedExpression(name symbol.ID) *NamedExpression {
	str := name.Str()
	i := sort.Search(len(a.NamedExpressions), func(i int) bool {
		return a.NamedExpressions[i].Name.Str() >= str
	})
	if i < len(a.NamedExpressions) && a.NamedExpressions[i].Name == name {
		return &a.NamedExpressions[i]
	}
	return nil
}

// AddPolyFunc adds a function to the polymorphic function index, keeping it
// sorted by name.
func (a *AST) AddPolyFunc(name symbol.ID, id FuncID) {
	a.PolyFuncs = insertPolyFunc(a.PolyFuncs, name, id)
}

// AddPolyMethod adds a method to the polymorphic method index, keeping it
// sorted by name.
func (a *AST) AddPolyMethod(name symbol.ID, id FuncID) {
	a.PolyMethods = insertPolyFunc(a.PolyMethods, name, id)
}

func insertPolyFunc(list []PolyFunc, name symbol.ID, id FuncID) []PolyFunc {
	i := sort.Search(len(list), func(i int) bool {
		return list[i].Name.Str() >= name.Str()
	})
	list = append(list, PolyFunc{})
	copy(list[i+1:], list[i:])
	list[i] = PolyFunc{Name: name, FuncID: id}
	return list
}

// FindPolyFuncs returns the contiguous run of polymorphic functions with the
// given name.
func (a *AST) FindPolyFuncs(name symbol.ID) []PolyFunc {
	return findPolyFuncs(a.PolyFuncs, name)
}

// FindPolyMethods returns the contiguous run of polymorphic methods with the
// given name.
func (a *AST) FindPolyMethods(name symbol.ID) []PolyFunc {
	return findPolyFuncs(a.PolyMethods, name)
}

func findPolyFuncs(list []PolyFunc, name symbol.ID) []PolyFunc {
	str := name.Str()
	lo := sort.Search(len(list), func(i int) bool {
		return list[i].Name.Str() >= str
	})
	hi := lo
	for hi < len(list) && list[hi].Name == name {
		hi++
	}
	return list[lo:hi]
}

// AddForeignLibrary records a foreign library dependency.
func (a *AST) AddForeignLibrary(name string, kind LibraryKind) {
	a.Libraries = append(a.Libraries, ForeignLibrary{Name: name, Kind: kind})
}

// AddMetaDefinition appends a meta definition.
func (a *AST) AddMetaDefinition(name symbol.ID, value MetaExpr) {
	a.MetaDefinitions = append(a.MetaDefinitions, MetaDefinition{Name: name, Value: value})
}

// FindMetaDefinition queries the meta definition list by linear scan.
func (a *AST) FindMetaDefinition(name symbol.ID) *MetaDefinition {
	for i := range a.MetaDefinitions {
		if a.MetaDefinitions[i].Name == name {
			return &a.MetaDefinitions[i]
		}
	}
	return nil
}

// EndIsReachable checks whether it is possible to execute every statement of
// a function and still not have returned.
func (a *AST) EndIsReachable(id FuncID) bool {
	return endIsReachable(a.Funcs[id].Statements, 32, 0)
}

func endIsReachable(stmts ExprList, maxDepth, depth int) bool {
	if depth >= maxDepth {
		return true
	}
	for _, stmt := range stmts {
		switch v := stmt.(type) {
		case *Return:
			return false
		case *ConditionalElse:
			if !endIsReachable(v.Stmts, maxDepth, depth+1) &&
				!endIsReachable(v.ElseStmts, maxDepth, depth+1) {
				return false
			}
		}
	}
	return true
}
