package parse

import (
	"sort"
	"strings"
	"text/scanner"

	"github.com/brimlang/brim/ast"
	"github.com/brimlang/brim/symbol"
	"github.com/brimlang/brim/token"
)

// compositeHead is the parsed head of a composite declaration.
type compositeHead struct {
	name     symbol.ID
	isPacked bool
	isRecord bool
	isClass  bool
	parent   ast.Type // empty unless 'extends' was given
	generics []symbol.ID
}

// parseComposite parses struct/packed struct/record/class/union
// declarations, including an optional trailing method domain.
func (p *Parser) parseComposite(isUnion bool) error {
	pos := p.pos()

	head, err := p.parseCompositeHead(isUnion)
	if err != nil {
		return err
	}

	fieldMap := ast.NewFieldMap()
	skeleton := ast.Skeleton{}
	closer, err := p.parseCompositeRoot(&fieldMap, &skeleton, head.isClass, head.parent)
	if err != nil {
		return err
	}

	kind := ast.LayoutStruct
	if isUnion {
		kind = ast.LayoutUnion
	}
	traits := ast.TraitNone
	if head.isPacked {
		traits |= ast.LayoutPacked
	}
	layout := ast.Layout{Kind: kind, FieldMap: fieldMap, Skeleton: skeleton, Traits: traits}

	var composite *ast.Composite
	isPoly := len(head.generics) > 0
	if isPoly {
		poly := p.ast.AddPolyComposite(head.name, layout, pos, head.parent, head.isClass, head.generics)
		composite = &poly.Composite
	} else {
		composite = p.ast.AddComposite(head.name, layout, pos, head.parent, head.isClass)
	}

	if head.isRecord {
		if err := p.createRecordConstructor(head.name, head.generics, &composite.Layout, pos); err != nil {
			return err
		}
	}

	return p.parseCompositeDomain(composite, isPoly, closer)
}

// parseCompositeHead parses the keywords, generics, name, and optional
// parent class of a composite declaration.
func (p *Parser) parseCompositeHead(isUnion bool) (compositeHead, error) {
	head := compositeHead{}

	if isUnion {
		if err := p.eat(token.Union, "Expected 'union' keyword for union definition"); err != nil {
			return head, err
		}
	} else {
		if p.eatOptional(token.Packed) {
			head.isPacked = true
		}
		switch p.kind() {
		case token.Record:
			head.isRecord = true
			p.i++
		case token.Class:
			head.isClass = true
			p.i++
		default:
			if err := p.eat(token.Struct, "Expected 'struct' keyword after 'packed' keyword"); err != nil {
				return head, err
			}
		}
	}

	// Optional '<$A, $B>' generics.
	if p.eatOptional(token.LessThan) {
		for p.kind() != token.GreaterThan {
			if err := p.ignoreNewlines("Expected polymorphic generic type"); err != nil {
				return head, err
			}
			if p.kind() != token.Polymorph {
				return head, p.errorf(p.pos(), "Expected polymorphic generic type")
			}
			head.generics = append(head.generics, symbol.Intern(p.cur().Str))
			p.i++

			if err := p.ignoreNewlines("Expected '>' or ',' after polymorphic generic type"); err != nil {
				return head, err
			}
			if p.eatOptional(token.Next) {
				if p.kind() == token.GreaterThan {
					return head, p.errorf(p.pos(), "Expected polymorphic generic type after ',' in generics list")
				}
			} else if p.kind() != token.GreaterThan {
				return head, p.errorf(p.pos(), "Expected ',' after polymorphic generic type")
			}
		}
		p.i++ // eat '>'
	}

	var name symbol.ID
	if p.prename != symbol.Invalid {
		name = p.takePrename()
	} else {
		parsed, err := p.takeWord("Expected structure name after 'struct' keyword")
		if err != nil {
			return head, err
		}
		name = parsed
	}

	if p.eatOptional(token.Extends) {
		parent, err := p.parseType()
		if err != nil {
			return head, err
		}
		head.parent = parent
	}

	head.name = p.namespaced(name)
	return head, nil
}

// isFunctionLikeBeginning reports whether the token begins a method
// declaration inside a composite domain.
func isFunctionLikeBeginning(kind token.Kind) bool {
	switch kind {
	case token.Constructor, token.Func, token.Implicit, token.In,
		token.Verbatim, token.Virtual, token.Override:
		return true
	}
	return false
}

// parseCompositeRoot parses the root-level fields of a composite and
// returns the closer token kind (')' or '}'). Classes get a '__vtable__'
// slot or their parent class's fields up front.
func (p *Parser) parseCompositeRoot(fieldMap *ast.FieldMap, skeleton *ast.Skeleton, isClass bool, parent ast.Type) (token.Kind, error) {
	if err := p.ignoreNewlines("Expected '(' or '{' after composite name"); err != nil {
		return token.None, err
	}

	var closer token.Kind
	switch p.kind() {
	case token.Open:
		closer = token.Close
	case token.Begin:
		closer = token.End
	default:
		return token.None, p.errorf(p.pos(), "Expected '(' or '{' after composite name")
	}
	p.i++

	nextEndpoint, _ := ast.NewEndpointWith(0)

	if isClass {
		if !parent.IsEmpty() {
			if err := p.integrateComposite(fieldMap, skeleton, &nextEndpoint, &parent, true); err != nil {
				return token.None, err
			}
		} else {
			fieldMap.Add(symbol.Intern("__vtable__"), nextEndpoint)
			nextEndpoint.Increment()
			skeleton.AddType(ast.MakeBase(p.pos(), ptrSym))
		}
	}

	if err := p.ignoreNewlines("Expected name of field"); err != nil {
		return token.None, err
	}

	backfill := 0
	for (p.kind() != closer && !isFunctionLikeBeginning(p.kind())) || backfill != 0 {
		// Be lenient with unnecessary preceding commas.
		if p.kind() == token.Next {
			p.i++
		}

		if err := p.ignoreNewlines("Expected name of field"); err != nil {
			return token.None, err
		}
		if err := p.parseCompositeField(fieldMap, skeleton, &backfill, &nextEndpoint); err != nil {
			return token.None, err
		}

		autoComma := p.kind() == token.Newline
		closeMessage := "Expected ')' or ',' after field"
		if closer == token.End {
			closeMessage = "Expected '}' or ',' after field"
		}
		if err := p.ignoreNewlines(closeMessage); err != nil {
			return token.None, err
		}

		if p.kind() == token.Next {
			p.i++
			if err := p.ignoreNewlines("Expected field before end-of-file"); err != nil {
				return token.None, err
			}
			// Allow for unnecessary trailing comma when closing.
			if p.kind() == closer || isFunctionLikeBeginning(p.kind()) {
				break
			}
		} else if p.kind() != closer && !isFunctionLikeBeginning(p.kind()) && !autoComma {
			return token.None, p.errorf(p.pos(), "Expected ',' after field name and type")
		}
	}

	return closer, nil
}

// parseCompositeBody parses a parenthesised field list for anonymous
// layouts embedded in types.
func (p *Parser) parseCompositeBody(fieldMap *ast.FieldMap, skeleton *ast.Skeleton, isClass bool, parent *ast.Type) error {
	if err := p.ignoreNewlines("Expected '(' after composite keyword"); err != nil {
		return err
	}
	if err := p.eat(token.Open, "Expected '(' after composite keyword"); err != nil {
		return err
	}

	nextEndpoint, _ := ast.NewEndpointWith(0)
	backfill := 0

	for p.kind() != token.Close || backfill != 0 {
		if err := p.ignoreNewlines("Expected name of field"); err != nil {
			return err
		}
		if err := p.parseCompositeField(fieldMap, skeleton, &backfill, &nextEndpoint); err != nil {
			return err
		}
		if err := p.ignoreNewlines("Expected ')' or ',' after field"); err != nil {
			return err
		}
		if p.kind() == token.Next {
			p.i++
			if p.kind() == token.Close {
				return p.errorf(p.pos(), "Expected field name and type after ',' in field list")
			}
		} else if p.kind() != token.Close {
			return p.errorf(p.pos(), "Expected ',' after field name and type")
		}
	}
	// The caller passes over the closing ')'.
	return nil
}

// parseCompositeField parses one field: a plain 'name Type' field (with
// backfilled 'a, b, c Type' groups), a struct integration field, or an
// anonymous composite.
func (p *Parser) parseCompositeField(fieldMap *ast.FieldMap, skeleton *ast.Skeleton, backfill *int, nextEndpoint *ast.Endpoint) error {
	leading := p.kind()

	if leading == token.Struct && p.kindAt(p.i+1) != token.Open && p.kindAt(p.i+1) != token.BracketOpen {
		// Struct integration field.
		if *backfill != 0 {
			return p.errorf(p.pos(), "Expected field type for previous fields before integrated struct")
		}
		p.i++ // ignore 'struct' keyword

		innerType, err := p.parseType()
		if err != nil {
			return err
		}
		return p.integrateComposite(fieldMap, skeleton, nextEndpoint, &innerType, false)
	}

	if leading == token.Packed || leading == token.Struct || leading == token.Union {
		// Anonymous struct/union.
		if *backfill != 0 {
			kindName := "struct"
			if leading == token.Union {
				kindName = "union"
			}
			return p.errorf(p.pos(), "Expected field type for previous fields before anonymous %s", kindName)
		}
		return p.parseAnonymousComposite(fieldMap, skeleton, nextEndpoint)
	}

	// Otherwise it's just a regular field.
	fieldName, err := p.takeWord("Expected name of field")
	if err != nil {
		return err
	}
	fieldMap.Add(fieldName, *nextEndpoint)
	nextEndpoint.Increment()

	if p.kind() == token.Next || p.kind() == token.Newline {
		// This field is part of a field list where all fields share one
		// type, specified at the end.
		*backfill++
		return nil
	}

	fieldType, err := p.parseType()
	if err != nil {
		return err
	}
	for *backfill != 0 {
		skeleton.AddType(fieldType.Clone())
		*backfill--
	}
	skeleton.AddType(fieldType)
	return nil
}

// parseAnonymousComposite parses an anonymous struct/union field and its
// nested field list.
func (p *Parser) parseAnonymousComposite(fieldMap *ast.FieldMap, skeleton *ast.Skeleton, nextEndpoint *ast.Endpoint) error {
	isPacked := p.eatOptional(token.Packed)

	boneKind := ast.BoneStruct
	if p.kind() == token.Union {
		boneKind = ast.BoneUnion
	}
	p.i++ // skip 'struct' or 'union'

	boneTraits := ast.TraitNone
	if isPacked {
		boneTraits |= ast.LayoutPacked
	}

	var childSkeleton *ast.Skeleton
	if boneKind == ast.BoneStruct {
		childSkeleton = skeleton.AddStruct(boneTraits)
	} else {
		childSkeleton = skeleton.AddUnion(boneTraits)
	}

	childNextEndpoint := *nextEndpoint
	if !childNextEndpoint.AddIndex(0) {
		return p.errorf(p.pos(), "Maximum depth of anonymous composites exceeded - No more than %d are allowed", ast.MaxDepth)
	}

	if err := p.ignoreNewlines("Expected '(' for anonymous composite"); err != nil {
		return err
	}
	if err := p.eat(token.Open, "Expected '(' for anonymous composite"); err != nil {
		return err
	}

	backfill := 0
	for p.kind() != token.Close || backfill != 0 {
		if err := p.ignoreNewlines("Expected name of field"); err != nil {
			return err
		}
		if err := p.parseCompositeField(fieldMap, childSkeleton, &backfill, &childNextEndpoint); err != nil {
			return err
		}
		if err := p.ignoreNewlines("Expected ')' or ',' after field"); err != nil {
			return err
		}
		if p.kind() == token.Next {
			p.i++
			if p.kind() == token.Close {
				return p.errorf(p.pos(), "Expected field name and type after ',' in field list")
			}
		} else if p.kind() != token.Close {
			return p.errorf(p.pos(), "Expected ',' after field name and type")
		}
	}

	nextEndpoint.Increment()
	p.i++ // eat ')'
	return nil
}

// integrateComposite flattens another simple struct or class into the
// composite under construction. With requireClass set, the target is a
// parent class that must already be defined.
func (p *Parser) integrateComposite(fieldMap *ast.FieldMap, skeleton *ast.Skeleton, nextEndpoint *ast.Endpoint, otherType *ast.Type, requireClass bool) error {
	composite := p.ast.FindComposite(otherType)
	if composite == nil {
		if requireClass {
			return p.errorf(otherType.Pos, "Cannot extend non-existent class '%s' (parent classes must be defined before their children)", otherType.String())
		}
		return p.errorf(otherType.Pos, "Struct '%s' must already be declared", otherType.String())
	}

	layout := &composite.Layout
	var resolvedStorage ast.Layout

	if composite.IsPolymorphic {
		resolved, err := p.resolveIntegrationLayout(composite, otherType)
		if err != nil {
			return err
		}
		resolvedStorage = resolved
		layout = &resolvedStorage
	}

	if !layout.IsSimpleStruct() {
		if requireClass {
			return p.errorf(otherType.Pos, "Cannot extend class '%s' which has a complex layout", otherType.String())
		}
		return p.errorf(otherType.Pos, "Cannot integrate composite '%s' which has a complex layout", otherType.String())
	}

	for i := 0; i < layout.FieldMap.Count(); i++ {
		fieldName := layout.FieldMap.NameAt(i)
		fieldType := layout.Skeleton.GetTypeAtIndex(i)

		fieldMap.Add(fieldName, *nextEndpoint)
		skeleton.AddType(fieldType.Clone())
		nextEndpoint.Increment()
	}
	return nil
}

// resolveIntegrationLayout substitutes the generic parameters of a
// polymorphic composite with the generics given at the integration site.
func (p *Parser) resolveIntegrationLayout(composite *ast.Composite, usage *ast.Type) (ast.Layout, error) {
	poly := p.ast.FindPolyCompositeExact(composite.Name)
	if poly == nil {
		return ast.Layout{}, p.errorf(usage.Pos, "Struct '%s' must already be declared", usage.String())
	}

	genericBase, ok := usage.Elems[0].(*ast.GenericBaseElem)
	if !ok || len(genericBase.Generics) != len(poly.Generics) {
		return ast.Layout{}, p.errorf(usage.Pos,
			"Polymorphic struct '%s' is missing its type parameters", composite.Name.Str())
	}

	catalog := ast.PolyCatalog{}
	for i, name := range poly.Generics {
		catalog.AddType(name, genericBase.Generics[i].Clone())
	}

	resolved := composite.Layout.Clone()
	if err := resolveSkeletonPolymorphs(&catalog, &resolved.Skeleton); err != nil {
		return ast.Layout{}, p.errorf(usage.Pos, "%v", err)
	}
	return resolved, nil
}

func resolveSkeletonPolymorphs(catalog *ast.PolyCatalog, skeleton *ast.Skeleton) error {
	for i := range skeleton.Bones {
		bone := &skeleton.Bones[i]
		switch bone.Kind {
		case ast.BoneType:
			if err := catalog.ResolveTypeInPlace(&bone.Type); err != nil {
				return err
			}
		case ast.BoneStruct, ast.BoneUnion:
			if err := resolveSkeletonPolymorphs(catalog, &bone.Children); err != nil {
				return err
			}
		}
	}
	return nil
}

// parseCompositeDomain handles what follows a composite's field list: the
// closer token, and optionally a '{ ...methods... }' domain.
func (p *Parser) parseCompositeDomain(composite *ast.Composite, isPoly bool, closer token.Kind) error {
	if isFunctionLikeBeginning(p.kind()) {
		// '{' form with inline methods; the closing '}' ends the domain.
		p.compositeAssociation = composite
		p.associationIsPoly = isPoly
		return nil
	}

	if err := p.eat(closer, "Expected closer for composite field list"); err != nil {
		return err
	}

	anchor := p.i
	_ = p.ignoreNewlines("")
	if p.kind() == token.Begin {
		p.i++ // eat '{'
		p.compositeAssociation = composite
		p.associationIsPoly = isPoly
		return nil
	}
	p.i = anchor

	if composite.IsClass {
		return p.errorf(composite.Pos, "Class is missing constructor")
	}
	return nil
}

// builtinTypenames are the primitive base types. Kept sorted.
var builtinTypenames = []string{
	"bool", "byte", "double", "float", "int", "long", "ptr", "short",
	"successful", "ubyte", "uint", "ulong", "ushort", "usize", "void",
}

func isBuiltinTypename(name string) bool {
	i := sort.SearchStrings(builtinTypenames, name)
	return i < len(builtinTypenames) && builtinTypenames[i] == name
}

// createRecordConstructor synthesizes the by-value constructor of a record
// type: a function named after the record whose parameters mirror the field
// map, and whose body fills in a master value '$' and returns it.
func (p *Parser) createRecordConstructor(name symbol.ID, generics []symbol.ID, layout *ast.Layout, pos scanner.Position) error {
	if !layout.IsSimpleStruct() {
		return p.errorf(pos, "Record type '%s' cannot be defined to have a complicated structure", name.Str())
	}
	if strings.HasPrefix(name.Str(), "__") {
		return p.errorf(pos, "Name of record type '%s' cannot start with double underscores", name.Str())
	}
	if name.Str() == p.cfg.EntryPoint {
		return p.errorf(pos, "Name of record type '%s' conflicts with name of entry point", name.Str())
	}

	skeleton := &layout.Skeleton
	fieldMap := &layout.FieldMap
	isPolymorphic := skeleton.HasPolymorph() || len(generics) > 0

	id := p.ast.NewFunc()
	fn := p.ast.Func(id)
	fn.Name = name
	fn.Pos = pos
	fn.VirtualOrigin = ast.InvalidFuncID
	fn.VirtualDispatcher = ast.InvalidFuncID
	fn.Traits = ast.FuncGenerated | ast.FuncAutogen

	if len(generics) > 0 {
		fn.ReturnType = ast.MakeBaseWithPolymorphs(pos, name, generics)
	} else {
		fn.ReturnType = ast.MakeBase(pos, name)
	}

	// Track whether all fields are primitive builtin types; if so, the '$'
	// value need not be zero initialized.
	allPrimitive := true

	arity := fieldMap.Count()
	fn.Arity = arity
	fn.ArgNames = make([]symbol.ID, arity)
	fn.ArgTypes = make([]ast.Type, arity)
	fn.ArgFlows = make([]ast.Flow, arity)
	fn.ArgSources = make([]scanner.Position, arity)
	fn.ArgTypeTraits = make([]ast.Trait, arity)

	for i := 0; i < arity; i++ {
		fieldName := fieldMap.NameAt(i)
		fieldType := skeleton.GetTypeAtIndex(i)

		fn.ArgNames[i] = fieldName
		fn.ArgTypes[i] = fieldType.Clone()
		fn.ArgFlows[i] = ast.FlowIn
		fn.ArgTypeTraits[i] = ast.ArgTypePod

		if allPrimitive {
			if fn.ArgTypes[i].IsBase() {
				baseName := fn.ArgTypes[i].Elems[0].(*ast.BaseElem).Name
				allPrimitive = isBuiltinTypename(baseName.Str())
			} else {
				allPrimitive = false
			}
		}
	}

	stmts := make(ast.ExprList, 0, arity+2)
	stmts = append(stmts, &ast.Declare{
		Pos:     pos,
		Name:    symbol.Master,
		Type:    fn.ReturnType.Clone(),
		Traits:  ast.DeclarePod | ast.DeclareAssignPod,
		IsUndef: allPrimitive,
	})

	for i := 0; i < arity; i++ {
		fieldName := fieldMap.NameAt(i)
		master := &ast.Var{Pos: pos, Name: symbol.Master}
		mutable := &ast.Member{Pos: pos, Subject: master, Field: fieldName}
		variable := &ast.Var{Pos: pos, Name: fieldName}
		stmts = append(stmts, &ast.Assign{Pos: pos, Kind: ast.AssignPlain, Dest: mutable, Value: variable})
	}

	stmts = append(stmts, &ast.Return{
		Pos:   pos,
		Value: &ast.Var{Pos: pos, Name: symbol.Master},
	})
	fn.Statements = stmts

	if isPolymorphic {
		fn.Traits |= ast.FuncPolymorphic
		p.ast.AddPolyFunc(fn.Name, id)
	}
	return nil
}
