package ast

import (
	"strings"

	"github.com/brimlang/brim/hash"
	"github.com/brimlang/brim/symbol"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
)

// Composite layouts. A layout is a skeleton of bones (types, anonymous
// structs, anonymous unions) plus a field map associating names with
// endpoints into that skeleton.

const (
	// EndpointEndIndex terminates the index list of an endpoint in-band.
	EndpointEndIndex = 0xFFFF

	// MaxFields is the maximum number of fields in the root of a skeleton.
	MaxFields = EndpointEndIndex - 1

	// MaxDepth is the maximum nesting of anonymous composites.
	MaxDepth = 8
)

// Endpoint identifies a field within a skeleton. Each index selects a child
// bone of the skeleton reached by the previous indices.
//
// For the type 'struct (is_float bool, union (f float, s *ubyte))':
//   - [0x0, END]      is the 'is_float' bool
//   - [0x1, 0x0, END] is the 'f' float
//   - [0x1, 0x1, END] is the 's' *ubyte
type Endpoint struct {
	indices [MaxDepth]uint16
}

// NewEndpoint returns an empty endpoint.
func NewEndpoint() Endpoint {
	var e Endpoint
	for i := range e.indices {
		e.indices[i] = EndpointEndIndex
	}
	return e
}

// NewEndpointWith builds an endpoint from indices. It fails when more than
// MaxDepth indices are supplied.
func NewEndpointWith(indices ...uint16) (Endpoint, bool) {
	e := NewEndpoint()
	if len(indices) > MaxDepth {
		return e, false
	}
	copy(e.indices[:], indices)
	return e, true
}

// Len returns the number of indices in the endpoint.
func (e *Endpoint) Len() int {
	for i, idx := range e.indices {
		if idx == EndpointEndIndex {
			return i
		}
	}
	return MaxDepth
}

// At returns the i-th index.
func (e *Endpoint) At(i int) uint16 { return e.indices[i] }

// AddIndex appends an index. It fails when the endpoint is at capacity,
// leaving the endpoint unchanged.
func (e *Endpoint) AddIndex(index uint16) bool {
	for i := range e.indices {
		if e.indices[i] == EndpointEndIndex {
			e.indices[i] = index
			return true
		}
	}
	return false
}

// Increment bumps the last index of the endpoint.
func (e *Endpoint) Increment() {
	n := e.Len()
	if n == 0 {
		log.Panicf("Endpoint.Increment on empty endpoint")
	}
	e.indices[n-1]++
}

// Equals reports whether two endpoints are functionally equivalent.
func (e Endpoint) Equals(other Endpoint) bool { return e.indices == other.indices }

// Hash computes a hash of the endpoint.
func (e *Endpoint) Hash() hash.Hash {
	n := e.Len()
	h := hash.Int(int64(n))
	for i := 0; i < n; i++ {
		h = h.Merge(hash.Uint(uint64(e.indices[i])))
	}
	return h
}

// WaypointKind says how one traversal step reaches the next bone.
type WaypointKind uint8

const (
	// WaypointOffset steps to a member inside a structure.
	WaypointOffset WaypointKind = iota + 1
	// WaypointBitcast reinterprets the storage of a union.
	WaypointBitcast
)

// Waypoint is one step of a resolved path.
type Waypoint struct {
	Kind  WaypointKind
	Index int // member index, only for WaypointOffset
}

// Path records how to arrive at an endpoint. It is derived from a layout and
// an endpoint on demand, never stored.
type Path struct {
	Waypoints []Waypoint
}

// BoneKind discriminates the three kinds of bone.
type BoneKind uint8

const (
	BoneType BoneKind = iota
	BoneStruct
	BoneUnion
)

// Bone is one node of a layout skeleton: a leaf type, an anonymous struct,
// or an anonymous union.
type Bone struct {
	Kind     BoneKind
	Traits   Trait // LayoutPacked
	Type     Type  // BoneType only
	Children Skeleton
}

// Skeleton is the ordered bone sequence of a layout.
type Skeleton struct {
	Bones []Bone
}

// LayoutKind is the kind of the root of a composite layout.
type LayoutKind uint8

const (
	LayoutStruct LayoutKind = iota
	LayoutUnion
)

// Name returns the source keyword of the layout kind.
func (k LayoutKind) Name() string {
	switch k {
	case LayoutStruct:
		return "struct"
	case LayoutUnion:
		return "union"
	}
	log.Panicf("LayoutKind.Name: unknown layout kind %d", k)
	return ""
}

// FieldArrow maps a single field name to a location.
type FieldArrow struct {
	Name     symbol.ID
	Endpoint Endpoint
}

// FieldMap is the collection of arrows that resolve names to locations.
type FieldMap struct {
	Arrows []FieldArrow

	// simple is maintained by Add: true while the i-th arrow has
	// endpoint [i, END], i.e. the map describes a flat composite.
	simple bool
	added  bool
}

// NewFieldMap returns an empty field map.
func NewFieldMap() FieldMap { return FieldMap{simple: true} }

// Add appends an arrow.
func (m *FieldMap) Add(name symbol.ID, endpoint Endpoint) {
	if !m.added {
		m.simple = true
		m.added = true
	}
	if m.simple {
		want, _ := NewEndpointWith(uint16(len(m.Arrows)))
		if !endpoint.Equals(want) {
			m.simple = false
		}
	}
	m.Arrows = append(m.Arrows, FieldArrow{Name: name, Endpoint: endpoint})
}

// IsSimple reports whether the i-th arrow has endpoint [i, END] for every i.
func (m *FieldMap) IsSimple() bool {
	if !m.added {
		return true
	}
	return m.simple
}

// Find returns the endpoint a name maps to.
func (m *FieldMap) Find(name symbol.ID) (Endpoint, bool) {
	for i := range m.Arrows {
		if m.Arrows[i].Name == name {
			return m.Arrows[i].Endpoint, true
		}
	}
	return Endpoint{}, false
}

// NameOfEndpoint finds the first name that maps to the given endpoint. Used
// for diagnostics.
func (m *FieldMap) NameOfEndpoint(endpoint Endpoint) (symbol.ID, bool) {
	for i := range m.Arrows {
		if m.Arrows[i].Endpoint.Equals(endpoint) {
			return m.Arrows[i].Name, true
		}
	}
	return symbol.Invalid, false
}

// Count returns the number of arrows. Only significant for simple maps.
func (m *FieldMap) Count() int { return len(m.Arrows) }

// NameAt returns the name of the i-th arrow. Only significant for simple
// maps.
func (m *FieldMap) NameAt(i int) symbol.ID { return m.Arrows[i].Name }

// Clone deep-copies the field map.
func (m *FieldMap) Clone() FieldMap {
	c := *m
	c.Arrows = append([]FieldArrow(nil), m.Arrows...)
	return c
}

// FieldMapsIdentical reports whether two field maps have pairwise matching
// arrow sequences.
func FieldMapsIdentical(a, b *FieldMap) bool {
	if len(a.Arrows) != len(b.Arrows) {
		return false
	}
	for i := range a.Arrows {
		if a.Arrows[i].Name != b.Arrows[i].Name {
			return false
		}
		if !a.Arrows[i].Endpoint.Equals(b.Arrows[i].Endpoint) {
			return false
		}
	}
	return true
}

var fieldMapHashSeed = hash.Hash{
	0x9c, 0x17, 0xe4, 0x6b, 0x20, 0xd5, 0x7f, 0x38,
	0xaa, 0x01, 0x92, 0xc8, 0x5e, 0xb3, 0x4d, 0xe6,
	0x73, 0xf8, 0x0a, 0x51, 0xbc, 0x29, 0xd0, 0x87,
	0x16, 0x4a, 0xe1, 0x3d, 0x98, 0x62, 0xcf, 0x05}

// Hash computes a hash of the field map.
func (m *FieldMap) Hash() hash.Hash {
	h := fieldMapHashSeed
	for i := range m.Arrows {
		h = h.Merge(m.Arrows[i].Name.Hash())
		h = h.Merge(m.Arrows[i].Endpoint.Hash())
	}
	return h
}

// Layout is a composite's shape: kind, skeleton, and attached names.
type Layout struct {
	Kind     LayoutKind
	FieldMap FieldMap
	Skeleton Skeleton
	Traits   Trait // LayoutPacked
}

// NewStructLayout builds a simple struct layout with the given field names
// and types. Ownership of the types is taken.
func NewStructLayout(names []symbol.ID, types []Type, traits Trait) Layout {
	if len(names) != len(types) {
		log.Panicf("NewStructLayout: %d names for %d types", len(names), len(types))
	}
	layout := Layout{Kind: LayoutStruct, FieldMap: NewFieldMap(), Traits: traits}
	for i := range names {
		endpoint, _ := NewEndpointWith(uint16(i))
		layout.FieldMap.Add(names[i], endpoint)
		layout.Skeleton.AddType(types[i])
	}
	return layout
}

// Clone deep-copies the layout.
func (l *Layout) Clone() Layout {
	return Layout{
		Kind:     l.Kind,
		FieldMap: l.FieldMap.Clone(),
		Skeleton: l.Skeleton.Clone(),
		Traits:   l.Traits,
	}
}

// LayoutsIdentical reports whether two layouts are equivalent.
func LayoutsIdentical(a, b *Layout) bool {
	if a.Kind != b.Kind || a.Traits != b.Traits {
		return false
	}
	if !FieldMapsIdentical(&a.FieldMap, &b.FieldMap) {
		return false
	}
	return SkeletonsIdentical(&a.Skeleton, &b.Skeleton)
}

// IsSimpleStruct reports whether the layout is a struct with a simple field
// map.
func (l *Layout) IsSimpleStruct() bool {
	return l.Kind == LayoutStruct && l.FieldMap.IsSimple()
}

// IsSimpleUnion reports whether the layout is a union whose every endpoint
// has length one.
func (l *Layout) IsSimpleUnion() bool {
	if l.Kind != LayoutUnion {
		return false
	}
	for i := range l.FieldMap.Arrows {
		if l.FieldMap.Arrows[i].Endpoint.Len() != 1 {
			return false
		}
	}
	return true
}

var layoutHashSeed = hash.Hash{
	0x2e, 0x80, 0x5b, 0xf3, 0x47, 0x1c, 0xd9, 0x66,
	0x0d, 0xb4, 0x39, 0xa7, 0xe2, 0x58, 0x91, 0x7c,
	0xc5, 0x12, 0xfe, 0x83, 0x6a, 0x04, 0xb9, 0xd7,
	0x30, 0xed, 0x48, 0x9f, 0x21, 0x56, 0xaf, 0x7b}

// Hash computes a hash of the layout including kind, traits, field map, and
// skeleton.
func (l *Layout) Hash() hash.Hash {
	h := layoutHashSeed
	h = h.Merge(hash.Int(int64(l.Kind)))
	h = h.Merge(hash.Uint(uint64(l.Traits)))
	h = h.Merge(l.FieldMap.Hash())
	h = h.Merge(l.Skeleton.Hash())
	return h
}

// GetPath walks the skeleton guided by the endpoint and emits one waypoint
// per step: an offset step for struct-like enclosures and a bitcast step for
// union-like ones. It fails when an index exceeds the skeleton bounds or the
// endpoint exceeds MaxDepth.
func (l *Layout) GetPath(endpoint Endpoint) (Path, error) {
	path := Path{Waypoints: make([]Waypoint, 0, endpoint.Len())}

	switch l.Kind {
	case LayoutUnion:
		path.Waypoints = append(path.Waypoints, Waypoint{Kind: WaypointBitcast})
	case LayoutStruct:
		path.Waypoints = append(path.Waypoints, Waypoint{Kind: WaypointOffset, Index: int(endpoint.At(0))})
	default:
		log.Panicf("Layout.GetPath: unrecognized layout kind %d", l.Kind)
	}

	skeleton := &l.Skeleton
	for i := 0; i < MaxDepth && endpoint.At(i) != EndpointEndIndex; i++ {
		boneIndex := int(endpoint.At(i))
		if boneIndex >= len(skeleton.Bones) {
			return Path{}, errors.E("layout path: bone index out of bounds")
		}

		bone := &skeleton.Bones[boneIndex]
		switch bone.Kind {
		case BoneType:
			// End of the endpoint.
			return path, nil
		case BoneUnion:
			if i+1 >= MaxDepth {
				break
			}
			skeleton = &bone.Children
			path.Waypoints = append(path.Waypoints, Waypoint{Kind: WaypointBitcast})
		case BoneStruct:
			if i+1 >= MaxDepth {
				break
			}
			skeleton = &bone.Children
			path.Waypoints = append(path.Waypoints, Waypoint{Kind: WaypointOffset, Index: int(endpoint.At(i + 1))})
		}
	}

	return Path{}, errors.E("layout path: incomplete endpoint")
}

// AsBone converts the layout into an equivalent bone. The field map is lost.
func (l *Layout) AsBone() Bone {
	kind := BoneStruct
	if l.Kind == LayoutUnion {
		kind = BoneUnion
	}
	return Bone{Kind: kind, Traits: l.Traits, Children: l.Skeleton}
}

// String renders the layout with field names, e.g.
// "struct (x int, y int)".
func (l *Layout) String() string {
	sb := strings.Builder{}
	sb.WriteString(l.Kind.Name())
	sb.WriteString(" (")
	root := NewEndpoint()
	l.Skeleton.render(&sb, &l.FieldMap, root)
	sb.WriteByte(')')
	return sb.String()
}

// AddType appends a leaf type bone, taking ownership of the type.
func (s *Skeleton) AddType(t Type) {
	s.Bones = append(s.Bones, Bone{Kind: BoneType, Type: t})
}

// AddStruct appends an anonymous struct bone and returns a pointer to its
// child skeleton. The pointer is only valid until the next bone is added.
func (s *Skeleton) AddStruct(boneTraits Trait) *Skeleton {
	return s.addChild(BoneStruct, boneTraits)
}

// AddUnion appends an anonymous union bone and returns a pointer to its
// child skeleton. The pointer is only valid until the next bone is added.
func (s *Skeleton) AddUnion(boneTraits Trait) *Skeleton {
	return s.addChild(BoneUnion, boneTraits)
}

func (s *Skeleton) addChild(kind BoneKind, boneTraits Trait) *Skeleton {
	s.Bones = append(s.Bones, Bone{Kind: kind, Traits: boneTraits})
	return &s.Bones[len(s.Bones)-1].Children
}

// GetType returns the type at an endpoint, or nil when the endpoint does not
// lead to a type bone.
func (s *Skeleton) GetType(endpoint Endpoint) *Type {
	skeleton := s
	for i := 0; i < MaxDepth && endpoint.At(i) != EndpointEndIndex; i++ {
		boneIndex := int(endpoint.At(i))
		if boneIndex >= len(skeleton.Bones) {
			return nil
		}
		bone := &skeleton.Bones[boneIndex]
		switch bone.Kind {
		case BoneType:
			return &bone.Type
		case BoneStruct, BoneUnion:
			skeleton = &bone.Children
		}
	}
	return nil
}

// GetTypeAtIndex returns the type of the bone at endpoint [index]. The bone
// must be a type bone; nil is returned otherwise.
func (s *Skeleton) GetTypeAtIndex(index int) *Type {
	if index >= len(s.Bones) || s.Bones[index].Kind != BoneType {
		return nil
	}
	return &s.Bones[index].Type
}

// Clone deep-copies the skeleton.
func (s *Skeleton) Clone() Skeleton {
	if s.Bones == nil {
		return Skeleton{}
	}
	bones := make([]Bone, len(s.Bones))
	for i := range s.Bones {
		bones[i] = s.Bones[i].Clone()
	}
	return Skeleton{Bones: bones}
}

// SkeletonsIdentical reports whether two skeletons are identical.
func SkeletonsIdentical(a, b *Skeleton) bool {
	if len(a.Bones) != len(b.Bones) {
		return false
	}
	for i := range a.Bones {
		if !BonesIdentical(&a.Bones[i], &b.Bones[i]) {
			return false
		}
	}
	return true
}

var skeletonHashSeed = hash.Hash{
	0xb1, 0x3c, 0x76, 0xe0, 0x19, 0x8d, 0x44, 0xfa,
	0x5d, 0xc2, 0x07, 0x95, 0x6e, 0x31, 0xd8, 0x4b,
	0x82, 0xef, 0x28, 0xa6, 0x50, 0xcb, 0x13, 0x79,
	0xf4, 0x0e, 0x9a, 0x67, 0xdd, 0x35, 0x81, 0x2a}

// Hash computes a hash of the skeleton.
func (s *Skeleton) Hash() hash.Hash {
	h := skeletonHashSeed
	for i := range s.Bones {
		h = h.Merge(s.Bones[i].Hash())
	}
	return h
}

// HasPolymorph reports whether a polymorph-bearing type appears anywhere in
// the skeleton.
func (s *Skeleton) HasPolymorph() bool {
	for i := range s.Bones {
		if s.Bones[i].HasPolymorph() {
			return true
		}
	}
	return false
}

func (s *Skeleton) render(sb *strings.Builder, fieldMap *FieldMap, root Endpoint) {
	for i := range s.Bones {
		if i > 0 {
			sb.WriteString(", ")
		}
		endpoint := root
		endpoint.AddIndex(uint16(i))
		s.Bones[i].render(sb, fieldMap, endpoint)
	}
}

// Clone deep-copies the bone.
func (b *Bone) Clone() Bone {
	c := Bone{Kind: b.Kind, Traits: b.Traits}
	switch b.Kind {
	case BoneType:
		c.Type = b.Type.Clone()
	case BoneStruct, BoneUnion:
		c.Children = b.Children.Clone()
	}
	return c
}

// BonesIdentical reports whether two bones are identical.
func BonesIdentical(a, b *Bone) bool {
	if a.Kind != b.Kind || a.Traits != b.Traits {
		return false
	}
	switch a.Kind {
	case BoneType:
		return TypesIdentical(&a.Type, &b.Type)
	case BoneStruct, BoneUnion:
		return SkeletonsIdentical(&a.Children, &b.Children)
	}
	log.Panicf("BonesIdentical: unrecognized bone kind %d", a.Kind)
	return false
}

// Hash computes a hash of the bone.
func (b *Bone) Hash() hash.Hash {
	h := hash.Int(int64(b.Kind)).Merge(hash.Uint(uint64(b.Traits)))
	switch b.Kind {
	case BoneType:
		h = h.Merge(b.Type.Hash())
	case BoneStruct, BoneUnion:
		for i := range b.Children.Bones {
			h = h.Merge(b.Children.Bones[i].Hash())
		}
	default:
		log.Panicf("Bone.Hash: unrecognized bone kind %d", b.Kind)
	}
	return h
}

// HasPolymorph reports whether the bone contains a polymorph.
func (b *Bone) HasPolymorph() bool {
	switch b.Kind {
	case BoneType:
		return b.Type.HasPolymorph()
	case BoneStruct, BoneUnion:
		return b.Children.HasPolymorph()
	}
	return false
}

func (b *Bone) render(sb *strings.Builder, fieldMap *FieldMap, endpoint Endpoint) {
	switch b.Kind {
	case BoneType:
		if name, ok := fieldMap.NameOfEndpoint(endpoint); ok {
			sb.WriteString(name.Str())
			sb.WriteByte(' ')
		}
		sb.WriteString(b.Type.String())
	case BoneStruct, BoneUnion:
		if b.Kind == BoneStruct {
			sb.WriteString("struct (")
		} else {
			sb.WriteString("union (")
		}
		b.Children.render(sb, fieldMap, endpoint)
		sb.WriteByte(')')
	}
}
