// Copyright 2026 The amira authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package amira

// AtomKind tags the variant carried by an Atom. The source format's
// "mapping of anything to anything" becomes this sum type; consumers
// switch on Kind rather than type-asserting a bare interface{}.
type AtomKind int

// Atom variants.
const (
	AtomInt AtomKind = iota
	AtomFloat
	AtomString
	AtomIdent
	AtomBlock
	AtomList
	AtomVertices
	AtomTriangles
	AtomData
)

// Atom is the tree builder's output: either a scalar, a bare identifier,
// an ordered block, a list of sibling atoms, or one of the two typed
// array shapes (Vertices/Triangles) or a lattice payload.
type Atom struct {
	Kind AtomKind

	Int    int64
	Float  float64
	Str    string
	Ident  string
	Block  *OrderedMap
	List   []*Atom
	Matrix *Matrix3     // AtomVertices / AtomTriangles
	Data   *LatticeData // AtomData
}

func identAtom(name string) *Atom   { return &Atom{Kind: AtomIdent, Ident: name} }
func intAtom(v int64) *Atom         { return &Atom{Kind: AtomInt, Int: v} }
func floatAtom(v float64) *Atom     { return &Atom{Kind: AtomFloat, Float: v} }
func stringAtom(v string) *Atom     { return &Atom{Kind: AtomString, Str: v} }
func dataAtom(d *LatticeData) *Atom { return &Atom{Kind: AtomData, Data: d} }

func vec3FieldAtom(name string, m *Matrix3) *Atom {
	kind := AtomVertices
	if m.IsInt {
		kind = AtomTriangles
	}
	inner := &Atom{Kind: kind, Matrix: m}
	om := NewOrderedMap()
	_ = om.Set(name, inner)
	return &Atom{Kind: AtomBlock, Block: om}
}

func listAtom(elements []*Atom) *Atom {
	return &Atom{Kind: AtomList, List: elements}
}

// namedAtom wraps value under a single-key block, the shape every
// Name-headed atom (other than a bare identifier) reduces to.
func namedAtom(name string, value *Atom) (*Atom, error) {
	om := NewOrderedMap()
	if err := om.Set(name, value); err != nil {
		return nil, err
	}
	return &Atom{Kind: AtomBlock, Block: om}, nil
}

// OrderedMap is an insertion-ordered associative container: Materials
// iteration order is externally observable (see Document.Flatten and the
// Materials block a caller walks in order), so a hash map with
// undefined iteration order cannot stand in for it.
type OrderedMap struct {
	keys []string
	vals map[string]*Atom
}

// NewOrderedMap returns an empty ordered map.
func NewOrderedMap() *OrderedMap {
	return &OrderedMap{vals: make(map[string]*Atom)}
}

// Set inserts key/value, returning DuplicateKeyError if key already exists.
func (m *OrderedMap) Set(key string, val *Atom) error {
	if _, exists := m.vals[key]; exists {
		return &DuplicateKeyError{Key: key}
	}
	m.keys = append(m.keys, key)
	m.vals[key] = val
	return nil
}

// Get returns the value for key and whether it was present.
func (m *OrderedMap) Get(key string) (*Atom, bool) {
	v, ok := m.vals[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (m *OrderedMap) Keys() []string {
	return m.keys
}

// Len returns the number of entries.
func (m *OrderedMap) Len() int {
	return len(m.keys)
}

// merge folds child's entries into m, preserving insertion order and
// failing on a duplicate key exactly as a literal "{" ... "}" block does.
func (m *OrderedMap) merge(child *Atom) error {
	switch child.Kind {
	case AtomIdent:
		return m.Set(child.Ident, nil)
	case AtomBlock:
		for _, k := range child.Block.Keys() {
			v, _ := child.Block.Get(k)
			if err := m.Set(k, v); err != nil {
				return err
			}
		}
		return nil
	default:
		return &ParseError{Detail: "unexpected atom kind inside block"}
	}
}

// overwrite sets key to val, replacing an existing value in place instead
// of failing on a duplicate. Used by Document.Flatten, which merges
// top-level atoms the way a Python dict.update call does (last value
// wins, original position kept) rather than the way a single parsed
// block does (first-wins, duplicate is an error).
func (m *OrderedMap) overwrite(key string, val *Atom) {
	if _, exists := m.vals[key]; !exists {
		m.keys = append(m.keys, key)
	}
	if m.vals == nil {
		m.vals = make(map[string]*Atom)
	}
	m.vals[key] = val
}
