// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package schema

import (
	"github.com/google/uuid"
	"golang.org/x/exp/maps"
)

// Kind tags a TypeDescriptor's variant. Per §9 DESIGN NOTES, the
// original C representation punts every definition-node kind into a
// runtime tag plus a void pointer; the idiomatic Go rendition replaces
// that with this small closed enum plus concrete struct fields (a sum
// type without the casting and parallel-tag problems an arena of
// interface values would otherwise reproduce). Go's garbage collector
// also removes the need for the region-allocator arena the C source
// uses for definition-node storage; Schema simply owns its Namespaces
// slice and every link between nodes is a plain, never-reassigned
// pointer set once during resolution.
type Kind int

const (
	KindString Kind = iota
	KindBinary
	KindFixed
	KindBool
	KindU8
	KindU16
	KindU32
	KindU64
	KindI8
	KindI16
	KindI32
	KindI64
	KindF64
	KindDate
	KindTimeOfDayMilli
	KindTimeOfDayNano
	KindMilliTime
	KindNanoTime
	KindDecimal
	KindObject
	KindEnum
	KindStaticGroup
	KindDynamicGroup
	KindRef // transient: only before resolution rewrites it to its terminal kind
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBinary:
		return "binary"
	case KindFixed:
		return "fixed"
	case KindBool:
		return "bool"
	case KindU8:
		return "u8"
	case KindU16:
		return "u16"
	case KindU32:
		return "u32"
	case KindU64:
		return "u64"
	case KindI8:
		return "i8"
	case KindI16:
		return "i16"
	case KindI32:
		return "i32"
	case KindI64:
		return "i64"
	case KindF64:
		return "f64"
	case KindDate:
		return "date"
	case KindTimeOfDayMilli:
		return "timeOfDayMilli"
	case KindTimeOfDayNano:
		return "timeOfDayNano"
	case KindMilliTime:
		return "milliTime"
	case KindNanoTime:
		return "nanoTime"
	case KindDecimal:
		return "decimal"
	case KindObject:
		return "object"
	case KindEnum:
		return "enum"
	case KindStaticGroup:
		return "staticGroup"
	case KindDynamicGroup:
		return "dynamicGroup"
	case KindRef:
		return "ref"
	default:
		return "unknown"
	}
}

// IsVLCPrimitive reports whether k's wire form is a plain VLC scalar.
// Each such kind marks optional absence with the VLC null byte
// (spec.md §4.2); string, binary, decimal, sequences and dynamic groups
// use the same null byte but are not plain VLC scalars.
func (k Kind) IsVLCPrimitive() bool {
	switch k {
	case KindBool, KindU8, KindU16, KindU32, KindU64,
		KindI8, KindI16, KindI32, KindI64, KindF64,
		KindDate, KindTimeOfDayMilli, KindTimeOfDayNano, KindMilliTime, KindNanoTime,
		KindEnum:
		return true
	}
	return false
}

// Annotations is a keyed bag of string values. Incremental annotations
// accumulate into it; a write with an already-present key replaces the
// prior value (spec.md §3). The codec never interprets annotation
// content (spec.md Non-goals); they are preserved, not acted on.
type Annotations map[string]string

func (a *Annotations) set(key, value string) {
	if *a == nil {
		*a = make(Annotations)
	}
	(*a)[key] = value
}

// Definition is implemented by every node a Namespace can directly own:
// Group, Enum, and TypeDef.
type Definition interface {
	DefName() string
	defMarker()
}

// UnboundedSize is the canonical Size value for a string/binary field
// with no explicit length bound (spec.md §8 scenario 6).
const UnboundedSize = 0xffffffff

// TypeDescriptor is the tagged variant describing a field's or
// typedef's declared type (spec.md §3).
type TypeDescriptor struct {
	Kind Kind

	Size       int  // max length for string/binary (UnboundedSize if none); required length for fixed
	IsSequence bool // field/element repeats; sequence-of-sequence is rejected by the resolver
	IsDynamic  bool // only meaningful once Kind is KindStaticGroup/KindDynamicGroup/KindRef

	RefNamespace string // resolution input: namespace part of a qname (possibly empty)
	RefLocal     string // resolution input: local part of a qname

	Resolved Definition // set during resolution for ref kinds: the terminal *Group or *Enum (nil when a typedef chain ends at a primitive)

	Annotations Annotations
}

// Namespace owns an ordered sequence of definitions and is unique per
// name within a Schema (re-opening with `namespace X` appends to the
// same Namespace).
type Namespace struct {
	Name        string
	Definitions []Definition
	byName      map[string]Definition
}

func (n *Namespace) lookup(local string) (Definition, bool) {
	d, ok := n.byName[local]
	return d, ok
}

// DefinitionNames returns the local names of every definition directly
// owned by n, in no particular order. Grounded in ion/symtab.go's use
// of golang.org/x/exp/maps over its symbol-name index.
func (n *Namespace) DefinitionNames() []string {
	return maps.Keys(n.byName)
}

func (n *Namespace) add(d Definition) bool {
	if n.byName == nil {
		n.byName = make(map[string]Definition)
	}
	if _, exists := n.byName[d.DefName()]; exists {
		return false
	}
	n.byName[d.DefName()] = d
	n.Definitions = append(n.Definitions, d)
	return true
}

// Field is a single member of a Group.
type Field struct {
	Name        string
	ID          *uint64
	Optional    bool
	Type        TypeDescriptor
	Annotations Annotations

	owner *Group
}

// Group is a Blink group definition: a named record type, optionally
// identified on the wire (a group with an ID can appear as a dynamic
// group) and optionally inheriting from a super-group.
type Group struct {
	Namespace string
	Local     string
	ID        *uint64

	SuperName      string // unresolved super-group reference, namespace:local or local
	SuperNamespace string
	SuperLocal     string
	Super          *Group // resolved during finalisation

	Fields      []*Field
	fieldByName map[string]*Field

	Annotations Annotations
}

func (g *Group) DefName() string { return g.Local }
func (g *Group) defMarker()      {}

// QualifiedName returns "namespace:local", or just "local" when the
// group lives in the default (empty) namespace.
func (g *Group) QualifiedName() string {
	if g.Namespace == "" {
		return g.Local
	}
	return g.Namespace + ":" + g.Local
}

// HasID reports whether the group carries a numeric identifier and can
// therefore appear as a dynamic group on the wire.
func (g *Group) HasID() bool { return g.ID != nil }

// AllFields returns every field visible through inheritance, ordered
// deepest-ancestor-first, declaration order within each level, this
// group's own fields last -- the canonical encode/decode iteration
// order spec.md §4.6/§5 requires.
func (g *Group) AllFields() []*Field {
	var chain []*Group
	for cur := g; cur != nil; cur = cur.Super {
		chain = append(chain, cur)
	}
	var out []*Field
	for i := len(chain) - 1; i >= 0; i-- {
		out = append(out, chain[i].Fields...)
	}
	return out
}

// IsKindOf reports whether g is other, or other is a super-group
// ancestor of g -- the "kind-of" relation spec.md §4.7 uses to validate
// a dynamic-group field's declared type against the group id actually
// found on the wire. Exposed publicly per SPEC_FULL.md's supplemented
// feature list (grounded in original_source's blink_group_iskindof).
func (g *Group) IsKindOf(other *Group) bool {
	for cur := g; cur != nil; cur = cur.Super {
		if cur == other {
			return true
		}
	}
	return false
}

func (g *Group) fieldNamed(name string) (*Field, bool) {
	f, ok := g.fieldByName[name]
	return f, ok
}

func (g *Group) addField(f *Field) bool {
	if g.fieldByName == nil {
		g.fieldByName = make(map[string]*Field)
	}
	if _, exists := g.fieldByName[f.Name]; exists {
		return false
	}
	f.owner = g
	g.fieldByName[f.Name] = f
	g.Fields = append(g.Fields, f)
	return true
}

// Symbol is one member of an Enum.
type Symbol struct {
	Name     string
	Value    int32
	Explicit bool
	Annotations Annotations
}

// Enum is a Blink enum definition: an ordered, named list of 32-bit
// signed integer symbols.
type Enum struct {
	Namespace string
	Local     string
	Symbols   []*Symbol
	byName    map[string]*Symbol
	Annotations Annotations
}

func (e *Enum) DefName() string { return e.Local }
func (e *Enum) defMarker()      {}

func (e *Enum) SymbolNamed(name string) (*Symbol, bool) {
	s, ok := e.byName[name]
	return s, ok
}

func (e *Enum) SymbolOf(value int32) (*Symbol, bool) {
	for _, s := range e.Symbols {
		if s.Value == value {
			return s, true
		}
	}
	return nil, false
}

func (e *Enum) addSymbol(s *Symbol) bool {
	if e.byName == nil {
		e.byName = make(map[string]*Symbol)
	}
	if _, exists := e.byName[s.Name]; exists {
		return false
	}
	e.byName[s.Name] = s
	e.Symbols = append(e.Symbols, s)
	return true
}

// TypeDef is a named alias for a type expression (`name = type`).
type TypeDef struct {
	Namespace string
	Local     string
	Type      TypeDescriptor
	Annotations Annotations
}

func (t *TypeDef) DefName() string { return t.Local }
func (t *TypeDef) defMarker()      {}

// Schema is the root of a Blink definition graph. Once New returns
// successfully the graph is finalised and immutable; it may be shared
// freely for read-only use across goroutines.
type Schema struct {
	Namespaces  []*Namespace
	namespaceByName map[string]*Namespace

	finalised bool
	options   ParserOptions

	schemaAnnotations Annotations

	// BuildID is a per-build correlation id stamped once a New call
	// succeeds, grounded in elasticproxy/proxy_http/logging.go's
	// per-request uuid tagging; it has no wire meaning and exists
	// purely so callers juggling many schemas in one process can
	// correlate log lines back to a specific build. It is set only on
	// success, so a SemanticError from a failed New carries no build
	// id.
	BuildID uuid.UUID

	groupIndex *groupIndex // built during finalisation, see dispatch_index.go
}

// Finalised reports whether the schema has completed resolution and
// validation.
func (s *Schema) Finalised() bool { return s.finalised }

// Annotation returns a schema-wide annotation written by an
// incremental `schema <- @key=value` construct.
func (s *Schema) Annotation(key string) (string, bool) {
	v, ok := s.schemaAnnotations[key]
	return v, ok
}

func (s *Schema) namespace(name string) *Namespace {
	if s.namespaceByName == nil {
		s.namespaceByName = make(map[string]*Namespace)
	}
	if ns, ok := s.namespaceByName[name]; ok {
		return ns
	}
	ns := &Namespace{Name: name}
	s.namespaceByName[name] = ns
	s.Namespaces = append(s.Namespaces, ns)
	return ns
}

// GroupByQualifiedName looks a group up by "namespace:local" (or plain
// "local" for the default namespace).
func (s *Schema) GroupByQualifiedName(qname string) (*Group, bool) {
	ns, local := splitQName(qname)
	d, ok := s.lookupDefinition(ns, local)
	if !ok {
		return nil, false
	}
	g, ok := d.(*Group)
	return g, ok
}

// GroupByID looks a group up by its wire id, used for dynamic-group
// dispatch (spec.md §4.7).
func (s *Schema) GroupByID(id uint64) (*Group, bool) {
	if s.groupIndex == nil {
		return nil, false
	}
	return s.groupIndex.lookup(id)
}

func (s *Schema) lookupDefinition(ns, local string) (Definition, bool) {
	n, ok := s.namespaceByName[ns]
	if !ok {
		return nil, false
	}
	return n.lookup(local)
}

func splitQName(qname string) (ns, local string) {
	for i := 0; i < len(qname); i++ {
		if qname[i] == ':' {
			return qname[:i], qname[i+1:]
		}
	}
	return "", qname
}
