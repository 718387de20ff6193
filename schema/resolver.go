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
	"fmt"
	"math"
)

// Finalise resolves every reference in s, validates spec.md §4.5's
// constraints, and marks the schema immutable. New (in schema.go) calls
// this automatically; it is exported separately so a caller assembling
// a Schema by hand (rather than through Parse) can still validate it.
//
// Grounded in expr/bind.go's two-pass "parse then resolve names against
// scope" structure: the parser above builds an unresolved graph of
// qname references, and this pass walks it to fixed points, rewriting
// TypeDescriptor.Kind from KindRef to the terminal kind and filling in
// Resolved/Super links.
func (s *Schema) Finalise() error {
	if s.finalised {
		return nil
	}

	for _, ns := range s.Namespaces {
		for _, d := range ns.Definitions {
			if g, ok := d.(*Group); ok {
				if err := s.resolveSuper(g, 0); err != nil {
					return err
				}
			}
		}
	}

	for _, ns := range s.Namespaces {
		for _, d := range ns.Definitions {
			switch def := d.(type) {
			case *Group:
				for _, f := range def.Fields {
					if err := s.resolveType(&f.Type, def.QualifiedName(), f.Name, 0); err != nil {
						return err
					}
				}
			case *TypeDef:
				if err := s.resolveType(&def.Type, def.Local, "", 0); err != nil {
					return err
				}
			}
		}
	}

	for _, ns := range s.Namespaces {
		for _, d := range ns.Definitions {
			if e, ok := d.(*Enum); ok {
				if err := validateEnum(e); err != nil {
					return err
				}
			}
		}
	}

	var groupsWithID []*Group
	for _, ns := range s.Namespaces {
		for _, d := range ns.Definitions {
			if g, ok := d.(*Group); ok && g.HasID() {
				groupsWithID = append(groupsWithID, g)
			}
		}
	}
	s.groupIndex = newGroupIndex(groupsWithID)

	s.finalised = true
	return nil
}

// resolveSuper walks a group's super-group chain, rejecting cycles and
// chains deeper than options.InheritanceDepth, and rejecting field-name
// shadowing between a group and any ancestor (spec.md §4.5).
func (s *Schema) resolveSuper(g *Group, depth int) error {
	if g.Super != nil || g.SuperName == "" {
		return nil
	}
	if depth > s.options.InheritanceDepth {
		return semErrf(g.QualifiedName(), "", "super-group chain exceeds depth %d", s.options.InheritanceDepth)
	}

	ns := g.SuperNamespace
	if ns == "" {
		ns = g.Namespace
	}
	d, ok := s.lookupDefinition(ns, g.SuperLocal)
	if !ok {
		d, ok = s.lookupDefinition("", g.SuperLocal)
	}
	if !ok {
		return semErrf(g.QualifiedName(), "", "unresolved super-group %q", g.SuperName)
	}
	super, ok := d.(*Group)
	if !ok {
		return semErrf(g.QualifiedName(), "", "super-group %q is not a group", g.SuperName)
	}
	if super == g {
		return semErrf(g.QualifiedName(), "", "group inherits from itself")
	}

	if err := s.resolveSuper(super, depth+1); err != nil {
		return err
	}

	for cur := super; cur != nil; cur = cur.Super {
		if cur == g {
			return semErrf(g.QualifiedName(), "", "cyclic inheritance through %q", cur.QualifiedName())
		}
	}

	for _, f := range g.Fields {
		for anc := super; anc != nil; anc = anc.Super {
			if _, shadowed := anc.fieldNamed(f.Name); shadowed {
				return semErrf(g.QualifiedName(), f.Name, "shadows a field already declared in super-group %q", anc.QualifiedName())
			}
		}
	}

	g.Super = super
	return nil
}

// resolveType rewrites td in place, following a reference chain of at
// most options.RefChainDepth typedefs down to a terminal enum/group
// kind, accumulating IsSequence/IsDynamic along the way and rejecting a
// chain that carries more than one sequence marker or more than one
// dynamic marker (spec.md §4.5).
func (s *Schema) resolveType(td *TypeDescriptor, defName, fieldName string, depth int) error {
	if td.Kind != KindRef {
		if td.IsSequence {
			// nested sequence-of-sequence is only detectable once the
			// referent's own IsSequence is known; checked below for
			// ref chains, and trivially false for primitives here.
		}
		return nil
	}
	if depth > s.options.RefChainDepth {
		return semErrf(defName, fieldName, "type reference chain exceeds depth %d", s.options.RefChainDepth)
	}

	ns := td.RefNamespace
	owningNs, _ := splitQName(defName)
	if ns == "" {
		ns = owningNs
	}
	d, ok := s.lookupDefinition(ns, td.RefLocal)
	if !ok {
		d, ok = s.lookupDefinition("", td.RefLocal)
	}
	if !ok {
		return semErrf(defName, fieldName, "unresolved type reference %q", qnameString(td.RefNamespace, td.RefLocal))
	}

	switch def := d.(type) {
	case *Enum:
		if td.IsDynamic {
			return semErrf(defName, fieldName, "enum reference %q cannot be dynamic", def.Local)
		}
		td.Kind = KindEnum
		td.Resolved = def
		return nil

	case *Group:
		if err := s.resolveSuper(def, 0); err != nil {
			return err
		}
		if td.IsDynamic {
			td.Kind = KindDynamicGroup
		} else {
			td.Kind = KindStaticGroup
		}
		td.Resolved = def
		return nil

	case *TypeDef:
		if err := s.resolveType(&def.Type, def.Local, "", depth+1); err != nil {
			return err
		}
		inheritedSeq := td.IsSequence
		inheritedDyn := td.IsDynamic
		ownAnnos := td.Annotations
		*td = def.Type
		for k, v := range ownAnnos {
			td.Annotations.set(k, v)
		}
		if inheritedSeq {
			if td.IsSequence {
				return semErrf(defName, fieldName, "sequence-of-sequence via typedef %q", def.Local)
			}
			td.IsSequence = true
		}
		if inheritedDyn {
			if td.Kind != KindStaticGroup && td.Kind != KindDynamicGroup && td.Kind != KindRef {
				return semErrf(defName, fieldName, "dynamic marker on non-group typedef %q", def.Local)
			}
			if td.IsDynamic {
				return semErrf(defName, fieldName, "dynamic-over-dynamic via typedef %q", def.Local)
			}
			td.IsDynamic = true
			td.Kind = KindDynamicGroup
		}
		return nil

	default:
		return semErrf(defName, fieldName, "unresolved type reference %q", qnameString(td.RefNamespace, td.RefLocal))
	}
}

// validateEnum enforces spec.md §4.5: symbol values are strictly
// increasing in declaration order. The first symbol defaults to 0 if
// implicit; each following implicit symbol is the preceding value + 1;
// an explicit value must exceed the preceding value. This subsumes
// duplicate-value rejection (a repeated or lower value is never
// greater than its predecessor) and also catches an implicit value
// immediately following INT32_MAX, which would otherwise wrap silently.
func validateEnum(e *Enum) error {
	havePrev := false
	var prev int32
	for _, sym := range e.Symbols {
		if sym.Explicit {
			if havePrev && sym.Value <= prev {
				return semErrf(e.Local, sym.Name, fmt.Sprintf("enum value %d does not exceed preceding value %d", sym.Value, prev))
			}
		} else {
			if !havePrev {
				sym.Value = 0
			} else if prev == math.MaxInt32 {
				return semErrf(e.Local, sym.Name, "implicit enum value overflows int32 after preceding value 2147483647")
			} else {
				sym.Value = prev + 1
			}
		}
		prev = sym.Value
		havePrev = true
	}
	return nil
}
