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

import "testing"

func TestGreetingSmoke(t *testing.T) {
	src := `namespace test
Greeting/1 -> string name, u32 age?`

	s, err := New([]byte(src), DefaultParserOptions())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	g, ok := s.GroupByQualifiedName("test:Greeting")
	if !ok {
		t.Fatalf("Greeting not found")
	}
	if !g.HasID() || *g.ID != 1 {
		t.Fatalf("expected group id 1, got %v", g.ID)
	}
	fields := g.AllFields()
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}
	if fields[0].Name != "name" || fields[0].Type.Kind != KindString {
		t.Fatalf("unexpected first field: %+v", fields[0])
	}
	if fields[0].Type.Size != UnboundedSize {
		t.Fatalf("expected unbounded string size %d, got %d", UnboundedSize, fields[0].Type.Size)
	}
	if fields[1].Name != "age" || !fields[1].Optional || fields[1].Type.Kind != KindU32 {
		t.Fatalf("unexpected second field: %+v", fields[1])
	}

	byID, ok := s.GroupByID(1)
	if !ok || byID != g {
		t.Fatalf("GroupByID(1) did not return Greeting")
	}
}

func TestInheritanceFieldShadowingRejected(t *testing.T) {
	src := `Base -> u32 x
Derived : Base -> u32 x`

	if _, err := New([]byte(src), DefaultParserOptions()); err == nil {
		t.Fatalf("expected shadowing error")
	}
}

func TestInheritanceFieldOrder(t *testing.T) {
	src := `Base -> u32 a
Derived : Base -> u32 b`

	s, err := New([]byte(src), DefaultParserOptions())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	g, ok := s.GroupByQualifiedName("Derived")
	if !ok {
		t.Fatalf("Derived not found")
	}
	fields := g.AllFields()
	if len(fields) != 2 || fields[0].Name != "a" || fields[1].Name != "b" {
		t.Fatalf("unexpected field order: %+v", fields)
	}
}

func TestEnumImplicitAndExplicitValues(t *testing.T) {
	src := `Color = Red | Green/5 | Blue`

	s, err := New([]byte(src), DefaultParserOptions())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	d, ok := s.lookupDefinition("", "Color")
	if !ok {
		t.Fatalf("Color not found")
	}
	e := d.(*Enum)
	want := map[string]int32{"Red": 0, "Green": 5, "Blue": 6}
	for name, v := range want {
		sym, ok := e.SymbolNamed(name)
		if !ok || sym.Value != v {
			t.Fatalf("symbol %s: got %+v, want value %d", name, sym, v)
		}
	}
}

func TestEnumDuplicateValueRejected(t *testing.T) {
	src := `Color = Red/1 | Green/1`
	if _, err := New([]byte(src), DefaultParserOptions()); err == nil {
		t.Fatalf("expected duplicate enum value error")
	}
}

func TestEnumValuesMustStrictlyIncrease(t *testing.T) {
	src := `Color = Red/5 | Green/3`
	if _, err := New([]byte(src), DefaultParserOptions()); err == nil {
		t.Fatalf("expected error: explicit value 3 does not exceed preceding value 5")
	}
}

func TestEnumImplicitOverflowRejected(t *testing.T) {
	src := `Color = Red/2147483647 | Green`
	if _, err := New([]byte(src), DefaultParserOptions()); err == nil {
		t.Fatalf("expected error: implicit value after INT32_MAX overflows")
	}
}

func TestCyclicTypeDefRejected(t *testing.T) {
	src := `A = B
B = A`
	if _, err := New([]byte(src), DefaultParserOptions()); err == nil {
		t.Fatalf("expected cyclic typedef rejection")
	}
}

func TestSequenceOfSequenceRejected(t *testing.T) {
	src := `Inner = u32[]
G -> Inner[] field`
	if _, err := New([]byte(src), DefaultParserOptions()); err == nil {
		t.Fatalf("expected sequence-of-sequence rejection")
	}
}

func TestDynamicGroupReference(t *testing.T) {
	src := `Base -> u32 x
Sub : Base -> u32 y
G -> Base* ref`
	s, err := New([]byte(src), DefaultParserOptions())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	g, _ := s.GroupByQualifiedName("G")
	f, _ := g.fieldNamed("ref")
	if f.Type.Kind != KindDynamicGroup || !f.Type.IsDynamic {
		t.Fatalf("expected dynamic group field, got %+v", f.Type)
	}
	sub, _ := s.GroupByQualifiedName("Sub")
	base, _ := s.GroupByQualifiedName("Base")
	if !sub.IsKindOf(base) {
		t.Fatalf("Sub should be kind-of Base")
	}
}

func TestIncrementalAnnotationOnExistingGroup(t *testing.T) {
	src := `G -> u32 x
G <- @doc="hello"`
	s, err := New([]byte(src), DefaultParserOptions())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	g, _ := s.GroupByQualifiedName("G")
	if v, ok := g.Annotations["doc"]; !ok || v != "hello" {
		t.Fatalf("expected doc annotation, got %+v", g.Annotations)
	}
}

func TestStringWithSizeAndFixedType(t *testing.T) {
	src := `G -> string(32) s, fixed(4) f, binary(8) b`
	s, err := New([]byte(src), DefaultParserOptions())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	g, _ := s.GroupByQualifiedName("G")
	fields := g.AllFields()
	if fields[0].Type.Size != 32 {
		t.Fatalf("expected string size 32, got %d", fields[0].Type.Size)
	}
	if fields[1].Type.Kind != KindFixed || fields[1].Type.Size != 4 {
		t.Fatalf("unexpected fixed field: %+v", fields[1].Type)
	}
	if fields[2].Type.Kind != KindBinary || fields[2].Type.Size != 8 {
		t.Fatalf("unexpected binary field: %+v", fields[2].Type)
	}
}
