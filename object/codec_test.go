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

package object

import (
	"testing"

	"github.com/blinkschema/blink/compact"
	"github.com/blinkschema/blink/schema"
)

func mustSchema(t *testing.T, src string) *schema.Schema {
	t.Helper()
	s, err := schema.New([]byte(src), schema.DefaultParserOptions())
	if err != nil {
		t.Fatalf("schema.New: %v", err)
	}
	return s
}

func TestRoundTripSimpleGroup(t *testing.T) {
	s := mustSchema(t, `Greeting/1 -> string name, u32 age?`)
	g, _ := s.GroupByQualifiedName("Greeting")

	obj := New(g)
	if err := obj.Set("name", StringValue("IBM")); err != nil {
		t.Fatalf("Set name: %v", err)
	}
	if err := obj.Set("age", UintValue(42)); err != nil {
		t.Fatalf("Set age: %v", err)
	}

	buf := make([]byte, 256)
	ws := compact.NewBufferStream(buf)
	if err := EncodeCompact(ws, obj); err != nil {
		t.Fatalf("EncodeCompact: %v", err)
	}
	n, _ := ws.Tell()

	rs := compact.NewBufferStream(buf[:n])
	got, err := DecodeCompact(rs, s)
	if err != nil {
		t.Fatalf("DecodeCompact: %v", err)
	}
	if got.Group() != g {
		t.Fatalf("decoded wrong group")
	}
	nameV, _ := got.Get("name")
	if nameV.String() != "IBM" {
		t.Fatalf("name = %q, want IBM", nameV.String())
	}
	ageV, _ := got.Get("age")
	if ageV.Null || ageV.Uint != 42 {
		t.Fatalf("age = %+v, want 42", ageV)
	}
}

func TestRoundTripOptionalAbsent(t *testing.T) {
	s := mustSchema(t, `Greeting/1 -> string name, u32 age?`)
	g, _ := s.GroupByQualifiedName("Greeting")

	obj := New(g)
	if err := obj.Set("name", StringValue("ABC")); err != nil {
		t.Fatalf("Set name: %v", err)
	}

	buf := make([]byte, 256)
	ws := compact.NewBufferStream(buf)
	if err := EncodeCompact(ws, obj); err != nil {
		t.Fatalf("EncodeCompact: %v", err)
	}
	n, _ := ws.Tell()

	rs := compact.NewBufferStream(buf[:n])
	got, err := DecodeCompact(rs, s)
	if err != nil {
		t.Fatalf("DecodeCompact: %v", err)
	}
	if !got.IsNull("age") {
		t.Fatalf("age should be null")
	}
}

func TestRoundTripFixedOptional(t *testing.T) {
	s := mustSchema(t, `G/7 -> fixed(4) tag?`)
	g, _ := s.GroupByQualifiedName("G")

	obj := New(g)
	if err := obj.Set("tag", BytesValue([]byte{1, 2, 3, 4})); err != nil {
		t.Fatalf("Set tag: %v", err)
	}

	buf := make([]byte, 64)
	ws := compact.NewBufferStream(buf)
	if err := EncodeCompact(ws, obj); err != nil {
		t.Fatalf("EncodeCompact: %v", err)
	}
	n, _ := ws.Tell()

	rs := compact.NewBufferStream(buf[:n])
	got, err := DecodeCompact(rs, s)
	if err != nil {
		t.Fatalf("DecodeCompact: %v", err)
	}
	v, _ := got.Get("tag")
	if v.Null || len(v.Bytes) != 4 || v.Bytes[2] != 3 {
		t.Fatalf("tag = %+v", v)
	}
}

func TestRoundTripSequence(t *testing.T) {
	s := mustSchema(t, `G/9 -> u32[] values`)
	g, _ := s.GroupByQualifiedName("G")

	obj := New(g)
	if err := obj.Set("values", SeqValue([]Value{UintValue(1), UintValue(2), UintValue(3)})); err != nil {
		t.Fatalf("Set values: %v", err)
	}

	buf := make([]byte, 64)
	ws := compact.NewBufferStream(buf)
	if err := EncodeCompact(ws, obj); err != nil {
		t.Fatalf("EncodeCompact: %v", err)
	}
	n, _ := ws.Tell()

	rs := compact.NewBufferStream(buf[:n])
	got, err := DecodeCompact(rs, s)
	if err != nil {
		t.Fatalf("DecodeCompact: %v", err)
	}
	v, _ := got.Get("values")
	if len(v.Seq) != 3 || v.Seq[1].Uint != 2 {
		t.Fatalf("values = %+v", v.Seq)
	}
}

func TestRoundTripStaticGroup(t *testing.T) {
	s := mustSchema(t, `Addr -> string city
G/3 -> Addr home`)
	g, _ := s.GroupByQualifiedName("G")
	addr, _ := s.GroupByQualifiedName("Addr")

	inner := New(addr)
	if err := inner.Set("city", StringValue("NYC")); err != nil {
		t.Fatalf("Set city: %v", err)
	}
	obj := New(g)
	if err := obj.Set("home", GroupValue(inner)); err != nil {
		t.Fatalf("Set home: %v", err)
	}

	buf := make([]byte, 64)
	ws := compact.NewBufferStream(buf)
	if err := EncodeCompact(ws, obj); err != nil {
		t.Fatalf("EncodeCompact: %v", err)
	}
	n, _ := ws.Tell()

	rs := compact.NewBufferStream(buf[:n])
	got, err := DecodeCompact(rs, s)
	if err != nil {
		t.Fatalf("DecodeCompact: %v", err)
	}
	homeV, _ := got.Get("home")
	cityV, _ := homeV.Group.Get("city")
	if cityV.String() != "NYC" {
		t.Fatalf("city = %q", cityV.String())
	}
}

func TestRoundTripDynamicGroupKindOf(t *testing.T) {
	s := mustSchema(t, `Base/1 -> u32 x
Sub/2 : Base -> u32 y
G/3 -> Base* ref`)
	g, _ := s.GroupByQualifiedName("G")
	sub, _ := s.GroupByQualifiedName("Sub")

	inner := New(sub)
	if err := inner.Set("x", UintValue(10)); err != nil {
		t.Fatalf("Set x: %v", err)
	}
	if err := inner.Set("y", UintValue(20)); err != nil {
		t.Fatalf("Set y: %v", err)
	}
	obj := New(g)
	if err := obj.Set("ref", GroupValue(inner)); err != nil {
		t.Fatalf("Set ref: %v", err)
	}

	buf := make([]byte, 64)
	ws := compact.NewBufferStream(buf)
	if err := EncodeCompact(ws, obj); err != nil {
		t.Fatalf("EncodeCompact: %v", err)
	}
	n, _ := ws.Tell()

	rs := compact.NewBufferStream(buf[:n])
	got, err := DecodeCompact(rs, s)
	if err != nil {
		t.Fatalf("DecodeCompact: %v", err)
	}
	refV, _ := got.Get("ref")
	if refV.Group.Group() != sub {
		t.Fatalf("decoded wrong dynamic group: %v", refV.Group.Group())
	}
	yV, _ := refV.Group.Get("y")
	if yV.Uint != 20 {
		t.Fatalf("y = %+v", yV)
	}
}

func TestDecodeUnknownGroupIDFails(t *testing.T) {
	s := mustSchema(t, `G/1 -> u32 x`)
	g, _ := s.GroupByQualifiedName("G")
	obj := New(g)
	obj.Set("x", UintValue(1))

	buf := make([]byte, 64)
	ws := compact.NewBufferStream(buf)
	EncodeCompact(ws, obj)
	n, _ := ws.Tell()
	wire := append([]byte(nil), buf[:n]...)

	// corrupt the group id byte (right after the size VLC, which for
	// this tiny payload is exactly one byte) so it no longer resolves.
	wire[1] = 99

	rs := compact.NewBufferStream(wire)
	if _, err := DecodeCompact(rs, s); err == nil {
		t.Fatalf("expected an UnknownGroupError")
	} else if _, ok := err.(*UnknownGroupError); !ok {
		t.Fatalf("expected *UnknownGroupError, got %T: %v", err, err)
	}
}

func TestDispatcherRoutesByGroupID(t *testing.T) {
	s := mustSchema(t, `A/1 -> u32 x
B/2 -> string y`)
	a, _ := s.GroupByQualifiedName("A")
	b, _ := s.GroupByQualifiedName("B")

	objA := New(a)
	objA.Set("x", UintValue(7))
	objB := New(b)
	objB.Set("y", StringValue("hi"))

	bufA := make([]byte, 32)
	wsA := compact.NewBufferStream(bufA)
	EncodeCompact(wsA, objA)
	nA, _ := wsA.Tell()

	bufB := make([]byte, 32)
	wsB := compact.NewBufferStream(bufB)
	EncodeCompact(wsB, objB)
	nB, _ := wsB.Tell()

	d := NewDispatcher(s)
	var sawA, sawB bool
	if err := d.On("A", func(o *Object) error {
		sawA = true
		v, _ := o.Get("x")
		if v.Uint != 7 {
			t.Fatalf("x = %+v", v)
		}
		return nil
	}); err != nil {
		t.Fatalf("On A: %v", err)
	}
	if err := d.On("B", func(o *Object) error {
		sawB = true
		v, _ := o.Get("y")
		if v.String() != "hi" {
			t.Fatalf("y = %q", v.String())
		}
		return nil
	}); err != nil {
		t.Fatalf("On B: %v", err)
	}

	if err := d.Dispatch(compact.NewBufferStream(bufA[:nA])); err != nil {
		t.Fatalf("Dispatch A: %v", err)
	}
	if err := d.Dispatch(compact.NewBufferStream(bufB[:nB])); err != nil {
		t.Fatalf("Dispatch B: %v", err)
	}
	if !sawA || !sawB {
		t.Fatalf("both handlers should have run: sawA=%v sawB=%v", sawA, sawB)
	}
}

func TestSetRejectsNullRequiredField(t *testing.T) {
	s := mustSchema(t, `G/1 -> u32 x`)
	g, _ := s.GroupByQualifiedName("G")
	obj := New(g)
	if err := obj.Set("x", NullValue()); err == nil {
		t.Fatalf("expected an AccessError for a null required field")
	}
}

func TestSetRejectsOversizedString(t *testing.T) {
	s := mustSchema(t, `G/1 -> string(4) name`)
	g, _ := s.GroupByQualifiedName("G")
	obj := New(g)
	if err := obj.Set("name", StringValue("toolong")); err == nil {
		t.Fatalf("expected an AccessError for a string exceeding its declared size")
	}
	if err := obj.Set("name", StringValue("ok")); err != nil {
		t.Fatalf("Set within size should succeed: %v", err)
	}
}

func TestSetRejectsWrongLengthFixed(t *testing.T) {
	s := mustSchema(t, `G/1 -> fixed(4) tag`)
	g, _ := s.GroupByQualifiedName("G")
	obj := New(g)
	if err := obj.Set("tag", BytesValue([]byte{1, 2, 3})); err == nil {
		t.Fatalf("expected an AccessError for a fixed value of the wrong length")
	}
	if err := obj.Set("tag", BytesValue([]byte{1, 2, 3, 4})); err != nil {
		t.Fatalf("Set with exact size should succeed: %v", err)
	}
}

func TestEncodeFailsOnUninitializedRequiredField(t *testing.T) {
	s := mustSchema(t, `G/1 -> u32 x, u32 y`)
	g, _ := s.GroupByQualifiedName("G")
	obj := New(g)
	if err := obj.Set("x", UintValue(1)); err != nil {
		t.Fatalf("Set x: %v", err)
	}

	buf := make([]byte, 64)
	ws := compact.NewBufferStream(buf)
	if err := EncodeCompact(ws, obj); err == nil {
		t.Fatalf("expected an error encoding with required field %q unset", "y")
	}
}
