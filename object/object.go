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
	"fmt"
	"time"

	"github.com/blinkschema/blink/schema"
)

// Value is a tagged run-time value for one field slot, or for one
// element of a sequence-typed field. Only the member matching the
// field's declared schema.Kind is meaningful; the rest are zero.
// Grounded in ion/datum.go's tagged-value-over-a-symbol-table
// approach, re-specified to Blink's closed set of wire kinds instead
// of Ion's open type system.
type Value struct {
	Null bool

	Bool    bool
	Int     int64   // i8/i16/i32/i64, and decimal mantissa
	Uint    uint64  // u8/u16/u32/u64
	Float64 float64
	Bytes   []byte // string/binary/fixed
	Time    time.Time
	Dur     time.Duration // timeOfDayMilli/timeOfDayNano
	Enum    int32
	DecimalExp int8 // decimal exponent; mantissa is Int

	Group *Object // staticGroup/dynamicGroup/object

	Seq []Value // set when the field is a sequence; Null/other members unused
}

func NullValue() Value                { return Value{Null: true} }
func BoolValue(v bool) Value          { return Value{Bool: v} }
func IntValue(v int64) Value          { return Value{Int: v} }
func UintValue(v uint64) Value        { return Value{Uint: v} }
func FloatValue(v float64) Value      { return Value{Float64: v} }
func BytesValue(b []byte) Value       { return Value{Bytes: b} }
func StringValue(s string) Value      { return Value{Bytes: []byte(s)} }
func TimeValue(t time.Time) Value     { return Value{Time: t} }
func DurationValue(d time.Duration) Value { return Value{Dur: d} }
func EnumValue(v int32) Value         { return Value{Enum: v} }
func GroupValue(o *Object) Value      { return Value{Group: o} }
func SeqValue(elems []Value) Value    { return Value{Seq: elems} }
func DecimalValue(exp int8, mantissa int64) Value { return Value{DecimalExp: exp, Int: mantissa} }

func (v Value) String() string { return string(v.Bytes) }

// Object is a runtime instance of a schema.Group: one Value per field
// visible through AllFields (inherited fields included), set and read
// by name.
type Object struct {
	group  *schema.Group
	fields []*schema.Field
	byName map[string]*schema.Field
	values map[string]Value
}

// New creates an empty Object over g. No field is set; required
// fields must be set before the object is encoded.
func New(g *schema.Group) *Object {
	fields := g.AllFields()
	byName := make(map[string]*schema.Field, len(fields))
	for _, f := range fields {
		byName[f.Name] = f
	}
	return &Object{group: g, fields: fields, byName: byName, values: make(map[string]Value, len(fields))}
}

// Group returns the schema.Group this Object is an instance of.
func (o *Object) Group() *schema.Group { return o.group }

// Fields returns the object's fields in schema.Group.AllFields order.
func (o *Object) Fields() []*schema.Field { return o.fields }

// Set assigns v to the named field. It fails if the field does not
// exist on the group, if v is null for a required field, or if v
// carries a sequence but the field is not declared as one (and vice
// versa).
func (o *Object) Set(name string, v Value) error {
	f, ok := o.byName[name]
	if !ok {
		return accessErrf(o.group.QualifiedName(), name, "no such field")
	}
	if v.Null && !f.Optional {
		return accessErrf(o.group.QualifiedName(), name, "field is required, cannot be null")
	}
	if f.Type.IsSequence && v.Seq == nil && !v.Null {
		return accessErrf(o.group.QualifiedName(), name, "field is a sequence, value is not")
	}
	if !f.Type.IsSequence && v.Seq != nil {
		return accessErrf(o.group.QualifiedName(), name, "field is not a sequence")
	}
	if err := checkFieldSize(f.Type, v); err != nil {
		return accessErrf(o.group.QualifiedName(), name, err.Error())
	}
	o.values[name] = v
	return nil
}

// checkFieldSize enforces spec.md §4.6/§7's declared-size constraints:
// a string/binary value may not exceed its declared Size (unbounded
// when Size is schema.UnboundedSize), and a fixed value must equal its
// declared Size exactly. Sequence fields are checked element-wise.
func checkFieldSize(t schema.TypeDescriptor, v Value) error {
	if v.Null {
		return nil
	}
	if t.IsSequence {
		elemType := t
		elemType.IsSequence = false
		for i := range v.Seq {
			if err := checkFieldSize(elemType, v.Seq[i]); err != nil {
				return err
			}
		}
		return nil
	}
	switch t.Kind {
	case schema.KindString, schema.KindBinary:
		if t.Size != schema.UnboundedSize && len(v.Bytes) > t.Size {
			return fmt.Errorf("value length %d exceeds declared size %d", len(v.Bytes), t.Size)
		}
	case schema.KindFixed:
		if len(v.Bytes) != t.Size {
			return fmt.Errorf("fixed value length %d does not match declared size %d", len(v.Bytes), t.Size)
		}
	}
	return nil
}

// Get returns the named field's value. A field that was never Set
// reads back as null if optional; ok is false if the name is not a
// field of this object's group at all.
func (o *Object) Get(name string) (Value, bool) {
	f, ok := o.byName[name]
	if !ok {
		return Value{}, false
	}
	if v, set := o.values[name]; set {
		return v, true
	}
	return Value{Null: f.Optional}, true
}

// initialized reports whether name was explicitly Set, as opposed to
// reading back as the optional-null default Get falls back to.
func (o *Object) initialized(name string) bool {
	_, ok := o.values[name]
	return ok
}

// IsNull reports whether the named field currently holds a null value.
func (o *Object) IsNull(name string) bool {
	v, ok := o.Get(name)
	return ok && v.Null
}

// Clear removes any value previously Set for name; a subsequent Get
// behaves as though the field was never touched.
func (o *Object) Clear(name string) {
	delete(o.values, name)
}

// field looks up a *schema.Field by name; it is unexported and only
// callable from within this package.
func (o *Object) field(name string) (*schema.Field, bool) {
	f, ok := o.byName[name]
	return f, ok
}
