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
	"github.com/blinkschema/blink/compact"
	"github.com/blinkschema/blink/schema"
)

// growBuffer is a write-only, growing compact.Stream. A dynamic
// group's frame is its total encoded byte length followed by its
// group id and fields (spec.md §4.6/§4.7), so the length has to be
// known before anything is written to the real, fixed-size stream --
// encoding therefore goes through this buffer first, then the real
// length and bytes are written to the destination stream in one
// shot. Grounded in ion/writer.go's two-pass "encode into a scratch
// Buffer, then splice in the length prefix" pattern used for list and
// struct framing.
type growBuffer struct {
	buf []byte
}

func (g *growBuffer) Write(p []byte) error          { g.buf = append(g.buf, p...); return nil }
func (g *growBuffer) Read(int) ([]byte, error)      { return nil, compact.ErrShort }
func (g *growBuffer) Peek() (byte, error)           { return 0, compact.ErrNoPeek }
func (g *growBuffer) Tell() (int64, error)          { return int64(len(g.buf)), nil }
func (g *growBuffer) SeekSet(int64) error           { return compact.ErrNotSeekable }
func (g *growBuffer) SeekCur(int64) error           { return compact.ErrNotSeekable }

// EncodeCompact writes obj to s as a top-level message: a dynamic
// group frame (byte length, group id, then fields in inheritance
// order). obj's group must carry a wire id (spec.md §4.7) since a
// top-level message always self-identifies its type.
func EncodeCompact(s compact.Stream, obj *Object) error {
	if !obj.group.HasID() {
		return accessErrf(obj.group.QualifiedName(), "", "group has no id, cannot be encoded as a top-level message")
	}
	return encodeDynamicFrame(s, obj, false)
}

func encodeDynamicFrame(s compact.Stream, obj *Object, null bool) error {
	if null {
		return compact.WriteUnsignedVLCNull(s)
	}
	var gb growBuffer
	if err := compact.WriteUnsignedVLC(&gb, *obj.group.ID); err != nil {
		return err
	}
	if err := encodeFields(&gb, obj); err != nil {
		return err
	}
	if err := compact.WriteUnsignedVLC(s, uint64(len(gb.buf))); err != nil {
		return err
	}
	if len(gb.buf) == 0 {
		return nil
	}
	return s.Write(gb.buf)
}

// encodeFields writes obj's fields in AllFields order with no
// surrounding frame -- the representation of a static (embedded)
// group, and the payload of a dynamic group after its size/id prefix.
func encodeFields(s compact.Stream, obj *Object) error {
	for _, f := range obj.fields {
		if !f.Optional && !obj.initialized(f.Name) {
			return accessErrf(obj.group.QualifiedName(), f.Name, "required field was never set")
		}
		v, _ := obj.Get(f.Name)
		if err := encodeField(s, f, v); err != nil {
			return err
		}
	}
	return nil
}

func encodeField(s compact.Stream, f *schema.Field, v Value) error {
	if f.Type.IsSequence {
		return encodeSequence(s, f, v)
	}
	return encodeScalar(s, f.Type, v, f.Optional)
}

// encodeSequence writes a sequence as a VLC element count followed by
// that many encoded elements. An absent optional sequence writes the
// VLC null marker in place of the count; an empty present sequence
// writes a count of zero.
func encodeSequence(s compact.Stream, f *schema.Field, v Value) error {
	if v.Null {
		if !f.Optional {
			return accessErrf("", f.Name, "required sequence field is null")
		}
		return compact.WriteUnsignedVLCNull(s)
	}
	if err := compact.WriteUnsignedVLC(s, uint64(len(v.Seq))); err != nil {
		return err
	}
	elemType := f.Type
	elemType.IsSequence = false
	for i := range v.Seq {
		if err := encodeScalar(s, elemType, v.Seq[i], false); err != nil {
			return err
		}
	}
	return nil
}

// encodeScalar encodes one non-sequence value. Absence is represented
// differently by kind (spec.md §4.2, §9): VLC primitives, strings,
// binary, decimal, and dynamic groups carry their own built-in null
// marker; fixed and static-group fields have no such marker in their
// wire representation and so are preceded by an explicit presence
// flag when optional.
func encodeScalar(s compact.Stream, t schema.TypeDescriptor, v Value, optional bool) error {
	switch t.Kind {
	case schema.KindBool:
		if v.Null {
			return compact.WriteBoolNull(s)
		}
		return compact.WriteBool(s, v.Bool)
	case schema.KindU8:
		if v.Null {
			return compact.WriteU8Null(s)
		}
		return compact.WriteU8(s, uint8(v.Uint))
	case schema.KindU16:
		if v.Null {
			return compact.WriteU16Null(s)
		}
		return compact.WriteU16(s, uint16(v.Uint))
	case schema.KindU32:
		if v.Null {
			return compact.WriteU32Null(s)
		}
		return compact.WriteU32(s, uint32(v.Uint))
	case schema.KindU64:
		if v.Null {
			return compact.WriteU64Null(s)
		}
		return compact.WriteU64(s, v.Uint)
	case schema.KindI8:
		if v.Null {
			return compact.WriteI8Null(s)
		}
		return compact.WriteI8(s, int8(v.Int))
	case schema.KindI16:
		if v.Null {
			return compact.WriteI16Null(s)
		}
		return compact.WriteI16(s, int16(v.Int))
	case schema.KindI32:
		if v.Null {
			return compact.WriteI32Null(s)
		}
		return compact.WriteI32(s, int32(v.Int))
	case schema.KindI64:
		if v.Null {
			return compact.WriteI64Null(s)
		}
		return compact.WriteI64(s, v.Int)
	case schema.KindF64:
		if v.Null {
			return compact.WriteF64Null(s)
		}
		return compact.WriteF64(s, v.Float64)
	case schema.KindEnum:
		if v.Null {
			return compact.WriteI32Null(s)
		}
		return compact.WriteI32(s, v.Enum)
	case schema.KindDate:
		if v.Null {
			return compact.WriteDateNull(s)
		}
		return compact.WriteDate(s, v.Time)
	case schema.KindTimeOfDayMilli:
		if v.Null {
			return compact.WriteTimeOfDayMilliNull(s)
		}
		return compact.WriteTimeOfDayMilli(s, v.Dur)
	case schema.KindTimeOfDayNano:
		if v.Null {
			return compact.WriteTimeOfDayNanoNull(s)
		}
		return compact.WriteTimeOfDayNano(s, v.Dur)
	case schema.KindMilliTime:
		if v.Null {
			return compact.WriteMilliTimeNull(s)
		}
		return compact.WriteMilliTime(s, v.Time)
	case schema.KindNanoTime:
		if v.Null {
			return compact.WriteNanoTimeNull(s)
		}
		return compact.WriteNanoTime(s, v.Time)
	case schema.KindDecimal:
		if v.Null {
			return compact.WriteDecimalNull(s)
		}
		return compact.WriteDecimal(s, v.DecimalExp, v.Int)
	case schema.KindString, schema.KindBinary:
		if v.Null {
			return compact.WriteBytesNull(s)
		}
		return compact.WriteBytes(s, v.Bytes)
	case schema.KindFixed:
		if optional {
			if err := compact.WritePresence(s, !v.Null); err != nil {
				return err
			}
			if v.Null {
				return nil
			}
		}
		return compact.WriteFixed(s, v.Bytes)
	case schema.KindStaticGroup:
		if optional {
			if err := compact.WritePresence(s, !v.Null); err != nil {
				return err
			}
			if v.Null {
				return nil
			}
		}
		return encodeFields(s, v.Group)
	case schema.KindDynamicGroup, schema.KindObject:
		return encodeDynamicFrame(s, v.Group, v.Null)
	}
	return accessErrf("", "", "unsupported type kind %s", t.Kind)
}

// DecodeCompact decodes a single top-level message from s against
// sch, dispatching on the group id found in the wire frame.
func DecodeCompact(s compact.Stream, sch *schema.Schema) (*Object, error) {
	obj, isNull, err := decodeDynamicFrame(s, sch, nil)
	if err != nil {
		return nil, err
	}
	if isNull {
		return nil, accessErrf("", "", "top-level message frame was null")
	}
	return obj, nil
}

// decodeDynamicFrame reads a length-prefixed dynamic group frame and
// decodes it against the group its wire id resolves to in sch.
// declared, when non-nil, is the statically declared group a
// dynamic-group field was typed against; the wire group must then be
// that group or a descendant of it (spec.md §4.7's kind-of check). A
// nil declared means no constraint, used for top-level messages and
// for the "object" wildcard kind.
func decodeDynamicFrame(s compact.Stream, sch *schema.Schema, declared *schema.Group) (*Object, bool, error) {
	size, isNull, err := compact.ReadUnsignedVLC(s)
	if err != nil || isNull {
		return nil, isNull, err
	}
	if size > compact.MaxLength {
		return nil, false, compact.ErrTooLarge
	}
	payload, err := s.Read(int(size))
	if err != nil {
		return nil, false, err
	}
	sub := compact.NewBufferStream(payload)
	id, idNull, err := compact.ReadUnsignedVLC(sub)
	if err != nil {
		return nil, false, err
	}
	if idNull {
		return nil, false, accessErrf("", "", "dynamic group frame is missing its group id")
	}
	g, ok := sch.GroupByID(id)
	if !ok {
		return nil, false, &UnknownGroupError{ID: id}
	}
	if declared != nil && !g.IsKindOf(declared) {
		return nil, false, accessErrf(g.QualifiedName(), "", "group id %d is not a kind-of declared group %s", id, declared.QualifiedName())
	}
	obj := New(g)
	if err := decodeFields(sub, sch, obj); err != nil {
		return nil, false, err
	}
	return obj, false, nil
}

func decodeFields(s compact.Stream, sch *schema.Schema, obj *Object) error {
	for _, f := range obj.fields {
		v, err := decodeField(s, sch, f)
		if err != nil {
			return err
		}
		if v.Null && !f.Optional {
			return compact.ErrNullRequired
		}
		if err := obj.Set(f.Name, v); err != nil {
			return err
		}
	}
	return nil
}

func decodeField(s compact.Stream, sch *schema.Schema, f *schema.Field) (Value, error) {
	if f.Type.IsSequence {
		return decodeSequence(s, sch, f)
	}
	return decodeScalar(s, sch, f.Type, f.Optional)
}

func decodeSequence(s compact.Stream, sch *schema.Schema, f *schema.Field) (Value, error) {
	n, isNull, err := compact.ReadUnsignedVLC(s)
	if err != nil {
		return Value{}, err
	}
	if isNull {
		return Value{Null: true}, nil
	}
	elemType := f.Type
	elemType.IsSequence = false
	elems := make([]Value, 0, n)
	for i := uint64(0); i < n; i++ {
		v, err := decodeScalar(s, sch, elemType, false)
		if err != nil {
			return Value{}, err
		}
		elems = append(elems, v)
	}
	return Value{Seq: elems}, nil
}

func decodeScalar(s compact.Stream, sch *schema.Schema, t schema.TypeDescriptor, optional bool) (Value, error) {
	switch t.Kind {
	case schema.KindBool:
		v, isNull, err := compact.ReadBool(s)
		if err != nil || isNull {
			return Value{Null: isNull}, err
		}
		return Value{Bool: v}, nil
	case schema.KindU8:
		v, isNull, err := compact.ReadU8(s)
		if err != nil || isNull {
			return Value{Null: isNull}, err
		}
		return Value{Uint: uint64(v)}, nil
	case schema.KindU16:
		v, isNull, err := compact.ReadU16(s)
		if err != nil || isNull {
			return Value{Null: isNull}, err
		}
		return Value{Uint: uint64(v)}, nil
	case schema.KindU32:
		v, isNull, err := compact.ReadU32(s)
		if err != nil || isNull {
			return Value{Null: isNull}, err
		}
		return Value{Uint: uint64(v)}, nil
	case schema.KindU64:
		v, isNull, err := compact.ReadU64(s)
		if err != nil || isNull {
			return Value{Null: isNull}, err
		}
		return Value{Uint: v}, nil
	case schema.KindI8:
		v, isNull, err := compact.ReadI8(s)
		if err != nil || isNull {
			return Value{Null: isNull}, err
		}
		return Value{Int: int64(v)}, nil
	case schema.KindI16:
		v, isNull, err := compact.ReadI16(s)
		if err != nil || isNull {
			return Value{Null: isNull}, err
		}
		return Value{Int: int64(v)}, nil
	case schema.KindI32:
		v, isNull, err := compact.ReadI32(s)
		if err != nil || isNull {
			return Value{Null: isNull}, err
		}
		return Value{Int: int64(v)}, nil
	case schema.KindI64:
		v, isNull, err := compact.ReadI64(s)
		if err != nil || isNull {
			return Value{Null: isNull}, err
		}
		return Value{Int: v}, nil
	case schema.KindF64:
		v, isNull, err := compact.ReadF64(s)
		if err != nil || isNull {
			return Value{Null: isNull}, err
		}
		return Value{Float64: v}, nil
	case schema.KindEnum:
		v, isNull, err := compact.ReadI32(s)
		if err != nil || isNull {
			return Value{Null: isNull}, err
		}
		return Value{Enum: v}, nil
	case schema.KindDate:
		v, isNull, err := compact.ReadDate(s)
		if err != nil || isNull {
			return Value{Null: isNull}, err
		}
		return Value{Time: v}, nil
	case schema.KindTimeOfDayMilli:
		v, isNull, err := compact.ReadTimeOfDayMilli(s)
		if err != nil || isNull {
			return Value{Null: isNull}, err
		}
		return Value{Dur: v}, nil
	case schema.KindTimeOfDayNano:
		v, isNull, err := compact.ReadTimeOfDayNano(s)
		if err != nil || isNull {
			return Value{Null: isNull}, err
		}
		return Value{Dur: v}, nil
	case schema.KindMilliTime:
		v, isNull, err := compact.ReadMilliTime(s)
		if err != nil || isNull {
			return Value{Null: isNull}, err
		}
		return Value{Time: v}, nil
	case schema.KindNanoTime:
		v, isNull, err := compact.ReadNanoTime(s)
		if err != nil || isNull {
			return Value{Null: isNull}, err
		}
		return Value{Time: v}, nil
	case schema.KindDecimal:
		exp, m, isNull, err := compact.ReadDecimal(s)
		if err != nil || isNull {
			return Value{Null: isNull}, err
		}
		return Value{DecimalExp: exp, Int: m}, nil
	case schema.KindString, schema.KindBinary:
		b, isNull, err := compact.ReadBytes(s)
		if err != nil || isNull {
			return Value{Null: isNull}, err
		}
		return Value{Bytes: b}, nil
	case schema.KindFixed:
		if optional {
			present, err := compact.ReadPresence(s)
			if err != nil {
				return Value{}, err
			}
			if !present {
				return Value{Null: true}, nil
			}
		}
		b, err := compact.ReadFixed(s, t.Size)
		if err != nil {
			return Value{}, err
		}
		return Value{Bytes: b}, nil
	case schema.KindStaticGroup:
		if optional {
			present, err := compact.ReadPresence(s)
			if err != nil {
				return Value{}, err
			}
			if !present {
				return Value{Null: true}, nil
			}
		}
		g, _ := t.Resolved.(*schema.Group)
		obj := New(g)
		if err := decodeFields(s, sch, obj); err != nil {
			return Value{}, err
		}
		return Value{Group: obj}, nil
	case schema.KindDynamicGroup, schema.KindObject:
		var declared *schema.Group
		if g, ok := t.Resolved.(*schema.Group); ok {
			declared = g
		}
		obj, isNull, err := decodeDynamicFrame(s, sch, declared)
		if err != nil {
			return Value{}, err
		}
		if isNull {
			return Value{Null: true}, nil
		}
		return Value{Group: obj}, nil
	}
	return Value{}, accessErrf("", "", "unsupported type kind %s", t.Kind)
}
