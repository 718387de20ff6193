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

package compact

import (
	"bytes"
	"testing"
)

func TestPresenceFlag(t *testing.T) {
	buf := make([]byte, 8)
	s := NewBufferStream(buf)
	if err := WritePresence(s, true); err != nil {
		t.Fatal(err)
	}
	if err := WritePresence(s, false); err != nil {
		t.Fatal(err)
	}
	s.SeekSet(0)
	present, err := ReadPresence(s)
	if err != nil || !present {
		t.Fatalf("present=%v err=%v", present, err)
	}
	present, err = ReadPresence(s)
	if err != nil || present {
		t.Fatalf("present=%v err=%v", present, err)
	}
}

func TestPresenceFlagInvalid(t *testing.T) {
	s := NewBufferStream([]byte{0x02})
	if _, err := ReadPresence(s); err == nil {
		t.Fatal("expected error for invalid presence flag 0x02")
	}
}

func TestStringEncoding(t *testing.T) {
	buf := make([]byte, 16)
	s := NewBufferStream(buf)
	if err := WriteBytes(s, []byte("IBM")); err != nil {
		t.Fatal(err)
	}
	s.SeekSet(0)
	if !bytes.Equal(s.Bytes()[:4], []byte{0x03, 0x49, 0x42, 0x4d}) {
		t.Fatalf("got % x", s.Bytes()[:4])
	}
	got, isNull, err := ReadBytes(s)
	if err != nil || isNull || string(got) != "IBM" {
		t.Fatalf("got=%q null=%v err=%v", got, isNull, err)
	}
}

func TestDecimalZero(t *testing.T) {
	buf := make([]byte, 8)
	s := NewBufferStream(buf)
	if err := WriteDecimal(s, 0, 0); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(s.Bytes()[:2], []byte{0x00, 0x00}) {
		t.Fatalf("got % x", s.Bytes()[:2])
	}
	s.SeekSet(0)
	exp, mant, isNull, err := ReadDecimal(s)
	if err != nil || isNull || exp != 0 || mant != 0 {
		t.Fatalf("exp=%d mant=%d null=%v err=%v", exp, mant, isNull, err)
	}
}

func TestDecimalNullMantissaFails(t *testing.T) {
	buf := make([]byte, 8)
	s := NewBufferStream(buf)
	// exponent present (0), mantissa null
	if err := WriteSignedVLC(s, 0); err != nil {
		t.Fatal(err)
	}
	if err := WriteSignedVLCNull(s); err != nil {
		t.Fatal(err)
	}
	s.SeekSet(0)
	_, _, _, err := ReadDecimal(s)
	if err == nil {
		t.Fatal("expected error: null mantissa with present exponent")
	}
}

func TestBoolRoundTrip(t *testing.T) {
	buf := make([]byte, 4)
	s := NewBufferStream(buf)
	WriteBool(s, true)
	WriteBool(s, false)
	s.SeekSet(0)
	v, isNull, err := ReadBool(s)
	if err != nil || isNull || !v {
		t.Fatalf("v=%v null=%v err=%v", v, isNull, err)
	}
	v, isNull, err = ReadBool(s)
	if err != nil || isNull || v {
		t.Fatalf("v=%v null=%v err=%v", v, isNull, err)
	}
}

func TestBoolOutOfRange(t *testing.T) {
	s := NewBufferStream([]byte{0x02})
	if _, _, err := ReadBool(s); err == nil {
		t.Fatal("expected range error for bool value 2")
	}
}

func TestU8RangeCheck(t *testing.T) {
	buf := make([]byte, 4)
	s := NewBufferStream(buf)
	WriteU16(s, 256)
	s.SeekSet(0)
	if _, _, err := ReadU8(s); err == nil {
		t.Fatal("expected range error reading u8 from a value >255")
	}
}

func TestF64ZeroIsOneByte(t *testing.T) {
	buf := make([]byte, 4)
	s := NewBufferStream(buf)
	if err := WriteF64(s, 0.0); err != nil {
		t.Fatal(err)
	}
	pos, _ := s.Tell()
	if pos != 1 {
		t.Fatalf("expected 1 byte for 0.0, used %d", pos)
	}
	s.SeekSet(0)
	f, isNull, err := ReadF64(s)
	if err != nil || isNull || f != 0.0 {
		t.Fatalf("f=%v null=%v err=%v", f, isNull, err)
	}
}
