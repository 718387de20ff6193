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
	"math"
	"testing"
)

func TestUnsignedVectors(t *testing.T) {
	cases := []struct {
		v    uint64
		want []byte
	}{
		{0, []byte{0x00}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x02}},
		{255, []byte{0xbf, 0x03}},
		{65535, []byte{0xc2, 0xff, 0xff}},
		{1<<32 - 1, []byte{0xc4, 0xff, 0xff, 0xff, 0xff}},
		{1<<64 - 1, []byte{0xc8, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
	}
	for _, c := range cases {
		got := AppendUnsigned(nil, c.v)
		if !bytes.Equal(got, c.want) {
			t.Errorf("encode(%d) = % x, want % x", c.v, got, c.want)
		}
		v, isNull, n, err := DecodeUnsigned(got)
		if err != nil || isNull || v != c.v || n != len(c.want) {
			t.Errorf("decode(% x) = (%d,%v,%d,%v), want (%d,false,%d,nil)", got, v, isNull, n, err, c.v, len(c.want))
		}
	}
}

func TestSignedVectors(t *testing.T) {
	cases := []struct {
		v    int64
		want []byte
	}{
		{63, []byte{0x3f}},
		{-64, []byte{0x40}},
		{-65, []byte{0xbf, 0xfe}},
		{math.MinInt8, []byte{0x80, 0xfe}},
		{math.MaxInt8, []byte{0xbf, 0x01}},
		{math.MinInt16, []byte{0xc2, 0x00, 0x80}},
		{math.MaxInt16, []byte{0xc2, 0xff, 0x7f}},
	}
	for _, c := range cases {
		got := AppendSigned(nil, c.v)
		if !bytes.Equal(got, c.want) {
			t.Errorf("encode(%d) = % x, want % x", c.v, got, c.want)
		}
		v, isNull, n, err := DecodeSigned(got)
		if err != nil || isNull || v != c.v || n != len(c.want) {
			t.Errorf("decode(% x) = (%d,%v,%d,%v), want (%d,false,%d,nil)", got, v, isNull, n, err, c.v, len(c.want))
		}
	}
}

func TestUnsignedRoundTripBoundaries(t *testing.T) {
	boundaries := []uint64{
		0, 1, 126, 127, 128, 129,
		0x3ffe, 0x3fff, 0x4000, 0x4001,
		1<<16 - 2, 1<<16 - 1, 1 << 16, 1<<16 + 1,
		1<<24 - 1, 1 << 24,
		1<<32 - 1, 1 << 32,
		1<<64 - 1,
	}
	for _, v := range boundaries {
		enc := AppendUnsigned(nil, v)
		if len(enc) != UnsignedSize(v) {
			t.Fatalf("UnsignedSize(%d)=%d, encoded len=%d", v, UnsignedSize(v), len(enc))
		}
		got, isNull, n, err := DecodeUnsigned(enc)
		if err != nil || isNull || got != v || n != len(enc) {
			t.Fatalf("round trip failed for %d: got=%d null=%v n=%d err=%v", v, got, isNull, n, err)
		}
	}
}

func TestSignedRoundTripBoundaries(t *testing.T) {
	boundaries := []int64{
		0, -1, 63, -64, 64, -65,
		8191, -8192, 8192, -8193,
		math.MinInt16, math.MaxInt16,
		math.MinInt32, math.MaxInt32,
		math.MinInt64, math.MaxInt64,
	}
	for _, v := range boundaries {
		enc := AppendSigned(nil, v)
		if len(enc) != SignedSize(v) {
			t.Fatalf("SignedSize(%d)=%d, encoded len=%d", v, SignedSize(v), len(enc))
		}
		got, isNull, n, err := DecodeSigned(enc)
		if err != nil || isNull || got != v || n != len(enc) {
			t.Fatalf("round trip failed for %d: got=%d null=%v n=%d err=%v", v, got, isNull, n, err)
		}
	}
}

func TestNullMarker(t *testing.T) {
	v, isNull, _, err := DecodeUnsigned([]byte{0xc0})
	if err != nil || !isNull || v != 0 {
		t.Fatalf("unsigned null decode failed: %v %v %v", v, isNull, err)
	}
	sv, isNull, _, err := DecodeSigned([]byte{0xc0})
	if err != nil || !isNull || sv != 0 {
		t.Fatalf("signed null decode failed: %v %v %v", sv, isNull, err)
	}
}
