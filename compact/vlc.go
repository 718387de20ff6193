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

// Blink's variable-length code (VLC), per spec.md §4.2. Three framings:
//
//   - one byte  [0x00,0x7f]: value packed directly (7 bits)
//   - two bytes [0x80,0xbf],b1: 14-bit value (byte1<<6)|(byte0&0x3f)
//   - 0xc0: null
//   - 0xc1..0xc8: low 6 bits of byte0 give a byte count N in 1..8;
//     the next N bytes carry the value, little-endian
//
// Signed values reuse the exact same framing; only the interpretation
// of the high bit of the most significant byte differs (two's
// complement sign extension instead of zero extension).

const (
	nullByte       = 0xc0
	twoByteLowMask = 0x3f
	twoBytePrefix  = 0x80
	multiBytePrefixBase = 0xc0
)

// AppendUnsigned appends the minimum-size unsigned VLC encoding of v to
// dst and returns the extended slice.
func AppendUnsigned(dst []byte, v uint64) []byte {
	switch {
	case v <= 0x7f:
		return append(dst, byte(v))
	case v <= 0x3fff:
		return append(dst, twoBytePrefix|byte(v&twoByteLowMask), byte(v>>6))
	default:
		n := byteLen(v)
		dst = append(dst, byte(multiBytePrefixBase|n))
		for i := 0; i < n; i++ {
			dst = append(dst, byte(v))
			v >>= 8
		}
		return dst
	}
}

// AppendUnsignedNull appends the one-byte null marker.
func AppendUnsignedNull(dst []byte) []byte { return append(dst, nullByte) }

// AppendSigned appends the minimum-size signed VLC encoding of v.
func AppendSigned(dst []byte, v int64) []byte {
	switch {
	case v >= -64 && v <= 63:
		return append(dst, byte(uint64(v)&0x7f))
	case v >= -8192 && v <= 8191:
		raw := uint64(v) & 0x3fff
		return append(dst, twoBytePrefix|byte(raw&twoByteLowMask), byte(raw>>6))
	default:
		n := signedByteLen(v)
		dst = append(dst, byte(multiBytePrefixBase|n))
		uv := uint64(v)
		for i := 0; i < n; i++ {
			dst = append(dst, byte(uv))
			uv >>= 8
		}
		return dst
	}
}

// AppendSignedNull appends the one-byte null marker.
func AppendSignedNull(dst []byte) []byte { return append(dst, nullByte) }

// byteLen returns the minimum number of bytes (1..8) needed to hold the
// unsigned value v in plain little-endian form.
func byteLen(v uint64) int {
	n := 1
	for v>>uint(8*n) != 0 {
		n++
	}
	return n
}

// signedByteLen returns the minimum number N (1..8) such that v fits in
// a signed N*8-bit two's complement integer.
func signedByteLen(v int64) int {
	for n := 1; n < 8; n++ {
		bits := uint(8 * n)
		lo := -(int64(1) << (bits - 1))
		hi := int64(1)<<(bits-1) - 1
		if v >= lo && v <= hi {
			return n
		}
	}
	return 8
}

// UnsignedSize reports the encoded size in bytes of the minimum-size
// unsigned VLC encoding of v, without allocating.
func UnsignedSize(v uint64) int {
	switch {
	case v <= 0x7f:
		return 1
	case v <= 0x3fff:
		return 2
	default:
		return 1 + byteLen(v)
	}
}

// SignedSize reports the encoded size in bytes of the minimum-size
// signed VLC encoding of v, without allocating.
func SignedSize(v int64) int {
	switch {
	case v >= -64 && v <= 63:
		return 1
	case v >= -8192 && v <= 8191:
		return 2
	default:
		return 1 + signedByteLen(v)
	}
}

// DecodeUnsigned reads one unsigned VLC value from msg, returning the
// value (or isNull=true for the 0xc0 marker), the bytes consumed, and
// an error if msg does not contain a complete, well-formed encoding.
func DecodeUnsigned(msg []byte) (v uint64, isNull bool, n int, err error) {
	if len(msg) == 0 {
		return 0, false, 0, ErrShort
	}
	b0 := msg[0]
	switch {
	case b0 == nullByte:
		return 0, true, 1, nil
	case b0 <= 0x7f:
		return uint64(b0), false, 1, nil
	case b0 <= 0xbf:
		if len(msg) < 2 {
			return 0, false, 0, ErrShort
		}
		raw := (uint64(msg[1]) << 6) | uint64(b0&twoByteLowMask)
		return raw, false, 2, nil
	default: // 0xc1..0xc8 (0xc0 handled above)
		cnt := int(b0 & twoByteLowMask)
		if cnt < 1 || cnt > 8 {
			return 0, false, 0, ErrDecodeRange
		}
		if len(msg) < 1+cnt {
			return 0, false, 0, ErrShort
		}
		var raw uint64
		for i := cnt - 1; i >= 0; i-- {
			raw = (raw << 8) | uint64(msg[1+i])
		}
		return raw, false, 1 + cnt, nil
	}
}

// DecodeSigned reads one signed VLC value from msg, applying the sign
// extension rules of spec.md §4.2 for each of the three framings.
func DecodeSigned(msg []byte) (v int64, isNull bool, n int, err error) {
	if len(msg) == 0 {
		return 0, false, 0, ErrShort
	}
	b0 := msg[0]
	switch {
	case b0 == nullByte:
		return 0, true, 1, nil
	case b0 <= 0x7f:
		raw := int64(b0)
		if raw&0x40 != 0 {
			raw -= 0x80
		}
		return raw, false, 1, nil
	case b0 <= 0xbf:
		if len(msg) < 2 {
			return 0, false, 0, ErrShort
		}
		raw := (uint64(msg[1]) << 6) | uint64(b0&twoByteLowMask)
		signed := int64(raw)
		if raw&0x2000 != 0 { // bit 13: sign bit of the 14-bit value
			signed -= 1 << 14
		}
		return signed, false, 2, nil
	default:
		cnt := int(b0 & twoByteLowMask)
		if cnt < 1 || cnt > 8 {
			return 0, false, 0, ErrDecodeRange
		}
		if len(msg) < 1+cnt {
			return 0, false, 0, ErrShort
		}
		var raw uint64
		for i := cnt - 1; i >= 0; i-- {
			raw = (raw << 8) | uint64(msg[1+i])
		}
		if cnt == 8 {
			// the bit pattern of a full 8-byte little-endian
			// value is already the two's complement
			// representation of an int64.
			return int64(raw), false, 9, nil
		}
		signed := int64(raw)
		msb := msg[cnt] // most-significant data byte
		if msb&0x80 != 0 {
			signed -= int64(1) << uint(8*cnt)
		}
		return signed, false, 1 + cnt, nil
	}
}
