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

import "math"

// --- stream-level VLC primitives -------------------------------------

func peekVLCLen(b0 byte) int {
	switch {
	case b0 <= 0x7f:
		return 1
	case b0 <= 0xbf:
		return 2
	default:
		return 1 + int(b0&twoByteLowMask)
	}
}

func readRawVLC(s Stream) ([]byte, error) {
	b0, err := s.Peek()
	if err != nil {
		return nil, err
	}
	n := peekVLCLen(b0)
	return s.Read(n)
}

// WriteUnsignedVLC writes the minimum-size unsigned VLC encoding of v.
func WriteUnsignedVLC(s Stream, v uint64) error {
	return s.Write(AppendUnsigned(nil, v))
}

// WriteUnsignedVLCNull writes the one-byte null marker.
func WriteUnsignedVLCNull(s Stream) error { return s.Write([]byte{nullByte}) }

// ReadUnsignedVLC reads one unsigned VLC value.
func ReadUnsignedVLC(s Stream) (v uint64, isNull bool, err error) {
	raw, err := readRawVLC(s)
	if err != nil {
		return 0, false, err
	}
	v, isNull, _, err = DecodeUnsigned(raw)
	return v, isNull, err
}

// WriteSignedVLC writes the minimum-size signed VLC encoding of v.
func WriteSignedVLC(s Stream, v int64) error {
	return s.Write(AppendSigned(nil, v))
}

// WriteSignedVLCNull writes the one-byte null marker.
func WriteSignedVLCNull(s Stream) error { return s.Write([]byte{nullByte}) }

// ReadSignedVLC reads one signed VLC value.
func ReadSignedVLC(s Stream) (v int64, isNull bool, err error) {
	raw, err := readRawVLC(s)
	if err != nil {
		return 0, false, err
	}
	v, isNull, _, err = DecodeSigned(raw)
	return v, isNull, err
}

// --- presence flag (optional fixed-size types only) -------------------

const (
	presentByte = 0x01
)

// WritePresence writes the leading presence-flag byte used only ahead
// of optional fixed-size fields.
func WritePresence(s Stream, present bool) error {
	if present {
		return s.Write([]byte{presentByte})
	}
	return s.Write([]byte{nullByte})
}

// ReadPresence reads a presence-flag byte; any value other than 0x01
// or 0xc0 is a decode error.
func ReadPresence(s Stream) (present bool, err error) {
	b, err := s.Read(1)
	if err != nil {
		return false, err
	}
	switch b[0] {
	case presentByte:
		return true, nil
	case nullByte:
		return false, nil
	default:
		return false, decodeErrorf("presence", "invalid presence flag 0x%02x", b[0])
	}
}

// --- length-prefixed bytes (string/binary) ----------------------------

// WriteBytes writes an unsigned-VLC length followed by b.
func WriteBytes(s Stream, b []byte) error {
	if err := WriteUnsignedVLC(s, uint64(len(b))); err != nil {
		return err
	}
	if len(b) == 0 {
		return nil
	}
	return s.Write(b)
}

// WriteBytesNull writes the VLC null marker in place of a length.
func WriteBytesNull(s Stream) error { return WriteUnsignedVLCNull(s) }

// ReadBytes reads an unsigned-VLC length followed by that many bytes.
func ReadBytes(s Stream) (b []byte, isNull bool, err error) {
	n, isNull, err := ReadUnsignedVLC(s)
	if err != nil || isNull {
		return nil, isNull, err
	}
	if n > MaxLength {
		return nil, false, ErrTooLarge
	}
	if n == 0 {
		return nil, false, nil
	}
	b, err = s.Read(int(n))
	return b, false, err
}

// --- fixed-size byte fields --------------------------------------------

// WriteFixed writes exactly len(b) bytes with no length prefix.
func WriteFixed(s Stream, b []byte) error { return s.Write(b) }

// ReadFixed reads exactly size bytes with no length prefix.
func ReadFixed(s Stream, size int) ([]byte, error) { return s.Read(size) }

// --- bool ---------------------------------------------------------------

// WriteBool writes a required bool.
func WriteBool(s Stream, v bool) error {
	if v {
		return WriteUnsignedVLC(s, 1)
	}
	return WriteUnsignedVLC(s, 0)
}

// WriteBoolNull writes the null marker for an optional bool.
func WriteBoolNull(s Stream) error { return WriteUnsignedVLCNull(s) }

// ReadBool reads a bool, failing unless the decoded VLC is exactly 0 or 1.
func ReadBool(s Stream) (v bool, isNull bool, err error) {
	raw, isNull, err := ReadUnsignedVLC(s)
	if err != nil || isNull {
		return false, isNull, err
	}
	switch raw {
	case 0:
		return false, false, nil
	case 1:
		return true, false, nil
	default:
		return false, false, &RangeError{Type: "bool", Value: int64(raw)}
	}
}

// --- unsigned integers ---------------------------------------------------

func writeUnsigned(s Stream, v uint64) error { return WriteUnsignedVLC(s, v) }

func readUnsignedRanged(s Stream, typ string, max uint64) (v uint64, isNull bool, err error) {
	raw, isNull, err := ReadUnsignedVLC(s)
	if err != nil || isNull {
		return 0, isNull, err
	}
	if raw > max {
		return 0, false, &RangeError{Type: typ, Value: int64(raw)}
	}
	return raw, false, nil
}

func WriteU8(s Stream, v uint8) error   { return writeUnsigned(s, uint64(v)) }
func WriteU8Null(s Stream) error        { return WriteUnsignedVLCNull(s) }
func ReadU8(s Stream) (uint8, bool, error) {
	v, n, err := readUnsignedRanged(s, "u8", 0xff)
	return uint8(v), n, err
}

func WriteU16(s Stream, v uint16) error { return writeUnsigned(s, uint64(v)) }
func WriteU16Null(s Stream) error       { return WriteUnsignedVLCNull(s) }
func ReadU16(s Stream) (uint16, bool, error) {
	v, n, err := readUnsignedRanged(s, "u16", 0xffff)
	return uint16(v), n, err
}

func WriteU32(s Stream, v uint32) error { return writeUnsigned(s, uint64(v)) }
func WriteU32Null(s Stream) error       { return WriteUnsignedVLCNull(s) }
func ReadU32(s Stream) (uint32, bool, error) {
	v, n, err := readUnsignedRanged(s, "u32", 0xffffffff)
	return uint32(v), n, err
}

func WriteU64(s Stream, v uint64) error { return writeUnsigned(s, v) }
func WriteU64Null(s Stream) error       { return WriteUnsignedVLCNull(s) }
func ReadU64(s Stream) (uint64, bool, error) {
	return ReadUnsignedVLC(s)
}

// --- signed integers -------------------------------------------------------

func readSignedRanged(s Stream, typ string, lo, hi int64) (v int64, isNull bool, err error) {
	raw, isNull, err := ReadSignedVLC(s)
	if err != nil || isNull {
		return 0, isNull, err
	}
	if raw < lo || raw > hi {
		return 0, false, &RangeError{Type: typ, Value: raw}
	}
	return raw, false, nil
}

func WriteI8(s Stream, v int8) error { return WriteSignedVLC(s, int64(v)) }
func WriteI8Null(s Stream) error     { return WriteSignedVLCNull(s) }
func ReadI8(s Stream) (int8, bool, error) {
	v, n, err := readSignedRanged(s, "i8", -128, 127)
	return int8(v), n, err
}

func WriteI16(s Stream, v int16) error { return WriteSignedVLC(s, int64(v)) }
func WriteI16Null(s Stream) error      { return WriteSignedVLCNull(s) }
func ReadI16(s Stream) (int16, bool, error) {
	v, n, err := readSignedRanged(s, "i16", -32768, 32767)
	return int16(v), n, err
}

func WriteI32(s Stream, v int32) error { return WriteSignedVLC(s, int64(v)) }
func WriteI32Null(s Stream) error      { return WriteSignedVLCNull(s) }
func ReadI32(s Stream) (int32, bool, error) {
	v, n, err := readSignedRanged(s, "i32", -2147483648, 2147483647)
	return int32(v), n, err
}

func WriteI64(s Stream, v int64) error { return WriteSignedVLC(s, v) }
func WriteI64Null(s Stream) error      { return WriteSignedVLCNull(s) }
func ReadI64(s Stream) (int64, bool, error) {
	return ReadSignedVLC(s)
}

// --- f64 --------------------------------------------------------------------

// WriteF64 writes f's raw IEEE-754 bit pattern through the unsigned
// VLC codec (so 0.0 encodes as a single zero byte).
func WriteF64(s Stream, f float64) error {
	return WriteUnsignedVLC(s, math.Float64bits(f))
}

func WriteF64Null(s Stream) error { return WriteUnsignedVLCNull(s) }

func ReadF64(s Stream) (float64, bool, error) {
	bits, isNull, err := ReadUnsignedVLC(s)
	if err != nil || isNull {
		return 0, isNull, err
	}
	return math.Float64frombits(bits), false, nil
}

// --- decimal -----------------------------------------------------------------

// WriteDecimal writes a decimal as two consecutive signed VLCs:
// exponent then mantissa.
func WriteDecimal(s Stream, exp int8, mantissa int64) error {
	if err := WriteSignedVLC(s, int64(exp)); err != nil {
		return err
	}
	return WriteSignedVLC(s, mantissa)
}

// WriteDecimalNull writes the null marker in place of the exponent;
// no mantissa bytes follow.
func WriteDecimalNull(s Stream) error { return WriteSignedVLCNull(s) }

// ReadDecimal reads a decimal. The mantissa may never be null when the
// exponent is present.
func ReadDecimal(s Stream) (exp int8, mantissa int64, isNull bool, err error) {
	rawExp, isNull, err := ReadSignedVLC(s)
	if err != nil || isNull {
		return 0, 0, isNull, err
	}
	if rawExp < -128 || rawExp > 127 {
		return 0, 0, false, &RangeError{Type: "decimal.exponent", Value: rawExp}
	}
	m, mNull, err := ReadSignedVLC(s)
	if err != nil {
		return 0, 0, false, err
	}
	if mNull {
		return 0, 0, false, decodeErrorf("decimal", "mantissa must not be null")
	}
	return int8(rawExp), m, false, nil
}
