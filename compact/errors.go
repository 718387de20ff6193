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
	"errors"
	"fmt"
)

// ErrDecodeRange is returned when a VLC multi-byte length prefix names
// an impossible byte count.
var ErrDecodeRange = errors.New("compact: invalid VLC byte count")

// ErrNullRequired is returned when a required (non-optional) value
// decodes to null.
var ErrNullRequired = errors.New("compact: null value in required field")

// RangeError reports that a decoded value does not fit the declared
// wire type (e.g. a VLC decoded a value outside u8's 0..255 range).
type RangeError struct {
	Type  string
	Value int64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("compact: value %d out of range for type %s", e.Value, e.Type)
}

// DecodeError reports a malformed wire encoding: an invalid presence
// flag, a null decimal mantissa, or any other shape violation that is
// not simply "value out of range". A bool that decodes to anything but
// 0 or 1 is reported as a RangeError.
type DecodeError struct {
	Context string
	Msg     string
}

func (e *DecodeError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("compact: %s: %s", e.Context, e.Msg)
	}
	return "compact: " + e.Msg
}

func decodeErrorf(context, format string, args ...interface{}) *DecodeError {
	return &DecodeError{Context: context, Msg: fmt.Sprintf(format, args...)}
}
