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

import "fmt"

// AccessError describes a misuse of the Object field API or a
// violation of the schema's contract: an unknown field name, a null
// Value for a required field, a sequence Value for a non-sequence
// field (or the reverse), a value that violates the field's declared
// size, a required field left unset at encode time, or a dynamic-group
// field whose wire-level group id is not a kind-of the field's declared
// group. Value carries no type tag, so a scalar Value of the wrong
// kind for a field is not detected.
// Grounded in compact.DecodeError's struct-plus-Error() shape (§9).
type AccessError struct {
	Group   string
	Field   string
	Message string
}

func (e *AccessError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("object: %s.%s: %s", e.Group, e.Field, e.Message)
	}
	return fmt.Sprintf("object: %s: %s", e.Group, e.Message)
}

func accessErrf(group, field, format string, args ...interface{}) *AccessError {
	return &AccessError{Group: group, Field: field, Message: fmt.Sprintf(format, args...)}
}

// UnknownGroupError is returned when a dynamic group's wire id does
// not match any group in the schema it is being decoded against.
type UnknownGroupError struct {
	ID uint64
}

func (e *UnknownGroupError) Error() string {
	return fmt.Sprintf("object: no group registered for id %d", e.ID)
}
