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

import "github.com/google/uuid"

// New parses and finalises a Blink schema source document in one step:
// lex -> parse -> resolve -> validate. The returned Schema is
// immutable and safe for concurrent read-only use.
func New(src []byte, opts ParserOptions) (*Schema, error) {
	s, err := Parse(src, opts)
	if err != nil {
		return nil, err
	}
	if err := s.Finalise(); err != nil {
		return nil, err
	}
	s.BuildID = uuid.New()
	return s, nil
}
