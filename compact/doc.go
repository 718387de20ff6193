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

// Package compact implements the Blink protocol "compact form" binary
// encoding: a byte-stream abstraction, a variable-length integer code
// (VLC) with a dedicated null representation, and encoders/decoders for
// every compact-form primitive wire type.
//
// The package has no notion of schemas or messages; it only knows how to
// move bytes and primitive values across a Stream. Package object builds
// schema-driven message encode/decode on top of it.
package compact
