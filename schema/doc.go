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

// Package schema implements the Blink schema language: a lexer and
// recursive-descent parser that turn schema source text into a
// validated, queryable definition graph (namespaces, groups with
// inheritance, enums, typedefs, annotations), and a resolver that
// checks cross-reference constraints and finalises the graph.
//
// A finalised *Schema is immutable and may be read freely from
// multiple goroutines; building one is not safe for concurrent use.
package schema
