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

import "fmt"

// LexError describes a lexing failure: unterminated string, token too
// large, unknown character. Grounded in expr/partiql/lex.go's
// LexerError.
type LexError struct {
	Position int
	Line     int
	Column   int
	Message  string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("at %d:%d: %s", e.Line, e.Column, e.Message)
}

// SyntaxError describes a parser failure: unexpected token, missing
// delimiter, duplicate definition. The parser returns failure on the
// first malformed construct (spec.md §4.4's error policy).
type SyntaxError struct {
	Position int
	Line     int
	Column   int
	Message  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("at %d:%d: %s", e.Line, e.Column, e.Message)
}

// SemanticError describes a resolver/validator failure: unresolved
// reference, cycle, inheritance violation, shadowed field, ambiguous
// enum, sequence-of-sequence. It names the definition or field at
// fault instead of a source position, since these checks run after
// parsing has discarded the token stream.
type SemanticError struct {
	Definition string
	Field      string
	Message    string
}

func (e *SemanticError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s.%s: %s", e.Definition, e.Field, e.Message)
	}
	if e.Definition != "" {
		return fmt.Sprintf("%s: %s", e.Definition, e.Message)
	}
	return e.Message
}

func semErrf(def, field, format string, args ...interface{}) *SemanticError {
	return &SemanticError{Definition: def, Field: field, Message: fmt.Sprintf(format, args...)}
}
