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

// tokenKind enumerates every lexical category the lexer can produce,
// grounded in the token set expr/partiql/lex.go tokenises for PartiQL
// (identifiers, keywords, punctuators, literals, eof) but cut down and
// re-specified to Blink's own grammar (spec.md §4.3).
type tokenKind int

const (
	tEOF tokenKind = iota
	tUnknown
	tOutOfMemory // literal buffer overflowed tokenBufferSize

	tName  // plain identifier
	tCName // identifier containing exactly one ':'

	// reserved type-name words
	tTypeU8
	tTypeU16
	tTypeU32
	tTypeU64
	tTypeI8
	tTypeI16
	tTypeI32
	tTypeI64
	tTypeF64
	tTypeBool
	tTypeString
	tTypeBinary
	tTypeFixed
	tTypeDecimal
	tTypeDate
	tTypeMilliTime
	tTypeNanoTime
	tTypeTimeOfDayMilli
	tTypeTimeOfDayNano
	tTypeObject

	// keywords
	tKwNamespace
	tKwSchema
	tKwType

	// literals
	tIntLiteral
	tStringLiteral

	// punctuators
	tEquals    // =
	tComma     // ,
	tDot       // .
	tQuestion  // ?
	tLBracket  // [
	tRBracket  // ]
	tLParen    // (
	tRParen    // )
	tStar      // *
	tPipe      // |
	tSlash     // /
	tAt        // @
	tColon     // :
	tArrowR    // ->
	tArrowL    // <-
)

// reservedWords maps the exact spelling of every reserved word to its
// token kind. A leading backslash in the source escapes a reserved
// word so it can be used as a plain identifier (spec.md §4.3).
var reservedWords = map[string]tokenKind{
	"u8": tTypeU8, "u16": tTypeU16, "u32": tTypeU32, "u64": tTypeU64,
	"i8": tTypeI8, "i16": tTypeI16, "i32": tTypeI32, "i64": tTypeI64,
	"f64": tTypeF64, "bool": tTypeBool, "string": tTypeString,
	"binary": tTypeBinary, "fixed": tTypeFixed, "decimal": tTypeDecimal,
	"date": tTypeDate, "milliTime": tTypeMilliTime, "nanoTime": tTypeNanoTime,
	"timeOfDayMilli": tTypeTimeOfDayMilli, "timeOfDayNano": tTypeTimeOfDayNano,
	"object":    tTypeObject,
	"namespace": tKwNamespace,
	"schema":    tKwSchema,
	"type":      tKwType,
}

// token is the unit the lexer produces. literal is accumulated in the
// Lexer's scratch buffer (allocated by NewLexer, scratchSize bytes) and
// then copied out, so a token's literal does not alias the scratch
// buffer and stays valid after later tokens are lexed.
type token struct {
	kind    tokenKind
	literal []byte // valid for tName, tCName, tIntLiteral, tStringLiteral
	intVal  int64
	uintVal uint64
	isUint  bool // true if the integer literal had no sign and no minus
	line    int
	column  int
	pos     int
}

func (t token) isReservedType() bool {
	return t.kind >= tTypeU8 && t.kind <= tTypeObject
}
