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

// Parser is a recursive-descent parser over the Blink schema grammar
// (spec.md §4.4), grounded in expr/partiql/parse.go's hand-written
// descent over a token stream (no parser generator -- Blink's grammar
// is small enough that goyacc, which the teacher's own partiql.y uses,
// would be overkill).
//
// The parser returns failure on the first malformed construct; partial
// state is simply discarded along with the Parser value (spec.md
// §4.4's error policy -- there is no region to release in the Go
// rendition, so "discarded with the region" becomes "the caller drops
// the Parser and its half-built Schema").
type Parser struct {
	lex  *Lexer
	cur  token
	next token
	opts ParserOptions

	schema *Schema
	ns     *Namespace
}

// Parse parses Blink schema source text into an unresolved Schema.
// Call (*Schema).Finalise to resolve references and validate it.
func Parse(src []byte, opts ParserOptions) (*Schema, error) {
	opts = opts.withDefaults()
	p := &Parser{
		lex:    NewLexer(src, opts.TokenBufferSize),
		opts:   opts,
		schema: &Schema{options: opts},
	}
	if err := p.primeTokens(); err != nil {
		return nil, err
	}
	if err := p.parseSchema(); err != nil {
		return nil, err
	}
	return p.schema, nil
}

func (p *Parser) primeTokens() error {
	t, err := p.lex.Next()
	if err != nil {
		return err
	}
	if t.kind == tOutOfMemory {
		return &LexError{Position: t.pos, Line: t.line, Column: t.column, Message: "token literal exceeds token buffer size"}
	}
	p.cur = t
	return p.advanceNext()
}

func (p *Parser) advanceNext() error {
	t, err := p.lex.Next()
	if err != nil {
		return err
	}
	if t.kind == tOutOfMemory {
		return &LexError{Position: t.pos, Line: t.line, Column: t.column, Message: "token literal exceeds token buffer size"}
	}
	p.next = t
	return nil
}

// bump consumes p.cur and loads the following token.
func (p *Parser) bump() (token, error) {
	t := p.cur
	p.cur = p.next
	if err := p.advanceNext(); err != nil {
		return token{}, err
	}
	return t, nil
}

func (p *Parser) mkerr(msg string, args ...interface{}) *SyntaxError {
	return &SyntaxError{Position: p.cur.pos, Line: p.cur.line, Column: p.cur.column, Message: fmt.Sprintf(msg, args...)}
}

func (p *Parser) expect(k tokenKind, what string) (token, error) {
	if p.cur.kind != k {
		return token{}, p.mkerr("expected %s", what)
	}
	return p.bump()
}

// parseSchema implements: schema := [ 'namespace' name ] { defOrAnnote }
func (p *Parser) parseSchema() error {
	if p.cur.kind == tKwNamespace {
		if _, err := p.bump(); err != nil {
			return err
		}
		name, err := p.expect(tName, "namespace name")
		if err != nil {
			return err
		}
		p.ns = p.schema.namespace(string(name.literal))
	} else {
		p.ns = p.schema.namespace("")
	}

	for p.cur.kind != tEOF {
		if err := p.parseDefOrAnnote(); err != nil {
			return err
		}
	}
	return nil
}

// parseDefOrAnnote implements:
//
//	defOrAnnote := { annote } ( groupDef | typeDef | enumDef | incrAnnote )
func (p *Parser) parseDefOrAnnote() error {
	if p.cur.kind == tKwNamespace {
		if _, err := p.bump(); err != nil {
			return err
		}
		name, err := p.expect(tName, "namespace name")
		if err != nil {
			return err
		}
		p.ns = p.schema.namespace(string(name.literal))
		return nil
	}

	if p.cur.kind == tKwSchema {
		return p.parseIncrAnnote(true, "", nil)
	}

	annos, err := p.parseAnnotations()
	if err != nil {
		return err
	}

	if p.cur.kind != tName && p.cur.kind != tCName {
		return p.mkerr("expected a definition or annotation")
	}
	nameTok, err := p.bump()
	if err != nil {
		return err
	}
	name := string(nameTok.literal)

	switch p.cur.kind {
	case tEquals:
		return p.parseTypeDefOrEnum(name, annos)
	case tDot, tArrowL:
		return p.parseIncrAnnote(false, name, annos)
	default:
		return p.parseGroupDef(name, annos)
	}
}

func (p *Parser) parseAnnotations() (Annotations, error) {
	var out Annotations
	for p.cur.kind == tAt {
		if _, err := p.bump(); err != nil {
			return nil, err
		}
		var key string
		switch p.cur.kind {
		case tName, tCName:
			t, err := p.bump()
			if err != nil {
				return nil, err
			}
			key = string(t.literal)
		default:
			if !p.cur.isReservedType() {
				return nil, p.mkerr("expected annotation key")
			}
			t, err := p.bump()
			if err != nil {
				return nil, err
			}
			key = typeKeyword(t.kind)
		}
		if _, err := p.expect(tEquals, "'=' in annotation"); err != nil {
			return nil, err
		}
		if p.cur.kind != tStringLiteral {
			return nil, p.mkerr("expected annotation value")
		}
		val, err := p.bump()
		if err != nil {
			return nil, err
		}
		out.set(key, string(val.literal))
	}
	return out, nil
}

// parseGroupDef implements:
//
//	groupDef := name [ '/' uint ] [ ':' qname ] [ '->' fieldList ]
func (p *Parser) parseGroupDef(name string, annos Annotations) error {
	g := &Group{Namespace: p.ns.Name, Local: name, Annotations: annos}

	if p.cur.kind == tSlash {
		if _, err := p.bump(); err != nil {
			return err
		}
		id, err := p.expectUint("group id")
		if err != nil {
			return err
		}
		g.ID = &id
	}

	if p.cur.kind == tColon {
		if _, err := p.bump(); err != nil {
			return err
		}
		ns, local, err := p.parseQName()
		if err != nil {
			return err
		}
		g.SuperName = qnameString(ns, local)
		g.SuperNamespace, g.SuperLocal = ns, local
	}

	if p.cur.kind == tArrowR {
		if _, err := p.bump(); err != nil {
			return err
		}
		if err := p.parseFieldList(g); err != nil {
			return err
		}
	}

	if !p.ns.add(g) {
		return p.mkerr("duplicate definition %q", name)
	}
	return nil
}

// parseFieldList implements: fieldList := field { ',' field }
func (p *Parser) parseFieldList(g *Group) error {
	for {
		if err := p.parseField(g); err != nil {
			return err
		}
		if p.cur.kind != tComma {
			return nil
		}
		if _, err := p.bump(); err != nil {
			return err
		}
	}
}

// parseField implements:
//
//	field := { annote } type { annote } name [ '/' uint ] [ '?' ]
func (p *Parser) parseField(g *Group) error {
	leading, err := p.parseAnnotations()
	if err != nil {
		return err
	}
	typ, err := p.parseType()
	if err != nil {
		return err
	}
	trailing, err := p.parseAnnotations()
	if err != nil {
		return err
	}
	for k, v := range trailing {
		leading.set(k, v)
	}

	if p.cur.kind != tName {
		return p.mkerr("expected field name")
	}
	nameTok, err := p.bump()
	if err != nil {
		return err
	}

	f := &Field{Name: string(nameTok.literal), Type: typ, Annotations: leading}

	if p.cur.kind == tSlash {
		if _, err := p.bump(); err != nil {
			return err
		}
		id, err := p.expectUint("field id")
		if err != nil {
			return err
		}
		f.ID = &id
	}
	if p.cur.kind == tQuestion {
		if _, err := p.bump(); err != nil {
			return err
		}
		f.Optional = true
	}

	if !g.addField(f) {
		return p.mkerr("duplicate field %q in group %q", f.Name, g.Local)
	}
	return nil
}

// parseType implements:
//
//	type := primitive [ '(' uint ')' ] [ '[' ']' ]
//	      | qname [ '*' ] [ '[' ']' ]
func (p *Parser) parseType() (TypeDescriptor, error) {
	if p.cur.isReservedType() {
		t, err := p.bump()
		if err != nil {
			return TypeDescriptor{}, err
		}
		td := TypeDescriptor{Kind: kindForToken(t.kind)}
		if td.Kind == KindString || td.Kind == KindBinary {
			td.Size = UnboundedSize // unbounded unless an explicit size follows
		}
		if p.cur.kind == tLParen {
			if _, err := p.bump(); err != nil {
				return TypeDescriptor{}, err
			}
			size, err := p.expectUint("type size")
			if err != nil {
				return TypeDescriptor{}, err
			}
			if td.Kind != KindString && td.Kind != KindBinary && td.Kind != KindFixed {
				return TypeDescriptor{}, p.mkerr("only string/binary/fixed accept a size")
			}
			td.Size = int(size)
			if _, err := p.expect(tRParen, "')'"); err != nil {
				return TypeDescriptor{}, err
			}
		} else if td.Kind == KindFixed {
			return TypeDescriptor{}, p.mkerr("fixed requires an explicit size")
		}
		if p.cur.kind == tLBracket {
			if err := p.parseSeqSuffix(&td); err != nil {
				return TypeDescriptor{}, err
			}
		}
		return td, nil
	}

	if p.cur.kind == tName || p.cur.kind == tCName {
		ns, local, err := p.parseQName()
		if err != nil {
			return TypeDescriptor{}, err
		}
		td := TypeDescriptor{Kind: KindRef, RefNamespace: ns, RefLocal: local}
		if p.cur.kind == tStar {
			if _, err := p.bump(); err != nil {
				return TypeDescriptor{}, err
			}
			td.IsDynamic = true
		}
		if p.cur.kind == tLBracket {
			if err := p.parseSeqSuffix(&td); err != nil {
				return TypeDescriptor{}, err
			}
		}
		return td, nil
	}

	return TypeDescriptor{}, p.mkerr("expected a type")
}

func (p *Parser) parseSeqSuffix(td *TypeDescriptor) error {
	if _, err := p.bump(); err != nil {
		return err
	}
	if _, err := p.expect(tRBracket, "']'"); err != nil {
		return err
	}
	td.IsSequence = true
	return nil
}

// parseQName consumes a tName or tCName token and splits it into
// (namespace, local).
func (p *Parser) parseQName() (ns, local string, err error) {
	if p.cur.kind != tName && p.cur.kind != tCName {
		return "", "", p.mkerr("expected a name")
	}
	t, err := p.bump()
	if err != nil {
		return "", "", err
	}
	if t.kind == tCName {
		return splitQName(string(t.literal))
	}
	return "", string(t.literal), nil
}

func qnameString(ns, local string) string {
	if ns == "" {
		return local
	}
	return ns + ":" + local
}

// parseTypeDefOrEnum disambiguates and parses what follows "name =",
// per spec.md §4.4's disambiguation rules.
func (p *Parser) parseTypeDefOrEnum(name string, annos Annotations) error {
	if _, err := p.bump(); err != nil { // consume '='
		return err
	}
	preAnnos, err := p.parseAnnotations()
	if err != nil {
		return err
	}

	if p.cur.kind == tPipe {
		return p.parseEnum(name, annos, nil, true)
	}

	if p.cur.isReservedType() {
		typ, err := p.parseTypeFrom(preAnnos)
		if err != nil {
			return err
		}
		return p.finishTypeDef(name, annos, typ)
	}

	if p.cur.kind != tName && p.cur.kind != tCName {
		return p.mkerr("expected a type, enum, or symbol after '='")
	}

	// One token of lookahead after the qname settles typedef vs enum.
	startTok := p.cur
	ns, local, err := p.parseQName()
	if err != nil {
		return err
	}

	switch p.cur.kind {
	case tStar, tLBracket:
		td := TypeDescriptor{Kind: KindRef, RefNamespace: ns, RefLocal: local, Annotations: preAnnos}
		if p.cur.kind == tStar {
			if _, err := p.bump(); err != nil {
				return err
			}
			td.IsDynamic = true
		}
		if p.cur.kind == tLBracket {
			if err := p.parseSeqSuffix(&td); err != nil {
				return err
			}
		}
		return p.finishTypeDef(name, annos, td)
	case tSlash, tPipe:
		first := &Symbol{Name: local}
		if p.cur.kind == tSlash {
			if _, err := p.bump(); err != nil {
				return err
			}
			v, err := p.expectInt("symbol value")
			if err != nil {
				return err
			}
			first.Value = v
			first.Explicit = true
		}
		return p.parseEnum(name, annos, first, false)
	default:
		// bare qname alias, e.g. `type Foo = Bar`
		_ = startTok
		td := TypeDescriptor{Kind: KindRef, RefNamespace: ns, RefLocal: local, Annotations: preAnnos}
		return p.finishTypeDef(name, annos, td)
	}
}

// parseTypeFrom parses a type whose leading reserved-type token is
// already current, folding in annotations collected before it.
func (p *Parser) parseTypeFrom(pre Annotations) (TypeDescriptor, error) {
	td, err := p.parseType()
	if err != nil {
		return TypeDescriptor{}, err
	}
	for k, v := range pre {
		td.Annotations.set(k, v)
	}
	return td, nil
}

func (p *Parser) finishTypeDef(name string, annos Annotations, typ TypeDescriptor) error {
	td := &TypeDef{Namespace: p.ns.Name, Local: name, Type: typ, Annotations: annos}
	if !p.ns.add(td) {
		return p.mkerr("duplicate definition %q", name)
	}
	return nil
}

// parseEnum implements:
//
//	enumDef := name '=' [ '|' ] symbol { '|' symbol }
//	symbol  := { annote } name [ '/' ( int | uint ) ]
//
// leadingPipeConsumed indicates that the current token is the leading
// '|' that marks a singleton/explicit-start enum; parseEnum consumes
// it before reading the first symbol. first, when
// non-nil, is a symbol already parsed by the typedef/enum lookahead.
func (p *Parser) parseEnum(name string, annos Annotations, first *Symbol, leadingPipeConsumed bool) error {
	e := &Enum{Namespace: p.ns.Name, Local: name, Annotations: annos}

	if leadingPipeConsumed {
		if _, err := p.bump(); err != nil { // consume '|'
			return err
		}
	}

	if first != nil {
		if !e.addSymbol(first) {
			return p.mkerr("duplicate symbol %q in enum %q", first.Name, name)
		}
	}

	if leadingPipeConsumed || first == nil {
		if err := p.parseOneSymbol(e); err != nil {
			return err
		}
	}

	for p.cur.kind == tPipe {
		if _, err := p.bump(); err != nil {
			return err
		}
		if err := p.parseOneSymbol(e); err != nil {
			return err
		}
	}

	if !p.ns.add(e) {
		return p.mkerr("duplicate definition %q", name)
	}
	return nil
}

func (p *Parser) parseOneSymbol(e *Enum) error {
	annos, err := p.parseAnnotations()
	if err != nil {
		return err
	}
	if p.cur.kind != tName {
		return p.mkerr("expected symbol name")
	}
	nameTok, err := p.bump()
	if err != nil {
		return err
	}
	sym := &Symbol{Name: string(nameTok.literal), Annotations: annos}
	if p.cur.kind == tSlash {
		if _, err := p.bump(); err != nil {
			return err
		}
		v, err := p.expectInt("symbol value")
		if err != nil {
			return err
		}
		sym.Value = v
		sym.Explicit = true
	}
	if !e.addSymbol(sym) {
		return p.mkerr("duplicate symbol %q in enum %q", sym.Name, e.Local)
	}
	return nil
}

// parseIncrAnnote implements:
//
//	incrAnnote := ( 'schema' | qname ) [ '.' name [ '.' 'type' ] ] '<-' annoteOrNumber { '<-' ... }
//
// targetName is the leading qname the caller already consumed while
// disambiguating a defOrAnnote; annotations collected before it are
// ignored.
func (p *Parser) parseIncrAnnote(isSchema bool, targetName string, _ Annotations) error {
	var target Definition
	var schemaWide bool

	if isSchema {
		if _, err := p.bump(); err != nil { // consume 'schema'
			return err
		}
		schemaWide = true
	} else {
		ns, local := splitQName(targetName)
		if ns == "" {
			ns = p.ns.Name
		}
		d, ok := p.schema.lookupDefinition(ns, local)
		if !ok {
			d, ok = p.schema.lookupDefinition("", local)
		}
		if !ok {
			return p.mkerr("incremental annotation targets unknown definition %q", targetName)
		}
		target = d
	}

	var fieldName string
	var targetsType bool
	for p.cur.kind == tDot {
		if _, err := p.bump(); err != nil {
			return err
		}
		if p.cur.kind != tName && !p.cur.isReservedType() && p.cur.kind != tKwType {
			return p.mkerr("expected field name or 'type' after '.'")
		}
		t, err := p.bump()
		if err != nil {
			return err
		}
		if t.kind == tKwType {
			targetsType = true
			break
		}
		fieldName = string(t.literal)
	}

	for {
		if _, err := p.expect(tArrowL, "'<-'"); err != nil {
			return err
		}
		key, val, err := p.parseAnnoteOrNumber()
		if err != nil {
			return err
		}
		p.applyIncrAnnote(schemaWide, target, fieldName, targetsType, key, val)
		if p.cur.kind != tArrowL {
			break
		}
	}
	return nil
}

// parseAnnoteOrNumber parses either "@key=value" or a bare number
// (some Blink dialects allow a bare numeric reassignment of a group/
// field id via incremental annotation; represented here as the
// reserved key "$id").
func (p *Parser) parseAnnoteOrNumber() (key, val string, err error) {
	if p.cur.kind == tAt {
		annos, err := p.parseAnnotations()
		if err != nil {
			return "", "", err
		}
		for k, v := range annos {
			return k, v, nil
		}
		return "", "", p.mkerr("expected annotation after '<-'")
	}
	if p.cur.kind == tIntLiteral {
		t, err := p.bump()
		if err != nil {
			return "", "", err
		}
		return "$id", string(t.literal), nil
	}
	return "", "", p.mkerr("expected an annotation or a number after '<-'")
}

func (p *Parser) applyIncrAnnote(schemaWide bool, target Definition, fieldName string, targetsType bool, key, val string) {
	if schemaWide {
		p.schema.schemaAnnotations.set(key, val)
		return
	}
	switch d := target.(type) {
	case *Group:
		if fieldName == "" {
			d.Annotations.set(key, val)
			return
		}
		if f, ok := d.fieldNamed(fieldName); ok {
			if targetsType {
				f.Type.Annotations.set(key, val)
			} else {
				f.Annotations.set(key, val)
			}
		}
	case *Enum:
		if fieldName == "" {
			d.Annotations.set(key, val)
			return
		}
		if s, ok := d.SymbolNamed(fieldName); ok {
			s.Annotations.set(key, val)
		}
	case *TypeDef:
		if targetsType || fieldName == "" {
			d.Type.Annotations.set(key, val)
		}
	}
}

// --- small helpers ---------------------------------------------------

func (p *Parser) expectUint(what string) (uint64, error) {
	if p.cur.kind != tIntLiteral {
		return 0, p.mkerr("expected %s", what)
	}
	t, err := p.bump()
	if err != nil {
		return 0, err
	}
	if !t.isUint {
		if t.intVal < 0 {
			return 0, p.mkerr("%s must not be negative", what)
		}
		return uint64(t.intVal), nil
	}
	return t.uintVal, nil
}

func (p *Parser) expectInt(what string) (int32, error) {
	if p.cur.kind != tIntLiteral {
		return 0, p.mkerr("expected %s", what)
	}
	t, err := p.bump()
	if err != nil {
		return 0, err
	}
	var v int64
	if t.isUint {
		v = int64(t.uintVal)
	} else {
		v = t.intVal
	}
	if v < -2147483648 || v > 2147483647 {
		return 0, p.mkerr("%s out of 32-bit signed range", what)
	}
	return int32(v), nil
}

func kindForToken(k tokenKind) Kind {
	switch k {
	case tTypeU8:
		return KindU8
	case tTypeU16:
		return KindU16
	case tTypeU32:
		return KindU32
	case tTypeU64:
		return KindU64
	case tTypeI8:
		return KindI8
	case tTypeI16:
		return KindI16
	case tTypeI32:
		return KindI32
	case tTypeI64:
		return KindI64
	case tTypeF64:
		return KindF64
	case tTypeBool:
		return KindBool
	case tTypeString:
		return KindString
	case tTypeBinary:
		return KindBinary
	case tTypeFixed:
		return KindFixed
	case tTypeDecimal:
		return KindDecimal
	case tTypeDate:
		return KindDate
	case tTypeMilliTime:
		return KindMilliTime
	case tTypeNanoTime:
		return KindNanoTime
	case tTypeTimeOfDayMilli:
		return KindTimeOfDayMilli
	case tTypeTimeOfDayNano:
		return KindTimeOfDayNano
	case tTypeObject:
		return KindObject
	}
	return KindRef
}

func typeKeyword(k tokenKind) string {
	for word, kind := range reservedWords {
		if kind == k {
			return word
		}
	}
	return ""
}
