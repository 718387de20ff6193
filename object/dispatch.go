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

import (
	"github.com/blinkschema/blink/compact"
	"github.com/blinkschema/blink/schema"
)

// Dispatcher decodes a stream of top-level dynamic-group messages and
// routes each to a handler registered for its wire group id, the way
// original_source's blink_event_decoder dispatches a decoded group to
// a per-type callback instead of handing every caller a generic
// Object and making them switch on the group id themselves.
type Dispatcher struct {
	schema   *schema.Schema
	handlers map[uint64]func(*Object) error
	fallback func(id uint64, obj *Object) error
}

// NewDispatcher builds a Dispatcher that resolves group ids against
// sch.
func NewDispatcher(sch *schema.Schema) *Dispatcher {
	return &Dispatcher{schema: sch, handlers: make(map[uint64]func(*Object) error)}
}

// On registers fn to run whenever a decoded message's group matches
// qname (a group name, "namespace:local" or "local").
func (d *Dispatcher) On(qname string, fn func(*Object) error) error {
	g, ok := d.schema.GroupByQualifiedName(qname)
	if !ok {
		return accessErrf(qname, "", "no such group in schema")
	}
	if !g.HasID() {
		return accessErrf(qname, "", "group has no wire id, cannot be dispatched on")
	}
	d.handlers[*g.ID] = fn
	return nil
}

// OnUnknown registers a fallback invoked for any message whose group
// id has no handler registered via On (including ids the schema
// itself does not recognise, which would otherwise be an
// UnknownGroupError).
func (d *Dispatcher) OnUnknown(fn func(id uint64, obj *Object) error) {
	d.fallback = fn
}

// Dispatch decodes one top-level message from s and invokes the
// matching handler. If the message's group id is not in the schema at
// all, obj is nil and only the id is available to OnUnknown.
func (d *Dispatcher) Dispatch(s compact.Stream) error {
	size, isNull, err := compact.ReadUnsignedVLC(s)
	if err != nil {
		return err
	}
	if isNull {
		return accessErrf("", "", "top-level message frame was null")
	}
	if size > compact.MaxLength {
		return compact.ErrTooLarge
	}
	payload, err := s.Read(int(size))
	if err != nil {
		return err
	}
	sub := compact.NewBufferStream(payload)
	id, idNull, err := compact.ReadUnsignedVLC(sub)
	if err != nil {
		return err
	}
	if idNull {
		return accessErrf("", "", "dynamic group frame is missing its group id")
	}

	g, ok := d.schema.GroupByID(id)
	if !ok {
		if d.fallback != nil {
			return d.fallback(id, nil)
		}
		return &UnknownGroupError{ID: id}
	}

	obj := New(g)
	if err := decodeFields(sub, d.schema, obj); err != nil {
		return err
	}

	if fn, ok := d.handlers[id]; ok {
		return fn(obj)
	}
	if d.fallback != nil {
		return d.fallback(id, obj)
	}
	return nil
}
