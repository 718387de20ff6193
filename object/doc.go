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

// Package object is the schema-driven object model and compact-form
// codec built on top of package schema (the definition graph) and
// package compact (the wire-level VLC/stream primitives). An Object is
// a runtime instance of a schema.Group: a set of named field slots,
// set and read through Value, and walked by the encoder/decoder in the
// inheritance order schema.Group.AllFields reports.
package object
