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

import (
	"encoding/binary"

	"github.com/dchest/siphash"
)

// groupIndex maps a wire group id to its *Group for dynamic-group
// dispatch (spec.md §4.7). spec.md explicitly allows either a linear
// scan or a hash index; this is a siphash-keyed bucket table, grounded
// in ion/zion/hash.go and ion/zion/zll/hash.go's keyed-hash lookup
// tables (there, hashing symbol/column names for zion's column index;
// here, hashing the group id itself to spread entries across buckets
// without depending on Go's built-in map for a hot decode-path lookup).
type groupIndex struct {
	k0, k1  uint64
	buckets [][]idEntry
	mask    uint64
}

type idEntry struct {
	id    uint64
	group *Group
}

// fixed, arbitrary siphash key: the index only needs to avoid
// pathological bucket collisions for well-formed schemas, not to resist
// an adversarial id chooser, so a process-wide constant key is fine.
const (
	groupIndexK0 = 0x5343484d41494e00
	groupIndexK1 = 0x424c494e4b494400
)

func newGroupIndex(groups []*Group) *groupIndex {
	n := 1
	for n < len(groups)*2 {
		n <<= 1
	}
	if n < 8 {
		n = 8
	}
	gi := &groupIndex{k0: groupIndexK0, k1: groupIndexK1, mask: uint64(n - 1)}
	gi.buckets = make([][]idEntry, n)
	for _, g := range groups {
		if g.ID == nil {
			continue
		}
		gi.insert(*g.ID, g)
	}
	return gi
}

func (gi *groupIndex) bucketFor(id uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], id)
	h := siphash.Hash(gi.k0, gi.k1, buf[:])
	return h & gi.mask
}

func (gi *groupIndex) insert(id uint64, g *Group) {
	b := gi.bucketFor(id)
	gi.buckets[b] = append(gi.buckets[b], idEntry{id: id, group: g})
}

func (gi *groupIndex) lookup(id uint64) (*Group, bool) {
	b := gi.bucketFor(id)
	for _, e := range gi.buckets[b] {
		if e.id == id {
			return e.group, true
		}
	}
	return nil, false
}
