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
	"fmt"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/exp/slices"
)

// Fingerprint returns a stable structural hash of the finalised
// definition graph: same definitions (by name, field order, types, ids)
// always hash the same, independent of map iteration order. Grounded
// in the content-hash-for-cache-key pattern fsenv.go and
// ion/blockfmt/index.go use (there, hashing file contents to key a
// block cache; here, hashing the schema's shape so a consumer can key
// a compiled-schema cache by content instead of by source text).
//
// Fingerprint only works on a finalised schema, since unresolved
// references would make the hash depend on resolution order rather
// than on content.
func (s *Schema) Fingerprint() (string, error) {
	if !s.finalised {
		return "", fmt.Errorf("schema: Fingerprint requires a finalised schema")
	}
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	idStr := func(id *uint64) string {
		if id == nil {
			return "none"
		}
		return fmt.Sprint(*id)
	}

	names := make([]string, 0, len(s.Namespaces))
	byName := make(map[string]*Namespace, len(s.Namespaces))
	for _, ns := range s.Namespaces {
		names = append(names, ns.Name)
		byName[ns.Name] = ns
	}
	slices.Sort(names)

	for _, name := range names {
		ns := byName[name]
		fmt.Fprintf(h, "ns %s\n", ns.Name)
		for _, d := range ns.Definitions {
			switch def := d.(type) {
			case *Group:
				fmt.Fprintf(h, "group %s id=%s super=%s\n", def.Local, idStr(def.ID), def.SuperName)
				for _, f := range def.Fields {
					fmt.Fprintf(h, "  field %s id=%s opt=%v seq=%v kind=%s size=%d\n",
						f.Name, idStr(f.ID), f.Optional, f.Type.IsSequence, f.Type.Kind, f.Type.Size)
				}
			case *Enum:
				fmt.Fprintf(h, "enum %s\n", def.Local)
				for _, sym := range def.Symbols {
					fmt.Fprintf(h, "  symbol %s=%d\n", sym.Name, sym.Value)
				}
			case *TypeDef:
				fmt.Fprintf(h, "typedef %s kind=%s size=%d seq=%v dyn=%v\n",
					def.Local, def.Type.Kind, def.Type.Size, def.Type.IsSequence, def.Type.IsDynamic)
			}
		}
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
