// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package dwat

import (
	"debug/dwarf"
	"fmt"
)

// Index operations scan every compile unit once via ForEachDieWithTag and
// build name- or key-indexed maps over the results.
// Go generics cannot construct an arbitrary T from a type parameter alone,
// so each operation takes the DWARF tag to scan for plus a constructor
// function — the same entryToType-style wrap tagToConstructor already uses
// internally (handle.go), exposed here for the caller's chosen variant.

// Lookup scans every compile unit for the first DIE tagged tag whose
// DW_AT_name equals name, returning it wrapped via ctor. Returns
// ErrNameNotFound if no match exists anywhere in the program.
func Lookup[T Tagged](r *Reader, tag dwarf.Tag, ctor func(TypeRef, *Reader) T, name string) (T, error) {
	var zero T
	var found T
	ok := false

	err := r.ForEachDieWithTag(tag, func(cu *CU, entry *dwarf.Entry, ref TypeRef) (bool, error) {
		n, err := nameOfEntry(entry)
		if err != nil {
			return false, nil // unnamed DIEs of this tag are simply skipped
		}
		if n == name {
			found = ctor(ref, r)
			ok = true
			return Stop, nil
		}
		return false, nil
	})
	if err != nil {
		return zero, err
	}
	if !ok {
		return zero, ErrNameNotFound
	}
	return found, nil
}

// NamedMap scans every compile unit for DIEs tagged tag and returns a map
// from name to the first handle seen under that name — a later DIE sharing
// a name already present does not overwrite the first, matching
// original_source/src/dwarf.rs's named_map use of HashMap::entry().or_insert.
func NamedMap[T Tagged](r *Reader, tag dwarf.Tag, ctor func(TypeRef, *Reader) T) (map[string]T, error) {
	out := make(map[string]T)
	err := r.ForEachDieWithTag(tag, func(cu *CU, entry *dwarf.Entry, ref TypeRef) (bool, error) {
		n, err := nameOfEntry(entry)
		if err != nil {
			return false, nil
		}
		if _, exists := out[n]; !exists {
			out[n] = ctor(ref, r)
		}
		return false, nil
	})
	return out, err
}

// NamedList scans every compile unit for DIEs tagged tag and returns every
// handle found, keyed by name, preserving every duplicate (unlike NamedMap) —
// used by callers that need every cross-CU occurrence of a name, e.g. a
// struct with the same name defined differently in two translation units.
func NamedList[T Tagged](r *Reader, tag dwarf.Tag, ctor func(TypeRef, *Reader) T) (map[string][]T, error) {
	out := make(map[string][]T)
	err := r.ForEachDieWithTag(tag, func(cu *CU, entry *dwarf.Entry, ref TypeRef) (bool, error) {
		n, err := nameOfEntry(entry)
		if err != nil {
			return false, nil
		}
		out[n] = append(out[n], ctor(ref, r))
		return false, nil
	})
	return out, err
}

// StructKey is the fine-grained struct-identity key: two struct DIEs
// denote "the same" struct only if they share a name, a byte size, and the
// exact ordered list of (member name, member offset) pairs, where the
// offset is each member's DW_AT_data_member_location — a layout offset,
// not a string-table offset. This disambiguates two same-named structs
// that differ only in member placement across translation units, grounded
// on original_source/src/dwarf.rs's StructKey.
type StructKey struct {
	Name     string
	ByteSize uint64
	Members  string // joined, delimiter-separated "name@offset" pairs, order-preserving
}

func memberKeyPart(name string, offset uint64, offErr error) string {
	if offErr != nil {
		return name + "@?"
	}
	return fmt.Sprintf("%s@%d", name, offset)
}

func structKeyOf(s Struct) (StructKey, error) {
	name, err := s.Name()
	if err != nil {
		return StructKey{}, err
	}
	byteSize, err := s.ByteSize()
	if err != nil {
		return StructKey{}, err
	}
	members, err := s.Members()
	if err != nil {
		return StructKey{}, err
	}
	joined := ""
	for i, m := range members {
		n, err := m.Name()
		if err != nil {
			n = "<anonymous>"
		}
		offset, offErr := m.MemberLocation()
		if i > 0 {
			joined += "\x1f"
		}
		joined += memberKeyPart(n, offset, offErr)
	}
	return StructKey{Name: name, ByteSize: byteSize, Members: joined}, nil
}

// FGStructMap is the fine-grained struct index: StructKey to the single
// canonical Struct handle observed for that key. This index is built using
// CU-scoped ("U") accessors throughout, since it touches every member of
// every struct in the program and the non-U path's repeated CU
// re-validation would dominate its cost.
func FGStructMap(r *Reader) (map[StructKey]Struct, error) {
	out := make(map[StructKey]Struct)
	err := r.ForEachDieWithTag(dwarf.TagStructType, func(cu *CU, entry *dwarf.Entry, ref TypeRef) (bool, error) {
		s := Struct{ref, r}
		key, err := structKeyU(cu, s)
		if err != nil {
			return false, nil // a struct whose key can't be derived is skipped, not fatal
		}
		if _, exists := out[key]; !exists {
			out[key] = s
		}
		return false, nil
	})
	return out, err
}

// structKeyU computes a StructKey entirely through cu-scoped accessors,
// never re-resolving the owning compile unit for each member.
func structKeyU(cu *CU, s Struct) (StructKey, error) {
	name, err := s.NameU(cu)
	if err != nil {
		return StructKey{}, err
	}
	byteSize, err := s.ByteSizeU(cu)
	if err != nil {
		return StructKey{}, err
	}
	members, err := s.MembersU(cu)
	if err != nil {
		return StructKey{}, err
	}
	joined := ""
	for i, m := range members {
		n, err := m.NameU(cu)
		if err != nil {
			n = "<anonymous>"
		}
		offset, offErr := m.MemberLocationU(cu)
		if i > 0 {
			joined += "\x1f"
		}
		joined += memberKeyPart(n, offset, offErr)
	}
	return StructKey{Name: name, ByteSize: byteSize, Members: joined}, nil
}
