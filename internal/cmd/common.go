// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"debug/dwarf"

	"github.com/dotandev/gopahole/dwat"
)

const tagStructType = dwarf.TagStructType

// lookupOtherTags tries union, enum, typedef and base-type lookups in turn after a
// struct lookup misses, since `godwat lookup` accepts any named type, not
// just structs.
func lookupOtherTags(r *dwat.Reader, name string) (dwat.Type, bool) {
	if u, err := dwat.Lookup(r, dwarf.TagUnionType, dwat.NewUnion, name); err == nil {
		return u, true
	}
	if e, err := dwat.Lookup(r, dwarf.TagEnumerationType, dwat.NewEnum, name); err == nil {
		return e, true
	}
	if t, err := dwat.Lookup(r, dwarf.TagTypedef, dwat.NewTypedef, name); err == nil {
		return t, true
	}
	if b, err := dwat.Lookup(r, dwarf.TagBaseType, dwat.NewBase, name); err == nil {
		return b, true
	}
	return nil, false
}
