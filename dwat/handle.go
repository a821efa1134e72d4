// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package dwat

import "debug/dwarf"

// TypeRef is an opaque, copyable handle to a DWARF Debugging Information
// Entry: a compile-unit coordinate plus an entry coordinate within
// debug_info. It owns nothing and is only meaningful against the Reader
// that produced it. Two TypeRefs compare equal (via ==) iff they designate
// the same DIE.
//
// Unlike the gimli-based reference implementation, Go's debug/dwarf already
// resolves intra-unit attribute references to absolute offsets into
// debug_info, so EntryOffset below is an absolute offset rather than a
// unit-relative one; CUOffset is the absolute offset of the owning
// compile_unit DIE, kept distinct so the CU-scoped ("U"-suffixed) accessors
// can re-enter an already-resolved CU without re-validating it.
type TypeRef struct {
	CUOffset    dwarf.Offset
	EntryOffset dwarf.Offset
}

// Tagged is implemented by every concrete type handle; it reports the DWARF
// tag of the DIE the handle designates.
type Tagged interface {
	Ref() TypeRef
	Tag() dwarf.Tag
}

// Type is the tagged-variant handle over the supported DWARF type tags:
// Struct, Array, Enum, Pointer, Subroutine, Typedef, Union, Base, Const,
// Volatile, Restrict, Variable. Each concrete implementation wraps a single
// TypeRef and the Reader it was produced from.
type Type interface {
	Tagged
}

// Named is implemented by handles whose DIE carries DW_AT_name.
type Named interface {
	Tagged
	// Name resolves the CU first, then decodes the name.
	Name() (string, error)
	// NameU assumes cu is already the resolved owning compile unit.
	NameU(cu *CU) (string, error)
}

// InnerType is implemented by handles whose DIE carries DW_AT_type
// referencing another DIE in the same compile unit.
type InnerType interface {
	Tagged
	Inner() (Type, error)
	InnerU(cu *CU) (Type, error)
}

// HasMembers is implemented by handles whose DIE has DW_TAG_member children
// (Struct, Union).
type HasMembers interface {
	Tagged
	Members() ([]Member, error)
	MembersU(cu *CU) ([]Member, error)
}

// ByteSizer is implemented by every Type variant; byte-size derivation
// differs per tag.
type ByteSizer interface {
	Tagged
	ByteSize() (uint64, error)
	ByteSizeU(cu *CU) (uint64, error)
}

// tagToConstructor maps a DWARF type tag to the Go type it decodes into.
// Anything not in this table encountered in a type-reference position is
// ErrUnimplemented (an "unhandled tag"), matching the corrected
// (non-panicking) behavior of original_source/src/types.rs's entry_to_type,
// not the panicking unimplemented!() of the oldest original_source/src/lib.rs
// variant.
var tagToConstructor = map[dwarf.Tag]func(TypeRef, *Reader) Type{
	dwarf.TagStructType:       func(ref TypeRef, r *Reader) Type { return Struct{ref, r} },
	dwarf.TagArrayType:        func(ref TypeRef, r *Reader) Type { return Array{ref, r} },
	dwarf.TagEnumerationType:  func(ref TypeRef, r *Reader) Type { return Enum{ref, r} },
	dwarf.TagPointerType:      func(ref TypeRef, r *Reader) Type { return Pointer{ref, r} },
	dwarf.TagSubroutineType:   func(ref TypeRef, r *Reader) Type { return Subroutine{ref, r} },
	dwarf.TagTypedef:          func(ref TypeRef, r *Reader) Type { return Typedef{ref, r} },
	dwarf.TagUnionType:        func(ref TypeRef, r *Reader) Type { return Union{ref, r} },
	dwarf.TagBaseType:         func(ref TypeRef, r *Reader) Type { return Base{ref, r} },
	dwarf.TagConstType:        func(ref TypeRef, r *Reader) Type { return Const{ref, r} },
	dwarf.TagVolatileType:     func(ref TypeRef, r *Reader) Type { return Volatile{ref, r} },
	dwarf.TagRestrictType:     func(ref TypeRef, r *Reader) Type { return Restrict{ref, r} },
	dwarf.TagVariable:         func(ref TypeRef, r *Reader) Type { return Variable{ref, r} },
}

// entryToType decodes entry (the DIE at ref) into its tagged Type variant.
func entryToType(r *Reader, ref TypeRef, entry *dwarf.Entry) (Type, error) {
	ctor, ok := tagToConstructor[entry.Tag]
	if !ok {
		return nil, wrapf(ErrUnimplemented, "unhandled type tag %v at offset %v", entry.Tag, ref.EntryOffset)
	}
	return ctor(ref, r), nil
}
