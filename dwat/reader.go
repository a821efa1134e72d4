// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package dwat

import (
	"debug/dwarf"
)

// Reader is the only component that speaks raw DWARF. It is immutable
// after construction and safe to use concurrently from multiple
// goroutines — every operation only reads through the underlying
// *dwarf.Data.
type Reader struct {
	sections *Sections
}

// NewReader wraps already-loaded Sections (either shape from sections.go)
// in a Reader.
func NewReader(sections *Sections) *Reader {
	return &Reader{sections: sections}
}

// CU is a resolved compile unit: the compile_unit DIE itself plus enough
// state to decode further entries within it without re-validating the CU.
// This is the CU-scoped half of the "u_ vs non-u_" duality, grounded on
// original_source/src/dwarf.rs's `impl DwarfContext for CU<'_>` (the fast
// path: entry_context calls self.entry(loc.offset) directly with no
// re-resolution).
type CU struct {
	reader *Reader
	offset dwarf.Offset
	root   *dwarf.Entry
}

// Offset returns the compile_unit DIE's absolute offset, usable as a
// TypeRef's CUOffset.
func (cu *CU) Offset() dwarf.Offset { return cu.offset }

// Root returns the compile_unit DIE itself.
func (cu *CU) Root() *dwarf.Entry { return cu.root }

// Entry reads the DIE at off without first validating that off's owning
// compile unit is cu — that validation already happened once when cu was
// constructed. This is the primitive every "U"-suffixed type-graph accessor
// calls; hot loops (struct members, enumerators, the fine-grained struct
// index key) MUST route through it rather than through Reader.WithDie,
// which re-resolves the CU on every call.
func (cu *CU) Entry(off dwarf.Offset) (*dwarf.Entry, error) {
	r := cu.reader.sections.data.Reader()
	r.Seek(off)
	entry, err := r.Next()
	if err != nil {
		return nil, wrapf(ErrDieNotFound, "offset %v: %v", off, err)
	}
	if entry == nil {
		return nil, wrapf(ErrDieNotFound, "offset %v", off)
	}
	return entry, nil
}

// children returns the direct child entries of parent for which keep
// returns true, stopping early if stopAtFirstOther is true and a child
// fails keep. This is the shared DFS-over-immediate-children primitive
// behind HasMembers, enumerator listing, and subroutine parameter listing
//.
func (cu *CU) children(parent *dwarf.Entry, keep func(*dwarf.Entry) bool, stopAtFirstOther bool) ([]*dwarf.Entry, error) {
	if !parent.Children {
		return nil, nil
	}

	r := cu.reader.sections.data.Reader()
	r.Seek(parent.Offset)
	if _, err := r.Next(); err != nil {
		return nil, wrapf(ErrDieNotFound, "re-reading parent at %v: %v", parent.Offset, err)
	}

	var out []*dwarf.Entry
	for {
		e, err := r.Next()
		if err != nil {
			return nil, wrapf(ErrDieNotFound, "walking children of %v: %v", parent.Offset, err)
		}
		if e == nil || e.Tag == 0 {
			break
		}
		if keep(e) {
			out = append(out, e)
		} else if stopAtFirstOther {
			break
		}
		if e.Children {
			r.SkipChildren()
		}
	}
	return out, nil
}

// WithUnit resolves ref's owning compile unit and invokes fn with it. It
// always re-seeks and re-validates the CU — the ergonomic, reader-scoped
// wrapper. Every "U"-suffixed accessor's non-"U" counterpart is a one-line
// call to WithUnit.
func (r *Reader) WithUnit(ref TypeRef, fn func(cu *CU) error) error {
	rd := r.sections.data.Reader()
	rd.Seek(ref.CUOffset)
	entry, err := rd.Next()
	if err != nil {
		return wrapf(ErrCuNotFound, "offset %v: %v", ref.CUOffset, err)
	}
	if entry == nil || entry.Tag != dwarf.TagCompileUnit {
		return wrapf(ErrCuNotFound, "offset %v is not a compile_unit", ref.CUOffset)
	}
	return fn(&CU{reader: r, offset: ref.CUOffset, root: entry})
}

// WithDie resolves ref's CU first (never caching it across calls, since
// unit resolution reads the abbreviation table, which the caller might
// also be touching concurrently) and then invokes fn with the DIE at
// ref.EntryOffset.
func (r *Reader) WithDie(ref TypeRef, fn func(cu *CU, entry *dwarf.Entry) error) error {
	return r.WithUnit(ref, func(cu *CU) error {
		entry, err := cu.Entry(ref.EntryOffset)
		if err != nil {
			return err
		}
		return fn(cu, entry)
	})
}

// Stop is returned by a ForEachDieWithTag callback's second return value to
// request early termination of the scan.
const Stop = true

// ForEachDieWithTag walks every compile unit in document order and invokes
// fn for every DIE bearing tag. When tag is structure_type or union_type,
// entries with DW_AT_declaration set are silently skipped — this
// declaration filter applies at this indexing boundary only; for any
// other tag no such filtering happens here, since callers scanning for
// other tags may want forward-declared entries too.
//
// fn returns (stop, err); a non-nil err aborts the scan immediately, and
// stop == Stop ends the scan after fn returns without error. This single
// per-candidate-DIE declaration check (not nested inside any per-attribute
// loop) is deliberately grounded on the corrected
// original_source/src/dwarf.rs::for_each_item, not on the buggy variant in
// original_source/src/lib.rs whose declaration filter lived inside an
// inner attribute loop and fired the callback once per attribute.
func (r *Reader) ForEachDieWithTag(tag dwarf.Tag, fn func(cu *CU, entry *dwarf.Entry, ref TypeRef) (stop bool, err error)) error {
	rd := r.sections.data.Reader()
	var curCU dwarf.Offset
	var curCURoot *dwarf.Entry

	for {
		entry, err := rd.Next()
		if err != nil {
			return wrapf(ErrContainerParseError, "scanning debug_info: %v", err)
		}
		if entry == nil {
			return nil
		}

		if entry.Tag == dwarf.TagCompileUnit {
			curCU = entry.Offset
			curCURoot = entry
		}

		if entry.Tag != tag {
			continue
		}

		if (tag == dwarf.TagStructType || tag == dwarf.TagUnionType) && isDeclaration(entry) {
			continue
		}

		ref := TypeRef{CUOffset: curCU, EntryOffset: entry.Offset}
		cu := &CU{reader: r, offset: curCU, root: curCURoot}

		stop, err := fn(cu, entry, ref)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
}

// isDeclaration reports whether entry carries DW_AT_declaration = true.
func isDeclaration(entry *dwarf.Entry) bool {
	v := entry.Val(dwarf.AttrDeclaration)
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	// DW_FORM_flag_present and similar forms decode to a non-bool truthy
	// value in some producers; treat any non-nil, non-false value as set.
	return v != false
}
