// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package dwat

import "debug/dwarf"

// Each concrete Type variant is a value wrapper around a TypeRef and the
// Reader that produced it — "Copy-cheap" handles that own nothing. The
// capability a variant implements (Named, InnerType, HasMembers) is
// exactly the set its DWARF tag assigns it.

type Struct struct {
	ref TypeRef
	r   *Reader
}
type Array struct {
	ref TypeRef
	r   *Reader
}
type Enum struct {
	ref TypeRef
	r   *Reader
}
type Pointer struct {
	ref TypeRef
	r   *Reader
}
type Subroutine struct {
	ref TypeRef
	r   *Reader
}
type Typedef struct {
	ref TypeRef
	r   *Reader
}
type Union struct {
	ref TypeRef
	r   *Reader
}
type Base struct {
	ref TypeRef
	r   *Reader
}
type Const struct {
	ref TypeRef
	r   *Reader
}
type Volatile struct {
	ref TypeRef
	r   *Reader
}
type Restrict struct {
	ref TypeRef
	r   *Reader
}
type Variable struct {
	ref TypeRef
	r   *Reader
}

// Member, FormalParameter, Enumerator, CompileUnit and Subprogram are
// additional handle kinds produced by the core but not part of the Type
// tagged-variant set.
type Member struct {
	ref TypeRef
	r   *Reader
}
type FormalParameter struct {
	ref TypeRef
	r   *Reader
}
type Enumerator struct {
	ref TypeRef
	r   *Reader
}
type CompileUnit struct {
	ref TypeRef
	r   *Reader
}
type Subprogram struct {
	ref TypeRef
	r   *Reader
}

func NewStruct(ref TypeRef, r *Reader) Struct { return Struct{ref, r} }
func NewArray(ref TypeRef, r *Reader) Array   { return Array{ref, r} }
func NewEnum(ref TypeRef, r *Reader) Enum     { return Enum{ref, r} }
func NewPointer(ref TypeRef, r *Reader) Pointer       { return Pointer{ref, r} }
func NewSubroutine(ref TypeRef, r *Reader) Subroutine { return Subroutine{ref, r} }
func NewTypedef(ref TypeRef, r *Reader) Typedef       { return Typedef{ref, r} }
func NewUnion(ref TypeRef, r *Reader) Union           { return Union{ref, r} }
func NewBase(ref TypeRef, r *Reader) Base             { return Base{ref, r} }
func NewConst(ref TypeRef, r *Reader) Const           { return Const{ref, r} }
func NewVolatile(ref TypeRef, r *Reader) Volatile     { return Volatile{ref, r} }
func NewRestrict(ref TypeRef, r *Reader) Restrict     { return Restrict{ref, r} }
func NewVariable(ref TypeRef, r *Reader) Variable     { return Variable{ref, r} }

func (s Struct) Ref() TypeRef     { return s.ref }
func (s Struct) Tag() dwarf.Tag   { return dwarf.TagStructType }
func (a Array) Ref() TypeRef      { return a.ref }
func (a Array) Tag() dwarf.Tag    { return dwarf.TagArrayType }
func (e Enum) Ref() TypeRef       { return e.ref }
func (e Enum) Tag() dwarf.Tag     { return dwarf.TagEnumerationType }
func (p Pointer) Ref() TypeRef    { return p.ref }
func (p Pointer) Tag() dwarf.Tag  { return dwarf.TagPointerType }
func (s Subroutine) Ref() TypeRef   { return s.ref }
func (s Subroutine) Tag() dwarf.Tag { return dwarf.TagSubroutineType }
func (t Typedef) Ref() TypeRef    { return t.ref }
func (t Typedef) Tag() dwarf.Tag  { return dwarf.TagTypedef }
func (u Union) Ref() TypeRef      { return u.ref }
func (u Union) Tag() dwarf.Tag    { return dwarf.TagUnionType }
func (b Base) Ref() TypeRef       { return b.ref }
func (b Base) Tag() dwarf.Tag     { return dwarf.TagBaseType }
func (c Const) Ref() TypeRef      { return c.ref }
func (c Const) Tag() dwarf.Tag    { return dwarf.TagConstType }
func (v Volatile) Ref() TypeRef   { return v.ref }
func (v Volatile) Tag() dwarf.Tag { return dwarf.TagVolatileType }
func (r Restrict) Ref() TypeRef   { return r.ref }
func (r Restrict) Tag() dwarf.Tag { return dwarf.TagRestrictType }
func (v Variable) Ref() TypeRef   { return v.ref }
func (v Variable) Tag() dwarf.Tag { return dwarf.TagVariable }
func (m Member) Ref() TypeRef     { return m.ref }
func (m Member) Tag() dwarf.Tag   { return dwarf.TagMember }
func (f FormalParameter) Ref() TypeRef   { return f.ref }
func (f FormalParameter) Tag() dwarf.Tag { return dwarf.TagFormalParameter }
func (e Enumerator) Ref() TypeRef   { return e.ref }
func (e Enumerator) Tag() dwarf.Tag { return dwarf.TagEnumerator }
func (c CompileUnit) Ref() TypeRef   { return c.ref }
func (c CompileUnit) Tag() dwarf.Tag { return dwarf.TagCompileUnit }
func (s Subprogram) Ref() TypeRef   { return s.ref }
func (s Subprogram) Tag() dwarf.Tag { return dwarf.TagSubprogram }

// --- shared attribute-decoding helpers -------------------------------------

// nameOfEntry decodes DW_AT_name. debug/dwarf already resolves all three
// string representations a DWARF producer might use (inline DW_FORM_string,
// DW_FORM_strp into debug_str, DW_FORM_line_strp into debug_line_str) into
// a plain Go string before this function ever sees the value, so no
// per-form branching is needed here.
func nameOfEntry(entry *dwarf.Entry) (string, error) {
	v := entry.Val(dwarf.AttrName)
	if v == nil {
		return "", ErrNameNotFound
	}
	s, ok := v.(string)
	if !ok {
		return "", wrapf(ErrInvalidAttribute, "DW_AT_name has non-string form")
	}
	return s, nil
}

// innerTypeOfEntry decodes DW_AT_type and resolves the referenced DIE
// within cu into its tagged Type variant.
func innerTypeOfEntry(cu *CU, entry *dwarf.Entry) (Type, error) {
	v := entry.Val(dwarf.AttrType)
	if v == nil {
		return nil, ErrTypeNotFound
	}
	off, ok := v.(dwarf.Offset)
	if !ok {
		return nil, wrapf(ErrInvalidAttribute, "DW_AT_type has non-reference form")
	}
	target, err := cu.Entry(off)
	if err != nil {
		return nil, err
	}
	ref := TypeRef{CUOffset: cu.offset, EntryOffset: off}
	return entryToType(cu.reader, ref, target)
}

func byteSizeAttr(entry *dwarf.Entry) (uint64, bool) {
	v := entry.Val(dwarf.AttrByteSize)
	if v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case int64:
		return uint64(n), true
	case uint64:
		return n, true
	default:
		return 0, false
	}
}

func alignmentAttr(entry *dwarf.Entry) (uint64, bool) {
	v := entry.Val(dwarf.AttrAlignment)
	if v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case int64:
		return uint64(n), true
	case uint64:
		return n, true
	default:
		return 0, false
	}
}

// --- Named ------------------------------------------------------------------

func (s Struct) Name() (string, error) { return namedReader(s.r, s.ref, s.NameU) }
func (s Struct) NameU(cu *CU) (string, error) {
	e, err := cu.Entry(s.ref.EntryOffset)
	if err != nil {
		return "", err
	}
	return nameOfEntry(e)
}

func (e Enum) Name() (string, error) { return namedReader(e.r, e.ref, e.NameU) }
func (e Enum) NameU(cu *CU) (string, error) {
	entry, err := cu.Entry(e.ref.EntryOffset)
	if err != nil {
		return "", err
	}
	return nameOfEntry(entry)
}

func (t Typedef) Name() (string, error) { return namedReader(t.r, t.ref, t.NameU) }
func (t Typedef) NameU(cu *CU) (string, error) {
	entry, err := cu.Entry(t.ref.EntryOffset)
	if err != nil {
		return "", err
	}
	return nameOfEntry(entry)
}

func (u Union) Name() (string, error) { return namedReader(u.r, u.ref, u.NameU) }
func (u Union) NameU(cu *CU) (string, error) {
	entry, err := cu.Entry(u.ref.EntryOffset)
	if err != nil {
		return "", err
	}
	return nameOfEntry(entry)
}

func (b Base) Name() (string, error) { return namedReader(b.r, b.ref, b.NameU) }
func (b Base) NameU(cu *CU) (string, error) {
	entry, err := cu.Entry(b.ref.EntryOffset)
	if err != nil {
		return "", err
	}
	return nameOfEntry(entry)
}

func (m Member) Name() (string, error) { return namedReader(m.r, m.ref, m.NameU) }
func (m Member) NameU(cu *CU) (string, error) {
	entry, err := cu.Entry(m.ref.EntryOffset)
	if err != nil {
		return "", err
	}
	return nameOfEntry(entry)
}

func (v Variable) Name() (string, error) { return namedReader(v.r, v.ref, v.NameU) }
func (v Variable) NameU(cu *CU) (string, error) {
	entry, err := cu.Entry(v.ref.EntryOffset)
	if err != nil {
		return "", err
	}
	return nameOfEntry(entry)
}

// namedReader is the reader-scoped wrapper shared by every Named
// implementation: resolve the owning CU, then delegate to the U-suffixed
// form. Every accessor needs both a reader-scoped and CU-scoped form;
// centralizing the wrapper keeps the per-type boilerplate to one line each.
func namedReader(r *Reader, ref TypeRef, u func(*CU) (string, error)) (string, error) {
	var out string
	var outErr error
	if err := r.WithUnit(ref, func(cu *CU) error {
		out, outErr = u(cu)
		return nil
	}); err != nil {
		return "", err
	}
	return out, outErr
}

// --- InnerType ----------------------------------------------------------------

func (a Array) Inner() (Type, error) { return innerReader(a.r, a.ref, a.InnerU) }
func (a Array) InnerU(cu *CU) (Type, error) {
	entry, err := cu.Entry(a.ref.EntryOffset)
	if err != nil {
		return nil, err
	}
	return innerTypeOfEntry(cu, entry)
}

func (p Pointer) Inner() (Type, error) { return innerReader(p.r, p.ref, p.InnerU) }
func (p Pointer) InnerU(cu *CU) (Type, error) {
	entry, err := cu.Entry(p.ref.EntryOffset)
	if err != nil {
		return nil, err
	}
	return innerTypeOfEntry(cu, entry)
}

// Subroutine's InnerType is its return type.
func (s Subroutine) Inner() (Type, error) { return innerReader(s.r, s.ref, s.InnerU) }
func (s Subroutine) InnerU(cu *CU) (Type, error) {
	entry, err := cu.Entry(s.ref.EntryOffset)
	if err != nil {
		return nil, err
	}
	return innerTypeOfEntry(cu, entry)
}

func (t Typedef) Inner() (Type, error) { return innerReader(t.r, t.ref, t.InnerU) }
func (t Typedef) InnerU(cu *CU) (Type, error) {
	entry, err := cu.Entry(t.ref.EntryOffset)
	if err != nil {
		return nil, err
	}
	return innerTypeOfEntry(cu, entry)
}

func (c Const) Inner() (Type, error) { return innerReader(c.r, c.ref, c.InnerU) }
func (c Const) InnerU(cu *CU) (Type, error) {
	entry, err := cu.Entry(c.ref.EntryOffset)
	if err != nil {
		return nil, err
	}
	return innerTypeOfEntry(cu, entry)
}

func (v Volatile) Inner() (Type, error) { return innerReader(v.r, v.ref, v.InnerU) }
func (v Volatile) InnerU(cu *CU) (Type, error) {
	entry, err := cu.Entry(v.ref.EntryOffset)
	if err != nil {
		return nil, err
	}
	return innerTypeOfEntry(cu, entry)
}

func (r Restrict) Inner() (Type, error) { return innerReader(r.r, r.ref, r.InnerU) }
func (r Restrict) InnerU(cu *CU) (Type, error) {
	entry, err := cu.Entry(r.ref.EntryOffset)
	if err != nil {
		return nil, err
	}
	return innerTypeOfEntry(cu, entry)
}

func (v Variable) Inner() (Type, error) { return innerReader(v.r, v.ref, v.InnerU) }
func (v Variable) InnerU(cu *CU) (Type, error) {
	entry, err := cu.Entry(v.ref.EntryOffset)
	if err != nil {
		return nil, err
	}
	return innerTypeOfEntry(cu, entry)
}

func (m Member) Inner() (Type, error) { return innerReader(m.r, m.ref, m.InnerU) }
func (m Member) InnerU(cu *CU) (Type, error) {
	entry, err := cu.Entry(m.ref.EntryOffset)
	if err != nil {
		return nil, err
	}
	return innerTypeOfEntry(cu, entry)
}

func (f FormalParameter) Inner() (Type, error) { return innerReader(f.r, f.ref, f.InnerU) }
func (f FormalParameter) InnerU(cu *CU) (Type, error) {
	entry, err := cu.Entry(f.ref.EntryOffset)
	if err != nil {
		return nil, err
	}
	return innerTypeOfEntry(cu, entry)
}

func innerReader(r *Reader, ref TypeRef, u func(*CU) (Type, error)) (Type, error) {
	var out Type
	var outErr error
	if err := r.WithUnit(ref, func(cu *CU) error {
		out, outErr = u(cu)
		return nil
	}); err != nil {
		return nil, err
	}
	return out, outErr
}

// --- HasMembers ---------------------------------------------------------------

func (s Struct) Members() ([]Member, error) { return membersReader(s.r, s.ref, s.MembersU) }
func (s Struct) MembersU(cu *CU) ([]Member, error) {
	entry, err := cu.Entry(s.ref.EntryOffset)
	if err != nil {
		return nil, err
	}
	return memberEntries(cu, entry)
}

func (u Union) Members() ([]Member, error) { return membersReader(u.r, u.ref, u.MembersU) }
func (u Union) MembersU(cu *CU) ([]Member, error) {
	entry, err := cu.Entry(u.ref.EntryOffset)
	if err != nil {
		return nil, err
	}
	return memberEntries(cu, entry)
}

func memberEntries(cu *CU, parent *dwarf.Entry) ([]Member, error) {
	children, err := cu.children(parent, func(e *dwarf.Entry) bool { return e.Tag == dwarf.TagMember }, false)
	if err != nil {
		return nil, err
	}
	out := make([]Member, len(children))
	for i, c := range children {
		out[i] = Member{TypeRef{CUOffset: cu.offset, EntryOffset: c.Offset}, cu.reader}
	}
	return out, nil
}

func membersReader(r *Reader, ref TypeRef, u func(*CU) ([]Member, error)) ([]Member, error) {
	var out []Member
	var outErr error
	if err := r.WithUnit(ref, func(cu *CU) error {
		out, outErr = u(cu)
		return nil
	}); err != nil {
		return nil, err
	}
	return out, outErr
}

// --- ByteSize derivation -----------------------------------------------------

func (b Base) ByteSize() (uint64, error) { return byteSizeReader(b.r, b.ref, b.ByteSizeU) }
func (b Base) ByteSizeU(cu *CU) (uint64, error) {
	entry, err := cu.Entry(b.ref.EntryOffset)
	if err != nil {
		return 0, err
	}
	// "If a base type doesn't have a size, something is horribly wrong";
	// required, never derived (original_source/src/types.rs::Base::u_byte_size).
	sz, ok := byteSizeAttr(entry)
	if !ok {
		return 0, ErrByteSizeNotFound
	}
	return sz, nil
}

func (s Struct) ByteSize() (uint64, error) { return byteSizeReader(s.r, s.ref, s.ByteSizeU) }
func (s Struct) ByteSizeU(cu *CU) (uint64, error) {
	entry, err := cu.Entry(s.ref.EntryOffset)
	if err != nil {
		return 0, err
	}
	sz, ok := byteSizeAttr(entry)
	if !ok {
		return 0, ErrByteSizeNotFound
	}
	return sz, nil
}

func (u Union) ByteSize() (uint64, error) { return byteSizeReader(u.r, u.ref, u.ByteSizeU) }
func (u Union) ByteSizeU(cu *CU) (uint64, error) {
	entry, err := cu.Entry(u.ref.EntryOffset)
	if err != nil {
		return 0, err
	}
	if sz, ok := byteSizeAttr(entry); ok {
		return sz, nil
	}
	members, err := memberEntries(cu, entry)
	if err != nil {
		return 0, err
	}
	var max uint64
	for _, m := range members {
		sz, err := m.ByteSizeU(cu)
		if err != nil {
			continue // a member whose size can't be derived contributes nothing
		}
		if sz > max {
			max = sz
		}
	}
	return max, nil
}

func (e Enum) ByteSize() (uint64, error) { return byteSizeReader(e.r, e.ref, e.ByteSizeU) }
func (e Enum) ByteSizeU(cu *CU) (uint64, error) {
	entry, err := cu.Entry(e.ref.EntryOffset)
	if err != nil {
		return 0, err
	}
	if sz, ok := byteSizeAttr(entry); ok {
		return sz, nil
	}
	inner, err := innerTypeOfEntry(cu, entry)
	if err != nil {
		return 0, err
	}
	bs, ok := inner.(ByteSizer)
	if !ok {
		return 0, ErrByteSizeNotFound
	}
	return bs.ByteSizeU(cu)
}

// Pointer.ByteSize always equals the CU's address size and ignores any
// emitted DW_AT_byte_size.
func (p Pointer) ByteSize() (uint64, error) { return byteSizeReader(p.r, p.ref, p.ByteSizeU) }
func (p Pointer) ByteSizeU(cu *CU) (uint64, error) {
	// The size comes from the owning unit's header; any DW_AT_byte_size is
	// ignored.
	rd := cu.reader.sections.data.Reader()
	rd.Seek(cu.offset)
	return uint64(rd.AddressSize()), nil
}

func (t Typedef) ByteSize() (uint64, error) { return byteSizeReader(t.r, t.ref, t.ByteSizeU) }
func (t Typedef) ByteSizeU(cu *CU) (uint64, error) { return delegatingByteSize(cu, t.ref) }

func (c Const) ByteSize() (uint64, error) { return byteSizeReader(c.r, c.ref, c.ByteSizeU) }
func (c Const) ByteSizeU(cu *CU) (uint64, error) { return delegatingByteSize(cu, c.ref) }

func (v Volatile) ByteSize() (uint64, error) { return byteSizeReader(v.r, v.ref, v.ByteSizeU) }
func (v Volatile) ByteSizeU(cu *CU) (uint64, error) { return delegatingByteSize(cu, v.ref) }

func (r Restrict) ByteSize() (uint64, error) { return byteSizeReader(r.r, r.ref, r.ByteSizeU) }
func (r Restrict) ByteSizeU(cu *CU) (uint64, error) { return delegatingByteSize(cu, r.ref) }

// delegatingByteSize implements the shared Typedef/Const/Volatile/Restrict
// rule: use DW_AT_byte_size if present, otherwise delegate to the inner
// type's byte size.
func delegatingByteSize(cu *CU, ref TypeRef) (uint64, error) {
	entry, err := cu.Entry(ref.EntryOffset)
	if err != nil {
		return 0, err
	}
	if sz, ok := byteSizeAttr(entry); ok {
		return sz, nil
	}
	inner, err := innerTypeOfEntry(cu, entry)
	if err != nil {
		if err == ErrTypeNotFound {
			return 0, ErrByteSizeNotFound
		}
		return 0, err
	}
	bs, ok := inner.(ByteSizer)
	if !ok {
		return 0, ErrByteSizeNotFound
	}
	return bs.ByteSizeU(cu)
}

// Subroutine types are unsized.
func (s Subroutine) ByteSize() (uint64, error)          { return 0, ErrSizeNotApplicable }
func (s Subroutine) ByteSizeU(cu *CU) (uint64, error)   { return 0, ErrSizeNotApplicable }

func (v Variable) ByteSize() (uint64, error) { return byteSizeReader(v.r, v.ref, v.ByteSizeU) }
func (v Variable) ByteSizeU(cu *CU) (uint64, error) {
	entry, err := cu.Entry(v.ref.EntryOffset)
	if err != nil {
		return 0, err
	}
	inner, err := innerTypeOfEntry(cu, entry)
	if err != nil {
		return 0, err
	}
	bs, ok := inner.(ByteSizer)
	if !ok {
		return 0, ErrByteSizeNotFound
	}
	return bs.ByteSizeU(cu)
}

func (m Member) ByteSize() (uint64, error) { return byteSizeReader(m.r, m.ref, m.ByteSizeU) }
func (m Member) ByteSizeU(cu *CU) (uint64, error) {
	entry, err := cu.Entry(m.ref.EntryOffset)
	if err != nil {
		return 0, err
	}
	inner, err := innerTypeOfEntry(cu, entry)
	if err != nil {
		return 0, err
	}
	bs, ok := inner.(ByteSizer)
	if !ok {
		return 0, ErrByteSizeNotFound
	}
	return bs.ByteSizeU(cu)
}

// BitSize returns DW_AT_bit_size for a member; its presence indicates a C
// bit-field.
func (m Member) BitSize() (uint64, error) { return bitSizeReader(m.r, m.ref) }
func (m Member) BitSizeU(cu *CU) (uint64, error) {
	entry, err := cu.Entry(m.ref.EntryOffset)
	if err != nil {
		return 0, err
	}
	v := entry.Val(dwarf.AttrBitSize)
	if v == nil {
		return 0, ErrBitSizeNotFound
	}
	switch n := v.(type) {
	case int64:
		return uint64(n), nil
	case uint64:
		return n, nil
	default:
		return 0, wrapf(ErrInvalidAttribute, "DW_AT_bit_size has unexpected form")
	}
}

func bitSizeReader(r *Reader, ref TypeRef) (uint64, error) {
	var out uint64
	var outErr error
	if err := r.WithUnit(ref, func(cu *CU) error {
		out, outErr = (Member{ref, r}).BitSizeU(cu)
		return nil
	}); err != nil {
		return 0, err
	}
	return out, outErr
}

// MemberLocation returns the byte offset of a member from
// DW_AT_data_member_location. Only a constant-class (Udata) form is
// supported; exprloc/loclist forms (used for virtual base offsets in C++)
// raise ErrUnimplemented rather than being silently misread — an
// improvement over original_source/src/types.rs's u_member_location,
// which bundles both cases into one generic error.
func (m Member) MemberLocation() (uint64, error) {
	var out uint64
	var outErr error
	if err := m.r.WithUnit(m.ref, func(cu *CU) error {
		out, outErr = m.MemberLocationU(cu)
		return nil
	}); err != nil {
		return 0, err
	}
	return out, outErr
}

func (m Member) MemberLocationU(cu *CU) (uint64, error) {
	entry, err := cu.Entry(m.ref.EntryOffset)
	if err != nil {
		return 0, err
	}
	f := entry.AttrField(dwarf.AttrDataMemberLoc)
	if f == nil {
		return 0, ErrMemberLocationNotFound
	}
	if f.Class == dwarf.ClassLocListPtr || f.Class == dwarf.ClassLocList {
		// A location-list reference decodes as an int64 section offset;
		// it must not be mistaken for a constant member offset.
		return 0, wrapf(ErrUnimplemented, "loclist-valued DW_AT_data_member_location")
	}
	switch n := f.Val.(type) {
	case int64:
		return uint64(n), nil
	case uint64:
		return n, nil
	case []byte:
		// A DWARF expression (exprloc or block form): not a plain
		// constant. Reported as Unimplemented rather than guessed at.
		return 0, wrapf(ErrUnimplemented, "exprloc-valued DW_AT_data_member_location")
	default:
		return 0, wrapf(ErrInvalidAttribute, "DW_AT_data_member_location has unexpected form")
	}
}

// Offset is an alias for MemberLocation, matching the naming used by
// original_source/src/types.rs's Member::offset/u_offset.
func (m Member) Offset() (uint64, error)          { return m.MemberLocation() }
func (m Member) OffsetU(cu *CU) (uint64, error)   { return m.MemberLocationU(cu) }

// Alignment returns DW_AT_alignment for a struct.
func (s Struct) Alignment() (uint64, error) {
	var out uint64
	var outErr error
	if err := s.r.WithUnit(s.ref, func(cu *CU) error {
		out, outErr = s.AlignmentU(cu)
		return nil
	}); err != nil {
		return 0, err
	}
	return out, outErr
}

func (s Struct) AlignmentU(cu *CU) (uint64, error) {
	entry, err := cu.Entry(s.ref.EntryOffset)
	if err != nil {
		return 0, err
	}
	a, ok := alignmentAttr(entry)
	if !ok {
		return 0, ErrAlignmentNotFound
	}
	return a, nil
}

func byteSizeReader(r *Reader, ref TypeRef, u func(*CU) (uint64, error)) (uint64, error) {
	var out uint64
	var outErr error
	if err := r.WithUnit(ref, func(cu *CU) error {
		out, outErr = u(cu)
		return nil
	}); err != nil {
		return 0, err
	}
	return out, outErr
}

// --- Array bound / entry size -------------------------------------------------

// BoundU derives the array's element count from a single DW_TAG_subrange_type
// child, preferring DW_AT_upper_bound (returned as value+1) then
// DW_AT_count (returned as value); absent either, the bound is 0 (the C
// flexible-array case),
func (a Array) BoundU(cu *CU) (uint64, error) {
	entry, err := cu.Entry(a.ref.EntryOffset)
	if err != nil {
		return 0, err
	}
	children, err := cu.children(entry, func(e *dwarf.Entry) bool { return e.Tag == dwarf.TagSubrangeType }, false)
	if err != nil {
		return 0, err
	}
	if len(children) == 0 {
		return 0, nil
	}
	sub := children[0]
	if v := sub.Val(dwarf.AttrUpperBound); v != nil {
		if n, ok := toUint64(v); ok {
			return n + 1, nil
		}
	}
	if v := sub.Val(dwarf.AttrCount); v != nil {
		if n, ok := toUint64(v); ok {
			return n, nil
		}
	}
	return 0, nil
}

func (a Array) Bound() (uint64, error) {
	var out uint64
	var outErr error
	if err := a.r.WithUnit(a.ref, func(cu *CU) error {
		out, outErr = a.BoundU(cu)
		return nil
	}); err != nil {
		return 0, err
	}
	return out, outErr
}

// EntrySizeU is the inner (element) type's byte size.
func (a Array) EntrySizeU(cu *CU) (uint64, error) {
	inner, err := a.InnerU(cu)
	if err != nil {
		return 0, err
	}
	bs, ok := inner.(ByteSizer)
	if !ok {
		return 0, ErrByteSizeNotFound
	}
	return bs.ByteSizeU(cu)
}

func (a Array) ByteSize() (uint64, error) { return byteSizeReader(a.r, a.ref, a.ByteSizeU) }
func (a Array) ByteSizeU(cu *CU) (uint64, error) {
	entry, err := cu.Entry(a.ref.EntryOffset)
	if err != nil {
		return 0, err
	}
	if sz, ok := byteSizeAttr(entry); ok {
		return sz, nil
	}
	entrySize, err := a.EntrySizeU(cu)
	if err != nil {
		return 0, err
	}
	bound, err := a.BoundU(cu)
	if err != nil {
		return 0, err
	}
	return entrySize * bound, nil
}

func toUint64(v any) (uint64, bool) {
	switch n := v.(type) {
	case int64:
		return uint64(n), true
	case uint64:
		return n, true
	default:
		return 0, false
	}
}

// --- Enumerators --------------------------------------------------------------

// EnumeratorValue is a decoded (name, value) pair for one DW_TAG_enumerator
// child of an enumeration_type DIE.
type EnumeratorValue struct {
	Name  string
	Value uint64
}

func (e Enum) EnumeratorsU(cu *CU) ([]EnumeratorValue, error) {
	entry, err := cu.Entry(e.ref.EntryOffset)
	if err != nil {
		return nil, err
	}
	children, err := cu.children(entry, func(c *dwarf.Entry) bool { return c.Tag == dwarf.TagEnumerator }, false)
	if err != nil {
		return nil, err
	}
	out := make([]EnumeratorValue, 0, len(children))
	for _, c := range children {
		name, err := nameOfEntry(c)
		if err != nil {
			continue
		}
		v := c.Val(dwarf.AttrConstValue)
		n, _ := toUint64(v)
		out = append(out, EnumeratorValue{Name: name, Value: n})
	}
	return out, nil
}

func (e Enum) Enumerators() ([]EnumeratorValue, error) {
	var out []EnumeratorValue
	var outErr error
	if err := e.r.WithUnit(e.ref, func(cu *CU) error {
		out, outErr = e.EnumeratorsU(cu)
		return nil
	}); err != nil {
		return nil, err
	}
	return out, outErr
}

// --- Subroutine parameters ------------------------------------------------------

// ParamsU iterates the subroutine's immediate children, keeping while the
// tag is DW_TAG_formal_parameter and stopping at the first other tag
//.
func (s Subroutine) ParamsU(cu *CU) ([]FormalParameter, error) {
	entry, err := cu.Entry(s.ref.EntryOffset)
	if err != nil {
		return nil, err
	}
	children, err := cu.children(entry, func(e *dwarf.Entry) bool { return e.Tag == dwarf.TagFormalParameter }, true)
	if err != nil {
		return nil, err
	}
	out := make([]FormalParameter, len(children))
	for i, c := range children {
		out[i] = FormalParameter{TypeRef{CUOffset: cu.offset, EntryOffset: c.Offset}, cu.reader}
	}
	return out, nil
}

func (s Subroutine) Params() ([]FormalParameter, error) {
	var out []FormalParameter
	var outErr error
	if err := s.r.WithUnit(s.ref, func(cu *CU) error {
		out, outErr = s.ParamsU(cu)
		return nil
	}); err != nil {
		return nil, err
	}
	return out, outErr
}

// --- Pointer dereference --------------------------------------------------------

// Deref is an alias for Inner, matching original_source/src/types.rs's
// Pointer::deref naming.
func (p Pointer) Deref() (Type, error)        { return p.Inner() }
func (p Pointer) DerefU(cu *CU) (Type, error) { return p.InnerU(cu) }

// --- CompileUnit metadata --------------------------------------------------------

// Producer decodes DW_AT_producer, the compiler/toolchain string.
func (c CompileUnit) Producer() (string, error) {
	entry, err := c.r.WithDieEntry(c.ref)
	if err != nil {
		return "", err
	}
	v := entry.Val(dwarf.AttrProducer)
	s, ok := v.(string)
	if !ok {
		return "", ErrProducerNotFound
	}
	return s, nil
}

// Language is a closed enum of known DWARF DW_AT_language codes, plus
// Vendor(code) for values >= 0x8000.
type Language int

const (
	LangUnknown Language = iota
	LangC89
	LangC
	LangC99
	LangC11
	LangCPlusPlus
	LangCPlusPlus03
	LangCPlusPlus11
	LangCPlusPlus14
	LangAda83
	LangAda95
	LangCobol74
	LangCobol85
	LangFortran77
	LangFortran90
	LangFortran95
	LangFortran03
	LangFortran08
	LangPascal83
	LangModula2
	LangModula3
	LangJava
	LangPLI
	LangObjC
	LangObjCPlusPlus
	LangUPC
	LangD
	LangPython
	LangOpenCL
	LangGo
	LangHaskell
	LangOCaml
	LangRust
	LangSwift
	LangJulia
	LangDylan
	LangRenderScript
	LangBLISS
	LangVendor // code stored separately; see VendorCode
)

var dwarfLangToGo = map[int64]Language{
	0x0001: LangC89,
	0x0002: LangC,
	0x0003: LangAda83,
	0x0004: LangCPlusPlus,
	0x0005: LangCobol74,
	0x0006: LangCobol85,
	0x0007: LangFortran77,
	0x0008: LangFortran90,
	0x0009: LangPascal83,
	0x000a: LangModula2,
	0x000b: LangJava,
	0x000c: LangC99,
	0x000d: LangAda95,
	0x000e: LangFortran95,
	0x000f: LangPLI,
	0x0010: LangObjC,
	0x0011: LangObjCPlusPlus,
	0x0012: LangUPC,
	0x0013: LangD,
	0x0014: LangPython,
	0x0015: LangOpenCL,
	0x0016: LangGo,
	0x0017: LangModula3,
	0x0018: LangHaskell,
	0x0019: LangCPlusPlus03,
	0x001a: LangCPlusPlus11,
	0x001b: LangOCaml,
	0x001c: LangRust,
	0x001d: LangC11,
	0x001e: LangSwift,
	0x001f: LangJulia,
	0x0020: LangDylan,
	0x0021: LangCPlusPlus14,
	0x0022: LangFortran03,
	0x0023: LangFortran08,
	0x0024: LangRenderScript,
	0x0025: LangBLISS,
}

// Language decodes DW_AT_language.
func (c CompileUnit) Language() (Language, uint16, error) {
	entry, err := c.r.WithDieEntry(c.ref)
	if err != nil {
		return LangUnknown, 0, err
	}
	v := entry.Val(dwarf.AttrLanguage)
	n, ok := toUint64(v)
	if !ok {
		return LangUnknown, 0, ErrLanguageNotFound
	}
	if n >= 0x8000 {
		return LangVendor, uint16(n), nil
	}
	if l, ok := dwarfLangToGo[int64(n)]; ok {
		return l, 0, nil
	}
	return LangUnknown, 0, ErrLanguageNotFound
}

// WithDieEntry is a convenience used by CompileUnit's metadata accessors:
// resolve ref's CU and return the DIE at ref.EntryOffset directly.
func (r *Reader) WithDieEntry(ref TypeRef) (*dwarf.Entry, error) {
	var out *dwarf.Entry
	err := r.WithDie(ref, func(_ *CU, entry *dwarf.Entry) error {
		out = entry
		return nil
	})
	return out, err
}

// --- Alignment statistics ----------------------------------------------------

// AlignmentStats summarizes hole/padding/alignment information for a
// struct, ported in semantics from
// original_source/src/types.rs::Struct::alignment_stats.
type AlignmentStats struct {
	NrHoles          int
	HolePositions    []HolePosition
	SumHoles         uint64
	SumMemberSize    uint64
	Padding          int64
	NrUnnatAlignment int
}

// HolePosition is the (member index, hole size) pair recorded for each gap
// found between two consecutive members.
type HolePosition struct {
	Index int
	Size  uint64
}

// AlignmentStats walks s's members in order, computing holes, padding and
// unnatural-alignment counts exactly:
//   - prev_offset/prev_size track the previous member;
//   - hole = curr_offset - (prev_offset + prev_size), counted when > 0;
//   - sum_member_size accumulates every non-skipped member's size;
//   - a member is skipped (no accounting at all) if its size, or its
//     "single entry" size for arrays, is zero;
//   - natural alignment is curr_offset % byte_size_single == 0, where
//     byte_size_single is the array entry size for Array members, else the
//     member's own size;
//   - the first member seeds the trackers without being counted as a hole;
//   - trailing padding = struct.byte_size - (last_offset + last_size).
func (s Struct) AlignmentStats() (AlignmentStats, error) {
	var stats AlignmentStats
	byteSize, err := s.ByteSize()
	if err != nil {
		return stats, err
	}
	members, err := s.Members()
	if err != nil {
		return stats, err
	}

	var prevOffset, prevSize uint64
	seeded := false

	for idx, m := range members {
		currOffset, err := m.Offset()
		if err != nil {
			if err == ErrMemberLocationNotFound {
				currOffset = 0
			} else {
				return stats, err
			}
		}
		currSize, err := m.ByteSize()
		if err != nil {
			continue
		}

		byteSizeSingle := currSize
		if inner, err := m.Inner(); err == nil {
			if arr, ok := inner.(Array); ok {
				if es, err := arr.EntrySize(); err == nil {
					byteSizeSingle = es
				}
			}
		}

		if currSize == 0 || byteSizeSingle == 0 {
			continue
		}

		if !seeded {
			prevOffset, prevSize = currOffset, currSize
			seeded = true
			stats.SumMemberSize += currSize
			continue
		}

		stats.SumMemberSize += currSize

		hole := int64(currOffset) - int64(prevOffset+prevSize)
		if hole > 0 {
			stats.NrHoles++
			stats.SumHoles += uint64(hole)
			stats.HolePositions = append(stats.HolePositions, HolePosition{Index: idx, Size: uint64(hole)})
		}

		if currOffset%byteSizeSingle != 0 {
			stats.NrUnnatAlignment++
		}

		prevOffset, prevSize = currOffset, currSize
	}

	stats.Padding = int64(byteSize) - int64(prevOffset+prevSize)
	return stats, nil
}

func (a Array) EntrySize() (uint64, error) {
	var out uint64
	var outErr error
	if err := a.r.WithUnit(a.ref, func(cu *CU) error {
		out, outErr = a.EntrySizeU(cu)
		return nil
	}); err != nil {
		return 0, err
	}
	return out, outErr
}
