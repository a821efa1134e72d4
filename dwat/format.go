// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package dwat

import (
	"fmt"
	"strings"
)

// Verbosity controls how much of a struct's layout the formatter renders,
// matching the CLI's --verbose flag.
type Verbosity int

const (
	// Compact renders only the member list and overall size/alignment line.
	Compact Verbosity = iota
	// Verbose additionally annotates each hole and trailing padding, as
	// pahole does, grounded on original_source/src/format.rs's
	// to_string_internal(verbose=true) branch.
	Verbose
)

const indentUnit = "    "

// FormatType renders t the way a C declaration names it. level == 0 is the
// declaration site ("TYPE name"); level > 0 is a nested occurrence ("TYPE"
// alone). tabLevel is the indentation depth, in indentUnit-sized units, used
// when an anonymous struct/union has to be expanded inline. baseOffset is
// the absolute offset of the enclosing member, threaded through so a nested
// anonymous aggregate's own member comments can report an absolute offset
// rather than one relative to the aggregate. Grounded on
// original_source/src/format.rs::format_type and src/types.rs's
// to_string_verbose, reconciled with the documented
// format_type(type, member_name, level, tab_level, verbosity, base_offset)
// signature.
func FormatType(t Type, memberName string, level, tabLevel int, verbosity Verbosity, baseOffset uint64) string {
	switch v := t.(type) {
	case Struct:
		name, err := v.Name()
		if err == nil {
			if level == 0 {
				return "struct " + name + " " + memberName
			}
			return "struct " + name
		}
		members, merr := v.Members()
		if merr != nil {
			return "struct {...}"
		}
		return formatAnonymousAggregate("struct", members, memberName, level, tabLevel, verbosity, baseOffset)
	case Union:
		name, err := v.Name()
		if err == nil {
			if level == 0 {
				return "union " + name + " " + memberName
			}
			return "union " + name
		}
		members, merr := v.Members()
		if merr != nil {
			return "union {...}"
		}
		return formatAnonymousAggregate("union", members, memberName, level, tabLevel, verbosity, baseOffset)
	case Enum:
		name, err := v.Name()
		if err == nil {
			if level == 0 {
				return "enum " + name + " " + memberName
			}
			return "enum " + name
		}
		if level == 0 {
			return "enum " + memberName
		}
		return "enum"
	case Base:
		name, err := v.Name()
		if err != nil {
			return "<unknown base type>"
		}
		if level == 0 {
			return name + " " + memberName
		}
		return name
	case Typedef:
		name, err := v.Name()
		if err != nil {
			return "<unknown typedef>"
		}
		if level == 0 {
			return name + " " + memberName
		}
		return name
	case Pointer:
		inner, ierr := v.Inner()
		if ierr == nil {
			if sub, ok := inner.(Subroutine); ok {
				ret := "void"
				if subInner, serr := sub.Inner(); serr == nil {
					ret = FormatType(subInner, "", level+1, tabLevel, verbosity, baseOffset)
				}
				argStr := FormatType(sub, "", level+1, tabLevel, verbosity, baseOffset)
				return fmt.Sprintf("%s (*%s)(%s)", ret, memberName, argStr)
			}
		}
		ptrType := "void"
		if ierr == nil {
			ptrType = FormatType(inner, "", level+1, tabLevel, verbosity, baseOffset)
		}
		var b strings.Builder
		b.WriteString(ptrType)
		if strings.HasSuffix(ptrType, "*") {
			b.WriteByte('*')
		} else {
			b.WriteString(" *")
		}
		if level == 0 {
			b.WriteString(memberName)
		}
		return b.String()
	case Const:
		inner, err := v.Inner()
		if err != nil {
			return "const void"
		}
		return "const " + FormatType(inner, "", level+1, tabLevel, verbosity, baseOffset)
	case Volatile:
		inner, err := v.Inner()
		if err != nil {
			return "volatile void"
		}
		return "volatile " + FormatType(inner, "", level+1, tabLevel, verbosity, baseOffset)
	case Restrict:
		inner, err := v.Inner()
		if err != nil {
			return "restrict void"
		}
		return FormatType(inner, "", level+1, tabLevel, verbosity, baseOffset) + " restrict"
	case Array:
		inner, err := v.Inner()
		innerFmt := "<unknown>"
		if err == nil {
			innerFmt = FormatType(inner, "", level+1, tabLevel, verbosity, baseOffset)
		}
		var b strings.Builder
		b.WriteString(innerFmt)
		if !strings.HasSuffix(innerFmt, "*") {
			b.WriteByte(' ')
		}
		if level == 0 {
			b.WriteString(memberName)
		}
		bound, _ := v.Bound()
		if bound == 0 {
			b.WriteString("[]")
		} else {
			fmt.Fprintf(&b, "[%d]", bound)
		}
		return b.String()
	case Subroutine:
		// A bare (non-pointer) subroutine occurrence renders as its
		// comma-separated parameter-type list; the pointer-to-subroutine
		// "RET (*NAME)(ARGS)" synthesis lives in the Pointer case above.
		params, _ := v.Params()
		parts := make([]string, 0, len(params))
		for _, p := range params {
			pinner, perr := p.Inner()
			if perr != nil {
				continue
			}
			parts = append(parts, FormatType(pinner, "", level+1, tabLevel, verbosity, baseOffset))
		}
		return strings.Join(parts, ", ")
	default:
		return "<unknown type>"
	}
}

// formatAnonymousAggregate expands a nameless struct/union member's type
// inline: "struct {" + newline, each member recursively formatted one
// indent level deeper, then indent + "}", with the enclosing member's name
// appended at level 0.
func formatAnonymousAggregate(keyword string, members []Member, memberName string, level, tabLevel int, verbosity Verbosity, baseOffset uint64) string {
	var b strings.Builder
	b.WriteString(keyword)
	b.WriteString(" {\n")
	for _, m := range members {
		b.WriteString(FormatMember(m, tabLevel+1, verbosity, baseOffset))
	}
	b.WriteString(strings.Repeat(indentUnit, tabLevel))
	b.WriteByte('}')
	if level == 0 {
		b.WriteByte(' ')
		b.WriteString(memberName)
	}
	return b.String()
}

// FormatMember renders one struct/union member line: indent + "<type>
// <name>;" with bit-field members rendered as "<type> <name>:<bits>;". At
// Verbose, a column-aligned "/* sz: S | off: O */" comment is appended,
// with off measured from baseOffset (nonzero only when this member lives
// inside a nested anonymous aggregate). Grounded on
// original_source/src/format.rs::format_member and src/types.rs's
// format_member(member, tab_level, verbosity, base_offset) signature.
func FormatMember(m Member, tabLevel int, verbosity Verbosity, baseOffset uint64) string {
	name, err := m.Name()
	if err != nil {
		name = ""
	}
	ownOffset, offErr := m.MemberLocation()
	nestedBase := baseOffset
	if offErr == nil {
		nestedBase = baseOffset + ownOffset
	}

	inner, ierr := m.Inner()
	typeStr := "<unknown>"
	if ierr == nil {
		typeStr = FormatType(inner, name, 0, tabLevel, verbosity, nestedBase)
	}

	var b strings.Builder
	b.WriteString(strings.Repeat(indentUnit, tabLevel+1))
	b.WriteString(typeStr)
	if bits, err := m.BitSize(); err == nil {
		fmt.Fprintf(&b, ":%d", bits)
	}
	b.WriteByte(';')

	if verbosity >= Verbose {
		line := b.String()
		lastNewline := strings.LastIndexByte(line, '\n') + 1
		lastLineLen := len(line) - lastNewline
		for i := lastLineLen; i < 48; i++ {
			b.WriteByte(' ')
		}
		byteSize, bsErr := m.ByteSize()
		if bsErr == nil && offErr == nil {
			fmt.Fprintf(&b, "\t/* sz: %4d | off: %4d */", byteSize, nestedBase)
		} else {
			b.WriteString("\t/* sz:    ? | off:    ? */")
		}
	}

	b.WriteByte('\n')
	return b.String()
}

// FormatStruct renders s as a C struct declaration body, optionally
// annotated with holes and trailing padding at Verbose. Grounded on
// original_source/src/format.rs::Struct::to_string_internal.
func FormatStruct(s Struct, v Verbosity) (string, error) {
	name, err := s.Name()
	if err != nil {
		name = "<anonymous>"
	}
	byteSize, err := s.ByteSize()
	if err != nil {
		return "", err
	}
	members, err := s.Members()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "struct %s {\n", name)
	closing := "}"
	if align, err := s.Alignment(); err == nil {
		closing += fmt.Sprintf(" __attribute((__aligned__(%d)))", align)
	}

	if v == Compact {
		for _, m := range members {
			b.WriteString(FormatMember(m, 0, Compact, 0))
		}
		fmt.Fprintf(&b, "%s; /* size: %d */\n", closing, byteSize)
		return b.String(), nil
	}

	stats, err := s.AlignmentStats()
	if err != nil {
		return "", err
	}
	holesByIndex := make(map[int]uint64, len(stats.HolePositions))
	for _, h := range stats.HolePositions {
		holesByIndex[h.Index] = h.Size
	}

	for i, m := range members {
		b.WriteString(FormatMember(m, 0, Verbose, 0))
		if hole, ok := holesByIndex[i]; ok {
			fmt.Fprintf(&b, "\n%s/* XXX %d bytes hole, try to pack */\n\n", indentUnit, hole)
		}
	}
	if stats.Padding > 0 {
		fmt.Fprintf(&b, "\n%s/* size: %d, padding: %d */\n", indentUnit, byteSize, stats.Padding)
	} else {
		fmt.Fprintf(&b, "\n%s/* size: %d */\n", indentUnit, byteSize)
	}
	if stats.NrHoles > 0 {
		fmt.Fprintf(&b, "%s/* sum members: %d, holes: %d, sum holes: %d */\n",
			indentUnit, stats.SumMemberSize, stats.NrHoles, stats.SumHoles)
	}
	if stats.NrUnnatAlignment > 0 {
		fmt.Fprintf(&b, "%s/* members with unnatural alignment: %d */\n", indentUnit, stats.NrUnnatAlignment)
	}
	b.WriteString(closing + ";\n")
	return b.String(), nil
}

// String implements fmt.Stringer at Compact verbosity, matching
// original_source/src/types.rs's impl Display for Struct.
func (s Struct) String() string {
	str, err := FormatStruct(s, Compact)
	if err != nil {
		return fmt.Sprintf("struct <error: %v>", err)
	}
	return str
}
