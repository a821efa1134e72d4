// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package dwat

import (
	"bytes"
	"debug/dwarf"
	"encoding/binary"
)

// dwarf_builder_test.go hand-assembles minimal, valid .debug_abbrev/.debug_info
// byte streams and feeds them through the standard library's dwarf.New, since
// no compiler toolchain is available in this environment to produce real
// object files. Each die describes one DIE; buildData walks a forest of CUs,
// assigning one abbreviation per DIE (simplest possible abbrev table, no
// sharing) and patching DW_FORM_ref4 values once every DIE's offset is known.

type dieAttr struct {
	attr dwarf.Attr
	form dwarf.Form
	val  any // string, uint64, []byte, *die (for FormRef4), or nil (for FormFlagPresent)
}

type die struct {
	tag   dwarf.Tag
	attrs []dieAttr
	kids  []*die

	abbrevCode uint64
	absOffset  int
}

func newDie(tag dwarf.Tag, attrs []dieAttr, kids ...*die) *die {
	return &die{tag: tag, attrs: attrs, kids: kids}
}

func attrName(s string) dieAttr       { return dieAttr{dwarf.AttrName, dwarf.FormString, s} }
func attrByteSize(v uint64) dieAttr   { return dieAttr{dwarf.AttrByteSize, dwarf.FormUdata, v} }
func attrBitSize(v uint64) dieAttr    { return dieAttr{dwarf.AttrBitSize, dwarf.FormUdata, v} }
func attrMemberLoc(v uint64) dieAttr  { return dieAttr{dwarf.AttrDataMemberLoc, dwarf.FormUdata, v} }
func attrMemberLocExpr(b []byte) dieAttr {
	return dieAttr{dwarf.AttrDataMemberLoc, dwarf.FormBlock1, b}
}
func attrType(target *die) dieAttr    { return dieAttr{dwarf.AttrType, dwarf.FormRef4, target} }
func attrUpperBound(v uint64) dieAttr { return dieAttr{dwarf.AttrUpperBound, dwarf.FormUdata, v} }
func attrCount(v uint64) dieAttr      { return dieAttr{dwarf.AttrCount, dwarf.FormUdata, v} }
func attrConstValue(v uint64) dieAttr { return dieAttr{dwarf.AttrConstValue, dwarf.FormUdata, v} }
func attrProducer(s string) dieAttr   { return dieAttr{dwarf.AttrProducer, dwarf.FormString, s} }
func attrLanguage(v uint64) dieAttr   { return dieAttr{dwarf.AttrLanguage, dwarf.FormUdata, v} }
func attrDeclaration() dieAttr        { return dieAttr{dwarf.AttrDeclaration, dwarf.FormFlagPresent, nil} }
func attrAlignment(v uint64) dieAttr  { return dieAttr{dwarf.AttrAlignment, dwarf.FormUdata, v} }

type refPatch struct {
	pos    int
	target *die
}

func uleb128(buf *bytes.Buffer, v uint64) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		buf.WriteByte(b)
		if v == 0 {
			return
		}
	}
}

func writeAbbrevEntry(buf *bytes.Buffer, d *die) {
	uleb128(buf, d.abbrevCode)
	uleb128(buf, uint64(d.tag))
	if len(d.kids) > 0 {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
	for _, a := range d.attrs {
		uleb128(buf, uint64(a.attr))
		uleb128(buf, uint64(a.form))
	}
	uleb128(buf, 0)
	uleb128(buf, 0)
}

func writeAttrValue(buf *bytes.Buffer, a dieAttr, patches *[]refPatch) {
	switch a.form {
	case dwarf.FormString:
		buf.WriteString(a.val.(string))
		buf.WriteByte(0)
	case dwarf.FormUdata:
		uleb128(buf, a.val.(uint64))
	case dwarf.FormFlagPresent:
		// carries no data
	case dwarf.FormBlock1:
		b := a.val.([]byte)
		buf.WriteByte(byte(len(b)))
		buf.Write(b)
	case dwarf.FormRef4:
		pos := buf.Len()
		buf.Write(make([]byte, 4))
		*patches = append(*patches, refPatch{pos: pos, target: a.val.(*die)})
	default:
		panic("dwarf_builder_test: unsupported form in fixture")
	}
}

// buildData assembles one or more compile units (each the root of a die
// forest) into a *dwarf.Data, the same type debug/elf, debug/macho and
// debug/pe hand back from their DWARF() method and that Reader is layered
// over in reader.go.
func buildData(cus ...*die) (*dwarf.Data, error) {
	var abbrevBuf, infoBuf bytes.Buffer

	for _, root := range cus {
		abbrevOffset := abbrevBuf.Len()

		code := uint64(1)
		var assign func(d *die)
		assign = func(d *die) {
			d.abbrevCode = code
			code++
			writeAbbrevEntry(&abbrevBuf, d)
			for _, k := range d.kids {
				assign(k)
			}
		}
		assign(root)
		abbrevBuf.WriteByte(0)

		cuStart := infoBuf.Len()
		infoBuf.Write(make([]byte, 4)) // unit_length placeholder
		binary.Write(&infoBuf, binary.LittleEndian, uint16(4))
		binary.Write(&infoBuf, binary.LittleEndian, uint32(abbrevOffset))
		infoBuf.WriteByte(8) // address_size

		var patches []refPatch
		var serialize func(d *die)
		serialize = func(d *die) {
			d.absOffset = infoBuf.Len()
			uleb128(&infoBuf, d.abbrevCode)
			for _, a := range d.attrs {
				writeAttrValue(&infoBuf, a, &patches)
			}
			for _, k := range d.kids {
				serialize(k)
			}
			if len(d.kids) > 0 {
				infoBuf.WriteByte(0)
			}
		}
		serialize(root)

		b := infoBuf.Bytes()
		for _, p := range patches {
			rel := uint32(p.target.absOffset - cuStart)
			binary.LittleEndian.PutUint32(b[p.pos:], rel)
		}

		unitLen := uint32(infoBuf.Len() - cuStart - 4)
		binary.LittleEndian.PutUint32(b[cuStart:], unitLen)
	}

	return dwarf.New(abbrevBuf.Bytes(), nil, nil, infoBuf.Bytes(), nil, nil, nil, nil)
}

// newReaderOver builds a Reader directly over freshly constructed CUs,
// bypassing sections.go's container sniffing entirely since these fixtures
// have no ELF/Mach-O/PE framing around them.
func newReaderOver(cus ...*die) (*Reader, error) {
	data, err := buildData(cus...)
	if err != nil {
		return nil, err
	}
	return NewReader(&Sections{data: data}), nil
}
