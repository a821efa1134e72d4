// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package dwat

import "debug/dwarf"

// dwarf_fixtures_test.go builds the small DWARF die trees exercised by the
// rest of the package's tests, each modeling one C snippet that a real
// compiler would emit similarly to.

// fixturePacked models:
//
//	struct Point { int x; int y; };
//
// with no holes and no trailing padding.
func fixturePacked() (*Reader, error) {
	intT := newDie(dwarf.TagBaseType, []dieAttr{attrName("int"), attrByteSize(4)})
	x := newDie(dwarf.TagMember, []dieAttr{attrName("x"), attrType(intT), attrMemberLoc(0)})
	y := newDie(dwarf.TagMember, []dieAttr{attrName("y"), attrType(intT), attrMemberLoc(4)})
	point := newDie(dwarf.TagStructType, []dieAttr{attrName("Point"), attrByteSize(8)}, x, y)
	cu := newDie(dwarf.TagCompileUnit, []dieAttr{
		attrName("point.c"), attrProducer("clang version 14.0.0"), attrLanguage(0x000c), // DW_LANG_C99
	}, point, intT)
	return newReaderOver(cu)
}

// fixturePadded models:
//
//	struct Padded { char c; int i; };
//
// with a 3-byte hole between c and i and no trailing padding.
func fixturePadded() (*Reader, error) {
	charT := newDie(dwarf.TagBaseType, []dieAttr{attrName("char"), attrByteSize(1)})
	intT := newDie(dwarf.TagBaseType, []dieAttr{attrName("int"), attrByteSize(4)})
	c := newDie(dwarf.TagMember, []dieAttr{attrName("c"), attrType(charT), attrMemberLoc(0)})
	i := newDie(dwarf.TagMember, []dieAttr{attrName("i"), attrType(intT), attrMemberLoc(4)})
	padded := newDie(dwarf.TagStructType, []dieAttr{attrName("Padded"), attrByteSize(8)}, c, i)
	cu := newDie(dwarf.TagCompileUnit, []dieAttr{attrName("padded.c")}, padded, charT, intT)
	return newReaderOver(cu)
}

// fixtureBitfields models:
//
//	struct Flags { unsigned a : 1; unsigned b : 2; unsigned c : 5; };
//
// all three fields packed into the same storage unit at offset 0.
func fixtureBitfields() (*Reader, error) {
	uintT := newDie(dwarf.TagBaseType, []dieAttr{attrName("unsigned int"), attrByteSize(4)})
	a := newDie(dwarf.TagMember, []dieAttr{attrName("a"), attrType(uintT), attrMemberLoc(0), attrBitSize(1)})
	b := newDie(dwarf.TagMember, []dieAttr{attrName("b"), attrType(uintT), attrMemberLoc(0), attrBitSize(2)})
	c := newDie(dwarf.TagMember, []dieAttr{attrName("c"), attrType(uintT), attrMemberLoc(0), attrBitSize(5)})
	flags := newDie(dwarf.TagStructType, []dieAttr{attrName("Flags"), attrByteSize(4)}, a, b, c)
	cu := newDie(dwarf.TagCompileUnit, []dieAttr{attrName("flags.c")}, flags, uintT)
	return newReaderOver(cu)
}

// fixtureNestedUnion models:
//
//	struct Outer {
//	    int tag;
//	    union { int i; float f; } data; // anonymous, explicit byte_size
//	};
func fixtureNestedUnion() (*Reader, error) {
	intT := newDie(dwarf.TagBaseType, []dieAttr{attrName("int"), attrByteSize(4)})
	floatT := newDie(dwarf.TagBaseType, []dieAttr{attrName("float"), attrByteSize(4)})
	unionI := newDie(dwarf.TagMember, []dieAttr{attrName("i"), attrType(intT), attrMemberLoc(0)})
	unionF := newDie(dwarf.TagMember, []dieAttr{attrName("f"), attrType(floatT), attrMemberLoc(0)})
	anonUnion := newDie(dwarf.TagUnionType, []dieAttr{attrByteSize(4)}, unionI, unionF)
	tag := newDie(dwarf.TagMember, []dieAttr{attrName("tag"), attrType(intT), attrMemberLoc(0)})
	data := newDie(dwarf.TagMember, []dieAttr{attrName("data"), attrType(anonUnion), attrMemberLoc(4)})
	outer := newDie(dwarf.TagStructType, []dieAttr{attrName("Outer"), attrByteSize(8)}, tag, data)
	cu := newDie(dwarf.TagCompileUnit, []dieAttr{attrName("outer.c")}, outer, anonUnion, intT, floatT)
	return newReaderOver(cu)
}

// fixtureUnionDerivedSize models a union with no DW_AT_byte_size, forcing
// Union.ByteSize to derive it as the widest member.
func fixtureUnionDerivedSize() (*Reader, error) {
	intT := newDie(dwarf.TagBaseType, []dieAttr{attrName("int"), attrByteSize(4)})
	longT := newDie(dwarf.TagBaseType, []dieAttr{attrName("long"), attrByteSize(8)})
	i := newDie(dwarf.TagMember, []dieAttr{attrName("i"), attrType(intT), attrMemberLoc(0)})
	l := newDie(dwarf.TagMember, []dieAttr{attrName("l"), attrType(longT), attrMemberLoc(0)})
	u := newDie(dwarf.TagUnionType, []dieAttr{attrName("Mixed")}, i, l)
	cu := newDie(dwarf.TagCompileUnit, []dieAttr{attrName("mixed.c")}, u, intT, longT)
	return newReaderOver(cu)
}

// fixtureCallback models:
//
//	struct WithCallback { void (*cb)(int); };
func fixtureCallback() (*Reader, error) {
	intT := newDie(dwarf.TagBaseType, []dieAttr{attrName("int"), attrByteSize(4)})
	param := newDie(dwarf.TagFormalParameter, []dieAttr{attrType(intT)})
	sub := newDie(dwarf.TagSubroutineType, nil, param)
	ptr := newDie(dwarf.TagPointerType, []dieAttr{attrType(sub)})
	cb := newDie(dwarf.TagMember, []dieAttr{attrName("cb"), attrType(ptr), attrMemberLoc(0)})
	s := newDie(dwarf.TagStructType, []dieAttr{attrName("WithCallback"), attrByteSize(8)}, cb)
	cu := newDie(dwarf.TagCompileUnit, []dieAttr{attrName("callback.c")}, s, ptr, sub, intT)
	return newReaderOver(cu)
}

// fixtureArray models:
//
//	struct WithArray { int arr[4]; };
func fixtureArray() (*Reader, error) {
	intT := newDie(dwarf.TagBaseType, []dieAttr{attrName("int"), attrByteSize(4)})
	subrange := newDie(dwarf.TagSubrangeType, []dieAttr{attrUpperBound(3)})
	arr := newDie(dwarf.TagArrayType, []dieAttr{attrType(intT)}, subrange)
	member := newDie(dwarf.TagMember, []dieAttr{attrName("arr"), attrType(arr), attrMemberLoc(0)})
	s := newDie(dwarf.TagStructType, []dieAttr{attrName("WithArray"), attrByteSize(16)}, member)
	cu := newDie(dwarf.TagCompileUnit, []dieAttr{attrName("array.c")}, s, arr, intT)
	return newReaderOver(cu)
}

// fixtureFlexArray models a C99 flexible array member, whose subrange_type
// carries neither DW_AT_upper_bound nor DW_AT_count.
func fixtureFlexArray() (*Reader, error) {
	charT := newDie(dwarf.TagBaseType, []dieAttr{attrName("char"), attrByteSize(1)})
	subrange := newDie(dwarf.TagSubrangeType, nil)
	arr := newDie(dwarf.TagArrayType, []dieAttr{attrType(charT)}, subrange)
	member := newDie(dwarf.TagMember, []dieAttr{attrName("data"), attrType(arr), attrMemberLoc(4)})
	lenM := newDie(dwarf.TagMember, []dieAttr{attrName("len"), attrType(charT), attrMemberLoc(0)})
	s := newDie(dwarf.TagStructType, []dieAttr{attrName("FlexBuf"), attrByteSize(4)}, lenM, member)
	cu := newDie(dwarf.TagCompileUnit, []dieAttr{attrName("flex.c")}, s, arr, charT)
	return newReaderOver(cu)
}

// fixtureEnum models:
//
//	enum Color { RED, GREEN, BLUE };
//
// with an explicit byte_size.
func fixtureEnum() (*Reader, error) {
	red := newDie(dwarf.TagEnumerator, []dieAttr{attrName("RED"), attrConstValue(0)})
	green := newDie(dwarf.TagEnumerator, []dieAttr{attrName("GREEN"), attrConstValue(1)})
	blue := newDie(dwarf.TagEnumerator, []dieAttr{attrName("BLUE"), attrConstValue(2)})
	e := newDie(dwarf.TagEnumerationType, []dieAttr{attrName("Color"), attrByteSize(4)}, red, green, blue)
	cu := newDie(dwarf.TagCompileUnit, []dieAttr{attrName("color.c")}, e)
	return newReaderOver(cu)
}

// fixtureEnumDerivedSize models an enum with no DW_AT_byte_size, forcing
// Enum.ByteSize to delegate to its DW_AT_type's size.
func fixtureEnumDerivedSize() (*Reader, error) {
	uintT := newDie(dwarf.TagBaseType, []dieAttr{attrName("unsigned int"), attrByteSize(4)})
	one := newDie(dwarf.TagEnumerator, []dieAttr{attrName("ONE"), attrConstValue(1)})
	e := newDie(dwarf.TagEnumerationType, []dieAttr{attrName("Single"), attrType(uintT)}, one)
	cu := newDie(dwarf.TagCompileUnit, []dieAttr{attrName("single.c")}, e, uintT)
	return newReaderOver(cu)
}

// fixtureQualifiedChain models:
//
//	typedef const volatile int CVInt;
//
// exercising Typedef -> Volatile -> Const -> Base byte-size delegation.
func fixtureQualifiedChain() (*Reader, error) {
	intT := newDie(dwarf.TagBaseType, []dieAttr{attrName("int"), attrByteSize(4)})
	constT := newDie(dwarf.TagConstType, []dieAttr{attrType(intT)})
	volT := newDie(dwarf.TagVolatileType, []dieAttr{attrType(constT)})
	td := newDie(dwarf.TagTypedef, []dieAttr{attrName("CVInt"), attrType(volT)})
	cu := newDie(dwarf.TagCompileUnit, []dieAttr{attrName("qualified.c")}, td, volT, constT, intT)
	return newReaderOver(cu)
}

// fixtureRestrictPointer models a restrict-qualified pointer member, the
// remaining qualifier variant not covered by fixtureQualifiedChain.
func fixtureRestrictPointer() (*Reader, error) {
	intT := newDie(dwarf.TagBaseType, []dieAttr{attrName("int"), attrByteSize(4)})
	ptr := newDie(dwarf.TagPointerType, []dieAttr{attrType(intT)})
	restrictT := newDie(dwarf.TagRestrictType, []dieAttr{attrType(ptr)})
	member := newDie(dwarf.TagMember, []dieAttr{attrName("p"), attrType(restrictT), attrMemberLoc(0)})
	s := newDie(dwarf.TagStructType, []dieAttr{attrName("Restricted"), attrByteSize(8)}, member)
	cu := newDie(dwarf.TagCompileUnit, []dieAttr{attrName("restrict.c")}, s, restrictT, ptr, intT)
	return newReaderOver(cu)
}

// fixtureExprlocMember models a member whose DW_AT_data_member_location is
// an exprloc rather than a plain constant (e.g. a virtual base in C++),
// which MemberLocationU must reject with ErrUnimplemented rather than
// misread as a constant.
func fixtureExprlocMember() (*Reader, error) {
	intT := newDie(dwarf.TagBaseType, []dieAttr{attrName("int"), attrByteSize(4)})
	// DW_OP_plus_uconst 0x08: a minimal, plausible-looking exprloc payload.
	member := newDie(dwarf.TagMember, []dieAttr{attrName("v"), attrType(intT), attrMemberLocExpr([]byte{0x23, 0x08})})
	s := newDie(dwarf.TagStructType, []dieAttr{attrName("Exprloc"), attrByteSize(4)}, member)
	cu := newDie(dwarf.TagCompileUnit, []dieAttr{attrName("exprloc.c")}, s, intT)
	return newReaderOver(cu)
}

// fixtureDeclaration models a forward-declared struct (DW_AT_declaration)
// alongside a fully defined struct of a different name, exercising
// ForEachDieWithTag's declaration filter.
func fixtureDeclaration() (*Reader, error) {
	fwd := newDie(dwarf.TagStructType, []dieAttr{attrName("Forward"), attrDeclaration()})
	intT := newDie(dwarf.TagBaseType, []dieAttr{attrName("int"), attrByteSize(4)})
	m := newDie(dwarf.TagMember, []dieAttr{attrName("v"), attrType(intT), attrMemberLoc(0)})
	full := newDie(dwarf.TagStructType, []dieAttr{attrName("Full"), attrByteSize(4)}, m)
	cu := newDie(dwarf.TagCompileUnit, []dieAttr{attrName("decl.c")}, fwd, full, intT)
	return newReaderOver(cu)
}

// fixtureCrossCUCollision builds two compile units that each define a
// struct named "Node" with a different shape, exercising NamedList (every
// occurrence kept) and FGStructMap (keyed by name+size+members, so the two
// shapes land under distinct keys).
func fixtureCrossCUCollision() (*Reader, error) {
	intT1 := newDie(dwarf.TagBaseType, []dieAttr{attrName("int"), attrByteSize(4)})
	val1 := newDie(dwarf.TagMember, []dieAttr{attrName("val"), attrType(intT1), attrMemberLoc(0)})
	node1 := newDie(dwarf.TagStructType, []dieAttr{attrName("Node"), attrByteSize(4)}, val1)
	cu1 := newDie(dwarf.TagCompileUnit, []dieAttr{attrName("a.c")}, node1, intT1)

	intT2 := newDie(dwarf.TagBaseType, []dieAttr{attrName("int"), attrByteSize(4)})
	val2 := newDie(dwarf.TagMember, []dieAttr{attrName("val"), attrType(intT2), attrMemberLoc(0)})
	extra2 := newDie(dwarf.TagMember, []dieAttr{attrName("extra"), attrType(intT2), attrMemberLoc(4)})
	node2 := newDie(dwarf.TagStructType, []dieAttr{attrName("Node"), attrByteSize(8)}, val2, extra2)
	cu2 := newDie(dwarf.TagCompileUnit, []dieAttr{attrName("b.c")}, node2, intT2)

	return newReaderOver(cu1, cu2)
}

// fixtureCrossCUOffsetCollision builds two compile units that each define a
// struct named "Pair" with the same byte size and the same member names,
// but with the members laid out at different offsets (padding inserted
// before the second field in one TU and not the other) — the scenario
// where a name+size+member-name key alone would wrongly conflate two
// structurally distinct shapes, and only including each member's offset in
// the key keeps them apart.
func fixtureCrossCUOffsetCollision() (*Reader, error) {
	charT1 := newDie(dwarf.TagBaseType, []dieAttr{attrName("char"), attrByteSize(1)})
	intT1 := newDie(dwarf.TagBaseType, []dieAttr{attrName("int"), attrByteSize(4)})
	a1 := newDie(dwarf.TagMember, []dieAttr{attrName("a"), attrType(charT1), attrMemberLoc(0)})
	b1 := newDie(dwarf.TagMember, []dieAttr{attrName("b"), attrType(intT1), attrMemberLoc(4)})
	pair1 := newDie(dwarf.TagStructType, []dieAttr{attrName("Pair"), attrByteSize(8)}, a1, b1)
	cu1 := newDie(dwarf.TagCompileUnit, []dieAttr{attrName("a.c")}, pair1, charT1, intT1)

	charT2 := newDie(dwarf.TagBaseType, []dieAttr{attrName("char"), attrByteSize(1)})
	intT2 := newDie(dwarf.TagBaseType, []dieAttr{attrName("int"), attrByteSize(4)})
	a2 := newDie(dwarf.TagMember, []dieAttr{attrName("a"), attrType(charT2), attrMemberLoc(0)})
	b2 := newDie(dwarf.TagMember, []dieAttr{attrName("b"), attrType(intT2), attrMemberLoc(1)})
	pair2 := newDie(dwarf.TagStructType, []dieAttr{attrName("Pair"), attrByteSize(8)}, a2, b2)
	cu2 := newDie(dwarf.TagCompileUnit, []dieAttr{attrName("b.c")}, pair2, charT2, intT2)

	return newReaderOver(cu1, cu2)
}

// fixtureVariable models a top-level DW_TAG_variable DIE.
func fixtureVariable() (*Reader, error) {
	intT := newDie(dwarf.TagBaseType, []dieAttr{attrName("int"), attrByteSize(4)})
	v := newDie(dwarf.TagVariable, []dieAttr{attrName("counter"), attrType(intT)})
	cu := newDie(dwarf.TagCompileUnit, []dieAttr{attrName("var.c")}, v, intT)
	return newReaderOver(cu)
}
