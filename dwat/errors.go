// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package dwat

import (
	"errors"
	"fmt"
)

// Fatal errors: something the caller cannot reasonably recover from without
// changing its input.
var (
	// ErrContainerParseError means the object file framing (ELF/Mach-O/PE)
	// itself was malformed.
	ErrContainerParseError = errors.New("object container is malformed")
	// ErrHeaderOffsetError means a compile-unit header offset could not be
	// resolved against debug_info; this should be unreachable in practice.
	ErrHeaderOffsetError = errors.New("compile unit header offset could not be resolved")
	// ErrCuNotFound means a TypeRef's CU offset no longer resolves to a
	// compile_unit entry.
	ErrCuNotFound = errors.New("compile unit not found")
	// ErrDieNotFound means a TypeRef's entry offset does not resolve to a DIE.
	ErrDieNotFound = errors.New("debugging information entry not found")
	// ErrUnimplemented means an attribute form or type tag required for this
	// operation is not supported.
	ErrUnimplemented = errors.New("unimplemented DWARF feature")
	// ErrInvalidAttribute means an attribute's value was of an unexpected form.
	ErrInvalidAttribute = errors.New("attribute has an unexpected form")
)

// Non-fatal, sentinel-style errors: the attribute was legitimately absent.
var (
	ErrNameNotFound            = errors.New("name attribute not found")
	ErrTypeNotFound             = errors.New("type attribute not found")
	ErrByteSizeNotFound         = errors.New("byte size attribute not found")
	ErrBitSizeNotFound          = errors.New("bit size attribute not found")
	ErrMemberLocationNotFound   = errors.New("member location attribute not found")
	ErrAlignmentNotFound        = errors.New("alignment attribute not found")
	ErrProducerNotFound         = errors.New("producer attribute not found")
	ErrLanguageNotFound         = errors.New("language attribute not found")
	// ErrSizeNotApplicable is returned by Subroutine.ByteSize: subroutine
	// types are unsized.
	ErrSizeNotApplicable = errors.New("size is not applicable to this type")
)

// wrapf follows the same wrap-helper pattern as internal/errors
// (fmt.Errorf("%w: ...", sentinel, detail)) scoped to this package's own
// taxonomy, so dwat errors are comparable with errors.Is against the
// sentinels above while still carrying positional context.
func wrapf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}
