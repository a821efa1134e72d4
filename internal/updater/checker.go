// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package updater compares a DWARF compile unit's embedded producer string
// against a configured minimum-supported compiler version, warning when a
// binary was built by a toolchain too old for reliable DWARF 5 support.
// This is a pure, local version comparison using the
// github.com/hashicorp/go-version library's LessThan check,
// with no network or cache-file machinery involved.
package updater

import (
	"fmt"
	"regexp"

	hcversion "github.com/hashicorp/go-version"
)

// producerVersionPattern extracts a dotted version number from a
// DW_AT_producer string such as "GNU C17 11.4.0 -mtune=generic -O2" or
// "clang version 16.0.6".
var producerVersionPattern = regexp.MustCompile(`(\d+\.\d+(?:\.\d+)?)`)

// Checker compares producer strings against a baseline minimum version.
type Checker struct {
	baseline *hcversion.Version
}

// NewChecker builds a Checker against baselineVersion (e.g. "7.0.0"). An
// unparsable baseline disables all checks (Check always reports ok=true).
func NewChecker(baselineVersion string) *Checker {
	v, err := hcversion.NewVersion(baselineVersion)
	if err != nil {
		return &Checker{}
	}
	return &Checker{baseline: v}
}

// Result describes the outcome of comparing one producer string against
// the configured baseline.
type Result struct {
	Producer        string
	ExtractedVersion string
	OK               bool
	Message          string
}

// Check extracts a version number from producer and compares it against the
// configured baseline. When no version can be extracted, or no baseline was
// configured, the check passes permissively (OK=true) rather than failing
// closed — an unrecognized producer string is not evidence of an old
// compiler.
func (c *Checker) Check(producer string) Result {
	if c.baseline == nil {
		return Result{Producer: producer, OK: true}
	}

	match := producerVersionPattern.FindString(producer)
	if match == "" {
		return Result{Producer: producer, OK: true}
	}

	found, err := hcversion.NewVersion(match)
	if err != nil {
		return Result{Producer: producer, ExtractedVersion: match, OK: true}
	}

	if found.LessThan(c.baseline) {
		return Result{
			Producer:         producer,
			ExtractedVersion: match,
			OK:               false,
			Message: fmt.Sprintf(
				"producer %q reports compiler version %s, below the configured baseline %s; DWARF 5 features may be incomplete",
				producer, found, c.baseline,
			),
		}
	}

	return Result{Producer: producer, ExtractedVersion: match, OK: true}
}
