// Copyright (c) 2026 dotandev
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for comparison with errors.Is. These are CLI-layer
// concerns (bad flags, missing files, cache/config trouble) distinct from
// the dwat package's own DWARF-specific taxonomy (dwat/errors.go).
var (
	ErrFileNotFound  = errors.New("input file not found")
	ErrInvalidFlag   = errors.New("invalid flag value")
	ErrConfigError   = errors.New("configuration error")
	ErrCacheError    = errors.New("cache error")
	ErrLookupMissed  = errors.New("no matching type found")
)

func WrapFileNotFound(path string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrFileNotFound, path, err)
}

func WrapInvalidFlag(flag, value string) error {
	return fmt.Errorf("%w: --%s=%q", ErrInvalidFlag, flag, value)
}

func WrapConfigError(msg string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrConfigError, msg, err)
}

func WrapValidationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrConfigError, msg)
}

func WrapCacheError(msg string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrCacheError, msg, err)
}

func WrapLookupMissed(file, name string) error {
	return fmt.Errorf("%w: %q in %s", ErrLookupMissed, name, file)
}
