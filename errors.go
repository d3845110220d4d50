// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package ishne

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat is returned when the input is not a well formed ISHNE file.
	ErrFormat = errors.New("invalid ISHNE file")
	// ErrChecksum is returned when the stored checksum does not match the header.
	ErrChecksum = errors.New("checksum mismatch")
	// ErrInvalidRecord is returned when a Record cannot be encoded as a conformant file.
	ErrInvalidRecord = errors.New("invalid record")
	// ErrNoResolution is returned when samples of a lead without a positive
	// amplitude resolution are converted to physical units.
	ErrNoResolution = errors.New("unknown amplitude resolution")
)

// ChecksumError reports a checksum mismatch. Decoding still completes when it
// is returned, so callers may choose to keep the decoded data.
type ChecksumError struct {
	Stored   uint16
	Computed uint16
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("%s: stored %04X, computed %04X", ErrChecksum, e.Stored, e.Computed)
}

func (e *ChecksumError) Unwrap() error {
	return ErrChecksum
}

func formatError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrFormat, fmt.Sprintf(format, args...))
}

func invalidRecord(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRecord, fmt.Sprintf(format, args...))
}
