// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package ishne

import "encoding/binary"

const (
	crcPoly = 0x1021
	crcInit = 0xFFFF

	checksumOffset = len(Magic)
	checksumStart  = checksumOffset + 2
)

// CRC is a streaming CRC-16/CCITT calculator (polynomial 0x1021, initial
// value 0xFFFF, no reflection), as used for ISHNE header checksums.
type CRC struct {
	value uint16
}

// NewCRC returns an initialized checksum calculator.
func NewCRC() *CRC {
	return &CRC{value: crcInit}
}

// Write updates the checksum with the provided data.
func (c *CRC) Write(p []byte) (int, error) {
	for _, b := range p {
		c.value ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if c.value&0x8000 != 0 {
				c.value = (c.value << 1) ^ crcPoly
			} else {
				c.value <<= 1
			}
		}
	}
	return len(p), nil
}

// Sum16 returns the current checksum value.
func (c *CRC) Sum16() uint16 {
	return c.value
}

// Checksum computes the CRC-16/CCITT checksum of b.
func Checksum(b []byte) uint16 {
	c := NewCRC()
	_, _ = c.Write(b)
	return c.Sum16()
}

// Verify reports whether the checksum stored in an encoded file matches the
// one computed over its header and variable-length block. An error is
// returned only if the buffer is too malformed to locate the checksummed region.
func Verify(b []byte) (bool, error) {
	stored, computed, err := checksums(b)
	if err != nil {
		return false, err
	}
	return stored == computed, nil
}

// checksums returns the stored and computed checksum of an encoded file.
func checksums(b []byte) (stored, computed uint16, err error) {
	if len(b) < HeaderSize {
		return 0, 0, formatError("file is %d bytes, shorter than the %d byte header", len(b), HeaderSize)
	}
	end, err := checksumEnd(b[:HeaderSize], len(b))
	if err != nil {
		return 0, 0, err
	}
	stored = binary.LittleEndian.Uint16(b[checksumOffset:])
	computed = Checksum(b[checksumStart:end])
	return stored, computed, nil
}

// checksumEnd returns the end of the checksummed region, which is the start of
// the sample data block declared in the header.
func checksumEnd(hdr []byte, size int) (int, error) {
	end := int(int32(binary.LittleEndian.Uint32(hdr[offECGOffset:])))
	if end < HeaderSize || end > size {
		return 0, formatError("ECG block offset %d outside of file (%d bytes)", end, size)
	}
	return end, nil
}

// stampChecksum computes the checksum of a fully encoded header (including the
// variable-length block), stores it in place and returns it.
func stampChecksum(hdr []byte) uint16 {
	sum := Checksum(hdr[checksumStart:])
	binary.LittleEndian.PutUint16(hdr[checksumOffset:], sum)
	return sum
}
