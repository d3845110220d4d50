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
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// writeChunkFrames bounds the number of frames interleaved at once by WriteSamples.
const writeChunkFrames = 4096

// SaveOptions configures Save.
type SaveOptions struct {
	// Overwrite allows an existing destination file to be replaced.
	Overwrite bool
}

// Encode encodes a record as an ISHNE Holter ECG file.
//
// Block sizes, offsets, the lead count and the checksum are always derived
// from the current contents of the record.
func Encode(rec *Record) ([]byte, error) {
	samples := leadSamples(rec.Leads)
	n, err := samplesPerLead(samples)
	if err != nil {
		return nil, err
	}

	layout := newLayout(rec, n)
	hdr, err := encodeHeader(rec, layout)
	if err != nil {
		return nil, err
	}

	b := make([]byte, layout.ECGOffset+n*len(samples)*sampleSize)
	copy(b, hdr)
	interleave(b[layout.ECGOffset:], samples, 0, n)

	// The checksum goes last, once every other byte of the header is final.
	stampChecksum(b[:layout.ECGOffset])

	return b, nil
}

// Writer writes ISHNE Holter ECG files, one chunk of samples at a time.
type Writer struct {
	w       io.WriteSeeker
	rec     *Record
	samples int // Number of samples per lead written so far.
}

// Create creates a new ISHNE writer that writes to the given writer. Only the
// metadata of rec is used; samples are supplied with WriteSamples.
func Create(w io.WriteSeeker, rec Record) (*Writer, error) {
	ew := &Writer{w: w, rec: rec.metadata()}

	// Write the initial header
	if err := ew.writeHeader(); err != nil {
		return nil, fmt.Errorf("error writing header: %w", err)
	}

	return ew, nil
}

// Close finalizes the file by updating the header with the number of samples
// written and the checksum.
func (ew *Writer) Close() error {
	if err := ew.writeHeader(); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}

	// Leave the writer positioned after the last sample.
	if _, err := ew.w.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("error seeking to end of file: %w", err)
	}

	return nil
}

// WriteSamples appends samples of every lead to the file. leads holds one
// slice per lead, in lead order, all of the same length.
func (ew *Writer) WriteSamples(leads [][]int16) error {
	if len(leads) != len(ew.rec.Leads) {
		return invalidRecord("expected %d leads, got %d", len(ew.rec.Leads), len(leads))
	}

	n, err := samplesPerLead(leads)
	if err != nil {
		return err
	}

	writer := bufio.NewWriter(ew.w)

	frameSize := len(leads) * sampleSize
	buf := make([]byte, min(n, writeChunkFrames)*frameSize)
	for from := 0; from < n; from += writeChunkFrames {
		count := min(n-from, writeChunkFrames)
		interleave(buf, leads, from, count)
		if _, err := writer.Write(buf[:count*frameSize]); err != nil {
			return fmt.Errorf("error writing sample data: %w", err)
		}
	}

	// Ensure all data is flushed to the underlying writer
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("error writing sample data: %w", err)
	}

	ew.samples += n
	return nil
}

// writeHeader writes the header, including the variable-length block, at the
// start of the file.
func (ew *Writer) writeHeader() error {
	layout := newLayout(ew.rec, ew.samples)
	hdr, err := encodeHeader(ew.rec, layout)
	if err != nil {
		return err
	}
	stampChecksum(hdr)

	// Rewind to the beginning of the file.
	if _, err := ew.w.Seek(0, io.SeekStart); err != nil {
		return err
	}

	_, err = ew.w.Write(hdr)
	return err
}

// Save writes a record to the named file. Unless opts.Overwrite is set, an
// existing file is left untouched and an error wrapping fs.ErrExist is returned.
func Save(path string, rec *Record, opts SaveOptions) error {
	samples := leadSamples(rec.Leads)
	if _, err := samplesPerLead(samples); err != nil {
		return err
	}
	if err := validateHeader(rec); err != nil {
		return err
	}

	flags := os.O_RDWR | os.O_CREATE | os.O_TRUNC
	if !opts.Overwrite {
		flags |= os.O_EXCL
	}

	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("refusing to overwrite existing file: %w", err)
		}
		return err
	}

	ew, err := Create(f, *rec)
	if err == nil {
		err = ew.WriteSamples(samples)
	}
	if err == nil {
		err = ew.Close()
	}

	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		// Don't leave a truncated file behind.
		_ = os.Remove(path)
	}
	return err
}
