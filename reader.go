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
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// readChunkFrames bounds the number of frames buffered by a LeadReader.
const readChunkFrames = 4096

// Reader reads ISHNE Holter ECG files. Opening a file only reads its header
// and variable-length block; samples are read on request.
//
// A Reader is not safe for concurrent use, as it seeks the underlying reader.
type Reader struct {
	r      io.ReadSeeker
	rec    *Record
	layout *Layout
	frames int // Number of whole frames in the sample block
}

// Open opens an ISHNE Holter ECG file for reading.
//
// If the stored checksum does not match, Open returns a usable Reader along
// with a *ChecksumError. Any other error leaves the Reader nil.
func Open(r io.ReadSeeker) (*Reader, error) {
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("error seeking to end of file: %w", err)
	}
	if size < HeaderSize {
		return nil, formatError("file is %d bytes, shorter than the %d byte header", size, HeaderSize)
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("error seeking to start of file: %w", err)
	}

	b := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, fmt.Errorf("error reading header: %w", err)
	}

	rec, layout, err := decodeHeader(b)
	if err != nil {
		return nil, err
	}

	if _, err := checksumEnd(b, int(size)); err != nil {
		return nil, err
	}
	if layout.VarBlockSize > 0 && (layout.VarBlockOffset < HeaderSize || layout.VarBlockOffset+layout.VarBlockSize > layout.ECGOffset) {
		return nil, formatError("variable block of %d bytes at offset %d outside of header (ECG block at %d)",
			layout.VarBlockSize, layout.VarBlockOffset, layout.ECGOffset)
	}

	// Read the remainder of the checksummed region, which holds the variable-length block.
	hdr := make([]byte, layout.ECGOffset)
	copy(hdr, b)
	if _, err := io.ReadFull(r, hdr[HeaderSize:]); err != nil {
		return nil, fmt.Errorf("error reading variable block: %w", err)
	}

	if layout.VarBlockSize > 0 {
		rec.VarBlock = decodeVarBlock(hdr[layout.VarBlockOffset : layout.VarBlockOffset+layout.VarBlockSize])
	}

	frames := int((size - int64(layout.ECGOffset)) / int64(layout.LeadCount*sampleSize))
	if layout.ECGSize != frames {
		logrus.Debugf("Header declares %d samples per lead, data block holds %d", layout.ECGSize, frames)
	}

	er := &Reader{
		r:      r,
		rec:    rec,
		layout: layout,
		frames: frames,
	}

	if computed := Checksum(hdr[checksumStart:]); computed != layout.Checksum {
		logrus.WithFields(logrus.Fields{
			"stored":   fmt.Sprintf("%04X", layout.Checksum),
			"computed": fmt.Sprintf("%04X", computed),
		}).Warn("Header checksum mismatch")

		return er, &ChecksumError{Stored: layout.Checksum, Computed: computed}
	}

	return er, nil
}

// Record returns a copy of the decoded metadata. Its leads hold no samples.
func (er *Reader) Record() *Record {
	return er.rec.Clone()
}

// Layout returns the block layout declared by the file header.
func (er *Reader) Layout() Layout {
	return *er.layout
}

// SamplesPerLead returns the number of samples available for each lead.
func (er *Reader) SamplesPerLead() int {
	return er.frames
}

// LoadSamples reads the whole sample block and returns a record holding the
// metadata and the samples of every lead.
func (er *Reader) LoadSamples() (*Record, error) {
	if _, err := er.r.Seek(int64(er.layout.ECGOffset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("error seeking to sample data: %w", err)
	}

	b := make([]byte, er.frames*er.layout.LeadCount*sampleSize)
	if _, err := io.ReadFull(er.r, b); err != nil {
		return nil, fmt.Errorf("error reading sample data: %w", err)
	}

	rec := er.rec.Clone()
	for i, samples := range deinterleave(b, er.layout.LeadCount) {
		rec.Leads[i].Samples = samples
	}

	return rec, nil
}

// ReadLead reads every sample of a single lead.
func (er *Reader) ReadLead(leadIndex int) ([]int16, error) {
	lr, err := er.Lead(leadIndex)
	if err != nil {
		return nil, err
	}

	samples := make([]int16, er.frames)
	n, err := lr.Read(samples)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return samples[:n], nil
}

// LeadReader reads the samples of a single lead from an ISHNE file.
type LeadReader struct {
	r             io.ReadSeeker
	lead          Lead
	leadIndex     int // Index of the lead to read
	leadCount     int // Number of leads in each frame
	ecgOffset     int64
	frames        int // Total number of frames
	currentSample int // Next sample to read
	buf           []byte
}

// Lead creates a new LeadReader for a specified lead index.
func (er *Reader) Lead(leadIndex int) (*LeadReader, error) {
	if leadIndex < 0 || leadIndex >= len(er.rec.Leads) {
		return nil, fmt.Errorf("lead index %d out of range, file has %d leads", leadIndex, len(er.rec.Leads))
	}

	return &LeadReader{
		r:         er.r,
		lead:      er.rec.Leads[leadIndex],
		leadIndex: leadIndex,
		leadCount: er.layout.LeadCount,
		ecgOffset: int64(er.layout.ECGOffset),
		frames:    er.frames,
	}, nil
}

// Read fills the provided slice with raw samples of the lead. It returns
// io.EOF once every sample has been read.
func (lr *LeadReader) Read(data []int16) (int, error) {
	frameSize := lr.leadCount * sampleSize

	n := 0
	for n < len(data) {
		if lr.currentSample >= lr.frames {
			return n, io.EOF
		}

		count := min(len(data)-n, lr.frames-lr.currentSample, readChunkFrames)
		if cap(lr.buf) < count*frameSize {
			lr.buf = make([]byte, count*frameSize)
		}
		buf := lr.buf[:count*frameSize]

		pos := lr.ecgOffset + int64(lr.currentSample)*int64(frameSize)
		if _, err := lr.r.Seek(pos, io.SeekStart); err != nil {
			return n, fmt.Errorf("error seeking to position: %w", err)
		}
		if _, err := io.ReadFull(lr.r, buf); err != nil {
			return n, fmt.Errorf("error reading sample data: %w", err)
		}

		n += extractLead(data[n:], buf, lr.leadCount, lr.leadIndex)
		lr.currentSample += count
	}

	return n, nil
}

// ReadMillivolts fills the provided slice with samples of the lead converted
// to millivolts.
func (lr *LeadReader) ReadMillivolts(data []float64) (int, error) {
	if lr.lead.Resolution <= 0 {
		return 0, fmt.Errorf("%w: lead %s has resolution %d nV", ErrNoResolution, lr.lead.Spec, lr.lead.Resolution)
	}

	raw := make([]int16, len(data))
	n, err := lr.Read(raw)
	for i := 0; i < n; i++ {
		data[i] = ToMillivolts(raw[i], lr.lead.Resolution)
	}
	return n, err
}

// Decode decodes an in-memory ISHNE file, including the samples of every lead.
// The returned record does not reference b.
//
// As with Open, a checksum mismatch returns the decoded record together with a
// *ChecksumError.
func Decode(b []byte) (*Record, error) {
	er, err := Open(bytes.NewReader(b))
	if err != nil && !errors.Is(err, ErrChecksum) {
		return nil, err
	}

	rec, loadErr := er.LoadSamples()
	if loadErr != nil {
		return nil, loadErr
	}
	return rec, err
}

// Load reads an ISHNE file from disk, including the samples of every lead.
func Load(path string) (*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	er, err := Open(f)
	if err != nil && !errors.Is(err, ErrChecksum) {
		return nil, err
	}

	rec, loadErr := er.LoadSamples()
	if loadErr != nil {
		return nil, loadErr
	}
	return rec, err
}
