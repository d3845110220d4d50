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
	"encoding/binary"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Byte offsets of the fixed header fields.
const (
	offVarBlockSize   = 10  // int32
	offECGSize        = 14  // int32, samples per lead
	offVarBlockOffset = 18  // int32
	offECGOffset      = 22  // int32
	offFileVersion    = 26  // int16
	offFirstName      = 28  // 40 bytes
	offLastName       = 68  // 40 bytes
	offID             = 108 // 20 bytes
	offSex            = 128 // int16
	offRace           = 130 // int16
	offBirthDate      = 132 // 3 x int16 (day, month, year)
	offRecordDate     = 138 // 3 x int16 (day, month, year)
	offFileDate       = 144 // 3 x int16 (day, month, year)
	offStartTime      = 150 // 3 x int16 (hour, minute, second)
	offLeadCount      = 156 // int16
	offLeadSpec       = 158 // 12 x int16
	offLeadQuality    = 182 // 12 x int16
	offResolution     = 206 // 12 x int16, nV
	offPacemaker      = 230 // int16
	offRecorderType   = 232 // 40 bytes
	offSampleRate     = 272 // int16, Hz
	offProprietary    = 274 // 80 bytes
	offCopyright      = 354 // 80 bytes
	offReserved       = 434 // 88 bytes
)

// Widths of the fixed-width text fields.
const (
	nameWidth         = 40
	idWidth           = 20
	recorderTypeWidth = 40
	proprietaryWidth  = 80
	copyrightWidth    = 80
	reservedWidth     = 88
)

// notAvailable marks absent values throughout the header.
const notAvailable = -9

// decodeHeader parses the magic, checksum and fixed header. The lead slice of
// the returned record holds metadata only.
func decodeHeader(b []byte) (*Record, *Layout, error) {
	if len(b) < HeaderSize {
		return nil, nil, formatError("header is %d bytes, expected %d", len(b), HeaderSize)
	}

	if magic := string(b[:len(Magic)]); magic != Magic {
		return nil, nil, formatError("bad magic number %q", magic)
	}

	layout := &Layout{
		Checksum:       binary.LittleEndian.Uint16(b[checksumOffset:]),
		VarBlockSize:   getInt32(b, offVarBlockSize),
		ECGSize:        getInt32(b, offECGSize),
		VarBlockOffset: getInt32(b, offVarBlockOffset),
		ECGOffset:      getInt32(b, offECGOffset),
		LeadCount:      int(getInt16(b, offLeadCount)),
	}

	if layout.LeadCount < 1 || layout.LeadCount > MaxLeads {
		return nil, nil, formatError("lead count %d at offset %d, must be between 1 and %d", layout.LeadCount, offLeadCount, MaxLeads)
	}
	if layout.VarBlockSize < 0 {
		return nil, nil, formatError("negative variable block size %d at offset %d", layout.VarBlockSize, offVarBlockSize)
	}

	rec := &Record{
		FileVersion:  getInt16(b, offFileVersion),
		FirstName:    getText(b, offFirstName, nameWidth),
		LastName:     getText(b, offLastName, nameWidth),
		ID:           getText(b, offID, idWidth),
		Sex:          Sex(getInt16(b, offSex)),
		Race:         Race(getInt16(b, offRace)),
		BirthDate:    getDate(b, offBirthDate),
		RecordDate:   getDate(b, offRecordDate),
		FileDate:     getDate(b, offFileDate),
		StartTime:    getClock(b, offStartTime),
		SampleRate:   int(getInt16(b, offSampleRate)),
		Pacemaker:    Pacemaker(getInt16(b, offPacemaker)),
		RecorderType: getText(b, offRecorderType, recorderTypeWidth),
		Proprietary:  getText(b, offProprietary, proprietaryWidth),
		Copyright:    getText(b, offCopyright, copyrightWidth),
		Reserved:     getText(b, offReserved, reservedWidth),
	}

	if !rec.Sex.Known() {
		logrus.Debugf("Got unknown sex code %d", int16(rec.Sex))
	}
	if !rec.Race.Known() {
		logrus.Debugf("Got unknown race code %d", int16(rec.Race))
	}
	if !rec.Pacemaker.Known() {
		logrus.Debugf("Got unknown pacemaker code %d", int16(rec.Pacemaker))
	}

	rec.Leads = make([]Lead, layout.LeadCount)
	for i := range rec.Leads {
		lead := &rec.Leads[i]
		lead.Spec = LeadSpec(getInt16(b, offLeadSpec+2*i))
		lead.Quality = LeadQuality(getInt16(b, offLeadQuality+2*i))
		lead.Resolution = int(getInt16(b, offResolution+2*i))

		if !lead.Spec.Known() {
			logrus.Debugf("Got unknown lead spec code %d for lead %d", int16(lead.Spec), i)
		}
		if !lead.Quality.Known() {
			logrus.Debugf("Got unknown lead quality code %d for lead %d", int16(lead.Quality), i)
		}
	}

	return rec, layout, nil
}

// newLayout derives the block sizes and offsets of an encoded record purely
// from its current contents.
func newLayout(rec *Record, samplesPerLead int) *Layout {
	return &Layout{
		VarBlockSize:   len(rec.VarBlock),
		ECGSize:        samplesPerLead,
		VarBlockOffset: HeaderSize,
		ECGOffset:      HeaderSize + len(rec.VarBlock),
		LeadCount:      len(rec.Leads),
	}
}

// encodeHeader encodes the magic, fixed header and variable-length block of a
// record. The checksum is left blank. The lead samples are not inspected; the
// number of samples per lead is taken from the layout.
func encodeHeader(rec *Record, layout *Layout) ([]byte, error) {
	if err := validateHeader(rec); err != nil {
		return nil, err
	}
	if layout.ECGSize > math.MaxInt32 || layout.ECGOffset > math.MaxInt32 {
		return nil, invalidRecord("recording too large: %d samples per lead", layout.ECGSize)
	}

	b := make([]byte, layout.ECGOffset)
	copy(b, Magic)

	putInt32(b, offVarBlockSize, layout.VarBlockSize)
	putInt32(b, offECGSize, layout.ECGSize)
	putInt32(b, offVarBlockOffset, layout.VarBlockOffset)
	putInt32(b, offECGOffset, layout.ECGOffset)
	putInt16(b, offFileVersion, int(rec.FileVersion))
	copy(b[offFirstName:], rec.FirstName)
	copy(b[offLastName:], rec.LastName)
	copy(b[offID:], rec.ID)
	putInt16(b, offSex, int(rec.Sex))
	putInt16(b, offRace, int(rec.Race))
	putDate(b, offBirthDate, rec.BirthDate)
	putDate(b, offRecordDate, rec.RecordDate)
	putDate(b, offFileDate, rec.FileDate)
	putClock(b, offStartTime, rec.StartTime)
	putInt16(b, offLeadCount, layout.LeadCount)

	for i := 0; i < MaxLeads; i++ {
		spec, quality, resolution := notAvailable, notAvailable, notAvailable
		if i < len(rec.Leads) {
			lead := rec.Leads[i]
			spec, quality, resolution = int(lead.Spec), int(lead.Quality), lead.Resolution
		}
		putInt16(b, offLeadSpec+2*i, spec)
		putInt16(b, offLeadQuality+2*i, quality)
		putInt16(b, offResolution+2*i, resolution)
	}

	putInt16(b, offPacemaker, int(rec.Pacemaker))
	copy(b[offRecorderType:], rec.RecorderType)
	putInt16(b, offSampleRate, rec.SampleRate)
	copy(b[offProprietary:], rec.Proprietary)
	copy(b[offCopyright:], rec.Copyright)
	copy(b[offReserved:], rec.Reserved)

	copy(b[layout.VarBlockOffset:], rec.VarBlock)

	return b, nil
}

// validateHeader checks that every header field of a record fits its slot.
func validateHeader(rec *Record) error {
	if len(rec.Leads) < 1 || len(rec.Leads) > MaxLeads {
		return invalidRecord("record has %d leads, must be between 1 and %d", len(rec.Leads), MaxLeads)
	}
	if rec.SampleRate <= 0 || rec.SampleRate > math.MaxInt16 {
		return invalidRecord("sample rate %d Hz out of range", rec.SampleRate)
	}

	texts := []struct {
		field string
		value string
		width int
	}{
		{"first name", rec.FirstName, nameWidth},
		{"last name", rec.LastName, nameWidth},
		{"id", rec.ID, idWidth},
		{"recorder type", rec.RecorderType, recorderTypeWidth},
		{"proprietary", rec.Proprietary, proprietaryWidth},
		{"copyright", rec.Copyright, copyrightWidth},
		{"reserved", rec.Reserved, reservedWidth},
	}
	for _, text := range texts {
		if len(text.value) > text.width {
			return invalidRecord("%s is %d bytes, max is %d bytes", text.field, len(text.value), text.width)
		}
	}

	for i, lead := range rec.Leads {
		if lead.Resolution < math.MinInt16 || lead.Resolution > math.MaxInt16 {
			return invalidRecord("lead %d resolution %d nV out of range", i, lead.Resolution)
		}
	}

	dates := []struct {
		field string
		value time.Time
	}{
		{"birth date", rec.BirthDate},
		{"record date", rec.RecordDate},
		{"file date", rec.FileDate},
	}
	for _, date := range dates {
		if !date.value.IsZero() && (date.value.Year() < 1 || date.value.Year() > math.MaxInt16) {
			return invalidRecord("%s year %d out of range", date.field, date.value.Year())
		}
	}

	if c := rec.StartTime; c.Valid && !validClock(c.Hour, c.Minute, c.Second) {
		return invalidRecord("start time %02d:%02d:%02d is not a time of day", c.Hour, c.Minute, c.Second)
	}

	return nil
}

// decodeVarBlock returns the text of a variable-length block with its trailing
// padding removed.
func decodeVarBlock(b []byte) string {
	return strings.TrimRight(string(b), "\x00")
}

func getInt16(b []byte, off int) int16 {
	return int16(binary.LittleEndian.Uint16(b[off:]))
}

func getInt32(b []byte, off int) int {
	return int(int32(binary.LittleEndian.Uint32(b[off:])))
}

func putInt16(b []byte, off int, v int) {
	binary.LittleEndian.PutUint16(b[off:], uint16(int16(v)))
}

func putInt32(b []byte, off int, v int) {
	binary.LittleEndian.PutUint32(b[off:], uint32(int32(v)))
}

// getText reads a fixed-width text field, trimming trailing NUL and space padding.
func getText(b []byte, off, width int) string {
	return strings.TrimRight(string(b[off:off+width]), "\x00 ")
}

// getDate reads a (day, month, year) triple. Zero, not available or otherwise
// impossible dates are absent and returned as the zero time.
func getDate(b []byte, off int) time.Time {
	day, month, year := int(getInt16(b, off)), int(getInt16(b, off+2)), int(getInt16(b, off+4))
	if year <= 0 || month < 1 || month > 12 || day < 1 {
		return time.Time{}
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}
	}
	return t
}

func putDate(b []byte, off int, t time.Time) {
	if t.IsZero() {
		putInt16(b, off, notAvailable)
		putInt16(b, off+2, notAvailable)
		putInt16(b, off+4, notAvailable)
		return
	}
	year, month, day := t.Date()
	putInt16(b, off, day)
	putInt16(b, off+2, int(month))
	putInt16(b, off+4, year)
}

// getClock reads an (hour, minute, second) triple.
func getClock(b []byte, off int) Clock {
	hour, minute, second := int(getInt16(b, off)), int(getInt16(b, off+2)), int(getInt16(b, off+4))
	if !validClock(hour, minute, second) {
		return Clock{}
	}
	return Clock{Hour: hour, Minute: minute, Second: second, Valid: true}
}

func putClock(b []byte, off int, c Clock) {
	if !c.Valid {
		putInt16(b, off, notAvailable)
		putInt16(b, off+2, notAvailable)
		putInt16(b, off+4, notAvailable)
		return
	}
	putInt16(b, off, c.Hour)
	putInt16(b, off+2, c.Minute)
	putInt16(b, off+4, c.Second)
}

func validClock(hour, minute, second int) bool {
	return hour >= 0 && hour < 24 && minute >= 0 && minute < 60 && second >= 0 && second < 60
}
