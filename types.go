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
	"fmt"
	"time"
)

const (
	// Magic is the signature at the start of every ISHNE Holter ECG file.
	Magic = "ISHNE1.0"
	// MaxLeads is the number of lead slots in the fixed header.
	MaxLeads = 12
	// HeaderSize is the size of the magic, checksum and fixed header, i.e. the
	// offset of the variable-length block.
	HeaderSize = 522
)

// Record represents the decoded contents of an ISHNE Holter ECG file.
type Record struct {
	FileVersion  int16     // Version of the file format, -9 if unknown
	FirstName    string    // Subject first name (max 40 bytes)
	LastName     string    // Subject last name (max 40 bytes)
	ID           string    // Subject identification (max 20 bytes)
	Sex          Sex       // Subject sex
	Race         Race      // Subject race
	BirthDate    time.Time // Date of birth, zero if absent
	RecordDate   time.Time // Date of recording, zero if absent
	FileDate     time.Time // Date of creation of the output file, zero if absent
	StartTime    Clock     // Start time of the recording
	SampleRate   int       // Sampling rate in Hz
	Pacemaker    Pacemaker // Type of pacemaker
	RecorderType string    // Recorder type, usually "analog" or "digital" (max 40 bytes)
	Proprietary  string    // Proprietary information (max 80 bytes)
	Copyright    string    // Copyright notice (max 80 bytes)
	Reserved     string    // Reserved for future use (max 88 bytes)
	VarBlock     string    // Variable-length free-text block, empty if absent
	Leads        []Lead    // Details and samples of each lead, in storage order
}

// Lead represents a single recorded ECG channel.
type Lead struct {
	Spec       LeadSpec    // Electrode placement
	Quality    LeadQuality // Recording quality
	Resolution int         // Amplitude resolution in nV
	Samples    []int16     // Raw samples in ADC units
}

// Recorder types conventionally stored in the recorder type field.
const (
	RecorderAnalog  = "analog"
	RecorderDigital = "digital"
)

// Clock is a time of day. A Clock without Valid set is absent.
type Clock struct {
	Hour   int
	Minute int
	Second int
	Valid  bool
}

// NewClock returns a valid Clock holding the time of day of t.
func NewClock(t time.Time) Clock {
	return Clock{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second(), Valid: true}
}

// Duration returns the time elapsed since midnight.
func (c Clock) Duration() time.Duration {
	return time.Duration(c.Hour)*time.Hour + time.Duration(c.Minute)*time.Minute + time.Duration(c.Second)*time.Second
}

func (c Clock) String() string {
	if !c.Valid {
		return "absent"
	}
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour, c.Minute, c.Second)
}

// Layout describes where the blocks of a decoded file were found, as declared
// by its header. It is informational only; encoding always derives a fresh
// layout from the current contents of a Record.
type Layout struct {
	Checksum       uint16 // Checksum stored in the file
	VarBlockSize   int    // Length of the variable-length block in bytes
	ECGSize        int    // Declared number of samples per lead
	VarBlockOffset int    // Offset of the variable-length block
	ECGOffset      int    // Offset of the sample data block
	LeadCount      int    // Declared number of leads
}

// SamplesPerLead returns the number of samples held by each lead.
func (rec *Record) SamplesPerLead() int {
	if len(rec.Leads) == 0 {
		return 0
	}
	return len(rec.Leads[0].Samples)
}

// Duration returns the length of the recording, computed from the loaded samples.
func (rec *Record) Duration() time.Duration {
	if rec.SampleRate <= 0 {
		return 0
	}
	return time.Duration(rec.SamplesPerLead()) * time.Second / time.Duration(rec.SampleRate)
}

// StartDateTime combines the recording date and start time. It returns the
// zero time if either is absent.
func (rec *Record) StartDateTime() time.Time {
	if rec.RecordDate.IsZero() || !rec.StartTime.Valid {
		return time.Time{}
	}
	y, m, d := rec.RecordDate.Date()
	return time.Date(y, m, d, rec.StartTime.Hour, rec.StartTime.Minute, rec.StartTime.Second, 0, time.UTC)
}

// LeadBySpec returns the first lead with the given placement.
func (rec *Record) LeadBySpec(spec LeadSpec) (*Lead, bool) {
	for i := range rec.Leads {
		if rec.Leads[i].Spec == spec {
			return &rec.Leads[i], true
		}
	}
	return nil, false
}

// Retain removes every lead whose placement is not one of specs, keeping the
// original order. It returns the number of leads left.
func (rec *Record) Retain(specs ...LeadSpec) int {
	keep := make(map[LeadSpec]bool, len(specs))
	for _, spec := range specs {
		keep[spec] = true
	}

	leads := rec.Leads[:0]
	for _, lead := range rec.Leads {
		if keep[lead.Spec] {
			leads = append(leads, lead)
		}
	}
	clear(rec.Leads[len(leads):])
	rec.Leads = leads

	return len(leads)
}

// Clone returns a deep copy of the record.
func (rec *Record) Clone() *Record {
	c := *rec
	c.Leads = make([]Lead, len(rec.Leads))
	for i, lead := range rec.Leads {
		c.Leads[i] = lead
		if lead.Samples != nil {
			c.Leads[i].Samples = append([]int16(nil), lead.Samples...)
		}
	}
	return &c
}

// metadata returns a copy of the record whose leads hold no samples.
func (rec *Record) metadata() *Record {
	c := *rec
	c.Leads = make([]Lead, len(rec.Leads))
	for i, lead := range rec.Leads {
		c.Leads[i] = lead
		c.Leads[i].Samples = nil
	}
	return &c
}
