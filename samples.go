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
	"fmt"
	"math"
)

// The sample block is a sequence of frames, one per sample index. Each frame
// holds one little-endian int16 per lead, in lead order.

const sampleSize = 2

// ToMillivolts converts a raw sample to millivolts given the lead resolution in nV.
func ToMillivolts(raw int16, resolution int) float64 {
	return float64(raw) * float64(resolution) / 1e6
}

// FromMillivolts converts millivolts to a raw sample given the lead resolution
// in nV, rounding to the nearest step and saturating at the int16 range.
func FromMillivolts(mv float64, resolution int) int16 {
	if resolution == 0 {
		return 0 // Avoid division by zero
	}
	raw := math.Round(mv * 1e6 / float64(resolution))
	switch {
	case raw > math.MaxInt16:
		return math.MaxInt16
	case raw < math.MinInt16:
		return math.MinInt16
	}
	return int16(raw)
}

// Millivolts returns the samples of the lead converted to millivolts. The raw
// samples are left untouched.
func (l *Lead) Millivolts() ([]float64, error) {
	if l.Resolution <= 0 {
		return nil, fmt.Errorf("%w: lead %s has resolution %d nV", ErrNoResolution, l.Spec, l.Resolution)
	}
	mv := make([]float64, len(l.Samples))
	for i, raw := range l.Samples {
		mv[i] = ToMillivolts(raw, l.Resolution)
	}
	return mv, nil
}

// samplesPerLead checks that every lead holds the same number of samples and
// returns that number.
func samplesPerLead(leads [][]int16) (int, error) {
	if len(leads) == 0 {
		return 0, invalidRecord("record has no leads")
	}
	n := len(leads[0])
	for i, samples := range leads[1:] {
		if len(samples) != n {
			return 0, invalidRecord("lead %d has %d samples, lead 0 has %d", i+1, len(samples), n)
		}
	}
	return n, nil
}

// leadSamples returns the sample slices of leads.
func leadSamples(leads []Lead) [][]int16 {
	samples := make([][]int16, len(leads))
	for i := range leads {
		samples[i] = leads[i].Samples
	}
	return samples
}

// interleave multiplexes count samples of every lead, starting at sample index
// from, into dst. dst must hold count frames.
func interleave(dst []byte, leads [][]int16, from, count int) {
	frameSize := len(leads) * sampleSize
	for t := 0; t < count; t++ {
		frame := dst[t*frameSize:]
		for i, samples := range leads {
			binary.LittleEndian.PutUint16(frame[i*sampleSize:], uint16(samples[from+t]))
		}
	}
}

// deinterleave splits whole frames of b into per-lead sample slices. A
// trailing partial frame is ignored.
func deinterleave(b []byte, nleads int) [][]int16 {
	frameSize := nleads * sampleSize
	frames := len(b) / frameSize

	leads := make([][]int16, nleads)
	for i := range leads {
		leads[i] = make([]int16, frames)
	}
	for t := 0; t < frames; t++ {
		frame := b[t*frameSize:]
		for i := range leads {
			leads[i][t] = int16(binary.LittleEndian.Uint16(frame[i*sampleSize:]))
		}
	}
	return leads
}

// extractLead copies the samples of one lead out of whole frames of b.
func extractLead(dst []int16, b []byte, nleads, lead int) int {
	frameSize := nleads * sampleSize
	n := min(len(dst), len(b)/frameSize)
	for t := 0; t < n; t++ {
		dst[t] = int16(binary.LittleEndian.Uint16(b[t*frameSize+lead*sampleSize:]))
	}
	return n
}
