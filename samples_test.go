// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package ishne_test

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/OpenPSG/ishne"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterleaving(t *testing.T) {
	const nleads, n = 3, 7

	rec := newTestRecord(nleads, n)
	b, err := ishne.Encode(rec)
	require.NoError(t, err)

	ecgOffset := int(binary.LittleEndian.Uint32(b[22:]))
	block := b[ecgOffset:]
	require.Len(t, block, nleads*n*2)

	for s := 0; s < n; s++ {
		for i := 0; i < nleads; i++ {
			pos := (s*nleads + i) * 2
			assert.Equal(t, rec.Leads[i].Samples[s], int16(binary.LittleEndian.Uint16(block[pos:])), "lead %d sample %d", i, s)
		}
	}

	decoded, err := ishne.Decode(b)
	require.NoError(t, err)
	for i := range rec.Leads {
		assert.Equal(t, rec.Leads[i].Samples, decoded.Leads[i].Samples)
	}
}

func TestNegativeSamples(t *testing.T) {
	rec := newTestRecord(2, 4)
	rec.Leads[0].Samples = []int16{math.MinInt16, -1, 0, math.MaxInt16}
	rec.Leads[1].Samples = []int16{-32000, -200, 200, 32000}

	b, err := ishne.Encode(rec)
	require.NoError(t, err)

	decoded, err := ishne.Decode(b)
	require.NoError(t, err)
	assert.Equal(t, rec.Leads, decoded.Leads)
}

func TestTrailingPartialFrame(t *testing.T) {
	b, err := ishne.Encode(newTestRecord(3, 20))
	require.NoError(t, err)

	// Three stray bytes, less than one frame of three leads.
	b = append(b, 1, 2, 3)

	rec, err := ishne.Decode(b)
	require.NoError(t, err)
	assert.Equal(t, 20, rec.SamplesPerLead())
	for _, lead := range rec.Leads {
		assert.Len(t, lead.Samples, 20)
	}
}

func TestUnitConversion(t *testing.T) {
	assert.InDelta(t, 2.5, ishne.ToMillivolts(1000, 2500), 1e-12)
	assert.InDelta(t, -0.0025, ishne.ToMillivolts(-1, 2500), 1e-12)
	assert.InDelta(t, 0.0, ishne.ToMillivolts(0, 2500), 1e-12)

	assert.Equal(t, int16(1000), ishne.FromMillivolts(2.5, 2500))
	assert.Equal(t, int16(-1), ishne.FromMillivolts(-0.0025, 2500))
	assert.Equal(t, int16(math.MaxInt16), ishne.FromMillivolts(1000, 2500))
	assert.Equal(t, int16(math.MinInt16), ishne.FromMillivolts(-1000, 2500))
	assert.Equal(t, int16(0), ishne.FromMillivolts(1, 0))

	// Converting back and forth is lossless for every raw value.
	for raw := math.MinInt16; raw <= math.MaxInt16; raw += 97 {
		assert.Equal(t, int16(raw), ishne.FromMillivolts(ishne.ToMillivolts(int16(raw), 2500), 2500))
	}
}

func TestLeadMillivolts(t *testing.T) {
	lead := ishne.Lead{Spec: ishne.LeadV1, Resolution: 5000, Samples: []int16{0, 200, -200, 1}}

	mv, err := lead.Millivolts()
	require.NoError(t, err)
	require.Len(t, mv, 4)
	assert.InDelta(t, 0.0, mv[0], 1e-12)
	assert.InDelta(t, 1.0, mv[1], 1e-12)
	assert.InDelta(t, -1.0, mv[2], 1e-12)
	assert.InDelta(t, 0.005, mv[3], 1e-12)

	// The raw samples are left untouched.
	assert.Equal(t, []int16{0, 200, -200, 1}, lead.Samples)

	lead.Resolution = 0
	_, err = lead.Millivolts()
	require.ErrorIs(t, err, ishne.ErrNoResolution)
}

func TestNoConversionDrift(t *testing.T) {
	rec := newTestRecord(2, 100)
	want, err := ishne.Encode(rec)
	require.NoError(t, err)

	b := want
	for i := 0; i < 5; i++ {
		decoded, err := ishne.Decode(b)
		require.NoError(t, err)

		for j := range decoded.Leads {
			_, err := decoded.Leads[j].Millivolts()
			require.NoError(t, err)
		}

		b, err = ishne.Encode(decoded)
		require.NoError(t, err)
	}

	assert.Equal(t, want, b)
}
