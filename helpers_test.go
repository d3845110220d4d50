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
	"time"

	"github.com/OpenPSG/ishne"
)

var standardLeads = []ishne.LeadSpec{
	ishne.LeadI, ishne.LeadII, ishne.LeadIII,
	ishne.LeadAVR, ishne.LeadAVL, ishne.LeadAVF,
	ishne.LeadV1, ishne.LeadV2, ishne.LeadV3,
	ishne.LeadV4, ishne.LeadV5, ishne.LeadV6,
}

// newTestRecord returns a record with nleads leads of n samples each. Sample t
// of lead i is 100*i + t (wrapping at the int16 range).
func newTestRecord(nleads, n int) *ishne.Record {
	rec := &ishne.Record{
		FileVersion:  1,
		FirstName:    "Jane",
		LastName:     "Doe",
		ID:           "PT-0042",
		Sex:          ishne.SexFemale,
		Race:         ishne.RaceWhite,
		BirthDate:    time.Date(1970, time.March, 14, 0, 0, 0, 0, time.UTC),
		RecordDate:   time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		FileDate:     time.Date(2024, time.June, 2, 0, 0, 0, 0, time.UTC),
		StartTime:    ishne.Clock{Hour: 9, Minute: 30, Second: 15, Valid: true},
		SampleRate:   200,
		Pacemaker:    ishne.PacemakerNone,
		RecorderType: ishne.RecorderDigital,
		Proprietary:  "Acme Holter 3000",
		Copyright:    "(c) Acme",
		Reserved:     "",
		VarBlock:     "Recorded during treadmill test.",
	}

	for i := 0; i < nleads; i++ {
		samples := make([]int16, n)
		for t := range samples {
			samples[t] = int16(100*i + t)
		}
		rec.Leads = append(rec.Leads, ishne.Lead{
			Spec:       standardLeads[i%len(standardLeads)],
			Quality:    ishne.QualityGood,
			Resolution: 2500,
			Samples:    samples,
		})
	}

	return rec
}
