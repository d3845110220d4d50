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
	"strings"
)

// Code tables of the ISHNE Holter standard. Every type keeps its raw numeric
// code, so values outside the tables survive a decode/encode round trip; they
// report Known() == false and print as "unknown(N)".

// LeadSpec identifies the electrode placement of a lead (table 1).
type LeadSpec int16

const (
	LeadAbsent  LeadSpec = -9
	LeadUnknown LeadSpec = 0
	LeadGeneric LeadSpec = 1
	LeadX       LeadSpec = 2
	LeadY       LeadSpec = 3
	LeadZ       LeadSpec = 4
	LeadI       LeadSpec = 5
	LeadII      LeadSpec = 6
	LeadIII     LeadSpec = 7
	LeadAVR     LeadSpec = 8
	LeadAVL     LeadSpec = 9
	LeadAVF     LeadSpec = 10
	LeadV1      LeadSpec = 11
	LeadV2      LeadSpec = 12
	LeadV3      LeadSpec = 13
	LeadV4      LeadSpec = 14
	LeadV5      LeadSpec = 15
	LeadV6      LeadSpec = 16
	LeadES      LeadSpec = 17
	LeadAS      LeadSpec = 18
	LeadAI      LeadSpec = 19
)

var leadSpecNames = map[LeadSpec]string{
	LeadAbsent: "absent", LeadUnknown: "unknown", LeadGeneric: "generic",
	LeadX: "X", LeadY: "Y", LeadZ: "Z",
	LeadI: "I", LeadII: "II", LeadIII: "III",
	LeadAVR: "aVR", LeadAVL: "aVL", LeadAVF: "aVF",
	LeadV1: "V1", LeadV2: "V2", LeadV3: "V3",
	LeadV4: "V4", LeadV5: "V5", LeadV6: "V6",
	LeadES: "ES", LeadAS: "AS", LeadAI: "AI",
}

func (s LeadSpec) Known() bool {
	_, ok := leadSpecNames[s]
	return ok
}

func (s LeadSpec) String() string {
	return codeName(leadSpecNames, s)
}

// ParseLeadSpec looks up a lead placement by name (e.g. "V2", case insensitive).
func ParseLeadSpec(name string) (LeadSpec, error) {
	for spec, n := range leadSpecNames {
		if strings.EqualFold(n, name) {
			return spec, nil
		}
	}
	return LeadUnknown, fmt.Errorf("unknown lead name %q", name)
}

// LeadQuality describes the recording quality of a lead (table 2).
type LeadQuality int16

const (
	QualityAbsent                 LeadQuality = -9
	QualityUnknown                LeadQuality = 0
	QualityGood                   LeadQuality = 1
	QualityIntermittentNoise      LeadQuality = 2
	QualityFrequentNoise          LeadQuality = 3
	QualityIntermittentDisconnect LeadQuality = 4
	QualityFrequentDisconnect     LeadQuality = 5
)

var leadQualityNames = map[LeadQuality]string{
	QualityAbsent:                 "absent",
	QualityUnknown:                "unknown",
	QualityGood:                   "good",
	QualityIntermittentNoise:      "intermittent noise",
	QualityFrequentNoise:          "frequent noise",
	QualityIntermittentDisconnect: "intermittent disconnect",
	QualityFrequentDisconnect:     "frequent disconnect",
}

func (q LeadQuality) Known() bool {
	_, ok := leadQualityNames[q]
	return ok
}

func (q LeadQuality) String() string {
	return codeName(leadQualityNames, q)
}

// Pacemaker identifies the type of pacemaker worn by the subject.
type Pacemaker int16

const (
	PacemakerAbsent              Pacemaker = -9
	PacemakerNone                Pacemaker = 0
	PacemakerUnknownType         Pacemaker = 1
	PacemakerSingleChamberUnipol Pacemaker = 2
	PacemakerDualChamberUnipol   Pacemaker = 3
	PacemakerSingleChamberBipol  Pacemaker = 4
	PacemakerDualChamberBipol    Pacemaker = 5
)

var pacemakerNames = map[Pacemaker]string{
	PacemakerAbsent:              "absent",
	PacemakerNone:                "none",
	PacemakerUnknownType:         "unknown type",
	PacemakerSingleChamberUnipol: "single chamber unipolar",
	PacemakerDualChamberUnipol:   "dual chamber unipolar",
	PacemakerSingleChamberBipol:  "single chamber bipolar",
	PacemakerDualChamberBipol:    "dual chamber bipolar",
}

func (p Pacemaker) Known() bool {
	_, ok := pacemakerNames[p]
	return ok
}

func (p Pacemaker) String() string {
	return codeName(pacemakerNames, p)
}

// Sex of the subject.
type Sex int16

const (
	SexUnknown Sex = 0
	SexMale    Sex = 1
	SexFemale  Sex = 2
)

var sexNames = map[Sex]string{
	SexUnknown: "unknown",
	SexMale:    "male",
	SexFemale:  "female",
}

func (s Sex) Known() bool {
	_, ok := sexNames[s]
	return ok
}

func (s Sex) String() string {
	return codeName(sexNames, s)
}

// Race of the subject. Codes beyond the table are used by some recorders.
type Race int16

const (
	RaceUnknown  Race = 0
	RaceWhite    Race = 1
	RaceBlack    Race = 2
	RaceOriental Race = 3
)

var raceNames = map[Race]string{
	RaceUnknown:  "unknown",
	RaceWhite:    "white",
	RaceBlack:    "black",
	RaceOriental: "oriental",
}

func (r Race) Known() bool {
	_, ok := raceNames[r]
	return ok
}

func (r Race) String() string {
	return codeName(raceNames, r)
}

func codeName[T ~int16](names map[T]string, code T) string {
	if name, ok := names[code]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int16(code))
}
