// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/OpenPSG/ishne"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// writeTestFile saves a three lead recording (I, II, V2) and returns its path.
func writeTestFile(t *testing.T) string {
	t.Helper()

	rec := &ishne.Record{
		FirstName:    "Jane",
		LastName:     "Doe",
		ID:           "PT-0042",
		Sex:          ishne.SexFemale,
		RecordDate:   time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		StartTime:    ishne.Clock{Hour: 9, Minute: 30, Valid: true},
		SampleRate:   200,
		RecorderType: ishne.RecorderDigital,
		VarBlock:     "treadmill test",
	}
	for i, spec := range []ishne.LeadSpec{ishne.LeadI, ishne.LeadII, ishne.LeadV2} {
		rec.Leads = append(rec.Leads, ishne.Lead{
			Spec:       spec,
			Quality:    ishne.QualityGood,
			Resolution: 5000,
			Samples:    []int16{int16(i * 100), int16(i*100 + 1), int16(i*100 + 2), int16(i*100 + 3)},
		})
	}

	path := filepath.Join(t.TempDir(), "test.ecg")
	require.NoError(t, ishne.Save(path, rec, ishne.SaveOptions{}))
	return path
}

func execute(args ...string) (string, error) {
	var out bytes.Buffer
	rootCmd := NewRootCmd()
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func corrupt(t *testing.T, path string) {
	t.Helper()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	// Flip a byte of the last, unused lead slot.
	b[158+2*11] ^= 0x01
	require.NoError(t, os.WriteFile(path, b, 0o644))
}

func TestInfoCommand(t *testing.T) {
	path := writeTestFile(t)

	t.Run("Text", func(t *testing.T) {
		out, err := execute("info", path)
		require.NoError(t, err)

		assert.Contains(t, out, "Jane Doe")
		assert.Contains(t, out, "female")
		assert.Contains(t, out, "2024-06-01")
		assert.Contains(t, out, "09:30:00")
		assert.Contains(t, out, "200 Hz")
		assert.Contains(t, out, "V2, good, 5000 nV")
		assert.Contains(t, out, "treadmill test")
		assert.NotContains(t, out, "mismatch")
	})

	t.Run("YAML", func(t *testing.T) {
		out, err := execute("info", path, "--format", "yaml")
		require.NoError(t, err)

		var s summary
		require.NoError(t, yaml.Unmarshal([]byte(out), &s))
		assert.True(t, s.ChecksumOK)
		assert.Equal(t, "PT-0042", s.Subject.ID)
		assert.Equal(t, "absent", s.Subject.BirthDate)
		assert.Equal(t, 4, s.Recording.SamplesPerLead)
		assert.Equal(t, "20ms", s.Recording.Duration)
		require.Len(t, s.Leads, 3)
		assert.Equal(t, "I", s.Leads[0].Spec)
	})

	t.Run("Unknown format", func(t *testing.T) {
		_, err := execute("info", path, "--format", "xml")
		assert.Error(t, err)
	})

	t.Run("Checksum mismatch", func(t *testing.T) {
		corrupt(t, path)

		out, err := execute("info", path)
		require.NoError(t, err)
		assert.Contains(t, out, "mismatch")
	})
}

func TestVerifyCommand(t *testing.T) {
	path := writeTestFile(t)

	out, err := execute("verify", path)
	require.NoError(t, err)
	assert.Contains(t, out, "OK")
	assert.Contains(t, out, "3 leads")

	corrupt(t, path)

	_, err = execute("verify", path)
	require.ErrorIs(t, err, ishne.ErrChecksum)

	notISHNE := filepath.Join(t.TempDir(), "short.ecg")
	require.NoError(t, os.WriteFile(notISHNE, []byte("ISHNE1.0"), 0o644))

	_, err = execute("verify", notISHNE)
	require.ErrorIs(t, err, ishne.ErrFormat)
}

func TestSubsetCommand(t *testing.T) {
	path := writeTestFile(t)
	output := filepath.Join(t.TempDir(), "v2.ecg")

	out, err := execute("subset", path, output, "--lead", "v2")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 1 leads")

	rec, err := ishne.Load(output)
	require.NoError(t, err)
	require.Len(t, rec.Leads, 1)
	assert.Equal(t, ishne.LeadV2, rec.Leads[0].Spec)
	assert.Equal(t, []int16{200, 201, 202, 203}, rec.Leads[0].Samples)
	assert.Equal(t, "treadmill test", rec.VarBlock)
	assert.False(t, rec.FileDate.IsZero())

	t.Run("Refuses to overwrite", func(t *testing.T) {
		_, err := execute("subset", path, output, "--lead", "I")
		require.ErrorIs(t, err, os.ErrExist)

		_, err = execute("subset", path, output, "--lead", "I", "--lead", "II", "--overwrite")
		require.NoError(t, err)

		rec, err := ishne.Load(output)
		require.NoError(t, err)
		require.Len(t, rec.Leads, 2)
	})

	t.Run("Missing lead", func(t *testing.T) {
		_, err := execute("subset", path, filepath.Join(t.TempDir(), "v6.ecg"), "--lead", "V6")
		assert.Error(t, err)
	})

	t.Run("Unknown lead name", func(t *testing.T) {
		_, err := execute("subset", path, filepath.Join(t.TempDir(), "x.ecg"), "--lead", "V9")
		assert.Error(t, err)
	})

	t.Run("No leads", func(t *testing.T) {
		_, err := execute("subset", path, filepath.Join(t.TempDir(), "x.ecg"))
		assert.Error(t, err)
	})

	t.Run("Checksum mismatch", func(t *testing.T) {
		corrupt(t, path)
		dst := filepath.Join(t.TempDir(), "v2.ecg")

		_, err := execute("subset", path, dst, "--lead", "V2")
		require.ErrorIs(t, err, ishne.ErrChecksum)

		_, err = execute("subset", path, dst, "--lead", "V2", "--ignore-checksum")
		require.NoError(t, err)

		ok, err := verifyFile(dst)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func verifyFile(path string) (bool, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	return ishne.Verify(b)
}

func TestDumpCommand(t *testing.T) {
	path := writeTestFile(t)

	t.Run("All leads", func(t *testing.T) {
		out, err := execute("dump", path)
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 5)
		assert.Equal(t, "I,II,V2", lines[0])
		assert.Equal(t, "0,100,200", lines[1])
		assert.Equal(t, "3,103,203", lines[4])
	})

	t.Run("Single lead in millivolts", func(t *testing.T) {
		out, err := execute("dump", path, "--lead", "1", "--millivolts")
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 5)
		assert.Equal(t, "II", lines[0])
		assert.Equal(t, "0.5", lines[1])
		assert.Equal(t, "0.505", lines[2])
	})

	t.Run("Lead out of range", func(t *testing.T) {
		_, err := execute("dump", path, "--lead", "3")
		assert.Error(t, err)
	})
}

func TestLogLevel(t *testing.T) {
	path := writeTestFile(t)

	_, err := execute("verify", path, "--log-level", "debug")
	require.NoError(t, err)

	_, err = execute("verify", path, "--log-level", "loud")
	assert.Error(t, err)
}
