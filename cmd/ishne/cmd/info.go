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
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/OpenPSG/ishne"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// summary is the metadata of a file as reported by the info command.
type summary struct {
	File        string        `yaml:"file"`
	Checksum    string        `yaml:"checksum"`
	ChecksumOK  bool          `yaml:"checksum_ok"`
	FileVersion int16         `yaml:"file_version"`
	Subject     subject       `yaml:"subject"`
	Recording   recording     `yaml:"recording"`
	Leads       []leadSummary `yaml:"leads"`
	VarBlock    string        `yaml:"variable_block,omitempty"`
}

type subject struct {
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	ID        string `yaml:"id"`
	Sex       string `yaml:"sex"`
	Race      string `yaml:"race"`
	BirthDate string `yaml:"birth_date"`
	Pacemaker string `yaml:"pacemaker"`
}

type recording struct {
	RecordDate     string `yaml:"record_date"`
	StartTime      string `yaml:"start_time"`
	FileDate       string `yaml:"file_date"`
	RecorderType   string `yaml:"recorder_type"`
	SampleRate     int    `yaml:"sample_rate"`
	SamplesPerLead int    `yaml:"samples_per_lead"`
	Duration       string `yaml:"duration"`
	Proprietary    string `yaml:"proprietary,omitempty"`
	Copyright      string `yaml:"copyright,omitempty"`
	Reserved       string `yaml:"reserved,omitempty"`
}

type leadSummary struct {
	Spec       string `yaml:"spec"`
	Quality    string `yaml:"quality"`
	Resolution int    `yaml:"resolution_nv"`
}

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <file>",
		Short: "Show the header of an ISHNE file",
		Long: `Show the header of an ISHNE file without reading its samples.

Example:
  ishne info recording.ecg --format yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")

			s, err := summarize(args[0])
			if err != nil {
				return err
			}

			switch format {
			case "text":
				return writeSummaryText(cmd.OutOrStdout(), s)
			case "yaml":
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				if err := enc.Encode(s); err != nil {
					return fmt.Errorf("failed to encode summary: %w", err)
				}
				return enc.Close()
			default:
				return fmt.Errorf("unknown format %q", format)
			}
		},
	}

	cmd.Flags().String("format", "text", "Output format (text, yaml)")

	return cmd
}

func summarize(path string) (*summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	er, err := ishne.Open(f)
	if err != nil && !errors.Is(err, ishne.ErrChecksum) {
		return nil, err
	}

	rec := er.Record()

	s := &summary{
		File:        path,
		Checksum:    fmt.Sprintf("%04X", er.Layout().Checksum),
		ChecksumOK:  err == nil,
		FileVersion: rec.FileVersion,
		Subject: subject{
			FirstName: rec.FirstName,
			LastName:  rec.LastName,
			ID:        rec.ID,
			Sex:       rec.Sex.String(),
			Race:      rec.Race.String(),
			BirthDate: formatDate(rec.BirthDate),
			Pacemaker: rec.Pacemaker.String(),
		},
		Recording: recording{
			RecordDate:     formatDate(rec.RecordDate),
			StartTime:      rec.StartTime.String(),
			FileDate:       formatDate(rec.FileDate),
			RecorderType:   rec.RecorderType,
			SampleRate:     rec.SampleRate,
			SamplesPerLead: er.SamplesPerLead(),
			Proprietary:    rec.Proprietary,
			Copyright:      rec.Copyright,
			Reserved:       rec.Reserved,
		},
		VarBlock: rec.VarBlock,
	}

	if rec.SampleRate > 0 {
		s.Recording.Duration = (time.Duration(er.SamplesPerLead()) * time.Second / time.Duration(rec.SampleRate)).String()
	}

	for _, lead := range rec.Leads {
		s.Leads = append(s.Leads, leadSummary{
			Spec:       lead.Spec.String(),
			Quality:    lead.Quality.String(),
			Resolution: lead.Resolution,
		})
	}

	return s, nil
}

func writeSummaryText(out io.Writer, s *summary) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "File:\t%s\n", s.File)
	if s.ChecksumOK {
		fmt.Fprintf(w, "Checksum:\t%s\n", s.Checksum)
	} else {
		fmt.Fprintf(w, "Checksum:\t%s (mismatch)\n", s.Checksum)
	}
	fmt.Fprintf(w, "File version:\t%d\n", s.FileVersion)
	fmt.Fprintf(w, "Name:\t%s %s\n", s.Subject.FirstName, s.Subject.LastName)
	fmt.Fprintf(w, "ID:\t%s\n", s.Subject.ID)
	fmt.Fprintf(w, "Sex:\t%s\n", s.Subject.Sex)
	fmt.Fprintf(w, "Race:\t%s\n", s.Subject.Race)
	fmt.Fprintf(w, "Birth date:\t%s\n", s.Subject.BirthDate)
	fmt.Fprintf(w, "Pacemaker:\t%s\n", s.Subject.Pacemaker)
	fmt.Fprintf(w, "Record date:\t%s\n", s.Recording.RecordDate)
	fmt.Fprintf(w, "Start time:\t%s\n", s.Recording.StartTime)
	fmt.Fprintf(w, "File date:\t%s\n", s.Recording.FileDate)
	fmt.Fprintf(w, "Recorder:\t%s\n", s.Recording.RecorderType)
	fmt.Fprintf(w, "Sample rate:\t%d Hz\n", s.Recording.SampleRate)
	fmt.Fprintf(w, "Samples per lead:\t%d\n", s.Recording.SamplesPerLead)
	if s.Recording.Duration != "" {
		fmt.Fprintf(w, "Duration:\t%s\n", s.Recording.Duration)
	}
	for i, lead := range s.Leads {
		fmt.Fprintf(w, "Lead %d:\t%s, %s, %d nV\n", i, lead.Spec, lead.Quality, lead.Resolution)
	}
	if s.VarBlock != "" {
		fmt.Fprintf(w, "Variable block:\t%s\n", s.VarBlock)
	}

	return w.Flush()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "absent"
	}
	return t.Format(time.DateOnly)
}
