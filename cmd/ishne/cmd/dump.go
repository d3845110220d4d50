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
	"encoding/csv"
	"errors"
	"os"
	"strconv"

	"github.com/OpenPSG/ishne"
	"github.com/spf13/cobra"
)

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <file>",
		Short: "Print the samples of an ISHNE file as CSV",
		Long: `Print the samples of an ISHNE file as CSV, one row per sample and one
column per lead. Values are raw ADC units unless --millivolts is set.

Example:
  ishne dump recording.ecg --lead 0 --millivolts`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			leadIndex, _ := cmd.Flags().GetInt("lead")
			millivolts, _ := cmd.Flags().GetBool("millivolts")

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			er, err := ishne.Open(f)
			if err != nil && !errors.Is(err, ishne.ErrChecksum) {
				return err
			}

			// Only read the requested lead from disk.
			var leads []ishne.Lead
			if leadIndex >= 0 {
				samples, err := er.ReadLead(leadIndex)
				if err != nil {
					return err
				}
				lead := er.Record().Leads[leadIndex]
				lead.Samples = samples
				leads = []ishne.Lead{lead}
			} else {
				rec, err := er.LoadSamples()
				if err != nil {
					return err
				}
				leads = rec.Leads
			}

			columns := make([][]string, len(leads))
			header := make([]string, len(leads))
			for i, lead := range leads {
				header[i] = lead.Spec.String()
				columns[i], err = formatSamples(lead, millivolts)
				if err != nil {
					return err
				}
			}

			w := csv.NewWriter(cmd.OutOrStdout())
			if err := w.Write(header); err != nil {
				return err
			}

			row := make([]string, len(leads))
			for t := 0; t < er.SamplesPerLead(); t++ {
				for i := range columns {
					row[i] = columns[i][t]
				}
				if err := w.Write(row); err != nil {
					return err
				}
			}

			w.Flush()
			return w.Error()
		},
	}

	cmd.Flags().Int("lead", -1, "Index of the lead to print, all leads if negative")
	cmd.Flags().Bool("millivolts", false, "Convert samples to millivolts")

	return cmd
}

func formatSamples(lead ishne.Lead, millivolts bool) ([]string, error) {
	values := make([]string, len(lead.Samples))

	if !millivolts {
		for t, raw := range lead.Samples {
			values[t] = strconv.Itoa(int(raw))
		}
		return values, nil
	}

	mv, err := lead.Millivolts()
	if err != nil {
		return nil, err
	}
	for t, v := range mv {
		values[t] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return values, nil
}
