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
	"time"

	"github.com/OpenPSG/ishne"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newSubsetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subset <input> <output>",
		Short: "Write a copy of an ISHNE file keeping only some leads",
		Long: `Write a copy of an ISHNE file keeping only the named leads, in their
original order. The lead count, block offsets and checksum of the output
are derived from its new contents.

Example:
  ishne subset recording.ecg v2.ecg --lead V2`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			names, _ := cmd.Flags().GetStringSlice("lead")
			overwrite, _ := cmd.Flags().GetBool("overwrite")
			ignoreChecksum, _ := cmd.Flags().GetBool("ignore-checksum")

			if len(names) == 0 {
				return errors.New("at least one --lead is required")
			}

			specs := make([]ishne.LeadSpec, 0, len(names))
			for _, name := range names {
				spec, err := ishne.ParseLeadSpec(name)
				if err != nil {
					return err
				}
				specs = append(specs, spec)
			}

			rec, err := ishne.Load(args[0])
			if err != nil {
				if !ignoreChecksum || !errors.Is(err, ishne.ErrChecksum) {
					return err
				}
				logrus.WithError(err).Warn("Continuing despite checksum mismatch")
			}

			if rec.Retain(specs...) == 0 {
				return fmt.Errorf("none of the leads %v found in %s", names, args[0])
			}
			y, m, d := time.Now().UTC().Date()
			rec.FileDate = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

			if err := ishne.Save(args[1], rec, ishne.SaveOptions{Overwrite: overwrite}); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d leads to %s\n", len(rec.Leads), args[1])
			return nil
		},
	}

	cmd.Flags().StringSlice("lead", nil, "Name of a lead to keep (e.g. V2), may be repeated")
	cmd.Flags().Bool("overwrite", false, "Replace the output file if it exists")
	cmd.Flags().Bool("ignore-checksum", false, "Process the input even if its checksum does not match")

	return cmd
}
