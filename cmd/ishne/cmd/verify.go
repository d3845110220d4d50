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
	"fmt"
	"os"

	"github.com/OpenPSG/ishne"
	"github.com/spf13/cobra"
)

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <file>",
		Short: "Check the header checksum of an ISHNE file",
		Long: `Check the header checksum of an ISHNE file. The command fails if the
file is malformed or its checksum does not match.

Example:
  ishne verify recording.ecg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			er, err := ishne.Open(f)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: OK (checksum %04X, %d leads, %d samples per lead)\n",
				args[0], er.Layout().Checksum, er.Layout().LeadCount, er.SamplesPerLead())
			return nil
		},
	}
}
