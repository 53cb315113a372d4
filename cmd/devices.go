// SPDX-License-Identifier: MIT
package cmd

import (
	"mixref/internal/capture"
	"mixref/internal/report"

	"github.com/spf13/cobra"
)

func newDevicesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List audio input devices for capture",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := capture.Initialize(); err != nil {
				return err
			}
			defer capture.Terminate()

			devices, err := capture.InputDevices()
			if err != nil {
				return err
			}
			report.Devices(a.out, devices, capture.DefaultInputID())
			return nil
		},
	}
}
