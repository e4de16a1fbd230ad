package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aristahw/tor-hwdriver/pkg/hwdriver/termfmt"
)

var driversCmd = &cobra.Command{
	Use:   "drivers",
	Short: "List the configured hardware drivers",
	RunE: func(cmd *cobra.Command, args []string) error {
		names := app.cfg.HardwareDriver.HardwareDrivers
		if len(names) == 0 {
			fmt.Println(termfmt.Yellow("no hardware_drivers configured"))
			return nil
		}

		t := termfmt.NewTable("DRIVER", "SEGMENTATION TYPE")
		for _, name := range names {
			segType := app.cfg.EffectiveSegmentationType()
			if name == "dummy" {
				segType = "-"
			}
			t.Row(name, segType)
		}
		t.Flush()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(driversCmd)
}
