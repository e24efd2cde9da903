package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sergev/dualmode/controller"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the controller status ports for each drive",
	Run: func(cmd *cobra.Command, args []string) {
		m := newMachine()
		for drive := 0; drive < 2; drive++ {
			m.host.Select(drive, 0)
			s0 := m.c.In(m.q.Now(), controller.PortStatus0)
			s1 := m.c.In(m.q.Now(), controller.PortStatus1)
			fmt.Printf("Drive %d: status0=0x%02x status1=0x%02x\n", drive, s0, s1)
			fmt.Printf("  write protect:  %v\n", s0&0x01 != 0)
			fmt.Printf("  ready:          %v\n", s0&0x02 != 0)
			fmt.Printf("  track 0:        %v\n", s0&0x04 != 0)
			fmt.Printf("  write fault:    %v\n", s0&0x08 != 0)
			fmt.Printf("  seek complete:  %v\n", s0&0x10 != 0)
			fmt.Printf("  loss of sync:   %v\n", s0&0x20 != 0)
			fmt.Printf("  floppy select:  %v\n", s1&0x01 != 0)
			fmt.Printf("  busy:           %v\n", s1&0x02 != 0)
			fmt.Printf("  motor on:       %v\n", s1&0x04 != 0)
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
