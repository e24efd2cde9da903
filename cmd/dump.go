package cmd

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sergev/dualmode/config"
)

var (
	dumpHdd    bool
	dumpTrack  int
	dumpSide   int
	dumpSector int
)

var dumpCmd = &cobra.Command{
	Use:   "dump IMAGE",
	Short: "Read one sector through the controller and hex-dump the buffer",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		image, err := os.ReadFile(args[0])
		cobra.CheckErr(err)

		m := newMachine()
		drive := 1
		n := config.FloppySectorLen
		if dumpHdd {
			drive = 0
			n = config.HddSectorLen
			loadHddImage(m, image)
			m.host.Select(drive, dumpSide)
			if dumpTrack > 0 {
				m.host.Seek(dumpTrack, true)
			}
		} else {
			loadFloppyImage(m, image)
			m.host.Select(drive, dumpSide)
			seekFloppy(m, dumpTrack)
		}

		data, ok := m.host.ReadSector(drive, dumpSide, dumpSector, n+1)
		if !ok {
			cobra.CheckErr(fmt.Errorf("read of track %d side %d sector %d never completed",
				dumpTrack, dumpSide, dumpSector))
		}
		fmt.Printf("Track %d, side %d, sector %d (sync 0x%02x):\n",
			dumpTrack, dumpSide, dumpSector, data[0])
		fmt.Print(hex.Dump(data[1:]))
	},
}

func init() {
	dumpCmd.Flags().BoolVar(&dumpHdd, "hdd", false, "use the hard disk at drive 0")
	dumpCmd.Flags().IntVarP(&dumpTrack, "track", "t", 0, "track or cylinder")
	dumpCmd.Flags().IntVarP(&dumpSide, "side", "s", 0, "side or head")
	dumpCmd.Flags().IntVar(&dumpSector, "sector", 0, "sector number")
	rootCmd.AddCommand(dumpCmd)
}
