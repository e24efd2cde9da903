package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sergev/dualmode/config"
)

var writeVerify bool

var writeCmd = &cobra.Command{
	Use:   "write IMAGE",
	Short: "Write a disk image through the emulated controller",
	Long: "Write every sector of IMAGE onto blank simulated media through the\n" +
		"controller's write path, then optionally read it back and verify.",
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		image, err := os.ReadFile(args[0])
		cobra.CheckErr(err)

		geo := config.FloppyGeo
		n := config.FloppySectorLen
		m := newMachine()

		pos := 0
		for track := 0; track < geo.Tracks; track++ {
			for side := 0; side < geo.Sides; side++ {
				fmt.Printf("Writing track %d, side %d...\n", track, side)
				for s := 0; s < geo.SectorsPerTrack; s++ {
					payload := sectorSlice(image, pos, n)
					pos += n
					if !m.host.WriteSector(1, side, s, config.FloppyPreamble, payload) {
						cobra.CheckErr(fmt.Errorf("write of track %d side %d sector %d never completed", track, side, s))
					}
				}
			}
			if track < geo.Tracks-1 {
				seekFloppy(m, track+1)
			}
		}

		if !writeVerify {
			return
		}

		seekFloppy(m, 0)
		readBack, err := readFloppyImage(m)
		cobra.CheckErr(err)

		total := geo.Tracks * geo.Sides * geo.SectorsPerTrack * n
		if len(readBack) > total {
			readBack = readBack[:total]
		}
		source := make([]byte, total)
		copy(source, image)
		if bytes.Equal(readBack, source) {
			fmt.Println("Verify OK")
		} else {
			bad := 0
			for i := range source {
				if readBack[i] != source[i] {
					bad++
				}
			}
			cobra.CheckErr(fmt.Errorf("verify failed: %d bytes differ", bad))
		}
	},
}

func init() {
	writeCmd.Flags().BoolVar(&writeVerify, "verify", true, "read the media back and compare")
	rootCmd.AddCommand(writeCmd)
}
