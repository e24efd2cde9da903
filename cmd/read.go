package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sergev/dualmode/config"
)

var (
	readOutput string
	readHdd    bool
)

var readCmd = &cobra.Command{
	Use:   "read IMAGE",
	Short: "Read a disk image back through the emulated controller",
	Long: "Load IMAGE onto the simulated medium, then read every sector through the\n" +
		"controller's host protocol and save the result.",
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		image, err := os.ReadFile(args[0])
		cobra.CheckErr(err)

		output := readOutput
		if output == "" {
			output = args[0] + ".out"
		}

		m := newMachine()
		var data []byte
		if readHdd {
			loadHddImage(m, image)
			data, err = readHddImage(m)
		} else {
			loadFloppyImage(m, image)
			data, err = readFloppyImage(m)
		}
		cobra.CheckErr(err)

		cobra.CheckErr(os.WriteFile(output, data, 0644))
		fmt.Printf("Read %d bytes to %s\n", len(data), output)
	},
}

func init() {
	readCmd.Flags().StringVarP(&readOutput, "output", "o", "", "output file (default IMAGE.out)")
	readCmd.Flags().BoolVar(&readHdd, "hdd", false, "use the hard disk at drive 0")
	rootCmd.AddCommand(readCmd)
}

// loadFloppyImage formats the simulated floppy from a raw image laid
// out track by track, side by side, sector by sector.
func loadFloppyImage(m *machine, image []byte) {
	geo := config.FloppyGeo
	n := config.FloppySectorLen
	pos := 0
	for track := 0; track < geo.Tracks; track++ {
		for side := 0; side < geo.Sides; side++ {
			sectors := make([][]byte, geo.SectorsPerTrack)
			for s := range sectors {
				sectors[s] = sectorSlice(image, pos, n)
				pos += n
			}
			m.floppy.LoadTrack(track, side, sectors)
		}
	}
}

func loadHddImage(m *machine, image []byte) {
	geo := config.HardDiskGeo
	n := config.HddSectorLen
	pos := 0
	for cyl := 0; cyl < geo.Cylinders; cyl++ {
		for head := 0; head < geo.Heads; head++ {
			sectors := make([][]byte, 32)
			for s := range sectors {
				sectors[s] = sectorSlice(image, pos, n)
				pos += n
			}
			m.hdd.LoadTrack(cyl, head, sectors)
		}
	}
}

// sectorSlice returns n bytes at pos, zero padded past the image end.
func sectorSlice(image []byte, pos, n int) []byte {
	sector := make([]byte, n)
	if pos < len(image) {
		copy(sector, image[pos:])
	}
	return sector
}

func readFloppyImage(m *machine) ([]byte, error) {
	geo := config.FloppyGeo
	n := config.FloppySectorLen
	var out []byte
	for track := 0; track < geo.Tracks; track++ {
		for side := 0; side < geo.Sides; side++ {
			fmt.Printf("Reading track %d, side %d...\n", track, side)
			for s := 0; s < geo.SectorsPerTrack; s++ {
				// First buffer byte is the sync mark; payload follows.
				data, ok := m.host.ReadSector(1, side, s, n+1)
				if !ok {
					return nil, fmt.Errorf("read of track %d side %d sector %d never completed", track, side, s)
				}
				out = append(out, data[1:]...)
			}
		}
		if track < geo.Tracks-1 {
			seekFloppy(m, track+1)
		}
	}
	return out, nil
}

// seekFloppy steps the simulated floppy to the target track.
func seekFloppy(m *machine, target int) {
	delta := target - m.floppy.CurrentTrack()
	if delta > 0 {
		m.host.Seek(delta, true)
	} else if delta < 0 {
		m.host.Seek(-delta, false)
	}
}

func readHddImage(m *machine) ([]byte, error) {
	geo := config.HardDiskGeo
	n := config.HddSectorLen
	var out []byte
	for cyl := 0; cyl < geo.Cylinders; cyl++ {
		fmt.Printf("Reading cylinder %d...\n", cyl)
		for head := 0; head < geo.Heads; head++ {
			for s := 0; s < 32; s++ {
				data, ok := m.host.ReadSector(0, head, s, n+1)
				if !ok {
					return nil, fmt.Errorf("read of cylinder %d head %d sector %d never completed", cyl, head, s)
				}
				out = append(out, data[1:]...)
			}
		}
		if m.hdd.CurrentCylinder() < geo.Cylinders-1 {
			m.host.Seek(1, true)
		}
	}
	return out, nil
}
