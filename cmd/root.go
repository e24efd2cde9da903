package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sergev/dualmode/config"
	"github.com/sergev/dualmode/controller"
	"github.com/sergev/dualmode/sched"
	"github.com/sergev/dualmode/sim"
)

var rootCmd = &cobra.Command{
	Use:   "dualmode",
	Short: "Emulated Vector dual-mode disk controller",
	Long: "The dualmode tool runs disk images through a cycle-accurate emulation of the\n" +
		"Vector Graphic dual-mode (HDD/FDD) hard-sectored disk controller.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cobra.CheckErr(config.Initialize())
	},
}

// machine bundles one controller with its simulated drives. The hard
// disk sits at drive 0, a floppy at drive 1, like a production Vector 4.
type machine struct {
	q      *sched.Queue
	c      *controller.Controller
	floppy *sim.Floppy
	hdd    *sim.HardDisk
	host   *sim.Host
}

func newMachine() *machine {
	q := sched.NewQueue()
	c := controller.New(q, config.Timing)
	m := &machine{
		q:      q,
		c:      c,
		floppy: sim.NewFloppy(q, config.FloppyGeo),
		hdd:    sim.NewHardDisk(q, config.HardDiskGeo),
		host:   sim.NewHost(q, c),
	}
	c.AttachFloppy(1, m.floppy)
	c.AttachHardDisk(m.hdd)
	return m
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
