package config

import (
	"testing"

	"github.com/BurntSushi/toml"
)

// Verify the embedded default configuration parses and matches the
// board calibration.
func TestEmbeddedDefaults(t *testing.T) {
	if err := InitializeDefaults(); err != nil {
		t.Fatalf("embedded config: %v", err)
	}
	if Timing.FddHalfCellNs != 2000 || Timing.HddHalfCellNs != 100 {
		t.Errorf("half-bitcell periods %d/%d, expected 2000/100",
			Timing.FddHalfCellNs, Timing.HddHalfCellNs)
	}
	if Timing.MotorOnNs != 2819600000 {
		t.Errorf("motor one-shot %d ns, expected 2819600000", Timing.MotorOnNs)
	}
	if Timing.DebounceNs != 10213500 {
		t.Errorf("sector debounce %d ns, expected 10213500", Timing.DebounceNs)
	}
	if FloppyGeo.SectorsPerTrack != 16 || FloppyGeo.Tracks != 77 || FloppyGeo.Sides != 2 {
		t.Error("floppy geometry differs from the default medium")
	}
	if FloppyGeo.RotationNs != 200000000 {
		t.Errorf("rotation %d ns, expected 200000000 at 300 rpm", FloppyGeo.RotationNs)
	}
	if HardDiskGeo.CellsPerTrack%32 != 0 {
		t.Error("default cells_per_track not divisible into 32 sectors")
	}
	if FloppySectorLen != 256 || HddSectorLen != 256 {
		t.Error("default sector payload length is not 256")
	}
}

// Verify validation rejects geometries the controller cannot time.
func TestApplyValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"cells per track not a multiple of 32", func(c *Config) { c.HardDisk.CellsPerTrack = 1000 }},
		{"sector payload past buffer size", func(c *Config) { c.Floppy.SectorDataBytes = 600 }},
		{"zero heads", func(c *Config) { c.HardDisk.Heads = 0 }},
		{"zero rpm", func(c *Config) { c.Floppy.RPM = 0 }},
		{"zero half bitcell", func(c *Config) { c.Timing.FddHalfBitcellNs = 0 }},
	}
	for _, tc := range cases {
		var conf Config
		if err := toml.Unmarshal(defaultConfigData, &conf); err != nil {
			t.Fatalf("embedded config: %v", err)
		}
		tc.mutate(&conf)
		if err := apply(&conf); err == nil {
			t.Errorf("%s: accepted", tc.name)
		}
	}
}
