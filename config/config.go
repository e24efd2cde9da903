package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"

	"github.com/sergev/dualmode/controller"
	"github.com/sergev/dualmode/sim"
)

//go:embed dualmode.toml
var defaultConfigData []byte

// Global state populated by Initialize.
var (
	Timing          controller.Timing
	FloppyGeo       sim.FloppyGeometry
	HardDiskGeo     sim.HardDiskGeometry
	FloppySectorLen int
	HddSectorLen    int
	FloppyPreamble  int
	HddPreamble     int
)

// Config represents the entire TOML configuration structure
type Config struct {
	Timing   TimingSection   `toml:"timing"`
	Floppy   FloppySection   `toml:"floppy"`
	HardDisk HardDiskSection `toml:"harddisk"`
}

// TimingSection holds the controller timing calibration
type TimingSection struct {
	FddHalfBitcellNs uint64 `toml:"fdd_half_bitcell_ns"`
	HddHalfBitcellNs uint64 `toml:"hdd_half_bitcell_ns"`
	MotorOnUs        uint64 `toml:"motor_on_us"`
	SectorDebounceNs uint64 `toml:"sector_debounce_ns"`
	SyncWindowBytes  uint64 `toml:"sync_window_bytes"`
}

// FloppySection describes the simulated floppy drive and medium
type FloppySection struct {
	Sectors         int `toml:"sectors"`
	Tracks          int `toml:"tracks"`
	Sides           int `toml:"sides"`
	RPM             int `toml:"rpm"`
	PreambleBytes   int `toml:"preamble_bytes"`
	SectorDataBytes int `toml:"sector_data_bytes"`
}

// HardDiskSection describes the simulated hard disk
type HardDiskSection struct {
	Cylinders       int `toml:"cylinders"`
	Heads           int `toml:"heads"`
	CellsPerTrack   int `toml:"cells_per_track"`
	PreambleBytes   int `toml:"preamble_bytes"`
	SectorDataBytes int `toml:"sector_data_bytes"`
}

// configPath determines the config file path based on the operating system
func configPath() (string, error) {
	var configDir string
	var err error

	switch runtime.GOOS {
	case "windows":
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, "dualmode")
	default:
		configDir, err = os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine user home directory: %w", err)
		}
	}

	return filepath.Join(configDir, ".dualmode"), nil
}

// Initialize loads and validates the configuration file.
// If the config file doesn't exist, it creates it from the embedded default.
func Initialize() error {
	configPath, err := configPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		configDir := filepath.Dir(configPath)
		if err := os.MkdirAll(configDir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory %s: %w", configDir, err)
		}
		if err := os.WriteFile(configPath, defaultConfigData, 0644); err != nil {
			return fmt.Errorf("failed to create default config file at %s: %w", configPath, err)
		}
	}

	var conf Config
	if _, err := toml.DecodeFile(configPath, &conf); err != nil {
		return fmt.Errorf("failed to parse TOML config at %s: %w", configPath, err)
	}
	return apply(&conf)
}

// InitializeDefaults loads the embedded configuration without touching
// the filesystem.
func InitializeDefaults() error {
	var conf Config
	if err := toml.Unmarshal(defaultConfigData, &conf); err != nil {
		return fmt.Errorf("failed to parse embedded config: %w", err)
	}
	return apply(&conf)
}

func apply(conf *Config) error {
	t := conf.Timing
	if t.FddHalfBitcellNs == 0 || t.HddHalfBitcellNs == 0 {
		return fmt.Errorf("timing half-bitcell periods must be positive")
	}
	if t.MotorOnUs == 0 {
		return fmt.Errorf("timing motor_on_us must be positive")
	}
	if t.SyncWindowBytes == 0 {
		return fmt.Errorf("timing sync_window_bytes must be positive")
	}

	f := conf.Floppy
	if f.Sectors <= 0 || f.Tracks <= 0 || f.Sides <= 0 {
		return fmt.Errorf("floppy geometry has non-positive dimensions: %d sectors, %d tracks, %d sides",
			f.Sectors, f.Tracks, f.Sides)
	}
	if f.RPM <= 0 {
		return fmt.Errorf("floppy rpm must be positive, got %d", f.RPM)
	}
	if f.SectorDataBytes <= 0 || f.SectorDataBytes > 512 {
		return fmt.Errorf("floppy sector_data_bytes %d out of range 1-512", f.SectorDataBytes)
	}

	h := conf.HardDisk
	if h.Cylinders <= 0 || h.Heads <= 0 {
		return fmt.Errorf("harddisk geometry has non-positive dimensions: %d cylinders, %d heads",
			h.Cylinders, h.Heads)
	}
	if h.CellsPerTrack <= 0 || h.CellsPerTrack%32 != 0 {
		return fmt.Errorf("harddisk cells_per_track %d must be a positive multiple of 32", h.CellsPerTrack)
	}
	if h.SectorDataBytes <= 0 || h.SectorDataBytes > 512 {
		return fmt.Errorf("harddisk sector_data_bytes %d out of range 1-512", h.SectorDataBytes)
	}

	Timing = controller.Timing{
		FddHalfCellNs:   t.FddHalfBitcellNs,
		HddHalfCellNs:   t.HddHalfBitcellNs,
		MotorOnNs:       t.MotorOnUs * 1000,
		DebounceNs:      t.SectorDebounceNs,
		SyncWindowBytes: t.SyncWindowBytes,
	}
	FloppyGeo = sim.FloppyGeometry{
		SectorsPerTrack: f.Sectors,
		Tracks:          f.Tracks,
		Sides:           f.Sides,
		RotationNs:      uint64(60e9 / float64(f.RPM)),
		HalfCellNs:      t.FddHalfBitcellNs,
		PreambleBytes:   f.PreambleBytes,
	}
	HardDiskGeo = sim.HardDiskGeometry{
		Cylinders:     h.Cylinders,
		Heads:         h.Heads,
		CellsPerTrack: h.CellsPerTrack,
		HalfCellNs:    t.HddHalfBitcellNs,
		PreambleBytes: h.PreambleBytes,
	}
	FloppySectorLen = f.SectorDataBytes
	HddSectorLen = h.SectorDataBytes
	FloppyPreamble = f.PreambleBytes
	HddPreamble = h.PreambleBytes
	return nil
}
