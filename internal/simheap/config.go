package simheap

import (
	"os"

	"github.com/cockroachdb/errors"
	yaml "github.com/goccy/go-yaml"

	"minorgc/internal/heap"
)

// Config mirrors sim.yaml. The heap flags sit at the top level of the file.
type Config struct {
	heap.Flags `yaml:",inline"`

	TickMS              int    `yaml:"tick_ms"`               // 5 (by default)
	NewSpaceCapacity    uint64 `yaml:"new_space_capacity"`    // 16 MiB (by default)
	StickySpaceCapacity uint64 `yaml:"sticky_space_capacity"` // 64 MiB (by default)
	AllocationPerTick   uint64 `yaml:"allocation_per_tick"`   // 512 KiB (by default)
	SurvivalPercent     uint   `yaml:"survival_percent"`      // 10 (by default)
	MajorMarkingEvery   int    `yaml:"major_marking_every"`   // ticks between major marking cycles, 0 disables
	MajorMarkingTicks   int    `yaml:"major_marking_ticks"`   // ticks a marking cycle stays active
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Flags:               heap.DefaultFlags(),
		TickMS:              5,
		NewSpaceCapacity:    16 << 20,
		StickySpaceCapacity: 64 << 20,
		AllocationPerTick:   512 << 10,
		SurvivalPercent:     10,
		MajorMarkingEvery:   0,
		MajorMarkingTicks:   10,
	}
}

// LoadConfig reads YAML and overrides defaults; empty path = defaults only.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "reading config %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), errors.Wrapf(err, "parsing config %s", path)
	}

	// sanity clamps
	if cfg.TickMS <= 0 {
		cfg.TickMS = 5
	}
	if cfg.SurvivalPercent > 100 {
		cfg.SurvivalPercent = 100
	}
	if cfg.MajorMarkingTicks <= 0 {
		cfg.MajorMarkingTicks = 10
	}
	if cfg.NewSpaceCapacity == 0 {
		return cfg, errors.Newf("config %s: new_space_capacity must be positive", path)
	}
	if cfg.StickySpaceCapacity == 0 {
		return cfg, errors.Newf("config %s: sticky_space_capacity must be positive", path)
	}
	return cfg, nil
}
