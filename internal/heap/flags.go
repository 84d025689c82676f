package heap

import (
	"os"

	"github.com/cockroachdb/errors"
	yaml "github.com/goccy/go-yaml"
)

// Flags mirrors the runtime switches the minor GC job reads.
type Flags struct {
	MinorGCTask        bool `yaml:"minor_gc_task"`         // true (by default)
	MinorGCTaskTrigger uint `yaml:"minor_gc_task_trigger"` // 80 (by default), percent of young capacity
	SeparateGCPhases   bool `yaml:"separate_gc_phases"`    // false (by default)
	StickyMarkBits     bool `yaml:"sticky_mark_bits"`      // false (by default)
}

// DefaultFlags returns the values used when no file overrides them.
func DefaultFlags() Flags {
	return Flags{
		MinorGCTask:        true,
		MinorGCTaskTrigger: 80,
	}
}

// LoadFlags reads YAML and overrides defaults; empty path = defaults only.
//
// The trigger percentage is deliberately left unclamped: 0 triggers on every
// check and anything above 100 never triggers.
func LoadFlags(path string) (Flags, error) {
	flags := DefaultFlags()

	if path == "" {
		return flags, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return flags, errors.Wrapf(err, "reading flags %s", path)
	}
	if err := yaml.Unmarshal(data, &flags); err != nil {
		return DefaultFlags(), errors.Wrapf(err, "parsing flags %s", path)
	}
	return flags, nil
}
