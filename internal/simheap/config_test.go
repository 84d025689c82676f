package simheap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sim.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigInlineFlags(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
minor_gc_task_trigger: 40
separate_gc_phases: true
new_space_capacity: 2048
allocation_per_tick: 64
major_marking_every: 3
`))
	require.NoError(t, err)
	assert.Equal(t, uint(40), cfg.MinorGCTaskTrigger)
	assert.True(t, cfg.SeparateGCPhases)
	assert.True(t, cfg.MinorGCTask)
	assert.Equal(t, uint64(2048), cfg.NewSpaceCapacity)
	assert.Equal(t, uint64(64), cfg.AllocationPerTick)
	assert.Equal(t, 3, cfg.MajorMarkingEvery)
}

func TestLoadConfigClamps(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
tick_ms: -1
survival_percent: 300
major_marking_ticks: 0
`))
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.TickMS)
	assert.Equal(t, uint(100), cfg.SurvivalPercent)
	assert.Equal(t, 10, cfg.MajorMarkingTicks)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "new_space_capacity: 0\n"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "tick_ms: [\n"))
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
