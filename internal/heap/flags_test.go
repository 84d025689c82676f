package heap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFlagsDefaults(t *testing.T) {
	flags, err := LoadFlags("")
	require.NoError(t, err)
	assert.Equal(t, DefaultFlags(), flags)
	assert.True(t, flags.MinorGCTask)
	assert.Equal(t, uint(80), flags.MinorGCTaskTrigger)
}

func TestLoadFlagsOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flags.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
minor_gc_task_trigger: 250
separate_gc_phases: true
sticky_mark_bits: true
`), 0o644))

	flags, err := LoadFlags(path)
	require.NoError(t, err)
	assert.True(t, flags.MinorGCTask, "unset keys keep defaults")
	assert.Equal(t, uint(250), flags.MinorGCTaskTrigger, "no clamping")
	assert.True(t, flags.SeparateGCPhases)
	assert.True(t, flags.StickyMarkBits)
}

func TestLoadFlagsErrors(t *testing.T) {
	_, err := LoadFlags(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("minor_gc_task: [oops\n"), 0o644))
	flags, err := LoadFlags(path)
	assert.Error(t, err)
	assert.Equal(t, DefaultFlags(), flags)
}
