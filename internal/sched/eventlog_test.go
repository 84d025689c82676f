package sched

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventLogConsume(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewEventLog(&buf)
	require.NoError(t, err)

	ch := make(chan StatusEvent, 2)
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	ch <- StatusEvent{Time: ts, Kind: StatusPosted, TaskID: 7, NonNestable: true}
	ch <- StatusEvent{Time: ts, Kind: StatusDispatch, TaskID: 7, NonNestable: true, Depth: 1}
	close(ch)
	require.NoError(t, log.Consume(ch))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"timestamp", "event", "task_id", "non_nestable", "depth"}, rows[0])
	assert.Equal(t, []string{"2024-01-02T03:04:05Z", "Posted", "7", "true", "0"}, rows[1])
	assert.Equal(t, []string{"2024-01-02T03:04:05Z", "Dispatch", "7", "true", "1"}, rows[2])
}
