// internal/sched/eventlog.go

package sched

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
)

// EventLog writes runner StatusEvents as CSV rows.
type EventLog struct {
	w *csv.Writer
}

// NewEventLog writes the CSV header to w and returns the log.
func NewEventLog(w io.Writer) (*EventLog, error) {
	cw := csv.NewWriter(w)

	// write header
	if err := cw.Write([]string{"timestamp", "event", "task_id", "non_nestable", "depth"}); err != nil {
		return nil, errors.Wrap(err, "writing event log header")
	}
	cw.Flush()
	return &EventLog{w: cw}, cw.Error()
}

// Write appends one event and flushes it.
func (l *EventLog) Write(ev StatusEvent) error {
	rec := []string{
		ev.Time.Format(time.RFC3339Nano),
		ev.Kind.String(),
		strconv.FormatUint(uint64(ev.TaskID), 10),
		strconv.FormatBool(ev.NonNestable),
		strconv.FormatInt(int64(ev.Depth), 10),
	}
	if err := l.w.Write(rec); err != nil {
		return errors.Wrapf(err, "writing %s event", ev.Kind)
	}
	l.w.Flush()
	return l.w.Error()
}

// Consume writes every event received on ch until it is closed. It stops at
// the first write error.
func (l *EventLog) Consume(ch <-chan StatusEvent) error {
	for ev := range ch {
		if err := l.Write(ev); err != nil {
			return err
		}
	}
	return nil
}
