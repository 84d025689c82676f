package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spf13/cobra"

	"minorgc/internal/heap"
	"minorgc/internal/logging"
	"minorgc/internal/sched"
	"minorgc/internal/simheap"
)

func newRunCmd() *cobra.Command {
	var (
		configPath string
		csvPath    string
		ticks      int
		logLevel   string
		logFormat  string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Drive allocation from a tick clock and report collections",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := simheap.LoadConfig(configPath)
			if err != nil {
				return err
			}
			logger := logging.NewLogger(logging.ParseLevel(logLevel), logFormat)

			reg := prometheus.NewRegistry()
			metrics := heap.NewMetrics(reg)
			h := simheap.New(cfg, simheap.WithLogger(logger), simheap.WithMetrics(metrics))

			logDone := make(chan error, 1)
			if csvPath != "" {
				f, err := os.Create(csvPath)
				if err != nil {
					return errors.Wrap(err, "creating event log")
				}
				defer f.Close()
				events, err := sched.NewEventLog(f)
				if err != nil {
					return err
				}
				go func() { logDone <- events.Consume(h.Runner().StatusChannel()) }()
			} else {
				go func() {
					for range h.Runner().StatusChannel() {
					}
					logDone <- nil
				}()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			logger.Info("simulation starting",
				"ticks", ticks,
				"trigger", humanize.IBytes(h.Job().TaskTriggerSize()),
				"sticky_mark_bits", cfg.StickyMarkBits,
				"separate_gc_phases", cfg.SeparateGCPhases)

			stats, runErr := simulate(ctx, h, ticks)
			h.TearDown()
			if err := <-logDone; err != nil && runErr == nil {
				runErr = err
			}

			printSummary(cmd.OutOrStdout(), h, metrics, stats)
			return runErr
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "Path to simulation YAML (defaults when empty)")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Write runner events to this CSV file")
	cmd.Flags().IntVar(&ticks, "ticks", 200, "Number of mutator ticks to simulate")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")
	return cmd
}

// simStats compares mutator steps with clock ticks; the difference is ticks
// the clock coalesced while a step (and its collections) was running.
type simStats struct {
	Steps      int
	ClockTicks int64
}

// simulate runs one heap step per clock tick until ticks ran or ctx is done.
func simulate(ctx context.Context, h *simheap.Heap, ticks int) (simStats, error) {
	clock := sched.NewTickClock(1)
	clock.Start(time.Duration(h.Config().TickMS) * time.Millisecond)
	defer clock.Stop()

	var stats simStats
	for i := 0; i < ticks; i++ {
		select {
		case <-ctx.Done():
			stats.ClockTicks = clock.Count()
			return stats, nil
		case <-clock.Ch:
		}
		if err := h.Step(ctx, i); err != nil {
			stats.ClockTicks = clock.Count()
			return stats, errors.Wrapf(err, "tick %d", i)
		}
		stats.Steps++
	}
	stats.ClockTicks = clock.Count()
	return stats, nil
}

func printSummary(w io.Writer, h *simheap.Heap, m *heap.Metrics, stats simStats) {
	byReason := make(map[string]int)
	for _, c := range h.Collections() {
		byReason[c.Space.String()+"/"+c.Reason.String()]++
	}
	keys := make([]string, 0, len(byReason))
	for k := range byReason {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(w, "steps: %d, clock ticks: %d\n", stats.Steps, stats.ClockTicks)
	fmt.Fprintf(w, "young: %s / %s, old: %s\n",
		humanize.IBytes(h.YoungSize()), humanize.IBytes(h.YoungCapacity()), humanize.IBytes(h.OldSize()))
	fmt.Fprintf(w, "tasks: scheduled=%.0f run=%.0f canceled=%.0f bailouts=%.0f\n",
		testutil.ToFloat64(m.TasksScheduled),
		testutil.ToFloat64(m.TasksRun),
		testutil.ToFloat64(m.TasksCanceled),
		testutil.ToFloat64(m.TaskBailouts))
	for _, k := range keys {
		fmt.Fprintf(w, "  %-40s %d\n", k, byReason[k])
	}
}
