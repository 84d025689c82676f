package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"minorgc/internal/heap"
)

// fixedSpaces reports constant counters.
type fixedSpaces struct {
	capacity, old, young uint64
}

func (s fixedSpaces) NewSpace() heap.NewSpaceStats       { return s }
func (s fixedSpaces) StickySpace() heap.StickySpaceStats { return s }
func (s fixedSpaces) TotalCapacity() uint64              { return s.capacity }
func (s fixedSpaces) Size() uint64                       { return s.young }
func (s fixedSpaces) Capacity() uint64                   { return s.capacity }
func (s fixedSpaces) OldObjectsSize() uint64             { return s.old }
func (s fixedSpaces) YoungObjectsSize() uint64           { return s.young }

func newTriggerCmd() *cobra.Command {
	var (
		spaces fixedSpaces
		flags  = heap.DefaultFlags()
	)
	cmd := &cobra.Command{
		Use:   "trigger",
		Short: "Print the young generation size that schedules a minor GC task",
		RunE: func(cmd *cobra.Command, _ []string) error {
			size := heap.TaskTriggerSize(spaces, flags)
			fmt.Fprintf(cmd.OutOrStdout(), "trigger: %s (%d bytes), reached: %t\n",
				humanize.IBytes(size), size, heap.TaskTriggerReached(spaces, flags))
			return nil
		},
	}
	cmd.Flags().Uint64Var(&spaces.capacity, "capacity", 16<<20, "Young (or sticky) space capacity in bytes")
	cmd.Flags().Uint64Var(&spaces.old, "old", 0, "Old object bytes in the sticky space")
	cmd.Flags().Uint64Var(&spaces.young, "young", 0, "Young object bytes currently allocated")
	cmd.Flags().UintVar(&flags.MinorGCTaskTrigger, "percent", flags.MinorGCTaskTrigger, "Trigger percentage of young capacity")
	cmd.Flags().BoolVar(&flags.StickyMarkBits, "sticky", false, "Use the sticky mark bits layout")
	return cmd
}
