package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "minorgcsim",
		Short:         "Simulate minor GC task scheduling on a toy heap",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newTriggerCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "minorgcsim: %v\n", err)
		os.Exit(1)
	}
}
