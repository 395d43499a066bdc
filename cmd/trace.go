package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/cwbudde/mayflywatch/internal/store"
	"github.com/spf13/cobra"
)

var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Inspect run traces written by 'run --trace'",
}

var showTraceCmd = &cobra.Command{
	Use:   "show <path>",
	Short: "Print the entries of a trace file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showTrace(cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(traceCmd)
	traceCmd.AddCommand(showTraceCmd)
}

func showTrace(w io.Writer, path string) error {
	reader, err := store.NewTraceReader(path)
	if err != nil {
		return err
	}
	defer reader.Close()

	entries, err := reader.ReadAll()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, "Trace is empty.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "EVALUATIONS\tTIME\tFRONT\tBEST")
	fmt.Fprintln(tw, "-----------\t----\t-----\t----")
	for _, e := range entries {
		best := "-"
		if len(e.Best) > 0 {
			best = fmt.Sprintf("%v", e.Best)
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n",
			e.Evaluations,
			e.ComputingTime.Round(time.Millisecond),
			e.FrontSize,
			best,
		)
	}
	tw.Flush()

	fmt.Fprintf(w, "\nRun: %s (%d entries)\n", entries[0].RunID, len(entries))
	return nil
}
