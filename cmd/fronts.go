package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cwbudde/mayflywatch/internal/store"
	"github.com/spf13/cobra"
)

var frontsDir string

var frontsCmd = &cobra.Command{
	Use:   "fronts",
	Short: "Inspect front files written by 'run --front-dir'",
}

var listFrontsCmd = &cobra.Command{
	Use:   "list",
	Short: "List FUN.<n> files in index order",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listFronts(cmd.OutOrStdout(), frontsDir)
	},
}

var showFrontCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Print the objective vectors of a front file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showFront(cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(frontsCmd)
	frontsCmd.AddCommand(listFrontsCmd)
	frontsCmd.AddCommand(showFrontCmd)

	listFrontsCmd.Flags().StringVar(&frontsDir, "dir", "fronts", "Directory holding the front files")
}

func listFronts(w io.Writer, dir string) error {
	files, err := store.FrontFiles(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintf(w, "No front files in %s.\n", dir)
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tFILE\tROWS\tSIZE\tMODIFIED")
	fmt.Fprintln(tw, "-----\t----\t----\t----\t--------")
	for _, f := range files {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n",
			f.Index,
			store.FrontFileName(f.Index),
			f.Rows,
			formatBytes(f.Size),
			f.ModTime.Format("2006-01-02 15:04:05"),
		)
	}
	tw.Flush()

	fmt.Fprintf(w, "\nTotal fronts: %d\n", len(files))
	return nil
}

func showFront(w io.Writer, path string) error {
	rows, err := store.ReadFront(path)
	if err != nil {
		return err
	}
	for _, row := range rows {
		for i, v := range row {
			if i > 0 {
				fmt.Fprint(w, " ")
			}
			fmt.Fprintf(w, "%g", v)
		}
		fmt.Fprintln(w)
	}
	return nil
}
