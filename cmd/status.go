package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cwbudde/mayflywatch/internal/plot"
	"github.com/spf13/cobra"
)

var serverURL string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Query the live plot of a running search",
	Long: `Queries a plot server started with 'run --plot' and prints the frames
currently on display.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printStatus(cmd.OutOrStdout(), serverURL)
	},
}

func init() {
	statusCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")
	rootCmd.AddCommand(statusCmd)
}

func printStatus(w io.Writer, baseURL string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(baseURL + "/api/v1/plot")
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned error: %s", string(body))
	}

	var state plot.State
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	fmt.Fprintf(w, "Plot: %s\n", state.Title)
	if len(state.Frames) == 0 {
		fmt.Fprintln(w, "No frames yet")
		return nil
	}

	last := state.Frames[len(state.Frames)-1]
	fmt.Fprintf(w, "Frames on display: %d\n", len(state.Frames))
	if last.RunID != "" {
		fmt.Fprintf(w, "Run: %s\n", last.RunID)
	}
	fmt.Fprintf(w, "Latest: %s\n", last.Title)
	fmt.Fprintf(w, "  Points: %d\n", len(last.Points))
	fmt.Fprintf(w, "  Reference points: %d\n", len(last.Reference))
	fmt.Fprintf(w, "  Updated: %s\n", last.Timestamp.Format(time.RFC3339))
	return nil
}
