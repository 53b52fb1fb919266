// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/msuchane/near-facsimile/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Browse the runs saved in a report database",
	Long: `Report lists the comparison runs saved with compare --db. With --run, it
prints the similar pairs found by that run, most similar first.`,
	RunE: runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	dbPath, _ := cmd.Flags().GetString("db")
	runID, _ := cmd.Flags().GetInt64("run")
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	if dbPath == "" {
		return fmt.Errorf("report database required: provide --db")
	}

	store, err := report.OpenExistingStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()

	if runID == 0 {
		runs, err := store.Runs(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(out, runs)
		}
		report.WriteRunsTable(out, runs)
		return nil
	}

	rows, err := store.Rows(cmd.Context(), runID, limit)
	if err != nil {
		return err
	}
	if jsonOutput {
		return report.WriteJSON(out, rows)
	}
	report.WriteTable(out, rows)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	reportCmd.Flags().String("db", "", "SQLite report database written by compare --db")
	reportCmd.Flags().Int64("run", 0, "show the similar pairs of this run")
	reportCmd.Flags().Int("limit", 0, "maximum number of pairs to show (0 shows all)")
	reportCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(reportCmd)
}
