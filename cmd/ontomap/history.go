// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/ontomap/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Review past concept lookups",
	Long: `History lists previously recorded lookups from the local SQLite store:
which concept was resolved, how many results each service returned, and
whether the services disagreed.`,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	store, err := history.NewStore(cfg.History)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	limit, _ := cmd.Flags().GetInt("limit")
	conceptKey, _ := cmd.Flags().GetString("concept")

	var records []history.Record
	if conceptKey != "" {
		records, err = store.ForConcept(ctx, conceptKey, limit)
	} else {
		records, err = store.Recent(ctx, limit)
	}
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Println("No lookups recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-20s  %-24s  %-5s  %-5s  %-6s  %s\n",
		"When", "Concept", "BP", "OLS", "Merged", "Discrepancies")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))
	for _, rec := range records {
		concept := rec.ConceptLabel
		if len(concept) > 24 {
			concept = concept[:21] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-20s  %-24s  %-5d  %-5d  %-6d  %d\n",
			rec.Timestamp.Local().Format("2006-01-02 15:04:05"),
			concept, rec.BioPortalCount, rec.OLSCount, rec.MergedCount,
			len(rec.Discrepancies))
	}

	summary, err := store.Summarize(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "\n%d lookups, %d distinct concepts, %d with discrepancies\n",
		summary.TotalLookups, summary.DistinctConcepts, summary.WithDiscrepancies)
	return nil
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded lookups",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		store, err := history.NewStore(cfg.History)
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := store.Clear(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d history records\n", n)
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum records to show")
	historyCmd.Flags().String("concept", "", "show only lookups for this concept key")
	historyCmd.Flags().Bool("json", false, "output records as JSON")

	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}
