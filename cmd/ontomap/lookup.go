// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/ontomap/internal/health"
	"github.com/pdiddy/ontomap/internal/history"
	"github.com/pdiddy/ontomap/internal/lookup"
	"github.com/pdiddy/ontomap/pkg/types"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup [concept]",
	Short: "Resolve a biomedical concept against BioPortal and OLS",
	Long: `Lookup searches both terminology services for a concept term, merges and
deduplicates the results, and reports discrepancies between the services.
Results are cached; failing services are retried and circuit-broken so a
degraded service never blocks the other.

The concept argument is the human-readable label. Use --key to pick one of
the built-in search strategies (Disease, Symptom, long_covid, fatigue, ...);
without it the label itself is searched.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLookup,
}

// lookupOutput is the YAML/JSON shape written by --save and --json.
type lookupOutput struct {
	Concept    types.Concept        `json:"concept" yaml:"concept"`
	Ontologies string               `json:"ontologies,omitempty" yaml:"ontologies,omitempty"`
	Results    []types.ResultRecord `json:"results" yaml:"results"`
	Comparison types.Comparison     `json:"comparison" yaml:"comparison"`
}

func runLookup(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd)
	defer logger.Sync()

	cfg := loadConfig()
	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		cfg.Cache.Enabled = false
	}
	if ontologies, _ := cmd.Flags().GetString("ontologies"); ontologies != "" {
		cfg.Lookup.DefaultOntologies = lookup.NormalizeOntologies(ontologies)
	}
	if maxResults, _ := cmd.Flags().GetInt("max-results"); maxResults > 0 {
		cfg.Lookup.MaxResults = maxResults
	}

	if cfg.NetworkCheck.Enabled && !health.NetworkReachable("", cfg.NetworkCheck.Timeout) {
		logger.Warnw("network unreachable, lookups will likely fail")
	}

	s, err := buildStack(cfg, logger)
	if err != nil {
		return err
	}

	concept := types.Concept{Label: strings.Join(args, " ")}
	concept.Key, _ = cmd.Flags().GetString("key")
	if concept.Key == "" {
		concept.Key = concept.Label
	}

	ctx := context.Background()
	queried := s.registry.AvailableServices()
	results, comparison, err := s.orchestrator.LookupConcept(ctx, concept, cfg.Lookup.MaxResults)
	if err != nil {
		return err
	}

	recordLookup(ctx, cfg, logger, concept, queried, results, comparison)

	out := lookupOutput{
		Concept:    concept,
		Ontologies: cfg.Lookup.DefaultOntologies,
		Results:    results,
		Comparison: comparison,
	}

	if savePath, _ := cmd.Flags().GetString("save"); savePath != "" {
		if err := saveLookup(savePath, out); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved results to %s\n", savePath)
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	formatLookupOutput(out)
	return nil
}

// recordLookup appends the outcome to the history store. History failures
// are logged, never fatal.
func recordLookup(ctx context.Context, cfg types.Config, logger *zap.SugaredLogger,
	concept types.Concept, services []string, results []types.ResultRecord, comparison types.Comparison) {

	if !cfg.History.Enabled {
		return
	}
	store, err := history.NewStore(cfg.History)
	if err != nil {
		logger.Warnw("history store unavailable", "error", err)
		return
	}
	defer store.Close()

	rec := history.Record{
		ConceptKey:     concept.Key,
		ConceptLabel:   concept.Label,
		Ontologies:     cfg.Lookup.DefaultOntologies,
		Services:       services,
		BioPortalCount: comparison.BioPortalCount,
		OLSCount:       comparison.OLSCount,
		MergedCount:    len(results),
		Discrepancies:  comparison.Discrepancies,
	}
	if err := store.Record(ctx, rec); err != nil {
		logger.Warnw("recording lookup history failed", "error", err)
	}
}

func saveLookup(path string, out lookupOutput) error {
	data, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("encoding lookup results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing lookup results: %w", err)
	}
	return nil
}

func formatLookupOutput(out lookupOutput) {
	if len(out.Results) == 0 {
		fmt.Println("No results found.")
	} else {
		fmt.Fprintf(os.Stdout, "%-4s  %-9s  %-10s  %-40s  %s\n",
			"Rank", "Source", "Ontology", "Label", "URI")
		fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))
		for i, r := range out.Results {
			source := string(r.Source)
			if r.AlternateSource {
				source += "*"
			}
			label := r.Label
			if len(label) > 40 {
				label = label[:37] + "..."
			}
			fmt.Fprintf(os.Stdout, "%-4d  %-9s  %-10s  %-40s  %s\n",
				i+1, source, r.Ontology, label, r.URI)
		}
		fmt.Fprintf(os.Stdout, "\n%d results (* = found only in the alternate service)\n", len(out.Results))
	}

	if len(out.Comparison.Discrepancies) > 0 {
		fmt.Println("\nDiscrepancies between services:")
		for _, d := range out.Comparison.Discrepancies {
			fmt.Printf("  - %s\n", d)
		}
	}
}

func init() {
	lookupCmd.Flags().String("key", "", "search-strategy key (default: the concept label)")
	lookupCmd.Flags().String("ontologies", "", "comma-separated ontology acronyms to search (overrides the strategy)")
	lookupCmd.Flags().Int("max-results", 0, "per-service result count (0 = config default)")
	lookupCmd.Flags().Bool("no-cache", false, "bypass the response cache")
	lookupCmd.Flags().Bool("json", false, "output results as JSON")
	lookupCmd.Flags().String("save", "", "write results to a YAML file")

	rootCmd.AddCommand(lookupCmd)
}
