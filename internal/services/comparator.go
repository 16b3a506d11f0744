// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/ontomap/pkg/types"
)

// Compare diffs the two services' result sets for one concept. Records are
// matched by case-insensitive label; for each shared label the two URIs and
// ontology codes are paired and checked for byte-identity. Discrepancy
// messages are appended in a fixed order: total counts, BioPortal-only
// count, OLS-only count, mismatched-URI count.
func Compare(bpResults, olsResults []types.ResultRecord, concept string) types.Comparison {
	comparison := types.Comparison{
		Concept:        concept,
		BioPortalCount: len(bpResults),
		OLSCount:       len(olsResults),
	}

	bpByLabel := indexByLabel(bpResults)
	olsByLabel := indexByLabel(olsResults)

	for _, label := range sortedKeys(bpByLabel) {
		bp := bpByLabel[label]
		ols, shared := olsByLabel[label]
		if !shared {
			comparison.BioPortalOnly = append(comparison.BioPortalOnly, bp)
			continue
		}
		comparison.CommonTerms = append(comparison.CommonTerms, types.CommonTerm{
			Label:             bp.Label,
			BioPortalURI:      bp.URI,
			OLSURI:            ols.URI,
			BioPortalOntology: bp.Ontology,
			OLSOntology:       ols.Ontology,
			URIMatch:          bp.URI == ols.URI,
		})
	}
	for _, label := range sortedKeys(olsByLabel) {
		if _, shared := bpByLabel[label]; !shared {
			comparison.OLSOnly = append(comparison.OLSOnly, olsByLabel[label])
		}
	}

	if len(bpResults) != len(olsResults) {
		comparison.Discrepancies = append(comparison.Discrepancies,
			fmt.Sprintf("Result count differs: BioPortal=%d, OLS=%d", len(bpResults), len(olsResults)))
	}
	if n := len(comparison.BioPortalOnly); n > 0 {
		comparison.Discrepancies = append(comparison.Discrepancies,
			fmt.Sprintf("BioPortal has %d unique term(s)", n))
	}
	if n := len(comparison.OLSOnly); n > 0 {
		comparison.Discrepancies = append(comparison.Discrepancies,
			fmt.Sprintf("OLS has %d unique term(s)", n))
	}
	mismatches := 0
	for _, term := range comparison.CommonTerms {
		if !term.URIMatch {
			mismatches++
		}
	}
	if mismatches > 0 {
		comparison.Discrepancies = append(comparison.Discrepancies,
			fmt.Sprintf("%d common term(s) have different URIs", mismatches))
	}

	return comparison
}

// indexByLabel keys records by lowercased label. On duplicate labels within
// one service the first record wins, matching the merge order elsewhere.
func indexByLabel(records []types.ResultRecord) map[string]types.ResultRecord {
	m := make(map[string]types.ResultRecord, len(records))
	for _, r := range records {
		key := strings.ToLower(r.Label)
		if _, exists := m[key]; !exists {
			m[key] = r
		}
	}
	return m
}

// sortedKeys returns map keys in sorted order so comparison output is
// deterministic.
func sortedKeys(m map[string]types.ResultRecord) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
