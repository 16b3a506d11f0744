// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package services

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Strategy describes how one concept key is searched: the query-text
// variants tried in order, and the default ontology set.
type Strategy struct {
	Variants   []string `yaml:"variants"`
	Ontologies string   `yaml:"ontologies"`
}

// fallbackOntologies is used when a concept has no known strategy.
const fallbackOntologies = "MONDO,HP,NCIT"

// builtinStrategies covers the concept types and specific concepts the tool
// ships with. A YAML strategy file can extend or override these.
var builtinStrategies = map[string]Strategy{
	"Disease": {
		Variants:   []string{"disease", "medical condition", "disorder"},
		Ontologies: "MONDO,HP,DOID,NCIT",
	},
	"Symptom": {
		Variants:   []string{"symptom", "clinical sign", "phenotype"},
		Ontologies: "HP,NCIT,SYMP",
	},
	"BiologicalProcess": {
		Variants:   []string{"biological process", "physiological process"},
		Ontologies: "GO,NCIT",
	},
	"MolecularEntity": {
		Variants:   []string{"molecular entity", "chemical entity", "biomarker"},
		Ontologies: "CHEBI,PRO,NCIT",
	},
	"Treatment": {
		Variants:   []string{"treatment", "therapy", "intervention"},
		Ontologies: "NCIT,DRON",
	},
	"long_covid": {
		Variants:   []string{"long covid", "post-covid", "post covid syndrome", "covid-19 sequelae"},
		Ontologies: "MONDO,HP,NCIT,DOID",
	},
	"fatigue": {
		Variants:   []string{"fatigue", "chronic fatigue", "tiredness", "exhaustion", "post-exertional malaise"},
		Ontologies: "HP,NCIT,SYMP",
	},
	"immune_dysfunction": {
		Variants:   []string{"immune dysfunction", "immune system disorder", "immune response abnormality"},
		Ontologies: "GO,HP,NCIT",
	},
}

// StrategyTable resolves concept keys to search strategies.
type StrategyTable struct {
	strategies map[string]Strategy
}

// NewStrategyTable returns a table holding the built-in strategies.
func NewStrategyTable() *StrategyTable {
	m := make(map[string]Strategy, len(builtinStrategies))
	for k, v := range builtinStrategies {
		m[k] = v
	}
	return &StrategyTable{strategies: m}
}

// LoadFile merges strategy overrides from a YAML file of
// key → {variants, ontologies} entries over the built-ins.
func (t *StrategyTable) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading strategy file: %w", err)
	}
	var overrides map[string]Strategy
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return fmt.Errorf("parsing strategy file %s: %w", path, err)
	}
	for key, s := range overrides {
		if len(s.Variants) == 0 {
			return fmt.Errorf("strategy %q has no variants", key)
		}
		if s.Ontologies == "" {
			s.Ontologies = fallbackOntologies
		}
		t.strategies[key] = s
	}
	return nil
}

// Resolve returns the strategy for a concept key. Unknown keys fall back to
// the label and its lowercase form against a generic ontology set.
func (t *StrategyTable) Resolve(key, label string) Strategy {
	if s, ok := t.strategies[key]; ok {
		return s
	}
	variants := []string{label}
	if lower := strings.ToLower(label); lower != label {
		variants = append(variants, lower)
	}
	return Strategy{Variants: variants, Ontologies: fallbackOntologies}
}
