// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the ontomap lookup pipeline.
package types

// Source identifies which terminology service produced a ResultRecord.
type Source string

const (
	SourceBioPortal Source = "bioportal"
	SourceOLS       Source = "ols"
)

// ResultRecord represents one concept returned by a terminology service.
// Records are produced by the service-client response parsers and are not
// modified after that; the orchestrator owns the merged list.
type ResultRecord struct {
	// URI is the canonical concept IRI. Always non-empty; records without
	// one are rejected at the client boundary.
	URI string `json:"uri" yaml:"uri"`

	// Label is the preferred label as returned by the service.
	Label string `json:"label" yaml:"label"`

	// Ontology is the ontology code the concept belongs to (e.g. "MONDO").
	Ontology string `json:"ontology" yaml:"ontology"`

	// Description is the concept definition, when the service provides one.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Synonyms lists alternate labels in service order.
	Synonyms []string `json:"synonyms,omitempty" yaml:"synonyms,omitempty"`

	// Source identifies the service that found this record.
	Source Source `json:"source" yaml:"source"`

	// AlternateSource marks records that only the second-consulted service
	// returned; the downstream selector can weight these differently.
	AlternateSource bool `json:"alternate_source,omitempty" yaml:"alternate_source,omitempty"`
}

// CommonTerm pairs the two services' records for one shared label.
type CommonTerm struct {
	Label             string `json:"label" yaml:"label"`
	BioPortalURI      string `json:"bioportal_uri" yaml:"bioportal_uri"`
	OLSURI            string `json:"ols_uri" yaml:"ols_uri"`
	BioPortalOntology string `json:"bioportal_ontology" yaml:"bioportal_ontology"`
	OLSOntology       string `json:"ols_ontology" yaml:"ols_ontology"`
	URIMatch          bool   `json:"uri_match" yaml:"uri_match"`
}

// Comparison summarizes how the two services' answers for one concept differ.
// A degraded comparison (only one service queried) carries that service's
// count and no discrepancies.
type Comparison struct {
	Concept        string         `json:"concept" yaml:"concept"`
	BioPortalCount int            `json:"bioportal_count" yaml:"bioportal_count"`
	OLSCount       int            `json:"ols_count" yaml:"ols_count"`
	CommonTerms    []CommonTerm   `json:"common_terms" yaml:"common_terms"`
	BioPortalOnly  []ResultRecord `json:"bioportal_only" yaml:"bioportal_only"`
	OLSOnly        []ResultRecord `json:"ols_only" yaml:"ols_only"`
	Discrepancies  []string       `json:"discrepancies" yaml:"discrepancies"`
}

// Concept names what the caller wants looked up. Key selects a search
// strategy; Label is the human-readable term used as the fallback variant.
type Concept struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label" yaml:"label"`
}
