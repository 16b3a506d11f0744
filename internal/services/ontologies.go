// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package services

// OntologyCatalog maps ontology codes to human-readable descriptions, for
// CLI display and validation.
var OntologyCatalog = map[string]string{
	"MONDO":    "Monarch Disease Ontology - Human diseases and disorders",
	"HP":       "Human Phenotype Ontology - Phenotypic abnormalities",
	"NCIT":     "NCI Thesaurus - Cancer terminology and biomedical concepts",
	"GO":       "Gene Ontology - Biological processes, molecular functions, cellular components",
	"DOID":     "Disease Ontology - Human diseases",
	"CHEBI":    "Chemical Entities of Biological Interest - Chemical compounds",
	"PRO":      "Protein Ontology - Protein-related entities",
	"SYMP":     "Symptom Ontology - Symptoms and clinical findings",
	"EFO":      "Experimental Factor Ontology - Experimental variables",
	"ORDO":     "Orphanet Rare Disease Ontology - Rare diseases",
	"ICD10":    "International Classification of Diseases, 10th Revision",
	"ICD11":    "International Classification of Diseases, 11th Revision",
	"SNOMEDCT": "SNOMED Clinical Terms - Healthcare terminology",
	"MESH":     "Medical Subject Headings - Biomedical literature indexing",
	"LOINC":    "Logical Observation Identifiers Names and Codes",
	"RXNORM":   "RxNorm - Normalized drug names",
	"CPT":      "Current Procedural Terminology - Medical procedures",
	"HGNC":     "HUGO Gene Nomenclature Committee - Gene names",
	"SO":       "Sequence Ontology - Biological sequences",
	"CL":       "Cell Ontology - Cell types",
	"UBERON":   "Uberon - Anatomical structures",
	"FMA":      "Foundational Model of Anatomy - Human anatomy",
	"GARD":     "Genetic and Rare Diseases Information Center",
	"OMIM":     "Online Mendelian Inheritance in Man - Genetic disorders",
}

// OntologyCombinations names curated ontology sets for common research
// domains.
var OntologyCombinations = map[string]string{
	"Disease Research":  "MONDO,HP,DOID,NCIT,ORDO",
	"Symptom/Phenotype": "HP,SYMP,NCIT",
	"Chemical/Drug":     "CHEBI,RXNORM,NCIT",
	"Gene/Protein":      "GO,PRO,HGNC,SO",
	"Anatomy":           "UBERON,FMA,CL",
	"Clinical":          "SNOMEDCT,ICD10,ICD11,LOINC,CPT",
	"General Medical":   "NCIT,HP,MONDO,MESH",
}

// bioportalToOLS maps BioPortal ontology acronyms to their OLS identifiers.
// Codes without a mapping are not queryable through OLS and are dropped from
// OLS requests.
var bioportalToOLS = map[string]string{
	"MONDO": "mondo",
	"HP":    "hp",
	"GO":    "go",
	"CHEBI": "chebi",
	"NCIT":  "ncit",
	"DOID":  "doid",
	"SYMP":  "symp",
	"PRO":   "pr",
}
