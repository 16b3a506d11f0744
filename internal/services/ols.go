// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/ontomap/internal/cache"
	"github.com/pdiddy/ontomap/internal/resilience"
	"github.com/pdiddy/ontomap/pkg/types"
)

// olsAPIBase is the EBI Ontology Lookup Service search endpoint. Declared as
// a var so tests can substitute an httptest server.
var olsAPIBase = "https://www.ebi.ac.uk/ols/api/search"

// OLSClient queries the EBI Ontology Lookup Service. OLS needs no API key.
type OLSClient struct {
	Client *http.Client
	Cache  *cache.Store
	HTTP   types.HTTPConfig
}

// Name returns the service identifier.
func (c *OLSClient) Name() string { return string(types.SourceOLS) }

// Search queries OLS, going through the cache first. Ontology codes are
// translated from their BioPortal acronyms; codes OLS does not know are
// dropped from the filter.
func (c *OLSClient) Search(ctx context.Context, query, ontologies string, maxResults int) ([]types.ResultRecord, error) {
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	return cachedSearch(c.Cache, c.Name(), query, ontologies, func() ([]types.ResultRecord, error) {
		return c.fetch(ctx, query, ontologies, maxResults)
	})
}

func (c *OLSClient) fetch(ctx context.Context, query, ontologies string, maxResults int) ([]types.ResultRecord, error) {
	params := url.Values{
		"q":      {query},
		"rows":   {fmt.Sprintf("%d", maxResults)},
		"format": {"json"},
	}
	if converted := convertOntologies(ontologies); converted != "" {
		params.Set("ontology", converted)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, olsAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, resilience.WrapError(resilience.KindNetwork, c.Name(), err)
	}
	req.Header.Set("User-Agent", c.HTTP.UserAgent)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, classifyTransportError(c.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(c.Name(), resp)
	}

	var or olsResponse
	if err := json.NewDecoder(resp.Body).Decode(&or); err != nil {
		return nil, resilience.WrapError(resilience.KindParse, c.Name(), err)
	}

	var results []types.ResultRecord
	for _, doc := range or.Response.Docs {
		if doc.IRI == "" {
			continue
		}
		r := types.ResultRecord{
			URI:      doc.IRI,
			Label:    doc.Label,
			Ontology: strings.ToUpper(doc.OntologyName),
			Synonyms: doc.Synonym,
			Source:   types.SourceOLS,
		}
		if len(doc.Description) > 0 {
			r.Description = doc.Description[0]
		}
		results = append(results, r)
	}
	return results, nil
}

// convertOntologies translates a comma-separated BioPortal acronym list into
// OLS identifiers, dropping codes with no OLS equivalent.
func convertOntologies(ontologies string) string {
	if ontologies == "" {
		return ""
	}
	var converted []string
	for _, code := range strings.Split(ontologies, ",") {
		code = strings.ToUpper(strings.TrimSpace(code))
		if olsName, ok := bioportalToOLS[code]; ok {
			converted = append(converted, olsName)
		}
	}
	return strings.Join(converted, ",")
}

// OLS search API JSON structures.
type olsResponse struct {
	Response olsResponseBody `json:"response"`
}

type olsResponseBody struct {
	NumFound int      `json:"numFound"`
	Docs     []olsDoc `json:"docs"`
}

type olsDoc struct {
	IRI          string   `json:"iri"`
	Label        string   `json:"label"`
	OntologyName string   `json:"ontology_name"`
	Description  []string `json:"description"`
	Synonym      []string `json:"synonym"`
}
