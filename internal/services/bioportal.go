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

// bioportalAPIBase is the BioPortal search endpoint. Declared as a var so
// tests can substitute an httptest server.
var bioportalAPIBase = "https://data.bioontology.org/search"

// BioPortalClient queries the NCBO BioPortal search API.
type BioPortalClient struct {
	Client *http.Client
	APIKey string
	Cache  *cache.Store
	HTTP   types.HTTPConfig
}

// Name returns the service identifier.
func (c *BioPortalClient) Name() string { return string(types.SourceBioPortal) }

// Search queries BioPortal, going through the cache first. A missing API key
// is an authentication failure: BioPortal rejects anonymous requests, so
// failing fast here avoids burning a retry budget on guaranteed 401s.
func (c *BioPortalClient) Search(ctx context.Context, query, ontologies string, maxResults int) ([]types.ResultRecord, error) {
	if c.APIKey == "" {
		return nil, resilience.NewError(resilience.KindAuthentication, c.Name(),
			"no API key configured (set bioportal-api-key in .secrets/ or ONTOMAP_BIOPORTAL_API_KEY)")
	}
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	return cachedSearch(c.Cache, c.Name(), query, ontologies, func() ([]types.ResultRecord, error) {
		return c.fetch(ctx, query, ontologies, maxResults)
	})
}

func (c *BioPortalClient) fetch(ctx context.Context, query, ontologies string, maxResults int) ([]types.ResultRecord, error) {
	params := url.Values{
		"q":        {query},
		"apikey":   {c.APIKey},
		"pagesize": {fmt.Sprintf("%d", maxResults)},
		"format":   {"json"},
	}
	if ontologies != "" {
		params.Set("ontologies", strings.ToUpper(strings.TrimSpace(ontologies)))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, bioportalAPIBase+"?"+params.Encode(), nil)
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

	var br bioportalResponse
	if err := json.NewDecoder(resp.Body).Decode(&br); err != nil {
		return nil, resilience.WrapError(resilience.KindParse, c.Name(), err)
	}

	var results []types.ResultRecord
	for _, item := range br.Collection {
		if item.ID == "" {
			// Malformed record: a concept without a URI is unusable.
			continue
		}
		r := types.ResultRecord{
			URI:      item.ID,
			Label:    item.PrefLabel,
			Ontology: extractOntology(item.Links),
			Synonyms: item.Synonym,
			Source:   types.SourceBioPortal,
		}
		if len(item.Definition) > 0 {
			r.Description = item.Definition[0]
		}
		results = append(results, r)
	}
	return results, nil
}

// extractOntology pulls the ontology acronym out of the record's links
// (".../ontologies/<ACRONYM>").
func extractOntology(links map[string]any) string {
	for _, v := range links {
		link, ok := v.(string)
		if !ok {
			continue
		}
		if _, after, found := strings.Cut(link, "/ontologies/"); found {
			acronym, _, _ := strings.Cut(after, "/")
			return acronym
		}
	}
	return ""
}

// BioPortal search API JSON structures.
type bioportalResponse struct {
	Collection []bioportalItem `json:"collection"`
}

type bioportalItem struct {
	ID         string         `json:"@id"`
	PrefLabel  string         `json:"prefLabel"`
	Definition []string       `json:"definition"`
	Synonym    []string       `json:"synonym"`
	Links      map[string]any `json:"links"`
}
