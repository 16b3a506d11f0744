// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package services implements the clients for the two terminology search
// services (BioPortal, OLS), the search-strategy table, and the result
// comparator. Each client consults the response cache before touching the
// network and classifies every transport failure into the resilience error
// taxonomy.
package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/pdiddy/ontomap/internal/cache"
	"github.com/pdiddy/ontomap/internal/resilience"
	"github.com/pdiddy/ontomap/pkg/types"
)

// Client searches a single terminology service. Both services implement
// this interface; the orchestrator treats them uniformly.
type Client interface {
	Name() string
	Search(ctx context.Context, query, ontologies string, maxResults int) ([]types.ResultRecord, error)
}

const defaultMaxResults = 5

// classifyTransportError maps a transport-level error from http.Client.Do
// into the taxonomy: deadline expiry is a timeout, everything else is a
// network failure.
func classifyTransportError(service string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return resilience.WrapError(resilience.KindTimeout, service, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return resilience.WrapError(resilience.KindTimeout, service, err)
	}
	return resilience.WrapError(resilience.KindNetwork, service, err)
}

// classifyStatus maps a non-200 HTTP response into the taxonomy. The
// Retry-After header, when parseable, is carried on rate-limit errors.
func classifyStatus(service string, resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		e := resilience.NewError(resilience.KindRateLimit, service,
			fmt.Sprintf("HTTP %d", resp.StatusCode))
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
			e.RetryAfter = time.Duration(secs) * time.Second
		}
		return e
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return resilience.NewError(resilience.KindAuthentication, service,
			fmt.Sprintf("HTTP %d", resp.StatusCode))
	case resp.StatusCode >= 500:
		return resilience.NewError(resilience.KindServiceUnavailable, service,
			fmt.Sprintf("HTTP %d", resp.StatusCode))
	default:
		return resilience.NewError(resilience.KindParse, service,
			fmt.Sprintf("unexpected HTTP %d", resp.StatusCode))
	}
}

// cachedSearch wraps a service call with the cache: hit short-circuits, a
// successful call populates both tiers. A nil store skips caching entirely.
func cachedSearch(store *cache.Store, service, query, ontologies string,
	fetch func() ([]types.ResultRecord, error)) ([]types.ResultRecord, error) {

	if store != nil {
		if data, ok := store.Get(query, ontologies, service); ok {
			return data, nil
		}
	}
	data, err := fetch()
	if err != nil {
		return nil, err
	}
	if store != nil {
		store.Set(query, ontologies, service, data)
	}
	return data, nil
}
