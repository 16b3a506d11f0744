// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package lookup orchestrates concept lookups across the two terminology
// services with graceful degradation: every call goes through the service's
// circuit breaker and the retry policy, failures are absorbed into the
// health registry, and whatever results remain are merged, deduplicated,
// and compared.
package lookup

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/pdiddy/ontomap/internal/health"
	"github.com/pdiddy/ontomap/internal/resilience"
	"github.com/pdiddy/ontomap/internal/services"
	"github.com/pdiddy/ontomap/pkg/types"
)

// ErrNoServicesAvailable is the single caller-visible failure: every
// configured service is disabled, circuit-broken, or unregistered.
var ErrNoServicesAvailable = errors.New("no terminology services available")

// Orchestrator composes the retry policy, circuit breakers, health registry,
// and comparator into the lookup flow. Service clients are consulted in a
// fixed order: BioPortal first, then OLS.
type Orchestrator struct {
	bioportal  services.Client
	ols        services.Client
	registry   *health.Registry
	retry      *resilience.RetryPolicy
	strategies *services.StrategyTable
	logger     *zap.SugaredLogger

	// defaultOntologies, when set, overrides every strategy's ontology set.
	defaultOntologies string
}

// Option tweaks orchestrator construction.
type Option func(*Orchestrator)

// WithDefaultOntologies forces every lookup to use the given ontology set.
func WithDefaultOntologies(ontologies string) Option {
	return func(o *Orchestrator) { o.defaultOntologies = ontologies }
}

// WithStrategies substitutes the strategy table.
func WithStrategies(t *services.StrategyTable) Option {
	return func(o *Orchestrator) { o.strategies = t }
}

// New builds an orchestrator. Both clients must already be registered in the
// registry (with or without breakers). A nil logger disables logging.
func New(bioportal, ols services.Client, registry *health.Registry,
	retry *resilience.RetryPolicy, logger *zap.SugaredLogger, opts ...Option) *Orchestrator {

	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	o := &Orchestrator{
		bioportal:  bioportal,
		ols:        ols,
		registry:   registry,
		retry:      retry,
		strategies: services.NewStrategyTable(),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// LookupConcept searches each query variant against every available service,
// folds duplicate URIs within each service, compares the two accumulators,
// and returns a merged list truncated to 2*maxResults together with the
// comparison. Transient failures are absorbed; the only error returned is
// ErrNoServicesAvailable.
func (o *Orchestrator) LookupConcept(ctx context.Context, concept types.Concept, maxResults int) ([]types.ResultRecord, types.Comparison, error) {
	strategy := o.strategies.Resolve(concept.Key, concept.Label)
	ontologies := strategy.Ontologies
	if o.defaultOntologies != "" {
		ontologies = o.defaultOntologies
	}

	bpAvailable := o.registry.IsAvailable(o.bioportal.Name())
	olsAvailable := o.registry.IsAvailable(o.ols.Name())
	if !bpAvailable && !olsAvailable {
		o.logger.Errorw("no services available for lookup",
			"concept", concept.Label)
		return []types.ResultRecord{}, types.Comparison{}, ErrNoServicesAvailable
	}

	if len(strategy.Variants) > 1 {
		o.logger.Infow("searching variants",
			"concept", concept.Label,
			"variants", len(strategy.Variants))
	}

	bpAcc := newAccumulator()
	olsAcc := newAccumulator()

	for _, variant := range strategy.Variants {
		// The two services are independent; fan out within the variant
		// and join before moving to the next one.
		var wg sync.WaitGroup
		if bpAvailable {
			wg.Add(1)
			go func() {
				defer wg.Done()
				o.searchOne(ctx, o.bioportal, variant, ontologies, maxResults, bpAcc)
			}()
		}
		if olsAvailable {
			wg.Add(1)
			go func() {
				defer wg.Done()
				o.searchOne(ctx, o.ols, variant, ontologies, maxResults, olsAcc)
			}()
		}
		wg.Wait()
	}

	var comparison types.Comparison
	switch {
	case bpAvailable && olsAvailable:
		comparison = services.Compare(bpAcc.records, olsAcc.records, concept.Label)
	case bpAvailable:
		comparison = types.Comparison{Concept: concept.Label, BioPortalCount: len(bpAcc.records)}
	default:
		comparison = types.Comparison{Concept: concept.Label, OLSCount: len(olsAcc.records)}
	}

	merged := mergeResults(bpAcc.records, olsAcc.records)
	if limit := 2 * maxResults; limit > 0 && len(merged) > limit {
		// More candidates than asked for, so a downstream selector has choice.
		merged = merged[:limit]
	}
	return merged, comparison, nil
}

// searchOne runs one (service, variant) search under breaker + retry and
// feeds the accumulator. Failures are logged and recorded, never returned.
func (o *Orchestrator) searchOne(ctx context.Context, client services.Client,
	variant, ontologies string, maxResults int, acc *accumulator) {

	var results []types.ResultRecord
	op := func(ctx context.Context) error {
		var err error
		results, err = client.Search(ctx, variant, ontologies, maxResults)
		return err
	}

	// Breaker outermost: one exhausted retry loop counts as one breaker
	// failure, and the breaker's fail-fast error is never retried.
	call := func(ctx context.Context) error {
		return o.retry.Execute(ctx, op)
	}
	var err error
	if breaker := o.registry.Breaker(client.Name()); breaker != nil {
		err = breaker.Call(ctx, call)
	} else {
		err = call(ctx)
	}

	if err != nil {
		o.registry.MarkFailure(client.Name())
		o.logger.Warnw("service search failed",
			"service", client.Name(),
			"variant", variant,
			"error", err)
		return
	}

	o.registry.MarkSuccess(client.Name())
	acc.add(results)
}

// accumulator collects one service's records across variants, folding
// duplicate URIs. It is written concurrently by at most one goroutine per
// variant, but guarded anyway so the fan-out shape can change safely.
type accumulator struct {
	mu      sync.Mutex
	seen    map[string]bool
	records []types.ResultRecord
}

func newAccumulator() *accumulator {
	return &accumulator{seen: make(map[string]bool)}
}

func (a *accumulator) add(results []types.ResultRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, r := range results {
		if a.seen[r.URI] {
			continue
		}
		a.seen[r.URI] = true
		a.records = append(a.records, r)
	}
}

// mergeResults combines the two accumulators: BioPortal records first, then
// any OLS record whose URI was not already emitted, tagged as coming from
// the alternate source only.
func mergeResults(bpResults, olsResults []types.ResultRecord) []types.ResultRecord {
	merged := make([]types.ResultRecord, 0, len(bpResults)+len(olsResults))
	seen := make(map[string]bool, len(bpResults))

	for _, r := range bpResults {
		if seen[r.URI] {
			continue
		}
		seen[r.URI] = true
		merged = append(merged, r)
	}
	for _, r := range olsResults {
		if seen[r.URI] {
			continue
		}
		seen[r.URI] = true
		r.AlternateSource = true
		merged = append(merged, r)
	}
	return merged
}

// NormalizeOntologies canonicalizes a comma-separated ontology list for
// display: upper-cased, trimmed, empties dropped.
func NormalizeOntologies(ontologies string) string {
	parts := strings.Split(ontologies, ",")
	out := parts[:0]
	for _, p := range parts {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ",")
}
