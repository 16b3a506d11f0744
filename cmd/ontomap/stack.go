// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/pdiddy/ontomap/internal/cache"
	"github.com/pdiddy/ontomap/internal/health"
	"github.com/pdiddy/ontomap/internal/lookup"
	"github.com/pdiddy/ontomap/internal/resilience"
	"github.com/pdiddy/ontomap/internal/services"
	"github.com/pdiddy/ontomap/pkg/types"
)

// stack is the fully wired lookup machinery shared by the lookup and health
// commands.
type stack struct {
	cfg          types.Config
	cache        *cache.Store
	registry     *health.Registry
	bioportal    *services.BioPortalClient
	ols          *services.OLSClient
	orchestrator *lookup.Orchestrator
}

// buildStack wires cache, clients, breakers, registry, retry policy, and
// orchestrator from the loaded configuration.
func buildStack(cfg types.Config, logger *zap.SugaredLogger) (*stack, error) {
	store := cache.NewStore(cfg.Cache, logger)

	httpClient := &http.Client{Timeout: cfg.HTTP.Timeout}
	bioportal := &services.BioPortalClient{
		Client: httpClient,
		APIKey: bioportalKey,
		Cache:  store,
		HTTP:   cfg.HTTP,
	}
	ols := &services.OLSClient{
		Client: httpClient,
		Cache:  store,
		HTTP:   cfg.HTTP,
	}

	registry := health.NewRegistry(logger)
	registry.Register(bioportal.Name(), newBreaker(bioportal.Name(), cfg.Breaker, logger))
	registry.Register(ols.Name(), newBreaker(ols.Name(), cfg.Breaker, logger))
	for _, name := range cfg.DisabledServices {
		registry.Disable(name)
	}

	strategies := services.NewStrategyTable()
	if cfg.Lookup.StrategyFile != "" {
		if err := strategies.LoadFile(cfg.Lookup.StrategyFile); err != nil {
			return nil, err
		}
	}

	opts := []lookup.Option{lookup.WithStrategies(strategies)}
	if cfg.Lookup.DefaultOntologies != "" {
		opts = append(opts, lookup.WithDefaultOntologies(cfg.Lookup.DefaultOntologies))
	}

	retry := resilience.NewRetryPolicy(cfg.Retry, logger)
	orchestrator := lookup.New(bioportal, ols, registry, retry, logger, opts...)

	return &stack{
		cfg:          cfg,
		cache:        store,
		registry:     registry,
		bioportal:    bioportal,
		ols:          ols,
		orchestrator: orchestrator,
	}, nil
}

func newBreaker(name string, cfg types.BreakerConfig, logger *zap.SugaredLogger) *resilience.CircuitBreaker {
	if !cfg.Enabled {
		return nil
	}
	return resilience.NewCircuitBreaker(name, cfg, logger)
}
