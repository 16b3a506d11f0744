// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/viper"

	"github.com/pdiddy/ontomap/pkg/types"
)

// setConfigDefaults registers every config default with viper. Values come
// from ontomap.yaml, ONTOMAP_* environment variables, or these defaults,
// in that order of precedence.
func setConfigDefaults() {
	viper.SetDefault("http.timeout", "30s")
	viper.SetDefault("http.long_timeout", "60s")
	viper.SetDefault("http.user_agent", "ontomap/"+version)

	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.ttl", "24h")
	viper.SetDefault("cache.dir", ".ontomap/cache")
	viper.SetDefault("cache.max_size_mb", 100)
	viper.SetDefault("cache.persistent", true)

	viper.SetDefault("retry.enabled", true)
	viper.SetDefault("retry.max_retries", 3)
	viper.SetDefault("retry.initial_delay", "1s")
	viper.SetDefault("retry.max_delay", "30s")
	viper.SetDefault("retry.exponential_base", 2.0)
	viper.SetDefault("retry.jitter", true)

	viper.SetDefault("breaker.enabled", true)
	viper.SetDefault("breaker.failure_threshold", 5)
	viper.SetDefault("breaker.recovery_timeout", "60s")

	viper.SetDefault("network_check.enabled", true)
	viper.SetDefault("network_check.timeout", "3s")

	viper.SetDefault("lookup.max_results", 5)
	viper.SetDefault("lookup.default_ontologies", "")
	viper.SetDefault("lookup.strategy_file", "")

	viper.SetDefault("history.enabled", true)
	viper.SetDefault("history.dir", ".ontomap/history")

	viper.SetDefault("disabled_services", []string{})
}

// loadConfig snapshots viper state into the typed Config injected into
// components.
func loadConfig() types.Config {
	setConfigDefaults()

	return types.Config{
		HTTP: types.HTTPConfig{
			Timeout:     viper.GetDuration("http.timeout"),
			LongTimeout: viper.GetDuration("http.long_timeout"),
			UserAgent:   viper.GetString("http.user_agent"),
		},
		Cache: types.CacheConfig{
			Enabled:    viper.GetBool("cache.enabled"),
			TTL:        viper.GetDuration("cache.ttl"),
			Dir:        viper.GetString("cache.dir"),
			MaxSizeMB:  viper.GetInt("cache.max_size_mb"),
			Persistent: viper.GetBool("cache.persistent"),
		},
		Retry: types.RetryConfig{
			Enabled:         viper.GetBool("retry.enabled"),
			MaxRetries:      viper.GetInt("retry.max_retries"),
			InitialDelay:    viper.GetDuration("retry.initial_delay"),
			MaxDelay:        viper.GetDuration("retry.max_delay"),
			ExponentialBase: viper.GetFloat64("retry.exponential_base"),
			Jitter:          viper.GetBool("retry.jitter"),
		},
		Breaker: types.BreakerConfig{
			Enabled:          viper.GetBool("breaker.enabled"),
			FailureThreshold: viper.GetInt("breaker.failure_threshold"),
			RecoveryTimeout:  viper.GetDuration("breaker.recovery_timeout"),
		},
		NetworkCheck: types.NetworkCheckConfig{
			Enabled: viper.GetBool("network_check.enabled"),
			Timeout: viper.GetDuration("network_check.timeout"),
		},
		Lookup: types.LookupConfig{
			MaxResults:        viper.GetInt("lookup.max_results"),
			DefaultOntologies: viper.GetString("lookup.default_ontologies"),
			StrategyFile:      viper.GetString("lookup.strategy_file"),
		},
		History: types.HistoryConfig{
			Enabled: viper.GetBool("history.enabled"),
			Dir:     viper.GetString("history.dir"),
		},
		DisabledServices: viper.GetStringSlice("disabled_services"),
	}
}
