// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings for the service clients.
type HTTPConfig struct {
	// Timeout is the per-request timeout for normal API calls.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// LongTimeout is the per-request timeout for known-slow calls
	// (large ontology filters, cold service caches).
	LongTimeout time.Duration `json:"long_timeout" yaml:"long_timeout"`

	// UserAgent is the User-Agent header sent with API requests.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// CacheConfig holds settings for the response cache.
type CacheConfig struct {
	// Enabled turns the whole cache off when false; Get always misses and
	// Set is a no-op.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// TTL is the entry time-to-live. Zero means entries never expire.
	TTL time.Duration `json:"ttl" yaml:"ttl"`

	// Dir is the directory for the persistent tier.
	Dir string `json:"dir" yaml:"dir"`

	// MaxSizeMB bounds the persistent tier's total size. Zero disables pruning.
	MaxSizeMB int `json:"max_size_mb" yaml:"max_size_mb"`

	// Persistent enables the file-backed tier in addition to memory.
	Persistent bool `json:"persistent" yaml:"persistent"`
}

// RetryConfig holds settings for retry with exponential backoff.
type RetryConfig struct {
	// Enabled turns retries off when false; operations get a single attempt.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// MaxRetries is the number of retry attempts after the first try.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// InitialDelay is the backoff before the first retry.
	InitialDelay time.Duration `json:"initial_delay" yaml:"initial_delay"`

	// MaxDelay caps the computed backoff.
	MaxDelay time.Duration `json:"max_delay" yaml:"max_delay"`

	// ExponentialBase is the backoff growth factor (delay = initial * base^attempt).
	ExponentialBase float64 `json:"exponential_base" yaml:"exponential_base"`

	// Jitter scales each delay by a uniform factor in [0.5, 1.5).
	Jitter bool `json:"jitter" yaml:"jitter"`
}

// BreakerConfig holds settings for the per-service circuit breakers.
type BreakerConfig struct {
	// Enabled controls whether breakers are attached to services at all.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// FailureThreshold is the consecutive-failure count that opens the circuit.
	FailureThreshold int `json:"failure_threshold" yaml:"failure_threshold"`

	// RecoveryTimeout is how long an open circuit waits before a half-open probe.
	RecoveryTimeout time.Duration `json:"recovery_timeout" yaml:"recovery_timeout"`
}

// NetworkCheckConfig holds settings for the pre-lookup reachability probe.
type NetworkCheckConfig struct {
	Enabled bool          `json:"enabled" yaml:"enabled"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// LookupConfig holds settings for the lookup orchestrator.
type LookupConfig struct {
	// MaxResults is the per-service page size requested from each client.
	// The merged list is truncated to twice this value.
	MaxResults int `json:"max_results" yaml:"max_results"`

	// DefaultOntologies overrides every strategy's ontology set when non-empty.
	DefaultOntologies string `json:"default_ontologies,omitempty" yaml:"default_ontologies,omitempty"`

	// StrategyFile points at a YAML file of strategy overrides.
	StrategyFile string `json:"strategy_file,omitempty" yaml:"strategy_file,omitempty"`
}

// HistoryConfig holds settings for the lookup-history store.
type HistoryConfig struct {
	// Enabled controls whether lookups are recorded at all.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Dir is the directory holding the SQLite database.
	Dir string `json:"dir" yaml:"dir"`
}

// Config groups every component configuration. It is loaded once at startup
// and injected; components never read environment state themselves.
type Config struct {
	HTTP         HTTPConfig         `json:"http" yaml:"http"`
	Cache        CacheConfig        `json:"cache" yaml:"cache"`
	Retry        RetryConfig        `json:"retry" yaml:"retry"`
	Breaker      BreakerConfig      `json:"breaker" yaml:"breaker"`
	NetworkCheck NetworkCheckConfig `json:"network_check" yaml:"network_check"`
	Lookup       LookupConfig       `json:"lookup" yaml:"lookup"`
	History      HistoryConfig      `json:"history" yaml:"history"`

	// DisabledServices lists service names excluded from lookups until
	// re-enabled.
	DisabledServices []string `json:"disabled_services,omitempty" yaml:"disabled_services,omitempty"`
}
