// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package base

import (
	"io"
	"time"

	"github.com/cockroachdb/errors"
	humanize "github.com/dustin/go-humanize"
	"gopkg.in/yaml.v2"
)

// Defaults for QueryConfig.
const (
	DefaultKeepAlive              = time.Second
	DefaultThreadPoolSize         = 20
	DefaultQueueSize              = 250
	DefaultThreadTimeout          = time.Minute
	DefaultSpoolThresholdBytes    = 50 << 20
	DefaultMaxTablePoolSize       = 1000
	DefaultMaxMemoryBytes         = 400 << 20
	DefaultMaxMemoryWait          = 5 * time.Second
	DefaultMaxTenantMemoryPercent = 30
	DefaultMaxHashCacheBytes      = 100 << 20
	DefaultScanCacheSize          = 1000
	DefaultTargetQueryConcurrency = 8
	DefaultMaxQueryConcurrency    = 12
	// DefaultDateFormat is the layout of DATE and TIMESTAMP literals, in the
	// notation of the time package.
	DefaultDateFormat           = "2006-01-02 15:04:05"
	DefaultStatsUpdateFrequency = 15 * time.Minute
	DefaultMaxStatsAge          = 24 * time.Hour
	DefaultCallQueueRoundRobin  = true
	DefaultMaxMutationSize      = 500000
	DefaultUpsertBatchSize      = 10000
)

// ByteSize is a number of bytes. In YAML it is written either as an integer
// or as a human-readable size such as "50 MiB".
type ByteSize int64

// String implements fmt.Stringer.
func (b ByteSize) String() string {
	if b < 0 {
		return "-" + humanize.IBytes(uint64(-b))
	}
	return humanize.IBytes(uint64(b))
}

// MarshalYAML implements yaml.Marshaler.
func (b ByteSize) MarshalYAML() (interface{}, error) {
	return b.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (b *ByteSize) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var n int64
	if err := unmarshal(&n); err == nil {
		*b = ByteSize(n)
		return nil
	}
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := humanize.ParseBytes(s)
	if err != nil {
		return errors.Wrapf(err, "invalid byte size %q", s)
	}
	*b = ByteSize(v)
	return nil
}

// QueryConfig holds the query service settings. It is populated once at
// startup and passed by pointer.
type QueryConfig struct {
	KeepAlive              time.Duration `yaml:"keep_alive"`
	ThreadPoolSize         int           `yaml:"thread_pool_size"`
	QueueSize              int           `yaml:"queue_size"`
	ThreadTimeout          time.Duration `yaml:"thread_timeout"`
	SpoolThresholdBytes    ByteSize      `yaml:"spool_threshold_bytes"`
	MaxTablePoolSize       int           `yaml:"max_table_pool_size"`
	MaxMemoryBytes         ByteSize      `yaml:"max_memory_bytes"`
	MaxMemoryWait          time.Duration `yaml:"max_memory_wait"`
	MaxTenantMemoryPercent int           `yaml:"max_tenant_memory_percent"`
	MaxHashCacheBytes      ByteSize      `yaml:"max_hash_cache_bytes"`
	ScanCacheSize          int           `yaml:"scan_cache_size"`
	// TargetQueryConcurrency is the number of predicates compiled in
	// parallel by a batch explain; MaxQueryConcurrency caps it.
	TargetQueryConcurrency int           `yaml:"target_query_concurrency"`
	MaxQueryConcurrency    int           `yaml:"max_query_concurrency"`
	DateFormat             string        `yaml:"date_format"`
	StatsUpdateFrequency   time.Duration `yaml:"stats_update_frequency"`
	MaxStatsAge            time.Duration `yaml:"max_stats_age"`
	CallQueueRoundRobin    bool          `yaml:"call_queue_round_robin"`
	MaxMutationSize        int           `yaml:"max_mutation_size"`
	UpsertBatchSize        int           `yaml:"upsert_batch_size"`
}

// DefaultQueryConfig returns a QueryConfig holding the defaults.
func DefaultQueryConfig() *QueryConfig {
	return &QueryConfig{
		KeepAlive:              DefaultKeepAlive,
		ThreadPoolSize:         DefaultThreadPoolSize,
		QueueSize:              DefaultQueueSize,
		ThreadTimeout:          DefaultThreadTimeout,
		SpoolThresholdBytes:    DefaultSpoolThresholdBytes,
		MaxTablePoolSize:       DefaultMaxTablePoolSize,
		MaxMemoryBytes:         DefaultMaxMemoryBytes,
		MaxMemoryWait:          DefaultMaxMemoryWait,
		MaxTenantMemoryPercent: DefaultMaxTenantMemoryPercent,
		MaxHashCacheBytes:      DefaultMaxHashCacheBytes,
		ScanCacheSize:          DefaultScanCacheSize,
		TargetQueryConcurrency: DefaultTargetQueryConcurrency,
		MaxQueryConcurrency:    DefaultMaxQueryConcurrency,
		DateFormat:             DefaultDateFormat,
		StatsUpdateFrequency:   DefaultStatsUpdateFrequency,
		MaxStatsAge:            DefaultMaxStatsAge,
		CallQueueRoundRobin:    DefaultCallQueueRoundRobin,
		MaxMutationSize:        DefaultMaxMutationSize,
		UpsertBatchSize:        DefaultUpsertBatchSize,
	}
}

// LoadQueryConfig reads a YAML configuration. Settings absent from the
// input keep their defaults; unknown keys are rejected. The result is
// validated.
func LoadQueryConfig(r io.Reader) (*QueryConfig, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading configuration")
	}
	cfg := DefaultQueryConfig()
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, errors.Wrap(err, "parsing configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the settings are usable.
func (c *QueryConfig) Validate() error {
	positive := []struct {
		name string
		v    int64
	}{
		{"keep_alive", int64(c.KeepAlive)},
		{"thread_pool_size", int64(c.ThreadPoolSize)},
		{"queue_size", int64(c.QueueSize)},
		{"thread_timeout", int64(c.ThreadTimeout)},
		{"spool_threshold_bytes", int64(c.SpoolThresholdBytes)},
		{"max_table_pool_size", int64(c.MaxTablePoolSize)},
		{"max_memory_bytes", int64(c.MaxMemoryBytes)},
		{"max_memory_wait", int64(c.MaxMemoryWait)},
		{"max_hash_cache_bytes", int64(c.MaxHashCacheBytes)},
		{"scan_cache_size", int64(c.ScanCacheSize)},
		{"target_query_concurrency", int64(c.TargetQueryConcurrency)},
		{"max_query_concurrency", int64(c.MaxQueryConcurrency)},
		{"stats_update_frequency", int64(c.StatsUpdateFrequency)},
		{"max_stats_age", int64(c.MaxStatsAge)},
		{"max_mutation_size", int64(c.MaxMutationSize)},
		{"upsert_batch_size", int64(c.UpsertBatchSize)},
	}
	for _, p := range positive {
		if p.v <= 0 {
			return errors.Newf("%s must be positive, got %d", p.name, p.v)
		}
	}
	if c.MaxTenantMemoryPercent < 0 || c.MaxTenantMemoryPercent > 100 {
		return errors.Newf("max_tenant_memory_percent must be between 0 and 100, got %d",
			c.MaxTenantMemoryPercent)
	}
	if c.TargetQueryConcurrency > c.MaxQueryConcurrency {
		return errors.WithHintf(
			errors.Newf("target_query_concurrency %d exceeds max_query_concurrency %d",
				c.TargetQueryConcurrency, c.MaxQueryConcurrency),
			"raise max_query_concurrency or lower target_query_concurrency")
	}
	if c.DateFormat == "" {
		return errors.New("date_format must not be empty")
	}
	return nil
}

// QueryConcurrency returns the number of predicates a batch compiles at
// once.
func (c *QueryConfig) QueryConcurrency() int {
	n := c.TargetQueryConcurrency
	if n > c.MaxQueryConcurrency {
		n = c.MaxQueryConcurrency
	}
	if n > c.ThreadPoolSize {
		n = c.ThreadPoolSize
	}
	return n
}

// String renders the configuration as YAML.
func (c *QueryConfig) String() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err.Error()
	}
	return string(b)
}
