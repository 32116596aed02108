package datagrid

import "time"

// Config holds configuration for the datagrid engine.
type Config struct {
	// QueryTimeout bounds each database round-trip. Defaults to 10s.
	QueryTimeout time.Duration `json:"query_timeout,omitempty"`

	// SlowQueryThreshold marks queries at or above this duration as slow in
	// logs and the query recorder. Defaults to 500ms.
	SlowQueryThreshold time.Duration `json:"slow_query_threshold,omitempty"`

	// DefaultLength is the page size used when a request supplies none.
	// Defaults to 25.
	DefaultLength int `json:"default_length,omitempty"`

	// MaxLength caps the page size; larger requests are clamped.
	// Defaults to 1000. -1 ("all rows") is always allowed.
	MaxLength int `json:"max_length,omitempty"`

	// CountCacheTTL is the time-to-live for memoized total counts.
	// Zero disables count caching.
	CountCacheTTL time.Duration `json:"count_cache_ttl,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		QueryTimeout:       10 * time.Second,
		SlowQueryThreshold: 500 * time.Millisecond,
		DefaultLength:      25,
		MaxLength:          1000,
		CountCacheTTL:      5 * time.Second,
	}
}

// normalize clamps request parameters to safe values. Pagination and sort
// input is UI-driven: it degrades gracefully instead of being rejected.
func (c Config) normalize(p RequestParams) RequestParams {
	if p.Start < 0 {
		p.Start = 0
	}
	switch {
	case p.Length == -1:
		// Full result set; the offset is reset so "all rows" means all.
		p.Start = 0
	case p.Length <= 0:
		p.Length = c.DefaultLength
	case c.MaxLength > 0 && p.Length > c.MaxLength:
		p.Length = c.MaxLength
	}
	p.OrderDir = ParseSortDir(string(p.OrderDir))
	return p
}
