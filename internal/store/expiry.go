package store

import "time"

// DefaultTTL is how long cached place searches and photos stay fresh.
const DefaultTTL = 5 * 24 * time.Hour

// IsExpired reports whether a record written at ts is stale at now. A
// zero timestamp counts as expired so records with missing stamps are
// always re-fetched. The same TTL applies to place searches and photos;
// photos rarely change, but the shared TTL is deliberate and kept.
func IsExpired(ts, now time.Time, ttl time.Duration) bool {
	if ts.IsZero() {
		return true
	}
	return now.Sub(ts) > ttl
}
