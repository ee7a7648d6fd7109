package output

import "context"

// CachedResponse is a previously computed HTTP response stored under an
// idempotency token: status code, content type and the exact body bytes
type CachedResponse struct {
	StatusCode  int    `json:"status_code"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// IdempotencyCache is an output port (secondary port) for the request-level
// deduplication cache. Entries are written once and never updated; expiry is
// the adapter's concern (TTL in Redis, sweeper in memory).
type IdempotencyCache interface {
	// Get returns the cached response for a token, if any
	Get(ctx context.Context, token string) (*CachedResponse, bool, error)

	// PutIfAbsent stores the response under the token unless one is already
	// present. First writer wins; concurrent duplicate inserts must not
	// corrupt the stored pair.
	PutIfAbsent(ctx context.Context, token string, response CachedResponse) error
}
