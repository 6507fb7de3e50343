package cache

import (
	"context"
	"time"
)

// DefaultQRCodeTTL is used when a cache is created with a zero TTL
const DefaultQRCodeTTL = 24 * time.Hour

// QRCodeCache stores rendered QR images keyed by their payload.
// Payloads are deterministic for an invoice, so entries never go stale;
// the TTL only bounds memory.
type QRCodeCache interface {
	// Get returns the cached PNG for key; ok is false on a miss
	Get(ctx context.Context, key string) (png []byte, ok bool, err error)
	// Set stores the PNG for key
	Set(ctx context.Context, key string, png []byte) error
	// Close releases resources held by the cache
	Close() error
}
