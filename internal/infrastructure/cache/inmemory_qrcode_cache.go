package cache

import (
	"context"
	"sync"
	"time"
)

type qrEntry struct {
	png       []byte
	expiresAt time.Time
}

// InMemoryQRCodeCache implements QRCodeCache with a map.
// Suitable for single-instance deployments and tests.
type InMemoryQRCodeCache struct {
	mu        sync.RWMutex
	entries   map[string]qrEntry
	ttl       time.Duration
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryQRCodeCache creates an in-memory cache and starts its cleanup loop
func NewInMemoryQRCodeCache(ttl time.Duration) *InMemoryQRCodeCache {
	if ttl <= 0 {
		ttl = DefaultQRCodeTTL
	}
	c := &InMemoryQRCodeCache{
		entries:  make(map[string]qrEntry),
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}

	c.wg.Add(1)
	go c.cleanupLoop()

	return c
}

// Get returns the cached PNG for key
func (c *InMemoryQRCodeCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false, nil
	}
	return e.png, true, nil
}

// Set stores the PNG for key
func (c *InMemoryQRCodeCache) Set(_ context.Context, key string, png []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = qrEntry{
		png:       append([]byte(nil), png...),
		expiresAt: time.Now().Add(c.ttl),
	}
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (c *InMemoryQRCodeCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

// Size returns the number of entries, expired ones included
func (c *InMemoryQRCodeCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *InMemoryQRCodeCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *InMemoryQRCodeCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

var _ QRCodeCache = (*InMemoryQRCodeCache)(nil)
