package ops

import (
	"sync"
	"time"
)

// VisitorCounter counts distinct visitors within a sliding TTL window.
// It replaces what used to be a static in-memory map: bounded, swept on an
// interval, and injected into the server so shutdown can stop it.
type VisitorCounter struct {
	mu       sync.Mutex
	lastSeen map[string]time.Time
	ttl      time.Duration
	maxSize  int
	total    uint64

	stop chan struct{}
}

// NewVisitorCounter creates a counter with the given entry TTL and bound.
func NewVisitorCounter(ttl time.Duration, maxSize int) *VisitorCounter {
	if maxSize <= 0 {
		maxSize = 10000
	}
	return &VisitorCounter{
		lastSeen: make(map[string]time.Time),
		ttl:      ttl,
		maxSize:  maxSize,
		stop:     make(chan struct{}),
	}
}

// Touch records a visit from the given identity (typically a client IP).
func (c *VisitorCounter) Touch(identity string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.total++
	if _, known := c.lastSeen[identity]; !known && len(c.lastSeen) >= c.maxSize {
		c.sweepLocked(time.Now())
		if len(c.lastSeen) >= c.maxSize {
			// Still full of live entries; drop the new identity rather
			// than grow without bound.
			return
		}
	}
	c.lastSeen[identity] = time.Now()
}

// Stats returns the total request count and the current distinct-visitor
// count within the TTL window.
func (c *VisitorCounter) Stats() (uint64, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweepLocked(time.Now())
	return c.total, len(c.lastSeen)
}

// StartSweeper evicts idle identities on an interval until Stop is called.
func (c *VisitorCounter) StartSweeper(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.mu.Lock()
				c.sweepLocked(time.Now())
				c.mu.Unlock()
			case <-c.stop:
				return
			}
		}
	}()
}

// Stop stops the background sweep loop.
func (c *VisitorCounter) Stop() {
	close(c.stop)
}

func (c *VisitorCounter) sweepLocked(now time.Time) {
	for identity, seen := range c.lastSeen {
		if now.Sub(seen) > c.ttl {
			delete(c.lastSeen, identity)
		}
	}
}
