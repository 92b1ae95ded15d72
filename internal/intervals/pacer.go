package intervals

import (
	"context"
	"sync"
	"time"
)

// pacer enforces a minimum interval between requests across all goroutines
// sharing the client.
type pacer struct {
	mu          sync.Mutex
	minInterval time.Duration
	lastRequest time.Time
}

func newPacer(minInterval time.Duration) *pacer {
	return &pacer{minInterval: minInterval}
}

// wait blocks until the next request may be sent
func (p *pacer) wait(ctx context.Context) error {
	p.mu.Lock()
	elapsed := time.Since(p.lastRequest)
	if elapsed < p.minInterval {
		waitTime := p.minInterval - elapsed
		p.mu.Unlock()
		select {
		case <-time.After(waitTime):
		case <-ctx.Done():
			return ctx.Err()
		}
		p.mu.Lock()
	}

	p.lastRequest = time.Now()
	p.mu.Unlock()
	return nil
}
