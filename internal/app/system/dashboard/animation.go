package dashboard

import (
	"context"
	"time"
)

// animate advances the year once per interval until ctx is cancelled.
func (c *Coordinator) animate(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.tick(ctx)
		}
	}
}

// tick is one animation step. A tick that raced with a stop is dropped.
func (c *Coordinator) tick(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ctx.Err() != nil || !c.state.Playing {
		return
	}
	c.step()
}
