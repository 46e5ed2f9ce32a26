package backend

import (
	"context"
	"fmt"
	"log"
)

// Chain tries adapters in preference order until one succeeds. Auth and
// quota failures mark the backend unusable for subsequent calls; timeouts
// and malformed replies only skip to the next adapter.
type Chain struct {
	adapters []Adapter
	health   *Health
}

func NewChain(health *Health, adapters ...Adapter) *Chain {
	return &Chain{adapters: adapters, health: health}
}

// Names returns the adapter names in preference order.
func (c *Chain) Names() []string {
	names := make([]string, len(c.adapters))
	for i, a := range c.adapters {
		names[i] = a.Name()
	}
	return names
}

// Health exposes the shared health board.
func (c *Chain) Health() *Health {
	return c.health
}

// Run returns the first successful reply, or ErrAllBackendsFailed once
// every adapter is exhausted or pre-marked unusable.
func (c *Chain) Run(ctx context.Context, prompt string, schema *Schema) (*Reply, error) {
	var lastErr error

	for _, adapter := range c.adapters {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAllBackendsFailed, err)
		}
		if !c.health.Usable(adapter.Name()) {
			continue
		}

		reply, err := c.invoke(ctx, adapter, prompt, schema)
		if err == nil {
			return reply, nil
		}
		lastErr = err

		switch KindOf(err) {
		case KindAuth:
			c.health.MarkUnusable(adapter.Name(), "auth failure")
			log.Printf("[backend] %s marked unusable: auth failure", adapter.Name())
		case KindQuota:
			c.health.MarkUnusable(adapter.Name(), "quota exceeded")
			log.Printf("[backend] %s marked unusable: quota exceeded", adapter.Name())
		default:
			// timeout, malformed, unknown: the backend stays eligible
			// for future calls.
			log.Printf("[backend] %s failed (%s), trying next", adapter.Name(), KindOf(err))
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: last: %v", ErrAllBackendsFailed, lastErr)
	}
	return nil, ErrAllBackendsFailed
}

// invoke calls one adapter, retrying once if the reply was malformed.
func (c *Chain) invoke(ctx context.Context, adapter Adapter, prompt string, schema *Schema) (*Reply, error) {
	reply, err := adapter.Invoke(ctx, prompt, schema)
	if err != nil && KindOf(err) == KindMalformed && ctx.Err() == nil {
		reply, err = adapter.Invoke(ctx, prompt, schema)
	}
	return reply, err
}
