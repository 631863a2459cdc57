//
// Copyright (C) 2025 NETVEXA. All rights reserved.
//
// rag-go is licensed under the Apache License Version 2.0.
//
//

package completion

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/netvexa/rag-go/log"
)

var _ Provider = (*Chain)(nil)

// Chain tries providers in order until one accepts the request. For
// streaming, fallback happens only before the first chunk: once a
// provider has started responding, its errors reach the caller so a
// partial answer is never silently stitched to another provider's.
type Chain struct {
	providers []Provider

	mu   sync.Mutex
	last string
}

// NewChain builds a fallback chain over the given providers, tried in
// argument order.
func NewChain(providers ...Provider) *Chain {
	return &Chain{providers: providers}
}

// Name implements the Provider interface.
func (c *Chain) Name() string {
	return "fallback-chain"
}

// LastUsed reports the name of the provider that served the most
// recent successful request, empty before the first success.
func (c *Chain) LastUsed() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

func (c *Chain) record(name string) {
	c.mu.Lock()
	c.last = name
	c.mu.Unlock()
}

// Complete implements the Provider interface.
func (c *Chain) Complete(ctx context.Context, req *Request) (string, error) {
	var errs []error
	for _, p := range c.providers {
		text, err := p.Complete(ctx, req)
		if err == nil {
			c.record(p.Name())
			return text, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		log.WarnContext(ctx, fmt.Sprintf("completion provider %s failed, trying next: %v", p.Name(), err))
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
	}
	if len(errs) == 0 {
		return "", fmt.Errorf("%w: no providers configured", ErrAllProvidersFailed)
	}
	return "", fmt.Errorf("%w: %w", ErrAllProvidersFailed, errors.Join(errs...))
}

// Stream implements the Provider interface.
func (c *Chain) Stream(ctx context.Context, req *Request) (<-chan Chunk, error) {
	var errs []error
	for _, p := range c.providers {
		ch, err := p.Stream(ctx, req)
		if err == nil {
			c.record(p.Name())
			return ch, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.WarnContext(ctx, fmt.Sprintf("completion provider %s failed to start stream, trying next: %v", p.Name(), err))
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("%w: no providers configured", ErrAllProvidersFailed)
	}
	return nil, fmt.Errorf("%w: %w", ErrAllProvidersFailed, errors.Join(errs...))
}
