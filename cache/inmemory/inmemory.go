//
// Copyright (C) 2025 NETVEXA. All rights reserved.
//
// rag-go is licensed under the Apache License Version 2.0.
//
//

// Package inmemory provides a process-local cache implementation.
// It is the default for tests and single-node deployments.
package inmemory

import (
	"context"
	"sync"
	"time"

	"github.com/netvexa/rag-go/cache"
)

var _ cache.Cache = (*Cache)(nil)

type entry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

// Cache is a mutex-guarded map with lazy expiry.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// New creates an empty in-memory cache.
func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get implements the cache.Cache interface.
func (c *Cache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, cache.ErrNotFound
	}
	if !e.expiresAt.IsZero() && c.now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, cache.ErrNotFound
	}
	value := make([]byte, len(e.value))
	copy(value, e.value)
	return value, nil
}

// Set implements the cache.Cache interface.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := entry{value: make([]byte, len(value))}
	copy(e.value, value)
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	return nil
}

// Delete implements the cache.Cache interface.
func (c *Cache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included
// until their next Get.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
