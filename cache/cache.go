//
// Copyright (C) 2025 NETVEXA. All rights reserved.
//
// rag-go is licensed under the Apache License Version 2.0.
//
//

// Package cache defines the byte-oriented cache capability used for
// embedding vectors and conversation history. Implementations are
// expected to be safe for concurrent use.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key is absent or expired.
var ErrNotFound = errors.New("cache: key not found")

// Cache is a TTL key-value store. A cache is an accelerator, not a
// source of truth: callers must treat every error as a miss.
type Cache interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key. A non-positive ttl means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// IsNotFound reports whether err marks a cache miss rather than a
// backend failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
