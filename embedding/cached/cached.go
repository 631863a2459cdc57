//
// Copyright (C) 2025 NETVEXA. All rights reserved.
//
// rag-go is licensed under the Apache License Version 2.0.
//
//

// Package cached decorates an embedder with a content-addressed cache.
// Identical text never hits the provider twice within the TTL.
package cached

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/netvexa/rag-go/cache"
	"github.com/netvexa/rag-go/embedding"
	"github.com/netvexa/rag-go/log"
)

var _ embedding.Embedder = (*Embedder)(nil)

// DefaultTTL is how long cached vectors stay valid.
const DefaultTTL = 7 * 24 * time.Hour

// Embedder wraps an embedding provider with a cache keyed by provider
// name and content hash. Cache failures are absorbed: a broken cache
// degrades to pass-through, never to an error.
type Embedder struct {
	inner    embedding.Embedder
	cache    cache.Cache
	provider string
	ttl      time.Duration
}

// Option configures the cached embedder.
type Option func(*Embedder)

// WithTTL overrides the cache entry lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(e *Embedder) {
		e.ttl = ttl
	}
}

// WithProviderName sets the provider segment of cache keys. Two
// providers with different names never share cached vectors.
func WithProviderName(name string) Option {
	return func(e *Embedder) {
		e.provider = name
	}
}

// New wraps inner with the given cache.
func New(inner embedding.Embedder, c cache.Cache, opts ...Option) *Embedder {
	e := &Embedder{
		inner:    inner,
		cache:    c,
		provider: "default",
		ttl:      DefaultTTL,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// GetEmbedding implements the embedding.Embedder interface.
func (e *Embedder) GetEmbedding(ctx context.Context, text string) ([]float64, error) {
	key := e.key(text)
	if vector, ok := e.lookup(ctx, key); ok {
		return vector, nil
	}

	vector, err := e.inner.GetEmbedding(ctx, text)
	if err != nil {
		return nil, err
	}
	e.store(ctx, key, vector)
	return vector, nil
}

// GetEmbeddings implements the embedding.Embedder interface. Cached
// texts are served locally; only the uncached remainder goes to the
// provider, in one batch.
func (e *Embedder) GetEmbeddings(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([][]float64, len(texts))
	var (
		uncached      []string
		uncachedIndex []int
	)
	for i, text := range texts {
		if vector, ok := e.lookup(ctx, e.key(text)); ok {
			vectors[i] = vector
			continue
		}
		uncached = append(uncached, text)
		uncachedIndex = append(uncachedIndex, i)
	}
	if len(uncached) == 0 {
		return vectors, nil
	}

	fresh, err := e.inner.GetEmbeddings(ctx, uncached)
	if err != nil {
		return nil, err
	}
	for j, vector := range fresh {
		i := uncachedIndex[j]
		vectors[i] = vector
		e.store(ctx, e.key(texts[i]), vector)
	}
	return vectors, nil
}

// GetDimensions implements the embedding.Embedder interface.
func (e *Embedder) GetDimensions() int {
	return e.inner.GetDimensions()
}

// key builds a deterministic cache key from the provider name and the
// content hash of text.
func (e *Embedder) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("embedding:%s:%s", e.provider, hex.EncodeToString(sum[:]))
}

func (e *Embedder) lookup(ctx context.Context, key string) ([]float64, bool) {
	data, err := e.cache.Get(ctx, key)
	if err != nil {
		if !cache.IsNotFound(err) {
			log.WarnContext(ctx, fmt.Sprintf("embedding cache read failed: %v", err))
		}
		return nil, false
	}
	var vector []float64
	if err := json.Unmarshal(data, &vector); err != nil {
		log.WarnContext(ctx, fmt.Sprintf("embedding cache entry corrupt: %v", err))
		return nil, false
	}
	return vector, true
}

func (e *Embedder) store(ctx context.Context, key string, vector []float64) {
	data, err := json.Marshal(vector)
	if err != nil {
		return
	}
	if err := e.cache.Set(ctx, key, data, e.ttl); err != nil {
		log.WarnContext(ctx, fmt.Sprintf("embedding cache write failed: %v", err))
	}
}
