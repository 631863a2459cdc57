//
// Copyright (C) 2025 NETVEXA. All rights reserved.
//
// rag-go is licensed under the Apache License Version 2.0.
//
//

// Package embedding defines the embedding provider interface used by
// ingestion and search.
package embedding

import (
	"context"
	"errors"
)

// ErrProviderUnavailable is returned when the provider cannot be
// reached after exhausting retries. Callers may degrade to
// keyword-only search when they see this error.
var ErrProviderUnavailable = errors.New("embedding: provider unavailable")

// Embedder converts text into dense vectors. All vectors produced by
// one embedder have the same dimensionality, reported by
// GetDimensions.
type Embedder interface {
	// GetEmbedding generates an embedding vector for the given text.
	GetEmbedding(ctx context.Context, text string) ([]float64, error)

	// GetEmbeddings generates embedding vectors for a batch of texts.
	// The result has one vector per input, in input order.
	GetEmbeddings(ctx context.Context, texts []string) ([][]float64, error)

	// GetDimensions returns the dimensionality of produced vectors.
	GetDimensions() int
}
