//
// Copyright (C) 2025 NETVEXA. All rights reserved.
//
// rag-go is licensed under the Apache License Version 2.0.
//
//

package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/netvexa/rag-go/log"
)

// reembedBatchSize is how many chunks are embedded per backfill batch.
const reembedBatchSize = 50

// ReembedResult reports a backfill run.
type ReembedResult struct {
	TotalChunks   int           `json:"total_chunks"`
	UpdatedChunks int           `json:"updated_chunks"`
	FailedChunks  int           `json:"failed_chunks"`
	Elapsed       time.Duration `json:"elapsed"`
}

// ReembedMissing backfills embeddings for chunks that were persisted
// while the provider was unavailable. Batches fail independently: one
// bad batch does not stop the rest.
func (e *Engine) ReembedMissing(ctx context.Context, agentID string) (*ReembedResult, error) {
	start := time.Now()
	result := &ReembedResult{}

	for {
		missing, err := e.store.MissingEmbeddings(ctx, agentID, reembedBatchSize)
		if err != nil {
			return nil, fmt.Errorf("rag: list missing embeddings: %w", err)
		}
		if len(missing) == 0 {
			break
		}
		result.TotalChunks += len(missing)

		texts := make([]string, len(missing))
		for i, c := range missing {
			texts[i] = c.Text
		}
		vectors, err := e.embedder.GetEmbeddings(ctx, texts)
		if err != nil {
			// The provider is down again; stop rather than spin.
			log.WarnContext(ctx, fmt.Sprintf("reembed batch failed: %v", err))
			result.FailedChunks += len(missing)
			break
		}

		updated := 0
		for i, c := range missing {
			if err := e.store.UpdateEmbedding(ctx, c.ID, vectors[i]); err != nil {
				log.WarnContext(ctx, fmt.Sprintf("reembed update %s failed: %v", c.ID, err))
				result.FailedChunks++
				continue
			}
			updated++
		}
		result.UpdatedChunks += updated
		// No progress means the failing chunks would come straight back
		// on the next listing.
		if updated == 0 || len(missing) < reembedBatchSize {
			break
		}
	}

	result.Elapsed = time.Since(start)
	return result, nil
}
