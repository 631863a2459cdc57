//
// Copyright (C) 2025 NETVEXA. All rights reserved.
//
// rag-go is licensed under the Apache License Version 2.0.
//
//

package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/netvexa/rag-go/chunking"
	"github.com/netvexa/rag-go/document"
	"github.com/netvexa/rag-go/document/parser"
	"github.com/netvexa/rag-go/log"
	"github.com/netvexa/rag-go/telemetry"
	"github.com/netvexa/rag-go/vectorstore"
)

const (
	// ingestBatchSize is how many chunks are embedded per provider call.
	ingestBatchSize = 10
	// documentRecordTTL is how long ingestion records stay queryable.
	documentRecordTTL = 30 * 24 * time.Hour
)

// IngestRequest describes one document to ingest.
type IngestRequest struct {
	AgentID  string
	FileName string
	MIMEType string
	Data     []byte
}

// IngestResult reports what happened to each chunk. A document with
// FailedChunks > 0 was still persisted: failed chunks land without
// embeddings and stay retrievable by keyword until backfilled.
type IngestResult struct {
	DocumentID     string        `json:"document_id"`
	TotalChunks    int           `json:"total_chunks"`
	EmbeddedChunks int           `json:"embedded_chunks"`
	FailedChunks   int           `json:"failed_chunks"`
	Errors         []string      `json:"errors,omitempty"`
	Elapsed        time.Duration `json:"elapsed"`
}

// documentRecord is the cached ingestion summary.
type documentRecord struct {
	DocumentID     string         `json:"document_id"`
	AgentID        string         `json:"agent_id"`
	FileName       string         `json:"file_name"`
	IngestedAt     time.Time      `json:"ingested_at"`
	TotalChunks    int            `json:"total_chunks"`
	EmbeddedChunks int            `json:"embedded_chunks"`
	DocumentType   string         `json:"document_type"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// Ingest parses, chunks, embeds, and persists one document. Embedding
// and persistence failures are partial: an embedding failure stores the
// batch without vectors, a store failure counts the batch as failed,
// and either way the remaining batches proceed.
func (e *Engine) Ingest(ctx context.Context, req *IngestRequest) (*IngestResult, error) {
	start := time.Now()
	if req.AgentID == "" {
		return nil, fmt.Errorf("rag: agent id is required")
	}

	ctx, span := telemetry.Tracer.Start(ctx, telemetry.OperationIngest)
	defer span.End()
	span.SetAttributes(attribute.String(telemetry.KeyAgentID, req.AgentID))

	doc, err := parser.Parse(req.Data,
		parser.WithFileName(req.FileName),
		parser.WithMIMEType(req.MIMEType),
	)
	if err != nil {
		telemetry.TraceError(span, err)
		return nil, fmt.Errorf("rag: parse %s: %w", req.FileName, err)
	}

	chunks, err := e.chunkDocument(doc)
	if err != nil {
		telemetry.TraceError(span, err)
		return nil, fmt.Errorf("rag: chunk %s: %w", req.FileName, err)
	}

	documentID := uuid.NewString()
	result := &IngestResult{
		DocumentID:  documentID,
		TotalChunks: len(chunks),
	}
	span.SetAttributes(
		attribute.String(telemetry.KeyDocumentID, documentID),
		attribute.Int(telemetry.KeyChunkCount, len(chunks)),
	)

	if len(chunks) == 0 {
		result.Elapsed = time.Since(start)
		return result, nil
	}

	e.embedAndStore(ctx, req.AgentID, documentID, chunks, result)

	e.storeDocumentRecord(ctx, req, doc, result)
	result.Elapsed = time.Since(start)
	log.InfoContext(ctx, fmt.Sprintf("ingested document %s: %d chunks, %d embedded, %d failed",
		documentID, result.TotalChunks, result.EmbeddedChunks, result.FailedChunks))
	return result, nil
}

// chunkDocument picks the strategy for the document type and chunks
// section by section so structural context survives.
func (e *Engine) chunkDocument(doc *document.Document) ([]*chunking.Chunk, error) {
	strategy := chunking.ForDocument(doc, e.chunkOpts...)

	if len(doc.Sections) == 0 {
		return strategy.Chunk(doc.Text, chunking.Context{Language: doc.Language()})
	}

	var chunks []*chunking.Chunk
	for _, sec := range doc.Sections {
		sub, err := strategy.Chunk(sec.Content, chunking.Context{
			SectionTitle: sec.Title,
			PageNumber:   sec.PageNumber,
			Language:     doc.Language(),
		})
		if err != nil {
			return nil, err
		}
		for _, c := range sub {
			c.Index = len(chunks)
			chunks = append(chunks, c)
		}
	}
	return chunks, nil
}

// embedAndStore embeds chunks in fixed-size batches on the worker
// pool and persists each batch as it completes. Batches fail
// independently: a bad batch is counted in the result and the rest
// proceed.
func (e *Engine) embedAndStore(
	ctx context.Context,
	agentID, documentID string,
	chunks []*chunking.Chunk,
	result *IngestResult,
) {
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for batchStart := 0; batchStart < len(chunks); batchStart += ingestBatchSize {
		batch := chunks[batchStart:min(batchStart+ingestBatchSize, len(chunks))]

		wg.Add(1)
		task := func() {
			defer wg.Done()

			texts := make([]string, len(batch))
			for i, c := range batch {
				texts[i] = c.Text
			}

			vectors, embedErr := e.embedder.GetEmbeddings(ctx, texts)
			if embedErr != nil {
				log.WarnContext(ctx, fmt.Sprintf("embedding batch failed, storing chunks unembedded: %v", embedErr))
				vectors = make([][]float64, len(batch))
			}

			stored := make([]*vectorstore.StoredChunk, len(batch))
			for i, c := range batch {
				stored[i] = &vectorstore.StoredChunk{
					ID:           c.ID,
					DocumentID:   documentID,
					AgentID:      agentID,
					Text:         c.Text,
					Embedding:    vectors[i],
					Index:        c.Index,
					SectionTitle: c.SectionTitle,
					PageNumber:   c.PageNumber,
					Language:     c.Language,
					HasCode:      c.HasCode,
					TokenCount:   c.TokenCount,
					WordCount:    c.WordCount,
					CreatedAt:    time.Now(),
				}
			}

			addErr := e.store.AddChunks(ctx, stored)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case addErr != nil:
				result.FailedChunks += len(batch)
				result.Errors = append(result.Errors, fmt.Sprintf("store batch: %v", addErr))
			case embedErr != nil:
				result.FailedChunks += len(batch)
				result.Errors = append(result.Errors, fmt.Sprintf("embed batch: %v", embedErr))
			default:
				result.EmbeddedChunks += len(batch)
			}
		}
		if err := e.pool.Submit(task); err != nil {
			// Pool saturated or released; run inline rather than drop.
			task()
		}
	}
	wg.Wait()
}

// storeDocumentRecord caches an ingestion summary when a cache is
// configured. Failures are absorbed; the record is bookkeeping, not
// source of truth.
func (e *Engine) storeDocumentRecord(ctx context.Context, req *IngestRequest, doc *document.Document, result *IngestResult) {
	if e.cache == nil {
		return
	}
	record := documentRecord{
		DocumentID:     result.DocumentID,
		AgentID:        req.AgentID,
		FileName:       req.FileName,
		IngestedAt:     time.Now(),
		TotalChunks:    result.TotalChunks,
		EmbeddedChunks: result.EmbeddedChunks,
		DocumentType:   doc.Type(),
		Metadata:       doc.Metadata,
	}
	data, err := json.Marshal(record)
	if err != nil {
		return
	}
	key := fmt.Sprintf("document:%s:%s", req.AgentID, result.DocumentID)
	if err := e.cache.Set(ctx, key, data, documentRecordTTL); err != nil {
		log.WarnContext(ctx, fmt.Sprintf("failed to store document record: %v", err))
	}
}

// DocumentRecord returns the cached ingestion summary for a document,
// or cache.ErrNotFound once the record expired.
func (e *Engine) DocumentRecord(ctx context.Context, agentID, documentID string) (*IngestResult, error) {
	if e.cache == nil {
		return nil, fmt.Errorf("rag: no cache configured")
	}
	data, err := e.cache.Get(ctx, fmt.Sprintf("document:%s:%s", agentID, documentID))
	if err != nil {
		return nil, err
	}
	var record documentRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("rag: decode document record: %w", err)
	}
	return &IngestResult{
		DocumentID:     record.DocumentID,
		TotalChunks:    record.TotalChunks,
		EmbeddedChunks: record.EmbeddedChunks,
	}, nil
}

// DeleteDocument removes a document's chunks and its cached record.
func (e *Engine) DeleteDocument(ctx context.Context, agentID, documentID string) error {
	if err := e.store.DeleteDocument(ctx, agentID, documentID); err != nil {
		return fmt.Errorf("rag: delete document %s: %w", documentID, err)
	}
	if e.cache != nil {
		_ = e.cache.Delete(ctx, fmt.Sprintf("document:%s:%s", agentID, documentID))
	}
	return nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
