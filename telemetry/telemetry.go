//
// Copyright (C) 2025 NETVEXA. All rights reserved.
//
// rag-go is licensed under the Apache License Version 2.0.
//
//

// Package telemetry provides the shared tracer handle and span helpers
// for the retrieval pipeline.
package telemetry

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentName identifies this library to the tracer provider.
const InstrumentName = "github.com/netvexa/rag-go"

// Operation names recorded on spans.
const (
	OperationEmbeddings = "embeddings"
	OperationSearch     = "hybrid_search"
	OperationRerank     = "rerank"
	OperationIngest     = "ingest_document"
	OperationAnswer     = "generate_answer"
	OperationChat       = "chat"
)

// Span attribute keys.
const (
	KeyRequestModel   = "gen_ai.request.model"
	KeyDimensions     = "gen_ai.request.embedding_dimensions"
	KeyInputTokens    = "gen_ai.usage.input_tokens"
	KeyOutputTokens   = "gen_ai.usage.output_tokens"
	KeyProvider       = "gen_ai.system"
	KeyAgentID        = "rag.agent_id"
	KeyDocumentID     = "rag.document_id"
	KeyChunkCount     = "rag.chunk_count"
	KeyResultCount    = "rag.result_count"
	KeyQueryLength    = "rag.query_length"
	KeyCacheHit       = "rag.cache_hit"
	KeySearchStrategy = "rag.search_strategy"
)

// Tracer is the tracer used across the pipeline. It resolves against the
// globally registered tracer provider, so applications keep full control
// over exporters and sampling.
var Tracer = otel.Tracer(InstrumentName)

// EmbeddingAttributes carries the values recorded on an embedding span.
type EmbeddingAttributes struct {
	RequestModel string
	Dimensions   int
	InputTokens  *int64
	Error        error
}

// TraceEmbedding records embedding call attributes on the span.
func TraceEmbedding(span trace.Span, attrs *EmbeddingAttributes) {
	span.SetAttributes(
		attribute.String(KeyRequestModel, attrs.RequestModel),
		attribute.Int(KeyDimensions, attrs.Dimensions),
	)
	if attrs.InputTokens != nil {
		span.SetAttributes(attribute.Int64(KeyInputTokens, *attrs.InputTokens))
	}
	TraceError(span, attrs.Error)
}

// TraceError marks the span failed when err is non-nil.
func TraceError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
