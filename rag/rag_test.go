//
// Copyright (C) 2025 NETVEXA. All rights reserved.
//
// rag-go is licensed under the Apache License Version 2.0.
//
//

package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cacheinmemory "github.com/netvexa/rag-go/cache/inmemory"
	"github.com/netvexa/rag-go/chunking"
	"github.com/netvexa/rag-go/completion"
	"github.com/netvexa/rag-go/vectorstore"
	storeinmemory "github.com/netvexa/rag-go/vectorstore/inmemory"
)

// hashEmbedder embeds text as normalized letter-bucket counts, so
// similar texts land near each other without a model.
type hashEmbedder struct {
	mu       sync.Mutex
	dims     int
	err      error
	failures int // fail the first N batch calls
	calls    int
}

func newHashEmbedder() *hashEmbedder { return &hashEmbedder{dims: 8} }

func (h *hashEmbedder) embed(text string) []float64 {
	v := make([]float64, h.dims)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			v[int(r-'a')%h.dims]++
		}
	}
	return v
}

func (h *hashEmbedder) GetEmbedding(_ context.Context, text string) ([]float64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return nil, h.err
	}
	return h.embed(text), nil
}

func (h *hashEmbedder) GetEmbeddings(_ context.Context, texts []string) ([][]float64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls++
	if h.err != nil {
		return nil, h.err
	}
	if h.calls <= h.failures {
		return nil, errors.New("provider overloaded")
	}
	out := make([][]float64, len(texts))
	for i, t := range texts {
		out[i] = h.embed(t)
	}
	return out, nil
}

func (h *hashEmbedder) GetDimensions() int { return h.dims }

// scriptedCompleter returns a fixed reply or error.
type scriptedCompleter struct {
	name  string
	reply string
	err   error
	last  *completion.Request
}

func (s *scriptedCompleter) Name() string {
	if s.name != "" {
		return s.name
	}
	return "scripted"
}

func (s *scriptedCompleter) Complete(_ context.Context, req *completion.Request) (string, error) {
	s.last = req
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func (s *scriptedCompleter) Stream(_ context.Context, _ *completion.Request) (<-chan completion.Chunk, error) {
	ch := make(chan completion.Chunk, 2)
	ch <- completion.Chunk{Content: s.reply}
	ch <- completion.Chunk{Done: true}
	close(ch)
	return ch, nil
}

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *hashEmbedder, *scriptedCompleter) {
	t.Helper()
	embedder := newHashEmbedder()
	completer := &scriptedCompleter{reply: "Our pricing starts at $10 per month [1]."}

	base := []Option{
		WithEmbedder(embedder),
		WithStore(storeinmemory.New()),
		WithCompletionProvider(completer),
		WithCache(cacheinmemory.New()),
		WithChunkingOptions(
			chunking.WithChunkSize(40),
			chunking.WithOverlap(0),
			chunking.WithMinChunkSize(0),
			chunking.WithTokenCounter(chunking.WordCounter{}),
		),
	}
	engine, err := New(append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(engine.Close)
	return engine, embedder, completer
}

func TestNewValidatesDependencies(t *testing.T) {
	_, err := New()
	assert.ErrorContains(t, err, "embedder")

	_, err = New(WithEmbedder(newHashEmbedder()))
	assert.ErrorContains(t, err, "store")

	_, err = New(WithEmbedder(newHashEmbedder()), WithStore(storeinmemory.New()))
	assert.ErrorContains(t, err, "completion")

	_, err = New(
		WithEmbedder(&hashEmbedder{dims: 0}),
		WithStore(storeinmemory.New()),
		WithCompletionProvider(&scriptedCompleter{}),
	)
	assert.ErrorContains(t, err, "dimensions")
}

// fixedDimStore advertises a fixed vector width, like a pgvector
// table.
type fixedDimStore struct {
	*storeinmemory.Store
	dims int
}

func (s *fixedDimStore) Dimensions() int { return s.dims }

func TestNewRejectsStoreDimensionMismatch(t *testing.T) {
	_, err := New(
		WithEmbedder(newHashEmbedder()),
		WithStore(&fixedDimStore{storeinmemory.New(), 1536}),
		WithCompletionProvider(&scriptedCompleter{}),
	)
	require.Error(t, err)
	assert.ErrorContains(t, err, "dimension")

	engine, err := New(
		WithEmbedder(newHashEmbedder()),
		WithStore(&fixedDimStore{storeinmemory.New(), newHashEmbedder().GetDimensions()}),
		WithCompletionProvider(&scriptedCompleter{}),
	)
	require.NoError(t, err, "matching dimensions must pass")
	engine.Close()
}

func TestWithWorkersSizesThePool(t *testing.T) {
	engine, _, _ := newTestEngine(t, WithWorkers(2))
	assert.Equal(t, 2, engine.pool.Cap())
}

const pricingDoc = `Our pricing plans are simple. The basic tier costs ten dollars per month and includes one agent.

The professional tier costs fifty dollars per month and includes five agents with priority support.

Refunds are available within thirty days of purchase under the standard refund policy.`

func TestIngestStoresEmbeddedChunks(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	result, err := engine.Ingest(ctx, &IngestRequest{
		AgentID:  "a1",
		FileName: "pricing.txt",
		Data:     []byte(pricingDoc),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, result.DocumentID)
	assert.Greater(t, result.TotalChunks, 0)
	assert.Equal(t, result.TotalChunks, result.EmbeddedChunks)
	assert.Zero(t, result.FailedChunks)

	n, err := engine.store.Count(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, result.TotalChunks, n)
}

func TestIngestEmptyDocument(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	result, err := engine.Ingest(context.Background(), &IngestRequest{
		AgentID:  "a1",
		FileName: "empty.txt",
		Data:     []byte("   "),
	})
	require.NoError(t, err)
	assert.Zero(t, result.TotalChunks)
}

func TestIngestRequiresAgentID(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	_, err := engine.Ingest(context.Background(), &IngestRequest{Data: []byte("text")})
	assert.Error(t, err)
}

func TestIngestSurvivesEmbeddingFailure(t *testing.T) {
	engine, embedder, _ := newTestEngine(t)
	embedder.failures = 100 // every batch fails
	ctx := context.Background()

	result, err := engine.Ingest(ctx, &IngestRequest{
		AgentID:  "a1",
		FileName: "pricing.txt",
		Data:     []byte(pricingDoc),
	})
	require.NoError(t, err, "embedding failure must not fail ingestion")

	assert.Equal(t, result.TotalChunks, result.FailedChunks)
	assert.Zero(t, result.EmbeddedChunks)
	assert.NotEmpty(t, result.Errors)

	// Chunks landed without vectors and are keyword-searchable.
	missing, err := engine.store.MissingEmbeddings(ctx, "a1", 100)
	require.NoError(t, err)
	assert.Len(t, missing, result.TotalChunks)
}

func TestIngestCountsFailuresPerBatch(t *testing.T) {
	engine, embedder, _ := newTestEngine(t)
	embedder.failures = 1 // exactly one batch call fails
	ctx := context.Background()

	chunks := make([]*chunking.Chunk, 2*ingestBatchSize)
	for i := range chunks {
		chunks[i] = &chunking.Chunk{
			ID:    fmt.Sprintf("c%02d", i),
			Index: i,
			Text:  fmt.Sprintf("chunk number %d about pricing", i),
		}
	}
	result := &IngestResult{DocumentID: "doc-1", TotalChunks: len(chunks)}
	engine.embedAndStore(ctx, "a1", "doc-1", chunks, result)

	// Accounting is per batch: the failing batch's chunks are counted
	// failed, the other batch lands embedded.
	assert.Equal(t, ingestBatchSize, result.FailedChunks)
	assert.Equal(t, ingestBatchSize, result.EmbeddedChunks)
	assert.Len(t, result.Errors, 1)

	// The failed batch is stored without vectors, ready for backfill.
	missing, err := engine.store.MissingEmbeddings(ctx, "a1", 100)
	require.NoError(t, err)
	assert.Len(t, missing, ingestBatchSize)
}

func TestIngestMarkdownPreambleRetrievable(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	result, err := engine.Ingest(ctx, &IngestRequest{
		AgentID:  "a1",
		FileName: "manual.md",
		Data:     []byte("Welcome preamble paragraph about widgets.\n\n# Setup\n\nInstall the widget before first use.\n"),
	})
	require.NoError(t, err)
	require.Greater(t, result.TotalChunks, 1, "preamble and section must both produce chunks")

	// Text before the first heading must survive chunking and stay
	// keyword-searchable.
	candidates, err := engine.store.KeywordCandidates(ctx, "a1", []string{"preamble"}, 10)
	require.NoError(t, err)
	require.NotEmpty(t, candidates)
	assert.Contains(t, candidates[0].Text, "preamble")
}

type rejectingStore struct {
	*storeinmemory.Store
}

func (s *rejectingStore) AddChunks(ctx context.Context, chunks []*vectorstore.StoredChunk) error {
	return vectorstore.ErrPersistenceFailure
}

func TestIngestSurvivesStoreFailure(t *testing.T) {
	engine, _, _ := newTestEngine(t, WithStore(&rejectingStore{storeinmemory.New()}))

	result, err := engine.Ingest(context.Background(), &IngestRequest{
		AgentID:  "a1",
		FileName: "pricing.txt",
		Data:     []byte(pricingDoc),
	})
	require.NoError(t, err, "store failure must not fail ingestion")

	assert.Equal(t, result.TotalChunks, result.FailedChunks)
	assert.Zero(t, result.EmbeddedChunks)
	assert.NotEmpty(t, result.Errors)
}

func TestReembedMissingBackfills(t *testing.T) {
	engine, embedder, _ := newTestEngine(t)
	embedder.failures = 100
	ctx := context.Background()

	ingested, err := engine.Ingest(ctx, &IngestRequest{
		AgentID:  "a1",
		FileName: "pricing.txt",
		Data:     []byte(pricingDoc),
	})
	require.NoError(t, err)
	require.Greater(t, ingested.FailedChunks, 0)

	// Provider recovers.
	embedder.failures = 0
	embedder.calls = 0

	result, err := engine.ReembedMissing(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, ingested.TotalChunks, result.UpdatedChunks)
	assert.Zero(t, result.FailedChunks)

	missing, err := engine.store.MissingEmbeddings(ctx, "a1", 100)
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestDocumentRecordRoundTrip(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	ingested, err := engine.Ingest(ctx, &IngestRequest{
		AgentID:  "a1",
		FileName: "pricing.txt",
		Data:     []byte(pricingDoc),
	})
	require.NoError(t, err)

	record, err := engine.DocumentRecord(ctx, "a1", ingested.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, ingested.TotalChunks, record.TotalChunks)
}

func TestDeleteDocumentRemovesChunks(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	ingested, err := engine.Ingest(ctx, &IngestRequest{
		AgentID:  "a1",
		FileName: "pricing.txt",
		Data:     []byte(pricingDoc),
	})
	require.NoError(t, err)

	require.NoError(t, engine.DeleteDocument(ctx, "a1", ingested.DocumentID))
	n, err := engine.store.Count(ctx, "a1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSearchFindsRelevantChunks(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.Ingest(ctx, &IngestRequest{
		AgentID:  "a1",
		FileName: "pricing.txt",
		Data:     []byte(pricingDoc),
	})
	require.NoError(t, err)

	results, err := engine.Search(ctx, "a1", "what are the pricing plans", 3)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Contains(t, strings.ToLower(results[0].Chunk.Text), "pricing")
}

func TestSearchDegradesWhenEmbeddingUnavailable(t *testing.T) {
	engine, embedder, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.Ingest(ctx, &IngestRequest{
		AgentID:  "a1",
		FileName: "pricing.txt",
		Data:     []byte(pricingDoc),
	})
	require.NoError(t, err)

	embedder.err = errors.New("provider down")
	results, err := engine.Search(ctx, "a1", "refund policy", 3)
	require.NoError(t, err, "keyword-only degradation must not error")
	require.NotEmpty(t, results)
	assert.Contains(t, strings.ToLower(results[0].Chunk.Text), "refund")
}

func TestAnswerGroundedResponse(t *testing.T) {
	engine, _, completer := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.Ingest(ctx, &IngestRequest{
		AgentID:  "a1",
		FileName: "pricing.txt",
		Data:     []byte(pricingDoc),
	})
	require.NoError(t, err)

	answer := engine.Answer(ctx, &AnswerRequest{
		AgentID:        "a1",
		ConversationID: "conv-1",
		Query:          "How much does the basic plan cost?",
	})

	require.NoError(t, answer.Err)
	assert.Equal(t, completer.reply, answer.Content)
	assert.Equal(t, "scripted", answer.Provider)
	assert.Equal(t, "hybrid", answer.SearchMethod)
	assert.NotEmpty(t, answer.SourceIDs)
	assert.Greater(t, answer.ContextLength, 0)

	// The prompt carried numbered context and citation instructions.
	require.NotNil(t, completer.last)
	assert.Contains(t, completer.last.Prompt, "[1]")
	assert.Contains(t, completer.last.System, "cite your sources")
}

func TestAnswerReportsFallbackProviderUsed(t *testing.T) {
	broken := &scriptedCompleter{name: "primary", err: errors.New("quota exceeded")}
	healthy := &scriptedCompleter{name: "backup", reply: "The basic plan is $10 [1]."}
	engine, _, _ := newTestEngine(t,
		WithCompletionProvider(completion.NewChain(broken, healthy)),
	)
	ctx := context.Background()

	_, err := engine.Ingest(ctx, &IngestRequest{
		AgentID:  "a1",
		FileName: "pricing.txt",
		Data:     []byte(pricingDoc),
	})
	require.NoError(t, err)

	answer := engine.Answer(ctx, &AnswerRequest{AgentID: "a1", Query: "How much is basic?"})
	require.NoError(t, answer.Err)
	assert.Equal(t, "backup", answer.Provider, "metadata must name the provider that answered")
}

func TestAnswerApologyOnCompletionFailure(t *testing.T) {
	engine, _, completer := newTestEngine(t)
	completer.err = errors.New("all providers down")
	ctx := context.Background()

	_, err := engine.Ingest(ctx, &IngestRequest{
		AgentID:  "a1",
		FileName: "pricing.txt",
		Data:     []byte(pricingDoc),
	})
	require.NoError(t, err)

	answer := engine.Answer(ctx, &AnswerRequest{AgentID: "a1", Query: "pricing?"})
	assert.Equal(t, apologyMessage, answer.Content)
	assert.Error(t, answer.Err)
}

func TestAnswerUpdatesConversationHistory(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.Ingest(ctx, &IngestRequest{
		AgentID:  "a1",
		FileName: "pricing.txt",
		Data:     []byte(pricingDoc),
	})
	require.NoError(t, err)

	req := &AnswerRequest{AgentID: "a1", ConversationID: "conv-1", Query: "What plans exist?"}
	engine.Answer(ctx, req)

	history := engine.ConversationHistory(ctx, "a1", "conv-1")
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "What plans exist?", history[0].Content)
	assert.Equal(t, "assistant", history[1].Role)

	engine.Answer(ctx, &AnswerRequest{AgentID: "a1", ConversationID: "conv-1", Query: "And refunds?"})
	history = engine.ConversationHistory(ctx, "a1", "conv-1")
	assert.Len(t, history, 4)
}

func TestConversationHistoryCapped(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.Ingest(ctx, &IngestRequest{
		AgentID:  "a1",
		FileName: "pricing.txt",
		Data:     []byte(pricingDoc),
	})
	require.NoError(t, err)

	for i := 0; i < 15; i++ {
		engine.Answer(ctx, &AnswerRequest{AgentID: "a1", ConversationID: "conv-1", Query: "pricing?"})
	}
	history := engine.ConversationHistory(ctx, "a1", "conv-1")
	assert.Len(t, history, maxHistoryMessages)
}
