//
// Copyright (C) 2025 NETVEXA. All rights reserved.
//
// rag-go is licensed under the Apache License Version 2.0.
//
//

// Package openai provides an OpenAI embedding provider.
package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/netvexa/rag-go/embedding"
	"github.com/netvexa/rag-go/log"
	"github.com/netvexa/rag-go/telemetry"
)

// Verify that Embedder implements the embedding.Embedder interface.
var _ embedding.Embedder = (*Embedder)(nil)

const (
	// DefaultModel is the default OpenAI embedding model.
	DefaultModel = "text-embedding-3-small"
	// DefaultDimensions is the default embedding dimension for text-embedding-3-small.
	DefaultDimensions = 1536
	// DefaultEncodingFormat is the default encoding format for embeddings.
	DefaultEncodingFormat = "float"
	// DefaultMaxRetries is the default maximum number of retries.
	DefaultMaxRetries = 2

	// ModelTextEmbedding3Small represents the text-embedding-3-small model.
	ModelTextEmbedding3Small = "text-embedding-3-small"
	// ModelTextEmbedding3Large represents the text-embedding-3-large model.
	ModelTextEmbedding3Large = "text-embedding-3-large"
	// ModelTextEmbeddingAda002 represents the text-embedding-ada-002 model.
	ModelTextEmbeddingAda002 = "text-embedding-ada-002"

	// Model prefix for text-embedding-3 series.
	textEmbedding3Prefix = "text-embedding-3"
)

// defaultRetryBackoff is the default backoff durations for retry attempts.
var defaultRetryBackoff = []time.Duration{
	100 * time.Millisecond,
	200 * time.Millisecond,
	400 * time.Millisecond,
	800 * time.Millisecond,
}

// Embedder calls the OpenAI embeddings API with retry and tracing.
type Embedder struct {
	client         openai.Client
	model          string
	dimensions     int
	encodingFormat string
	user           string
	apiKey         string
	organization   string
	baseURL        string
	requestOptions []option.RequestOption

	maxRetries   int
	retryBackoff []time.Duration
}

// Option represents a functional option for configuring the Embedder.
type Option func(*Embedder)

// WithModel sets the embedding model to use.
func WithModel(model string) Option {
	return func(e *Embedder) {
		e.model = model
	}
}

// WithDimensions sets the number of dimensions for the embedding.
// Only works with text-embedding-3 and later models.
func WithDimensions(dimensions int) Option {
	return func(e *Embedder) {
		e.dimensions = dimensions
	}
}

// WithUser sets an optional unique identifier representing your end-user.
func WithUser(user string) Option {
	return func(e *Embedder) {
		e.user = user
	}
}

// WithAPIKey sets the OpenAI API key.
// If not provided, will use OPENAI_API_KEY environment variable.
func WithAPIKey(apiKey string) Option {
	return func(e *Embedder) {
		e.apiKey = apiKey
	}
}

// WithOrganization sets the OpenAI organization ID.
func WithOrganization(organization string) Option {
	return func(e *Embedder) {
		e.organization = organization
	}
}

// WithBaseURL sets the base URL for OpenAI API.
// Optional, for OpenAI-compatible APIs.
func WithBaseURL(baseURL string) Option {
	return func(e *Embedder) {
		e.baseURL = baseURL
	}
}

// WithRequestOptions sets additional options for the OpenAI client requests.
func WithRequestOptions(opts ...option.RequestOption) Option {
	return func(e *Embedder) {
		e.requestOptions = append(e.requestOptions, opts...)
	}
}

// WithMaxRetries sets the maximum number of retries for errors.
// Negative values are treated as 0.
func WithMaxRetries(maxRetries int) Option {
	return func(e *Embedder) {
		if maxRetries < 0 {
			maxRetries = 0
		}
		e.maxRetries = maxRetries
	}
}

// WithRetryBackoff sets the backoff durations for each retry attempt.
// If the number of retries exceeds the length of backoff slice,
// the last backoff duration will be used for remaining retries.
// Default is [100ms, 200ms, 400ms, 800ms].
func WithRetryBackoff(backoff []time.Duration) Option {
	return func(e *Embedder) {
		e.retryBackoff = backoff
	}
}

// New creates a new OpenAI embedder with the given options.
func New(opts ...Option) *Embedder {
	e := &Embedder{
		model:          DefaultModel,
		dimensions:     DefaultDimensions,
		encodingFormat: DefaultEncodingFormat,
		maxRetries:     DefaultMaxRetries,
		retryBackoff:   defaultRetryBackoff,
	}
	for _, opt := range opts {
		opt(e)
	}

	var clientOpts []option.RequestOption
	if e.apiKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(e.apiKey))
	}
	if e.organization != "" {
		clientOpts = append(clientOpts, option.WithOrganization(e.organization))
	}
	if e.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(e.baseURL))
	}

	// Retries are handled here so the backoff schedule is ours.
	clientOpts = append(clientOpts, option.WithMaxRetries(0))

	e.client = openai.NewClient(clientOpts...)
	return e
}

// GetEmbedding implements the embedding.Embedder interface.
func (e *Embedder) GetEmbedding(ctx context.Context, text string) ([]float64, error) {
	input := openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)}
	response, err := e.responseWithRetry(ctx, input, text == "")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", embedding.ErrProviderUnavailable, err)
	}
	if len(response.Data) == 0 || len(response.Data[0].Embedding) == 0 {
		log.WarnContext(ctx, "received empty embedding response from OpenAI API")
		return []float64{}, nil
	}
	return response.Data[0].Embedding, nil
}

// GetEmbeddings implements the embedding.Embedder interface. It sends
// the batch in a single API call.
func (e *Embedder) GetEmbeddings(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	empty := false
	for _, t := range texts {
		if t == "" {
			empty = true
			break
		}
	}
	input := openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts}
	response, err := e.responseWithRetry(ctx, input, empty)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", embedding.ErrProviderUnavailable, err)
	}
	if len(response.Data) != len(texts) {
		return nil, fmt.Errorf("embedding response has %d vectors for %d inputs", len(response.Data), len(texts))
	}

	// The API may return data out of order; Index restores it.
	vectors := make([][]float64, len(texts))
	for _, d := range response.Data {
		if d.Index < 0 || int(d.Index) >= len(vectors) {
			return nil, fmt.Errorf("embedding response index %d out of range", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}

// GetDimensions implements the embedding.Embedder interface.
func (e *Embedder) GetDimensions() int {
	return e.dimensions
}

// responseWithRetry wraps response with retry logic for errors.
func (e *Embedder) responseWithRetry(
	ctx context.Context,
	input openai.EmbeddingNewParamsInputUnion,
	emptyInput bool,
) (*openai.CreateEmbeddingResponse, error) {
	var lastErr error
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		rsp, err := e.response(ctx, input, emptyInput)
		if err == nil {
			return rsp, nil
		}
		lastErr = err

		if attempt >= e.maxRetries {
			break
		}

		backoff := e.getBackoffDuration(attempt)
		if backoff > 0 {
			log.InfoContext(ctx, fmt.Sprintf("embedding request failed, retrying in %v (attempt %d/%d): %v",
				backoff, attempt+1, e.maxRetries, err))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		} else {
			log.InfoContext(ctx, fmt.Sprintf("embedding request failed, retrying immediately (attempt %d/%d): %v",
				attempt+1, e.maxRetries, err))
		}
	}
	return nil, lastErr
}

// getBackoffDuration returns the backoff duration for the given attempt.
// If attempt index exceeds the backoff slice length, returns the last
// backoff duration.
func (e *Embedder) getBackoffDuration(attempt int) time.Duration {
	if len(e.retryBackoff) == 0 {
		return 0
	}
	if attempt < len(e.retryBackoff) {
		return e.retryBackoff[attempt]
	}
	return e.retryBackoff[len(e.retryBackoff)-1]
}

func (e *Embedder) response(
	ctx context.Context,
	input openai.EmbeddingNewParamsInputUnion,
	emptyInput bool,
) (rsp *openai.CreateEmbeddingResponse, err error) {
	if emptyInput {
		return nil, fmt.Errorf("text cannot be empty")
	}
	ctx, span := telemetry.Tracer.Start(ctx, fmt.Sprintf("%s %s", telemetry.OperationEmbeddings, e.model))
	attrs := &telemetry.EmbeddingAttributes{
		RequestModel: e.model,
		Dimensions:   e.dimensions,
	}
	defer func() {
		attrs.Error = err
		if rsp != nil {
			attrs.InputTokens = &rsp.Usage.PromptTokens
		}
		telemetry.TraceEmbedding(span, attrs)
		span.End()
	}()

	request := openai.EmbeddingNewParams{
		Input:          input,
		Model:          e.model,
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormat(e.encodingFormat),
	}
	if e.user != "" {
		request.User = openai.String(e.user)
	}
	if isTextEmbedding3Model(e.model) {
		request.Dimensions = openai.Int(int64(e.dimensions))
	}

	requestOpts := make([]option.RequestOption, len(e.requestOptions))
	copy(requestOpts, e.requestOptions)

	return e.client.Embeddings.New(ctx, request, requestOpts...)
}

// isTextEmbedding3Model checks if the model is a text-embedding-3 series model.
func isTextEmbedding3Model(model string) bool {
	return strings.HasPrefix(model, textEmbedding3Prefix)
}
