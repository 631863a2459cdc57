//
// Copyright (C) 2025 NETVEXA. All rights reserved.
//
// rag-go is licensed under the Apache License Version 2.0.
//
//

// Package openai provides an OpenAI chat completion provider.
package openai

import (
	"context"
	"fmt"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/netvexa/rag-go/completion"
	"github.com/netvexa/rag-go/telemetry"
)

var _ completion.Provider = (*Provider)(nil)

// DefaultModel is the default OpenAI chat model.
const DefaultModel = "gpt-4o-mini"

// Provider calls the OpenAI chat completions API.
type Provider struct {
	client         openai.Client
	model          string
	apiKey         string
	baseURL        string
	requestOptions []option.RequestOption
}

// Option represents a functional option for configuring the Provider.
type Option func(*Provider)

// WithModel sets the chat model to use.
func WithModel(model string) Option {
	return func(p *Provider) {
		p.model = model
	}
}

// WithAPIKey sets the OpenAI API key.
// If not provided, will use OPENAI_API_KEY environment variable.
func WithAPIKey(apiKey string) Option {
	return func(p *Provider) {
		p.apiKey = apiKey
	}
}

// WithBaseURL sets the base URL for OpenAI API.
// Optional, for OpenAI-compatible APIs.
func WithBaseURL(baseURL string) Option {
	return func(p *Provider) {
		p.baseURL = baseURL
	}
}

// WithRequestOptions sets additional options for client requests.
func WithRequestOptions(opts ...option.RequestOption) Option {
	return func(p *Provider) {
		p.requestOptions = append(p.requestOptions, opts...)
	}
}

// New creates an OpenAI completion provider.
func New(opts ...Option) *Provider {
	p := &Provider{model: DefaultModel}
	for _, opt := range opts {
		opt(p)
	}

	var clientOpts []option.RequestOption
	if p.apiKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(p.apiKey))
	}
	if p.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(p.baseURL))
	}
	p.client = openai.NewClient(clientOpts...)
	return p
}

// Name implements the completion.Provider interface.
func (p *Provider) Name() string {
	return "openai/" + p.model
}

// Complete implements the completion.Provider interface.
func (p *Provider) Complete(ctx context.Context, req *completion.Request) (text string, err error) {
	ctx, span := telemetry.Tracer.Start(ctx, fmt.Sprintf("%s %s", telemetry.OperationChat, p.model))
	defer func() {
		telemetry.TraceError(span, err)
		span.End()
	}()

	chatCompletion, err := p.client.Chat.Completions.New(ctx, p.buildRequest(req), p.requestOptions...)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(chatCompletion.Choices) == 0 {
		return "", fmt.Errorf("openai chat completion returned no choices")
	}
	return chatCompletion.Choices[0].Message.Content, nil
}

// Stream implements the completion.Provider interface.
func (p *Provider) Stream(ctx context.Context, req *completion.Request) (<-chan completion.Chunk, error) {
	stream := p.client.Chat.Completions.NewStreaming(ctx, p.buildRequest(req), p.requestOptions...)
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("openai chat stream: %w", err)
	}

	out := make(chan completion.Chunk)
	go func() {
		defer close(out)
		defer stream.Close()

		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 {
				continue
			}
			delta := chunk.Choices[0].Delta.Content
			if delta == "" {
				continue
			}
			select {
			case out <- completion.Chunk{Content: delta}:
			case <-ctx.Done():
				return
			}
		}
		if err := stream.Err(); err != nil {
			select {
			case out <- completion.Chunk{Err: fmt.Errorf("openai chat stream: %w", err)}:
			case <-ctx.Done():
			}
			return
		}
		select {
		case out <- completion.Chunk{Done: true}:
		case <-ctx.Done():
		}
	}()
	return out, nil
}

func (p *Provider) buildRequest(req *completion.Request) openai.ChatCompletionNewParams {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.model),
		Messages: messages,
	}
	params.MaxTokens = openai.Int(int64(requestMaxTokens(req)))
	params.Temperature = openai.Float(requestTemperature(req))
	return params
}

func requestMaxTokens(req *completion.Request) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	return completion.DefaultMaxTokens
}

func requestTemperature(req *completion.Request) float64 {
	if req.Temperature != nil {
		return *req.Temperature
	}
	return completion.DefaultTemperature
}
