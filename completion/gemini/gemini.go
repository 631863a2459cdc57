//
// Copyright (C) 2025 NETVEXA. All rights reserved.
//
// rag-go is licensed under the Apache License Version 2.0.
//
//

// Package gemini provides a Google Gemini completion provider.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/netvexa/rag-go/completion"
	"github.com/netvexa/rag-go/telemetry"
)

var _ completion.Provider = (*Provider)(nil)

// DefaultModel is the default Gemini chat model.
const DefaultModel = "gemini-2.0-flash"

// Provider calls the Gemini generate-content API.
type Provider struct {
	client *genai.Client
	model  string
}

// Option represents a functional option for configuring the Provider.
type Option func(*options)

type options struct {
	model        string
	clientConfig *genai.ClientConfig
}

// WithModel sets the Gemini model to use.
func WithModel(model string) Option {
	return func(o *options) {
		o.model = model
	}
}

// WithAPIKey sets the Gemini API key.
// If not provided, will use GEMINI_API_KEY environment variable.
func WithAPIKey(apiKey string) Option {
	return func(o *options) {
		if o.clientConfig == nil {
			o.clientConfig = &genai.ClientConfig{}
		}
		o.clientConfig.APIKey = apiKey
	}
}

// WithClientConfig sets the ClientConfig used for client initialization.
// Takes precedence over WithAPIKey.
func WithClientConfig(c *genai.ClientConfig) Option {
	return func(o *options) {
		o.clientConfig = c
	}
}

// New creates a Gemini completion provider.
func New(ctx context.Context, opts ...Option) (*Provider, error) {
	o := options{model: DefaultModel}
	for _, opt := range opts {
		opt(&o)
	}
	client, err := genai.NewClient(ctx, o.clientConfig)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Provider{client: client, model: o.model}, nil
}

// Name implements the completion.Provider interface.
func (p *Provider) Name() string {
	return "gemini/" + p.model
}

// Complete implements the completion.Provider interface.
func (p *Provider) Complete(ctx context.Context, req *completion.Request) (text string, err error) {
	ctx, span := telemetry.Tracer.Start(ctx, fmt.Sprintf("%s %s", telemetry.OperationChat, p.model))
	defer func() {
		telemetry.TraceError(span, err)
		span.End()
	}()

	rsp, err := p.client.Models.GenerateContent(
		ctx, p.model, genai.Text(req.Prompt), p.buildConfig(req))
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	text = extractText(rsp)
	if text == "" {
		return "", fmt.Errorf("gemini returned no text candidates")
	}
	return text, nil
}

// Stream implements the completion.Provider interface. The genai SDK
// reports errors through the iterator, so a connection failure arrives
// as the first chunk's Err rather than from the initial call.
func (p *Provider) Stream(ctx context.Context, req *completion.Request) (<-chan completion.Chunk, error) {
	stream := p.client.Models.GenerateContentStream(
		ctx, p.model, genai.Text(req.Prompt), p.buildConfig(req))

	out := make(chan completion.Chunk)
	go func() {
		defer close(out)
		for chunk, err := range stream {
			if err != nil {
				select {
				case out <- completion.Chunk{Err: fmt.Errorf("gemini stream: %w", err)}:
				case <-ctx.Done():
				}
				return
			}
			delta := extractText(chunk)
			if delta == "" {
				continue
			}
			select {
			case out <- completion.Chunk{Content: delta}:
			case <-ctx.Done():
				return
			}
		}
		select {
		case out <- completion.Chunk{Done: true}:
		case <-ctx.Done():
		}
	}()
	return out, nil
}

func (p *Provider) buildConfig(req *completion.Request) *genai.GenerateContentConfig {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = completion.DefaultMaxTokens
	}
	temperature := completion.DefaultTemperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
		Temperature:     genai.Ptr(float32(temperature)),
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	return cfg
}

// extractText concatenates the text parts of the first candidate.
func extractText(rsp *genai.GenerateContentResponse) string {
	if rsp == nil || len(rsp.Candidates) == 0 {
		return ""
	}
	candidate := rsp.Candidates[0]
	if candidate.Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part.Text != "" && !part.Thought {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}
