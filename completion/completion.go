//
// Copyright (C) 2025 NETVEXA. All rights reserved.
//
// rag-go is licensed under the Apache License Version 2.0.
//
//

// Package completion defines the text generation provider interface
// and the fallback chain used to survive provider outages.
package completion

import (
	"context"
	"errors"
)

// Default generation parameters, applied when a request leaves them
// unset.
const (
	DefaultMaxTokens   = 1024
	DefaultTemperature = 0.7
)

// ErrAllProvidersFailed is returned by a Chain when every configured
// provider rejected the request.
var ErrAllProvidersFailed = errors.New("completion: all providers failed")

// Request describes one generation call.
type Request struct {
	// System is the system prompt. Empty means no system message.
	System string
	// Prompt is the user-visible prompt text.
	Prompt string
	// MaxTokens caps the response length. Zero means DefaultMaxTokens.
	MaxTokens int
	// Temperature controls sampling. Nil means DefaultTemperature.
	Temperature *float64
}

// maxTokens returns the effective token cap.
func (r *Request) maxTokens() int {
	if r.MaxTokens > 0 {
		return r.MaxTokens
	}
	return DefaultMaxTokens
}

// temperature returns the effective sampling temperature.
func (r *Request) temperature() float64 {
	if r.Temperature != nil {
		return *r.Temperature
	}
	return DefaultTemperature
}

// Chunk is one unit of a streamed response. After a chunk with Err
// set, or one with Done set, no further chunks arrive.
type Chunk struct {
	Content string
	Done    bool
	Err     error
}

// Provider generates text from a prompt.
type Provider interface {
	// Name identifies the provider in logs and errors.
	Name() string

	// Complete returns the full response text for the request.
	Complete(ctx context.Context, req *Request) (string, error)

	// Stream returns a channel of response chunks. An error from the
	// initial call is returned directly; errors after streaming has
	// begun arrive as a Chunk with Err set. The channel is closed when
	// the response ends.
	Stream(ctx context.Context, req *Request) (<-chan Chunk, error)
}
