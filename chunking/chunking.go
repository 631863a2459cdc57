//
// Copyright (C) 2025 NETVEXA. All rights reserved.
//
// rag-go is licensed under the Apache License Version 2.0.
//
//

// Package chunking splits normalized document text into token-bounded,
// overlap-aware units.
//
// Every strategy honors three constraints: no chunk exceeds the
// configured chunk size in tokens, no chunk below the minimum size is
// emitted unless it is the final remainder, and adjacent chunks share
// overlap content where the strategy supports it. Empty input yields
// zero chunks, never an error.
package chunking

import "github.com/netvexa/rag-go/document"

// Default chunking parameters, in tokens.
const (
	defaultChunkSize    = 512
	defaultOverlap      = 128
	defaultMinChunkSize = 100
)

// Strategy splits document text into ordered chunks.
type Strategy interface {
	// Chunk splits the text. The context carries structural hints
	// (section title, page, language) applied to every produced chunk.
	Chunk(text string, ctx Context) ([]*Chunk, error)
}

type config struct {
	chunkSize    int
	overlap      int
	minChunkSize int
	counter      TokenCounter
}

func newConfig(opts ...Option) config {
	cfg := config{
		chunkSize:    defaultChunkSize,
		overlap:      defaultOverlap,
		minChunkSize: defaultMinChunkSize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.counter == nil {
		cfg.counter = DefaultTokenCounter()
	}
	return cfg
}

// Option configures a chunking strategy.
type Option func(*config)

// WithChunkSize sets the maximum chunk size in tokens.
func WithChunkSize(size int) Option {
	return func(c *config) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between adjacent chunks in tokens.
func WithOverlap(overlap int) Option {
	return func(c *config) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// WithMinChunkSize sets the minimum chunk size in tokens.
func WithMinChunkSize(size int) Option {
	return func(c *config) {
		if size >= 0 {
			c.minChunkSize = size
		}
	}
}

// WithTokenCounter sets the token counter shared by the strategy.
func WithTokenCounter(counter TokenCounter) Option {
	return func(c *config) {
		if counter != nil {
			c.counter = counter
		}
	}
}

// ForDocument picks the strategy matching a parsed document: markdown
// and code get their dedicated strategies, everything else is chunked
// semantically by paragraph.
func ForDocument(doc *document.Document, opts ...Option) Strategy {
	return ForContentType(doc.Type(), opts...)
}

// ForContentType picks the strategy for a content type name ("markdown",
// "code", "sentence", anything else falls back to semantic).
func ForContentType(contentType string, opts ...Option) Strategy {
	switch contentType {
	case "markdown":
		return NewMarkdownChunking(opts...)
	case "code":
		return NewCodeChunking(opts...)
	case "sentence":
		return NewSentenceChunking(opts...)
	default:
		return NewSemanticChunking(opts...)
	}
}
