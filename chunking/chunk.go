//
// Copyright (C) 2025 NETVEXA. All rights reserved.
//
// rag-go is licensed under the Apache License Version 2.0.
//
//

package chunking

import (
	"regexp"

	"github.com/google/uuid"

	"github.com/netvexa/rag-go/internal/textutil"
)

// Chunk is one retrieval-sized unit of a document. Chunks are produced
// in order and never mutated after creation; Index ordering must be
// preserved for overlap reconstruction.
type Chunk struct {
	// ID is a random UUID assigned at creation.
	ID string
	// Index is the position of the chunk within its document.
	Index int
	// Text is the chunk content.
	Text string
	// StartOffset and EndOffset locate the chunk in source coordinates.
	StartOffset int
	EndOffset   int
	// WordCount is the number of whitespace-separated words.
	WordCount int
	// TokenCount is computed with the strategy's token counter, so
	// re-computation with the same counter is idempotent.
	TokenCount int
	// HasCode marks chunks that appear to contain source code.
	HasCode bool
	// Language is the source language for code chunks, empty otherwise.
	Language string
	// SectionTitle is the nearest enclosing section heading, if any.
	SectionTitle string
	// PageNumber is the 1-based source page, zero when unknown.
	PageNumber int
}

// codeHint matches content that looks like source code.
var codeHint = regexp.MustCompile("```|def |class |function |import |from ")

// Context carries structural hints into chunk creation: the enclosing
// section, source page and language, as known by the caller.
type Context struct {
	SectionTitle string
	PageNumber   int
	Language     string
	HasCode      bool
}

// newChunk builds a chunk and fills in the derived fields.
func newChunk(text string, index, start int, ctx Context, counter TokenCounter) *Chunk {
	return &Chunk{
		ID:           uuid.NewString(),
		Index:        index,
		Text:         text,
		StartOffset:  start,
		EndOffset:    start + len(text),
		WordCount:    textutil.WordCount(text),
		TokenCount:   counter.Count(text),
		HasCode:      ctx.HasCode || codeHint.MatchString(text),
		Language:     ctx.Language,
		SectionTitle: ctx.SectionTitle,
		PageNumber:   ctx.PageNumber,
	}
}

// reindex renumbers chunks sequentially starting at base.
func reindex(chunks []*Chunk, base int) {
	for i, c := range chunks {
		c.Index = base + i
	}
}
