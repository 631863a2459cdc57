//
// Copyright (C) 2025 NETVEXA. All rights reserved.
//
// rag-go is licensed under the Apache License Version 2.0.
//
//

package chunking

import (
	"strings"

	"github.com/netvexa/rag-go/internal/textutil"
)

// SemanticChunking accumulates whole paragraphs up to the chunk size.
// A paragraph exceeding the limit recurses into the sentence strategy.
type SemanticChunking struct {
	cfg config
}

// NewSemanticChunking creates a paragraph-based chunking strategy.
func NewSemanticChunking(opts ...Option) *SemanticChunking {
	return &SemanticChunking{cfg: newConfig(opts...)}
}

// Chunk implements the Strategy interface.
func (s *SemanticChunking) Chunk(text string, ctx Context) ([]*Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	paragraphs := textutil.SplitParagraphs(text)
	var (
		chunks    []*Chunk
		current   []string
		curTokens int
		start     int
	)

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunkText := strings.Join(current, "\n\n")
		chunks = append(chunks, newChunk(chunkText, len(chunks), start, ctx, s.cfg.counter))
		start += len(chunkText) + 2
		current = nil
		curTokens = 0
	}

	sentenceFallback := &SentenceChunking{cfg: s.cfg}

	for _, paragraph := range paragraphs {
		paraTokens := s.cfg.counter.Count(paragraph)

		// An oversized paragraph is handed to the sentence strategy.
		if paraTokens > s.cfg.chunkSize {
			flush()
			sub, err := sentenceFallback.Chunk(paragraph, ctx)
			if err != nil {
				return nil, err
			}
			for _, c := range sub {
				c.StartOffset += start
				c.EndOffset += start
			}
			reindex(sub, len(chunks))
			chunks = append(chunks, sub...)
			start += len(paragraph) + 2
			continue
		}

		if curTokens+paraTokens > s.cfg.chunkSize {
			flush()
		}
		current = append(current, paragraph)
		curTokens += paraTokens
	}

	flush()
	return chunks, nil
}
