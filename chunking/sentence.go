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

// SentenceChunking accumulates whole sentences up to the chunk size.
// A single sentence that exceeds the limit is split at word boundaries
// as the exception path. Adjacent chunks share trailing sentences up
// to the overlap budget.
type SentenceChunking struct {
	cfg config
}

// NewSentenceChunking creates a sentence-based chunking strategy.
func NewSentenceChunking(opts ...Option) *SentenceChunking {
	return &SentenceChunking{cfg: newConfig(opts...)}
}

// Chunk implements the Strategy interface.
func (s *SentenceChunking) Chunk(text string, ctx Context) ([]*Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	sentences := textutil.SplitSentences(text)
	var (
		chunks    []*Chunk
		current   []string
		curTokens int
		start     int
	)

	flush := func() string {
		if len(current) == 0 {
			return ""
		}
		chunkText := strings.Join(current, " ")
		chunks = append(chunks, newChunk(chunkText, len(chunks), start, ctx, s.cfg.counter))
		return chunkText
	}

	for _, sentence := range sentences {
		sentenceTokens := s.cfg.counter.Count(sentence)

		// Exception path: a single oversized sentence is split at word
		// boundaries.
		if sentenceTokens > s.cfg.chunkSize {
			if flushed := flush(); flushed != "" {
				start += len(flushed) + 1
			}
			current = nil
			curTokens = 0
			for _, wordChunk := range s.splitByWords(sentence) {
				chunks = append(chunks, newChunk(wordChunk, len(chunks), start, ctx, s.cfg.counter))
				start += len(wordChunk) + 1
			}
			continue
		}

		if curTokens+sentenceTokens > s.cfg.chunkSize {
			flushed := flush()

			// Seed the next chunk with trailing sentences that fit the
			// overlap budget.
			var overlap []string
			overlapTokens := 0
			if s.cfg.overlap > 0 {
				for j := len(current) - 1; j >= 0; j-- {
					t := s.cfg.counter.Count(current[j])
					if overlapTokens+t > s.cfg.overlap {
						break
					}
					overlap = append([]string{current[j]}, overlap...)
					overlapTokens += t
				}
			}
			overlapLen := len(strings.Join(overlap, " "))
			next := start + len(flushed) + 1 - overlapLen
			if overlapLen > 0 {
				next--
			}
			if next > start {
				start = next
			}

			current = append(overlap, sentence)
			curTokens = overlapTokens + sentenceTokens
			continue
		}

		current = append(current, sentence)
		curTokens += sentenceTokens
	}

	// The final remainder is emitted even when it is below the minimum
	// chunk size.
	flush()
	return chunks, nil
}

// splitByWords breaks an oversized sentence into word windows, each
// within the chunk size.
func (s *SentenceChunking) splitByWords(sentence string) []string {
	var (
		out       []string
		current   []string
		curTokens int
	)
	for _, word := range strings.Fields(sentence) {
		wordTokens := s.cfg.counter.Count(word + " ")
		if curTokens+wordTokens > s.cfg.chunkSize && len(current) > 0 {
			out = append(out, strings.Join(current, " "))
			current = []string{word}
			curTokens = wordTokens
			continue
		}
		current = append(current, word)
		curTokens += wordTokens
	}
	if len(current) > 0 {
		out = append(out, strings.Join(current, " "))
	}
	return out
}
