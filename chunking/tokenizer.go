//
// Copyright (C) 2025 NETVEXA. All rights reserved.
//
// rag-go is licensed under the Apache License Version 2.0.
//
//

package chunking

import (
	"sync"

	"github.com/tiktoken-go/tokenizer"

	"github.com/netvexa/rag-go/internal/textutil"
	"github.com/netvexa/rag-go/log"
)

// TokenCounter counts tokens in text. All chunking strategies in one
// pipeline must share a single counter so chunk boundaries from
// different strategies remain comparable.
type TokenCounter interface {
	Count(text string) int
}

// tiktokenCounter counts with the cl100k_base encoding, matching the
// tokenization of the embedding and completion models in use.
type tiktokenCounter struct {
	codec tokenizer.Codec
}

// NewTikTokenCounter returns a cl100k_base token counter.
func NewTikTokenCounter() (TokenCounter, error) {
	codec, err := tokenizer.Get(tokenizer.Cl100kBase)
	if err != nil {
		return nil, err
	}
	return &tiktokenCounter{codec: codec}, nil
}

func (c *tiktokenCounter) Count(text string) int {
	toks, _, err := c.codec.Encode(text)
	if err != nil {
		// Encode only fails on invalid input; fall back to a word count
		// so chunking still terminates.
		return textutil.WordCount(text)
	}
	return len(toks)
}

// WordCounter counts whitespace-separated words. It is a deterministic
// stand-in where exact model tokenization does not matter.
type WordCounter struct{}

// Count implements TokenCounter.
func (WordCounter) Count(text string) int {
	return textutil.WordCount(text)
}

var (
	defaultCounterOnce sync.Once
	defaultCounter     TokenCounter
)

// DefaultTokenCounter returns the shared cl100k_base counter, falling
// back to word counting if the codec cannot be initialized.
func DefaultTokenCounter() TokenCounter {
	defaultCounterOnce.Do(func() {
		counter, err := NewTikTokenCounter()
		if err != nil {
			log.Warnf("tiktoken init failed, falling back to word counting: %v", err)
			counter = WordCounter{}
		}
		defaultCounter = counter
	})
	return defaultCounter
}
