//
// Copyright (C) 2025 NETVEXA. All rights reserved.
//
// rag-go is licensed under the Apache License Version 2.0.
//
//

// Package textutil provides shared sentence, paragraph and word
// splitting helpers for chunking and search.
package textutil

import (
	"regexp"
	"strings"
	"unicode"
)

var paragraphSep = regexp.MustCompile(`\n\s*\n`)

// SplitParagraphs splits text on blank lines. Empty paragraphs are
// dropped and each paragraph is trimmed.
func SplitParagraphs(text string) []string {
	parts := paragraphSep.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SplitSentences splits text into sentences at terminal punctuation
// (. ! ?) followed by whitespace. Abbreviation handling is deliberately
// naive; chunk boundaries tolerate the occasional over-split.
func SplitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes); i++ {
		if !isSentenceTerminal(runes[i]) {
			continue
		}
		// Consume a run of terminal punctuation (e.g. "?!" or "...").
		end := i
		for end+1 < len(runes) && isSentenceTerminal(runes[end+1]) {
			end++
		}
		if end+1 < len(runes) && !unicode.IsSpace(runes[end+1]) {
			i = end
			continue
		}
		s := strings.TrimSpace(string(runes[start : end+1]))
		if s != "" {
			sentences = append(sentences, s)
		}
		i = end
		start = end + 1
	}
	if start < len(runes) {
		s := strings.TrimSpace(string(runes[start:]))
		if s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

func isSentenceTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// Words splits text on whitespace.
func Words(text string) []string {
	return strings.Fields(text)
}

// WordCount returns the number of whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// NormalizeWhitespace collapses all whitespace runs to single spaces
// and trims the ends. Useful when comparing text that only differs in
// joining characters.
func NormalizeWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
