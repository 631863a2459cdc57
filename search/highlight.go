//
// Copyright (C) 2025 NETVEXA. All rights reserved.
//
// rag-go is licensed under the Apache License Version 2.0.
//
//

package search

import (
	"strings"
)

const (
	// highlightContextWords is how many words of context surround a
	// matched term on each side.
	highlightContextWords = 10
	// maxHighlightsPerToken caps snippets collected for one term.
	maxHighlightsPerToken = 3
	// maxHighlights caps the deduplicated snippet list per result.
	maxHighlights = 5
)

// extractHighlights returns short snippets of content around query
// term matches, with ellipses marking truncation.
func extractHighlights(content, query string) []string {
	queryTokens := Tokenize(query)
	if len(queryTokens) == 0 || content == "" {
		return nil
	}

	contentLower := strings.ToLower(content)
	words := strings.Fields(content)

	// Byte span of each word in the original content, so a byte match
	// position maps back to a word index.
	type span struct{ start, end int }
	spans := make([]span, len(words))
	pos := 0
	for i, w := range words {
		start := strings.Index(content[pos:], w) + pos
		spans[i] = span{start: start, end: start + len(w)}
		pos = spans[i].end
	}

	var highlights []string
	for _, token := range queryTokens {
		found := 0
		start := 0
		for found < maxHighlightsPerToken {
			idx := strings.Index(contentLower[start:], token)
			if idx == -1 {
				break
			}
			matchPos := start + idx

			wordIdx := -1
			for i, sp := range spans {
				if sp.start <= matchPos && matchPos <= sp.end {
					wordIdx = i
					break
				}
			}
			if wordIdx >= 0 {
				lo := max(0, wordIdx-highlightContextWords)
				hi := min(len(words), wordIdx+highlightContextWords+1)
				snippet := strings.Join(words[lo:hi], " ")
				if lo > 0 {
					snippet = "..." + snippet
				}
				if hi < len(words) {
					snippet = snippet + "..."
				}
				highlights = append(highlights, snippet)
				found++
			}
			start = matchPos + 1
		}
	}

	// Deduplicate preserving order.
	seen := make(map[string]struct{}, len(highlights))
	var unique []string
	for _, h := range highlights {
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		unique = append(unique, h)
		if len(unique) == maxHighlights {
			break
		}
	}
	return unique
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
