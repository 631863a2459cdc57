//
// Copyright (C) 2025 NETVEXA. All rights reserved.
//
// rag-go is licensed under the Apache License Version 2.0.
//
//

package rag

import (
	"fmt"
	"strings"

	"github.com/netvexa/rag-go/search"
)

const (
	// charsPerToken is the rough estimate used for context budgeting.
	charsPerToken = 4
	// minUsefulContextTokens is the smallest remainder worth filling
	// with a truncated result.
	minUsefulContextTokens = 50
)

// buildContext formats search results as numbered, source-attributed
// blocks within the token budget. Results are included greedily in
// rank order; the first result that would overflow is truncated to
// the remaining budget instead of dropped, provided enough budget
// remains to be useful.
func buildContext(results []*search.Result, budgetTokens int) string {
	if len(results) == 0 {
		return ""
	}

	var (
		parts  []string
		tokens int
	)
	for i, r := range results {
		sourceInfo := ""
		if title := r.Chunk.SectionTitle; title != "" {
			sourceInfo = fmt.Sprintf(" (Section: %s)", title)
		}
		text := fmt.Sprintf("[%d] %s%s\n", i+1, r.Chunk.Text, sourceInfo)

		estimated := len(text) / charsPerToken
		if tokens+estimated > budgetTokens {
			available := budgetTokens - tokens
			if available > minUsefulContextTokens {
				parts = append(parts, text[:available*charsPerToken]+"...\n")
			}
			break
		}
		parts = append(parts, text)
		tokens += estimated
	}
	return strings.Join(parts, "\n")
}
