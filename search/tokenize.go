//
// Copyright (C) 2025 NETVEXA. All rights reserved.
//
// rag-go is licensed under the Apache License Version 2.0.
//
//

package search

import (
	"regexp"
	"strings"
)

var nonWord = regexp.MustCompile(`[^\w\s]`)

// stopWords are dropped from queries and content before scoring.
var stopWords = map[string]struct{}{
	"the": {}, "is": {}, "at": {}, "which": {}, "on": {}, "a": {}, "an": {},
	"and": {}, "or": {}, "but": {}, "in": {}, "with": {}, "to": {}, "for": {},
	"of": {}, "as": {}, "by": {}, "that": {}, "this": {}, "it": {}, "from": {},
	"be": {}, "are": {}, "been": {}, "was": {}, "were": {},
}

// Tokenize lowercases text, strips punctuation, and drops stop words
// and tokens of fewer than three characters.
func Tokenize(text string) []string {
	cleaned := nonWord.ReplaceAllString(text, " ")
	var tokens []string
	for _, token := range strings.Fields(strings.ToLower(cleaned)) {
		if len(token) <= 2 {
			continue
		}
		if _, stop := stopWords[token]; stop {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}
