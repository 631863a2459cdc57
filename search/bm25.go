//
// Copyright (C) 2025 NETVEXA. All rights reserved.
//
// rag-go is licensed under the Apache License Version 2.0.
//
//

package search

import (
	"math"
	"strings"
)

// BM25 free parameters.
const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

// bm25Scorer scores candidates against a query using statistics drawn
// from the candidate pool itself, not the whole corpus. The pool is
// small and query-specific, which keeps scoring cheap and adaptive.
type bm25Scorer struct {
	queryTokens  []string
	docTokens    [][]string
	docTexts     []string
	avgDocLength float64
}

// newBM25Scorer tokenizes the candidate texts once and precomputes
// the average document length.
func newBM25Scorer(queryTokens []string, texts []string) *bm25Scorer {
	s := &bm25Scorer{
		queryTokens: queryTokens,
		docTokens:   make([][]string, len(texts)),
		docTexts:    make([]string, len(texts)),
	}
	total := 0
	for i, text := range texts {
		s.docTokens[i] = Tokenize(text)
		s.docTexts[i] = strings.ToLower(text)
		total += len(s.docTokens[i])
	}
	if len(texts) > 0 {
		s.avgDocLength = float64(total) / float64(len(texts))
	}
	return s
}

// score returns the BM25 score of candidate i. A document sharing no
// terms with the query scores zero.
func (s *bm25Scorer) score(i int) float64 {
	tokens := s.docTokens[i]
	if len(tokens) == 0 || s.avgDocLength == 0 {
		return 0
	}
	docLength := float64(len(tokens))
	n := float64(len(s.docTokens))

	score := 0.0
	for _, term := range s.queryTokens {
		tf := 0.0
		for _, t := range tokens {
			if t == term {
				tf++
			}
		}
		if tf == 0 {
			continue
		}

		// Document frequency within the candidate pool.
		df := 0.0
		for _, text := range s.docTexts {
			if strings.Contains(text, term) {
				df++
			}
		}

		idf := math.Log((n - df + 0.5) / (df + 0.5))
		numerator := tf * (bm25K1 + 1)
		denominator := tf + bm25K1*(1-bm25B+bm25B*(docLength/s.avgDocLength))
		score += idf * (numerator / denominator)
	}
	return score
}
