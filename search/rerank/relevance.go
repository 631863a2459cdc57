//
// Copyright (C) 2025 NETVEXA. All rights reserved.
//
// rag-go is licensed under the Apache License Version 2.0.
//
//

package rerank

import (
	"context"
	"sort"

	"github.com/netvexa/rag-go/search"
)

var _ Reranker = (*RelevanceReranker)(nil)

// relevanceBlend is the share of the incoming score kept when
// blending in the relevance signal.
const relevanceBlend = 0.7

// RelevanceReranker re-scores results by token-set similarity between
// query and content. It is the semantic-model slot's cheap stand-in
// and shares the Reranker contract with FeatureReranker.
type RelevanceReranker struct{}

// NewRelevanceReranker creates a relevance-based reranker.
func NewRelevanceReranker() *RelevanceReranker {
	return &RelevanceReranker{}
}

// Rerank implements the Reranker interface.
func (r *RelevanceReranker) Rerank(_ context.Context, query string, results []*search.Result, topK int) ([]*search.Result, error) {
	queryTokens := tokenSet(query)

	reranked := make([]*search.Result, len(results))
	for i, res := range results {
		relevance := jaccard(queryTokens, tokenSet(res.Chunk.Text))
		cp := *res
		cp.Score = relevanceBlend*res.Score + (1-relevanceBlend)*relevance
		reranked[i] = &cp
	}

	sort.SliceStable(reranked, func(i, j int) bool {
		return reranked[i].Score > reranked[j].Score
	})
	return truncate(reranked, topK), nil
}

func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, token := range search.Tokenize(text) {
		set[token] = struct{}{}
	}
	return set
}

// jaccard is intersection over union of the two token sets.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0.0
	}
	intersection := 0
	for token := range a {
		if _, ok := b[token]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}
