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
	"strings"

	"github.com/netvexa/rag-go/search"
)

var _ Reranker = (*FeatureReranker)(nil)

// FeatureWeights controls how the five lexical features are combined.
type FeatureWeights struct {
	ExactMatch    float64
	QueryCoverage float64
	Position      float64
	LengthPenalty float64
	Freshness     float64
}

// DefaultFeatureWeights are the standard feature weights.
var DefaultFeatureWeights = FeatureWeights{
	ExactMatch:    0.3,
	QueryCoverage: 0.2,
	Position:      0.2,
	LengthPenalty: 0.1,
	Freshness:     0.2,
}

// DefaultBlend is how much of the incoming score survives the rerank:
// new = blend*old + (1-blend)*features.
const DefaultBlend = 0.6

// Content length thresholds for the length penalty.
const (
	shortContentLimit = 50
	longContentLimit  = 5000
)

// FeatureReranker scores results with cheap lexical and structural
// features, then blends the feature score with the incoming hybrid
// score. No model calls, so it adds microseconds, not round trips.
type FeatureReranker struct {
	weights FeatureWeights
	blend   float64
}

// Option configures the feature reranker.
type Option func(*FeatureReranker)

// WithFeatureWeights overrides the per-feature weights.
func WithFeatureWeights(w FeatureWeights) Option {
	return func(r *FeatureReranker) {
		r.weights = w
	}
}

// WithBlend sets the share of the incoming score kept in the final
// score. Values outside [0, 1] are clamped.
func WithBlend(blend float64) Option {
	return func(r *FeatureReranker) {
		if blend < 0 {
			blend = 0
		}
		if blend > 1 {
			blend = 1
		}
		r.blend = blend
	}
}

// NewFeatureReranker creates a feature-based reranker.
func NewFeatureReranker(opts ...Option) *FeatureReranker {
	r := &FeatureReranker{
		weights: DefaultFeatureWeights,
		blend:   DefaultBlend,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rerank implements the Reranker interface.
func (r *FeatureReranker) Rerank(_ context.Context, query string, results []*search.Result, topK int) ([]*search.Result, error) {
	queryLower := strings.ToLower(query)
	queryTokens := search.Tokenize(query)

	reranked := make([]*search.Result, len(results))
	for i, res := range results {
		featureScore := r.featureScore(queryLower, queryTokens, res)
		cp := *res
		cp.Score = r.blend*res.Score + (1-r.blend)*featureScore
		reranked[i] = &cp
	}

	sort.SliceStable(reranked, func(i, j int) bool {
		return reranked[i].Score > reranked[j].Score
	})
	return truncate(reranked, topK), nil
}

func (r *FeatureReranker) featureScore(queryLower string, queryTokens []string, res *search.Result) float64 {
	content := res.Chunk.Text
	contentLower := strings.ToLower(content)

	return r.weights.ExactMatch*exactMatch(queryLower, contentLower) +
		r.weights.QueryCoverage*queryCoverage(queryTokens, contentLower) +
		r.weights.Position*positionScore(queryTokens, contentLower) +
		r.weights.LengthPenalty*lengthPenalty(content) +
		r.weights.Freshness*freshness(res)
}

// exactMatch is 1 when the whole query appears verbatim in content.
func exactMatch(queryLower, contentLower string) float64 {
	if queryLower != "" && strings.Contains(contentLower, queryLower) {
		return 1.0
	}
	return 0.0
}

// queryCoverage is the fraction of query tokens present in content.
func queryCoverage(queryTokens []string, contentLower string) float64 {
	if len(queryTokens) == 0 {
		return 0.0
	}
	found := 0
	for _, token := range queryTokens {
		if strings.Contains(contentLower, token) {
			found++
		}
	}
	return float64(found) / float64(len(queryTokens))
}

// positionScore rewards content whose first query-token match is near
// the start.
func positionScore(queryTokens []string, contentLower string) float64 {
	if len(queryTokens) == 0 || len(contentLower) == 0 {
		return 0.0
	}
	minPosition := len(contentLower)
	for _, token := range queryTokens {
		if pos := strings.Index(contentLower, token); pos != -1 && pos < minPosition {
			minPosition = pos
		}
	}
	if minPosition == len(contentLower) {
		return 0.0
	}
	return 1.0 - float64(minPosition)/float64(len(contentLower))
}

// lengthPenalty discounts content that is too short to be useful or
// too long to be specific.
func lengthPenalty(content string) float64 {
	switch length := len(content); {
	case length < shortContentLimit:
		return 0.5
	case length > longContentLimit:
		return 0.7
	default:
		return 1.0
	}
}

// freshness is a placeholder: without corpus-level age statistics the
// signal stays neutral.
func freshness(_ *search.Result) float64 {
	return 0.5
}
