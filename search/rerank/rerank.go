//
// Copyright (C) 2025 NETVEXA. All rights reserved.
//
// rag-go is licensed under the Apache License Version 2.0.
//
//

// Package rerank re-orders hybrid search results with a secondary
// relevance pass.
package rerank

import (
	"context"

	"github.com/netvexa/rag-go/search"
)

// Reranker re-orders search results by a secondary relevance signal.
// topK limits the returned slice; zero returns everything.
type Reranker interface {
	Rerank(ctx context.Context, query string, results []*search.Result, topK int) ([]*search.Result, error)
}

// truncate applies the topK limit.
func truncate(results []*search.Result, topK int) []*search.Result {
	if topK > 0 && len(results) > topK {
		return results[:topK]
	}
	return results
}
