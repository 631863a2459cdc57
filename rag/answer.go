//
// Copyright (C) 2025 NETVEXA. All rights reserved.
//
// rag-go is licensed under the Apache License Version 2.0.
//
//

package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/netvexa/rag-go/completion"
	"github.com/netvexa/rag-go/log"
	"github.com/netvexa/rag-go/search"
	"github.com/netvexa/rag-go/telemetry"
)

const (
	// conversationTTL is how long idle conversations stay in cache.
	conversationTTL = 24 * time.Hour
	// maxHistoryMessages caps the stored conversation length.
	maxHistoryMessages = 20
	// historyInPrompt is how many recent messages the prompt includes.
	historyInPrompt = 5

	// apologyMessage is returned instead of an error from Answer.
	apologyMessage = "I apologize, but I encountered an error processing your request. Please try again."
)

// Message is one conversation turn.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// AnswerRequest describes one grounded question.
type AnswerRequest struct {
	AgentID        string
	ConversationID string
	Query          string
	// Profile customizes the assistant persona. Nil uses the default.
	Profile *AgentProfile
}

// Answer is a generated response with its grounding metadata.
type Answer struct {
	Content       string    `json:"content"`
	SourceIDs     []string  `json:"source_ids"`
	Provider      string    `json:"provider"`
	ContextLength int       `json:"context_length"`
	SearchMethod  string    `json:"search_method"`
	Timestamp     time.Time `json:"timestamp"`
	// Err carries the failure behind an apology response. The caller
	// gets a safe message either way.
	Err error `json:"-"`
}

// Search embeds the query and runs hybrid retrieval plus reranking.
// An unavailable embedding provider degrades the search to
// keyword-only instead of failing.
func (e *Engine) Search(ctx context.Context, agentID, query string, k int) ([]*search.Result, error) {
	if k <= 0 {
		k = e.topK
	}

	queryVector, err := e.embedder.GetEmbedding(ctx, query)
	if err != nil {
		log.WarnContext(ctx, fmt.Sprintf("query embedding failed, degrading to keyword-only search: %v", err))
		queryVector = nil
	}

	// Over-fetch so the reranker has candidates to reorder.
	results, err := e.searcher.Search(ctx, &search.Request{
		AgentID:     agentID,
		Query:       query,
		QueryVector: queryVector,
		Limit:       k * 2,
	})
	if err != nil {
		return nil, err
	}
	return e.reranker.Rerank(ctx, query, results, k)
}

// Answer runs the full pipeline: retrieve, assemble context, prompt,
// generate. Any failure turns into a safe apology answer; the Err
// field preserves the cause for logging.
func (e *Engine) Answer(ctx context.Context, req *AnswerRequest) *Answer {
	ctx, span := telemetry.Tracer.Start(ctx, telemetry.OperationAnswer)
	defer span.End()
	span.SetAttributes(
		attribute.String(telemetry.KeyAgentID, req.AgentID),
		attribute.Int(telemetry.KeyQueryLength, len(req.Query)),
	)

	results, err := e.Search(ctx, req.AgentID, req.Query, e.topK)
	if err != nil {
		log.ErrorContext(ctx, fmt.Sprintf("answer: search failed: %v", err))
		telemetry.TraceError(span, err)
		return apology(err)
	}

	contextText := buildContext(results, e.contextBudget)
	history := e.ConversationHistory(ctx, req.AgentID, req.ConversationID)

	profile := req.Profile
	if profile == nil {
		profile = DefaultAgentProfile()
	}
	prompt := buildPrompt(req.Query, contextText, history, profile)

	content, err := e.completer.Complete(ctx, prompt)
	if err != nil {
		log.ErrorContext(ctx, fmt.Sprintf("answer: completion failed: %v", err))
		telemetry.TraceError(span, err)
		return apology(err)
	}

	answer := &Answer{
		Content:       content,
		SourceIDs:     sourceIDs(results),
		Provider:      providerName(e.completer),
		ContextLength: len(contextText),
		SearchMethod:  "hybrid",
		Timestamp:     time.Now(),
	}
	e.updateConversation(ctx, req, content)
	span.SetAttributes(attribute.Int(telemetry.KeyResultCount, len(results)))
	return answer
}

// providerName resolves the provider to attribute a response to. A
// fallback chain reports the member that actually served the request,
// not the chain itself.
func providerName(p completion.Provider) string {
	if r, ok := p.(interface{ LastUsed() string }); ok {
		if name := r.LastUsed(); name != "" {
			return name
		}
	}
	return p.Name()
}

func apology(err error) *Answer {
	return &Answer{
		Content:   apologyMessage,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// sourceIDs lists the chunk IDs behind the top results, capped at
// three.
func sourceIDs(results []*search.Result) []string {
	ids := make([]string, 0, 3)
	for _, r := range results {
		ids = append(ids, r.Chunk.ID)
		if len(ids) == 3 {
			break
		}
	}
	return ids
}

// ConversationHistory returns the cached conversation, empty when no
// cache is configured or the conversation expired.
func (e *Engine) ConversationHistory(ctx context.Context, agentID, conversationID string) []Message {
	if e.cache == nil || conversationID == "" {
		return nil
	}
	data, err := e.cache.Get(ctx, conversationKey(agentID, conversationID))
	if err != nil {
		return nil
	}
	var history []Message
	if err := json.Unmarshal(data, &history); err != nil {
		log.WarnContext(ctx, fmt.Sprintf("conversation cache entry corrupt: %v", err))
		return nil
	}
	return history
}

// updateConversation appends the exchange and stores the trailing
// window. Cache failures are absorbed.
func (e *Engine) updateConversation(ctx context.Context, req *AnswerRequest, response string) {
	if e.cache == nil || req.ConversationID == "" {
		return
	}
	now := time.Now()
	history := append(e.ConversationHistory(ctx, req.AgentID, req.ConversationID),
		Message{Role: "user", Content: req.Query, Timestamp: now},
		Message{Role: "assistant", Content: response, Timestamp: now},
	)
	if len(history) > maxHistoryMessages {
		history = history[len(history)-maxHistoryMessages:]
	}
	data, err := json.Marshal(history)
	if err != nil {
		return
	}
	if err := e.cache.Set(ctx, conversationKey(req.AgentID, req.ConversationID), data, conversationTTL); err != nil {
		log.WarnContext(ctx, fmt.Sprintf("failed to update conversation cache: %v", err))
	}
}

func conversationKey(agentID, conversationID string) string {
	return fmt.Sprintf("conversation:%s:%s", agentID, conversationID)
}
