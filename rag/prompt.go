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

	"github.com/netvexa/rag-go/completion"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// AgentProfile shapes the assistant persona in the system prompt.
type AgentProfile struct {
	Name         string
	Description  string
	Tone         string
	Instructions string
}

// DefaultAgentProfile is the persona used when a request carries none.
func DefaultAgentProfile() *AgentProfile {
	return &AgentProfile{
		Name:         "Assistant",
		Description:  "A helpful AI assistant",
		Tone:         "professional",
		Instructions: "Provide helpful, accurate, and professional responses.",
	}
}

var titleCaser = cases.Title(language.English)

// buildPrompt assembles the grounded completion request: persona in
// the system message, then context, recent history, and the question
// in the user message. Citations reference the numbered context
// blocks.
func buildPrompt(query, contextText string, history []Message, profile *AgentProfile) *completion.Request {
	system := fmt.Sprintf(`You are %s, an AI assistant with the following characteristics:
Description: %s
Tone: %s

Instructions:
%s

Your task is to answer questions based on the provided context and your knowledge.
Always cite your sources when using information from the context by referencing the source number [1], [2], etc.`,
		profile.Name, profile.Description, profile.Tone, profile.Instructions)

	var sb strings.Builder
	if contextText != "" {
		sb.WriteString("Context information:\n")
		sb.WriteString(contextText)
		sb.WriteString("\n")
	}

	if len(history) > 0 {
		recent := history
		if len(recent) > historyInPrompt {
			recent = recent[len(recent)-historyInPrompt:]
		}
		sb.WriteString("\nPrevious conversation:\n")
		for _, msg := range recent {
			sb.WriteString(fmt.Sprintf("%s: %s\n", titleCaser.String(msg.Role), msg.Content))
		}
	}

	sb.WriteString("\nUser Question: ")
	sb.WriteString(query)
	sb.WriteString("\n\n")
	if contextText != "" {
		sb.WriteString("Please provide a helpful and accurate response based on the context provided. " +
			"If the context doesn't contain relevant information, you can provide a general response " +
			"but mention that it's not from the provided sources.")
	} else {
		sb.WriteString("Please provide a helpful response. Note that I don't have specific context " +
			"information for this query, so I'll provide a general answer based on my knowledge.")
	}

	return &completion.Request{
		System: system,
		Prompt: sb.String(),
	}
}
