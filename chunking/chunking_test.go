//
// Copyright (C) 2025 NETVEXA. All rights reserved.
//
// rag-go is licensed under the Apache License Version 2.0.
//
//

package chunking

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netvexa/rag-go/internal/textutil"
)

// wordOpts makes chunk boundaries deterministic by counting words
// instead of model tokens.
func wordOpts(size, overlap int) []Option {
	return []Option{
		WithChunkSize(size),
		WithOverlap(overlap),
		WithMinChunkSize(0),
		WithTokenCounter(WordCounter{}),
	}
}

func sentenceText(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "Sentence number %d has exactly six words. ", i)
	}
	return sb.String()
}

func TestForContentType(t *testing.T) {
	assert.IsType(t, &MarkdownChunking{}, ForContentType("markdown"))
	assert.IsType(t, &CodeChunking{}, ForContentType("code"))
	assert.IsType(t, &SentenceChunking{}, ForContentType("sentence"))
	assert.IsType(t, &SemanticChunking{}, ForContentType("text"))
	assert.IsType(t, &SemanticChunking{}, ForContentType("pdf"))
}

func TestSentenceChunkingEmptyInput(t *testing.T) {
	s := NewSentenceChunking(wordOpts(50, 0)...)
	chunks, err := s.Chunk("   \n  ", Context{})
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSentenceChunkingRespectsTokenBound(t *testing.T) {
	s := NewSentenceChunking(wordOpts(20, 0)...)
	chunks, err := s.Chunk(sentenceText(12), Context{})
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	for _, c := range chunks {
		assert.LessOrEqual(t, c.TokenCount, 20, "chunk %d exceeds bound", c.Index)
	}
	// Indexes are sequential from zero.
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
	}
}

func TestSentenceChunkingOverlap(t *testing.T) {
	s := NewSentenceChunking(wordOpts(14, 7)...)
	chunks, err := s.Chunk(sentenceText(8), Context{})
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	// With a 7-word overlap budget and 7-word sentences, each chunk
	// after the first starts with the previous chunk's last sentence.
	for i := 1; i < len(chunks); i++ {
		prev := textutil.SplitSentences(chunks[i-1].Text)
		curr := textutil.SplitSentences(chunks[i].Text)
		require.NotEmpty(t, prev)
		require.NotEmpty(t, curr)
		assert.Equal(t, prev[len(prev)-1], curr[0])
	}
}

func TestSentenceChunkingOversizedSentence(t *testing.T) {
	long := strings.Repeat("word ", 60) + "end."
	s := NewSentenceChunking(wordOpts(20, 0)...)
	chunks, err := s.Chunk(long, Context{})
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, c.TokenCount, 20)
	}
	// Word-boundary splitting loses no words.
	var rebuilt []string
	for _, c := range chunks {
		rebuilt = append(rebuilt, c.Text)
	}
	assert.Equal(t,
		textutil.NormalizeWhitespace(long),
		textutil.NormalizeWhitespace(strings.Join(rebuilt, " ")))
}

func TestSentenceChunkingIdempotent(t *testing.T) {
	text := sentenceText(10)
	s := NewSentenceChunking(wordOpts(20, 6)...)

	first, err := s.Chunk(text, Context{})
	require.NoError(t, err)
	second, err := s.Chunk(text, Context{})
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Text, second[i].Text)
		assert.Equal(t, first[i].StartOffset, second[i].StartOffset)
		assert.Equal(t, first[i].TokenCount, second[i].TokenCount)
	}
}

func TestSemanticChunkingThreeParagraphs(t *testing.T) {
	para := strings.TrimSpace(strings.Repeat("thirty words of plain text follow here. ", 5))
	text := para + "\n\n" + para + "\n\n" + para

	s := NewSemanticChunking(wordOpts(50, 0)...)
	chunks, err := s.Chunk(text, Context{})
	require.NoError(t, err)

	require.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.Empty(t, c.SectionTitle)
		assert.LessOrEqual(t, c.TokenCount, 50)
	}
}

func TestSemanticChunkingMergesSmallParagraphs(t *testing.T) {
	text := "one two three.\n\nfour five six.\n\nseven eight nine."
	s := NewSemanticChunking(wordOpts(50, 0)...)
	chunks, err := s.Chunk(text, Context{})
	require.NoError(t, err)

	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0].Text, "one two three.")
	assert.Contains(t, chunks[0].Text, "seven eight nine.")
}

func TestSemanticChunkingReconstruction(t *testing.T) {
	paras := []string{
		strings.TrimSpace(strings.Repeat("alpha beta gamma delta epsilon. ", 4)),
		strings.TrimSpace(strings.Repeat("zeta eta theta iota kappa. ", 4)),
		strings.TrimSpace(strings.Repeat("lambda mu nu xi omicron. ", 4)),
	}
	text := strings.Join(paras, "\n\n")

	s := NewSemanticChunking(wordOpts(25, 0)...)
	chunks, err := s.Chunk(text, Context{})
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	var rebuilt []string
	for _, c := range chunks {
		rebuilt = append(rebuilt, c.Text)
	}
	assert.Equal(t,
		textutil.NormalizeWhitespace(text),
		textutil.NormalizeWhitespace(strings.Join(rebuilt, " ")))
}

func TestSemanticChunkingOversizedParagraph(t *testing.T) {
	big := sentenceText(10) // 60 words in one paragraph
	text := "small leading paragraph.\n\n" + strings.TrimSpace(big)

	s := NewSemanticChunking(wordOpts(20, 0)...)
	chunks, err := s.Chunk(text, Context{})
	require.NoError(t, err)
	require.Greater(t, len(chunks), 2)
	for _, c := range chunks {
		assert.LessOrEqual(t, c.TokenCount, 20)
	}
}

func TestMarkdownChunkingSectionTitles(t *testing.T) {
	text := `# Guide

Intro paragraph for the guide.

## Install

Run the installer.

## Usage

Call the binary.`

	m := NewMarkdownChunking(wordOpts(50, 0)...)
	chunks, err := m.Chunk(text, Context{})
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	titles := map[string]bool{}
	for _, c := range chunks {
		titles[c.SectionTitle] = true
	}
	assert.True(t, titles["Guide"])
	assert.True(t, titles["Install"])
	assert.True(t, titles["Usage"])
}

func TestMarkdownChunkingKeepsFencedCodeIntact(t *testing.T) {
	code := "```go\nfunc main() {\n\tprintln(\"hi\")\n}\n```"
	text := "# Example\n\nSome intro.\n\n" + code + "\n\nTrailing text."

	m := NewMarkdownChunking(wordOpts(100, 0)...)
	chunks, err := m.Chunk(text, Context{})
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	var joined strings.Builder
	for _, c := range chunks {
		joined.WriteString(c.Text)
		joined.WriteString("\n")
	}
	assert.Contains(t, joined.String(), code)
	assert.NotContains(t, joined.String(), "__CODE_BLOCK_")
}

func TestMarkdownChunkingContentBeforeFirstHeader(t *testing.T) {
	text := "leading prose without a header.\n\n# Later\n\nbody."
	m := NewMarkdownChunking(wordOpts(50, 0)...)
	chunks, err := m.Chunk(text, Context{})
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	assert.Empty(t, chunks[0].SectionTitle)
	assert.Contains(t, chunks[0].Text, "leading prose")
}

func TestCodeChunkingGoFunctions(t *testing.T) {
	src := `package main

import "fmt"

func one() {
	fmt.Println("one")
}

func two() {
	fmt.Println("two")
}
`
	c := NewCodeChunking(wordOpts(50, 0)...)
	chunks, err := c.Chunk(src, Context{Language: "go"})
	require.NoError(t, err)
	require.Len(t, chunks, 3) // header, one(), two()

	assert.Contains(t, chunks[0].Text, "package main")
	assert.Contains(t, chunks[1].Text, "func one()")
	assert.Contains(t, chunks[2].Text, "func two()")
	for _, ch := range chunks {
		assert.True(t, ch.HasCode)
		assert.Equal(t, "go", ch.Language)
	}
}

func TestCodeChunkingPython(t *testing.T) {
	src := `import os

def alpha():
    return 1

class Beta:
    def method(self):
        return 2
`
	c := NewCodeChunking(wordOpts(50, 0)...)
	chunks, err := c.Chunk(src, Context{Language: "python"})
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Contains(t, chunks[0].Text, "import os")
	assert.Contains(t, chunks[1].Text, "def alpha")
	assert.Contains(t, chunks[2].Text, "class Beta")
}

func TestCodeChunkingUnknownLanguageLineWindows(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&sb, "line %d with several words on it\n", i)
	}
	c := NewCodeChunking(wordOpts(30, 0)...)
	chunks, err := c.Chunk(sb.String(), Context{Language: "unknown"})
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for _, ch := range chunks {
		// Lines are never split mid-line.
		for _, line := range strings.Split(ch.Text, "\n") {
			assert.True(t, strings.HasPrefix(line, "line ") || line == "")
		}
	}
}

func TestChunkMetadataFields(t *testing.T) {
	s := NewSentenceChunking(wordOpts(50, 0)...)
	chunks, err := s.Chunk("A short sentence for metadata.", Context{
		SectionTitle: "Intro",
		PageNumber:   3,
	})
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	c := chunks[0]
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "Intro", c.SectionTitle)
	assert.Equal(t, 3, c.PageNumber)
	assert.Equal(t, 5, c.WordCount)
	assert.Equal(t, len(c.Text), c.EndOffset-c.StartOffset)
	assert.False(t, c.HasCode)
}

func TestChunkHasCodeDetection(t *testing.T) {
	s := NewSentenceChunking(wordOpts(50, 0)...)
	chunks, err := s.Chunk("Use import os to load modules.", Context{})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.True(t, chunks[0].HasCode)
}
