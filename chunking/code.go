//
// Copyright (C) 2025 NETVEXA. All rights reserved.
//
// rag-go is licensed under the Apache License Version 2.0.
//
//

package chunking

import (
	"regexp"
	"strings"
)

// CodeChunking splits source code at function and class boundaries
// using structural pattern matching, not a full parser. Oversized
// structures are split by line, never by character, to keep syntax
// intact. Unknown languages fall back to fixed-size line windows.
type CodeChunking struct {
	cfg config
}

// NewCodeChunking creates a code-aware chunking strategy.
func NewCodeChunking(opts ...Option) *CodeChunking {
	return &CodeChunking{cfg: newConfig(opts...)}
}

// structurePatterns marks the start of a top-level function or class
// definition per language.
var structurePatterns = map[string]*regexp.Regexp{
	"python":     regexp.MustCompile(`(?m)^(?:def|class)\s+\w+`),
	"go":         regexp.MustCompile(`(?m)^(?:func|type)\s+\w+`),
	"javascript": regexp.MustCompile(`(?m)^(?:export\s+)?(?:async\s+)?(?:function|class)\s+\w+`),
	"typescript": regexp.MustCompile(`(?m)^(?:export\s+)?(?:async\s+)?(?:function|class|interface)\s+\w+`),
	"java":       regexp.MustCompile(`(?m)^(?:\s{0,4})(?:public|private|protected)\s+(?:static\s+)?(?:final\s+)?[\w<>\[\]]+\s+\w+\s*\(|^(?:public\s+)?(?:final\s+)?class\s+\w+`),
	"rust":       regexp.MustCompile(`(?m)^(?:pub\s+)?(?:fn|struct|enum|impl|trait)\s+`),
	"csharp":     regexp.MustCompile(`(?m)^(?:\s{0,4})(?:public|private|protected|internal)\s+(?:static\s+)?[\w<>\[\]]+\s+\w+\s*\(|^(?:public\s+)?class\s+\w+`),
	"ruby":       regexp.MustCompile(`(?m)^(?:def|class|module)\s+\w+`),
	"php":        regexp.MustCompile(`(?m)^(?:\s{0,4})(?:public|private|protected\s+)?function\s+\w+|^class\s+\w+`),
}

// Chunk implements the Strategy interface.
func (c *CodeChunking) Chunk(text string, ctx Context) ([]*Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	ctx.HasCode = true

	pattern, ok := structurePatterns[ctx.Language]
	if !ok {
		return c.chunkByLines(text, 0, ctx, nil), nil
	}

	starts := pattern.FindAllStringIndex(text, -1)
	if len(starts) == 0 {
		return c.chunkByLines(text, 0, ctx, nil), nil
	}

	// Cut the file into segments at each structure start. The leading
	// segment holds imports and top-level statements.
	var chunks []*Chunk
	boundaries := make([]int, 0, len(starts)+2)
	boundaries = append(boundaries, 0)
	for _, s := range starts {
		if s[0] != 0 {
			boundaries = append(boundaries, s[0])
		}
	}
	boundaries = append(boundaries, len(text))

	for i := 0; i+1 < len(boundaries); i++ {
		segment := text[boundaries[i]:boundaries[i+1]]
		trimmed := strings.TrimRight(segment, "\n")
		if strings.TrimSpace(trimmed) == "" {
			continue
		}
		if c.cfg.counter.Count(trimmed) > c.cfg.chunkSize {
			chunks = c.chunkByLines(trimmed, boundaries[i], ctx, chunks)
			continue
		}
		chunks = append(chunks, newChunk(trimmed, len(chunks), boundaries[i], ctx, c.cfg.counter))
	}
	return chunks, nil
}

// chunkByLines emits fixed-size line windows, each within the token
// budget. Lines are the smallest split unit for code.
func (c *CodeChunking) chunkByLines(text string, offset int, ctx Context, chunks []*Chunk) []*Chunk {
	var (
		current   []string
		curTokens int
		start     = offset
	)
	flush := func() {
		if len(current) == 0 {
			return
		}
		chunkText := strings.Join(current, "\n")
		chunks = append(chunks, newChunk(chunkText, len(chunks), start, ctx, c.cfg.counter))
		start += len(chunkText) + 1
		current = nil
		curTokens = 0
	}
	for _, line := range strings.Split(text, "\n") {
		lineTokens := c.cfg.counter.Count(line + "\n")
		if curTokens+lineTokens > c.cfg.chunkSize && len(current) > 0 {
			flush()
		}
		current = append(current, line)
		curTokens += lineTokens
	}
	flush()
	return chunks
}
