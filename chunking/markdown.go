//
// Copyright (C) 2025 NETVEXA. All rights reserved.
//
// rag-go is licensed under the Apache License Version 2.0.
//
//

package chunking

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/netvexa/rag-go/internal/textutil"
)

// MarkdownChunking splits markdown by its header hierarchy. Fenced
// code blocks are lifted out before header splitting so a block is
// never fragmented, then restored into the section bodies, which are
// sub-chunked with the semantic strategy. Every chunk carries its
// nearest enclosing section title.
type MarkdownChunking struct {
	cfg config
}

// NewMarkdownChunking creates a markdown-aware chunking strategy.
func NewMarkdownChunking(opts ...Option) *MarkdownChunking {
	return &MarkdownChunking{cfg: newConfig(opts...)}
}

var (
	fencedBlock = regexp.MustCompile("(?s)```.*?```")
	headerLine  = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
)

const codePlaceholder = "__CODE_BLOCK_%d__"

// Chunk implements the Strategy interface.
func (m *MarkdownChunking) Chunk(text string, ctx Context) ([]*Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	// Lift fenced code blocks out so header splitting cannot cut
	// through them.
	var codeBlocks []string
	masked := fencedBlock.ReplaceAllStringFunc(text, func(block string) string {
		codeBlocks = append(codeBlocks, block)
		return fmt.Sprintf(codePlaceholder, len(codeBlocks)-1)
	})

	sections := splitByHeaders(masked)
	semantic := &SemanticChunking{cfg: m.cfg}

	var chunks []*Chunk
	for _, sec := range sections {
		secCtx := ctx
		if sec.title != "" {
			secCtx.SectionTitle = sec.title
		}

		// Sub-chunk with placeholders still in place: a placeholder is a
		// single token-safe word, so a fenced block can never be cut.
		sub, err := semantic.Chunk(sec.body, secCtx)
		if err != nil {
			return nil, err
		}
		for _, c := range sub {
			restored := restoreCodeBlocks(c.Text, codeBlocks)
			if restored != c.Text {
				c.Text = restored
				c.EndOffset = c.StartOffset + len(restored)
				c.WordCount = textutil.WordCount(restored)
				c.TokenCount = m.cfg.counter.Count(restored)
				c.HasCode = true
			}
		}
		reindex(sub, len(chunks))
		chunks = append(chunks, sub...)
	}
	return chunks, nil
}

type markdownSection struct {
	title string
	level int
	body  string
}

// splitByHeaders cuts masked markdown into header-delimited sections.
// Content before the first header forms an untitled leading section.
func splitByHeaders(masked string) []markdownSection {
	var (
		sections []markdownSection
		title    string
		level    int
		lines    []string
	)

	flush := func() {
		body := strings.TrimSpace(strings.Join(lines, "\n"))
		if body != "" {
			sections = append(sections, markdownSection{title: title, level: level, body: body})
		}
		lines = nil
	}

	for _, line := range strings.Split(masked, "\n") {
		if match := headerLine.FindStringSubmatch(line); match != nil {
			flush()
			level = len(match[1])
			title = strings.TrimSpace(match[2])
			// The header line stays in the section body, as readers of
			// the chunk benefit from seeing the heading.
			lines = append(lines, line)
			continue
		}
		lines = append(lines, line)
	}
	flush()
	return sections
}

func restoreCodeBlocks(body string, codeBlocks []string) string {
	for i, block := range codeBlocks {
		body = strings.ReplaceAll(body, fmt.Sprintf(codePlaceholder, i), block)
	}
	return body
}
