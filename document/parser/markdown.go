//
// Copyright (C) 2025 NETVEXA. All rights reserved.
//
// rag-go is licensed under the Apache License Version 2.0.
//
//

package parser

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/netvexa/rag-go/document"
	"github.com/netvexa/rag-go/internal/encoding"
)

// parseMarkdown keeps the raw markdown as the document text (the
// markdown chunker understands it natively) and derives sections from
// the heading hierarchy via the goldmark AST.
func parseMarkdown(data []byte, o *Options) (*document.Document, error) {
	res := encoding.Decode(data)
	src := []byte(res.Text)

	md := goldmark.New()
	reader := text.NewReader(src)
	root := md.Parser().Parse(reader)

	type headingMark struct {
		level      int
		title      string
		titleStart int
		titleStop  int
	}
	var headings []headingMark

	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		mark := headingMark{level: heading.Level}
		if lines := heading.Lines(); lines.Len() > 0 {
			seg := lines.At(0)
			mark.title = strings.TrimSpace(string(seg.Value(src)))
			mark.titleStart = seg.Start
			mark.titleStop = seg.Stop
		}
		headings = append(headings, mark)
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: markdown: %v", ErrMalformedInput, err)
	}

	sections := make([]document.Section, 0, len(headings)+1)
	// Content before the first heading becomes an untitled leading
	// section, so the section list always covers the whole document.
	if len(headings) > 0 {
		if lead := strings.TrimSpace(string(src[:lineStart(src, headings[0].titleStart)])); lead != "" {
			sections = append(sections, document.Section{
				Content: lead,
				Metadata: map[string]any{
					"markdown_level": 0,
				},
			})
		}
	}
	for i, h := range headings {
		end := len(src)
		if i+1 < len(headings) {
			end = lineStart(src, headings[i+1].titleStart)
		}
		body := ""
		if h.titleStop < end {
			body = strings.TrimSpace(string(src[h.titleStop:end]))
		}
		sections = append(sections, document.Section{
			Title:   h.title,
			Level:   h.level,
			Content: body,
			Metadata: map[string]any{
				"markdown_level": h.level,
			},
		})
	}

	meta := baseMetadata(FormatMarkdown, o)
	meta[document.MetaEncoding] = res.Encoding
	meta["sections_count"] = len(sections)
	if res.Lossy {
		meta[document.MetaLossy] = true
	}

	return &document.Document{
		Text:     res.Text,
		Metadata: meta,
		Sections: sections,
	}, nil
}

// lineStart walks back from pos to the beginning of its line, so a
// section body never swallows the next heading's "#" prefix.
func lineStart(src []byte, pos int) int {
	if pos > len(src) {
		pos = len(src)
	}
	for pos > 0 && src[pos-1] != '\n' {
		pos--
	}
	return pos
}
