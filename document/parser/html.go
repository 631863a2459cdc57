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

	"golang.org/x/net/html"

	"github.com/netvexa/rag-go/document"
	"github.com/netvexa/rag-go/internal/encoding"
)

// parseHTML extracts visible text from an HTML document. Script and
// style subtrees are dropped, h1-h6 headings delimit sections, and
// <title> plus <meta> tags land in metadata.
func parseHTML(data []byte, o *Options) (*document.Document, error) {
	res := encoding.Decode(data)

	root, err := html.Parse(strings.NewReader(res.Text))
	if err != nil {
		return nil, fmt.Errorf("%w: html: %v", ErrMalformedInput, err)
	}

	ex := &htmlExtractor{metaTags: map[string]string{}}
	ex.walk(root)
	ex.flushSection()

	md := baseMetadata(FormatHTML, o)
	md[document.MetaEncoding] = res.Encoding
	if res.Lossy {
		md[document.MetaLossy] = true
	}
	if ex.title != "" {
		md[document.MetaTitle] = ex.title
	}
	if len(ex.metaTags) > 0 {
		md["meta_tags"] = ex.metaTags
	}

	return &document.Document{
		Text:     strings.TrimSpace(ex.text.String()),
		Metadata: md,
		Sections: ex.sections,
	}, nil
}

type htmlExtractor struct {
	text     strings.Builder
	title    string
	metaTags map[string]string
	sections []document.Section

	sectionTitle string
	sectionLevel int
	sectionBody  []string
	hasSection   bool
}

func (ex *htmlExtractor) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript":
			return
		case "title":
			ex.title = strings.TrimSpace(textContent(n))
			return
		case "meta":
			ex.recordMeta(n)
			return
		case "h1", "h2", "h3", "h4", "h5", "h6":
			ex.flushSection()
			ex.sectionTitle = strings.TrimSpace(textContent(n))
			ex.sectionLevel = int(n.Data[1] - '0')
			ex.hasSection = true
			ex.appendText(ex.sectionTitle)
			return
		}
	}
	if n.Type == html.TextNode {
		ex.appendBody(n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		ex.walk(c)
	}
}

func (ex *htmlExtractor) appendText(s string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return
	}
	if ex.text.Len() > 0 {
		ex.text.WriteString("\n")
	}
	ex.text.WriteString(s)
}

func (ex *htmlExtractor) appendBody(s string) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return
	}
	ex.appendText(trimmed)
	// Body text before the first heading opens an untitled section, so
	// the section list covers every piece of visible text.
	ex.hasSection = true
	ex.sectionBody = append(ex.sectionBody, trimmed)
}

func (ex *htmlExtractor) flushSection() {
	if !ex.hasSection {
		return
	}
	ex.sections = append(ex.sections, document.Section{
		Title:   ex.sectionTitle,
		Level:   ex.sectionLevel,
		Content: strings.Join(ex.sectionBody, "\n"),
	})
	ex.sectionTitle = ""
	ex.sectionLevel = 0
	ex.sectionBody = nil
	ex.hasSection = false
}

func (ex *htmlExtractor) recordMeta(n *html.Node) {
	var name, content string
	for _, attr := range n.Attr {
		switch attr.Key {
		case "name", "property":
			name = attr.Val
		case "content":
			content = attr.Val
		}
	}
	if name != "" {
		ex.metaTags[name] = content
	}
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var visit func(*html.Node)
	visit = func(m *html.Node) {
		if m.Type == html.TextNode {
			sb.WriteString(m.Data)
		}
		for c := m.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return sb.String()
}
