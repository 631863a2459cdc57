//
// Copyright (C) 2025 NETVEXA. All rights reserved.
//
// rag-go is licensed under the Apache License Version 2.0.
//
//

package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/netvexa/rag-go/document"
)

// parsePDF extracts text from each page of a PDF. Every non-empty
// page becomes one section so chunkers can tag chunks with page
// numbers.
func parsePDF(data []byte, o *Options) (doc *document.Document, err error) {
	// The pdf package panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("%w: pdf: %v", ErrMalformedInput, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: pdf: %v", ErrMalformedInput, err)
	}

	totalPages := reader.NumPage()
	var fullText strings.Builder
	sections := make([]document.Section, 0, totalPages)

	for pageIndex := 1; pageIndex <= totalPages; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil || strings.TrimSpace(text) == "" {
			continue
		}
		if fullText.Len() > 0 {
			fullText.WriteString("\n\n")
		}
		fullText.WriteString(text)
		sections = append(sections, document.Section{
			Content:    text,
			PageNumber: pageIndex,
			Metadata: map[string]any{
				"total_pages": totalPages,
			},
		})
	}

	md := baseMetadata(FormatPDF, o)
	md[document.MetaPages] = totalPages
	addPDFInfo(md, reader)

	return &document.Document{
		Text:     fullText.String(),
		Metadata: md,
		Sections: sections,
	}, nil
}

// addPDFInfo copies title and author from the PDF trailer Info
// dictionary when present.
func addPDFInfo(md map[string]any, reader *pdf.Reader) {
	defer func() {
		// Info dictionaries are frequently broken; skip them silently.
		_ = recover()
	}()
	info := reader.Trailer().Key("Info")
	if info.IsNull() {
		return
	}
	if title := info.Key("Title"); !title.IsNull() && title.Text() != "" {
		md[document.MetaTitle] = title.Text()
	}
	if author := info.Key("Author"); !author.IsNull() && author.Text() != "" {
		md[document.MetaAuthor] = author.Text()
	}
	if subject := info.Key("Subject"); !subject.IsNull() && subject.Text() != "" {
		md[document.MetaSubject] = subject.Text()
	}
	if creator := info.Key("Creator"); !creator.IsNull() && creator.Text() != "" {
		md[document.MetaCreator] = creator.Text()
	}
}
