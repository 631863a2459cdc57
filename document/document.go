//
// Copyright (C) 2025 NETVEXA. All rights reserved.
//
// rag-go is licensed under the Apache License Version 2.0.
//
//

// Package document defines the normalized representation of a parsed
// source document.
package document

import "strings"

// Metadata keys populated by the parsers.
const (
	MetaType       = "type"
	MetaTitle      = "title"
	MetaAuthor     = "author"
	MetaSubject    = "subject"
	MetaCreator    = "creator"
	MetaCreatedAt  = "created_at"
	MetaModifiedAt = "modified_at"
	MetaEncoding   = "encoding"
	MetaLanguage   = "language"
	MetaPages      = "pages"
	MetaLines      = "lines"
	MetaSize       = "size"
	MetaFileName   = "file_name"
	MetaLossy      = "lossy_decode"
)

// Section is one structural unit of a document: a page for PDFs, a
// heading-delimited region for markdown, HTML and DOCX.
type Section struct {
	// Title is the heading text, empty for untitled units such as pages.
	Title string
	// Level is the heading depth (1-6) or zero when not applicable.
	Level int
	// Content is the section body aligned with Document.Text.
	Content string
	// PageNumber is the 1-based page for page-derived sections, zero otherwise.
	PageNumber int
	// Metadata holds parser-specific extras.
	Metadata map[string]any
}

// Document is the normalized output of parsing one source file.
// It is produced once per source and never mutated afterwards.
type Document struct {
	// Text is the full normalized text content.
	Text string
	// Metadata describes the source (type, title, encoding, ...).
	Metadata map[string]any
	// Sections lists structural units in document order. Parsers for
	// unstructured formats leave it empty.
	Sections []Section
}

// IsEmpty checks if the document has no meaningful text.
func (d *Document) IsEmpty() bool {
	return d == nil || strings.TrimSpace(d.Text) == ""
}

// Size returns the length of the document text in bytes.
func (d *Document) Size() int {
	if d == nil {
		return 0
	}
	return len(d.Text)
}

// Type returns the document type metadata value, or empty.
func (d *Document) Type() string {
	if d == nil || d.Metadata == nil {
		return ""
	}
	t, _ := d.Metadata[MetaType].(string)
	return t
}

// Language returns the source language for code documents, or empty.
func (d *Document) Language() string {
	if d == nil || d.Metadata == nil {
		return ""
	}
	l, _ := d.Metadata[MetaLanguage].(string)
	return l
}

// Clone creates a deep copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	clone := &Document{Text: d.Text}
	if d.Metadata != nil {
		clone.Metadata = make(map[string]any, len(d.Metadata))
		for k, v := range d.Metadata {
			clone.Metadata[k] = v
		}
	}
	if d.Sections != nil {
		clone.Sections = make([]Section, len(d.Sections))
		copy(clone.Sections, d.Sections)
	}
	return clone
}
