//
// Copyright (C) 2025 NETVEXA. All rights reserved.
//
// rag-go is licensed under the Apache License Version 2.0.
//
//

// Package parser converts raw file bytes into normalized documents.
//
// Format selection is a pure function over a closed set of formats:
// the declared MIME type and file name are consulted first, then
// content sniffing, with plain text as the final fallback. The same
// input always resolves to the same format.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/netvexa/rag-go/document"
)

// Sentinel errors returned by Parse.
var (
	// ErrUnsupportedFormat indicates no parser claims the input.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrMalformedInput indicates the bytes do not match their claimed format.
	ErrMalformedInput = errors.New("malformed document input")
)

// Format identifies a supported document format.
type Format int

// The closed set of supported formats. PlainText is the fallback and
// must stay last in detection order.
const (
	FormatUnknown Format = iota
	FormatPDF
	FormatDOCX
	FormatHTML
	FormatMarkdown
	FormatSourceCode
	FormatPlainText
)

// String returns the format name used in document metadata.
func (f Format) String() string {
	switch f {
	case FormatPDF:
		return "pdf"
	case FormatDOCX:
		return "docx"
	case FormatHTML:
		return "html"
	case FormatMarkdown:
		return "markdown"
	case FormatSourceCode:
		return "code"
	case FormatPlainText:
		return "text"
	default:
		return "unknown"
	}
}

// Options holds optional hints for parsing.
type Options struct {
	fileName string
	mimeType string
	format   Format
}

// Option configures Parse.
type Option func(*Options)

// WithFileName supplies the original file name, used for format and
// language detection.
func WithFileName(name string) Option {
	return func(o *Options) {
		o.fileName = name
	}
}

// WithMIMEType supplies the declared MIME type.
func WithMIMEType(mime string) Option {
	return func(o *Options) {
		o.mimeType = mime
	}
}

// WithFormat forces a specific format, bypassing detection.
func WithFormat(f Format) Option {
	return func(o *Options) {
		o.format = f
	}
}

var (
	pdfMagic  = []byte("%PDF-")
	zipMagic  = []byte("PK\x03\x04")
	htmlHints = []string{"<!doctype html", "<html"}
)

// DetectFormat resolves the format for the given hints and content.
// It is deterministic: most specific signal first, plain text last.
func DetectFormat(fileName, mimeType string, data []byte) Format {
	if f := formatFromMIME(mimeType); f != FormatUnknown {
		return f
	}
	if f := formatFromExtension(fileName); f != FormatUnknown {
		return f
	}
	if f := formatFromContent(data); f != FormatUnknown {
		return f
	}
	return FormatPlainText
}

func formatFromMIME(mimeType string) Format {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	switch mt {
	case "application/pdf":
		return FormatPDF
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/msword":
		return FormatDOCX
	case "text/html", "application/xhtml+xml":
		return FormatHTML
	case "text/markdown", "text/x-markdown":
		return FormatMarkdown
	case "text/plain":
		return FormatPlainText
	}
	if codeMIMETypes[mt] {
		return FormatSourceCode
	}
	return FormatUnknown
}

func formatFromExtension(fileName string) Format {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".pdf":
		return FormatPDF
	case ".docx", ".doc":
		return FormatDOCX
	case ".html", ".htm", ".xhtml":
		return FormatHTML
	case ".md", ".markdown", ".mdown":
		return FormatMarkdown
	case ".txt", ".text", ".log", ".csv", ".tsv":
		return FormatPlainText
	}
	if _, ok := languageByExtension[ext]; ok {
		return FormatSourceCode
	}
	return FormatUnknown
}

func formatFromContent(data []byte) Format {
	if bytes.HasPrefix(data, pdfMagic) {
		return FormatPDF
	}
	if bytes.HasPrefix(data, zipMagic) {
		return FormatDOCX
	}
	head := strings.ToLower(string(data[:min(len(data), 512)]))
	head = strings.TrimSpace(head)
	for _, h := range htmlHints {
		if strings.HasPrefix(head, h) {
			return FormatHTML
		}
	}
	return FormatUnknown
}

// Parse converts raw bytes into a normalized document. The format is
// taken from WithFormat when set, otherwise detected from the supplied
// hints and the content itself.
func Parse(data []byte, opts ...Option) (*document.Document, error) {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	format := o.format
	if format == FormatUnknown {
		format = DetectFormat(o.fileName, o.mimeType, data)
	}
	switch format {
	case FormatPDF:
		return parsePDF(data, o)
	case FormatDOCX:
		return parseDOCX(data, o)
	case FormatHTML:
		return parseHTML(data, o)
	case FormatMarkdown:
		return parseMarkdown(data, o)
	case FormatSourceCode:
		return parseCode(data, o)
	case FormatPlainText:
		return parsePlainText(data, o)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func baseMetadata(format Format, o *Options) map[string]any {
	md := map[string]any{
		document.MetaType: format.String(),
	}
	if o.fileName != "" {
		md[document.MetaFileName] = o.fileName
	}
	return md
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
