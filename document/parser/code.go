//
// Copyright (C) 2025 NETVEXA. All rights reserved.
//
// rag-go is licensed under the Apache License Version 2.0.
//
//

package parser

import (
	"strings"

	"github.com/netvexa/rag-go/document"
	"github.com/netvexa/rag-go/internal/encoding"
)

// parseCode decodes a source file and records its language. Code
// documents carry no sections: structure is the code chunker's job,
// which splits at function and class boundaries.
func parseCode(data []byte, o *Options) (*document.Document, error) {
	res := encoding.Decode(data)

	md := baseMetadata(FormatSourceCode, o)
	md[document.MetaLanguage] = LanguageForFile(o.fileName)
	md[document.MetaEncoding] = res.Encoding
	md[document.MetaSize] = len(data)
	md[document.MetaLines] = len(strings.Split(res.Text, "\n"))
	if res.Lossy {
		md[document.MetaLossy] = true
	}

	return &document.Document{
		Text:     res.Text,
		Metadata: md,
	}, nil
}
