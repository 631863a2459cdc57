//
// Copyright (C) 2025 NETVEXA. All rights reserved.
//
// rag-go is licensed under the Apache License Version 2.0.
//
//

package parser

import (
	"github.com/netvexa/rag-go/document"
	"github.com/netvexa/rag-go/internal/encoding"
)

// parsePlainText decodes raw bytes as text. Decoding never fails; a
// lossy decode is flagged in metadata for downstream quality scoring.
func parsePlainText(data []byte, o *Options) (*document.Document, error) {
	res := encoding.Decode(data)

	md := baseMetadata(FormatPlainText, o)
	md[document.MetaEncoding] = res.Encoding
	md[document.MetaSize] = len(data)
	if res.Lossy {
		md[document.MetaLossy] = true
	}

	return &document.Document{
		Text:     res.Text,
		Metadata: md,
	}, nil
}
