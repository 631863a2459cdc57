//
// Copyright (C) 2025 NETVEXA. All rights reserved.
//
// rag-go is licensed under the Apache License Version 2.0.
//
//

// Package encoding detects the character encoding of raw document bytes
// and decodes them to UTF-8 text.
package encoding

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Encoding names reported by Detect.
const (
	EncodingUTF8        = "utf-8"
	EncodingUTF16LE     = "utf-16le"
	EncodingUTF16BE     = "utf-16be"
	EncodingWindows1252 = "windows-1252"
)

// Result carries the decoded text together with how it was obtained.
// Lossy is set when invalid byte sequences were replaced during decoding,
// so downstream consumers can discount the text quality.
type Result struct {
	Text     string
	Encoding string
	Lossy    bool
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Decode converts raw bytes to UTF-8 text. It never returns an error:
// a byte-order mark wins, then valid UTF-8, then a UTF-16 heuristic,
// and finally Windows-1252 which maps every byte to some rune.
func Decode(data []byte) Result {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return decodeUTF8(data[len(bomUTF8):])
	case bytes.HasPrefix(data, bomUTF16LE):
		return decodeUTF16(data, unicode.LittleEndian, EncodingUTF16LE)
	case bytes.HasPrefix(data, bomUTF16BE):
		return decodeUTF16(data, unicode.BigEndian, EncodingUTF16BE)
	}
	if utf8.Valid(data) {
		return Result{Text: string(data), Encoding: EncodingUTF8}
	}
	if looksUTF16LE(data) {
		return decodeUTF16(data, unicode.LittleEndian, EncodingUTF16LE)
	}
	return decodeWindows1252(data)
}

func decodeUTF8(data []byte) Result {
	if utf8.Valid(data) {
		return Result{Text: string(data), Encoding: EncodingUTF8}
	}
	// Replace invalid sequences instead of failing.
	return Result{
		Text:     strings.ToValidUTF8(string(data), string(utf8.RuneError)),
		Encoding: EncodingUTF8,
		Lossy:    true,
	}
}

func decodeUTF16(data []byte, endian unicode.Endianness, name string) Result {
	dec := unicode.UTF16(endian, unicode.UseBOM).NewDecoder()
	out, err := dec.Bytes(data)
	if err != nil {
		// The UTF-16 decoder substitutes U+FFFD on its own for most bad
		// input; an error here means truly broken framing.
		return Result{
			Text:     strings.ToValidUTF8(string(out), string(utf8.RuneError)),
			Encoding: name,
			Lossy:    true,
		}
	}
	return Result{Text: string(out), Encoding: name}
}

func decodeWindows1252(data []byte) Result {
	out, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return Result{
			Text:     strings.ToValidUTF8(string(data), string(utf8.RuneError)),
			Encoding: EncodingWindows1252,
			Lossy:    true,
		}
	}
	// Windows-1252 maps every byte, but the guess itself is statistical.
	return Result{Text: string(out), Encoding: EncodingWindows1252, Lossy: true}
}

// looksUTF16LE reports whether the byte stream resembles UTF-16LE text
// without a BOM: ASCII text encoded as UTF-16LE has a NUL in every
// second position.
func looksUTF16LE(data []byte) bool {
	if len(data) < 4 || len(data)%2 != 0 {
		return false
	}
	limit := len(data)
	if limit > 64 {
		limit = 64
	}
	zeros := 0
	for i := 1; i < limit; i += 2 {
		if data[i] == 0x00 {
			zeros++
		}
	}
	return zeros*2 >= limit/2
}
