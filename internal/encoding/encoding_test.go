//
// Copyright (C) 2025 NETVEXA. All rights reserved.
//
// rag-go is licensed under the Apache License Version 2.0.
//
//

package encoding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeUTF8(t *testing.T) {
	res := Decode([]byte("hello, 世界"))
	assert.Equal(t, "hello, 世界", res.Text)
	assert.Equal(t, EncodingUTF8, res.Encoding)
	assert.False(t, res.Lossy)
}

func TestDecodeUTF8BOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("with bom")...)
	res := Decode(data)
	assert.Equal(t, "with bom", res.Text)
	assert.Equal(t, EncodingUTF8, res.Encoding)
	assert.False(t, res.Lossy)
}

func TestDecodeUTF16LEBOM(t *testing.T) {
	// "hi" as UTF-16LE with BOM.
	data := []byte{0xFF, 0xFE, 'h', 0x00, 'i', 0x00}
	res := Decode(data)
	assert.Equal(t, "hi", res.Text)
	assert.Equal(t, EncodingUTF16LE, res.Encoding)
}

func TestDecodeUTF16BEBOM(t *testing.T) {
	data := []byte{0xFE, 0xFF, 0x00, 'h', 0x00, 'i'}
	res := Decode(data)
	assert.Equal(t, "hi", res.Text)
	assert.Equal(t, EncodingUTF16BE, res.Encoding)
}

func TestDecodeUTF16LEWithoutBOM(t *testing.T) {
	data := []byte{'h', 0x00, 'e', 0x00, 'l', 0x00, 'l', 0x00, 'o', 0x00}
	res := Decode(data)
	assert.Equal(t, "hello", res.Text)
	assert.Equal(t, EncodingUTF16LE, res.Encoding)
}

func TestDecodeWindows1252Fallback(t *testing.T) {
	// 0xE9 is é in Windows-1252 and invalid standalone UTF-8.
	data := []byte{'c', 'a', 'f', 0xE9}
	res := Decode(data)
	assert.Equal(t, "café", res.Text)
	assert.Equal(t, EncodingWindows1252, res.Encoding)
	assert.True(t, res.Lossy)
}

func TestDecodeEmpty(t *testing.T) {
	res := Decode(nil)
	require.Equal(t, "", res.Text)
	assert.Equal(t, EncodingUTF8, res.Encoding)
}
