//
// Copyright (C) 2025 NETVEXA. All rights reserved.
//
// rag-go is licensed under the Apache License Version 2.0.
//
//

package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "simple",
			in:   "First sentence. Second sentence! Third?",
			want: []string{"First sentence.", "Second sentence!", "Third?"},
		},
		{
			name: "no terminal punctuation",
			in:   "just a fragment",
			want: []string{"just a fragment"},
		},
		{
			name: "decimal point is not a boundary",
			in:   "Version 1.5 shipped. It works.",
			want: []string{"Version 1.5 shipped.", "It works."},
		},
		{
			name: "ellipsis stays together",
			in:   "Wait... okay. Done.",
			want: []string{"Wait...", "okay.", "Done."},
		},
		{
			name: "empty",
			in:   "",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitSentences(tt.in))
		})
	}
}

func TestSplitParagraphs(t *testing.T) {
	in := "para one\nstill one\n\npara two\n\n\n   \npara three"
	want := []string{"para one\nstill one", "para two", "para three"}
	assert.Equal(t, want, SplitParagraphs(in))
}

func TestSplitParagraphsEmpty(t *testing.T) {
	assert.Empty(t, SplitParagraphs("  \n \n "))
}

func TestNormalizeWhitespace(t *testing.T) {
	assert.Equal(t, "a b c", NormalizeWhitespace("  a\n\tb   c "))
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 3, WordCount("one two three"))
	assert.Equal(t, 0, WordCount("   "))
}
