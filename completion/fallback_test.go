//
// Copyright (C) 2025 NETVEXA. All rights reserved.
//
// rag-go is licensed under the Apache License Version 2.0.
//
//

package completion

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	name      string
	reply     string
	err       error
	streamErr error
	calls     int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Complete(_ context.Context, _ *Request) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeProvider) Stream(_ context.Context, _ *Request) (<-chan Chunk, error) {
	f.calls++
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	ch := make(chan Chunk, 2)
	ch <- Chunk{Content: f.reply}
	ch <- Chunk{Done: true}
	close(ch)
	return ch, nil
}

func TestChainUsesFirstHealthyProvider(t *testing.T) {
	primary := &fakeProvider{name: "primary", reply: "from primary"}
	backup := &fakeProvider{name: "backup", reply: "from backup"}
	chain := NewChain(primary, backup)

	text, err := chain.Complete(context.Background(), &Request{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "from primary", text)
	assert.Equal(t, 0, backup.calls, "backup must not be touched")
}

func TestChainFallsBackInOrder(t *testing.T) {
	primary := &fakeProvider{name: "primary", err: errors.New("quota exceeded")}
	backup := &fakeProvider{name: "backup", reply: "from backup"}
	chain := NewChain(primary, backup)

	text, err := chain.Complete(context.Background(), &Request{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "from backup", text)
	assert.Equal(t, 1, primary.calls)
}

func TestChainAllFailed(t *testing.T) {
	a := &fakeProvider{name: "a", err: errors.New("down")}
	b := &fakeProvider{name: "b", err: errors.New("also down")}
	chain := NewChain(a, b)

	_, err := chain.Complete(context.Background(), &Request{Prompt: "hi"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllProvidersFailed)
	assert.Contains(t, err.Error(), "down")
	assert.Contains(t, err.Error(), "also down")
}

func TestChainReportsProviderUsed(t *testing.T) {
	primary := &fakeProvider{name: "primary", err: errors.New("quota exceeded")}
	backup := &fakeProvider{name: "backup", reply: "from backup"}
	chain := NewChain(primary, backup)

	assert.Empty(t, chain.LastUsed(), "no provider used before the first request")

	_, err := chain.Complete(context.Background(), &Request{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "backup", chain.LastUsed())

	primary.err = nil
	_, err = chain.Complete(context.Background(), &Request{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "primary", chain.LastUsed())
}

func TestChainWithoutProviders(t *testing.T) {
	chain := NewChain()

	_, err := chain.Complete(context.Background(), &Request{Prompt: "hi"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllProvidersFailed)
	assert.NotContains(t, err.Error(), "%!w")

	_, err = chain.Stream(context.Background(), &Request{Prompt: "hi"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllProvidersFailed)
	assert.NotContains(t, err.Error(), "%!w")
}

func TestChainStreamFallsBackBeforeFirstChunkOnly(t *testing.T) {
	primary := &fakeProvider{name: "primary", streamErr: errors.New("refused")}
	backup := &fakeProvider{name: "backup", reply: "streamed"}
	chain := NewChain(primary, backup)

	ch, err := chain.Stream(context.Background(), &Request{Prompt: "hi"})
	require.NoError(t, err)

	var got string
	for c := range ch {
		require.NoError(t, c.Err)
		got += c.Content
	}
	assert.Equal(t, "streamed", got)
}

func TestChainRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	failing := &fakeProvider{name: "a", err: errors.New("down")}
	untouched := &fakeProvider{name: "b", reply: "ok"}
	chain := NewChain(failing, untouched)

	_, err := chain.Complete(ctx, &Request{Prompt: "hi"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, untouched.calls)
}

func TestRequestDefaults(t *testing.T) {
	r := &Request{Prompt: "hi"}
	assert.Equal(t, DefaultMaxTokens, r.maxTokens())
	assert.Equal(t, DefaultTemperature, r.temperature())

	temp := 0.2
	r = &Request{Prompt: "hi", MaxTokens: 64, Temperature: &temp}
	assert.Equal(t, 64, r.maxTokens())
	assert.Equal(t, 0.2, r.temperature())
}
