package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordStore_SearchMatchesAnyTerm(t *testing.T) {
	s := NewKeywordStore()
	ctx := context.Background()

	require.NoError(t, s.Store(ctx, "assistant", "User prefers metric units", nil))
	require.NoError(t, s.Store(ctx, "assistant", "User is planning a trip to Kyoto", nil))

	entries, err := s.Search(ctx, "assistant", "kyoto weather", 5)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Content, "Kyoto")
}

func TestKeywordStore_NewestFirst(t *testing.T) {
	s := NewKeywordStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Store(ctx, "assistant", fmt.Sprintf("note %d about gophers", i), nil))
	}

	entries, err := s.Search(ctx, "assistant", "gophers", 5)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Contains(t, entries[0].Content, "note 2")
	assert.Contains(t, entries[2].Content, "note 0")
}

func TestKeywordStore_LimitApplied(t *testing.T) {
	s := NewKeywordStore()
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, s.Store(ctx, "assistant", fmt.Sprintf("fact %d", i), nil))
	}

	entries, err := s.Search(ctx, "assistant", "fact", 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestKeywordStore_IsolatedPerAgent(t *testing.T) {
	s := NewKeywordStore()
	ctx := context.Background()

	require.NoError(t, s.Store(ctx, "researcher", "canal construction timeline", nil))

	entries, err := s.Search(ctx, "writer", "canal", 5)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestKeywordStore_EmptyQuery(t *testing.T) {
	s := NewKeywordStore()
	ctx := context.Background()

	require.NoError(t, s.Store(ctx, "assistant", "anything", nil))

	entries, err := s.Search(ctx, "assistant", "   ", 5)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNoopStore(t *testing.T) {
	var s Store = NoopStore{}
	ctx := context.Background()

	require.NoError(t, s.Store(ctx, "assistant", "remember this", nil))
	entries, err := s.Search(ctx, "assistant", "remember", 5)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
