package sessions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreGetMissing(t *testing.T) {
	store := NewMemoryStore()
	s, err := store.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestMemoryStorePutResetsHistory(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Put(ctx, &Session{ID: "a", WebsiteURL: "https://example.com", WebsiteContent: "text"}))
	require.NoError(t, store.AppendTurns(ctx, "a", Turn{Role: RoleUser, Content: "q"}, Turn{Role: RoleAI, Content: "a"}))

	s, err := store.Get(ctx, "a")
	require.NoError(t, err)
	require.Len(t, s.ChatHistory, 2)
	created := s.CreatedAt

	require.NoError(t, store.Put(ctx, &Session{ID: "a", WebsiteURL: "https://example.org", WebsiteContent: "other"}))
	s, err = store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, s.ChatHistory)
	assert.NotNil(t, s.ChatHistory)
	assert.Equal(t, "https://example.org", s.WebsiteURL)
	assert.Equal(t, created, s.CreatedAt)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Put(ctx, &Session{ID: "a"}))

	s, _ := store.Get(ctx, "a")
	s.ChatHistory = append(s.ChatHistory, Turn{Role: RoleUser, Content: "local only"})

	again, _ := store.Get(ctx, "a")
	assert.Empty(t, again.ChatHistory)
}

func TestMemoryStoreAppendUnknown(t *testing.T) {
	store := NewMemoryStore()
	err := store.AppendTurns(context.Background(), "ghost", Turn{Role: RoleUser, Content: "q"})
	assert.Error(t, err)
}

func TestMemoryStorePutRequiresID(t *testing.T) {
	store := NewMemoryStore()
	assert.Error(t, store.Put(context.Background(), &Session{}))
	assert.Error(t, store.Put(context.Background(), nil))
}
