package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evanfield/guidepost/pkg/adapters/redis"
	"github.com/evanfield/guidepost/pkg/domain"
	"github.com/evanfield/guidepost/pkg/ports"
)

func newTestClient(t *testing.T) *backend.Client {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to start miniredis")
	t.Cleanup(mr.Close)

	return backend.NewClient(&backend.Options{Addr: mr.Addr()})
}

func TestRedisStore_Contract(t *testing.T) {
	store := redis.NewFromClient(newTestClient(t))
	ports.RunStateStoreContract(t, store)
}

func TestRedisStore_TTLExpiration(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	store := redis.NewFromClient(client, redis.WithTTL(time.Second))
	ctx := context.Background()

	s := domain.NewSession("ttl-1", "en")
	s.CurrentID = 12
	require.NoError(t, store.Save(ctx, "ttl-1", s))

	loaded, err := store.Load(ctx, "ttl-1")
	require.NoError(t, err)
	assert.Equal(t, 12, loaded.CurrentID)

	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, "ttl-1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	store := redis.NewFromClient(client, redis.WithPrefix("screening:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "p1", domain.NewSession("p1", "fr")))

	assert.True(t, mr.Exists("screening:p1"))
	assert.False(t, mr.Exists("guidepost:session:p1"))
}

func TestRedisStore_RoundTripPreservesState(t *testing.T) {
	store := redis.NewFromClient(newTestClient(t))
	ctx := context.Background()

	s := domain.NewSession("rt-1", "es")
	s.CurrentID = 40
	s.Status = domain.StatusAwaitingFreeText
	s.Ledger.Record(12, "2")
	s.Ledger.Record(33, "me siento mejor")
	s.Milestones.Mark("screen1", time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))
	s.Transcript = append(s.Transcript,
		domain.TranscriptEntry{Kind: domain.EntryNode, NodeID: 33, Lines: []string{"Cuéntame más."}},
		domain.TranscriptEntry{Kind: domain.EntryUser, NodeID: 33, UserText: "me siento mejor"},
	)

	require.NoError(t, store.Save(ctx, "rt-1", s))
	loaded, err := store.Load(ctx, "rt-1")
	require.NoError(t, err)

	assert.Equal(t, s.Language, loaded.Language)
	assert.Equal(t, s.CurrentID, loaded.CurrentID)
	assert.Equal(t, s.Status, loaded.Status)

	numeric, _ := loaded.Ledger.Get(12)
	assert.True(t, numeric.Numeric)
	text, _ := loaded.Ledger.Get(33)
	assert.False(t, text.Numeric)
	assert.Equal(t, "me siento mejor", text.Raw)

	stamp, ok := loaded.Milestones["screen1"]
	require.True(t, ok)
	assert.True(t, stamp.Equal(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)))

	require.Len(t, loaded.Transcript, 2)
	assert.Equal(t, domain.EntryUser, loaded.Transcript[1].Kind)
}
