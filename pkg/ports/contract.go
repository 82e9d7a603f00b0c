package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evanfield/guidepost/pkg/domain"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore
// implementation adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		s := domain.NewSession(sessionID, "en")
		s.CurrentID = 12
		s.Ledger.Record(10, "2")
		s.Milestones.Mark("screen1", time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))
		s.Transcript = append(s.Transcript, domain.TranscriptEntry{
			Kind:   domain.EntryNode,
			NodeID: 12,
			Lines:  []string{"Little interest or pleasure in doing things?"},
		})

		err := store.Save(ctx, sessionID, s)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, s.CurrentID, loaded.CurrentID)
		assert.Equal(t, s.Language, loaded.Language)
		assert.Equal(t, s.Status, loaded.Status)

		answer, ok := loaded.Ledger.Get(10)
		require.True(t, ok)
		assert.True(t, answer.Numeric)
		assert.Equal(t, 2, answer.Value)

		_, ok = loaded.Milestones["screen1"]
		assert.True(t, ok)
		require.Len(t, loaded.Transcript, 1)
		assert.Equal(t, 12, loaded.Transcript[0].NodeID)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewSession(sessionID, "en"))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewSession(id1, "en"))
		_ = store.Save(ctx, id2, domain.NewSession(id2, "es"))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
