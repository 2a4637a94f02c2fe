package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/virtual-card-service/internal/domain"
	"github.com/spec-kit/virtual-card-service/internal/persistence"
)

func seedState(t *testing.T, st *Store) {
	t.Helper()
	now := time.Date(2026, time.January, 5, 12, 0, 0, 0, time.UTC)
	err := st.Update(context.Background(), func(s *State) error {
		user := &domain.User{ID: "u1", Name: "Ada", Email: "ada@example.com", CreatedAt: now}
		s.AddUser(user)
		s.AddCard(&domain.Card{
			ID:         "c1",
			UserID:     "u1",
			PAN:        "4000000000000002",
			CVV:        "123",
			Expiry:     "04/29",
			HolderName: "Ada",
			Balance:    decimal.RequireFromString("125.50"),
			CreatedAt:  now,
		})
		s.AddApplication(&domain.Application{
			ID:        "a1",
			UserID:    "u1",
			Status:    domain.ApplicationStatusPending,
			CreatedAt: now,
		})
		s.NotifyUser(user, "Hello", "welcome", now)
		s.NotifyAdmin("Signup", "Ada registered", now)
		s.UpsertInboxEntry(user, "hi there", now)
		return nil
	})
	require.NoError(t, err)
}

func TestSnapshotRoundTrip(t *testing.T) {
	blob := persistence.NewMemoryBlobStore()
	ctx := context.Background()

	st, err := Open(ctx, blob, zap.NewNop())
	require.NoError(t, err)
	seedState(t, st)

	// reopen from the same blob; indexes must be rebuilt from the snapshot
	reopened, err := Open(ctx, blob, zap.NewNop())
	require.NoError(t, err)

	reopened.View(func(s *State) {
		user, ok := s.UserByEmail("ada@example.com")
		require.True(t, ok)
		require.Equal(t, "u1", user.ID)
		require.Len(t, user.Notifications, 1)
		require.False(t, user.Notifications[0].Read)

		card, ok := s.CardByPAN("4000000000000002")
		require.True(t, ok)
		require.True(t, card.Balance.Equal(decimal.RequireFromString("125.50")))

		require.Len(t, s.CardsOwnedBy("u1"), 1)

		app, ok := s.ApplicationByID("a1")
		require.True(t, ok)
		require.Equal(t, domain.ApplicationStatusPending, app.Status)

		_, pending := s.PendingApplicationFor("u1")
		require.True(t, pending)

		entry, ok := s.InboxEntryFor("u1")
		require.True(t, ok)
		require.Equal(t, "hi there", entry.LastMessage)
		require.True(t, entry.Unread)

		require.Len(t, s.AdminNotifications, 1)
	})
}

func TestUpdateErrorDoesNotFlush(t *testing.T) {
	blob := persistence.NewMemoryBlobStore()
	ctx := context.Background()

	st, err := Open(ctx, blob, zap.NewNop())
	require.NoError(t, err)
	seedState(t, st)

	err = st.Update(ctx, func(s *State) error {
		return domain.ErrUserNotFound
	})
	require.ErrorIs(t, err, domain.ErrUserNotFound)

	reopened, err := Open(ctx, blob, zap.NewNop())
	require.NoError(t, err)
	reopened.View(func(s *State) {
		require.Len(t, s.Users, 1)
	})
}

func TestReset(t *testing.T) {
	blob := persistence.NewMemoryBlobStore()
	ctx := context.Background()

	st, err := Open(ctx, blob, zap.NewNop())
	require.NoError(t, err)
	seedState(t, st)

	require.NoError(t, st.Reset(ctx))

	st.View(func(s *State) {
		require.Empty(t, s.Users)
		require.Empty(t, s.Cards)
		require.Empty(t, s.Applications)
		require.Empty(t, s.AdminInbox)
		require.Empty(t, s.AdminNotifications)
	})

	// the persisted snapshot is gone too
	raw, err := blob.Load(ctx)
	require.NoError(t, err)
	require.Nil(t, raw)
}

func TestUpsertInboxEntryUpdatesInPlace(t *testing.T) {
	blob := persistence.NewMemoryBlobStore()
	st, err := Open(context.Background(), blob, zap.NewNop())
	require.NoError(t, err)
	seedState(t, st)

	err = st.Update(context.Background(), func(s *State) error {
		user, _ := s.UserByID("u1")
		s.UpsertInboxEntry(user, "second message", time.Now().UTC())
		return nil
	})
	require.NoError(t, err)

	st.View(func(s *State) {
		require.Len(t, s.AdminInbox, 1)
		require.Equal(t, "second message", s.AdminInbox[0].LastMessage)
	})
}
