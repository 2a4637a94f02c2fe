package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/virtual-card-service/internal/domain"
	"github.com/spec-kit/virtual-card-service/internal/persistence"
	"github.com/spec-kit/virtual-card-service/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(context.Background(), persistence.NewMemoryBlobStore(), zap.NewNop())
	require.NoError(t, err)
	return st
}

func seedUser(t *testing.T, st *store.Store, id, name, email string) *domain.User {
	t.Helper()
	user := &domain.User{
		ID:        id,
		Name:      name,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	err := st.Update(context.Background(), func(state *store.State) error {
		state.AddUser(user)
		return nil
	})
	require.NoError(t, err)
	return user
}

func seedCard(t *testing.T, st *store.Store, id, userID, pan, balance string) *domain.Card {
	t.Helper()
	card := &domain.Card{
		ID:        id,
		UserID:    userID,
		PAN:       pan,
		CVV:       "123",
		Expiry:    "04/29",
		Balance:   decimal.RequireFromString(balance),
		CreatedAt: time.Now().UTC(),
	}
	err := st.Update(context.Background(), func(state *store.State) error {
		state.AddCard(card)
		return nil
	})
	require.NoError(t, err)
	return card
}

func cardBalance(t *testing.T, st *store.Store, cardID string) decimal.Decimal {
	t.Helper()
	var balance decimal.Decimal
	st.View(func(state *store.State) {
		card, ok := state.CardByID(cardID)
		require.True(t, ok)
		balance = card.Balance
	})
	return balance
}

func userNotificationTitles(st *store.Store, userID string) []string {
	var titles []string
	st.View(func(state *store.State) {
		user, ok := state.UserByID(userID)
		if !ok {
			return
		}
		for _, n := range user.Notifications {
			titles = append(titles, n.Title)
		}
	})
	return titles
}

func TestTransferValidation(t *testing.T) {
	const (
		alicePAN = "4000000000000002"
		bobPAN   = "4111111111111111"
	)

	setup := func(t *testing.T) (*LedgerService, *store.Store) {
		st := newTestStore(t)
		seedUser(t, st, "alice", "Alice", "alice@example.com")
		seedUser(t, st, "bob", "Bob", "bob@example.com")
		seedCard(t, st, "card-alice", "alice", alicePAN, "100.00")
		seedCard(t, st, "card-bob", "bob", bobPAN, "10.00")
		return NewLedgerService(st, nil), st
	}

	cases := []struct {
		name    string
		input   TransferInput
		wantErr error
	}{
		{
			name: "zero amount",
			input: TransferInput{
				SourceUserID:   "alice",
				SourceCardID:   "card-alice",
				DestinationPAN: bobPAN,
				Amount:         decimal.Zero,
			},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name: "negative amount",
			input: TransferInput{
				SourceUserID:   "alice",
				SourceCardID:   "card-alice",
				DestinationPAN: bobPAN,
				Amount:         decimal.RequireFromString("-5"),
			},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name: "malformed destination",
			input: TransferInput{
				SourceUserID:   "alice",
				SourceCardID:   "card-alice",
				DestinationPAN: "4111-1111",
				Amount:         decimal.RequireFromString("5"),
			},
			wantErr: domain.ErrInvalidDestination,
		},
		{
			name: "unknown source card",
			input: TransferInput{
				SourceUserID:   "alice",
				SourceCardID:   "card-ghost",
				DestinationPAN: bobPAN,
				Amount:         decimal.RequireFromString("5"),
			},
			wantErr: domain.ErrCardNotFound,
		},
		{
			name: "source owned by someone else",
			input: TransferInput{
				SourceUserID:   "alice",
				SourceCardID:   "card-bob",
				DestinationPAN: alicePAN,
				Amount:         decimal.RequireFromString("5"),
			},
			wantErr: domain.ErrCardNotFound,
		},
		{
			name: "unknown destination",
			input: TransferInput{
				SourceUserID:   "alice",
				SourceCardID:   "card-alice",
				DestinationPAN: "4999999999999999",
				Amount:         decimal.RequireFromString("5"),
			},
			wantErr: domain.ErrDestinationNotFound,
		},
		{
			name: "self transfer",
			input: TransferInput{
				SourceUserID:   "alice",
				SourceCardID:   "card-alice",
				DestinationPAN: alicePAN,
				Amount:         decimal.RequireFromString("5"),
			},
			wantErr: domain.ErrSelfTransfer,
		},
		{
			name: "insufficient funds",
			input: TransferInput{
				SourceUserID:   "alice",
				SourceCardID:   "card-alice",
				DestinationPAN: bobPAN,
				Amount:         decimal.RequireFromString("100.01"),
			},
			wantErr: domain.ErrInsufficientFunds,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, st := setup(t)
			_, err := svc.Transfer(context.Background(), tc.input)
			require.ErrorIs(t, err, tc.wantErr)

			// a failed transfer must leave both balances untouched
			require.True(t, cardBalance(t, st, "card-alice").Equal(decimal.RequireFromString("100.00")))
			require.True(t, cardBalance(t, st, "card-bob").Equal(decimal.RequireFromString("10.00")))
		})
	}
}

func TestTransferFrozenSource(t *testing.T) {
	st := newTestStore(t)
	seedUser(t, st, "alice", "Alice", "alice@example.com")
	seedUser(t, st, "bob", "Bob", "bob@example.com")
	seedCard(t, st, "card-alice", "alice", "4000000000000002", "100.00")
	seedCard(t, st, "card-bob", "bob", "4111111111111111", "10.00")
	svc := NewLedgerService(st, nil)

	_, err := svc.SetCardFrozen(context.Background(), "alice", "card-alice", true)
	require.NoError(t, err)

	_, err = svc.Transfer(context.Background(), TransferInput{
		SourceUserID:   "alice",
		SourceCardID:   "card-alice",
		DestinationPAN: "4111111111111111",
		Amount:         decimal.RequireFromString("5"),
	})
	require.ErrorIs(t, err, domain.ErrCardFrozen)
}

func TestTransferSuccess(t *testing.T) {
	st := newTestStore(t)
	seedUser(t, st, "alice", "Alice", "alice@example.com")
	seedUser(t, st, "bob", "Bob", "bob@example.com")
	seedCard(t, st, "card-alice", "alice", "4000000000000002", "100.00")
	seedCard(t, st, "card-bob", "bob", "4111111111111111", "10.00")
	svc := NewLedgerService(st, nil)

	// whitespace in the destination PAN is stripped before matching
	result, err := svc.Transfer(context.Background(), TransferInput{
		SourceUserID:   "alice",
		SourceCardID:   "card-alice",
		DestinationPAN: "4111 1111 1111 1111",
		Amount:         decimal.RequireFromString("40.00"),
	})
	require.NoError(t, err)
	require.True(t, result.SourceCard.Balance.Equal(decimal.RequireFromString("60.00")))
	require.True(t, result.DestinationCard.Balance.Equal(decimal.RequireFromString("50.00")))

	require.True(t, cardBalance(t, st, "card-alice").Equal(decimal.RequireFromString("60.00")))
	require.True(t, cardBalance(t, st, "card-bob").Equal(decimal.RequireFromString("50.00")))

	require.Contains(t, userNotificationTitles(st, "alice"), "Transfer Sent")
	require.Contains(t, userNotificationTitles(st, "bob"), "Transfer Received")
	st.View(func(state *store.State) {
		require.Len(t, state.AdminNotifications, 1)
		require.Equal(t, "Transfer Completed", state.AdminNotifications[0].Title)
	})
}

func TestIssueCard(t *testing.T) {
	st := newTestStore(t)
	seedUser(t, st, "alice", "Alice", "alice@example.com")
	svc := NewLedgerService(st, nil)

	card, err := svc.IssueCard(context.Background(), "alice", decimal.RequireFromString("250.00"))
	require.NoError(t, err)
	require.Equal(t, "alice", card.UserID)
	require.Equal(t, "Alice", card.HolderName)
	require.True(t, card.Balance.Equal(decimal.RequireFromString("250.00")))
	require.Len(t, card.PAN, 16)

	require.Contains(t, userNotificationTitles(st, "alice"), "New Card Created")
}

func TestIssueCardClampsNegativeBalance(t *testing.T) {
	st := newTestStore(t)
	seedUser(t, st, "alice", "Alice", "alice@example.com")
	svc := NewLedgerService(st, nil)

	card, err := svc.IssueCard(context.Background(), "alice", decimal.RequireFromString("-50"))
	require.NoError(t, err)
	require.True(t, card.Balance.IsZero())
}

func TestIssueCardUnknownUser(t *testing.T) {
	svc := NewLedgerService(newTestStore(t), nil)
	_, err := svc.IssueCard(context.Background(), "ghost", decimal.Zero)
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestApplicationLifecycle(t *testing.T) {
	st := newTestStore(t)
	seedUser(t, st, "alice", "Alice", "alice@example.com")
	svc := NewLedgerService(st, nil)
	ctx := context.Background()

	app, err := svc.SubmitApplication(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, domain.ApplicationStatusPending, app.Status)
	require.Equal(t, "Alice", app.UserName)

	// a second application while one is pending is refused
	_, err = svc.SubmitApplication(ctx, "alice")
	require.ErrorIs(t, err, domain.ErrDuplicateApplication)

	approved, card, err := svc.ApproveApplication(ctx, app.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ApplicationStatusApproved, approved.Status)
	require.Equal(t, "alice", card.UserID)
	require.True(t, card.Balance.IsZero())

	// decisions are final
	_, _, err = svc.ApproveApplication(ctx, app.ID)
	require.ErrorIs(t, err, domain.ErrApplicationDecided)
	_, err = svc.RejectApplication(ctx, app.ID)
	require.ErrorIs(t, err, domain.ErrApplicationDecided)

	// the pending slot is free again
	second, err := svc.SubmitApplication(ctx, "alice")
	require.NoError(t, err)

	rejected, err := svc.RejectApplication(ctx, second.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ApplicationStatusRejected, rejected.Status)

	// rejection never mints a card; only the approval above did
	st.View(func(state *store.State) {
		require.Len(t, state.CardsOwnedBy("alice"), 1)
	})

	require.Contains(t, userNotificationTitles(st, "alice"), "Card Approved!")
	require.Contains(t, userNotificationTitles(st, "alice"), "Application Update")
}

func TestListApplicationsFilter(t *testing.T) {
	st := newTestStore(t)
	seedUser(t, st, "alice", "Alice", "alice@example.com")
	seedUser(t, st, "bob", "Bob", "bob@example.com")
	svc := NewLedgerService(st, nil)
	ctx := context.Background()

	appA, err := svc.SubmitApplication(ctx, "alice")
	require.NoError(t, err)
	_, err = svc.SubmitApplication(ctx, "bob")
	require.NoError(t, err)
	_, _, err = svc.ApproveApplication(ctx, appA.ID)
	require.NoError(t, err)

	require.Len(t, svc.ListApplications(""), 2)
	pending := svc.ListApplications(domain.ApplicationStatusPending)
	require.Len(t, pending, 1)
	require.Equal(t, "bob", pending[0].UserID)
}

func TestSetCardFrozenOwnership(t *testing.T) {
	st := newTestStore(t)
	seedUser(t, st, "alice", "Alice", "alice@example.com")
	seedUser(t, st, "bob", "Bob", "bob@example.com")
	seedCard(t, st, "card-bob", "bob", "4111111111111111", "10.00")
	svc := NewLedgerService(st, nil)

	// freezing someone else's card reads as not found
	_, err := svc.SetCardFrozen(context.Background(), "alice", "card-bob", true)
	require.ErrorIs(t, err, domain.ErrCardNotFound)

	card, err := svc.SetCardFrozen(context.Background(), "bob", "card-bob", true)
	require.NoError(t, err)
	require.True(t, card.Frozen)

	card, err = svc.SetCardFrozen(context.Background(), "", "card-bob", false)
	require.NoError(t, err)
	require.False(t, card.Frozen)
}

func TestFreezeAllCards(t *testing.T) {
	st := newTestStore(t)
	seedUser(t, st, "alice", "Alice", "alice@example.com")
	seedUser(t, st, "bob", "Bob", "bob@example.com")
	seedCard(t, st, "card-a1", "alice", "4000000000000002", "10.00")
	seedCard(t, st, "card-a2", "alice", "4111111111111111", "20.00")
	svc := NewLedgerService(st, nil)

	count, err := svc.FreezeAllCards(context.Background(), "alice")
	require.NoError(t, err)
	require.Equal(t, 2, count)

	st.View(func(state *store.State) {
		for _, c := range state.CardsOwnedBy("alice") {
			require.True(t, c.Frozen)
		}
	})
	require.Contains(t, userNotificationTitles(st, "alice"), "Cards Frozen")

	_, err = svc.FreezeAllCards(context.Background(), "bob")
	require.ErrorIs(t, err, domain.ErrUserHasNoCards)

	_, err = svc.FreezeAllCards(context.Background(), "ghost")
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestBroadcastPayout(t *testing.T) {
	st := newTestStore(t)
	seedUser(t, st, "alice", "Alice", "alice@example.com")
	seedUser(t, st, "bob", "Bob", "bob@example.com")
	seedUser(t, st, "carol", "Carol", "carol@example.com")
	seedCard(t, st, "card-a1", "alice", "4000000000000002", "10.00")
	seedCard(t, st, "card-a2", "alice", "4111111111111111", "20.00")
	seedCard(t, st, "card-b1", "bob", "4222222222222220", "0.00")
	svc := NewLedgerService(st, nil)

	affected, err := svc.BroadcastPayout(context.Background(), decimal.RequireFromString("25.00"))
	require.NoError(t, err)
	require.Equal(t, 2, affected)

	// only the first-registered card of each carded user is credited
	require.True(t, cardBalance(t, st, "card-a1").Equal(decimal.RequireFromString("35.00")))
	require.True(t, cardBalance(t, st, "card-a2").Equal(decimal.RequireFromString("20.00")))
	require.True(t, cardBalance(t, st, "card-b1").Equal(decimal.RequireFromString("25.00")))

	require.Contains(t, userNotificationTitles(st, "alice"), "Payout Received")
	require.NotContains(t, userNotificationTitles(st, "carol"), "Payout Received")

	_, err = svc.BroadcastPayout(context.Background(), decimal.Zero)
	require.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestListUsers(t *testing.T) {
	st := newTestStore(t)
	seedUser(t, st, "alice", "Alice", "alice@example.com")
	seedUser(t, st, "bob", "Bob", "bob@example.com")
	seedCard(t, st, "card-a1", "alice", "4000000000000002", "10.00")
	svc := NewLedgerService(st, nil)

	users := svc.ListUsers()
	require.Len(t, users, 2)
	require.Equal(t, "alice", users[0].ID)
	require.Equal(t, 1, users[0].CardCount)
	require.Equal(t, 0, users[1].CardCount)
}
