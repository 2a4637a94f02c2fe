package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spec-kit/virtual-card-service/internal/cardgen"
	"github.com/spec-kit/virtual-card-service/internal/domain"
	"github.com/spec-kit/virtual-card-service/internal/events"
	"github.com/spec-kit/virtual-card-service/internal/store"
)

// panRetryLimit bounds PAN regeneration on collision. With 14 random
// digits a single retry is already vanishingly unlikely.
const panRetryLimit = 32

// LedgerService owns card issuance, the application lifecycle, balance
// transfers, freezes, and the broadcast payout. Every operation runs as
// one store transaction; notifications are written inside it.
type LedgerService struct {
	store      *store.Store
	dispatcher events.Dispatcher
}

// NewLedgerService constructs the service.
func NewLedgerService(st *store.Store, dispatcher events.Dispatcher) *LedgerService {
	return &LedgerService{store: st, dispatcher: dispatcher}
}

// TransferInput describes a balance transfer request. SourceUserID, when
// set, restricts the source card to that owner.
type TransferInput struct {
	SourceUserID   string
	SourceCardID   string
	DestinationPAN string
	Amount         decimal.Decimal
	Note           string
}

// TransferResult reports the settled balances of both sides.
type TransferResult struct {
	SourceCard      domain.Card
	DestinationCard domain.Card
}

// UserSummary is the admin-facing view of one user.
type UserSummary struct {
	ID        string
	Name      string
	Email     string
	CardCount int
	CreatedAt time.Time
}

// IssueCard creates a card for the user with the given initial balance.
// Negative balances are clamped to zero; the holder name is copied from
// the user at issuance time.
func (s *LedgerService) IssueCard(ctx context.Context, userID string, initialBalance decimal.Decimal) (*domain.Card, error) {
	if initialBalance.Sign() < 0 {
		initialBalance = decimal.Zero
	}

	var card domain.Card
	err := s.store.Update(ctx, func(state *store.State) error {
		user, ok := state.UserByID(userID)
		if !ok {
			return domain.ErrUserNotFound
		}
		now := time.Now().UTC()
		created, err := mintCard(state, user, initialBalance, now)
		if err != nil {
			return err
		}
		state.NotifyUser(user, "New Card Created",
			fmt.Sprintf("A new card with %s balance has been added to your account", formatAmount(initialBalance)), now)
		state.NotifyAdmin("Card Created",
			fmt.Sprintf("Card created for %s with %s balance", user.Name, formatAmount(initialBalance)), now)
		card = *created
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("IssueCard: %w", err)
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:   events.EventCardIssued,
		UserID: card.UserID,
		Actor:  adminActor(),
		Payload: events.CardIssuedPayload{
			CardID:         card.ID,
			MaskedPAN:      card.MaskedPAN(),
			InitialBalance: card.Balance.StringFixed(2),
		},
	})
	return &card, nil
}

// SubmitApplication files a card application for the user. At most one
// pending application per user is allowed.
func (s *LedgerService) SubmitApplication(ctx context.Context, userID string) (*domain.Application, error) {
	var app domain.Application
	err := s.store.Update(ctx, func(state *store.State) error {
		user, ok := state.UserByID(userID)
		if !ok {
			return domain.ErrUserNotFound
		}
		if _, pending := state.PendingApplicationFor(userID); pending {
			return domain.ErrDuplicateApplication
		}
		now := time.Now().UTC()
		created := &domain.Application{
			ID:        uuid.NewString(),
			UserID:    user.ID,
			UserName:  user.Name,
			UserEmail: user.Email,
			Status:    domain.ApplicationStatusPending,
			CreatedAt: now,
		}
		state.AddApplication(created)
		state.NotifyAdmin("New Card Application", fmt.Sprintf("%s applied for a new card", user.Name), now)
		state.NotifyUser(user, "Application Submitted",
			"Your card application has been submitted and is pending review", now)
		app = *created
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("SubmitApplication: %w", err)
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:   events.EventApplicationSubmitted,
		UserID: app.UserID,
		Actor:  userActor(app.UserID),
	})
	return &app, nil
}

// ApproveApplication approves a pending application and issues a card
// with balance zero to its owner. Re-deciding a decided application
// fails.
func (s *LedgerService) ApproveApplication(ctx context.Context, appID string) (*domain.Application, *domain.Card, error) {
	var (
		app  domain.Application
		card domain.Card
	)
	err := s.store.Update(ctx, func(state *store.State) error {
		found, ok := state.ApplicationByID(appID)
		if !ok {
			return domain.ErrApplicationNotFound
		}
		if found.Status != domain.ApplicationStatusPending {
			return domain.ErrApplicationDecided
		}
		user, ok := state.UserByID(found.UserID)
		if !ok {
			return domain.ErrUserNotFound
		}
		now := time.Now().UTC()
		created, err := mintCard(state, user, decimal.Zero, now)
		if err != nil {
			return err
		}
		found.Status = domain.ApplicationStatusApproved
		state.NotifyUser(user, "Card Approved!",
			"Your virtual card has been approved and is ready to use", now)
		state.NotifyAdmin("Card Issued", fmt.Sprintf("New card issued to %s", user.Name), now)
		app = *found
		card = *created
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("ApproveApplication: %w", err)
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:   events.EventApplicationDecided,
		UserID: app.UserID,
		Actor:  adminActor(),
		Payload: events.ApplicationDecidedPayload{
			ApplicationID: app.ID,
			Status:        app.Status,
		},
	})
	return &app, &card, nil
}

// RejectApplication rejects a pending application. Only the user is
// notified.
func (s *LedgerService) RejectApplication(ctx context.Context, appID string) (*domain.Application, error) {
	var app domain.Application
	err := s.store.Update(ctx, func(state *store.State) error {
		found, ok := state.ApplicationByID(appID)
		if !ok {
			return domain.ErrApplicationNotFound
		}
		if found.Status != domain.ApplicationStatusPending {
			return domain.ErrApplicationDecided
		}
		user, ok := state.UserByID(found.UserID)
		if !ok {
			return domain.ErrUserNotFound
		}
		found.Status = domain.ApplicationStatusRejected
		state.NotifyUser(user, "Application Update",
			"Your card application was not approved at this time", time.Now().UTC())
		app = *found
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("RejectApplication: %w", err)
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:   events.EventApplicationDecided,
		UserID: app.UserID,
		Actor:  adminActor(),
		Payload: events.ApplicationDecidedPayload{
			ApplicationID: app.ID,
			Status:        app.Status,
		},
	})
	return &app, nil
}

// Transfer moves funds between two cards. Validation short-circuits on
// the first failure and precedes all mutation; the debit and credit
// apply together or not at all.
func (s *LedgerService) Transfer(ctx context.Context, input TransferInput) (*TransferResult, error) {
	var result TransferResult
	err := s.store.Update(ctx, func(state *store.State) error {
		if input.Amount.Sign() <= 0 {
			return domain.ErrInvalidAmount
		}
		destPAN := strings.Join(strings.Fields(input.DestinationPAN), "")
		if !isDigits(destPAN) || len(destPAN) != cardgen.PANLength {
			return domain.ErrInvalidDestination
		}
		source, ok := state.CardByID(input.SourceCardID)
		if !ok {
			return domain.ErrCardNotFound
		}
		if input.SourceUserID != "" && source.UserID != input.SourceUserID {
			return domain.ErrCardNotFound
		}
		if source.Frozen {
			return domain.ErrCardFrozen
		}
		dest, ok := state.CardByPAN(destPAN)
		if !ok {
			return domain.ErrDestinationNotFound
		}
		if dest.ID == source.ID {
			return domain.ErrSelfTransfer
		}
		if source.Balance.LessThan(input.Amount) {
			return domain.ErrInsufficientFunds
		}

		source.Balance = source.Balance.Sub(input.Amount)
		dest.Balance = dest.Balance.Add(input.Amount)

		now := time.Now().UTC()
		sourceUser, _ := state.UserByID(source.UserID)
		destUser, _ := state.UserByID(dest.UserID)
		amount := formatAmount(input.Amount)
		state.NotifyUser(sourceUser, "Transfer Sent",
			fmt.Sprintf("%s sent to %s", amount, dest.MaskedPAN()), now)
		state.NotifyUser(destUser, "Transfer Received",
			fmt.Sprintf("%s received from %s", amount, sourceUser.Name), now)
		state.NotifyAdmin("Transfer Completed",
			fmt.Sprintf("%s transferred from %s to %s", amount, sourceUser.Name, destUser.Name), now)

		result = TransferResult{SourceCard: *source, DestinationCard: *dest}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("Transfer: %w", err)
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:   events.EventTransferCompleted,
		UserID: result.SourceCard.UserID,
		Actor:  userActor(result.SourceCard.UserID),
		Payload: events.TransferCompletedPayload{
			SourceCardID:      result.SourceCard.ID,
			DestinationCardID: result.DestinationCard.ID,
			Amount:            input.Amount.StringFixed(2),
			Note:              input.Note,
		},
	})
	return &result, nil
}

// SetCardFrozen sets a card's frozen flag. OwnerID, when set, restricts
// the card to that owner. Both the owning user and the admin are
// notified.
func (s *LedgerService) SetCardFrozen(ctx context.Context, ownerID, cardID string, frozen bool) (*domain.Card, error) {
	var card domain.Card
	err := s.store.Update(ctx, func(state *store.State) error {
		found, ok := state.CardByID(cardID)
		if !ok {
			return domain.ErrCardNotFound
		}
		if ownerID != "" && found.UserID != ownerID {
			return domain.ErrCardNotFound
		}
		user, ok := state.UserByID(found.UserID)
		if !ok {
			return domain.ErrUserNotFound
		}
		found.Frozen = frozen
		action := "unfrozen"
		if frozen {
			action = "frozen"
		}
		now := time.Now().UTC()
		state.NotifyUser(user, "Card Status Changed",
			fmt.Sprintf("Your card %s has been %s", found.MaskedPAN(), action), now)
		state.NotifyAdmin("Card Status Change", fmt.Sprintf("%s's card was %s", user.Name, action), now)
		card = *found
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("SetCardFrozen: %w", err)
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:   events.EventCardFreezeChanged,
		UserID: card.UserID,
		Actor:  userActor(card.UserID),
		Payload: events.CardFreezeChangedPayload{
			CardIDs: []string{card.ID},
			Frozen:  card.Frozen,
		},
	})
	return &card, nil
}

// FreezeAllCards freezes every card the user owns, notifying the user
// once and the admin once. A user with no cards is an error.
func (s *LedgerService) FreezeAllCards(ctx context.Context, userID string) (int, error) {
	var frozenIDs []string
	err := s.store.Update(ctx, func(state *store.State) error {
		user, ok := state.UserByID(userID)
		if !ok {
			return domain.ErrUserNotFound
		}
		cards := state.CardsOwnedBy(userID)
		if len(cards) == 0 {
			return domain.ErrUserHasNoCards
		}
		for _, c := range cards {
			c.Frozen = true
			frozenIDs = append(frozenIDs, c.ID)
		}
		now := time.Now().UTC()
		state.NotifyUser(user, "Cards Frozen", "All your cards have been frozen by admin", now)
		state.NotifyAdmin("Cards Frozen", fmt.Sprintf("All cards for %s have been frozen", user.Name), now)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("FreezeAllCards: %w", err)
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:   events.EventCardFreezeChanged,
		UserID: userID,
		Actor:  adminActor(),
		Payload: events.CardFreezeChangedPayload{
			CardIDs: frozenIDs,
			Frozen:  true,
		},
	})
	return len(frozenIDs), nil
}

// BroadcastPayout credits the first-registered card of every card-owning
// user. Users without cards are skipped. Returns the number of users
// affected.
func (s *LedgerService) BroadcastPayout(ctx context.Context, amount decimal.Decimal) (int, error) {
	if amount.Sign() <= 0 {
		return 0, fmt.Errorf("BroadcastPayout: %w", domain.ErrInvalidAmount)
	}

	affected := 0
	err := s.store.Update(ctx, func(state *store.State) error {
		now := time.Now().UTC()
		for _, user := range state.Users {
			cards := state.CardsOwnedBy(user.ID)
			if len(cards) == 0 {
				continue
			}
			cards[0].Balance = cards[0].Balance.Add(amount)
			state.NotifyUser(user, "Payout Received",
				fmt.Sprintf("%s has been added to your account", formatAmount(amount)), now)
			affected++
		}
		state.NotifyAdmin("Broadcast Payout Sent",
			fmt.Sprintf("%s sent to %d users", formatAmount(amount), affected), now)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("BroadcastPayout: %w", err)
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:  events.EventPayoutBroadcast,
		Actor: adminActor(),
		Payload: events.PayoutBroadcastPayload{
			Amount:        amount.StringFixed(2),
			UsersAffected: affected,
		},
	})
	return affected, nil
}

// UserCards lists a user's cards in registration order.
func (s *LedgerService) UserCards(userID string) []domain.Card {
	var cards []domain.Card
	s.store.View(func(state *store.State) {
		for _, c := range state.CardsOwnedBy(userID) {
			cards = append(cards, *c)
		}
	})
	return cards
}

// ListUsers returns admin-facing summaries of all users in signup order.
func (s *LedgerService) ListUsers() []UserSummary {
	var users []UserSummary
	s.store.View(func(state *store.State) {
		for _, u := range state.Users {
			users = append(users, UserSummary{
				ID:        u.ID,
				Name:      u.Name,
				Email:     u.Email,
				CardCount: len(state.CardsOwnedBy(u.ID)),
				CreatedAt: u.CreatedAt,
			})
		}
	})
	return users
}

// ListApplications returns applications, optionally filtered by status.
func (s *LedgerService) ListApplications(status domain.ApplicationStatus) []domain.Application {
	var apps []domain.Application
	s.store.View(func(state *store.State) {
		for _, a := range state.Applications {
			if status != "" && a.Status != status {
				continue
			}
			apps = append(apps, *a)
		}
	})
	return apps
}

// Reset discards the whole store, returning the demo to empty state.
func (s *LedgerService) Reset(ctx context.Context) error {
	return s.store.Reset(ctx)
}

// mintCard creates a card for the user with a PAN unique across all
// existing cards, retrying generation on collision.
func mintCard(state *store.State, user *domain.User, balance decimal.Decimal, now time.Time) (*domain.Card, error) {
	var pan string
	for attempt := 0; ; attempt++ {
		if attempt >= panRetryLimit {
			return nil, fmt.Errorf("mintCard: pan collision retry limit reached")
		}
		candidate, err := cardgen.PAN()
		if err != nil {
			return nil, err
		}
		if _, taken := state.CardByPAN(candidate); !taken {
			pan = candidate
			break
		}
	}
	cvv, err := cardgen.CVV()
	if err != nil {
		return nil, err
	}
	expiry, err := cardgen.Expiry(now)
	if err != nil {
		return nil, err
	}

	card := &domain.Card{
		ID:         uuid.NewString(),
		UserID:     user.ID,
		PAN:        pan,
		CVV:        cvv,
		Expiry:     expiry,
		HolderName: user.Name,
		Balance:    balance,
		CreatedAt:  now,
	}
	state.AddCard(card)
	return card, nil
}

func formatAmount(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now().UTC()
	_ = dispatcher.Publish(ctx, event)
}

func userActor(userID string) events.Actor {
	return events.Actor{Type: domain.SubjectTypeUser, UserID: &userID}
}

func adminActor() events.Actor {
	return events.Actor{Type: domain.SubjectTypeAdmin}
}
