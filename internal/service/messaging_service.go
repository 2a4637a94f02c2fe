package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/virtual-card-service/internal/domain"
	"github.com/spec-kit/virtual-card-service/internal/events"
	"github.com/spec-kit/virtual-card-service/internal/store"
)

// MessagingService owns the per-user support conversations and the admin
// inbox summaries.
type MessagingService struct {
	store      *store.Store
	dispatcher events.Dispatcher
}

// NewMessagingService constructs the service.
func NewMessagingService(st *store.Store, dispatcher events.Dispatcher) *MessagingService {
	return &MessagingService{store: st, dispatcher: dispatcher}
}

// PostUserMessage appends a user-authored message to the conversation,
// upserts the admin inbox entry, and notifies the admin.
func (s *MessagingService) PostUserMessage(ctx context.Context, userID, content string) (*domain.Message, error) {
	content = strings.TrimSpace(content)

	var msg domain.Message
	err := s.store.Update(ctx, func(state *store.State) error {
		user, ok := state.UserByID(userID)
		if !ok {
			return domain.ErrUserNotFound
		}
		now := time.Now().UTC()
		msg = domain.Message{
			ID:        uuid.NewString(),
			Sender:    domain.SenderUser,
			Content:   content,
			CreatedAt: now,
		}
		user.Messages = append(user.Messages, msg)
		state.UpsertInboxEntry(user, content, now)
		state.NotifyAdmin("New Message", fmt.Sprintf("%s sent a message", user.Name), now)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("PostUserMessage: %w", err)
	}

	s.publishPosted(ctx, userID, msg)
	return &msg, nil
}

// PostAdminMessage appends an admin-authored reply to a user's
// conversation and notifies the user. The inbox summary is untouched.
func (s *MessagingService) PostAdminMessage(ctx context.Context, userID, content string) (*domain.Message, error) {
	content = strings.TrimSpace(content)

	var msg domain.Message
	err := s.store.Update(ctx, func(state *store.State) error {
		user, ok := state.UserByID(userID)
		if !ok {
			return domain.ErrUserNotFound
		}
		now := time.Now().UTC()
		msg = domain.Message{
			ID:        uuid.NewString(),
			Sender:    domain.SenderAdmin,
			Content:   content,
			CreatedAt: now,
		}
		user.Messages = append(user.Messages, msg)
		state.NotifyUser(user, "New Message from Admin", content, now)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("PostAdminMessage: %w", err)
	}

	s.publishPosted(ctx, userID, msg)
	return &msg, nil
}

// Conversation returns a user's message sequence in arrival order.
func (s *MessagingService) Conversation(userID string) ([]domain.Message, error) {
	var (
		msgs  []domain.Message
		found bool
	)
	s.store.View(func(state *store.State) {
		user, ok := state.UserByID(userID)
		if !ok {
			return
		}
		found = true
		msgs = append(msgs, user.Messages...)
	})
	if !found {
		return nil, fmt.Errorf("Conversation: %w", domain.ErrUserNotFound)
	}
	return msgs, nil
}

// OpenConversation returns a user's messages and clears the unread flag
// on the admin inbox entry, mirroring the admin selecting that
// conversation.
func (s *MessagingService) OpenConversation(ctx context.Context, userID string) ([]domain.Message, error) {
	var msgs []domain.Message
	err := s.store.Update(ctx, func(state *store.State) error {
		user, ok := state.UserByID(userID)
		if !ok {
			return domain.ErrUserNotFound
		}
		if entry, ok := state.InboxEntryFor(userID); ok {
			entry.Unread = false
		}
		msgs = append(msgs, user.Messages...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("OpenConversation: %w", err)
	}
	return msgs, nil
}

// Inbox returns the admin inbox entries in first-contact order.
func (s *MessagingService) Inbox() []domain.InboxEntry {
	var entries []domain.InboxEntry
	s.store.View(func(state *store.State) {
		for _, e := range state.AdminInbox {
			entries = append(entries, *e)
		}
	})
	return entries
}

func (s *MessagingService) publishPosted(ctx context.Context, userID string, msg domain.Message) {
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:   events.EventMessagePosted,
		UserID: userID,
		Actor:  actorForSender(msg.Sender, userID),
		Payload: events.MessagePostedPayload{
			MessageID:   msg.ID,
			Sender:      msg.Sender,
			BodyPreview: stringPreview(msg.Content, 120),
		},
	})
}

func actorForSender(sender domain.MessageSender, userID string) events.Actor {
	if sender == domain.SenderAdmin {
		return adminActor()
	}
	return userActor(userID)
}

func stringPreview(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
