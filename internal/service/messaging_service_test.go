package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/virtual-card-service/internal/domain"
)

func TestPostUserMessageUpsertsInbox(t *testing.T) {
	st := newTestStore(t)
	seedUser(t, st, "alice", "Alice", "alice@example.com")
	svc := NewMessagingService(st, nil)
	ctx := context.Background()

	msg, err := svc.PostUserMessage(ctx, "alice", "  first question  ")
	require.NoError(t, err)
	require.Equal(t, domain.SenderUser, msg.Sender)
	require.Equal(t, "first question", msg.Content)

	_, err = svc.PostUserMessage(ctx, "alice", "second question")
	require.NoError(t, err)

	// two messages, but still a single inbox entry updated in place
	inbox := svc.Inbox()
	require.Len(t, inbox, 1)
	require.Equal(t, "alice", inbox[0].UserID)
	require.Equal(t, "second question", inbox[0].LastMessage)
	require.True(t, inbox[0].Unread)

	msgs, err := svc.Conversation("alice")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
}

func TestPostAdminMessageLeavesInboxAlone(t *testing.T) {
	st := newTestStore(t)
	seedUser(t, st, "alice", "Alice", "alice@example.com")
	svc := NewMessagingService(st, nil)
	ctx := context.Background()

	msg, err := svc.PostAdminMessage(ctx, "alice", "hello from support")
	require.NoError(t, err)
	require.Equal(t, domain.SenderAdmin, msg.Sender)

	require.Empty(t, svc.Inbox())
	require.Contains(t, userNotificationTitles(st, "alice"), "New Message from Admin")
}

func TestOpenConversationClearsUnread(t *testing.T) {
	st := newTestStore(t)
	seedUser(t, st, "alice", "Alice", "alice@example.com")
	svc := NewMessagingService(st, nil)
	ctx := context.Background()

	_, err := svc.PostUserMessage(ctx, "alice", "anyone there?")
	require.NoError(t, err)
	require.True(t, svc.Inbox()[0].Unread)

	msgs, err := svc.OpenConversation(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.False(t, svc.Inbox()[0].Unread)

	// a fresh user message flips it back
	_, err = svc.PostUserMessage(ctx, "alice", "still waiting")
	require.NoError(t, err)
	require.True(t, svc.Inbox()[0].Unread)
}

func TestMessagingUnknownUser(t *testing.T) {
	svc := NewMessagingService(newTestStore(t), nil)
	ctx := context.Background()

	_, err := svc.PostUserMessage(ctx, "ghost", "hi")
	require.ErrorIs(t, err, domain.ErrUserNotFound)
	_, err = svc.PostAdminMessage(ctx, "ghost", "hi")
	require.ErrorIs(t, err, domain.ErrUserNotFound)
	_, err = svc.Conversation("ghost")
	require.ErrorIs(t, err, domain.ErrUserNotFound)
	_, err = svc.OpenConversation(ctx, "ghost")
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}
