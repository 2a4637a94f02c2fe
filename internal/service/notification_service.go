package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/virtual-card-service/internal/config"
	"github.com/spec-kit/virtual-card-service/internal/domain"
	"github.com/spec-kit/virtual-card-service/internal/events"
	"github.com/spec-kit/virtual-card-service/internal/store"
)

// NotificationService reads and acknowledges the durable notification
// pools and mirrors domain events to the stub email/webhook channels.
// The durable notifications themselves are written by the engine inside
// its transactions; this service never creates them.
type NotificationService struct {
	store      *store.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(st *store.Store, dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		store:      st,
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// UserNotifications returns a user's pool in arrival order.
func (n *NotificationService) UserNotifications(userID string) ([]domain.Notification, error) {
	var (
		out   []domain.Notification
		found bool
	)
	n.store.View(func(state *store.State) {
		user, ok := state.UserByID(userID)
		if !ok {
			return
		}
		found = true
		out = append(out, user.Notifications...)
	})
	if !found {
		return nil, fmt.Errorf("UserNotifications: %w", domain.ErrUserNotFound)
	}
	return out, nil
}

// AdminNotifications returns the admin-wide pool in arrival order.
func (n *NotificationService) AdminNotifications() []domain.Notification {
	var out []domain.Notification
	n.store.View(func(state *store.State) {
		for _, notif := range state.AdminNotifications {
			out = append(out, *notif)
		}
	})
	return out
}

// MarkUserNotificationsRead flips every notification in the user's pool
// to read. Idempotent.
func (n *NotificationService) MarkUserNotificationsRead(ctx context.Context, userID string) error {
	err := n.store.Update(ctx, func(state *store.State) error {
		user, ok := state.UserByID(userID)
		if !ok {
			return domain.ErrUserNotFound
		}
		for i := range user.Notifications {
			user.Notifications[i].Read = true
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("MarkUserNotificationsRead: %w", err)
	}
	return nil
}

// MarkAdminNotificationsRead flips every notification in the admin pool
// to read. Idempotent.
func (n *NotificationService) MarkAdminNotificationsRead(ctx context.Context) error {
	return n.store.Update(ctx, func(state *store.State) error {
		for _, notif := range state.AdminNotifications {
			notif.Read = true
		}
		return nil
	})
}

// RegisterHandlers subscribes the stub channels to domain events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventCardIssued, n.handleCardIssued)
	n.dispatcher.Subscribe(events.EventApplicationDecided, n.handleApplicationDecided)
	n.dispatcher.Subscribe(events.EventTransferCompleted, n.handleTransferCompleted)
	n.dispatcher.Subscribe(events.EventPayoutBroadcast, n.handlePayoutBroadcast)
	n.dispatcher.Subscribe(events.EventMessagePosted, n.handleMessagePosted)
}

func (n *NotificationService) handleCardIssued(ctx context.Context, event events.Event) error {
	n.logger.Info("CardIssued", zap.String("user_id", event.UserID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleApplicationDecided(ctx context.Context, event events.Event) error {
	n.logger.Info("ApplicationDecided", zap.String("user_id", event.UserID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTransferCompleted(ctx context.Context, event events.Event) error {
	n.logger.Info("TransferCompleted", zap.String("user_id", event.UserID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handlePayoutBroadcast(ctx context.Context, event events.Event) error {
	n.logger.Info("PayoutBroadcast", zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleMessagePosted(ctx context.Context, event events.Event) error {
	n.logger.Info("MessagePosted", zap.String("user_id", event.UserID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("user_id", event.UserID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("user_id", event.UserID),
		zap.String("event_type", string(event.Type)))
}
