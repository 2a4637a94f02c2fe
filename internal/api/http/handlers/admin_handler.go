package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/virtual-card-service/internal/api/dto"
	"github.com/spec-kit/virtual-card-service/internal/domain"
	"github.com/spec-kit/virtual-card-service/internal/service"
	apperrors "github.com/spec-kit/virtual-card-service/pkg/util"
)

// AdminHandler exposes the administrator surface: applications, card
// issuance, freezes, payouts, the inbox, notifications, and the demo
// reset.
type AdminHandler struct {
	ledger        *service.LedgerService
	messaging     *service.MessagingService
	notifications *service.NotificationService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(ledger *service.LedgerService, messaging *service.MessagingService, notifications *service.NotificationService) *AdminHandler {
	return &AdminHandler{ledger: ledger, messaging: messaging, notifications: notifications}
}

// ListUsers handles GET /admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users := h.ledger.ListUsers()
	out := make([]fiber.Map, 0, len(users))
	for _, u := range users {
		out = append(out, fiber.Map{
			"id":         u.ID,
			"name":       u.Name,
			"email":      u.Email,
			"card_count": u.CardCount,
			"created_at": u.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": out})
}

// ListApplications handles GET /admin/applications.
func (h *AdminHandler) ListApplications(c *fiber.Ctx) error {
	status := domain.ApplicationStatus(strings.ToUpper(c.Query("status")))
	apps := h.ledger.ListApplications(status)
	out := make([]dto.ApplicationResponse, 0, len(apps))
	for _, a := range apps {
		out = append(out, dto.NewApplicationResponse(a))
	}
	return c.JSON(fiber.Map{"data": out})
}

// ApproveApplication handles POST /admin/applications/:id/approve.
func (h *AdminHandler) ApproveApplication(c *fiber.Ctx) error {
	app, card, err := h.ledger.ApproveApplication(c.Context(), c.Params("id"))
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"application": dto.NewApplicationResponse(*app),
			"card":        dto.NewCardResponse(*card),
		},
	})
}

// RejectApplication handles POST /admin/applications/:id/reject.
func (h *AdminHandler) RejectApplication(c *fiber.Ctx) error {
	app, err := h.ledger.RejectApplication(c.Context(), c.Params("id"))
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewApplicationResponse(*app)})
}

// IssueCard handles POST /admin/cards.
func (h *AdminHandler) IssueCard(c *fiber.Ctx) error {
	var req dto.IssueCardRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.UserID == "" {
		return fiber.NewError(http.StatusBadRequest, "user_id required")
	}

	card, err := h.ledger.IssueCard(c.Context(), req.UserID, req.InitialBalance)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewCardResponse(*card)})
}

// FreezeCard handles POST /admin/cards/:id/freeze.
func (h *AdminHandler) FreezeCard(c *fiber.Ctx) error {
	var req dto.FreezeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	card, err := h.ledger.SetCardFrozen(c.Context(), "", c.Params("id"), req.Frozen)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewCardResponse(*card)})
}

// FreezeUserCards handles POST /admin/users/:id/freeze-cards.
func (h *AdminHandler) FreezeUserCards(c *fiber.Ctx) error {
	count, err := h.ledger.FreezeAllCards(c.Context(), c.Params("id"))
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"cards_frozen": count}})
}

// BroadcastPayout handles POST /admin/payouts.
func (h *AdminHandler) BroadcastPayout(c *fiber.Ctx) error {
	var req dto.PayoutRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	affected, err := h.ledger.BroadcastPayout(c.Context(), req.Amount)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"users_affected": affected}})
}

// Inbox handles GET /admin/inbox.
func (h *AdminHandler) Inbox(c *fiber.Ctx) error {
	entries := h.messaging.Inbox()
	out := make([]dto.InboxEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.InboxEntryResponse{
			UserID:      e.UserID,
			UserName:    e.UserName,
			UserEmail:   e.UserEmail,
			LastMessage: e.LastMessage,
			Unread:      e.Unread,
			UpdatedAt:   e.UpdatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": out})
}

// Conversation handles GET /admin/conversations/:userId. Opening the
// conversation clears its unread flag.
func (h *AdminHandler) Conversation(c *fiber.Ctx) error {
	msgs, err := h.messaging.OpenConversation(c.Context(), c.Params("userId"))
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewMessageResponses(msgs)})
}

// PostConversationMessage handles POST /admin/conversations/:userId/messages.
func (h *AdminHandler) PostConversationMessage(c *fiber.Ctx) error {
	var req dto.PostMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Content == "" {
		return fiber.NewError(http.StatusBadRequest, "content required")
	}

	msg, err := h.messaging.PostAdminMessage(c.Context(), c.Params("userId"), req.Content)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewMessageResponse(*msg)})
}

// Notifications handles GET /admin/notifications.
func (h *AdminHandler) Notifications(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": dto.NewNotificationResponses(h.notifications.AdminNotifications())})
}

// MarkNotificationsRead handles POST /admin/notifications/read.
func (h *AdminHandler) MarkNotificationsRead(c *fiber.Ctx) error {
	if err := h.notifications.MarkAdminNotificationsRead(c.Context()); err != nil {
		return apperrors.MapError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// Reset handles POST /admin/reset. Discards all demo state.
func (h *AdminHandler) Reset(c *fiber.Ctx) error {
	if err := h.ledger.Reset(c.Context()); err != nil {
		return apperrors.MapError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}
