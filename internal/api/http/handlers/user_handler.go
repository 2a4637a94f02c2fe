package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/virtual-card-service/internal/api/dto"
	"github.com/spec-kit/virtual-card-service/internal/auth"
	"github.com/spec-kit/virtual-card-service/internal/service"
	apperrors "github.com/spec-kit/virtual-card-service/pkg/util"
)

// UserHandler exposes the authenticated end-user surface: cards,
// applications, transfers, messages, and notifications.
type UserHandler struct {
	ledger        *service.LedgerService
	messaging     *service.MessagingService
	notifications *service.NotificationService
}

// NewUserHandler constructs handler.
func NewUserHandler(ledger *service.LedgerService, messaging *service.MessagingService, notifications *service.NotificationService) *UserHandler {
	return &UserHandler{ledger: ledger, messaging: messaging, notifications: notifications}
}

// MyCards handles GET /me/cards.
func (h *UserHandler) MyCards(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	cards := h.ledger.UserCards(principal.User.ID)
	return c.JSON(fiber.Map{"data": dto.NewCardResponses(cards)})
}

// FreezeCard handles POST /me/cards/:id/freeze.
func (h *UserHandler) FreezeCard(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)

	var req dto.FreezeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	card, err := h.ledger.SetCardFrozen(c.Context(), principal.User.ID, c.Params("id"), req.Frozen)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewCardResponse(*card)})
}

// SubmitApplication handles POST /me/applications.
func (h *UserHandler) SubmitApplication(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)

	app, err := h.ledger.SubmitApplication(c.Context(), principal.User.ID)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewApplicationResponse(*app)})
}

// Transfer handles POST /me/transfers.
func (h *UserHandler) Transfer(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)

	var req dto.TransferRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.SourceCardID == "" || req.DestinationPAN == "" {
		return fiber.NewError(http.StatusBadRequest, "source card and destination required")
	}

	result, err := h.ledger.Transfer(c.Context(), service.TransferInput{
		SourceUserID:   principal.User.ID,
		SourceCardID:   req.SourceCardID,
		DestinationPAN: req.DestinationPAN,
		Amount:         req.Amount,
		Note:           req.Note,
	})
	if err != nil {
		return apperrors.MapError(err)
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"source_card": dto.NewCardResponse(result.SourceCard),
		},
	})
}

// MyMessages handles GET /me/messages.
func (h *UserHandler) MyMessages(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)

	msgs, err := h.messaging.Conversation(principal.User.ID)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewMessageResponses(msgs)})
}

// PostMessage handles POST /me/messages.
func (h *UserHandler) PostMessage(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)

	var req dto.PostMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Content == "" {
		return fiber.NewError(http.StatusBadRequest, "content required")
	}

	msg, err := h.messaging.PostUserMessage(c.Context(), principal.User.ID, req.Content)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewMessageResponse(*msg)})
}

// MyNotifications handles GET /me/notifications.
func (h *UserHandler) MyNotifications(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)

	notifs, err := h.notifications.UserNotifications(principal.User.ID)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewNotificationResponses(notifs)})
}

// MarkNotificationsRead handles POST /me/notifications/read.
func (h *UserHandler) MarkNotificationsRead(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)

	if err := h.notifications.MarkUserNotificationsRead(c.Context(), principal.User.ID); err != nil {
		return apperrors.MapError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}
