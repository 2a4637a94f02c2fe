package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/virtual-card-service/internal/domain"
)

func TestToDomainError(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{"nil wrapped sentinel", fmt.Errorf("Transfer: %w", domain.ErrCardNotFound), "NOT_FOUND", http.StatusNotFound},
		{"validation sentinel", domain.ErrInvalidAmount, "VALIDATION_FAILED", http.StatusBadRequest},
		{"policy sentinel", domain.ErrInsufficientFunds, "POLICY_VIOLATION", http.StatusConflict},
		{"email taken", domain.ErrEmailTaken, "CONFLICT", http.StatusConflict},
		{"bad credentials", domain.ErrInvalidCredentials, "UNAUTHORIZED", http.StatusUnauthorized},
		{"fiber error", fiber.NewError(http.StatusForbidden, "nope"), "FORBIDDEN", http.StatusForbidden},
		{"unknown", errors.New("boom"), "INTERNAL_ERROR", http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ToDomainError(tc.err)
			require.Equal(t, tc.wantCode, got.Code)
			require.Equal(t, tc.wantStatus, got.HTTPStatus)
		})
	}
}

func TestToDomainErrorPassthrough(t *testing.T) {
	orig := NewNotFound("card", nil)
	got := ToDomainError(fmt.Errorf("handler: %w", orig))
	require.Same(t, orig, got)
	require.Nil(t, ToDomainError(nil))
}
