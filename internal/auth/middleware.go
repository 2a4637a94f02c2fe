package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/virtual-card-service/internal/domain"
	"github.com/spec-kit/virtual-card-service/internal/store"
	apperrors "github.com/spec-kit/virtual-card-service/pkg/util"
)

const principalKey = "auth_principal"

// AdminSubjectID identifies the single administrator in tokens. There is
// one admin credential; no admin entity exists in the store.
const AdminSubjectID = "admin"

// Principal represents the authenticated caller.
type Principal struct {
	SubjectType domain.SubjectType
	User        *domain.User
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens *TokenManager
	store  *store.Store
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, st *store.Store) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, store: st}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	principal := &Principal{SubjectType: claims.Subject}

	switch claims.Subject {
	case domain.SubjectTypeUser:
		var user *domain.User
		m.store.View(func(s *store.State) {
			if u, ok := s.UserByID(claims.SubjectID); ok {
				user = u
			}
		})
		if user == nil {
			return apperrors.NewUnauthorized("user not found")
		}
		principal.User = user
	case domain.SubjectTypeAdmin:
		if claims.SubjectID != AdminSubjectID {
			return apperrors.NewUnauthorized("unknown admin subject")
		}
	default:
		return apperrors.NewUnauthorized("unknown subject")
	}

	c.Locals(principalKey, principal)
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
