package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/virtual-card-service/internal/auth"
	"github.com/spec-kit/virtual-card-service/internal/config"
	"github.com/spec-kit/virtual-card-service/internal/domain"
	"github.com/spec-kit/virtual-card-service/internal/events"
	"github.com/spec-kit/virtual-card-service/internal/store"
)

// AuthService coordinates signup and login flows. User credentials are
// bcrypt-hashed; the single admin credential is a bcrypt hash supplied
// via configuration.
type AuthService struct {
	store      *store.Store
	dispatcher events.Dispatcher
	tokenMgr   *auth.TokenManager
	bcryptCost int
	adminHash  string
}

// NewAuthService builds the service. When no admin hash is configured the
// development fallback password is hashed at startup.
func NewAuthService(cfg config.Config, st *store.Store, dispatcher events.Dispatcher) (*AuthService, error) {
	adminHash := cfg.Admin.PasswordHash
	if adminHash == "" {
		hashed, err := auth.HashPassword(cfg.Admin.Password, cfg.Auth.BcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
		adminHash = hashed
	}

	return &AuthService{
		store:      st,
		dispatcher: dispatcher,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
		adminHash:  adminHash,
	}, nil
}

// RegisterUser creates a new end-user account and notifies the admin.
func (s *AuthService) RegisterUser(ctx context.Context, name, email, password string) (*domain.User, string, time.Time, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	err = s.store.Update(ctx, func(state *store.State) error {
		if _, exists := state.UserByEmail(email); exists {
			return domain.ErrEmailTaken
		}
		state.AddUser(user)
		state.NotifyAdmin("New User Registration", fmt.Sprintf("%s (%s) has registered", name, email), user.CreatedAt)
		return nil
	})
	if err != nil {
		return nil, "", time.Time{}, fmt.Errorf("RegisterUser: %w", err)
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:   events.EventUserRegistered,
		UserID: user.ID,
		Actor:  userActor(user.ID),
	})

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, domain.SubjectTypeUser)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// LoginUser authenticates an end-user by email and password.
func (s *AuthService) LoginUser(_ context.Context, email, password string) (*domain.User, string, time.Time, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	var user *domain.User
	s.store.View(func(state *store.State) {
		if u, ok := state.UserByEmail(email); ok {
			user = u
		}
	})
	if user == nil {
		return nil, "", time.Time{}, domain.ErrInvalidCredentials
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, domain.ErrInvalidCredentials
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, domain.SubjectTypeUser)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// LoginAdmin authenticates the administrator.
func (s *AuthService) LoginAdmin(_ context.Context, password string) (string, time.Time, error) {
	if err := auth.ComparePassword(s.adminHash, password); err != nil {
		return "", time.Time{}, domain.ErrInvalidCredentials
	}
	return s.tokenMgr.GenerateToken(auth.AdminSubjectID, domain.SubjectTypeAdmin)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
