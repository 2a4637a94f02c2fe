package domain

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrCardNotFound        = errors.New("card not found")
	ErrApplicationNotFound = errors.New("application not found")
	ErrDestinationNotFound = errors.New("destination card not found")

	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrInvalidDestination = errors.New("destination must be a 16-digit card number")
	ErrSelfTransfer       = errors.New("cannot transfer to the same card")

	ErrCardFrozen           = errors.New("cannot transfer from a frozen card")
	ErrInsufficientFunds    = errors.New("insufficient balance")
	ErrDuplicateApplication = errors.New("user already has a pending application")
	ErrApplicationDecided   = errors.New("application already decided")
	ErrUserHasNoCards       = errors.New("user has no cards")

	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
