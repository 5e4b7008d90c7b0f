package domain

import (
	"errors"
	"fmt"

	"telegram-giveaway-bot/internal/domain/model"
)

var (
	// Redemption errors
	ErrBanned          = errors.New("user is banned")
	ErrInvalidCode     = errors.New("invalid code")
	ErrAlreadyRedeemed = errors.New("code already redeemed")

	// Admin errors
	ErrDuplicateCode = errors.New("code already exists")
	ErrUnknownCode   = errors.New("code does not exist")
	ErrLimitExceeded = errors.New("generation limit exceeded")
	ErrCannotBanSelf = errors.New("admin cannot ban themselves")

	// Common errors
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrPersistence      = errors.New("persistence failure")
	ErrDocumentNotFound = errors.New("document not found")
)

// AlreadyRedeemedError reports the snapshot of whoever claimed the code first.
type AlreadyRedeemedError struct {
	Code     string
	Redeemer model.Redeemer
}

func (e *AlreadyRedeemedError) Error() string {
	return fmt.Sprintf("code %s already redeemed by user %d", e.Code, e.Redeemer.UserID)
}

func (e *AlreadyRedeemedError) Is(target error) bool { return target == ErrAlreadyRedeemed }
