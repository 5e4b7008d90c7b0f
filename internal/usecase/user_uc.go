package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"telegram-giveaway-bot/internal/domain"
	"telegram-giveaway-bot/internal/domain/model"
	"telegram-giveaway-bot/internal/infra/logging"
	"telegram-giveaway-bot/internal/infra/records"
)

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

// UserUseCase covers first contact and the access checks shared by every command.
type UserUseCase interface {
	// Start refuses banned callers, otherwise registers them idempotently.
	Start(ctx context.Context, who model.Identity) (model.User, error)
	// EnsureAllowed returns domain.ErrBanned for banned callers.
	EnsureAllowed(ctx context.Context, userID int64) error
	IsAdmin(userID int64) bool
}

type userUC struct {
	repo *records.Repository
	log  *zerolog.Logger
}

func NewUserUseCase(repo *records.Repository, logger *zerolog.Logger) *userUC {
	return &userUC{repo: repo, log: logger}
}

func (u *userUC) Start(ctx context.Context, who model.Identity) (model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.Start")()

	if u.repo.IsBanned(who.ID) {
		return model.User{}, domain.ErrBanned
	}
	user, created := u.repo.RegisterUser(ctx, who)
	if created {
		logging.With(ctx, u.log).Info().Int64("user_id", who.ID).Str("username", user.Username).Msg("user registered")
	}
	return user, nil
}

func (u *userUC) EnsureAllowed(_ context.Context, userID int64) error {
	if u.repo.IsBanned(userID) {
		return domain.ErrBanned
	}
	return nil
}

func (u *userUC) IsAdmin(userID int64) bool { return u.repo.IsAdmin(userID) }
