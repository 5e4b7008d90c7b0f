package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"telegram-giveaway-bot/internal/domain"
	"telegram-giveaway-bot/internal/infra/logging"
	"telegram-giveaway-bot/internal/infra/records"
)

// Compile-time check
var _ BanUseCase = (*banUC)(nil)

// BanUseCase maintains the ban list. The bool results report whether anything changed.
type BanUseCase interface {
	Ban(ctx context.Context, userID int64) (bool, error)
	Unban(ctx context.Context, userID int64) (bool, error)
}

type banUC struct {
	repo *records.Repository
	log  *zerolog.Logger
}

func NewBanUseCase(repo *records.Repository, logger *zerolog.Logger) *banUC {
	return &banUC{repo: repo, log: logger}
}

func (uc *banUC) Ban(ctx context.Context, userID int64) (bool, error) {
	if userID == 0 {
		return false, domain.ErrInvalidArgument
	}
	var changed bool
	err := uc.repo.Update(ctx, func(s *records.State) error {
		if s.IsAdmin(userID) {
			return domain.ErrCannotBanSelf
		}
		if s.Banned.Contains(userID) {
			return nil
		}
		s.Banned[userID] = struct{}{}
		s.Touch(records.Banned)
		changed = true
		return nil
	})
	if changed {
		logging.With(ctx, uc.log).Info().Int64("user_id", userID).Msg("user banned")
	}
	return changed, err
}

func (uc *banUC) Unban(ctx context.Context, userID int64) (bool, error) {
	var changed bool
	err := uc.repo.Update(ctx, func(s *records.State) error {
		if !s.Banned.Contains(userID) {
			return nil
		}
		delete(s.Banned, userID)
		s.Touch(records.Banned)
		changed = true
		return nil
	})
	if changed {
		logging.With(ctx, uc.log).Info().Int64("user_id", userID).Msg("user unbanned")
	}
	return changed, err
}
