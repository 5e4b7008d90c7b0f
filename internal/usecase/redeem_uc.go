package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"telegram-giveaway-bot/internal/domain"
	"telegram-giveaway-bot/internal/domain/model"
	"telegram-giveaway-bot/internal/infra/logging"
	"telegram-giveaway-bot/internal/infra/metrics"
	"telegram-giveaway-bot/internal/infra/records"
)

// Compile-time check
var _ RedeemUseCase = (*redeemUC)(nil)

// RedemptionResult is what a successful claim hands back to the caller.
type RedemptionResult struct {
	Code       string
	Prize      string
	RedeemedAt time.Time
}

type RedeemUseCase interface {
	// Redeem claims rawCode for the caller. A code that was already claimed
	// fails with *domain.AlreadyRedeemedError carrying the first redeemer.
	Redeem(ctx context.Context, who model.Identity, rawCode string) (*RedemptionResult, error)
}

type redeemUC struct {
	repo     *records.Repository
	notifier NotificationUseCase
	log      *zerolog.Logger
}

func NewRedeemUseCase(repo *records.Repository, notifier NotificationUseCase, logger *zerolog.Logger) *redeemUC {
	return &redeemUC{repo: repo, notifier: notifier, log: logger}
}

func (uc *redeemUC) Redeem(ctx context.Context, who model.Identity, rawCode string) (*RedemptionResult, error) {
	defer logging.TraceDuration(uc.log, "RedeemUC.Redeem")()
	log := logging.With(ctx, uc.log)

	key := model.NormalizeCode(rawCode)
	var (
		res        RedemptionResult
		registered bool
	)
	err := uc.repo.Update(ctx, func(s *records.State) error {
		if s.IsBanned(who.ID) {
			return domain.ErrBanned
		}
		now := uc.repo.Now()
		user, created := s.RegisterUser(who, now)
		registered = created

		code, ok := s.Codes[key]
		if key == "" || !ok {
			return domain.ErrInvalidCode
		}
		if code.Redeemed {
			snapshot := model.Redeemer{}
			if code.Redeemer != nil {
				snapshot = *code.Redeemer
			}
			return &domain.AlreadyRedeemedError{Code: key, Redeemer: snapshot}
		}

		code.MarkRedeemed(who, now)
		user.AppendRedemption(key, code.Prize, now)
		s.Touch(records.Codes | records.Users)
		res = RedemptionResult{Code: key, Prize: code.Prize, RedeemedAt: now}
		return nil
	})
	if registered {
		metrics.IncUsersRegistered()
	}
	if err != nil {
		metrics.IncRedemption(redemptionResult(err))
		log.Info().Err(err).Str("code", key).Int64("user_id", who.ID).Msg("redemption refused")
		return nil, err
	}

	metrics.IncRedemption("success")
	log.Info().Str("code", key).Int64("user_id", who.ID).Str("prize", res.Prize).Msg("code redeemed")

	if uc.notifier != nil {
		event := RedemptionEvent{User: who, Code: res.Code, Prize: res.Prize, At: res.RedeemedAt}
		if nerr := uc.notifier.NotifyRedemption(ctx, event); nerr != nil {
			log.Warn().Err(nerr).Str("code", key).Msg("admin redemption alert failed")
		}
	}
	return &res, nil
}

func redemptionResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrBanned):
		return "banned"
	case errors.Is(err, domain.ErrInvalidCode):
		return "invalid"
	case errors.Is(err, domain.ErrAlreadyRedeemed):
		return "already_redeemed"
	default:
		return "error"
	}
}
