package usecase

import (
	"context"
	"math/rand/v2"
	"strings"

	"github.com/rs/zerolog"

	"telegram-giveaway-bot/internal/domain"
	"telegram-giveaway-bot/internal/domain/model"
	"telegram-giveaway-bot/internal/infra/logging"
	"telegram-giveaway-bot/internal/infra/metrics"
	"telegram-giveaway-bot/internal/infra/records"
)

// Compile-time check
var _ CodeUseCase = (*codeUC)(nil)

const (
	// MaxGeneratedCodes bounds a single /gencode call.
	MaxGeneratedCodes = 50

	suffixAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	suffixLength   = 4
)

// ResetSummary counts what a giveaway reset cleared.
type ResetSummary struct {
	Codes int
	Users int
}

// CodeUseCase is the admin side of the code lifecycle.
type CodeUseCase interface {
	AddCode(ctx context.Context, raw string) (string, error)
	SetPrize(ctx context.Context, raw, prize string) (string, error)
	DeleteCode(ctx context.Context, raw string) (string, error)
	GenerateCodes(ctx context.Context, count int, prefix string) ([]string, error)
	ResetGiveaway(ctx context.Context) (ResetSummary, error)
}

type codeUC struct {
	repo *records.Repository
	intN func(n int) int
	log  *zerolog.Logger
}

type CodeOption func(*codeUC)

// WithRandom replaces the suffix source; intN must return a value in [0, n).
func WithRandom(intN func(n int) int) CodeOption {
	return func(c *codeUC) { c.intN = intN }
}

func NewCodeUseCase(repo *records.Repository, logger *zerolog.Logger, opts ...CodeOption) *codeUC {
	uc := &codeUC{repo: repo, intN: rand.IntN, log: logger}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *codeUC) AddCode(ctx context.Context, raw string) (string, error) {
	defer logging.TraceDuration(uc.log, "CodeUC.AddCode")()

	key := model.NormalizeCode(raw)
	if key == "" {
		return "", domain.ErrInvalidArgument
	}
	err := uc.repo.Update(ctx, func(s *records.State) error {
		if _, ok := s.Codes[key]; ok {
			return domain.ErrDuplicateCode
		}
		s.Codes[key] = model.NewCode(key, uc.repo.Now())
		s.Touch(records.Codes)
		return nil
	})
	if err != nil {
		return key, err
	}
	metrics.AddCodesCreated("manual", 1)
	logging.With(ctx, uc.log).Info().Str("code", key).Msg("code added")
	return key, nil
}

func (uc *codeUC) SetPrize(ctx context.Context, raw, prize string) (string, error) {
	key := model.NormalizeCode(raw)
	prize = strings.TrimSpace(prize)
	if key == "" || prize == "" {
		return key, domain.ErrInvalidArgument
	}
	err := uc.repo.Update(ctx, func(s *records.State) error {
		code, ok := s.Codes[key]
		if !ok {
			return domain.ErrUnknownCode
		}
		code.Prize = prize
		s.Touch(records.Codes)
		return nil
	})
	if err == nil {
		logging.With(ctx, uc.log).Info().Str("code", key).Str("prize", prize).Msg("prize set")
	}
	return key, err
}

// DeleteCode removes the code even if it was redeemed; user histories keep their entries.
func (uc *codeUC) DeleteCode(ctx context.Context, raw string) (string, error) {
	key := model.NormalizeCode(raw)
	if key == "" {
		return key, domain.ErrInvalidArgument
	}
	err := uc.repo.Update(ctx, func(s *records.State) error {
		if _, ok := s.Codes[key]; !ok {
			return domain.ErrUnknownCode
		}
		delete(s.Codes, key)
		s.Touch(records.Codes)
		return nil
	})
	if err == nil {
		logging.With(ctx, uc.log).Info().Str("code", key).Msg("code deleted")
	}
	return key, err
}

// GenerateCodes creates count fresh codes named prefix plus a random suffix.
// A count of zero is a no-op that returns an empty list.
// The collision retry loop is unbounded; a prefix would need 36^4 live codes to stall it.
func (uc *codeUC) GenerateCodes(ctx context.Context, count int, prefix string) ([]string, error) {
	defer logging.TraceDuration(uc.log, "CodeUC.GenerateCodes")()

	if count < 0 {
		return nil, domain.ErrInvalidArgument
	}
	if count > MaxGeneratedCodes {
		return nil, domain.ErrLimitExceeded
	}
	if count == 0 {
		return []string{}, nil
	}
	prefix = model.NormalizeCode(prefix)

	out := make([]string, 0, count)
	err := uc.repo.Update(ctx, func(s *records.State) error {
		now := uc.repo.Now()
		for range count {
			var key string
			for {
				key = prefix + uc.suffix()
				if _, taken := s.Codes[key]; !taken {
					break
				}
			}
			s.Codes[key] = model.NewCode(key, now)
			out = append(out, key)
		}
		s.Touch(records.Codes)
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.AddCodesCreated("generated", len(out))
	logging.With(ctx, uc.log).Info().Int("count", len(out)).Str("prefix", prefix).Msg("codes generated")
	return out, nil
}

func (uc *codeUC) suffix() string {
	var b [suffixLength]byte
	for i := range b {
		b[i] = suffixAlphabet[uc.intN(len(suffixAlphabet))]
	}
	return string(b[:])
}

// ResetGiveaway returns every code to the unredeemed state and clears all user histories.
func (uc *codeUC) ResetGiveaway(ctx context.Context) (ResetSummary, error) {
	var sum ResetSummary
	err := uc.repo.Update(ctx, func(s *records.State) error {
		for _, c := range s.Codes {
			if c.Redeemed {
				sum.Codes++
			}
			c.Reset()
		}
		for _, u := range s.Users {
			if u.RedemptionCount() > 0 {
				sum.Users++
			}
			u.ClearRedemptions()
		}
		s.Touch(records.Codes | records.Users)
		return nil
	})
	if err == nil {
		logging.With(ctx, uc.log).Warn().Int("codes", sum.Codes).Int("users", sum.Users).Msg("giveaway reset")
	}
	return sum, err
}
