package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"telegram-giveaway-bot/internal/infra/metrics"
	"telegram-giveaway-bot/internal/infra/records"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

const LeaderboardSize = 10

type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	UserID    int64  `json:"user_id"`
	FirstName string `json:"first_name"`
	Username  string `json:"username"`
	Codes     int    `json:"codes"`
}

// Leaderboard lists winners only; TotalUsers lets callers tell "nobody yet" from "no winners yet".
type Leaderboard struct {
	Entries    []LeaderboardEntry `json:"entries"`
	TotalUsers int                `json:"total_users"`
}

type Stats struct {
	TotalCodes     int     `json:"total_codes"`
	RedeemedCodes  int     `json:"redeemed_codes"`
	AvailableCodes int     `json:"available_codes"`
	TotalUsers     int     `json:"total_users"`
	BannedUsers    int     `json:"banned_users"`
	ActiveUsers    int     `json:"active_users"`
	SuccessRate    float64 `json:"success_rate"`
}

type CodeView struct {
	Code         string    `json:"code"`
	Prize        string    `json:"prize"`
	Redeemed     bool      `json:"redeemed"`
	RedeemerID   int64     `json:"redeemer_id,omitempty"`
	RedeemerName string    `json:"redeemer_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// StatsUseCase holds the read-only projections.
type StatsUseCase interface {
	Leaderboard(ctx context.Context) Leaderboard
	Stats(ctx context.Context) Stats
	ListCodes(ctx context.Context) []CodeView
	// RefreshGauges publishes code totals to the metrics registry.
	RefreshGauges(ctx context.Context) error
}

type statsUC struct {
	repo *records.Repository
	log  *zerolog.Logger
}

func NewStatsUseCase(repo *records.Repository, logger *zerolog.Logger) *statsUC {
	return &statsUC{repo: repo, log: logger}
}

// Leaderboard ranks by redemption count, descending. Ties keep registration order.
func (s *statsUC) Leaderboard(_ context.Context) Leaderboard {
	var lb Leaderboard
	s.repo.View(func(st *records.State) {
		users := st.OrderedUsers()
		lb.TotalUsers = len(users)
		sort.SliceStable(users, func(i, j int) bool {
			return users[i].RedemptionCount() > users[j].RedemptionCount()
		})
		for _, u := range users {
			if len(lb.Entries) == LeaderboardSize || u.RedemptionCount() == 0 {
				break
			}
			lb.Entries = append(lb.Entries, LeaderboardEntry{
				Rank:      len(lb.Entries) + 1,
				UserID:    u.ID,
				FirstName: u.FirstName,
				Username:  u.Username,
				Codes:     u.RedemptionCount(),
			})
		}
	})
	return lb
}

func (s *statsUC) Stats(_ context.Context) Stats {
	var out Stats
	s.repo.View(func(st *records.State) {
		out.TotalCodes = len(st.Codes)
		for _, c := range st.Codes {
			if c.Redeemed {
				out.RedeemedCodes++
			}
		}
		out.AvailableCodes = out.TotalCodes - out.RedeemedCodes
		out.TotalUsers = len(st.Users)
		out.BannedUsers = len(st.Banned)
		for id := range st.Users {
			if !st.IsBanned(id) {
				out.ActiveUsers++
			}
		}
	})
	if out.TotalCodes > 0 {
		out.SuccessRate = float64(out.RedeemedCodes) / float64(out.TotalCodes) * 100
	}
	return out
}

// ListCodes returns codes in creation order.
func (s *statsUC) ListCodes(_ context.Context) []CodeView {
	var out []CodeView
	s.repo.View(func(st *records.State) {
		out = make([]CodeView, 0, len(st.Codes))
		for _, c := range st.OrderedCodes() {
			v := CodeView{Code: c.Key, Prize: c.Prize, Redeemed: c.Redeemed, CreatedAt: c.CreatedAt.Time}
			if c.Redeemed && c.Redeemer != nil {
				v.RedeemerID = c.Redeemer.UserID
				v.RedeemerName = c.RedeemerName()
			}
			out = append(out, v)
		}
	})
	return out
}

func (s *statsUC) RefreshGauges(ctx context.Context) error {
	st := s.Stats(ctx)
	metrics.SetCodes(st.TotalCodes, st.RedeemedCodes)
	s.log.Debug().Int("codes", st.TotalCodes).Int("redeemed", st.RedeemedCodes).Msg("code gauges refreshed")
	return nil
}
