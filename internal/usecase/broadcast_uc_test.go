//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telegram-giveaway-bot/internal/domain"
	"telegram-giveaway-bot/internal/domain/model"
	"telegram-giveaway-bot/internal/infra/worker"
	"telegram-giveaway-bot/internal/usecase"
)

func TestBroadcastUseCase(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()

	newPool := func(t *testing.T) *worker.Pool {
		pool := worker.NewPool(3, logger)
		pool.Start(ctx)
		t.Cleanup(pool.Stop)
		return pool
	}

	t.Run("skips banned users and isolates failures", func(t *testing.T) {
		repo := newTestRepo(t, nil)
		users := usecase.NewUserUseCase(repo, logger)
		for id := int64(1); id <= 5; id++ {
			_, err := users.Start(ctx, model.Identity{ID: id})
			require.NoError(t, err)
		}
		_, err := usecase.NewBanUseCase(repo, logger).Ban(ctx, 2)
		require.NoError(t, err)

		bot := &MockTelegramBot{SendMessageFunc: func(_ context.Context, chatID int64, _ string) error {
			if chatID == 4 {
				return errors.New("bot was blocked by the user")
			}
			return nil
		}}
		uc := usecase.NewBroadcastUseCase(repo, bot, newPool(t), 1000, logger)

		res, err := uc.Broadcast(ctx, "New giveaway is live!")
		require.NoError(t, err)
		assert.Equal(t, 3, res.Sent)
		assert.Equal(t, 1, res.Failed)
		assert.NotEmpty(t, res.JobID)

		var got []int64
		for _, m := range bot.Messages() {
			assert.Equal(t, "New giveaway is live!", m.Text)
			got = append(got, m.ChatID)
		}
		sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
		assert.Equal(t, []int64{1, 3, 5}, got)
	})

	t.Run("empty message is rejected", func(t *testing.T) {
		repo := newTestRepo(t, nil)
		uc := usecase.NewBroadcastUseCase(repo, &MockTelegramBot{}, newPool(t), 1000, logger)
		_, err := uc.Broadcast(ctx, "  ")
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})

	t.Run("no recipients", func(t *testing.T) {
		repo := newTestRepo(t, nil)
		uc := usecase.NewBroadcastUseCase(repo, &MockTelegramBot{}, newPool(t), 0, logger)
		res, err := uc.Broadcast(ctx, "hello")
		require.NoError(t, err)
		assert.Zero(t, res.Sent)
		assert.Zero(t, res.Failed)
	})
}
