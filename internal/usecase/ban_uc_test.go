//go:build !integration

package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telegram-giveaway-bot/internal/domain"
	"telegram-giveaway-bot/internal/infra/records"
	"telegram-giveaway-bot/internal/usecase"
)

func TestBanUseCase(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()

	t.Run("admin cannot ban themselves", func(t *testing.T) {
		repo := newTestRepo(t, nil)
		uc := usecase.NewBanUseCase(repo, logger)

		changed, err := uc.Ban(ctx, testAdminID)
		assert.ErrorIs(t, err, domain.ErrCannotBanSelf)
		assert.False(t, changed)
		repo.View(func(s *records.State) { assert.Empty(t, s.Banned) })
	})

	t.Run("ban and unban are idempotent", func(t *testing.T) {
		repo := newTestRepo(t, nil)
		uc := usecase.NewBanUseCase(repo, logger)

		changed, err := uc.Ban(ctx, 5)
		require.NoError(t, err)
		assert.True(t, changed)
		changed, err = uc.Ban(ctx, 5)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.True(t, repo.IsBanned(5))

		changed, err = uc.Unban(ctx, 5)
		require.NoError(t, err)
		assert.True(t, changed)
		changed, err = uc.Unban(ctx, 5)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.False(t, repo.IsBanned(5))
	})

	t.Run("ban list survives a restart", func(t *testing.T) {
		store := NewMockDocumentStore()
		repo := newTestRepo(t, store)
		_, err := usecase.NewBanUseCase(repo, logger).Ban(ctx, 77)
		require.NoError(t, err)

		assert.JSONEq(t, `["77"]`, string(store.Docs["banned"]))
		assert.True(t, newTestRepo(t, store).IsBanned(77))
	})
}
