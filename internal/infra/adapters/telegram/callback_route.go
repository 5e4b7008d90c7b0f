package telegram

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-giveaway-bot/internal/application"
	"telegram-giveaway-bot/internal/domain/model"
	"telegram-giveaway-bot/internal/infra/logging"
	"telegram-giveaway-bot/internal/infra/metrics"
)

// unknownRoute is the metric label for commands and callbacks no route matches.
const unknownRoute = "unknown"

type cbHandler func(ctx context.Context, chatID int64, who model.Identity) error

// cbRoutes serves the buttons of the /start menu.
func (r *RealTelegramBotAdapter) cbRoutes() map[string]cbHandler {
	return map[string]cbHandler{
		application.CallbackLeaderboard: func(ctx context.Context, id int64, _ model.Identity) error {
			return r.reply(ctx, id, r.facade.HandleLeaderboard(ctx))
		},
		application.CallbackHelp: func(ctx context.Context, id int64, who model.Identity) error {
			return r.reply(ctx, id, r.facade.HandleHelp(ctx, who))
		},
	}
}

func (r *RealTelegramBotAdapter) handleQuery(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	if query == nil || query.From == nil {
		return errors.New("invalid callback query")
	}
	defer func() { _, _ = r.bot.Request(tgbotapi.NewCallback(query.ID, "")) }()

	chatID := query.From.ID
	if query.Message != nil && query.Message.Chat != nil {
		chatID = query.Message.Chat.ID
	}
	if chatID == 0 {
		return nil
	}

	data := strings.TrimSpace(query.Data)
	ctx = logging.WithTgID(ctx, query.From.ID)
	fn, ok := r.cbRoutes()[data]
	if !ok {
		metrics.IncTelegramCommand("cb:" + unknownRoute)
		return errors.New("unknown callback data")
	}
	metrics.IncTelegramCommand("cb:" + data)
	return fn(ctx, chatID, identityOf(query.From))
}
