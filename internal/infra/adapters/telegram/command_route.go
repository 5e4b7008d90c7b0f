package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-giveaway-bot/internal/application"
	"telegram-giveaway-bot/internal/infra/logging"
	"telegram-giveaway-bot/internal/infra/metrics"
)

type commandHandler func(ctx context.Context, message *tgbotapi.Message) error

// commandRoutes maps command names (without the slash) to handlers.
func (r *RealTelegramBotAdapter) commandRoutes() map[string]commandHandler {
	return map[string]commandHandler{
		"start":       r.handleStartCommand,
		"redeem":      r.handleRedeemCommand,
		"leaderboard": r.handleLeaderboardCommand,
		"help":        r.handleHelpCommand,

		"info":          r.adminOnly(r.handleInfoCommand),
		"stats":         r.adminOnly(r.handleStatsCommand),
		"listcodes":     r.adminOnly(r.handleListCodesCommand),
		"addcode":       r.adminOnly(r.handleAddCodeCommand),
		"addprize":      r.adminOnly(r.handleAddPrizeCommand),
		"delcode":       r.adminOnly(r.handleDelCodeCommand),
		"gencode":       r.adminOnly(r.handleGenCodeCommand),
		"broadcast":     r.adminOnly(r.handleBroadcastCommand),
		"ban":           r.adminOnly(r.handleBanCommand),
		"unban":         r.adminOnly(r.handleUnbanCommand),
		"resetgiveaway": r.adminOnly(r.handleResetGiveawayCommand),
		"stopbot":       r.adminOnly(r.handleStopBotCommand),
	}
}

func (r *RealTelegramBotAdapter) adminOnly(next commandHandler) commandHandler {
	return func(ctx context.Context, message *tgbotapi.Message) error {
		if !r.facade.IsAdmin(message.From.ID) {
			metrics.IncAdminCommand("/"+message.Command(), "unauthorized")
			return r.reply(ctx, message.Chat.ID, r.facade.AdminOnly())
		}
		metrics.IncAdminCommand("/"+message.Command(), "authorized")
		return next(ctx, message)
	}
}

func (r *RealTelegramBotAdapter) handleStartCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.reply(ctx, message.Chat.ID, r.facade.HandleStart(ctx, identityOf(message.From)))
}

func (r *RealTelegramBotAdapter) handleRedeemCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.reply(ctx, message.Chat.ID, r.facade.HandleRedeem(ctx, identityOf(message.From), args(message)))
}

func (r *RealTelegramBotAdapter) handleLeaderboardCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.reply(ctx, message.Chat.ID, r.facade.HandleLeaderboard(ctx))
}

func (r *RealTelegramBotAdapter) handleHelpCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.reply(ctx, message.Chat.ID, r.facade.HandleHelp(ctx, identityOf(message.From)))
}

func (r *RealTelegramBotAdapter) handleInfoCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.reply(ctx, message.Chat.ID, r.facade.HandleInfo(ctx))
}

func (r *RealTelegramBotAdapter) handleStatsCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.reply(ctx, message.Chat.ID, r.facade.HandleStats(ctx))
}

func (r *RealTelegramBotAdapter) handleListCodesCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.reply(ctx, message.Chat.ID, r.facade.HandleListCodes(ctx))
}

func (r *RealTelegramBotAdapter) handleAddCodeCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.reply(ctx, message.Chat.ID, r.facade.HandleAddCode(ctx, args(message)))
}

func (r *RealTelegramBotAdapter) handleAddPrizeCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.reply(ctx, message.Chat.ID, r.facade.HandleAddPrize(ctx, args(message)))
}

func (r *RealTelegramBotAdapter) handleDelCodeCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.reply(ctx, message.Chat.ID, r.facade.HandleDelCode(ctx, args(message)))
}

func (r *RealTelegramBotAdapter) handleGenCodeCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.reply(ctx, message.Chat.ID, r.facade.HandleGenCode(ctx, args(message)))
}

func (r *RealTelegramBotAdapter) handleBroadcastCommand(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	ack := func(rep application.Reply) {
		if err := r.reply(ctx, chatID, rep); err != nil {
			logging.With(ctx, r.log).Warn().Err(err).Msg("broadcast ack failed")
		}
	}
	return r.reply(ctx, chatID, r.facade.HandleBroadcast(ctx, args(message), ack))
}

func (r *RealTelegramBotAdapter) handleBanCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.reply(ctx, message.Chat.ID, r.facade.HandleBan(ctx, args(message)))
}

func (r *RealTelegramBotAdapter) handleUnbanCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.reply(ctx, message.Chat.ID, r.facade.HandleUnban(ctx, args(message)))
}

func (r *RealTelegramBotAdapter) handleResetGiveawayCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.reply(ctx, message.Chat.ID, r.facade.HandleResetGiveaway(ctx))
}

func (r *RealTelegramBotAdapter) handleStopBotCommand(ctx context.Context, message *tgbotapi.Message) error {
	err := r.reply(ctx, message.Chat.ID, r.facade.HandleStopBot(ctx))
	logging.With(ctx, r.log).Warn().Msg("shutdown requested by admin")
	if r.shutdown != nil {
		r.shutdown()
	}
	return err
}

// RegisterCommands publishes the public command menu.
func (r *RealTelegramBotAdapter) RegisterCommands(_ context.Context) error {
	cmds := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Show the welcome menu"},
		tgbotapi.BotCommand{Command: "redeem", Description: "Redeem a giveaway code"},
		tgbotapi.BotCommand{Command: "leaderboard", Description: "View top winners"},
		tgbotapi.BotCommand{Command: "help", Description: "How to use the bot"},
	)
	_, err := r.bot.Request(cmds)
	return err
}
