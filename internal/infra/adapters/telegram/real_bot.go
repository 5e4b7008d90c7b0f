package telegram

import (
	"context"
	"errors"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"telegram-giveaway-bot/internal/application"
	"telegram-giveaway-bot/internal/config"
	"telegram-giveaway-bot/internal/domain/model"
	"telegram-giveaway-bot/internal/domain/ports/adapter"
	"telegram-giveaway-bot/internal/infra/logging"
	"telegram-giveaway-bot/internal/infra/metrics"
)

var _ adapter.TelegramBotAdapter = (*RealTelegramBotAdapter)(nil)

// botClient is the part of *tgbotapi.BotAPI the adapter uses.
type botClient interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// RealTelegramBotAdapter polls updates and delegates every command to BotFacade.
type RealTelegramBotAdapter struct {
	bot    botClient
	facade *application.BotFacade
	log    *zerolog.Logger

	updateWorkers int
	shutdown      func()
	cancelPolling context.CancelFunc
}

// NewRealTelegramBotAdapter dials the Bot API. shutdown is invoked by /stopbot.
// The facade is attached with SetFacade once the use cases holding this adapter exist.
func NewRealTelegramBotAdapter(cfg *config.BotConfig, logger *zerolog.Logger, shutdown func()) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("bot", bot.Self.UserName).Msg("authorized on telegram")
	return newAdapter(bot, nil, logger, cfg.Workers, shutdown), nil
}

func newAdapter(bot botClient, facade *application.BotFacade, logger *zerolog.Logger, workers int, shutdown func()) *RealTelegramBotAdapter {
	if workers <= 0 {
		workers = 4
	}
	return &RealTelegramBotAdapter{
		bot:           bot,
		facade:        facade,
		log:           logger,
		updateWorkers: workers,
		shutdown:      shutdown,
	}
}

func (r *RealTelegramBotAdapter) SetFacade(f *application.BotFacade) { r.facade = f }

// StartPolling blocks until ctx is cancelled or StopPolling is called.
func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < r.updateWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case up := <-updateChan:
					if err := r.handleUpdate(ctx, up); err != nil {
						r.log.Error().Err(err).Int("worker", id).Int("update_id", up.UpdateID).Msg("update handling failed")
					}
				}
			}
		}(i)
	}

	r.log.Info().Int("workers", r.updateWorkers).Msg("telegram polling started")
	for {
		select {
		case <-ctx.Done():
			r.bot.StopReceivingUpdates()
			wg.Wait()
			return ctx.Err()
		case up, ok := <-updates:
			if !ok {
				cancel()
				continue
			}
			select {
			case updateChan <- up:
			case <-ctx.Done():
			}
		}
	}
}

func (r *RealTelegramBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

// SendMessage sends plain text; user-provided prize names and messages are never parsed as markup.
func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, tgID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(tgID, text)
	msg.DisableWebPagePreview = true
	if _, err := r.bot.Send(msg); err != nil {
		metrics.IncTelegramSendFailure()
		return err
	}
	return nil
}

func (r *RealTelegramBotAdapter) SendButtons(ctx context.Context, telegramID int64, text string, rows [][]adapter.InlineButton) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	kbRows := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		kr := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			label := strings.TrimSpace(btn.Text)
			if label == "" {
				label = "•"
			}
			switch {
			case btn.URL != "":
				kr = append(kr, tgbotapi.NewInlineKeyboardButtonURL(label, btn.URL))
			case btn.Data != "":
				kr = append(kr, tgbotapi.NewInlineKeyboardButtonData(label, btn.Data))
			default:
				kr = append(kr, tgbotapi.NewInlineKeyboardButtonData(label, label))
			}
		}
		kbRows = append(kbRows, kr)
	}

	msg := tgbotapi.NewMessage(telegramID, text)
	if len(kbRows) > 0 {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(kbRows...)
	}
	if _, err := r.bot.Send(msg); err != nil {
		metrics.IncTelegramSendFailure()
		return err
	}
	return nil
}

func (r *RealTelegramBotAdapter) reply(ctx context.Context, chatID int64, rep application.Reply) error {
	if len(rep.Buttons) > 0 {
		return r.SendButtons(ctx, chatID, rep.Text, rep.Buttons)
	}
	return r.SendMessage(ctx, chatID, rep.Text)
}

func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	ctx = logging.WithTraceID(ctx, ulid.Make().String())

	if update.CallbackQuery != nil {
		return r.handleQuery(ctx, update.CallbackQuery)
	}

	message := update.Message
	if message == nil || message.From == nil || message.Chat == nil || !message.IsCommand() {
		return nil
	}
	ctx = logging.WithTgID(ctx, message.From.ID)
	name := strings.ToLower(message.Command())
	handler, ok := r.commandRoutes()[name]
	if !ok {
		metrics.IncTelegramCommand(unknownRoute)
		return r.reply(ctx, message.Chat.ID, r.facade.Unknown())
	}
	ctx = logging.WithCommand(ctx, name)
	metrics.IncTelegramCommand("/" + name)

	defer logging.TraceDuration(logging.With(ctx, r.log), "Telegram.handleCommand")()
	return handler(ctx, message)
}

func identityOf(u *tgbotapi.User) model.Identity {
	return model.Identity{
		ID:        u.ID,
		Username:  u.UserName,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// args splits the text after the command on whitespace.
func args(message *tgbotapi.Message) []string {
	return strings.Fields(message.CommandArguments())
}
