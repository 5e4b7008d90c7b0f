package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"telegram-giveaway-bot/internal/domain/model"
	"telegram-giveaway-bot/internal/domain/ports/adapter"
)

// Compile-time check
var _ NotificationUseCase = (*notificationUC)(nil)

// RedemptionEvent describes one successful claim.
type RedemptionEvent struct {
	User  model.Identity
	Code  string
	Prize string
	At    time.Time
}

// NotificationUseCase alerts the single configured admin.
type NotificationUseCase interface {
	NotifyRedemption(ctx context.Context, ev RedemptionEvent) error
	NotifyShutdown(ctx context.Context) error
}

type notificationUC struct {
	bot     adapter.TelegramBotAdapter
	adminID int64
	t       Translator
	log     *zerolog.Logger
}

func NewNotificationUseCase(bot adapter.TelegramBotAdapter, adminID int64, t Translator, logger *zerolog.Logger) *notificationUC {
	return &notificationUC{bot: bot, adminID: adminID, t: t, log: logger}
}

func (n *notificationUC) NotifyRedemption(ctx context.Context, ev RedemptionEvent) error {
	first := ev.User.FirstName
	if first == "" {
		first = model.NotAvailable
	}
	username := ev.User.Username
	if username == "" {
		username = model.NotAvailable
	}
	text := n.t.T("admin_redemption_alert",
		first, ev.User.LastName, username, ev.User.ID, ev.Code, ev.Prize, ev.At.Format(DisplayTime))
	return n.bot.SendMessage(ctx, n.adminID, text)
}

func (n *notificationUC) NotifyShutdown(ctx context.Context) error {
	return n.bot.SendMessage(ctx, n.adminID, n.t.T("shutdown_alert"))
}
