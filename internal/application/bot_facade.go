package application

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"telegram-giveaway-bot/internal/domain"
	"telegram-giveaway-bot/internal/domain/model"
	"telegram-giveaway-bot/internal/domain/ports/adapter"
	"telegram-giveaway-bot/internal/infra/logging"
	"telegram-giveaway-bot/internal/usecase"
)

// Reply is what a command handler sends back to the chat.
type Reply struct {
	Text    string
	Buttons [][]adapter.InlineButton
}

func text(s string) Reply { return Reply{Text: s} }

// Callback data of the /start menu buttons.
const (
	CallbackLeaderboard = "leaderboard"
	CallbackHelp        = "help"
)

type FacadeConfig struct {
	BotName       string
	AdminUsername string
}

// BotFacade composes use cases into chat commands.
// Handlers never return errors: domain failures become user-facing replies.
type BotFacade struct {
	UserUC      usecase.UserUseCase
	RedeemUC    usecase.RedeemUseCase
	CodeUC      usecase.CodeUseCase
	BanUC       usecase.BanUseCase
	StatsUC     usecase.StatsUseCase
	BroadcastUC usecase.BroadcastUseCase
	NotifUC     usecase.NotificationUseCase

	cfg FacadeConfig
	t   usecase.Translator
	log *zerolog.Logger
}

func NewBotFacade(
	userUC usecase.UserUseCase,
	redeemUC usecase.RedeemUseCase,
	codeUC usecase.CodeUseCase,
	banUC usecase.BanUseCase,
	statsUC usecase.StatsUseCase,
	broadcastUC usecase.BroadcastUseCase,
	notifUC usecase.NotificationUseCase,
	cfg FacadeConfig,
	t usecase.Translator,
	logger *zerolog.Logger,
) *BotFacade {
	return &BotFacade{
		UserUC:      userUC,
		RedeemUC:    redeemUC,
		CodeUC:      codeUC,
		BanUC:       banUC,
		StatsUC:     statsUC,
		BroadcastUC: broadcastUC,
		NotifUC:     notifUC,
		cfg:         cfg,
		t:           t,
		log:         logger,
	}
}

func (b *BotFacade) IsAdmin(userID int64) bool { return b.UserUC.IsAdmin(userID) }

func (b *BotFacade) AdminOnly() Reply { return text(b.t.T("admin_only")) }

func (b *BotFacade) Unknown() Reply { return text(b.t.T("unknown_command")) }

// ---- user commands ----

func (b *BotFacade) HandleStart(ctx context.Context, who model.Identity) Reply {
	if _, err := b.UserUC.Start(ctx, who); err != nil {
		return b.failure(ctx, err)
	}
	return Reply{
		Text: b.t.T("welcome", b.cfg.BotName, who.DisplayName()),
		Buttons: [][]adapter.InlineButton{
			{{Text: b.t.T("btn_leaderboard"), Data: CallbackLeaderboard}},
			{{Text: b.t.T("btn_help"), Data: CallbackHelp}},
			{{Text: b.t.T("btn_contact_admin"), URL: "https://t.me/" + b.cfg.AdminUsername}},
		},
	}
}

func (b *BotFacade) HandleHelp(ctx context.Context, who model.Identity) Reply {
	if err := b.UserUC.EnsureAllowed(ctx, who.ID); err != nil {
		return b.failure(ctx, err)
	}
	return text(b.t.T("help", b.cfg.AdminUsername))
}

func (b *BotFacade) HandleRedeem(ctx context.Context, who model.Identity, args []string) Reply {
	if len(args) == 0 {
		// a bare /redeem still counts as first contact
		if _, err := b.UserUC.Start(ctx, who); err != nil {
			return b.failure(ctx, err)
		}
		return text(b.t.T("redeem_usage"))
	}
	res, err := b.RedeemUC.Redeem(ctx, who, args[0])
	if err != nil {
		return b.failure(ctx, err)
	}
	return text(b.t.T("redeem_success", res.Code, res.Prize, b.cfg.AdminUsername))
}

func (b *BotFacade) HandleLeaderboard(ctx context.Context) Reply {
	lb := b.StatsUC.Leaderboard(ctx)
	if lb.TotalUsers == 0 {
		return text(b.t.T("leaderboard_no_users"))
	}
	var sb strings.Builder
	sb.WriteString(b.t.T("leaderboard_header"))
	if len(lb.Entries) == 0 {
		sb.WriteString(b.t.T("leaderboard_empty"))
	}
	for _, e := range lb.Entries {
		sb.WriteString(b.t.T("leaderboard_row", medal(e.Rank), e.Rank, e.FirstName, e.Codes))
	}
	return text(sb.String())
}

func medal(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return "🏅"
	}
}

// ---- admin commands ----

func (b *BotFacade) HandleInfo(_ context.Context) Reply {
	return text(b.t.T("info", b.cfg.BotName, b.cfg.AdminUsername))
}

func (b *BotFacade) HandleStats(ctx context.Context) Reply {
	st := b.StatsUC.Stats(ctx)
	return text(b.t.T("stats",
		st.TotalCodes, st.RedeemedCodes, st.AvailableCodes,
		st.TotalUsers, st.BannedUsers, st.ActiveUsers,
		st.SuccessRate))
}

func (b *BotFacade) HandleListCodes(ctx context.Context) Reply {
	codes := b.StatsUC.ListCodes(ctx)
	if len(codes) == 0 {
		return text(b.t.T("listcodes_empty"))
	}
	var sb strings.Builder
	sb.WriteString(b.t.T("listcodes_header"))
	for _, c := range codes {
		if c.Redeemed {
			sb.WriteString(b.t.T("listcodes_row_redeemed", c.Code, c.Prize, c.RedeemerName))
			continue
		}
		sb.WriteString(b.t.T("listcodes_row_available", c.Code, c.Prize))
	}
	return text(sb.String())
}

func (b *BotFacade) HandleAddCode(ctx context.Context, args []string) Reply {
	if len(args) == 0 {
		return text(b.t.T("addcode_usage"))
	}
	key, err := b.CodeUC.AddCode(ctx, args[0])
	switch {
	case errors.Is(err, domain.ErrDuplicateCode):
		return text(b.t.T("addcode_exists", key))
	case errors.Is(err, domain.ErrInvalidArgument):
		return text(b.t.T("addcode_usage"))
	case err != nil:
		return b.failure(ctx, err)
	}
	return text(b.t.T("addcode_done", key))
}

func (b *BotFacade) HandleAddPrize(ctx context.Context, args []string) Reply {
	if len(args) < 2 {
		return text(b.t.T("addprize_usage"))
	}
	prize := strings.Join(args[1:], " ")
	key, err := b.CodeUC.SetPrize(ctx, args[0], prize)
	switch {
	case errors.Is(err, domain.ErrUnknownCode):
		return text(b.t.T("addprize_unknown", key))
	case errors.Is(err, domain.ErrInvalidArgument):
		return text(b.t.T("addprize_usage"))
	case err != nil:
		return b.failure(ctx, err)
	}
	return text(b.t.T("addprize_done", key, strings.TrimSpace(prize)))
}

func (b *BotFacade) HandleDelCode(ctx context.Context, args []string) Reply {
	if len(args) == 0 {
		return text(b.t.T("delcode_usage"))
	}
	key, err := b.CodeUC.DeleteCode(ctx, args[0])
	switch {
	case errors.Is(err, domain.ErrUnknownCode):
		return text(b.t.T("delcode_unknown", key))
	case errors.Is(err, domain.ErrInvalidArgument):
		return text(b.t.T("delcode_usage"))
	case err != nil:
		return b.failure(ctx, err)
	}
	return text(b.t.T("delcode_done", key))
}

func (b *BotFacade) HandleGenCode(ctx context.Context, args []string) Reply {
	if len(args) < 2 {
		return text(b.t.T("gencode_usage"))
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return text(b.t.T("gencode_not_number"))
	}
	codes, err := b.CodeUC.GenerateCodes(ctx, n, args[1])
	switch {
	case errors.Is(err, domain.ErrLimitExceeded):
		return text(b.t.T("gencode_too_many", usecase.MaxGeneratedCodes))
	case errors.Is(err, domain.ErrInvalidArgument):
		return text(b.t.T("gencode_usage"))
	case err != nil:
		return b.failure(ctx, err)
	}
	return text(b.t.T("gencode_done", len(codes), strings.Join(codes, "\n")))
}

// HandleBroadcast sends ack before the fan-out starts and returns the delivery summary.
func (b *BotFacade) HandleBroadcast(ctx context.Context, args []string, ack func(Reply)) Reply {
	msg := strings.TrimSpace(strings.Join(args, " "))
	if msg == "" {
		return text(b.t.T("broadcast_usage"))
	}
	if ack != nil {
		ack(text(b.t.T("broadcast_started")))
	}
	res, err := b.BroadcastUC.Broadcast(ctx, b.t.T("broadcast_message", msg))
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return b.failure(ctx, err)
	}
	return text(b.t.T("broadcast_done", res.Sent, res.Failed))
}

func (b *BotFacade) HandleBan(ctx context.Context, args []string) Reply {
	if len(args) == 0 {
		return text(b.t.T("ban_usage"))
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return text(b.t.T("ban_invalid_id"))
	}
	changed, err := b.BanUC.Ban(ctx, id)
	switch {
	case errors.Is(err, domain.ErrCannotBanSelf):
		return text(b.t.T("ban_self"))
	case errors.Is(err, domain.ErrInvalidArgument):
		return text(b.t.T("ban_invalid_id"))
	case err != nil:
		return b.failure(ctx, err)
	case !changed:
		return text(b.t.T("ban_already", id))
	}
	return text(b.t.T("ban_done", id))
}

func (b *BotFacade) HandleUnban(ctx context.Context, args []string) Reply {
	if len(args) == 0 {
		return text(b.t.T("unban_usage"))
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return text(b.t.T("ban_invalid_id"))
	}
	changed, err := b.BanUC.Unban(ctx, id)
	if err != nil {
		return b.failure(ctx, err)
	}
	if !changed {
		return text(b.t.T("unban_not_banned", id))
	}
	return text(b.t.T("unban_done", id))
}

func (b *BotFacade) HandleResetGiveaway(ctx context.Context) Reply {
	if _, err := b.CodeUC.ResetGiveaway(ctx); err != nil {
		return b.failure(ctx, err)
	}
	return text(b.t.T("reset_done"))
}

// HandleStopBot alerts the admin; stopping the process is left to the transport.
func (b *BotFacade) HandleStopBot(ctx context.Context) Reply {
	if err := b.NotifUC.NotifyShutdown(ctx); err != nil {
		logging.With(ctx, b.log).Warn().Err(err).Msg("shutdown alert failed")
	}
	return text(b.t.T("stopbot_reply"))
}

// failure maps domain errors to replies; anything else is logged and reported generically.
func (b *BotFacade) failure(ctx context.Context, err error) Reply {
	var already *domain.AlreadyRedeemedError
	switch {
	case errors.Is(err, domain.ErrBanned):
		return text(b.t.T("banned"))
	case errors.Is(err, domain.ErrInvalidCode):
		return text(b.t.T("redeem_invalid"))
	case errors.As(err, &already):
		r := already.Redeemer
		return text(b.t.T("redeem_already", r.FirstName, r.Username, r.RedeemedAt.Format(usecase.DisplayTime)))
	}
	logging.With(ctx, b.log).Error().Err(err).Msg("command failed")
	return text(b.t.T("error_generic"))
}
