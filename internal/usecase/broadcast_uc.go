package usecase

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"telegram-giveaway-bot/internal/domain"
	"telegram-giveaway-bot/internal/domain/ports/adapter"
	"telegram-giveaway-bot/internal/infra/metrics"
	"telegram-giveaway-bot/internal/infra/records"
	"telegram-giveaway-bot/internal/infra/worker"
)

// Compile-time check
var _ BroadcastUseCase = (*broadcastUC)(nil)

type BroadcastResult struct {
	JobID  string
	Sent   int
	Failed int
}

type BroadcastUseCase interface {
	// Broadcast delivers text to every non-banned user and waits for the fan-out to finish.
	// A failed recipient never stops delivery to the rest.
	Broadcast(ctx context.Context, text string) (BroadcastResult, error)
}

type broadcastUC struct {
	repo       *records.Repository
	bot        adapter.TelegramBotAdapter
	workerPool *worker.Pool
	interval   time.Duration
	log        *zerolog.Logger
}

// NewBroadcastUseCase throttles sends to ratePerSec (25 when not positive).
func NewBroadcastUseCase(
	repo *records.Repository,
	bot adapter.TelegramBotAdapter,
	pool *worker.Pool,
	ratePerSec int,
	logger *zerolog.Logger,
) *broadcastUC {
	if ratePerSec <= 0 {
		ratePerSec = 25
	}
	return &broadcastUC{
		repo:       repo,
		bot:        bot,
		workerPool: pool,
		interval:   time.Second / time.Duration(ratePerSec),
		log:        logger,
	}
}

func (uc *broadcastUC) Broadcast(ctx context.Context, text string) (BroadcastResult, error) {
	res := BroadcastResult{JobID: uuid.NewString()}
	if strings.TrimSpace(text) == "" {
		return res, domain.ErrInvalidArgument
	}
	log := uc.log.With().Str("job_id", res.JobID).Logger()

	var recipients []int64
	uc.repo.View(func(s *records.State) {
		for _, u := range s.OrderedUsers() {
			if !s.IsBanned(u.ID) {
				recipients = append(recipients, u.ID)
			}
		}
	})
	log.Info().Int("user_count", len(recipients)).Msg("starting broadcast")

	var (
		sent, failed atomic.Int64
		wg           sync.WaitGroup
	)
	throttle := time.NewTicker(uc.interval)
	defer throttle.Stop()

	for i, id := range recipients {
		if i > 0 {
			select {
			case <-throttle.C:
			case <-ctx.Done():
			}
		}
		wg.Add(1)
		task := uc.createSendTask(id, text, &wg, &sent, &failed, &log)
		if err := uc.workerPool.Submit(ctx, task); err != nil {
			wg.Done()
			failed.Add(1)
			metrics.IncBroadcastDelivery("failed")
			log.Warn().Err(err).Int64("tg_id", id).Msg("failed to queue broadcast message")
		}
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		// queued tasks that never ran count as failures
		res.Sent = int(sent.Load())
		res.Failed = len(recipients) - res.Sent
		log.Warn().Err(ctx.Err()).Int("sent", res.Sent).Int("failed", res.Failed).Msg("broadcast interrupted")
		return res, ctx.Err()
	}

	res.Sent, res.Failed = int(sent.Load()), int(failed.Load())
	log.Info().Int("sent", res.Sent).Int("failed", res.Failed).Msg("broadcast finished")
	return res, nil
}

func (uc *broadcastUC) createSendTask(
	telegramID int64,
	text string,
	wg *sync.WaitGroup,
	sent, failed *atomic.Int64,
	log *zerolog.Logger,
) worker.Task {
	return func(ctx context.Context) error {
		defer wg.Done()
		if err := uc.bot.SendMessage(ctx, telegramID, text); err != nil {
			failed.Add(1)
			metrics.IncBroadcastDelivery("failed")
			log.Warn().Err(err).Int64("tg_id", telegramID).Msg("failed to send broadcast message to user")
			return nil
		}
		sent.Add(1)
		metrics.IncBroadcastDelivery("sent")
		return nil
	}
}
