package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"telegram-giveaway-bot/internal/application"
	"telegram-giveaway-bot/internal/config"
	"telegram-giveaway-bot/internal/domain/ports/adapter"
	"telegram-giveaway-bot/internal/domain/ports/repository"
	tele "telegram-giveaway-bot/internal/infra/adapters/telegram"
	pg "telegram-giveaway-bot/internal/infra/db/postgres"
	"telegram-giveaway-bot/internal/infra/filestore"
	"telegram-giveaway-bot/internal/infra/i18n"
	"telegram-giveaway-bot/internal/infra/logging"
	"telegram-giveaway-bot/internal/infra/metrics"
	"telegram-giveaway-bot/internal/infra/records"
	red "telegram-giveaway-bot/internal/infra/redis"
	"telegram-giveaway-bot/internal/infra/scheduler"
	"telegram-giveaway-bot/internal/infra/web"
	"telegram-giveaway-bot/internal/infra/worker"
	"telegram-giveaway-bot/internal/usecase"
)

// Set with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "none"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file (optional)")
	devMode := flag.Bool("dev", false, "human-readable logs and unredacted debug output")
	dryRun := flag.Bool("dry-run", false, "serve the admin API without connecting to Telegram")
	lang := flag.String("lang", "en", "message catalog language")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, stop, cfg, *dryRun, *lang, logger); err != nil {
		logger.Error().Err(err).Msg("bot exited with error")
		os.Exit(1)
	}
	logger.Info().Msg("bot stopped")
}

func run(ctx context.Context, shutdown func(), cfg *config.Config, dryRun bool, lang string, logger *zerolog.Logger) error {
	store, jobs, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	repo := records.New(ctx, store, cfg.Bot.AdminID, logger)

	tr, err := i18n.NewTranslator(i18n.LocalesFS, lang)
	if err != nil {
		return fmt.Errorf("translator: %w", err)
	}

	// ---- Telegram transport ----
	var (
		bot        adapter.TelegramBotAdapter
		botAdapter *tele.RealTelegramBotAdapter
	)
	if dryRun {
		logger.Warn().Msg("dry-run: telegram disabled, outbound messages are logged only")
		bot = tele.NewNoopBotAdapter(logger)
	} else {
		botAdapter, err = tele.NewRealTelegramBotAdapter(&cfg.Bot, logger, shutdown)
		if err != nil {
			return fmt.Errorf("telegram: %w", err)
		}
		bot = botAdapter
	}

	// ---- Use cases ----
	pool := worker.NewPool(cfg.Broadcast.Workers, logger)
	pool.Start(ctx)
	defer pool.Stop()

	notifUC := usecase.NewNotificationUseCase(bot, cfg.Bot.AdminID, tr, logger)
	userUC := usecase.NewUserUseCase(repo, logger)
	redeemUC := usecase.NewRedeemUseCase(repo, notifUC, logger)
	codeUC := usecase.NewCodeUseCase(repo, logger)
	banUC := usecase.NewBanUseCase(repo, logger)
	statsUC := usecase.NewStatsUseCase(repo, logger)
	broadcastUC := usecase.NewBroadcastUseCase(repo, bot, pool, cfg.Broadcast.RatePerSec, logger)

	facade := application.NewBotFacade(
		userUC, redeemUC, codeUC, banUC, statsUC, broadcastUC, notifUC,
		application.FacadeConfig{BotName: cfg.Bot.Name, AdminUsername: cfg.Bot.AdminUsername},
		tr, logger,
	)

	// ---- Background jobs ----
	jobs = append(jobs, scheduler.JobFunc{JobName: "codes_gauge", Fn: statsUC.RefreshGauges})
	sched := scheduler.NewScheduler(time.Minute, logger, jobs...)
	sched.Start(ctx)
	defer sched.Stop()

	// ---- Admin HTTP API ----
	if cfg.Admin.Port > 0 {
		auth := web.NewAuthManager(cfg.Admin.JWTSecret, cfg.Admin.APIKey, cfg.Admin.TokenTTL)
		srv := web.NewServer(statsUC, auth, logger)
		go func() {
			if err := srv.Start(cfg.Admin.Port); err != nil {
				logger.Error().Err(err).Msg("admin http server failed")
				shutdown()
			}
		}()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
	}

	logger.Info().
		Str("bot", cfg.Bot.Name).
		Int64("admin_id", cfg.Bot.AdminID).
		Str("token", logging.Redact(cfg.Bot.Token, cfg.Runtime.Dev)).
		Str("storage", cfg.Storage.Driver).
		Str("version", version).
		Msg("giveaway bot starting")

	if botAdapter == nil {
		<-ctx.Done()
		return nil
	}

	botAdapter.SetFacade(facade)
	if err := botAdapter.RegisterCommands(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to register bot commands")
	}
	if err := botAdapter.StartPolling(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("polling: %w", err)
	}
	return nil
}

// openStore selects the document backend and returns its maintenance jobs and a closer.
func openStore(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (repository.DocumentStore, []scheduler.Job, func(), error) {
	switch cfg.Storage.Driver {
	case "redis":
		client, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("redis: %w", err)
		}
		logger.Info().Str("prefix", cfg.Redis.Prefix).Msg("using redis document store")
		return red.NewDocumentStore(client, cfg.Redis.Prefix), nil, func() { _ = client.Close() }, nil

	case "postgres":
		pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("postgres: %w", err)
		}
		store := pg.NewDocumentStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, nil, fmt.Errorf("postgres schema: %w", err)
		}
		logger.Info().Msg("using postgres document store")
		return store, []scheduler.Job{pg.NewPoolStatsJob(pool)}, pool.Close, nil

	default:
		store, err := filestore.New(cfg.Storage.Dir)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("filestore: %w", err)
		}
		logger.Info().Str("dir", cfg.Storage.Dir).Msg("using file document store")
		return store, nil, func() {}, nil
	}
}
