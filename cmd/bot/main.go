package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aliskhannn/vocab-cards-bot/internal/config"
	"github.com/aliskhannn/vocab-cards-bot/internal/delivery/telegram"
	"github.com/aliskhannn/vocab-cards-bot/internal/domain/entities"
	"github.com/aliskhannn/vocab-cards-bot/internal/infra/postgres"
	"github.com/aliskhannn/vocab-cards-bot/internal/infra/scheduler"
	"github.com/aliskhannn/vocab-cards-bot/internal/infra/speech"
	"github.com/aliskhannn/vocab-cards-bot/internal/infra/sqlite"
	"github.com/aliskhannn/vocab-cards-bot/internal/logger"
	"github.com/aliskhannn/vocab-cards-bot/internal/repository"
	"github.com/aliskhannn/vocab-cards-bot/internal/service"
	"github.com/aliskhannn/vocab-cards-bot/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	lg, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = lg.Sync() }()

	if err := run(cfg, lg); err != nil {
		lg.Fatal("application stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, lg *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("timezone: %w", err)
	}

	kv, closeKV, err := openStorage(ctx, cfg, lg)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer closeKV()

	prefs := repository.NewPreferencesRepository(kv)
	loader := repository.NewDatasetLoader(cfg.DatasetPath, cfg.DatasetSheet)

	// Initialize services.
	store := service.NewWordStore(loader, prefs, lg)
	entries := store.Load(ctx)
	lg.Info("words loaded", zap.Int("count", len(entries)))

	progress := service.NewProgressTracker(prefs, cfg.Progress.DefaultDailyGoal, loc, lg)
	if err := progress.Load(ctx); err != nil {
		return fmt.Errorf("load progress: %w", err)
	}
	if _, err := progress.CheckNewDay(ctx, progress.Today()); err != nil {
		return fmt.Errorf("check new day: %w", err)
	}

	chime := speech.NewChime(speech.ChimeConfig{
		Player:         cfg.Feedback.Player,
		CorrectSound:   cfg.Feedback.CorrectSound,
		IncorrectSound: cfg.Feedback.IncorrectSound,
	}, lg)

	speaker := speech.NewSpeaker(speech.Config{
		Command: cfg.Speech.Command,
		Voice:   cfg.Speech.Voice,
		Rate:    cfg.Speech.Rate,
	}, lg)
	defer speaker.Stop()

	review := service.NewReviewService(store, progress, prefs, prefs, lg)
	quiz := service.NewQuizService(store, review, chime, service.QuizConfig{
		MaxDistractorAttempts: cfg.Quiz.MaxDistractorAttempts,
		AdvanceDelay:          cfg.Quiz.AdvanceDelay,
	}, rand.New(rand.NewSource(time.Now().UnixNano())), lg)
	reset := service.NewResetService(store, progress, prefs, lg)

	daily := scheduler.NewDailyScheduler(loc, lg)
	reminders := service.NewReminderService(
		prefs,
		daily,
		progress,
		review,
		*entities.NewReminderSettings(cfg.Reminder.Hour, cfg.Reminder.Minute),
		loc,
		lg,
	)
	if err := reminders.Restore(ctx); err != nil {
		lg.Error("failed to restore reminder", zap.Error(err))
	}
	settings := service.NewSettingsService(progress, reminders)

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramAPIToken)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	bot.Debug = cfg.Env != "production"
	lg.Info("authorized on telegram", zap.String("account", bot.Self.UserName))

	if _, err := bot.Request(tgbotapi.NewSetMyCommands(botCommands()...)); err != nil {
		lg.Warn("failed to set bot commands", zap.Error(err))
	}

	handler := telegram.NewHandler(
		bot,
		lg,
		cfg.OwnerChatID,
		store,
		review,
		quiz,
		progress,
		settings,
		reset,
		speaker,
	)
	reminders.SetNotifier(handler)

	watcher := scheduler.NewDayWatcher(loc, lg)
	if err := watcher.OnNewDay(handler.CheckNewDay); err != nil {
		return fmt.Errorf("schedule day rollover: %w", err)
	}

	daily.Start()
	watcher.Start()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer stop()
		err := handler.Run(gctx, updates)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-gctx.Done()
		lg.Info("shutdown signal received")

		bot.StopReceivingUpdates()
		watcher.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		daily.Stop(shutdownCtx)

		return nil
	})

	return g.Wait()
}

// openStorage connects the configured preferences backend.
func openStorage(ctx context.Context, cfg *config.Config, lg *zap.Logger) (repository.KVStore, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		dsn, err := cfg.DB.DSN()
		if err != nil {
			return nil, nil, err
		}

		pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{
			MaxConns:        int32(cfg.DB.MaxConnections),
			MaxConnLifetime: cfg.DB.MaxConnLifetime,
		})
		if err != nil {
			return nil, nil, err
		}

		kv := postgres.NewKVStore(pool)
		if err := kv.Init(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}

		lg.Info("using postgres storage")
		return kv, pool.Close, nil

	case config.DriverMemory:
		lg.Warn("using in-memory storage, progress is lost on restart")
		return storage.NewKVStorage(), func() {}, nil

	default:
		db, err := sqlite.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}

		kv := sqlite.NewKVStore(db)
		if err := kv.Init(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}

		lg.Info("using sqlite storage", zap.String("path", cfg.Storage.SQLitePath))
		return kv, func() { _ = db.Close() }, nil
	}
}

func botCommands() []tgbotapi.BotCommand {
	return []tgbotapi.BotCommand{
		{Command: "start", Description: "Запустить бота"},
		{Command: "cards", Description: "Карточки"},
		{Command: "review", Description: "Слова на повторение"},
		{Command: "categories", Description: "Выбрать категорию"},
		{Command: "search", Description: "Поиск (использование: /search слово)"},
		{Command: "quiz", Description: "Квиз"},
		{Command: "progress", Description: "Показать прогресс"},
		{Command: "settings", Description: "Настройки"},
		{Command: "remind", Description: "Время напоминания (использование: /remind 09:30)"},
		{Command: "reset", Description: "Сбросить прогресс"},
		{Command: "help", Description: "Помощь"},
	}
}
