package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/vladimiradmaev/supplies-tracker/internal/bot"
	"github.com/vladimiradmaev/supplies-tracker/internal/bot/handlers"
	"github.com/vladimiradmaev/supplies-tracker/internal/config"
	"github.com/vladimiradmaev/supplies-tracker/internal/database"
	"github.com/vladimiradmaev/supplies-tracker/internal/kvstore"
	"github.com/vladimiradmaev/supplies-tracker/internal/logger"
	"github.com/vladimiradmaev/supplies-tracker/internal/notifications"
	"github.com/vladimiradmaev/supplies-tracker/internal/services"
)

// reconcileInterval re-evaluates reminders between mutations so that alerts
// whose window opens with the passage of time (expiration, device changes)
// still fire.
const reconcileInterval = time.Hour

// historyRetentionDays bounds the action log by age on top of the entry cap.
const historyRetentionDays = 365

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Warn(".env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.InitWithConfig(logger.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	}); err != nil {
		logger.Fatalf("Failed to init logger: %v", err)
	}
	logger.Info("Starting Supplies Tracker Bot")

	db, err := database.NewPostgresDB(cfg.DB)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	logger.Info("Database connection established, migrations completed")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := kvStore(cfg)

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		logger.Fatalf("Failed to create Telegram client: %v", err)
	}
	logger.Info("Bot authorized", "account", api.Self.UserName)

	// Notification state loads before anything can send.
	settings := notifications.NewSettingsStore(store)
	settings.Load(ctx)
	tracker := notifications.NewTracker(store, nil)
	tracker.Load(ctx)

	history := services.NewHistoryService(db)
	notifier := notifications.NewTelegramNotifier(api, cfg.OwnerChatID)
	engine := notifications.NewEngine(notifier, tracker, settings, history, nil)
	reconciler := services.NewReconciler(db, engine)

	deps := handlers.Dependencies{
		Supplies: services.NewSupplyService(db, engine, history, reconciler),
		Timers:   services.NewTimerService(db, history),
		InUse:    services.NewInUseService(db, engine, history, reconciler),
		History:  history,
		Engine:   engine,
		Data:     services.NewDataService(db, engine, history),
	}
	logger.Info("Services initialized")

	// Catch up on anything that became due while the process was down.
	reconciler.Run(ctx)

	telegramBot := bot.New(api, cfg.OwnerChatID, deps)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("Received signal, shutting down", "signal", sig.String())
		telegramBot.Stop()
		cancel()
	}()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(reconcileInterval)
		defer ticker.Stop()
		prune := time.NewTicker(24 * time.Hour)
		defer prune.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				reconciler.Run(ctx)
			case <-prune.C:
				if removed, err := history.PruneOlderThan(ctx, historyRetentionDays); err != nil {
					logger.Warn("History prune failed", "error", err)
				} else if removed > 0 {
					logger.Info("Pruned old history entries", "removed", removed)
				}
			}
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := telegramBot.Start(ctx); err != nil && ctx.Err() == nil {
			logger.Errorf("Bot stopped with error: %v", err)
			cancel()
		}
	}()

	logger.Info("Bot is running. Press Ctrl+C to stop.")
	wg.Wait()
}

// kvStore connects to Redis, falling back to process-local memory so the bot
// still works without it. Dedup state is then lost on restart, which only
// means a reminder may repeat once.
func kvStore(cfg *config.Config) kvstore.Store {
	store, err := kvstore.NewRedis(cfg.Redis.Host, cfg.Redis.Port)
	if err != nil {
		logger.Warn("Redis unavailable, using in-memory notification state", "error", err)
		return kvstore.NewMemory()
	}
	return store
}
