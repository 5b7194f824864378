package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/supplies-tracker/internal/bot/handlers"
	"github.com/vladimiradmaev/supplies-tracker/internal/bot/state"
	"github.com/vladimiradmaev/supplies-tracker/internal/logger"
)

// Bot wires the telegram API to the update handler chain.
type Bot struct {
	api     *tgbotapi.BotAPI
	handler *handlers.UpdateHandler
}

// New creates a bot bound to the owner's chat.
func New(api *tgbotapi.BotAPI, ownerChatID int64, deps handlers.Dependencies) *Bot {
	return &Bot{
		api:     api,
		handler: handlers.NewUpdateHandler(api, ownerChatID, deps, state.NewManager()),
	}
}

// Start polls for updates until the context is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	logger.Info("Bot is now listening for updates")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Bot is shutting down")
			return ctx.Err()
		case update := <-updates:
			if err := b.handler.Handle(ctx, update); err != nil {
				logger.Error("Error handling update", "error", err)
			}
		}
	}
}

// Stop stops the update polling.
func (b *Bot) Stop() {
	b.api.StopReceivingUpdates()
}
