package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/supplies-tracker/internal/bot/state"
	"github.com/vladimiradmaev/supplies-tracker/internal/logger"
)

// UpdateHandler handles telegram updates and coordinates other handlers
type UpdateHandler struct {
	api             *tgbotapi.BotAPI
	ownerChatID     int64
	stateManager    *state.Manager
	callbackHandler *CallbackHandler
	commandHandler  *CommandHandler
	textHandler     *TextHandler
}

// NewUpdateHandler creates a new update handler
func NewUpdateHandler(api *tgbotapi.BotAPI, ownerChatID int64, deps Dependencies, stateManager *state.Manager) *UpdateHandler {
	return &UpdateHandler{
		api:             api,
		ownerChatID:     ownerChatID,
		stateManager:    stateManager,
		callbackHandler: NewCallbackHandler(api, deps, stateManager),
		commandHandler:  NewCommandHandler(api, deps, stateManager),
		textHandler:     NewTextHandler(api, deps, stateManager),
	}
}

// Handle processes a telegram update
func (h *UpdateHandler) Handle(ctx context.Context, update tgbotapi.Update) error {
	if update.Message == nil && update.CallbackQuery == nil {
		return nil
	}

	var chatID int64
	if update.Message != nil {
		chatID = update.Message.Chat.ID
	} else {
		chatID = update.CallbackQuery.Message.Chat.ID
	}

	// Single-user bot: anyone but the owner is ignored.
	if chatID != h.ownerChatID {
		logger.Warn("Ignoring update from unknown chat", "chat_id", chatID)
		return nil
	}

	if update.CallbackQuery != nil {
		// Answer callback query to remove loading state
		callback := tgbotapi.NewCallback(update.CallbackQuery.ID, "")
		if _, err := h.api.Request(callback); err != nil {
			logger.Warn("Failed to answer callback query", "error", err)
		}
		return h.callbackHandler.Handle(ctx, update.CallbackQuery)
	}

	if update.Message.IsCommand() {
		return h.commandHandler.Handle(ctx, update.Message)
	}

	if update.Message.Text != "" {
		return h.textHandler.Handle(ctx, update.Message)
	}

	return nil
}
