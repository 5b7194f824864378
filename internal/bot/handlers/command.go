package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/supplies-tracker/internal/bot/menus"
	"github.com/vladimiradmaev/supplies-tracker/internal/bot/state"
	"github.com/vladimiradmaev/supplies-tracker/internal/logger"
)

// CommandHandler handles bot commands
type CommandHandler struct {
	api          *tgbotapi.BotAPI
	deps         Dependencies
	stateManager *state.Manager
}

// NewCommandHandler creates a new command handler
func NewCommandHandler(api *tgbotapi.BotAPI, deps Dependencies, stateManager *state.Manager) *CommandHandler {
	return &CommandHandler{
		api:          api,
		deps:         deps,
		stateManager: stateManager,
	}
}

// Handle processes a command message
func (h *CommandHandler) Handle(ctx context.Context, message *tgbotapi.Message) error {
	logger.Infof("Handling command %s", message.Command())

	userID := message.From.ID
	switch message.Command() {
	case "start":
		h.stateManager.SetUserState(userID, state.None)
		h.stateManager.ClearTempData(userID)
		return menus.SendMainMenu(h.api, message.Chat.ID)
	case "supplies":
		return sendSupplies(ctx, h.api, message.Chat.ID, h.deps)
	case "low":
		return sendLowStock(ctx, h.api, message.Chat.ID, h.deps)
	case "help":
		return h.handleHelp(message.Chat.ID)
	default:
		return h.handleUnknownCommand(message.Chat.ID)
	}
}

// handleHelp handles the /help command
func (h *CommandHandler) handleHelp(chatID int64) error {
	text := `Available commands:
/start - Show the main menu
/supplies - Show the supply list
/low - Show supplies running low
/help - Show this message

Everything else works through menu buttons. Reminders for low stock, expiring supplies and device changes arrive as messages from this bot.`

	msg := tgbotapi.NewMessage(chatID, text)
	_, err := h.api.Send(msg)
	return err
}

// handleUnknownCommand handles unknown commands
func (h *CommandHandler) handleUnknownCommand(chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, "Unknown command. Use /help for the list of available commands.")
	_, err := h.api.Send(msg)
	return err
}
