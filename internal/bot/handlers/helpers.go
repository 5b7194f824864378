package handlers

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/supplies-tracker/internal/bot/menus"
)

const historyPageSize = 15

func sendSupplies(ctx context.Context, api *tgbotapi.BotAPI, chatID int64, deps Dependencies) error {
	supplies, err := deps.Supplies.ListSupplies(ctx)
	if err != nil {
		return sendError(api, chatID, "Could not load supplies.", err)
	}
	return menus.SendSuppliesMenu(api, chatID, supplies, deps.Engine.GetSettings().LowStockThreshold)
}

func sendLowStock(ctx context.Context, api *tgbotapi.BotAPI, chatID int64, deps Dependencies) error {
	low, err := deps.Supplies.ListLowStock(ctx)
	if err != nil {
		return sendError(api, chatID, "Could not load supplies.", err)
	}

	if len(low) == 0 {
		msg := tgbotapi.NewMessage(chatID, "✅ Nothing is running low.")
		_, err := api.Send(msg)
		return err
	}

	var b strings.Builder
	b.WriteString("⚠️ Running low:\n\n")
	for _, supply := range low {
		fmt.Fprintf(&b, "• %s: %d left\n", supply.Name, supply.Quantity)
	}
	msg := tgbotapi.NewMessage(chatID, b.String())
	_, err = api.Send(msg)
	return err
}

func sendError(api *tgbotapi.BotAPI, chatID int64, text string, cause error) error {
	msg := tgbotapi.NewMessage(chatID, "❌ "+text)
	if _, sendErr := api.Send(msg); sendErr != nil {
		return sendErr
	}
	return cause
}
