package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/supplies-tracker/internal/bot/keyboards"
	"github.com/vladimiradmaev/supplies-tracker/internal/bot/menus"
	"github.com/vladimiradmaev/supplies-tracker/internal/bot/state"
	"github.com/vladimiradmaev/supplies-tracker/internal/domain"
	apperrors "github.com/vladimiradmaev/supplies-tracker/internal/errors"
	"github.com/vladimiradmaev/supplies-tracker/internal/logger"
)

// CallbackHandler handles inline keyboard button presses
type CallbackHandler struct {
	api          *tgbotapi.BotAPI
	deps         Dependencies
	stateManager *state.Manager
}

// NewCallbackHandler creates a new callback handler
func NewCallbackHandler(api *tgbotapi.BotAPI, deps Dependencies, stateManager *state.Manager) *CallbackHandler {
	return &CallbackHandler{
		api:          api,
		deps:         deps,
		stateManager: stateManager,
	}
}

// Handle processes a callback query
func (h *CallbackHandler) Handle(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	chatID := query.Message.Chat.ID
	userID := query.From.ID
	data := query.Data
	logger.Debug("Handling callback", "data", data)

	// Navigation resets any half-finished form.
	action, arg := splitCallback(data)
	switch action {
	case "main_menu", "supplies", "inuse", "timers", "history", "settings":
		h.stateManager.SetUserState(userID, state.None)
		h.stateManager.ClearTempData(userID)
	}

	switch action {
	case "main_menu":
		return menus.SendMainMenu(h.api, chatID)

	case "supplies":
		return sendSupplies(ctx, h.api, chatID, h.deps)
	case "supplies:add":
		msg := tgbotapi.NewMessage(chatID, "Pick a category for the new supply:")
		msg.ReplyMarkup = keyboards.CategoryMenu()
		_, err := h.api.Send(msg)
		return err
	case "addcat":
		h.stateManager.SetTempData(userID, "category", arg)
		h.stateManager.SetUserState(userID, state.AddingSupplyName)
		msg := tgbotapi.NewMessage(chatID, "What is the supply called?")
		_, err := h.api.Send(msg)
		return err
	case "supply":
		return h.showSupply(ctx, chatID, arg)
	case "supply_inc":
		return h.adjustQuantity(ctx, chatID, arg, 1)
	case "supply_dec":
		return h.adjustQuantity(ctx, chatID, arg, -1)
	case "supply_set":
		h.stateManager.SetTempData(userID, "supplyID", arg)
		h.stateManager.SetUserState(userID, state.AwaitingQuantityAdjustment)
		msg := tgbotapi.NewMessage(chatID, "Enter the new quantity:")
		_, err := h.api.Send(msg)
		return err
	case "supply_use":
		return h.startUsing(ctx, chatID, userID, arg)
	case "supply_del":
		return h.deleteSupply(ctx, chatID, arg)

	case "inuse":
		return h.sendInUse(ctx, chatID)
	case "item":
		return h.showItem(ctx, chatID, arg)
	case "item_vol":
		h.stateManager.SetTempData(userID, "itemID", arg)
		h.stateManager.SetUserState(userID, state.AwaitingInsulinVolume)
		msg := tgbotapi.NewMessage(chatID, "How much did you use? Enter a number:")
		_, err := h.api.Send(msg)
		return err
	case "item_end":
		if err := h.deps.InUse.EndDeviceEarly(ctx, arg); err != nil {
			return sendError(h.api, chatID, "Could not end the device.", err)
		}
		return h.showItem(ctx, chatID, arg)
	case "item_del":
		if err := h.deps.InUse.RemoveItem(ctx, arg); err != nil {
			return sendError(h.api, chatID, "Could not remove the item.", err)
		}
		return h.sendInUse(ctx, chatID)

	case "timers":
		return h.sendTimers(ctx, chatID)
	case "timers:add":
		msg := tgbotapi.NewMessage(chatID, "What kind of timer?")
		msg.ReplyMarkup = keyboards.TimerTypeMenu()
		_, err := h.api.Send(msg)
		return err
	case "addtimer":
		h.stateManager.SetTempData(userID, "timerType", arg)
		h.stateManager.SetUserState(userID, state.AddingTimerName)
		msg := tgbotapi.NewMessage(chatID, "Name the timer (e.g. \"Left arm sensor\"):")
		_, err := h.api.Send(msg)
		return err
	case "timer":
		return h.showTimer(ctx, chatID, arg)
	case "timer_reset":
		if err := h.deps.Timers.ResetTimer(ctx, arg); err != nil {
			return sendError(h.api, chatID, "Could not reset the timer.", err)
		}
		return h.showTimer(ctx, chatID, arg)
	case "timer_del":
		if err := h.deps.Timers.DeleteTimer(ctx, arg); err != nil {
			return sendError(h.api, chatID, "Could not delete the timer.", err)
		}
		return h.sendTimers(ctx, chatID)

	case "history":
		events, err := h.deps.History.ListEvents(ctx, historyPageSize)
		if err != nil {
			return sendError(h.api, chatID, "Could not load history.", err)
		}
		return menus.SendHistory(h.api, chatID, events)

	case "settings":
		return menus.SendSettingsMenu(h.api, chatID, h.deps.Engine.GetSettings())
	case "toggle_lowstock":
		return h.toggleSetting(ctx, chatID, func(p *domain.NotificationSettingsPatch, enabled bool) {
			p.LowStockEnabled = &enabled
		}, func(s domain.NotificationSettings) bool { return s.LowStockEnabled })
	case "toggle_expiration":
		return h.toggleSetting(ctx, chatID, func(p *domain.NotificationSettingsPatch, enabled bool) {
			p.ExpirationEnabled = &enabled
		}, func(s domain.NotificationSettings) bool { return s.ExpirationEnabled })
	case "toggle_device":
		return h.toggleSetting(ctx, chatID, func(p *domain.NotificationSettingsPatch, enabled bool) {
			p.DeviceTimerEnabled = &enabled
		}, func(s domain.NotificationSettings) bool { return s.DeviceTimerEnabled })
	case "set_threshold":
		h.stateManager.SetUserState(userID, state.AwaitingLowStockThreshold)
		msg := tgbotapi.NewMessage(chatID, "Warn when quantity drops to (enter a number):")
		_, err := h.api.Send(msg)
		return err
	case "set_expdays":
		h.stateManager.SetUserState(userID, state.AwaitingExpirationDays)
		msg := tgbotapi.NewMessage(chatID, "Warn how many days before expiration?")
		_, err := h.api.Send(msg)
		return err
	case "set_remhours":
		h.stateManager.SetUserState(userID, state.AwaitingDeviceReminderHrs)
		msg := tgbotapi.NewMessage(chatID, "Remind how many hours before a device change?")
		_, err := h.api.Send(msg)
		return err

	case "clear_data":
		return menus.SendClearDataConfirm(h.api, chatID)
	case "clear_confirm":
		if err := h.deps.Data.ClearAllData(ctx); err != nil {
			return sendError(h.api, chatID, "Could not clear data.", err)
		}
		msg := tgbotapi.NewMessage(chatID, "🗑 All data removed.")
		msg.ReplyMarkup = keyboards.BackToMain()
		_, err := h.api.Send(msg)
		return err
	}

	logger.Warn("Unknown callback", "data", data)
	return nil
}

func (h *CallbackHandler) showSupply(ctx context.Context, chatID int64, id string) error {
	supply, err := h.deps.Supplies.GetSupply(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrSupplyNotFound) {
			return sendSupplies(ctx, h.api, chatID, h.deps)
		}
		return sendError(h.api, chatID, "Could not load the supply.", err)
	}
	return menus.SendSupplyDetail(h.api, chatID, supply, h.deps.Engine.GetSettings().LowStockThreshold)
}

func (h *CallbackHandler) adjustQuantity(ctx context.Context, chatID int64, id string, delta int) error {
	supply, err := h.deps.Supplies.GetSupply(ctx, id)
	if err != nil {
		return sendError(h.api, chatID, "Could not load the supply.", err)
	}

	quantity := supply.Quantity + delta
	if quantity < 0 {
		quantity = 0
	}
	updated, err := h.deps.Supplies.UpdateSupply(ctx, id, domain.SupplyUpdate{Quantity: &quantity})
	if err != nil {
		return sendError(h.api, chatID, "Could not change the quantity.", err)
	}
	return menus.SendSupplyDetail(h.api, chatID, updated, h.deps.Engine.GetSettings().LowStockThreshold)
}

func (h *CallbackHandler) startUsing(ctx context.Context, chatID, userID int64, supplyID string) error {
	supply, err := h.deps.Supplies.GetSupply(ctx, supplyID)
	if err != nil {
		return sendError(h.api, chatID, "Could not load the supply.", err)
	}
	if supply.Quantity <= 0 {
		msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("❌ %s is out of stock.", supply.Name))
		_, err := h.api.Send(msg)
		return err
	}

	h.stateManager.SetTempData(userID, "supplyID", supplyID)
	if supply.Category == domain.CategoryInsulin {
		h.stateManager.SetUserState(userID, state.AwaitingUseTotalVolume)
		msg := tgbotapi.NewMessage(chatID, "Total volume of the new vial/pen, e.g. \"300\" or \"10 ml\" (units unless you say ml):")
		_, err := h.api.Send(msg)
		return err
	}

	h.stateManager.SetUserState(userID, state.AwaitingUseDurationHours)
	msg := tgbotapi.NewMessage(chatID, "How many hours will it be worn? (e.g. 72 for 3 days):")
	_, err = h.api.Send(msg)
	return err
}

func (h *CallbackHandler) deleteSupply(ctx context.Context, chatID int64, id string) error {
	if err := h.deps.Supplies.DeleteSupply(ctx, id); err != nil {
		return sendError(h.api, chatID, "Could not delete the supply.", err)
	}
	return sendSupplies(ctx, h.api, chatID, h.deps)
}

func (h *CallbackHandler) sendInUse(ctx context.Context, chatID int64) error {
	items, err := h.deps.InUse.ListItems(ctx)
	if err != nil {
		return sendError(h.api, chatID, "Could not load in-use items.", err)
	}
	return menus.SendInUseMenu(h.api, chatID, items)
}

func (h *CallbackHandler) showItem(ctx context.Context, chatID int64, id string) error {
	items, err := h.deps.InUse.ListItems(ctx)
	if err != nil {
		return sendError(h.api, chatID, "Could not load in-use items.", err)
	}
	for i := range items {
		if items[i].ID == id {
			return menus.SendItemDetail(h.api, chatID, &items[i])
		}
	}
	return h.sendInUse(ctx, chatID)
}

func (h *CallbackHandler) sendTimers(ctx context.Context, chatID int64) error {
	timers, err := h.deps.Timers.ListTimers(ctx)
	if err != nil {
		return sendError(h.api, chatID, "Could not load timers.", err)
	}
	return menus.SendTimersMenu(h.api, chatID, timers)
}

func (h *CallbackHandler) showTimer(ctx context.Context, chatID int64, id string) error {
	timers, err := h.deps.Timers.ListTimers(ctx)
	if err != nil {
		return sendError(h.api, chatID, "Could not load timers.", err)
	}
	for i := range timers {
		if timers[i].ID == id {
			return menus.SendTimerDetail(h.api, chatID, &timers[i])
		}
	}
	return h.sendTimers(ctx, chatID)
}

func (h *CallbackHandler) toggleSetting(ctx context.Context, chatID int64, set func(*domain.NotificationSettingsPatch, bool), get func(domain.NotificationSettings) bool) error {
	current := h.deps.Engine.GetSettings()
	var patch domain.NotificationSettingsPatch
	set(&patch, !get(current))

	updated, err := h.deps.Engine.UpdateSettings(ctx, patch)
	if err != nil {
		return sendError(h.api, chatID, "Could not save settings.", err)
	}
	return menus.SendSettingsMenu(h.api, chatID, updated)
}

// splitCallback separates "action:arg" callback data. Actions whose arg
// itself contains ":" do not exist in this bot, but supply IDs are UUIDs so
// only the first separator counts.
func splitCallback(data string) (action, arg string) {
	// Fixed menu entries with ":" in them are their own actions.
	switch data {
	case "supplies:add", "timers:add":
		return data, ""
	}
	if idx := strings.Index(data, ":"); idx >= 0 {
		return data[:idx], data[idx+1:]
	}
	return data, ""
}
