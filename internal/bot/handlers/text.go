package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/supplies-tracker/internal/bot/menus"
	"github.com/vladimiradmaev/supplies-tracker/internal/bot/state"
	"github.com/vladimiradmaev/supplies-tracker/internal/domain"
)

// TextHandler handles free-text replies driven by conversation state
type TextHandler struct {
	api          *tgbotapi.BotAPI
	deps         Dependencies
	stateManager *state.Manager
}

// NewTextHandler creates a new text handler
func NewTextHandler(api *tgbotapi.BotAPI, deps Dependencies, stateManager *state.Manager) *TextHandler {
	return &TextHandler{
		api:          api,
		deps:         deps,
		stateManager: stateManager,
	}
}

// Handle processes a text message
func (h *TextHandler) Handle(ctx context.Context, message *tgbotapi.Message) error {
	userID := message.From.ID
	chatID := message.Chat.ID
	text := strings.TrimSpace(message.Text)

	switch h.stateManager.GetUserState(userID) {
	case state.AddingSupplyName:
		if text == "" {
			return h.reply(chatID, "The name cannot be empty. Try again:")
		}
		h.stateManager.SetTempData(userID, "name", text)
		h.stateManager.SetUserState(userID, state.AddingSupplyQuantity)
		return h.reply(chatID, "How many are in stock?")

	case state.AddingSupplyQuantity:
		quantity, err := strconv.Atoi(text)
		if err != nil || quantity < 0 {
			return h.reply(chatID, "Please enter a whole number, 0 or more:")
		}
		return h.finishAddSupply(ctx, chatID, userID, quantity)

	case state.AwaitingQuantityAdjustment:
		quantity, err := strconv.Atoi(text)
		if err != nil || quantity < 0 {
			return h.reply(chatID, "Please enter a whole number, 0 or more:")
		}
		supplyID, ok := h.stateManager.GetTempData(userID, "supplyID")
		if !ok {
			return h.resetToMainMenu(chatID, userID)
		}
		h.clearConversation(userID)
		supply, err := h.deps.Supplies.UpdateSupply(ctx, supplyID, domain.SupplyUpdate{Quantity: &quantity})
		if err != nil {
			return sendError(h.api, chatID, "Could not change the quantity.", err)
		}
		return menus.SendSupplyDetail(h.api, chatID, supply, h.deps.Engine.GetSettings().LowStockThreshold)

	case state.AddingTimerName:
		if text == "" {
			return h.reply(chatID, "The name cannot be empty. Try again:")
		}
		return h.finishAddTimer(ctx, chatID, userID, text)

	case state.AwaitingInsulinVolume:
		volume, err := strconv.ParseFloat(text, 64)
		if err != nil || volume <= 0 {
			return h.reply(chatID, "Please enter a positive number (e.g. 12.5):")
		}
		itemID, ok := h.stateManager.GetTempData(userID, "itemID")
		if !ok {
			return h.resetToMainMenu(chatID, userID)
		}
		h.clearConversation(userID)
		item, err := h.deps.InUse.RecordInsulinUsage(ctx, itemID, volume)
		if err != nil {
			return sendError(h.api, chatID, "Could not record the usage.", err)
		}
		return menus.SendItemDetail(h.api, chatID, item)

	case state.AwaitingUseTotalVolume:
		volume, unit, ok := parseVolumeInput(text)
		if !ok {
			return h.reply(chatID, "Please enter a positive number, optionally with a unit (e.g. \"300\" or \"10 ml\"):")
		}
		return h.finishStartUsing(ctx, chatID, userID, domain.InUseDetails{
			Type:        domain.DetailsInsulin,
			TotalVolume: volume,
			Unit:        unit,
		}, nil)

	case state.AwaitingUseDurationHours:
		hours, err := strconv.Atoi(text)
		if err != nil || hours <= 0 {
			return h.reply(chatID, "Please enter a positive whole number of hours:")
		}
		h.stateManager.SetTempData(userID, "durationHours", strconv.Itoa(hours))
		h.stateManager.SetUserState(userID, state.AwaitingUseGraceHours)
		return h.reply(chatID, "Grace period in hours after expiry? Enter 0 for none:")

	case state.AwaitingUseGraceHours:
		grace, ok := parseGraceHours(text)
		if !ok {
			return h.reply(chatID, "Please enter a whole number of hours, 0 or more:")
		}
		durationText, ok := h.stateManager.GetTempData(userID, "durationHours")
		if !ok {
			return h.resetToMainMenu(chatID, userID)
		}
		hours, err := strconv.Atoi(durationText)
		if err != nil {
			return h.resetToMainMenu(chatID, userID)
		}
		return h.finishStartUsing(ctx, chatID, userID, domain.InUseDetails{
			Type:          domain.DetailsDevice,
			DurationHours: hours,
		}, grace)

	case state.AwaitingLowStockThreshold:
		return h.updateSettingInt(ctx, chatID, userID, text, func(v int, p *domain.NotificationSettingsPatch) {
			p.LowStockThreshold = &v
		})
	case state.AwaitingExpirationDays:
		return h.updateSettingInt(ctx, chatID, userID, text, func(v int, p *domain.NotificationSettingsPatch) {
			p.ExpirationDays = &v
		})
	case state.AwaitingDeviceReminderHrs:
		return h.updateSettingInt(ctx, chatID, userID, text, func(v int, p *domain.NotificationSettingsPatch) {
			p.DeviceReminderHours = &v
		})

	default:
		return h.reply(chatID, "Please use the menu buttons, or /start to bring the menu back.")
	}
}

func (h *TextHandler) finishAddSupply(ctx context.Context, chatID, userID int64, quantity int) error {
	name, _ := h.stateManager.GetTempData(userID, "name")
	category, ok := h.stateManager.GetTempData(userID, "category")
	if !ok || name == "" {
		return h.resetToMainMenu(chatID, userID)
	}
	h.clearConversation(userID)

	supply := &domain.Supply{
		Name:     name,
		Category: domain.SupplyCategory(category),
		Quantity: quantity,
	}
	if err := h.deps.Supplies.AddSupply(ctx, supply); err != nil {
		return sendError(h.api, chatID, "Could not add the supply.", err)
	}

	if err := h.reply(chatID, fmt.Sprintf("✅ Added %s with %d in stock.", name, quantity)); err != nil {
		return err
	}
	return sendSupplies(ctx, h.api, chatID, h.deps)
}

func (h *TextHandler) finishAddTimer(ctx context.Context, chatID, userID int64, name string) error {
	timerType, ok := h.stateManager.GetTempData(userID, "timerType")
	if !ok {
		return h.resetToMainMenu(chatID, userID)
	}
	h.clearConversation(userID)

	timer := &domain.Timer{
		Name: name,
		Type: domain.TimerType(timerType),
	}
	if err := h.deps.Timers.AddTimer(ctx, timer); err != nil {
		return sendError(h.api, chatID, "Could not add the timer.", err)
	}

	if err := h.reply(chatID, fmt.Sprintf("✅ Timer %s started, %d days.", name, timer.DurationDays)); err != nil {
		return err
	}
	timers, err := h.deps.Timers.ListTimers(ctx)
	if err != nil {
		return sendError(h.api, chatID, "Could not load timers.", err)
	}
	return menus.SendTimersMenu(h.api, chatID, timers)
}

func (h *TextHandler) finishStartUsing(ctx context.Context, chatID, userID int64, details domain.InUseDetails, gracePeriodHours *int) error {
	supplyID, ok := h.stateManager.GetTempData(userID, "supplyID")
	if !ok {
		return h.resetToMainMenu(chatID, userID)
	}
	h.clearConversation(userID)

	item, err := h.deps.InUse.StartUsing(ctx, supplyID, details, gracePeriodHours)
	if err != nil {
		return sendError(h.api, chatID, "Could not start using the supply.", err)
	}

	if err := h.reply(chatID, fmt.Sprintf("✅ Now using %s.", item.SupplyName)); err != nil {
		return err
	}
	return menus.SendItemDetail(h.api, chatID, item)
}

func (h *TextHandler) updateSettingInt(ctx context.Context, chatID, userID int64, text string, set func(int, *domain.NotificationSettingsPatch)) error {
	value, err := strconv.Atoi(text)
	if err != nil || value <= 0 {
		return h.reply(chatID, "Please enter a positive whole number:")
	}
	h.clearConversation(userID)

	var patch domain.NotificationSettingsPatch
	set(value, &patch)
	updated, err := h.deps.Engine.UpdateSettings(ctx, patch)
	if err != nil {
		return sendError(h.api, chatID, "Could not save settings.", err)
	}
	return menus.SendSettingsMenu(h.api, chatID, updated)
}

// parseVolumeInput reads "300", "10 ml" or "300 units"; the unit defaults to
// units when omitted.
func parseVolumeInput(text string) (float64, domain.VolumeUnit, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 || len(fields) > 2 {
		return 0, "", false
	}

	volume, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || volume <= 0 {
		return 0, "", false
	}

	unit := domain.UnitUnits
	if len(fields) == 2 {
		switch strings.ToLower(fields[1]) {
		case "ml":
			unit = domain.UnitML
		case "units", "unit", "u":
			unit = domain.UnitUnits
		default:
			return 0, "", false
		}
	}
	return volume, unit, true
}

// parseGraceHours reads a non-negative hour count; 0 means no grace period
// and maps to nil.
func parseGraceHours(text string) (*int, bool) {
	hours, err := strconv.Atoi(text)
	if err != nil || hours < 0 {
		return nil, false
	}
	if hours == 0 {
		return nil, true
	}
	return &hours, true
}

func (h *TextHandler) reply(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := h.api.Send(msg)
	return err
}

func (h *TextHandler) resetToMainMenu(chatID, userID int64) error {
	h.clearConversation(userID)
	return menus.SendMainMenu(h.api, chatID)
}

func (h *TextHandler) clearConversation(userID int64) {
	h.stateManager.SetUserState(userID, state.None)
	h.stateManager.ClearTempData(userID)
}
