package keyboards

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/supplies-tracker/internal/domain"
)

// MainMenu creates the main menu keyboard
func MainMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📦 Supplies", "supplies"),
			tgbotapi.NewInlineKeyboardButtonData("▶️ In Use", "inuse"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏱ Timers", "timers"),
			tgbotapi.NewInlineKeyboardButtonData("📜 History", "history"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔔 Notifications", "settings"),
		),
	)
}

// SuppliesMenu lists supplies as buttons, flagging low-stock entries.
func SuppliesMenu(supplies []domain.Supply, fallbackThreshold int) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(supplies)+2)
	for _, supply := range supplies {
		label := fmt.Sprintf("%s (%d)", supply.Name, supply.Quantity)
		if supply.Quantity <= supply.EffectiveThreshold(fallbackThreshold) {
			label = "⚠️ " + label
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, "supply:"+supply.ID),
		))
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Add Supply", "supplies:add"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Main Menu", "main_menu"),
		),
	)
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// SupplyActions creates the per-supply action keyboard
func SupplyActions(id string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕1", "supply_inc:"+id),
			tgbotapi.NewInlineKeyboardButtonData("➖1", "supply_dec:"+id),
			tgbotapi.NewInlineKeyboardButtonData("✏️ Set", "supply_set:"+id),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("▶️ Start Using", "supply_use:"+id),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Delete", "supply_del:"+id),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Supplies", "supplies"),
		),
	)
}

// CategoryMenu lists supply categories for the add-supply flow.
func CategoryMenu() tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(domain.AllCategories)/2+2)
	for i := 0; i < len(domain.AllCategories); i += 2 {
		row := []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(
				domain.CategoryLabels[domain.AllCategories[i]],
				"addcat:"+string(domain.AllCategories[i])),
		}
		if i+1 < len(domain.AllCategories) {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(
				domain.CategoryLabels[domain.AllCategories[i+1]],
				"addcat:"+string(domain.AllCategories[i+1])))
		}
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀️ Supplies", "supplies"),
	))
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// InUseMenu lists active in-use items.
func InUseMenu(items []domain.InUseItem) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(items)+1)
	for _, item := range items {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(item.SupplyName, "item:"+item.ID),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀️ Main Menu", "main_menu"),
	))
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// ItemActions creates the per-item keyboard. Insulin items get a usage
// button, devices get an end-early button.
func ItemActions(item *domain.InUseItem) tgbotapi.InlineKeyboardMarkup {
	var firstRow []tgbotapi.InlineKeyboardButton
	if item.Details.Type == domain.DetailsInsulin {
		firstRow = append(firstRow,
			tgbotapi.NewInlineKeyboardButtonData("💉 Record Usage", "item_vol:"+item.ID))
	} else if !item.Details.EndedEarly {
		firstRow = append(firstRow,
			tgbotapi.NewInlineKeyboardButtonData("⏹ End Early", "item_end:"+item.ID))
	}
	firstRow = append(firstRow,
		tgbotapi.NewInlineKeyboardButtonData("🗑 Remove", "item_del:"+item.ID))

	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(firstRow...),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ In Use", "inuse"),
		),
	)
}

// TimersMenu lists wear timers.
func TimersMenu(timers []domain.Timer) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(timers)+2)
	for _, timer := range timers {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(timer.Name, "timer:"+timer.ID),
		))
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Add Timer", "timers:add"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Main Menu", "main_menu"),
		),
	)
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// TimerActions creates the per-timer action keyboard
func TimerActions(id string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Reset", "timer_reset:"+id),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Delete", "timer_del:"+id),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Timers", "timers"),
		),
	)
}

// TimerTypeMenu lists timer types for the add-timer flow.
func TimerTypeMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("CGM Sensor (10d)", "addtimer:cgm"),
			tgbotapi.NewInlineKeyboardButtonData("Infusion Set (3d)", "addtimer:infusion-set"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Custom (7d)", "addtimer:custom"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Timers", "timers"),
		),
	)
}

// SettingsMenu shows toggles with their current value.
func SettingsMenu(settings domain.NotificationSettings) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				toggleLabel("Low Stock", settings.LowStockEnabled), "toggle_lowstock"),
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("Threshold: %d", settings.LowStockThreshold), "set_threshold"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				toggleLabel("Expiration", settings.ExpirationEnabled), "toggle_expiration"),
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("Warn: %dd before", settings.ExpirationDays), "set_expdays"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				toggleLabel("Device Timers", settings.DeviceTimerEnabled), "toggle_device"),
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("Remind: %dh before", settings.DeviceReminderHours), "set_remhours"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Clear All Data", "clear_data"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Main Menu", "main_menu"),
		),
	)
}

// ClearDataConfirm asks before wiping everything.
func ClearDataConfirm() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⚠️ Yes, delete everything", "clear_confirm"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Cancel", "settings"),
		),
	)
}

// BackToMain creates a single back button
func BackToMain() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Main Menu", "main_menu"),
		),
	)
}

func toggleLabel(name string, enabled bool) string {
	if enabled {
		return "🔔 " + name + ": on"
	}
	return "🔕 " + name + ": off"
}
