package menus

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/supplies-tracker/internal/bot/keyboards"
	"github.com/vladimiradmaev/supplies-tracker/internal/derived"
	"github.com/vladimiradmaev/supplies-tracker/internal/domain"
	"github.com/vladimiradmaev/supplies-tracker/internal/utils"
)

// SendMainMenu sends the main menu to a chat
func SendMainMenu(api *tgbotapi.BotAPI, chatID int64) error {
	text := `💊 *Supplies Tracker*

Keep stock levels, expiration dates and device wear times under control.

Choose a section:`

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboards.MainMenu()
	_, err := api.Send(msg)
	return err
}

// SendSuppliesMenu sends the supply list with low-stock markers.
func SendSuppliesMenu(api *tgbotapi.BotAPI, chatID int64, supplies []domain.Supply, fallbackThreshold int) error {
	var text string
	if len(supplies) == 0 {
		text = "No supplies yet. Add your first one below."
	} else {
		lowCount := 0
		for _, s := range supplies {
			if s.Quantity <= s.EffectiveThreshold(fallbackThreshold) {
				lowCount++
			}
		}
		text = fmt.Sprintf("📦 %d supplies tracked", len(supplies))
		if lowCount > 0 {
			text += fmt.Sprintf(", ⚠️ %d running low", lowCount)
		}
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboards.SuppliesMenu(supplies, fallbackThreshold)
	_, err := api.Send(msg)
	return err
}

// SendSupplyDetail sends a single supply with its action keyboard.
func SendSupplyDetail(api *tgbotapi.BotAPI, chatID int64, supply *domain.Supply, fallbackThreshold int) error {
	var b strings.Builder
	fmt.Fprintf(&b, "📦 %s\n", supply.Name)
	fmt.Fprintf(&b, "Category: %s\n", domain.CategoryLabels[supply.Category])
	fmt.Fprintf(&b, "Quantity: %d", supply.Quantity)
	if supply.Quantity <= supply.EffectiveThreshold(fallbackThreshold) {
		b.WriteString(" ⚠️ low")
	}
	b.WriteString("\n")
	if supply.ExpirationDate != nil {
		days := derived.DaysUntil(*supply.ExpirationDate, time.Now())
		if days < 0 {
			fmt.Fprintf(&b, "Expired: %s (%d %s ago)\n",
				utils.FormatDate(*supply.ExpirationDate), -days, utils.PluralDays(-days))
		} else {
			fmt.Fprintf(&b, "Expires: %s (in %d %s)\n",
				utils.FormatDate(*supply.ExpirationDate), days, utils.PluralDays(days))
		}
	}
	if supply.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", supply.Notes)
	}

	msg := tgbotapi.NewMessage(chatID, b.String())
	msg.ReplyMarkup = keyboards.SupplyActions(supply.ID)
	_, err := api.Send(msg)
	return err
}

// SendInUseMenu sends the in-use item list.
func SendInUseMenu(api *tgbotapi.BotAPI, chatID int64, items []domain.InUseItem) error {
	var text string
	if len(items) == 0 {
		text = "Nothing in use right now. Start using a supply from the Supplies section."
	} else {
		text = fmt.Sprintf("▶️ %d items in use", len(items))
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboards.InUseMenu(items)
	_, err := api.Send(msg)
	return err
}

// SendItemDetail sends one in-use item with remaining time or volume.
func SendItemDetail(api *tgbotapi.BotAPI, chatID int64, item *domain.InUseItem) error {
	var b strings.Builder
	fmt.Fprintf(&b, "▶️ %s\n", item.SupplyName)
	fmt.Fprintf(&b, "Started: %s\n", utils.FormatDateTime(item.StartedAt))

	switch item.Details.Type {
	case domain.DetailsInsulin:
		fmt.Fprintf(&b, "Remaining: %.1f / %.1f %s\n",
			item.Details.RemainingVolume, item.Details.TotalVolume, item.Details.Unit)
	case domain.DetailsDevice:
		state := derived.ComputeInUseState(item, time.Now())
		switch {
		case item.Details.EndedEarly:
			b.WriteString("Ended early\n")
		case state.IsInGracePeriod:
			b.WriteString("⏰ Expired, in grace period")
			if state.GracePeriodRemaining != nil {
				fmt.Fprintf(&b, " (%s left)", utils.FormatDuration(*state.GracePeriodRemaining))
			}
			b.WriteString("\n")
		case state.IsExpired:
			b.WriteString("⏰ Expired, replace now\n")
		case state.TimeRemaining != nil:
			fmt.Fprintf(&b, "Time left: %s\n", utils.FormatDuration(*state.TimeRemaining))
		}
	}

	msg := tgbotapi.NewMessage(chatID, b.String())
	msg.ReplyMarkup = keyboards.ItemActions(item)
	_, err := api.Send(msg)
	return err
}

// SendTimersMenu sends the wear-timer list.
func SendTimersMenu(api *tgbotapi.BotAPI, chatID int64, timers []domain.Timer) error {
	var text string
	if len(timers) == 0 {
		text = "No timers yet. Add one to track sensor or set wear time."
	} else {
		var b strings.Builder
		fmt.Fprintf(&b, "⏱ %d timers\n\n", len(timers))
		now := time.Now()
		for _, timer := range timers {
			state := derived.ComputeTimerState(&timer, now)
			switch {
			case state.IsExpired:
				fmt.Fprintf(&b, "🔴 %s: expired\n", timer.Name)
			case state.IsWarning:
				fmt.Fprintf(&b, "🟡 %s: %d %s left\n", timer.Name, state.DaysRemaining, utils.PluralDays(state.DaysRemaining))
			default:
				fmt.Fprintf(&b, "🟢 %s: %d %s left\n", timer.Name, state.DaysRemaining, utils.PluralDays(state.DaysRemaining))
			}
		}
		text = b.String()
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboards.TimersMenu(timers)
	_, err := api.Send(msg)
	return err
}

// SendTimerDetail sends one timer with its action keyboard.
func SendTimerDetail(api *tgbotapi.BotAPI, chatID int64, timer *domain.Timer) error {
	state := derived.ComputeTimerState(timer, time.Now())

	var b strings.Builder
	fmt.Fprintf(&b, "⏱ %s\n", timer.Name)
	fmt.Fprintf(&b, "Started: %s\n", utils.FormatDate(timer.StartDate))
	fmt.Fprintf(&b, "Duration: %d %s\n", timer.DurationDays, utils.PluralDays(timer.DurationDays))
	if state.IsExpired {
		b.WriteString("Status: 🔴 expired, replace now\n")
	} else {
		fmt.Fprintf(&b, "Status: day %d of %d, %d %s left\n",
			state.DaysPassed+1, timer.DurationDays, state.DaysRemaining, utils.PluralDays(state.DaysRemaining))
	}
	if timer.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", timer.Notes)
	}

	msg := tgbotapi.NewMessage(chatID, b.String())
	msg.ReplyMarkup = keyboards.TimerActions(timer.ID)
	_, err := api.Send(msg)
	return err
}

// SendSettingsMenu sends the notification settings menu.
func SendSettingsMenu(api *tgbotapi.BotAPI, chatID int64, settings domain.NotificationSettings) error {
	msg := tgbotapi.NewMessage(chatID, "🔔 Notification settings\n\nTap a toggle to flip it, or a value to change it:")
	msg.ReplyMarkup = keyboards.SettingsMenu(settings)
	_, err := api.Send(msg)
	return err
}

// SendHistory sends the most recent history entries.
func SendHistory(api *tgbotapi.BotAPI, chatID int64, events []domain.HistoryEvent) error {
	var text string
	if len(events) == 0 {
		text = "History is empty."
	} else {
		var b strings.Builder
		b.WriteString("📜 Recent activity\n\n")
		for _, event := range events {
			fmt.Fprintf(&b, "%s — %s\n", utils.FormatDateTime(event.Timestamp), event.Description)
		}
		text = b.String()
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboards.BackToMain()
	_, err := api.Send(msg)
	return err
}

// SendClearDataConfirm asks for confirmation before wiping all data.
func SendClearDataConfirm(api *tgbotapi.BotAPI, chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, "⚠️ This removes all supplies, timers, in-use items and history. There is no undo.")
	msg.ReplyMarkup = keyboards.ClearDataConfirm()
	_, err := api.Send(msg)
	return err
}
