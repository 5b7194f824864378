package notifications

import (
	"context"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/supplies-tracker/internal/logger"
)

// TelegramNotifier delivers reminders as Telegram messages to the owner chat.
// Delayed triggers run on in-process timers keyed by identifier; scheduling an
// identifier that already has a pending timer replaces it, so a reconcile that
// runs twice before a trigger fires yields one delivery, not two.
type TelegramNotifier struct {
	api    *tgbotapi.BotAPI
	chatID int64

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// NewTelegramNotifier creates a notifier for the given bot and chat id. A zero
// chat id disables delivery.
func NewTelegramNotifier(api *tgbotapi.BotAPI, chatID int64) *TelegramNotifier {
	return &TelegramNotifier{
		api:     api,
		chatID:  chatID,
		pending: make(map[string]*time.Timer),
	}
}

func (n *TelegramNotifier) Schedule(ctx context.Context, title, body string, trigger *Trigger, identifier string) (string, error) {
	if !n.RequestPermissions(ctx) {
		return "", nil
	}

	if trigger == nil {
		if err := n.send(title, body); err != nil {
			return "", fmt.Errorf("failed to deliver notification %q: %w", identifier, err)
		}
		return identifier, nil
	}

	delay := time.Until(trigger.At)
	if delay <= 0 {
		if err := n.send(title, body); err != nil {
			return "", fmt.Errorf("failed to deliver notification %q: %w", identifier, err)
		}
		return identifier, nil
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	// Upsert: stop any pending timer for the same identifier.
	if existing, ok := n.pending[identifier]; ok {
		existing.Stop()
	}
	n.pending[identifier] = time.AfterFunc(delay, func() {
		n.mu.Lock()
		delete(n.pending, identifier)
		n.mu.Unlock()

		if err := n.send(title, body); err != nil {
			logger.Warn("Failed to deliver scheduled notification",
				"identifier", identifier, "error", err)
		}
	})

	logger.Debug("Notification scheduled", "identifier", identifier, "at", trigger.At)
	return identifier, nil
}

func (n *TelegramNotifier) Cancel(identifier string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if timer, ok := n.pending[identifier]; ok {
		timer.Stop()
		delete(n.pending, identifier)
		logger.Debug("Notification cancelled", "identifier", identifier)
	}
}

func (n *TelegramNotifier) CancelAll() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for identifier, timer := range n.pending {
		timer.Stop()
		delete(n.pending, identifier)
	}
}

func (n *TelegramNotifier) RequestPermissions(_ context.Context) bool {
	return n.api != nil && n.chatID != 0
}

func (n *TelegramNotifier) send(title, body string) error {
	msg := tgbotapi.NewMessage(n.chatID, fmt.Sprintf("🔔 %s\n%s", title, body))
	_, err := n.api.Send(msg)
	return err
}
