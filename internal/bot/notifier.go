package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Notifier is a send-only Telegram client for worker processes that must
// alert users without running the full command dispatcher.
type Notifier struct {
	api    *tgbotapi.BotAPI
	logger *zap.Logger
}

// NewNotifier authorizes a send-only bot client.
func NewNotifier(token string, logger *zap.Logger) (*Notifier, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot API: %w", err)
	}

	logger.Info("Telegram notifier authorized", zap.String("username", api.Self.UserName))

	return &Notifier{api: api, logger: logger}, nil
}

// Notify sends an HTML message to a chat.
func (n *Notifier) Notify(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	return nil
}
