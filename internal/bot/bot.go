// Package bot runs the Telegram front-end: command dispatch, progress
// updates and result delivery.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/factlens/social-factcheck-go/internal/db/models"
	"github.com/factlens/social-factcheck-go/internal/extractor"
	"github.com/factlens/social-factcheck-go/internal/format"
	"github.com/factlens/social-factcheck-go/internal/pipeline"
	"github.com/factlens/social-factcheck-go/internal/platform"
	"github.com/factlens/social-factcheck-go/internal/verify"
)

// Bot is the Telegram-facing command dispatcher.
type Bot struct {
	api           *tgbotapi.BotAPI
	pipeline      pipeline.Service
	logger        *zap.Logger
	maxWatches    int
	sweepInterval time.Duration
}

// NewBot creates and authorizes the bot.
func NewBot(token string, pipelineSvc pipeline.Service, maxWatches int, sweepInterval time.Duration, logger *zap.Logger) (*Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot API: %w", err)
	}

	logger.Info("Telegram bot authorized", zap.String("username", api.Self.UserName))

	return &Bot{
		api:           api,
		pipeline:      pipelineSvc,
		logger:        logger,
		maxWatches:    maxWatches,
		sweepInterval: sweepInterval,
	}, nil
}

// Start begins polling for updates and blocks until the context ends.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("Telegram bot started, waiting for updates...")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Telegram bot shutting down...")
			b.api.StopReceivingUpdates()
			return nil
		case update := <-updates:
			if update.Message != nil {
				b.handleMessage(ctx, update.Message)
			}
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if !message.IsCommand() {
		return
	}

	args := strings.TrimSpace(message.CommandArguments())

	switch message.Command() {
	case "start":
		b.handleStart(ctx, message)
	case "help":
		b.sendHTML(message.Chat.ID, format.Help(b.maxWatches, b.sweepInterval))
	case "check":
		b.handleCheck(ctx, message, args)
	case "monitor":
		b.handleMonitor(ctx, message, args)
	case "stop":
		b.handleStopWatch(ctx, message, args)
	case "list":
		b.handleList(ctx, message)
	case "stats":
		b.handleStats(ctx, message)
	default:
		b.sendHTML(message.Chat.ID, "Unknown command. Use /help for the command list.")
	}
}

func (b *Bot) handleStart(ctx context.Context, message *tgbotapi.Message) {
	user := &models.BotUser{
		TelegramID: message.From.ID,
		Username:   message.From.UserName,
		FirstName:  message.From.FirstName,
		LastName:   message.From.LastName,
	}
	if err := b.pipeline.RegisterUser(ctx, user); err != nil {
		b.logger.Error("Failed to register user", zap.Int64("telegram_id", message.From.ID), zap.Error(err))
	}

	b.sendHTML(message.Chat.ID, format.Welcome())
}

func (b *Bot) handleCheck(ctx context.Context, message *tgbotapi.Message, url string) {
	chatID := message.Chat.ID

	if url == "" {
		b.sendHTML(chatID, "Usage: /check [url]")
		return
	}

	progress, err := b.api.Send(tgbotapi.NewMessage(chatID, "⏳ Extracting content..."))
	if err != nil {
		b.logger.Error("Failed to send progress message", zap.Error(err))
	}

	record, err := b.pipeline.ExtractContent(ctx, url, message.From.ID)
	if err != nil {
		b.replaceProgress(chatID, progress.MessageID, errorMessage(err))
		return
	}

	b.editProgress(chatID, progress.MessageID, "🔍 AI analysis in progress...")

	result, err := b.pipeline.VerifyContent(ctx, record)
	if err != nil {
		b.replaceProgress(chatID, progress.MessageID, errorMessage(err))
		return
	}

	b.deleteMessage(chatID, progress.MessageID)
	b.sendHTML(chatID, format.CheckResult(result.Content, result.Verification))
}

func (b *Bot) handleMonitor(ctx context.Context, message *tgbotapi.Message, username string) {
	chatID := message.Chat.ID

	if username == "" {
		b.sendHTML(chatID, "Usage: /monitor @username")
		return
	}
	username = strings.TrimPrefix(username, "@")

	progress, err := b.api.Send(tgbotapi.NewMessage(chatID, fmt.Sprintf("🔍 Checking account @%s...", username)))
	if err != nil {
		b.logger.Error("Failed to send progress message", zap.Error(err))
	}

	info, _, err := b.pipeline.AddWatch(ctx, username, message.From.ID)
	if err != nil {
		b.replaceProgress(chatID, progress.MessageID, errorMessage(err))
		return
	}

	b.editProgressHTML(chatID, progress.MessageID,
		format.WatchStarted(username, info.Nickname, info.FollowerCount, info.VideoCount, b.sweepInterval))
}

func (b *Bot) handleStopWatch(ctx context.Context, message *tgbotapi.Message, username string) {
	chatID := message.Chat.ID

	if username == "" {
		b.sendHTML(chatID, "Usage: /stop @username")
		return
	}
	username = strings.TrimPrefix(username, "@")

	if err := b.pipeline.RemoveWatch(ctx, username); err != nil {
		if errors.Is(err, pipeline.ErrNotWatched) {
			b.sendHTML(chatID, fmt.Sprintf("ℹ️ Account @%s is not watched.", username))
			return
		}
		b.sendHTML(chatID, errorMessage(err))
		return
	}

	b.sendHTML(chatID, fmt.Sprintf("✅ Stopped watching @%s.", username))
}

func (b *Bot) handleList(ctx context.Context, message *tgbotapi.Message) {
	watches, err := b.pipeline.ListWatches(ctx, message.From.ID)
	if err != nil {
		b.sendHTML(message.Chat.ID, errorMessage(err))
		return
	}

	b.sendHTML(message.Chat.ID, format.WatchList(watches, b.maxWatches))
}

func (b *Bot) handleStats(ctx context.Context, message *tgbotapi.Message) {
	stats, err := b.pipeline.UserStats(ctx, message.From.ID)
	if err != nil {
		b.sendHTML(message.Chat.ID, errorMessage(err))
		return
	}

	b.sendHTML(message.Chat.ID, format.UserStats(stats))
}

// Notify implements the sweep worker's notifier: watch owners get the
// verification report in their own chat.
func (b *Bot) Notify(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	return nil
}

// errorMessage maps pipeline errors to the user-facing rendition.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, platform.ErrUnsupportedURL):
		return "❌ Invalid URL. Please provide a TikTok, Instagram or YouTube link."
	case errors.Is(err, extractor.ErrContentNotFound):
		return "❌ Content not found. It may be private, deleted, or older than the account's most recent uploads."
	case errors.Is(err, extractor.ErrRateLimited):
		return "⏳ The upstream API rate limit was reached. Please try again in a few minutes."
	case errors.Is(err, extractor.ErrAccessDenied):
		return "❌ The upstream API rejected our credentials. Please contact the operator."
	case errors.Is(err, verify.ErrNotConfigured):
		return "⚠️ The fact-check API key is not configured. The content was saved but could not be analyzed."
	case errors.Is(err, pipeline.ErrWatchLimitExceeded):
		return "⚠️ Limit reached: maximum number of watched accounts. Use /stop to free a slot."
	case errors.Is(err, pipeline.ErrAlreadyWatched):
		return "ℹ️ This account is already being watched."
	case errors.Is(err, pipeline.ErrNotWatched):
		return "ℹ️ This account is not being watched."
	default:
		return fmt.Sprintf("❌ Error: %v", err)
	}
}

func (b *Bot) sendHTML(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) editProgress(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Error("Failed to edit message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) editProgressHTML(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Error("Failed to edit message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// replaceProgress swaps the progress message for an error rendition.
func (b *Bot) replaceProgress(chatID int64, messageID int, text string) {
	if messageID == 0 {
		b.sendHTML(chatID, text)
		return
	}
	b.editProgress(chatID, messageID, text)
}

func (b *Bot) deleteMessage(chatID int64, messageID int) {
	if messageID == 0 {
		return
	}
	del := tgbotapi.NewDeleteMessage(chatID, messageID)
	if _, err := b.api.Request(del); err != nil {
		b.logger.Error("Failed to delete message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
