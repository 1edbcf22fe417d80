package notificator

import (
	"context"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	tgModels "github.com/go-telegram/bot/models"

	"github.com/streamtip/donatio/internal/models"
	"github.com/streamtip/donatio/pkg/logger"
)

const telegramSendTimeout = 10 * time.Second

type messageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*tgModels.Message, error)
}

// TelegramNotificator posts every shown alert to the streamer's chat.
type TelegramNotificator struct {
	logger *logger.Logger
	bot    messageSender
	chatID string
}

// NewTelegramNotificator starts a bot with the given token. The bot answers
// /start with the chat id to put into TELEGRAM_CHAT_ID.
func NewTelegramNotificator(ctx context.Context, logger *logger.Logger, token, chatID string) (*TelegramNotificator, error) {
	provider := &TelegramNotificator{
		logger: logger,
		chatID: chatID,
	}
	opts := []bot.Option{
		bot.WithDefaultHandler(provider.handler),
	}

	b, err := bot.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	go b.Start(ctx)
	provider.bot = b

	return provider, nil
}

func (t *TelegramNotificator) Name() string { return "telegram" }

func (t *TelegramNotificator) Relay(notification *models.DonationNotification) error {
	if t.chatID == "" {
		return fmt.Errorf("telegram chat id is not configured")
	}
	return t.SendNotification(t.chatID, notification.String())
}

func (t *TelegramNotificator) SendNotification(chatId, message string) error {
	ctx, cancel := context.WithTimeout(context.Background(), telegramSendTimeout)
	defer cancel()
	params := &bot.SendMessageParams{
		ChatID: chatId,
		Text:   message,
	}
	if _, err := t.bot.SendMessage(ctx, params); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

func (t *TelegramNotificator) handler(ctx context.Context, b *bot.Bot, update *tgModels.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	t.logger.Debug("Telegram update", "username", update.Message.From.Username, "text", update.Message.Text)
	if update.Message.Text == "/start" {
		chatID := fmt.Sprint(update.Message.Chat.ID)
		t.logger.Info("Telegram chat registered", "username", update.Message.From.Username, "chat_id", chatID)
		if err := t.SendNotification(chatID, "Donation alerts will be posted here once TELEGRAM_CHAT_ID="+chatID+" is configured."); err != nil {
			t.logger.Error("Failed to answer /start", "error", err)
		}
	}
}
