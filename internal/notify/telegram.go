package notify

import (
	"context"
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/optionwatch/optionwatch/internal/config"
)

// TelegramChannel sends alerts through the Telegram Bot API.
type TelegramChannel struct {
	bot        *tgbotapi.BotAPI
	chatID     int64
	maxRetries int
	retryDelay time.Duration
	sleep      func(time.Duration)
}

// NewTelegram creates a Telegram channel from config.
func NewTelegram(cfg config.TelegramConfig) (*TelegramChannel, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	chatID, err := strconv.ParseInt(cfg.ChatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid Telegram chat ID: %w", err)
	}

	return &TelegramChannel{
		bot:        bot,
		chatID:     chatID,
		maxRetries: 3,
		retryDelay: time.Second,
		sleep:      time.Sleep,
	}, nil
}

// Name returns the channel identifier.
func (c *TelegramChannel) Name() string { return "telegram" }

// Send delivers the alert message with linear-backoff retry.
func (c *TelegramChannel) Send(ctx context.Context, alert *Alert) error {
	msg := tgbotapi.NewMessage(c.chatID, FormatMessage(alert))
	return c.sendWithRetry(ctx, func() error {
		_, err := c.bot.Send(msg)
		return err
	})
}

func (c *TelegramChannel) sendWithRetry(ctx context.Context, send func() error) error {
	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := send(); err == nil {
			return nil
		} else {
			lastErr = err
		}
		// No point backing off once the attempts are exhausted.
		if i < c.maxRetries-1 {
			c.sleep(c.retryDelay * time.Duration(i+1))
		}
	}
	return fmt.Errorf("failed after %d retries: %w", c.maxRetries, lastErr)
}
