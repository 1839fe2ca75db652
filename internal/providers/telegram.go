package providers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"golang.org/x/time/rate"

	"jira-dashboard/internal/config"
	"jira-dashboard/internal/logging"
	"jira-dashboard/internal/models"
	"jira-dashboard/internal/utils"
)

// telegramLimiter is the global rate limiter for Telegram messages
var telegramLimiter *rate.Limiter

func initTelegramLimiter(ratePerSecond int) {
	telegramLimiter = rate.NewLimiter(rate.Limit(float64(ratePerSecond)), ratePerSecond)
}

// SendTelegram delivers an alert to the configured chat via go-telegram/bot.
func SendTelegram(ctx context.Context, alert models.NotificationAlert, cfg config.Config, logger *logging.Logger) error {
	if telegramLimiter == nil {
		initTelegramLimiter(cfg.Telegram.RatePerSecond)
	}
	if err := telegramLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("telegram rate limit exceeded: %w", err)
	}

	if cfg.Telegram.BotToken == "" {
		return fmt.Errorf("missing bot_token in Telegram configuration")
	}
	if cfg.Telegram.ChatID == 0 {
		return fmt.Errorf("missing chat_id in Telegram configuration")
	}

	text := fmt.Sprintf(
		"*%s*\n%s\n\n"+
			"*Sprint:* %s\n"+
			"*Completion:* %.1f%%\n"+
			"*Ideal:* %.1f%%\n"+
			"*Lag:* %.1f%%\n\n"+
			"Suggested actions:\n- %s",
		alert.Title,
		alert.Message,
		alert.SprintName,
		alert.CurrentCompletionRate,
		alert.IdealCompletionRate,
		alert.LagPercentage,
		strings.Join(alert.SuggestedActions, "\n- "),
	)

	// Retry sending message
	return utils.Retry(logger, 3, time.Second, func() error {
		b, err := bot.New(cfg.Telegram.BotToken)
		if err != nil {
			return fmt.Errorf("failed to initialize Telegram bot: %w", err)
		}

		params := &bot.SendMessageParams{
			ChatID:    cfg.Telegram.ChatID,
			Text:      text,
			ParseMode: "Markdown",
		}
		if _, err := b.SendMessage(ctx, params); err != nil {
			return fmt.Errorf("failed to send Telegram message to chat_id %d: %w", cfg.Telegram.ChatID, err)
		}
		return nil
	})
}
