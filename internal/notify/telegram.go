package notify

import (
	"context"
	"time"

	"earnhub/internal/logger"
	"earnhub/internal/repository"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramSink delivers events as bot messages. Each delivery runs in
// its own goroutine; failures are logged and dropped.
type TelegramSink struct {
	bot   *tgbotapi.BotAPI
	users *repository.UserRepository
}

func NewTelegramSink(bot *tgbotapi.BotAPI, users *repository.UserRepository) *TelegramSink {
	return &TelegramSink{bot: bot, users: users}
}

func (s *TelegramSink) Notify(e Event) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		user, err := s.users.GetByID(ctx, e.UserID)
		if err != nil {
			logger.Error("notify: user lookup failed", "user_id", e.UserID, "error", err)
			return
		}

		msg := tgbotapi.NewMessage(user.TgID, e.Text)
		if _, err := s.bot.Send(msg); err != nil {
			logger.Error("notify: telegram send failed",
				"tg_id", user.TgID, "kind", e.Kind, "error", err)
		}
	}()
}

// NotifyAdmins sends a plain message to every configured admin chat.
// Used by the bot and the stale-queue sweeper.
func (s *TelegramSink) NotifyAdmins(adminIDs []int64, text string) {
	go func() {
		for _, id := range adminIDs {
			if _, err := s.bot.Send(tgbotapi.NewMessage(id, text)); err != nil {
				logger.Error("notify: admin send failed", "tg_id", id, "error", err)
			}
		}
	}()
}
