package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"earnhub/internal/logger"
	"earnhub/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// AdminBot handles admin commands via Telegram
type AdminBot struct {
	bot         *tgbotapi.BotAPI
	admin       *service.AdminService
	tasks       *service.TaskService
	withdrawals *service.WithdrawalService
	adminIDs    []int64 // Telegram user IDs who can use admin commands
	stopCh      chan struct{}
	wg          sync.WaitGroup
	log         *slog.Logger
}

// NewAdminBot creates a new admin bot on an already authorized API client.
func NewAdminBot(api *tgbotapi.BotAPI, admin *service.AdminService, tasks *service.TaskService, withdrawals *service.WithdrawalService, adminIDs []int64) *AdminBot {
	log := logger.With("component", "admin_bot")
	log.Info("admin bot ready", "username", api.Self.UserName)

	return &AdminBot{
		bot:         api,
		admin:       admin,
		tasks:       tasks,
		withdrawals: withdrawals,
		adminIDs:    adminIDs,
		stopCh:      make(chan struct{}),
		log:         log,
	}
}

// Start starts listening for commands
func (b *AdminBot) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.bot.GetUpdatesChan(u)
	b.log.Info("starting bot update loop")

	for {
		select {
		case <-b.stopCh:
			b.log.Info("stopping bot update loop")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}

			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}

			// Check if user is admin
			if !b.isAdmin(update.Message.From.ID) {
				continue
			}

			b.wg.Add(1)
			go func(msg *tgbotapi.Message) {
				defer b.wg.Done()
				b.handleCommand(msg)
			}(update.Message)
		}
	}
}

// Stop gracefully stops the bot
func (b *AdminBot) Stop() {
	b.log.Info("stopping admin bot...")
	close(b.stopCh)
	b.bot.StopReceivingUpdates()

	// Wait for pending handlers with timeout
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.log.Info("admin bot stopped gracefully")
	case <-time.After(10 * time.Second):
		b.log.Warn("admin bot shutdown timeout, some handlers may not have completed")
	}
}

// isAdmin checks if user is an admin
func (b *AdminBot) isAdmin(userID int64) bool {
	for _, id := range b.adminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// handleCommand processes admin commands
func (b *AdminBot) handleCommand(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var response string

	switch msg.Command() {
	case "start", "help":
		response = b.helpMessage()

	case "stats":
		response = b.handleStats(ctx)

	case "user":
		response = b.handleUser(ctx, msg.CommandArguments())

	case "ban":
		response = b.handleBan(ctx, msg.CommandArguments(), true)

	case "unban":
		response = b.handleBan(ctx, msg.CommandArguments(), false)

	case "queue":
		response = b.handleReviewQueue(ctx)

	case "approve":
		response = b.handleReview(ctx, msg.CommandArguments(), true)

	case "reject":
		response = b.handleReview(ctx, msg.CommandArguments(), false)

	case "withdrawals":
		response = b.handleWithdrawals(ctx)

	case "wapprove":
		response = b.handleDecide(ctx, msg.CommandArguments(), true)

	case "wreject":
		response = b.handleDecide(ctx, msg.CommandArguments(), false)

	case "paid":
		response = b.handlePaid(ctx, msg.CommandArguments())

	default:
		response = "❌ Неизвестная команда. Используйте /help для списка команд."
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, response)
	reply.ParseMode = "HTML"
	reply.ReplyToMessageID = msg.MessageID

	if _, err := b.bot.Send(reply); err != nil {
		b.log.Error("error sending message", "error", err)
	}
}

func (b *AdminBot) helpMessage() string {
	return `<b>🤖 Команды администратора</b>

<b>📊 Статистика:</b>
/stats - Статистика платформы
/user &lt;tg_id&gt; - Информация о пользователе

<b>📋 Проверка заданий:</b>
/queue - Ожидающие проверки
/approve &lt;id&gt; [комментарий] - Одобрить задание
/reject &lt;id&gt; &lt;причина&gt; - Отклонить задание

<b>💸 Выводы:</b>
/withdrawals - Ожидающие выводы
/wapprove &lt;id&gt; [комментарий] - Одобрить вывод
/wreject &lt;id&gt; &lt;причина&gt; - Отклонить вывод
/paid &lt;id&gt; - Отметить как выплаченный

<b>👤 Управление пользователями:</b>
/ban &lt;tg_id&gt; - Заблокировать
/unban &lt;tg_id&gt; - Разблокировать`
}

func (b *AdminBot) handleStats(ctx context.Context) string {
	stats, err := b.admin.GetStats(ctx)
	if err != nil {
		return fmt.Sprintf("❌ Ошибка: %v", err)
	}

	return fmt.Sprintf(`<b>📊 Статистика платформы</b>

<b>👥 Пользователи:</b>
• Всего: %d
• Активных сегодня: %d

<b>📋 Задания:</b>
• Всего: %d
• Активных: %d
• Ожидают проверки: %d
• Одобрено сегодня: %d

<b>💰 Экономика:</b>
• Основные кошельки: %d
• Кассовые кошельки: %d

<b>💸 Выводы:</b>
• Ожидают решения: %d
• Сумма в очереди: %d
• Выплачено всего: %d`,
		stats.TotalUsers,
		stats.ActiveUsersToday,
		stats.TotalTasks,
		stats.ActiveTasks,
		stats.PendingSubmissions,
		stats.ApprovedToday,
		stats.TotalMainBalance,
		stats.TotalCashBalance,
		stats.PendingWithdrawals,
		stats.PendingPayoutSum,
		stats.TotalPaidOut,
	)
}

func (b *AdminBot) handleUser(ctx context.Context, args string) string {
	if args == "" {
		return "❌ Использование: /user <tg_id>"
	}

	tgID, err := strconv.ParseInt(strings.TrimSpace(args), 10, 64)
	if err != nil {
		return "❌ Неверный Telegram ID"
	}

	user, err := b.admin.GetUserByTgID(ctx, tgID)
	if err != nil {
		return fmt.Sprintf("❌ Пользователь не найден: %v", err)
	}

	banned := "нет"
	if user.IsBanned {
		banned = "да"
	}

	return fmt.Sprintf(`<b>👤 Информация о пользователе</b>

• ID: %d
• Telegram ID: %d
• Username: @%s
• Имя: %s
• 💰 Основной: %d
• 💵 Кассовый: %d
• ✅ Заданий выполнено: %d
• 🚫 Заблокирован: %s
• 📅 Регистрация: %s`,
		user.ID,
		user.TgID,
		user.Username,
		user.FirstName,
		user.MainWallet,
		user.CashWallet,
		user.TasksCompleted,
		banned,
		user.CreatedAt.Format("02.01.2006 15:04"),
	)
}

func (b *AdminBot) handleBan(ctx context.Context, args string, banned bool) string {
	if args == "" {
		if banned {
			return "❌ Использование: /ban <tg_id>"
		}
		return "❌ Использование: /unban <tg_id>"
	}

	tgID, err := strconv.ParseInt(strings.TrimSpace(args), 10, 64)
	if err != nil {
		return "❌ Неверный Telegram ID"
	}

	if err := b.admin.SetBannedByTgID(ctx, tgID, banned); err != nil {
		return fmt.Sprintf("❌ Ошибка: %v", err)
	}

	if banned {
		return fmt.Sprintf("🚫 Пользователь %d заблокирован", tgID)
	}
	return fmt.Sprintf("✅ Пользователь %d разблокирован", tgID)
}

func (b *AdminBot) handleReviewQueue(ctx context.Context) string {
	subs, err := b.tasks.ListPendingReview(ctx, 20)
	if err != nil {
		return fmt.Sprintf("❌ Ошибка: %v", err)
	}

	if len(subs) == 0 {
		return "✅ Нет заданий на проверке"
	}

	var sb strings.Builder
	sb.WriteString("<b>📋 Ожидают проверки</b>\n\n")

	for _, s := range subs {
		sb.WriteString(fmt.Sprintf("🆔 #%d | user %d | task %d\n", s.ID, s.UserID, s.TaskID))
		sb.WriteString(fmt.Sprintf("📎 Доказательство: <code>%s</code>\n", s.ProofRef))
		if s.SubmittedAt != nil {
			sb.WriteString(fmt.Sprintf("📅 %s\n", s.SubmittedAt.Format("02.01.2006 15:04")))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("/approve <id> — одобрить\n/reject <id> <причина> — отклонить")
	return sb.String()
}

func (b *AdminBot) handleReview(ctx context.Context, args string, approve bool) string {
	parts := strings.SplitN(args, " ", 2)
	if len(parts) < 1 || parts[0] == "" {
		if approve {
			return "❌ Использование: /approve <id> [комментарий]"
		}
		return "❌ Использование: /reject <id> <причина>"
	}

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return "❌ Неверный ID"
	}

	note := ""
	if len(parts) == 2 {
		note = parts[1]
	}
	if !approve && note == "" {
		return "❌ Укажите причину отклонения"
	}

	sub, err := b.tasks.Review(ctx, id, approve, note)
	if err != nil {
		return fmt.Sprintf("❌ Ошибка: %v", err)
	}

	if approve {
		return fmt.Sprintf("✅ Задание #%d одобрено, награда начислена пользователю %d", sub.ID, sub.UserID)
	}
	return fmt.Sprintf("❌ Задание #%d отклонено", sub.ID)
}

func (b *AdminBot) handleWithdrawals(ctx context.Context) string {
	pending, err := b.withdrawals.ListPending(ctx)
	if err != nil {
		return fmt.Sprintf("❌ Ошибка: %v", err)
	}

	if len(pending) == 0 {
		return "✅ Нет ожидающих выводов"
	}

	var sb strings.Builder
	sb.WriteString("<b>💸 Ожидающие выводы</b>\n\n")

	for _, w := range pending {
		sb.WriteString(fmt.Sprintf("🆔 #%d | user %d\n", w.ID, w.UserID))
		sb.WriteString(fmt.Sprintf("💰 Сумма: %d (комиссия %d, к выплате %d)\n", w.Amount, w.Fee, w.NetPayout))
		sb.WriteString(fmt.Sprintf("💳 Способ: %s\n", w.Method))
		sb.WriteString(fmt.Sprintf("📅 %s\n\n", w.CreatedAt.Format("02.01.2006 15:04")))
	}

	sb.WriteString("/wapprove <id> — одобрить\n/wreject <id> <причина> — отклонить")
	return sb.String()
}

func (b *AdminBot) handleDecide(ctx context.Context, args string, approve bool) string {
	parts := strings.SplitN(args, " ", 2)
	if len(parts) < 1 || parts[0] == "" {
		if approve {
			return "❌ Использование: /wapprove <id> [комментарий]"
		}
		return "❌ Использование: /wreject <id> <причина>"
	}

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return "❌ Неверный ID вывода"
	}

	note := ""
	if len(parts) == 2 {
		note = parts[1]
	}
	if !approve && note == "" {
		return "❌ Укажите причину отклонения"
	}

	w, err := b.withdrawals.Decide(ctx, id, approve, note)
	if err != nil {
		return fmt.Sprintf("❌ Ошибка: %v", err)
	}

	if approve {
		return fmt.Sprintf("✅ Вывод #%d одобрен. К выплате: %d\n/paid %d — после отправки средств", w.ID, w.NetPayout, w.ID)
	}
	return fmt.Sprintf("❌ Вывод #%d отклонён", w.ID)
}

func (b *AdminBot) handlePaid(ctx context.Context, args string) string {
	if args == "" {
		return "❌ Использование: /paid <id>"
	}

	id, err := strconv.ParseInt(strings.TrimSpace(args), 10, 64)
	if err != nil {
		return "❌ Неверный ID вывода"
	}

	w, err := b.withdrawals.MarkPaid(ctx, id)
	if err != nil {
		return fmt.Sprintf("❌ Ошибка: %v", err)
	}

	return fmt.Sprintf("💸 Вывод #%d отмечен как выплаченный (%d)", w.ID, w.NetPayout)
}

// NotifyStalePending reminds admins about withdrawal requests that have
// sat in the queue too long.
func (b *AdminBot) NotifyStalePending(ctx context.Context, olderThanHours int) {
	stale, err := b.admin.StalePendingWithdrawals(ctx, olderThanHours)
	if err != nil {
		b.log.Error("stale pending check failed", "error", err)
		return
	}
	if len(stale) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("⏰ <b>%d выводов ждут решения дольше %d ч.</b>\n\n", len(stale), olderThanHours))
	for _, w := range stale {
		sb.WriteString(fmt.Sprintf("🆔 #%d | user %d | %d | %s\n",
			w.ID, w.UserID, w.Amount, w.CreatedAt.Format("02.01.2006 15:04")))
	}
	sb.WriteString("\n/withdrawals — очередь")

	for _, adminID := range b.adminIDs {
		msg := tgbotapi.NewMessage(adminID, sb.String())
		msg.ParseMode = "HTML"
		if _, err := b.bot.Send(msg); err != nil {
			b.log.Error("failed to notify admin", "admin_id", adminID, "error", err)
		}
	}
}
