package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"Booking-Telegram-bot/internal/db"
	"Booking-Telegram-bot/internal/messages"
)

const helpText = `Доступные команды:
/profiles — Смотреть анкеты
/games — Анкеты по играм
/orders — Мои заказы
/cancel — Прервать бронирование
/help — Показать эту справку

Бронирование: /profiles → «Забронировать» → формат → игра → дата → время → продолжительность → участники → подтверждение.`

func (b *Bot) reply(chatID int64, text string, markup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := b.api.Send(msg); err != nil {
		b.log.Warn("send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) answer(cb *tgbotapi.CallbackQuery, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, text)); err != nil {
		b.log.Debug("callback answer failed", zap.Error(err))
	}
}

func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	from := update.SentFrom()
	if from == nil {
		return
	}
	// пользователь регистрируется при любом обращении
	user, err := b.store.GetOrCreateUser(ctx, from.ID, from.UserName, from.FirstName)
	if err != nil {
		b.log.Error("register user", zap.Int64("telegram_id", from.ID), zap.Error(err))
		return
	}

	if update.CallbackQuery != nil {
		b.handleCallback(ctx, user, update.CallbackQuery)
		return
	}
	msg := update.Message
	if msg == nil {
		return
	}

	isAdmin := b.cfg.IsAdmin(from.ID)
	if isAdmin && b.admin.IsCommand(msg) {
		b.admin.HandleCommand(ctx, msg)
		return
	}

	key := "text"
	if msg.IsCommand() {
		key = "/" + msg.Command()
	}
	if !isAdmin && b.limiter.IsLimited(from.ID, key) {
		b.reply(msg.Chat.ID, "Пожалуйста, не так быстро! Подождите пару секунд...", nil)
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, user, msg, isAdmin)
		return
	}
	b.handleText(ctx, user, msg)
}

func (b *Bot) handleCommand(ctx context.Context, user *db.User, msg *tgbotapi.Message, isAdmin bool) {
	chatID := msg.Chat.ID
	if msg.Command() != "start" && msg.Command() != "help" && !user.RulesAccepted {
		b.reply(chatID, messages.Rules, rulesKeyboard())
		return
	}
	switch msg.Command() {
	case "start":
		b.sessions.Reset(chatID)
		if !user.RulesAccepted {
			b.reply(chatID, messages.Rules, rulesKeyboard())
			return
		}
		b.reply(chatID, "Добро пожаловать! Выберите анкету через /profiles", GetReplyKeyboard(isAdmin))
	case "help":
		b.reply(chatID, helpText, GetReplyKeyboard(isAdmin))
	case "profiles":
		sess := b.sessions.Get(chatID)
		sess.GameFilter = nil
		sess.ProfileIndex = 0
		b.showProfile(ctx, chatID)
	case "games":
		b.showGameFilter(ctx, chatID)
	case "orders":
		b.showOrders(ctx, chatID, user.TelegramID)
	case "cancel":
		b.sessions.Get(chatID).ResetBooking()
		b.reply(chatID, "Бронирование прервано.", GetReplyKeyboard(isAdmin))
	default:
		b.reply(chatID, "Неизвестная команда. Используйте /help для списка всех возможностей.", GetReplyKeyboard(isAdmin))
	}
}

func (b *Bot) handleCallback(ctx context.Context, user *db.User, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		b.answer(cb, "")
		return
	}
	chatID := cb.Message.Chat.ID
	action, arg := parseCallback(cb.Data)

	if action == cbRulesAccept {
		if _, err := b.store.AcceptRules(ctx, user.TelegramID); err != nil {
			b.log.Error("accept rules", zap.Int64("telegram_id", user.TelegramID), zap.Error(err))
			b.answer(cb, "Ошибка, попробуйте позже")
			return
		}
		b.answer(cb, "Правила приняты")
		b.reply(chatID, "Спасибо! Теперь можно выбрать анкету через /profiles", GetReplyKeyboard(b.cfg.IsAdmin(user.TelegramID)))
		return
	}
	if !user.RulesAccepted {
		b.answer(cb, "")
		b.reply(chatID, messages.Rules, rulesKeyboard())
		return
	}

	sess := b.sessions.Get(chatID)
	switch action {
	case cbProfilePrev:
		sess.ProfileIndex--
		b.answer(cb, "")
		b.showProfile(ctx, chatID)
	case cbProfileNext:
		sess.ProfileIndex++
		b.answer(cb, "")
		b.showProfile(ctx, chatID)
	case cbProfileGame:
		id, ok := parseID(arg)
		if !ok {
			b.answer(cb, "Игра не найдена")
			return
		}
		sess.GameFilter = &id
		sess.ProfileIndex = 0
		b.answer(cb, "")
		b.showProfile(ctx, chatID)
	case cbProfileAll:
		sess.GameFilter = nil
		sess.ProfileIndex = 0
		b.answer(cb, "")
		b.showProfile(ctx, chatID)
	case cbNotifyToggle:
		b.toggleNotifications(ctx, cb, user, arg)
	default:
		b.handleBookingCallback(ctx, cb, user, sess, action, arg)
	}
}

func (b *Bot) showProfile(ctx context.Context, chatID int64) {
	sess := b.sessions.Get(chatID)
	var (
		profiles []db.Profile
		err      error
	)
	if sess.GameFilter != nil {
		profiles, err = b.store.ListProfilesByGame(ctx, *sess.GameFilter)
	} else {
		profiles, err = b.store.ListProfiles(ctx)
	}
	if err != nil {
		b.log.Error("list profiles", zap.Error(err))
		b.reply(chatID, "Не удалось загрузить анкеты, попробуйте позже", nil)
		return
	}
	if len(profiles) == 0 {
		b.reply(chatID, "Анкет пока нет. Загляните позже!", nil)
		return
	}

	total := len(profiles)
	sess.ProfileIndex = ((sess.ProfileIndex % total) + total) % total
	p := &profiles[sess.ProfileIndex]

	if len(p.PhotoIDs) > 0 {
		if err := b.sender.SendPhotos(chatID, p.PhotoIDs, p.Name); err != nil {
			b.log.Warn("send profile photos", zap.Uint("profile_id", p.ID), zap.Error(err))
		}
	}
	b.reply(chatID, messages.ProfileCard(p, sess.ProfileIndex, total), profileKeyboard(p, total))
}

func (b *Bot) showGameFilter(ctx context.Context, chatID int64) {
	games, err := b.store.ListGames(ctx, 0, 0)
	if err != nil {
		b.log.Error("list games", zap.Error(err))
		b.reply(chatID, "Не удалось загрузить игры, попробуйте позже", nil)
		return
	}
	if len(games) == 0 {
		b.reply(chatID, "Список игр пока пуст.", nil)
		return
	}
	b.reply(chatID, "Выберите игру:", gameFilterKeyboard(games))
}

func (b *Bot) showOrders(ctx context.Context, chatID, telegramID int64) {
	orders, err := b.store.ListOrdersByUser(ctx, telegramID)
	if err != nil {
		b.log.Error("list user orders", zap.Int64("telegram_id", telegramID), zap.Error(err))
		b.reply(chatID, "Не удалось загрузить заказы, попробуйте позже", nil)
		return
	}
	if len(orders) == 0 {
		b.reply(chatID, "У вас пока нет заказов. Выберите анкету через /profiles", nil)
		return
	}
	lines := make([]string, 0, len(orders)+1)
	lines = append(lines, "Ваши заказы:")
	for i := range orders {
		lines = append(lines, messages.OrderLine(&orders[i], b.cfg.Location))
	}
	b.reply(chatID, strings.Join(lines, "\n"), ordersKeyboard(orders))
}

func (b *Bot) toggleNotifications(ctx context.Context, cb *tgbotapi.CallbackQuery, user *db.User, arg string) {
	id, ok := parseID(arg)
	if !ok {
		b.answer(cb, "Заказ не найден")
		return
	}
	o, err := b.store.GetOrder(ctx, id)
	if err != nil || o.UserID != user.ID {
		b.answer(cb, "Заказ не найден")
		return
	}
	enabled, err := b.orders.ToggleNotifications(ctx, id)
	if err != nil {
		b.log.Error("toggle notifications", zap.Uint("order_id", id), zap.Error(err))
		b.answer(cb, "Ошибка, попробуйте позже")
		return
	}
	if enabled {
		b.answer(cb, "Напоминание включено")
	} else {
		b.answer(cb, "Напоминание выключено")
	}
}
