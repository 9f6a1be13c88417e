package bot

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"Booking-Telegram-bot/internal/db"
	"Booking-Telegram-bot/internal/messages"
	"Booking-Telegram-bot/internal/pricing"
	"Booking-Telegram-bot/internal/services"
	"Booking-Telegram-bot/internal/validate"
)

func (b *Bot) handleBookingCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, user *db.User, sess *Session, action, arg string) {
	chatID := cb.Message.Chat.ID
	switch action {
	case cbBook:
		id, ok := parseID(arg)
		if !ok {
			b.answer(cb, "Анкета не найдена")
			return
		}
		p, err := b.store.GetProfile(ctx, id)
		if err != nil {
			b.answer(cb, "Анкета не найдена")
			return
		}
		sess.ResetBooking()
		sess.ProfileID = p.ID
		sess.Step = StepFormat
		b.answer(cb, "")
		b.reply(chatID, "Выберите формат встречи с "+p.Name+":", formatKeyboard(p))

	case cbFormat:
		if sess.Step != StepFormat {
			b.answer(cb, "Начните бронирование заново через /profiles")
			return
		}
		f := pricing.Format(arg)
		if !f.Valid() {
			b.answer(cb, "Неизвестный формат")
			return
		}
		sess.Format = f
		b.answer(cb, f.Title())
		b.askGame(ctx, chatID, sess)

	case cbGame, cbGameSkip:
		if sess.Step != StepGame {
			b.answer(cb, "Начните бронирование заново через /profiles")
			return
		}
		sess.GameID = nil
		if action == cbGame {
			if id, ok := parseID(arg); ok {
				sess.GameID = &id
			}
		}
		sess.Step = StepDate
		b.answer(cb, "")
		b.reply(chatID, "📅 Введите дату встречи в формате ДД.ММ.ГГГГ (например, 26.11.2025):", nil)

	case cbConfirm:
		if sess.Step != StepConfirm {
			b.answer(cb, "Начните бронирование заново через /profiles")
			return
		}
		if b.limiter.IsLimited(user.TelegramID, "confirm") && !b.cfg.IsAdmin(user.TelegramID) {
			b.answer(cb, "Заказ уже оформляется")
			return
		}
		b.answer(cb, "")
		b.confirm(ctx, chatID, user, sess)

	case cbAbort:
		sess.ResetBooking()
		b.answer(cb, "Бронирование отменено")
		b.reply(chatID, "Бронирование отменено. Вернуться к анкетам: /profiles", nil)

	default:
		b.answer(cb, "")
	}
}

// askGame предлагает игры анкеты; если их нет, шаг пропускается
func (b *Bot) askGame(ctx context.Context, chatID int64, sess *Session) {
	games, err := b.store.ProfileGames(ctx, sess.ProfileID)
	if err != nil {
		b.log.Error("profile games", zap.Uint("profile_id", sess.ProfileID), zap.Error(err))
	}
	if len(games) == 0 {
		sess.Step = StepDate
		b.reply(chatID, "📅 Введите дату встречи в формате ДД.ММ.ГГГГ (например, 26.11.2025):", nil)
		return
	}
	sess.Step = StepGame
	b.reply(chatID, "🎮 Выберите игру:", gameChoiceKeyboard(games))
}

func (b *Bot) handleText(ctx context.Context, user *db.User, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	sess := b.sessions.Get(chatID)
	loc := b.cfg.Location
	now := b.now()

	switch sess.Step {
	case StepDate:
		d, err := validate.Date(msg.Text, loc)
		if err != nil {
			b.reply(chatID, "❌ "+validate.Message(err), nil)
			return
		}
		if !d.AddDate(0, 0, 1).After(now) {
			b.reply(chatID, "❌ Дата должна быть в будущем. Попробуйте еще раз", nil)
			return
		}
		sess.Date = d
		sess.Step = StepTime
		b.reply(chatID, "⏰ Введите время начала в формате ЧЧ:ММ (например, 19:00):", nil)

	case StepTime:
		h, m, err := validate.TimeOfDay(msg.Text)
		if err != nil {
			b.reply(chatID, "❌ "+validate.Message(err), nil)
			return
		}
		at := validate.Combine(sess.Date, h, m, loc)
		if err := validate.MeetingTime(at, now); err != nil {
			b.reply(chatID, "❌ "+validate.Message(err), nil)
			return
		}
		sess.At = at
		if sess.Format == pricing.FormatPrivate {
			sess.DurationHours = 1
			sess.Step = StepParticipants
			b.reply(chatID, "👥 Сколько будет участников?", nil)
			return
		}
		sess.Step = StepDuration
		b.reply(chatID, "⏱️ Введите продолжительность в часах (от 1 до 24):", nil)

	case StepDuration:
		d, err := validate.Duration(msg.Text)
		if err != nil {
			b.reply(chatID, "❌ "+validate.Message(err), nil)
			return
		}
		sess.DurationHours = d
		sess.Step = StepParticipants
		b.reply(chatID, "👥 Сколько будет участников?", nil)

	case StepParticipants:
		n, err := validate.Participants(msg.Text)
		if err != nil {
			b.reply(chatID, "❌ "+validate.Message(err), nil)
			return
		}
		sess.Participants = n
		b.preview(ctx, chatID, sess)

	default:
		b.reply(chatID, "Неизвестная команда. Используйте /help для списка всех возможностей.", GetReplyKeyboard(b.cfg.IsAdmin(user.TelegramID)))
	}
}

// draftOrder собирает несохранённый заказ для предпросмотра
func (b *Bot) draftOrder(ctx context.Context, sess *Session) (*db.Order, error) {
	p, err := b.store.GetProfile(ctx, sess.ProfileID)
	if err != nil {
		return nil, err
	}
	q, err := services.QuoteFor(p, sess.Format, sess.DurationHours, sess.Participants)
	if err != nil {
		return nil, err
	}
	o := &db.Order{
		ProfileID:                   p.ID,
		Profile:                     p,
		FormatType:                  string(sess.Format),
		Date:                        sess.At,
		DurationHours:               q.DurationHours,
		ParticipantsCount:           sess.Participants,
		BasePrice:                   q.Price.Base,
		AdditionalParticipantsPrice: q.Price.Additional,
		TotalPrice:                  q.Price.Total,
	}
	if sess.GameID != nil {
		if g, err := b.store.GetGame(ctx, *sess.GameID); err == nil {
			o.GameName = g.Name
		}
	}
	return o, nil
}

func (b *Bot) preview(ctx context.Context, chatID int64, sess *Session) {
	o, err := b.draftOrder(ctx, sess)
	if err != nil {
		b.log.Warn("draft order", zap.Uint("profile_id", sess.ProfileID), zap.Error(err))
		sess.ResetBooking()
		b.reply(chatID, "❌ Анкета недоступна. Выберите другую через /profiles", nil)
		return
	}
	sess.Step = StepConfirm
	b.reply(chatID, messages.OrderPreview(o, b.cfg.Location), confirmKeyboard())
}

func (b *Bot) confirm(ctx context.Context, chatID int64, user *db.User, sess *Session) {
	if err := validate.MeetingTime(sess.At, b.now()); err != nil {
		sess.Step = StepTime
		b.reply(chatID, "❌ "+validate.Message(err)+"\nВведите время заново:", nil)
		return
	}
	o, err := b.orders.Book(ctx, services.BookingRequest{
		TelegramID:    user.TelegramID,
		Username:      user.Username,
		FirstName:     user.FirstName,
		ProfileID:     sess.ProfileID,
		Format:        sess.Format,
		GameID:        sess.GameID,
		Date:          sess.At,
		DurationHours: sess.DurationHours,
		Participants:  sess.Participants,
	})
	sess.ResetBooking()
	switch {
	case errors.Is(err, services.ErrProfileNotFound), errors.Is(err, services.ErrFormatUnavailable):
		b.reply(chatID, "❌ Анкета недоступна. Выберите другую через /profiles", nil)
		return
	case err != nil:
		b.log.Error("book order", zap.Int64("telegram_id", user.TelegramID), zap.Error(err))
		b.reply(chatID, "❌ Не удалось оформить заказ, попробуйте позже", nil)
		return
	}
	b.reply(chatID, messages.OrderSummary(o, b.cfg.Location), GetReplyKeyboard(b.cfg.IsAdmin(user.TelegramID)))
}
