// Package messages собирает тексты сообщений для пользователей и администраторов.
package messages

import (
	"fmt"
	"strings"
	"time"

	"Booking-Telegram-bot/internal/db"
	"Booking-Telegram-bot/internal/pricing"
)

const (
	dateLayout     = "02.01.2006"
	timeLayout     = "15:04"
	dateTimeLayout = "02.01.2006 15:04"
)

const Rules = "Перед бронированием ознакомьтесь с правилами сервиса:\n\n" +
	"1. Встречи проходят онлайн в выбранном формате.\n" +
	"2. Бронь подтверждается после оплаты, ссылку пришлёт администратор.\n" +
	"3. Отмена оплаченного заказа сопровождается возвратом средств.\n\n" +
	"Нажмите «Принимаю», чтобы продолжить."

var paymentLabels = map[string]string{
	db.PaymentNotPaid:    "❌ Не оплачено",
	db.PaymentProcessing: "⏳ В обработке",
	db.PaymentPaid:       "✅ Оплачено",
}

func PaymentStatusLabel(status string) string {
	if l, ok := paymentLabels[status]; ok {
		return l
	}
	return status
}

func money(v float64) string {
	return fmt.Sprintf("%.0f₽", v)
}

// ProfileCard: карточка анкеты для просмотра
func ProfileCard(p *db.Profile, index, total int) string {
	var b strings.Builder
	b.WriteString("💃 " + p.Name)
	if p.Age != nil {
		fmt.Fprintf(&b, " (%d лет)", *p.Age)
	}
	b.WriteString("\n")
	if p.Description != "" {
		b.WriteString("\n📝 " + p.Description + "\n")
	}
	if names := p.GameNames(); len(names) > 0 {
		b.WriteString("\n🎮 Игры: " + strings.Join(names, ", ") + "\n")
	}
	b.WriteString("\n💰 Тарифы на общение:\n")
	fmt.Fprintf(&b, "• Аудио-чат — %.0f ₽/час\n", p.AudioChatPrice)
	fmt.Fprintf(&b, "• Видео-чат — %.0f ₽/час\n", p.VideoChatPrice)
	if p.PrivatePrice != nil {
		fmt.Fprintf(&b, "• Приватка — %.0f ₽\n", *p.PrivatePrice)
	}
	if p.ChannelLink != "" {
		b.WriteString("\n🔗 Канал: " + p.ChannelLink + "\n")
	}
	if total > 1 {
		fmt.Fprintf(&b, "\nАнкета %d из %d", index+1, total)
	}
	return strings.TrimRight(b.String(), "\n")
}

// PriceBreakdown расписывает расчёт стоимости
func PriceBreakdown(format pricing.Format, q pricing.Quote, participants int) string {
	if format == pricing.FormatPrivate {
		return "💰 Стоимость: " + money(q.Price.Total)
	}
	lines := []string{
		"💰 Расчет стоимости:",
		fmt.Sprintf("• Базовая цена: %.0f₽/час × %s ч. = %s", q.Rate, hours(q.DurationHours), money(q.Price.Base)),
	}
	if q.Price.Additional > 0 {
		extra := participants - 1
		lines = append(lines, fmt.Sprintf("• Доплата за %d доп. участников: %s × 50%% × %d = %s",
			extra, money(q.Price.Base), extra, money(q.Price.Additional)))
	}
	lines = append(lines, "• Итого: "+money(q.Price.Total))
	return strings.Join(lines, "\n")
}

func hours(h float64) string {
	if h == float64(int64(h)) {
		return fmt.Sprintf("%.0f", h)
	}
	return fmt.Sprintf("%.1f", h)
}

func quoteOf(o *db.Order) pricing.Quote {
	return pricing.Quote{
		Price: pricing.Price{
			Base:       o.BasePrice,
			Additional: o.AdditionalParticipantsPrice,
			Total:      o.TotalPrice,
		},
		Rate:          pricing.RatePerHour(o.BasePrice, o.DurationHours),
		DurationHours: o.DurationHours,
	}
}

func gameName(o *db.Order) string {
	if o.GameName != "" {
		return o.GameName
	}
	return "Не указана"
}

func orderBody(o *db.Order, loc *time.Location) string {
	f := pricing.Format(o.FormatType)
	local := o.Date.In(loc)
	lines := []string{
		fmt.Sprintf("%s Формат: %s", f.Emoji(), f.Title()),
		"🎮 Игра: " + gameName(o),
		"📅 Дата: " + local.Format(dateLayout),
		"⏰ Время: " + local.Format(timeLayout),
	}
	if f != pricing.FormatPrivate {
		lines = append(lines, fmt.Sprintf("⏱️ Продолжительность: %s ч.", hours(o.DurationHours)))
	}
	lines = append(lines,
		fmt.Sprintf("👥 Участников: %d", o.ParticipantsCount),
		"",
		PriceBreakdown(f, quoteOf(o), o.ParticipantsCount),
	)
	return strings.Join(lines, "\n")
}

// OrderPreview: черновик заказа перед подтверждением
func OrderPreview(o *db.Order, loc *time.Location) string {
	return orderBody(o, loc) + "\n\nПодтверждаете заказ?"
}

// OrderSummary: итог для пользователя после оформления
func OrderSummary(o *db.Order, loc *time.Location) string {
	return "✅ Заказ оформлен!\n" + orderBody(o, loc) +
		"\n\nПожалуйста, подождите с Вами свяжется администратор для завершения заказа."
}

func username(u *db.User) string {
	if u == nil || u.Username == "" {
		return "Не указан"
	}
	return "@" + u.Username
}

// NewOrderNotice: уведомление в чат заказов о новом заказе
func NewOrderNotice(o *db.Order, loc *time.Location) string {
	var tgID int64
	if o.User != nil {
		tgID = o.User.TelegramID
	}
	profile := ""
	if o.Profile != nil {
		profile = "🎀 Модель: " + o.Profile.Name + "\n"
	}
	return fmt.Sprintf("🆕 Новый заказ!\n\nЗаказ номер: %s\nПользователь: %s\nID: %d\nВремя оформления заказа: %s\n%s\n%s",
		o.OrderNumber, username(o.User), tgID, o.CreatedAt.In(loc).Format(dateTimeLayout), profile, orderBody(o, loc))
}

func PaymentCheck(o *db.Order) string {
	return fmt.Sprintf("⏰ Заказ %s проверить оплату", o.OrderNumber)
}

func Unpaid(o *db.Order) string {
	return fmt.Sprintf("❌ Заказ %s не оплачен", o.OrderNumber)
}

func Reminder15Min(conferenceLink string) string {
	text := "⏰ Ваша встреча начнётся через 15 минут.\n\n" +
		"Переходите по ссылке заранее, чтобы проверить звук и видео.\n" +
		"Желаем хорошей игры!"
	if conferenceLink != "" {
		text += "\n\n🔗 Ссылка: " + conferenceLink
	}
	return text
}

func AfterMeeting() string {
	return "Спасибо за участие в встрече!\n\n" +
		"Будем рады видеть вас снова и если понравилось — посоветуйте нас друзьям 🤗"
}

// Cancellation: уведомление об отмене; формулировка зависит от статуса оплаты на момент отмены
func Cancellation(paymentStatus string) string {
	if paymentStatus == db.PaymentPaid {
		return "К сожалению, ваш заказ был отменён.\n\n" +
			"Возврат денежных средств уже инициирован, срок зачисления до 5 рабочих дней, " +
			"в зависимости от Вашего банка.\n\n" +
			"Если остались вопросы - напишите нам."
	}
	return "К сожалению, ваш заказ был отменён.\n\n" +
		"Если остались вопросы - напишите нам."
}

func OrderAccepted(o *db.Order) string {
	return fmt.Sprintf("Спасибо! Ваш заказ %s оформлен.\n\n"+
		"Сумма: %.0f рублей\n\n"+
		"Мы приступаем к обработке заказа. В течение пары минут Вы получите ссылку на оплату.\n\n"+
		"Если есть вопросы напишите в ответ на это сообщение!", o.OrderNumber, o.TotalPrice)
}

// OrderLine: строка списка заказов
func OrderLine(o *db.Order, loc *time.Location) string {
	return fmt.Sprintf("%s — %s — %s — %s", o.OrderNumber, o.Date.In(loc).Format(dateTimeLayout),
		money(o.TotalPrice), PaymentStatusLabel(o.PaymentStatus))
}

// OrderDetail: карточка заказа для администратора
func OrderDetail(o *db.Order, loc *time.Location) string {
	f := pricing.Format(o.FormatType)
	var tgID int64
	if o.User != nil {
		tgID = o.User.TelegramID
	}
	profile := "—"
	if o.Profile != nil {
		profile = o.Profile.Name
	}
	link := o.ConferenceLink
	if link == "" {
		link = "Не указана"
	}
	local := o.Date.In(loc)
	return fmt.Sprintf("📄 Заказ %s (id %d)\n\n"+
		"👤 Пользователь: %s\n🆔 ID: %d\n🎀 Модель: %s\n%s Формат: %s\n🎮 Игра: %s\n"+
		"📅 Дата: %s\n⏰ Время: %s\n⏱️ Продолжительность: %s ч.\n👥 Участников: %d\n"+
		"💰 Сумма: %s\n💳 Статус оплаты: %s\n🔗 Ссылка на конференцию: %s\n📅 Создан: %s",
		o.OrderNumber, o.ID, username(o.User), tgID, profile, f.Emoji(), f.Title(), gameName(o),
		local.Format(dateLayout), local.Format(timeLayout), hours(o.DurationHours), o.ParticipantsCount,
		money(o.TotalPrice), PaymentStatusLabel(o.PaymentStatus), link, o.CreatedAt.In(loc).Format(dateTimeLayout))
}
