package messages

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"Booking-Telegram-bot/internal/db"
	"Booking-Telegram-bot/internal/pricing"
)

func TestCancellationWordingDependsOnPaymentStatus(t *testing.T) {
	paid := Cancellation(db.PaymentPaid)
	assert.Contains(t, paid, "Возврат денежных средств")

	notPaid := Cancellation(db.PaymentNotPaid)
	assert.NotContains(t, notPaid, "Возврат")
	assert.Contains(t, notPaid, "заказ был отменён")
}

func TestReminder15MinIncludesLinkWhenSet(t *testing.T) {
	assert.NotContains(t, Reminder15Min(""), "Ссылка")
	assert.Contains(t, Reminder15Min("https://meet.example/abc"), "🔗 Ссылка: https://meet.example/abc")
}

func TestPriceBreakdown(t *testing.T) {
	q := pricing.ForFormat(pricing.Rates{Audio: 500}, pricing.FormatAudio, 2, 3)
	text := PriceBreakdown(pricing.FormatAudio, q, 3)
	assert.Contains(t, text, "500₽/час × 2 ч. = 1000₽")
	assert.Contains(t, text, "Доплата за 2 доп. участников: 1000₽ × 50% × 2 = 1000₽")
	assert.Contains(t, text, "Итого: 2000₽")

	single := PriceBreakdown(pricing.FormatVideo, pricing.ForFormat(pricing.Rates{Video: 600}, pricing.FormatVideo, 1, 1), 1)
	assert.NotContains(t, single, "Доплата")

	flat := 3000.0
	private := PriceBreakdown(pricing.FormatPrivate, pricing.ForFormat(pricing.Rates{Private: &flat}, pricing.FormatPrivate, 1, 1), 1)
	assert.Equal(t, "💰 Стоимость: 3000₽", private)
}

func TestOrderSummaryUsesLocalTime(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Moscow")
	assert.NoError(t, err)
	o := &db.Order{
		OrderNumber:       "#7",
		FormatType:        "video",
		GameName:          "Dota 2",
		Date:              time.Date(2026, 11, 1, 16, 30, 0, 0, time.UTC),
		DurationHours:     2,
		ParticipantsCount: 1,
		BasePrice:         1600,
		TotalPrice:        1600,
	}
	text := OrderSummary(o, loc)
	assert.Contains(t, text, "✅ Заказ оформлен!")
	assert.Contains(t, text, "📅 Дата: 01.11.2026")
	assert.Contains(t, text, "⏰ Время: 19:30")
	assert.Contains(t, text, "🎥 Формат: Видео-чат")
	assert.Contains(t, text, "800₽/час × 2 ч. = 1600₽")
}

func TestProfileCard(t *testing.T) {
	age := 23
	flat := 2500.0
	p := &db.Profile{
		Name:           "Алиса",
		Age:            &age,
		AudioChatPrice: 500,
		VideoChatPrice: 800,
		PrivatePrice:   &flat,
		Games:          []db.ProfileGame{{Game: &db.Game{Name: "Valorant"}}},
	}
	card := ProfileCard(p, 0, 3)
	assert.Contains(t, card, "💃 Алиса (23 лет)")
	assert.Contains(t, card, "🎮 Игры: Valorant")
	assert.Contains(t, card, "• Приватка — 2500 ₽")
	assert.Contains(t, card, "Анкета 1 из 3")
}

func TestAdminNotices(t *testing.T) {
	o := &db.Order{OrderNumber: "#12"}
	assert.Equal(t, "⏰ Заказ #12 проверить оплату", PaymentCheck(o))
	assert.Equal(t, "❌ Заказ #12 не оплачен", Unpaid(o))
	assert.Equal(t, "⏳ В обработке", PaymentStatusLabel(db.PaymentProcessing))
	assert.Equal(t, "unknown", PaymentStatusLabel("unknown"))
}
