// Package pricing рассчитывает стоимость заказа.
package pricing

import "math"

// ParticipantSurcharge: доля базовой цены за каждого участника сверх первого
const ParticipantSurcharge = 0.5

type Format string

const (
	FormatAudio   Format = "audio"
	FormatVideo   Format = "video"
	FormatPrivate Format = "private"
)

func (f Format) Valid() bool {
	switch f {
	case FormatAudio, FormatVideo, FormatPrivate:
		return true
	}
	return false
}

func (f Format) Title() string {
	switch f {
	case FormatAudio:
		return "Аудио-чат"
	case FormatVideo:
		return "Видео-чат"
	case FormatPrivate:
		return "Приватка"
	}
	return string(f)
}

func (f Format) Emoji() string {
	switch f {
	case FormatAudio:
		return "🎧"
	case FormatVideo:
		return "🎥"
	case FormatPrivate:
		return "💎"
	}
	return ""
}

type Price struct {
	Base       float64
	Additional float64
	Total      float64
}

// Compute считает базовую цену, доплату за участников и итог, округляя до копеек.
// Отрицательные значения отсекаются на уровне диалога.
func Compute(ratePerHour, durationHours float64, participants int) Price {
	base := ratePerHour * durationHours
	extra := participants - 1
	if extra < 0 {
		extra = 0
	}
	b := round2(base)
	a := round2(base * ParticipantSurcharge * float64(extra))
	// итог складывается из уже округлённых частей
	return Price{Base: b, Additional: a, Total: round2(b + a)}
}

// Rates: тарифы анкеты
type Rates struct {
	Audio   float64
	Video   float64
	Private *float64
}

// Quote: результат расчёта для выбранного формата
type Quote struct {
	Price         Price
	Rate          float64
	DurationHours float64
}

// ForFormat выбирает тариф по формату. Приватка стоит фиксированную сумму:
// длительность принимается за 1 час, доплата за участников не начисляется.
func ForFormat(r Rates, f Format, durationHours float64, participants int) Quote {
	switch f {
	case FormatPrivate:
		var flat float64
		if r.Private != nil {
			flat = *r.Private
		}
		flat = round2(flat)
		return Quote{
			Price:         Price{Base: flat, Total: flat},
			Rate:          flat,
			DurationHours: 1,
		}
	case FormatVideo:
		return Quote{Price: Compute(r.Video, durationHours, participants), Rate: r.Video, DurationHours: durationHours}
	default:
		return Quote{Price: Compute(r.Audio, durationHours, participants), Rate: r.Audio, DurationHours: durationHours}
	}
}

// RatePerHour восстанавливает почасовую ставку из базовой цены
func RatePerHour(base, durationHours float64) float64 {
	if durationHours == 0 {
		return 0
	}
	return round2(base / durationHours)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
