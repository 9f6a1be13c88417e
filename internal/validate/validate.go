// Package validate проверяет ввод пользователя и администратора до обращения к ядру.
package validate

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	MinDurationHours = 1
	MaxDurationHours = 24
	MinParticipants  = 1
	MaxParticipants  = 50
	MinHoursAhead    = 1
	MaxDaysAhead     = 90
)

// Error: ошибка валидации с текстом для пользователя
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func fail(format string, args ...any) error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

// Message возвращает текст ошибки валидации или пустую строку
func Message(err error) string {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Message
	}
	return ""
}

var errNotFinite = errors.New("number is not finite")

func parseNumber(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	// ParseFloat принимает NaN и Inf
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotFinite
	}
	return v, nil
}

func Duration(raw string) (float64, error) {
	d, err := parseNumber(raw)
	if err != nil {
		return 0, fail("Введите продолжительность числом, например 2")
	}
	if d < MinDurationHours {
		return 0, fail("Минимальная продолжительность - %d час", MinDurationHours)
	}
	if d > MaxDurationHours {
		return 0, fail("Максимальная продолжительность - %d часа", MaxDurationHours)
	}
	return d, nil
}

func Participants(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fail("Введите количество участников целым числом")
	}
	if n < MinParticipants {
		return 0, fail("Минимальное количество участников - %d", MinParticipants)
	}
	if n > MaxParticipants {
		return 0, fail("Максимальное количество участников - %d", MaxParticipants)
	}
	return n, nil
}

func Price(raw string) (float64, error) {
	p, err := parseNumber(raw)
	if err != nil {
		return 0, fail("Цена должна быть числом")
	}
	if p < 0 {
		return 0, fail("Цена не может быть отрицательной")
	}
	return p, nil
}

func Age(raw string) (int, error) {
	a, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fail("Возраст должен быть целым числом")
	}
	if a < 18 || a > 99 {
		return 0, fail("Возраст должен быть от 18 до 99")
	}
	return a, nil
}

// TimeOfDay разбирает время в формате ЧЧ:ММ
func TimeOfDay(raw string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 {
		return 0, 0, fail("Введите время в формате ЧЧ:ММ, например 19:30")
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, fail("Введите время в формате ЧЧ:ММ, например 19:30")
	}
	return h, m, nil
}

// Date разбирает дату ДД.ММ.ГГГГ в часовом поясе loc
func Date(raw string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation("02.01.2006", strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}, fail("Введите дату в формате ДД.ММ.ГГГГ")
	}
	return d, nil
}

// Combine собирает момент времени из даты и часов/минут в поясе loc
func Combine(date time.Time, hour, minute int, loc *time.Location) time.Time {
	d := date.In(loc)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, loc)
}

// MeetingTime проверяет, что встреча не в прошлом, не раньше чем через час и не дальше 90 дней
func MeetingTime(at, now time.Time) error {
	if at.Before(now) {
		return fail("Нельзя выбрать прошедшую дату и время")
	}
	if at.Before(now.Add(MinHoursAhead * time.Hour)) {
		return fail("Встречу можно забронировать минимум за %d час(а) до начала", MinHoursAhead)
	}
	if at.After(now.AddDate(0, 0, MaxDaysAhead)) {
		return fail("Нельзя забронировать встречу более чем на 3 месяца вперед")
	}
	return nil
}

// ProfileInput: данные анкеты из формы администратора
type ProfileInput struct {
	Name         string   `validate:"required,max=255"`
	Age          *int     `validate:"omitempty,min=18,max=99"`
	Description  string   `validate:"max=3000"`
	AudioPrice   float64  `validate:"gte=0"`
	VideoPrice   float64  `validate:"gte=0"`
	PrivatePrice *float64 `validate:"omitempty,gte=0"`
	ChannelLink  string   `validate:"omitempty,url"`
}

var structValidator = validator.New()

var profileFieldNames = map[string]string{
	"Name":         "имя",
	"Age":          "возраст",
	"Description":  "описание",
	"AudioPrice":   "цена аудио",
	"VideoPrice":   "цена видео",
	"PrivatePrice": "цена приватки",
	"ChannelLink":  "ссылка на канал",
}

func Profile(in ProfileInput) error {
	err := structValidator.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := profileFieldNames[fe.Field()]
		if name == "" {
			name = fe.Field()
		}
		fields = append(fields, name)
	}
	return fail("Проверьте поля: %s", strings.Join(fields, ", "))
}
