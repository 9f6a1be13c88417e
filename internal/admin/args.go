package admin

import (
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"Booking-Telegram-bot/internal/validate"
)

const commandPrefix = "/admin_"

// usage: ошибка с текстом для администратора
func usage(msg string) error {
	return &validate.Error{Message: msg}
}

// commandOf извлекает команду и аргументы из текста или подписи к фото
func commandOf(msg *tgbotapi.Message) (string, string) {
	text := msg.Text
	if text == "" {
		text = msg.Caption
	}
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, commandPrefix) {
		return "", ""
	}
	head, args, _ := strings.Cut(text, " ")
	head, _, _ = strings.Cut(head, "@")
	return strings.TrimPrefix(head, "/"), strings.TrimSpace(args)
}

func optional(s string) string {
	s = strings.TrimSpace(s)
	if s == "-" {
		return ""
	}
	return s
}

// parseProfileArgs разбирает "Имя | возраст | описание | аудио | видео | приватка | канал".
// Необязательные поля можно опустить или заменить на "-".
func parseProfileArgs(args string) (validate.ProfileInput, error) {
	var in validate.ProfileInput
	parts := strings.Split(args, "|")
	if len(parts) < 5 {
		return in, usage("Формат: Имя | возраст | описание | цена аудио | цена видео | цена приватки | канал")
	}
	for len(parts) < 7 {
		parts = append(parts, "")
	}

	in.Name = strings.TrimSpace(parts[0])
	if raw := optional(parts[1]); raw != "" {
		age, err := validate.Age(raw)
		if err != nil {
			return in, err
		}
		in.Age = &age
	}
	in.Description = optional(parts[2])

	var err error
	if in.AudioPrice, err = validate.Price(parts[3]); err != nil {
		return in, err
	}
	if in.VideoPrice, err = validate.Price(parts[4]); err != nil {
		return in, err
	}
	if raw := optional(parts[5]); raw != "" {
		p, err := validate.Price(raw)
		if err != nil {
			return in, err
		}
		in.PrivatePrice = &p
	}
	in.ChannelLink = optional(parts[6])
	return in, validate.Profile(in)
}

// profileFields сопоставляет поле команды редактирования с колонкой анкеты
var profileFields = map[string]string{
	"name":        "name",
	"age":         "age",
	"description": "description",
	"audio":       "audio_chat_price",
	"video":       "video_chat_price",
	"private":     "private_price",
	"channel":     "channel_link",
}

// profileUpdate готовит изменения анкеты для одного поля. "-" очищает необязательное поле.
func profileUpdate(field, value string) (map[string]any, error) {
	column, ok := profileFields[field]
	if !ok {
		return nil, usage("Поле должно быть одним из: name, age, description, audio, video, private, channel")
	}
	value = strings.TrimSpace(value)
	switch field {
	case "name":
		if value == "" || len([]rune(value)) > 255 {
			return nil, usage("Имя не может быть пустым или длиннее 255 символов")
		}
		return map[string]any{column: value}, nil
	case "age":
		if optional(value) == "" {
			return map[string]any{column: nil}, nil
		}
		age, err := validate.Age(value)
		if err != nil {
			return nil, err
		}
		return map[string]any{column: age}, nil
	case "audio", "video":
		p, err := validate.Price(value)
		if err != nil {
			return nil, err
		}
		return map[string]any{column: p}, nil
	case "private":
		if optional(value) == "" {
			return map[string]any{column: nil}, nil
		}
		p, err := validate.Price(value)
		if err != nil {
			return nil, err
		}
		return map[string]any{column: p}, nil
	default:
		return map[string]any{column: optional(value)}, nil
	}
}

// orderRef: ссылка на заказ: "#12" (номер) или "12" (id)
type orderRef struct {
	id     uint
	number string
}

func parseOrderRef(raw string) (orderRef, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "#") {
		if _, err := strconv.ParseUint(raw[1:], 10, 64); err != nil {
			return orderRef{}, usage("Некорректный номер заказа")
		}
		return orderRef{number: raw}, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return orderRef{}, usage("Укажите id заказа или номер вида #12")
	}
	return orderRef{id: uint(id)}, nil
}

func parseUint(raw string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
