package bot

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"Booking-Telegram-bot/internal/db"
	"Booking-Telegram-bot/internal/pricing"
)

// Префиксы callback-данных inline-кнопок
const (
	cbRulesAccept  = "rules_accept"
	cbProfilePrev  = "profile_prev"
	cbProfileNext  = "profile_next"
	cbProfileGame  = "profile_game"
	cbProfileAll   = "profile_all"
	cbBook         = "book"
	cbFormat       = "format"
	cbGame         = "game"
	cbGameSkip     = "game_skip"
	cbConfirm      = "confirm"
	cbAbort        = "abort"
	cbNotifyToggle = "notify"
)

func callback(action string, arg any) string {
	return fmt.Sprintf("%s:%v", action, arg)
}

// parseCallback делит callback-данные на действие и аргумент
func parseCallback(data string) (string, string) {
	action, arg, _ := strings.Cut(data, ":")
	return action, arg
}

func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func GetReplyKeyboard(isAdmin bool) tgbotapi.ReplyKeyboardMarkup {
	if isAdmin {
		return tgbotapi.NewReplyKeyboard(
			tgbotapi.NewKeyboardButtonRow(
				tgbotapi.NewKeyboardButton("/admin_orders"),
				tgbotapi.NewKeyboardButton("/admin_profiles"),
				tgbotapi.NewKeyboardButton("/admin_games"),
			),
			tgbotapi.NewKeyboardButtonRow(
				tgbotapi.NewKeyboardButton("/profiles"),
				tgbotapi.NewKeyboardButton("/admin_backup"),
				tgbotapi.NewKeyboardButton("/admin_help"),
			),
		)
	}
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/profiles"),
			tgbotapi.NewKeyboardButton("/games"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/orders"),
			tgbotapi.NewKeyboardButton("/help"),
		),
	)
}

func rulesKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("✅ Принимаю", cbRulesAccept)),
	)
}

func profileKeyboard(p *db.Profile, total int) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	if total > 1 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️", cbProfilePrev),
			tgbotapi.NewInlineKeyboardButtonData("➡️", cbProfileNext),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("📅 Забронировать", callback(cbBook, p.ID)),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func gameFilterKeyboard(games []db.Game) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(games)+1)
	for _, g := range games {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎮 "+g.Name, callback(cbProfileGame, g.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Все анкеты", cbProfileAll),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// formatKeyboard показывает только форматы, для которых у анкеты задана цена
func formatKeyboard(p *db.Profile) tgbotapi.InlineKeyboardMarkup {
	formats := []pricing.Format{pricing.FormatAudio, pricing.FormatVideo}
	if p.PrivatePrice != nil {
		formats = append(formats, pricing.FormatPrivate)
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, f := range formats {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(f.Emoji()+" "+f.Title(), callback(cbFormat, f)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", cbAbort)))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func gameChoiceKeyboard(games []db.Game) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(games)+1)
	for _, g := range games {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(g.Name, callback(cbGame, g.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Без игры", cbGameSkip),
		tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", cbAbort),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func confirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Подтвердить", cbConfirm),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", cbAbort),
		),
	)
}

func ordersKeyboard(orders []db.Order) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(orders))
	for _, o := range orders {
		label := "🔕 Выключить напоминание " + o.OrderNumber
		if !o.NotificationEnabled {
			label = "🔔 Включить напоминание " + o.OrderNumber
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, callback(cbNotifyToggle, o.ID)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
