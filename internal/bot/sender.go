package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender отправляет сообщения через Bot API
type Sender struct {
	api *tgbotapi.BotAPI
}

func NewSender(api *tgbotapi.BotAPI) *Sender {
	return &Sender{api: api}
}

func (s *Sender) SendText(chatID int64, text string) error {
	_, err := s.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// SendPhotos отправляет фото с подписью: одно фото отдельным сообщением,
// несколько альбомом (подпись у первого).
func (s *Sender) SendPhotos(chatID int64, fileIDs []string, caption string) error {
	if len(fileIDs) == 1 {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(fileIDs[0]))
		photo.Caption = caption
		_, err := s.api.Send(photo)
		return err
	}
	media := make([]interface{}, 0, len(fileIDs))
	for i, id := range fileIDs {
		p := tgbotapi.NewInputMediaPhoto(tgbotapi.FileID(id))
		if i == 0 {
			p.Caption = caption
		}
		media = append(media, p)
	}
	_, err := s.api.SendMediaGroup(tgbotapi.NewMediaGroup(chatID, media))
	return err
}
