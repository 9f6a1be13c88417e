package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// GetOrCreateUser находит пользователя по Telegram ID или создаёт нового.
// Имя и username существующего пользователя не обновляются.
func (s *Store) GetOrCreateUser(ctx context.Context, telegramID int64, username, firstName string) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("telegram_id = ?", telegramID).First(&user).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		user = User{TelegramID: telegramID, Username: username, FirstName: firstName}
		return tx.Create(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) GetUserByTelegramID(ctx context.Context, telegramID int64) (*User, error) {
	var user User
	if err := s.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// AcceptRules отмечает принятие правил; false, если пользователя нет
func (s *Store) AcceptRules(ctx context.Context, telegramID int64) (bool, error) {
	now := time.Now().UTC()
	res := s.db.WithContext(ctx).Model(&User{}).
		Where("telegram_id = ?", telegramID).
		Updates(map[string]any{"rules_accepted": true, "rules_accepted_at": now})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
