package db

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

func withGames(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Games.Game")
}

func (s *Store) ListProfiles(ctx context.Context) ([]Profile, error) {
	var profiles []Profile
	if err := withGames(s.db.WithContext(ctx)).Order("id").Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (s *Store) GetProfile(ctx context.Context, id uint) (*Profile, error) {
	var p Profile
	if err := withGames(s.db.WithContext(ctx)).First(&p, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// ListProfilesByGame возвращает анкеты, к которым привязана игра
func (s *Store) ListProfilesByGame(ctx context.Context, gameID uint) ([]Profile, error) {
	var profiles []Profile
	err := withGames(s.db.WithContext(ctx)).
		Joins("JOIN profile_games ON profile_games.profile_id = profiles.id").
		Where("profile_games.game_id = ?", gameID).
		Order("profiles.id").
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func (s *Store) CreateProfile(ctx context.Context, p *Profile) error {
	if len(p.PhotoIDs) > MaxProfilePhotos {
		p.PhotoIDs = p.PhotoIDs[:MaxProfilePhotos]
	}
	return s.db.WithContext(ctx).Omit("Games").Create(p).Error
}

// UpdateProfile применяет изменения полей (ключи: имена колонок)
func (s *Store) UpdateProfile(ctx context.Context, id uint, fields map[string]any) (*Profile, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p Profile
		if err := tx.First(&p, id).Error; err != nil {
			return err
		}
		return tx.Model(&p).Updates(fields).Error
	})
	if err != nil {
		return nil, notFound(err)
	}
	return s.GetProfile(ctx, id)
}

// DeleteProfile удаляет анкету вместе со связями с играми
func (s *Store) DeleteProfile(ctx context.Context, id uint) (bool, error) {
	var deleted bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var orders int64
		if err := tx.Model(&Order{}).Where("profile_id = ?", id).Count(&orders).Error; err != nil {
			return err
		}
		if orders > 0 {
			return ErrProfileInUse
		}
		if err := tx.Where("profile_id = ?", id).Delete(&ProfileGame{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&Profile{}, id)
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	return deleted, err
}

// AddProfilePhoto добавляет file_id фото; false, если анкеты нет или фото уже три
func (s *Store) AddProfilePhoto(ctx context.Context, id uint, fileID string) (bool, error) {
	var added bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p Profile
		if err := tx.First(&p, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if len(p.PhotoIDs) >= MaxProfilePhotos {
			return nil
		}
		p.PhotoIDs = append(p.PhotoIDs, fileID)
		if err := tx.Model(&p).Update("photo_ids", p.PhotoIDs).Error; err != nil {
			return err
		}
		added = true
		return nil
	})
	return added, err
}

func (s *Store) ClearProfilePhotos(ctx context.Context, id uint) (bool, error) {
	res := s.db.WithContext(ctx).Model(&Profile{}).Where("id = ?", id).Update("photo_ids", nil)
	return res.RowsAffected > 0, res.Error
}

// AddGameToProfile идемпотентно связывает игру с анкетой; false, если связь уже есть
func (s *Store) AddGameToProfile(ctx context.Context, profileID, gameID uint) (bool, error) {
	var added bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		err := tx.Model(&ProfileGame{}).
			Where("profile_id = ? AND game_id = ?", profileID, gameID).
			Count(&n).Error
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		if err := tx.Create(&ProfileGame{ProfileID: profileID, GameID: gameID}).Error; err != nil {
			return err
		}
		added = true
		return nil
	})
	return added, err
}

func (s *Store) RemoveGameFromProfile(ctx context.Context, profileID, gameID uint) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("profile_id = ? AND game_id = ?", profileID, gameID).
		Delete(&ProfileGame{})
	return res.RowsAffected > 0, res.Error
}

// ProfileGames возвращает игры анкеты по алфавиту
func (s *Store) ProfileGames(ctx context.Context, profileID uint) ([]Game, error) {
	var games []Game
	err := s.db.WithContext(ctx).
		Joins("JOIN profile_games ON profile_games.game_id = games.id").
		Where("profile_games.profile_id = ?", profileID).
		Order("games.name").
		Find(&games).Error
	if err != nil {
		return nil, err
	}
	return games, nil
}

// GameNames собирает названия игр из предзагруженных связей
func (p *Profile) GameNames() []string {
	names := make([]string, 0, len(p.Games))
	for _, pg := range p.Games {
		if pg.Game != nil {
			names = append(names, pg.Game.Name)
		}
	}
	return names
}
