package db

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

func (s *Store) ListGames(ctx context.Context, limit, offset int) ([]Game, error) {
	var games []Game
	q := s.db.WithContext(ctx).Order("name")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	if err := q.Find(&games).Error; err != nil {
		return nil, err
	}
	return games, nil
}

func (s *Store) CountGames(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Game{}).Count(&n).Error
	return n, err
}

// SearchGames ищет игры по подстроке без учёта регистра
func (s *Store) SearchGames(ctx context.Context, query string) ([]Game, error) {
	var games []Game
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	err := s.db.WithContext(ctx).
		Where("LOWER(name) LIKE ?", pattern).
		Order("name").
		Find(&games).Error
	if err != nil {
		return nil, err
	}
	return games, nil
}

func (s *Store) GetGame(ctx context.Context, id uint) (*Game, error) {
	var g Game
	if err := s.db.WithContext(ctx).First(&g, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &g, nil
}

func (s *Store) CreateGame(ctx context.Context, name string) (*Game, error) {
	g := Game{Name: strings.TrimSpace(name)}
	if err := s.db.WithContext(ctx).Create(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *Store) UpdateGame(ctx context.Context, id uint, name string) (*Game, error) {
	var g Game
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&g, id).Error; err != nil {
			return err
		}
		g.Name = strings.TrimSpace(name)
		return tx.Save(&g).Error
	})
	if err != nil {
		return nil, notFound(err)
	}
	return &g, nil
}

// DeleteGame удаляет игру, её связи с анкетами и ссылку из заказов (название в заказе сохраняется)
func (s *Store) DeleteGame(ctx context.Context, id uint) (bool, error) {
	var deleted bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("game_id = ?", id).Delete(&ProfileGame{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&Order{}).Where("game_id = ?", id).Update("game_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&Game{}, id)
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	return deleted, err
}
