package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

const orderCounterName = "orders"

func withOrderRelations(tx *gorm.DB) *gorm.DB {
	return tx.Preload("User").Preload("Profile").Preload("Game")
}

// nextOrderNumber увеличивает счётчик заказов внутри транзакции tx.
// UPDATE берёт блокировку строки, поэтому параллельные заказы получают разные номера.
// Счётчик создаётся при первом использовании со значением, равным числу заказов.
func nextOrderNumber(tx *gorm.DB) (int64, error) {
	res := tx.Model(&OrderCounter{}).
		Where("name = ?", orderCounterName).
		Update("value", gorm.Expr("value + 1"))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		var existing int64
		if err := tx.Model(&Order{}).Count(&existing).Error; err != nil {
			return 0, err
		}
		counter := OrderCounter{Name: orderCounterName, Value: existing + 1}
		if err := tx.Create(&counter).Error; err != nil {
			return 0, err
		}
		return counter.Value, nil
	}
	var counter OrderCounter
	if err := tx.Where("name = ?", orderCounterName).First(&counter).Error; err != nil {
		return 0, err
	}
	return counter.Value, nil
}

// CreateOrder присваивает заказу номер вида "#N" и сохраняет его
func (s *Store) CreateOrder(ctx context.Context, o *Order) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := nextOrderNumber(tx)
		if err != nil {
			return fmt.Errorf("allocate order number: %w", err)
		}
		o.OrderNumber = fmt.Sprintf("#%d", n)
		if o.PaymentStatus == "" {
			o.PaymentStatus = PaymentNotPaid
		}
		return tx.Omit("User", "Profile", "Game", "ReminderTasks").Create(o).Error
	})
}

func (s *Store) GetOrder(ctx context.Context, id uint) (*Order, error) {
	var o Order
	if err := withOrderRelations(s.db.WithContext(ctx)).First(&o, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (s *Store) GetOrderByNumber(ctx context.Context, number string) (*Order, error) {
	var o Order
	err := withOrderRelations(s.db.WithContext(ctx)).Where("order_number = ?", number).First(&o).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (s *Store) ListOrders(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := withOrderRelations(s.db.WithContext(ctx)).Order("created_at DESC, id DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ListOrdersByUser возвращает заказы пользователя по его Telegram ID, новые первыми
func (s *Store) ListOrdersByUser(ctx context.Context, telegramID int64) ([]Order, error) {
	var orders []Order
	err := withOrderRelations(s.db.WithContext(ctx)).
		Joins("JOIN users ON users.id = orders.user_id").
		Where("users.telegram_id = ?", telegramID).
		Order("orders.created_at DESC, orders.id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *Store) updateOrder(ctx context.Context, id uint, fields map[string]any) (bool, error) {
	res := s.db.WithContext(ctx).Model(&Order{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) UpdatePaymentStatus(ctx context.Context, id uint, status string) (bool, error) {
	return s.updateOrder(ctx, id, map[string]any{"payment_status": status})
}

func (s *Store) SetConferenceLink(ctx context.Context, id uint, link string) (bool, error) {
	return s.updateOrder(ctx, id, map[string]any{"conference_link": link})
}

func (s *Store) SetNotificationEnabled(ctx context.Context, id uint, enabled bool) (bool, error) {
	return s.updateOrder(ctx, id, map[string]any{"notification_enabled": enabled})
}

func (s *Store) MarkReminderSent(ctx context.Context, id uint) (bool, error) {
	return s.updateOrder(ctx, id, map[string]any{"reminder_sent": true})
}

// DeleteOrder удаляет заказ вместе с его задачами напоминаний
func (s *Store) DeleteOrder(ctx context.Context, id uint) (bool, error) {
	var deleted bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&ReminderTask{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&Order{}, id)
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	return deleted, err
}
