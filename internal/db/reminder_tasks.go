package db

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// CreateReminderTasks сохраняет все задачи заказа одной транзакцией
func (s *Store) CreateReminderTasks(ctx context.Context, tasks []*ReminderTask) error {
	if len(tasks) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, t := range tasks {
			if err := tx.Create(t).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) GetReminderTask(ctx context.Context, id uint) (*ReminderTask, error) {
	var t ReminderTask
	if err := s.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

// GetPendingReminderTasks возвращает невыполненные задачи с временем срабатывания позже now.
// Просроченные невыполненные задачи сюда не попадают.
func (s *Store) GetPendingReminderTasks(ctx context.Context, now time.Time) ([]ReminderTask, error) {
	var tasks []ReminderTask
	err := s.db.WithContext(ctx).
		Where("executed = ? AND scheduled_time > ?", false, now.UTC()).
		Order("scheduled_time").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *Store) ListReminderTasksByOrder(ctx context.Context, orderID uint) ([]ReminderTask, error) {
	var tasks []ReminderTask
	err := s.db.WithContext(ctx).Where("order_id = ?", orderID).Order("scheduled_time, id").Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *Store) SetReminderJobID(ctx context.Context, id uint, jobID string) (bool, error) {
	res := s.db.WithContext(ctx).Model(&ReminderTask{}).Where("id = ?", id).Update("job_id", jobID)
	return res.RowsAffected > 0, res.Error
}

// MarkReminderTaskExecuted переводит задачу в выполненные; false, если она уже выполнена или удалена
func (s *Store) MarkReminderTaskExecuted(ctx context.Context, id uint, at time.Time) (bool, error) {
	res := s.db.WithContext(ctx).Model(&ReminderTask{}).
		Where("id = ? AND executed = ?", id, false).
		Updates(map[string]any{"executed": true, "executed_at": at.UTC()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
