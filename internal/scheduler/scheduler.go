// Package scheduler планирует и выполняет отложенные уведомления по заказам:
// напоминание за 15 минут, благодарность после встречи и проверки оплаты.
//
// Каждое действие сначала сохраняется в таблицу reminder_tasks, затем
// регистрируется в cron как одноразовая задача. После перезапуска
// незавершённые задачи восстанавливаются из БД через Restore.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"Booking-Telegram-bot/internal/db"
	"Booking-Telegram-bot/internal/logger"
	"Booking-Telegram-bot/internal/messages"
)

const (
	reminderLead        = 15 * time.Minute
	processingCheckWait = 15 * time.Minute
	notPaidCheckWait    = 30 * time.Minute

	fireTimeout = 30 * time.Second
)

var errNoRecipient = errors.New("recipient chat is not configured")

// Sender доставляет текст в чат Telegram
type Sender interface {
	SendText(chatID int64, text string) error
}

// Store: операции хранилища, которые нужны планировщику
type Store interface {
	CreateReminderTasks(ctx context.Context, tasks []*db.ReminderTask) error
	GetReminderTask(ctx context.Context, id uint) (*db.ReminderTask, error)
	GetPendingReminderTasks(ctx context.Context, now time.Time) ([]db.ReminderTask, error)
	SetReminderJobID(ctx context.Context, id uint, jobID string) (bool, error)
	MarkReminderTaskExecuted(ctx context.Context, id uint, at time.Time) (bool, error)
	GetOrder(ctx context.Context, id uint) (*db.Order, error)
	MarkReminderSent(ctx context.Context, id uint) (bool, error)
}

// token отмечает, что задача отменена; проверяется до и после отправки
type token struct {
	cancelled atomic.Bool
}

func (t *token) Cancelled() bool {
	return t != nil && t.cancelled.Load()
}

type job struct {
	token
	taskID  uint
	orderID uint
	jobID   string
	entry   cron.EntryID
}

type Scheduler struct {
	store        Store
	sender       Sender
	ordersChatID int64
	cron         *cron.Cron
	now          func() time.Time
	log          *zap.Logger

	mu   sync.Mutex
	jobs map[uint]*job
}

type Option func(*Scheduler)

// WithClock подменяет источник текущего времени
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

func New(store Store, sender Sender, ordersChatID int64, loc *time.Location, opts ...Option) *Scheduler {
	s := &Scheduler{
		store:        store,
		sender:       sender,
		ordersChatID: ordersChatID,
		now:          time.Now,
		log:          logger.L(),
		jobs:         make(map[uint]*job),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.Named("scheduler")
	cl := logger.Cron(s.log)
	s.cron = cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl)),
	)
	return s
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop останавливает cron; контекст завершается, когда допишутся запущенные задачи
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Entries возвращает снимок зарегистрированных в cron задач
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

func (s *Scheduler) newTask(orderID uint, t TaskType, at time.Time) *db.ReminderTask {
	return &db.ReminderTask{
		OrderID:       orderID,
		TaskType:      t.String(),
		ScheduledTime: at.UTC(),
		JobID:         uuid.NewString(),
	}
}

// paymentCheck подбирает проверку оплаты по текущему статусу заказа.
// Для оплаченного заказа проверка не нужна.
func (s *Scheduler) paymentCheck(o *db.Order, now time.Time) *db.ReminderTask {
	switch o.PaymentStatus {
	case db.PaymentProcessing:
		return s.newTask(o.ID, CheckPaymentProcessing, now.Add(processingCheckWait))
	case db.PaymentNotPaid:
		return s.newTask(o.ID, CheckPaymentNotPaid, now.Add(notPaidCheckWait))
	}
	return nil
}

// ScheduleOrderReminders создаёт задачи для нового заказа: напоминание за
// 15 минут и благодарность после встречи (только если момент ещё впереди),
// плюс проверку оплаты по текущему статусу.
func (s *Scheduler) ScheduleOrderReminders(ctx context.Context, o *db.Order) ([]*db.ReminderTask, error) {
	now := s.now()
	var tasks []*db.ReminderTask

	if at := o.Date.Add(-reminderLead); at.After(now) {
		tasks = append(tasks, s.newTask(o.ID, Reminder15Min, at))
	}
	end := o.Date.Add(time.Duration(o.DurationHours * float64(time.Hour)))
	if end.After(now) {
		tasks = append(tasks, s.newTask(o.ID, AfterMeeting, end))
	}
	if check := s.paymentCheck(o, now); check != nil {
		tasks = append(tasks, check)
	}
	if len(tasks) == 0 {
		return nil, nil
	}

	if err := s.store.CreateReminderTasks(ctx, tasks); err != nil {
		return nil, fmt.Errorf("persist reminders for order %d: %w", o.ID, err)
	}
	for _, t := range tasks {
		if err := s.register(t); err != nil {
			return nil, err
		}
	}
	s.log.Info("reminders scheduled",
		zap.Uint("order_id", o.ID),
		zap.String("order_number", o.OrderNumber),
		zap.Int("tasks", len(tasks)))
	return tasks, nil
}

// SchedulePaymentCheck ставит проверку оплаты после смены статуса администратором
func (s *Scheduler) SchedulePaymentCheck(ctx context.Context, o *db.Order) (*db.ReminderTask, error) {
	task := s.paymentCheck(o, s.now())
	if task == nil {
		return nil, nil
	}
	if err := s.store.CreateReminderTasks(ctx, []*db.ReminderTask{task}); err != nil {
		return nil, fmt.Errorf("persist payment check for order %d: %w", o.ID, err)
	}
	if err := s.register(task); err != nil {
		return nil, err
	}
	s.log.Info("payment check scheduled",
		zap.Uint("order_id", o.ID),
		zap.String("type", task.TaskType),
		zap.Time("at", task.ScheduledTime))
	return task, nil
}

// Restore заново регистрирует невыполненные задачи из БД.
// Просроченные за время простоя задачи не запускаются.
func (s *Scheduler) Restore(ctx context.Context) (int, error) {
	pending, err := s.store.GetPendingReminderTasks(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("load pending reminders: %w", err)
	}

	restored := 0
	for i := range pending {
		task := &pending[i]
		if _, err := s.store.GetOrder(ctx, task.OrderID); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				s.log.Warn("skip reminder of missing order", zap.Uint("task_id", task.ID), zap.Uint("order_id", task.OrderID))
				continue
			}
			return restored, err
		}
		if task.JobID == "" {
			task.JobID = uuid.NewString()
			if _, err := s.store.SetReminderJobID(ctx, task.ID, task.JobID); err != nil {
				return restored, fmt.Errorf("persist job id for task %d: %w", task.ID, err)
			}
		}
		if err := s.register(task); err != nil {
			s.log.Warn("skip unrestorable reminder", zap.Uint("task_id", task.ID), zap.Error(err))
			continue
		}
		restored++
	}
	s.log.Info("reminders restored", zap.Int("count", restored), zap.Int("pending", len(pending)))
	return restored, nil
}

// CancelOrder снимает все живые задачи заказа. Уже запущенный обработчик
// увидит отмену на ближайшей проверке и ничего не отправит.
func (s *Scheduler) CancelOrder(orderID uint) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, j := range s.jobs {
		if j.orderID != orderID {
			continue
		}
		j.cancelled.Store(true)
		s.cron.Remove(j.entry)
		delete(s.jobs, id)
		n++
	}
	if n > 0 {
		s.log.Info("reminders cancelled", zap.Uint("order_id", orderID), zap.Int("count", n))
	}
	return n
}

func (s *Scheduler) register(task *db.ReminderTask) error {
	if _, err := ParseTaskType(task.TaskType); err != nil {
		return err
	}
	j := &job{taskID: task.ID, orderID: task.OrderID, jobID: task.JobID}

	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.jobs[task.ID]; ok {
		old.cancelled.Store(true)
		s.cron.Remove(old.entry)
	}
	j.entry = s.cron.Schedule(onceAt(task.ScheduledTime), cron.FuncJob(func() { s.fire(j) }))
	s.jobs[task.ID] = j
	return nil
}

func (s *Scheduler) forget(j *job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.jobs[j.taskID]; ok && cur == j {
		delete(s.jobs, j.taskID)
	}
	s.cron.Remove(j.entry)
}

func (s *Scheduler) fire(j *job) {
	defer s.forget(j)
	ctx, cancel := context.WithTimeout(context.Background(), fireTimeout)
	defer cancel()

	if err := s.run(ctx, j.taskID, &j.token); err != nil {
		s.log.Error("reminder failed", zap.Uint("task_id", j.taskID), zap.String("job_id", j.jobID), zap.Error(err))
		logger.NotifyAdmin(fmt.Sprintf("Ошибка отложенной задачи %d: %v", j.taskID, err))
	}
}

// run выполняет задачу. Устаревшие задачи (заказ удалён, статус изменился,
// напоминание уже отправлено) пропускаются без ошибки.
func (s *Scheduler) run(ctx context.Context, taskID uint, tok *token) error {
	if tok.Cancelled() {
		return nil
	}
	task, err := s.store.GetReminderTask(ctx, taskID)
	if errors.Is(err, db.ErrNotFound) {
		s.log.Debug("reminder task is gone", zap.Uint("task_id", taskID))
		return nil
	}
	if err != nil {
		return err
	}
	if task.Executed {
		return nil
	}
	tt, err := ParseTaskType(task.TaskType)
	if err != nil {
		return err
	}

	order, err := s.store.GetOrder(ctx, task.OrderID)
	if errors.Is(err, db.ErrNotFound) {
		s.log.Debug("order of reminder is gone", zap.Uint("task_id", taskID), zap.Uint("order_id", task.OrderID))
		return nil
	}
	if err != nil {
		return err
	}

	var (
		chatID int64
		text   string
	)
	switch tt {
	case Reminder15Min:
		if order.ReminderSent || !order.NotificationEnabled {
			return nil
		}
		chatID, text = customerChat(order), messages.Reminder15Min(order.ConferenceLink)
	case AfterMeeting:
		chatID, text = customerChat(order), messages.AfterMeeting()
	case CheckPaymentProcessing:
		if order.PaymentStatus != db.PaymentProcessing {
			return nil
		}
		chatID, text = s.ordersChatID, messages.PaymentCheck(order)
	case CheckPaymentNotPaid:
		if order.PaymentStatus != db.PaymentNotPaid {
			return nil
		}
		chatID, text = s.ordersChatID, messages.Unpaid(order)
	default:
		return fmt.Errorf("unhandled task type %s", tt)
	}

	if tok.Cancelled() {
		return nil
	}
	sendErr := s.deliver(chatID, text)
	if tok.Cancelled() {
		return nil
	}

	log := s.log.With(
		zap.Uint("task_id", taskID),
		zap.String("type", tt.String()),
		zap.String("order_number", order.OrderNumber))
	if sendErr != nil {
		log.Warn("reminder not delivered", zap.Error(sendErr))
	} else {
		log.Info("reminder delivered")
		if tt == Reminder15Min {
			if _, err := s.store.MarkReminderSent(ctx, order.ID); err != nil {
				return err
			}
		}
	}
	if _, err := s.store.MarkReminderTaskExecuted(ctx, taskID, s.now()); err != nil {
		return err
	}
	return nil
}

func (s *Scheduler) deliver(chatID int64, text string) error {
	if chatID == 0 {
		return errNoRecipient
	}
	return s.sender.SendText(chatID, text)
}

func customerChat(o *db.Order) int64 {
	if o.User == nil {
		return 0
	}
	return o.User.TelegramID
}
