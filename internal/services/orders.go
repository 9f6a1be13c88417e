package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"Booking-Telegram-bot/internal/db"
	"Booking-Telegram-bot/internal/logger"
	"Booking-Telegram-bot/internal/messages"
	"Booking-Telegram-bot/internal/pricing"
)

var (
	ErrCancelProcessing     = errors.New("order payment is being processed")
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
	ErrProfileNotFound      = errors.New("profile not found")
	ErrOrderNotFound        = errors.New("order not found")
	ErrFormatUnavailable    = errors.New("format is not available for this profile")
)

// Sender доставляет текст в чат Telegram
type Sender interface {
	SendText(chatID int64, text string) error
}

// Scheduler: планировщик напоминаний по заказам
type Scheduler interface {
	ScheduleOrderReminders(ctx context.Context, o *db.Order) ([]*db.ReminderTask, error)
	SchedulePaymentCheck(ctx context.Context, o *db.Order) (*db.ReminderTask, error)
	CancelOrder(orderID uint) int
}

// Orders ведёт жизненный цикл заказа: оформление, оплата, ссылка, отмена
type Orders struct {
	store        *db.Store
	scheduler    Scheduler
	sender       Sender
	ordersChatID int64
	loc          *time.Location
	log          *zap.Logger
}

func NewOrders(store *db.Store, scheduler Scheduler, sender Sender, ordersChatID int64, loc *time.Location) *Orders {
	return &Orders{
		store:        store,
		scheduler:    scheduler,
		sender:       sender,
		ordersChatID: ordersChatID,
		loc:          loc,
		log:          logger.L().Named("orders"),
	}
}

// BookingRequest: данные, собранные в диалоге бронирования
type BookingRequest struct {
	TelegramID    int64
	Username      string
	FirstName     string
	ProfileID     uint
	Format        pricing.Format
	GameID        *uint
	Date          time.Time
	DurationHours float64
	Participants  int
}

func RatesOf(p *db.Profile) pricing.Rates {
	return pricing.Rates{Audio: p.AudioChatPrice, Video: p.VideoChatPrice, Private: p.PrivatePrice}
}

// QuoteFor считает стоимость выбранного формата по тарифам анкеты
func QuoteFor(p *db.Profile, f pricing.Format, durationHours float64, participants int) (pricing.Quote, error) {
	if !f.Valid() {
		return pricing.Quote{}, fmt.Errorf("unknown format %q", f)
	}
	if f == pricing.FormatPrivate && p.PrivatePrice == nil {
		return pricing.Quote{}, ErrFormatUnavailable
	}
	return pricing.ForFormat(RatesOf(p), f, durationHours, participants), nil
}

// Book оформляет заказ, ставит напоминания и уведомляет чат заказов
func (s *Orders) Book(ctx context.Context, req BookingRequest) (*db.Order, error) {
	user, err := s.store.GetOrCreateUser(ctx, req.TelegramID, req.Username, req.FirstName)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	profile, err := s.store.GetProfile(ctx, req.ProfileID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}

	participants := req.Participants
	if participants < 1 {
		participants = 1
	}
	quote, err := QuoteFor(profile, req.Format, req.DurationHours, participants)
	if err != nil {
		return nil, err
	}

	order := &db.Order{
		UserID:                      user.ID,
		ProfileID:                   profile.ID,
		FormatType:                  string(req.Format),
		Date:                        req.Date.UTC(),
		DurationHours:               quote.DurationHours,
		ParticipantsCount:           participants,
		BasePrice:                   quote.Price.Base,
		AdditionalParticipantsPrice: quote.Price.Additional,
		TotalPrice:                  quote.Price.Total,
		PaymentStatus:               db.PaymentNotPaid,
		NotificationEnabled:         true,
	}
	if req.GameID != nil {
		game, err := s.store.GetGame(ctx, *req.GameID)
		switch {
		case err == nil:
			order.GameID = &game.ID
			order.GameName = game.Name
		case errors.Is(err, db.ErrNotFound):
			s.log.Warn("booking with unknown game", zap.Uint("game_id", *req.GameID))
		default:
			return nil, err
		}
	}

	if err := s.store.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	created, err := s.store.GetOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	s.log.Info("order created",
		zap.String("order_number", created.OrderNumber),
		zap.Int64("telegram_id", req.TelegramID),
		zap.Float64("total", created.TotalPrice))

	if _, err := s.scheduler.ScheduleOrderReminders(ctx, created); err != nil {
		s.log.Error("schedule reminders", zap.String("order_number", created.OrderNumber), zap.Error(err))
		logger.NotifyAdmin(fmt.Sprintf("Не удалось запланировать напоминания для заказа %s: %v", created.OrderNumber, err))
	}
	s.notify(s.ordersChatID, messages.NewOrderNotice(created, s.loc))
	return created, nil
}

func (s *Orders) getOrder(ctx context.Context, id uint) (*db.Order, error) {
	o, err := s.store.GetOrder(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	return o, err
}

func validPaymentStatus(status string) bool {
	switch status {
	case db.PaymentNotPaid, db.PaymentProcessing, db.PaymentPaid:
		return true
	}
	return false
}

// SetPaymentStatus меняет статус оплаты. При переходе в processing или
// not_paid ставится соответствующая проверка оплаты.
func (s *Orders) SetPaymentStatus(ctx context.Context, id uint, status string) (*db.Order, error) {
	if !validPaymentStatus(status) {
		return nil, ErrInvalidPaymentStatus
	}
	o, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.PaymentStatus == status {
		return o, nil
	}
	if _, err := s.store.UpdatePaymentStatus(ctx, id, status); err != nil {
		return nil, err
	}
	s.log.Info("payment status changed",
		zap.String("order_number", o.OrderNumber),
		zap.String("from", o.PaymentStatus),
		zap.String("to", status))
	o.PaymentStatus = status

	if _, err := s.scheduler.SchedulePaymentCheck(ctx, o); err != nil {
		s.log.Error("schedule payment check", zap.String("order_number", o.OrderNumber), zap.Error(err))
	}
	return o, nil
}

func (s *Orders) SetConferenceLink(ctx context.Context, id uint, link string) error {
	ok, err := s.store.SetConferenceLink(ctx, id, link)
	if err != nil {
		return err
	}
	if !ok {
		return ErrOrderNotFound
	}
	return nil
}

// ToggleNotifications переключает напоминания по заказу и возвращает новое значение
func (s *Orders) ToggleNotifications(ctx context.Context, id uint) (bool, error) {
	o, err := s.getOrder(ctx, id)
	if err != nil {
		return false, err
	}
	enabled := !o.NotificationEnabled
	if _, err := s.store.SetNotificationEnabled(ctx, id, enabled); err != nil {
		return false, err
	}
	return enabled, nil
}

// Cancel отменяет заказ: удаляет заказ, снимает напоминания и сообщает
// пользователю. Заказ с оплатой в обработке отменить нельзя.
func (s *Orders) Cancel(ctx context.Context, id uint) (*db.Order, error) {
	o, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.PaymentStatus == db.PaymentProcessing {
		return nil, ErrCancelProcessing
	}

	deleted, err := s.store.DeleteOrder(ctx, o.ID)
	if err != nil {
		return nil, fmt.Errorf("delete order %s: %w", o.OrderNumber, err)
	}
	if !deleted {
		return nil, ErrOrderNotFound
	}
	// записи уже удалены; задачи, сработавшие до снятия, не найдут заказ
	s.scheduler.CancelOrder(o.ID)
	s.log.Info("order cancelled", zap.String("order_number", o.OrderNumber), zap.String("payment_status", o.PaymentStatus))

	if o.User != nil {
		s.notify(o.User.TelegramID, messages.Cancellation(o.PaymentStatus))
	}
	return o, nil
}

// MessageUser отправляет пользователю подтверждение, что заказ принят в работу
func (s *Orders) MessageUser(ctx context.Context, id uint) error {
	o, err := s.getOrder(ctx, id)
	if err != nil {
		return err
	}
	if o.User == nil {
		return ErrOrderNotFound
	}
	return s.sender.SendText(o.User.TelegramID, messages.OrderAccepted(o))
}

func (s *Orders) notify(chatID int64, text string) {
	if chatID == 0 {
		return
	}
	if err := s.sender.SendText(chatID, text); err != nil {
		s.log.Warn("notification not delivered", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
