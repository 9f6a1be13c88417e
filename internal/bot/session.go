package bot

import (
	"sync"
	"time"

	"Booking-Telegram-bot/internal/pricing"
)

// Step: шаг диалога бронирования
type Step int

const (
	StepIdle Step = iota
	StepFormat
	StepGame
	StepDate
	StepTime
	StepDuration
	StepParticipants
	StepConfirm
)

// Session: черновик диалога пользователя. Живёт только в памяти,
// после перезапуска пользователь начинает заново.
type Session struct {
	Step Step

	ProfileIndex int
	GameFilter   *uint

	ProfileID     uint
	Format        pricing.Format
	GameID        *uint
	Date          time.Time
	At            time.Time
	DurationHours float64
	Participants  int
}

// ResetBooking сбрасывает черновик заказа, сохраняя позицию просмотра анкет
func (s *Session) ResetBooking() {
	*s = Session{ProfileIndex: s.ProfileIndex, GameFilter: s.GameFilter}
}

type Sessions struct {
	mu    sync.Mutex
	items map[int64]*Session
}

func NewSessions() *Sessions {
	return &Sessions{items: make(map[int64]*Session)}
}

// Get возвращает сессию чата, создавая её при первом обращении
func (s *Sessions) Get(chatID int64) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.items[chatID]
	if !ok {
		sess = &Session{}
		s.items[chatID] = sess
	}
	return sess
}

func (s *Sessions) Reset(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, chatID)
}
