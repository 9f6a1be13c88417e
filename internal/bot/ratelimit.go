package bot

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter ограничивает частоту команд для каждого пользователя отдельно.
// Хранится в памяти процесса.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[int64]map[string]*rate.Limiter
	limits   map[string]time.Duration
	fallback time.Duration
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		limiters: make(map[int64]map[string]*rate.Limiter),
		limits: map[string]time.Duration{
			"/start":    3 * time.Second,
			"/profiles": 2 * time.Second,
			"/orders":   5 * time.Second,
			"confirm":   10 * time.Second,
		},
		fallback: 500 * time.Millisecond,
	}
}

func (r *RateLimiter) limiter(userID int64, cmd string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	byCmd, ok := r.limiters[userID]
	if !ok {
		byCmd = make(map[string]*rate.Limiter)
		r.limiters[userID] = byCmd
	}
	l, ok := byCmd[cmd]
	if !ok {
		every, known := r.limits[cmd]
		if !known {
			every = r.fallback
		}
		l = rate.NewLimiter(rate.Every(every), 1)
		byCmd[cmd] = l
	}
	return l
}

// IsLimited возвращает true, если пользователь слишком часто вызывает команду
func (r *RateLimiter) IsLimited(userID int64, cmd string) bool {
	return !r.limiter(userID, cmd).Allow()
}
