package bot

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"Booking-Telegram-bot/config"
	"Booking-Telegram-bot/internal/admin"
	"Booking-Telegram-bot/internal/db"
	"Booking-Telegram-bot/internal/logger"
	"Booking-Telegram-bot/internal/services"
)

type Bot struct {
	api      *tgbotapi.BotAPI
	sender   *Sender
	store    *db.Store
	orders   *services.Orders
	admin    *admin.Handler
	cfg      *config.AppConfig
	sessions *Sessions
	limiter  *RateLimiter
	now      func() time.Time
	log      *zap.Logger
}

func New(api *tgbotapi.BotAPI, sender *Sender, store *db.Store, orders *services.Orders, adminHandler *admin.Handler, cfg *config.AppConfig) *Bot {
	return &Bot{
		api:      api,
		sender:   sender,
		store:    store,
		orders:   orders,
		admin:    adminHandler,
		cfg:      cfg,
		sessions: NewSessions(),
		limiter:  NewRateLimiter(),
		now:      time.Now,
		log:      logger.L().Named("bot"),
	}
}

// Run читает обновления long polling до отмены ctx.
// Обновления обрабатываются последовательно.
func (b *Bot) Run(ctx context.Context) {
	b.log.Info("authorized", zap.String("account", b.api.Self.UserName))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handle(ctx, update)
		}
	}
}

func (b *Bot) handle(ctx context.Context, update tgbotapi.Update) {
	defer logger.NotifyOnPanic("update handler")
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	b.HandleUpdate(ctx, update)
}
