package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"Booking-Telegram-bot/config"
	"Booking-Telegram-bot/internal/admin"
	"Booking-Telegram-bot/internal/bot"
	"Booking-Telegram-bot/internal/db"
	"Booking-Telegram-bot/internal/logger"
	"Booking-Telegram-bot/internal/scheduler"
	"Booking-Telegram-bot/internal/services"
)

func main() {
	config.LoadConfig()
	cfg := &config.AppCfg
	if err := logger.Init(cfg.IsDev()); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	gdb, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.L().Fatal("open database", zap.Error(err))
	}
	if err := db.AutoMigrate(gdb); err != nil {
		logger.L().Fatal("migrate database", zap.Error(err))
	}
	store := db.NewStore(gdb)

	botapi, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		logger.L().Fatal("create bot", zap.Error(err))
	}
	sender := bot.NewSender(botapi)
	logger.InitNotifier(sender, cfg.OrdersChatID)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Напоминания по заказам: восстановление из БД после перезапуска
	sched := scheduler.New(store, sender, cfg.OrdersChatID, cfg.Location)
	if _, err := sched.Restore(ctx); err != nil {
		logger.Error("restore reminders", zap.Error(err))
		logger.NotifyAdmin("Не удалось восстановить напоминания: " + err.Error())
	}
	sched.Start()

	// Автоматический бэкап БД раз в сутки
	backup := admin.NewBackup(gdb, cfg.DatabaseURL, cfg.BackupDir)
	cronLog := logger.Cron(logger.L())
	c := cron.New(cron.WithLocation(cfg.Location), cron.WithLogger(cronLog), cron.WithChain(cron.Recover(cronLog)))
	if _, err := c.AddFunc(cfg.BackupCron, backup.Auto); err != nil {
		logger.Error("invalid BACKUP_CRON", zap.String("spec", cfg.BackupCron), zap.Error(err))
	}
	c.Start()

	orders := services.NewOrders(store, sched, sender, cfg.OrdersChatID, cfg.Location)
	adminHandler := admin.NewHandler(botapi, store, orders, backup, cfg)

	logger.Info("bot started",
		zap.String("timezone", cfg.Timezone),
		zap.Bool("postgres", db.IsPostgres(cfg.DatabaseURL)),
		zap.Int("admins", len(cfg.AdminIDs)))
	bot.New(botapi, sender, store, orders, adminHandler, cfg).Run(ctx)

	logger.Info("shutting down")
	shutdown, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, done := range []context.Context{sched.Stop(), c.Stop()} {
		select {
		case <-done.Done():
		case <-shutdown.Done():
		}
	}
}
