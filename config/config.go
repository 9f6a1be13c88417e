package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	BotToken     string
	DatabaseURL  string
	AdminIDs     []int64
	OrdersChatID int64
	Timezone     string
	Location     *time.Location
	Env          string
	BackupDir    string
	BackupCron   string
}

var AppCfg AppConfig

// LoadConfig читает .env и переменные окружения в AppCfg, завершая процесс при ошибке
func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env file not found, relying on environment variables")
	}
	cfg, err := Load()
	if err != nil {
		log.Fatalf("Critical configuration error: %v", err)
	}
	AppCfg = *cfg
}

// Load собирает конфигурацию из окружения без побочных эффектов
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		BotToken:    os.Getenv("BOT_TOKEN"),
		DatabaseURL: getEnv("DATABASE_URL", "data/bot.db"),
		Timezone:    getEnv("TIMEZONE", "Europe/Moscow"),
		Env:         getEnv("APP_ENV", "production"),
		BackupDir:   getEnv("BACKUP_DIR", "backups"),
		BackupCron:  getEnv("BACKUP_CRON", "0 3 * * *"),
	}
	if cfg.BotToken == "" {
		return nil, errors.New("BOT_TOKEN is not set")
	}

	ids, err := parseIDs(os.Getenv("ADMIN_IDS"))
	if err != nil {
		return nil, fmt.Errorf("ADMIN_IDS: %w", err)
	}
	cfg.AdminIDs = ids

	if raw := strings.TrimSpace(os.Getenv("ORDERS_CHAT_ID")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ORDERS_CHAT_ID: %w", err)
		}
		cfg.OrdersChatID = id
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE %q: %w", cfg.Timezone, err)
	}
	cfg.Location = loc
	return cfg, nil
}

func (c *AppConfig) IsAdmin(userID int64) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (c *AppConfig) IsDev() bool {
	return c.Env == "dev" || c.Env == "development"
}

func parseIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}
