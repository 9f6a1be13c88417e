package admin

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"Booking-Telegram-bot/internal/db"
	"Booking-Telegram-bot/internal/logger"
)

const (
	backupTimeout   = 2 * time.Minute
	backupRetention = 31 * 24 * time.Hour
)

var errRestoreUnsupported = errors.New("restore is supported for PostgreSQL only")

// Backup снимает дампы БД: pg_dump для PostgreSQL, VACUUM INTO для SQLite
type Backup struct {
	db  *gorm.DB
	dsn string
	dir string
	now func() time.Time
	log *zap.Logger
}

func NewBackup(gdb *gorm.DB, dsn, dir string) *Backup {
	return &Backup{db: gdb, dsn: dsn, dir: dir, now: time.Now, log: logger.L().Named("backup")}
}

func (b *Backup) ext() string {
	if db.IsPostgres(b.dsn) {
		return ".dump"
	}
	return ".db"
}

// Create пишет дамп в каталог бэкапов и возвращает путь к файлу
func (b *Backup) Create(ctx context.Context, prefix string) (string, error) {
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return "", err
	}
	filename := filepath.Join(b.dir, prefix+"_"+b.now().Format("20060102_150405")+b.ext())

	ctx, cancel := context.WithTimeout(ctx, backupTimeout)
	defer cancel()
	if db.IsPostgres(b.dsn) {
		out, err := exec.CommandContext(ctx, "pg_dump", b.dsn, "-Fc", "-f", filename).CombinedOutput()
		if err != nil {
			return "", fmt.Errorf("pg_dump: %w: %s", err, out)
		}
		return filename, nil
	}
	if err := b.db.WithContext(ctx).Exec("VACUUM INTO ?", filename).Error; err != nil {
		return "", fmt.Errorf("vacuum into %s: %w", filename, err)
	}
	return filename, nil
}

// Restore восстанавливает PostgreSQL из дампа в каталоге бэкапов
func (b *Backup) Restore(ctx context.Context, name string) error {
	if !db.IsPostgres(b.dsn) {
		return errRestoreUnsupported
	}
	filename := filepath.Join(b.dir, filepath.Base(name))
	if _, err := os.Stat(filename); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, backupTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, "pg_restore", "--clean", "-d", b.dsn, filename).CombinedOutput()
	if err != nil {
		return fmt.Errorf("pg_restore: %w: %s", err, out)
	}
	return nil
}

// CleanOldBackups удаляет дампы старше maxAge и возвращает число удалённых
func CleanOldBackups(dir string, maxAge time.Duration, now time.Time) (int, error) {
	var files []string
	for _, pattern := range []string{"*backup_*.dump", "*backup_*.db"} {
		matched, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return 0, err
		}
		files = append(files, matched...)
	}
	cutoff := now.Add(-maxAge)
	removed := 0
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(f); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

// Auto: ночной бэкап по cron: дамп, чистка старых, уведомление при ошибке
func (b *Backup) Auto() {
	filename, err := b.Create(context.Background(), "autobackup")
	if err != nil {
		b.log.Error("auto backup failed", zap.Error(err))
		logger.NotifyAdmin("Ошибка автоматического резервного копирования: " + err.Error())
		return
	}
	removed, err := CleanOldBackups(b.dir, backupRetention, b.now())
	if err != nil {
		b.log.Warn("clean old backups", zap.Error(err))
	}
	b.log.Info("auto backup created", zap.String("file", filename), zap.Int("removed_old", removed))
}
