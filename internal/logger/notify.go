package logger

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Sender отправляет текстовое сообщение в чат
type Sender interface {
	SendText(chatID int64, text string) error
}

var (
	notifier Sender
	alertTo  int64
	once     sync.Once
)

// InitNotifier инициализирует уведомления об ошибках в чат заказов
func InitNotifier(s Sender, chatID int64) {
	once.Do(func() {
		notifier = s
		alertTo = chatID
	})
}

// NotifyAdmin пишет ошибку в лог и отправляет её в чат администраторов
func NotifyAdmin(msg string) {
	log.Warn("admin_alert", zap.String("msg", msg))
	if notifier == nil || alertTo == 0 {
		return
	}
	if err := notifier.SendText(alertTo, "[ALERT] "+msg); err != nil {
		log.Error("failed to deliver admin alert", zap.Error(err))
	}
}

// NotifyOnPanic ловит панику, логирует и уведомляет
func NotifyOnPanic(context string) {
	if r := recover(); r != nil {
		log.Error("panic recovered", zap.String("context", context), zap.Any("panic", r))
		NotifyAdmin("Panic in " + context + ": " + fmt.Sprint(r))
	}
}
