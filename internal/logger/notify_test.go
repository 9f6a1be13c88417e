package logger

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingSender struct {
	chats []int64
	texts []string
	err   error
}

func (r *recordingSender) SendText(chatID int64, text string) error {
	r.chats = append(r.chats, chatID)
	r.texts = append(r.texts, text)
	return r.err
}

func resetNotifier() {
	notifier = nil
	alertTo = 0
	once = sync.Once{}
}

func TestNotifyAdminSendsAlert(t *testing.T) {
	resetNotifier()
	defer resetNotifier()
	s := &recordingSender{}
	InitNotifier(s, 42)

	NotifyAdmin("db is down")

	assert.Equal(t, []int64{42}, s.chats)
	assert.Equal(t, []string{"[ALERT] db is down"}, s.texts)
}

func TestNotifyAdminWithoutChatIsNoop(t *testing.T) {
	resetNotifier()
	defer resetNotifier()
	s := &recordingSender{}
	InitNotifier(s, 0)

	NotifyAdmin("ignored")

	assert.Empty(t, s.texts)
}

func TestNotifyOnPanicRecovers(t *testing.T) {
	resetNotifier()
	defer resetNotifier()
	s := &recordingSender{err: errors.New("telegram unavailable")}
	InitNotifier(s, 7)

	assert.NotPanics(t, func() {
		defer NotifyOnPanic("job")
		panic("boom")
	})
	assert.Equal(t, []string{"[ALERT] Panic in job: boom"}, s.texts)
}
