package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"Booking-Telegram-bot/internal/db"
)

const (
	customerID  = int64(4242)
	ordersChat  = int64(-1001)
	meetingLink = "https://meet.example.com/room"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type sentMessage struct {
	chatID int64
	text   string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (f *fakeSender) SendText(chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text})
	return f.err
}

func (f *fakeSender) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

func newTestStore(t *testing.T) *db.Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:scheduler_test_%s?mode=memory&cache=shared", name)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(gdb))
	return db.NewStore(gdb)
}

func newTestScheduler(t *testing.T) (*Scheduler, *db.Store, *fakeSender) {
	t.Helper()
	store := newTestStore(t)
	sender := &fakeSender{}
	s := New(store, sender, ordersChat, time.UTC,
		WithClock(func() time.Time { return testNow }),
		WithLogger(zap.NewNop()))
	return s, store, sender
}

func createOrder(t *testing.T, store *db.Store, date time.Time, status string) *db.Order {
	t.Helper()
	ctx := context.Background()
	user, err := store.GetOrCreateUser(ctx, customerID, "bob", "Bob")
	require.NoError(t, err)
	p := &db.Profile{Name: "Алиса", AudioChatPrice: 500, VideoChatPrice: 800}
	require.NoError(t, store.CreateProfile(ctx, p))

	o := &db.Order{
		UserID:              user.ID,
		ProfileID:           p.ID,
		FormatType:          "audio",
		Date:                date.UTC(),
		DurationHours:       2,
		ParticipantsCount:   1,
		BasePrice:           1000,
		TotalPrice:          1000,
		PaymentStatus:       status,
		NotificationEnabled: true,
	}
	require.NoError(t, store.CreateOrder(ctx, o))
	loaded, err := store.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	return loaded
}

func byType(tasks []*db.ReminderTask) map[string]*db.ReminderTask {
	m := make(map[string]*db.ReminderTask, len(tasks))
	for _, t := range tasks {
		m[t.TaskType] = t
	}
	return m
}

func TestTaskTypeNames(t *testing.T) {
	for _, tt := range []TaskType{Reminder15Min, AfterMeeting, CheckPaymentProcessing, CheckPaymentNotPaid} {
		parsed, err := ParseTaskType(tt.String())
		require.NoError(t, err)
		assert.Equal(t, tt, parsed)
	}
	assert.Equal(t, "reminder_15min", Reminder15Min.String())

	_, err := ParseTaskType("reminder_1h")
	assert.Error(t, err)
}

func TestOnceAtFiresOnlyOnce(t *testing.T) {
	at := testNow.Add(time.Minute)
	sched := onceAt(at)

	assert.Equal(t, at, sched.Next(testNow))
	assert.True(t, sched.Next(at).IsZero())
	assert.True(t, sched.Next(at.Add(time.Second)).IsZero())
}

func TestScheduleOrderRemindersForUnpaidOrder(t *testing.T) {
	s, store, _ := newTestScheduler(t)
	ctx := context.Background()
	date := testNow.Add(2 * time.Hour)
	o := createOrder(t, store, date, db.PaymentNotPaid)

	tasks, err := s.ScheduleOrderReminders(ctx, o)
	require.NoError(t, err)
	require.Len(t, tasks, 3)

	m := byType(tasks)
	require.Contains(t, m, "reminder_15min")
	require.Contains(t, m, "after_meeting")
	require.Contains(t, m, "check_payment_not_paid")
	assert.WithinDuration(t, date.Add(-15*time.Minute), m["reminder_15min"].ScheduledTime, time.Second)
	assert.WithinDuration(t, date.Add(2*time.Hour), m["after_meeting"].ScheduledTime, time.Second)
	assert.WithinDuration(t, testNow.Add(30*time.Minute), m["check_payment_not_paid"].ScheduledTime, time.Second)

	ids := map[string]bool{}
	for _, task := range tasks {
		assert.NotEmpty(t, task.JobID)
		ids[task.JobID] = true
	}
	assert.Len(t, ids, 3)
	assert.Len(t, s.Entries(), 3)

	stored, err := store.ListReminderTasksByOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 3)
}

func TestScheduleOrderRemindersSkipsPastMoments(t *testing.T) {
	s, store, _ := newTestScheduler(t)
	ctx := context.Background()

	soon := createOrder(t, store, testNow.Add(10*time.Minute), db.PaymentProcessing)
	tasks, err := s.ScheduleOrderReminders(ctx, soon)
	require.NoError(t, err)
	m := byType(tasks)
	assert.Len(t, tasks, 2)
	assert.NotContains(t, m, "reminder_15min")
	assert.Contains(t, m, "after_meeting")
	require.Contains(t, m, "check_payment_processing")
	assert.WithinDuration(t, testNow.Add(15*time.Minute), m["check_payment_processing"].ScheduledTime, time.Second)

	past := createOrder(t, store, testNow.Add(-3*time.Hour), db.PaymentPaid)
	tasks, err = s.ScheduleOrderReminders(ctx, past)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestReminderIsDeliveredOnce(t *testing.T) {
	s, store, sender := newTestScheduler(t)
	ctx := context.Background()
	o := createOrder(t, store, testNow.Add(time.Hour), db.PaymentPaid)
	_, err := store.SetConferenceLink(ctx, o.ID, meetingLink)
	require.NoError(t, err)

	tasks, err := s.ScheduleOrderReminders(ctx, o)
	require.NoError(t, err)
	reminder := byType(tasks)["reminder_15min"]
	require.NotNil(t, reminder)

	require.NoError(t, s.run(ctx, reminder.ID, nil))
	require.NoError(t, s.run(ctx, reminder.ID, nil))

	sent := sender.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, customerID, sent[0].chatID)
	assert.Contains(t, sent[0].text, meetingLink)

	reloaded, err := store.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.ReminderSent)

	task, err := store.GetReminderTask(ctx, reminder.ID)
	require.NoError(t, err)
	assert.True(t, task.Executed)
	assert.NotNil(t, task.ExecutedAt)
}

func TestReminderSkippedWhenNotificationsDisabled(t *testing.T) {
	s, store, sender := newTestScheduler(t)
	ctx := context.Background()
	o := createOrder(t, store, testNow.Add(time.Hour), db.PaymentPaid)

	tasks, err := s.ScheduleOrderReminders(ctx, o)
	require.NoError(t, err)
	_, err = store.SetNotificationEnabled(ctx, o.ID, false)
	require.NoError(t, err)

	reminder := byType(tasks)["reminder_15min"]
	require.NoError(t, s.run(ctx, reminder.ID, nil))
	assert.Empty(t, sender.messages())

	task, err := store.GetReminderTask(ctx, reminder.ID)
	require.NoError(t, err)
	assert.False(t, task.Executed)
}

func TestPaymentChecks(t *testing.T) {
	s, store, sender := newTestScheduler(t)
	ctx := context.Background()

	paidMeanwhile := createOrder(t, store, testNow.Add(5*time.Hour), db.PaymentProcessing)
	tasks, err := s.ScheduleOrderReminders(ctx, paidMeanwhile)
	require.NoError(t, err)
	_, err = store.UpdatePaymentStatus(ctx, paidMeanwhile.ID, db.PaymentPaid)
	require.NoError(t, err)
	require.NoError(t, s.run(ctx, byType(tasks)["check_payment_processing"].ID, nil))
	assert.Empty(t, sender.messages())

	unpaid := createOrder(t, store, testNow.Add(5*time.Hour), db.PaymentNotPaid)
	tasks, err = s.ScheduleOrderReminders(ctx, unpaid)
	require.NoError(t, err)
	require.NoError(t, s.run(ctx, byType(tasks)["check_payment_not_paid"].ID, nil))

	sent := sender.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, ordersChat, sent[0].chatID)
	assert.Equal(t, "❌ Заказ "+unpaid.OrderNumber+" не оплачен", sent[0].text)
}

func TestSchedulePaymentCheckFollowsStatus(t *testing.T) {
	s, store, _ := newTestScheduler(t)
	ctx := context.Background()
	o := createOrder(t, store, testNow.Add(5*time.Hour), db.PaymentPaid)

	task, err := s.SchedulePaymentCheck(ctx, o)
	require.NoError(t, err)
	assert.Nil(t, task)

	o.PaymentStatus = db.PaymentProcessing
	task, err = s.SchedulePaymentCheck(ctx, o)
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, "check_payment_processing", task.TaskType)
	assert.Len(t, s.Entries(), 1)
}

func TestTaskOfDeletedOrderIsNoop(t *testing.T) {
	s, store, sender := newTestScheduler(t)
	ctx := context.Background()
	o := createOrder(t, store, testNow.Add(time.Hour), db.PaymentNotPaid)

	tasks, err := s.ScheduleOrderReminders(ctx, o)
	require.NoError(t, err)
	require.NoError(t, store.DB().Delete(&db.Order{}, o.ID).Error)

	for _, task := range tasks {
		assert.NoError(t, s.run(ctx, task.ID, nil))
	}
	assert.Empty(t, sender.messages())

	assert.NoError(t, s.run(ctx, 9999, nil))
}

func TestCancelOrderStopsLiveJobs(t *testing.T) {
	s, store, sender := newTestScheduler(t)
	ctx := context.Background()
	o := createOrder(t, store, testNow.Add(time.Hour), db.PaymentNotPaid)
	other := createOrder(t, store, testNow.Add(time.Hour), db.PaymentPaid)

	tasks, err := s.ScheduleOrderReminders(ctx, o)
	require.NoError(t, err)
	_, err = s.ScheduleOrderReminders(ctx, other)
	require.NoError(t, err)
	require.Len(t, s.Entries(), 5)

	assert.Equal(t, 3, s.CancelOrder(o.ID))
	assert.Len(t, s.Entries(), 2)
	assert.Equal(t, 0, s.CancelOrder(o.ID))

	tok := &token{}
	tok.cancelled.Store(true)
	reminder := byType(tasks)["reminder_15min"]
	require.NoError(t, s.run(ctx, reminder.ID, tok))
	assert.Empty(t, sender.messages())

	task, err := store.GetReminderTask(ctx, reminder.ID)
	require.NoError(t, err)
	assert.False(t, task.Executed)
}

func TestRestoreSkipsOverdueTasks(t *testing.T) {
	s, store, sender := newTestScheduler(t)
	ctx := context.Background()
	o := createOrder(t, store, testNow.Add(2*time.Hour), db.PaymentPaid)

	future := &db.ReminderTask{OrderID: o.ID, TaskType: "after_meeting", ScheduledTime: testNow.Add(4 * time.Hour)}
	overdue := &db.ReminderTask{OrderID: o.ID, TaskType: "reminder_15min", ScheduledTime: testNow.Add(-5 * time.Minute), JobID: "old"}
	done := &db.ReminderTask{OrderID: o.ID, TaskType: "reminder_15min", ScheduledTime: testNow.Add(time.Hour), JobID: "done", Executed: true}
	require.NoError(t, store.CreateReminderTasks(ctx, []*db.ReminderTask{future, overdue, done}))

	n, err := s.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, s.Entries(), 1)
	assert.Empty(t, sender.messages())

	reloaded, err := store.GetReminderTask(ctx, future.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, reloaded.JobID)

	stale, err := store.GetReminderTask(ctx, overdue.ID)
	require.NoError(t, err)
	assert.False(t, stale.Executed)
}

func TestDeliveryFailureStillMarksExecuted(t *testing.T) {
	s, store, sender := newTestScheduler(t)
	sender.err = errors.New("bot was blocked by the user")
	ctx := context.Background()
	o := createOrder(t, store, testNow.Add(time.Hour), db.PaymentPaid)

	tasks, err := s.ScheduleOrderReminders(ctx, o)
	require.NoError(t, err)
	reminder := byType(tasks)["reminder_15min"]
	require.NoError(t, s.run(ctx, reminder.ID, nil))

	task, err := store.GetReminderTask(ctx, reminder.ID)
	require.NoError(t, err)
	assert.True(t, task.Executed)

	reloaded, err := store.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.ReminderSent)
}

func TestJobFiresThroughCron(t *testing.T) {
	store := newTestStore(t)
	sender := &fakeSender{}
	s := New(store, sender, ordersChat, time.UTC, WithLogger(zap.NewNop()))
	ctx := context.Background()

	// встреча закончится через 300 мс
	o := createOrder(t, store, time.Now().Add(-2*time.Hour+300*time.Millisecond), db.PaymentPaid)
	tasks, err := s.ScheduleOrderReminders(ctx, o)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return len(sender.messages()) == 1 }, 5*time.Second, 20*time.Millisecond)
	assert.Eventually(t, func() bool { return len(s.Entries()) == 0 }, 5*time.Second, 20*time.Millisecond)
	<-s.Stop().Done()

	task, err := store.GetReminderTask(ctx, tasks[0].ID)
	require.NoError(t, err)
	assert.True(t, task.Executed)
}
