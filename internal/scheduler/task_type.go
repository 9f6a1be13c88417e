package scheduler

import "fmt"

// TaskType: вид отложенного действия по заказу
type TaskType int

const (
	Reminder15Min TaskType = iota + 1
	AfterMeeting
	CheckPaymentProcessing
	CheckPaymentNotPaid
)

var taskTypeNames = map[TaskType]string{
	Reminder15Min:          "reminder_15min",
	AfterMeeting:           "after_meeting",
	CheckPaymentProcessing: "check_payment_processing",
	CheckPaymentNotPaid:    "check_payment_not_paid",
}

// String возвращает имя вида задачи, под которым она хранится в БД
func (t TaskType) String() string {
	if name, ok := taskTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TaskType(%d)", int(t))
}

func ParseTaskType(s string) (TaskType, error) {
	for t, name := range taskTypeNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown reminder task type %q", s)
}
