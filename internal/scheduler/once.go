package scheduler

import "time"

// onceAt: расписание cron, срабатывающее один раз в заданный момент.
// Если момент уже прошёл, задача не срабатывает вовсе.
type onceAt time.Time

func (o onceAt) Next(t time.Time) time.Time {
	at := time.Time(o)
	if at.After(t) {
		return at
	}
	return time.Time{}
}
