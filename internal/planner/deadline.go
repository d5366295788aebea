// Package planner - вычисления для представления задач: просрочка,
// обратный отсчёт, календарная сетка, сортировки и сводка.
// Функции чистые, текущее время передаётся явно.
package planner

import (
	"fmt"
	"taskPlanner/internal/models/task"
	"time"
)

// задача без времени должна быть выполнена до конца дня
const endOfDay = "23:59"

// EffectiveDeadline - дата задачи со временем, а без времени 23:59 того же дня,
// в часовом поясе loc. ok=false, если у задачи нет даты.
func EffectiveDeadline(t *task.Task, loc *time.Location) (time.Time, bool) {
	if !t.HasDate() {
		return time.Time{}, false
	}

	clock := endOfDay
	if t.HasTime() {
		clock = *t.Time
	}

	deadline, err := time.ParseInLocation(task.DateLayout+" "+task.TimeLayout, *t.Date+" "+clock, loc)
	if err != nil {
		return time.Time{}, false
	}
	return deadline, true
}

// IsOverdue - невыполненная задача с датой, срок которой строго раньше now
func IsOverdue(t *task.Task, now time.Time) bool {
	if t.Done {
		return false
	}
	deadline, ok := EffectiveDeadline(t, now.Location())
	return ok && deadline.Before(now)
}

type Urgency string

const (
	UrgencyOverdue Urgency = "overdue"
	UrgencyOK      Urgency = "ok"
	UrgencySoon    Urgency = "soon"
	UrgencyUrgent  Urgency = "urgent"
)

type Countdown struct {
	Label   string
	Urgency Urgency
}

// CountdownFor - оставшееся до срока время. ok=false, если у задачи нет даты.
//
//	< 0            "Просрочено"   overdue
//	>= 7 дней      "Nд"           ok
//	1..7 дней      "Nд Mч"        urgent до 2 дней, иначе soon
//	1..24 часа     "Hч Mм"        urgent до 4 часов, иначе soon
//	< 1 часа       "Mм"           urgent
func CountdownFor(t *task.Task, now time.Time) (Countdown, bool) {
	deadline, ok := EffectiveDeadline(t, now.Location())
	if !ok {
		return Countdown{}, false
	}

	diff := deadline.Sub(now)
	if diff < 0 {
		return Countdown{Label: "Просрочено", Urgency: UrgencyOverdue}, true
	}

	hours := int(diff / time.Hour)
	minutes := int((diff % time.Hour) / time.Minute)
	days := hours / 24

	switch {
	case days >= 7:
		return Countdown{Label: fmt.Sprintf("%dд", days), Urgency: UrgencyOK}, true
	case days > 0:
		urgency := UrgencySoon
		if days < 2 {
			urgency = UrgencyUrgent
		}
		return Countdown{Label: fmt.Sprintf("%dд %dч", days, hours%24), Urgency: urgency}, true
	case hours > 0:
		urgency := UrgencySoon
		if hours < 4 {
			urgency = UrgencyUrgent
		}
		return Countdown{Label: fmt.Sprintf("%dч %dм", hours, minutes), Urgency: urgency}, true
	default:
		return Countdown{Label: fmt.Sprintf("%dм", minutes), Urgency: UrgencyUrgent}, true
	}
}

// ISODate - дата now в формате задач (YYYY-MM-DD) в его часовом поясе
func ISODate(now time.Time) string {
	return now.Format(task.DateLayout)
}
