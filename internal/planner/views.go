package planner

import (
	"math"
	"sort"
	"strings"
	"taskPlanner/internal/models/task"
	"time"
)

// число ближайших задач в обзоре дня
const upcomingLimit = 5

// SortForList возвращает отсортированную копию: просроченные первыми,
// затем невыполненные, затем по дате (без даты в конце) и приоритету.
func SortForList(tasks []*task.Task, now time.Time) []*task.Task {
	out := append([]*task.Task(nil), tasks...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]

		ao, bo := IsOverdue(a, now), IsOverdue(b, now)
		if ao != bo {
			return ao
		}
		if a.Done != b.Done {
			return !a.Done
		}
		if a.HasDate() && b.HasDate() {
			if *a.Date != *b.Date {
				return *a.Date < *b.Date
			}
			return a.Priority < b.Priority
		}
		if a.HasDate() != b.HasDate() {
			return a.HasDate()
		}
		return a.Priority < b.Priority
	})
	return out
}

// FilterList - отбор для списка: по приоритету (nil - все) и подстроке названия
// без учёта регистра.
func FilterList(tasks []*task.Task, priority *task.Priority, search string) []*task.Task {
	search = strings.ToLower(strings.TrimSpace(search))
	out := make([]*task.Task, 0, len(tasks))
	for _, t := range tasks {
		if priority != nil && t.Priority != *priority {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(t.Title), search) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// SplitDone делит список на активные и выполненные, сохраняя порядок
func SplitDone(tasks []*task.Task) (active, done []*task.Task) {
	for _, t := range tasks {
		if t.Done {
			done = append(done, t)
		} else {
			active = append(active, t)
		}
	}
	return active, done
}

type TodayView struct {
	Overdue  []*task.Task
	Today    []*task.Task
	Upcoming []*task.Task
}

// Today собирает обзор дня: просроченное с прошлых дней, задачи на сегодня
// вместе с невыполненными без даты и пять ближайших.
func Today(tasks []*task.Task, now time.Time) TodayView {
	today := ISODate(now)
	var view TodayView

	for _, t := range tasks {
		if IsOverdue(t, now) && !isOn(t, today) {
			view.Overdue = append(view.Overdue, t)
		}
		if isOn(t, today) || (!t.HasDate() && !t.Done) {
			view.Today = append(view.Today, t)
		}
		if !t.Done && t.HasDate() && *t.Date > today {
			view.Upcoming = append(view.Upcoming, t)
		}
	}

	byPriority := func(list []*task.Task) {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Priority < list[j].Priority })
	}
	byPriority(view.Overdue)
	byPriority(view.Today)
	sort.SliceStable(view.Upcoming, func(i, j int) bool { return *view.Upcoming[i].Date < *view.Upcoming[j].Date })
	if len(view.Upcoming) > upcomingLimit {
		view.Upcoming = view.Upcoming[:upcomingLimit]
	}
	return view
}

// DayTasks - задачи на дату: по времени (без времени в конце), затем по приоритету
func DayTasks(tasks []*task.Task, date string) []*task.Task {
	var out []*task.Task
	for _, t := range tasks {
		if isOn(t, date) {
			out = append(out, t)
		}
	}

	clock := func(t *task.Task) string {
		if t.HasTime() {
			return *t.Time
		}
		return "99:99"
	}
	sort.SliceStable(out, func(i, j int) bool {
		ci, cj := clock(out[i]), clock(out[j])
		if ci != cj {
			return ci < cj
		}
		return out[i].Priority < out[j].Priority
	})
	return out
}

type Stats struct {
	Total   int
	Done    int
	Overdue int
	Today   int
	Percent int
}

func ComputeStats(tasks []*task.Task, now time.Time) Stats {
	today := ISODate(now)
	stats := Stats{Total: len(tasks)}
	for _, t := range tasks {
		if t.Done {
			stats.Done++
		}
		if IsOverdue(t, now) {
			stats.Overdue++
		}
		if isOn(t, today) && !t.Done {
			stats.Today++
		}
	}
	if stats.Total > 0 {
		stats.Percent = int(math.Round(float64(stats.Done) / float64(stats.Total) * 100))
	}
	return stats
}

func isOn(t *task.Task, date string) bool {
	return t.HasDate() && *t.Date == date
}
