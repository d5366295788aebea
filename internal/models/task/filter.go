package task

import (
	"sort"
	"strings"
)

// Filter - необязательные условия выборки; все условия объединяются через AND
// вместе с обязательным условием владельца.
type Filter struct {
	Priority *Priority
	Done     *bool
	Date     *string
	Query    string
}

func (f Filter) Matches(t *Task) bool {
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	if f.Done != nil && t.Done != *f.Done {
		return false
	}
	if f.Date != nil && (t.Date == nil || *t.Date != *f.Date) {
		return false
	}
	if f.Query != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(f.Query)) {
		return false
	}
	return true
}

// SortStored упорядочивает задачи так же, как выдача API:
// невыполненные раньше выполненных, с датой раньше задач без даты,
// дата по возрастанию, приоритет по возрастанию, более новые раньше.
func SortStored(tasks []*Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.Done != b.Done {
			return !a.Done
		}
		if a.HasDate() != b.HasDate() {
			return a.HasDate()
		}
		if a.HasDate() && *a.Date != *b.Date {
			return *a.Date < *b.Date
		}
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}
