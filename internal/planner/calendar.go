package planner

import (
	"taskPlanner/internal/models/task"
	"time"
)

const GridCells = 42

// в ячейке календаря показывается не больше двух задач
const cellTaskLimit = 2

var MonthNames = [12]string{
	"Январь", "Февраль", "Март", "Апрель", "Май", "Июнь",
	"Июль", "Август", "Сентябрь", "Октябрь", "Ноябрь", "Декабрь",
}

var WeekdayNames = [7]string{"Пн", "Вт", "Ср", "Чт", "Пт", "Сб", "Вс"}

type Cell struct {
	Date       string
	Day        int
	OtherMonth bool
	Today      bool
	Tasks      []*task.Task
}

// MonthGrid строит сетку 6x7 с понедельника: месяц целиком плюс хвосты
// соседних месяцев. Порядок задач в ячейке сохраняет порядок tasks.
func MonthGrid(year int, month time.Month, tasks []*task.Task, now time.Time) []Cell {
	byDate := make(map[string][]*task.Task)
	for _, t := range tasks {
		if !t.HasDate() || len(byDate[*t.Date]) >= cellTaskLimit {
			continue
		}
		byDate[*t.Date] = append(byDate[*t.Date], t)
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	// Weekday: воскресенье = 0, сдвигаем так, чтобы понедельник стал 0
	lead := (int(first.Weekday()) + 6) % 7
	cur := first.AddDate(0, 0, -lead)
	today := ISODate(now)

	cells := make([]Cell, 0, GridCells)
	for i := 0; i < GridCells; i++ {
		ds := cur.Format(task.DateLayout)
		cells = append(cells, Cell{
			Date:       ds,
			Day:        cur.Day(),
			OtherMonth: cur.Month() != first.Month(),
			Today:      ds == today,
			Tasks:      byDate[ds],
		})
		cur = cur.AddDate(0, 0, 1)
	}
	return cells
}
