package cli

import (
	"fmt"
	"io"
	"strings"
	"taskPlanner/internal/models/task"
	"taskPlanner/internal/planner"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
)

// длина короткого id в выводе; команды принимают любой однозначный префикс
const shortIDLen = 8

// ширина названия задачи в ячейке календаря
const cellTitleWidth = 10

func shortID(id uuid.UUID) string {
	return id.String()[:shortIDLen]
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func renderHeader(w io.Writer, stats planner.Stats) {
	fmt.Fprintf(w, "Всего: %d  Выполнено: %d (%d%%)  Просрочено: %d  На сегодня: %d\n",
		stats.Total, stats.Done, stats.Percent, stats.Overdue, stats.Today)
}

func when(t *task.Task) string {
	if !t.HasDate() {
		return "-"
	}
	if t.HasTime() {
		return *t.Date + " " + *t.Time
	}
	return *t.Date
}

func countdown(t *task.Task, now time.Time) string {
	if t.Done {
		return ""
	}
	cd, ok := planner.CountdownFor(t, now)
	if !ok {
		return ""
	}
	return cd.Label
}

func renderTasks(w io.Writer, tasks []*task.Task, now time.Time) error {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "  нет задач")
		return nil
	}

	tw := newTable(w)
	for _, t := range tasks {
		check := "[ ]"
		if t.Done {
			check = "[x]"
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\t%s\n",
			shortID(t.ID), check, t.Priority.Label(), t.Title, when(t), countdown(t, now))
	}
	return tw.Flush()
}

func renderSection(w io.Writer, title string, tasks []*task.Task, now time.Time) error {
	fmt.Fprintf(w, "\n%s (%d)\n", title, len(tasks))
	return renderTasks(w, tasks, now)
}

func renderCalendar(w io.Writer, year int, month time.Month, cells []planner.Cell) error {
	fmt.Fprintf(w, "%s %d\n", planner.MonthNames[month-1], year)

	tw := newTable(w)
	fmt.Fprintln(tw, strings.Join(planner.WeekdayNames[:], "\t"))

	for week := 0; week < planner.GridCells/7; week++ {
		row := cells[week*7 : week*7+7]

		days := make([]string, 0, 7)
		for _, c := range row {
			label := fmt.Sprintf("%d", c.Day)
			switch {
			case c.Today:
				label = "*" + label
			case c.OtherMonth:
				label = "·" + label
			}
			days = append(days, label)
		}
		fmt.Fprintln(tw, strings.Join(days, "\t"))

		for line := 0; ; line++ {
			titles := make([]string, 0, 7)
			found := false
			for _, c := range row {
				if line < len(c.Tasks) {
					titles = append(titles, truncate(c.Tasks[line].Title, cellTitleWidth))
					found = true
				} else {
					titles = append(titles, "")
				}
			}
			if !found {
				break
			}
			fmt.Fprintln(tw, strings.Join(titles, "\t"))
		}
	}
	return tw.Flush()
}
