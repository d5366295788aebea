package cli

import (
	"fmt"
	"strings"
	"taskPlanner/internal/client"
	"taskPlanner/internal/handlers/dto"
	"taskPlanner/internal/models/task"
	"taskPlanner/internal/planner"
	"time"

	"github.com/spf13/cobra"
)

func newLoginCmd(r *runtime) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Сохранить токен сессии",
		Long: `Без --token выводит адрес входа. После входа в браузере сервер вернёт
session_token, его нужно передать в planner login --token <токен>.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if token == "" {
				if err := SaveProfile(r.opts.ProfilePath, Profile{Server: r.profile.Server, Token: r.profile.Token}); err != nil {
					return err
				}
				fmt.Fprintln(out, "Откройте в браузере:")
				fmt.Fprintln(out, "  "+r.api("").SignInURL())
				fmt.Fprintln(out, "и выполните: planner login --token <session_token>")
				return nil
			}

			session, err := r.api(token).Session(cmd.Context())
			if err != nil {
				return fmt.Errorf("проверка токена: %w", err)
			}

			r.profile.Token = token
			if err := SaveProfile(r.opts.ProfilePath, r.profile); err != nil {
				return err
			}
			fmt.Fprintf(out, "Вход выполнен: %s (сессия до %s)\n",
				session.User.Email, session.Expires.Local().Format("2006-01-02 15:04"))
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "токен сессии из ответа сервера")
	return cmd
}

func newLogoutCmd(r *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Завершить сессию и удалить токен из профиля",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if r.profile.Token == "" {
				return ErrNotLoggedIn
			}
			if err := r.api(r.profile.Token).SignOut(cmd.Context()); err != nil && !client.IsUnauthorized(err) {
				return err
			}

			r.profile.Token = ""
			if err := SaveProfile(r.opts.ProfilePath, r.profile); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Сессия завершена")
			return nil
		},
	}
}

func newTodayCmd(r *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Обзор дня: просроченное, сегодня, ближайшие",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := r.store(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			now := r.now()
			tasks := store.Tasks()
			view := planner.Today(tasks, now)

			renderHeader(out, planner.ComputeStats(tasks, now))
			if len(view.Overdue) > 0 {
				if err := renderSection(out, "Просрочено", view.Overdue, now); err != nil {
					return err
				}
			}
			if err := renderSection(out, "Сегодня", view.Today, now); err != nil {
				return err
			}
			return renderSection(out, "Ближайшие", view.Upcoming, now)
		},
	}
}

func newListCmd(r *runtime) *cobra.Command {
	var priority int
	var search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Все задачи: активные и выполненные",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var only *task.Priority
			if priority != 0 {
				p := task.Priority(priority)
				if err := task.ValidatePriority(p); err != nil {
					return err
				}
				only = &p
			}

			store, err := r.store(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			now := r.now()
			tasks := store.Tasks()
			renderHeader(out, planner.ComputeStats(tasks, now))

			shown := planner.SortForList(planner.FilterList(tasks, only, search), now)
			active, done := planner.SplitDone(shown)
			if err := renderSection(out, "Активные", active, now); err != nil {
				return err
			}
			if len(done) > 0 {
				return renderSection(out, "Выполненные", done, now)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&priority, "priority", "p", 0, "только приоритет 1, 2 или 3")
	cmd.Flags().StringVarP(&search, "search", "s", "", "подстрока названия")
	return cmd
}

func newCalendarCmd(r *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "calendar [YYYY-MM]",
		Short: "Календарь месяца",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := r.now()
			year, month := now.Year(), now.Month()
			if len(args) == 1 {
				parsed, err := time.Parse("2006-01", args[0])
				if err != nil {
					return fmt.Errorf("месяц %q: ожидается формат YYYY-MM", args[0])
				}
				year, month = parsed.Year(), parsed.Month()
			}

			store, err := r.store(cmd)
			if err != nil {
				return err
			}

			tasks := planner.SortForList(store.Tasks(), now)
			return renderCalendar(cmd.OutOrStdout(), year, month, planner.MonthGrid(year, month, tasks, now))
		},
	}
}

func newDayCmd(r *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "day [YYYY-MM-DD]",
		Short: "Задачи на дату",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := r.now()
			date := planner.ISODate(now)
			if len(args) == 1 {
				date = resolveDate(args[0], now)
				if _, err := time.Parse(task.DateLayout, date); err != nil {
					return fmt.Errorf("дата %q: ожидается формат YYYY-MM-DD", args[0])
				}
			}

			store, err := r.store(cmd)
			if err != nil {
				return err
			}
			return renderSection(cmd.OutOrStdout(), date, planner.DayTasks(store.Tasks(), date), now)
		},
	}
}

// resolveDate понимает today и tomorrow, остальное отдаёт серверу как есть
func resolveDate(s string, now time.Time) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "today", "сегодня":
		return planner.ISODate(now)
	case "tomorrow", "завтра":
		return planner.ISODate(now.AddDate(0, 0, 1))
	default:
		return s
	}
}

func newAddCmd(r *runtime) *cobra.Command {
	var description, date, clock string
	var priority int

	cmd := &cobra.Command{
		Use:   "add <название>",
		Short: "Создать задачу",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := r.store(cmd)
			if err != nil {
				return err
			}

			req := dto.CreateTaskRequest{Title: strings.Join(args, " ")}
			if cmd.Flags().Changed("desc") {
				req.Description = &description
			}
			if cmd.Flags().Changed("date") {
				d := resolveDate(date, r.now())
				req.Date = &d
			}
			if cmd.Flags().Changed("time") {
				req.Time = &clock
			}
			if cmd.Flags().Changed("priority") {
				req.Priority = &priority
			}

			created, err := store.Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Создана задача %s: %s\n", shortID(created.ID), created.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "desc", "", "описание")
	cmd.Flags().StringVarP(&date, "date", "d", "", "дата YYYY-MM-DD, today или tomorrow")
	cmd.Flags().StringVarP(&clock, "time", "t", "", "время HH:MM")
	cmd.Flags().IntVarP(&priority, "priority", "p", int(task.DefaultPriority), "приоритет: 1 срочно, 2 средний, 3 низкий")
	return cmd
}

func newEditCmd(r *runtime) *cobra.Command {
	var title, description, date, clock string
	var priority int

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Изменить поля задачи; пустое значение снимает описание, дату или время",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch task.Patch
			flags := cmd.Flags()
			if flags.Changed("title") {
				patch.Title = task.Some(title)
			}
			if flags.Changed("desc") {
				patch.Description = task.Some(&description)
			}
			if flags.Changed("date") {
				d := resolveDate(date, r.now())
				patch.Date = task.Some(&d)
			}
			if flags.Changed("time") {
				patch.Time = task.Some(&clock)
			}
			if flags.Changed("priority") {
				patch.Priority = task.Some(task.Priority(priority))
			}
			if patch.IsEmpty() {
				return fmt.Errorf("укажите хотя бы одно поле: --title, --desc, --date, --time, --priority")
			}

			store, err := r.store(cmd)
			if err != nil {
				return err
			}
			id, err := resolveID(store, args[0])
			if err != nil {
				return err
			}

			updated, err := store.Update(cmd.Context(), id, patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Обновлено: %s\n", updated.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "название")
	cmd.Flags().StringVar(&description, "desc", "", "описание")
	cmd.Flags().StringVarP(&date, "date", "d", "", "дата YYYY-MM-DD, today или tomorrow")
	cmd.Flags().StringVarP(&clock, "time", "t", "", "время HH:MM")
	cmd.Flags().IntVarP(&priority, "priority", "p", 0, "приоритет 1, 2 или 3")
	return cmd
}

func newDoneCmd(r *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Отметить задачу выполненной или вернуть в работу",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := r.store(cmd)
			if err != nil {
				return err
			}
			id, err := resolveID(store, args[0])
			if err != nil {
				return err
			}

			updated, err := store.Toggle(cmd.Context(), id)
			if err != nil {
				return err
			}
			if updated.Done {
				fmt.Fprintf(cmd.OutOrStdout(), "Выполнено: %s\n", updated.Title)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Возвращено в работу: %s\n", updated.Title)
			}
			return nil
		},
	}
}

func newMoveCmd(r *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <YYYY-MM-DD|today|tomorrow|->",
		Short: "Перенести задачу на другую дату; - снимает дату",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := r.store(cmd)
			if err != nil {
				return err
			}
			id, err := resolveID(store, args[0])
			if err != nil {
				return err
			}

			var date *string
			if args[1] != "-" {
				d := resolveDate(args[1], r.now())
				date = &d
			}

			updated, err := store.Move(cmd.Context(), id, date)
			if err != nil {
				return err
			}
			if updated.HasDate() {
				fmt.Fprintf(cmd.OutOrStdout(), "Перенесено на %s: %s\n", *updated.Date, updated.Title)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Дата снята: %s\n", updated.Title)
			}
			return nil
		},
	}
}

func newRemoveCmd(r *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Удалить задачу",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := r.store(cmd)
			if err != nil {
				return err
			}
			id, err := resolveID(store, args[0])
			if err != nil {
				return err
			}

			current, _ := store.Get(id)
			if err := store.Delete(cmd.Context(), id); err != nil {
				return err
			}

			title := id.String()
			if current != nil {
				title = current.Title
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Удалено: %s\n", title)
			return nil
		},
	}
}
