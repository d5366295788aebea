package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"taskPlanner/internal/database"
	"taskPlanner/internal/logger"
	"taskPlanner/internal/models/task"
	repo "taskPlanner/internal/repository"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Даты и время отдаются строками, как их ждёт клиент
const taskColumns = `id,
				title,
				description,
				TO_CHAR(date, 'YYYY-MM-DD') AS date,
				TO_CHAR(time, 'HH24:MI') AS time,
				priority,
				done,
				created_at,
				updated_at`

type Storage struct {
	pool      *pgxpool.Pool
	slowQuery time.Duration
}

func New(pool *pgxpool.Pool, slowQuery time.Duration) *Storage {
	return &Storage{pool: pool, slowQuery: slowQuery}
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func scanTask(row pgx.Row, userID uuid.UUID) (*task.Task, error) {
	t := &task.Task{UserID: userID}
	var priority int16
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Date,
		&t.Time,
		&priority,
		&t.Done,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Priority = task.Priority(priority)
	return t, nil
}

// escapeLike экранирует спецсимволы шаблона ILIKE
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (s *Storage) List(ctx context.Context, userID uuid.UUID, filter task.Filter) ([]*task.Task, error) {
	start := time.Now()
	defer database.SlowQuery("list_tasks", start, s.slowQuery)

	conditions := []string{"user_id = $1"}
	args := []any{userID}
	add := func(cond string, v any) {
		args = append(args, v)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter.Priority != nil {
		add("priority = $%d", int16(*filter.Priority))
	}
	if filter.Done != nil {
		add("done = $%d", *filter.Done)
	}
	if filter.Date != nil {
		add("date = $%d::text::date", *filter.Date)
	}
	if filter.Query != "" {
		add(`title ILIKE $%d ESCAPE '\'`, "%"+escapeLike(filter.Query)+"%")
	}

	query := `SELECT ` + taskColumns + `
			FROM tasks
			WHERE ` + strings.Join(conditions, " AND ") + `
			ORDER BY done ASC,
				CASE WHEN date IS NULL THEN 1 ELSE 0 END,
				date ASC,
				priority ASC,
				created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		t, err := scanTask(rows, userID)
		if err != nil {
			logger.Error("Repository: Ошибка сканирования задачи", err)
			return nil, fmt.Errorf("сканирование задачи: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	return tasks, nil
}

func (s *Storage) Create(ctx context.Context, taskToCreate *task.Task) error {
	start := time.Now()
	defer database.SlowQuery("create_task", start, s.slowQuery)

	query := `INSERT INTO tasks
				(id, user_id, title, description, date, time, priority)
				VALUES ($1, $2, $3, $4, $5::text::date, $6::text::time, $7)
				RETURNING ` + taskColumns

	created, err := scanTask(s.pool.QueryRow(ctx, query,
		taskToCreate.ID,
		taskToCreate.UserID,
		taskToCreate.Title,
		taskToCreate.Description,
		taskToCreate.Date,
		taskToCreate.Time,
		int16(taskToCreate.Priority),
	), taskToCreate.UserID)
	if err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление задачи: %w", err)
	}

	*taskToCreate = *created
	return nil
}

// Update применяет частичное обновление. Условие id + user_id - единственная
// защита от изменения чужих задач; чужая задача неотличима от отсутствующей.
func (s *Storage) Update(ctx context.Context, userID, id uuid.UUID, patch task.Patch) (*task.Task, error) {
	if patch.IsEmpty() {
		return nil, repo.ErrEmptyUpdate
	}

	start := time.Now()
	defer database.SlowQuery("update_task", start, s.slowQuery)

	var sets []string
	var args []any
	set := func(expr string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf(expr, len(args)))
	}

	if patch.Title.Set {
		set("title = $%d", patch.Title.Value)
	}
	if patch.Description.Set {
		set("description = $%d", patch.Description.Value)
	}
	if patch.Date.Set {
		set("date = $%d::text::date", patch.Date.Value)
	}
	if patch.Time.Set {
		set("time = $%d::text::time", patch.Time.Value)
	}
	if patch.Priority.Set {
		set("priority = $%d", int16(patch.Priority.Value))
	}
	if patch.Done.Set {
		set("done = $%d", patch.Done.Value)
	}

	args = append(args, id, userID)
	query := fmt.Sprintf(`UPDATE tasks
			SET %s
			WHERE id = $%d AND user_id = $%d
			RETURNING %s`, strings.Join(sets, ", "), len(args)-1, len(args), taskColumns)

	updated, err := scanTask(s.pool.QueryRow(ctx, query, args...), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Info("Repository: Задача для обновления не найдена",
				zap.String("task_id", id.String()),
				zap.String("user_id", userID.String()))
			return nil, fmt.Errorf("задача %s: %w", id, repo.ErrNotFound)
		}
		logger.Error("Repository: Не удалось обновить задачу", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("обновление задачи: %w", err)
	}

	return updated, nil
}

func (s *Storage) Delete(ctx context.Context, userID, id uuid.UUID) error {
	start := time.Now()
	defer database.SlowQuery("delete_task", start, s.slowQuery)

	query := `DELETE FROM tasks
				WHERE id = $1 AND user_id = $2`

	tag, err := s.pool.Exec(ctx, query, id, userID)
	if err != nil {
		logger.Error("Repository: Удаление задачи", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("удаление задачи: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("задача %s: %w", id, repo.ErrNotFound)
	}
	return nil
}
