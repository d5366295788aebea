package worker

import (
	"context"
	"fmt"
	"taskPlanner/internal/logger"
	"taskPlanner/internal/telemetry"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const DefaultSchedule = "@every 1h"

// таймаут одного прохода очистки
const runTimeout = time.Minute

type Purger interface {
	PurgeExpired(ctx context.Context) (sessions, tokens int64, err error)
}

// HousekeepingWorker по расписанию cron удаляет просроченные сессии
// и токены подтверждения.
type HousekeepingWorker struct {
	purger   Purger
	schedule string
	metrics  *telemetry.JobMetrics
	cron     *cron.Cron
}

func NewHousekeepingWorker(purger Purger, schedule string, metrics *telemetry.JobMetrics) *HousekeepingWorker {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	return &HousekeepingWorker{
		purger:   purger,
		schedule: schedule,
		metrics:  metrics,
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}
}

// Start регистрирует задачу и блокируется до отмены ctx
func (w *HousekeepingWorker) Start(ctx context.Context) error {
	if _, err := w.cron.AddFunc(w.schedule, func() { w.Check(ctx) }); err != nil {
		return fmt.Errorf("расписание %q: %w", w.schedule, err)
	}

	logger.Info("Worker: Очистка просроченных сессий запущена", zap.String("schedule", w.schedule))
	w.cron.Start()

	<-ctx.Done()
	logger.Info("Worker: Очистка останавливается")
	<-w.cron.Stop().Done()
	return nil
}

// Check выполняет один проход очистки
func (w *HousekeepingWorker) Check(ctx context.Context) {
	start := time.Now()

	runCtx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	sessions, tokens, err := w.purger.PurgeExpired(runCtx)
	if w.metrics != nil {
		w.metrics.Run(err)
		w.metrics.Removed("sessions", sessions)
		w.metrics.Removed("verification_tokens", tokens)
	}
	if err != nil {
		logger.Warn("Worker: Ошибка очистки", zap.Error(err), zap.Duration("ms", time.Since(start)))
		return
	}

	logger.Info("Worker: Завершение очистки",
		zap.Duration("ms", time.Since(start)),
		zap.Int64("sessions", sessions),
		zap.Int64("verification_tokens", tokens))
}
