package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"taskPlanner/internal/cache"
	"taskPlanner/internal/config"
	"taskPlanner/internal/database"
	"taskPlanner/internal/handlers"
	"taskPlanner/internal/logger"
	"taskPlanner/internal/migrations"
	"taskPlanner/internal/oauth"
	authInmemory "taskPlanner/internal/repository/auth/inmemory"
	authPostgres "taskPlanner/internal/repository/auth/postgres"
	taskInmemory "taskPlanner/internal/repository/task/inmemory"
	taskPostgres "taskPlanner/internal/repository/task/postgres"
	"taskPlanner/internal/service"
	"taskPlanner/internal/telemetry"
	"taskPlanner/internal/worker"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type App struct {
	config    *config.Config
	server    *http.Server
	metrics   *telemetry.MetricsServer
	worker    *worker.HousekeepingWorker
	shutdowns []func(context.Context) // функции для graceful shutdown, в обратном порядке
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(context.Context), 0),
	}
}

func (a *App) onShutdown(fn func(context.Context)) {
	a.shutdowns = append(a.shutdowns, fn)
}

// Init собирает зависимости: хранилища, кэш, провайдера входа, сервисы и роутер
func (a *App) Init(ctx context.Context) (*App, error) {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return nil, fmt.Errorf("инициализация логгера: %w", err)
	}
	a.onShutdown(func(context.Context) {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	taskRepo, authRepo, err := a.initRepositories(ctx)
	if err != nil {
		return nil, err
	}

	sessionCache, err := a.initCache(ctx)
	if err != nil {
		return nil, err
	}

	provider := oauth.NewGoogle(
		a.config.Auth.GoogleClientID,
		a.config.Auth.GoogleClientSecret,
		a.config.GoogleRedirectURL(),
	)
	if a.config.Auth.GoogleClientID == "" {
		logger.Warn("App: GOOGLE_CLIENT_ID не задан, вход через Google работать не будет")
	}

	taskService := service.NewTaskService(taskRepo)
	authService := service.NewAuthService(authRepo, sessionCache, provider, service.SessionPolicy{
		MaxAge:    a.config.Auth.SessionMaxAge,
		UpdateAge: a.config.Auth.SessionUpdateAge,
	})

	registry := telemetry.NewRegistry()
	var httpMetrics *telemetry.HTTPMetrics
	var jobMetrics *telemetry.JobMetrics
	if a.config.Metrics.Enabled {
		httpMetrics = telemetry.NewHTTPMetrics(registry)
		jobMetrics = telemetry.NewJobMetrics(registry)
		a.metrics = telemetry.NewMetricsServer(a.config.Metrics.Addr, registry)
	}

	var handler http.Handler = NewRouter(RouterDeps{
		Tasks: taskService,
		Auth:  authService,
		Cookie: handlers.CookieConfig{
			Name:   a.config.Auth.CookieName,
			Secure: a.config.Auth.SecureCookie,
		},
		AllowedOrigins: a.config.Server.AllowedOrigins,
		RateLimit:      a.config.RateLimit,
		Metrics:        httpMetrics,
	})

	if a.config.Tracing.Enabled {
		tp, err := telemetry.NewTracerProvider(ctx, a.config.Tracing.ServiceName, os.Stdout)
		if err != nil {
			return nil, fmt.Errorf("инициализация трассировки: %w", err)
		}
		a.onShutdown(func(ctx context.Context) {
			if err := tp.Shutdown(ctx); err != nil {
				logger.Warn("App: Ошибка остановки трассировки", zap.Error(err))
			}
		})
		handler = telemetry.Trace(handler, a.config.Tracing.ServiceName)
	}

	if a.config.Housekeeping.Enabled {
		a.worker = worker.NewHousekeepingWorker(authService, a.config.Housekeeping.Schedule, jobMetrics)
	}

	a.server = &http.Server{
		Addr:         a.config.GetServerAddr(),
		Handler:      handler,
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
		IdleTimeout:  a.config.Server.IdleTimeout,
	}

	return a, nil
}

func (a *App) initRepositories(ctx context.Context) (service.TaskRepository, service.AuthRepository, error) {
	if a.config.Repository.Type == config.RepositoryInMemory {
		logger.Warn("App: Используется хранилище в памяти, данные не сохраняются")
		return taskInmemory.NewTaskStorage(), authInmemory.NewAuthStorage(), nil
	}

	if a.config.Database.AutoMigrate {
		if err := migrations.Up(a.config.Database.URL); err != nil {
			return nil, nil, fmt.Errorf("миграции: %w", err)
		}
	}

	pool, err := database.NewPool(ctx, a.config.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("подключение к базе: %w", err)
	}
	a.onShutdown(func(context.Context) {
		logger.Info("Закрытие пула соединений...")
		pool.Close()
	})

	slow := a.config.Database.SlowQuery
	return taskPostgres.New(pool, slow), authPostgres.New(pool, slow), nil
}

func (a *App) initCache(ctx context.Context) (service.SessionCache, error) {
	if !a.config.Cache.Enabled {
		return cache.Noop{}, nil
	}

	client, err := cache.NewClient(ctx, a.config.Cache)
	if err != nil {
		return nil, fmt.Errorf("подключение к redis: %w", err)
	}
	a.onShutdown(func(context.Context) {
		if err := client.Close(); err != nil {
			logger.Warn("App: Ошибка закрытия redis", zap.Error(err))
		}
	})
	return cache.NewSessionCache(client, a.config.Cache.TTL), nil
}

// Run обслуживает запросы до отмены ctx, затем плавно останавливается
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Server started", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP сервер: %w", err)
		}
		return nil
	})

	if a.metrics != nil {
		g.Go(a.metrics.Start)
	}

	if a.worker != nil {
		g.Go(func() error {
			return a.worker.Start(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return a.shutdown()
	})

	return g.Wait()
}

func (a *App) shutdown() error {
	logger.Info("Получен сигнал остановки, завершение работы...")

	ctx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("остановка HTTP сервера: %w", err))
	}
	if a.metrics != nil {
		if err := a.metrics.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("остановка сервера метрик: %w", err))
		}
	}

	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i](ctx)
	}
	return errors.Join(errs...)
}
