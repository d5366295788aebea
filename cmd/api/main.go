package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"taskPlanner/internal/app"
	"taskPlanner/internal/config"
	"taskPlanner/internal/logger"
)

func main() {
	configPath := os.Getenv("PLANNER_CONFIG")
	if configPath == "" {
		configPath = "config.yml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "конфигурация: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg).Init(ctx)
	if err != nil {
		logger.Error("App: Ошибка инициализации", err)
		logger.Sync()
		os.Exit(1)
	}

	if err := a.Run(ctx); err != nil {
		logger.Error("App: Сервер остановлен с ошибкой", err)
		logger.Sync()
		os.Exit(1)
	}
}
