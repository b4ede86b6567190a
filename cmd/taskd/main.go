package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/soochol/taskd/internal/actions"
	"github.com/soochol/taskd/internal/api"
	"github.com/soochol/taskd/internal/condition"
	"github.com/soochol/taskd/internal/config"
	"github.com/soochol/taskd/internal/eventbus"
	"github.com/soochol/taskd/internal/executor"
	"github.com/soochol/taskd/internal/scheduler"
	"github.com/soochol/taskd/internal/taskd"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "serve" {
		serve()
		return
	}
	fmt.Println("taskd v0.1.0")
	fmt.Println("Usage: taskd serve")
}

func serve() {
	_ = godotenv.Load() // .env is optional

	cfg, err := config.LoadDefault()
	if err != nil {
		slog.Error("config error", "err", err)
		os.Exit(1)
	}

	bus := eventbus.New()
	bus.Subscribe(func(e taskd.Event) {
		slog.Info("event", "name", e.Name, "payload", e.Payload)
	})

	registry := actions.NewRegistry()
	registry.Register("log", actions.HandlerFunc(logAction))

	exec := executor.New(executor.Config{
		DefaultTimeout: cfg.Executor.DefaultTimeout.Std(),
		DefaultRetry:   cfg.Executor.DefaultRetry.Policy(),
	}, registry, bus)

	sched := scheduler.New(scheduler.Config{
		MaxConcurrentTasks: cfg.Scheduler.MaxConcurrentTasks,
		HistorySize:        cfg.Scheduler.HistorySize,
		StopGrace:          cfg.Scheduler.StopGrace.Std(),
	}, exec, condition.NewEvaluator(), bus)

	if err := sched.Start(); err != nil {
		slog.Error("scheduler error", "err", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: api.NewServer(sched).Handler(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting taskd server", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		slog.Info("shutting down")
		sched.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}

// logAction is the built-in "log" action type. It writes the configured
// message (after substitution) to the structured log and echoes it back
// as the action result.
func logAction(_ context.Context, config map[string]any, _ map[string]any) (any, error) {
	message, _ := config["message"].(string)
	level, _ := config["level"].(string)
	switch level {
	case "warn":
		slog.Warn(message)
	case "error":
		slog.Error(message)
	default:
		slog.Info(message)
	}
	return map[string]any{"message": message}, nil
}
