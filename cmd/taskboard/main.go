package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskboard/internal/config"
	"taskboard/internal/metrics"
	"taskboard/internal/notify"
	"taskboard/internal/server"
	"taskboard/internal/session"
	"taskboard/internal/storage/sqlite"
	"taskboard/internal/tasks"
	"taskboard/internal/util"
)

func main() {
	configFlag := flag.String("config", util.EnvOrDefault("TASKBOARD_CONFIG", "config.yaml"), "Path to YAML config file")
	addrFlag := flag.String("addr", "", "HTTP listen address (overrides config)")
	dbFlag := flag.String("db", "", "Path to sqlite session database (overrides config)")
	staticFlag := flag.String("static", "", "Directory with built frontend (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		slog.Error("unable to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	util.Override(&cfg.Addr, *addrFlag)
	util.Override(&cfg.DBPath, *dbFlag)
	util.Override(&cfg.StaticDir, *staticFlag)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()}))
	logger.Info("taskboard starting", slog.Int("page_size", cfg.PageSize), slog.Duration("latency", cfg.Latency))

	kv, err := sqlite.Open(cfg.DBPath, logger)
	if err != nil {
		logger.Error("unable to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer kv.Close()

	sessions := session.NewManager(kv, logger)
	if err := sessions.Restore(context.Background()); err != nil {
		logger.Error("unable to restore session", slog.String("error", err.Error()))
		os.Exit(1)
	}

	recorder := notify.NewRecorder(50)
	collector := metrics.New("taskboard", true)

	opts := []tasks.Option{
		tasks.WithNotifier(notify.Multi{notify.NewLogNotifier(logger), recorder}),
		tasks.WithObserver(collector),
		tasks.WithLogger(logger),
		tasks.WithLatency(cfg.Latency),
	}
	if !cfg.SkipDemo {
		opts = append(opts, tasks.WithSeed(tasks.DemoTasks(time.Now())))
	}
	store := tasks.NewStore(sessions, opts...)

	board, err := tasks.NewBoard(store, cfg.PageSize)
	if err != nil {
		logger.Error("unable to create board", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv := server.New(server.Deps{
		Tasks:         store,
		Board:         board,
		Sessions:      sessions,
		Notifications: recorder,
		Metrics:       collector,
		ShareBaseURL:  cfg.ShareBaseURL,
		PageSize:      cfg.PageSize,
	}, logger, cfg.StaticDir)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Engine(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("starting server", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("failed to shutdown server", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}
