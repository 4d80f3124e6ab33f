package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"finscreen/internal/adapter/fetcher"
	"finscreen/internal/adapter/parser"
	"finscreen/internal/config"
	"finscreen/internal/logger"
	server "finscreen/internal/transport/http"
	"finscreen/internal/usecase"
	"finscreen/internal/worker"
	"finscreen/storage"
)

// startupTimeout ограничивает подключение к хранилищу, миграции и заполнение источников.
const startupTimeout = 30 * time.Second

// App представляет сервис лент finscreen.
// Координирует работу HTTP-сервера, хранилища источников, воркера проверки
// хранилища и системы логирования. Обеспечивает fail-fast старт и graceful shutdown.
type App struct {
	config   *config.Config
	logger   *slog.Logger
	server   *http.Server
	worker   *worker.Worker
	store    storage.Store
	logFiles io.Closer
	stopChan chan os.Signal
	wg       sync.WaitGroup
}

// New создает и инициализирует приложение: логгер, подключение к хранилищу,
// миграции, начальное заполнение источников и все зависимости HTTP API.
// Недоступное при старте хранилище - ошибка: процесс не начинает обслуживать запросы.
func New(cfg *config.Config) (*App, error) {
	appLogger, logFiles, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}
	slog.SetDefault(appLogger)

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()
	store, err := storage.Open(ctx, cfg.Database, appLogger)
	if err != nil {
		logFiles.Close()
		return nil, fmt.Errorf("failed to open source store: %w", err)
	}
	appLogger.Info("Source store connected",
		slog.String("component", "database"),
		slog.String("driver", cfg.Database.Driver),
		slog.String("namespace", cfg.Database.Namespace),
	)
	if len(cfg.App.Sources) > 0 {
		inserted, err := store.SeedSources(ctx, storage.SourcesFromSeeds(cfg.App.Sources))
		if err != nil {
			store.Close()
			logFiles.Close()
			return nil, fmt.Errorf("failed to seed sources: %w", err)
		}
		appLogger.Info("Sources seeded",
			slog.String("component", "database"),
			slog.Int("configured", len(cfg.App.Sources)),
			slog.Int("inserted", inserted),
		)
	}

	httpFetcher := fetcher.NewHTTPFetcher(fetcher.Options{
		Timeout:   config.Duration(cfg.App.FetchTimeout),
		MaxBytes:  cfg.App.MaxFeedBytes,
		UserAgent: cfg.App.UserAgent,
	}, appLogger)

	xmlParser := parser.NewXMLParser(appLogger)

	sources := usecase.NewSourcesUseCase(store, appLogger)

	articles := usecase.NewArticlesUseCase(store, httpFetcher, xmlParser, usecase.ArticlesOptions{
		FanOutLimit:       cfg.App.FanOutLimit,
		SurfaceFeedErrors: cfg.App.SurfaceFeedErrors,
	}, appLogger)

	gate := &worker.Gate{}

	handler := server.NewHandler(appLogger, sources, articles, gate)

	router := server.NewServer(appLogger, handler)

	healthWorker := worker.New(store, gate, config.Duration(cfg.App.HealthCheckInterval), appLogger)

	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  config.Duration(cfg.Server.ReadTimeout),
		WriteTimeout: config.Duration(cfg.Server.WriteTimeout),
	}
	return &App{
		config:   cfg,
		logger:   appLogger,
		server:   httpServer,
		worker:   healthWorker,
		store:    store,
		logFiles: logFiles,
		stopChan: make(chan os.Signal, 1),
	}, nil
}

// Run запускает воркер проверки хранилища и HTTP-сервер и блокируется
// до сигнала завершения или падения сервера. Возвращает ошибку, если
// не удалось открыть порт или сервер завершился аварийно.
func (a *App) Run() error {
	a.logger.Info("Starting finscreen",
		slog.String("component", "app"),
		slog.Int("seed_sources", len(a.config.App.Sources)),
		slog.String("health_check_interval", a.worker.Interval().String()),
	)
	listener, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		a.Shutdown()
		return fmt.Errorf("failed to create listener: %w", err)
	}
	a.worker.Start()
	a.logger.Info("HTTP server ready",
		slog.String("component", "server"),
		slog.String("address", listener.Addr().String()),
	)
	serveErr := make(chan error, 1)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("HTTP server failed", slog.String("component", "server"), slog.Any("error", err))
			serveErr <- err
		}
	}()
	signal.Notify(a.stopChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(a.stopChan)
	var runErr error
	select {
	case sig := <-a.stopChan:
		a.logger.Info("Shutdown signal received",
			slog.String("component", "app"),
			slog.String("signal", sig.String()),
		)
	case runErr = <-serveErr:
	}
	if err := a.Shutdown(); err != nil {
		return err
	}
	return runErr
}

// Shutdown выполняет graceful shutdown приложения: останавливает воркер,
// дожидается завершения активных запросов в пределах server.shutdown_timeout
// и закрывает хранилище и файлы логов.
func (a *App) Shutdown() error {
	a.logger.Info("Starting graceful shutdown", slog.String("component", "app"))
	if a.worker != nil {
		a.worker.Stop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Duration(a.config.Server.ShutdownTimeout))
	defer cancel()
	var shutdownErr error
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP server shutdown failed", slog.String("component", "server"), slog.Any("error", err))
		shutdownErr = fmt.Errorf("http server shutdown: %w", err)
	}
	a.wg.Wait()
	if a.store != nil {
		a.store.Close()
	}
	a.logger.Info("Application stopped gracefully", slog.String("component", "app"))
	if a.logFiles != nil {
		if err := a.logFiles.Close(); err != nil {
			shutdownErr = errors.Join(shutdownErr, fmt.Errorf("close log files: %w", err))
		}
		a.logFiles = nil
	}
	return shutdownErr
}
