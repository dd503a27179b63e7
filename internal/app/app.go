package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/config"
	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/delivery/httpd"
	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/middleware"
	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/repository"
	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/service"
	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/service/integration"
	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/worker"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// Core - все, что нужно для одной сессии проверки, без HTTP.
// Используется командами check, runs и serve.
type Core struct {
	Checker service.CheckerService
	Store   repository.ResultStore

	publisher integration.EventPublisher
	pool      *worker.WorkerPool
	logger    zerolog.Logger
}

func NewCore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Core, error) {
	// Создаем хранилище результатов
	store, err := repository.NewResultStore(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create result store: %w", err)
	}

	publisher := integration.NewNoopPublisher()
	if cfg.RabbitMQ.Enabled {
		rmq, err := integration.NewRabbitMQClient(
			cfg.RabbitMQ.URL,
			cfg.RabbitMQ.Exchange,
			cfg.RabbitMQ.CompletedKey,
			cfg.RabbitMQ.FailedKey,
			cfg.RabbitMQ.QueueName,
			log,
		)
		if err != nil {
			log.Error().Err(err).Msg("Failed to create RabbitMQ client")
			// Продолжаем без событий, результаты все равно видны
		} else {
			publisher = rmq
		}
	}

	pool := worker.NewWorkerPool(cfg.Worker.MaxWorkers, log)
	if err := pool.Start(context.Background()); err != nil {
		store.Close()
		publisher.Close()
		return nil, fmt.Errorf("failed to start worker pool: %w", err)
	}

	// Создаем интеграционные клиенты
	analysisClient := integration.NewAnalysisClient(
		cfg.Analysis.URL,
		cfg.Analysis.UploadEndpoint,
		cfg.Analysis.Timeout,
		log,
	)
	progressStream := integration.NewProgressStream(
		cfg.Analysis.URL,
		cfg.Analysis.ProgressEndpoint,
		cfg.Analysis.ConnectTimeout,
		log,
	)

	checker := service.NewCheckerService(
		analysisClient,
		progressStream,
		store,
		publisher,
		pool,
		cfg.Store.Namespace,
		cfg.Session.IdleTimeout,
		log,
	)

	return &Core{
		Checker:   checker,
		Store:     store,
		publisher: publisher,
		pool:      pool,
		logger:    log,
	}, nil
}

// Close закрывает поток, дожидается фоновых записей и освобождает ресурсы.
func (c *Core) Close() {
	c.Checker.Cancel()

	if err := c.pool.Stop(); err != nil {
		c.logger.Error().Err(err).Msg("Failed to stop worker pool")
	}
	if err := c.publisher.Close(); err != nil {
		c.logger.Error().Err(err).Msg("Failed to close event publisher")
	}
	if err := c.Store.Close(); err != nil {
		c.logger.Error().Err(err).Msg("Failed to close result store")
	}
}

type App struct {
	server *http.Server
	core   *Core
	logger zerolog.Logger
	config *config.Config
}

func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	core, err := NewCore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	// Ошибки сессии в режиме сервера только логируются, клиент видит их в снимке
	core.Checker.AddListener(logListener{logger: log})

	handler := httpd.NewHandler(core.Checker, log)

	// Создаем роутер
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.RequestLogger(log))
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Timeout(60 * time.Second))

	// Настраиваем CORS
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	handler.RegisterRoutes(router)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		server: server,
		core:   core,
		logger: log,
		config: cfg,
	}, nil
}

// Handler нужен тестам, чтобы не поднимать сокет.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

func (a *App) Run() error {
	a.logger.Info().
		Str("store", a.core.Store.Driver()).
		Msgf("Starting checker API on %s", a.config.Server.Address)
	return a.server.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info().Msg("Shutting down checker API...")

	// Сначала перестаем принимать запросы, затем дописываем результаты
	err := a.server.Shutdown(ctx)
	a.core.Close()
	return err
}
