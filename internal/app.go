package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"real-estate-marketplace/internal/adapters/filestorage"
	logger_adapter "real-estate-marketplace/internal/adapters/logger"
	"real-estate-marketplace/internal/adapters/memory"
	metrics_adapter "real-estate-marketplace/internal/adapters/metrics"
	postgres_adapter "real-estate-marketplace/internal/adapters/postgres"
	rabbitmq_adapter "real-estate-marketplace/internal/adapters/rabbitmq"
	"real-estate-marketplace/internal/adapters/rest"
	"real-estate-marketplace/internal/configs"
	"real-estate-marketplace/internal/constants"
	"real-estate-marketplace/internal/contextkeys"
	"real-estate-marketplace/internal/core/favorites"
	"real-estate-marketplace/internal/core/port"
	"real-estate-marketplace/internal/core/usecase"
	"real-estate-marketplace/internal/mockdata"
	fluentlogger "real-estate-marketplace/pkg/fluent_logger"
	"real-estate-marketplace/pkg/postgres"
	"real-estate-marketplace/pkg/rabbitmq/rabbitmq_common"
	"real-estate-marketplace/pkg/rabbitmq/rabbitmq_consumer"
	"real-estate-marketplace/pkg/rabbitmq/rabbitmq_producer"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	config *configs.AppConfig

	dbPool      *pgxpool.Pool
	connManager *rabbitmq_common.ConnectionManager
	publisher   *rabbitmq_producer.Publisher
	listener    port.EventListenerPort
	registry    *favorites.Registry
	rateLimiter *rest.RateLimiter
	apiServer   *rest.Server

	fluentClient *fluent.Fluent
	logger       port.LoggerPort
}

func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	app := &App{config: appConfig}

	// --- 1. ИНИЦИАЛИЗАЦИЯ ЛОГГЕРОВ ---
	baseLogger, err := app.initLoggers()
	if err != nil {
		return nil, err
	}
	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	app.logger = appLogger

	// При ошибке на любом шаге освобождаем то, что уже успели создать
	ok := false
	defer func() {
		if !ok {
			app.shutdown()
		}
	}()

	// --- 2. МЕТРИКИ ---
	var (
		metrics        port.MetricsPort = port.NoopMetrics{}
		httpMetrics    rest.HTTPMetricsRecorder
		metricsHandler http.Handler
	)
	if appConfig.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		collector := metrics_adapter.NewCollector(reg)
		metrics, httpMetrics = collector, collector
		metricsHandler = metrics_adapter.Handler(reg)
	}

	// --- 3. POSTGRESQL ---
	if appConfig.NeedsDatabase() {
		if appConfig.Database.RunMigrations {
			if err := postgres_adapter.RunMigrations(appConfig.Database.URL, appLogger); err != nil {
				appLogger.Error("Failed to run database migrations", err, nil)
				return nil, err
			}
		}

		app.dbPool, err = postgres.NewClient(context.Background(), postgres.Config{DatabaseURL: appConfig.Database.URL})
		if err != nil {
			appLogger.Error("Failed to connect to PostgreSQL", err, nil)
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		appLogger.Info("Successfully connected to PostgreSQL pool!", nil)
	}

	// --- 4. КАТАЛОГ, ЗАЯВКИ, ХРАНИЛИЩЕ ИЗБРАННОГО ---
	catalog, inquiries, err := app.initCatalog(baseLogger)
	if err != nil {
		return nil, err
	}

	favoritesStorage, err := app.initFavoritesStorage()
	if err != nil {
		appLogger.Error("Failed to create favorites storage", err, nil)
		return nil, err
	}

	notifier, err := app.initNotifier(baseLogger)
	if err != nil {
		appLogger.Error("Failed to set up favorites change notifications", err, nil)
		return nil, err
	}

	app.registry = favorites.NewRegistry(
		appConfig.Favorites.Namespace,
		favorites.StoreConfig{
			PersistRetries: appConfig.Favorites.PersistRetries,
			PersistBackoff: appConfig.Favorites.PersistBackoff,
		},
		favoritesStorage, notifier, baseLogger, metrics,
		favorites.WithIdleEviction(appConfig.Favorites.IdleTTL, 0),
	)
	appLogger.Info("All persistence and messaging adapters initialized.", port.Fields{
		"catalog_source":    appConfig.Catalog.Source,
		"favorites_backend": appConfig.Favorites.Backend,
		"rabbitmq_enabled":  app.connManager != nil,
	})

	// --- 5. USE CASES ---
	listingsHandler := rest.NewListingsHandler(
		usecase.NewFindListingsUseCase(catalog, metrics),
		usecase.NewGetListingDetailsUseCase(catalog),
		usecase.NewGetFilterOptionsUseCase(catalog),
	)
	favoritesHandler := rest.NewFavoritesHandler(
		usecase.NewAddToFavoritesUseCase(app.registry),
		usecase.NewRemoveFromFavoritesUseCase(app.registry),
		usecase.NewToggleFavoriteUseCase(app.registry),
		usecase.NewClearFavoritesUseCase(app.registry),
		usecase.NewGetFavoriteIDsUseCase(app.registry),
		usecase.NewIsFavoriteUseCase(app.registry),
		usecase.NewGetUserFavoritesUseCase(app.registry, catalog),
	)
	moderationHandler := rest.NewModerationHandler(
		usecase.NewModerateListingUseCase(catalog),
		usecase.NewGetPendingListingsUseCase(catalog),
		usecase.NewSubmitInquiryUseCase(catalog, inquiries),
		usecase.NewGetSellerInquiriesUseCase(inquiries),
	)

	// --- 6. REST API ---
	if appConfig.Rest.RateLimitRPS > 0 {
		app.rateLimiter = rest.NewRateLimiter(rest.RateLimiterConfig{
			RPS:   appConfig.Rest.RateLimitRPS,
			Burst: appConfig.Rest.RateLimitBurst,
		})
	}
	router := rest.NewRouter(
		rest.Handlers{Listings: listingsHandler, Favorites: favoritesHandler, Moderation: moderationHandler},
		rest.RouterOptions{
			AllowedOrigins: appConfig.Rest.AllowedOrigins,
			RateLimiter:    app.rateLimiter,
			Metrics:        httpMetrics,
			MetricsHandler: metricsHandler,
		},
		baseLogger,
	)
	app.apiServer = rest.NewServer(appConfig.Rest.PORT, router, baseLogger)
	appLogger.Info("REST API server configured.", nil)

	ok = true
	return app, nil
}

func (a *App) initLoggers() (port.LoggerPort, error) {
	cfg := a.config
	var activeLoggers []port.LoggerPort

	stdoutLogger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
		Level:    logger_adapter.ParseLevel(cfg.StdoutLogger.Level),
		IsJSON:   false,
		UseColor: true,
	})
	activeLoggers = append(activeLoggers, stdoutLogger)

	if cfg.FluentBit.Enabled {
		fluentClient, err := fluentlogger.NewClient(fluentlogger.Config{
			Host:      cfg.FluentBit.Host,
			Port:      cfg.FluentBit.Port,
			TagPrefix: cfg.AppName,
			Async:     true,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, logger_adapter.ParseLevel(cfg.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			fluentClient.Close()
			return nil, err
		}
		a.fluentClient = fluentClient
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	baseLogger := multiLogger.WithFields(port.Fields{"service_name": cfg.AppName})
	baseLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": cfg.FluentBit.Enabled,
	})
	return baseLogger, nil
}

// initCatalog выбирает источник каталога. Пустая таблица listings заполняется сгенерированными объявлениями.
func (a *App) initCatalog(baseLogger port.LoggerPort) (port.ListingCatalogPort, port.InquiryRepositoryPort, error) {
	cfg := a.config
	appLogger := a.logger

	var inquiries port.InquiryRepositoryPort = memory.NewInquiryRepository()
	if a.dbPool != nil {
		pgInquiries, err := postgres_adapter.NewPostgresInquiryRepository(a.dbPool)
		if err != nil {
			return nil, nil, err
		}
		inquiries = pgInquiries
	}

	if cfg.Catalog.Source == configs.CatalogSourceMock {
		listings := mockdata.Generate(cfg.Catalog.MockSeed, cfg.Catalog.MockSize)
		appLogger.Info("Using generated listing catalog", port.Fields{"seed": cfg.Catalog.MockSeed, "size": len(listings)})
		if a.dbPool != nil {
			// заявки ссылаются на listings по внешнему ключу, поэтому без таблицы каталога они в PostgreSQL не лягут
			inquiries = memory.NewInquiryRepository()
		}
		return memory.NewListingCatalog(listings), inquiries, nil
	}

	catalog, err := postgres_adapter.NewPostgresListingCatalog(a.dbPool)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Catalog.MockSize > 0 {
		ctx := contextkeys.ContextWithLogger(context.Background(), baseLogger)
		seeded, err := catalog.SeedIfEmpty(ctx, mockdata.Generate(cfg.Catalog.MockSeed, cfg.Catalog.MockSize))
		if err != nil {
			appLogger.Error("Failed to seed listing catalog", err, nil)
			return nil, nil, err
		}
		if seeded > 0 {
			appLogger.Info("Listing catalog seeded", port.Fields{"rows": seeded})
		}
	}
	return catalog, inquiries, nil
}

func (a *App) initFavoritesStorage() (port.FavoritesStoragePort, error) {
	switch a.config.Favorites.Backend {
	case configs.FavoritesBackendPostgres:
		return postgres_adapter.NewPostgresFavoritesStorage(a.dbPool)
	case configs.FavoritesBackendFile:
		return filestorage.NewFavoritesStorage(a.config.Favorites.FilePath)
	default:
		return memory.NewFavoritesStorage(), nil
	}
}

// initNotifier поднимает fanout-обменник и эксклюзивную очередь этого экземпляра.
// Без RABBITMQ_URL изменения расходятся только внутри процесса.
func (a *App) initNotifier(baseLogger port.LoggerPort) (port.StorageChangeNotifierPort, error) {
	cfg := a.config
	if cfg.RabbitMQ.URL == "" {
		a.logger.Warn("RABBITMQ_URL is not set, favorites sync is limited to this instance", nil)
		return memory.NewChangeBus(), nil
	}

	var err error
	a.connManager, err = rabbitmq_common.NewConnectionManager(
		rabbitmq_common.Config{URL: cfg.RabbitMQ.URL},
		rabbitmq_adapter.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_connection_manager"})),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	a.publisher, err = rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
		ExchangeName:             cfg.RabbitMQ.FavoritesExchange,
		ExchangeType:             constants.FavoritesExchangeType,
		DurableExchange:          true,
		DeclareExchangeIfMissing: true,
		Logger:                   rabbitmq_adapter.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_publisher"})),
	}, a.connManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create RabbitMQ publisher: %w", err)
	}

	notifier, err := rabbitmq_adapter.NewChangeNotifier(a.publisher, baseLogger)
	if err != nil {
		return nil, err
	}

	err = notifier.AttachConsumer(rabbitmq_consumer.ConsumerConfig{
		DeclareQueue:           true,
		ExclusiveQueue:         true,
		AutoDeleteQueue:        true,
		ExchangeNameForBind:    cfg.RabbitMQ.FavoritesExchange,
		DeclareExchangeForBind: true,
		ExchangeTypeForBind:    constants.FavoritesExchangeType,
		DurableExchangeForBind: true,
		PrefetchCount:          32,
	}, a.connManager)
	if err != nil {
		return nil, err
	}
	a.listener = notifier
	return notifier, nil
}

// Run запускает все компоненты приложения и управляет их жизненным циклом.
func (a *App) Run() error {
	appCtx, cancelApp := context.WithCancel(context.Background())
	defer cancelApp()
	defer a.shutdown()

	a.logger.Info("Application is starting...", nil)

	componentErrors := make(chan error, 2)
	go func() {
		if err := a.apiServer.Start(); err != nil {
			componentErrors <- err
		}
	}()

	if a.listener != nil {
		go func() {
			a.logger.Info("Starting favorites change listener...", nil)
			if err := a.listener.Start(appCtx); err != nil {
				componentErrors <- fmt.Errorf("favorites change listener stopped: %w", err)
			}
		}()
	}

	// Ожидание сигнала на завершение или ошибки от одного из компонентов
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	a.logger.Info("Application running. Waiting for signals or component error...", nil)
	var runErr error
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received OS signal, shutting down...", port.Fields{"signal": receivedSignal.String()})
	case err := <-componentErrors:
		a.logger.Error("Component failed, shutting down", err, nil)
		runErr = err
	}

	return runErr
}

// shutdown останавливает компоненты в обратном порядке: сначала вход (HTTP, очередь),
// потом сброс избранного в хранилище, потом соединения.
func (a *App) shutdown() {
	a.logger.Info("Shutdown sequence initiated...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if a.apiServer != nil {
		if err := a.apiServer.Stop(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Error during API server shutdown", err, nil)
		}
	}
	if a.rateLimiter != nil {
		a.rateLimiter.Stop()
	}
	if a.listener != nil {
		if err := a.listener.Close(); err != nil {
			a.logger.Error("Error closing favorites change listener", err, nil)
		}
	}
	if a.registry != nil {
		if err := a.registry.Close(ctx); err != nil {
			a.logger.Error("Error flushing favorites on shutdown", err, nil)
		} else {
			a.logger.Info("Favorites flushed.", nil)
		}
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Error("Error closing RabbitMQ publisher", err, nil)
		}
	}
	if a.connManager != nil {
		if err := a.connManager.Close(); err != nil {
			a.logger.Error("Error closing RabbitMQ connection", err, nil)
		}
	}
	if a.dbPool != nil {
		a.dbPool.Close()
		a.logger.Info("PostgreSQL pool closed.", nil)
	}

	a.logger.Info("Application shut down gracefully.", nil)

	if a.fluentClient != nil {
		if err := a.fluentClient.Close(); err != nil {
			// fluent может быть уже недоступен, поэтому stdout
			fmt.Printf("ERROR: Error closing fluent client: %v\n", err)
		}
	}
}
