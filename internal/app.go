package internal

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"ads-service/internal/adapters/filestore"
	logger_adapter "ads-service/internal/adapters/logger"
	"ads-service/internal/adapters/nominatim"
	rabbitmq_adapter "ads-service/internal/adapters/rabbitmq"
	"ads-service/internal/adapters/rest"
	"ads-service/internal/configs"
	"ads-service/internal/constants"
	"ads-service/internal/core/port"
	"ads-service/internal/core/usecase"
	"ads-service/internal/filelock"
	fluentlogger "ads-service/pkg/fluentlogger"
	"ads-service/pkg/rabbitmq/rabbitmq_common"
	"ads-service/pkg/rabbitmq/rabbitmq_producer"

	"github.com/fluent/fluent-logger-golang/fluent"
)

type App struct {
	config    *configs.AppConfig
	apiServer *rest.Server

	eventsProducer *rabbitmq_producer.Publisher
	connManager    *rabbitmq_common.ConnectionManager

	fluentClient *fluent.Fluent
	logger       port.LoggerPort
}

func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	// --- 1. ИНИЦИАЛИЗАЦИЯ ЛОГГЕРОВ ---
	var activeLoggers []port.LoggerPort

	slogCfg := logger_adapter.SlogConfig{
		Level:    parseLogLevel(appConfig.StdoutLogger.Level),
		IsJSON:   false, // текстовый формат
		UseColor: true,
	}
	stdoutLogger := logger_adapter.NewSlogAdapter(slogCfg)
	activeLoggers = append(activeLoggers, stdoutLogger)

	// Добавляем Fluent Bit логгер, если он включен в конфигурации
	var fluentClient *fluent.Fluent
	if appConfig.FluentBit.Enabled {
		fluentClient, err = fluentlogger.NewClient(fluentlogger.Config{
			Host:      appConfig.FluentBit.Host,
			Port:      appConfig.FluentBit.Port,
			TagPrefix: appConfig.AppName,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, parseLogLevel(appConfig.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			fluentClient.Close()
			return nil, err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	// Создаем наш композитный логгер
	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	// --- 2. БАЗОВЫЙ ЛОГГЕР ПРИЛОЖЕНИЯ С КОНТЕКСТОМ ---
	baseLogger := multiLogger.WithFields(port.Fields{
		"service_name": appConfig.AppName,
	})

	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	appLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": appConfig.FluentBit.Enabled,
	})

	// --- 3. АДАПТЕРЫ ХРАНИЛИЩА И ГЕОКОДЕРА ---
	pathLock := filelock.New()
	adsRepository, err := filestore.NewFileAdsRepository(appConfig.Storage.FilePath, pathLock)
	if err != nil {
		appLogger.Error("Failed to create file ads repository", err, nil)
		return nil, fmt.Errorf("failed to create file ads repository: %w", err)
	}
	appLogger.Info("File storage initialized", port.Fields{"path": appConfig.Storage.FilePath})

	geocoder := nominatim.NewClient(nominatim.Config{
		BaseURL:        appConfig.Nominatim.BaseURL,
		MinInterval:    time.Duration(appConfig.Nominatim.MinIntervalMs) * time.Millisecond,
		AcceptLanguage: appConfig.Nominatim.AcceptLanguage,
	})

	// --- 4. СОБЫТИЯ ЖИЗНЕННОГО ЦИКЛА (RabbitMQ, опционально) ---
	var adEvents port.AdEventsPort = rabbitmq_adapter.NewNoopAdEventsAdapter()
	var eventsProducer *rabbitmq_producer.Publisher
	var connManager *rabbitmq_common.ConnectionManager
	if appConfig.RabbitMQ.Enabled {
		rabbitLogger := rabbitmq_adapter.NewPortLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq"}))

		connManager, err = rabbitmq_common.GetManager(appConfig.RabbitMQ.URL, rabbitLogger)
		if err != nil {
			appLogger.Error("Failed to connect to RabbitMQ", err, nil)
			return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}

		eventsProducer, err = rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
			Config:                   rabbitmq_common.Config{URL: appConfig.RabbitMQ.URL},
			ExchangeName:             constants.AdsExchange,
			ExchangeType:             constants.AdsExchangeType,
			DurableExchange:          true,
			DeclareExchangeIfMissing: true,
			Logger:                   rabbitLogger,
		}, connManager)
		if err != nil {
			appLogger.Error("Failed to create RabbitMQ producer", err, nil)
			connManager.Close()
			return nil, fmt.Errorf("failed to create RabbitMQ producer: %w", err)
		}

		adEvents, err = rabbitmq_adapter.NewRabbitMQAdEventsAdapter(eventsProducer)
		if err != nil {
			appLogger.Error("Failed to create ad events adapter", err, nil)
			eventsProducer.Close()
			connManager.Close()
			return nil, fmt.Errorf("failed to create ad events adapter: %w", err)
		}
		appLogger.Info("RabbitMQ event publishing enabled", port.Fields{"exchange": constants.AdsExchange})
	}

	// --- 5. USE CASES (ядро бизнес-логики) ---
	listAdsUseCase := usecase.NewListAdsUseCase(adsRepository)
	getAdByIDUseCase := usecase.NewGetAdByIDUseCase(adsRepository)
	createAdUseCase := usecase.NewCreateAdUseCase(adsRepository, adEvents)
	updateAdUseCase := usecase.NewUpdateAdUseCase(adsRepository, adEvents)
	deleteAdUseCase := usecase.NewDeleteAdUseCase(adsRepository, adEvents)
	geocodeAddressUseCase := usecase.NewGeocodeAddressUseCase(geocoder)

	// --- 6. REST API Server ---
	adsHandlers := rest.NewAdsHandler(listAdsUseCase, getAdByIDUseCase, createAdUseCase, updateAdUseCase, deleteAdUseCase)
	geocodingHandlers := rest.NewGeocodingHandler(geocodeAddressUseCase)
	apiServer := rest.NewServer(appConfig.Rest.PORT, adsHandlers, geocodingHandlers, baseLogger)
	appLogger.Info("REST API server configured.", nil)

	application := &App{
		config:    appConfig,
		apiServer: apiServer,

		eventsProducer: eventsProducer,
		connManager:    connManager,

		fluentClient: fluentClient,
		logger:       appLogger,
	}

	return application, nil
}

// Run запускает все компоненты приложения и управляет их жизненным циклом.
func (a *App) Run() error {
	appCtx, cancelApp := context.WithCancel(context.Background())

	defer func() {
		a.logger.Info("Shutdown sequence initiated...", nil)

		if a.apiServer != nil {
			if err := a.apiServer.Stop(context.Background()); err != nil {
				a.logger.Error("Error during API server shutdown", err, nil)
			}
		}

		if a.eventsProducer != nil {
			if err := a.eventsProducer.Close(); err != nil {
				a.logger.Error("Error closing RabbitMQ producer", err, nil)
			}
		}
		if a.connManager != nil {
			if err := a.connManager.Close(); err != nil {
				a.logger.Error("Error closing RabbitMQ connection", err, nil)
			}
		}

		a.logger.Info("Application shut down gracefully.", nil)

		if a.fluentClient != nil {
			if err := a.fluentClient.Close(); err != nil {
				// Логируем в stdout, так как fluent может быть уже недоступен
				fmt.Printf("ERROR: Error closing fluent client: %v\n", err)
			}
		}
	}()

	a.logger.Info("Application is starting...", nil)

	serverErrors := make(chan error, 1)
	go func() {
		a.logger.Info("Starting HTTP server...", port.Fields{"port": a.config.Rest.PORT})
		if err := a.apiServer.Start(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	// Ожидание сигнала на завершение или ошибки от одного из компонентов
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	a.logger.Info("Application running. Waiting for signals or server error...", nil)
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received OS signal, shutting down...", port.Fields{"signal": receivedSignal.String()})
	case <-appCtx.Done():
		a.logger.Warn("Context was cancelled unexpectedly, shutting down...", nil)
	case err := <-serverErrors:
		a.logger.Error("Server failed to start, shutting down", err, nil)
	}

	cancelApp()

	return nil
}

func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
