// main.go — точка входа Catalog Module.
// Порядок инициализации: config → logger → миграции БД → пул соединений →
// repository → cache → catalog service → JWT auth → HTTP-сервер.
package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/bigkaa/imagecatalog/catalog-module/internal/api/handlers"
	"github.com/bigkaa/imagecatalog/catalog-module/internal/api/middleware"
	"github.com/bigkaa/imagecatalog/catalog-module/internal/config"
	"github.com/bigkaa/imagecatalog/catalog-module/internal/database"
	"github.com/bigkaa/imagecatalog/catalog-module/internal/repository"
	"github.com/bigkaa/imagecatalog/catalog-module/internal/server"
	"github.com/bigkaa/imagecatalog/catalog-module/internal/service"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	// 2. Настройка логгера
	logger := config.SetupLogger(cfg)
	logger.Info("Catalog Module запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
	)

	// 3. Миграции схемы БД
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграции БД", slog.String("error", err.Error()))
		log.Fatalf("Миграция БД завершилась с ошибкой: %v", err)
	}

	// 4. Пул соединений PostgreSQL
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к БД", slog.String("error", err.Error()))
		log.Fatalf("Подключение к БД завершилось с ошибкой: %v", err)
	}
	defer pool.Close()

	// 5. Repository и cache
	imageRepo := repository.NewImageRepository(pool)
	cache := service.NewCacheService(cfg.CacheSize, cfg.CacheTTL)

	// 6. Сервис каталога с политикой владения из конфигурации
	catalog := service.NewCatalogService(imageRepo, cache, service.OwnershipPolicy{
		EnforceDelete: cfg.OwnershipDelete,
		EnforceUpdate: cfg.OwnershipUpdate,
	}, logger)

	// 7. JWT auth middleware (JWKS Keycloak)
	jwtAuth, err := middleware.NewJWTAuth(
		cfg.JWKSURL,
		cfg.JWKSCACert,
		cfg.JWTIssuer,
		cfg.LoginURL,
		cfg.JWKSClientTimeout,
		cfg.JWKSRefreshInterval,
		cfg.JWTLeeway,
		logger,
	)
	if err != nil {
		logger.Error("Ошибка инициализации JWT auth", slog.String("error", err.Error()))
		log.Fatalf("JWT auth завершился с ошибкой: %v", err)
	}
	defer jwtAuth.Close()

	// 8. Health handler: PostgreSQL + Keycloak readiness
	pgChecker := database.NewReadinessChecker(pool)
	keycloakChecker, err := middleware.NewKeycloakReadinessChecker(cfg.JWKSURL, cfg.JWKSCACert, cfg.JWKSClientTimeout)
	if err != nil {
		logger.Error("Ошибка инициализации Keycloak checker", slog.String("error", err.Error()))
		log.Fatalf("Keycloak checker завершился с ошибкой: %v", err)
	}
	healthHandler := handlers.NewHealthHandler(pgChecker, keycloakChecker)

	// 9. API handler
	apiHandler := handlers.NewAPIHandler(catalog, healthHandler, logger)

	// 10. HTTP-сервер: metrics → logging → JWT (health и metrics без auth)
	srv := server.New(cfg, logger, apiHandler,
		middleware.MetricsMiddleware(),
		middleware.RequestLogger(logger),
		jwtAuth.MiddlewareWithExclusions("/health", "/metrics"),
	)

	// 11. Запуск сервера (блокирующий вызов с graceful shutdown)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		log.Fatalf("Сервер завершился с ошибкой: %v", err)
	}

	logger.Info("Catalog Module остановлен")
}
