package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/heighterses/cenaris/pkg/auth"
	"github.com/heighterses/cenaris/pkg/config"
	"github.com/heighterses/cenaris/pkg/database"
	"github.com/heighterses/cenaris/pkg/handlers"
	"github.com/heighterses/cenaris/pkg/middleware"
	"github.com/heighterses/cenaris/pkg/repositories"
	"github.com/heighterses/cenaris/pkg/services"
	"github.com/heighterses/cenaris/pkg/storage"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("base_url", cfg.BaseURL),
		zap.Bool("auth_verification", cfg.Auth.EnableVerification),
		zap.String("upload_container", cfg.Storage.Container),
		zap.String("results_container", cfg.Results.Container))

	ctx := context.Background()

	db, err := database.NewConnection(ctx, &cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	migrationDB, err := sql.Open("pgx", cfg.Database.URL())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(migrationDB, cfg.Database.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	_ = migrationDB.Close()

	uploadStore, resultsStore := buildStores(cfg, logger)
	paths := storage.NewPathBuilder(cfg.Results)

	jwksClient, err := auth.NewJWKSClient(&auth.JWKSConfig{
		EnableVerification: cfg.Auth.EnableVerification,
		JWKSEndpoints:      cfg.Auth.JWKSEndpoints,
	})
	if err != nil {
		logger.Fatal("Failed to create JWKS client", zap.Error(err))
	}
	defer jwksClient.Close()

	authService := auth.NewAuthService(jwksClient, logger)
	authMiddleware := auth.NewMiddleware(authService, logger)

	sessionSecret := cfg.SessionSecret
	if sessionSecret == "" {
		// Validate() guarantees this only happens in the local env.
		sessionSecret = "local-dev-session-secret"
	}
	auth.InitSessionStore(sessionSecret, !cfg.IsLocal())

	orgMiddleware := handlers.OrgMiddleware(database.WithOrgContext(db, logger))

	validator := services.NewFileValidationService(cfg.Storage.MaxUploadBytes)
	documentService := services.NewDocumentService(uploadStore, repositories.NewDocumentRepository(), validator, logger)
	complianceService := services.NewComplianceService(resultsStore, paths, logger)
	reportService := services.NewReportService(logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewAuthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewComplianceHandler(complianceService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewReportHandler(complianceService, reportService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewDocumentsHandler(documentService, cfg.Storage.MaxUploadBytes, logger).RegisterRoutes(mux, authMiddleware, orgMiddleware)

	handler := middleware.RequestLogger(logger)(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting cenaris",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

// buildLogger returns a development logger locally and a production logger
// everywhere else.
func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsLocal() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// buildStores returns the evidence upload store and the ML results store.
// Locally, with no connection string configured, both fall back to an
// empty in-memory store so the app starts and renders its no-data states.
func buildStores(cfg *config.Config, logger *zap.Logger) (storage.BlobStore, storage.BlobStore) {
	if cfg.Storage.ConnectionString == "" {
		logger.Warn("No storage connection string configured; using in-memory store")
		mem := storage.NewMemoryStore()
		return mem, mem
	}

	uploadStore, err := storage.NewAzureStore(cfg.Storage.ConnectionString, cfg.Storage.Container, logger)
	if err != nil {
		logger.Fatal("Failed to create upload store", zap.Error(err))
	}
	resultsStore, err := storage.NewAzureStore(cfg.Storage.ConnectionString, cfg.Results.Container, logger)
	if err != nil {
		logger.Fatal("Failed to create results store", zap.Error(err))
	}
	return uploadStore, resultsStore
}
