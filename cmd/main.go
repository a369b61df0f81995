package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/senyabanana/marketplace-service/internal/auth"
	"github.com/senyabanana/marketplace-service/internal/blob"
	"github.com/senyabanana/marketplace-service/internal/db"
	"github.com/senyabanana/marketplace-service/internal/handlers"
	"github.com/senyabanana/marketplace-service/internal/metrics"
	"github.com/senyabanana/marketplace-service/internal/repository"
	"github.com/senyabanana/marketplace-service/internal/router"
	"github.com/senyabanana/marketplace-service/internal/router/config"
	"github.com/senyabanana/marketplace-service/internal/services"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.WithError(err).Fatal("cannot load config")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	} else {
		logger.WithField("level", cfg.LogLevel).Warn("unknown log level, using info")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runDBMigration(logger, cfg.MigrationURL, cfg.PostgresConn)

	dbPool, err := db.InitDb(ctx, cfg)
	if err != nil {
		logger.WithError(err).Fatal("error initializing database")
	}
	defer dbPool.Close()

	s3Client, err := blob.NewSpacesClient(ctx, blob.SpacesConfig{
		Region:    cfg.SpacesRegion,
		Endpoint:  cfg.SpacesEndpoint,
		AccessKey: cfg.SpacesAccessKey,
		SecretKey: cfg.SpacesSecretKey,
		Bucket:    cfg.SpacesBucket,
	})
	if err != nil {
		logger.WithError(err).Fatal("error initializing image storage")
	}
	images := blob.NewSpacesStore(s3Client, cfg.SpacesBucket, cfg.SpacesEndpoint)

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		logger.WithError(err).Fatal("error initializing token manager")
	}

	store := repository.NewPostgresStore(dbPool)
	appMetrics := metrics.New()

	requestService := services.NewRequestService(store, images, logger)
	offerService := services.NewOfferService(store, appMetrics)
	orderService := services.NewOrderService(store, appMetrics)
	productService := services.NewProductService(store, images, logger)
	userService := services.NewUserService(store, images, logger)
	supplierService := services.NewSupplierService(store, images, logger)
	authService := services.NewAuthService(store, auth.NewBcryptHasher(), tokens, logger)
	adminService := services.NewAdminService(store)

	routes := router.InitRoutes(router.Handlers{
		Requests: handlers.NewRequestHandler(requestService, logger, cfg.RequestTimeout),
		Offers:   handlers.NewOfferHandler(offerService, logger, cfg.RequestTimeout),
		Orders:   handlers.NewOrderHandler(orderService, logger, cfg.RequestTimeout),
		Products: handlers.NewProductHandler(productService, logger, cfg.RequestTimeout),
		Users:    handlers.NewUserHandler(userService, supplierService, logger, cfg.RequestTimeout),
		Auth:     handlers.NewAuthHandler(authService, logger, cfg.RequestTimeout),
		Admin:    handlers.NewAdminHandler(adminService, logger, cfg.RequestTimeout),
		AuthMW:   handlers.NewAuthMiddleware(tokens, store.Users()),
		Metrics:  appMetrics,
	})

	server := &http.Server{
		Addr:    cfg.ServerAddress,
		Handler: routes,
	}

	go func() {
		logger.Infof("server is listening on %s...", cfg.ServerAddress)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
}

func runDBMigration(logger logrus.FieldLogger, migrationURL string, dbSource string) {
	migration, err := migrate.New(migrationURL, dbSource)
	if err != nil {
		logger.WithError(err).Fatal("cannot create a new migrate instance")
	}

	if err = migration.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.WithError(err).Fatal("failed to run migrate up")
	}
	logger.Info("db migrated successfully")
}
