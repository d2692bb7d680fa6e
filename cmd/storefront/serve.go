package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	articlehttp "github.com/tair/storefront/internal/article/delivery/http"
	articlerepo "github.com/tair/storefront/internal/article/repository"
	articleseed "github.com/tair/storefront/internal/article/seed"
	articlecommand "github.com/tair/storefront/internal/article/usecase/command"
	articlequery "github.com/tair/storefront/internal/article/usecase/query"
	"github.com/tair/storefront/internal/delivery/httpx"
	"github.com/tair/storefront/internal/events"
	orderhttp "github.com/tair/storefront/internal/order/delivery/http"
	orderrepo "github.com/tair/storefront/internal/order/repository"
	ordercommand "github.com/tair/storefront/internal/order/usecase/command"
	orderquery "github.com/tair/storefront/internal/order/usecase/query"
	producthttp "github.com/tair/storefront/internal/product/delivery/http"
	productrepo "github.com/tair/storefront/internal/product/repository"
	productseed "github.com/tair/storefront/internal/product/seed"
	productcommand "github.com/tair/storefront/internal/product/usecase/command"
	productquery "github.com/tair/storefront/internal/product/usecase/query"
	"github.com/tair/storefront/internal/session"
	sessionhttp "github.com/tair/storefront/internal/session/delivery/http"
	"github.com/tair/storefront/internal/storage"
	userhttp "github.com/tair/storefront/internal/user/delivery/http"
	userrepo "github.com/tair/storefront/internal/user/repository"
	userseed "github.com/tair/storefront/internal/user/seed"
	usercommand "github.com/tair/storefront/internal/user/usecase/command"
	userquery "github.com/tair/storefront/internal/user/usecase/query"
	"github.com/tair/storefront/pkg/config"
	"github.com/tair/storefront/pkg/database"
	"github.com/tair/storefront/pkg/logger"
	"github.com/tair/storefront/pkg/tracing"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the storefront HTTP server",
	Long:  `Start the storefront HTTP server. Configuration comes from environment variables, optionally bootstrapped from a .env file.`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.Init(cfg.ServiceName, cfg.IsDevelopment())
	logger.SetLevel(cfg.LogLevel)

	tp, err := tracing.InitTracer(cfg.ServiceName)
	if err != nil {
		logger.Warn(context.Background()).Err(err).Msg("Tracing disabled")
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracing.Shutdown(ctx, tp); err != nil {
				logger.Warn(ctx).Err(err).Msg("Failed to shut down tracer")
			}
		}()
	}

	ctx := cmd.Context()

	adapter, cleanup, err := buildAdapter(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	bus := events.NewBus()
	if cfg.Kafka.Enabled {
		sink, err := events.NewKafkaSink(cfg.Kafka.Brokers)
		if err != nil {
			return fmt.Errorf("failed to connect to kafka: %w", err)
		}
		defer sink.Close()
		bus.AddSink(sink)
	}

	// Repositories
	productRepo := productrepo.NewTracingProductRepository(productrepo.NewCollectionProductRepository(adapter))
	articleRepo := articlerepo.NewCollectionArticleRepository(adapter)
	userRepo := userrepo.NewCollectionUserRepository(adapter)
	orderRepo := orderrepo.NewCollectionOrderRepository(adapter)

	// Seed data: idempotent, missing records are re-added without touching
	// user-created ones.
	if err := productseed.EnsureSeedData(ctx, adapter); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}
	if err := articleseed.EnsureSeedData(ctx, adapter); err != nil {
		return fmt.Errorf("failed to seed articles: %w", err)
	}
	if err := userseed.EnsureAdmin(ctx, userRepo, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}

	// Sessions survive restarts; accounts are re-resolved so deleted users
	// do not come back authenticated.
	sessions := session.NewStore(adapter)
	if err := sessions.Restore(ctx, userRepo); err != nil {
		logger.Warn(ctx).Err(err).Msg("Failed to restore sessions")
	}

	// HTTP handlers
	productHandler := producthttp.NewProductHandler(
		productcommand.NewCreateProductHandler(productRepo, bus),
		productcommand.NewUpdateProductHandler(productRepo, bus),
		productcommand.NewDeleteProductHandler(productRepo, bus),
		productquery.NewGetProductHandler(productRepo),
		productquery.NewListProductsHandler(productRepo),
		productquery.NewListCategoriesHandler(productRepo),
		productquery.NewGetStatsHandler(productRepo),
		productRepo,
	)
	articleHandler := articlehttp.NewArticleHandler(
		articlecommand.NewCreateArticleHandler(articleRepo, bus),
		articlecommand.NewUpdateArticleHandler(articleRepo, bus),
		articlecommand.NewDeleteArticleHandler(articleRepo, bus),
		articlequery.NewGetArticleHandler(articleRepo),
		articlequery.NewListArticlesHandler(articleRepo),
	)
	userHandler := userhttp.NewUserHandler(
		usercommand.NewRegisterUserHandler(userRepo, cfg.Admin.Email, bus),
		usercommand.NewLoginUserHandler(userRepo),
		usercommand.NewUpdateProfileHandler(userRepo, bus),
		usercommand.NewChangeRoleHandler(userRepo, bus),
		usercommand.NewDeleteUserHandler(userRepo, bus),
		userquery.NewGetUserHandler(userRepo),
		userquery.NewCheckEmailHandler(userRepo),
		userquery.NewListUsersHandler(userRepo),
		userquery.NewGetStatsHandler(userRepo),
		sessions,
	)
	orderHandler := orderhttp.NewOrderHandler(
		ordercommand.NewCreateOrderHandler(orderRepo, userRepo, bus),
		ordercommand.NewUpdateStatusHandler(orderRepo, bus),
		orderquery.NewGetOrderHandler(orderRepo),
		orderquery.NewListOrdersHandler(orderRepo),
		orderquery.NewGetStatsHandler(orderRepo),
		sessions,
	)
	cartHandler := sessionhttp.NewCartHandler(sessions, productRepo)

	router := mux.NewRouter()
	productHandler.RegisterRoutes(router)
	articleHandler.RegisterRoutes(router)
	userHandler.RegisterRoutes(router)
	orderHandler.RegisterRoutes(router)
	cartHandler.RegisterRoutes(router)

	// Operational endpoints
	router.Handle("/metrics", promhttp.Handler())
	producthttp.RegisterSwaggerDocs(router, httpSwagger.Handler())
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := adapter.Ping(r.Context()); err != nil {
			httpx.RespondError(w, http.StatusServiceUnavailable, "Storage unavailable")
			return
		}
		httpx.RespondJSON(w, http.StatusOK, httpx.Response{
			Success: true,
			Message: "storefront is healthy",
		})
	}).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: otelhttp.NewHandler(c.Handler(router), cfg.ServiceName),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx).Str("port", cfg.HTTPPort).Str("primary", cfg.Storage.Primary).Str("fallback", cfg.Storage.Fallback).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-quit:
	}

	logger.Info(ctx).Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildAdapter constructs the primary and fallback backends from the
// configuration. The returned cleanup closes any connections the backends
// hold.
func buildAdapter(ctx context.Context, cfg *config.Config) (*storage.Adapter, func(), error) {
	var closers []func()
	cleanup := func() {
		for _, fn := range closers {
			fn()
		}
	}

	build := func(name string) (storage.Backend, error) {
		switch name {
		case "memory":
			return storage.NewMemoryBackend(), nil
		case "file":
			return storage.NewFileBackend(cfg.Storage.DataDir)
		case "redis":
			client := redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			closers = append(closers, func() { client.Close() })
			return storage.NewRedisBackend(client), nil
		case "postgres":
			db, err := database.NewPostgresConnection(database.Config{
				Host:     cfg.Postgres.Host,
				Port:     cfg.Postgres.Port,
				User:     cfg.Postgres.User,
				Password: cfg.Postgres.Password,
				DBName:   cfg.Postgres.DBName,
				SSLMode:  cfg.Postgres.SSLMode,
			})
			if err != nil {
				return nil, err
			}
			closers = append(closers, func() { db.Close() })
			backend := storage.NewPostgresBackend(db)
			if err := backend.Migrate(ctx); err != nil {
				return nil, err
			}
			return backend, nil
		case "postgres-gorm":
			db, err := database.NewGormConnection(database.Config{
				Host:     cfg.Postgres.Host,
				Port:     cfg.Postgres.Port,
				User:     cfg.Postgres.User,
				Password: cfg.Postgres.Password,
				DBName:   cfg.Postgres.DBName,
				SSLMode:  cfg.Postgres.SSLMode,
			})
			if err != nil {
				return nil, err
			}
			if sqlDB, err := db.DB(); err == nil {
				closers = append(closers, func() { sqlDB.Close() })
			}
			backend := storage.NewGormBackend(db)
			if err := backend.AutoMigrate(); err != nil {
				return nil, err
			}
			return backend, nil
		default:
			return nil, fmt.Errorf("unknown storage backend %q", name)
		}
	}

	primary, err := build(cfg.Storage.Primary)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to build primary backend: %w", err)
	}

	var fallback storage.Backend
	if cfg.Storage.Fallback != "" && cfg.Storage.Fallback != "none" {
		fallback, err = build(cfg.Storage.Fallback)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to build fallback backend: %w", err)
		}
	}

	return storage.NewAdapter(primary, fallback), cleanup, nil
}
