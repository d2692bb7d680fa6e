package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/tair/storefront/api-gateway/config"
	"github.com/tair/storefront/api-gateway/middleware"
	"github.com/tair/storefront/api-gateway/routes"
	"github.com/tair/storefront/pkg/logger"
	"github.com/tair/storefront/pkg/tracing"
)

func main() {
	_ = godotenv.Load()

	logger.Init("storefront-gateway", os.Getenv("ENVIRONMENT") != "production")

	cfg := config.LoadConfig()

	tp, err := tracing.InitTracer("storefront-gateway")
	if err != nil {
		logger.Logger.Warn().Err(err).Msg("Tracing disabled")
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracing.Shutdown(ctx, tp); err != nil {
				logger.Logger.Error().Err(err).Msg("Failed to shutdown tracer")
			}
		}()
	}

	app := fiber.New(fiber.Config{
		AppName:      "Storefront API Gateway",
		ErrorHandler: customErrorHandler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	redisClient := connectRedis()
	setupMiddleware(app, redisClient)

	routes.SetupRoutes(app, cfg)

	// Graceful shutdown on SIGINT/SIGTERM
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		logger.Logger.Info().Msg("Shutting down gateway")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Logger.Error().Err(err).Msg("Forced shutdown")
		}
	}()

	logger.Logger.Info().
		Str("port", cfg.Port).
		Strs("instances", cfg.Upstream.Instances).
		Msg("API Gateway listening")

	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Gateway stopped")
	}
}

func setupMiddleware(app *fiber.App, redisClient *redis.Client) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.StructuredLoggingMiddleware())

	// Redis-backed middleware degrades gracefully when redis is absent
	if redisClient != nil {
		app.Use(middleware.GlobalRateLimiter(redisClient))
		app.Use(middleware.CacheMiddleware(redisClient, middleware.DefaultCacheConfig()))
	}

	breaker := middleware.NewCircuitBreaker("storefront", 5, 30*time.Second)
	app.Use(middleware.CircuitBreakerMiddleware(breaker))

	app.Use(cors.New(cors.Config{
		AllowOrigins: getEnv("CORS_ORIGINS", "*"),
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Session-ID",
	}))
	app.Use(compress.New())
}

// connectRedis returns nil when redis is unreachable; rate limiting and
// caching are then skipped.
func connectRedis() *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Logger.Warn().Err(err).Msg("Redis unavailable, rate limiting and caching disabled")
		client.Close()
		return nil
	}

	logger.Logger.Info().Msg("Connected to Redis")
	return client
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	logger.Logger.Error().
		Err(err).
		Int("status", code).
		Str("path", c.Path()).
		Str("method", c.Method()).
		Msg("Request failed")

	return c.Status(code).JSON(fiber.Map{
		"error":     err.Error(),
		"path":      c.Path(),
		"timestamp": time.Now(),
	})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
