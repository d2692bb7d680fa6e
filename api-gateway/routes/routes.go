package routes

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tair/storefront/api-gateway/config"
	"github.com/tair/storefront/api-gateway/health"
	"github.com/tair/storefront/api-gateway/middleware"
	"github.com/tair/storefront/api-gateway/proxy"
	"github.com/tair/storefront/pkg/logger"
)

// RouteDefinition defines how a path prefix is proxied.
type RouteDefinition struct {
	Prefix       string
	Description  string
	RequireAuth  bool
	RequireAdmin bool
}

// routeTable maps path prefixes to their auth requirements. Order matters:
// more specific prefixes must precede broader ones.
var routeTable = []RouteDefinition{
	{Prefix: "/api/auth", Description: "Registration, login and session handoff"},
	{Prefix: "/api/products", Description: "Product catalog"},
	{Prefix: "/api/articles", Description: "Blog articles"},
	{Prefix: "/api/cart", Description: "Shopping cart (anonymous or authenticated)"},
	{Prefix: "/api/wishlist", Description: "Wishlist (anonymous or authenticated)"},
	{Prefix: "/api/users", Description: "User administration", RequireAuth: true, RequireAdmin: true},
	{Prefix: "/api/orders", Description: "Orders and checkout", RequireAuth: true},
	{Prefix: "/api/profile", Description: "Profile management", RequireAuth: true},
}

// SetupRoutes configures all gateway routes
func SetupRoutes(app *fiber.App, cfg *config.GatewayConfig) {
	reverseProxy := proxy.NewReverseProxy(cfg)
	healthChecker := health.NewHealthChecker(cfg)

	// Gateway health endpoints
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(healthChecker.QuickCheck())
	})

	app.Get("/health/live", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "alive"})
	})

	app.Get("/health/ready", func(c *fiber.Ctx) error {
		result := healthChecker.CheckAllInstances(c.UserContext())
		status := fiber.StatusOK
		if result.Status == "unhealthy" {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(result)
	})

	app.Get("/health/instances", func(c *fiber.Ctx) error {
		return c.JSON(healthChecker.CheckAllInstances(c.UserContext()))
	})

	app.Get("/gateway/pool", func(c *fiber.Ctx) error {
		return c.JSON(reverseProxy.Pool().Stats())
	})

	// Gateway overview
	app.Get("/", func(c *fiber.Ctx) error {
		endpoints := make([]fiber.Map, 0, len(routeTable))
		for _, route := range routeTable {
			endpoints = append(endpoints, fiber.Map{
				"prefix":        route.Prefix,
				"description":   route.Description,
				"auth_required": route.RequireAuth,
				"admin_only":    route.RequireAdmin,
			})
		}
		return c.JSON(fiber.Map{
			"gateway":   "Storefront API Gateway",
			"version":   "1.0.0",
			"timestamp": time.Now(),
			"endpoints": endpoints,
		})
	})

	proxyHandler := func(c *fiber.Ctx) error {
		return reverseProxy.ProxyRequest(c)
	}

	for _, route := range routeTable {
		handlers := []fiber.Handler{}

		switch {
		case route.RequireAdmin:
			handlers = append(handlers, middleware.AuthMiddleware(), middleware.AdminMiddleware())
		case route.RequireAuth:
			handlers = append(handlers, middleware.AuthMiddleware())
		default:
			// Forward identity headers when a token is present so the
			// storefront can attach anonymous carts to the user.
			handlers = append(handlers, middleware.OptionalAuthMiddleware())
		}

		handlers = append(handlers, proxyHandler)
		app.All(route.Prefix+"/*", handlers...)
		app.All(route.Prefix, handlers...)

		logger.Logger.Info().
			Str("prefix", route.Prefix).
			Bool("auth", route.RequireAuth).
			Bool("admin", route.RequireAdmin).
			Msg("Route registered")
	}

	// Anything else under /api is unknown
	app.All("/api/*", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Unknown API path",
			"path":  c.Path(),
		})
	})
}

// MatchRoute returns the route definition for a path, if any.
func MatchRoute(path string) (RouteDefinition, bool) {
	for _, route := range routeTable {
		if path == route.Prefix || strings.HasPrefix(path, route.Prefix+"/") {
			return route, true
		}
	}
	return RouteDefinition{}, false
}
