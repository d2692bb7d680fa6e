package proxy

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/tair/storefront/api-gateway/config"
	"github.com/tair/storefront/api-gateway/loadbalancer"
	"github.com/tair/storefront/pkg/logger"
)

// ReverseProxy forwards requests to the storefront instance pool.
type ReverseProxy struct {
	config *config.GatewayConfig
	client *http.Client
	pool   *loadbalancer.RoundRobin
}

// NewReverseProxy creates a reverse proxy over the configured instances.
func NewReverseProxy(cfg *config.GatewayConfig) *ReverseProxy {
	return &ReverseProxy{
		config: cfg,
		pool:   loadbalancer.NewRoundRobin(cfg.Upstream.Instances),
		client: &http.Client{
			Timeout: cfg.Upstream.Timeout,
		},
	}
}

// ProxyRequest forwards the request to the next storefront instance.
func (p *ReverseProxy) ProxyRequest(c *fiber.Ctx) error {
	serverURL := p.pool.Next()
	if serverURL == "" {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "No available storefront instances",
		})
	}

	logger.Logger.Debug().
		Str("target_url", serverURL).
		Str("path", c.Path()).
		Msg("Proxying request")

	req, err := http.NewRequestWithContext(
		c.UserContext(),
		c.Method(),
		p.buildTargetURL(c, serverURL),
		bytes.NewReader(c.Body()),
	)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create request",
		})
	}

	p.copyHeaders(c, req)

	resp, err := p.client.Do(req)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   "Failed to reach storefront",
			"details": err.Error(),
		})
	}
	defer resp.Body.Close()

	p.copyResponseHeaders(c, resp)
	c.Status(resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read response",
		})
	}

	return c.Send(body)
}

// Pool returns the instance pool (for stats).
func (p *ReverseProxy) Pool() *loadbalancer.RoundRobin {
	return p.pool
}

func (p *ReverseProxy) buildTargetURL(c *fiber.Ctx, serverURL string) string {
	path := string(c.Request().URI().Path())

	queryString := string(c.Request().URI().QueryString())
	if queryString != "" {
		queryString = "?" + queryString
	}

	return serverURL + path + queryString
}

// copyHeaders copies request headers onto the upstream request, except Host.
func (p *ReverseProxy) copyHeaders(c *fiber.Ctx, req *http.Request) {
	c.Request().Header.VisitAll(func(key, value []byte) {
		keyStr := string(key)
		if strings.ToLower(keyStr) == "host" {
			return
		}
		req.Header.Set(keyStr, string(value))
	})

	req.Header.Set("X-Forwarded-For", c.IP())
	req.Header.Set("X-Forwarded-Proto", c.Protocol())
	req.Header.Set("X-Forwarded-Host", c.Hostname())
}

func (p *ReverseProxy) copyResponseHeaders(c *fiber.Ctx, resp *http.Response) {
	for key, values := range resp.Header {
		if strings.ToLower(key) == "content-length" {
			continue
		}
		for _, value := range values {
			c.Set(key, value)
		}
	}
}
