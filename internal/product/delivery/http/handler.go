package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/storefront/internal/delivery/httpx"
	"github.com/tair/storefront/internal/product/domain"
	"github.com/tair/storefront/internal/product/usecase/command"
	"github.com/tair/storefront/internal/product/usecase/query"
	"github.com/tair/storefront/pkg/logger"
)

// ProductHandler handles HTTP requests for the catalog using CQRS pattern
type ProductHandler struct {
	// Command handlers
	createHandler *command.CreateProductHandler
	updateHandler *command.UpdateProductHandler
	deleteHandler *command.DeleteProductHandler

	// Query handlers
	getHandler        *query.GetProductHandler
	listHandler       *query.ListProductsHandler
	categoriesHandler *query.ListCategoriesHandler
	statsHandler      *query.GetStatsHandler

	repo          domain.ProductRepository
	metrics       *httpx.Metrics
	totalProducts prometheus.Gauge
}

// NewProductHandler wires the command and query handlers for the catalog
// routes.
func NewProductHandler(
	createHandler *command.CreateProductHandler,
	updateHandler *command.UpdateProductHandler,
	deleteHandler *command.DeleteProductHandler,
	getHandler *query.GetProductHandler,
	listHandler *query.ListProductsHandler,
	categoriesHandler *query.ListCategoriesHandler,
	statsHandler *query.GetStatsHandler,
	repo domain.ProductRepository,
) *ProductHandler {
	totalProducts := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_total_products",
			Help: "Total number of products in the catalog",
		},
	)
	prometheus.MustRegister(totalProducts)

	return &ProductHandler{
		createHandler:     createHandler,
		updateHandler:     updateHandler,
		deleteHandler:     deleteHandler,
		getHandler:        getHandler,
		listHandler:       listHandler,
		categoriesHandler: categoriesHandler,
		statsHandler:      statsHandler,
		repo:              repo,
		metrics:           httpx.NewMetrics("catalog"),
		totalProducts:     totalProducts,
	}
}

func (h *ProductHandler) RegisterRoutes(router *mux.Router) {
	// Public routes (no auth required)
	router.HandleFunc("/api/products", h.metrics.Middleware("/api/products", h.ListProducts)).Methods("GET")
	router.HandleFunc("/api/products/categories", h.metrics.Middleware("/api/products/categories", h.ListCategories)).Methods("GET")
	router.HandleFunc("/api/products/stats", h.metrics.Middleware("/api/products/stats", h.GetStats)).Methods("GET")
	router.HandleFunc("/api/products/{id}", h.metrics.Middleware("/api/products/{id}", h.GetProduct)).Methods("GET")

	// Admin routes (admin role required)
	router.HandleFunc("/api/products", h.metrics.Middleware("/api/products", httpx.AdminMiddleware(h.CreateProduct))).Methods("POST")
	router.HandleFunc("/api/products/{id}", h.metrics.Middleware("/api/products/{id}", httpx.AdminMiddleware(h.UpdateProduct))).Methods("PUT")
	router.HandleFunc("/api/products/{id}", h.metrics.Middleware("/api/products/{id}", httpx.AdminMiddleware(h.DeleteProduct))).Methods("DELETE")
}

type productRequest struct {
	Name        *string  `json:"name"`
	Price       *float64 `json:"price"`
	Discount    *float64 `json:"discount"`
	Rating      *float64 `json:"rating"`
	Category    *string  `json:"category"`
	InStock     *bool    `json:"in_stock"`
	Unit        *string  `json:"unit"`
	Description *string  `json:"description"`
	Image       *string  `json:"image"`
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// CreateProduct handles POST /api/products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	inStock := true
	if req.InStock != nil {
		inStock = *req.InStock
	}

	cmd := command.CreateProductCommand{
		Name:        deref(req.Name),
		Price:       deref(req.Price),
		Discount:    deref(req.Discount),
		Rating:      deref(req.Rating),
		Category:    deref(req.Category),
		InStock:     inStock,
		Unit:        deref(req.Unit),
		Description: deref(req.Description),
		Image:       deref(req.Image),
	}

	product, err := h.createHandler.Handle(r.Context(), cmd)
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to create product")
		httpx.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.updateProductsMetric(r)

	httpx.RespondJSON(w, http.StatusCreated, httpx.Response{
		Success: true,
		Message: "Product created successfully",
		Data:    product,
	})
}

// ListProducts handles GET /api/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	q := query.ListProductsQuery{
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("search"),
		Limit:    limit,
		Offset:   offset,
	}

	result, err := h.listHandler.Handle(r.Context(), q)
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to list products")
		httpx.RespondError(w, http.StatusInternalServerError, "Failed to list products")
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{
		Success: true,
		Data:    result,
	})
}

// ListCategories handles GET /api/products/categories
func (h *ProductHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoriesHandler.Handle(r.Context())
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to list categories")
		httpx.RespondError(w, http.StatusInternalServerError, "Failed to list categories")
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{
		Success: true,
		Data:    categories,
	})
}

// GetProduct handles GET /api/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	product, err := h.getHandler.Handle(r.Context(), query.GetProductQuery{ID: id})
	if err != nil {
		httpx.RespondError(w, http.StatusNotFound, "Product not found")
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{
		Success: true,
		Data:    product,
	})
}

// UpdateProduct handles PUT /api/products/{id}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cmd := command.UpdateProductCommand{
		ID:          id,
		Name:        req.Name,
		Price:       req.Price,
		Discount:    req.Discount,
		Rating:      req.Rating,
		Category:    req.Category,
		InStock:     req.InStock,
		Unit:        req.Unit,
		Description: req.Description,
		Image:       req.Image,
	}

	product, err := h.updateHandler.Handle(r.Context(), cmd)
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to update product")
		respondDomainError(w, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{
		Success: true,
		Message: "Product updated successfully",
		Data:    product,
	})
}

// DeleteProduct handles DELETE /api/products/{id}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	if err := h.deleteHandler.Handle(r.Context(), command.DeleteProductCommand{ID: id}); err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to delete product")
		respondDomainError(w, err)
		return
	}

	h.updateProductsMetric(r)

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{
		Success: true,
		Message: "Product deleted successfully",
	})
}

// GetStats handles GET /api/products/stats
func (h *ProductHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsHandler.Handle(r.Context())
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to get stats")
		httpx.RespondError(w, http.StatusInternalServerError, "Failed to get statistics")
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{
		Success: true,
		Data:    stats,
	})
}

// respondDomainError maps catalog domain errors to HTTP statuses.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		httpx.RespondError(w, http.StatusNotFound, "Product not found")
	case errors.Is(err, domain.ErrProtectedRecord):
		httpx.RespondError(w, http.StatusForbidden, "Protected catalog records cannot be modified")
	default:
		httpx.RespondError(w, http.StatusBadRequest, err.Error())
	}
}

// updateProductsMetric updates the total products gauge
func (h *ProductHandler) updateProductsMetric(r *http.Request) {
	count, err := h.repo.Count(r.Context())
	if err == nil {
		h.totalProducts.Set(float64(count))
	}
}
