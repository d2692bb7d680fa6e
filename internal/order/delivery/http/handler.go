package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/tair/storefront/internal/delivery/httpx"
	"github.com/tair/storefront/internal/order/domain"
	"github.com/tair/storefront/internal/order/usecase/command"
	"github.com/tair/storefront/internal/order/usecase/query"
	"github.com/tair/storefront/internal/session"
	"github.com/tair/storefront/pkg/logger"
)

// OrderHandler handles HTTP requests for checkout and order management
type OrderHandler struct {
	createHandler *command.CreateOrderHandler
	statusHandler *command.UpdateStatusHandler

	getHandler   *query.GetOrderHandler
	listHandler  *query.ListOrdersHandler
	statsHandler *query.GetStatsHandler

	sessions *session.Store
	metrics  *httpx.Metrics
}

// NewOrderHandler wires the command and query handlers for the order routes.
func NewOrderHandler(
	createHandler *command.CreateOrderHandler,
	statusHandler *command.UpdateStatusHandler,
	getHandler *query.GetOrderHandler,
	listHandler *query.ListOrdersHandler,
	statsHandler *query.GetStatsHandler,
	sessions *session.Store,
) *OrderHandler {
	return &OrderHandler{
		createHandler: createHandler,
		statusHandler: statusHandler,
		getHandler:    getHandler,
		listHandler:   listHandler,
		statsHandler:  statsHandler,
		sessions:      sessions,
		metrics:       httpx.NewMetrics("orders"),
	}
}

func (h *OrderHandler) RegisterRoutes(router *mux.Router) {
	// Authenticated routes
	router.HandleFunc("/api/orders", h.metrics.Middleware("/api/orders", httpx.AuthMiddleware(h.Checkout))).Methods("POST")
	router.HandleFunc("/api/orders/mine", h.metrics.Middleware("/api/orders/mine", httpx.AuthMiddleware(h.ListMine))).Methods("GET")

	// Admin routes. Fixed paths are registered before the {id} wildcard.
	router.HandleFunc("/api/orders", h.metrics.Middleware("/api/orders", httpx.AdminMiddleware(h.ListAll))).Methods("GET")
	router.HandleFunc("/api/orders/stats", h.metrics.Middleware("/api/orders/stats", httpx.AdminMiddleware(h.GetStats))).Methods("GET")
	router.HandleFunc("/api/orders/{id}/status", h.metrics.Middleware("/api/orders/{id}/status", httpx.AdminMiddleware(h.UpdateStatus))).Methods("PATCH")

	router.HandleFunc("/api/orders/{id}", h.metrics.Middleware("/api/orders/{id}", httpx.AuthMiddleware(h.GetOrder))).Methods("GET")
}

// Checkout handles POST /api/orders. The order lines come from the caller's
// session cart; the cart is cleared only after the order write succeeded, as
// a separate write with its own outcome.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, _ := httpx.UserID(r.Context())

	var req struct {
		ShippingInfo  domain.ShippingInfo `json:"shipping_info"`
		PaymentMethod string              `json:"payment_method"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sess := h.sessions.Get(userID)
	items := make([]domain.OrderItem, 0, len(sess.Cart))
	for _, line := range sess.Cart {
		items = append(items, domain.OrderItem{
			ProductID: line.Product.ID,
			Name:      line.Product.Name,
			Price:     line.Product.Price,
			Discount:  line.Product.Discount,
			Quantity:  line.Quantity,
			Unit:      line.Product.Unit,
		})
	}

	order, err := h.createHandler.Handle(r.Context(), command.CreateOrderCommand{
		UserID:        userID,
		Items:         items,
		ShippingInfo:  req.ShippingInfo,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		logger.Warn(r.Context()).Err(err).Msg("Checkout refused")
		if errors.Is(err, domain.ErrEmptyOrder) {
			httpx.RespondError(w, http.StatusBadRequest, "Cart is empty")
			return
		}
		httpx.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// The order exists even if clearing the cart fails; the client learns
	// about the stale cart through cart_cleared.
	res, err := h.sessions.ClearCart(r.Context(), userID)
	cleared := err == nil && res.OK()
	if !cleared {
		logger.Error(r.Context()).Err(res.Err).Int("order_id", order.ID).Msg("Failed to clear cart after checkout")
	}

	httpx.RespondJSON(w, http.StatusCreated, httpx.Response{
		Success: true,
		Message: "Order placed successfully",
		Data: map[string]interface{}{
			"order":        order,
			"cart_cleared": cleared,
		},
	})
}

// ListMine handles GET /api/orders/mine
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, _ := httpx.UserID(r.Context())

	orders, err := h.listHandler.HandleUser(r.Context(), query.ListUserOrdersQuery{UserID: userID})
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to list orders")
		httpx.RespondError(w, http.StatusInternalServerError, "Failed to list orders")
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{
		Success: true,
		Data:    orders,
	})
}

// ListAll handles GET /api/orders
func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	orders, err := h.listHandler.HandleAll(r.Context())
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to list orders")
		httpx.RespondError(w, http.StatusInternalServerError, "Failed to list orders")
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{
		Success: true,
		Data:    orders,
	})
}

// GetOrder handles GET /api/orders/{id}. Customers can only read their own
// orders; admins can read any.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	order, err := h.getHandler.Handle(r.Context(), query.GetOrderQuery{ID: id})
	if err != nil {
		httpx.RespondError(w, http.StatusNotFound, "Order not found")
		return
	}

	userID, _ := httpx.UserID(r.Context())
	role, _ := httpx.Role(r.Context())
	if order.UserID != userID && role != "admin" {
		httpx.RespondError(w, http.StatusForbidden, "Not your order")
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{
		Success: true,
		Data:    order,
	})
}

// UpdateStatus handles PATCH /api/orders/{id}/status
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	var req struct {
		Status string `json:"status"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := h.statusHandler.Handle(r.Context(), command.UpdateStatusCommand{
		OrderID: id,
		Status:  req.Status,
	})
	if err != nil {
		logger.Warn(r.Context()).Err(err).Msg("Status update refused")
		switch {
		case errors.Is(err, domain.ErrNotFound):
			httpx.RespondError(w, http.StatusNotFound, "Order not found")
		case errors.Is(err, domain.ErrUnknownStatus):
			httpx.RespondError(w, http.StatusBadRequest, err.Error())
		default:
			httpx.RespondError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{
		Success: true,
		Message: "Order status updated",
		Data:    order,
	})
}

// GetStats handles GET /api/orders/stats
func (h *OrderHandler) GetStats(w http.ResponseWriter, r *http.Request) {
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
