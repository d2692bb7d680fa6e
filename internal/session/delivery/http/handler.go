package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/tair/storefront/internal/delivery/httpx"
	productdomain "github.com/tair/storefront/internal/product/domain"
	"github.com/tair/storefront/internal/session"
	"github.com/tair/storefront/pkg/logger"
)

// SessionHeader carries the client's session id for anonymous requests.
// Authenticated requests are keyed by user id instead.
const SessionHeader = "X-Session-ID"

// CartHandler handles HTTP requests for the session cart and wishlist.
// Anonymous mutations are deferred: the client gets 401 with the stashed
// action echoed back, and the action runs on the next login.
type CartHandler struct {
	sessions *session.Store
	products productdomain.ProductRepository
	metrics  *httpx.Metrics
}

// NewCartHandler creates the cart handler over the session store.
func NewCartHandler(sessions *session.Store, products productdomain.ProductRepository) *CartHandler {
	return &CartHandler{
		sessions: sessions,
		products: products,
		metrics:  httpx.NewMetrics("cart"),
	}
}

func (h *CartHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/cart", h.metrics.Middleware("/api/cart", httpx.OptionalAuthMiddleware(h.GetCart))).Methods("GET")
	router.HandleFunc("/api/cart", h.metrics.Middleware("/api/cart", httpx.OptionalAuthMiddleware(h.ClearCart))).Methods("DELETE")
	router.HandleFunc("/api/cart/items", h.metrics.Middleware("/api/cart/items", httpx.OptionalAuthMiddleware(h.AddItem))).Methods("POST")
	router.HandleFunc("/api/cart/items/{id}", h.metrics.Middleware("/api/cart/items/{id}", httpx.OptionalAuthMiddleware(h.UpdateItem))).Methods("PUT")
	router.HandleFunc("/api/cart/items/{id}", h.metrics.Middleware("/api/cart/items/{id}", httpx.OptionalAuthMiddleware(h.RemoveItem))).Methods("DELETE")

	router.HandleFunc("/api/wishlist", h.metrics.Middleware("/api/wishlist", httpx.OptionalAuthMiddleware(h.GetWishlist))).Methods("GET")
	router.HandleFunc("/api/wishlist", h.metrics.Middleware("/api/wishlist", httpx.OptionalAuthMiddleware(h.ClearWishlist))).Methods("DELETE")
	router.HandleFunc("/api/wishlist/items", h.metrics.Middleware("/api/wishlist/items", httpx.OptionalAuthMiddleware(h.AddWishlistItem))).Methods("POST")
	router.HandleFunc("/api/wishlist/items/{id}", h.metrics.Middleware("/api/wishlist/items/{id}", httpx.OptionalAuthMiddleware(h.RemoveWishlistItem))).Methods("DELETE")
}

// sessionID keys the session by user id for authenticated requests, by the
// client-supplied header otherwise. A missing header gets a fresh id the
// client is expected to keep.
func (h *CartHandler) sessionID(r *http.Request) string {
	if userID, ok := httpx.UserID(r.Context()); ok {
		return userID
	}
	if id := r.Header.Get(SessionHeader); id != "" {
		return id
	}
	return uuid.NewString()
}

type cartView struct {
	SessionID string             `json:"session_id"`
	Items     []session.CartItem `json:"items"`
	Total     float64            `json:"total"`
	ItemCount int                `json:"item_count"`
}

func (h *CartHandler) respondCart(w http.ResponseWriter, sessionID string, message string) {
	sess := h.sessions.Get(sessionID)
	httpx.RespondJSON(w, http.StatusOK, httpx.Response{
		Success: true,
		Message: message,
		Data: cartView{
			SessionID: sessionID,
			Items:     sess.Cart,
			Total:     sess.CartTotal(),
			ItemCount: sess.ItemCount(),
		},
	})
}

// respondDeferred reports a stashed anonymous mutation.
func respondDeferred(w http.ResponseWriter, sessionID string) {
	httpx.RespondJSON(w, http.StatusUnauthorized, httpx.Response{
		Success: false,
		Error:   "Login required; the action will run after login",
		Data:    map[string]string{"session_id": sessionID},
	})
}

// GetCart handles GET /api/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.respondCart(w, h.sessionID(r), "")
}

// AddItem handles POST /api/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID int `json:"product_id"`
		Quantity  int `json:"quantity"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	product, err := h.products.FindByID(r.Context(), req.ProductID)
	if err != nil {
		httpx.RespondError(w, http.StatusNotFound, "Product not found")
		return
	}
	if !product.InStock {
		httpx.RespondError(w, http.StatusConflict, "Product is out of stock")
		return
	}

	sessionID := h.sessionID(r)
	res, err := h.sessions.AddToCart(r.Context(), sessionID, *product, req.Quantity)
	if errors.Is(err, session.ErrLoginRequired) {
		respondDeferred(w, sessionID)
		return
	}
	if !res.OK() {
		logger.Error(r.Context()).Err(res.Err).Msg("Failed to persist cart")
	}

	h.respondCart(w, sessionID, "Item added to cart")
}

// UpdateItem handles PUT /api/cart/items/{id}
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sessionID := h.sessionID(r)
	res, err := h.sessions.UpdateQuantity(r.Context(), sessionID, productID, req.Quantity)
	if errors.Is(err, session.ErrLoginRequired) {
		respondDeferred(w, sessionID)
		return
	}
	if !res.OK() {
		logger.Error(r.Context()).Err(res.Err).Msg("Failed to persist cart")
	}

	h.respondCart(w, sessionID, "Cart updated")
}

// RemoveItem handles DELETE /api/cart/items/{id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	sessionID := h.sessionID(r)
	res, err := h.sessions.RemoveFromCart(r.Context(), sessionID, productID)
	if errors.Is(err, session.ErrLoginRequired) {
		respondDeferred(w, sessionID)
		return
	}
	if !res.OK() {
		logger.Error(r.Context()).Err(res.Err).Msg("Failed to persist cart")
	}

	h.respondCart(w, sessionID, "Item removed from cart")
}

// ClearCart handles DELETE /api/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(r)
	res, err := h.sessions.ClearCart(r.Context(), sessionID)
	if errors.Is(err, session.ErrLoginRequired) {
		respondDeferred(w, sessionID)
		return
	}
	if !res.OK() {
		logger.Error(r.Context()).Err(res.Err).Msg("Failed to persist cart")
	}

	h.respondCart(w, sessionID, "Cart cleared")
}

// GetWishlist handles GET /api/wishlist
func (h *CartHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Get(h.sessionID(r))
	httpx.RespondJSON(w, http.StatusOK, httpx.Response{
		Success: true,
		Data:    sess.Wishlist,
	})
}

// AddWishlistItem handles POST /api/wishlist/items
func (h *CartHandler) AddWishlistItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID int `json:"product_id"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	product, err := h.products.FindByID(r.Context(), req.ProductID)
	if err != nil {
		httpx.RespondError(w, http.StatusNotFound, "Product not found")
		return
	}

	sessionID := h.sessionID(r)
	res, err := h.sessions.AddToWishlist(r.Context(), sessionID, *product)
	if errors.Is(err, session.ErrLoginRequired) {
		respondDeferred(w, sessionID)
		return
	}
	if !res.OK() {
		logger.Error(r.Context()).Err(res.Err).Msg("Failed to persist wishlist")
	}

	sess := h.sessions.Get(sessionID)
	httpx.RespondJSON(w, http.StatusOK, httpx.Response{
		Success: true,
		Message: "Item added to wishlist",
		Data:    sess.Wishlist,
	})
}

// ClearWishlist handles DELETE /api/wishlist
func (h *CartHandler) ClearWishlist(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(r)
	res, err := h.sessions.ClearWishlist(r.Context(), sessionID)
	if errors.Is(err, session.ErrLoginRequired) {
		respondDeferred(w, sessionID)
		return
	}
	if !res.OK() {
		logger.Error(r.Context()).Err(res.Err).Msg("Failed to persist wishlist")
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{
		Success: true,
		Message: "Wishlist cleared",
		Data:    []productdomain.Product{},
	})
}

// RemoveWishlistItem handles DELETE /api/wishlist/items/{id}
func (h *CartHandler) RemoveWishlistItem(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	sessionID := h.sessionID(r)
	res, err := h.sessions.RemoveFromWishlist(r.Context(), sessionID, productID)
	if errors.Is(err, session.ErrLoginRequired) {
		respondDeferred(w, sessionID)
		return
	}
	if !res.OK() {
		logger.Error(r.Context()).Err(res.Err).Msg("Failed to persist wishlist")
	}

	sess := h.sessions.Get(sessionID)
	httpx.RespondJSON(w, http.StatusOK, httpx.Response{
		Success: true,
		Message: "Item removed from wishlist",
		Data:    sess.Wishlist,
	})
}
