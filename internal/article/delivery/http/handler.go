package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/tair/storefront/internal/article/domain"
	"github.com/tair/storefront/internal/article/usecase/command"
	"github.com/tair/storefront/internal/article/usecase/query"
	"github.com/tair/storefront/internal/delivery/httpx"
	"github.com/tair/storefront/pkg/logger"
)

// ArticleHandler handles HTTP requests for blog content
type ArticleHandler struct {
	createHandler *command.CreateArticleHandler
	updateHandler *command.UpdateArticleHandler
	deleteHandler *command.DeleteArticleHandler

	getHandler  *query.GetArticleHandler
	listHandler *query.ListArticlesHandler

	metrics *httpx.Metrics
}

// NewArticleHandler wires the command and query handlers for the blog routes.
func NewArticleHandler(
	createHandler *command.CreateArticleHandler,
	updateHandler *command.UpdateArticleHandler,
	deleteHandler *command.DeleteArticleHandler,
	getHandler *query.GetArticleHandler,
	listHandler *query.ListArticlesHandler,
) *ArticleHandler {
	return &ArticleHandler{
		createHandler: createHandler,
		updateHandler: updateHandler,
		deleteHandler: deleteHandler,
		getHandler:    getHandler,
		listHandler:   listHandler,
		metrics:       httpx.NewMetrics("blog"),
	}
}

func (h *ArticleHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/articles", h.metrics.Middleware("/api/articles", h.ListArticles)).Methods("GET")
	router.HandleFunc("/api/articles/{id}", h.metrics.Middleware("/api/articles/{id}", h.GetArticle)).Methods("GET")

	router.HandleFunc("/api/articles", h.metrics.Middleware("/api/articles", httpx.AdminMiddleware(h.CreateArticle))).Methods("POST")
	router.HandleFunc("/api/articles/{id}", h.metrics.Middleware("/api/articles/{id}", httpx.AdminMiddleware(h.UpdateArticle))).Methods("PUT")
	router.HandleFunc("/api/articles/{id}", h.metrics.Middleware("/api/articles/{id}", httpx.AdminMiddleware(h.DeleteArticle))).Methods("DELETE")
}

// CreateArticle handles POST /api/articles
func (h *ArticleHandler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title    string   `json:"title"`
		Content  string   `json:"content"`
		Excerpt  string   `json:"excerpt"`
		Category string   `json:"category"`
		Author   string   `json:"author"`
		Tags     []string `json:"tags"`
		Image    string   `json:"image"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	article, err := h.createHandler.Handle(r.Context(), command.CreateArticleCommand{
		Title:    req.Title,
		Content:  req.Content,
		Excerpt:  req.Excerpt,
		Category: req.Category,
		Author:   req.Author,
		Tags:     req.Tags,
		Image:    req.Image,
	})
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to create article")
		httpx.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	httpx.RespondJSON(w, http.StatusCreated, httpx.Response{
		Success: true,
		Message: "Article created successfully",
		Data:    article,
	})
}

// ListArticles handles GET /api/articles
func (h *ArticleHandler) ListArticles(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	result, err := h.listHandler.Handle(r.Context(), query.ListArticlesQuery{
		Category: r.URL.Query().Get("category"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to list articles")
		httpx.RespondError(w, http.StatusInternalServerError, "Failed to list articles")
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{
		Success: true,
		Data:    result,
	})
}

// GetArticle handles GET /api/articles/{id}
func (h *ArticleHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "Invalid article ID")
		return
	}

	article, err := h.getHandler.Handle(r.Context(), query.GetArticleQuery{ID: id})
	if err != nil {
		httpx.RespondError(w, http.StatusNotFound, "Article not found")
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{
		Success: true,
		Data:    article,
	})
}

// UpdateArticle handles PUT /api/articles/{id}
func (h *ArticleHandler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "Invalid article ID")
		return
	}

	var req struct {
		Title    *string  `json:"title"`
		Content  *string  `json:"content"`
		Excerpt  *string  `json:"excerpt"`
		Category *string  `json:"category"`
		Tags     []string `json:"tags"`
		Image    *string  `json:"image"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	article, err := h.updateHandler.Handle(r.Context(), command.UpdateArticleCommand{
		ID:       id,
		Title:    req.Title,
		Content:  req.Content,
		Excerpt:  req.Excerpt,
		Category: req.Category,
		Tags:     req.Tags,
		Image:    req.Image,
	})
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to update article")
		respondDomainError(w, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{
		Success: true,
		Message: "Article updated successfully",
		Data:    article,
	})
}

// DeleteArticle handles DELETE /api/articles/{id}
func (h *ArticleHandler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "Invalid article ID")
		return
	}

	if err := h.deleteHandler.Handle(r.Context(), command.DeleteArticleCommand{ID: id}); err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to delete article")
		respondDomainError(w, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{
		Success: true,
		Message: "Article deleted successfully",
	})
}

func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		httpx.RespondError(w, http.StatusNotFound, "Article not found")
	case errors.Is(err, domain.ErrProtectedRecord):
		httpx.RespondError(w, http.StatusForbidden, "Original articles cannot be modified")
	default:
		httpx.RespondError(w, http.StatusBadRequest, err.Error())
	}
}
