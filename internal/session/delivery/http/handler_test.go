package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	productdomain "github.com/tair/storefront/internal/product/domain"
	"github.com/tair/storefront/internal/session"
	"github.com/tair/storefront/internal/storage"
	userdomain "github.com/tair/storefront/internal/user/domain"
	"github.com/tair/storefront/pkg/auth"
)

type stubProductRepo struct {
	products map[int]productdomain.Product
}

func (r *stubProductRepo) FindByID(_ context.Context, id int) (*productdomain.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, productdomain.ErrNotFound
	}
	return &p, nil
}

func (r *stubProductRepo) FindAll(context.Context) ([]productdomain.Product, error) {
	return nil, nil
}

func (r *stubProductRepo) FindByCategory(context.Context, string) ([]productdomain.Product, error) {
	return nil, nil
}

func (r *stubProductRepo) Search(context.Context, string) ([]productdomain.Product, error) {
	return nil, nil
}

func (r *stubProductRepo) Categories(context.Context) ([]string, error) { return nil, nil }

func (r *stubProductRepo) Create(context.Context, *productdomain.Product) error { return nil }

func (r *stubProductRepo) Update(context.Context, *productdomain.Product) error { return nil }

func (r *stubProductRepo) Delete(context.Context, int) error { return nil }

func (r *stubProductRepo) Count(context.Context) (int, error) { return len(r.products), nil }

func TestCartEndpoints(t *testing.T) {
	store := session.NewStore(storage.NewAdapter(storage.NewMemoryBackend(), nil))
	repo := &stubProductRepo{products: map[int]productdomain.Product{
		1: {ID: 1, Name: "Apples", Price: 4.50, InStock: true, Unit: "kg"},
		2: {ID: 2, Name: "Honey", Price: 12.00, Discount: 25, InStock: true, Unit: "jar"},
		3: {ID: 3, Name: "Truffles", Price: 80.00, InStock: false, Unit: "box"},
	}}

	handler := NewCartHandler(store, repo)
	router := mux.NewRouter()
	handler.RegisterRoutes(router)

	token, err := auth.GenerateToken("u1", "ada@example.com", "user")
	require.NoError(t, err)

	addItem := func(t *testing.T, productID, qty int, authed bool) *httptest.ResponseRecorder {
		body, _ := json.Marshal(map[string]int{"product_id": productID, "quantity": qty})
		req := httptest.NewRequest("POST", "/api/cart/items", bytes.NewReader(body))
		if authed {
			req.Header.Set("Authorization", "Bearer "+token)
		} else {
			req.Header.Set(SessionHeader, "anon-1")
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	t.Run("anonymous add is deferred", func(t *testing.T) {
		rec := addItem(t, 1, 2, false)
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		var resp struct {
			Success bool              `json:"success"`
			Data    map[string]string `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.False(t, resp.Success)
		require.Equal(t, "anon-1", resp.Data["session_id"])
	})

	t.Run("login replays the stashed add", func(t *testing.T) {
		replayed, res := store.Login(context.Background(), "anon-1", &userdomain.User{ID: "u1", Email: "ada@example.com"})
		require.True(t, res.OK())
		require.NotNil(t, replayed)
		require.Equal(t, session.PendingAddToCart, replayed.Kind)

		sess := store.Get("u1")
		require.Len(t, sess.Cart, 1)
		require.Equal(t, 2, sess.Cart[0].Quantity)
	})

	t.Run("authenticated add merges and totals", func(t *testing.T) {
		rec := addItem(t, 2, 1, true)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Data cartView `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "u1", resp.Data.SessionID)
		require.Len(t, resp.Data.Items, 2)
		require.Equal(t, 3, resp.Data.ItemCount)
		// 4.50*2 + 12.00*0.75
		require.InDelta(t, 18.0, resp.Data.Total, 1e-9)
	})

	t.Run("unknown product is rejected", func(t *testing.T) {
		rec := addItem(t, 99, 1, true)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("out of stock product is rejected", func(t *testing.T) {
		rec := addItem(t, 3, 1, true)
		require.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("quantity update to zero removes the line", func(t *testing.T) {
		body, _ := json.Marshal(map[string]int{"quantity": 0})
		req := httptest.NewRequest("PUT", "/api/cart/items/1", bytes.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Data cartView `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Data.Items, 1)
		require.Equal(t, 2, resp.Data.Items[0].Product.ID)
	})

	t.Run("clear cart", func(t *testing.T) {
		req := httptest.NewRequest("DELETE", "/api/cart", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, store.Get("u1").Cart)
	})

	t.Run("wishlist add and remove", func(t *testing.T) {
		body, _ := json.Marshal(map[string]int{"product_id": 2})
		req := httptest.NewRequest("POST", "/api/wishlist/items", bytes.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, store.Get("u1").Wishlist, 1)

		req = httptest.NewRequest("DELETE", fmt.Sprintf("/api/wishlist/items/%d", 2), nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, store.Get("u1").Wishlist)
	})
}
