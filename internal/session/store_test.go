package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	productdomain "github.com/tair/storefront/internal/product/domain"
	"github.com/tair/storefront/internal/storage"
	userdomain "github.com/tair/storefront/internal/user/domain"
)

func newTestStore() *Store {
	return NewStore(storage.NewAdapter(storage.NewMemoryBackend(), nil))
}

func testUser(id string) *userdomain.User {
	return &userdomain.User{
		ID:        id,
		FirstName: "Test",
		LastName:  "Shopper",
		Email:     id + "@example.com",
		Role:      userdomain.RoleUser,
		CreatedAt: time.Now(),
	}
}

func product(id int, price, discount float64) productdomain.Product {
	return productdomain.Product{
		ID:       id,
		Name:     "P",
		Price:    price,
		Discount: discount,
		InStock:  true,
	}
}

func TestCartTotalAppliesDiscounts(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()
	store.Login(ctx, "u1", testUser("u1"))

	_, err := store.AddToCart(ctx, "u1", product(1, 10.0, 0), 2)  // 20.00
	require.NoError(t, err)
	_, err = store.AddToCart(ctx, "u1", product(2, 20.0, 25), 1) // 15.00
	require.NoError(t, err)
	_, err = store.AddToCart(ctx, "u1", product(3, 8.0, 50), 3)  // 12.00
	require.NoError(t, err)

	sess := store.Get("u1")
	require.InDelta(t, 47.0, sess.CartTotal(), 1e-9)
	require.Equal(t, 6, sess.ItemCount())
}

func TestAddToCartMergesByProductID(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()
	store.Login(ctx, "u1", testUser("u1"))

	_, err := store.AddToCart(ctx, "u1", product(1, 5, 0), 1)
	require.NoError(t, err)
	_, err = store.AddToCart(ctx, "u1", product(1, 5, 0), 2)
	require.NoError(t, err)

	sess := store.Get("u1")
	require.Len(t, sess.Cart, 1)
	require.Equal(t, 3, sess.Cart[0].Quantity)
}

func TestUpdateQuantityFloorRemovesItem(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()
	store.Login(ctx, "u1", testUser("u1"))

	_, err := store.AddToCart(ctx, "u1", product(1, 5, 0), 2)
	require.NoError(t, err)

	for _, qty := range []int{0, -1} {
		_, err = store.AddToCart(ctx, "u1", product(1, 5, 0), 1)
		require.NoError(t, err)
		_, err = store.UpdateQuantity(ctx, "u1", 1, qty)
		require.NoError(t, err)

		sess := store.Get("u1")
		require.Empty(t, sess.Cart, "quantity %d must remove the line", qty)
	}
}

func TestAnonymousMutationIsDeferredAndReplayedOnLogin(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	// Anonymous add-to-cart is stashed, not executed.
	_, err := store.AddToCart(ctx, "anon-42", product(7, 12.5, 0), 2)
	require.ErrorIs(t, err, ErrLoginRequired)

	sess := store.Get("anon-42")
	require.Empty(t, sess.Cart)
	require.NotNil(t, sess.Pending)

	// Login replays the deferred action exactly once.
	user := testUser("user-7")
	replayed, res := store.Login(ctx, "anon-42", user)
	require.NotNil(t, replayed)
	require.Equal(t, PendingAddToCart, replayed.Kind)
	require.NoError(t, res.Err)

	sess = store.Get(user.ID)
	require.True(t, sess.Authenticated())
	require.Len(t, sess.Cart, 1)
	require.Equal(t, 7, sess.Cart[0].Product.ID)
	require.Equal(t, 2, sess.Cart[0].Quantity)
	require.Nil(t, sess.Pending)

	// The anonymous session id no longer carries state.
	require.Empty(t, store.Get("anon-42").Cart)
}

func TestWishlistDeduplicatesAndDefers(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	_, err := store.AddToWishlist(ctx, "anon-1", product(3, 9, 0))
	require.ErrorIs(t, err, ErrLoginRequired)

	replayed, _ := store.Login(ctx, "anon-1", testUser("u3"))
	require.NotNil(t, replayed)
	require.Equal(t, PendingAddToWishlist, replayed.Kind)

	_, err = store.AddToWishlist(ctx, "u3", product(3, 9, 0))
	require.NoError(t, err)

	sess := store.Get("u3")
	require.Len(t, sess.Wishlist, 1)
}

func TestLogoutClearsSession(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()
	store.Login(ctx, "u1", testUser("u1"))

	_, err := store.AddToCart(ctx, "u1", product(1, 5, 0), 1)
	require.NoError(t, err)
	_, err = store.AddToWishlist(ctx, "u1", product(2, 7, 0))
	require.NoError(t, err)

	res := store.Logout(ctx, "u1")
	require.NoError(t, res.Err)

	sess := store.Get("u1")
	require.False(t, sess.Authenticated())
	require.Empty(t, sess.Cart)
	require.Empty(t, sess.Wishlist)
}

func TestSessionSnapshotSurvivesRestart(t *testing.T) {
	adapter := storage.NewAdapter(storage.NewMemoryBackend(), nil)
	store := NewStore(adapter)
	ctx := context.Background()

	user := testUser("u9")
	store.Login(ctx, "u9", user)
	_, err := store.AddToCart(ctx, "u9", product(4, 3.5, 0), 2)
	require.NoError(t, err)

	users := &stubUserRepo{user: user}
	restored := NewStore(adapter)
	require.NoError(t, restored.Restore(ctx, users))

	sess := restored.Get("u9")
	require.True(t, sess.Authenticated())
	require.Len(t, sess.Cart, 1)
	require.Equal(t, 2, sess.Cart[0].Quantity)
}

type stubUserRepo struct {
	user *userdomain.User
}

func (s *stubUserRepo) FindByID(_ context.Context, id string) (*userdomain.User, error) {
	if s.user != nil && s.user.ID == id {
		return s.user, nil
	}
	return nil, userdomain.ErrNotFound
}

func (s *stubUserRepo) FindByEmail(context.Context, string) (*userdomain.User, error) {
	return nil, userdomain.ErrNotFound
}
func (s *stubUserRepo) FindAll(context.Context) ([]userdomain.User, error) { return nil, nil }
func (s *stubUserRepo) EmailExists(context.Context, string) (bool, error) { return false, nil }
func (s *stubUserRepo) Create(context.Context, *userdomain.User) error    { return nil }
func (s *stubUserRepo) Update(context.Context, *userdomain.User) error    { return nil }
func (s *stubUserRepo) Delete(context.Context, string) error              { return nil }
func (s *stubUserRepo) Count(context.Context) (int, error)                { return 0, nil }
func (s *stubUserRepo) CountByRole(context.Context, string) (int, error)  { return 0, nil }
