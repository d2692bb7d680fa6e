package session

import (
	"errors"

	productdomain "github.com/tair/storefront/internal/product/domain"
	userdomain "github.com/tair/storefront/internal/user/domain"
)

// ErrLoginRequired signals that a mutation was requested on an anonymous
// session. It is control flow, not a failure: the attempted action has been
// stashed and will replay after login, and the caller should redirect to the
// login entry point.
var ErrLoginRequired = errors.New("login required")

// Pending action kinds.
const (
	PendingAddToCart     = "add_to_cart"
	PendingAddToWishlist = "add_to_wishlist"
)

// CartItem is a product plus a quantity of at least 1. A quantity reaching
// zero removes the line instead of persisting a non-positive quantity.
type CartItem struct {
	Product  productdomain.Product `json:"product"`
	Quantity int                   `json:"quantity"`
}

// LineTotal applies the product discount to the line.
func (i CartItem) LineTotal() float64 {
	return i.Product.DiscountedPrice() * float64(i.Quantity)
}

// PendingAction is a cart or wishlist mutation requested while anonymous,
// stashed for replay immediately after successful login or registration.
type PendingAction struct {
	Kind     string                `json:"kind"`
	Product  productdomain.Product `json:"product"`
	Quantity int                   `json:"quantity,omitempty"`
}

// Session is the per-client state: the authenticated user (nil when
// anonymous), the cart, the wishlist and at most one pending action.
type Session struct {
	ID       string                  `json:"id"`
	User     *userdomain.User        `json:"user,omitempty"`
	Cart     []CartItem              `json:"cart"`
	Wishlist []productdomain.Product `json:"wishlist"`
	Pending  *PendingAction          `json:"pending,omitempty"`
}

// Authenticated reports whether a user is attached.
func (s *Session) Authenticated() bool {
	return s.User != nil
}

// CartTotal sums discounted line totals.
func (s *Session) CartTotal() float64 {
	var total float64
	for _, item := range s.Cart {
		total += item.LineTotal()
	}
	return total
}

// ItemCount sums quantities, not line count.
func (s *Session) ItemCount() int {
	count := 0
	for _, item := range s.Cart {
		count += item.Quantity
	}
	return count
}

// Snapshot is the subset of a session persisted across restarts: identity,
// auth flag, cart and wishlist. The pending action is deliberately transient.
type Snapshot struct {
	SessionID     string                  `json:"session_id"`
	UserID        string                  `json:"user_id,omitempty"`
	Authenticated bool                    `json:"authenticated"`
	Cart          []CartItem              `json:"cart"`
	Wishlist      []productdomain.Product `json:"wishlist"`
}
