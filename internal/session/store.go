package session

import (
	"context"
	"sort"
	"sync"

	productdomain "github.com/tair/storefront/internal/product/domain"
	"github.com/tair/storefront/internal/storage"
	userdomain "github.com/tair/storefront/internal/user/domain"
	"github.com/tair/storefront/pkg/logger"
)

// CollectionName is the storage key for persisted session snapshots.
const CollectionName = "sessions"

// Store is the injected session state container. All mutation goes through
// its methods; every mutation writes the persisted subset through to storage
// before returning, and the write outcome is part of the return value.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	col      *storage.Collection[Snapshot]
}

// NewStore creates an empty session store over an adapter.
func NewStore(adapter *storage.Adapter) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		col:      storage.NewCollection[Snapshot](adapter, CollectionName),
	}
}

// Restore loads persisted session snapshots, typically at startup. Users are
// re-resolved against the user repository so a deleted account does not come
// back authenticated.
func (s *Store) Restore(ctx context.Context, users userdomain.UserRepository) error {
	snapshots, err := s.col.Load(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, snap := range snapshots {
		sess := &Session{
			ID:       snap.SessionID,
			Cart:     snap.Cart,
			Wishlist: snap.Wishlist,
		}
		if snap.Authenticated && snap.UserID != "" {
			if user, err := users.FindByID(ctx, snap.UserID); err == nil {
				sess.User = user
			}
		}
		s.sessions[snap.SessionID] = sess
	}
	return nil
}

// Get returns a copy of the session, creating it when absent.
func (s *Store) Get(sessionID string) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySession(s.session(sessionID))
}

// session returns the live session for an id; callers must hold s.mu.
func (s *Store) session(sessionID string) *Session {
	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &Session{ID: sessionID}
		s.sessions[sessionID] = sess
	}
	return sess
}

// persistLocked writes all session snapshots through to storage; callers
// must hold s.mu.
func (s *Store) persistLocked(ctx context.Context) storage.WriteResult {
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	snapshots := make([]Snapshot, 0, len(ids))
	for _, id := range ids {
		sess := s.sessions[id]
		snap := Snapshot{
			SessionID:     sess.ID,
			Authenticated: sess.User != nil,
			Cart:          sess.Cart,
			Wishlist:      sess.Wishlist,
		}
		if sess.User != nil {
			snap.UserID = sess.User.ID
		}
		snapshots = append(snapshots, snap)
	}

	res := s.col.Save(ctx, snapshots)
	if !res.OK() {
		logger.Error(ctx).Err(res.Err).Msg("Failed to persist sessions")
	}
	return res
}

// AddToCart merges the product into the cart, incrementing the quantity when
// the product is already present. Anonymous sessions stash the action and get
// ErrLoginRequired.
func (s *Store) AddToCart(ctx context.Context, sessionID string, product productdomain.Product, qty int) (storage.WriteResult, error) {
	if qty < 1 {
		qty = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.session(sessionID)

	if !sess.Authenticated() {
		sess.Pending = &PendingAction{Kind: PendingAddToCart, Product: product, Quantity: qty}
		return storage.WriteResult{}, ErrLoginRequired
	}

	addToCart(sess, product, qty)
	return s.persistLocked(ctx), nil
}

func addToCart(sess *Session, product productdomain.Product, qty int) {
	for i := range sess.Cart {
		if sess.Cart[i].Product.ID == product.ID {
			sess.Cart[i].Quantity += qty
			return
		}
	}
	sess.Cart = append(sess.Cart, CartItem{Product: product, Quantity: qty})
}

// RemoveFromCart drops the line with the given product id.
func (s *Store) RemoveFromCart(ctx context.Context, sessionID string, productID int) (storage.WriteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.session(sessionID)

	if !sess.Authenticated() {
		return storage.WriteResult{}, ErrLoginRequired
	}

	for i := range sess.Cart {
		if sess.Cart[i].Product.ID == productID {
			sess.Cart = append(sess.Cart[:i], sess.Cart[i+1:]...)
			break
		}
	}
	return s.persistLocked(ctx), nil
}

// UpdateQuantity sets the quantity of a cart line. A quantity of zero or
// below removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, sessionID string, productID, qty int) (storage.WriteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.session(sessionID)

	if !sess.Authenticated() {
		return storage.WriteResult{}, ErrLoginRequired
	}

	for i := range sess.Cart {
		if sess.Cart[i].Product.ID == productID {
			if qty <= 0 {
				sess.Cart = append(sess.Cart[:i], sess.Cart[i+1:]...)
			} else {
				sess.Cart[i].Quantity = qty
			}
			break
		}
	}
	return s.persistLocked(ctx), nil
}

// ClearCart empties the cart, e.g. after a successful checkout.
func (s *Store) ClearCart(ctx context.Context, sessionID string) (storage.WriteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.session(sessionID)

	if !sess.Authenticated() {
		return storage.WriteResult{}, ErrLoginRequired
	}

	sess.Cart = nil
	return s.persistLocked(ctx), nil
}

// AddToWishlist appends the product unless already present. Anonymous
// sessions stash the action and get ErrLoginRequired.
func (s *Store) AddToWishlist(ctx context.Context, sessionID string, product productdomain.Product) (storage.WriteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.session(sessionID)

	if !sess.Authenticated() {
		sess.Pending = &PendingAction{Kind: PendingAddToWishlist, Product: product}
		return storage.WriteResult{}, ErrLoginRequired
	}

	addToWishlist(sess, product)
	return s.persistLocked(ctx), nil
}

func addToWishlist(sess *Session, product productdomain.Product) {
	for _, p := range sess.Wishlist {
		if p.ID == product.ID {
			return
		}
	}
	sess.Wishlist = append(sess.Wishlist, product)
}

// RemoveFromWishlist drops the product from the wishlist.
func (s *Store) RemoveFromWishlist(ctx context.Context, sessionID string, productID int) (storage.WriteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.session(sessionID)

	if !sess.Authenticated() {
		return storage.WriteResult{}, ErrLoginRequired
	}

	for i := range sess.Wishlist {
		if sess.Wishlist[i].ID == productID {
			sess.Wishlist = append(sess.Wishlist[:i], sess.Wishlist[i+1:]...)
			break
		}
	}
	return s.persistLocked(ctx), nil
}

// ClearWishlist empties the wishlist.
func (s *Store) ClearWishlist(ctx context.Context, sessionID string) (storage.WriteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.session(sessionID)

	if !sess.Authenticated() {
		return storage.WriteResult{}, ErrLoginRequired
	}

	sess.Wishlist = nil
	return s.persistLocked(ctx), nil
}

// Login attaches the user to the session and replays the pending action, if
// any, exactly once. When the client was browsing under an anonymous session
// id, its state is re-keyed to the user id so the cart survives login.
func (s *Store) Login(ctx context.Context, anonymousID string, user *userdomain.User) (replayed *PendingAction, res storage.WriteResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(anonymousID)
	if anonymousID != user.ID {
		delete(s.sessions, anonymousID)
		sess.ID = user.ID
		// An earlier session under the user id is superseded.
		s.sessions[user.ID] = sess
	}
	sess.User = user

	if sess.Pending != nil {
		replayed = sess.Pending
		sess.Pending = nil
		switch replayed.Kind {
		case PendingAddToCart:
			addToCart(sess, replayed.Product, replayed.Quantity)
		case PendingAddToWishlist:
			addToWishlist(sess, replayed.Product)
		}
	}

	return replayed, s.persistLocked(ctx)
}

// Logout clears the session: user, cart, wishlist and pending action. Cart
// and wishlist are session-scoped, not account-scoped.
func (s *Store) Logout(ctx context.Context, sessionID string) storage.WriteResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	return s.persistLocked(ctx)
}

func copySession(sess *Session) Session {
	cp := Session{ID: sess.ID, User: sess.User}
	cp.Cart = append([]CartItem(nil), sess.Cart...)
	cp.Wishlist = append([]productdomain.Product(nil), sess.Wishlist...)
	if sess.Pending != nil {
		pending := *sess.Pending
		cp.Pending = &pending
	}
	return cp
}
