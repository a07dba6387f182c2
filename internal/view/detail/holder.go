// Package detail holds the user shown on the detail view.
//
// The holder writes bookmarks straight to the store and does not touch the
// list; the list reconciles its flags when the user navigates back.
package detail

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MrSnakeDoc/userbrowser/internal/bookmark"
	"github.com/MrSnakeDoc/userbrowser/internal/domain"
	"github.com/MrSnakeDoc/userbrowser/internal/logger"
	"github.com/MrSnakeDoc/userbrowser/internal/signal"
)

// ErrNoUser is returned when no user has been set on the holder.
var ErrNoUser = errors.New("no user selected")

// Holder is the detail view state.
type Holder struct {
	store bookmark.Store
	log   logger.Logger
	now   func() time.Time

	// toggleMu serializes bookmark mutations; mu guards the displayed user
	// and is never held during store I/O.
	toggleMu sync.Mutex
	mu       sync.Mutex
	set      bool
	user     *signal.Signal[domain.User]
}

// New returns an empty holder.
func New(store bookmark.Store, log logger.Logger) *Holder {
	if log == nil {
		log = logger.Nop()
	}
	return &Holder{
		store: store,
		log:   log,
		now:   time.Now,
		user:  signal.New(domain.User{}),
	}
}

// SetUser replaces the displayed user.
func (h *Holder) SetUser(u domain.User) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.set = true
	h.user.Publish(u)
}

// Clear forgets the displayed user.
func (h *Holder) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.set = false
	h.user.Publish(domain.User{})
}

// User returns the displayed user, if any.
func (h *Holder) User() (domain.User, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.user.Value(), h.set
}

// Subscribe streams the displayed user.
func (h *Holder) Subscribe() (<-chan domain.User, func()) { return h.user.Subscribe() }

// ToggleBookmark flips the bookmark of the displayed user. The flag changes
// only after the store confirmed; failures are *domain.StorageError. If the
// displayed user changed meanwhile, the store is still updated but the new
// user is left as is.
func (h *Holder) ToggleBookmark(ctx context.Context) (domain.User, error) {
	h.toggleMu.Lock()
	defer h.toggleMu.Unlock()

	h.mu.Lock()
	u, set := h.user.Value(), h.set
	h.mu.Unlock()
	if !set {
		return u, ErrNoUser
	}

	flag, err := bookmark.Toggle(ctx, h.store, u, h.now)
	if err != nil {
		h.log.Warn("detail bookmark toggle failed", logger.String("user_id", u.ID), logger.Error(err))
		return u, err
	}
	u.Bookmarked = flag

	h.mu.Lock()
	defer h.mu.Unlock()
	if cur := h.user.Value(); h.set && cur.ID == u.ID {
		cur.Bookmarked = flag
		h.user.Publish(cur)
	}
	return u, nil
}

// Close ends every subscription.
func (h *Holder) Close() { h.user.Close() }
