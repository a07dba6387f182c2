// Package list adapts the aggregator to the dashboard: list and
// bookmarked view side by side.
package list

import (
	"context"

	"github.com/MrSnakeDoc/userbrowser/internal/aggregator"
	"github.com/MrSnakeDoc/userbrowser/internal/domain"
)

// Holder drives the dashboard from one aggregator.
type Holder struct {
	agg *aggregator.Aggregator
}

// New wraps agg. The holder does not own it.
func New(agg *aggregator.Aggregator) *Holder {
	return &Holder{agg: agg}
}

// Start performs the first load of both views.
func (h *Holder) Start(ctx context.Context) {
	h.agg.LoadInitial(ctx)
	h.agg.LoadBookmarked(ctx)
}

// LoadMore is triggered when the end of the list is reached.
func (h *Holder) LoadMore(ctx context.Context) { h.agg.LoadMore(ctx) }

// Refresh reloads the list from page 1 and the bookmarked view.
func (h *Holder) Refresh(ctx context.Context) {
	h.agg.Refresh(ctx)
	h.agg.LoadBookmarked(ctx)
}

// ToggleBookmark toggles the bookmark of a listed user.
func (h *Holder) ToggleBookmark(ctx context.Context, id string) (domain.User, error) {
	return h.agg.ToggleBookmarkByID(ctx, id)
}

// ReturnFromDetail catches up with bookmark changes made on the detail view.
func (h *Holder) ReturnFromDetail(ctx context.Context) {
	h.agg.LoadBookmarked(ctx)
	h.agg.ReconcileBookmarkFlags(ctx)
}

// State returns the list snapshot.
func (h *Holder) State() aggregator.State { return h.agg.State() }

// Bookmarked returns the bookmarked view.
func (h *Holder) Bookmarked() []domain.User { return h.agg.Bookmarked() }

// Lookup finds a user shown on either view.
func (h *Holder) Lookup(id string) (domain.User, bool) { return h.agg.Lookup(id) }

// Subscribe streams list snapshots.
func (h *Holder) Subscribe() (<-chan aggregator.State, func()) { return h.agg.Subscribe() }

// SubscribeBookmarked streams the bookmarked view.
func (h *Holder) SubscribeBookmarked() (<-chan []domain.User, func()) {
	return h.agg.SubscribeBookmarked()
}
