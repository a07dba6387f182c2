// Package bookmark holds the store contract and the toggle primitive shared
// by the list aggregator and the detail view.
package bookmark

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/userbrowser/internal/domain"
)

// Store is durable persistence for bookmarks, keyed by user ID.
// Implementations report failures as *domain.StorageError.
type Store interface {
	// ListAll returns every bookmark, in no particular order.
	ListAll(ctx context.Context) ([]domain.Bookmark, error)
	// Upsert inserts or overwrites the bookmark for b.UserID.
	Upsert(ctx context.Context, b domain.Bookmark) error
	// DeleteByID removes the bookmark for id. Deleting a missing id is not an error.
	DeleteByID(ctx context.Context, id string) error
}

// Toggle flips the persisted bookmark state of u, using u.Bookmarked as the
// current state. It returns the new state only once the store confirmed the
// write; on failure the returned error is a *domain.StorageError and the
// caller must leave its in-memory flag unchanged.
func Toggle(ctx context.Context, store Store, u domain.User, now func() time.Time) (bool, error) {
	if u.Bookmarked {
		if err := store.DeleteByID(ctx, u.ID); err != nil {
			return true, domain.AsStorageError("delete bookmark", err)
		}
		return false, nil
	}

	if now == nil {
		now = time.Now
	}
	if err := store.Upsert(ctx, domain.NewBookmark(u, now())); err != nil {
		return false, domain.AsStorageError("upsert bookmark", err)
	}
	return true, nil
}
