package domain

import (
	"sort"
	"time"
)

// Bookmark represents a persisted bookmark entry.
//
// The remote feed has no stable order and no lookup by ID, so a bookmark
// carries a full snapshot of the user instead of a bare reference.
type Bookmark struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// UserID is the bookmarked User.ID and the storage key.
	UserID string `json:"user_id"`

	// ─────────────────────────────
	// Snapshot
	// ─────────────────────────────

	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Picture string `json:"picture"`

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	// CreatedAt is when the user was bookmarked.
	CreatedAt time.Time `json:"created_at"`
}

// NewBookmark snapshots u at time now.
func NewBookmark(u User, now time.Time) Bookmark {
	return Bookmark{
		UserID:    u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Picture:   u.Picture,
		CreatedAt: now,
	}
}

// User reconstructs the bookmarked user from the snapshot.
func (b Bookmark) User() User {
	return User{
		ID:         b.UserID,
		Name:       b.Name,
		Email:      b.Email,
		Phone:      b.Phone,
		Picture:    b.Picture,
		Bookmarked: true,
	}
}

// BookmarkIDs returns the set of bookmarked user IDs.
func BookmarkIDs(bookmarks []Bookmark) IDSet {
	ids := make(IDSet, len(bookmarks))
	for _, b := range bookmarks {
		ids[b.UserID] = struct{}{}
	}
	return ids
}

// BookmarkedUsers converts bookmarks to users ordered by bookmark time,
// oldest first, ties broken by ID. Stores do not guarantee any order.
func BookmarkedUsers(bookmarks []Bookmark) []User {
	sorted := make([]Bookmark, len(bookmarks))
	copy(sorted, bookmarks)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		}
		return sorted[i].UserID < sorted[j].UserID
	})

	users := make([]User, 0, len(sorted))
	for _, b := range sorted {
		users = append(users, b.User())
	}
	return users
}
