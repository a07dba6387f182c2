package domain

// User represents one browsable profile from the remote feed.
//
// It is NOT tied to the feed wire format or to any bookmark backend.
// A User is uniquely identified by its ID, which is stable across pages
// and across sessions.
type User struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is the external identifier assigned by the feed.
	// Example: 0f8c0b5a-5a7d-4e53-a4a3-1b7f4f3c3e1d
	ID string `json:"id"`

	// ─────────────────────────────
	// Profile
	// ─────────────────────────────

	// Name is the composed display name ("first last").
	Name string `json:"name"`

	// Email and Phone are free-form contact strings, not validated.
	Email string `json:"email"`
	Phone string `json:"phone"`

	// Picture is the avatar URL, fetched lazily by clients.
	Picture string `json:"picture"`

	// ─────────────────────────────
	// Derived
	// ─────────────────────────────

	// Bookmarked is true iff ID was present in the bookmark store
	// at the time of the last reconciliation.
	Bookmarked bool `json:"bookmarked"`
}

// WithBookmarked returns a copy of u with the flag set to b.
func (u User) WithBookmarked(b bool) User {
	u.Bookmarked = b
	return u
}

// IDSet is a membership set of user IDs.
type IDSet map[string]struct{}

// NewIDSet builds a set from the given IDs.
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set. A nil set contains nothing.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}
