package aggregator

import (
	"slices"

	"github.com/MrSnakeDoc/userbrowser/internal/domain"
)

// Status of the aggregate list as seen by presentation.
type Status string

const (
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// State is an immutable snapshot of the aggregate list.
type State struct {
	Status Status        `json:"status"`
	Items  []domain.User `json:"items"`

	// NextPage is the page the next LoadMore fetches (cursor).
	NextPage int  `json:"next_page"`
	HasMore  bool `json:"has_more"`

	LoadingMore bool `json:"loading_more"`

	// Err carries the last failure message. With StatusSuccess it reports a
	// failed LoadMore; the items are still valid.
	Err string `json:"error,omitempty"`
}

func emptyState() State {
	return State{
		Status:   StatusLoading,
		Items:    []domain.User{},
		NextPage: 1,
		HasMore:  true,
	}
}

// Find returns the item with id, if listed.
func (s State) Find(id string) (domain.User, bool) {
	if i := indexOf(s.Items, id); i >= 0 {
		return s.Items[i], true
	}
	return domain.User{}, false
}

func (s State) clone() State {
	s.Items = slices.Clone(s.Items)
	return s
}

func indexOf(items []domain.User, id string) int {
	return slices.IndexFunc(items, func(u domain.User) bool { return u.ID == id })
}

// merge returns the users of page that are not already in seen, with their
// bookmark flag taken from bookmarked. seen is updated in place.
func merge(page []domain.User, seen domain.IDSet, bookmarked domain.IDSet) []domain.User {
	out := make([]domain.User, 0, len(page))
	for _, u := range page {
		if seen.Has(u.ID) {
			continue
		}
		seen[u.ID] = struct{}{}
		out = append(out, u.WithBookmarked(bookmarked.Has(u.ID)))
	}
	return out
}

func idsOf(items []domain.User) domain.IDSet {
	s := make(domain.IDSet, len(items))
	for _, u := range items {
		s[u.ID] = struct{}{}
	}
	return s
}
