package memory

import (
	"context"
	"sync"

	"github.com/MrSnakeDoc/userbrowser/internal/bookmark"
	"github.com/MrSnakeDoc/userbrowser/internal/domain"
)

var _ bookmark.Store = (*Store)(nil)

// Store keeps bookmarks in process memory.
// It backs BOOKMARK_BACKEND=memory and the tests; nothing survives a restart.
type Store struct {
	mu        sync.RWMutex
	bookmarks map[string]domain.Bookmark // UserID -> Bookmark
}

// NewStore creates an empty memory store
func NewStore() *Store {
	return &Store{
		bookmarks: make(map[string]domain.Bookmark),
	}
}

// ListAll returns all bookmarks
func (s *Store) ListAll(ctx context.Context) ([]domain.Bookmark, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.AsStorageError("list bookmarks", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	bookmarks := make([]domain.Bookmark, 0, len(s.bookmarks))
	for _, b := range s.bookmarks {
		bookmarks = append(bookmarks, b)
	}
	return bookmarks, nil
}

// Upsert adds or replaces a bookmark
func (s *Store) Upsert(ctx context.Context, b domain.Bookmark) error {
	if err := ctx.Err(); err != nil {
		return domain.AsStorageError("upsert bookmark", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.bookmarks[b.UserID] = b
	return nil
}

// DeleteByID removes a bookmark
func (s *Store) DeleteByID(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return domain.AsStorageError("delete bookmark", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.bookmarks, id)
	return nil
}

// Get retrieves a bookmark by user ID
func (s *Store) Get(id string) (domain.Bookmark, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookmarks[id]
	return b, ok
}

// Count returns the number of bookmarks
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.bookmarks)
}
