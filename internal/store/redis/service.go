package redis

import (
	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/userbrowser/internal/bookmark"
)

var _ bookmark.Store = (*Store)(nil)

// Store handles Redis operations for bookmarks.
// Bookmarks are durable, so unlike cache entries they carry no TTL.
type Store struct {
	client redis.UniversalClient
}

// NewStore creates a new Redis store
func NewStore(client redis.UniversalClient) *Store {
	return &Store{
		client: client,
	}
}
